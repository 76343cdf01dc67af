package whatsapp

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"wedding-site/internal/countdown"
	"wedding-site/internal/models"
)

// Details describes the wedding for outgoing messages.
type Details struct {
	BrideName string
	GroomName string
	Date      time.Time
	Location  string
	SiteURL   string
}

func (d Details) rsvpURL() string {
	return strings.TrimRight(d.SiteURL, "/") + "/#rsvp"
}

// Reply is how a guest answered an invitation.
type Reply int

const (
	ReplyNone Reply = iota
	ReplyAccept
	ReplyDecline
)

// ClassifyReply maps free text to an answer. Decline wins over accept so
// that "no, not coming" is not read as an accept.
func ClassifyReply(text string) Reply {
	text = strings.ToLower(strings.TrimSpace(text))
	if text == "" {
		return ReplyNone
	}
	if containsAny(text, "decline", "not coming", "can't come", "cant come", "won't come", "can't make it", "❌") ||
		hasWord(text, "no", "nope") {
		return ReplyDecline
	}
	if containsAny(text, "accept", "attending", "coming", "will come", "will be there", "✅") ||
		hasWord(text, "yes", "yep", "yeah") {
		return ReplyAccept
	}
	return ReplyNone
}

// InvitationText is the invitation sent to a guest.
func InvitationText(d Details, name string, now time.Time) string {
	left := countdown.Compute(d.Date, now)
	return fmt.Sprintf(
		"🎉 *Wedding Invitation*\n\n"+
			"Dear %s,\n\n"+
			"You are cordially invited to celebrate the wedding of\n\n"+
			"*%s* & *%s*\n\n"+
			"📅 Date: %s\n"+
			"📍 Location: %s\n"+
			"⏳ %d days to go\n\n"+
			"Please RSVP on our website: %s\n\n"+
			"Reply with:\n✅ *YES* if you plan to come\n❌ *NO* if you can't make it",
		name, d.BrideName, d.GroomName, d.Date.Format("Monday, January 2, 2006 at 15:04"), d.Location, left.Days, d.rsvpURL(),
	)
}

// ReplyText answers a guest's reply. The website form stays the place where
// the answer is recorded.
func ReplyText(d Details, reply Reply) string {
	switch reply {
	case ReplyAccept:
		return fmt.Sprintf(
			"🎉 Wonderful! We're so excited to celebrate with you!\n\n"+
				"Please confirm your seats for the wedding of %s & %s here: %s\n\n"+
				"See you there! 💕",
			d.BrideName, d.GroomName, d.rsvpURL(),
		)
	case ReplyDecline:
		return fmt.Sprintf(
			"Thank you for letting us know. We're sorry you won't be able to join us for the wedding of %s & %s.\n\n"+
				"You can still leave us a wish: %s/#wishes\n\nWe'll miss you! 💕",
			d.BrideName, d.GroomName, strings.TrimRight(d.SiteURL, "/"),
		)
	}
	return ""
}

// RSVPText is the operator notification for a stored RSVP.
func RSVPText(r models.RSVPResponse) string {
	status := "✅ attending"
	if !r.Attending {
		status = "❌ not attending"
	}
	text := fmt.Sprintf("📬 *New RSVP*\n\n%s (%s)\n%s, %d guest(s)", r.Name, r.Email, status, r.Guests)
	if r.Message != "" {
		text += fmt.Sprintf("\n\n💬 \"%s\"", r.Message)
	}
	return text
}

// Invitee is a guest invited in this session.
type Invitee struct {
	Phone string
	Name  string
	Reply Reply
}

// Inviter sends invitations and answers replies from invited guests.
type Inviter struct {
	messenger Messenger
	details   Details
	now       func() time.Time

	mu      sync.Mutex
	invited map[string]*Invitee
}

func NewInviter(m Messenger, d Details) *Inviter {
	return &Inviter{
		messenger: m,
		details:   d,
		now:       time.Now,
		invited:   make(map[string]*Invitee),
	}
}

// SendInvitation sends the invitation and remembers the guest.
func (i *Inviter) SendInvitation(ctx context.Context, phoneNumber, name string) error {
	phone := NormalizePhoneNumber(phoneNumber)
	if phone == "" {
		return fmt.Errorf("phone number is required")
	}
	if err := i.messenger.SendMessage(ctx, phone, InvitationText(i.details, name, i.now())); err != nil {
		return fmt.Errorf("failed to send invitation: %w", err)
	}

	i.mu.Lock()
	i.invited[phone] = &Invitee{Phone: phone, Name: name}
	i.mu.Unlock()
	return nil
}

// HandleReply answers a message from an invited guest. Messages from anyone
// else, or that are not a clear answer, are ignored.
func (i *Inviter) HandleReply(ctx context.Context, sender, text string) error {
	phone := NormalizePhoneNumber(sender)

	i.mu.Lock()
	guest, ok := i.invited[phone]
	i.mu.Unlock()
	if !ok {
		return nil
	}

	reply := ClassifyReply(text)
	if reply == ReplyNone {
		return nil
	}

	i.mu.Lock()
	guest.Reply = reply
	i.mu.Unlock()

	if err := i.messenger.SendMessage(ctx, phone, ReplyText(i.details, reply)); err != nil {
		return fmt.Errorf("failed to send confirmation: %w", err)
	}
	return nil
}

// Invited lists guests invited in this session by name.
func (i *Inviter) Invited() []Invitee {
	i.mu.Lock()
	defer i.mu.Unlock()
	out := make([]Invitee, 0, len(i.invited))
	for _, g := range i.invited {
		out = append(out, *g)
	}
	sort.Slice(out, func(a, b int) bool { return out[a].Name < out[b].Name })
	return out
}

// RSVPNotifier forwards stored RSVPs to the couple's number.
type RSVPNotifier struct {
	messenger Messenger
	to        string
}

func NewRSVPNotifier(m Messenger, to string) *RSVPNotifier {
	return &RSVPNotifier{messenger: m, to: to}
}

func (n *RSVPNotifier) NotifyRSVP(ctx context.Context, r models.RSVPResponse) error {
	return n.messenger.SendMessage(ctx, n.to, RSVPText(r))
}

// containsAny checks if the text contains any of the given keywords
func containsAny(text string, keywords ...string) bool {
	for _, keyword := range keywords {
		if strings.Contains(text, keyword) {
			return true
		}
	}
	return false
}

// hasWord matches short keywords as whole words only.
func hasWord(text string, words ...string) bool {
	fields := strings.FieldsFunc(text, func(r rune) bool {
		return !('a' <= r && r <= 'z') && r != '\''
	})
	for _, f := range fields {
		for _, w := range words {
			if f == w {
				return true
			}
		}
	}
	return false
}
