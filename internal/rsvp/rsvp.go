// Package rsvp validates, stores and confirms attendance answers.
package rsvp

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"wedding-site/internal/errs"
	"wedding-site/internal/mail"
	"wedding-site/internal/models"
	"wedding-site/internal/storage"
)

const (
	SuccessNotice = "Thank you for your RSVP! Confirmation email has been sent."
	FailureNotice = "Failed to submit RSVP. Please try again."
)

// ErrInFlight is returned while a submission for the same address is running.
var ErrInFlight = errs.E(errs.Conflict, "rsvp.Submit", "Your RSVP is already being sent")

// Notifier is told about every stored RSVP. Failures are only logged.
type Notifier interface {
	NotifyRSVP(ctx context.Context, r models.RSVPResponse) error
}

// NewForm returns the values an empty form starts with.
func NewForm() models.RSVPResponse {
	return models.RSVPResponse{Attending: true, Guests: 1}
}

// Notification is the single message shown after a submission.
type Notification struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type Service struct {
	store    storage.RSVPStore
	sender   mail.Sender
	notifier Notifier
	validate *validator.Validate
	log      zerolog.Logger

	mu       sync.Mutex
	inFlight map[string]struct{}
}

func NewService(store storage.RSVPStore, sender mail.Sender, log zerolog.Logger) *Service {
	return &Service{
		store:    store,
		sender:   sender,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		log:      log.With().Str("component", "rsvp").Logger(),
		inFlight: make(map[string]struct{}),
	}
}

// WithNotifier sets who hears about stored RSVPs.
func (s *Service) WithNotifier(n Notifier) *Service {
	s.notifier = n
	return s
}

// Validate checks the form without touching the network.
func (s *Service) Validate(r models.RSVPResponse) error {
	err := s.validate.Struct(r)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return errs.Wrap(errs.Invalid, "rsvp.validate", err)
	}
	switch fe := verrs[0]; fe.Field() {
	case "Name":
		return errs.E(errs.Invalid, "rsvp.validate", "Please enter your name")
	case "Email":
		return errs.E(errs.Invalid, "rsvp.validate", "Please enter a valid email address")
	case "Guests":
		return errs.E(errs.Invalid, "rsvp.validate", "Number of guests must be between 1 and 4")
	default:
		return errs.Wrap(errs.Invalid, "rsvp.validate", fe)
	}
}

// Submit stores the answer and sends the confirmation email, in that order.
// A stored row is kept when the email fails.
func (s *Service) Submit(ctx context.Context, r models.RSVPResponse) (Notification, error) {
	r.Name = strings.TrimSpace(r.Name)
	r.Email = strings.TrimSpace(r.Email)
	r.ID = 0

	if err := s.Validate(r); err != nil {
		return Notification{Message: errs.Public(err)}, err
	}

	key := strings.ToLower(r.Email)
	if !s.begin(key) {
		return Notification{Message: errs.Public(ErrInFlight)}, ErrInFlight
	}
	defer s.end(key)

	log := s.log.With().Str("email", r.Email).Logger()

	if err := s.store.InsertRSVP(ctx, &r); err != nil {
		log.Error().Err(err).Msg("Database error")
		return Notification{Message: FailureNotice}, err
	}
	log.Info().Int64("rsvp_id", r.ID).Bool("attending", r.Attending).Int("guests", r.Guests).Msg("RSVP saved")

	err := s.sender.Send(ctx, mail.Payload{
		To:        r.Email,
		Name:      r.Name,
		Attending: r.Attending,
		Guests:    r.Guests,
		Message:   r.Message,
	})
	if err != nil {
		log.Error().Err(err).Msg("Email error")
		err = errs.E(errs.Function, "rsvp.Submit", "Failed to send confirmation email")
		return Notification{Message: errs.Public(err)}, err
	}

	if s.notifier != nil {
		if err := s.notifier.NotifyRSVP(ctx, r); err != nil {
			log.Warn().Err(err).Msg("Failed to notify about RSVP")
		}
	}

	return Notification{Success: true, Message: SuccessNotice}, nil
}

func (s *Service) begin(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, busy := s.inFlight[key]; busy {
		return false
	}
	s.inFlight[key] = struct{}{}
	return true
}

func (s *Service) end(key string) {
	s.mu.Lock()
	delete(s.inFlight, key)
	s.mu.Unlock()
}
