// Package site composes the single invitation page from its sections.
package site

import (
	"context"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"wedding-site/internal/countdown"
	"wedding-site/internal/errs"
	"wedding-site/internal/gallery"
	"wedding-site/internal/models"
	"wedding-site/internal/rsvp"
	"wedding-site/internal/share"
	"wedding-site/internal/wishes"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// Static returns the embedded script and stylesheet, rooted at static/.
func Static() fs.FS {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return sub
}

// Templates parses the page templates.
func Templates() *template.Template {
	return template.Must(template.New("").Funcs(funcs).ParseFS(templateFS, "templates/*.html"))
}

var funcs = template.FuncMap{
	"initial": initial,
	"longDate": func(t time.Time) string {
		return t.Format("January 2, 2006")
	},
	"pad2": func(n int64) string {
		return fmt.Sprintf("%02d", n)
	},
}

// initial is the avatar letter of a wish.
func initial(name string) string {
	r, _ := utf8.DecodeRuneInString(strings.TrimSpace(name))
	if r == utf8.RuneError {
		return "?"
	}
	return string(unicode.ToUpper(r))
}

// Details is the fixed information about the wedding.
type Details struct {
	Date     time.Time
	Location string
	PageURL  string
	Content  models.Content
}

// WishView is one wish as the visitor sees it.
type WishView struct {
	models.Wish
	LikedByMe bool
}

// ShareView feeds the social share section and its script.
type ShareView struct {
	Links            map[share.Platform]string
	Platforms        []share.Platform
	Hashtags         []string
	HashtagText      string
	PopupFeatures    string
	CopiedResetAfter int64
}

// Page is everything the template renders.
type Page struct {
	Title       string
	PageURL     string
	Couple      models.Couple
	HeroImage   string
	WeddingDate time.Time
	Location    string

	Countdown countdown.State
	Events    []models.Event
	Story     []models.Milestone

	Gallery    []gallery.Cell
	RootMargin string
	Preview    *gallery.Cell

	RSVP        models.RSVPResponse
	GuestCounts []int

	Wishes        []WishView
	WishesLoading bool
	WishesEmpty   bool
	WishesError   string
	EmptyNotice   string

	Gifts models.Gifts
	Share ShareView
}

// Builder renders Page values for requests.
type Builder struct {
	details Details
	board   *wishes.Board
	eager   int
	now     func() time.Time
}

func NewBuilder(d Details, board *wishes.Board, eager int) *Builder {
	return &Builder{details: d, board: board, eager: eager, now: time.Now}
}

// Build composes the page for one visitor. A render is a mount, so the wishes
// are fetched from the store first. photo >= 0 opens that photo in the
// preview overlay.
func (b *Builder) Build(ctx context.Context, visitor string, photo int) Page {
	c := b.details.Content
	bride, groom := c.Couple.Bride.FirstName(), c.Couple.Groom.FirstName()

	grid := gallery.NewGrid(c.Gallery)
	grid.Mount(&gallery.EagerWatcher{Count: b.eager})
	var preview *gallery.Cell
	if photo >= 0 && grid.Select(photo) == nil {
		if cell, ok := grid.Preview(); ok {
			preview = &cell
		}
	}

	var loadErr string
	if err := b.board.Load(ctx); err != nil {
		loadErr = errs.Public(err)
	}
	list := b.board.Wishes()
	views := make([]WishView, len(list))
	for i, w := range list {
		views[i] = WishView{Wish: w, LikedByMe: visitor != "" && w.HasLiked(visitor)}
	}

	tags := share.Hashtags(bride, groom, b.details.Date.Year())

	return Page{
		Title:       bride + " & " + groom + "'s Wedding",
		PageURL:     b.details.PageURL,
		Couple:      c.Couple,
		HeroImage:   c.HeroImage,
		WeddingDate: b.details.Date,
		Location:    b.details.Location,

		Countdown: countdown.Compute(b.details.Date, b.now()),
		Events:    c.Events,
		Story:     c.Story,

		Gallery:    grid.Cells(),
		RootMargin: gallery.RootMargin,
		Preview:    preview,

		RSVP:        rsvp.NewForm(),
		GuestCounts: models.GuestCounts,

		Wishes:        views,
		WishesLoading: b.board.Loading(),
		WishesEmpty:   loadErr == "" && len(views) == 0,
		WishesError:   loadErr,
		EmptyNotice:   wishes.EmptyNotice,

		Gifts: c.Gifts,
		Share: ShareView{
			Links:            share.Links(b.details.PageURL, bride, groom),
			Platforms:        share.Platforms,
			Hashtags:         tags,
			HashtagText:      share.HashtagText(tags),
			PopupFeatures:    share.PopupFeatures,
			CopiedResetAfter: share.CopiedResetAfter.Milliseconds(),
		},
	}
}
