// Package wishes holds the guestbook: the ordered list of wishes, submitting
// new ones and the per-visitor like toggle.
package wishes

import (
	"context"
	"errors"
	"slices"
	"sync"

	"github.com/rs/zerolog"

	"wedding-site/internal/errs"
	"wedding-site/internal/models"
	"wedding-site/internal/storage"
)

var (
	// ErrBusy is returned while another toggle on the same wish is in flight.
	ErrBusy = errs.E(errs.Conflict, "wishes.ToggleLike", "Still updating this wish")
)

const (
	SubmittedNotice = "Thank you for your wishes! 💝"
	LikedNotice     = "Thanks for your love! 💝"
	UnlikedNotice   = "Like removed"
	EmptyNotice     = "Be the first to send your wishes!"
)

// LikeResult is the outcome of a toggle.
type LikeResult struct {
	Wish  models.Wish `json:"wish"`
	Liked bool        `json:"liked"`
}

// Notice is the message shown after the toggle.
func (r LikeResult) Notice() string {
	if r.Liked {
		return LikedNotice
	}
	return UnlikedNotice
}

// Board owns the wishes list shown on the page, newest first.
type Board struct {
	store  storage.WishStore
	locker Locker
	log    zerolog.Logger

	mu      sync.RWMutex
	wishes  []models.Wish
	loading bool
}

func NewBoard(store storage.WishStore, locker Locker, log zerolog.Logger) *Board {
	if locker == nil {
		locker = NewMemoryLocker()
	}
	return &Board{
		store:  store,
		locker: locker,
		log:    log.With().Str("component", "wishes").Logger(),
		wishes: []models.Wish{},
	}
}

// Load replaces the list with the store's contents. On failure the current
// list is kept.
func (b *Board) Load(ctx context.Context) error {
	b.mu.Lock()
	b.loading = true
	b.mu.Unlock()

	list, err := b.store.ListWishes(ctx)

	b.mu.Lock()
	defer b.mu.Unlock()
	b.loading = false
	if err != nil {
		b.log.Error().Err(err).Msg("Error fetching wishes")
		return errs.E(errs.Store, "wishes.Load", "Failed to load wishes")
	}
	b.wishes = list
	return nil
}

func (b *Board) Loading() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.loading
}

func (b *Board) Empty() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.wishes) == 0
}

// Wishes returns a copy of the list.
func (b *Board) Wishes() []models.Wish {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]models.Wish, len(b.wishes))
	for i, w := range b.wishes {
		w.LikedBy = slices.Clone(w.LikedBy)
		out[i] = w
	}
	return out
}

// Submit stores a new wish and puts the stored record at the head of the
// list. The list is not re-fetched.
func (b *Board) Submit(ctx context.Context, nw models.NewWish) (models.Wish, error) {
	nw, err := nw.Normalize()
	if err != nil {
		return models.Wish{}, err
	}

	w, err := b.store.InsertWish(ctx, nw)
	if err != nil {
		b.log.Error().Err(err).Msg("Error submitting wish")
		return models.Wish{}, errs.E(errs.Store, "wishes.Submit", "Failed to submit wish")
	}

	b.mu.Lock()
	b.wishes = prepend(b.wishes, w)
	b.mu.Unlock()

	b.log.Info().Int64("wish_id", w.ID).Str("name", w.Name).Msg("Wish submitted")
	return w, nil
}

// ToggleLike adds visitor to the likers of wish id, or removes them if they
// already liked it. Only one toggle per wish runs at a time. An empty visitor
// is an unresolved identity and always counts as not yet liked.
func (b *Board) ToggleLike(ctx context.Context, id int64, visitor string) (LikeResult, error) {
	if visitor == "" {
		b.log.Warn().Int64("wish_id", id).Msg("Toggling like without a visitor identity")
	}

	unlock, ok, err := b.locker.TryLock(ctx, id)
	if err != nil {
		b.log.Error().Err(err).Int64("wish_id", id).Msg("Error acquiring like lock")
		return LikeResult{}, errs.Wrap(errs.Store, "wishes.ToggleLike", err)
	}
	if !ok {
		return LikeResult{}, ErrBusy
	}
	defer unlock()

	current, err := b.store.GetWish(ctx, id)
	if err != nil {
		if errs.Is(err, errs.NotFound) {
			return LikeResult{}, err
		}
		b.log.Error().Err(err).Int64("wish_id", id).Msg("Error updating like")
		return LikeResult{}, errs.E(errs.Store, "wishes.ToggleLike", "Failed to update like")
	}

	updated, liked := Toggle(current, visitor)
	err = b.store.UpdateWishLikes(ctx, id, models.LikeUpdate{Likes: updated.Likes, LikedBy: updated.LikedBy})
	if err != nil {
		b.log.Error().Err(err).Int64("wish_id", id).Msg("Error updating like")
		if errors.Is(err, context.Canceled) || errs.Is(err, errs.NotFound) {
			return LikeResult{}, err
		}
		return LikeResult{}, errs.E(errs.Store, "wishes.ToggleLike", "Failed to update like")
	}

	b.mu.Lock()
	b.wishes = replace(b.wishes, updated)
	b.mu.Unlock()

	return LikeResult{Wish: updated, Liked: liked}, nil
}

// Toggle flips visitor's like on w and returns the new record and whether
// the visitor now likes it. w is not modified. The empty visitor never
// counts as having liked, so each of its toggles adds a like.
func Toggle(w models.Wish, visitor string) (models.Wish, bool) {
	if visitor != "" && w.HasLiked(visitor) {
		likedBy := make([]string, 0, len(w.LikedBy))
		for _, v := range w.LikedBy {
			if v != visitor {
				likedBy = append(likedBy, v)
			}
		}
		w.LikedBy = likedBy
		w.Likes--
		return w, false
	}
	w.LikedBy = append(slices.Clone(w.LikedBy), visitor)
	w.Likes++
	return w, true
}

// prepend returns a new list with w at the head.
func prepend(list []models.Wish, w models.Wish) []models.Wish {
	out := make([]models.Wish, 0, len(list)+1)
	out = append(out, w)
	return append(out, list...)
}

// replace returns a new list with the entry of the same id swapped for w.
// Entries with other ids are untouched.
func replace(list []models.Wish, w models.Wish) []models.Wish {
	out := make([]models.Wish, len(list))
	for i, cur := range list {
		if cur.ID == w.ID {
			cur = w
		}
		out[i] = cur
	}
	return out
}
