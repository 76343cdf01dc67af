// Package filestore keeps RSVPs and wishes in a single JSON file. It suits a
// single server instance and local development.
package filestore

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"wedding-site/internal/errs"
	"wedding-site/internal/models"
)

type snapshot struct {
	RSVPs      []models.RSVPResponse `json:"rsvp_responses"`
	Wishes     []models.Wish         `json:"wishes"`
	NextRSVPID int64                 `json:"next_rsvp_id"`
	NextWishID int64                 `json:"next_wish_id"`
}

type Store struct {
	mu   sync.RWMutex
	data snapshot
	file string
	now  func() time.Time
}

// New creates a new storage instance
func New(filePath string) (*Store, error) {
	s := &Store{
		data: snapshot{NextRSVPID: 1, NextWishID: 1},
		file: filePath,
		now:  time.Now,
	}

	// Load existing data if file exists
	if _, err := os.Stat(filePath); err == nil {
		if err := s.Load(); err != nil {
			return nil, fmt.Errorf("failed to load storage: %w", err)
		}
	}

	return s, nil
}

// InsertRSVP appends a response and assigns its id and timestamp.
func (s *Store) InsertRSVP(_ context.Context, r *models.RSVPResponse) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	row := *r
	row.ID = s.data.NextRSVPID
	row.CreatedAt = s.now()
	s.data.NextRSVPID++
	s.data.RSVPs = append(s.data.RSVPs, row)
	if err := s.Save(); err != nil {
		s.data.RSVPs = s.data.RSVPs[:len(s.data.RSVPs)-1]
		s.data.NextRSVPID--
		return errs.Wrap(errs.Store, "filestore.InsertRSVP", err)
	}
	r.ID, r.CreatedAt = row.ID, row.CreatedAt
	return nil
}

// ListRSVPs returns responses newest first.
func (s *Store) ListRSVPs(context.Context) ([]models.RSVPResponse, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows := make([]models.RSVPResponse, len(s.data.RSVPs))
	copy(rows, s.data.RSVPs)
	slices.Reverse(rows)
	return rows, nil
}

// ListWishes returns every wish, newest first.
func (s *Store) ListWishes(context.Context) ([]models.Wish, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	wishes := make([]models.Wish, len(s.data.Wishes))
	for i, w := range s.data.Wishes {
		wishes[len(wishes)-1-i] = cloneWish(w)
	}
	return wishes, nil
}

// InsertWish stores a wish. Timestamps strictly increase so ordering by
// created_at matches insertion order.
func (s *Store) InsertWish(_ context.Context, nw models.NewWish) (models.Wish, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	created := s.now()
	if n := len(s.data.Wishes); n > 0 {
		if last := s.data.Wishes[n-1].CreatedAt; !created.After(last) {
			created = last.Add(time.Microsecond)
		}
	}
	w := models.Wish{
		ID:        s.data.NextWishID,
		Name:      nw.Name,
		Message:   nw.Message,
		CreatedAt: created,
		LikedBy:   []string{},
	}
	s.data.NextWishID++
	s.data.Wishes = append(s.data.Wishes, w)
	if err := s.Save(); err != nil {
		s.data.Wishes = s.data.Wishes[:len(s.data.Wishes)-1]
		s.data.NextWishID--
		return models.Wish{}, errs.Wrap(errs.Store, "filestore.InsertWish", err)
	}
	return cloneWish(w), nil
}

// GetWish retrieves a wish by id
func (s *Store) GetWish(_ context.Context, id int64) (models.Wish, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, w := range s.data.Wishes {
		if w.ID == id {
			return cloneWish(w), nil
		}
	}
	return models.Wish{}, errs.E(errs.NotFound, "filestore.GetWish", fmt.Sprintf("wish %d not found", id))
}

// UpdateWishLikes overwrites the like counter and likers of a wish.
func (s *Store) UpdateWishLikes(_ context.Context, id int64, u models.LikeUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, w := range s.data.Wishes {
		if w.ID == id {
			prev := w
			s.data.Wishes[i].Likes = u.Likes
			s.data.Wishes[i].LikedBy = slices.Clone(u.LikedBy)
			if err := s.Save(); err != nil {
				s.data.Wishes[i] = prev
				return errs.Wrap(errs.Store, "filestore.UpdateWishLikes", err)
			}
			return nil
		}
	}
	return errs.E(errs.NotFound, "filestore.UpdateWishLikes", fmt.Sprintf("wish %d not found", id))
}

// Ping checks that the data directory is still writable.
func (s *Store) Ping(context.Context) error {
	dir := filepath.Dir(s.file)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return errs.Wrap(errs.Store, "filestore.Ping", err)
	}
	return nil
}

// Close is a no-op; every write is flushed immediately.
func (s *Store) Close() error { return nil }

// Save saves the data to file. Callers hold the write lock.
func (s *Store) Save() error {
	data, err := json.MarshalIndent(s.data, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal data: %w", err)
	}

	// Ensure directory exists
	dir := filepath.Dir(s.file)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	tmp := s.file + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	return os.Rename(tmp, s.file)
}

// Load loads the data from file
func (s *Store) Load() error {
	data, err := os.ReadFile(s.file)
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}

	if len(data) == 0 {
		return nil
	}

	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return errs.Wrap(errs.Malformed, "filestore.Load", err)
	}
	for _, w := range snap.Wishes {
		if w.LikedBy == nil {
			w.LikedBy = []string{}
		}
		if err := w.Validate(); err != nil {
			return errs.Wrap(errs.Malformed, "filestore.Load", err)
		}
	}
	if snap.NextRSVPID < 1 {
		snap.NextRSVPID = 1
	}
	if snap.NextWishID < 1 {
		snap.NextWishID = 1
	}
	s.data = snap
	return nil
}

func cloneWish(w models.Wish) models.Wish {
	w.LikedBy = slices.Clone(w.LikedBy)
	if w.LikedBy == nil {
		w.LikedBy = []string{}
	}
	return w
}
