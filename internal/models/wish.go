package models

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"time"

	"wedding-site/internal/errs"
)

// Wish is a guestbook entry left on the site.
type Wish struct {
	ID        int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	Name      string    `json:"name" gorm:"not null"`
	Message   string    `json:"message" gorm:"not null"`
	CreatedAt time.Time `json:"created_at" gorm:"index"`
	Likes     int       `json:"likes" gorm:"not null;default:0"`
	LikedBy   []string  `json:"liked_by" gorm:"type:text;serializer:json"`
}

// NewWish is the payload for creating a wish. The store assigns the rest.
type NewWish struct {
	Name    string `json:"name" binding:"required"`
	Message string `json:"message" binding:"required"`
}

// Normalize trims both fields and reports whether either is blank.
func (n NewWish) Normalize() (NewWish, error) {
	n.Name = strings.TrimSpace(n.Name)
	n.Message = strings.TrimSpace(n.Message)
	if n.Name == "" || n.Message == "" {
		return n, errs.E(errs.Invalid, "wish.validate", "Please fill in all fields")
	}
	return n, nil
}

// HasLiked reports whether visitor is among the likers.
func (w Wish) HasLiked(visitor string) bool {
	return slices.Contains(w.LikedBy, visitor)
}

// Validate checks the invariants a stored wish must satisfy.
func (w Wish) Validate() error {
	if w.ID <= 0 {
		return fmt.Errorf("wish id %d is not positive", w.ID)
	}
	if w.CreatedAt.IsZero() {
		return fmt.Errorf("wish %d has no created_at", w.ID)
	}
	if w.Likes < 0 {
		return fmt.Errorf("wish %d has negative likes", w.ID)
	}
	if w.Likes != len(w.LikedBy) {
		return fmt.Errorf("wish %d has likes=%d but %d likers", w.ID, w.Likes, len(w.LikedBy))
	}
	return nil
}

// ParseWish decodes a single row returned by a store and validates it.
func ParseWish(data []byte) (Wish, error) {
	var w Wish
	if err := json.Unmarshal(data, &w); err != nil {
		return Wish{}, errs.Wrap(errs.Malformed, "wish.parse", err)
	}
	if w.LikedBy == nil {
		w.LikedBy = []string{}
	}
	if err := w.Validate(); err != nil {
		return Wish{}, errs.Wrap(errs.Malformed, "wish.parse", err)
	}
	return w, nil
}

// ParseWishes decodes an array of rows. A single bad row rejects the batch.
func ParseWishes(data []byte) ([]Wish, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, errs.Wrap(errs.Malformed, "wishes.parse", err)
	}
	wishes := make([]Wish, 0, len(raw))
	for _, r := range raw {
		w, err := ParseWish(r)
		if err != nil {
			return nil, err
		}
		wishes = append(wishes, w)
	}
	return wishes, nil
}

// LikeUpdate is the pair persisted by a like toggle.
type LikeUpdate struct {
	Likes   int      `json:"likes"`
	LikedBy []string `json:"liked_by"`
}

// TableName matches the row store's table.
func (Wish) TableName() string { return "wishes" }
