package models

import (
	"encoding/json"
	"time"

	"wedding-site/internal/errs"
)

// GuestCounts are the party sizes a guest may pick on the form.
var GuestCounts = []int{1, 2, 3, 4}

// RSVPResponse is one attendance answer submitted from the site.
type RSVPResponse struct {
	ID        int64     `json:"id,omitempty" gorm:"primaryKey;autoIncrement"`
	Name      string    `json:"name" gorm:"not null" validate:"required"`
	Email     string    `json:"email" gorm:"not null" validate:"required,email"`
	Attending bool      `json:"attending"`
	Guests    int       `json:"guests" gorm:"not null" validate:"oneof=1 2 3 4"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at,omitempty"`
}

// RSVPStatus mirrors the attendance flag for listing and filtering.
type RSVPStatus string

const (
	RSVPAccepted RSVPStatus = "accepted"
	RSVPDeclined RSVPStatus = "declined"
)

// Status maps the attending flag to a status.
func (r RSVPResponse) Status() RSVPStatus {
	if r.Attending {
		return RSVPAccepted
	}
	return RSVPDeclined
}

// ParseRSVPResponses decodes rows read back by the operator console.
func ParseRSVPResponses(data []byte) ([]RSVPResponse, error) {
	var rows []RSVPResponse
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, errs.Wrap(errs.Malformed, "rsvp.parse", err)
	}
	return rows, nil
}

// TableName matches the row store's table.
func (RSVPResponse) TableName() string { return "rsvp_responses" }
