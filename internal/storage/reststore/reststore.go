// Package reststore talks to a hosted PostgREST row store (the Supabase REST
// API) with the project's public key.
package reststore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"wedding-site/internal/errs"
	"wedding-site/internal/models"
)

const (
	rsvpTable   = "rsvp_responses"
	wishesTable = "wishes"
)

type Store struct {
	baseURL string
	key     string
	client  *http.Client
}

func New(baseURL, key string, client *http.Client) *Store {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &Store{
		baseURL: strings.TrimRight(baseURL, "/"),
		key:     key,
		client:  client,
	}
}

// apiError is the PostgREST error body.
type apiError struct {
	Message string `json:"message"`
	Code    string `json:"code"`
	Details string `json:"details"`
	Hint    string `json:"hint"`
}

type rsvpInsert struct {
	Name      string `json:"name"`
	Email     string `json:"email"`
	Attending bool   `json:"attending"`
	Guests    int    `json:"guests"`
	Message   string `json:"message"`
}

func (s *Store) InsertRSVP(ctx context.Context, r *models.RSVPResponse) error {
	row := []rsvpInsert{{
		Name:      r.Name,
		Email:     r.Email,
		Attending: r.Attending,
		Guests:    r.Guests,
		Message:   r.Message,
	}}
	_, err := s.do(ctx, "reststore.InsertRSVP", http.MethodPost, rsvpTable, nil, row, "return=minimal")
	return err
}

func (s *Store) ListRSVPs(ctx context.Context) ([]models.RSVPResponse, error) {
	q := url.Values{"select": {"*"}, "order": {"created_at.desc"}}
	body, err := s.do(ctx, "reststore.ListRSVPs", http.MethodGet, rsvpTable, q, nil, "")
	if err != nil {
		return nil, err
	}
	return models.ParseRSVPResponses(body)
}

func (s *Store) ListWishes(ctx context.Context) ([]models.Wish, error) {
	q := url.Values{"select": {"*"}, "order": {"created_at.desc"}}
	body, err := s.do(ctx, "reststore.ListWishes", http.MethodGet, wishesTable, q, nil, "")
	if err != nil {
		return nil, err
	}
	return models.ParseWishes(body)
}

// InsertWish inserts one row and reads back the representation the store
// generated, so the caller gets the id and created_at.
func (s *Store) InsertWish(ctx context.Context, nw models.NewWish) (models.Wish, error) {
	row := []models.NewWish{nw}
	body, err := s.do(ctx, "reststore.InsertWish", http.MethodPost, wishesTable, nil, row, "return=representation")
	if err != nil {
		return models.Wish{}, err
	}
	wishes, err := models.ParseWishes(body)
	if err != nil {
		return models.Wish{}, err
	}
	if len(wishes) != 1 {
		return models.Wish{}, errs.Errorf(errs.Malformed, "reststore.InsertWish", "expected 1 row, got %d", len(wishes))
	}
	return wishes[0], nil
}

func (s *Store) GetWish(ctx context.Context, id int64) (models.Wish, error) {
	q := url.Values{"select": {"*"}, "id": {fmt.Sprintf("eq.%d", id)}}
	body, err := s.do(ctx, "reststore.GetWish", http.MethodGet, wishesTable, q, nil, "")
	if err != nil {
		return models.Wish{}, err
	}
	wishes, err := models.ParseWishes(body)
	if err != nil {
		return models.Wish{}, err
	}
	if len(wishes) == 0 {
		return models.Wish{}, errs.E(errs.NotFound, "reststore.GetWish", fmt.Sprintf("wish %d not found", id))
	}
	return wishes[0], nil
}

// UpdateWishLikes patches likes and liked_by by id. The representation is
// requested only to detect a missing row.
func (s *Store) UpdateWishLikes(ctx context.Context, id int64, u models.LikeUpdate) error {
	if u.LikedBy == nil {
		u.LikedBy = []string{}
	}
	q := url.Values{"id": {fmt.Sprintf("eq.%d", id)}, "select": {"id"}}
	body, err := s.do(ctx, "reststore.UpdateWishLikes", http.MethodPatch, wishesTable, q, u, "return=representation")
	if err != nil {
		return err
	}
	var rows []struct {
		ID int64 `json:"id"`
	}
	if err := json.Unmarshal(body, &rows); err != nil {
		return errs.Wrap(errs.Malformed, "reststore.UpdateWishLikes", err)
	}
	if len(rows) == 0 {
		return errs.E(errs.NotFound, "reststore.UpdateWishLikes", fmt.Sprintf("wish %d not found", id))
	}
	return nil
}

// Ping selects a single id from the wishes table.
func (s *Store) Ping(ctx context.Context) error {
	q := url.Values{"select": {"id"}, "limit": {"1"}}
	_, err := s.do(ctx, "reststore.Ping", http.MethodGet, wishesTable, q, nil, "")
	return err
}

func (s *Store) Close() error {
	s.client.CloseIdleConnections()
	return nil
}

func (s *Store) do(ctx context.Context, op, method, table string, q url.Values, payload any, prefer string) ([]byte, error) {
	endpoint := s.baseURL + "/rest/v1/" + table
	if len(q) > 0 {
		endpoint += "?" + q.Encode()
	}

	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal payload: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, errs.Wrap(errs.Store, op, err)
	}
	req.Header.Set("apikey", s.key)
	req.Header.Set("Authorization", "Bearer "+s.key)
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if prefer != "" {
		req.Header.Set("Prefer", prefer)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, errs.Wrap(errs.Store, op, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errs.Wrap(errs.Store, op, err)
	}
	if resp.StatusCode >= 300 {
		var apiErr apiError
		if json.Unmarshal(data, &apiErr) == nil && apiErr.Message != "" {
			return nil, errs.Errorf(errs.Store, op, "%s (%s)", apiErr.Message, apiErr.Code)
		}
		return nil, errs.Errorf(errs.Store, op, "unexpected status %d", resp.StatusCode)
	}
	return data, nil
}
