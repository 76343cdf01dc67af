package reststore

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wedding-site/internal/errs"
	"wedding-site/internal/models"
)

const testKey = "anon-key"

func newServer(t *testing.T, h http.HandlerFunc) *Store {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, testKey, r.Header.Get("apikey"))
		assert.Equal(t, "Bearer "+testKey, r.Header.Get("Authorization"))
		h(w, r)
	}))
	t.Cleanup(srv.Close)
	return New(srv.URL+"/", testKey, srv.Client())
}

func TestListWishes(t *testing.T) {
	s := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/rest/v1/wishes", r.URL.Path)
		assert.Equal(t, "created_at.desc", r.URL.Query().Get("order"))
		_, _ = io.WriteString(w, `[
			{"id":2,"name":"Alex","message":"Congrats","created_at":"2024-12-02T10:00:00Z","likes":1,"liked_by":["1.2.3.4"]},
			{"id":1,"name":"Dana","message":"Mazel tov","created_at":"2024-12-01T10:00:00Z","likes":0,"liked_by":null}
		]`)
	})

	wishes, err := s.ListWishes(context.Background())
	require.NoError(t, err)
	require.Len(t, wishes, 2)
	assert.Equal(t, int64(2), wishes[0].ID)
	assert.Equal(t, []string{}, wishes[1].LikedBy)
}

func TestListWishesMalformed(t *testing.T) {
	s := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `[{"id":1,"name":"x","message":"y","created_at":"2024-12-01T10:00:00Z","likes":3,"liked_by":[]}]`)
	})

	_, err := s.ListWishes(context.Background())
	assert.True(t, errs.Is(err, errs.Malformed))
}

func TestInsertWish(t *testing.T) {
	s := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "return=representation", r.Header.Get("Prefer"))

		var rows []models.NewWish
		require.NoError(t, json.NewDecoder(r.Body).Decode(&rows))
		require.Len(t, rows, 1)
		assert.Equal(t, "Dana", rows[0].Name)

		w.WriteHeader(http.StatusCreated)
		_, _ = io.WriteString(w, `[{"id":7,"name":"Dana","message":"Mazel tov","created_at":"2024-12-01T10:00:00Z","likes":0,"liked_by":[]}]`)
	})

	wish, err := s.InsertWish(context.Background(), models.NewWish{Name: "Dana", Message: "Mazel tov"})
	require.NoError(t, err)
	assert.Equal(t, int64(7), wish.ID)
	assert.False(t, wish.CreatedAt.IsZero())
}

func TestUpdateWishLikes(t *testing.T) {
	t.Run("updated", func(t *testing.T) {
		s := newServer(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPatch, r.Method)
			assert.Equal(t, "eq.5", r.URL.Query().Get("id"))

			var u models.LikeUpdate
			require.NoError(t, json.NewDecoder(r.Body).Decode(&u))
			assert.Equal(t, 1, u.Likes)
			assert.Equal(t, []string{"1.2.3.4"}, u.LikedBy)
			_, _ = io.WriteString(w, `[{"id":5}]`)
		})
		err := s.UpdateWishLikes(context.Background(), 5, models.LikeUpdate{Likes: 1, LikedBy: []string{"1.2.3.4"}})
		assert.NoError(t, err)
	})

	t.Run("missing row", func(t *testing.T) {
		s := newServer(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = io.WriteString(w, `[]`)
		})
		err := s.UpdateWishLikes(context.Background(), 5, models.LikeUpdate{})
		assert.True(t, errs.Is(err, errs.NotFound))
	})
}

func TestInsertRSVP(t *testing.T) {
	var got map[string]any
	s := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/rest/v1/rsvp_responses", r.URL.Path)
		assert.Equal(t, "return=minimal", r.Header.Get("Prefer"))
		var rows []map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&rows))
		got = rows[0]
		w.WriteHeader(http.StatusCreated)
	})

	err := s.InsertRSVP(context.Background(), &models.RSVPResponse{
		Name: "Dana", Email: "dana@example.com", Attending: true, Guests: 2,
	})
	require.NoError(t, err)
	assert.Equal(t, "dana@example.com", got["email"])
	assert.EqualValues(t, 2, got["guests"])
	assert.NotContains(t, got, "created_at")
	assert.NotContains(t, got, "id")
}

func TestStoreError(t *testing.T) {
	s := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = io.WriteString(w, `{"message":"new row violates row-level security policy","code":"42501"}`)
	})

	err := s.InsertRSVP(context.Background(), &models.RSVPResponse{Name: "a", Email: "a@b.c", Guests: 1})
	require.Error(t, err)
	assert.True(t, errs.Is(err, errs.Store))
	assert.Contains(t, err.Error(), "row-level security")
}

func TestGetWishNotFound(t *testing.T) {
	s := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `[]`)
	})
	_, err := s.GetWish(context.Background(), 3)
	assert.True(t, errs.Is(err, errs.NotFound))
}
