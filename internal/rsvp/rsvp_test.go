package rsvp

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wedding-site/internal/errs"
	"wedding-site/internal/mail"
	"wedding-site/internal/models"
)

type fakeStore struct {
	mu    sync.Mutex
	rows  []models.RSVPResponse
	err   error
	gate  chan struct{}
	entry chan struct{}
}

func (f *fakeStore) InsertRSVP(_ context.Context, r *models.RSVPResponse) error {
	if f.entry != nil {
		f.entry <- struct{}{}
	}
	if f.gate != nil {
		<-f.gate
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	r.ID = int64(len(f.rows) + 1)
	f.rows = append(f.rows, *r)
	return nil
}

func (f *fakeStore) ListRSVPs(context.Context) ([]models.RSVPResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.RSVPResponse(nil), f.rows...), nil
}

type fakeSender struct {
	mu   sync.Mutex
	sent []mail.Payload
	err  error
}

func (f *fakeSender) Send(_ context.Context, p mail.Payload) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, p)
	return f.err
}

type fakeNotifier struct {
	got []models.RSVPResponse
	err error
}

func (f *fakeNotifier) NotifyRSVP(_ context.Context, r models.RSVPResponse) error {
	f.got = append(f.got, r)
	return f.err
}

func validForm() models.RSVPResponse {
	r := NewForm()
	r.Name = "Dana"
	r.Email = "dana@example.com"
	return r
}

func TestNewFormDefaults(t *testing.T) {
	r := NewForm()
	assert.True(t, r.Attending)
	assert.Equal(t, 1, r.Guests)
	assert.Empty(t, r.Name)
}

func TestSubmitValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*models.RSVPResponse)
		msg    string
	}{
		{name: "empty name", mutate: func(r *models.RSVPResponse) { r.Name = "" }, msg: "Please enter your name"},
		{name: "blank name", mutate: func(r *models.RSVPResponse) { r.Name = "   " }, msg: "Please enter your name"},
		{name: "empty email", mutate: func(r *models.RSVPResponse) { r.Email = "" }, msg: "Please enter a valid email address"},
		{name: "bad email", mutate: func(r *models.RSVPResponse) { r.Email = "dana" }, msg: "Please enter a valid email address"},
		{name: "zero guests", mutate: func(r *models.RSVPResponse) { r.Guests = 0 }, msg: "Number of guests must be between 1 and 4"},
		{name: "five guests", mutate: func(r *models.RSVPResponse) { r.Guests = 5 }, msg: "Number of guests must be between 1 and 4"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, sender := &fakeStore{}, &fakeSender{}
			svc := NewService(store, sender, zerolog.Nop())

			r := validForm()
			tt.mutate(&r)
			n, err := svc.Submit(context.Background(), r)

			require.Error(t, err)
			assert.True(t, errs.Is(err, errs.Invalid))
			assert.False(t, n.Success)
			assert.Equal(t, tt.msg, n.Message)
			assert.Empty(t, store.rows, "no store call")
			assert.Empty(t, sender.sent, "no email call")
		})
	}
}

func TestSubmitAcceptsEveryGuestCount(t *testing.T) {
	for _, g := range models.GuestCounts {
		store, sender := &fakeStore{}, &fakeSender{}
		r := validForm()
		r.Guests = g

		n, err := NewService(store, sender, zerolog.Nop()).Submit(context.Background(), r)
		require.NoError(t, err, "guests=%d", g)
		assert.True(t, n.Success)
		require.Len(t, sender.sent, 1)
		assert.Equal(t, g, sender.sent[0].Guests)
	}
}

func TestSubmitSuccess(t *testing.T) {
	store, sender, notifier := &fakeStore{}, &fakeSender{}, &fakeNotifier{err: errors.New("offline")}
	svc := NewService(store, sender, zerolog.Nop()).WithNotifier(notifier)

	r := validForm()
	r.Attending = false
	r.Message = "Sorry!"
	n, err := svc.Submit(context.Background(), r)

	require.NoError(t, err)
	assert.Equal(t, Notification{Success: true, Message: SuccessNotice}, n)
	require.Len(t, store.rows, 1)
	assert.Equal(t, []mail.Payload{{To: "dana@example.com", Name: "Dana", Attending: false, Guests: 1, Message: "Sorry!"}}, sender.sent)
	require.Len(t, notifier.got, 1, "notifier failure does not fail the RSVP")
	assert.Equal(t, int64(1), notifier.got[0].ID)
}

func TestSubmitStoreFailureSkipsEmail(t *testing.T) {
	store, sender := &fakeStore{err: errs.E(errs.Store, "fake", "insert failed")}, &fakeSender{}
	n, err := NewService(store, sender, zerolog.Nop()).Submit(context.Background(), validForm())

	require.Error(t, err)
	assert.True(t, errs.Is(err, errs.Store))
	assert.Equal(t, FailureNotice, n.Message)
	assert.Empty(t, sender.sent)
}

func TestSubmitEmailFailureKeepsRow(t *testing.T) {
	store := &fakeStore{}
	sender := &fakeSender{err: errs.E(errs.Function, "fake", "relay down")}
	notifier := &fakeNotifier{}
	svc := NewService(store, sender, zerolog.Nop()).WithNotifier(notifier)

	n, err := svc.Submit(context.Background(), validForm())

	require.Error(t, err)
	assert.True(t, errs.Is(err, errs.Function))
	assert.Equal(t, "Failed to send confirmation email", n.Message)
	assert.Len(t, store.rows, 1, "stored row is not reverted")
	assert.Empty(t, notifier.got)

	// the guard was released
	sender.err = nil
	_, err = svc.Submit(context.Background(), validForm())
	assert.NoError(t, err)
}

func TestSubmitInFlight(t *testing.T) {
	store := &fakeStore{gate: make(chan struct{}), entry: make(chan struct{}, 2)}
	sender := &fakeSender{}
	svc := NewService(store, sender, zerolog.Nop())

	done := make(chan error, 1)
	go func() {
		_, err := svc.Submit(context.Background(), validForm())
		done <- err
	}()
	<-store.entry

	r := validForm()
	r.Email = "DANA@example.com"
	_, err := svc.Submit(context.Background(), r)
	assert.ErrorIs(t, err, ErrInFlight)

	close(store.gate)
	require.NoError(t, <-done)
	assert.Len(t, sender.sent, 1)
}
