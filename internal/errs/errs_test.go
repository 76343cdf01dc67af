package errs

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKinds(t *testing.T) {
	cause := errors.New("connection refused")
	err := fmt.Errorf("loading: %w", Wrap(Store, "sqlstore.ListWishes", cause))

	assert.Equal(t, Store, KindOf(err))
	assert.True(t, Is(err, Store))
	assert.False(t, Is(err, Invalid))
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, Kind(""), KindOf(cause))
	assert.Nil(t, Wrap(Store, "op", nil))
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		kind Kind
		want int
	}{
		{Invalid, http.StatusBadRequest},
		{Conflict, http.StatusConflict},
		{NotFound, http.StatusNotFound},
		{Store, http.StatusBadGateway},
		{Function, http.StatusBadGateway},
		{Network, http.StatusBadGateway},
		{Malformed, http.StatusBadGateway},
	}
	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatus(E(tt.kind, "op", "msg")))
		})
	}
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(errors.New("boom")))
}

func TestPublic(t *testing.T) {
	assert.Equal(t, "Please enter your name", Public(E(Invalid, "rsvp.Validate", "Please enter your name")))
	assert.Equal(t, "Failed to send confirmation email", Public(Wrap(Function, "mail.Send", errors.New("500"))))
	assert.Equal(t, "Something went wrong. Please try again.", Public(errors.New("secret detail")))
}

func TestReason(t *testing.T) {
	assert.Equal(t, "Invalid `to` field", Reason(E(Function, "mail.Send", "Invalid `to` field")))
	assert.Equal(t, "timeout", Reason(Wrap(Network, "iplookup", errors.New("timeout"))))
	assert.Equal(t, "conflict", Reason(&Error{Kind: Conflict, Op: "op"}))
	assert.Equal(t, "plain", Reason(errors.New("plain")))
}

func TestErrorString(t *testing.T) {
	assert.Equal(t, "op: msg", E(Invalid, "op", "msg").Error())
	assert.Equal(t, "op: boom", Wrap(Store, "op", errors.New("boom")).Error())
	assert.Equal(t, "op: msg: boom", (&Error{Kind: Store, Op: "op", Msg: "msg", Err: errors.New("boom")}).Error())
}
