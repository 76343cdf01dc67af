package mail

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wedding-site/internal/config"
	"wedding-site/internal/errs"
)

var payload = Payload{To: "dana@example.com", Name: "Dana", Attending: true, Guests: 2, Message: "Can't wait"}

func TestFunctionSender(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		wantKind errs.Kind
	}{
		{name: "success", status: http.StatusOK, body: `{"success":true,"data":{"id":"abc"}}`},
		{name: "function error", status: http.StatusBadRequest, body: `{"error":"domain not verified"}`, wantKind: errs.Function},
		{name: "server error without body", status: http.StatusInternalServerError, body: `oops`, wantKind: errs.Function},
		{name: "garbage on 200", status: http.StatusOK, body: `oops`, wantKind: errs.Malformed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got Payload
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, FunctionPath, r.URL.Path)
				assert.Equal(t, "Bearer key", r.Header.Get("Authorization"))
				_ = json.NewDecoder(r.Body).Decode(&got)
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			}))
			defer srv.Close()

			err := NewFunctionSender(srv.URL+"/", "key", srv.Client()).Send(context.Background(), payload)
			assert.Equal(t, payload, got)
			if tt.wantKind == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, tt.wantKind, errs.KindOf(err))
		})
	}
}

func resendServer(t *testing.T, status int, reply string) (*httptest.Server, *resendEmail) {
	t.Helper()
	got := &resendEmail{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer re_test", r.Header.Get("Authorization"))
		_ = json.NewDecoder(r.Body).Decode(got)
		w.WriteHeader(status)
		_, _ = io.WriteString(w, reply)
	}))
	t.Cleanup(srv.Close)
	return srv, got
}

func resendConfig(url, override string) config.MailConfig {
	return config.MailConfig{
		Driver:       "resend",
		ResendAPIKey: "re_test",
		ResendURL:    url,
		From:         "onboarding@resend.dev",
		Subject:      "Wedding RSVP Confirmation",
		OverrideTo:   override,
	}
}

func TestResendSender(t *testing.T) {
	t.Run("guest address", func(t *testing.T) {
		srv, got := resendServer(t, http.StatusOK, `{"id":"123"}`)
		s := NewResendSender(resendConfig(srv.URL, ""), srv.Client())

		require.NoError(t, s.Send(context.Background(), payload))
		assert.Equal(t, []string{"dana@example.com"}, got.To)
		assert.Equal(t, "Wedding RSVP Confirmation", got.Subject)
		assert.Contains(t, got.HTML, "Dear Dana,")
		assert.Contains(t, got.HTML, "Number of guests: 2")
	})

	t.Run("override address", func(t *testing.T) {
		srv, got := resendServer(t, http.StatusOK, `{"id":"123"}`)
		s := NewResendSender(resendConfig(srv.URL, "verified@example.com"), srv.Client())

		require.NoError(t, s.Send(context.Background(), payload))
		assert.Equal(t, []string{"verified@example.com"}, got.To)
		assert.Contains(t, got.HTML, "dana@example.com")
	})

	t.Run("api error", func(t *testing.T) {
		srv, _ := resendServer(t, http.StatusUnprocessableEntity, `{"message":"Invalid from address"}`)
		s := NewResendSender(resendConfig(srv.URL, ""), srv.Client())

		err := s.Send(context.Background(), payload)
		require.Error(t, err)
		assert.True(t, errs.Is(err, errs.Function))
		assert.Equal(t, "Invalid from address", errs.Reason(err))
	})
}

func TestRenderConfirmation(t *testing.T) {
	html, err := RenderConfirmation(Payload{Name: "<b>Eve</b>", To: "eve@example.com", Guests: 1})
	require.NoError(t, err)
	assert.Contains(t, html, "Attending: No")
	assert.NotContains(t, html, "<b>Eve</b>")
	assert.NotContains(t, html, "Your message")
}

func TestRelayHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)

	newRouter := func(url string, client *http.Client) *gin.Engine {
		r := gin.New()
		h := RelayHandler(NewResendSender(resendConfig(url, ""), client), zerolog.Nop())
		r.POST(FunctionPath, h)
		r.OPTIONS(FunctionPath, h)
		return r
	}

	t.Run("preflight", func(t *testing.T) {
		r := newRouter("http://unused", nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodOptions, FunctionPath, nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "ok", w.Body.String())
		assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("forwards to resend", func(t *testing.T) {
		srv, got := resendServer(t, http.StatusOK, `{"id":"123"}`)
		r := newRouter(srv.URL, srv.Client())

		body, _ := json.Marshal(payload)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, FunctionPath, strings.NewReader(string(body))))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"success":true,"data":{"id":"123"}}`, w.Body.String())
		assert.Equal(t, []string{"dana@example.com"}, got.To)
	})

	t.Run("resend failure", func(t *testing.T) {
		srv, _ := resendServer(t, http.StatusForbidden, `{"message":"API key is invalid"}`)
		r := newRouter(srv.URL, srv.Client())

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, FunctionPath, strings.NewReader(`{"to":"a@b.c","name":"A","guests":1}`)))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.JSONEq(t, `{"error":"API key is invalid"}`, w.Body.String())
	})

	t.Run("bad body", func(t *testing.T) {
		r := newRouter("http://unused", nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, FunctionPath, strings.NewReader(`{`)))
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestNewFallsBackToLogSender(t *testing.T) {
	s := New(config.MailConfig{Driver: "function"}, "", "", nil, zerolog.Nop())
	assert.IsType(t, LogSender{}, s)
	assert.NoError(t, s.Send(context.Background(), payload))

	s = New(config.MailConfig{Driver: "function"}, "https://x.supabase.co", "k", nil, zerolog.Nop())
	assert.IsType(t, &FunctionSender{}, s)
}
