// Package mail sends the RSVP confirmation email, either through the hosted
// email function or straight to the Resend API.
package mail

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"wedding-site/internal/config"
	"wedding-site/internal/errs"
)

// FunctionPath is where the hosted email function lives under the project URL.
const FunctionPath = "/functions/v1/send-rsvp-email"

// Payload is the body the email function accepts.
type Payload struct {
	To        string `json:"to"`
	Name      string `json:"name"`
	Attending bool   `json:"attending"`
	Guests    int    `json:"guests"`
	Message   string `json:"message"`
}

// Sender delivers one confirmation email.
type Sender interface {
	Send(ctx context.Context, p Payload) error
}

// New picks the sender for cfg.Driver. The function driver needs the project
// URL; without it confirmations are only logged.
func New(cfg config.MailConfig, projectURL, projectKey string, client *http.Client, log zerolog.Logger) Sender {
	log = log.With().Str("component", "mail").Str("driver", cfg.Driver).Logger()
	switch cfg.Driver {
	case "resend":
		if cfg.ResendAPIKey != "" {
			return NewResendSender(cfg, client)
		}
		log.Warn().Msg("RESEND_API_KEY is empty, confirmation emails are disabled")
	case "function":
		if projectURL != "" {
			return NewFunctionSender(projectURL, projectKey, client)
		}
		log.Warn().Msg("SUPABASE_URL is empty, confirmation emails are disabled")
	}
	return LogSender{Log: log}
}

// FunctionSender invokes the hosted send-rsvp-email function.
type FunctionSender struct {
	url    string
	key    string
	client *http.Client
}

func NewFunctionSender(projectURL, key string, client *http.Client) *FunctionSender {
	if client == nil {
		client = http.DefaultClient
	}
	return &FunctionSender{
		url:    strings.TrimRight(projectURL, "/") + FunctionPath,
		key:    key,
		client: client,
	}
}

// functionResult is either {"success":true,"data":...} or {"error":"..."}.
type functionResult struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

func (f *FunctionSender) Send(ctx context.Context, p Payload) error {
	const op = "mail.FunctionSender.Send"

	body, err := json.Marshal(p)
	if err != nil {
		return errs.Wrap(errs.Function, op, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, f.url, bytes.NewReader(body))
	if err != nil {
		return errs.Wrap(errs.Function, op, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if f.key != "" {
		req.Header.Set("Authorization", "Bearer "+f.key)
		req.Header.Set("apikey", f.key)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return errs.Wrap(errs.Function, op, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return errs.Wrap(errs.Function, op, err)
	}
	var res functionResult
	if err := json.Unmarshal(data, &res); err != nil {
		if resp.StatusCode >= 300 {
			return errs.Errorf(errs.Function, op, "unexpected status %d", resp.StatusCode)
		}
		return errs.Wrap(errs.Malformed, op, err)
	}
	if res.Error != "" {
		return errs.Errorf(errs.Function, op, "%s", res.Error)
	}
	if resp.StatusCode >= 300 || !res.Success {
		return errs.Errorf(errs.Function, op, "function returned status %d", resp.StatusCode)
	}
	return nil
}

// LogSender only logs the confirmation. It backs the "none" driver.
type LogSender struct {
	Log zerolog.Logger
}

func (l LogSender) Send(_ context.Context, p Payload) error {
	l.Log.Info().
		Str("to", p.To).
		Bool("attending", p.Attending).
		Int("guests", p.Guests).
		Msg("Confirmation email skipped")
	return nil
}

func describe(p Payload) string {
	return fmt.Sprintf("%s <%s> attending=%t guests=%d", p.Name, p.To, p.Attending, p.Guests)
}
