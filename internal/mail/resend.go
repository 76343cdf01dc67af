package mail

import (
	"bytes"
	"context"
	"encoding/json"
	"html/template"
	"io"
	"net/http"

	"wedding-site/internal/config"
	"wedding-site/internal/errs"
)

var confirmationTmpl = template.Must(template.New("confirmation").Parse(`
<h2>Thank you for your RSVP!</h2>
<p>Dear {{.Name}},</p>
<p>We have received your RSVP with the following details:</p>
<ul>
  <li>Email: {{.To}}</li>
  <li>Attending: {{if .Attending}}Yes{{else}}No{{end}}</li>
  <li>Number of guests: {{.Guests}}</li>
  {{- if .Message}}
  <li>Your message: "{{.Message}}"</li>
  {{- end}}
</ul>
<p>We look forward to celebrating with you!</p>
`))

// RenderConfirmation renders the HTML body of the confirmation email.
func RenderConfirmation(p Payload) (string, error) {
	var buf bytes.Buffer
	if err := confirmationTmpl.Execute(&buf, p); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// ResendSender posts emails to the Resend API.
type ResendSender struct {
	url        string
	apiKey     string
	from       string
	subject    string
	overrideTo string
	client     *http.Client
}

func NewResendSender(cfg config.MailConfig, client *http.Client) *ResendSender {
	if client == nil {
		client = http.DefaultClient
	}
	return &ResendSender{
		url:        cfg.ResendURL,
		apiKey:     cfg.ResendAPIKey,
		from:       cfg.From,
		subject:    cfg.Subject,
		overrideTo: cfg.OverrideTo,
		client:     client,
	}
}

type resendEmail struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
}

// Recipient is the address the email actually goes to.
func (r *ResendSender) Recipient(p Payload) string {
	if r.overrideTo != "" {
		return r.overrideTo
	}
	return p.To
}

func (r *ResendSender) Send(ctx context.Context, p Payload) error {
	_, err := r.send(ctx, p)
	return err
}

// send returns Resend's response body so the relay can echo it.
func (r *ResendSender) send(ctx context.Context, p Payload) (json.RawMessage, error) {
	const op = "mail.ResendSender.Send"

	html, err := RenderConfirmation(p)
	if err != nil {
		return nil, errs.Wrap(errs.Function, op, err)
	}
	body, err := json.Marshal(resendEmail{
		From:    r.from,
		To:      []string{r.Recipient(p)},
		Subject: r.subject,
		HTML:    html,
	})
	if err != nil {
		return nil, errs.Wrap(errs.Function, op, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.url, bytes.NewReader(body))
	if err != nil {
		return nil, errs.Wrap(errs.Function, op, err)
	}
	req.Header.Set("Authorization", "Bearer "+r.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, errs.Wrap(errs.Function, op, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errs.Wrap(errs.Function, op, err)
	}
	if resp.StatusCode >= 300 {
		var apiErr struct {
			Message string `json:"message"`
		}
		if json.Unmarshal(data, &apiErr) == nil && apiErr.Message != "" {
			return nil, errs.Errorf(errs.Function, op, "%s", apiErr.Message)
		}
		return nil, errs.E(errs.Function, op, "Failed to send email")
	}
	if !json.Valid(data) {
		return nil, errs.Errorf(errs.Malformed, op, "invalid response body")
	}
	return data, nil
}
