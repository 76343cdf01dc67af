// Package iplookup resolves the visitor identity used to deduplicate likes.
package iplookup

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"sync"

	"github.com/rs/zerolog"

	"wedding-site/internal/errs"
)

// Resolver fetches the public address once and caches it. A failed lookup is
// not cached, so the next call tries again.
type Resolver struct {
	url    string
	client *http.Client
	log    zerolog.Logger

	mu sync.Mutex
	ip string
}

func New(url string, client *http.Client, log zerolog.Logger) *Resolver {
	if client == nil {
		client = http.DefaultClient
	}
	return &Resolver{
		url:    url,
		client: client,
		log:    log.With().Str("component", "iplookup").Logger(),
	}
}

// PublicIP returns the cached address or looks it up. Failure yields "".
func (r *Resolver) PublicIP(ctx context.Context) string {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.ip != "" {
		return r.ip
	}
	ip, err := r.fetch(ctx)
	if err != nil {
		r.log.Warn().Err(err).Msg("Error fetching IP")
		return ""
	}
	r.ip = ip
	return ip
}

func (r *Resolver) fetch(ctx context.Context) (string, error) {
	const op = "iplookup.fetch"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.url, nil)
	if err != nil {
		return "", errs.Wrap(errs.Network, op, err)
	}
	resp, err := r.client.Do(req)
	if err != nil {
		return "", errs.Wrap(errs.Network, op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", errs.Errorf(errs.Network, op, "unexpected status %d", resp.StatusCode)
	}
	var body struct {
		IP string `json:"ip"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", errs.Wrap(errs.Malformed, op, err)
	}
	if net.ParseIP(body.IP) == nil {
		return "", errs.Errorf(errs.Malformed, op, "not an address: %q", body.IP)
	}
	return body.IP, nil
}

// Visitor picks the identity for a request: the client address when it is
// public, otherwise the server's own public address.
func (r *Resolver) Visitor(ctx context.Context, clientIP string) string {
	ip := net.ParseIP(clientIP)
	if ip != nil && !ip.IsLoopback() && !ip.IsPrivate() && !ip.IsUnspecified() {
		return ip.String()
	}
	return r.PublicIP(ctx)
}
