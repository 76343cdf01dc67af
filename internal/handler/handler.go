// Package handler serves the invitation page and the JSON API behind it.
package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"wedding-site/internal/countdown"
	"wedding-site/internal/errs"
	"wedding-site/internal/rsvp"
	"wedding-site/internal/site"
	"wedding-site/internal/wishes"
)

// VisitorResolver turns a request address into the like identity.
type VisitorResolver interface {
	Visitor(ctx context.Context, clientIP string) string
}

// Pinger reports whether the row store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Config is the wedding information the handlers need.
type Config struct {
	WeddingDate time.Time
	PageURL     string
	BrideName   string
	GroomName   string
}

// Deps are the collaborators behind the handlers.
type Deps struct {
	Pages    *site.Builder
	Board    *wishes.Board
	RSVP     *rsvp.Service
	Store    Pinger
	Visitors VisitorResolver
	Frames   countdown.FrameScheduler
}

type Handler struct {
	cfg  Config
	deps Deps
	log  zerolog.Logger
	now  func() time.Time
}

func New(cfg Config, deps Deps, log zerolog.Logger) *Handler {
	return &Handler{
		cfg:  cfg,
		deps: deps,
		log:  log.With().Str("component", "http").Logger(),
		now:  time.Now,
	}
}

// fail writes the public message for err with the status its kind maps to.
func fail(c *gin.Context, err error) {
	_ = c.Error(err)
	c.JSON(errs.HTTPStatus(err), gin.H{"error": errs.Public(err)})
}

func (h *Handler) visitor(c *gin.Context) string {
	return h.deps.Visitors.Visitor(c.Request.Context(), c.ClientIP())
}

// Health pings the row store.
func (h *Handler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if err := h.deps.Store.Ping(ctx); err != nil {
		h.log.Warn().Err(err).Msg("Database connection failed")
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "database": "unreachable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "database": "connected"})
}

// WhoAmI returns the identity likes are recorded under.
func (h *Handler) WhoAmI(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ip": h.visitor(c)})
}
