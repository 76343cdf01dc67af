package handler

import (
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"wedding-site/internal/countdown"
)

type countdownResponse struct {
	countdown.State
	Target time.Time `json:"target"`
}

// Countdown returns the time left right now.
func (h *Handler) Countdown(c *gin.Context) {
	c.JSON(http.StatusOK, countdownResponse{
		State:  countdown.Compute(h.cfg.WeddingDate, h.now()),
		Target: h.cfg.WeddingDate,
	})
}

// CountdownStream pushes a "countdown" event each time the timer commits.
// The timer lives as long as the connection; it ends after the zero state.
func (h *Handler) CountdownStream(c *gin.Context) {
	updates := make(chan countdown.State, 1)
	timer := countdown.NewTimer(h.cfg.WeddingDate, h.deps.Frames, h.now, func(s countdown.State) {
		// keep only the newest state
		select {
		case <-updates:
		default:
		}
		updates <- s
	})
	timer.Start()
	defer timer.Stop()

	c.Header("Cache-Control", "no-cache")
	c.Header("X-Accel-Buffering", "no")

	ctx := c.Request.Context()
	c.Stream(func(w io.Writer) bool {
		select {
		case <-ctx.Done():
			return false
		case s := <-updates:
			c.SSEvent("countdown", s)
			return !s.Zero()
		}
	})
}
