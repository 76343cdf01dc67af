package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"wedding-site/internal/errs"
	"wedding-site/internal/models"
	"wedding-site/internal/rsvp"
)

// SubmitRSVP stores an RSVP and sends its confirmation email.
func (h *Handler) SubmitRSVP(c *gin.Context) {
	form := rsvp.NewForm()
	if err := c.ShouldBindJSON(&form); err != nil {
		fail(c, errs.Wrap(errs.Invalid, "handler.SubmitRSVP", err))
		return
	}

	n, err := h.deps.RSVP.Submit(c.Request.Context(), form)
	if err != nil {
		_ = c.Error(err)
		c.JSON(errs.HTTPStatus(err), gin.H{"error": n.Message})
		return
	}
	c.JSON(http.StatusOK, n)
}

// RSVPForm returns the values an empty form starts with.
func (h *Handler) RSVPForm(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"form":         rsvp.NewForm(),
		"guest_counts": models.GuestCounts,
	})
}
