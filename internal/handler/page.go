package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// Page renders the invitation. ?photo=N opens that photo in the preview.
func (h *Handler) Page(c *gin.Context) {
	photo := -1
	if raw := c.Query("photo"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			photo = n
		}
	}
	c.HTML(http.StatusOK, "index.html", h.deps.Pages.Build(c.Request.Context(), h.visitor(c), photo))
}
