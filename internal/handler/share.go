package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/skip2/go-qrcode"

	"wedding-site/internal/share"
)

const qrSize = 256

// Share returns the share intents and hashtags for the page.
func (h *Handler) Share(c *gin.Context) {
	tags := share.Hashtags(h.cfg.BrideName, h.cfg.GroomName, h.cfg.WeddingDate.Year())
	c.JSON(http.StatusOK, gin.H{
		"links":           share.Links(h.cfg.PageURL, h.cfg.BrideName, h.cfg.GroomName),
		"message":         share.Message(h.cfg.BrideName, h.cfg.GroomName),
		"hashtags":        tags,
		"hashtag_text":    share.HashtagText(tags),
		"popup_features":  share.PopupFeatures,
		"copied_reset_ms": share.CopiedResetAfter.Milliseconds(),
	})
}

// ShareQR serves a QR code that opens the page.
func (h *Handler) ShareQR(c *gin.Context) {
	png, err := qrcode.Encode(h.cfg.PageURL, qrcode.Medium, qrSize)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to encode QR code")
		c.Status(http.StatusInternalServerError)
		return
	}
	c.Header("Cache-Control", "public, max-age=86400")
	c.Data(http.StatusOK, "image/png", png)
}
