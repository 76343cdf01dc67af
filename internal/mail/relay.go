package mail

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"wedding-site/internal/errs"
)

var relayCORSHeaders = map[string]string{
	"Access-Control-Allow-Origin":  "*",
	"Access-Control-Allow-Headers": "authorization, x-client-info, apikey, content-type",
}

// RelayHandler serves the send-rsvp-email function itself: it accepts a
// Payload and forwards it to Resend.
func RelayHandler(sender *ResendSender, log zerolog.Logger) gin.HandlerFunc {
	log = log.With().Str("component", "mail-relay").Logger()

	return func(c *gin.Context) {
		for k, v := range relayCORSHeaders {
			c.Header(k, v)
		}
		if c.Request.Method == http.MethodOptions {
			c.String(http.StatusOK, "ok")
			return
		}

		var p Payload
		if err := c.ShouldBindJSON(&p); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		data, err := sender.send(c.Request.Context(), p)
		if err != nil {
			log.Error().Err(err).Str("rsvp", describe(p)).Msg("Relay failed")
			c.JSON(http.StatusBadRequest, gin.H{"error": errs.Reason(err)})
			return
		}
		log.Info().Str("rsvp", describe(p)).Str("to", sender.Recipient(p)).Msg("Confirmation sent")
		c.JSON(http.StatusOK, gin.H{"success": true, "data": data})
	}
}
