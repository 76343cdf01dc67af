package handler

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"wedding-site/internal/logging"
	"wedding-site/internal/mail"
	"wedding-site/internal/site"
)

// RouterConfig holds what the router needs beyond the handlers.
type RouterConfig struct {
	AllowedOrigins []string
	MediaDir       string
	// TrustedProxies are the addresses whose X-Forwarded-For is believed when
	// resolving the client IP. Empty keeps gin's default.
	TrustedProxies []string
	// Relay, when set, serves the email function at mail.FunctionPath.
	Relay gin.HandlerFunc
}

// Router registers every route.
func (h *Handler) Router(rc RouterConfig) *gin.Engine {
	r := gin.New()
	if len(rc.TrustedProxies) > 0 {
		if err := r.SetTrustedProxies(rc.TrustedProxies); err != nil {
			h.log.Error().Err(err).Strs("proxies", rc.TrustedProxies).Msg("Invalid trusted proxies, forwarded headers are ignored")
			_ = r.SetTrustedProxies(nil)
		}
	}
	r.Use(gin.Recovery(), logging.Middleware(h.log))
	corsCfg := cors.Config{
		AllowOrigins:  rc.AllowedOrigins,
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders: []string{"Content-Length", logging.RequestIDHeader},
		MaxAge:        12 * time.Hour,
	}
	if len(corsCfg.AllowOrigins) == 0 {
		corsCfg.AllowAllOrigins = true
	}
	r.Use(cors.New(corsCfg))

	r.SetHTMLTemplate(site.Templates())
	r.StaticFS("/static", http.FS(site.Static()))
	if rc.MediaDir != "" {
		r.Static("/media", rc.MediaDir)
	}

	r.GET("/", h.Page)
	r.GET("/share/qr.png", h.ShareQR)

	api := r.Group("/api")
	{
		api.GET("/health", h.Health)
		api.GET("/whoami", h.WhoAmI)

		api.GET("/countdown", h.Countdown)
		api.GET("/countdown/stream", h.CountdownStream)

		api.GET("/rsvp", h.RSVPForm)
		api.POST("/rsvp", h.SubmitRSVP)

		api.GET("/wishes", h.ListWishes)
		api.POST("/wishes", h.SubmitWish)
		api.POST("/wishes/:id/like", h.ToggleLike)

		api.GET("/share", h.Share)
	}

	if rc.Relay != nil {
		r.POST(mail.FunctionPath, rc.Relay)
		r.OPTIONS(mail.FunctionPath, rc.Relay)
	}

	return r
}
