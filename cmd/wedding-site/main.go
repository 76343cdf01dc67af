package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"wedding-site/internal/config"
	"wedding-site/internal/countdown"
	"wedding-site/internal/handler"
	"wedding-site/internal/iplookup"
	"wedding-site/internal/logging"
	"wedding-site/internal/mail"
	"wedding-site/internal/rsvp"
	"wedding-site/internal/site"
	"wedding-site/internal/storage"
	"wedding-site/internal/whatsapp"
	"wedding-site/internal/wishes"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		bootLog := logging.New("info", "console")
		bootLog.Fatal().Err(err).Msg("Error loading configuration")
	}
	log := logging.New(cfg.LogLevel, cfg.LogFormat)
	if cfg.IsProd() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("Server stopped")
	}
	log.Info().Msg("Goodbye! 👋")
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	store, err := storage.Open(cfg.Store, cfg.HTTPTimeout, log)
	if err != nil {
		return err
	}
	defer store.Close()

	client := &http.Client{Timeout: cfg.HTTPTimeout}
	sender := mail.New(cfg.Mail, cfg.Store.SupabaseURL, cfg.Store.SupabaseKey, client, log)

	locker, closeLocker, err := openLocker(ctx, cfg.Redis, log)
	if err != nil {
		return err
	}
	defer closeLocker()

	board := wishes.NewBoard(store, locker, log)

	service := rsvp.NewService(store, sender, log)
	if wa := openWhatsApp(ctx, cfg, log); wa != nil {
		defer wa.Disconnect()
		service.WithNotifier(whatsapp.NewRSVPNotifier(wa, whatsapp.NormalizePhoneNumber(cfg.WhatsAppNotifyTo)))
	}

	frames := countdown.NewTickerScheduler(time.Second / 60)
	defer frames.Close()

	bride, groom := cfg.Content.Couple.Bride.FirstName(), cfg.Content.Couple.Groom.FirstName()
	pages := site.NewBuilder(site.Details{
		Date:     cfg.WeddingDate,
		Location: cfg.WeddingLocation,
		PageURL:  cfg.PublicURL,
		Content:  cfg.Content,
	}, board, cfg.GalleryEager)

	h := handler.New(handler.Config{
		WeddingDate: cfg.WeddingDate,
		PageURL:     cfg.PublicURL,
		BrideName:   bride,
		GroomName:   groom,
	}, handler.Deps{
		Pages:    pages,
		Board:    board,
		RSVP:     service,
		Store:    store,
		Visitors: iplookup.New(cfg.IPLookupURL, client, log),
		Frames:   frames,
	}, log)

	rc := handler.RouterConfig{
		AllowedOrigins: cfg.AllowedOrigins,
		MediaDir:       cfg.MediaDir,
		TrustedProxies: cfg.TrustedProxies,
	}
	if cfg.Mail.Driver == "resend" && cfg.Mail.ResendAPIKey != "" {
		rc.Relay = mail.RelayHandler(mail.NewResendSender(cfg.Mail, client), log)
	}

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           h.Router(rc),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().Str("addr", cfg.Addr).Str("url", cfg.PublicURL).Msg("Wedding site listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		log.Info().Msg("Shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// openLocker uses Redis when an address is configured so that several
// instances share like locks.
func openLocker(ctx context.Context, cfg config.RedisConfig, log zerolog.Logger) (wishes.Locker, func(), error) {
	if cfg.Address == "" {
		return wishes.NewMemoryLocker(), func() {}, nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		rdb.Close()
		return nil, nil, err
	}
	log.Info().Str("addr", cfg.Address).Msg("Using Redis like locks")
	return wishes.NewRedisLocker(rdb), func() { rdb.Close() }, nil
}

// openWhatsApp connects a paired session for RSVP notifications. Pairing is
// done from wedding-admin; the server never waits on a QR code.
func openWhatsApp(ctx context.Context, cfg *config.Config, log zerolog.Logger) *whatsapp.Service {
	if cfg.WhatsAppNotifyTo == "" {
		return nil
	}
	wa, err := whatsapp.NewService(ctx, whatsapp.Config{DataDir: cfg.WhatsAppDataDir}, log)
	if err != nil {
		log.Warn().Err(err).Msg("WhatsApp notifications disabled")
		return nil
	}
	if !wa.LoggedIn() {
		log.Warn().Msg("WhatsApp is not paired; run wedding-admin to link a device")
		return nil
	}
	if err := wa.Connect(ctx); err != nil {
		log.Warn().Err(err).Msg("WhatsApp notifications disabled")
		return nil
	}
	log.Info().Str("to", cfg.WhatsAppNotifyTo).Msg("WhatsApp RSVP notifications enabled")
	return wa
}
