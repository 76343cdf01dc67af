package storage

import (
	"context"
	"fmt"
	"net/http"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"wedding-site/internal/config"
	"wedding-site/internal/models"
	"wedding-site/internal/storage/filestore"
	"wedding-site/internal/storage/reststore"
	"wedding-site/internal/storage/sqlstore"
)

// RSVPStore persists attendance answers. The site only inserts; listing is
// for the operator console.
type RSVPStore interface {
	InsertRSVP(ctx context.Context, r *models.RSVPResponse) error
	ListRSVPs(ctx context.Context) ([]models.RSVPResponse, error)
}

// WishStore persists guestbook entries and their likes.
type WishStore interface {
	// ListWishes returns every wish, newest first.
	ListWishes(ctx context.Context) ([]models.Wish, error)
	// InsertWish stores a wish and returns it with its id and timestamp.
	InsertWish(ctx context.Context, w models.NewWish) (models.Wish, error)
	GetWish(ctx context.Context, id int64) (models.Wish, error)
	UpdateWishLikes(ctx context.Context, id int64, u models.LikeUpdate) error
}

// Store is the full row store used by the site.
type Store interface {
	RSVPStore
	WishStore
	Ping(ctx context.Context) error
	Close() error
}

var (
	_ Store = (*filestore.Store)(nil)
	_ Store = (*sqlstore.Store)(nil)
	_ Store = (*reststore.Store)(nil)
)

// Open builds the backend selected by cfg.Driver.
func Open(cfg config.StoreConfig, timeout time.Duration, log zerolog.Logger) (Store, error) {
	log = log.With().Str("component", "storage").Str("driver", cfg.Driver).Logger()

	switch cfg.Driver {
	case "file":
		path := filepath.Join(cfg.DataDir, "site.json")
		s, err := filestore.New(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open file store: %w", err)
		}
		log.Info().Str("path", path).Msg("Using file store")
		return s, nil
	case "sql":
		var (
			s   *sqlstore.Store
			err error
		)
		if cfg.DatabaseURL != "" {
			s, err = sqlstore.OpenPostgres(cfg.DatabaseURL, log)
		} else {
			s, err = sqlstore.OpenSQLite(cfg.SQLitePath, log)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to open sql store: %w", err)
		}
		log.Info().Msg("Using sql store")
		return s, nil
	case "rest":
		client := &http.Client{Timeout: timeout}
		log.Info().Str("url", cfg.SupabaseURL).Msg("Using hosted row store")
		return reststore.New(cfg.SupabaseURL, cfg.SupabaseKey, client), nil
	}
	return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
}
