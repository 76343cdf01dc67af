// Package sqlstore keeps RSVPs and wishes in SQLite or Postgres through gorm.
package sqlstore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"wedding-site/internal/errs"
	"wedding-site/internal/models"
)

type Store struct {
	db *gorm.DB
}

// gormWriter routes gorm's logger into zerolog.
type gormWriter struct {
	log zerolog.Logger
}

func (w gormWriter) Printf(format string, args ...any) {
	w.log.Debug().Msgf(format, args...)
}

func newLogger(log zerolog.Logger) logger.Interface {
	return logger.New(gormWriter{log: log}, logger.Config{
		SlowThreshold:             200 * time.Millisecond,
		LogLevel:                  logger.Warn,
		IgnoreRecordNotFoundError: true,
	})
}

// OpenSQLite opens (and creates) a SQLite database at path.
func OpenSQLite(path string, log zerolog.Logger) (*Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("failed to create directory: %w", err)
		}
	}
	return open(sqlite.Open(path+"?_foreign_keys=on&_busy_timeout=5000"), log)
}

// OpenPostgres connects to the database described by dsn.
func OpenPostgres(dsn string, log zerolog.Logger) (*Store, error) {
	return open(postgres.Open(dsn), log)
}

// New wraps an already opened gorm handle and migrates it.
func New(db *gorm.DB) (*Store, error) {
	if err := db.AutoMigrate(&models.RSVPResponse{}, &models.Wish{}); err != nil {
		return nil, fmt.Errorf("failed to migrate: %w", err)
	}
	return &Store{db: db}, nil
}

func open(dialector gorm.Dialector, log zerolog.Logger) (*Store, error) {
	db, err := gorm.Open(dialector, &gorm.Config{Logger: newLogger(log)})
	if err != nil {
		return nil, fmt.Errorf("failed to connect database: %w", err)
	}
	return New(db)
}

func (s *Store) InsertRSVP(ctx context.Context, r *models.RSVPResponse) error {
	row := *r
	row.ID = 0
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return errs.Wrap(errs.Store, "sqlstore.InsertRSVP", err)
	}
	r.ID, r.CreatedAt = row.ID, row.CreatedAt
	return nil
}

func (s *Store) ListRSVPs(ctx context.Context) ([]models.RSVPResponse, error) {
	var rows []models.RSVPResponse
	if err := s.db.WithContext(ctx).Order("created_at desc, id desc").Find(&rows).Error; err != nil {
		return nil, errs.Wrap(errs.Store, "sqlstore.ListRSVPs", err)
	}
	return rows, nil
}

func (s *Store) ListWishes(ctx context.Context) ([]models.Wish, error) {
	var wishes []models.Wish
	if err := s.db.WithContext(ctx).Order("created_at desc, id desc").Find(&wishes).Error; err != nil {
		return nil, errs.Wrap(errs.Store, "sqlstore.ListWishes", err)
	}
	for i := range wishes {
		if wishes[i].LikedBy == nil {
			wishes[i].LikedBy = []string{}
		}
	}
	return wishes, nil
}

func (s *Store) InsertWish(ctx context.Context, nw models.NewWish) (models.Wish, error) {
	w := models.Wish{
		Name:    nw.Name,
		Message: nw.Message,
		LikedBy: []string{},
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var last models.Wish
		err := tx.Order("created_at desc").Limit(1).Find(&last).Error
		if err != nil {
			return err
		}
		w.CreatedAt = time.Now()
		if last.ID != 0 && !w.CreatedAt.After(last.CreatedAt) {
			w.CreatedAt = last.CreatedAt.Add(time.Microsecond)
		}
		return tx.Create(&w).Error
	})
	if err != nil {
		return models.Wish{}, errs.Wrap(errs.Store, "sqlstore.InsertWish", err)
	}
	return w, nil
}

func (s *Store) GetWish(ctx context.Context, id int64) (models.Wish, error) {
	var w models.Wish
	err := s.db.WithContext(ctx).First(&w, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Wish{}, errs.E(errs.NotFound, "sqlstore.GetWish", fmt.Sprintf("wish %d not found", id))
	}
	if err != nil {
		return models.Wish{}, errs.Wrap(errs.Store, "sqlstore.GetWish", err)
	}
	if w.LikedBy == nil {
		w.LikedBy = []string{}
	}
	return w, nil
}

func (s *Store) UpdateWishLikes(ctx context.Context, id int64, u models.LikeUpdate) error {
	likedBy := u.LikedBy
	if likedBy == nil {
		likedBy = []string{}
	}
	res := s.db.WithContext(ctx).
		Model(&models.Wish{ID: id}).
		Select("likes", "liked_by").
		Updates(models.Wish{Likes: u.Likes, LikedBy: likedBy})
	if res.Error != nil {
		return errs.Wrap(errs.Store, "sqlstore.UpdateWishLikes", res.Error)
	}
	if res.RowsAffected == 0 {
		return errs.E(errs.NotFound, "sqlstore.UpdateWishLikes", fmt.Sprintf("wish %d not found", id))
	}
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return errs.Wrap(errs.Store, "sqlstore.Ping", err)
	}
	return errs.Wrap(errs.Store, "sqlstore.Ping", sqlDB.PingContext(ctx))
}

func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
