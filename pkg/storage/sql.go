package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/huettenzauber/kiosk/pkg/db/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SQLStore keeps values in the store_entries table keyed by (origin, key).
type SQLStore struct {
	db     *gorm.DB
	origin string
	now    func() time.Time
}

// NewSQLStore scopes a gorm connection to one device origin.
func NewSQLStore(db *gorm.DB, origin string) (*SQLStore, error) {
	if db == nil {
		return nil, fmt.Errorf("db required")
	}
	if origin == "" {
		return nil, fmt.Errorf("origin required")
	}
	return &SQLStore{db: db, origin: origin, now: time.Now}, nil
}

func (s *SQLStore) Get(ctx context.Context, key string) (string, error) {
	var entry models.StoreEntry
	err := s.db.WithContext(ctx).
		Where(&models.StoreEntry{Origin: s.origin, Key: key}).
		First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("load store entry %s: %w", key, err)
	}
	return entry.Value, nil
}

func (s *SQLStore) Set(ctx context.Context, key, value string) error {
	entry := models.StoreEntry{
		Origin:    s.origin,
		Key:       key,
		Value:     value,
		UpdatedAt: s.now().UTC(),
	}
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "origin"}, {Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).
		Create(&entry).Error
	if err != nil {
		return fmt.Errorf("save store entry %s: %w", key, err)
	}
	return nil
}

func (s *SQLStore) Delete(ctx context.Context, key string) error {
	err := s.db.WithContext(ctx).
		Where(&models.StoreEntry{Origin: s.origin, Key: key}).
		Delete(&models.StoreEntry{}).Error
	if err != nil {
		return fmt.Errorf("delete store entry %s: %w", key, err)
	}
	return nil
}

func (s *SQLStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
