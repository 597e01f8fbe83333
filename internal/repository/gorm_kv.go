package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/timmy/memeverse/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormKV persists keys as rows of the kv_entries table.
type GormKV struct {
	db *gorm.DB
}

// NewGormKV creates a KVStore bound to db.
// Parameters:
//   - db: GORM database handle; kv_entries must already be migrated.
//
// Returns:
//   - *GormKV: store instance bound to db.
func NewGormKV(db *gorm.DB) *GormKV {
	return &GormKV{db: db}
}

// Get loads the row for key.
func (s *GormKV) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var entry domain.KVEntry
	err := s.db.WithContext(ctx).First(&entry, "key = ?", key).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read key %q: %w", key, err)
	}
	return []byte(entry.Value), true, nil
}

// Set upserts the row for key.
func (s *GormKV) Set(ctx context.Context, key string, value []byte) error {
	entry := &domain.KVEntry{
		Key:       key,
		Value:     string(value),
		UpdatedAt: time.Now(),
	}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(entry).Error
	if err != nil {
		return fmt.Errorf("failed to write key %q: %w", key, err)
	}
	return nil
}
