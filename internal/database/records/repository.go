// Package records stores key/value records in SQLite and serves as the default
// storage.Backend.
//
// # Usage
//
//	repo := records.NewRepository(db)
//	value, err := repo.Get(ctx, "readworld_user_id")
package records

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/mrlokans/readworld/internal/entities"
	"github.com/mrlokans/readworld/internal/storage"
)

// Repository handles all record database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new records repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// GetRecord retrieves a record by key.
func (r *Repository) GetRecord(ctx context.Context, key string) (*entities.Record, error) {
	var record entities.Record
	err := r.db.WithContext(ctx).Where("key = ?", key).First(&record).Error
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// Get returns the value stored under key, or storage.ErrNotFound.
func (r *Repository) Get(ctx context.Context, key string) (string, error) {
	record, err := r.GetRecord(ctx, key)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", storage.ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return record.Value, nil
}

// Set creates or updates a record.
func (r *Repository) Set(ctx context.Context, key, value string) error {
	db := r.db.WithContext(ctx)

	var record entities.Record
	result := db.Where("key = ?", key).First(&record)

	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		record = entities.Record{
			Key:   key,
			Value: value,
		}
		return db.Create(&record).Error
	} else if result.Error != nil {
		return result.Error
	}

	record.Value = value
	return db.Save(&record).Error
}

// Delete removes a record by key.
func (r *Repository) Delete(ctx context.Context, key string) error {
	return r.db.WithContext(ctx).Where("key = ?", key).Delete(&entities.Record{}).Error
}

// Keys lists stored keys with the given prefix, in key order.
func (r *Repository) Keys(ctx context.Context, prefix string) ([]string, error) {
	var keys []string
	err := r.db.WithContext(ctx).
		Model(&entities.Record{}).
		Where("key LIKE ?", prefix+"%").
		Order("key ASC").
		Pluck("key", &keys).Error
	return keys, err
}
