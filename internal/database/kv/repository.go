// Package kv stores the storefront's key-value documents as rows in the
// kv_entries table.
//
//	repo := kv.NewRepository(db)
//	value, ok, err := repo.Get("language")
package kv

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mrlokans/storefront/internal/entities"
	"github.com/mrlokans/storefront/internal/kvstore"
)

var _ kvstore.Store = (*Repository)(nil)

// Repository handles all key-value database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new key-value repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Get retrieves a value by key. A missing key is not an error.
func (r *Repository) Get(key string) (string, bool, error) {
	var entry entities.KVEntry
	result := r.db.Where("key = ?", key).Limit(1).Find(&entry)
	if result.Error != nil {
		return "", false, result.Error
	}
	if result.RowsAffected == 0 {
		return "", false, nil
	}
	return entry.Value, true, nil
}

// Set creates or updates a value.
func (r *Repository) Set(key, value string) error {
	entry := entities.KVEntry{Key: key, Value: value}
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&entry).Error
}

// Remove deletes a value by key.
func (r *Repository) Remove(key string) error {
	return r.db.Where("key = ?", key).Delete(&entities.KVEntry{}).Error
}

// Ping checks the underlying connection.
func (r *Repository) Ping() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}
