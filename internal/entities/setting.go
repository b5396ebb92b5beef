package entities

import (
	"time"
)

// KVEntry is one persisted key/value pair of the storefront's durable store.
type KVEntry struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Key       string    `gorm:"uniqueIndex;size:255" json:"key"`
	Value     string    `gorm:"type:text" json:"value"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (KVEntry) TableName() string {
	return "kv_entries"
}

// Known storage keys
const (
	// Credentials
	StorageKeyIdentities = "registered_users"
	StorageKeySession    = "auth_user"

	// Per-user collections, suffixed with the user's email
	StorageKeyCartPrefix      = "cart:"
	StorageKeyFavoritesPrefix = "favorites:"

	// Shared documents written by earlier versions (every user in one JSON map)
	StorageKeyLegacyCart      = "cart"
	StorageKeyLegacyFavorites = "favorites"

	// Preferences
	StorageKeySelectedCurrency = "selectedCurrency"
	StorageKeyLanguage         = "language"
)
