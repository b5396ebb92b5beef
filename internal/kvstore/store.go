// Package kvstore defines the durable, string-keyed store every storefront
// module reads and writes through, plus in-memory and Redis backends.
//
// The contract mirrors browser local storage: synchronous Get/Set/Remove of
// string values with no transactions. Modules keep structured data as JSON
// documents via LoadJSON and SaveJSON.
//
// # Backends
//
//   - MemoryStore: process memory, used by tests and KV_BACKEND=memory
//   - RedisStore: a shared Redis instance (KV_BACKEND=redis)
//   - kv.Repository in internal/database/kv: rows in the sqlite database (default)
package kvstore

import (
	"encoding/json"
	"fmt"
	"log"
)

// Store is the persistent key-value substrate.
type Store interface {
	// Get returns the value for key and whether it exists.
	Get(key string) (string, bool, error)
	Set(key, value string) error
	// Remove deletes key. Removing a missing key is not an error.
	Remove(key string) error
}

// Pinger is implemented by backends that can report their health.
type Pinger interface {
	Ping() error
}

// LoadJSON decodes the document stored under key into dst.
// Returns false when the key is missing. A value that is not valid JSON is
// logged and reported as missing so callers fall back to an empty document.
func LoadJSON(s Store, key string, dst any) (bool, error) {
	raw, ok, err := s.Get(key)
	if err != nil {
		return false, fmt.Errorf("read %s: %w", key, err)
	}
	if !ok || raw == "" {
		return false, nil
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		log.Printf("KV store: ignoring corrupt document %q: %v", key, err)
		return false, nil
	}
	return true, nil
}

// SaveJSON encodes v and stores it under key.
func SaveJSON(s Store, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := s.Set(key, string(data)); err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	return nil
}
