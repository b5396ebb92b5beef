// Package collections keeps per-user lists (carts and favorites) in memory,
// mirrored to one KV document per user.
package collections

import (
	"fmt"
	"log"
	"sync"

	"github.com/mrlokans/storefront/internal/entities"
	"github.com/mrlokans/storefront/internal/kvstore"
)

// Notifier surfaces confirmations of successful mutations.
type Notifier interface {
	Success(message string) entities.Notification
}

// Translator resolves message keys into the user's language.
type Translator interface {
	Translate(key string, args ...any) string
}

// UserStore maps a user's email to an ordered list of T. Each user's list is
// stored under prefix+email; lists are only installed in memory after the
// write succeeded.
type UserStore[T any] struct {
	kv        kvstore.Store
	prefix    string
	legacyKey string

	mu    sync.Mutex
	items map[string][]T
}

// NewUserStore creates a store. legacyKey names an older shared document
// ({email: [...]}) consulted when a user has no document of their own; pass
// "" to disable the migration.
func NewUserStore[T any](kv kvstore.Store, prefix, legacyKey string) *UserStore[T] {
	return &UserStore[T]{
		kv:        kv,
		prefix:    prefix,
		legacyKey: legacyKey,
		items:     make(map[string][]T),
	}
}

// Initialize loads the user's list from storage into memory and returns it.
func (s *UserStore[T]) Initialize(user string) ([]T, error) {
	if user == "" {
		return []T{}, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := s.loadLocked(user)
	if err != nil {
		return nil, err
	}
	s.items[user] = items
	return clone(items), nil
}

// List returns a copy of the user's in-memory list.
func (s *UserStore[T]) List(user string) []T {
	s.mu.Lock()
	defer s.mu.Unlock()
	return clone(s.items[user])
}

// Update runs fn on the user's current list. When fn reports a change the new
// list is persisted and then installed. The returned list is the one in
// effect after the call.
func (s *UserStore[T]) Update(user string, fn func([]T) ([]T, bool)) ([]T, bool, error) {
	if user == "" {
		return []T{}, false, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.items[user]
	if !ok {
		loaded, err := s.loadLocked(user)
		if err != nil {
			return nil, false, err
		}
		current = loaded
		s.items[user] = current
	}

	next, changed := fn(clone(current))
	if !changed {
		return clone(current), false, nil
	}
	if next == nil {
		next = []T{}
	}
	if err := kvstore.SaveJSON(s.kv, s.key(user), next); err != nil {
		return clone(current), false, err
	}
	s.items[user] = next
	return clone(next), true, nil
}

// Forget drops the user's list from memory. Storage is untouched.
func (s *UserStore[T]) Forget(user string) {
	s.mu.Lock()
	delete(s.items, user)
	s.mu.Unlock()
}

func (s *UserStore[T]) key(user string) string {
	return s.prefix + user
}

func (s *UserStore[T]) loadLocked(user string) ([]T, error) {
	var items []T
	found, err := kvstore.LoadJSON(s.kv, s.key(user), &items)
	if err != nil {
		return nil, err
	}
	if found {
		if items == nil {
			items = []T{}
		}
		return items, nil
	}
	if s.legacyKey == "" {
		return []T{}, nil
	}

	var legacy map[string][]T
	found, err = kvstore.LoadJSON(s.kv, s.legacyKey, &legacy)
	if err != nil {
		return nil, err
	}
	items = legacy[user]
	if !found || len(items) == 0 {
		return []T{}, nil
	}

	if err := kvstore.SaveJSON(s.kv, s.key(user), items); err != nil {
		return nil, fmt.Errorf("failed to migrate %s: %w", s.legacyKey, err)
	}
	log.Printf("Collections: migrated %d entries of %s for %s", len(items), s.legacyKey, user)
	return items, nil
}

func clone[T any](items []T) []T {
	out := make([]T, len(items))
	copy(out, items)
	return out
}
