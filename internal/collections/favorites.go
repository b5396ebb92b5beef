package collections

import (
	"github.com/mrlokans/storefront/internal/entities"
	"github.com/mrlokans/storefront/internal/i18n"
	"github.com/mrlokans/storefront/internal/kvstore"
)

// Favorites is the per-user set of favorite book ids, in insertion order.
type Favorites struct {
	store      *UserStore[int64]
	notifier   Notifier
	translator Translator
}

// NewFavorites creates a favorites store over kv. notifier and translator may be nil.
func NewFavorites(kv kvstore.Store, notifier Notifier, translator Translator) *Favorites {
	return &Favorites{
		store:      NewUserStore[int64](kv, entities.StorageKeyFavoritesPrefix, entities.StorageKeyLegacyFavorites),
		notifier:   notifier,
		translator: translator,
	}
}

// Initialize loads the user's favorites. Duplicates written by older
// versions are collapsed in memory.
func (f *Favorites) Initialize(user string) ([]int64, error) {
	ids, err := f.store.Initialize(user)
	if err != nil {
		return nil, err
	}
	return dedupe(ids), nil
}

func (f *Favorites) List(user string) []int64 {
	return dedupe(f.store.List(user))
}

func (f *Favorites) Contains(user string, bookID int64) bool {
	return indexOfID(f.store.List(user), bookID) >= 0
}

func (f *Favorites) Forget(user string) {
	f.store.Forget(user)
}

// Add marks the book as a favorite. Returns false if it already was one.
func (f *Favorites) Add(user string, bookID int64) (bool, error) {
	added, err := f.add(user, bookID)
	if err == nil && added {
		f.notify(i18n.MsgFavoritesAdded)
	}
	return added, err
}

// Remove unmarks the book. Returns false if it was not a favorite.
func (f *Favorites) Remove(user string, bookID int64) (bool, error) {
	removed, err := f.remove(user, bookID)
	if err == nil && removed {
		f.notify(i18n.MsgFavoritesRemoved)
	}
	return removed, err
}

// Toggle flips membership without notifying and returns the new membership.
func (f *Favorites) Toggle(user string, bookID int64) (bool, error) {
	var isFavorite bool
	_, _, err := f.store.Update(user, func(ids []int64) ([]int64, bool) {
		if indexOfID(ids, bookID) >= 0 {
			isFavorite = false
			return removeID(ids, bookID), true
		}
		isFavorite = true
		return append(ids, bookID), true
	})
	if err != nil {
		return false, err
	}
	return isFavorite, nil
}

// Clear removes every favorite of the user.
func (f *Favorites) Clear(user string) error {
	_, _, err := f.store.Update(user, func([]int64) ([]int64, bool) {
		return []int64{}, true
	})
	return err
}

func (f *Favorites) add(user string, bookID int64) (bool, error) {
	_, changed, err := f.store.Update(user, func(ids []int64) ([]int64, bool) {
		if indexOfID(ids, bookID) >= 0 {
			return ids, false
		}
		return append(ids, bookID), true
	})
	return changed, err
}

func (f *Favorites) remove(user string, bookID int64) (bool, error) {
	_, changed, err := f.store.Update(user, func(ids []int64) ([]int64, bool) {
		if indexOfID(ids, bookID) < 0 {
			return ids, false
		}
		return removeID(ids, bookID), true
	})
	return changed, err
}

func (f *Favorites) notify(key string) {
	if f.notifier == nil {
		return
	}
	f.notifier.Success(translate(f.translator, key))
}

func indexOfID(ids []int64, id int64) int {
	for i, v := range ids {
		if v == id {
			return i
		}
	}
	return -1
}

// removeID drops every occurrence of id.
func removeID(ids []int64, id int64) []int64 {
	out := ids[:0]
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}

func dedupe(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
