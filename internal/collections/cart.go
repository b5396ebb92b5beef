package collections

import (
	"github.com/mrlokans/storefront/internal/entities"
	"github.com/mrlokans/storefront/internal/i18n"
	"github.com/mrlokans/storefront/internal/kvstore"
)

// Cart is the per-user shopping cart. At most one entry exists per book id.
type Cart struct {
	store      *UserStore[entities.CartEntry]
	notifier   Notifier
	translator Translator
}

// NewCart creates a cart over kv. notifier and translator may be nil.
func NewCart(kv kvstore.Store, notifier Notifier, translator Translator) *Cart {
	return &Cart{
		store:      NewUserStore[entities.CartEntry](kv, entities.StorageKeyCartPrefix, entities.StorageKeyLegacyCart),
		notifier:   notifier,
		translator: translator,
	}
}

func (c *Cart) Initialize(user string) ([]entities.CartEntry, error) {
	return c.store.Initialize(user)
}

func (c *Cart) Items(user string) []entities.CartEntry {
	return c.store.List(user)
}

func (c *Cart) Forget(user string) {
	c.store.Forget(user)
}

// Add puts one more copy of book into the user's cart.
func (c *Cart) Add(user string, book entities.Book) ([]entities.CartEntry, error) {
	items, changed, err := c.store.Update(user, func(items []entities.CartEntry) ([]entities.CartEntry, bool) {
		if i := indexOfEntry(items, book.ID); i >= 0 {
			if items[i].Quantity < 1 {
				items[i].Quantity = 1
			}
			items[i].Quantity++
			return items, true
		}
		return append(items, entities.CartEntry{Book: book, Quantity: 1}), true
	})
	if err != nil {
		return nil, err
	}
	if changed {
		c.notify(i18n.MsgCartAdded)
	}
	return items, nil
}

// Remove drops the book from the user's cart. Absent ids are a silent no-op.
func (c *Cart) Remove(user string, bookID int64) ([]entities.CartEntry, error) {
	items, changed, err := c.store.Update(user, func(items []entities.CartEntry) ([]entities.CartEntry, bool) {
		i := indexOfEntry(items, bookID)
		if i < 0 {
			return items, false
		}
		return append(items[:i], items[i+1:]...), true
	})
	if err != nil {
		return nil, err
	}
	if changed {
		c.notify(i18n.MsgCartRemoved)
	}
	return items, nil
}

// UpdateQuantity sets the quantity of a book already in the cart. A quantity
// of zero or less removes the entry.
func (c *Cart) UpdateQuantity(user string, bookID int64, quantity int) ([]entities.CartEntry, error) {
	if quantity <= 0 {
		return c.Remove(user, bookID)
	}

	items, changed, err := c.store.Update(user, func(items []entities.CartEntry) ([]entities.CartEntry, bool) {
		i := indexOfEntry(items, bookID)
		if i < 0 {
			return items, false
		}
		items[i].Quantity = quantity
		return items, true
	})
	if err != nil {
		return nil, err
	}
	if changed {
		c.notify(i18n.MsgCartQuantityUpdated, quantity)
	}
	return items, nil
}

// Clear empties the user's cart.
func (c *Cart) Clear(user string) error {
	_, _, err := c.store.Update(user, func([]entities.CartEntry) ([]entities.CartEntry, bool) {
		return []entities.CartEntry{}, true
	})
	return err
}

// Summary totals the user's in-memory cart in USD.
func (c *Cart) Summary(user string) entities.CartSummary {
	var summary entities.CartSummary
	for _, entry := range c.store.List(user) {
		summary.Items += entry.Quantity
		summary.Subtotal += entry.Subtotal()
	}
	return summary
}

func (c *Cart) notify(key string, args ...any) {
	if c.notifier == nil {
		return
	}
	c.notifier.Success(translate(c.translator, key, args...))
}

func indexOfEntry(items []entities.CartEntry, bookID int64) int {
	for i, item := range items {
		if item.ID == bookID {
			return i
		}
	}
	return -1
}

func translate(t Translator, key string, args ...any) string {
	if t == nil {
		return key
	}
	return t.Translate(key, args...)
}
