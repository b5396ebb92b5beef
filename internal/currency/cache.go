package currency

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/mrlokans/storefront/internal/entities"
	"github.com/mrlokans/storefront/internal/kvstore"
)

var ErrInvalidSelection = errors.New("invalid currency selection")

// FetchObserver is told about every completed rate request.
type FetchObserver func(code string, err error, elapsed time.Duration)

// Cache holds the single current conversion rate.
//
// The user's preference and the effective display currency are kept apart:
// a failed fetch shows prices in USD at rate 1 but leaves the stored
// preference alone, so the next successful refresh switches back.
type Cache struct {
	kv      kvstore.Store
	fetcher RateFetcher
	now     func() time.Time

	mu         sync.RWMutex
	preference entities.Currency
	effective  entities.Currency
	rate       float64
	state      entities.RateState
	lastUpdate time.Time
	generation uint64
	onChange   func()
	observer   FetchObserver
}

// NewCache creates a cache showing USD at rate 1 until the first refresh.
func NewCache(kv kvstore.Store, fetcher RateFetcher) *Cache {
	return &Cache{
		kv:         kv,
		fetcher:    fetcher,
		now:        time.Now,
		preference: Default(),
		effective:  Base(),
		rate:       1,
		state:      entities.RateStateIdle,
	}
}

// OnChange registers a callback run after every state change.
func (c *Cache) OnChange(fn func()) {
	c.mu.Lock()
	c.onChange = fn
	c.mu.Unlock()
}

// Observe registers a FetchObserver.
func (c *Cache) Observe(fn FetchObserver) {
	c.mu.Lock()
	c.observer = fn
	c.mu.Unlock()
}

// Restore loads the persisted preference. Missing or unknown values fall back
// to the default currency.
func (c *Cache) Restore() error {
	var stored entities.Currency
	found, err := kvstore.LoadJSON(c.kv, entities.StorageKeySelectedCurrency, &stored)
	if err != nil {
		return fmt.Errorf("failed to load currency preference: %w", err)
	}

	preference := Default()
	if found {
		if cur, ok := Lookup(stored.Key); ok {
			preference = cur
		} else {
			log.Printf("Currency: ignoring stored preference %q", stored.Key)
		}
	}

	c.mu.Lock()
	c.preference = preference
	c.mu.Unlock()
	return nil
}

// SelectCurrency persists a new preference and refreshes the rate for it.
// Unknown keys are rejected with ErrInvalidSelection and change nothing.
func (c *Cache) SelectCurrency(ctx context.Context, key string) (entities.Currency, error) {
	cur, ok := Lookup(key)
	if !ok {
		log.Printf("Currency: rejected unknown currency %q", key)
		return entities.Currency{}, fmt.Errorf("%w: %q", ErrInvalidSelection, key)
	}

	c.mu.Lock()
	if err := kvstore.SaveJSON(c.kv, entities.StorageKeySelectedCurrency, cur); err != nil {
		c.mu.Unlock()
		return entities.Currency{}, fmt.Errorf("failed to save currency preference: %w", err)
	}
	c.preference = cur
	c.mu.Unlock()

	c.Refresh(ctx)
	return cur, nil
}

// Refresh fetches the rate for the current preference. Failures are logged
// and leave the cache showing USD at rate 1. Only the most recently started
// refresh may commit its result, and a fetch cut short by ctx commits nothing.
func (c *Cache) Refresh(ctx context.Context) entities.CurrencyView {
	c.mu.Lock()
	c.generation++
	generation := c.generation
	preference := c.preference

	if preference.Key == BaseKey {
		c.effective = preference
		c.rate = 1
		c.lastUpdate = c.now()
		c.state = entities.RateStateReady
		view := c.viewLocked()
		onChange := c.onChange
		c.mu.Unlock()
		notify(onChange)
		return view
	}

	previous := c.state
	c.state = entities.RateStateFetching
	observer := c.observer
	c.mu.Unlock()

	started := c.now()
	rate, err := c.fetcher.FetchRate(ctx, preference.Key)
	if observer != nil {
		observer(preference.Key, err, c.now().Sub(started))
	}

	c.mu.Lock()
	if generation != c.generation {
		view := c.viewLocked()
		c.mu.Unlock()
		log.Printf("Currency: discarding superseded %s rate", preference.Key)
		return view
	}
	if err != nil && ctx.Err() != nil {
		c.state = previous
		view := c.viewLocked()
		c.mu.Unlock()
		log.Printf("Currency: %s rate fetch cancelled, keeping %s", preference.Key, view.Selected.Key)
		return view
	}
	if err != nil {
		log.Printf("Currency: failed to fetch %s rate, showing %s: %v", preference.Key, BaseKey, err)
		c.effective = Base()
		c.rate = 1
		c.state = entities.RateStateFailed
	} else {
		c.effective = preference
		c.rate = rate
		c.lastUpdate = c.now()
		c.state = entities.RateStateReady
	}
	view := c.viewLocked()
	onChange := c.onChange
	c.mu.Unlock()

	notify(onChange)
	return view
}

// Selected returns the currency prices are currently shown in.
func (c *Cache) Selected() entities.Currency {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.effective
}

// Preference returns the currency the user picked.
func (c *Cache) Preference() entities.Currency {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.preference
}

func (c *Cache) Rate() float64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.rate
}

func (c *Cache) State() entities.RateState {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// LastUpdate returns the time of the last successful refresh.
func (c *Cache) LastUpdate() (time.Time, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lastUpdate, !c.lastUpdate.IsZero()
}

// Currencies returns the selectable currencies.
func (c *Cache) Currencies() []entities.Currency {
	return Currencies()
}

// View returns a consistent snapshot of the cache.
func (c *Cache) View() entities.CurrencyView {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.viewLocked()
}

// Format converts a USD amount and renders it in the effective currency.
func (c *Cache) Format(amount float64) string {
	c.mu.RLock()
	cur, rate := c.effective, c.rate
	c.mu.RUnlock()
	return FormatAmount(amount*rate, cur)
}

// DisplayAmount formats numeric values with Format and returns anything else
// unconverted.
func (c *Cache) DisplayAmount(v any) string {
	if amount, ok := toFloat(v); ok {
		return c.Format(amount)
	}
	return fmt.Sprint(v)
}

func (c *Cache) viewLocked() entities.CurrencyView {
	view := entities.CurrencyView{
		Selected:   c.effective,
		Preference: c.preference,
		Rate:       c.rate,
		State:      c.state,
	}
	if !c.lastUpdate.IsZero() {
		t := c.lastUpdate
		view.LastUpdate = &t
	}
	return view
}

func notify(fn func()) {
	if fn != nil {
		fn()
	}
}
