package currency

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/mrlokans/storefront/internal/kvstore"
)

func TestRefresher_StartFetchesImmediately(t *testing.T) {
	fetcher := &stubFetcher{rates: map[string]float64{"TRY": 30}}
	cache := NewCache(kvstore.NewMemoryStore(), fetcher)
	r := NewRefresher(cache, time.Hour)
	defer r.Stop()

	r.Start(context.Background())

	assert.True(t, r.IsRunning())
	assert.Eventually(t, func() bool { return cache.Rate() == 30 }, time.Second, 10*time.Millisecond)
}

func TestRefresher_RestartKeepsSingleEntry(t *testing.T) {
	cache := NewCache(kvstore.NewMemoryStore(), &stubFetcher{rates: map[string]float64{"TRY": 30}})
	r := NewRefresher(cache, time.Hour)
	defer r.Stop()

	r.Start(context.Background())
	r.Start(context.Background())
	r.Start(context.Background())

	assert.Len(t, r.cron.Entries(), 1)
	assert.True(t, r.IsRunning())
}

func TestRefresher_PeriodicRefresh(t *testing.T) {
	fetcher := &stubFetcher{rates: map[string]float64{"TRY": 30}}
	cache := NewCache(kvstore.NewMemoryStore(), fetcher)
	r := NewRefresher(cache, time.Second)
	defer r.Stop()

	r.Start(context.Background())

	assert.Eventually(t, func() bool { return len(fetcher.Calls()) >= 2 }, 5*time.Second, 50*time.Millisecond)
}

func TestRefresher_StopIsIdempotent(t *testing.T) {
	cache := NewCache(kvstore.NewMemoryStore(), &stubFetcher{})
	r := NewRefresher(cache, time.Hour)

	r.Stop()
	r.Start(context.Background())
	r.Stop()
	r.Stop()

	assert.False(t, r.IsRunning())
	assert.Empty(t, r.cron.Entries())
}

func TestRefresher_StopsWithContext(t *testing.T) {
	cache := NewCache(kvstore.NewMemoryStore(), &stubFetcher{})
	r := NewRefresher(cache, time.Hour)
	ctx, cancel := context.WithCancel(context.Background())

	r.Start(ctx)
	cancel()

	assert.Eventually(t, func() bool { return !r.IsRunning() }, time.Second, 10*time.Millisecond)
}
