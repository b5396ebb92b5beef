package currency

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/storefront/internal/entities"
	"github.com/mrlokans/storefront/internal/kvstore"
)

// stubFetcher answers from a map; codes missing from it fail.
type stubFetcher struct {
	mu    sync.Mutex
	rates map[string]float64
	calls []string
}

func (f *stubFetcher) FetchRate(_ context.Context, code string) (float64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, code)
	rate, ok := f.rates[code]
	if !ok {
		return 0, ErrNetworkFailure
	}
	return rate, nil
}

func (f *stubFetcher) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func TestCache_InitialState(t *testing.T) {
	c := NewCache(kvstore.NewMemoryStore(), &stubFetcher{})
	require.NoError(t, c.Restore())

	assert.Equal(t, "TRY", c.Preference().Key)
	assert.Equal(t, "USD", c.Selected().Key)
	assert.Equal(t, 1.0, c.Rate())
	assert.Equal(t, entities.RateStateIdle, c.State())
	_, ok := c.LastUpdate()
	assert.False(t, ok)
	assert.Len(t, c.Currencies(), 7)
}

func TestCache_RefreshSuccess(t *testing.T) {
	fetcher := &stubFetcher{rates: map[string]float64{"TRY": 32.5}}
	c := NewCache(kvstore.NewMemoryStore(), fetcher)
	var changes atomic.Int32
	c.OnChange(func() { changes.Add(1) })

	view := c.Refresh(context.Background())

	assert.Equal(t, "TRY", view.Selected.Key)
	assert.Equal(t, 32.5, view.Rate)
	assert.Equal(t, entities.RateStateReady, view.State)
	assert.NotNil(t, view.LastUpdate)
	assert.Equal(t, []string{"TRY"}, fetcher.Calls())
	assert.Equal(t, int32(1), changes.Load())
}

func TestCache_BaseCurrencySkipsNetwork(t *testing.T) {
	fetcher := &stubFetcher{}
	c := NewCache(kvstore.NewMemoryStore(), fetcher)

	_, err := c.SelectCurrency(context.Background(), "usd")
	require.NoError(t, err)

	assert.Equal(t, "USD", c.Selected().Key)
	assert.Equal(t, 1.0, c.Rate())
	assert.Equal(t, entities.RateStateReady, c.State())
	assert.Empty(t, fetcher.Calls())
}

func TestCache_FailureFallsBackWithoutTouchingPreference(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	kv := kvstore.NewMemoryStore()
	c := NewCache(kv, NewRatesClient(server.URL, time.Second))
	var observed error
	c.Observe(func(code string, err error, _ time.Duration) { observed = err })

	cur, err := c.SelectCurrency(context.Background(), "EUR")
	require.NoError(t, err)
	assert.Equal(t, "EUR", cur.Key)

	assert.Equal(t, "USD", c.Selected().Key)
	assert.Equal(t, 1.0, c.Rate())
	assert.Equal(t, entities.RateStateFailed, c.State())
	assert.ErrorIs(t, observed, ErrNetworkFailure)

	// The stored preference still says EUR
	assert.Equal(t, "EUR", c.Preference().Key)
	var stored entities.Currency
	found, err := kvstore.LoadJSON(kv, entities.StorageKeySelectedCurrency, &stored)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "EUR", stored.Key)
}

func TestCache_FailureAfterSuccess(t *testing.T) {
	fetcher := &stubFetcher{rates: map[string]float64{"EUR": 0.92}}
	c := NewCache(kvstore.NewMemoryStore(), fetcher)
	_, err := c.SelectCurrency(context.Background(), "EUR")
	require.NoError(t, err)
	require.Equal(t, 0.92, c.Rate())
	lastGood, _ := c.LastUpdate()

	fetcher.mu.Lock()
	fetcher.rates = nil
	fetcher.mu.Unlock()
	c.Refresh(context.Background())

	assert.Equal(t, "USD", c.Selected().Key)
	assert.Equal(t, 1.0, c.Rate())
	last, ok := c.LastUpdate()
	assert.True(t, ok)
	assert.Equal(t, lastGood, last)
}

func TestCache_SelectUnknownCurrency(t *testing.T) {
	kv := kvstore.NewMemoryStore()
	fetcher := &stubFetcher{}
	c := NewCache(kv, fetcher)

	_, err := c.SelectCurrency(context.Background(), "GBP")
	assert.ErrorIs(t, err, ErrInvalidSelection)

	assert.Equal(t, "TRY", c.Preference().Key)
	assert.Empty(t, fetcher.Calls())
	_, found, _ := kv.Get(entities.StorageKeySelectedCurrency)
	assert.False(t, found)
}

func TestCache_RestoreStoredPreference(t *testing.T) {
	kv := kvstore.NewMemoryStore()
	require.NoError(t, kv.Set(entities.StorageKeySelectedCurrency, `{"key":"JPY","label":"JPY ¥"}`))
	c := NewCache(kv, &stubFetcher{})

	require.NoError(t, c.Restore())
	assert.Equal(t, "JPY", c.Preference().Key)
	assert.Equal(t, "ja-JP", c.Preference().LangCode)

	require.NoError(t, kv.Set(entities.StorageKeySelectedCurrency, `{"key":"XXX"}`))
	require.NoError(t, c.Restore())
	assert.Equal(t, "TRY", c.Preference().Key)
}

// blockingFetcher holds EUR requests until released.
type blockingFetcher struct {
	release chan struct{}
	started chan struct{}
}

func (f *blockingFetcher) FetchRate(ctx context.Context, code string) (float64, error) {
	if code == "EUR" {
		close(f.started)
		<-f.release
		return 0.5, nil
	}
	if code == "JPY" {
		return 150, nil
	}
	return 0, errors.New("unexpected code")
}

func TestCache_SupersededFetchIsDiscarded(t *testing.T) {
	fetcher := &blockingFetcher{release: make(chan struct{}), started: make(chan struct{})}
	c := NewCache(kvstore.NewMemoryStore(), fetcher)

	_, err := c.SelectCurrency(context.Background(), "USD")
	require.NoError(t, err)

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = c.SelectCurrency(context.Background(), "EUR")
	}()
	<-fetcher.started

	_, err = c.SelectCurrency(context.Background(), "JPY")
	require.NoError(t, err)
	require.Equal(t, 150.0, c.Rate())

	close(fetcher.release)
	<-done

	assert.Equal(t, "JPY", c.Selected().Key)
	assert.Equal(t, 150.0, c.Rate())
}

// cancellableFetcher answers EUR once, then blocks until ctx is done.
type cancellableFetcher struct {
	answered atomic.Bool
	started  chan struct{}
}

func (f *cancellableFetcher) FetchRate(ctx context.Context, code string) (float64, error) {
	if f.answered.CompareAndSwap(false, true) {
		return 0.5, nil
	}
	close(f.started)
	<-ctx.Done()
	return 0, ctx.Err()
}

func TestCache_CancelledFetchKeepsState(t *testing.T) {
	fetcher := &cancellableFetcher{started: make(chan struct{})}
	c := NewCache(kvstore.NewMemoryStore(), fetcher)
	_, err := c.SelectCurrency(context.Background(), "EUR")
	require.NoError(t, err)
	require.Equal(t, entities.RateStateReady, c.State())

	var changes atomic.Int32
	c.OnChange(func() { changes.Add(1) })

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan entities.CurrencyView)
	go func() { done <- c.Refresh(ctx) }()
	<-fetcher.started
	cancel()
	view := <-done

	assert.Equal(t, "EUR", view.Selected.Key)
	assert.Equal(t, 0.5, c.Rate())
	assert.Equal(t, entities.RateStateReady, c.State())
	assert.Zero(t, changes.Load())
}

func TestCache_DisplayAmount(t *testing.T) {
	fetcher := &stubFetcher{rates: map[string]float64{"EUR": 2}}
	c := NewCache(kvstore.NewMemoryStore(), fetcher)
	_, err := c.SelectCurrency(context.Background(), "USD")
	require.NoError(t, err)

	assert.Equal(t, "10.00 USD", c.DisplayAmount(10))
	assert.Equal(t, "1.50 USD", c.DisplayAmount(float32(1.5)))
	assert.Equal(t, "n/a", c.DisplayAmount("n/a"))
	assert.Equal(t, "<nil>", c.DisplayAmount(nil))
}
