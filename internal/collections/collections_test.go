package collections

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/storefront/internal/entities"
	"github.com/mrlokans/storefront/internal/kvstore"
)

type recordingNotifier struct {
	mu       sync.Mutex
	messages []string
}

func (n *recordingNotifier) Success(message string) entities.Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.messages = append(n.messages, message)
	return entities.Notification{Message: message, Severity: entities.SeveritySuccess}
}

func (n *recordingNotifier) Messages() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.messages...)
}

type keyTranslator struct{}

func (keyTranslator) Translate(key string, args ...any) string {
	if len(args) == 0 {
		return key
	}
	return fmt.Sprintf("%s %v", key, args)
}

// failingStore rejects writes once fail is set.
type failingStore struct {
	*kvstore.MemoryStore
	fail bool
}

func (s *failingStore) Set(key, value string) error {
	if s.fail {
		return errors.New("disk full")
	}
	return s.MemoryStore.Set(key, value)
}

var (
	bookA = entities.Book{ID: 1, Title: "Kürk Mantolu Madonna", Price: 10}
	bookB = entities.Book{ID: 2, Title: "Tutunamayanlar", Price: 25.5}
)

func newTestCart() (*Cart, *kvstore.MemoryStore, *recordingNotifier) {
	kv := kvstore.NewMemoryStore()
	n := &recordingNotifier{}
	return NewCart(kv, n, keyTranslator{}), kv, n
}

func TestCart_AddIncrementsQuantity(t *testing.T) {
	cart, _, n := newTestCart()

	for i := 0; i < 3; i++ {
		_, err := cart.Add("a@x.io", bookA)
		require.NoError(t, err)
	}

	items := cart.Items("a@x.io")
	require.Len(t, items, 1)
	assert.Equal(t, 3, items[0].Quantity)
	assert.Equal(t, "Kürk Mantolu Madonna", items[0].Title)
	assert.Len(t, n.Messages(), 3)
}

func TestCart_PersistsPerUser(t *testing.T) {
	cart, kv, _ := newTestCart()

	_, err := cart.Add("a@x.io", bookA)
	require.NoError(t, err)
	_, err = cart.Add("b@x.io", bookB)
	require.NoError(t, err)

	var stored []entities.CartEntry
	found, err := kvstore.LoadJSON(kv, "cart:a@x.io", &stored)
	require.NoError(t, err)
	require.True(t, found)
	require.Len(t, stored, 1)
	assert.Equal(t, int64(1), stored[0].ID)
	assert.Equal(t, 1, stored[0].Quantity)

	raw, _, _ := kv.Get("cart:b@x.io")
	assert.JSONEq(t, `[{"id":2,"title":"Tutunamayanlar","price":25.5,"quantity":1}]`, raw)
}

func TestCart_Remove(t *testing.T) {
	cart, _, n := newTestCart()
	_, err := cart.Add("a@x.io", bookA)
	require.NoError(t, err)
	_, err = cart.Add("a@x.io", bookB)
	require.NoError(t, err)

	items, err := cart.Remove("a@x.io", bookA.ID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, bookB.ID, items[0].ID)
	assert.Equal(t, "cart.removed", n.Messages()[2])

	t.Run("absent id is a silent no-op", func(t *testing.T) {
		before := len(n.Messages())
		items, err := cart.Remove("a@x.io", 999)
		require.NoError(t, err)
		assert.Len(t, items, 1)
		assert.Len(t, n.Messages(), before)
	})
}

func TestCart_UpdateQuantity(t *testing.T) {
	cart, _, n := newTestCart()
	_, err := cart.Add("a@x.io", bookA)
	require.NoError(t, err)

	items, err := cart.UpdateQuantity("a@x.io", bookA.ID, 5)
	require.NoError(t, err)
	assert.Equal(t, 5, items[0].Quantity)
	assert.Equal(t, "cart.quantity_updated [5]", n.Messages()[1])

	t.Run("absent id", func(t *testing.T) {
		items, err := cart.UpdateQuantity("a@x.io", 999, 2)
		require.NoError(t, err)
		assert.Len(t, items, 1)
	})

	t.Run("zero removes", func(t *testing.T) {
		items, err := cart.UpdateQuantity("a@x.io", bookA.ID, 0)
		require.NoError(t, err)
		assert.Empty(t, items)
		assert.Empty(t, cart.Items("a@x.io"))
	})
}

func TestCart_ClearAndSummary(t *testing.T) {
	cart, kv, _ := newTestCart()
	_, err := cart.Add("a@x.io", bookA)
	require.NoError(t, err)
	_, err = cart.Add("a@x.io", bookB)
	require.NoError(t, err)
	_, err = cart.Add("a@x.io", bookB)
	require.NoError(t, err)

	summary := cart.Summary("a@x.io")
	assert.Equal(t, 3, summary.Items)
	assert.InDelta(t, 61.0, summary.Subtotal, 0.0001)

	require.NoError(t, cart.Clear("a@x.io"))
	assert.Empty(t, cart.Items("a@x.io"))
	raw, _, _ := kv.Get("cart:a@x.io")
	assert.Equal(t, "[]", raw)
}

func TestCart_EmptyUserIsNoop(t *testing.T) {
	cart, kv, n := newTestCart()

	items, err := cart.Add("", bookA)
	require.NoError(t, err)
	assert.Empty(t, items)
	assert.Empty(t, kv.Keys())
	assert.Empty(t, n.Messages())

	items, err = cart.Initialize("")
	require.NoError(t, err)
	assert.NotNil(t, items)
	assert.Empty(t, items)
}

func TestCart_InitializeReadsStorage(t *testing.T) {
	kv := kvstore.NewMemoryStore()
	require.NoError(t, kv.Set("cart:a@x.io", `[{"id":1,"title":"T","price":3,"quantity":2}]`))
	cart := NewCart(kv, nil, nil)

	assert.Empty(t, cart.Items("a@x.io"))

	items, err := cart.Initialize("a@x.io")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, 2, items[0].Quantity)
	assert.Equal(t, items, cart.Items("a@x.io"))
}

func TestCart_CorruptDocumentTreatedAsEmpty(t *testing.T) {
	kv := kvstore.NewMemoryStore()
	require.NoError(t, kv.Set("cart:a@x.io", "{{{"))
	cart := NewCart(kv, nil, nil)

	items, err := cart.Initialize("a@x.io")
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestCart_MigratesLegacySharedDocument(t *testing.T) {
	kv := kvstore.NewMemoryStore()
	require.NoError(t, kv.Set(entities.StorageKeyLegacyCart,
		`{"a@x.io":[{"id":7,"title":"Legacy","price":4,"quantity":3}],"b@x.io":[]}`))
	cart := NewCart(kv, nil, nil)

	items, err := cart.Initialize("a@x.io")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, int64(7), items[0].ID)

	raw, found, _ := kv.Get("cart:a@x.io")
	assert.True(t, found)
	assert.Contains(t, raw, "Legacy")

	items, err = cart.Initialize("b@x.io")
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestCart_FailedWriteLeavesMemoryUnchanged(t *testing.T) {
	kv := &failingStore{MemoryStore: kvstore.NewMemoryStore()}
	n := &recordingNotifier{}
	cart := NewCart(kv, n, nil)
	_, err := cart.Add("a@x.io", bookA)
	require.NoError(t, err)

	kv.fail = true
	_, err = cart.Add("a@x.io", bookA)
	assert.Error(t, err)

	items := cart.Items("a@x.io")
	require.Len(t, items, 1)
	assert.Equal(t, 1, items[0].Quantity)
	assert.Len(t, n.Messages(), 1)
}

func TestCart_ConcurrentUsersDoNotLoseUpdates(t *testing.T) {
	kv := kvstore.NewMemoryStore()
	cart := NewCart(kv, nil, nil)
	users := []string{"a@x.io", "b@x.io", "c@x.io", "d@x.io"}
	const perUser = 25

	var wg sync.WaitGroup
	for _, user := range users {
		for i := 0; i < perUser; i++ {
			wg.Add(1)
			go func(user string) {
				defer wg.Done()
				_, err := cart.Add(user, bookA)
				assert.NoError(t, err)
			}(user)
		}
	}
	wg.Wait()

	fresh := NewCart(kv, nil, nil)
	for _, user := range users {
		items, err := fresh.Initialize(user)
		require.NoError(t, err)
		require.Len(t, items, 1, user)
		assert.Equal(t, perUser, items[0].Quantity, user)
	}
}

func newTestFavorites() (*Favorites, *kvstore.MemoryStore, *recordingNotifier) {
	kv := kvstore.NewMemoryStore()
	n := &recordingNotifier{}
	return NewFavorites(kv, n, keyTranslator{}), kv, n
}

func TestFavorites_AddHasSetSemantics(t *testing.T) {
	favs, kv, n := newTestFavorites()

	added, err := favs.Add("a@x.io", 42)
	require.NoError(t, err)
	assert.True(t, added)

	added, err = favs.Add("a@x.io", 42)
	require.NoError(t, err)
	assert.False(t, added)

	assert.Equal(t, []int64{42}, favs.List("a@x.io"))
	assert.True(t, favs.Contains("a@x.io", 42))
	assert.Equal(t, []string{"favorites.added"}, n.Messages())

	raw, _, _ := kv.Get("favorites:a@x.io")
	assert.Equal(t, "[42]", raw)
}

func TestFavorites_Remove(t *testing.T) {
	favs, _, n := newTestFavorites()
	_, err := favs.Add("a@x.io", 42)
	require.NoError(t, err)

	removed, err := favs.Remove("a@x.io", 7)
	require.NoError(t, err)
	assert.False(t, removed)

	removed, err = favs.Remove("a@x.io", 42)
	require.NoError(t, err)
	assert.True(t, removed)
	assert.Empty(t, favs.List("a@x.io"))
	assert.Equal(t, []string{"favorites.added", "favorites.removed"}, n.Messages())
}

func TestFavorites_ToggleIsItsOwnInverse(t *testing.T) {
	favs, _, n := newTestFavorites()
	_, err := favs.Add("a@x.io", 1)
	require.NoError(t, err)
	before := favs.List("a@x.io")

	on, err := favs.Toggle("a@x.io", 42)
	require.NoError(t, err)
	assert.True(t, on)
	assert.True(t, favs.Contains("a@x.io", 42))

	on, err = favs.Toggle("a@x.io", 42)
	require.NoError(t, err)
	assert.False(t, on)

	assert.Equal(t, before, favs.List("a@x.io"))
	assert.Len(t, n.Messages(), 1)
}

func TestFavorites_IsolatedPerUser(t *testing.T) {
	favs, _, _ := newTestFavorites()

	_, err := favs.Toggle("a@x.io", 42)
	require.NoError(t, err)

	assert.True(t, favs.Contains("a@x.io", 42))
	assert.False(t, favs.Contains("b@x.io", 42))
}

func TestFavorites_InitializeCollapsesDuplicates(t *testing.T) {
	kv := kvstore.NewMemoryStore()
	require.NoError(t, kv.Set(entities.StorageKeyLegacyFavorites, `{"a@x.io":[3,5,3]}`))
	favs := NewFavorites(kv, nil, nil)

	ids, err := favs.Initialize("a@x.io")
	require.NoError(t, err)
	assert.Equal(t, []int64{3, 5}, ids)

	on, err := favs.Toggle("a@x.io", 3)
	require.NoError(t, err)
	assert.False(t, on)
	assert.Equal(t, []int64{5}, favs.List("a@x.io"))
}

func TestFavorites_ClearAndForget(t *testing.T) {
	favs, kv, _ := newTestFavorites()
	_, err := favs.Add("a@x.io", 42)
	require.NoError(t, err)

	favs.Forget("a@x.io")
	assert.Empty(t, favs.List("a@x.io"))

	ids, err := favs.Initialize("a@x.io")
	require.NoError(t, err)
	assert.Equal(t, []int64{42}, ids)

	require.NoError(t, favs.Clear("a@x.io"))
	assert.Empty(t, favs.List("a@x.io"))
	raw, _, _ := kv.Get("favorites:a@x.io")
	assert.Equal(t, "[]", raw)
}
