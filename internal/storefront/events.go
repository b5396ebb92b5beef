package storefront

import (
	"sync"
	"time"
)

// Modules that publish events
const (
	ModuleAuth          = "auth"
	ModuleCart          = "cart"
	ModuleFavorites     = "favorites"
	ModuleCurrency      = "currency"
	ModuleLanguage      = "language"
	ModuleNotifications = "notifications"
)

// Event announces that a module's state changed.
type Event struct {
	Module   string    `json:"module"`
	Mutation string    `json:"mutation"`
	At       time.Time `json:"at"`
}

const subscriberBuffer = 32

type eventBus struct {
	mu     sync.Mutex
	subs   map[int]chan Event
	nextID int
	closed bool
}

func newEventBus() *eventBus {
	return &eventBus{subs: make(map[int]chan Event)}
}

// subscribe returns a channel of events and a cancel func. The channel is
// closed by cancel or when the bus closes.
func (b *eventBus) subscribe() (<-chan Event, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch := make(chan Event, subscriberBuffer)
	if b.closed {
		close(ch)
		return ch, func() {}
	}

	id := b.nextID
	b.nextID++
	b.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			if sub, ok := b.subs[id]; ok {
				delete(b.subs, id)
				close(sub)
			}
		})
	}
}

// publish never blocks; subscribers with a full buffer miss the event.
func (b *eventBus) publish(module, mutation string) {
	ev := Event{Module: module, Mutation: mutation, At: time.Now()}

	b.mu.Lock()
	defer b.mu.Unlock()
	for _, ch := range b.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}

func (b *eventBus) close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for id, ch := range b.subs {
		delete(b.subs, id)
		close(ch)
	}
}
