package storefront

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEventBus_PublishDoesNotBlock(t *testing.T) {
	b := newEventBus()
	events, cancel := b.subscribe()
	defer cancel()

	for i := 0; i < subscriberBuffer*2; i++ {
		b.publish(ModuleCart, "add")
	}

	assert.Len(t, events, subscriberBuffer)
}

func TestEventBus_CancelAndClose(t *testing.T) {
	b := newEventBus()
	first, cancelFirst := b.subscribe()
	second, _ := b.subscribe()

	cancelFirst()
	cancelFirst()
	_, open := <-first
	assert.False(t, open)

	b.publish(ModuleCurrency, "rates")
	b.close()
	b.close()

	ev, open := <-second
	assert.True(t, open)
	assert.Equal(t, ModuleCurrency, ev.Module)
	_, open = <-second
	assert.False(t, open)

	late, _ := b.subscribe()
	_, open = <-late
	assert.False(t, open)
}
