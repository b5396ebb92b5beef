package http

import (
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

const keepAliveInterval = 25 * time.Second

type EventsController struct {
	store Storefront
}

func NewEventsController(store Storefront) *EventsController {
	return &EventsController{store: store}
}

// Stream sends the current snapshot, then one "change" event per state
// mutation until the client disconnects or the store closes.
// GET /api/events
func (ec *EventsController) Stream(c *gin.Context) {
	events, cancel := ec.store.Subscribe()
	defer cancel()

	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)

	c.SSEvent("snapshot", ec.store.Snapshot())
	c.Writer.Flush()

	keepAlive := time.NewTicker(keepAliveInterval)
	defer keepAlive.Stop()

	ctx := c.Request.Context()
	c.Stream(func(w io.Writer) bool {
		select {
		case <-ctx.Done():
			return false
		case ev, ok := <-events:
			if !ok {
				return false
			}
			c.SSEvent("change", ev)
			return true
		case <-keepAlive.C:
			c.SSEvent("ping", gin.H{"at": time.Now().UTC()})
			return true
		}
	})
}
