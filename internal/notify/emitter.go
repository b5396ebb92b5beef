// Package notify keeps the queue of short-lived user notifications.
package notify

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mrlokans/storefront/internal/entities"
)

// DefaultDuration is used when Show is called without a duration.
const DefaultDuration = 3 * time.Second

// Options configures an Emitter.
type Options struct {
	Duration   time.Duration // default lifetime of a notification
	MaxVisible int           // oldest notifications are dropped beyond this; 0 means no cap
	OnChange   func()        // called after the visible queue changes
	OnShow     func(entities.Notification)
}

// Emitter is a fire-and-forget notification queue. Each notification removes
// itself after its duration.
type Emitter struct {
	mu       sync.Mutex
	items    []entities.Notification
	timers   map[string]*time.Timer
	opts     Options
	closed   bool
	now      func() time.Time
	onChange func()
}

func NewEmitter(opts Options) *Emitter {
	if opts.Duration <= 0 {
		opts.Duration = DefaultDuration
	}
	return &Emitter{
		timers:   make(map[string]*time.Timer),
		opts:     opts,
		now:      time.Now,
		onChange: opts.OnChange,
	}
}

// SetOnChange replaces the change callback.
func (e *Emitter) SetOnChange(fn func()) {
	e.mu.Lock()
	e.onChange = fn
	e.mu.Unlock()
}

// Show queues a notification and returns it. A non-positive duration uses the
// emitter's default.
func (e *Emitter) Show(message string, severity entities.Severity, duration time.Duration) entities.Notification {
	if duration <= 0 {
		duration = e.opts.Duration
	}
	n := entities.Notification{
		ID:        uuid.NewString(),
		Message:   message,
		Severity:  severity,
		Duration:  duration,
		CreatedAt: e.now(),
	}

	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return n
	}
	e.items = append(e.items, n)
	if e.opts.MaxVisible > 0 {
		for len(e.items) > e.opts.MaxVisible {
			e.dropLocked(e.items[0].ID)
		}
	}
	id := n.ID
	e.timers[id] = time.AfterFunc(duration, func() { e.dismiss(id) })
	onChange := e.onChange
	e.mu.Unlock()

	if e.opts.OnShow != nil {
		e.opts.OnShow(n)
	}
	if onChange != nil {
		onChange()
	}
	return n
}

func (e *Emitter) Success(message string) entities.Notification {
	return e.Show(message, entities.SeveritySuccess, 0)
}

func (e *Emitter) Warning(message string) entities.Notification {
	return e.Show(message, entities.SeverityWarning, 0)
}

func (e *Emitter) Error(message string) entities.Notification {
	return e.Show(message, entities.SeverityError, 0)
}

// Dismiss removes a notification before it expires.
func (e *Emitter) Dismiss(id string) bool {
	return e.dismiss(id)
}

// Visible returns the currently queued notifications, oldest first.
func (e *Emitter) Visible() []entities.Notification {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]entities.Notification, len(e.items))
	copy(out, e.items)
	return out
}

// Close stops all pending timers and clears the queue. Later Show calls are ignored.
func (e *Emitter) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return
	}
	e.closed = true
	for id, t := range e.timers {
		t.Stop()
		delete(e.timers, id)
	}
	e.items = nil
}

func (e *Emitter) dismiss(id string) bool {
	e.mu.Lock()
	removed := e.dropLocked(id)
	onChange := e.onChange
	e.mu.Unlock()

	if removed && onChange != nil {
		onChange()
	}
	return removed
}

func (e *Emitter) dropLocked(id string) bool {
	if t, ok := e.timers[id]; ok {
		t.Stop()
		delete(e.timers, id)
	}
	for i, n := range e.items {
		if n.ID == id {
			e.items = append(e.items[:i], e.items[i+1:]...)
			return true
		}
	}
	return false
}
