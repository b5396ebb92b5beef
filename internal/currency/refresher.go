package currency

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// DefaultUpdateInterval is the refresh period when none is configured.
const DefaultUpdateInterval = 3 * time.Minute

// Refresher refreshes a Cache immediately on Start and then periodically.
type Refresher struct {
	cache    *Cache
	interval time.Duration

	cron    *cron.Cron
	entryID cron.EntryID
	mu      sync.Mutex
	running bool
	runID   uint64
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// NewRefresher creates a stopped refresher. Intervals below one second are
// rounded up by the scheduler.
func NewRefresher(cache *Cache, interval time.Duration) *Refresher {
	if interval <= 0 {
		interval = DefaultUpdateInterval
	}
	return &Refresher{
		cache:    cache,
		interval: interval,
		cron:     cron.New(),
	}
}

// Start triggers one refresh right away and schedules the periodic job.
// Calling Start again replaces the scheduled job instead of adding another.
// The refresher stops when ctx is cancelled.
func (r *Refresher) Start(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.running {
		r.cron.Remove(r.entryID)
		r.cancel()
	}

	r.runID++
	runCtx, cancel := context.WithCancel(ctx)
	r.cancel = cancel

	r.entryID = r.cron.Schedule(cron.Every(r.interval), cron.FuncJob(func() {
		r.cache.Refresh(runCtx)
	}))

	if !r.running {
		r.cron.Start()
		r.running = true
		log.Printf("Currency refresher: started, refreshing every %s", r.interval)
	}

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		r.cache.Refresh(runCtx)
	}()

	go func(id uint64) {
		<-runCtx.Done()
		r.stopRun(id)
	}(r.runID)
}

// Stop cancels in-flight refreshes and removes the periodic job. Stopping a
// stopped refresher is a no-op.
func (r *Refresher) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stopLocked()
}

// IsRunning returns whether the periodic job is scheduled.
func (r *Refresher) IsRunning() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.running
}

func (r *Refresher) stopRun(id uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.runID != id {
		return
	}
	r.stopLocked()
}

func (r *Refresher) stopLocked() {
	if !r.running {
		return
	}

	r.cancel()
	r.cron.Remove(r.entryID)
	// Wait for a job that is already running
	<-r.cron.Stop().Done()
	r.wg.Wait()

	r.running = false
	r.cancel = nil
	log.Printf("Currency refresher: stopped")
}
