package auth

import (
	"sync"
	"time"

	"github.com/mrlokans/storefront/internal/config"
)

// LoginLimiter locks out an IP+email pair after repeated failed logins.
type LoginLimiter struct {
	mu       sync.Mutex
	attempts map[string]*loginAttempts
	now      func() time.Time

	maxAttempts int
	window      time.Duration
	lockout     time.Duration

	stop     chan struct{}
	stopOnce sync.Once
}

type loginAttempts struct {
	failures    int
	windowStart time.Time
	lockedUntil time.Time
}

// NewLoginLimiter starts a limiter with a background sweep of stale records.
// Zero values in cfg fall back to 5 attempts per 15m with a 30m lockout.
func NewLoginLimiter(cfg config.Auth) *LoginLimiter {
	l := &LoginLimiter{
		attempts:    make(map[string]*loginAttempts),
		now:         time.Now,
		maxAttempts: cfg.MaxLoginAttempts,
		window:      cfg.RateLimitWindow,
		lockout:     cfg.LockoutDuration,
		stop:        make(chan struct{}),
	}
	if l.maxAttempts <= 0 {
		l.maxAttempts = 5
	}
	if l.window <= 0 {
		l.window = 15 * time.Minute
	}
	if l.lockout <= 0 {
		l.lockout = 30 * time.Minute
	}

	go l.sweepLoop(5 * time.Minute)
	return l
}

// Stop ends the background sweep. Safe to call more than once.
func (l *LoginLimiter) Stop() {
	l.stopOnce.Do(func() { close(l.stop) })
}

// Allow reports whether another login attempt may be made and, if not, how
// long the caller has to wait.
func (l *LoginLimiter) Allow(ip, email string) (bool, time.Duration) {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	rec, ok := l.attempts[limiterKey(ip, email)]
	if !ok {
		return true, 0
	}
	if now.Before(rec.lockedUntil) {
		return false, rec.lockedUntil.Sub(now)
	}
	if now.Sub(rec.windowStart) > l.window {
		return true, 0
	}
	return rec.failures < l.maxAttempts, 0
}

// RecordFailure counts a failed attempt and reports whether it triggered a lockout.
func (l *LoginLimiter) RecordFailure(ip, email string) (bool, time.Duration) {
	now := l.now()
	key := limiterKey(ip, email)

	l.mu.Lock()
	defer l.mu.Unlock()

	rec, ok := l.attempts[key]
	if !ok || now.Sub(rec.windowStart) > l.window {
		rec = &loginAttempts{windowStart: now}
		l.attempts[key] = rec
	}

	rec.failures++
	if rec.failures >= l.maxAttempts {
		rec.lockedUntil = now.Add(l.lockout)
		return true, l.lockout
	}
	return false, 0
}

// RecordSuccess forgets earlier failures.
func (l *LoginLimiter) RecordSuccess(ip, email string) {
	l.mu.Lock()
	delete(l.attempts, limiterKey(ip, email))
	l.mu.Unlock()
}

func (l *LoginLimiter) sweepLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			l.sweep()
		case <-l.stop:
			return
		}
	}
}

func (l *LoginLimiter) sweep() {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	for key, rec := range l.attempts {
		if now.Sub(rec.windowStart) > l.window && !now.Before(rec.lockedUntil) {
			delete(l.attempts, key)
		}
	}
}

func limiterKey(ip, email string) string {
	return ip + "|" + NormalizeEmail(email)
}
