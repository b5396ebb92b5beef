package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/mrlokans/storefront/internal/config"
)

func TestLoginLimiter_LocksAfterMaxAttempts(t *testing.T) {
	l := NewLoginLimiter(config.Auth{MaxLoginAttempts: 3, RateLimitWindow: time.Minute, LockoutDuration: time.Hour})
	defer l.Stop()

	for i := 0; i < 2; i++ {
		locked, _ := l.RecordFailure("1.2.3.4", "a@x.io")
		assert.False(t, locked)
	}
	allowed, _ := l.Allow("1.2.3.4", "a@x.io")
	assert.True(t, allowed)

	locked, retry := l.RecordFailure("1.2.3.4", "A@x.io")
	assert.True(t, locked)
	assert.Equal(t, time.Hour, retry)

	allowed, wait := l.Allow("1.2.3.4", "a@x.io")
	assert.False(t, allowed)
	assert.Greater(t, wait, time.Duration(0))

	// Other IPs are not affected
	allowed, _ = l.Allow("5.6.7.8", "a@x.io")
	assert.True(t, allowed)
}

func TestLoginLimiter_SuccessResets(t *testing.T) {
	l := NewLoginLimiter(config.Auth{MaxLoginAttempts: 2})
	defer l.Stop()

	l.RecordFailure("ip", "a@x.io")
	l.RecordSuccess("ip", "a@x.io")
	locked, _ := l.RecordFailure("ip", "a@x.io")

	assert.False(t, locked)
}

func TestLoginLimiter_LockoutExpires(t *testing.T) {
	now := time.Now()
	l := NewLoginLimiter(config.Auth{MaxLoginAttempts: 1, RateLimitWindow: time.Minute, LockoutDuration: 10 * time.Minute})
	defer l.Stop()
	l.now = func() time.Time { return now }

	l.RecordFailure("ip", "a@x.io")
	allowed, _ := l.Allow("ip", "a@x.io")
	assert.False(t, allowed)

	now = now.Add(11 * time.Minute)
	allowed, _ = l.Allow("ip", "a@x.io")
	assert.True(t, allowed)

	l.sweep()
	assert.Empty(t, l.attempts)
}

func TestLoginLimiter_StopIsIdempotent(t *testing.T) {
	l := NewLoginLimiter(config.Auth{})
	l.Stop()
	l.Stop()
}
