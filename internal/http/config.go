package http

import (
	"github.com/mrlokans/storefront/internal/auth"
	"github.com/mrlokans/storefront/internal/metrics"
)

// RouterConfig contains all dependencies and configuration needed
// to create the HTTP router.
type RouterConfig struct {
	// Core dependencies
	Store Storefront

	// Authentication
	SessionManager *auth.SessionManager // nil disables cookie sessions
	LoginLimiter   *auth.LoginLimiter   // nil disables login rate limiting
	CSRFSecret     []byte               // empty disables CSRF protection
	SecureCookies  bool

	// Health checks, keyed by component name
	HealthChecks map[string]HealthChecker

	// Observability
	Metrics *metrics.Metrics

	// Application info
	Version string
}
