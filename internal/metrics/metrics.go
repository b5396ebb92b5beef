// Package metrics exposes Prometheus counters for storefront activity.
// A nil *Metrics is valid and records nothing.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mrlokans/storefront/internal/entities"
)

const namespace = "storefront"

// Outcome labels
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

type Metrics struct {
	registry *prometheus.Registry

	rateFetches       *prometheus.CounterVec
	rateFetchDuration *prometheus.HistogramVec
	cartOperations    *prometheus.CounterVec
	favoriteOps       *prometheus.CounterVec
	authAttempts      *prometheus.CounterVec
	notifications     *prometheus.CounterVec
	httpRequests      *prometheus.CounterVec
	httpDuration      *prometheus.HistogramVec
}

// New registers the storefront metrics plus Go runtime and process
// collectors on a fresh registry.
func New() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,

		rateFetches: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rate_fetches_total",
			Help:      "Exchange rate requests by currency and outcome",
		}, []string{"currency", "outcome"}),

		rateFetchDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "rate_fetch_duration_seconds",
			Help:      "Exchange rate request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"currency"}),

		cartOperations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cart_operations_total",
			Help:      "Cart mutations by operation",
		}, []string{"operation"}),

		favoriteOps: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "favorite_operations_total",
			Help:      "Favorites mutations by operation",
		}, []string{"operation"}),

		authAttempts: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "auth_attempts_total",
			Help:      "Register, login and password reset attempts by outcome",
		}, []string{"action", "outcome"}),

		notifications: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_total",
			Help:      "Notifications shown by severity",
		}, []string{"severity"}),

		httpRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by method, route and status",
		}, []string{"method", "route", "status"}),

		httpDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
}

// Registry returns the registry the metrics live in.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// ObserveRateFetch has the signature of currency.FetchObserver.
func (m *Metrics) ObserveRateFetch(code string, err error, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.rateFetches.WithLabelValues(code, outcome(err)).Inc()
	m.rateFetchDuration.WithLabelValues(code).Observe(elapsed.Seconds())
}

func (m *Metrics) CartOperation(op string) {
	if m == nil {
		return
	}
	m.cartOperations.WithLabelValues(op).Inc()
}

func (m *Metrics) FavoriteOperation(op string) {
	if m == nil {
		return
	}
	m.favoriteOps.WithLabelValues(op).Inc()
}

func (m *Metrics) AuthAttempt(action string, err error) {
	if m == nil {
		return
	}
	m.authAttempts.WithLabelValues(action, outcome(err)).Inc()
}

func (m *Metrics) Notification(severity entities.Severity) {
	if m == nil {
		return
	}
	m.notifications.WithLabelValues(string(severity)).Inc()
}

// GinMiddleware counts requests by matched route pattern.
func (m *Metrics) GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if m == nil {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		method := c.Request.Method
		m.httpRequests.WithLabelValues(method, route, strconv.Itoa(c.Writer.Status())).Inc()
		m.httpDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func outcome(err error) string {
	if err != nil {
		return OutcomeFailure
	}
	return OutcomeSuccess
}
