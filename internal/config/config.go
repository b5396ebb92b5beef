package config

import (
	"time"

	"github.com/spf13/viper"
)

type KVBackend string

const (
	KVBackendSQLite KVBackend = "sqlite" // KV records in the main database (default)
	KVBackendRedis  KVBackend = "redis"  // Shared Redis instance
	KVBackendMemory KVBackend = "memory" // Process memory, lost on restart
)

type (
	Config struct {
		HTTP
		Global
		Database
		KV
		Auth
		Currency
		Notifications
		Locale
		Metrics
	}

	HTTP struct {
		Port        int32
		Host        string
		CSRFEnabled bool
	}
	Global struct {
		ShutdownTimeoutInSeconds int
	}
	Database struct {
		Path string
	}
	KV struct {
		Backend       KVBackend
		RedisAddr     string
		RedisPassword string
		RedisPrefix   string
	}
	Auth struct {
		SessionSecret   string
		SessionLifetime time.Duration
		BcryptCost      int
		SecureCookies   bool // Set to false for local dev without HTTPS

		// Rate limiting configuration
		MaxLoginAttempts int           // Max failed attempts before lockout (default: 5)
		RateLimitWindow  time.Duration // Time window for counting attempts (default: 15m)
		LockoutDuration  time.Duration // How long to lock out (default: 30m)
	}
	Currency struct {
		APIURL         string        // Rates endpoint, the currency code is appended as a path segment
		UpdateInterval time.Duration // Periodic refresh (default: 3m)
		RequestTimeout time.Duration
	}
	Notifications struct {
		Duration   time.Duration
		MaxVisible int // 0 keeps every notification until it expires
	}
	Locale struct {
		DefaultLanguage string
	}
	Metrics struct {
		Enabled bool
	}
)

func NewConfig() *Config {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("port", 8190)
	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("csrf_enabled", true)
	v.SetDefault("shutdown_timeout_in_seconds", 2)
	v.SetDefault("database_path", DefaultDatabasePath)

	// Persistent store defaults
	v.SetDefault("kv_backend", string(KVBackendSQLite))
	v.SetDefault("redis_addr", "localhost:6379")
	v.SetDefault("redis_password", "")
	v.SetDefault("redis_prefix", "storefront:")

	// Auth defaults
	v.SetDefault("auth_session_secret", "")       // Auto-generated if empty
	v.SetDefault("auth_session_lifetime", "24h")  // 24 hours
	v.SetDefault("auth_bcrypt_cost", 10)          // bcrypt cost factor
	v.SetDefault("auth_secure_cookies", true)     // HTTPS-only cookies
	v.SetDefault("auth_max_login_attempts", 5)    // Max failed attempts
	v.SetDefault("auth_rate_limit_window", "15m") // Window for counting attempts
	v.SetDefault("auth_lockout_duration", "30m")  // Lockout duration

	// Currency defaults
	v.SetDefault("currency_api_url", DefaultCurrencyAPIURL)
	v.SetDefault("currency_update_interval", DefaultCurrencyUpdateInterval)
	v.SetDefault("currency_request_timeout", "10s")

	v.SetDefault("notification_duration", DefaultNotificationDuration)
	v.SetDefault("notification_max_visible", 0)
	v.SetDefault("default_language", DefaultLanguage)
	v.SetDefault("metrics_enabled", true)

	return &Config{
		HTTP: HTTP{
			Port:        v.GetInt32("PORT"),
			Host:        v.GetString("HOST"),
			CSRFEnabled: v.GetBool("CSRF_ENABLED"),
		},
		Global: Global{
			ShutdownTimeoutInSeconds: v.GetInt("SHUTDOWN_TIMEOUT_IN_SECONDS"),
		},
		Database: Database{
			Path: v.GetString("DATABASE_PATH"),
		},
		KV: KV{
			Backend:       KVBackend(v.GetString("KV_BACKEND")),
			RedisAddr:     v.GetString("REDIS_ADDR"),
			RedisPassword: v.GetString("REDIS_PASSWORD"),
			RedisPrefix:   v.GetString("REDIS_PREFIX"),
		},
		Auth: Auth{
			SessionSecret:    v.GetString("AUTH_SESSION_SECRET"),
			SessionLifetime:  v.GetDuration("AUTH_SESSION_LIFETIME"),
			BcryptCost:       v.GetInt("AUTH_BCRYPT_COST"),
			SecureCookies:    v.GetBool("AUTH_SECURE_COOKIES"),
			MaxLoginAttempts: v.GetInt("AUTH_MAX_LOGIN_ATTEMPTS"),
			RateLimitWindow:  v.GetDuration("AUTH_RATE_LIMIT_WINDOW"),
			LockoutDuration:  v.GetDuration("AUTH_LOCKOUT_DURATION"),
		},
		Currency: Currency{
			APIURL:         v.GetString("CURRENCY_API_URL"),
			UpdateInterval: v.GetDuration("CURRENCY_UPDATE_INTERVAL"),
			RequestTimeout: v.GetDuration("CURRENCY_REQUEST_TIMEOUT"),
		},
		Notifications: Notifications{
			Duration:   v.GetDuration("NOTIFICATION_DURATION"),
			MaxVisible: v.GetInt("NOTIFICATION_MAX_VISIBLE"),
		},
		Locale: Locale{
			DefaultLanguage: v.GetString("DEFAULT_LANGUAGE"),
		},
		Metrics: Metrics{
			Enabled: v.GetBool("METRICS_ENABLED"),
		},
	}
}
