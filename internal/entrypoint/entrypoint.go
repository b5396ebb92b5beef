package entrypoint

import (
	"context"
	"encoding/hex"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/storefront/internal/auth"
	"github.com/mrlokans/storefront/internal/config"
	"github.com/mrlokans/storefront/internal/currency"
	"github.com/mrlokans/storefront/internal/database"
	"github.com/mrlokans/storefront/internal/database/kv"
	http_controllers "github.com/mrlokans/storefront/internal/http"
	"github.com/mrlokans/storefront/internal/kvstore"
	"github.com/mrlokans/storefront/internal/metrics"
	"github.com/mrlokans/storefront/internal/storefront"
)

// ShutdownFunc is called during graceful shutdown to clean up resources.
type ShutdownFunc func(ctx context.Context)

func Serve(router *gin.Engine, cfg *config.Config, onShutdown ShutdownFunc) {
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler: router,
	}

	go func() {
		log.Printf("Starting server at %s:%d", cfg.HTTP.Host, cfg.HTTP.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// kill (no param) default sends syscall.SIGTERM, kill -2 is syscall.SIGINT
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Printf("Shutdown Server, waiting %v before killing\n", timeout)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	// Stop background work before the listener goes away
	if onShutdown != nil {
		onShutdown(ctx)
	}

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server Shutdown:", err)
	}

	log.Println("Server exiting")
}

// Backend is the opened persistent store plus what the process needs to
// check and release it.
type Backend struct {
	Store  kvstore.Store
	Health http_controllers.HealthChecker
	Close  func() error
}

// OpenKV opens the configured persistent store. The sqlite backend shares db.
func OpenKV(cfg config.KV, db *database.Database) (*Backend, error) {
	switch cfg.Backend {
	case config.KVBackendSQLite, "":
		if db == nil {
			return nil, fmt.Errorf("sqlite KV backend needs a database")
		}
		return &Backend{
			Store:  kv.NewRepository(db.DB),
			Health: db,
			Close:  func() error { return nil },
		}, nil
	case config.KVBackendRedis:
		store := kvstore.NewRedisStore(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisPrefix)
		if err := store.Ping(); err != nil {
			_ = store.Close()
			return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.RedisAddr, err)
		}
		return &Backend{Store: store, Health: store, Close: store.Close}, nil
	case config.KVBackendMemory:
		log.Printf("WARNING: KV backend is in-memory, state is lost on restart")
		return &Backend{Store: kvstore.NewMemoryStore(), Close: func() error { return nil }}, nil
	default:
		return nil, fmt.Errorf("unknown KV backend %q", cfg.Backend)
	}
}

// CSRFSecret decodes the configured secret or generates a fresh one.
func CSRFSecret(configured string) ([]byte, error) {
	if configured != "" {
		secret, err := hex.DecodeString(configured)
		if err != nil {
			// Not hex, use as raw bytes
			return []byte(configured), nil
		}
		return secret, nil
	}

	secret, err := auth.GenerateSessionSecret()
	if err != nil {
		return nil, err
	}
	log.Printf("Generated session secret (set AUTH_SESSION_SECRET to persist)")
	return hex.DecodeString(secret)
}

func Run(cfg *config.Config, version string) {
	log.Printf("Starting Storefront v%s", version)

	// Initialize database
	db, err := database.NewDatabase(cfg.Database.Path)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("Error closing database: %v", err)
		}
	}()

	backend, err := OpenKV(cfg.KV, db)
	if err != nil {
		log.Fatalf("Failed to open KV store: %v", err)
	}
	defer func() {
		if err := backend.Close(); err != nil {
			log.Printf("Error closing KV store: %v", err)
		}
	}()
	log.Printf("KV backend: %s", cfg.KV.Backend)

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New()
	}

	store, err := storefront.New(storefront.Options{
		KV:              backend.Store,
		Rates:           currency.NewRatesClient(cfg.Currency.APIURL, cfg.Currency.RequestTimeout),
		Auth:            cfg.Auth,
		UpdateInterval:  cfg.Currency.UpdateInterval,
		Notifications:   cfg.Notifications,
		DefaultLanguage: cfg.Locale.DefaultLanguage,
		Metrics:         m,
	})
	if err != nil {
		log.Fatalf("Failed to create storefront: %v", err)
	}

	storeCtx, storeCancel := context.WithCancel(context.Background())
	if err := store.Init(storeCtx); err != nil {
		storeCancel()
		log.Fatalf("Failed to initialize storefront: %v", err)
	}

	// Get underlying SQL DB for session store
	sqlDB, err := db.DB.DB()
	if err != nil {
		log.Fatalf("Failed to get SQL DB for sessions: %v", err)
	}
	sessionManager, err := auth.NewSessionManager(sqlDB, cfg.Auth)
	if err != nil {
		log.Fatalf("Failed to initialize session manager: %v", err)
	}

	var csrfSecret []byte
	if cfg.HTTP.CSRFEnabled {
		csrfSecret, err = CSRFSecret(cfg.Auth.SessionSecret)
		if err != nil {
			log.Fatalf("Failed to generate CSRF secret: %v", err)
		}
	} else {
		log.Printf("WARNING: CSRF protection is disabled")
	}

	loginLimiter := auth.NewLoginLimiter(cfg.Auth)

	healthChecks := map[string]http_controllers.HealthChecker{"database": db}
	if backend.Health != nil && cfg.KV.Backend != config.KVBackendSQLite {
		healthChecks["kv"] = backend.Health
	}

	router := http_controllers.NewRouter(http_controllers.RouterConfig{
		Store:          store,
		SessionManager: sessionManager,
		LoginLimiter:   loginLimiter,
		CSRFSecret:     csrfSecret,
		SecureCookies:  cfg.Auth.SecureCookies,
		HealthChecks:   healthChecks,
		Metrics:        m,
		Version:        version,
	})

	// Shutdown callback for graceful cleanup
	onShutdown := func(ctx context.Context) {
		storeCancel()
		store.Close()
		loginLimiter.Stop()
	}

	Serve(router, cfg, onShutdown)
}
