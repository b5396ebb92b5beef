package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/storefront/internal/auth"
)

// NewRouter creates and configures the HTTP router with all endpoints.
// Uses RouterConfig to receive all dependencies.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	// Apply security headers to all responses
	router.Use(auth.SecurityHeadersMiddleware())

	if cfg.Metrics != nil {
		router.Use(cfg.Metrics.GinMiddleware())
	}

	// CSRF must run before session so that session context is preserved
	if len(cfg.CSRFSecret) > 0 {
		router.Use(auth.CSRFMiddleware(cfg.CSRFSecret, cfg.SecureCookies))
	}

	// Session runs after CSRF so session context isn't overwritten by CSRF's request replacement
	if cfg.SessionManager != nil {
		router.Use(cfg.SessionManager.SessionLoadSave())
	}

	requireAuth := auth.NewMiddleware(cfg.Store, cfg.SessionManager).RequireAuth()

	health := NewHealthController(cfg.HealthChecks, cfg.Version)
	authController := NewAuthController(cfg.Store, cfg.SessionManager, cfg.LoginLimiter)
	cartController := NewCartController(cfg.Store)
	favoritesController := NewFavoritesController(cfg.Store, cfg.SessionManager)
	currencyController := NewCurrencyController(cfg.Store)
	localeController := NewLocaleController(cfg.Store)
	eventsController := NewEventsController(cfg.Store)

	// Health endpoints
	router.GET("/health", health.Status)
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "pong",
		})
	})
	router.GET("/metrics", gin.WrapH(cfg.Metrics.Handler()))

	api := router.Group("/api")

	// CSRF token for clients that send mutating requests
	api.GET("/csrf", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"token": auth.GetCSRFToken(c)})
	})

	// Auth endpoints
	api.POST("/auth/register", authController.Register)
	api.POST("/auth/login", authController.Login)
	api.POST("/auth/logout", authController.Logout)
	api.POST("/auth/reset-password", authController.ResetPassword)
	api.GET("/auth/me", authController.Me)

	// Cart endpoints
	cart := api.Group("/cart", requireAuth)
	cart.GET("", cartController.GetCart)
	cart.POST("", cartController.AddItem)
	cart.DELETE("", cartController.Clear)
	cart.PATCH("/:bookId", cartController.UpdateQuantity)
	cart.DELETE("/:bookId", cartController.RemoveItem)

	// Favorites endpoints. Toggle checks the session itself so anonymous
	// users get the login-required notification.
	api.POST("/favorites/toggle", favoritesController.Toggle)
	favorites := api.Group("/favorites", requireAuth)
	favorites.GET("", favoritesController.List)
	favorites.DELETE("", favoritesController.Clear)
	favorites.GET("/:bookId", favoritesController.Status)

	// Currency endpoints
	api.GET("/currencies", currencyController.List)
	api.GET("/currency", currencyController.Get)
	api.PUT("/currency", currencyController.Select)
	api.POST("/currency/refresh", currencyController.Refresh)
	api.GET("/currency/display", currencyController.Display)

	// Locale and notification endpoints
	api.GET("/language", localeController.GetLanguage)
	api.PUT("/language", localeController.SetLanguage)
	api.GET("/notifications", localeController.Notifications)
	api.DELETE("/notifications/:id", localeController.DismissNotification)

	// Live state stream
	api.GET("/events", eventsController.Stream)

	return router
}
