// Package auth is the storefront's credential store and its HTTP plumbing.
//
// Service keeps the registered identities as one JSON document in the KV
// store (key "registered_users") and the current session snapshot under
// "auth_user". Passwords are bcrypt hashes; every mutation is a full
// read-modify-write of the collection, serialized by the service mutex.
//
// # Configuration
//
//	AUTH_BCRYPT_COST=10          # bcrypt cost factor
//	AUTH_SESSION_LIFETIME=24h    # cookie session duration
//	AUTH_SESSION_SECRET=<hex>    # CSRF signing key, auto-generated if empty
//	AUTH_SECURE_COOKIES=true     # HTTPS-only cookies
//	AUTH_MAX_LOGIN_ATTEMPTS=5    # failed logins before lockout
//
// # Usage
//
//	authService := auth.NewService(kv, cfg.Auth)
//	sm, _ := auth.NewSessionManager(sqlDB, cfg.Auth)
//	router.Use(sm.SessionLoadSave())
//	guarded := router.Group("/api/cart", auth.NewMiddleware(authService, sm).RequireAuth())
package auth
