package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/storefront/internal/entities"
)

// ContextKeyEmail holds the authenticated user's email in the Gin context.
const ContextKeyEmail = "auth_email"

// CurrentUserProvider exposes the logged-in identity. *Service satisfies it.
type CurrentUserProvider interface {
	CurrentUser() *entities.Identity
}

// Middleware guards routes that need a logged-in user.
type Middleware struct {
	users          CurrentUserProvider
	sessionManager *SessionManager
}

// NewMiddleware creates the authentication guard. With a nil session manager
// only the store's session state is checked.
func NewMiddleware(users CurrentUserProvider, sessionManager *SessionManager) *Middleware {
	return &Middleware{
		users:          users,
		sessionManager: sessionManager,
	}
}

// RequireAuth passes when Authorized does.
func (m *Middleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := m.users.CurrentUser()
		if !m.sessionBelongsTo(c.Request, user) {
			abortUnauthorized(c)
			return
		}

		c.Set(ContextKeyEmail, user.Email)
		c.Next()
	}
}

// Authorized reports whether a user is logged in and, with cookie sessions
// enabled, the request's session belongs to that user.
func (m *Middleware) Authorized(r *http.Request) bool {
	return m.sessionBelongsTo(r, m.users.CurrentUser())
}

func (m *Middleware) sessionBelongsTo(r *http.Request, user *entities.Identity) bool {
	if user == nil {
		return false
	}
	return m.sessionManager == nil || m.sessionManager.GetEmail(r) == NormalizeEmail(user.Email)
}

// CallerEmail returns the email the request acts as: the session's email
// with cookie sessions enabled, otherwise the logged-in user's.
func (m *Middleware) CallerEmail(r *http.Request) string {
	if m.sessionManager != nil {
		return m.sessionManager.GetEmail(r)
	}
	if user := m.users.CurrentUser(); user != nil {
		return user.Email
	}
	return ""
}

func abortUnauthorized(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"error": "authentication required",
		"code":  http.StatusUnauthorized,
	})
}

// GetEmail retrieves the authenticated user's email from the context.
func GetEmail(c *gin.Context) string {
	if v, exists := c.Get(ContextKeyEmail); exists {
		if email, ok := v.(string); ok {
			return email
		}
	}
	return ""
}
