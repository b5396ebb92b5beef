package http

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/storefront/internal/auth"
	"github.com/mrlokans/storefront/internal/entities"
	"github.com/mrlokans/storefront/internal/i18n"
)

type AuthController struct {
	store          Storefront
	sessionManager *auth.SessionManager
	rateLimiter    *auth.LoginLimiter
	guard          *auth.Middleware
}

func NewAuthController(store Storefront, sessionManager *auth.SessionManager, rateLimiter *auth.LoginLimiter) *AuthController {
	return &AuthController{
		store:          store,
		sessionManager: sessionManager,
		rateLimiter:    rateLimiter,
		guard:          auth.NewMiddleware(store, sessionManager),
	}
}

type registerRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register creates an account and logs it in
// POST /api/auth/register
func (ac *AuthController) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	user, err := ac.store.Register(auth.RegisterInput{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		respondStoreError(c, ac.store, err, "register")
		return
	}

	if ac.sessionManager != nil {
		if err := ac.sessionManager.CreateSession(c.Request, user); err != nil {
			respondInternalError(c, err, "create session")
			return
		}
	}

	respondCreated(c, user)
}

// Login verifies credentials and binds the cookie session to the user
// POST /api/auth/login
func (ac *AuthController) Login(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}
	clientIP := c.ClientIP()
	email := auth.NormalizeEmail(req.Email)

	// Check rate limiting before attempting authentication
	if ac.rateLimiter != nil {
		if allowed, retryAfter := ac.rateLimiter.Allow(clientIP, email); !allowed {
			c.Header("Retry-After", retryAfter.String())
			respondError(c, http.StatusTooManyRequests, CodeRateLimited, "too many login attempts, please try again later")
			return
		}
	}

	user, err := ac.store.Login(req.Email, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) && ac.rateLimiter != nil {
			if locked, lockout := ac.rateLimiter.RecordFailure(clientIP, email); locked {
				log.Printf("Auth: login locked out for %s from %s (%s)", email, clientIP, lockout)
			}
		}
		respondStoreError(c, ac.store, err, "login")
		return
	}

	if ac.rateLimiter != nil {
		ac.rateLimiter.RecordSuccess(clientIP, email)
	}
	if ac.sessionManager != nil {
		if err := ac.sessionManager.CreateSession(c.Request, user); err != nil {
			respondInternalError(c, err, "create session")
			return
		}
	}

	respondSuccess(c, ac.store.Translate(i18n.MsgAuthWelcome, displayName(user.FirstName, user.Email)), user)
}

// Logout ends the session. Only the session that logged in may log out.
// POST /api/auth/logout
func (ac *AuthController) Logout(c *gin.Context) {
	if ac.store.CurrentUser() != nil && !ac.guard.Authorized(c.Request) {
		respondError(c, http.StatusUnauthorized, CodeUnauthenticated, "authentication required")
		return
	}
	if err := ac.store.Logout(); err != nil {
		respondInternalError(c, err, "logout")
		return
	}
	if ac.sessionManager != nil {
		_ = ac.sessionManager.DestroySession(c.Request)
	}
	respondSuccess(c, ac.store.Translate(i18n.MsgAuthLoggedOut), nil)
}

// ResetPassword replaces a registered user's password
// POST /api/auth/reset-password
func (ac *AuthController) ResetPassword(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	if err := ac.store.ResetPassword(req.Email, req.Password); err != nil {
		respondStoreError(c, ac.store, err, "reset password")
		return
	}
	respondSuccess(c, ac.store.Translate(i18n.MsgAuthPasswordReset), nil)
}

// Me returns the current session, or an anonymous one when the request's
// session belongs to someone else
// GET /api/auth/me
func (ac *AuthController) Me(c *gin.Context) {
	if !ac.guard.Authorized(c.Request) {
		c.JSON(http.StatusOK, entities.Session{})
		return
	}
	c.JSON(http.StatusOK, ac.store.Session())
}

func displayName(firstName, email string) string {
	if firstName != "" {
		return firstName
	}
	return email
}
