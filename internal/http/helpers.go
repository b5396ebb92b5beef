package http

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/storefront/internal/auth"
	"github.com/mrlokans/storefront/internal/currency"
	"github.com/mrlokans/storefront/internal/i18n"
	"github.com/mrlokans/storefront/internal/storefront"
)

// --- Response Types ---

// ErrorResponse is the standard error response format for all API errors.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`    // machine-readable error code
	Details any    `json:"details,omitempty"` // additional context (validation errors, etc.)
}

// SuccessResponse is a standard success response with optional data.
type SuccessResponse struct {
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// Machine-readable error codes
const (
	CodeValidation      = "validation_failed"
	CodeUnauthenticated = "authentication_required"
	CodeInvalidLogin    = "invalid_credentials"
	CodeDuplicate       = "duplicate_identity"
	CodeNotFound        = "not_found"
	CodeUnsupported     = "unsupported_value"
	CodeRateLimited     = "rate_limited"
)

// --- Error Response Helpers ---

// respondBadRequest sends a 400 Bad Request response.
func respondBadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: message, Code: CodeValidation})
}

// respondInternalError logs the error and sends a 500 Internal Server Error response.
// The actual error is logged but not exposed to the client.
func respondInternalError(c *gin.Context, err error, context string) {
	log.Printf("Internal error (%s): %v", context, err)
	c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
}

// respondError sends an error response with the given status code.
func respondError(c *gin.Context, status int, code, message string) {
	c.JSON(status, ErrorResponse{Error: message, Code: code})
}

// respondStoreError maps storefront errors to HTTP statuses. Messages for
// credential errors come from the current language's catalog.
func respondStoreError(c *gin.Context, store Storefront, err error, context string) {
	switch {
	case errors.Is(err, auth.ErrInvalidCredentials):
		respondError(c, http.StatusUnauthorized, CodeInvalidLogin, store.Translate(i18n.MsgAuthInvalidCredentials))
	case errors.Is(err, storefront.ErrAuthenticationRequired):
		respondError(c, http.StatusUnauthorized, CodeUnauthenticated, store.Translate(i18n.MsgFavoritesLoginRequired))
	case errors.Is(err, auth.ErrDuplicateIdentity):
		respondError(c, http.StatusConflict, CodeDuplicate, store.Translate(i18n.MsgAuthDuplicate))
	case errors.Is(err, auth.ErrNotFound):
		respondError(c, http.StatusNotFound, CodeNotFound, store.Translate(i18n.MsgAuthNotFound))
	case errors.Is(err, auth.ErrEmailRequired),
		errors.Is(err, auth.ErrEmailInvalid),
		errors.Is(err, auth.ErrPasswordRequired),
		errors.Is(err, auth.ErrPasswordTooShort),
		errors.Is(err, auth.ErrPasswordTooLong):
		respondBadRequest(c, err.Error())
	case errors.Is(err, currency.ErrInvalidSelection),
		errors.Is(err, i18n.ErrUnsupportedLanguage):
		respondError(c, http.StatusBadRequest, CodeUnsupported, err.Error())
	default:
		respondInternalError(c, err, context)
	}
}

// --- Success Response Helpers ---

// respondSuccess sends a 200 OK response with a message and optional data.
func respondSuccess(c *gin.Context, message string, data any) {
	c.JSON(http.StatusOK, SuccessResponse{Message: message, Data: data})
}

// respondCreated sends a 201 Created response with data.
func respondCreated(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, data)
}

// --- Parameter Parsing ---

// parseBookIDParam extracts and validates a book ID from URL parameters.
// Returns the parsed ID or responds with a 400 error and returns 0, false.
func parseBookIDParam(c *gin.Context, paramName string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(paramName), 10, 64)
	if err != nil {
		respondBadRequest(c, "invalid "+paramName)
		return 0, false
	}
	return id, true
}
