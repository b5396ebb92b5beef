package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/storefront/internal/auth"
	"github.com/mrlokans/storefront/internal/i18n"
)

type FavoritesController struct {
	store Storefront
	guard *auth.Middleware
}

func NewFavoritesController(store Storefront, sessionManager *auth.SessionManager) *FavoritesController {
	return &FavoritesController{
		store: store,
		guard: auth.NewMiddleware(store, sessionManager),
	}
}

type favoriteStatus struct {
	BookID     int64 `json:"book_id"`
	IsFavorite bool  `json:"is_favorite"`
}

// List returns the current user's favorite book IDs
// GET /api/favorites
func (fc *FavoritesController) List(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"favorites": fc.store.Favorites()})
}

// Status reports whether one book is a favorite
// GET /api/favorites/:bookId
func (fc *FavoritesController) Status(c *gin.Context) {
	bookID, ok := parseBookIDParam(c, "bookId")
	if !ok {
		return
	}
	c.JSON(http.StatusOK, favoriteStatus{BookID: bookID, IsFavorite: fc.store.IsFavorite(bookID)})
}

// Toggle flips a book's favorite membership. Anonymous callers, and callers
// whose session belongs to someone else, get 401 and a login-required
// notification.
// POST /api/favorites/toggle
func (fc *FavoritesController) Toggle(c *gin.Context) {
	var req struct {
		BookID int64 `json:"book_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.BookID <= 0 {
		respondBadRequest(c, "book_id is required")
		return
	}

	isFavorite, err := fc.store.ToggleFavoriteAs(fc.guard.CallerEmail(c.Request), req.BookID)
	if err != nil {
		respondStoreError(c, fc.store, err, "toggle favorite")
		return
	}
	c.JSON(http.StatusOK, favoriteStatus{BookID: req.BookID, IsFavorite: isFavorite})
}

// Clear empties the favorites list
// DELETE /api/favorites
func (fc *FavoritesController) Clear(c *gin.Context) {
	if err := fc.store.ClearFavorites(); err != nil {
		respondStoreError(c, fc.store, err, "clear favorites")
		return
	}
	respondSuccess(c, fc.store.Translate(i18n.MsgFavoritesCleared), gin.H{"favorites": []int64{}})
}
