package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type LocaleController struct {
	store Storefront
}

func NewLocaleController(store Storefront) *LocaleController {
	return &LocaleController{store: store}
}

// GetLanguage returns the current and supported languages
// GET /api/language
func (lc *LocaleController) GetLanguage(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"language":  lc.store.Language(),
		"supported": lc.store.Languages(),
	})
}

// SetLanguage switches the storefront language. Regional variants resolve
// to the closest supported language.
// PUT /api/language
func (lc *LocaleController) SetLanguage(c *gin.Context) {
	var req struct {
		Language string `json:"language" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "language is required")
		return
	}

	lang, err := lc.store.SetLanguage(req.Language)
	if err != nil {
		respondStoreError(c, lc.store, err, "set language")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"language":  lang,
		"supported": lc.store.Languages(),
	})
}

// Notifications returns the visible notifications, oldest first
// GET /api/notifications
func (lc *LocaleController) Notifications(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"notifications": lc.store.Notifications()})
}

// DismissNotification hides a notification before it expires
// DELETE /api/notifications/:id
func (lc *LocaleController) DismissNotification(c *gin.Context) {
	if !lc.store.DismissNotification(c.Param("id")) {
		respondError(c, http.StatusNotFound, CodeNotFound, "notification not found")
		return
	}
	c.Status(http.StatusNoContent)
}
