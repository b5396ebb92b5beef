package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

type CurrencyController struct {
	store Storefront
}

func NewCurrencyController(store Storefront) *CurrencyController {
	return &CurrencyController{store: store}
}

// List returns the selectable currencies
// GET /api/currencies
func (cc *CurrencyController) List(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"currencies": cc.store.Currencies()})
}

// Get returns the effective currency, preference and rate state
// GET /api/currency
func (cc *CurrencyController) Get(c *gin.Context) {
	c.JSON(http.StatusOK, cc.store.Currency())
}

// Select stores the currency preference and fetches its rate. A failed
// fetch still answers 200 with the USD fallback in the view.
// PUT /api/currency
func (cc *CurrencyController) Select(c *gin.Context) {
	var req struct {
		Key string `json:"key" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "key is required")
		return
	}

	view, err := cc.store.SelectCurrency(c.Request.Context(), req.Key)
	if err != nil {
		respondStoreError(c, cc.store, err, "select currency")
		return
	}
	c.JSON(http.StatusOK, view)
}

// Refresh refetches the rate for the current preference
// POST /api/currency/refresh
func (cc *CurrencyController) Refresh(c *gin.Context) {
	c.JSON(http.StatusOK, cc.store.RefreshRates(c.Request.Context()))
}

// Display converts a USD amount into the effective currency. Values that
// are not numbers are echoed back unchanged.
// GET /api/currency/display?amount=
func (cc *CurrencyController) Display(c *gin.Context) {
	raw, ok := c.GetQuery("amount")
	if !ok {
		respondBadRequest(c, "amount is required")
		return
	}

	var value any = raw
	if amount, err := strconv.ParseFloat(raw, 64); err == nil {
		value = amount
	}
	c.JSON(http.StatusOK, gin.H{
		"amount":   raw,
		"display":  cc.store.DisplayAmount(value),
		"currency": cc.store.Currency().Selected.Key,
	})
}
