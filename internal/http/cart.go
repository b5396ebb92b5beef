package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/storefront/internal/entities"
)

type CartController struct {
	store Storefront
}

func NewCartController(store Storefront) *CartController {
	return &CartController{store: store}
}

// CartResponse is the cart with prices converted to the selected currency.
type CartResponse struct {
	Items           []entities.CartEntry `json:"items"`
	Summary         entities.CartSummary `json:"summary"`
	DisplaySubtotal string               `json:"display_subtotal"`
}

func (cc *CartController) respondCart(c *gin.Context, status int, items []entities.CartEntry) {
	summary := cc.store.CartSummary()
	if items == nil {
		items = []entities.CartEntry{}
	}
	c.JSON(status, CartResponse{
		Items:           items,
		Summary:         summary,
		DisplaySubtotal: cc.store.DisplayAmount(summary.Subtotal),
	})
}

// GetCart returns the current user's cart
// GET /api/cart
func (cc *CartController) GetCart(c *gin.Context) {
	cc.respondCart(c, http.StatusOK, cc.store.CartItems())
}

// AddItem adds a book or increments its quantity
// POST /api/cart
func (cc *CartController) AddItem(c *gin.Context) {
	var book entities.Book
	if err := c.ShouldBindJSON(&book); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}
	if book.ID <= 0 {
		respondBadRequest(c, "id is required")
		return
	}
	if book.Price < 0 {
		respondBadRequest(c, "price must not be negative")
		return
	}

	items, err := cc.store.AddToCart(book)
	if err != nil {
		respondStoreError(c, cc.store, err, "add to cart")
		return
	}
	cc.respondCart(c, http.StatusOK, items)
}

// UpdateQuantity sets an item's quantity; zero or less removes it
// PATCH /api/cart/:bookId
func (cc *CartController) UpdateQuantity(c *gin.Context) {
	bookID, ok := parseBookIDParam(c, "bookId")
	if !ok {
		return
	}
	var req struct {
		Quantity *int `json:"quantity"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Quantity == nil {
		respondBadRequest(c, "quantity is required")
		return
	}

	items, err := cc.store.UpdateQuantity(bookID, *req.Quantity)
	if err != nil {
		respondStoreError(c, cc.store, err, "update quantity")
		return
	}
	cc.respondCart(c, http.StatusOK, items)
}

// RemoveItem drops a book from the cart
// DELETE /api/cart/:bookId
func (cc *CartController) RemoveItem(c *gin.Context) {
	bookID, ok := parseBookIDParam(c, "bookId")
	if !ok {
		return
	}

	items, err := cc.store.RemoveFromCart(bookID)
	if err != nil {
		respondStoreError(c, cc.store, err, "remove from cart")
		return
	}
	cc.respondCart(c, http.StatusOK, items)
}

// Clear empties the cart
// DELETE /api/cart
func (cc *CartController) Clear(c *gin.Context) {
	if err := cc.store.ClearCart(); err != nil {
		respondStoreError(c, cc.store, err, "clear cart")
		return
	}
	cc.respondCart(c, http.StatusOK, nil)
}
