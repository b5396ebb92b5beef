package entities

// Book is the snapshot of a catalog book carried into carts.
type Book struct {
	ID       int64   `json:"id"`
	Title    string  `json:"title"`
	Author   string  `json:"author,omitempty"`
	Price    float64 `json:"price"` // USD
	CoverURL string  `json:"cover_url,omitempty"`
}

// CartEntry is a book in a user's cart. Book fields are flattened in JSON.
type CartEntry struct {
	Book
	Quantity int `json:"quantity"`
}

// Subtotal is the entry's price times quantity, in USD.
func (e CartEntry) Subtotal() float64 {
	return e.Price * float64(e.Quantity)
}

// CartSummary aggregates a cart for display.
type CartSummary struct {
	Items    int     `json:"items"`
	Subtotal float64 `json:"subtotal"` // USD
}
