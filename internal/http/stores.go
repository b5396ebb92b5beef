package http

import (
	"context"

	"github.com/mrlokans/storefront/internal/auth"
	"github.com/mrlokans/storefront/internal/entities"
	"github.com/mrlokans/storefront/internal/storefront"
)

// Storefront is the application state the controllers act on.
// *storefront.Store satisfies it.
type Storefront interface {
	auth.CurrentUserProvider

	Register(in auth.RegisterInput) (*entities.Identity, error)
	Login(email, password string) (*entities.Identity, error)
	Logout() error
	ResetPassword(email, newPassword string) error
	Session() entities.Session

	AddToCart(book entities.Book) ([]entities.CartEntry, error)
	RemoveFromCart(bookID int64) ([]entities.CartEntry, error)
	UpdateQuantity(bookID int64, quantity int) ([]entities.CartEntry, error)
	ClearCart() error
	CartItems() []entities.CartEntry
	CartSummary() entities.CartSummary

	ToggleFavorite(bookID int64) (bool, error)
	ToggleFavoriteAs(email string, bookID int64) (bool, error)
	ClearFavorites() error
	Favorites() []int64
	IsFavorite(bookID int64) bool

	SelectCurrency(ctx context.Context, key string) (entities.CurrencyView, error)
	RefreshRates(ctx context.Context) entities.CurrencyView
	Currency() entities.CurrencyView
	Currencies() []entities.Currency
	DisplayAmount(v any) string

	SetLanguage(code string) (string, error)
	Language() string
	Languages() []string
	Translate(key string, args ...any) string

	Notifications() []entities.Notification
	DismissNotification(id string) bool

	Snapshot() storefront.Snapshot
	Subscribe() (<-chan storefront.Event, func())
}

var _ Storefront = (*storefront.Store)(nil)
