// Package storefront composes the credential store, per-user collections,
// currency cache, locale and notifications into one explicitly constructed
// application store. HTTP handlers and the CLI talk to it through actions
// and getters; state changes are announced to subscribers as Events.
package storefront

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/mrlokans/storefront/internal/auth"
	"github.com/mrlokans/storefront/internal/collections"
	"github.com/mrlokans/storefront/internal/config"
	"github.com/mrlokans/storefront/internal/currency"
	"github.com/mrlokans/storefront/internal/entities"
	"github.com/mrlokans/storefront/internal/i18n"
	"github.com/mrlokans/storefront/internal/kvstore"
	"github.com/mrlokans/storefront/internal/metrics"
	"github.com/mrlokans/storefront/internal/notify"
)

var ErrAuthenticationRequired = errors.New("authentication required")

// Options configures a Store. KV and Rates are required.
type Options struct {
	KV              kvstore.Store
	Rates           currency.RateFetcher
	Auth            config.Auth
	UpdateInterval  time.Duration
	Notifications   config.Notifications
	DefaultLanguage string
	Catalog         *i18n.Catalog // nil uses the embedded catalog
	Metrics         *metrics.Metrics
}

// Store is the storefront's application state.
type Store struct {
	auth      *auth.Service
	cart      *collections.Cart
	favorites *collections.Favorites
	currency  *currency.Cache
	refresher *currency.Refresher
	locale    *i18n.Selector
	notifier  *notify.Emitter
	metrics   *metrics.Metrics
	events    *eventBus

	closeOnce sync.Once
}

// Snapshot is the full view-facing state at one point in time.
type Snapshot struct {
	Session       entities.Session        `json:"session"`
	Cart          []entities.CartEntry    `json:"cart"`
	CartSummary   entities.CartSummary    `json:"cart_summary"`
	Favorites     []int64                 `json:"favorites"`
	Currency      entities.CurrencyView   `json:"currency"`
	Language      string                  `json:"language"`
	Notifications []entities.Notification `json:"notifications"`
}

// New wires a Store. Call Init before serving requests and Close when done.
func New(opts Options) (*Store, error) {
	if opts.KV == nil {
		return nil, fmt.Errorf("storefront: KV store is required")
	}
	if opts.Rates == nil {
		return nil, fmt.Errorf("storefront: rates fetcher is required")
	}

	catalog := opts.Catalog
	if catalog == nil {
		var err error
		catalog, err = i18n.DefaultCatalog()
		if err != nil {
			return nil, err
		}
	}
	defaultLanguage := opts.DefaultLanguage
	if defaultLanguage == "" {
		defaultLanguage = config.DefaultLanguage
	}
	locale, err := i18n.NewSelector(opts.KV, catalog, defaultLanguage)
	if err != nil {
		return nil, err
	}

	s := &Store{
		auth:    auth.NewService(opts.KV, opts.Auth),
		locale:  locale,
		metrics: opts.Metrics,
		events:  newEventBus(),
	}

	s.notifier = notify.NewEmitter(notify.Options{
		Duration:   opts.Notifications.Duration,
		MaxVisible: opts.Notifications.MaxVisible,
		OnChange:   func() { s.events.publish(ModuleNotifications, "changed") },
		OnShow:     func(n entities.Notification) { s.metrics.Notification(n.Severity) },
	})
	s.cart = collections.NewCart(opts.KV, s.notifier, locale)
	s.favorites = collections.NewFavorites(opts.KV, s.notifier, locale)

	s.currency = currency.NewCache(opts.KV, opts.Rates)
	s.currency.OnChange(func() { s.events.publish(ModuleCurrency, "rates") })
	if opts.Metrics != nil {
		s.currency.Observe(opts.Metrics.ObserveRateFetch)
	}
	s.refresher = currency.NewRefresher(s.currency, opts.UpdateInterval)

	return s, nil
}

// Init restores persisted state and starts the periodic rate refresh.
func (s *Store) Init(ctx context.Context) error {
	if err := s.auth.Restore(); err != nil {
		return err
	}
	if err := s.locale.Restore(); err != nil {
		return err
	}
	if err := s.currency.Restore(); err != nil {
		return err
	}
	if err := s.initCollections(s.currentEmail()); err != nil {
		return err
	}

	s.refresher.Start(ctx)
	log.Printf("Storefront: initialized (language=%s, currency=%s)", s.locale.Language(), s.currency.Preference().Key)
	return nil
}

// Close stops background work. Safe to call more than once.
func (s *Store) Close() {
	s.closeOnce.Do(func() {
		s.refresher.Stop()
		s.notifier.Close()
		s.events.close()
	})
}

// Subscribe returns a stream of change events and a func to end it.
func (s *Store) Subscribe() (<-chan Event, func()) {
	return s.events.subscribe()
}

// Auth actions

func (s *Store) Register(in auth.RegisterInput) (*entities.Identity, error) {
	user, err := s.auth.Register(in)
	s.metrics.AuthAttempt("register", err)
	if err != nil {
		return nil, err
	}
	if err := s.initCollections(user.Email); err != nil {
		return nil, err
	}
	s.events.publish(ModuleAuth, "register")
	s.notifier.Success(s.locale.Translate(i18n.MsgAuthRegistered))
	return user, nil
}

func (s *Store) Login(email, password string) (*entities.Identity, error) {
	user, err := s.auth.Login(email, password)
	s.metrics.AuthAttempt("login", err)
	if err != nil {
		return nil, err
	}
	if err := s.initCollections(user.Email); err != nil {
		return nil, err
	}
	s.events.publish(ModuleAuth, "login")

	name := user.FirstName
	if name == "" {
		name = user.Email
	}
	s.notifier.Success(s.locale.Translate(i18n.MsgAuthWelcome, name))
	return user, nil
}

// Logout ends the session and drops the user's collections from memory.
func (s *Store) Logout() error {
	email := s.currentEmail()
	if err := s.auth.Logout(); err != nil {
		return err
	}
	if email == "" {
		return nil
	}
	s.cart.Forget(email)
	s.favorites.Forget(email)
	s.events.publish(ModuleAuth, "logout")
	s.notifier.Success(s.locale.Translate(i18n.MsgAuthLoggedOut))
	return nil
}

func (s *Store) ResetPassword(email, newPassword string) error {
	err := s.auth.ResetPassword(email, newPassword)
	s.metrics.AuthAttempt("reset_password", err)
	if err != nil {
		return err
	}
	s.notifier.Success(s.locale.Translate(i18n.MsgAuthPasswordReset))
	return nil
}

// Cart actions act on the logged-in user and do nothing without one.

func (s *Store) AddToCart(book entities.Book) ([]entities.CartEntry, error) {
	return s.mutateCart("add", func(email string) ([]entities.CartEntry, error) {
		return s.cart.Add(email, book)
	})
}

func (s *Store) RemoveFromCart(bookID int64) ([]entities.CartEntry, error) {
	return s.mutateCart("remove", func(email string) ([]entities.CartEntry, error) {
		return s.cart.Remove(email, bookID)
	})
}

func (s *Store) UpdateQuantity(bookID int64, quantity int) ([]entities.CartEntry, error) {
	return s.mutateCart("update_quantity", func(email string) ([]entities.CartEntry, error) {
		return s.cart.UpdateQuantity(email, bookID, quantity)
	})
}

func (s *Store) ClearCart() error {
	_, err := s.mutateCart("clear", func(email string) ([]entities.CartEntry, error) {
		return nil, s.cart.Clear(email)
	})
	return err
}

func (s *Store) mutateCart(op string, fn func(email string) ([]entities.CartEntry, error)) ([]entities.CartEntry, error) {
	email := s.currentEmail()
	if email == "" {
		return []entities.CartEntry{}, nil
	}
	if _, err := fn(email); err != nil {
		return nil, fmt.Errorf("cart %s: %w", op, err)
	}
	s.metrics.CartOperation(op)
	s.events.publish(ModuleCart, op)
	return s.cart.Items(email), nil
}

// ToggleFavorite adds or removes the book from the user's favorites and
// returns the new membership. Without a logged-in user an error notification
// is shown and ErrAuthenticationRequired returned.
func (s *Store) ToggleFavorite(bookID int64) (bool, error) {
	return s.ToggleFavoriteAs(s.currentEmail(), bookID)
}

// ToggleFavoriteAs is ToggleFavorite for a caller that claims to be email.
// A claim that does not match the logged-in user is treated as anonymous.
func (s *Store) ToggleFavoriteAs(email string, bookID int64) (bool, error) {
	current := s.currentEmail()
	if current == "" || auth.NormalizeEmail(email) != auth.NormalizeEmail(current) {
		s.notifier.Error(s.locale.Translate(i18n.MsgFavoritesLoginRequired))
		return false, ErrAuthenticationRequired
	}

	isFavorite, err := s.favorites.Toggle(current, bookID)
	if err != nil {
		return false, fmt.Errorf("toggle favorite: %w", err)
	}
	s.metrics.FavoriteOperation("toggle")
	s.events.publish(ModuleFavorites, "toggle")
	if isFavorite {
		s.notifier.Success(s.locale.Translate(i18n.MsgFavoritesAdded))
	} else {
		s.notifier.Success(s.locale.Translate(i18n.MsgFavoritesRemoved))
	}
	return isFavorite, nil
}

func (s *Store) ClearFavorites() error {
	email := s.currentEmail()
	if email == "" {
		return nil
	}
	if err := s.favorites.Clear(email); err != nil {
		return fmt.Errorf("clear favorites: %w", err)
	}
	s.metrics.FavoriteOperation("clear")
	s.events.publish(ModuleFavorites, "clear")
	return nil
}

// Currency actions

// SelectCurrency stores the preference and refreshes the rate for it.
func (s *Store) SelectCurrency(ctx context.Context, key string) (entities.CurrencyView, error) {
	cur, err := s.currency.SelectCurrency(ctx, key)
	if err != nil {
		return s.currency.View(), err
	}
	view := s.currency.View()
	if view.State == entities.RateStateFailed {
		s.notifier.Warning(s.locale.Translate(i18n.MsgCurrencyUnavailable))
	} else {
		s.notifier.Success(s.locale.Translate(i18n.MsgCurrencyChanged, cur.Key))
	}
	return view, nil
}

// RefreshRates refetches the rate for the current preference.
func (s *Store) RefreshRates(ctx context.Context) entities.CurrencyView {
	view := s.currency.Refresh(ctx)
	if view.State == entities.RateStateFailed {
		s.notifier.Warning(s.locale.Translate(i18n.MsgCurrencyUnavailable))
	}
	return view
}

// Locale actions

func (s *Store) SetLanguage(code string) (string, error) {
	lang, err := s.locale.SetLanguage(code)
	if err != nil {
		return "", err
	}
	s.events.publish(ModuleLanguage, "set")
	return lang, nil
}

// Getters

func (s *Store) Snapshot() Snapshot {
	email := s.currentEmail()
	return Snapshot{
		Session:       s.auth.Session(),
		Cart:          s.cart.Items(email),
		CartSummary:   s.cart.Summary(email),
		Favorites:     s.favorites.List(email),
		Currency:      s.currency.View(),
		Language:      s.locale.Language(),
		Notifications: s.notifier.Visible(),
	}
}

func (s *Store) IsAuthenticated() bool { return s.auth.IsAuthenticated() }

// CurrentUser returns the logged-in identity or nil.
func (s *Store) CurrentUser() *entities.Identity { return s.auth.CurrentUser() }

func (s *Store) Session() entities.Session { return s.auth.Session() }

func (s *Store) CartItems() []entities.CartEntry { return s.cart.Items(s.currentEmail()) }

func (s *Store) CartSummary() entities.CartSummary { return s.cart.Summary(s.currentEmail()) }

func (s *Store) Favorites() []int64 { return s.favorites.List(s.currentEmail()) }

func (s *Store) IsFavorite(bookID int64) bool {
	return s.favorites.Contains(s.currentEmail(), bookID)
}

func (s *Store) Currency() entities.CurrencyView { return s.currency.View() }

func (s *Store) Currencies() []entities.Currency { return s.currency.Currencies() }

// DisplayAmount converts a USD amount into the display currency. Non-numeric
// values are returned unconverted.
func (s *Store) DisplayAmount(v any) string { return s.currency.DisplayAmount(v) }

func (s *Store) Language() string { return s.locale.Language() }

func (s *Store) Languages() []string { return s.locale.Supported() }

func (s *Store) Translate(key string, args ...any) string { return s.locale.Translate(key, args...) }

func (s *Store) Notifications() []entities.Notification { return s.notifier.Visible() }

func (s *Store) DismissNotification(id string) bool { return s.notifier.Dismiss(id) }

func (s *Store) currentEmail() string {
	user := s.auth.CurrentUser()
	if user == nil {
		return ""
	}
	return user.Email
}

func (s *Store) initCollections(email string) error {
	if email == "" {
		return nil
	}
	if _, err := s.cart.Initialize(email); err != nil {
		return fmt.Errorf("initialize cart: %w", err)
	}
	if _, err := s.favorites.Initialize(email); err != nil {
		return fmt.Errorf("initialize favorites: %w", err)
	}
	return nil
}
