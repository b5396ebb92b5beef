// Package i18n holds the storefront's message catalog and the persisted
// language selection.
package i18n

import (
	_ "embed"
	"fmt"
	"sort"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
	"gopkg.in/yaml.v3"
)

// Message keys used by the storefront.
const (
	MsgCartAdded           = "cart.added"
	MsgCartRemoved         = "cart.removed"
	MsgCartQuantityUpdated = "cart.quantity_updated"
	MsgCartCleared         = "cart.cleared"

	MsgFavoritesAdded         = "favorites.added"
	MsgFavoritesRemoved       = "favorites.removed"
	MsgFavoritesLoginRequired = "favorites.login_required"
	MsgFavoritesCleared       = "favorites.cleared"

	MsgAuthWelcome            = "auth.welcome"
	MsgAuthRegistered         = "auth.registered"
	MsgAuthLoggedOut          = "auth.logged_out"
	MsgAuthPasswordReset      = "auth.password_reset"
	MsgAuthInvalidCredentials = "auth.invalid_credentials"
	MsgAuthDuplicate          = "auth.duplicate"
	MsgAuthNotFound           = "auth.not_found"

	MsgCurrencyChanged     = "currency.changed"
	MsgCurrencyUnavailable = "currency.unavailable"
)

//go:embed messages.yaml
var defaultMessages []byte

// Catalog is a set of translated messages per language.
type Catalog struct {
	messages map[string]map[string]string
	tags     map[string]language.Tag
	builder  *catalog.Builder
}

// DefaultCatalog returns the catalog embedded in the binary.
func DefaultCatalog() (*Catalog, error) {
	return ParseCatalog(defaultMessages)
}

// ParseCatalog reads a YAML document of the form
//
//	<language>:
//	  <key>: <format string>
func ParseCatalog(data []byte) (*Catalog, error) {
	var raw map[string]map[string]string
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse message catalog: %w", err)
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("message catalog is empty")
	}

	c := &Catalog{
		messages: raw,
		tags:     make(map[string]language.Tag, len(raw)),
		builder:  catalog.NewBuilder(),
	}
	for code, msgs := range raw {
		tag, err := language.Parse(code)
		if err != nil {
			return nil, fmt.Errorf("invalid language %q in catalog: %w", code, err)
		}
		c.tags[code] = tag
		for key, msg := range msgs {
			if err := c.builder.SetString(tag, key, msg); err != nil {
				return nil, fmt.Errorf("invalid message %s/%s: %w", code, key, err)
			}
		}
	}
	return c, nil
}

// Languages returns the catalog's language codes, sorted.
func (c *Catalog) Languages() []string {
	codes := make([]string, 0, len(c.messages))
	for code := range c.messages {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// Has reports whether lang defines key.
func (c *Catalog) Has(lang, key string) bool {
	_, ok := c.messages[lang][key]
	return ok
}

// Sprintf formats key in lang. Returns false when lang does not define key.
func (c *Catalog) Sprintf(lang, key string, args ...any) (string, bool) {
	if !c.Has(lang, key) {
		return "", false
	}
	p := message.NewPrinter(c.tags[lang], message.Catalog(c.builder))
	return p.Sprintf(key, args...), true
}
