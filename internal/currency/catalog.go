// Package currency converts USD catalog prices into the user's display
// currency using periodically refreshed exchange rates.
package currency

import (
	"strings"

	"github.com/mrlokans/storefront/internal/entities"
)

const (
	// BaseKey is the unit catalog prices are expressed in. Rates are
	// "units of currency per 1 USD".
	BaseKey = "USD"
	// DefaultKey is the display currency before the user picks one.
	DefaultKey = "TRY"
)

var currencies = []entities.Currency{
	{Key: "TRY", Label: "Turkish Lira ₺", Symbol: "₺", LangCode: "tr-TR"},
	{Key: "EUR", Label: "Euro €", Symbol: "€", LangCode: "en-EU"},
	{Key: "USD", Label: "USD $", Symbol: "$", LangCode: "en-US"},
	{Key: "JPY", Label: "JPY ¥", Symbol: "¥", LangCode: "ja-JP"},
	{Key: "CNY", Label: "CNY ¥", Symbol: "¥", LangCode: "zh-CN"},
	{Key: "INR", Label: "INR ₹", Symbol: "₹", LangCode: "hi-IN"},
	{Key: "AUD", Label: "AUD $", Symbol: "$", LangCode: "en-AU"},
}

// Currencies returns the selectable currencies in display order.
func Currencies() []entities.Currency {
	out := make([]entities.Currency, len(currencies))
	copy(out, currencies)
	return out
}

// Lookup finds a currency by key, ignoring case.
func Lookup(key string) (entities.Currency, bool) {
	key = strings.ToUpper(strings.TrimSpace(key))
	for _, c := range currencies {
		if c.Key == key {
			return c, true
		}
	}
	return entities.Currency{}, false
}

func mustLookup(key string) entities.Currency {
	c, ok := Lookup(key)
	if !ok {
		panic("currency: unknown built-in currency " + key)
	}
	return c
}

// Base returns the currency prices are stored in.
func Base() entities.Currency { return mustLookup(BaseKey) }

// Default returns the initial display currency.
func Default() entities.Currency { return mustLookup(DefaultKey) }
