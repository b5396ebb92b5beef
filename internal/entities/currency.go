package entities

import "time"

// Currency is one of the storefront's display currencies.
type Currency struct {
	Key      string `json:"key"`
	Label    string `json:"label"`
	Symbol   string `json:"symbol"`
	LangCode string `json:"lang_code"`
}

type RateState string

const (
	RateStateIdle     RateState = "idle"
	RateStateFetching RateState = "fetching"
	RateStateReady    RateState = "ready"
	RateStateFailed   RateState = "failed"
)

// CurrencyView is what the view layer needs to render prices.
type CurrencyView struct {
	Selected   Currency   `json:"selected"`   // effective currency
	Preference Currency   `json:"preference"` // what the user picked
	Rate       float64    `json:"rate"`
	State      RateState  `json:"state"`
	LastUpdate *time.Time `json:"last_update,omitempty"`
}
