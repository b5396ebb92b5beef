package currency

import (
	"encoding/json"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/mrlokans/storefront/internal/entities"
)

// FormatAmount renders amount with two fraction digits using the currency's
// locale conventions, followed by the currency key: "1,234.50 USD".
func FormatAmount(amount float64, cur entities.Currency) string {
	tag, err := language.Parse(cur.LangCode)
	if err != nil {
		tag = language.AmericanEnglish
	}
	p := message.NewPrinter(tag)
	return p.Sprint(number.Decimal(amount, number.MinFractionDigits(2), number.MaxFractionDigits(2))) + " " + cur.Key
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}
