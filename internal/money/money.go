// Package money provides the monetary primitives the invoice engine is built
// on: extraction of a dollar value out of whichever representation a source
// system used, and 2-decimal rounding.
package money

import (
	"math"
	"strconv"
	"strings"
)

// Value extracts a major-currency-unit float from any of the representations
// seen in imported records: dollars as floats, cents as integers,
// currency-prefixed strings ("$150.00", "AUD 150"), or Mongo-style
// {"$numberDecimal": "150.00"} objects. Unparseable input yields 0.
func Value(v any) float64 {
	switch x := v.(type) {
	case nil:
		return 0
	case float64:
		return x
	case float32:
		return float64(x)
	case int:
		// Integers are cents in every feed that uses them
		return float64(x) / 100
	case int32:
		return float64(x) / 100
	case int64:
		return float64(x) / 100
	case string:
		return parseMoneyString(x)
	case map[string]any:
		if dec, ok := x["$numberDecimal"].(string); ok {
			return parseMoneyString(dec)
		}
		return 0
	default:
		return 0
	}
}

func parseMoneyString(s string) float64 {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "$")
	s = strings.TrimPrefix(s, "AUD")
	s = strings.TrimPrefix(s, "A$")
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimSpace(s)
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return f
}

// Round rounds to cents.
func Round(x float64) float64 {
	return math.Round(x*100) / 100
}

// Percentage returns amount*rate rounded to cents.
func Percentage(amount, rate float64) float64 {
	return Round(amount * rate)
}
