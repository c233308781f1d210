// Package pricing holds the form total calculator and the event balance
// aggregator. Every money computation in the service goes through RoundMoney.
package pricing

import (
	"encoding/json"
	"errors"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

var half = decimal.New(5, -1)

// RoundMoney rounds half up at the penny, i.e. floor(d*100 + 0.5) / 100.
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Shift(2).Add(half).Floor().Shift(-2)
}

// ParseAmount coerces a loosely typed value into an amount. Anything that is
// not a finite number becomes zero.
func ParseAmount(v any) decimal.Decimal {
	switch t := v.(type) {
	case nil:
		return decimal.Zero
	case decimal.Decimal:
		return t
	case *decimal.Decimal:
		if t == nil {
			return decimal.Zero
		}
		return *t
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return decimal.Zero
		}
		return decimal.NewFromFloat(t)
	case float32:
		return ParseAmount(float64(t))
	case int:
		return decimal.NewFromInt(int64(t))
	case int32:
		return decimal.NewFromInt(int64(t))
	case int64:
		return decimal.NewFromInt(t)
	case uint:
		return decimal.NewFromInt(int64(t))
	case json.Number:
		return parseAmountString(string(t))
	case string:
		return parseAmountString(t)
	default:
		return decimal.Zero
	}
}

var (
	ErrNotANumber     = errors.New("amount must be a finite number")
	ErrAmountTooLarge = errors.New("amount is too large")
)

// MaxAmount is the exclusive bound on any stored amount, numeric(12,2).
var MaxAmount = decimal.New(1, 10)

// CheckAmount rejects amounts the money columns cannot hold.
func CheckAmount(d decimal.Decimal) error {
	if d.Abs().GreaterThanOrEqual(MaxAmount) {
		return ErrAmountTooLarge
	}
	return nil
}

// ParseStrictAmount is the validating counterpart of ParseAmount, used for
// values typed in by a user: garbage is rejected instead of zeroed, and so
// are amounts outside MaxAmount.
func ParseStrictAmount(v any) (decimal.Decimal, error) {
	d, err := parseStrict(v)
	if err != nil {
		return decimal.Zero, err
	}
	if err := CheckAmount(d); err != nil {
		return decimal.Zero, err
	}
	return d, nil
}

func parseStrict(v any) (decimal.Decimal, error) {
	switch t := v.(type) {
	case nil:
		return decimal.Zero, ErrNotANumber
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return decimal.Zero, ErrNotANumber
		}
		return decimal.NewFromFloat(t), nil
	case json.Number:
		return parseStrictString(string(t))
	case string:
		return parseStrictString(t)
	case decimal.Decimal, int, int32, int64, uint, float32:
		return ParseAmount(t), nil
	default:
		return decimal.Zero, ErrNotANumber
	}
}

func parseStrictString(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(s), "£"))
	s = strings.ReplaceAll(s, ",", "")
	if s == "" {
		return decimal.Zero, ErrNotANumber
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ErrNotANumber
	}
	return d, nil
}

func parseAmountString(s string) decimal.Decimal {
	s = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(s), "£"))
	s = strings.ReplaceAll(s, ",", "")
	if s == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// FormatGBP renders an amount as £1,234.50 (or -£1,234.50).
func FormatGBP(d decimal.Decimal) string {
	d = RoundMoney(d)
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Neg()
	}

	fixed := d.StringFixed(2)
	whole, frac := fixed[:len(fixed)-3], fixed[len(fixed)-2:]

	var b strings.Builder
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}

	return sign + "£" + b.String() + "." + frac
}
