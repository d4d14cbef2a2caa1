package utils

import (
	"math"
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"
)

// Round rounds x half away from zero to the given number of decimal places,
// working on the shortest decimal representation of x so that 1.005 rounds
// to 1.01. NaN and infinities are returned unchanged.
func Round(x float64, places int) float64 {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return x
	}
	return decimal.NewFromFloat(x).Round(int32(places)).InexactFloat64()
}

// Round2 rounds x to two decimal places.
func Round2(x float64) float64 { return Round(x, 2) }

// Pct converts a ratio to a percentage rounded to two decimals (0.0123 -> 1.23).
func Pct(ratio float64) float64 { return Round2(ratio * 100) }

// Ptr returns a pointer to v.
func Ptr[T any](v T) *T { return &v }

// Round2Ptr rounds through a pointer, keeping nil as nil.
func Round2Ptr(x *float64) *float64 {
	if x == nil {
		return nil
	}
	return Ptr(Round2(*x))
}

// PctPtr converts an optional ratio to an optional percentage.
func PctPtr(ratio *float64) *float64 {
	if ratio == nil {
		return nil
	}
	return Ptr(Pct(*ratio))
}

// FormatCompact formats large amounts in compact notation with a currency
// prefix, e.g. 2.35e12 -> "$2.35T", 512e6 -> "$512M".
func FormatCompact(amount float64, currency string) string {
	prefix := currencySymbol(currency)
	if amount < 0 {
		prefix = "-" + prefix
		amount = -amount
	}

	switch {
	case amount >= 1e12:
		return prefix + humanize.FtoaWithDigits(amount/1e12, 2) + "T"
	case amount >= 1e9:
		return prefix + humanize.FtoaWithDigits(amount/1e9, 2) + "B"
	case amount >= 1e6:
		return prefix + humanize.FtoaWithDigits(amount/1e6, 2) + "M"
	default:
		return prefix + humanize.CommafWithDigits(amount, 2)
	}
}

// FormatVolume formats a share count with thousands separators.
func FormatVolume(volume int64) string {
	return humanize.Comma(volume)
}

func currencySymbol(currency string) string {
	code := strings.ToUpper(currency)
	if code == "" {
		code = money.USD
	}
	if c := money.GetCurrency(code); c != nil && c.Grapheme != "" && c.Grapheme != code {
		return c.Grapheme
	}
	return code + " "
}
