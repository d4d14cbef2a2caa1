// Package utils provides common utility functions for finmcp.
package utils

import (
	"strings"
)

// Common index aliases resolved to their Yahoo Finance tickers.
var indexAliases = map[string]string{
	"SPX":         "^GSPC",
	"SP500":       "^GSPC",
	"S&P500":      "^GSPC",
	"S&P 500":     "^GSPC",
	"GSPC":        "^GSPC",
	"DOW":         "^DJI",
	"DJIA":        "^DJI",
	"DJI":         "^DJI",
	"DOW JONES":   "^DJI",
	"NASDAQ":      "^IXIC",
	"IXIC":        "^IXIC",
	"COMPQ":       "^IXIC",
	"RUSSELL":     "^RUT",
	"RUSSELL2000": "^RUT",
	"RUT":         "^RUT",
	"VIX":         "^VIX",
}

// Display names for the indices finmcp knows about.
var indexNames = map[string]string{
	"^GSPC": "S&P 500",
	"^DJI":  "Dow Jones",
	"^IXIC": "NASDAQ",
	"^RUT":  "Russell 2000",
	"^VIX":  "VIX",
}

// NormalizeTicker normalizes user input to the canonical ticker form.
// It trims and uppercases, strips a leading "$", resolves index aliases and
// rewrites share-class dots (BRK.B) to the dash form Yahoo uses (BRK-B).
func NormalizeTicker(ticker string) string {
	ticker = strings.TrimSpace(strings.ToUpper(ticker))

	// Remove $ prefix if present (common in chat)
	ticker = strings.TrimPrefix(ticker, "$")

	if idx, ok := indexAliases[ticker]; ok {
		return idx
	}

	// Single-letter share classes: BRK.B -> BRK-B. Exchange suffixes such
	// as VOD.L or SHOP.TO are left alone.
	if i := strings.LastIndexByte(ticker, '.'); i > 0 && i == len(ticker)-2 && !strings.HasPrefix(ticker, "^") {
		suffix := ticker[i+1:]
		if suffix == "A" || suffix == "B" || suffix == "C" {
			ticker = ticker[:i] + "-" + suffix
		}
	}

	return ticker
}

// IndexName returns the display name of a known index, or the ticker itself.
func IndexName(ticker string) string {
	t := NormalizeTicker(ticker)
	if name, ok := indexNames[t]; ok {
		return name
	}
	return t
}
