// Package fundamental derives valuation figures from a company snapshot.
package fundamental

import (
	"strings"
	"unicode/utf8"

	"github.com/seenimoa/finmcp/pkg/models"
	"github.com/seenimoa/finmcp/pkg/utils"
)

// Valuation verdicts by trailing P/E.
const (
	Undervalued  = "undervalued"
	FairlyValued = "fairly_valued"
	Overvalued   = "overvalued"
)

// MaxDescriptionRunes bounds the business description in a summary.
const MaxDescriptionRunes = 500

// Valuation classifies a trailing P/E: below 15 is undervalued, above 25
// overvalued. Returns "" when the P/E is missing or not positive.
func Valuation(pe *float64) string {
	if pe == nil || *pe <= 0 {
		return ""
	}
	switch {
	case *pe < 15:
		return Undervalued
	case *pe > 25:
		return Overvalued
	default:
		return FairlyValued
	}
}

// EarningsYield is the inverse of P/E in percent.
func EarningsYield(pe *float64) *float64 {
	if pe == nil || *pe <= 0 {
		return nil
	}
	return utils.Ptr(100 / *pe)
}

// Summarize builds a FinancialSummary from a fundamentals snapshot.
// Ratios (ROE, margins, dividend yield) become percentages, prices and
// multiples are rounded to two decimals, and every absent field stays
// absent.
func Summarize(f *models.Fundamentals, headlines []models.Headline) *models.FinancialSummary {
	s := &models.FinancialSummary{
		Symbol:           f.Symbol,
		Name:             f.Name,
		Exchange:         f.Exchange,
		Currency:         f.Currency,
		Sector:           f.Sector,
		Industry:         f.Industry,
		Description:      Truncate(strings.TrimSpace(f.Description), MaxDescriptionRunes),
		CurrentPrice:     utils.Round2Ptr(f.CurrentPrice),
		MarketCap:        f.MarketCap,
		EnterpriseValue:  f.EnterpriseValue,
		TrailingPE:       utils.Round2Ptr(f.TrailingPE),
		ForwardPE:        utils.Round2Ptr(f.ForwardPE),
		PriceToBook:      utils.Round2Ptr(f.PriceToBook),
		PriceToSales:     utils.Round2Ptr(f.PriceToSales),
		DebtToEquity:     utils.Round2Ptr(f.DebtToEquity),
		ReturnOnEquity:   utils.PctPtr(f.ReturnOnEquity),
		ProfitMargin:     utils.PctPtr(f.ProfitMargin),
		DividendYield:    utils.PctPtr(f.DividendYield),
		EarningsYield:    utils.Round2Ptr(EarningsYield(f.TrailingPE)),
		Beta:             utils.Round2Ptr(f.Beta),
		FiftyTwoWeekHigh: utils.Round2Ptr(f.FiftyTwoWeekHigh),
		FiftyTwoWeekLow:  utils.Round2Ptr(f.FiftyTwoWeekLow),
		AverageVolume:    f.AverageVolume,
		Valuation:        Valuation(f.TrailingPE),
		Headlines:        headlines,
	}
	if f.MarketCap != nil {
		s.MarketCapFormatted = utils.FormatCompact(*f.MarketCap, f.Currency)
	}
	return s
}

// Truncate shortens s to at most n runes, marking the cut with "...".
func Truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return strings.TrimSpace(string(r[:n])) + "..."
}
