// Package models defines the core data structures used throughout finmcp.
package models

import "time"

// DateLayout is the wire format for calendar dates in requests and reports.
const DateLayout = "2006-01-02"

// FormatDate renders t as YYYY-MM-DD. The zero time renders as "".
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(DateLayout)
}

// OHLCV represents a single raw bar of price data as delivered by a provider.
// Missing provider values are left at zero.
type OHLCV struct {
	Timestamp time.Time `json:"timestamp"`
	Open      float64   `json:"open"`
	High      float64   `json:"high"`
	Low       float64   `json:"low"`
	Close     float64   `json:"close"`
	Volume    int64     `json:"volume"`
	AdjClose  float64   `json:"adj_close,omitempty"`
}

// PriceHistory is the raw provider payload for one symbol and time range.
type PriceHistory struct {
	Symbol   string  `json:"symbol"`
	Currency string  `json:"currency,omitempty"`
	Bars     []OHLCV `json:"bars"`
}

// Bar is one trading-day record of a normalized series. Date is the
// exchange-local calendar date expressed as midnight UTC.
type Bar struct {
	Date     time.Time `json:"date"`
	Open     float64   `json:"open"`
	High     float64   `json:"high"`
	Low      float64   `json:"low"`
	Close    float64   `json:"close"`
	AdjClose float64   `json:"adj_close"`
	Volume   int64     `json:"volume"`
}

// PriceSeries is a normalized, strictly date-ordered series for one symbol.
type PriceSeries struct {
	Symbol   string `json:"symbol"`
	Currency string `json:"currency,omitempty"`
	Bars     []Bar  `json:"bars"`
}

// Len returns the number of bars.
func (s *PriceSeries) Len() int { return len(s.Bars) }

// First returns the earliest bar. The series must not be empty.
func (s *PriceSeries) First() Bar { return s.Bars[0] }

// Last returns the latest bar. The series must not be empty.
func (s *PriceSeries) Last() Bar { return s.Bars[len(s.Bars)-1] }

// AdjCloses returns a fresh slice of adjusted closes.
func (s *PriceSeries) AdjCloses() []float64 {
	out := make([]float64, len(s.Bars))
	for i, b := range s.Bars {
		out[i] = b.AdjClose
	}
	return out
}

// Closes returns a fresh slice of unadjusted closes.
func (s *PriceSeries) Closes() []float64 {
	out := make([]float64, len(s.Bars))
	for i, b := range s.Bars {
		out[i] = b.Close
	}
	return out
}

// Dates returns a fresh slice of bar dates.
func (s *PriceSeries) Dates() []time.Time {
	out := make([]time.Time, len(s.Bars))
	for i, b := range s.Bars {
		out[i] = b.Date
	}
	return out
}

// ReturnsSeries holds period-over-period returns of adjusted close.
// Values[i] is stamped with the date of the later of its two bars.
type ReturnsSeries struct {
	Symbol string      `json:"symbol"`
	Dates  []time.Time `json:"dates"`
	Values []float64   `json:"values"`
}

// Len returns the number of return observations.
func (r *ReturnsSeries) Len() int { return len(r.Values) }

// AnalysisPeriod is a resolved lookback window [Start, End). TradingDays,
// when non-zero, keeps only that many trailing bars of the fetched range.
type AnalysisPeriod struct {
	Label       string    `json:"label"`
	Start       time.Time `json:"start"`
	End         time.Time `json:"end"`
	TradingDays int       `json:"trading_days,omitempty"`
}

// LastDay returns the inclusive final calendar day of the window.
func (p AnalysisPeriod) LastDay() time.Time { return p.End.AddDate(0, 0, -1) }

// Fundamentals is a provider snapshot of company data. Every field is
// optional; absent values stay nil and are omitted from reports.
type Fundamentals struct {
	Symbol           string   `json:"symbol"`
	Name             string   `json:"name,omitempty"`
	Exchange         string   `json:"exchange,omitempty"`
	Currency         string   `json:"currency,omitempty"`
	Sector           string   `json:"sector,omitempty"`
	Industry         string   `json:"industry,omitempty"`
	Description      string   `json:"description,omitempty"`
	CurrentPrice     *float64 `json:"current_price,omitempty"`
	MarketCap        *float64 `json:"market_cap,omitempty"`
	EnterpriseValue  *float64 `json:"enterprise_value,omitempty"`
	TrailingPE       *float64 `json:"trailing_pe,omitempty"`
	ForwardPE        *float64 `json:"forward_pe,omitempty"`
	PriceToBook      *float64 `json:"price_to_book,omitempty"`
	PriceToSales     *float64 `json:"price_to_sales,omitempty"`
	DebtToEquity     *float64 `json:"debt_to_equity,omitempty"`
	ReturnOnEquity   *float64 `json:"return_on_equity,omitempty"` // ratio
	ProfitMargin     *float64 `json:"profit_margin,omitempty"`    // ratio
	DividendYield    *float64 `json:"dividend_yield,omitempty"`   // ratio
	Beta             *float64 `json:"beta,omitempty"`
	FiftyTwoWeekHigh *float64 `json:"fifty_two_week_high,omitempty"`
	FiftyTwoWeekLow  *float64 `json:"fifty_two_week_low,omitempty"`
	AverageVolume    *int64   `json:"average_volume,omitempty"`
}

// SearchResult is one provider match for a free-text symbol query.
type SearchResult struct {
	Symbol    string `json:"symbol"`
	Name      string `json:"name,omitempty"`
	Exchange  string `json:"exchange,omitempty"`
	QuoteType string `json:"quote_type,omitempty"`
	Sector    string `json:"sector,omitempty"`
	Industry  string `json:"industry,omitempty"`
}

// Headline is a news item attached to a financial summary.
type Headline struct {
	Title       string    `json:"title"`
	URL         string    `json:"url,omitempty"`
	Source      string    `json:"source,omitempty"`
	Summary     string    `json:"summary,omitempty"`
	PublishedAt time.Time `json:"published_at,omitempty"`
}
