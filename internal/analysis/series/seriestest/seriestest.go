// Package seriestest builds synthetic price series for tests.
package seriestest

import (
	"math"
	"time"

	"github.com/seenimoa/finmcp/pkg/models"
)

// Start is the first bar date of every generated series (a Monday).
var Start = time.Date(2023, 1, 2, 0, 0, 0, 0, time.UTC)

// TradingDates returns n consecutive weekdays starting at Start.
func TradingDates(n int) []time.Time {
	out := make([]time.Time, 0, n)
	for d := Start; len(out) < n; d = d.AddDate(0, 0, 1) {
		if wd := d.Weekday(); wd == time.Saturday || wd == time.Sunday {
			continue
		}
		out = append(out, d)
	}
	return out
}

// FromCloses builds a normalized series whose closes (and adjusted closes)
// are the given prices on consecutive weekdays.
func FromCloses(symbol string, closes ...float64) *models.PriceSeries {
	dates := TradingDates(len(closes))
	bars := make([]models.Bar, len(closes))
	for i, c := range closes {
		bars[i] = models.Bar{
			Date:     dates[i],
			Open:     c,
			High:     c * 1.01,
			Low:      c * 0.99,
			Close:    c,
			AdjClose: c,
			Volume:   1_000_000 + int64(i)*1000,
		}
	}
	return &models.PriceSeries{Symbol: symbol, Currency: "USD", Bars: bars}
}

// Raw builds provider-shaped bars for the given closes.
func Raw(symbol string, closes ...float64) *models.PriceHistory {
	s := FromCloses(symbol, closes...)
	out := &models.PriceHistory{Symbol: symbol, Currency: "USD", Bars: make([]models.OHLCV, len(s.Bars))}
	for i, b := range s.Bars {
		out.Bars[i] = models.OHLCV{
			Timestamp: b.Date.Add(14 * time.Hour),
			Open:      b.Open,
			High:      b.High,
			Low:       b.Low,
			Close:     b.Close,
			AdjClose:  b.AdjClose,
			Volume:    b.Volume,
		}
	}
	return out
}

// Linear returns n closes growing by step from start.
func Linear(n int, start, step float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = start + float64(i)*step
	}
	return out
}

// Wave returns n closes oscillating around base with the given amplitude
// and period, drifting by drift per bar.
func Wave(n int, base, amplitude, period, drift float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = base + drift*float64(i) + amplitude*math.Sin(2*math.Pi*float64(i)/period)
	}
	return out
}

// FromReturns compounds returns from a starting price of 100.
func FromReturns(returns ...float64) []float64 {
	out := make([]float64, len(returns)+1)
	out[0] = 100
	for i, r := range returns {
		out[i+1] = out[i] * (1 + r)
	}
	return out
}
