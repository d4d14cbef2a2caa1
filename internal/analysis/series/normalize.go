// Package series turns raw provider bars into canonical price and returns
// series and aligns several series on their common trading dates.
package series

import (
	"math"
	"sort"

	"github.com/seenimoa/finmcp/pkg/models"
	"github.com/seenimoa/finmcp/pkg/utils"
)

// Normalize converts raw provider bars into a PriceSeries.
//
// Bars with a missing or non-positive open, high, low or close are dropped;
// a missing adjusted close falls back to the close. Bars are keyed by their
// exchange-local date, sorted ascending, and a repeated date keeps the later
// provider row. The result fails with NoDataFound when nothing usable remains
// and InsufficientHistory when fewer than minPoints bars survive.
func Normalize(raw *models.PriceHistory, minPoints int) (*models.PriceSeries, error) {
	if raw == nil || len(raw.Bars) == 0 {
		return nil, noData(raw)
	}

	byDate := make(map[int64]models.Bar, len(raw.Bars))
	for _, c := range raw.Bars {
		if !validPrice(c.Open) || !validPrice(c.High) || !validPrice(c.Low) || !validPrice(c.Close) {
			continue
		}
		adj := c.AdjClose
		if !validPrice(adj) {
			adj = c.Close
		}
		vol := c.Volume
		if vol < 0 {
			vol = 0
		}
		d := utils.DateOf(c.Timestamp)
		byDate[d.Unix()] = models.Bar{
			Date:     d,
			Open:     c.Open,
			High:     c.High,
			Low:      c.Low,
			Close:    c.Close,
			AdjClose: adj,
			Volume:   vol,
		}
	}
	if len(byDate) == 0 {
		return nil, noData(raw)
	}

	bars := make([]models.Bar, 0, len(byDate))
	for _, b := range byDate {
		bars = append(bars, b)
	}
	sort.Slice(bars, func(i, j int) bool { return bars[i].Date.Before(bars[j].Date) })

	if len(bars) < minPoints {
		return nil, models.NewError(models.KindInsufficientHistory, "period",
			"%s has %d usable bars, at least %d required", raw.Symbol, len(bars), minPoints)
	}

	return &models.PriceSeries{Symbol: raw.Symbol, Currency: raw.Currency, Bars: bars}, nil
}

// Tail returns a series holding only the last n bars. n <= 0 or n >= Len
// returns s unchanged.
func Tail(s *models.PriceSeries, n int) *models.PriceSeries {
	if n <= 0 || n >= s.Len() {
		return s
	}
	bars := make([]models.Bar, n)
	copy(bars, s.Bars[s.Len()-n:])
	return &models.PriceSeries{Symbol: s.Symbol, Currency: s.Currency, Bars: bars}
}

// RequirePoints fails with InsufficientHistory when s is shorter than n.
func RequirePoints(s *models.PriceSeries, n int) error {
	if s.Len() < n {
		return models.NewError(models.KindInsufficientHistory, "period",
			"%s has %d usable bars, at least %d required", s.Symbol, s.Len(), n)
	}
	return nil
}

func validPrice(p float64) bool {
	return p > 0 && !math.IsNaN(p) && !math.IsInf(p, 0)
}

func noData(raw *models.PriceHistory) error {
	sym := ""
	if raw != nil {
		sym = raw.Symbol
	}
	return models.NewError(models.KindNoDataFound, "symbol", "no usable price data for %q in the requested period", sym)
}
