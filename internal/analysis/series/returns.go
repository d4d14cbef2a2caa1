package series

import (
	"math"
	"time"

	"github.com/seenimoa/finmcp/pkg/models"
)

// Returns computes simple daily returns of adjusted close:
// r[i] = (p[i] - p[i-1]) / p[i-1], stamped with bar i's date. Points whose
// denominator is zero or whose result is not finite are excluded.
func Returns(s *models.PriceSeries) *models.ReturnsSeries {
	out := &models.ReturnsSeries{Symbol: s.Symbol}
	if s.Len() < 2 {
		return out
	}
	out.Dates = make([]time.Time, 0, s.Len()-1)
	out.Values = make([]float64, 0, s.Len()-1)
	for i := 1; i < s.Len(); i++ {
		prev, cur := s.Bars[i-1].AdjClose, s.Bars[i].AdjClose
		if prev == 0 {
			continue
		}
		r := (cur - prev) / prev
		if math.IsNaN(r) || math.IsInf(r, 0) {
			continue
		}
		out.Dates = append(out.Dates, s.Bars[i].Date)
		out.Values = append(out.Values, r)
	}
	return out
}

// TotalReturn is last/first - 1 over adjusted close.
func TotalReturn(s *models.PriceSeries) float64 {
	first, last := s.First().AdjClose, s.Last().AdjClose
	if first == 0 {
		return 0
	}
	return last/first - 1
}

// Equity compounds returns into an equity curve starting at 1.
func Equity(returns []float64) []float64 {
	out := make([]float64, len(returns)+1)
	out[0] = 1
	for i, r := range returns {
		out[i+1] = out[i] * (1 + r)
	}
	return out
}
