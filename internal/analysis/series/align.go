package series

import (
	"time"

	"github.com/seenimoa/finmcp/pkg/models"
)

// Align restricts every series to the trading dates they all share. Input
// order is preserved and inputs are not modified. An empty intersection
// fails with NoOverlap.
func Align(all ...*models.PriceSeries) ([]*models.PriceSeries, error) {
	if len(all) == 0 {
		return nil, nil
	}
	sets := make([][]time.Time, len(all))
	for i, s := range all {
		sets[i] = s.Dates()
	}
	common := intersect(sets)
	if len(common) == 0 {
		return nil, noOverlap(symbolsOf(all, func(s *models.PriceSeries) string { return s.Symbol }))
	}

	out := make([]*models.PriceSeries, len(all))
	for i, s := range all {
		bars := make([]models.Bar, 0, len(common))
		for _, b := range s.Bars {
			if _, ok := common[b.Date.Unix()]; ok {
				bars = append(bars, b)
			}
		}
		out[i] = &models.PriceSeries{Symbol: s.Symbol, Currency: s.Currency, Bars: bars}
	}
	return out, nil
}

// AlignReturns restricts returns series to their common dates.
func AlignReturns(all ...*models.ReturnsSeries) ([]*models.ReturnsSeries, error) {
	if len(all) == 0 {
		return nil, nil
	}
	sets := make([][]time.Time, len(all))
	for i, r := range all {
		sets[i] = r.Dates
	}
	common := intersect(sets)
	if len(common) == 0 {
		return nil, noOverlap(symbolsOf(all, func(r *models.ReturnsSeries) string { return r.Symbol }))
	}

	out := make([]*models.ReturnsSeries, len(all))
	for i, r := range all {
		a := &models.ReturnsSeries{
			Symbol: r.Symbol,
			Dates:  make([]time.Time, 0, len(common)),
			Values: make([]float64, 0, len(common)),
		}
		for j, d := range r.Dates {
			if _, ok := common[d.Unix()]; ok {
				a.Dates = append(a.Dates, d)
				a.Values = append(a.Values, r.Values[j])
			}
		}
		out[i] = a
	}
	return out, nil
}

// intersect returns the set of dates present in every slice.
func intersect(sets [][]time.Time) map[int64]struct{} {
	common := make(map[int64]struct{}, len(sets[0]))
	for _, d := range sets[0] {
		common[d.Unix()] = struct{}{}
	}
	for _, set := range sets[1:] {
		next := make(map[int64]struct{}, len(common))
		for _, d := range set {
			if _, ok := common[d.Unix()]; ok {
				next[d.Unix()] = struct{}{}
			}
		}
		common = next
	}
	return common
}

func symbolsOf[T any](items []T, name func(T) string) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = name(it)
	}
	return out
}

func noOverlap(symbols []string) error {
	return models.NewError(models.KindNoOverlap, "symbols", "series %v share no common trading dates", symbols)
}
