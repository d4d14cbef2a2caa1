// Package compare ranks symbols by a chosen performance metric.
package compare

import (
	"sort"
)

// Ranking metrics.
const (
	ByTotalReturn  = "total_return"
	ByAnnualReturn = "annual_return"
	BySharpe       = "sharpe_ratio"
	ByVolatility   = "volatility"
	ByMaxDrawdown  = "max_drawdown"
)

// Metrics lists the supported ranking metrics.
var Metrics = []string{ByTotalReturn, ByAnnualReturn, BySharpe, ByVolatility, ByMaxDrawdown}

// ValidMetric reports whether s names a supported ranking metric.
func ValidMetric(s string) bool {
	for _, m := range Metrics {
		if m == s {
			return true
		}
	}
	return false
}

// Candidate is one successfully analysed symbol.
type Candidate struct {
	Symbol       string
	TotalReturn  float64
	AnnualReturn float64
	Volatility   float64
	Sharpe       *float64
	// MaxDrawdown is non-positive; shallower (closer to zero) ranks higher.
	MaxDrawdown float64
}

// Result is the ordering of a comparison plus best-of labels.
type Result struct {
	// Ranking holds symbols best first.
	Ranking          []string
	BestReturn       string
	BestSharpe       string
	LowestVolatility string
}

// Rank orders candidates by metric. Higher is better for returns, Sharpe
// and drawdown; lower is better for volatility. Equal values fall back to
// symbol order, and candidates missing the metric go last.
func Rank(cands []Candidate, metric string) Result {
	sorted := make([]Candidate, len(cands))
	copy(sorted, cands)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, aok := value(sorted[i], metric)
		b, bok := value(sorted[j], metric)
		if aok != bok {
			return aok
		}
		if aok && a != b {
			if metric == ByVolatility {
				return a < b
			}
			return a > b
		}
		return sorted[i].Symbol < sorted[j].Symbol
	})

	res := Result{Ranking: make([]string, len(sorted))}
	for i, c := range sorted {
		res.Ranking[i] = c.Symbol
	}
	res.BestReturn = best(cands, ByTotalReturn)
	res.BestSharpe = best(cands, BySharpe)
	res.LowestVolatility = best(cands, ByVolatility)
	return res
}

// best returns the top symbol by metric, or "" when no candidate has it.
func best(cands []Candidate, metric string) string {
	var top *Candidate
	var topVal float64
	for i := range cands {
		v, ok := value(cands[i], metric)
		if !ok {
			continue
		}
		better := top == nil
		if !better {
			switch {
			case metric == ByVolatility && v < topVal, metric != ByVolatility && v > topVal:
				better = true
			case v == topVal && cands[i].Symbol < top.Symbol:
				better = true
			}
		}
		if better {
			top, topVal = &cands[i], v
		}
	}
	if top == nil {
		return ""
	}
	return top.Symbol
}

func value(c Candidate, metric string) (float64, bool) {
	switch metric {
	case ByAnnualReturn:
		return c.AnnualReturn, true
	case BySharpe:
		if c.Sharpe == nil {
			return 0, false
		}
		return *c.Sharpe, true
	case ByVolatility:
		return c.Volatility, true
	case ByMaxDrawdown:
		return c.MaxDrawdown, true
	default:
		return c.TotalReturn, true
	}
}
