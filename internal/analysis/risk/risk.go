// Package risk computes tail-risk and risk-adjusted performance metrics from
// daily returns: historical VaR and expected shortfall, Sharpe and Sortino
// ratios, beta against a benchmark, maximum drawdown and a volatility-based
// risk rating.
package risk

import (
	"math"
	"sort"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/seenimoa/finmcp/internal/analysis/series"
	"github.com/seenimoa/finmcp/internal/analysis/technical"
	"github.com/seenimoa/finmcp/pkg/models"
)

// Risk ratings by annualized volatility.
const (
	RatingLow      = "low"
	RatingModerate = "moderate"
	RatingHigh     = "high"
	RatingExtreme  = "extreme"
)

// DefaultConfidenceLevels are the VaR confidence levels used when none are
// configured.
var DefaultConfidenceLevels = []float64{0.95, 0.99}

// Options tune Compute.
type Options struct {
	// RiskFreeRate is annual, e.g. 0.02 for 2%.
	RiskFreeRate     float64
	ConfidenceLevels []float64
}

// VaR is historical Value-at-Risk at one confidence level. Both values are
// daily returns (negative for losses).
type VaR struct {
	Confidence        float64
	Value             float64
	ExpectedShortfall float64
}

// Drawdown is the deepest peak-to-trough decline of a price curve.
// Max is a non-positive ratio (-0.25 for a 25% decline).
type Drawdown struct {
	Max    float64
	Peak   time.Time
	Trough time.Time
}

// Metrics is the full risk profile of one series.
type Metrics struct {
	DataPoints        int
	BenchmarkPoints   int
	AnnualVolatility  float64
	Sharpe            float64
	Sortino           *float64
	Beta              *float64
	VaR               []VaR
	Drawdown          Drawdown
	DownsideDeviation *float64
	Rating            string
}

// Compute derives every risk metric for prices and their returns. When
// benchmark is non-nil, beta is computed on date-aligned returns and any
// failure is reported against the "benchmark" parameter.
func Compute(prices *models.PriceSeries, returns, benchmark *models.ReturnsSeries, opts Options) (*Metrics, error) {
	vol, err := technical.AnnualizedVolatility(returns.Values)
	if err != nil {
		return nil, err
	}
	sharpe, err := Sharpe(returns.Values, opts.RiskFreeRate)
	if err != nil {
		return nil, err
	}

	levels := opts.ConfidenceLevels
	if len(levels) == 0 {
		levels = DefaultConfidenceLevels
	}
	m := &Metrics{
		DataPoints:        returns.Len(),
		AnnualVolatility:  vol,
		Sharpe:            sharpe,
		Sortino:           Sortino(returns.Values, opts.RiskFreeRate),
		VaR:               make([]VaR, 0, len(levels)),
		Drawdown:          MaxDrawdown(prices),
		DownsideDeviation: DownsideDeviation(returns.Values),
		Rating:            Rating(vol),
	}
	for _, c := range levels {
		v, err := ValueAtRisk(returns.Values, c)
		if err != nil {
			return nil, err
		}
		m.VaR = append(m.VaR, v)
	}

	if benchmark != nil {
		beta, n, err := Beta(returns, benchmark)
		if err != nil {
			return nil, models.WithParam(err, "benchmark")
		}
		m.Beta = &beta
		m.BenchmarkPoints = n
	}
	return m, nil
}

// ValueAtRisk returns the (1-confidence) quantile of returns, linearly
// interpolated on the sorted sample, and the mean of the returns at or below
// it.
func ValueAtRisk(returns []float64, confidence float64) (VaR, error) {
	if len(returns) == 0 {
		return VaR{}, models.NewError(models.KindInsufficientHistory, "period", "value at risk needs at least one return")
	}
	if confidence <= 0 || confidence >= 1 {
		confidence = 0.95
	}
	sorted := make([]float64, len(returns))
	copy(sorted, returns)
	sort.Float64s(sorted)

	q := stat.Quantile(1-confidence, stat.LinInterp, sorted, nil)

	var sum float64
	var n int
	for _, r := range sorted {
		if r > q {
			break
		}
		sum += r
		n++
	}
	es := q
	if n > 0 {
		es = sum / float64(n)
	}
	return VaR{Confidence: confidence, Value: q, ExpectedShortfall: es}, nil
}

// Sharpe is the annualized Sharpe ratio:
// (mean(r) - rf/252) / std(r) * sqrt(252). A zero standard deviation is
// DegenerateSeries.
func Sharpe(returns []float64, riskFreeRate float64) (float64, error) {
	if len(returns) < 2 {
		return 0, models.NewError(models.KindInsufficientHistory, "period",
			"sharpe ratio needs at least 2 returns, got %d", len(returns))
	}
	mean, sd := stat.MeanStdDev(returns, nil)
	if sd == 0 || math.IsNaN(sd) {
		return 0, models.NewError(models.KindDegenerateSeries, "symbol", "returns have zero variance")
	}
	dailyRf := riskFreeRate / technical.TradingDaysPerYear
	return (mean - dailyRf) / sd * math.Sqrt(technical.TradingDaysPerYear), nil
}

// Sortino is the annualized Sortino ratio using the downside deviation of
// excess returns over all observations. Nil when no excess return is
// negative.
func Sortino(returns []float64, riskFreeRate float64) *float64 {
	if len(returns) < 2 {
		return nil
	}
	dailyRf := riskFreeRate / technical.TradingDaysPerYear
	var sum, downsideSq float64
	var downside int
	for _, r := range returns {
		ex := r - dailyRf
		sum += ex
		if ex < 0 {
			downsideSq += ex * ex
			downside++
		}
	}
	if downside == 0 {
		return nil
	}
	dd := math.Sqrt(downsideSq / float64(len(returns)))
	if dd == 0 {
		return nil
	}
	v := (sum / float64(len(returns))) / dd * math.Sqrt(technical.TradingDaysPerYear)
	return &v
}

// DownsideDeviation is the annualized sample standard deviation of the
// negative returns. Nil with fewer than two negative returns.
func DownsideDeviation(returns []float64) *float64 {
	neg := make([]float64, 0, len(returns)/2)
	for _, r := range returns {
		if r < 0 {
			neg = append(neg, r)
		}
	}
	if len(neg) < 2 {
		return nil
	}
	v := stat.StdDev(neg, nil) * math.Sqrt(technical.TradingDaysPerYear)
	return &v
}

// Beta is Cov(asset, benchmark) / Var(benchmark) over the dates both series
// share, using sample estimators. It also returns the number of common
// points. No common dates is NoOverlap; fewer than two common points or a
// flat benchmark is DegenerateSeries.
func Beta(asset, benchmark *models.ReturnsSeries) (float64, int, error) {
	aligned, err := series.AlignReturns(asset, benchmark)
	if err != nil {
		return 0, 0, err
	}
	a, b := aligned[0].Values, aligned[1].Values
	if len(a) < 2 {
		return 0, len(a), models.NewError(models.KindDegenerateSeries, "",
			"beta needs at least 2 common returns, got %d", len(a))
	}
	v := stat.Variance(b, nil)
	if v == 0 || math.IsNaN(v) {
		return 0, len(a), models.NewError(models.KindDegenerateSeries, "", "%s returns have zero variance", benchmark.Symbol)
	}
	return stat.Covariance(a, b, nil) / v, len(a), nil
}

// MaxDrawdown scans adjusted closes for the deepest decline from a running
// peak. A non-decreasing series has Max == 0 and zero dates.
func MaxDrawdown(s *models.PriceSeries) Drawdown {
	var dd Drawdown
	if s.Len() == 0 {
		return dd
	}
	peak, peakDate := s.Bars[0].AdjClose, s.Bars[0].Date
	for _, b := range s.Bars {
		if b.AdjClose > peak {
			peak, peakDate = b.AdjClose, b.Date
			continue
		}
		if peak <= 0 {
			continue
		}
		if d := b.AdjClose/peak - 1; d < dd.Max {
			dd = Drawdown{Max: d, Peak: peakDate, Trough: b.Date}
		}
	}
	return dd
}

// CurveDrawdown is MaxDrawdown over a plain equity curve.
func CurveDrawdown(curve []float64) float64 {
	if len(curve) == 0 {
		return 0
	}
	peak, max := curve[0], 0.0
	for _, v := range curve {
		if v > peak {
			peak = v
			continue
		}
		if peak > 0 {
			if d := v/peak - 1; d < max {
				max = d
			}
		}
	}
	return max
}

// Rating buckets annualized volatility (a ratio, 0.2 for 20%).
func Rating(annualVol float64) string {
	switch {
	case annualVol < 0.15:
		return RatingLow
	case annualVol < 0.25:
		return RatingModerate
	case annualVol < 0.40:
		return RatingHigh
	default:
		return RatingExtreme
	}
}
