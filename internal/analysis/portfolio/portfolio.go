// Package portfolio analyses weighted baskets of date-aligned returns:
// portfolio return series, covariance-aware volatility, correlation,
// diversification ratio and a grid search over long-only weights.
package portfolio

import (
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/seenimoa/finmcp/internal/analysis/risk"
	"github.com/seenimoa/finmcp/internal/analysis/series"
	"github.com/seenimoa/finmcp/internal/analysis/technical"
	"github.com/seenimoa/finmcp/pkg/models"
)

var annualize = math.Sqrt(technical.TradingDaysPerYear)

// Options tune Analyze.
type Options struct {
	RiskFreeRate float64
	// Objective selects the optimizer goal; empty skips optimization.
	Objective     string
	TargetReturn  *float64
	Step          float64
	MaxCandidates int
}

// Asset holds per-holding figures.
type Asset struct {
	Symbol           string
	Weight           float64
	AnnualVolatility float64
	Sharpe           *float64
	// Contribution is mean daily return * weight * 252.
	Contribution float64
}

// Analysis is the result of Analyze.
type Analysis struct {
	Symbols              []string
	Weights              []float64
	DataPoints           int
	Returns              []float64
	Assets               []Asset
	AnnualReturn         float64
	AnnualVolatility     float64
	Sharpe               *float64
	MaxDrawdown          float64
	DiversificationRatio float64
	Correlation          [][]float64
	Optimization         *Optimum
}

// Analyze computes portfolio statistics for weights over returns that are
// already aligned on common dates (one series per symbol, same order as
// weights). Fewer than two assets is NoOverlap.
func Analyze(weights []float64, aligned []*models.ReturnsSeries, opts Options) (*Analysis, error) {
	if len(aligned) < 2 {
		return nil, models.NewError(models.KindNoOverlap, "symbols",
			"portfolio analysis needs at least 2 assets with common history, got %d", len(aligned))
	}
	if len(weights) != len(aligned) {
		return nil, models.NewError(models.KindInvalidWeights, "weights",
			"got %d weights for %d assets", len(weights), len(aligned))
	}
	t := aligned[0].Len()
	if t < 2 {
		return nil, models.NewError(models.KindInsufficientHistory, "period",
			"portfolio analysis needs at least 2 common returns, got %d", t)
	}

	cols := make([][]float64, len(aligned))
	symbols := make([]string, len(aligned))
	for i, r := range aligned {
		cols[i] = r.Values
		symbols[i] = r.Symbol
	}

	cov := Covariance(cols)
	pr := WeightedReturns(weights, cols)

	a := &Analysis{
		Symbols:          symbols,
		Weights:          weights,
		DataPoints:       t,
		Returns:          pr,
		Assets:           make([]Asset, len(aligned)),
		AnnualReturn:     stat.Mean(pr, nil) * technical.TradingDaysPerYear,
		AnnualVolatility: AnnualVolatility(weights, cov),
		MaxDrawdown:      risk.CurveDrawdown(series.Equity(pr)),
		Correlation:      Correlation(cols),
	}
	if s, err := risk.Sharpe(pr, opts.RiskFreeRate); err == nil {
		a.Sharpe = &s
	}

	for i, c := range cols {
		asset := Asset{
			Symbol:           symbols[i],
			Weight:           weights[i],
			AnnualVolatility: math.Sqrt(cov.At(i, i)) * annualize,
			Contribution:     stat.Mean(c, nil) * weights[i] * technical.TradingDaysPerYear,
		}
		if s, err := risk.Sharpe(c, opts.RiskFreeRate); err == nil {
			asset.Sharpe = &s
		}
		a.Assets[i] = asset
	}

	dr, err := DiversificationRatio(weights, cov)
	if err != nil {
		return nil, err
	}
	a.DiversificationRatio = dr

	if opts.Objective != "" {
		opt, err := Optimize(cols, opts)
		if err != nil {
			return nil, err
		}
		a.Optimization = opt
	}
	return a, nil
}

// WeightedReturns returns sum_i w[i] * returns[i][t] for every date t.
// All return columns must have the same length.
func WeightedReturns(weights []float64, returns [][]float64) []float64 {
	if len(returns) == 0 {
		return nil
	}
	out := make([]float64, len(returns[0]))
	for i, col := range returns {
		w := weights[i]
		for t, r := range col {
			out[t] += w * r
		}
	}
	return out
}

// Covariance returns the sample covariance matrix of the return columns.
func Covariance(returns [][]float64) *mat.SymDense {
	var cov mat.SymDense
	stat.CovarianceMatrix(&cov, observations(returns), nil)
	return &cov
}

// Correlation returns the Pearson correlation matrix of the return
// columns. Pairs involving a zero-variance column are NaN.
func Correlation(returns [][]float64) [][]float64 {
	var c mat.SymDense
	stat.CorrelationMatrix(&c, observations(returns), nil)
	n := len(returns)
	out := make([][]float64, n)
	for i := range out {
		out[i] = make([]float64, n)
		for j := range out[i] {
			v := c.At(i, j)
			if !math.IsNaN(v) {
				v = math.Max(-1, math.Min(1, v))
			}
			out[i][j] = v
		}
	}
	return out
}

// AnnualVolatility is sqrt(wᵀΣw) scaled to a year.
func AnnualVolatility(weights []float64, cov *mat.SymDense) float64 {
	w := mat.NewVecDense(len(weights), weights)
	return math.Sqrt(mat.Inner(w, cov, w)) * annualize
}

// DiversificationRatio is the weighted average of asset volatilities over
// the portfolio volatility. It is 1 for perfectly correlated assets and
// grows as correlation falls. A zero portfolio volatility is
// DegenerateSeries.
func DiversificationRatio(weights []float64, cov *mat.SymDense) (float64, error) {
	w := mat.NewVecDense(len(weights), weights)
	sigma := math.Sqrt(mat.Inner(w, cov, w))
	if sigma == 0 || math.IsNaN(sigma) {
		return 0, models.NewError(models.KindDegenerateSeries, "symbols", "portfolio returns have zero variance")
	}
	var weighted float64
	for i, wi := range weights {
		weighted += wi * math.Sqrt(cov.At(i, i))
	}
	return weighted / sigma, nil
}

// observations lays return columns out as a T×n matrix.
func observations(returns [][]float64) *mat.Dense {
	n, t := len(returns), len(returns[0])
	x := mat.NewDense(t, n, nil)
	for j, col := range returns {
		x.SetCol(j, col)
	}
	return x
}
