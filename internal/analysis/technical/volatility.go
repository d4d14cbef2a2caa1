package technical

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/seenimoa/finmcp/pkg/models"
)

const (
	TradingDaysPerYear  = 252
	TradingDaysPerMonth = 21
)

// Volatility trend labels.
const (
	VolatilityIncreasing   = "increasing"
	VolatilityDecreasing   = "decreasing"
	VolatilityUndetermined = "undetermined"
)

// Volatility is the sample standard deviation of daily returns scaled to
// three horizons.
type Volatility struct {
	Daily   float64
	Monthly float64
	Annual  float64
}

// ComputeVolatility returns the sample (N-1) standard deviation of returns
// with monthly and annual scaling. Fewer than two returns is
// InsufficientHistory rather than a zero volatility.
func ComputeVolatility(returns []float64) (Volatility, error) {
	if len(returns) < 2 {
		return Volatility{}, models.NewError(models.KindInsufficientHistory, "period",
			"volatility needs at least 2 returns, got %d", len(returns))
	}
	daily := stat.StdDev(returns, nil)
	return Volatility{
		Daily:   daily,
		Monthly: daily * math.Sqrt(TradingDaysPerMonth),
		Annual:  daily * math.Sqrt(TradingDaysPerYear),
	}, nil
}

// AnnualizedVolatility is ComputeVolatility(returns).Annual.
func AnnualizedVolatility(returns []float64) (float64, error) {
	v, err := ComputeVolatility(returns)
	if err != nil {
		return 0, err
	}
	return v.Annual, nil
}

// RollingVolatility returns the annualized volatility of every trailing
// window of returns, aligned so that out[i] covers returns[i-window+1..i].
// The first window-1 entries are NaN. Returns nil when returns is shorter
// than window or window < 2.
func RollingVolatility(returns []float64, window int) []float64 {
	if window < 2 || len(returns) < window {
		return nil
	}
	out := make([]float64, len(returns))
	for i := range out {
		if i < window-1 {
			out[i] = math.NaN()
			continue
		}
		out[i] = stat.StdDev(returns[i-window+1:i+1], nil) * math.Sqrt(TradingDaysPerYear)
	}
	return out
}

// LatestRollingVolatility returns the annualized volatility of the last
// window returns, or nil when there are fewer.
func LatestRollingVolatility(returns []float64, window int) *float64 {
	if window < 2 || len(returns) < window {
		return nil
	}
	v := stat.StdDev(returns[len(returns)-window:], nil) * math.Sqrt(TradingDaysPerYear)
	return &v
}

// VolatilityTrend compares short and long rolling volatility: increasing
// when short > long, decreasing otherwise, undetermined when either is
// unavailable.
func VolatilityTrend(short, long *float64) string {
	if short == nil || long == nil {
		return VolatilityUndetermined
	}
	if *short > *long {
		return VolatilityIncreasing
	}
	return VolatilityDecreasing
}

// ReturnRange returns the largest and smallest daily return.
func ReturnRange(returns []float64) (max, min float64) {
	if len(returns) == 0 {
		return 0, 0
	}
	return floats.Max(returns), floats.Min(returns)
}
