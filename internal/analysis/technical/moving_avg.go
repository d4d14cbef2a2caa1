// Package technical implements moving averages, rate of change, volatility
// and trend classification over adjusted close prices. All functions take
// plain float slices and never modify their input.
package technical

import (
	"math"

	"github.com/markcheno/go-talib"
)

// StandardWindows are the default moving-average windows.
var StandardWindows = []int{20, 50, 200}

// SMA calculates the Simple Moving Average for the given period. The first
// period-1 values are zero. Returns nil when data is shorter than period.
func SMA(data []float64, period int) []float64 {
	if period <= 0 || len(data) < period {
		return nil
	}
	return talib.Sma(data, period)
}

// SMALatest returns the most recent SMA value, or nil when data is shorter
// than period.
func SMALatest(data []float64, period int) *float64 {
	return latest(SMA(data, period))
}

// EMA calculates the Exponential Moving Average for the given period, seeded
// with the SMA of the first period values.
func EMA(data []float64, period int) []float64 {
	if period <= 0 || len(data) < period {
		return nil
	}
	return talib.Ema(data, period)
}

// EMALatest returns the most recent EMA value.
func EMALatest(data []float64, period int) *float64 {
	return latest(EMA(data, period))
}

// ROC calculates the rate of change over period bars in percent:
// (p[i] / p[i-period] - 1) * 100. Needs more than period values.
func ROC(data []float64, period int) []float64 {
	if period <= 0 || len(data) <= period {
		return nil
	}
	return talib.Roc(data, period)
}

// ROCLatest returns the most recent rate of change.
func ROCLatest(data []float64, period int) *float64 {
	return latest(ROC(data, period))
}

func latest(vals []float64) *float64 {
	if len(vals) == 0 {
		return nil
	}
	v := vals[len(vals)-1]
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}
