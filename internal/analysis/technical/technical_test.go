package technical

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seenimoa/finmcp/internal/analysis/series/seriestest"
	"github.com/seenimoa/finmcp/pkg/models"
)

// ── Moving averages ──

func TestSMA(t *testing.T) {
	data := []float64{1, 2, 3, 4, 5}
	vals := SMA(data, 3)
	require.Len(t, vals, 5)
	assert.InDelta(t, 2, vals[2], 1e-12)
	assert.InDelta(t, 4, vals[4], 1e-12)

	assert.Nil(t, SMA(data, 6))
	assert.Nil(t, SMA(data, 0))
	assert.Nil(t, SMALatest(data, 6))
	require.NotNil(t, SMALatest(data, 5))
	assert.InDelta(t, 3, *SMALatest(data, 5), 1e-12)
}

func TestEMAConvergesOnConstantSeries(t *testing.T) {
	data := make([]float64, 30)
	for i := range data {
		data[i] = 42
	}
	v := EMALatest(data, 10)
	require.NotNil(t, v)
	assert.InDelta(t, 42, *v, 1e-9)
}

func TestEMAWeightsRecentPrices(t *testing.T) {
	// Both averages lag a straight line by the same (n-1)/2 bars.
	linear := seriestest.Linear(60, 100, 1)
	ema, sma := EMALatest(linear, 20), SMALatest(linear, 20)
	require.NotNil(t, ema)
	require.NotNil(t, sma)
	assert.InDelta(t, *sma, *ema, 1e-9)

	// On an accelerating series the longer EMA tail leaves it above the SMA.
	accel := make([]float64, 60)
	for i := range accel {
		accel[i] = 100 + 0.1*float64(i*i)
	}
	ema, sma = EMALatest(accel, 20), SMALatest(accel, 20)
	require.NotNil(t, ema)
	require.NotNil(t, sma)
	assert.Greater(t, *ema, *sma)
}

func TestROC(t *testing.T) {
	data := []float64{100, 101, 102, 103, 104, 105, 106, 107, 108, 109, 110}
	v := ROCLatest(data, 10)
	require.NotNil(t, v)
	assert.InDelta(t, 10, *v, 1e-9)

	assert.Nil(t, ROCLatest(data[:10], 10), "needs more than period values")
}

func TestInputsNotModified(t *testing.T) {
	data := seriestest.Linear(40, 10, 0.5)
	orig := append([]float64(nil), data...)
	SMA(data, 20)
	EMA(data, 20)
	ROC(data, 10)
	RollingVolatility(data, 5)
	assert.Equal(t, orig, data)
}

// ── Volatility ──

func TestComputeVolatility(t *testing.T) {
	// Returns of closes 100, 102, 101, 105.
	returns := []float64{0.02, 101.0/102 - 1, 105.0/101 - 1}

	v, err := ComputeVolatility(returns)
	require.NoError(t, err)

	mean := (returns[0] + returns[1] + returns[2]) / 3
	var ss float64
	for _, r := range returns {
		ss += (r - mean) * (r - mean)
	}
	std := math.Sqrt(ss / 2)

	assert.InDelta(t, std, v.Daily, 1e-12)
	assert.InDelta(t, std*math.Sqrt(21), v.Monthly, 1e-12)
	assert.InDelta(t, std*math.Sqrt(252), v.Annual, 1e-12)
}

func TestComputeVolatilityInsufficient(t *testing.T) {
	for _, returns := range [][]float64{nil, {0.01}} {
		_, err := ComputeVolatility(returns)
		assert.True(t, errors.Is(err, models.ErrInsufficientHistory))
	}
}

func TestVolatilityNonNegative(t *testing.T) {
	cases := [][]float64{
		{0, 0, 0},
		{0.01, -0.01},
		{0.5, -0.4, 0.3, -0.2},
	}
	for _, c := range cases {
		v, err := AnnualizedVolatility(c)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, v, 0.0)
	}
}

func TestRollingVolatility(t *testing.T) {
	returns := []float64{0.01, -0.01, 0.01, -0.01, 0.02, -0.02}
	rv := RollingVolatility(returns, 4)
	require.Len(t, rv, 6)
	assert.True(t, math.IsNaN(rv[0]))
	assert.True(t, math.IsNaN(rv[2]))
	assert.False(t, math.IsNaN(rv[3]))

	last := LatestRollingVolatility(returns, 4)
	require.NotNil(t, last)
	assert.InDelta(t, rv[5], *last, 1e-12)

	assert.Nil(t, RollingVolatility(returns, 10))
	assert.Nil(t, LatestRollingVolatility(returns, 10))
}

func TestVolatilityTrend(t *testing.T) {
	hi, lo := 0.3, 0.2
	assert.Equal(t, VolatilityIncreasing, VolatilityTrend(&hi, &lo))
	assert.Equal(t, VolatilityDecreasing, VolatilityTrend(&lo, &hi))
	assert.Equal(t, VolatilityDecreasing, VolatilityTrend(&lo, &lo))
	assert.Equal(t, VolatilityUndetermined, VolatilityTrend(nil, &lo))
	assert.Equal(t, VolatilityUndetermined, VolatilityTrend(&hi, nil))
}

func TestReturnRange(t *testing.T) {
	max, min := ReturnRange([]float64{0.01, -0.03, 0.02})
	assert.Equal(t, 0.02, max)
	assert.Equal(t, -0.03, min)
}

// ── Trend ──

func TestAnalyzeTrendUptrend(t *testing.T) {
	prices := seriestest.Linear(250, 100, 0.5)
	tr, err := AnalyzeTrend(prices, StandardWindows, 50)
	require.NoError(t, err)

	assert.Equal(t, Bullish, tr.Short)
	assert.Equal(t, Bullish, tr.Medium)
	assert.Equal(t, Bullish, tr.Long)
	assert.Equal(t, GoldenCross, tr.Cross)
	assert.Equal(t, Bullish, tr.Overall)
	require.NotNil(t, tr.Momentum)
	assert.Greater(t, *tr.Momentum, 0.0)
	require.NotNil(t, tr.RateOfChange10)
	require.NotNil(t, tr.RateOfChange30)
	assert.Len(t, tr.MovingAverages, 3)
	for _, ma := range tr.MovingAverages {
		assert.NotNil(t, ma.SMA, "window %d", ma.Window)
		assert.NotNil(t, ma.EMA, "window %d", ma.Window)
	}
}

func TestAnalyzeTrendOrdersWindows(t *testing.T) {
	prices := seriestest.Linear(250, 100, 0.5)
	windows := []int{200, 50, 20}
	tr, err := AnalyzeTrend(prices, windows, 50)
	require.NoError(t, err)

	assert.Equal(t, []int{200, 50, 20}, windows, "input not modified")
	assert.Equal(t, 20, tr.MovingAverages[0].Window)
	assert.Equal(t, 200, tr.MovingAverages[2].Window)
	assert.Equal(t, GoldenCross, tr.Cross)
	assert.Equal(t, Bullish, tr.Overall)
}

func TestAnalyzeTrendDowntrend(t *testing.T) {
	prices := seriestest.Linear(250, 300, -0.5)
	tr, err := AnalyzeTrend(prices, StandardWindows, 50)
	require.NoError(t, err)

	assert.Equal(t, Bearish, tr.Short)
	assert.Equal(t, Bearish, tr.Medium)
	assert.Equal(t, Bearish, tr.Long)
	assert.Equal(t, DeathCross, tr.Cross)
	assert.Equal(t, Bearish, tr.Overall)
	assert.Less(t, *tr.Momentum, 0.0)
}

func TestAnalyzeTrendShortHistory(t *testing.T) {
	// 120 bars cover the 20 and 50 windows but not 200.
	prices := seriestest.Linear(120, 100, 1)
	tr, err := AnalyzeTrend(prices, StandardWindows, 50)
	require.NoError(t, err)

	assert.Equal(t, Neutral, tr.Long)
	assert.Equal(t, NoCross, tr.Cross)
	assert.Nil(t, tr.MovingAverages[2].SMA)
	assert.Equal(t, Bullish, tr.Overall, "two of three horizons bullish")
}

func TestAnalyzeTrendInsufficient(t *testing.T) {
	_, err := AnalyzeTrend(seriestest.Linear(49, 100, 1), StandardWindows, 50)
	assert.True(t, errors.Is(err, models.ErrInsufficientHistory))

	_, err = AnalyzeTrend(nil, StandardWindows, 50)
	assert.True(t, errors.Is(err, models.ErrNoDataFound))
}
