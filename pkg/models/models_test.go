package models

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ── Errors ──

func TestErrorMatchesByKind(t *testing.T) {
	err := fmt.Errorf("fetch: %w", NewError(KindNoDataFound, "symbol", "no bars for %s", "ZZZZ"))

	assert.ErrorIs(t, err, ErrNoDataFound)
	assert.NotErrorIs(t, err, ErrTimeout)
	assert.Equal(t, KindNoDataFound, KindOf(err))
	assert.Equal(t, "NoDataFound (symbol): no bars for ZZZZ", AsError(err).Error())
}

func TestErrorJSON(t *testing.T) {
	raw, err := json.Marshal(WrapError(KindTimeout, "", context.DeadlineExceeded))
	require.NoError(t, err)
	assert.JSONEq(t, `{"kind":"Timeout","message":"context deadline exceeded"}`, string(raw))
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorKind
	}{
		{"structured", NewError(KindInvalidWeights, "weights", "sum"), KindInvalidWeights},
		{"deadline", fmt.Errorf("get: %w", context.DeadlineExceeded), KindTimeout},
		{"cancelled", context.Canceled, KindTimeout},
		{"unknown", errors.New("boom"), KindProviderUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, KindOf(tt.err))
		})
	}
}

func TestAsError(t *testing.T) {
	assert.Nil(t, AsError(nil))

	cause := errors.New("connection reset")
	e := AsError(cause)
	assert.Equal(t, KindProviderUnavailable, e.Kind)
	assert.ErrorIs(t, e, cause)
}

func TestWithParam(t *testing.T) {
	err := WithParam(NewError(KindNoDataFound, "", "empty"), "benchmark")
	assert.Equal(t, "benchmark", AsError(err).Param)

	orig := NewError(KindInvalidSymbol, "symbols[1]", "bad")
	assert.Same(t, orig, WithParam(orig, "symbols"))

	assert.Nil(t, WithParam(nil, "symbol"))

	timeout := WithParam(WrapError(KindTimeout, "", context.DeadlineExceeded), "symbol")
	assert.Empty(t, AsError(timeout).Param)

	bare := WithParam(fmt.Errorf("get: %w", context.DeadlineExceeded), "symbol")
	assert.Equal(t, KindTimeout, KindOf(bare))
	assert.Empty(t, AsError(bare).Param)
}

// ── Market data ──

func TestFormatDate(t *testing.T) {
	assert.Equal(t, "", FormatDate(time.Time{}))
	assert.Equal(t, "2024-02-29", FormatDate(time.Date(2024, 2, 29, 23, 0, 0, 0, time.UTC)))
}

func TestPriceSeriesAccessors(t *testing.T) {
	d := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	s := &PriceSeries{Symbol: "AAPL", Bars: []Bar{
		{Date: d, Close: 10, AdjClose: 9.5},
		{Date: d.AddDate(0, 0, 1), Close: 11, AdjClose: 10.5},
	}}

	assert.Equal(t, 2, s.Len())
	assert.Equal(t, d, s.First().Date)
	assert.Equal(t, 11.0, s.Last().Close)
	assert.Equal(t, []float64{9.5, 10.5}, s.AdjCloses())
	assert.Equal(t, []float64{10, 11}, s.Closes())
	assert.Equal(t, []time.Time{d, d.AddDate(0, 0, 1)}, s.Dates())

	closes := s.Closes()
	closes[0] = 0
	assert.Equal(t, 10.0, s.Bars[0].Close, "accessors return copies")
}

func TestAnalysisPeriodLastDay(t *testing.T) {
	p := AnalysisPeriod{
		Start: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
	}
	assert.Equal(t, time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC), p.LastDay())
}

func TestOHLCVOmitsMissingAdjClose(t *testing.T) {
	raw, err := json.Marshal(OHLCV{Timestamp: time.Date(2024, 1, 2, 14, 30, 0, 0, time.UTC), Close: 1})
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "adj_close")
}
