package compare

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func sharpe(v float64) *float64 { return &v }

var cands = []Candidate{
	{Symbol: "MSFT", TotalReturn: 0.20, AnnualReturn: 0.18, Volatility: 0.22, Sharpe: sharpe(1.1), MaxDrawdown: -0.12},
	{Symbol: "AAPL", TotalReturn: 0.35, AnnualReturn: 0.30, Volatility: 0.28, Sharpe: sharpe(1.4), MaxDrawdown: -0.18},
	{Symbol: "TSLA", TotalReturn: -0.10, AnnualReturn: -0.05, Volatility: 0.55, Sharpe: nil, MaxDrawdown: -0.45},
	{Symbol: "GOOG", TotalReturn: 0.20, AnnualReturn: 0.21, Volatility: 0.25, Sharpe: sharpe(0.9), MaxDrawdown: -0.10},
}

func TestRank(t *testing.T) {
	tests := []struct {
		metric string
		want   []string
	}{
		// MSFT and GOOG tie on total return; symbol order breaks the tie.
		{ByTotalReturn, []string{"AAPL", "GOOG", "MSFT", "TSLA"}},
		{ByAnnualReturn, []string{"AAPL", "GOOG", "MSFT", "TSLA"}},
		// TSLA has no Sharpe ratio and goes last.
		{BySharpe, []string{"AAPL", "MSFT", "GOOG", "TSLA"}},
		{ByVolatility, []string{"MSFT", "GOOG", "AAPL", "TSLA"}},
		{ByMaxDrawdown, []string{"GOOG", "MSFT", "AAPL", "TSLA"}},
	}
	for _, tt := range tests {
		t.Run(tt.metric, func(t *testing.T) {
			assert.Equal(t, tt.want, Rank(cands, tt.metric).Ranking)
		})
	}
}

func TestRankBestOf(t *testing.T) {
	res := Rank(cands, ByVolatility)
	assert.Equal(t, "AAPL", res.BestReturn)
	assert.Equal(t, "AAPL", res.BestSharpe)
	assert.Equal(t, "MSFT", res.LowestVolatility)
}

func TestRankDoesNotReorderInput(t *testing.T) {
	in := append([]Candidate(nil), cands...)
	Rank(in, ByTotalReturn)
	assert.Equal(t, cands, in)
}

func TestRankEmptyAndMissing(t *testing.T) {
	res := Rank(nil, ByTotalReturn)
	assert.Empty(t, res.Ranking)
	assert.Empty(t, res.BestReturn)

	res = Rank([]Candidate{{Symbol: "X"}}, BySharpe)
	assert.Equal(t, []string{"X"}, res.Ranking)
	assert.Empty(t, res.BestSharpe)
}

func TestBestTieBreaksOnSymbol(t *testing.T) {
	tied := []Candidate{{Symbol: "ZZZ", TotalReturn: 0.1}, {Symbol: "AAA", TotalReturn: 0.1}}
	assert.Equal(t, "AAA", Rank(tied, ByTotalReturn).BestReturn)
}

func TestValidMetric(t *testing.T) {
	for _, m := range Metrics {
		assert.True(t, ValidMetric(m))
	}
	assert.False(t, ValidMetric("beta"))
}
