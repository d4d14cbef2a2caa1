package report

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seenimoa/finmcp/pkg/models"
	"github.com/seenimoa/finmcp/pkg/utils"
)

// ════════════════════════════════════════════════════════════════════
// Test Helpers
// ════════════════════════════════════════════════════════════════════

func samplePrice() *models.PriceReport {
	return &models.PriceReport{
		Symbol:        "AAPL",
		Window:        models.Window{Period: "1mo", StartDate: "2024-05-14", EndDate: "2024-06-14"},
		AsOf:          "2024-06-14",
		Currency:      "USD",
		CurrentPrice:  212.49,
		PreviousClose: 214.24,
		Change:        -1.75,
		ChangePercent: -0.82,
		Volume:        70122748,
		PeriodHigh:    220.2,
		PeriodLow:     182.59,
		DataPoints:    22,
	}
}

func samplePortfolio() *models.PortfolioReport {
	return &models.PortfolioReport{
		Symbols: []string{"AAPL", "MSFT"},
		Window:  models.Window{Period: "1y", StartDate: "2023-06-14", EndDate: "2024-06-14"},
		AsOf:    "2024-06-14",
		Weights: []models.WeightEntry{{Symbol: "AAPL", Weight: 60}, {Symbol: "MSFT", Weight: 40}},
		Assets: []models.AssetMetrics{
			{Symbol: "AAPL", Weight: 60, AnnualVolatility: 22.1, ContributionToReturn: 9.4},
			{Symbol: "MSFT", Weight: 40, AnnualVolatility: 19.8, SharpeRatio: utils.Ptr(1.4), ContributionToReturn: 7.2},
		},
		Portfolio:            models.PortfolioMetrics{AnnualReturn: 16.6, AnnualVolatility: 18.3, MaxDrawdown: -11.2},
		DiversificationRatio: 1.13,
		Correlation: map[string]map[string]float64{
			"AAPL": {"AAPL": 1, "MSFT": 0.61},
			"MSFT": {"AAPL": 0.61, "MSFT": 1},
		},
		Excluded: []models.SymbolError{{Symbol: "NOPE", Error: models.NewError(models.KindNoDataFound, "symbols", "no data")}},
		Optimization: &models.Optimization{
			Objective:    "target_return",
			TargetReturn: utils.Ptr(500.0),
			GridStep:     0.05,
			Candidates:   21,
		},
	}
}

// ════════════════════════════════════════════════════════════════════
// Formats
// ════════════════════════════════════════════════════════════════════

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in   string
		want Format
		ok   bool
	}{
		{"", FormatJSON, true},
		{"json", FormatJSON, true},
		{" Markdown ", FormatMarkdown, true},
		{"pretty", FormatPretty, true},
		{"html", "", false},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if !tt.ok {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}
}

func TestRenderJSON(t *testing.T) {
	out, err := Render(samplePrice(), FormatJSON, Options{})
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	assert.Equal(t, "AAPL", doc["symbol"])
	assert.Equal(t, "1mo", doc["period"])
}

func TestRenderUnknownFormat(t *testing.T) {
	_, err := Render(samplePrice(), Format("yaml"), Options{})
	assert.Error(t, err)
}

// ════════════════════════════════════════════════════════════════════
// Markdown
// ════════════════════════════════════════════════════════════════════

func TestMarkdownPrice(t *testing.T) {
	md, err := Markdown(samplePrice())
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(md, "## AAPL price"))
	assert.Contains(t, md, "| Current price | 212.49 USD |")
	assert.Contains(t, md, "| Change | -1.75 (-0.82%) |")
	assert.Contains(t, md, "| Volume | 70,122,748 |")
	assert.Contains(t, md, "2024-05-14 to 2024-06-14")
}

func TestMarkdownRiskLevels(t *testing.T) {
	md, err := Markdown(&models.RiskReport{
		Symbol:    "MSFT",
		Benchmark: "^GSPC",
		ValueAtRisk: []models.VaREstimate{
			{Confidence: 0.95, ValueAtRisk: -2.1, ExpectedShortfall: -3.0},
			{Confidence: 0.99, ValueAtRisk: -3.4, ExpectedShortfall: -4.2},
		},
		RiskRating: "Medium",
	})
	require.NoError(t, err)
	assert.Contains(t, md, "| 95% | -2.10% | -3.00% |")
	assert.Contains(t, md, "| 99% | -3.40% | -4.20% |")
	assert.Contains(t, md, "| Sortino ratio | n/a |")
}

func TestMarkdownComparisonWithFailure(t *testing.T) {
	md, err := Markdown(&models.ComparisonReport{
		Symbols: []string{"AAPL", "NOPE"},
		Period:  "1y",
		RankBy:  "total_return",
		Entries: []models.ComparisonEntry{
			{Symbol: "AAPL", Rank: 1, Metrics: &models.ComparisonMetrics{TotalReturn: 12.5, CurrentPrice: 200}},
			{Symbol: "NOPE", Error: models.NewError(models.KindNoDataFound, "symbols", "no data")},
		},
		Ranking:    []string{"AAPL"},
		BestReturn: "AAPL",
		Failed:     1,
	})
	require.NoError(t, err)
	assert.Contains(t, md, "| 1 | AAPL | 200.00 | 12.50% |")
	assert.Contains(t, md, "| - | NOPE | NoDataFound |")
	assert.Contains(t, md, "Best return: **AAPL**.")
	assert.Contains(t, md, "1 symbol(s) failed.")
}

func TestMarkdownPortfolio(t *testing.T) {
	md, err := Markdown(samplePortfolio())
	require.NoError(t, err)

	assert.Contains(t, md, "| | AAPL | MSFT |")
	assert.Contains(t, md, "| AAPL | 1.00 | 0.61 |")
	assert.Contains(t, md, "| Sharpe ratio | n/a |")
	assert.Contains(t, md, "- NOPE: NoDataFound")
	assert.Contains(t, md, "### Optimization (target_return, target 500.00%)")
	assert.Contains(t, md, "No feasible allocation among 21 candidates.")
}

func TestMarkdownSummary(t *testing.T) {
	md, err := Markdown(&models.FinancialSummary{
		Symbol:        "AAPL",
		Name:          "Apple Inc.",
		Currency:      "USD",
		Sector:        "Technology",
		MarketCap:     utils.Ptr(3.2e12),
		Valuation:     "Fair",
		NewsSentiment: &models.NewsSentiment{Score: 0.42, Label: "Bullish", Headlines: 2},
		Headlines: []models.Headline{
			{Title: "Apple ships", URL: "https://example.com/a", Source: "Wire", PublishedAt: time.Now()},
			{Title: "No link"},
		},
	})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(md, "## Apple Inc. (AAPL)"))
	assert.Contains(t, md, "| Market cap | $3.2T |")
	assert.Contains(t, md, "| Trailing P/E | n/a |")
	assert.Contains(t, md, "- [Apple ships](https://example.com/a) (Wire)")
	assert.Contains(t, md, "- No link")
	assert.Contains(t, md, "News sentiment: **Bullish** (+0.42 across 2 headlines).")
}

func TestMarkdownIndicesAndSearch(t *testing.T) {
	md, err := Markdown(&models.IndicesReport{
		AsOf: "2024-06-14",
		Indices: []models.IndexQuote{
			{Symbol: "^GSPC", Name: "S&P 500", Value: 5431.6, Change: -2.14, ChangePercent: -0.04},
			{Symbol: "^RUT", Name: "Russell 2000", Error: models.NewError(models.KindProviderUnavailable, "indices", "down")},
		},
		Declining: 1,
		Sentiment: "Bearish",
	})
	require.NoError(t, err)
	assert.Contains(t, md, "| ^GSPC | S&P 500 | 5431.60 | -2.14 | -0.04% |")
	assert.Contains(t, md, "| ^RUT | Russell 2000 | ProviderUnavailable | | |")

	md, err = Markdown(&models.SearchReport{Query: "zzz"})
	require.NoError(t, err)
	assert.Contains(t, md, "No matches.")
}

func TestMarkdownError(t *testing.T) {
	md, err := Markdown(models.NewError(models.KindInvalidPeriod, "period", "unknown period %q", "7w"))
	require.NoError(t, err)
	assert.Equal(t, "**InvalidPeriod** (`period`): unknown period \"7w\"\n", md)
}

func TestMarkdownUnsupported(t *testing.T) {
	_, err := Markdown(map[string]int{"a": 1})
	assert.ErrorIs(t, err, ErrUnsupported)
}

func TestPretty(t *testing.T) {
	out, err := Render(samplePrice(), FormatPretty, Options{Style: "notty", Width: 80})
	require.NoError(t, err)
	assert.Contains(t, out, "AAPL price")
	assert.Contains(t, out, "212.49")
}

// ════════════════════════════════════════════════════════════════════
// Bars
// ════════════════════════════════════════════════════════════════════

func TestHorizontalBarsPositive(t *testing.T) {
	out := HorizontalBars([]BarItem{{"AAPL", 50}, {"MSFT", 25}}, 10)
	lines := strings.Split(strings.TrimSuffix(out, "\n"), "\n")
	require.Len(t, lines, 2)

	assert.Equal(t, 10, strings.Count(lines[0], barFull))
	assert.Equal(t, 5, strings.Count(lines[1], barFull))
	assert.True(t, strings.HasSuffix(lines[0], "50.00%"))
	assert.NotContains(t, out, barAxis)
}

func TestHorizontalBarsMixedSigns(t *testing.T) {
	out := HorizontalBars([]BarItem{{"UP", 30}, {"DOWN", -10}}, 8)
	lines := strings.Split(strings.TrimSuffix(out, "\n"), "\n")
	require.Len(t, lines, 2)

	for _, l := range lines {
		assert.Contains(t, l, barAxis)
	}
	up, down := lines[0], lines[1]
	assert.Equal(t, 6, strings.Count(up, barFull))
	assert.Equal(t, 2, strings.Count(down, barFull))
	// Negative bars sit left of the axis.
	assert.Less(t, strings.Index(down, barFull), strings.Index(down, barAxis))
	assert.Greater(t, strings.Index(up, barFull), strings.Index(up, barAxis))
}

func TestHorizontalBarsEdgeCases(t *testing.T) {
	assert.Empty(t, HorizontalBars(nil, 10))

	out := HorizontalBars([]BarItem{{"FLAT", 0}}, 0)
	assert.Equal(t, 0, strings.Count(out, barFull))
	assert.Contains(t, out, "0.00%")
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "1.5s", FormatDuration(1500*time.Millisecond))
	assert.Equal(t, "2.0m", FormatDuration(2*time.Minute))
	assert.Equal(t, "3.0h", FormatDuration(3*time.Hour))
}
