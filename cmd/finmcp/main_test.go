package main

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seenimoa/finmcp/internal/tools"
	"github.com/seenimoa/finmcp/pkg/models"
)

// execute runs the root command in an empty working directory so no config
// or .env file leaks in.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Chdir(t.TempDir())
	t.Setenv("HOME", t.TempDir())
	t.Setenv("FINMCP_LOGGING_LEVEL", "error")

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(io.Discard)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})
	err := rootCmd.Execute()
	return out.String(), err
}

// ── Commands ──

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "finmcp dev")
}

func TestToolsCommand(t *testing.T) {
	out, err := execute(t, "tools")
	require.NoError(t, err)
	for _, name := range []string{"get_stock_price", "compare_stocks", "get_portfolio_analysis", "search_stocks"} {
		assert.Contains(t, out, name)
	}

	out, err = execute(t, "tools", "compare_stocks")
	require.NoError(t, err)
	assert.Contains(t, out, `"input_schema"`)
	assert.Contains(t, out, `"rank_by"`)

	_, err = execute(t, "tools", "nope")
	assert.ErrorIs(t, err, tools.ErrToolNotFound)
}

func TestCallPrintsStructuredError(t *testing.T) {
	out, err := execute(t, "call", "get_stock_price", `{"symbol":"$$$"}`, "--format", "json", "--select", "")
	assert.ErrorIs(t, err, errToolFailed)
	assert.Contains(t, out, `"kind": "InvalidSymbol"`)
	assert.Contains(t, out, `"param": "symbol"`)

	out, err = execute(t, "call", "get_stock_price", `{"symbol":"AAPL","period":"7w"}`, "--format", "markdown")
	assert.ErrorIs(t, err, errToolFailed)
	assert.True(t, strings.HasPrefix(out, "**InvalidPeriod** (`period`)"), out)
}

func TestCallRejectsUnknownToolAndFormat(t *testing.T) {
	_, err := execute(t, "call", "get_weather", `{}`, "--format", "json")
	assert.ErrorIs(t, err, tools.ErrToolNotFound)

	_, err = execute(t, "call", "get_stock_price", `{}`, "--format", "html")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown format")
}

// ── Helpers ──

func TestCallArgs(t *testing.T) {
	raw, err := callArgs(strings.NewReader("ignored"), nil)
	require.NoError(t, err)
	assert.JSONEq(t, `{}`, string(raw))

	raw, err = callArgs(strings.NewReader("ignored"), []string{`{"symbol":"AAPL"}`})
	require.NoError(t, err)
	assert.JSONEq(t, `{"symbol":"AAPL"}`, string(raw))

	raw, err = callArgs(strings.NewReader(`{"query":"apple"}`), []string{"-"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"query":"apple"}`, string(raw))
}

func TestSelectPath(t *testing.T) {
	rep := &models.ComparisonReport{
		Symbols: []string{"AAPL", "MSFT"},
		Entries: []models.ComparisonEntry{
			{Symbol: "AAPL", Rank: 2, Metrics: &models.ComparisonMetrics{TotalReturn: 4.5}},
			{Symbol: "MSFT", Rank: 1, Metrics: &models.ComparisonMetrics{TotalReturn: 9.1}},
		},
		Ranking: []string{"MSFT", "AAPL"},
	}

	got, err := selectPath(rep, "$.ranking[0]")
	require.NoError(t, err)
	assert.Equal(t, "MSFT", got)

	got, err = selectPath(rep, "$.entries[*].symbol")
	require.NoError(t, err)
	assert.Equal(t, []any{"AAPL", "MSFT"}, got)

	got, err = selectPath(rep, "$.entries[1].metrics.total_return")
	require.NoError(t, err)
	assert.Equal(t, 9.1, got)

	_, err = selectPath(rep, "$.entries[")
	assert.Error(t, err)
}

func TestFirstSentence(t *testing.T) {
	assert.Equal(t, "Get a price.", firstSentence("Get a price. Also more."))
	assert.Equal(t, "No period", firstSentence("No period"))
}
