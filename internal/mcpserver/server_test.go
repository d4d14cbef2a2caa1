package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seenimoa/finmcp/internal/analysis/series/seriestest"
	"github.com/seenimoa/finmcp/internal/config"
	"github.com/seenimoa/finmcp/internal/datasource"
	"github.com/seenimoa/finmcp/internal/guardrail"
	"github.com/seenimoa/finmcp/internal/service"
	"github.com/seenimoa/finmcp/internal/tools"
	"github.com/seenimoa/finmcp/pkg/models"
)

type stubMarket struct{}

func (stubMarket) History(_ context.Context, symbol string, _, _ time.Time) (*models.PriceHistory, error) {
	if symbol == "NOPE" {
		return nil, fmt.Errorf("%w: %s", datasource.ErrTickerNotFound, symbol)
	}
	return seriestest.Raw(symbol, seriestest.Linear(40, 100, 1)...), nil
}

func (stubMarket) Fundamentals(_ context.Context, symbol string) (*models.Fundamentals, error) {
	return nil, fmt.Errorf("%w: %s", datasource.ErrTickerNotFound, symbol)
}

func (stubMarket) Search(context.Context, string, int) ([]models.SearchResult, error) {
	return nil, nil
}

func testServer(t *testing.T, opts ...Option) *Server {
	t.Helper()
	cfg := config.Default()
	svc := service.New(cfg, guardrail.NewFromConfig(cfg), stubMarket{})
	s, err := New("finmcp", "test", tools.Catalogue(svc), opts...)
	require.NoError(t, err)
	return s
}

func callRequest(name string, args map[string]any) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Name = name
	req.Params.Arguments = args
	return req
}

func texts(t *testing.T, res *mcp.CallToolResult) []string {
	t.Helper()
	var out []string
	for _, c := range res.Content {
		tc, ok := c.(mcp.TextContent)
		require.True(t, ok, "content %T", c)
		out = append(out, tc.Text)
	}
	return out
}

// ── Handlers ──

func TestHandlerReturnsJSONReport(t *testing.T) {
	s := testServer(t)
	res, err := s.handler(service.ToolStockPrice)(context.Background(),
		callRequest(service.ToolStockPrice, map[string]any{"symbol": "msft", "period": "1mo"}))
	require.NoError(t, err)
	require.False(t, res.IsError)

	content := texts(t, res)
	require.Len(t, content, 1)
	var report models.PriceReport
	require.NoError(t, json.Unmarshal([]byte(content[0]), &report))
	assert.Equal(t, "MSFT", report.Symbol)
	assert.Equal(t, 139.0, report.CurrentPrice)
}

func TestHandlerErrorResults(t *testing.T) {
	tests := []struct {
		name  string
		tool  string
		args  map[string]any
		kind  models.ErrorKind
		param string
	}{
		{"bad symbol", service.ToolStockPrice, map[string]any{"symbol": "$$$"}, models.KindInvalidSymbol, "symbol"},
		{"missing symbol", service.ToolStockPrice, nil, models.KindInvalidSymbol, "symbol"},
		{"unknown argument", service.ToolStockPrice, map[string]any{"symbol": "AAPL", "foo": 1}, models.KindInvalidArguments, "foo"},
		{"bad period", service.ToolVolatility, map[string]any{"symbol": "AAPL", "period": "7w"}, models.KindInvalidPeriod, "period"},
		{"no data", service.ToolStockPrice, map[string]any{"symbol": "NOPE"}, models.KindNoDataFound, "symbol"},
		{"summary not found", service.ToolFinancialSummary, map[string]any{"symbol": "AAPL"}, models.KindNoDataFound, "symbol"},
	}
	s := testServer(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := s.handler(tt.tool)(context.Background(), callRequest(tt.tool, tt.args))
			require.NoError(t, err)
			require.True(t, res.IsError)

			content := texts(t, res)
			require.Len(t, content, 1)
			var e models.Error
			require.NoError(t, json.Unmarshal([]byte(content[0]), &e))
			assert.Equal(t, tt.kind, e.Kind)
			assert.Equal(t, tt.param, e.Param)
			assert.NotEmpty(t, e.Message)
		})
	}
}

func TestHandlerMarkdown(t *testing.T) {
	s := testServer(t, WithMarkdown(true))
	res, err := s.handler(service.ToolStockPrice)(context.Background(),
		callRequest(service.ToolStockPrice, map[string]any{"symbol": "AAPL"}))
	require.NoError(t, err)

	content := texts(t, res)
	require.Len(t, content, 2)
	assert.True(t, strings.HasPrefix(content[1], "## AAPL price"))
}

// ── Protocol ──

func TestToolsListOverProtocol(t *testing.T) {
	s := testServer(t)
	msg := s.MCPServer().HandleMessage(context.Background(),
		json.RawMessage(`{"jsonrpc":"2.0","id":1,"method":"tools/list"}`))
	raw, err := json.Marshal(msg)
	require.NoError(t, err)

	body := string(raw)
	for _, name := range []string{
		service.ToolStockPrice, service.ToolCompare, service.ToolPortfolio, service.ToolSearch,
	} {
		assert.Contains(t, body, `"name":"`+name+`"`)
	}
	assert.Contains(t, body, `"additionalProperties":false`)
}

func TestToolsCallOverProtocol(t *testing.T) {
	s := testServer(t)
	msg := s.MCPServer().HandleMessage(context.Background(), json.RawMessage(
		`{"jsonrpc":"2.0","id":2,"method":"tools/call","params":{"name":"get_stock_price","arguments":{"symbol":"$$$"}}}`))
	raw, err := json.Marshal(msg)
	require.NoError(t, err)

	body := string(raw)
	assert.Contains(t, body, `"isError":true`)
	assert.Contains(t, body, `InvalidSymbol`)
}
