package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seenimoa/finmcp/internal/analysis/series/seriestest"
	"github.com/seenimoa/finmcp/internal/config"
	"github.com/seenimoa/finmcp/internal/datasource"
	"github.com/seenimoa/finmcp/internal/guardrail"
	"github.com/seenimoa/finmcp/internal/service"
	"github.com/seenimoa/finmcp/pkg/models"
)

type stubMarket struct{}

func (stubMarket) History(_ context.Context, symbol string, _, _ time.Time) (*models.PriceHistory, error) {
	if symbol == "NOPE" {
		return nil, fmt.Errorf("%w: %s", datasource.ErrTickerNotFound, symbol)
	}
	return seriestest.Raw(symbol, seriestest.Wave(120, 100, 4, 17, 0.1)...), nil
}

func (stubMarket) Fundamentals(_ context.Context, symbol string) (*models.Fundamentals, error) {
	return &models.Fundamentals{Symbol: symbol, Name: symbol + " Corp"}, nil
}

func (stubMarket) Search(_ context.Context, q string, _ int) ([]models.SearchResult, error) {
	return []models.SearchResult{{Symbol: "ACME", Name: "Acme " + q}}, nil
}

func testCatalogue(t *testing.T) *Registry {
	t.Helper()
	cfg := config.Default()
	svc := service.New(cfg, guardrail.NewFromConfig(cfg), stubMarket{})
	return Catalogue(svc)
}

func requireKind(t *testing.T, err error, kind models.ErrorKind, param string) {
	t.Helper()
	require.Error(t, err)
	var e *models.Error
	require.True(t, errors.As(err, &e), "expected *models.Error, got %T: %v", err, err)
	assert.Equal(t, kind, e.Kind)
	assert.Equal(t, param, e.Param)
}

// ── Registry ──

func TestRegistryKeepsRegistrationOrder(t *testing.T) {
	r := NewRegistry()
	for _, name := range []string{"zeta", "alpha", "mid"} {
		r.Register(Tool{Name: name})
	}
	r.Register(Tool{Name: "alpha", Description: "replaced"})

	assert.Equal(t, []string{"zeta", "alpha", "mid"}, r.Names())
	assert.Equal(t, 3, r.Count())
	got, ok := r.Get("alpha")
	require.True(t, ok)
	assert.Equal(t, "replaced", got.Description)
	assert.Equal(t, "replaced", r.List()[1].Description)
}

func TestRegistryExecute(t *testing.T) {
	r := NewRegistry()
	r.Register(Tool{Name: "echo", Handler: func(_ context.Context, args json.RawMessage) (any, error) {
		return string(args), nil
	}})
	r.Register(Tool{Name: "broken"})

	out, err := r.Execute(context.Background(), "echo", json.RawMessage(`{"a":1}`))
	require.NoError(t, err)
	assert.Equal(t, `{"a":1}`, out)

	_, err = r.Execute(context.Background(), "missing", nil)
	assert.ErrorIs(t, err, ErrToolNotFound)

	_, err = r.Execute(context.Background(), "broken", nil)
	assert.Error(t, err)
}

func TestRegistryConcurrency(t *testing.T) {
	r := NewRegistry()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			r.Register(Tool{Name: fmt.Sprintf("t%d", i)})
		}(i)
		go func() {
			defer wg.Done()
			_ = r.List()
		}()
	}
	wg.Wait()
	assert.Equal(t, 50, r.Count())
}

// ── Decode ──

func TestDecode(t *testing.T) {
	type args struct {
		Symbol  string    `json:"symbol"`
		Weights []float64 `json:"weights"`
	}

	tests := []struct {
		name  string
		in    string
		param string
		ok    bool
	}{
		{"empty", ``, "", true},
		{"null", `null`, "", true},
		{"object", `{"symbol":"AAPL","weights":[0.5,0.5]}`, "", true},
		{"unknown field", `{"symbol":"AAPL","sybmol":"x"}`, "sybmol", false},
		{"wrong type", `{"symbol":42}`, "symbol", false},
		{"wrong element type", `{"weights":["a"]}`, "weights", false},
		{"not json", `{symbol}`, "", false},
		{"trailing data", `{"symbol":"A"} {}`, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var a args
			err := Decode(json.RawMessage(tt.in), &a)
			if tt.ok {
				require.NoError(t, err)
				return
			}
			requireKind(t, err, models.KindInvalidArguments, tt.param)
		})
	}
}

// ── Catalogue ──

func TestCatalogueListsEveryTool(t *testing.T) {
	r := testCatalogue(t)
	assert.Equal(t, []string{
		service.ToolStockPrice,
		service.ToolVolatility,
		service.ToolTrend,
		service.ToolRisk,
		service.ToolCompare,
		service.ToolFinancialSummary,
		service.ToolPortfolio,
		service.ToolMarketIndices,
		service.ToolSearch,
	}, r.Names())

	for _, tool := range r.List() {
		assert.NotEmpty(t, tool.Description, tool.Name)
		require.NotNil(t, tool.Parameters, tool.Name)
		assert.Equal(t, "object", tool.Parameters.Type)
		require.NotNil(t, tool.Handler, tool.Name)
		for _, req := range tool.Parameters.Required {
			assert.Contains(t, tool.Parameters.Properties, req, tool.Name)
		}
	}
}

func TestCatalogueSchemaJSON(t *testing.T) {
	r := testCatalogue(t)
	tool, ok := r.Get(service.ToolCompare)
	require.True(t, ok)

	raw, err := json.Marshal(tool)
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(raw, &doc))
	schema := doc["input_schema"].(map[string]any)
	assert.Equal(t, false, schema["additionalProperties"])
	assert.Equal(t, []any{"symbols"}, schema["required"])
	props := schema["properties"].(map[string]any)
	symbols := props["symbols"].(map[string]any)
	assert.Equal(t, 2.0, symbols["minItems"])
	assert.Equal(t, 10.0, symbols["maxItems"])
	assert.Equal(t, "total_return", props["rank_by"].(map[string]any)["default"])
}

func TestCatalogueDispatch(t *testing.T) {
	r := testCatalogue(t)
	ctx := context.Background()

	out, err := r.Execute(ctx, service.ToolStockPrice, json.RawMessage(`{"symbol":"aapl"}`))
	require.NoError(t, err)
	price, ok := out.(*models.PriceReport)
	require.True(t, ok, "got %T", out)
	assert.Equal(t, "AAPL", price.Symbol)

	out, err = r.Execute(ctx, service.ToolSearch, json.RawMessage(`{"query":"acme","max_results":3}`))
	require.NoError(t, err)
	assert.IsType(t, &models.SearchReport{}, out)

	_, err = r.Execute(ctx, service.ToolStockPrice, json.RawMessage(`{"symbol":"AAPL","colour":"red"}`))
	requireKind(t, err, models.KindInvalidArguments, "colour")

	_, err = r.Execute(ctx, service.ToolStockPrice, json.RawMessage(`{}`))
	requireKind(t, err, models.KindInvalidSymbol, "symbol")

	_, err = r.Execute(ctx, service.ToolStockPrice, json.RawMessage(`{"symbol":"NOPE"}`))
	requireKind(t, err, models.KindNoDataFound, "symbol")
}
