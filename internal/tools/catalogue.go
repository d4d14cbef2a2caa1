package tools

import (
	"context"
	"encoding/json"

	"github.com/seenimoa/finmcp/internal/analysis/compare"
	"github.com/seenimoa/finmcp/internal/analysis/portfolio"
	"github.com/seenimoa/finmcp/internal/guardrail"
	"github.com/seenimoa/finmcp/internal/service"
)

const (
	symbolDesc    = "Ticker symbol, e.g. AAPL, MSFT, ^GSPC"
	startDateDesc = "Inclusive start date (YYYY-MM-DD); overrides period"
	endDateDesc   = "Inclusive end date (YYYY-MM-DD); defaults to today"
)

func periodProp(def string) *JSONSchema {
	return EnumProp("Lookback period", guardrail.ValidPeriods...).WithDefault(def)
}

// windowProps returns the period/start_date/end_date properties plus extra.
func windowProps(def string, extra map[string]*JSONSchema) map[string]*JSONSchema {
	props := map[string]*JSONSchema{
		"period":     periodProp(def),
		"start_date": DateProp(startDateDesc),
		"end_date":   DateProp(endDateDesc),
	}
	for k, v := range extra {
		props[k] = v
	}
	return props
}

// bind adapts a typed service method to a Handler.
func bind[Req any, Rep any](fn func(context.Context, Req) (Rep, error)) Handler {
	return func(ctx context.Context, args json.RawMessage) (any, error) {
		var req Req
		if err := Decode(args, &req); err != nil {
			return nil, err
		}
		return fn(ctx, req)
	}
}

// Catalogue registers the nine finance tools backed by svc.
func Catalogue(svc *service.Service) *Registry {
	rules := svc.Guard().Rules()
	r := NewRegistry()

	r.Register(Tool{
		Name:        service.ToolStockPrice,
		Description: "Latest price of a stock or index with the change against the previous close and the high/low of the period.",
		Parameters: ObjectSchema("Price lookup", windowProps("1mo", map[string]*JSONSchema{
			"symbol": StringProp(symbolDesc),
		}), "symbol"),
		Handler: bind(svc.Price),
	})

	r.Register(Tool{
		Name:        service.ToolVolatility,
		Description: "Daily, monthly and annualized volatility, 30/60-day rolling volatility, extreme daily returns and a risk rating.",
		Parameters: ObjectSchema("Volatility analysis", windowProps("1y", map[string]*JSONSchema{
			"symbol": StringProp(symbolDesc),
		}), "symbol"),
		Handler: bind(svc.Volatility),
	})

	r.Register(Tool{
		Name:        service.ToolTrend,
		Description: "Moving averages (20/50/200), momentum, rate of change and short, medium and long-term trend labels.",
		Parameters: ObjectSchema("Trend analysis", windowProps("1y", map[string]*JSONSchema{
			"symbol": StringProp(symbolDesc),
		}), "symbol"),
		Handler: bind(svc.Trend),
	})

	r.Register(Tool{
		Name:        service.ToolRisk,
		Description: "Value at risk, expected shortfall, Sharpe and Sortino ratios, maximum drawdown and beta against a benchmark.",
		Parameters: ObjectSchema("Risk analysis", windowProps("1y", map[string]*JSONSchema{
			"symbol":    StringProp(symbolDesc),
			"benchmark": StringProp("Benchmark symbol").WithDefault("^GSPC"),
		}), "symbol"),
		Handler: bind(svc.Risk),
	})

	r.Register(Tool{
		Name:        service.ToolCompare,
		Description: "Compares several stocks over the same period and ranks them by the chosen metric.",
		Parameters: ObjectSchema("Stock comparison", windowProps("1y", map[string]*JSONSchema{
			"symbols": ArrayProp("Symbols to compare", StringProp(symbolDesc), rules.CompareMinSymbols, rules.CompareMaxSymbols),
			"rank_by": EnumProp("Ranking metric", compare.Metrics...).WithDefault(compare.ByTotalReturn),
		}), "symbols"),
		Handler: bind(svc.Compare),
	})

	r.Register(Tool{
		Name:        service.ToolFinancialSummary,
		Description: "Company profile, valuation ratios, market capitalization and recent headlines.",
		Parameters: ObjectSchema("Financial summary", map[string]*JSONSchema{
			"symbol": StringProp(symbolDesc),
		}, "symbol"),
		Handler: bind(svc.FinancialSummary),
	})

	r.Register(Tool{
		Name:        service.ToolPortfolio,
		Description: "Weighted portfolio return, covariance-aware volatility, correlation, diversification and a long-only weight optimization.",
		Parameters: ObjectSchema("Portfolio analysis", windowProps("1y", map[string]*JSONSchema{
			"symbols":       ArrayProp("Portfolio holdings", StringProp(symbolDesc), rules.PortfolioMinSymbols, rules.PortfolioMaxSymbols),
			"weights":       ArrayProp("Non-negative weights summing to 1, one per symbol; equal weights when omitted", NumberProp("Weight"), rules.PortfolioMinSymbols, rules.PortfolioMaxSymbols),
			"objective":     EnumProp("Optimization objective", portfolio.Objectives...).WithDefault(portfolio.MinVariance),
			"target_return": NumberProp("Annual return target in percent, required for the target_return objective"),
		}), "symbols"),
		Handler: bind(svc.Portfolio),
	})

	r.Register(Tool{
		Name:        service.ToolMarketIndices,
		Description: "Latest values and daily changes of the major market indices with an advance/decline sentiment.",
		Parameters: ObjectSchema("Market indices", map[string]*JSONSchema{
			"indices": ArrayProp("Index symbols; defaults to S&P 500, Dow Jones, NASDAQ, Russell 2000 and VIX", StringProp(symbolDesc), 1, 10),
		}),
		Handler: bind(svc.MarketIndices),
	})

	r.Register(Tool{
		Name:        service.ToolSearch,
		Description: "Finds ticker symbols by company name or symbol.",
		Parameters: ObjectSchema("Symbol search", map[string]*JSONSchema{
			"query":       StringProp("Company name or symbol, at least 2 characters"),
			"max_results": IntProp("Maximum number of results", 1, service.MaxSearchResults).WithDefault(service.DefaultSearchResults),
		}, "query"),
		Handler: bind(svc.Search),
	})

	return r
}
