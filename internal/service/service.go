// Package service implements the finance tools. Every operation follows the
// same pipeline: guardrail admission, provider fetch (fanned out for
// multi-symbol tools), normalization, computation and report assembly.
// Reports are built only from fetched data, so identical provider responses
// give identical reports.
package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/seenimoa/finmcp/internal/analysis/series"
	"github.com/seenimoa/finmcp/internal/config"
	"github.com/seenimoa/finmcp/internal/datasource"
	"github.com/seenimoa/finmcp/internal/guardrail"
	"github.com/seenimoa/finmcp/internal/metrics"
	"github.com/seenimoa/finmcp/pkg/models"
)

// Tool names as exposed to hosts.
const (
	ToolStockPrice       = "get_stock_price"
	ToolVolatility       = "get_volatility_analysis"
	ToolTrend            = "get_trend_analysis"
	ToolRisk             = "get_risk_analysis"
	ToolCompare          = "compare_stocks"
	ToolFinancialSummary = "get_financial_summary"
	ToolPortfolio        = "get_portfolio_analysis"
	ToolMarketIndices    = "get_market_indices"
	ToolSearch           = "search_stocks"
)

// minReturnBars is the shortest series that yields two returns.
const minReturnBars = 3

// Service runs the finance tools.
type Service struct {
	guard     *guardrail.Guard
	market    datasource.MarketData
	news      datasource.NewsFeed
	batch     *datasource.Batch
	analysis  config.AnalysisConfig
	headlines int
	metrics   *metrics.Metrics
	log       zerolog.Logger
}

// Option customises a Service.
type Option func(*Service)

// WithNews attaches a headline feed to financial summaries.
func WithNews(n datasource.NewsFeed) Option { return func(s *Service) { s.news = n } }

// WithMetrics records tool calls.
func WithMetrics(m *metrics.Metrics) Option { return func(s *Service) { s.metrics = m } }

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Service) { s.log = l.With().Str("component", "service").Logger() }
}

// New creates a Service. The guard owns the rate budget; market is the only
// source of prices and company data.
func New(cfg *config.Config, guard *guardrail.Guard, market datasource.MarketData, opts ...Option) *Service {
	s := &Service{
		guard:     guard,
		market:    market,
		batch:     datasource.NewBatch(market, cfg.Analysis.ConcurrentFetches),
		analysis:  cfg.Analysis,
		headlines: cfg.Provider.Headlines,
		log:       zerolog.Nop(),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Guard returns the admission guard.
func (s *Service) Guard() *guardrail.Guard { return s.guard }

// ── Caller identity ──

type callerKey struct{}

// WithCaller tags ctx with the identity whose rate budget a call spends.
func WithCaller(ctx context.Context, caller string) context.Context {
	return context.WithValue(ctx, callerKey{}, caller)
}

// CallerFrom returns the caller set by WithCaller, or "".
func CallerFrom(ctx context.Context) string {
	c, _ := ctx.Value(callerKey{}).(string)
	return c
}

// ── Pipeline ──

// run executes one tool call under the request timeout, tags it with a call
// ID and records its outcome. Every returned error is a *models.Error.
func run[T any](ctx context.Context, s *Service, tool string, fn func(ctx context.Context, log zerolog.Logger) (T, error)) (T, error) {
	callID := uuid.NewString()
	log := s.log.With().Str("tool", tool).Str("call_id", callID).Logger()

	timeout := s.analysis.RequestTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	out, err := fn(ctx, log)
	elapsed := time.Since(start)

	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) && models.KindOf(err) != models.KindTimeout {
			err = models.NewError(models.KindTimeout, "", "request exceeded %s", timeout)
		}
		e := models.AsError(err)
		if e.Kind == models.KindTimeout && e.Param != "" {
			cp := *e
			cp.Param = ""
			e = &cp
		}
		s.metrics.ObserveTool(tool, string(e.Kind), elapsed)
		log.Warn().Str("kind", string(e.Kind)).Str("param", e.Param).Dur("elapsed", elapsed).Msg(e.Message)
		var zero T
		return zero, e
	}

	s.metrics.ObserveTool(tool, "ok", elapsed)
	log.Info().Dur("elapsed", elapsed).Msg("tool call completed")
	return out, nil
}

func (s *Service) admit(ctx context.Context, req guardrail.Request) (*guardrail.Admitted, error) {
	req.Caller = CallerFrom(ctx)
	return s.guard.Admit(req)
}

// loadSeries fetches and normalizes one symbol over p, keeping the period's
// trailing bars plus extra leading bars, and requires at least minPoints.
func (s *Service) loadSeries(ctx context.Context, symbol string, p models.AnalysisPeriod, extra, minPoints int) (*models.PriceSeries, error) {
	raw, err := s.market.History(ctx, symbol, p.Start, p.End)
	if err != nil {
		return nil, datasource.Classify(err)
	}
	return normalizeWindow(raw, p, extra, minPoints)
}

func normalizeWindow(raw *models.PriceHistory, p models.AnalysisPeriod, extra, minPoints int) (*models.PriceSeries, error) {
	ps, err := series.Normalize(raw, 1)
	if err != nil {
		return nil, err
	}
	if p.TradingDays > 0 {
		ps = series.Tail(ps, p.TradingDays+extra)
	}
	if err := series.RequirePoints(ps, minPoints); err != nil {
		return nil, err
	}
	return ps, nil
}

// blame attributes err to param, replacing any parameter already named.
func blame(err error, param string) error {
	e := models.AsError(err)
	if e == nil {
		return nil
	}
	cp := *e
	cp.Param = param
	return &cp
}

func window(p models.AnalysisPeriod) models.Window {
	return models.Window{
		Period:    p.Label,
		StartDate: models.FormatDate(p.Start),
		EndDate:   models.FormatDate(p.LastDay()),
	}
}

func periodOr(period, def string) string {
	if period == "" {
		return def
	}
	return period
}
