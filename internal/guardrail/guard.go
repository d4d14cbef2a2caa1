// Package guardrail validates and admits every inbound tool request before
// any provider I/O happens. Validation runs first; a rate-limit token is
// taken only for requests that pass it.
package guardrail

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/seenimoa/finmcp/internal/config"
	"github.com/seenimoa/finmcp/internal/infra"
	"github.com/seenimoa/finmcp/internal/metrics"
	"github.com/seenimoa/finmcp/pkg/models"
)

// Limiter is the rate budget consulted on admission.
type Limiter interface {
	Allow(key string) bool
	Remaining(key string) int
	Capacity() int
}

// Request is the raw, untrusted shape of a tool call.
type Request struct {
	Tool   string
	Caller string // empty means the global bucket

	// Symbols are validated under "symbol" when SymbolParam is empty and
	// there is exactly one, otherwise under "<SymbolParam>[i]".
	Symbols     []string
	SymbolParam string
	MinSymbols  int
	MaxSymbols  int

	// Benchmark is validated under "benchmark" when set.
	Benchmark string

	// Query is validated under "query" when HasQuery is set.
	Query    string
	HasQuery bool

	// Period is resolved when HasPeriod is set.
	Period    string
	StartDate string
	EndDate   string
	HasPeriod bool

	// Weights are validated when HasWeights is set; empty means equal weights.
	Weights    []float64
	HasWeights bool
}

// Admitted is a validated request.
type Admitted struct {
	Symbols   []string
	Benchmark string
	Query     string
	Period    models.AnalysisPeriod
	Weights   []float64
}

// Guard validates requests and enforces the rate ceiling.
type Guard struct {
	limiter Limiter
	rules   config.GuardrailConfig
	history PeriodRules
	now     func() time.Time
	metrics *metrics.Metrics
	log     zerolog.Logger
}

// Option customises a Guard.
type Option func(*Guard)

// WithClock injects the clock used to resolve periods.
func WithClock(now func() time.Time) Option { return func(g *Guard) { g.now = now } }

// WithMetrics attaches Prometheus instruments.
func WithMetrics(m *metrics.Metrics) Option { return func(g *Guard) { g.metrics = m } }

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) Option {
	return func(g *Guard) { g.log = l.With().Str("component", "guardrail").Logger() }
}

// New creates a Guard that owns the given limiter.
func New(limiter Limiter, rules config.GuardrailConfig, maxHistoryYears int, opts ...Option) *Guard {
	g := &Guard{
		limiter: limiter,
		rules:   rules,
		history: PeriodRules{MaxRangeDays: rules.MaxRangeDays, MaxHistoryYears: maxHistoryYears},
		now:     time.Now,
		log:     zerolog.Nop(),
	}
	for _, o := range opts {
		o(g)
	}
	return g
}

// NewFromConfig builds a Guard and its keyed token bucket from configuration.
func NewFromConfig(cfg *config.Config, opts ...Option) *Guard {
	limiter := infra.NewTokenBucket(cfg.Guardrail.RateCapacity, cfg.Guardrail.RateWindow)
	return New(limiter, cfg.Guardrail, cfg.Provider.MaxHistoryYears, opts...)
}

// Rules returns the configured guardrail rules.
func (g *Guard) Rules() config.GuardrailConfig { return g.rules }

// Remaining reports the calls left in caller's budget without spending one.
func (g *Guard) Remaining(caller string) int { return g.limiter.Remaining(caller) }

// Admit validates req and, if it is well formed, consumes one token from the
// caller's budget. Rejected requests never touch the budget.
func (g *Guard) Admit(req Request) (*Admitted, error) {
	adm, err := g.validate(req)
	if err != nil {
		g.reject(req, err)
		return nil, err
	}

	if !g.limiter.Allow(req.Caller) {
		caller := req.Caller
		if caller == "" {
			caller = infra.GlobalKey
		}
		err := models.NewError(models.KindRateLimitExceeded, "",
			"rate limit of %d calls per %s exceeded for caller %q",
			g.limiter.Capacity(), g.rules.RateWindow, caller)
		g.reject(req, err)
		return nil, err
	}

	g.metrics.ObserveGuardrail(req.Tool, "admitted")
	g.log.Debug().Str("tool", req.Tool).Str("caller", req.Caller).Strs("symbols", adm.Symbols).Msg("request admitted")
	return adm, nil
}

func (g *Guard) validate(req Request) (*Admitted, error) {
	adm := &Admitted{}

	switch {
	case req.SymbolParam == "" && len(req.Symbols) == 1:
		sym, err := ValidateSymbol(req.Symbols[0], "symbol")
		if err != nil {
			return nil, err
		}
		adm.Symbols = []string{sym}
	case len(req.Symbols) > 0 || req.MinSymbols > 0:
		param := req.SymbolParam
		if param == "" {
			param = "symbols"
		}
		syms, err := ValidateSymbols(req.Symbols, param, req.MinSymbols, req.MaxSymbols)
		if err != nil {
			return nil, err
		}
		adm.Symbols = syms
	}

	if req.Benchmark != "" {
		b, err := ValidateSymbol(req.Benchmark, "benchmark")
		if err != nil {
			return nil, err
		}
		adm.Benchmark = b
	}

	if req.HasQuery {
		q, err := ValidateQuery(req.Query)
		if err != nil {
			return nil, err
		}
		adm.Query = q
	}

	if req.HasPeriod {
		p, err := ResolvePeriod(req.Period, req.StartDate, req.EndDate, g.now(), g.history)
		if err != nil {
			return nil, err
		}
		adm.Period = p
	}

	if req.HasWeights {
		w, err := ValidateWeights(req.Weights, len(adm.Symbols), g.rules.WeightTolerance)
		if err != nil {
			return nil, err
		}
		adm.Weights = w
	}

	return adm, nil
}

func (g *Guard) reject(req Request, err error) {
	kind := models.KindOf(err)
	g.metrics.ObserveGuardrail(req.Tool, string(kind))
	g.log.Info().Str("tool", req.Tool).Str("caller", req.Caller).Str("kind", string(kind)).Err(err).Msg("request rejected")
}
