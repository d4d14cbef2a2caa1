package api

import (
	"net/http"

	"github.com/seenimoa/finmcp/internal/guardrail"
	"github.com/seenimoa/finmcp/pkg/utils"
)

// LimitsResponse is returned by GET /api/v1/limits so that clients can
// shape requests before spending rate budget.
type LimitsResponse struct {
	RateCapacity        int       `json:"rate_capacity"`
	RateWindow          string    `json:"rate_window"`
	Periods             []string  `json:"periods"`
	MaxRangeDays        int       `json:"max_range_days"`
	MaxHistoryYears     int       `json:"max_history_years"`
	CompareSymbols      [2]int    `json:"compare_symbols"`
	PortfolioSymbols    [2]int    `json:"portfolio_symbols"`
	WeightTolerance     float64   `json:"weight_tolerance"`
	DefaultBenchmark    string    `json:"default_benchmark"`
	RequestTimeout      string    `json:"request_timeout"`
	ConcurrentFetches   int       `json:"concurrent_fetches"`
	OptimizerStep       float64   `json:"optimizer_step"`
	VaRConfidenceLevels []float64 `json:"var_confidence_levels"`
	Caller              string    `json:"caller,omitempty"`
	Remaining           *int      `json:"remaining,omitempty"`
}

// handleGetLimits reports the running guardrail and analysis settings and,
// when a guard is attached, the calls left for the requesting caller.
// Settings are read-only at runtime; the token bucket is sized at startup.
func (s *Server) handleGetLimits(w http.ResponseWriter, r *http.Request) {
	g, a := s.cfg.Guardrail, s.cfg.Analysis
	resp := LimitsResponse{
		RateCapacity:        g.RateCapacity,
		RateWindow:          g.RateWindow.String(),
		Periods:             guardrail.ValidPeriods,
		MaxRangeDays:        g.MaxRangeDays,
		MaxHistoryYears:     s.cfg.Provider.MaxHistoryYears,
		CompareSymbols:      [2]int{g.CompareMinSymbols, g.CompareMaxSymbols},
		PortfolioSymbols:    [2]int{g.PortfolioMinSymbols, g.PortfolioMaxSymbols},
		WeightTolerance:     g.WeightTolerance,
		DefaultBenchmark:    a.DefaultBenchmark,
		RequestTimeout:      s.requestTimeout().String(),
		ConcurrentFetches:   a.ConcurrentFetches,
		OptimizerStep:       a.OptimizerStep,
		VaRConfidenceLevels: a.VaRConfidenceLevels,
	}
	if s.guard != nil {
		resp.Caller = callerOf(r)
		resp.Remaining = utils.Ptr(s.guard.Remaining(resp.Caller))
	}
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: resp})
}
