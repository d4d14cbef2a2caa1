package portfolio

import (
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/seenimoa/finmcp/internal/analysis/technical"
	"github.com/seenimoa/finmcp/pkg/models"
)

// Optimization objectives.
const (
	MinVariance  = "min_variance"
	MaxSharpe    = "max_sharpe"
	TargetReturn = "target_return"
)

// Objectives lists the supported objectives.
var Objectives = []string{MinVariance, MaxSharpe, TargetReturn}

const (
	DefaultStep          = 0.05
	DefaultMaxCandidates = 200000
)

// Optimum is the best candidate found by Optimize.
type Optimum struct {
	Objective        string
	Target           *float64
	Step             float64
	Candidates       int
	Feasible         bool
	Weights          []float64
	AnnualReturn     float64
	AnnualVolatility float64
	Sharpe           *float64
}

// Optimize searches the discretized simplex of long-only weights summing to
// one. The grid has k+1 levels per asset (step 1/k); k starts at
// round(1/Step) and is lowered until the number of candidates,
// C(k+n-1, n-1), fits MaxCandidates.
//
// min_variance picks the lowest volatility; max_sharpe the highest Sharpe
// ratio; target_return the lowest volatility among candidates whose annual
// return reaches TargetReturn, reporting Feasible=false when none does. Ties
// go to the lower volatility, then to the earlier candidate. Candidates are
// enumerated with weight on earlier assets first.
func Optimize(returns [][]float64, opts Options) (*Optimum, error) {
	n := len(returns)
	if n < 2 {
		return nil, models.NewError(models.KindNoOverlap, "symbols", "optimization needs at least 2 assets")
	}
	objective := opts.Objective
	if objective == "" {
		objective = MinVariance
	}
	if objective == TargetReturn && opts.TargetReturn == nil {
		return nil, models.NewError(models.KindInvalidWeights, "target_return", "target_return objective requires a target_return")
	}
	step := opts.Step
	if step <= 0 || step > 1 {
		step = DefaultStep
	}
	maxCand := opts.MaxCandidates
	if maxCand <= 0 {
		maxCand = DefaultMaxCandidates
	}

	k := int(math.Round(1 / step))
	if k < 1 {
		k = 1
	}
	for k > 1 && candidates(k, n, maxCand) > maxCand {
		k--
	}

	cov := Covariance(returns)
	means := make([]float64, n)
	for i, col := range returns {
		means[i] = stat.Mean(col, nil)
	}

	o := &Optimum{Objective: objective, Target: opts.TargetReturn, Step: 1 / float64(k)}
	buf := make([]float64, n)
	w := mat.NewVecDense(n, buf)
	best := struct {
		found  bool
		score  float64
		vol    float64
		ret    float64
		sharpe *float64
		alloc  []int
	}{}

	alloc := make([]int, n)
	enumerate(alloc, 0, k, func(a []int) {
		o.Candidates++
		var ret float64
		for i, units := range a {
			buf[i] = float64(units) / float64(k)
			ret += buf[i] * means[i]
		}
		vol := math.Sqrt(mat.Inner(w, cov, w)) * annualize
		ret *= technical.TradingDaysPerYear

		var sharpe *float64
		if vol > 0 {
			s := (ret - opts.RiskFreeRate) / vol
			sharpe = &s
		}

		var score float64
		switch objective {
		case MaxSharpe:
			if sharpe == nil {
				return
			}
			score = -*sharpe
		case TargetReturn:
			if ret < *opts.TargetReturn {
				return
			}
			score = vol
		default:
			score = vol
		}

		if best.found && (score > best.score || (score == best.score && vol >= best.vol)) {
			return
		}
		best.found = true
		best.score, best.vol, best.ret, best.sharpe = score, vol, ret, sharpe
		best.alloc = append(best.alloc[:0], a...)
	})

	if !best.found {
		return o, nil
	}
	o.Feasible = true
	o.Weights = make([]float64, n)
	for i, units := range best.alloc {
		o.Weights[i] = float64(units) / float64(k)
	}
	o.AnnualReturn = best.ret
	o.AnnualVolatility = best.vol
	o.Sharpe = best.sharpe
	return o, nil
}

// enumerate visits every allocation of units across alloc[i:], assigning
// as many units as possible to the earliest position first.
func enumerate(alloc []int, i, units int, visit func([]int)) {
	if i == len(alloc)-1 {
		alloc[i] = units
		visit(alloc)
		return
	}
	for u := units; u >= 0; u-- {
		alloc[i] = u
		enumerate(alloc, i+1, units-u, visit)
	}
}

// candidates returns C(k+n-1, n-1), or limit+1 once the count exceeds limit.
func candidates(k, n, limit int) int {
	c := 1
	for i := 1; i < n; i++ {
		c = c * (k + i) / i
		if c > limit {
			return limit + 1
		}
	}
	return c
}

// ValidObjective reports whether s names a supported objective.
func ValidObjective(s string) bool {
	for _, o := range Objectives {
		if o == s {
			return true
		}
	}
	return false
}
