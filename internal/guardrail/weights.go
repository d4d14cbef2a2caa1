package guardrail

import (
	"fmt"
	"math"

	"github.com/seenimoa/finmcp/pkg/models"
)

// ValidateWeights checks a weight vector against n symbols. An empty vector
// means equal weighting. Weights must be finite, non-negative and sum to one
// within tol.
func ValidateWeights(weights []float64, n int, tol float64) ([]float64, error) {
	if len(weights) == 0 {
		return EqualWeights(n), nil
	}
	if len(weights) != n {
		return nil, models.NewError(models.KindInvalidWeights, "weights",
			"got %d weights for %d symbols", len(weights), n)
	}

	sum := 0.0
	for i, w := range weights {
		p := fmt.Sprintf("weights[%d]", i)
		switch {
		case math.IsNaN(w) || math.IsInf(w, 0):
			return nil, models.NewError(models.KindInvalidWeights, p, "weight must be finite")
		case w < 0:
			return nil, models.NewError(models.KindInvalidWeights, p, "weight %g is negative; short positions are not supported", w)
		}
		sum += w
	}
	if math.Abs(sum-1) > tol {
		return nil, models.NewError(models.KindInvalidWeights, "weights",
			"weights sum to %.6g, expected 1 (tolerance %g)", sum, tol)
	}

	out := make([]float64, n)
	copy(out, weights)
	return out, nil
}

// EqualWeights returns n weights of 1/n.
func EqualWeights(n int) []float64 {
	if n <= 0 {
		return nil
	}
	out := make([]float64, n)
	for i := range out {
		out[i] = 1 / float64(n)
	}
	return out
}
