package guardrail

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/seenimoa/finmcp/pkg/models"
	"github.com/seenimoa/finmcp/pkg/utils"
)

// MaxSymbolLength bounds a normalized ticker, including a leading "^".
const MaxSymbolLength = 16

// symbolPattern admits plain tickers (AAPL), share classes (BRK-B),
// exchange suffixes (VOD.L), FX/futures (EURUSD=X, ES=F) and indices (^GSPC).
var symbolPattern = regexp.MustCompile(`^\^?[A-Z0-9][A-Z0-9.\-=]*$`)

// ValidateSymbol normalizes raw and checks it against the allowed shape.
// param names the request field in the returned error.
func ValidateSymbol(raw, param string) (string, error) {
	sym := utils.NormalizeTicker(raw)
	switch {
	case sym == "":
		return "", models.NewError(models.KindInvalidSymbol, param, "symbol is required")
	case len(sym) > MaxSymbolLength:
		return "", models.NewError(models.KindInvalidSymbol, param,
			"symbol %q exceeds %d characters", truncate(sym, MaxSymbolLength+4), MaxSymbolLength)
	case !symbolPattern.MatchString(sym):
		return "", models.NewError(models.KindInvalidSymbol, param,
			"symbol %q contains characters outside A-Z, 0-9, '.', '-', '=' (and a leading '^')", sym)
	}
	return sym, nil
}

// ValidateSymbols validates a symbol list, rejecting duplicates and counts
// outside [min, max]. A max of zero disables the upper bound.
func ValidateSymbols(raw []string, param string, min, max int) ([]string, error) {
	if len(raw) < min {
		return nil, models.NewError(models.KindInvalidSymbol, param,
			"at least %d symbols are required, got %d", min, len(raw))
	}
	if max > 0 && len(raw) > max {
		return nil, models.NewError(models.KindInvalidSymbol, param,
			"at most %d symbols are allowed, got %d", max, len(raw))
	}

	out := make([]string, len(raw))
	seen := make(map[string]int, len(raw))
	for i, r := range raw {
		p := fmt.Sprintf("%s[%d]", param, i)
		sym, err := ValidateSymbol(r, p)
		if err != nil {
			return nil, err
		}
		if j, dup := seen[sym]; dup {
			return nil, models.NewError(models.KindInvalidSymbol, p,
				"duplicate symbol %q (already at %s[%d])", sym, param, j)
		}
		seen[sym] = i
		out[i] = sym
	}
	return out, nil
}

// ValidateQuery checks a free-text search query.
func ValidateQuery(raw string) (string, error) {
	q := strings.TrimSpace(raw)
	switch {
	case len([]rune(q)) < 2:
		return "", models.NewError(models.KindInvalidSymbol, "query", "query must be at least 2 characters")
	case len([]rune(q)) > 64:
		return "", models.NewError(models.KindInvalidSymbol, "query", "query must be at most 64 characters")
	}
	return q, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
