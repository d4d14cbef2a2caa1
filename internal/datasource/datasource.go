// Package datasource fetches market data for the analytics tools. It defines
// the provider interfaces the service depends on and implements them against
// Yahoo Finance (chart, quoteSummary, search) and its RSS headline feed.
package datasource

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/seenimoa/finmcp/internal/infra"
	"github.com/seenimoa/finmcp/pkg/models"
)

// MarketData is the provider of prices, company data and symbol lookup.
// Implementations return *models.Error values classified by Classify, or
// plain errors that Classify understands.
type MarketData interface {
	// History returns daily bars for symbol in [from, to).
	History(ctx context.Context, symbol string, from, to time.Time) (*models.PriceHistory, error)

	// Fundamentals returns a company snapshot. Missing fields stay nil.
	Fundamentals(ctx context.Context, symbol string) (*models.Fundamentals, error)

	// Search returns up to limit matches for a free-text query.
	Search(ctx context.Context, query string, limit int) ([]models.SearchResult, error)
}

// NewsFeed supplies recent headlines for a symbol.
type NewsFeed interface {
	Headlines(ctx context.Context, symbol string, limit int) ([]models.Headline, error)
}

// --- Sentinel errors ---

// ErrTickerNotFound is returned when a ticker cannot be resolved.
var ErrTickerNotFound = fmt.Errorf("ticker not found")

// ErrRateLimited is returned when a source rate-limits the request.
var ErrRateLimited = fmt.Errorf("rate limited by data source")

// Classify maps a provider failure onto the tool error model. Unknown
// tickers become NoDataFound, deadlines become Timeout and everything else
// (HTTP errors, throttling, transport and decode failures) is
// ProviderUnavailable. Errors that are already classified pass through.
func Classify(err error) error {
	if err == nil {
		return nil
	}
	var me *models.Error
	if errors.As(err, &me) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return models.WrapError(models.KindTimeout, "", err)
	}
	if errors.Is(err, ErrTickerNotFound) {
		return models.WrapError(models.KindNoDataFound, "", err)
	}

	var he *infra.ErrHTTP
	if errors.As(err, &he) {
		switch he.StatusCode {
		case http.StatusNotFound:
			return models.WrapError(models.KindNoDataFound, "", fmt.Errorf("%w: %s", ErrTickerNotFound, he.Body))
		case http.StatusTooManyRequests:
			return models.WrapError(models.KindProviderUnavailable, "", fmt.Errorf("%w: %v", ErrRateLimited, he))
		}
	}
	return models.WrapError(models.KindProviderUnavailable, "", err)
}

// outcome labels a fetch for metrics.
func outcome(err error) string {
	if err == nil {
		return "ok"
	}
	return string(models.KindOf(err))
}
