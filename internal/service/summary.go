package service

import (
	"context"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/seenimoa/finmcp/internal/analysis/fundamental"
	"github.com/seenimoa/finmcp/internal/analysis/sentiment"
	"github.com/seenimoa/finmcp/internal/datasource"
	"github.com/seenimoa/finmcp/internal/guardrail"
	"github.com/seenimoa/finmcp/pkg/models"
)

// Search result bounds.
const (
	DefaultSearchResults = 10
	MaxSearchResults     = 50
)

// Search match types.
const (
	MatchExactSymbol = "exact_symbol"
	MatchPartial     = "partial"
)

// FinancialSummary reports company data, valuation ratios and recent
// headlines. Headlines are best effort: a feed failure leaves them out.
func (s *Service) FinancialSummary(ctx context.Context, req SummaryRequest) (*models.FinancialSummary, error) {
	return run(ctx, s, ToolFinancialSummary, func(ctx context.Context, log zerolog.Logger) (*models.FinancialSummary, error) {
		adm, err := s.admit(ctx, guardrail.Request{Tool: ToolFinancialSummary, Symbols: []string{req.Symbol}})
		if err != nil {
			return nil, err
		}
		sym := adm.Symbols[0]

		var (
			f         *models.Fundamentals
			headlines []models.Headline
		)
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			var err error
			f, err = s.market.Fundamentals(gctx, sym)
			return err
		})
		if s.news != nil && s.headlines > 0 {
			g.Go(func() error {
				h, err := s.news.Headlines(gctx, sym, s.headlines)
				if err != nil {
					log.Info().Str("symbol", sym).Err(err).Msg("headlines unavailable")
					return nil
				}
				headlines = h
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, models.WithParam(datasource.Classify(err), "symbol")
		}
		summary := fundamental.Summarize(f, headlines)
		summary.NewsSentiment = sentiment.Summarize(headlines)
		return summary, nil
	})
}

// Search looks up symbols by name or ticker. When the query is itself a
// valid ticker that resolves, it is listed first as an exact match.
func (s *Service) Search(ctx context.Context, req SearchRequest) (*models.SearchReport, error) {
	return run(ctx, s, ToolSearch, func(ctx context.Context, log zerolog.Logger) (*models.SearchReport, error) {
		adm, err := s.admit(ctx, guardrail.Request{Tool: ToolSearch, Query: req.Query, HasQuery: true})
		if err != nil {
			return nil, err
		}
		q := adm.Query
		limit := ClampResults(req.MaxResults)

		var (
			exact   *models.Fundamentals
			matches []models.SearchResult
			findErr error
		)
		ticker, tickerErr := guardrail.ValidateSymbol(q, "query")

		g, gctx := errgroup.WithContext(ctx)
		if tickerErr == nil {
			g.Go(func() error {
				f, err := s.market.Fundamentals(gctx, ticker)
				if err != nil {
					log.Debug().Str("ticker", ticker).Err(err).Msg("no exact symbol match")
					return nil
				}
				exact = f
				return nil
			})
		}
		g.Go(func() error {
			matches, findErr = s.market.Search(gctx, q, limit)
			return nil
		})
		_ = g.Wait()

		if findErr != nil && exact == nil {
			return nil, models.WithParam(datasource.Classify(findErr), "query")
		}

		results := make([]models.SearchMatch, 0, limit)
		if exact != nil {
			results = append(results, models.SearchMatch{
				SearchResult: models.SearchResult{
					Symbol:   exact.Symbol,
					Name:     exact.Name,
					Exchange: exact.Exchange,
					Sector:   exact.Sector,
					Industry: exact.Industry,
				},
				MatchType: MatchExactSymbol,
			})
		}
		for _, m := range matches {
			if len(results) == limit {
				break
			}
			if exact != nil && m.Symbol == exact.Symbol {
				continue
			}
			results = append(results, models.SearchMatch{SearchResult: m, MatchType: MatchPartial})
		}
		return &models.SearchReport{Query: q, Count: len(results), Results: results}, nil
	})
}

// ClampResults bounds a requested result count to 1..MaxSearchResults,
// defaulting to DefaultSearchResults when unset.
func ClampResults(n int) int {
	switch {
	case n <= 0:
		return DefaultSearchResults
	case n > MaxSearchResults:
		return MaxSearchResults
	}
	return n
}
