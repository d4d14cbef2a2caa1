package service

import (
	"context"

	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/stat"

	"github.com/seenimoa/finmcp/internal/analysis/compare"
	"github.com/seenimoa/finmcp/internal/analysis/risk"
	"github.com/seenimoa/finmcp/internal/analysis/series"
	"github.com/seenimoa/finmcp/internal/analysis/technical"
	"github.com/seenimoa/finmcp/internal/guardrail"
	"github.com/seenimoa/finmcp/pkg/models"
	"github.com/seenimoa/finmcp/pkg/utils"
)

// Compare analyses several symbols over the same period and ranks them.
// Each symbol succeeds or fails in its own slot; the call fails only when
// every symbol does. Beta is added when the default benchmark is available.
func (s *Service) Compare(ctx context.Context, req CompareRequest) (*models.ComparisonReport, error) {
	return run(ctx, s, ToolCompare, func(ctx context.Context, log zerolog.Logger) (*models.ComparisonReport, error) {
		rankBy := req.RankBy
		if rankBy == "" {
			rankBy = compare.ByTotalReturn
		}
		if !compare.ValidMetric(rankBy) {
			return nil, models.NewError(models.KindInvalidArguments, "rank_by",
				"unsupported rank_by %q, expected one of %v", rankBy, compare.Metrics)
		}

		rules := s.guard.Rules()
		adm, err := s.admit(ctx, guardrail.Request{
			Tool:        ToolCompare,
			Symbols:     req.Symbols,
			SymbolParam: "symbols",
			MinSymbols:  rules.CompareMinSymbols,
			MaxSymbols:  rules.CompareMaxSymbols,
			Period:      periodOr(req.Period, "1y"),
			StartDate:   req.StartDate,
			EndDate:     req.EndDate,
			HasPeriod:   true,
		})
		if err != nil {
			return nil, err
		}
		symbols, p := adm.Symbols, adm.Period

		// The benchmark rides along in the same fan-out.
		benchmark := s.analysis.DefaultBenchmark
		fetchList := symbols
		if benchmark != "" {
			fetchList = append(append([]string(nil), symbols...), benchmark)
		}
		fetched, err := s.batch.History(ctx, fetchList, p.Start, p.End)
		if err != nil {
			return nil, err
		}

		var benchReturns *models.ReturnsSeries
		if benchmark != "" {
			b := fetched[len(fetched)-1]
			bench, err := b.History, b.Err
			if err == nil {
				var ps *models.PriceSeries
				if ps, err = normalizeWindow(bench, p, 0, minReturnBars); err == nil {
					benchReturns = series.Returns(ps)
				}
			}
			if err != nil {
				log.Info().Str("benchmark", benchmark).Err(err).Msg("benchmark unavailable, beta omitted")
			}
		}

		report := &models.ComparisonReport{
			Symbols:   symbols,
			Period:    p.Label,
			StartDate: models.FormatDate(p.Start),
			EndDate:   models.FormatDate(p.LastDay()),
			RankBy:    rankBy,
			Entries:   make([]models.ComparisonEntry, len(symbols)),
		}
		if benchReturns != nil {
			report.Benchmark = benchmark
		}

		cands := make([]compare.Candidate, 0, len(symbols))
		slot := make(map[string]int, len(symbols))
		var firstErr error
		for i, sym := range symbols {
			report.Entries[i].Symbol = sym
			slot[sym] = i

			err := fetched[i].Err
			var m *models.ComparisonMetrics
			var c compare.Candidate
			if err == nil {
				m, c, err = s.compareOne(sym, fetched[i].History, p, benchReturns)
			}
			if err != nil {
				if firstErr == nil {
					firstErr = models.WithParam(err, "symbols")
				}
				report.Entries[i].Error = models.AsError(err)
				report.Failed++
				continue
			}
			report.Entries[i].Metrics = m
			cands = append(cands, c)
		}
		if len(cands) == 0 {
			return nil, firstErr
		}

		res := compare.Rank(cands, rankBy)
		for rank, sym := range res.Ranking {
			report.Entries[slot[sym]].Rank = rank + 1
		}
		report.Ranking = res.Ranking
		report.BestReturn = res.BestReturn
		report.BestSharpe = res.BestSharpe
		report.LowestVolatility = res.LowestVolatility
		return report, nil
	})
}

func (s *Service) compareOne(sym string, raw *models.PriceHistory, p models.AnalysisPeriod, bench *models.ReturnsSeries) (*models.ComparisonMetrics, compare.Candidate, error) {
	ps, err := normalizeWindow(raw, p, 0, minReturnBars)
	if err != nil {
		return nil, compare.Candidate{}, err
	}
	r := series.Returns(ps)
	vol, err := technical.AnnualizedVolatility(r.Values)
	if err != nil {
		return nil, compare.Candidate{}, err
	}

	c := compare.Candidate{
		Symbol:       sym,
		TotalReturn:  series.TotalReturn(ps),
		AnnualReturn: stat.Mean(r.Values, nil) * technical.TradingDaysPerYear,
		Volatility:   vol,
		MaxDrawdown:  risk.MaxDrawdown(ps).Max,
	}
	if sr, err := risk.Sharpe(r.Values, s.analysis.RiskFreeRate); err == nil {
		c.Sharpe = &sr
	}

	m := &models.ComparisonMetrics{
		StartDate:    models.FormatDate(ps.First().Date),
		EndDate:      models.FormatDate(ps.Last().Date),
		DataPoints:   ps.Len(),
		CurrentPrice: utils.Round2(ps.Last().Close),
		TotalReturn:  utils.Pct(c.TotalReturn),
		AnnualReturn: utils.Pct(c.AnnualReturn),
		Volatility:   utils.Pct(vol),
		SharpeRatio:  utils.Round2Ptr(c.Sharpe),
		MaxDrawdown:  utils.Pct(c.MaxDrawdown),
		RiskRating:   risk.Rating(vol),
	}
	if bench != nil {
		if b, _, err := risk.Beta(r, bench); err == nil {
			m.Beta = utils.Ptr(utils.Round2(b))
		}
	}
	return m, c, nil
}
