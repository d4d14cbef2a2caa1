package service

import (
	"context"
	"math"

	"github.com/rs/zerolog"

	"github.com/seenimoa/finmcp/internal/analysis/portfolio"
	"github.com/seenimoa/finmcp/internal/analysis/series"
	"github.com/seenimoa/finmcp/internal/guardrail"
	"github.com/seenimoa/finmcp/pkg/models"
	"github.com/seenimoa/finmcp/pkg/utils"
)

// Portfolio analyses a weighted basket over the dates all holdings share
// and searches the weight grid for the requested objective. Holdings that
// cannot be fetched are excluded and the remaining weights renormalized.
func (s *Service) Portfolio(ctx context.Context, req PortfolioRequest) (*models.PortfolioReport, error) {
	return run(ctx, s, ToolPortfolio, func(ctx context.Context, log zerolog.Logger) (*models.PortfolioReport, error) {
		objective := req.Objective
		if objective == "" {
			objective = portfolio.MinVariance
		}
		if !portfolio.ValidObjective(objective) {
			return nil, models.NewError(models.KindInvalidArguments, "objective",
				"unsupported objective %q, expected one of %v", objective, portfolio.Objectives)
		}
		var target *float64
		if req.TargetReturn != nil {
			if math.IsNaN(*req.TargetReturn) || math.IsInf(*req.TargetReturn, 0) {
				return nil, models.NewError(models.KindInvalidArguments, "target_return", "target_return must be finite")
			}
			target = utils.Ptr(*req.TargetReturn / 100)
		}
		if objective == portfolio.TargetReturn && target == nil {
			return nil, models.NewError(models.KindInvalidArguments, "target_return",
				"objective %q requires target_return", portfolio.TargetReturn)
		}

		rules := s.guard.Rules()
		adm, err := s.admit(ctx, guardrail.Request{
			Tool:        ToolPortfolio,
			Symbols:     req.Symbols,
			SymbolParam: "symbols",
			MinSymbols:  rules.PortfolioMinSymbols,
			MaxSymbols:  rules.PortfolioMaxSymbols,
			Weights:     req.Weights,
			HasWeights:  true,
			Period:      periodOr(req.Period, "1y"),
			StartDate:   req.StartDate,
			EndDate:     req.EndDate,
			HasPeriod:   true,
		})
		if err != nil {
			return nil, err
		}
		p := adm.Period

		fetched, err := s.batch.History(ctx, adm.Symbols, p.Start, p.End)
		if err != nil {
			return nil, err
		}

		report := &models.PortfolioReport{
			Symbols:          adm.Symbols,
			RequestedWeights: adm.Weights,
			Window:           window(p),
		}

		var returns []*models.ReturnsSeries
		var kept []float64
		for i, f := range fetched {
			err := f.Err
			var ps *models.PriceSeries
			if err == nil {
				ps, err = normalizeWindow(f.History, p, 0, minReturnBars)
			}
			if err != nil {
				log.Info().Str("symbol", f.Symbol).Err(err).Msg("holding excluded")
				report.Excluded = append(report.Excluded, models.SymbolError{Symbol: f.Symbol, Error: models.AsError(err)})
				continue
			}
			r := series.Returns(ps)
			r.Symbol = f.Symbol
			returns = append(returns, r)
			kept = append(kept, adm.Weights[i])
		}
		if len(returns) < 2 {
			return nil, models.NewError(models.KindNoOverlap, "symbols",
				"portfolio analysis needs at least 2 holdings with data, %d of %d available", len(returns), len(adm.Symbols))
		}

		weights := kept
		if len(report.Excluded) > 0 {
			var sum float64
			for _, w := range kept {
				sum += w
			}
			if sum <= 0 {
				return nil, models.NewError(models.KindInvalidWeights, "weights",
					"the holdings with data carry no weight")
			}
			weights = make([]float64, len(kept))
			for i, w := range kept {
				weights[i] = w / sum
			}
			report.Renormalized = true
		}

		aligned, err := series.AlignReturns(returns...)
		if err != nil {
			return nil, err
		}
		a, err := portfolio.Analyze(weights, aligned, portfolio.Options{
			RiskFreeRate:  s.analysis.RiskFreeRate,
			Objective:     objective,
			TargetReturn:  target,
			Step:          s.analysis.OptimizerStep,
			MaxCandidates: s.analysis.OptimizerMaxCandidates,
		})
		if err != nil {
			return nil, err
		}

		report.AsOf = models.FormatDate(aligned[0].Dates[len(aligned[0].Dates)-1])
		report.DataPoints = a.DataPoints
		report.Weights = weightEntries(a.Symbols, a.Weights)
		report.Assets = make([]models.AssetMetrics, len(a.Assets))
		for i, as := range a.Assets {
			report.Assets[i] = models.AssetMetrics{
				Symbol:               as.Symbol,
				Weight:               utils.Pct(as.Weight),
				AnnualVolatility:     utils.Pct(as.AnnualVolatility),
				SharpeRatio:          utils.Round2Ptr(as.Sharpe),
				ContributionToReturn: utils.Pct(as.Contribution),
			}
		}
		report.Portfolio = models.PortfolioMetrics{
			AnnualReturn:     utils.Pct(a.AnnualReturn),
			AnnualVolatility: utils.Pct(a.AnnualVolatility),
			SharpeRatio:      utils.Round2Ptr(a.Sharpe),
			MaxDrawdown:      utils.Pct(a.MaxDrawdown),
		}
		report.DiversificationRatio = utils.Round2(a.DiversificationRatio)
		report.Correlation = correlationMap(a.Symbols, a.Correlation)

		if o := a.Optimization; o != nil {
			report.Optimization = &models.Optimization{
				Objective:        o.Objective,
				TargetReturn:     utils.PctPtr(o.Target),
				GridStep:         utils.Round(o.Step, 4),
				Candidates:       o.Candidates,
				Feasible:         o.Feasible,
				AnnualReturn:     utils.Pct(o.AnnualReturn),
				AnnualVolatility: utils.Pct(o.AnnualVolatility),
				SharpeRatio:      utils.Round2Ptr(o.Sharpe),
			}
			if o.Feasible {
				report.Optimization.Weights = weightEntries(a.Symbols, o.Weights)
			}
		}
		return report, nil
	})
}

func weightEntries(symbols []string, weights []float64) []models.WeightEntry {
	out := make([]models.WeightEntry, len(symbols))
	for i, sym := range symbols {
		out[i] = models.WeightEntry{Symbol: sym, Weight: utils.Pct(weights[i])}
	}
	return out
}

// correlationMap keys the matrix by symbol. Undefined pairs (a holding
// with constant returns) are left out.
func correlationMap(symbols []string, c [][]float64) map[string]map[string]float64 {
	out := make(map[string]map[string]float64, len(symbols))
	for i, a := range symbols {
		row := make(map[string]float64, len(symbols))
		for j, b := range symbols {
			if math.IsNaN(c[i][j]) {
				continue
			}
			row[b] = utils.Round2(c[i][j])
		}
		out[a] = row
	}
	return out
}
