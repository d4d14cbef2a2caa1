package service

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/seenimoa/finmcp/internal/analysis/risk"
	"github.com/seenimoa/finmcp/internal/analysis/series"
	"github.com/seenimoa/finmcp/internal/analysis/technical"
	"github.com/seenimoa/finmcp/internal/guardrail"
	"github.com/seenimoa/finmcp/pkg/models"
	"github.com/seenimoa/finmcp/pkg/utils"
)

// Rolling windows of the volatility report, in returns.
const (
	shortVolWindow = 30
	longVolWindow  = 60
)

func (s *Service) admitSymbol(ctx context.Context, tool, symbol string, w Window, defPeriod string) (string, models.AnalysisPeriod, error) {
	adm, err := s.admit(ctx, guardrail.Request{
		Tool:      tool,
		Symbols:   []string{symbol},
		Period:    periodOr(w.Period, defPeriod),
		StartDate: w.StartDate,
		EndDate:   w.EndDate,
		HasPeriod: true,
	})
	if err != nil {
		return "", models.AnalysisPeriod{}, err
	}
	return adm.Symbols[0], adm.Period, nil
}

// Volatility reports the dispersion of daily returns at three horizons,
// 30- and 60-day rolling volatility and the direction between them.
func (s *Service) Volatility(ctx context.Context, req SymbolRequest) (*models.VolatilityReport, error) {
	return run(ctx, s, ToolVolatility, func(ctx context.Context, _ zerolog.Logger) (*models.VolatilityReport, error) {
		sym, p, err := s.admitSymbol(ctx, ToolVolatility, req.Symbol, req.Window, "1y")
		if err != nil {
			return nil, err
		}
		ps, err := s.loadSeries(ctx, sym, p, 0, minReturnBars)
		if err != nil {
			return nil, models.WithParam(err, "symbol")
		}

		r := series.Returns(ps).Values
		vol, err := technical.ComputeVolatility(r)
		if err != nil {
			return nil, err
		}
		r30 := technical.LatestRollingVolatility(r, shortVolWindow)
		r60 := technical.LatestRollingVolatility(r, longVolWindow)
		hi, lo := technical.ReturnRange(r)

		return &models.VolatilityReport{
			Symbol:            sym,
			Window:            window(p),
			AsOf:              models.FormatDate(ps.Last().Date),
			DataPoints:        len(r),
			DailyVolatility:   utils.Pct(vol.Daily),
			MonthlyVolatility: utils.Pct(vol.Monthly),
			AnnualVolatility:  utils.Pct(vol.Annual),
			Rolling30d:        utils.PctPtr(r30),
			Rolling60d:        utils.PctPtr(r60),
			VolatilityTrend:   technical.VolatilityTrend(r30, r60),
			MaxDailyReturn:    utils.Pct(hi),
			MinDailyReturn:    utils.Pct(lo),
			RiskRating:        risk.Rating(vol.Annual),
		}, nil
	})
}

// Trend reports moving averages, momentum and trend labels over adjusted
// closes.
func (s *Service) Trend(ctx context.Context, req SymbolRequest) (*models.TrendReport, error) {
	return run(ctx, s, ToolTrend, func(ctx context.Context, _ zerolog.Logger) (*models.TrendReport, error) {
		sym, p, err := s.admitSymbol(ctx, ToolTrend, req.Symbol, req.Window, "1y")
		if err != nil {
			return nil, err
		}
		ps, err := s.loadSeries(ctx, sym, p, 0, 1)
		if err != nil {
			return nil, models.WithParam(err, "symbol")
		}

		t, err := technical.AnalyzeTrend(ps.AdjCloses(), s.analysis.MAWindows, s.analysis.MinTrendPoints)
		if err != nil {
			return nil, err
		}

		mas := make([]models.MovingAverage, len(t.MovingAverages))
		for i, ma := range t.MovingAverages {
			mas[i] = models.MovingAverage{Window: ma.Window, SMA: utils.Round2Ptr(ma.SMA), EMA: utils.Round2Ptr(ma.EMA)}
		}
		return &models.TrendReport{
			Symbol:          sym,
			Window:          window(p),
			AsOf:            models.FormatDate(ps.Last().Date),
			DataPoints:      ps.Len(),
			CurrentPrice:    utils.Round2(t.Current),
			MovingAverages:  mas,
			Momentum:        utils.Round2Ptr(t.Momentum),
			RateOfChange10:  utils.Round2Ptr(t.RateOfChange10),
			RateOfChange30:  utils.Round2Ptr(t.RateOfChange30),
			ShortTermTrend:  t.Short,
			MediumTermTrend: t.Medium,
			LongTermTrend:   t.Long,
			CrossState:      t.Cross,
			OverallTrend:    t.Overall,
		}, nil
	})
}

// Risk reports VaR, risk-adjusted ratios, drawdown and beta against a
// benchmark. The symbol and benchmark are fetched concurrently; a benchmark
// failure fails the call against the "benchmark" parameter.
func (s *Service) Risk(ctx context.Context, req RiskRequest) (*models.RiskReport, error) {
	return run(ctx, s, ToolRisk, func(ctx context.Context, _ zerolog.Logger) (*models.RiskReport, error) {
		benchmark := req.Benchmark
		if benchmark == "" {
			benchmark = s.analysis.DefaultBenchmark
		}
		adm, err := s.admit(ctx, guardrail.Request{
			Tool:      ToolRisk,
			Symbols:   []string{req.Symbol},
			Benchmark: benchmark,
			Period:    periodOr(req.Period, "1y"),
			StartDate: req.StartDate,
			EndDate:   req.EndDate,
			HasPeriod: true,
		})
		if err != nil {
			return nil, err
		}
		sym, p := adm.Symbols[0], adm.Period

		fetched, err := s.batch.History(ctx, []string{sym, adm.Benchmark}, p.Start, p.End)
		if err != nil {
			return nil, err
		}
		if fetched[0].Err != nil {
			return nil, models.WithParam(fetched[0].Err, "symbol")
		}
		ps, err := normalizeWindow(fetched[0].History, p, 0, s.analysis.MinRiskPoints)
		if err != nil {
			return nil, models.WithParam(err, "symbol")
		}
		if fetched[1].Err != nil {
			return nil, blame(fetched[1].Err, "benchmark")
		}
		bench, err := normalizeWindow(fetched[1].History, p, 0, minReturnBars)
		if err != nil {
			return nil, blame(err, "benchmark")
		}

		m, err := risk.Compute(ps, series.Returns(ps), series.Returns(bench), risk.Options{
			RiskFreeRate:     s.analysis.RiskFreeRate,
			ConfidenceLevels: s.analysis.VaRConfidenceLevels,
		})
		if err != nil {
			return nil, models.WithParam(err, "symbol")
		}

		vars := make([]models.VaREstimate, len(m.VaR))
		for i, v := range m.VaR {
			vars[i] = models.VaREstimate{
				Confidence:        v.Confidence,
				ValueAtRisk:       utils.Pct(v.Value),
				ExpectedShortfall: utils.Pct(v.ExpectedShortfall),
			}
		}
		rep := &models.RiskReport{
			Symbol:            sym,
			Benchmark:         adm.Benchmark,
			Window:            window(p),
			AsOf:              models.FormatDate(ps.Last().Date),
			DataPoints:        m.DataPoints,
			BenchmarkPoints:   m.BenchmarkPoints,
			AnnualVolatility:  utils.Pct(m.AnnualVolatility),
			SharpeRatio:       utils.Round2(m.Sharpe),
			SortinoRatio:      utils.Round2Ptr(m.Sortino),
			ValueAtRisk:       vars,
			MaxDrawdown:       utils.Pct(m.Drawdown.Max),
			DrawdownPeakDate:  models.FormatDate(m.Drawdown.Peak),
			DrawdownTrough:    models.FormatDate(m.Drawdown.Trough),
			DownsideDeviation: utils.PctPtr(m.DownsideDeviation),
			RiskRating:        m.Rating,
		}
		if m.Beta != nil {
			rep.Beta = utils.Round2(*m.Beta)
		}
		return rep, nil
	})
}
