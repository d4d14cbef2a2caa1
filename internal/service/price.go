package service

import (
	"context"
	"math"

	"github.com/rs/zerolog"

	"github.com/seenimoa/finmcp/internal/guardrail"
	"github.com/seenimoa/finmcp/pkg/models"
	"github.com/seenimoa/finmcp/pkg/utils"
)

// DefaultIndices are reported by get_market_indices when none are given.
var DefaultIndices = []string{"^GSPC", "^DJI", "^IXIC", "^RUT", "^VIX"}

// Market sentiment labels.
const (
	SentimentPositive = "positive"
	SentimentNeutral  = "neutral"
	SentimentNegative = "negative"
)

const maxIndices = 10

// Price reports the latest close of a symbol with its change against the
// previous session and the high/low of the period.
func (s *Service) Price(ctx context.Context, req SymbolRequest) (*models.PriceReport, error) {
	return run(ctx, s, ToolStockPrice, func(ctx context.Context, _ zerolog.Logger) (*models.PriceReport, error) {
		adm, err := s.admit(ctx, guardrail.Request{
			Tool:      ToolStockPrice,
			Symbols:   []string{req.Symbol},
			Period:    periodOr(req.Period, "1mo"),
			StartDate: req.StartDate,
			EndDate:   req.EndDate,
			HasPeriod: true,
		})
		if err != nil {
			return nil, err
		}
		sym, p := adm.Symbols[0], adm.Period

		// One leading bar so that the first bar of a short window still has
		// a previous close.
		ps, err := s.loadSeries(ctx, sym, p, 1, 1)
		if err != nil {
			return nil, models.WithParam(err, "symbol")
		}

		bars := ps.Bars
		if p.TradingDays > 0 && len(bars) > p.TradingDays {
			bars = bars[len(bars)-p.TradingDays:]
		}
		last := ps.Last()
		prev := last.Open
		if ps.Len() >= 2 {
			prev = ps.Bars[ps.Len()-2].Close
		}

		high, low := math.Inf(-1), math.Inf(1)
		for _, b := range bars {
			high = math.Max(high, b.High)
			low = math.Min(low, b.Low)
		}

		change := last.Close - prev
		return &models.PriceReport{
			Symbol:        sym,
			Window:        window(p),
			AsOf:          models.FormatDate(last.Date),
			Currency:      ps.Currency,
			CurrentPrice:  utils.Round2(last.Close),
			PreviousClose: utils.Round2(prev),
			Change:        utils.Round2(change),
			ChangePercent: utils.Pct(change / prev),
			Volume:        last.Volume,
			PeriodHigh:    utils.Round2(high),
			PeriodLow:     utils.Round2(low),
			DataPoints:    len(bars),
		}, nil
	})
}

// MarketIndices reports the latest value and daily change of the major
// indices, each in its own slot, plus an advance/decline sentiment over
// the indices that could be fetched.
func (s *Service) MarketIndices(ctx context.Context, req IndicesRequest) (*models.IndicesReport, error) {
	return run(ctx, s, ToolMarketIndices, func(ctx context.Context, log zerolog.Logger) (*models.IndicesReport, error) {
		gr := guardrail.Request{Tool: ToolMarketIndices, Period: "5d", HasPeriod: true}
		if len(req.Indices) > 0 {
			gr.Symbols, gr.SymbolParam, gr.MinSymbols, gr.MaxSymbols = req.Indices, "indices", 1, maxIndices
		}
		adm, err := s.admit(ctx, gr)
		if err != nil {
			return nil, err
		}
		indices := adm.Symbols
		if len(indices) == 0 {
			indices = DefaultIndices
		}

		fetched, err := s.batch.History(ctx, indices, adm.Period.Start, adm.Period.End)
		if err != nil {
			return nil, err
		}

		report := &models.IndicesReport{Indices: make([]models.IndexQuote, len(indices))}
		var ok int
		var firstErr error
		for i, f := range fetched {
			q := models.IndexQuote{Symbol: f.Symbol, Name: utils.IndexName(f.Symbol)}
			var ps *models.PriceSeries
			err := f.Err
			if err == nil {
				ps, err = normalizeWindow(f.History, adm.Period, 1, 2)
			}
			if err != nil {
				if firstErr == nil {
					firstErr = err
				}
				q.Error = models.AsError(err)
				log.Debug().Str("index", f.Symbol).Err(err).Msg("index unavailable")
				report.Indices[i] = q
				continue
			}

			last, prev := ps.Last(), ps.Bars[ps.Len()-2]
			change := last.Close - prev.Close
			q.AsOf = models.FormatDate(last.Date)
			q.Value = utils.Round2(last.Close)
			q.Change = utils.Round2(change)
			q.ChangePercent = utils.Pct(change / prev.Close)
			report.Indices[i] = q

			ok++
			switch {
			case change > 0:
				report.Advancing++
			case change < 0:
				report.Declining++
			}
			if q.AsOf > report.AsOf {
				report.AsOf = q.AsOf
			}
		}
		if ok == 0 {
			return nil, firstErr
		}
		report.Sentiment = Sentiment(report.Advancing, ok)
		return report, nil
	})
}

// Sentiment labels a market by the share of advancing indices: positive at
// 70% or more, negative at 30% or less.
func Sentiment(advancing, total int) string {
	if total == 0 {
		return SentimentNeutral
	}
	share := float64(advancing) / float64(total)
	switch {
	case share >= 0.7:
		return SentimentPositive
	case share <= 0.3:
		return SentimentNegative
	default:
		return SentimentNeutral
	}
}
