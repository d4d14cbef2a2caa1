package datasource

import (
	"context"
	"fmt"
	"math"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/seenimoa/finmcp/internal/config"
	"github.com/seenimoa/finmcp/internal/infra"
	"github.com/seenimoa/finmcp/internal/metrics"
	"github.com/seenimoa/finmcp/pkg/models"
)

// DefaultBaseURL is the Yahoo Finance API host.
const DefaultBaseURL = "https://query1.finance.yahoo.com"

// summaryModules are the quoteSummary modules Fundamentals reads.
const summaryModules = "price,summaryDetail,defaultKeyStatistics,financialData,assetProfile"

// YFinance implements MarketData using the Yahoo Finance API.
type YFinance struct {
	http    *infra.HTTPClient
	baseURL string
	limiter *infra.RateLimiter
	metrics *metrics.Metrics
	log     zerolog.Logger
}

// YFinanceOption customises a YFinance client.
type YFinanceOption func(*YFinance)

// WithBaseURL points the client at another host, e.g. an httptest server.
func WithBaseURL(u string) YFinanceOption {
	return func(y *YFinance) { y.baseURL = strings.TrimRight(u, "/") }
}

// WithFetchLimiter replaces the outbound request pacer. nil disables pacing.
func WithFetchLimiter(rl *infra.RateLimiter) YFinanceOption {
	return func(y *YFinance) { y.limiter = rl }
}

// WithFetchMetrics records provider round trips.
func WithFetchMetrics(m *metrics.Metrics) YFinanceOption {
	return func(y *YFinance) { y.metrics = m }
}

// WithFetchLogger sets the logger.
func WithFetchLogger(l zerolog.Logger) YFinanceOption {
	return func(y *YFinance) { y.log = l.With().Str("component", "yfinance").Logger() }
}

// NewYFinance creates a new Yahoo Finance data source.
func NewYFinance(cfg config.ProviderConfig, opts ...YFinanceOption) *YFinance {
	y := &YFinance{
		http:    infra.NewHTTPClient(cfg.HTTPTimeout, cfg.UserAgent),
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		limiter: infra.NewRateLimiter(5, 200*time.Millisecond), // 5 req/s
		log:     zerolog.Nop(),
	}
	if y.baseURL == "" {
		y.baseURL = DefaultBaseURL
	}
	for _, o := range opts {
		o(y)
	}
	return y
}

// --- Yahoo Finance API types ---

type yfChartResponse struct {
	Chart struct {
		Result []yfChartResult `json:"result"`
		Error  *yfError        `json:"error"`
	} `json:"chart"`
}

type yfChartResult struct {
	Meta       yfChartMeta  `json:"meta"`
	Timestamp  []int64      `json:"timestamp"`
	Indicators yfIndicators `json:"indicators"`
}

type yfChartMeta struct {
	Symbol    string `json:"symbol"`
	Currency  string `json:"currency"`
	Timezone  string `json:"timezone"`
	GMTOffset int    `json:"gmtoffset"`
}

type yfIndicators struct {
	Quote    []yfOHLCV    `json:"quote"`
	AdjClose []yfAdjClose `json:"adjclose"`
}

type yfOHLCV struct {
	Open   []*float64 `json:"open"`
	High   []*float64 `json:"high"`
	Low    []*float64 `json:"low"`
	Close  []*float64 `json:"close"`
	Volume []*int64   `json:"volume"`
}

type yfAdjClose struct {
	AdjClose []*float64 `json:"adjclose"`
}

type yfSummaryResponse struct {
	QuoteSummary struct {
		Result []yfSummaryResult `json:"result"`
		Error  *yfError          `json:"error"`
	} `json:"quoteSummary"`
}

type yfSummaryResult struct {
	Price struct {
		LongName           string    `json:"longName"`
		ShortName          string    `json:"shortName"`
		ExchangeName       string    `json:"exchangeName"`
		Currency           string    `json:"currency"`
		RegularMarketPrice *yfFinVal `json:"regularMarketPrice"`
		MarketCap          *yfFinVal `json:"marketCap"`
	} `json:"price"`
	SummaryDetail struct {
		TrailingPE       *yfFinVal `json:"trailingPE"`
		ForwardPE        *yfFinVal `json:"forwardPE"`
		PriceToSales     *yfFinVal `json:"priceToSalesTrailing12Months"`
		DividendYield    *yfFinVal `json:"dividendYield"`
		Beta             *yfFinVal `json:"beta"`
		FiftyTwoWeekHigh *yfFinVal `json:"fiftyTwoWeekHigh"`
		FiftyTwoWeekLow  *yfFinVal `json:"fiftyTwoWeekLow"`
		AverageVolume    *yfFinVal `json:"averageVolume"`
		MarketCap        *yfFinVal `json:"marketCap"`
	} `json:"summaryDetail"`
	DefaultKeyStatistics struct {
		EnterpriseValue *yfFinVal `json:"enterpriseValue"`
		PriceToBook     *yfFinVal `json:"priceToBook"`
		ForwardPE       *yfFinVal `json:"forwardPE"`
		Beta            *yfFinVal `json:"beta"`
	} `json:"defaultKeyStatistics"`
	FinancialData struct {
		CurrentPrice   *yfFinVal `json:"currentPrice"`
		DebtToEquity   *yfFinVal `json:"debtToEquity"`
		ReturnOnEquity *yfFinVal `json:"returnOnEquity"`
		ProfitMargins  *yfFinVal `json:"profitMargins"`
	} `json:"financialData"`
	AssetProfile struct {
		Sector              string `json:"sector"`
		Industry            string `json:"industry"`
		LongBusinessSummary string `json:"longBusinessSummary"`
	} `json:"assetProfile"`
}

// yfFinVal is Yahoo's {raw, fmt} number. Missing values arrive as {}.
type yfFinVal struct {
	Raw *float64 `json:"raw"`
	Fmt string   `json:"fmt"`
}

func (v *yfFinVal) value() *float64 {
	if v == nil || v.Raw == nil || math.IsNaN(*v.Raw) || math.IsInf(*v.Raw, 0) {
		return nil
	}
	x := *v.Raw
	return &x
}

func (v *yfFinVal) count() *int64 {
	f := v.value()
	if f == nil {
		return nil
	}
	n := int64(*f)
	return &n
}

type yfSearchResponse struct {
	Quotes []struct {
		Symbol    string `json:"symbol"`
		ShortName string `json:"shortname"`
		LongName  string `json:"longname"`
		Exchange  string `json:"exchDisp"`
		QuoteType string `json:"quoteType"`
		Sector    string `json:"sector"`
		Industry  string `json:"industry"`
	} `json:"quotes"`
}

type yfError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

// --- Public methods ---

// History returns daily candles from the Yahoo Finance chart API. Bar
// timestamps carry the exchange's UTC offset so that the normalizer can
// recover local trading dates.
func (y *YFinance) History(ctx context.Context, symbol string, from, to time.Time) (*models.PriceHistory, error) {
	u := fmt.Sprintf("%s/v8/finance/chart/%s?period1=%d&period2=%d&interval=1d&events=div%%2Csplit",
		y.baseURL, url.PathEscape(symbol), from.Unix(), to.Unix())

	var resp yfChartResponse
	if err := y.getJSON(ctx, "history", u, &resp); err != nil {
		return nil, fmt.Errorf("yfinance chart %s: %w", symbol, err)
	}
	if resp.Chart.Error != nil {
		return nil, Classify(fmt.Errorf("yfinance chart %s: %w", symbol, apiError(resp.Chart.Error)))
	}
	if len(resp.Chart.Result) == 0 {
		return nil, Classify(fmt.Errorf("%w: %s", ErrTickerNotFound, symbol))
	}

	result := resp.Chart.Result[0]
	return &models.PriceHistory{
		Symbol:   symbol,
		Currency: result.Meta.Currency,
		Bars:     parseYFCandles(result),
	}, nil
}

// Fundamentals returns a company snapshot from the quoteSummary API.
func (y *YFinance) Fundamentals(ctx context.Context, symbol string) (*models.Fundamentals, error) {
	u := fmt.Sprintf("%s/v10/finance/quoteSummary/%s?modules=%s",
		y.baseURL, url.PathEscape(symbol), url.QueryEscape(summaryModules))

	var resp yfSummaryResponse
	if err := y.getJSON(ctx, "fundamentals", u, &resp); err != nil {
		return nil, fmt.Errorf("yfinance summary %s: %w", symbol, err)
	}
	if resp.QuoteSummary.Error != nil {
		return nil, Classify(fmt.Errorf("yfinance summary %s: %w", symbol, apiError(resp.QuoteSummary.Error)))
	}
	if len(resp.QuoteSummary.Result) == 0 {
		return nil, Classify(fmt.Errorf("%w: %s", ErrTickerNotFound, symbol))
	}
	return parseYFSummary(symbol, resp.QuoteSummary.Result[0]), nil
}

// Search looks symbols up by name or ticker fragment.
func (y *YFinance) Search(ctx context.Context, query string, limit int) ([]models.SearchResult, error) {
	u := fmt.Sprintf("%s/v1/finance/search?q=%s&quotesCount=%d&newsCount=0",
		y.baseURL, url.QueryEscape(query), limit)

	var resp yfSearchResponse
	if err := y.getJSON(ctx, "search", u, &resp); err != nil {
		return nil, fmt.Errorf("yfinance search %q: %w", query, err)
	}

	out := make([]models.SearchResult, 0, len(resp.Quotes))
	for _, q := range resp.Quotes {
		if q.Symbol == "" {
			continue
		}
		out = append(out, models.SearchResult{
			Symbol:    q.Symbol,
			Name:      coalesce(q.LongName, q.ShortName),
			Exchange:  q.Exchange,
			QuoteType: q.QuoteType,
			Sector:    q.Sector,
			Industry:  q.Industry,
		})
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

// --- Helpers ---

// getJSON paces, performs and records one provider request. Failures come
// back classified.
func (y *YFinance) getJSON(ctx context.Context, op, u string, v any) error {
	if y.limiter != nil {
		if err := y.limiter.Wait(ctx); err != nil {
			return Classify(err)
		}
	}

	start := time.Now()
	err := Classify(y.http.GetJSON(ctx, u, v))
	y.metrics.ObserveFetch(op, outcome(err), time.Since(start))
	if err != nil {
		y.log.Debug().Str("op", op).Str("url", u).Err(err).Msg("provider request failed")
	}
	return err
}

func apiError(e *yfError) error {
	if strings.EqualFold(e.Code, "Not Found") {
		return fmt.Errorf("%w: %s", ErrTickerNotFound, e.Description)
	}
	return fmt.Errorf("yfinance API error %s: %s", e.Code, e.Description)
}

func parseYFCandles(result yfChartResult) []models.OHLCV {
	if len(result.Indicators.Quote) == 0 {
		return nil
	}

	loc := time.UTC
	if result.Meta.GMTOffset != 0 || result.Meta.Timezone != "" {
		loc = time.FixedZone(result.Meta.Timezone, result.Meta.GMTOffset)
	}

	q := result.Indicators.Quote[0]
	var adjCloses []*float64
	if len(result.Indicators.AdjClose) > 0 {
		adjCloses = result.Indicators.AdjClose[0].AdjClose
	}

	candles := make([]models.OHLCV, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		c := models.OHLCV{
			Timestamp: time.Unix(ts, 0).In(loc),
		}
		if i < len(q.Open) && q.Open[i] != nil {
			c.Open = *q.Open[i]
		}
		if i < len(q.High) && q.High[i] != nil {
			c.High = *q.High[i]
		}
		if i < len(q.Low) && q.Low[i] != nil {
			c.Low = *q.Low[i]
		}
		if i < len(q.Close) && q.Close[i] != nil {
			c.Close = *q.Close[i]
		}
		if i < len(q.Volume) && q.Volume[i] != nil {
			c.Volume = *q.Volume[i]
		}
		if i < len(adjCloses) && adjCloses[i] != nil {
			c.AdjClose = *adjCloses[i]
		}
		candles = append(candles, c)
	}
	return candles
}

func parseYFSummary(symbol string, r yfSummaryResult) *models.Fundamentals {
	f := &models.Fundamentals{
		Symbol:           symbol,
		Name:             coalesce(r.Price.LongName, r.Price.ShortName),
		Exchange:         r.Price.ExchangeName,
		Currency:         r.Price.Currency,
		Sector:           r.AssetProfile.Sector,
		Industry:         r.AssetProfile.Industry,
		Description:      cleanHTML(r.AssetProfile.LongBusinessSummary),
		CurrentPrice:     firstValue(r.FinancialData.CurrentPrice, r.Price.RegularMarketPrice),
		MarketCap:        firstValue(r.Price.MarketCap, r.SummaryDetail.MarketCap),
		EnterpriseValue:  r.DefaultKeyStatistics.EnterpriseValue.value(),
		TrailingPE:       r.SummaryDetail.TrailingPE.value(),
		ForwardPE:        firstValue(r.SummaryDetail.ForwardPE, r.DefaultKeyStatistics.ForwardPE),
		PriceToBook:      r.DefaultKeyStatistics.PriceToBook.value(),
		PriceToSales:     r.SummaryDetail.PriceToSales.value(),
		DebtToEquity:     r.FinancialData.DebtToEquity.value(),
		ReturnOnEquity:   r.FinancialData.ReturnOnEquity.value(),
		ProfitMargin:     r.FinancialData.ProfitMargins.value(),
		DividendYield:    r.SummaryDetail.DividendYield.value(),
		Beta:             firstValue(r.SummaryDetail.Beta, r.DefaultKeyStatistics.Beta),
		FiftyTwoWeekHigh: r.SummaryDetail.FiftyTwoWeekHigh.value(),
		FiftyTwoWeekLow:  r.SummaryDetail.FiftyTwoWeekLow.value(),
		AverageVolume:    r.SummaryDetail.AverageVolume.count(),
	}
	return f
}

func firstValue(vals ...*yfFinVal) *float64 {
	for _, v := range vals {
		if p := v.value(); p != nil {
			return p
		}
	}
	return nil
}

func coalesce(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
