package models

// Reports are flat, immutable records returned by the tools. Percentages are
// expressed in percent (1.5 means 1.5%) and rounded to two decimals. AsOf is
// always the date of the last bar used, never the wall clock.

// Window carries the request period that produced a report.
type Window struct {
	Period    string `json:"period"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

// PriceReport is the result of a price lookup.
type PriceReport struct {
	Symbol string `json:"symbol"`
	Window
	AsOf          string  `json:"as_of"`
	Currency      string  `json:"currency,omitempty"`
	CurrentPrice  float64 `json:"current_price"`
	PreviousClose float64 `json:"previous_close"`
	Change        float64 `json:"change"`
	ChangePercent float64 `json:"change_percent"`
	Volume        int64   `json:"volume"`
	PeriodHigh    float64 `json:"period_high"`
	PeriodLow     float64 `json:"period_low"`
	DataPoints    int     `json:"data_points"`
}

// VolatilityReport summarises the dispersion of daily returns.
type VolatilityReport struct {
	Symbol string `json:"symbol"`
	Window
	AsOf              string   `json:"as_of"`
	DataPoints        int      `json:"data_points"`
	DailyVolatility   float64  `json:"daily_volatility"`
	MonthlyVolatility float64  `json:"monthly_volatility"`
	AnnualVolatility  float64  `json:"annual_volatility"`
	Rolling30d        *float64 `json:"rolling_30d_volatility,omitempty"`
	Rolling60d        *float64 `json:"rolling_60d_volatility,omitempty"`
	VolatilityTrend   string   `json:"volatility_trend"`
	MaxDailyReturn    float64  `json:"max_daily_return"`
	MinDailyReturn    float64  `json:"min_daily_return"`
	RiskRating        string   `json:"risk_rating"`
}

// MovingAverage is the latest SMA/EMA pair for one window. Values are
// omitted when the series is shorter than the window.
type MovingAverage struct {
	Window int      `json:"window"`
	SMA    *float64 `json:"sma,omitempty"`
	EMA    *float64 `json:"ema,omitempty"`
}

// TrendReport describes moving-average structure and momentum.
type TrendReport struct {
	Symbol string `json:"symbol"`
	Window
	AsOf            string          `json:"as_of"`
	DataPoints      int             `json:"data_points"`
	CurrentPrice    float64         `json:"current_price"`
	MovingAverages  []MovingAverage `json:"moving_averages"`
	Momentum        *float64        `json:"momentum,omitempty"`
	RateOfChange10  *float64        `json:"rate_of_change_10d,omitempty"`
	RateOfChange30  *float64        `json:"rate_of_change_30d,omitempty"`
	ShortTermTrend  string          `json:"short_term_trend"`
	MediumTermTrend string          `json:"medium_term_trend"`
	LongTermTrend   string          `json:"long_term_trend"`
	CrossState      string          `json:"cross_state"`
	OverallTrend    string          `json:"overall_trend"`
}

// VaREstimate is historical Value-at-Risk at one confidence level.
type VaREstimate struct {
	Confidence        float64 `json:"confidence"`
	ValueAtRisk       float64 `json:"value_at_risk"`
	ExpectedShortfall float64 `json:"expected_shortfall"`
}

// RiskReport is the output of risk analysis for one symbol.
type RiskReport struct {
	Symbol    string `json:"symbol"`
	Benchmark string `json:"benchmark"`
	Window
	AsOf              string        `json:"as_of"`
	DataPoints        int           `json:"data_points"`
	BenchmarkPoints   int           `json:"benchmark_points"`
	AnnualVolatility  float64       `json:"annual_volatility"`
	SharpeRatio       float64       `json:"sharpe_ratio"`
	SortinoRatio      *float64      `json:"sortino_ratio,omitempty"`
	Beta              float64       `json:"beta"`
	ValueAtRisk       []VaREstimate `json:"value_at_risk"`
	MaxDrawdown       float64       `json:"max_drawdown"`
	DrawdownPeakDate  string        `json:"drawdown_peak_date,omitempty"`
	DrawdownTrough    string        `json:"drawdown_trough_date,omitempty"`
	DownsideDeviation *float64      `json:"downside_deviation,omitempty"`
	RiskRating        string        `json:"risk_rating"`
}

// ComparisonMetrics are the per-symbol figures of a comparison.
type ComparisonMetrics struct {
	StartDate    string   `json:"start_date"`
	EndDate      string   `json:"end_date"`
	DataPoints   int      `json:"data_points"`
	CurrentPrice float64  `json:"current_price"`
	TotalReturn  float64  `json:"total_return"`
	AnnualReturn float64  `json:"annual_return"`
	Volatility   float64  `json:"volatility"`
	SharpeRatio  *float64 `json:"sharpe_ratio,omitempty"`
	MaxDrawdown  float64  `json:"max_drawdown"`
	Beta         *float64 `json:"beta,omitempty"`
	RiskRating   string   `json:"risk_rating"`
}

// ComparisonEntry is one symbol's slot: metrics on success, error otherwise.
type ComparisonEntry struct {
	Symbol  string             `json:"symbol"`
	Rank    int                `json:"rank,omitempty"`
	Metrics *ComparisonMetrics `json:"metrics,omitempty"`
	Error   *Error             `json:"error,omitempty"`
}

// ComparisonReport ranks several symbols over the same period.
type ComparisonReport struct {
	Symbols   []string `json:"symbols"`
	Period    string   `json:"period"`
	StartDate string   `json:"start_date"`
	EndDate   string   `json:"end_date"`
	RankBy    string   `json:"rank_by"`
	Benchmark string   `json:"benchmark,omitempty"`
	// Entries follow the requested symbol order.
	Entries          []ComparisonEntry `json:"entries"`
	Ranking          []string          `json:"ranking"`
	BestReturn       string            `json:"best_return,omitempty"`
	BestSharpe       string            `json:"best_sharpe,omitempty"`
	LowestVolatility string            `json:"lowest_volatility,omitempty"`
	Failed           int               `json:"failed"`
}

// FinancialSummary is a company snapshot with derived ratios.
type FinancialSummary struct {
	Symbol             string         `json:"symbol"`
	Name               string         `json:"name,omitempty"`
	Exchange           string         `json:"exchange,omitempty"`
	Currency           string         `json:"currency,omitempty"`
	Sector             string         `json:"sector,omitempty"`
	Industry           string         `json:"industry,omitempty"`
	Description        string         `json:"description,omitempty"`
	CurrentPrice       *float64       `json:"current_price,omitempty"`
	MarketCap          *float64       `json:"market_cap,omitempty"`
	MarketCapFormatted string         `json:"market_cap_formatted,omitempty"`
	EnterpriseValue    *float64       `json:"enterprise_value,omitempty"`
	TrailingPE         *float64       `json:"trailing_pe,omitempty"`
	ForwardPE          *float64       `json:"forward_pe,omitempty"`
	PriceToBook        *float64       `json:"price_to_book,omitempty"`
	PriceToSales       *float64       `json:"price_to_sales,omitempty"`
	DebtToEquity       *float64       `json:"debt_to_equity,omitempty"`
	ReturnOnEquity     *float64       `json:"return_on_equity,omitempty"`
	ProfitMargin       *float64       `json:"profit_margin,omitempty"`
	DividendYield      *float64       `json:"dividend_yield,omitempty"`
	EarningsYield      *float64       `json:"earnings_yield,omitempty"`
	Beta               *float64       `json:"beta,omitempty"`
	FiftyTwoWeekHigh   *float64       `json:"fifty_two_week_high,omitempty"`
	FiftyTwoWeekLow    *float64       `json:"fifty_two_week_low,omitempty"`
	AverageVolume      *int64         `json:"average_volume,omitempty"`
	Valuation          string         `json:"valuation,omitempty"`
	Headlines          []Headline     `json:"headlines,omitempty"`
	NewsSentiment      *NewsSentiment `json:"news_sentiment,omitempty"`
}

// NewsSentiment is the keyword sentiment of the attached headlines. Score is
// in [-1, 1].
type NewsSentiment struct {
	Score      float64 `json:"score"`
	Confidence float64 `json:"confidence"`
	Label      string  `json:"label"`
	Headlines  int     `json:"headlines"`
	Positive   int     `json:"positive"`
	Negative   int     `json:"negative"`
}

// AssetMetrics are per-holding figures inside a portfolio report.
type AssetMetrics struct {
	Symbol               string   `json:"symbol"`
	Weight               float64  `json:"weight"`
	AnnualVolatility     float64  `json:"annual_volatility"`
	SharpeRatio          *float64 `json:"sharpe_ratio,omitempty"`
	ContributionToReturn float64  `json:"contribution_to_return"`
}

// PortfolioMetrics are whole-portfolio figures.
type PortfolioMetrics struct {
	AnnualReturn     float64  `json:"annual_return"`
	AnnualVolatility float64  `json:"annual_volatility"`
	SharpeRatio      *float64 `json:"sharpe_ratio,omitempty"`
	MaxDrawdown      float64  `json:"max_drawdown"`
}

// WeightEntry is a symbol weight in percent.
type WeightEntry struct {
	Symbol string  `json:"symbol"`
	Weight float64 `json:"weight"`
}

// Optimization is the best candidate found by the weight search.
type Optimization struct {
	Objective        string        `json:"objective"`
	TargetReturn     *float64      `json:"target_return,omitempty"`
	GridStep         float64       `json:"grid_step"`
	Candidates       int           `json:"candidates"`
	Feasible         bool          `json:"feasible"`
	Weights          []WeightEntry `json:"weights,omitempty"`
	AnnualReturn     float64       `json:"annual_return"`
	AnnualVolatility float64       `json:"annual_volatility"`
	SharpeRatio      *float64      `json:"sharpe_ratio,omitempty"`
}

// SymbolError annotates a symbol excluded from a multi-symbol result.
type SymbolError struct {
	Symbol string `json:"symbol"`
	Error  *Error `json:"error"`
}

// PortfolioReport is the output of portfolio analysis.
type PortfolioReport struct {
	Symbols          []string  `json:"symbols"`
	RequestedWeights []float64 `json:"requested_weights"`
	Window
	AsOf                 string                        `json:"as_of"`
	DataPoints           int                           `json:"data_points"`
	Weights              []WeightEntry                 `json:"weights"`
	Renormalized         bool                          `json:"renormalized"`
	Excluded             []SymbolError                 `json:"excluded,omitempty"`
	Assets               []AssetMetrics                `json:"assets"`
	Portfolio            PortfolioMetrics              `json:"portfolio"`
	DiversificationRatio float64                       `json:"diversification_ratio"`
	Correlation          map[string]map[string]float64 `json:"correlation_matrix"`
	Optimization         *Optimization                 `json:"optimization,omitempty"`
}

// IndexQuote is one slot of the market indices report.
type IndexQuote struct {
	Symbol        string  `json:"symbol"`
	Name          string  `json:"name"`
	AsOf          string  `json:"as_of,omitempty"`
	Value         float64 `json:"value,omitempty"`
	Change        float64 `json:"change,omitempty"`
	ChangePercent float64 `json:"change_percent,omitempty"`
	Error         *Error  `json:"error,omitempty"`
}

// IndicesReport summarises the major market indices.
type IndicesReport struct {
	AsOf      string       `json:"as_of"`
	Indices   []IndexQuote `json:"indices"`
	Advancing int          `json:"advancing"`
	Declining int          `json:"declining"`
	Sentiment string       `json:"sentiment"`
}

// SearchMatch is one entry of a symbol search.
type SearchMatch struct {
	SearchResult
	MatchType string `json:"match_type"`
}

// SearchReport is the output of a symbol search.
type SearchReport struct {
	Query   string        `json:"query"`
	Count   int           `json:"count"`
	Results []SearchMatch `json:"results"`
}
