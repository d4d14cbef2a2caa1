package service

// Window selects the lookback of a request: a period label, or an explicit
// inclusive start/end date pair that overrides it.
type Window struct {
	Period    string `json:"period,omitempty"`
	StartDate string `json:"start_date,omitempty"`
	EndDate   string `json:"end_date,omitempty"`
}

// SymbolRequest is the input of the single-symbol price, volatility and
// trend tools.
type SymbolRequest struct {
	Symbol string `json:"symbol"`
	Window
}

// RiskRequest is the input of get_risk_analysis.
type RiskRequest struct {
	Symbol    string `json:"symbol"`
	Benchmark string `json:"benchmark,omitempty"`
	Window
}

// CompareRequest is the input of compare_stocks.
type CompareRequest struct {
	Symbols []string `json:"symbols"`
	RankBy  string   `json:"rank_by,omitempty"`
	Window
}

// SummaryRequest is the input of get_financial_summary.
type SummaryRequest struct {
	Symbol string `json:"symbol"`
}

// PortfolioRequest is the input of get_portfolio_analysis. TargetReturn is
// an annual return in percent.
type PortfolioRequest struct {
	Symbols      []string  `json:"symbols"`
	Weights      []float64 `json:"weights,omitempty"`
	Objective    string    `json:"objective,omitempty"`
	TargetReturn *float64  `json:"target_return,omitempty"`
	Window
}

// IndicesRequest is the input of get_market_indices. Empty Indices means the
// default list.
type IndicesRequest struct {
	Indices []string `json:"indices,omitempty"`
}

// SearchRequest is the input of search_stocks.
type SearchRequest struct {
	Query      string `json:"query"`
	MaxResults int    `json:"max_results,omitempty"`
}
