package backtest

import "time"

// Rebalancing frequencies accepted by the backtest server.
const (
	RebalanceDaily     = "daily"
	RebalanceWeekly    = "weekly"
	RebalanceMonthly   = "monthly"
	RebalanceQuarterly = "quarterly"
	RebalanceYearly    = "yearly"
)

// Strategy types accepted by the backtest server.
const (
	StrategySMACrossover   = "sma_crossover"
	StrategyEMACrossover   = "ema_crossover"
	StrategyRSIOversold    = "rsi_oversold"
	StrategyBollingerBands = "bollinger_bands"
	StrategyBuyAndHold     = "buy_and_hold"
)

// AssetAllocation assigns a percentage of the portfolio to one symbol.
// Allocations across a request should sum to 100.
type AssetAllocation struct {
	Symbol     string  `json:"symbol"`
	Allocation float64 `json:"allocation"`
}

// Request is the backtest job configuration sent to POST /api/backtest/run.
// Field names follow the server's wire format exactly.
type Request struct {
	Assets         []AssetAllocation `json:"assets"`
	InitialCapital float64           `json:"initial_capital"`

	StartDate string `json:"start_date"` // YYYY-MM-DD
	EndDate   string `json:"end_date"`

	StrategyType       string `json:"strategy_type"`
	RebalanceFrequency string `json:"rebalance_frequency"`

	TransactionFees float64 `json:"transaction_fees"`
	Slippage        float64 `json:"slippage"`

	DividendReinvestment bool   `json:"dividend_reinvestment"`
	Benchmark            string `json:"benchmark"`

	SMAShort      int     `json:"sma_short,omitempty"`
	SMALong       int     `json:"sma_long,omitempty"`
	RSIPeriod     int     `json:"rsi_period,omitempty"`
	RSIOversold   float64 `json:"rsi_oversold,omitempty"`
	RSIOverbought float64 `json:"rsi_overbought,omitempty"`
}

// NewRequest returns a Request with the server's defaults filled in.
func NewRequest(assets []AssetAllocation, startDate, endDate string) Request {
	return Request{
		Assets:               assets,
		InitialCapital:       100_000,
		StartDate:            startDate,
		EndDate:              endDate,
		StrategyType:         StrategyBuyAndHold,
		RebalanceFrequency:   RebalanceQuarterly,
		TransactionFees:      0.1,
		Slippage:             0.05,
		DividendReinvestment: true,
		Benchmark:            "SPY",
	}
}

// SubmitResponse is what POST /api/backtest/run returns on acceptance.
type SubmitResponse struct {
	RequestID string `json:"request_id"`
	Status    string `json:"status"`
	Message   string `json:"message"`
}

// Status mirrors GET /api/backtest/status/{id}.
type Status struct {
	RequestID string  `json:"request_id"`
	Status    string  `json:"status"` // pending, running, completed, failed, cancelled
	Progress  float64 `json:"progress"`
	Message   string  `json:"message"`
	Error     string  `json:"error,omitempty"`
}

// Server-side job status values.
const (
	JobPending   = "pending"
	JobRunning   = "running"
	JobCompleted = "completed"
	JobFailed    = "failed"
	JobCancelled = "cancelled"
)

// Metrics holds the performance figures of a completed backtest.
type Metrics struct {
	TotalReturn      float64 `json:"total_return"`
	AnnualizedReturn float64 `json:"annualized_return"`
	Volatility       float64 `json:"volatility"`
	SharpeRatio      float64 `json:"sharpe_ratio"`
	SortinoRatio     float64 `json:"sortino_ratio"`
	CalmarRatio      float64 `json:"calmar_ratio"`

	MaxDrawdown float64 `json:"max_drawdown"`
	VaR95       float64 `json:"var_95"`
	CVaR95      float64 `json:"cvar_95"`

	WinRate      float64 `json:"win_rate"`
	ProfitFactor float64 `json:"profit_factor"`
	AvgWin       float64 `json:"avg_win"`
	AvgLoss      float64 `json:"avg_loss"`
	TotalTrades  int     `json:"total_trades"`

	BestMonth      float64 `json:"best_month"`
	WorstMonth     float64 `json:"worst_month"`
	PositiveMonths int     `json:"positive_months"`
	NegativeMonths int     `json:"negative_months"`
}

// BenchmarkComparison relates the portfolio to its benchmark.
type BenchmarkComparison struct {
	BenchmarkSymbol      string  `json:"benchmark_symbol"`
	BenchmarkTotalReturn float64 `json:"benchmark_total_return"`
	BenchmarkVolatility  float64 `json:"benchmark_volatility"`
	BenchmarkSharpeRatio float64 `json:"benchmark_sharpe_ratio"`
	BenchmarkMaxDrawdown float64 `json:"benchmark_max_drawdown"`
	Alpha                float64 `json:"alpha"`
	Beta                 float64 `json:"beta"`
	Correlation          float64 `json:"correlation"`
	TrackingError        float64 `json:"tracking_error"`
}

// EquityPoint is one sample of the portfolio value curve.
type EquityPoint struct {
	Date     time.Time `json:"date"`
	Value    float64   `json:"value"`
	Drawdown float64   `json:"drawdown"`
}

// MonthlyReturn is one month of the returns breakdown.
type MonthlyReturn struct {
	Year      int     `json:"year"`
	Month     int     `json:"month"`
	ReturnPct float64 `json:"return_pct"`
}

// Result mirrors GET /api/backtest/results/{id}.
type Result struct {
	RequestID string  `json:"request_id"`
	CreatedAt string  `json:"created_at,omitempty"`
	Config    Request `json:"config"`

	Metrics             Metrics              `json:"metrics"`
	BenchmarkComparison *BenchmarkComparison `json:"benchmark_comparison,omitempty"`

	EquityCurve    []EquityPoint   `json:"equity_curve"`
	MonthlyReturns []MonthlyReturn `json:"monthly_returns"`

	FinalPortfolioValue  float64 `json:"final_portfolio_value"`
	TotalFeesPaid        float64 `json:"total_fees_paid"`
	ExecutionTimeSeconds float64 `json:"execution_time_seconds"`

	Warnings []string `json:"warnings,omitempty"`
	Notes    []string `json:"notes,omitempty"`
}
