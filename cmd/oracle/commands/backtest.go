package commands

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/oraclewow/oracle-backend/internal/backtest"
	"github.com/oraclewow/oracle-backend/pkg/config"
	"github.com/oraclewow/oracle-backend/pkg/httputil"
	"github.com/oraclewow/oracle-backend/pkg/logger"
)

// backtestCmd represents the backtest command
var backtestCmd = &cobra.Command{
	Use:   "backtest",
	Short: "Portfolio backtesting",
	Long: `Runs portfolio backtests on the remote compute server.

A backtest validates:
- Strategy returns against buy-and-hold
- Risk metrics (Sharpe, Sortino, max drawdown)
- Win rate and trade count
- Benchmark comparison (alpha, beta)

Example:
  go run ./cmd/oracle backtest run --assets AAPL:60,MSFT:40 --from 2023-01-01 --to 2023-12-31
  go run ./cmd/oracle backtest run --assets SPY:100 --capital 50000 --strategy sma_crossover`,
}

var backtestRunCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a backtest",
	Long: `Submits a backtest to the compute server and polls until it finishes.

Flags:
  --assets      Allocations as SYMBOL:PCT pairs (required, must sum to 100)
  --from        Start date (YYYY-MM-DD, required)
  --to          End date (YYYY-MM-DD, default: today)
  --capital     Initial capital in USD (default: 100000)
  --strategy    buy_and_hold | sma_crossover | ema_crossover | rsi_oversold | bollinger_bands
  --rebalance   daily | weekly | monthly | quarterly | yearly
  --benchmark   Benchmark symbol (default: SPY)

Example:
  go run ./cmd/oracle backtest run --assets AAPL:60,MSFT:40 --from 2023-01-01`,
	RunE: runBacktest,
}

var (
	backtestAssets    string
	backtestFrom      string
	backtestTo        string
	backtestCapital   float64
	backtestStrategy  string
	backtestRebalance string
	backtestBenchmark string
)

func init() {
	rootCmd.AddCommand(backtestCmd)
	backtestCmd.AddCommand(backtestRunCmd)

	backtestRunCmd.Flags().StringVar(&backtestAssets, "assets", "", "allocations as SYMBOL:PCT pairs")
	backtestRunCmd.Flags().StringVar(&backtestFrom, "from", "", "start date (YYYY-MM-DD)")
	backtestRunCmd.Flags().StringVar(&backtestTo, "to", "", "end date (YYYY-MM-DD, default: today)")
	backtestRunCmd.Flags().Float64Var(&backtestCapital, "capital", 100_000, "initial capital (USD)")
	backtestRunCmd.Flags().StringVar(&backtestStrategy, "strategy", backtest.StrategyBuyAndHold, "trading strategy")
	backtestRunCmd.Flags().StringVar(&backtestRebalance, "rebalance", backtest.RebalanceQuarterly, "rebalancing frequency")
	backtestRunCmd.Flags().StringVar(&backtestBenchmark, "benchmark", "SPY", "benchmark symbol")

	backtestRunCmd.MarkFlagRequired("assets")
	backtestRunCmd.MarkFlagRequired("from")
}

func runBacktest(cmd *cobra.Command, args []string) error {
	fmt.Println("=== Oracle Backtest ===")

	assets, err := parseAssets(backtestAssets)
	if err != nil {
		return err
	}

	if _, err := time.Parse("2006-01-02", backtestFrom); err != nil {
		return fmt.Errorf("invalid start date: %w", err)
	}

	endDate := backtestTo
	if endDate == "" {
		endDate = time.Now().Format("2006-01-02")
	} else if _, err := time.Parse("2006-01-02", endDate); err != nil {
		return fmt.Errorf("invalid end date: %w", err)
	}

	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// 2. Initialize logger and client
	log := logger.New(cfg)
	client := backtest.New(cfg.Backtest, httputil.New(log), log)

	req := backtest.NewRequest(assets, backtestFrom, endDate)
	req.InitialCapital = backtestCapital
	req.StrategyType = backtestStrategy
	req.RebalanceFrequency = backtestRebalance
	req.Benchmark = backtestBenchmark

	fmt.Printf("\n📅 Period: %s ~ %s\n", req.StartDate, req.EndDate)
	fmt.Printf("💰 Initial Capital: $%s\n", formatNumber(int64(req.InitialCapital)))
	fmt.Printf("📈 Strategy: %s (rebalance %s)\n", req.StrategyType, req.RebalanceFrequency)
	for _, a := range assets {
		fmt.Printf("   %-6s %5.1f%%\n", a.Symbol, a.Allocation)
	}

	// Progress feedback while the server crunches
	client.OnState = func(_ string, state backtest.State, status *backtest.Status) {
		switch state {
		case backtest.StateSubmitting:
			fmt.Println("\n🚀 Submitting backtest...")
		case backtest.StatePending:
			if status != nil && status.Progress > 0 {
				fmt.Printf("⏳ %s: %.0f%% %s\n", status.Status, status.Progress, status.Message)
			}
		}
	}

	result, err := client.Run(cmd.Context(), req)
	if err != nil {
		return fmt.Errorf("backtest failed: %w", err)
	}

	printBacktestResult(result)
	return nil
}

// parseAssets turns "AAPL:60,MSFT:40" into allocations.
func parseAssets(raw string) ([]backtest.AssetAllocation, error) {
	if raw == "" {
		return nil, fmt.Errorf("--assets is required")
	}

	var assets []backtest.AssetAllocation
	total := 0.0

	for _, pair := range strings.Split(raw, ",") {
		parts := strings.SplitN(strings.TrimSpace(pair), ":", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("invalid asset %q (expected SYMBOL:PCT)", pair)
		}

		pct, err := strconv.ParseFloat(parts[1], 64)
		if err != nil {
			return nil, fmt.Errorf("invalid allocation for %s: %w", parts[0], err)
		}

		assets = append(assets, backtest.AssetAllocation{
			Symbol:     strings.ToUpper(parts[0]),
			Allocation: pct,
		})
		total += pct
	}

	if total < 99.9 || total > 100.1 {
		return nil, fmt.Errorf("allocations sum to %.1f%%, must be 100%%", total)
	}

	return assets, nil
}

func printBacktestResult(result *backtest.Result) {
	m := result.Metrics

	fmt.Println("\n✅ Backtest Completed")
	fmt.Println(strings.Repeat("=", 61))
	fmt.Println()

	// Summary
	fmt.Println("📊 Summary")
	fmt.Printf("Request ID: %s\n", result.RequestID)
	fmt.Printf("Duration:   %.2f seconds\n", result.ExecutionTimeSeconds)
	fmt.Println()

	// Performance
	fmt.Println("💰 Performance")
	fmt.Printf("Final Value:     $%s\n", formatNumber(int64(result.FinalPortfolioValue)))
	fmt.Printf("Total Return:    %+.2f%%\n", m.TotalReturn)
	fmt.Printf("Annual Return:   %+.2f%%\n", m.AnnualizedReturn)
	fmt.Printf("Volatility:      %.2f%%\n", m.Volatility)
	fmt.Printf("Total Fees:      $%.2f\n", result.TotalFeesPaid)
	fmt.Println()

	// Risk Metrics
	fmt.Println("📉 Risk Metrics")
	fmt.Printf("Sharpe Ratio:    %.2f", m.SharpeRatio)
	if m.SharpeRatio > 2.0 {
		fmt.Print(" 🌟 (Excellent)")
	} else if m.SharpeRatio > 1.0 {
		fmt.Print(" ✅ (Good)")
	} else if m.SharpeRatio > 0.5 {
		fmt.Print(" ⚠️  (Fair)")
	} else {
		fmt.Print(" ❌ (Poor)")
	}
	fmt.Println()

	fmt.Printf("Sortino Ratio:   %.2f\n", m.SortinoRatio)
	fmt.Printf("Max Drawdown:    %.2f%%", m.MaxDrawdown)
	if m.MaxDrawdown > -10 {
		fmt.Print(" 🌟 (Excellent)")
	} else if m.MaxDrawdown > -20 {
		fmt.Print(" ✅ (Good)")
	} else if m.MaxDrawdown > -30 {
		fmt.Print(" ⚠️  (Fair)")
	} else {
		fmt.Print(" ❌ (High)")
	}
	fmt.Println()
	fmt.Println()

	// Trading Metrics
	fmt.Println("💹 Trading Metrics")
	fmt.Printf("Total Trades:    %d\n", m.TotalTrades)
	fmt.Printf("Win Rate:        %.1f%%\n", m.WinRate)
	fmt.Printf("Profit Factor:   %.2f\n", m.ProfitFactor)
	fmt.Println()

	// Benchmark
	if bc := result.BenchmarkComparison; bc != nil {
		fmt.Println("🆚 Benchmark (" + bc.BenchmarkSymbol + ")")
		fmt.Printf("Benchmark Return: %+.2f%%\n", bc.BenchmarkTotalReturn)
		fmt.Printf("Alpha:            %+.2f\n", bc.Alpha)
		fmt.Printf("Beta:             %.2f\n", bc.Beta)
		fmt.Println()
	}

	for _, warning := range result.Warnings {
		fmt.Printf("⚠️  %s\n", warning)
	}
}
