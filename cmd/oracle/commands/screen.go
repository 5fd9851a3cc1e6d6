package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/oraclewow/oracle-backend/internal/screener"
)

// screenCmd represents the screen command
var screenCmd = &cobra.Command{
	Use:   "screen",
	Short: "Run the market screening pipeline",
	Long: `Fetches quotes for a symbol universe, scores each one, and prints
the ranked results.

Quotes come from FMP first, falling back to Alpha Vantage and then
Yahoo Finance when a provider fails or is rate limited. Results are
cached, so a repeat within the cache TTL costs no API calls.

Flags:
  --symbols   Comma-separated symbols (default: configured universe)
  --limit     Maximum number of results (0 = all)

Example:
  go run ./cmd/oracle screen
  go run ./cmd/oracle screen --symbols AAPL,MSFT,NVDA --limit 5`,
	RunE: runScreen,
}

var (
	screenSymbols string
	screenLimit   int
)

func init() {
	rootCmd.AddCommand(screenCmd)

	screenCmd.Flags().StringVar(&screenSymbols, "symbols", "", "comma-separated symbols")
	screenCmd.Flags().IntVar(&screenLimit, "limit", 0, "maximum number of results")
}

func runScreen(cmd *cobra.Command, args []string) error {
	fmt.Println("=== Oracle Market Screener ===")

	deps, err := initScreening()
	if err != nil {
		return fmt.Errorf("init screening: %w", err)
	}
	defer deps.redis.Close()

	symbols := deps.cfg.Screening.TopSymbols
	if screenSymbols != "" {
		symbols = strings.Split(screenSymbols, ",")
	}

	limit := screenLimit
	if limit == 0 {
		limit = deps.cfg.Screening.MaxResults
	}

	fmt.Printf("\n🔎 Screening %d symbols (limit %d)...\n\n", len(symbols), limit)

	results, err := deps.aggregator.Screen(cmd.Context(), symbols, limit)
	if err != nil {
		return fmt.Errorf("screening failed: %w", err)
	}

	printScreenResults(results)
	return nil
}

func printScreenResults(results []screener.ScoredQuote) {
	if len(results) == 0 {
		fmt.Println("❌ No symbols survived screening (all providers failed)")
		return
	}

	fmt.Println("✅ Screening Completed")
	fmt.Println(strings.Repeat("=", 84))
	fmt.Printf("%-4s %-6s %-22s %10s %8s %8s %6s %6s %-4s\n",
		"#", "SYM", "NAME", "PRICE", "CHG%", "VOL", "PE", "SCORE", "REC")
	fmt.Println(strings.Repeat("-", 84))

	for i, r := range results {
		rec := string(r.Recommendation)
		switch r.Recommendation {
		case screener.Buy:
			rec = "🟢 " + rec
		case screener.Hold:
			rec = "🟡 " + rec
		case screener.Sell:
			rec = "🔴 " + rec
		}

		name := r.Name
		if len(name) > 22 {
			name = name[:19] + "..."
		}

		fmt.Printf("%-4d %-6s %-22s %10.2f %+7.2f%% %8s %6s %6d %s\n",
			i+1, r.Symbol, name, r.Price, r.ChangePercent,
			screener.FormatVolume(r.Volume), screener.FormatPE(r.PE), r.Score, rec)
	}

	fmt.Println(strings.Repeat("=", 84))
	fmt.Printf("Top pick: %s (score %d, %s)\n", results[0].Symbol, results[0].Score, results[0].Recommendation)
}
