package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	configFile string
	env        string
	verbose    bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "oracle",
	Short: "Oracle Wow - portfolio dashboard backend",
	Long: `Oracle Wow Unified CLI

Market screening and portfolio backtesting backend.
Aggregates FMP, Alpha Vantage and Yahoo Finance behind per-provider
rate gates and drives backtest jobs on the remote compute server.

Usage:
  go run ./cmd/oracle [command]

Examples:
  go run ./cmd/oracle api
  go run ./cmd/oracle screen --symbols AAPL,MSFT,NVDA
  go run ./cmd/oracle backtest run --assets AAPL:60,MSFT:40 --from 2023-01-01
  go run ./cmd/oracle scheduler start`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default is .env)")
	rootCmd.PersistentFlags().StringVar(&env, "env", "development", "environment (development|staging|production)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
