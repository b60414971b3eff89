package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	analysisConfigPath string
	verbose            bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "alphalens",
	Short: "Single-ticker sentiment factor tear sheets",
	Long: `alphalens CLI

Builds a news sentiment factor for one ticker, labels it against forward
returns and reports quantile returns, information coefficient and factor
rank autocorrelation.

Usage:
  go run ./cmd/alphalens [command]

Examples:
  go run ./cmd/alphalens analyze AAPL
  go run ./cmd/alphalens analyze AAPL --from 2022-01-01 --to 2024-12-31 --format json
  go run ./cmd/alphalens api --port 8090
  go run ./cmd/alphalens scheduler start
  go run ./cmd/alphalens prices sync AAPL MSFT
  go run ./cmd/alphalens config check config/analysis/default.yaml`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&analysisConfigPath, "analysis-config", "", "analysis YAML (default: $ANALYSIS_CONFIG or built-in defaults)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
}
