package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wonny/alphalens/internal/analysisconfig"
)

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect the analysis configuration",
}

var configCheckCmd = &cobra.Command{
	Use:   "check [path]",
	Short: "Validate an analysis YAML and print its hash",
	Long: `Loads the analysis YAML strictly (unknown fields fail), validates it and
prints warnings and the config hash. Without a path the built-in defaults
are checked.

Example:
  go run ./cmd/alphalens config check config/analysis/default.yaml`,
	Args: cobra.MaximumNArgs(1),
	RunE: runConfigCheck,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configCheckCmd)
}

func runConfigCheck(cmd *cobra.Command, args []string) error {
	path := analysisConfigPath
	if len(args) == 1 {
		path = args[0]
	}

	cfg, err := analysisconfig.LoadOrDefault(path)
	if err != nil {
		fmt.Printf("❌ %v\n", err)
		return err
	}

	hash, err := analysisconfig.Hash(cfg)
	if err != nil {
		return err
	}

	source := path
	if source == "" {
		source = "(built-in defaults)"
	}

	PrintSection("Analysis config " + source)
	fmt.Printf("  Name      : %s v%s\n", cfg.Meta.Name, cfg.Meta.Version)
	fmt.Printf("  Periods   : %v\n", cfg.Labeling.Periods)
	fmt.Printf("  Quantiles : %d\n", cfg.Labeling.Quantiles)
	fmt.Printf("  IC window : %d\n", cfg.Information.ICWindow)
	fmt.Printf("  Lags      : %v\n", cfg.Turnover.Lags)
	fmt.Printf("  Sentiment : %s (seed %d, news %.2f, positive %.2f, smoothing %d)\n",
		cfg.Sentiment.Source, cfg.Sentiment.Seed, cfg.Sentiment.NewsProbability,
		cfg.Sentiment.PositiveBias, cfg.Sentiment.SmoothingWindow)
	fmt.Printf("  Schedule  : %q %v\n", cfg.Schedule.Cron, cfg.Schedule.Tickers)
	fmt.Printf("  Hash      : %s\n", hash)

	warnings := analysisconfig.Warn(cfg)
	for _, w := range warnings {
		fmt.Printf("⚠️  %s: %s\n", w.Code, w.Message)
	}
	if len(warnings) == 0 {
		fmt.Println("✅ Valid, no warnings")
	}
	return nil
}
