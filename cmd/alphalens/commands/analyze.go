package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/wonny/alphalens/internal/analysis"
	"github.com/wonny/alphalens/internal/report"
)

// analyzeCmd represents the analyze command
var analyzeCmd = &cobra.Command{
	Use:   "analyze [ticker]",
	Short: "Print the tear sheet of one ticker",
	Long: `Fetches prices, builds the sentiment factor and prints the tear sheet.

The default range is the last five years ending today.

Example:
  go run ./cmd/alphalens analyze AAPL
  go run ./cmd/alphalens analyze 005930 --from 2023-01-01 --format json`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

var (
	analyzeFrom   string
	analyzeTo     string
	analyzeFormat string
	analyzeTail   int
)

func init() {
	rootCmd.AddCommand(analyzeCmd)

	// Flags
	analyzeCmd.Flags().StringVar(&analyzeFrom, "from", "", "start date YYYY-MM-DD (default: 5 years before --to)")
	analyzeCmd.Flags().StringVar(&analyzeTo, "to", "", "end date YYYY-MM-DD (default: today)")
	analyzeCmd.Flags().StringVar(&analyzeFormat, "format", report.FormatText, "output format (text|json)")
	analyzeCmd.Flags().IntVar(&analyzeTail, "tail", report.DefaultTail, "trailing IC moving average rows in text output")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	start, err := parseDateFlag("from", analyzeFrom)
	if err != nil {
		return err
	}
	end, err := parseDateFlag("to", analyzeTo)
	if err != nil {
		return err
	}

	d, err := newDeps()
	if err != nil {
		return err
	}
	defer d.close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ticker := args[0]
	sheet, err := d.runner.Run(ctx, analysis.Request{Ticker: ticker, Start: start, End: end})
	if err != nil {
		fmt.Fprintln(os.Stderr, userMessage(ticker, err))
		return err
	}

	return report.Write(cmd.OutOrStdout(), sheet, analyzeFormat, report.Options{Tail: analyzeTail})
}
