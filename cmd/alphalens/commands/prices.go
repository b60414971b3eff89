package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/wonny/alphalens/internal/analysis"
	"github.com/wonny/alphalens/internal/marketdata"
	"github.com/wonny/alphalens/pkg/config"
)

// pricesCmd represents the prices command
var pricesCmd = &cobra.Command{
	Use:   "prices",
	Short: "Manage the Postgres price store",
	Long: `Copies price history from the remote source into Postgres and shows
what is stored. Requires DATABASE_URL.

Subcommands:
  migrate - create the price table
  sync    - fetch tickers from PRICE_SOURCE and upsert them
  status  - list stored tickers

Example:
  go run ./cmd/alphalens prices migrate
  go run ./cmd/alphalens prices sync AAPL MSFT --from 2020-01-01
  PRICE_SOURCE=postgres go run ./cmd/alphalens analyze AAPL`,
}

var (
	pricesMigrateCmd = &cobra.Command{
		Use:   "migrate",
		Short: "Create the price table",
		RunE:  runPricesMigrate,
	}

	pricesSyncCmd = &cobra.Command{
		Use:   "sync [ticker...]",
		Short: "Fetch and store tickers",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runPricesSync,
	}

	pricesStatusCmd = &cobra.Command{
		Use:   "status",
		Short: "List stored tickers",
		RunE:  runPricesStatus,
	}

	pricesFrom string
	pricesTo   string
)

func init() {
	rootCmd.AddCommand(pricesCmd)
	pricesCmd.AddCommand(pricesMigrateCmd)
	pricesCmd.AddCommand(pricesSyncCmd)
	pricesCmd.AddCommand(pricesStatusCmd)

	pricesSyncCmd.Flags().StringVar(&pricesFrom, "from", "", "start date YYYY-MM-DD (default: 5 years before --to)")
	pricesSyncCmd.Flags().StringVar(&pricesTo, "to", "", "end date YYYY-MM-DD (default: today)")
}

func marketdataSyncer(d *deps, store *marketdata.PostgresStore) *marketdata.Syncer {
	return marketdata.NewSyncer(d.source, d.cfg.MarketData.Source, store, d.log)
}

func runPricesMigrate(cmd *cobra.Command, args []string) error {
	d, err := newDeps()
	if err != nil {
		return err
	}
	defer d.close()

	if _, err := d.store(); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := d.db.Migrate(ctx); err != nil {
		return err
	}
	fmt.Println("✅ Price schema ready")
	return nil
}

func runPricesSync(cmd *cobra.Command, args []string) error {
	start, err := parseDateFlag("from", pricesFrom)
	if err != nil {
		return err
	}
	end, err := parseDateFlag("to", pricesTo)
	if err != nil {
		return err
	}
	if end.IsZero() {
		end = time.Now()
	}
	if start.IsZero() {
		start = end.Add(-analysis.DefaultLookback)
	}

	d, err := newDeps()
	if err != nil {
		return err
	}
	defer d.close()

	if d.cfg.MarketData.Source == config.PriceSourcePostgres {
		return fmt.Errorf("PRICE_SOURCE=postgres cannot sync into itself; use yahoo or naver")
	}
	store, err := d.store()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := d.db.Migrate(ctx); err != nil {
		return err
	}

	PrintSection(fmt.Sprintf("Price sync (%s) %s ~ %s", d.cfg.MarketData.Source, start.Format(dateLayout), end.Format(dateLayout)))

	syncer := marketdataSyncer(d, store)
	failed := 0
	for i, ticker := range args {
		result, err := syncer.Sync(ctx, ticker, start, end)
		if err != nil {
			failed++
			fmt.Printf("[%d/%d] %s: ❌ %v\n", i+1, len(args), ticker, err)
			continue
		}
		fmt.Printf("[%d/%d] %s: fetched %d, saved %d (%s)\n",
			i+1, len(args), result.Ticker, result.Fetched, result.Saved, result.Duration.Round(time.Millisecond))
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d tickers failed", failed, len(args))
	}
	return nil
}

func runPricesStatus(cmd *cobra.Command, args []string) error {
	d, err := newDeps()
	if err != nil {
		return err
	}
	defer d.close()

	store, err := d.store()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	tickers, err := store.Tickers(ctx)
	if err != nil {
		return err
	}

	t := table.NewWriter()
	t.SetOutputMirror(cmd.OutOrStdout())
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Ticker", "Bars", "First", "Last", "Source", "Updated"})
	for _, s := range tickers {
		t.AppendRow(table.Row{
			s.Ticker,
			s.Bars,
			s.FirstDate.Format(dateLayout),
			s.LastDate.Format(dateLayout),
			s.Source,
			s.UpdatedAt.Format("2006-01-02 15:04"),
		})
	}
	t.Render()
	return nil
}
