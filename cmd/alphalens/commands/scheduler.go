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

	"github.com/wonny/alphalens/internal/scheduler"
	"github.com/wonny/alphalens/internal/scheduler/jobs"
	"github.com/wonny/alphalens/pkg/config"
)

// schedulerCmd represents the scheduler command
var schedulerCmd = &cobra.Command{
	Use:   "scheduler",
	Short: "Run scheduled tear sheets",
	Long: `Starts the scheduler or manages its jobs.

Subcommands:
  start   - start the scheduler daemon
  list    - list registered jobs
  run     - run one job now
  status  - show schedules and next run times

Example:
  go run ./cmd/alphalens scheduler start --out ./tearsheets
  go run ./cmd/alphalens scheduler run tearsheet`,
}

var (
	schedulerStartCmd = &cobra.Command{
		Use:   "start",
		Short: "Start the scheduler",
		Long: `Registers every job and runs until interrupted.

Registered jobs:
- tearsheet: schedule.cron of the analysis config (tear sheets for schedule.tickers)
- price_sync: weekdays 18:00 (only with DATABASE_URL and a remote PRICE_SOURCE)
- cache_cleanup: every 5 minutes (only with CACHE_TTL > 0)`,
		RunE: runScheduler,
	}

	schedulerListCmd = &cobra.Command{
		Use:   "list",
		Short: "List registered jobs",
		RunE:  listJobs,
	}

	schedulerRunCmd = &cobra.Command{
		Use:   "run [job_name]",
		Short: "Run one job now",
		Args:  cobra.ExactArgs(1),
		RunE:  runJob,
	}

	schedulerStatusCmd = &cobra.Command{
		Use:   "status",
		Short: "Show job schedules",
		RunE:  showStatus,
	}

	schedulerOutDir string
)

func init() {
	rootCmd.AddCommand(schedulerCmd)
	schedulerCmd.AddCommand(schedulerStartCmd)
	schedulerCmd.AddCommand(schedulerListCmd)
	schedulerCmd.AddCommand(schedulerRunCmd)
	schedulerCmd.AddCommand(schedulerStatusCmd)

	schedulerCmd.PersistentFlags().StringVar(&schedulerOutDir, "out", "", "directory for <TICKER>.json tear sheets")
}

// initScheduler registers every job the current configuration supports
func initScheduler(d *deps) (*scheduler.Scheduler, error) {
	sched := scheduler.New(d.log)

	if err := sched.AddJob(jobs.NewTearSheetJob(d.runner, d.cache, d.analysisCfg.Schedule, schedulerOutDir, d.log)); err != nil {
		return nil, err
	}

	if d.db != nil && d.cfg.MarketData.Source != config.PriceSourcePostgres {
		store, err := d.store()
		if err != nil {
			return nil, err
		}
		syncer := marketdataSyncer(d, store)
		if err := sched.AddJob(jobs.NewPriceSyncJob(syncer, d.analysisCfg.Schedule, 7, d.log)); err != nil {
			return nil, err
		}
	}

	if d.cfg.MarketData.CacheTTL > 0 {
		if err := sched.AddJob(jobs.NewCacheCleanupJob(d.cache, d.log)); err != nil {
			return nil, err
		}
	}

	return sched, nil
}

func runScheduler(cmd *cobra.Command, args []string) error {
	d, err := newDeps()
	if err != nil {
		return err
	}
	defer d.close()

	sched, err := initScheduler(d)
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}

	// Start scheduler
	sched.Start()

	fmt.Println("\n✅ Scheduler started successfully")
	fmt.Println("\nRegistered jobs:")
	for _, jobName := range sched.GetAllJobs() {
		fmt.Printf("  - %s\n", jobName)
	}
	fmt.Println("\nPress Ctrl+C to stop")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	fmt.Println("\nShutting down scheduler...")
	sched.Stop()
	fmt.Println("Scheduler stopped")

	return nil
}

func listJobs(cmd *cobra.Command, args []string) error {
	d, err := newDeps()
	if err != nil {
		return err
	}
	defer d.close()

	sched, err := initScheduler(d)
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}

	fmt.Println("Registered jobs:")
	for _, jobName := range sched.GetAllJobs() {
		fmt.Printf("  - %s\n", jobName)
	}

	return nil
}

func runJob(cmd *cobra.Command, args []string) error {
	jobName := args[0]

	d, err := newDeps()
	if err != nil {
		return err
	}
	defer d.close()

	sched, err := initScheduler(d)
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Printf("Running job: %s\n", jobName)
	result, err := sched.RunJobSync(ctx, jobName)
	if err != nil {
		return err
	}

	fmt.Printf("✅ %s completed in %s (%d attempt(s))\n", jobName, result.Duration.Round(time.Millisecond), result.Attempts)
	return nil
}

func showStatus(cmd *cobra.Command, args []string) error {
	d, err := newDeps()
	if err != nil {
		return err
	}
	defer d.close()

	sched, err := initScheduler(d)
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}

	sched.Start()
	defer sched.Stop()

	stats := sched.GetJobStats()

	t := table.NewWriter()
	t.SetOutputMirror(cmd.OutOrStdout())
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Job", "Schedule", "Next Run"})
	for _, name := range sched.GetAllJobs() {
		s := stats[name]
		next := "-"
		if s.NextRun != nil {
			next = s.NextRun.Format("2006-01-02 15:04:05 MST")
		}
		t.AppendRow(table.Row{name, s.Schedule, next})
	}
	t.Render()

	fmt.Printf("\nTickers: %v (lookback %d days)\n", d.analysisCfg.Schedule.Tickers, d.analysisCfg.Schedule.LookbackDays)
	return nil
}
