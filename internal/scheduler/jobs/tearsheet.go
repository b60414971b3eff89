package jobs

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/wonny/alphalens/internal/analysis"
	"github.com/wonny/alphalens/internal/analysisconfig"
	"github.com/wonny/alphalens/internal/contracts"
	"github.com/wonny/alphalens/internal/report"
	"github.com/wonny/alphalens/pkg/logger"
)

// TearSheetRunner produces tear sheets
type TearSheetRunner interface {
	Run(ctx context.Context, req analysis.Request) (*analysis.TearSheet, error)
}

// TickerInvalidator drops cached price ranges of a ticker
type TickerInvalidator interface {
	InvalidateTicker(ctx context.Context, ticker string) (int, error)
}

// TearSheetJob re-runs the analysis for the configured tickers
// ⭐ SSOT: 정기 티어시트 생성은 이 Job에서만
type TearSheetJob struct {
	runner    TearSheetRunner
	cache     TickerInvalidator // optional
	schedule  analysisconfig.Schedule
	outputDir string // optional, one <TICKER>.json per run
	logger    *logger.Logger
	now       func() time.Time

	mu     sync.RWMutex
	latest map[string]*analysis.TearSheet
}

// NewTearSheetJob creates a new tear sheet job. cache and outputDir may be
// nil and empty.
func NewTearSheetJob(runner TearSheetRunner, cache TickerInvalidator, schedule analysisconfig.Schedule, outputDir string, log *logger.Logger) *TearSheetJob {
	return &TearSheetJob{
		runner:    runner,
		cache:     cache,
		schedule:  schedule,
		outputDir: outputDir,
		logger:    log,
		now:       time.Now,
		latest:    make(map[string]*analysis.TearSheet),
	}
}

// Name returns the job name
func (j *TearSheetJob) Name() string {
	return "tearsheet"
}

// Schedule returns the configured cron schedule
func (j *TearSheetJob) Schedule() string {
	return j.schedule.Cron
}

// Run refreshes every ticker. Tickers without prices or factor data are
// skipped; any other failure fails the run after all tickers were tried.
func (j *TearSheetJob) Run(ctx context.Context) error {
	end := j.now()
	start := end.AddDate(0, 0, -j.schedule.LookbackDays)

	j.logger.WithFields(map[string]interface{}{
		"tickers": len(j.schedule.Tickers),
		"start":   start.Format("2006-01-02"),
		"end":     end.Format("2006-01-02"),
	}).Info("Starting scheduled tear sheets")

	var failed []error
	done, skipped := 0, 0
	for _, ticker := range j.schedule.Tickers {
		if err := ctx.Err(); err != nil {
			return err
		}
		ticker = contracts.NormalizeTicker(ticker)

		log := j.logger.WithField("ticker", ticker)

		if j.cache != nil {
			if _, err := j.cache.InvalidateTicker(ctx, ticker); err != nil {
				log.WithError(err).Warn("Failed to invalidate price cache")
			}
		}

		sheet, err := j.runner.Run(ctx, analysis.Request{Ticker: ticker, Start: start, End: end})
		switch {
		case errors.Is(err, analysis.ErrNoPriceData), errors.Is(err, analysis.ErrNoFactor):
			log.WithError(err).Warn("Skipping ticker")
			skipped++
			continue
		case err != nil:
			log.WithError(err).Error("Tear sheet failed")
			failed = append(failed, fmt.Errorf("%s: %w", ticker, err))
			continue
		}

		j.mu.Lock()
		j.latest[sheet.Ticker] = sheet
		j.mu.Unlock()

		if err := j.write(sheet); err != nil {
			failed = append(failed, fmt.Errorf("%s: %w", ticker, err))
			continue
		}
		done++
	}

	j.logger.WithFields(map[string]interface{}{
		"done":    done,
		"skipped": skipped,
		"failed":  len(failed),
	}).Info("Scheduled tear sheets finished")

	if len(failed) > 0 {
		return fmt.Errorf("%d of %d tickers failed: %w", len(failed), len(j.schedule.Tickers), errors.Join(failed...))
	}
	return nil
}

// Latest returns the most recent tear sheet of ticker
func (j *TearSheetJob) Latest(ticker string) (*analysis.TearSheet, bool) {
	j.mu.RLock()
	defer j.mu.RUnlock()

	sheet, ok := j.latest[contracts.NormalizeTicker(ticker)]
	return sheet, ok
}

func (j *TearSheetJob) write(sheet *analysis.TearSheet) error {
	if j.outputDir == "" {
		return nil
	}
	if err := os.MkdirAll(j.outputDir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	path := filepath.Join(j.outputDir, sheet.Ticker+".json")
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	if err := report.WriteJSON(f, sheet); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}
