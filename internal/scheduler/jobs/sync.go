package jobs

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/wonny/alphalens/internal/analysisconfig"
	"github.com/wonny/alphalens/internal/marketdata"
	"github.com/wonny/alphalens/pkg/logger"
)

// PriceSyncer copies a price range into the local store
type PriceSyncer interface {
	Sync(ctx context.Context, ticker string, start, end time.Time) (*marketdata.SyncResult, error)
}

// PriceSyncJob refreshes stored prices of the scheduled tickers
type PriceSyncJob struct {
	syncer   PriceSyncer
	schedule analysisconfig.Schedule
	days     int
	logger   *logger.Logger
	now      func() time.Time
}

// NewPriceSyncJob creates a job syncing the last days of each ticker
func NewPriceSyncJob(syncer PriceSyncer, schedule analysisconfig.Schedule, days int, log *logger.Logger) *PriceSyncJob {
	if days < 1 {
		days = 7
	}
	return &PriceSyncJob{
		syncer:   syncer,
		schedule: schedule,
		days:     days,
		logger:   log,
		now:      time.Now,
	}
}

// Name returns the job name
func (j *PriceSyncJob) Name() string {
	return "price_sync"
}

// Schedule returns the cron schedule (weekdays at 18:00)
func (j *PriceSyncJob) Schedule() string {
	return "0 0 18 * * 1-5"
}

// Run syncs every ticker and fails when any ticker failed
func (j *PriceSyncJob) Run(ctx context.Context) error {
	end := j.now()
	start := end.AddDate(0, 0, -j.days)

	var failed []error
	saved := 0
	for _, ticker := range j.schedule.Tickers {
		if err := ctx.Err(); err != nil {
			return err
		}

		result, err := j.syncer.Sync(ctx, ticker, start, end)
		if err != nil {
			failed = append(failed, fmt.Errorf("%s: %w", ticker, err))
			continue
		}
		saved += result.Saved
	}

	j.logger.WithFields(map[string]interface{}{
		"tickers": len(j.schedule.Tickers),
		"saved":   saved,
		"failed":  len(failed),
	}).Info("Price sync finished")

	return errors.Join(failed...)
}
