package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/alphalens/internal/analysis"
	"github.com/wonny/alphalens/internal/analysisconfig"
	"github.com/wonny/alphalens/internal/marketdata"
	"github.com/wonny/alphalens/pkg/logger"
)

var fixedNow = time.Date(2025, 6, 30, 18, 30, 0, 0, time.UTC)

type fakeRunner struct {
	errs map[string]error
	reqs []analysis.Request
}

func (f *fakeRunner) Run(_ context.Context, req analysis.Request) (*analysis.TearSheet, error) {
	f.reqs = append(f.reqs, req)
	if err := f.errs[req.Ticker]; err != nil {
		return nil, err
	}
	return &analysis.TearSheet{Ticker: req.Ticker, Observations: 10}, nil
}

type fakeInvalidator struct {
	tickers []string
}

func (f *fakeInvalidator) InvalidateTicker(_ context.Context, ticker string) (int, error) {
	f.tickers = append(f.tickers, ticker)
	return 1, nil
}

type fakeCleaner struct{ n int }

func (f *fakeCleaner) CleanStale() int { return f.n }

type fakeSyncer struct {
	fail  string
	calls []string
}

func (f *fakeSyncer) Sync(_ context.Context, ticker string, start, end time.Time) (*marketdata.SyncResult, error) {
	f.calls = append(f.calls, ticker)
	if ticker == f.fail {
		return nil, errors.New("source down")
	}
	return &marketdata.SyncResult{Ticker: ticker, Fetched: 5, Saved: 5}, nil
}

func schedule(tickers ...string) analysisconfig.Schedule {
	return analysisconfig.Schedule{Cron: "0 30 18 * * 1-5", Tickers: tickers, LookbackDays: 365}
}

func TestTearSheetJob(t *testing.T) {
	dir := t.TempDir()
	runner := &fakeRunner{}
	cache := &fakeInvalidator{}

	job := NewTearSheetJob(runner, cache, schedule("AAPL", "MSFT"), dir, logger.Nop())
	job.now = func() time.Time { return fixedNow }

	assert.Equal(t, "tearsheet", job.Name())
	assert.Equal(t, "0 30 18 * * 1-5", job.Schedule())

	require.NoError(t, job.Run(context.Background()))

	assert.Equal(t, []string{"AAPL", "MSFT"}, cache.tickers)
	require.Len(t, runner.reqs, 2)
	assert.Equal(t, fixedNow, runner.reqs[0].End)
	assert.Equal(t, fixedNow.AddDate(0, 0, -365), runner.reqs[0].Start)

	sheet, ok := job.Latest("MSFT")
	require.True(t, ok)
	assert.Equal(t, 10, sheet.Observations)

	data, err := os.ReadFile(filepath.Join(dir, "AAPL.json"))
	require.NoError(t, err)
	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "AAPL", decoded["ticker"])
}

func TestTearSheetJob_NormalizesTickers(t *testing.T) {
	runner := &fakeRunner{}
	cache := &fakeInvalidator{}

	job := NewTearSheetJob(runner, cache, schedule("aapl", " msft "), "", logger.Nop())
	require.NoError(t, job.Run(context.Background()))

	assert.Equal(t, []string{"AAPL", "MSFT"}, cache.tickers)
	require.Len(t, runner.reqs, 2)
	assert.Equal(t, "AAPL", runner.reqs[0].Ticker)

	for _, ticker := range []string{"aapl", "AAPL", "msft"} {
		_, ok := job.Latest(ticker)
		assert.True(t, ok, ticker)
	}
}

func TestTearSheetJob_SkipsAndFailures(t *testing.T) {
	runner := &fakeRunner{errs: map[string]error{
		"NODATA": analysis.ErrNoPriceData,
		"NONEWS": analysis.ErrNoFactor,
		"BROKEN": errors.New("timeout"),
	}}

	job := NewTearSheetJob(runner, nil, schedule("NODATA", "AAPL", "NONEWS", "BROKEN"), "", logger.Nop())
	err := job.Run(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 4 tickers failed")
	assert.Contains(t, err.Error(), "BROKEN: timeout")
	assert.Len(t, runner.reqs, 4)

	_, ok := job.Latest("AAPL")
	assert.True(t, ok)
	_, ok = job.Latest("NODATA")
	assert.False(t, ok)
}

func TestTearSheetJob_Cancelled(t *testing.T) {
	runner := &fakeRunner{}
	job := NewTearSheetJob(runner, nil, schedule("AAPL"), "", logger.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, job.Run(ctx), context.Canceled)
	assert.Empty(t, runner.reqs)
}

func TestCacheCleanupJob(t *testing.T) {
	job := NewCacheCleanupJob(&fakeCleaner{n: 3}, logger.Nop())

	assert.Equal(t, "cache_cleanup", job.Name())
	assert.Equal(t, "0 */5 * * * *", job.Schedule())
	assert.NoError(t, job.Run(context.Background()))
}

func TestPriceSyncJob(t *testing.T) {
	syncer := &fakeSyncer{fail: "MSFT"}
	job := NewPriceSyncJob(syncer, schedule("AAPL", "MSFT", "NVDA"), 0, logger.Nop())

	assert.Equal(t, "price_sync", job.Name())
	assert.Equal(t, 7, job.days)

	err := job.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "MSFT: source down")
	assert.Equal(t, []string{"AAPL", "MSFT", "NVDA"}, syncer.calls)

	syncer.fail = ""
	assert.NoError(t, job.Run(context.Background()))
}

func TestSchedulesParse(t *testing.T) {
	for _, spec := range []string{
		NewCacheCleanupJob(&fakeCleaner{}, logger.Nop()).Schedule(),
		NewPriceSyncJob(&fakeSyncer{}, schedule(), 1, logger.Nop()).Schedule(),
	} {
		_, err := analysisconfig.CronParser.Parse(spec)
		assert.NoError(t, err, spec)
	}
}
