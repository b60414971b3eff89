package analysis

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/wonny/alphalens/internal/analysisconfig"
	"github.com/wonny/alphalens/internal/contracts"
	"github.com/wonny/alphalens/internal/factor"
	"github.com/wonny/alphalens/pkg/logger"
)

// DefaultLookback is the range used when a request has no start date
const DefaultLookback = 5 * 365 * 24 * time.Hour

// FactorSource builds a factor series for ticker on the given dates.
// ok is false when no factor could be produced.
type FactorSource interface {
	Factor(ctx context.Context, ticker string, dates []time.Time) (series contracts.FactorSeries, ok bool, err error)
}

// Request selects the ticker and date range of one run
type Request struct {
	Ticker string
	Start  time.Time // zero: End - 5 years
	End    time.Time // zero: today
}

// Runner runs prices -> factor -> label -> evaluators for one ticker
// ⭐ SSOT: 티어시트 파이프라인 조율은 여기서만
type Runner struct {
	prices  contracts.PriceSource
	factors FactorSource
	cfg     *analysisconfig.Config
	hash    string
	logger  *logger.Logger
	now     func() time.Time
}

// NewRunner creates a runner. cfg is validated and hashed once.
func NewRunner(prices contracts.PriceSource, factors FactorSource, cfg *analysisconfig.Config, log *logger.Logger) (*Runner, error) {
	if cfg == nil {
		cfg = analysisconfig.Default()
	}
	if err := analysisconfig.Validate(cfg); err != nil {
		return nil, fmt.Errorf("analysis config: %w", err)
	}
	hash, err := analysisconfig.Hash(cfg)
	if err != nil {
		return nil, fmt.Errorf("hash analysis config: %w", err)
	}

	return &Runner{
		prices:  prices,
		factors: factors,
		cfg:     cfg,
		hash:    hash,
		logger:  log,
		now:     time.Now,
	}, nil
}

// Config returns the analysis configuration in use
func (r *Runner) Config() *analysisconfig.Config {
	return r.cfg
}

// Resolve fills the default range and normalizes the ticker
func (r *Runner) Resolve(req Request) (Request, error) {
	req.Ticker = contracts.NormalizeTicker(req.Ticker)
	if req.Ticker == "" {
		return req, ErrTickerRequired
	}

	if req.End.IsZero() {
		req.End = r.now()
	}
	req.End = contracts.Day(req.End)
	if req.Start.IsZero() {
		req.Start = req.End.Add(-DefaultLookback)
	}
	req.Start = contracts.Day(req.Start)

	if req.Start.After(req.End) {
		return req, fmt.Errorf("%w: %s > %s", ErrInvalidRange,
			req.Start.Format("2006-01-02"), req.End.Format("2006-01-02"))
	}
	return req, nil
}

// Run produces the tear sheet for req.
//
// No price bars yields ErrNoPriceData and no factor yields ErrNoFactor. A
// labeled dataset with no rows is not an error: the tear sheet comes back
// with Empty set.
func (r *Runner) Run(ctx context.Context, req Request) (*TearSheet, error) {
	startTime := time.Now()

	req, err := r.Resolve(req)
	if err != nil {
		return nil, err
	}

	log := r.logger.WithFields(map[string]interface{}{
		"ticker": req.Ticker,
		"start":  req.Start.Format("2006-01-02"),
		"end":    req.End.Format("2006-01-02"),
	})
	log.Info("Starting tear sheet run")

	// 1. Prices
	prices, err := r.prices.FetchPrices(ctx, req.Ticker, req.Start, req.End)
	if err != nil {
		return nil, fmt.Errorf("fetch prices: %w", err)
	}
	if prices.Empty() {
		return nil, fmt.Errorf("%w: %s", ErrNoPriceData, req.Ticker)
	}
	prices = prices.Normalize()

	// 2. Factor
	series, ok, err := r.factors.Factor(ctx, req.Ticker, prices.Dates())
	if err != nil {
		return nil, fmt.Errorf("build factor: %w", err)
	}
	if !ok || series.Empty() {
		return nil, fmt.Errorf("%w: %s", ErrNoFactor, req.Ticker)
	}

	// 3. Label
	ds, diags, err := factor.Label(series, prices, r.cfg.LabelOptions())
	if err != nil {
		return nil, fmt.Errorf("label: %w", err)
	}
	for _, d := range diags {
		log.WithFields(map[string]interface{}{
			"code":  d.Code,
			"level": d.Level,
		}).Warn(d.Message)
	}

	sheet := newTearSheet(req, r.cfg, r.hash, r.now())
	sheet.PriceBars = prices.Len()
	sheet.FactorName = series.Name
	sheet.Diagnostics = append(sheet.Diagnostics, diags...)
	sheet.Observations = ds.Len()

	if ds.Empty() {
		sheet.Empty = true
		sheet.Message = EmptyDatasetMessage
		log.Warn(EmptyDatasetMessage)
		return sheet, nil
	}

	// 4. Evaluators (read-only on ds)
	var (
		returns *factor.ReturnsReport
		info    *factor.InformationReport
		turn    *factor.TurnoverReport
	)
	periods := ds.Periods()

	var g errgroup.Group
	g.Go(func() error {
		var err error
		returns, err = factor.EvaluateReturns(ds, periods)
		return err
	})
	g.Go(func() error {
		var err error
		info, err = factor.EvaluateInformation(ds, periods)
		return err
	})
	g.Go(func() error {
		var err error
		turn, err = factor.EvaluateTurnover(ds, r.cfg.Turnover.Lags)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("evaluate: %w", err)
	}

	sheet.fill(ds, returns, info, turn, r.cfg.Information.ICWindow)

	log.WithFields(map[string]interface{}{
		"observations": sheet.Observations,
		"diagnostics":  len(diags),
		"duration":     time.Since(startTime).String(),
	}).Info("Tear sheet completed")

	return sheet, nil
}
