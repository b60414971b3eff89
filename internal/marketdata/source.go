package marketdata

import (
	"context"
	"fmt"
	"time"

	"github.com/wonny/alphalens/internal/contracts"
	"github.com/wonny/alphalens/internal/external/naver"
	"github.com/wonny/alphalens/internal/external/yahoo"
	"github.com/wonny/alphalens/pkg/config"
	"github.com/wonny/alphalens/pkg/database"
	"github.com/wonny/alphalens/pkg/httputil"
	"github.com/wonny/alphalens/pkg/logger"
)

// NewSource builds the price source selected by PRICE_SOURCE. db is only
// needed for the postgres source.
func NewSource(cfg *config.Config, httpClient *httputil.Client, db *database.DB, log *logger.Logger) (contracts.PriceSource, error) {
	switch cfg.MarketData.Source {
	case config.PriceSourceYahoo:
		return yahoo.NewClient(log), nil
	case config.PriceSourceNaver:
		return naver.NewClient(httpClient, log, cfg.MarketData.NaverBaseURL, cfg.MarketData.NaverNewsBaseURL), nil
	case config.PriceSourcePostgres:
		if db == nil {
			return nil, fmt.Errorf("postgres price source: %w", database.ErrNotConfigured)
		}
		return NewPostgresStore(db.Pool, log), nil
	default:
		return nil, fmt.Errorf("unknown price source %q", cfg.MarketData.Source)
	}
}

// SyncResult reports one Sync run
type SyncResult struct {
	Ticker   string        `json:"ticker"`
	Fetched  int           `json:"fetched"`
	Saved    int           `json:"saved"`
	Duration time.Duration `json:"duration"`
}

// Syncer copies prices from an upstream source into the Postgres store
type Syncer struct {
	source     contracts.PriceSource
	sourceName string
	store      *PostgresStore
	logger     *logger.Logger
}

// NewSyncer creates a syncer tagging rows with sourceName
func NewSyncer(source contracts.PriceSource, sourceName string, store *PostgresStore, log *logger.Logger) *Syncer {
	return &Syncer{source: source, sourceName: sourceName, store: store, logger: log}
}

// Sync fetches ticker over [start, end] and upserts it
func (s *Syncer) Sync(ctx context.Context, ticker string, start, end time.Time) (*SyncResult, error) {
	began := time.Now()
	ticker = contracts.NormalizeTicker(ticker)

	series, err := s.source.FetchPrices(ctx, ticker, start, end)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", ticker, err)
	}
	series.Ticker = ticker

	saved, err := s.store.SavePrices(ctx, series, s.sourceName)
	if err != nil {
		return nil, fmt.Errorf("save %s: %w", ticker, err)
	}

	result := &SyncResult{
		Ticker:   ticker,
		Fetched:  series.Len(),
		Saved:    saved,
		Duration: time.Since(began),
	}

	s.logger.WithFields(map[string]interface{}{
		"ticker":   ticker,
		"source":   s.sourceName,
		"fetched":  result.Fetched,
		"saved":    result.Saved,
		"duration": result.Duration,
	}).Info("Synced prices")

	return result, nil
}
