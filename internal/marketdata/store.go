package marketdata

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wonny/alphalens/internal/contracts"
	"github.com/wonny/alphalens/pkg/logger"
)

// PostgresStore reads and writes daily prices in data.daily_prices
// ⭐ SSOT: 가격 DB 접근은 이 저장소에서만
type PostgresStore struct {
	pool   *pgxpool.Pool
	logger *logger.Logger
}

// NewPostgresStore creates a price store on pool
func NewPostgresStore(pool *pgxpool.Pool, log *logger.Logger) *PostgresStore {
	return &PostgresStore{pool: pool, logger: log}
}

// TickerSummary describes the stored history of one ticker
type TickerSummary struct {
	Ticker    string    `json:"ticker"`
	Bars      int64     `json:"bars"`
	FirstDate time.Time `json:"first_date"`
	LastDate  time.Time `json:"last_date"`
	Source    string    `json:"source"`
	UpdatedAt time.Time `json:"updated_at"`
}

// FetchPrices returns the stored bars of ticker within [start, end].
// When some rows carry an adjusted close the others fall back to close.
func (s *PostgresStore) FetchPrices(ctx context.Context, ticker string, start, end time.Time) (contracts.PriceSeries, error) {
	query := `
		SELECT trade_date, open, high, low, close, adj_close, volume
		FROM data.daily_prices
		WHERE ticker = $1 AND trade_date BETWEEN $2 AND $3
		ORDER BY trade_date`

	rows, err := s.pool.Query(ctx, query, ticker, contracts.Day(start), contracts.Day(end))
	if err != nil {
		return contracts.PriceSeries{}, fmt.Errorf("query prices: %w", err)
	}
	defer rows.Close()

	series := contracts.PriceSeries{Ticker: ticker}
	var missingAdj []int
	for rows.Next() {
		var b contracts.PriceBar
		var adj *float64
		if err := rows.Scan(&b.Date, &b.Open, &b.High, &b.Low, &b.Close, &adj, &b.Volume); err != nil {
			return contracts.PriceSeries{}, fmt.Errorf("scan price row: %w", err)
		}
		if adj != nil {
			b.AdjClose = *adj
			series.HasAdjClose = true
		} else {
			missingAdj = append(missingAdj, len(series.Bars))
		}
		series.Bars = append(series.Bars, b)
	}
	if err := rows.Err(); err != nil {
		return contracts.PriceSeries{}, fmt.Errorf("iterate price rows: %w", err)
	}

	if series.HasAdjClose {
		for _, i := range missingAdj {
			series.Bars[i].AdjClose = series.Bars[i].Close
		}
	}
	series.HasClose = len(series.Bars) > 0

	return series.Normalize(), nil
}

// SavePrices upserts every bar of series tagged with source
func (s *PostgresStore) SavePrices(ctx context.Context, series contracts.PriceSeries, source string) (int, error) {
	if series.Empty() {
		return 0, nil
	}

	query := `
		INSERT INTO data.daily_prices
			(ticker, trade_date, open, high, low, close, adj_close, volume, source, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, now())
		ON CONFLICT (ticker, trade_date) DO UPDATE SET
			open = EXCLUDED.open,
			high = EXCLUDED.high,
			low = EXCLUDED.low,
			close = EXCLUDED.close,
			adj_close = EXCLUDED.adj_close,
			volume = EXCLUDED.volume,
			source = EXCLUDED.source,
			updated_at = now()`

	batch := &pgx.Batch{}
	for _, b := range series.Bars {
		var adj *float64
		if series.HasAdjClose {
			v := b.AdjClose
			adj = &v
		}
		batch.Queue(query, series.Ticker, contracts.Day(b.Date),
			b.Open, b.High, b.Low, b.Close, adj, b.Volume, source)
	}

	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()

	for range series.Bars {
		if _, err := br.Exec(); err != nil {
			return 0, fmt.Errorf("upsert price row: %w", err)
		}
	}

	return series.Len(), nil
}

// DeleteTicker removes every stored bar of ticker
func (s *PostgresStore) DeleteTicker(ctx context.Context, ticker string) (int64, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM data.daily_prices WHERE ticker = $1`, ticker)
	if err != nil {
		return 0, fmt.Errorf("delete prices: %w", err)
	}
	return tag.RowsAffected(), nil
}

// Tickers summarises the stored history per ticker
func (s *PostgresStore) Tickers(ctx context.Context) ([]TickerSummary, error) {
	query := `
		SELECT ticker, count(*), min(trade_date), max(trade_date),
		       max(source), max(updated_at)
		FROM data.daily_prices
		GROUP BY ticker
		ORDER BY ticker`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query tickers: %w", err)
	}
	defer rows.Close()

	var out []TickerSummary
	for rows.Next() {
		var t TickerSummary
		if err := rows.Scan(&t.Ticker, &t.Bars, &t.FirstDate, &t.LastDate, &t.Source, &t.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan ticker summary: %w", err)
		}
		out = append(out, t)
	}

	return out, rows.Err()
}
