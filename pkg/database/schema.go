package database

import (
	"context"
	"fmt"
)

// priceSchema creates the daily price table read by the postgres price store.
// adj_close is nullable: sources without adjusted prices leave it empty.
const priceSchema = `
CREATE SCHEMA IF NOT EXISTS data;

CREATE TABLE IF NOT EXISTS data.daily_prices (
	ticker     TEXT             NOT NULL,
	trade_date DATE             NOT NULL,
	open       DOUBLE PRECISION NOT NULL,
	high       DOUBLE PRECISION NOT NULL,
	low        DOUBLE PRECISION NOT NULL,
	close      DOUBLE PRECISION NOT NULL,
	adj_close  DOUBLE PRECISION,
	volume     BIGINT           NOT NULL DEFAULT 0,
	source     TEXT             NOT NULL DEFAULT '',
	updated_at TIMESTAMPTZ      NOT NULL DEFAULT now(),
	PRIMARY KEY (ticker, trade_date)
);
`

// Migrate creates the tables used by the price store if they do not exist
func (db *DB) Migrate(ctx context.Context) error {
	if _, err := db.Pool.Exec(ctx, priceSchema); err != nil {
		return fmt.Errorf("migrate price schema: %w", err)
	}
	return nil
}
