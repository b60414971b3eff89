package yahoo

import (
	"context"
	"fmt"
	"time"

	"github.com/wnjoon/go-yfinance/pkg/models"
	"github.com/wnjoon/go-yfinance/pkg/ticker"

	"github.com/wonny/alphalens/internal/contracts"
	"github.com/wonny/alphalens/pkg/logger"
)

// Client fetches daily prices from Yahoo Finance
// ⭐ SSOT: Yahoo Finance 호출은 이 클라이언트에서만
type Client struct {
	logger *logger.Logger
	now    func() time.Time
}

// NewClient creates a Yahoo Finance price source
func NewClient(log *logger.Logger) *Client {
	return &Client{logger: log, now: time.Now}
}

// FetchPrices returns unadjusted OHLCV bars with the adjusted close for
// ticker within [start, end]. An unknown ticker yields an empty series.
func (c *Client) FetchPrices(ctx context.Context, symbol string, start, end time.Time) (contracts.PriceSeries, error) {
	if err := ctx.Err(); err != nil {
		return contracts.PriceSeries{}, err
	}

	symbol = contracts.NormalizeTicker(symbol)

	t, err := ticker.New(symbol)
	if err != nil {
		return contracts.PriceSeries{}, fmt.Errorf("failed to create ticker: %w", err)
	}
	defer t.Close()

	period := periodFor(start, c.now())
	params := models.HistoryParams{
		Period:     period,
		Interval:   "1d",
		AutoAdjust: false,
	}

	bars, err := t.History(params)
	if err != nil {
		return contracts.PriceSeries{}, fmt.Errorf("failed to get historical prices for %s: %w", symbol, err)
	}

	series := convertBars(symbol, bars, start, end)

	c.logger.WithFields(map[string]interface{}{
		"ticker": symbol,
		"period": period,
		"raw":    len(bars),
		"count":  series.Len(),
	}).Debug("Fetched prices from Yahoo Finance")

	return series, nil
}

// convertBars keeps bars inside [start, end] and drops null rows
func convertBars(symbol string, bars []models.Bar, start, end time.Time) contracts.PriceSeries {
	from, to := contracts.Day(start), contracts.Day(end)

	out := make([]contracts.PriceBar, 0, len(bars))
	hasAdj := false
	for _, bar := range bars {
		// Yahoo sometimes returns all-zero rows
		if bar.Open == 0 && bar.High == 0 && bar.Low == 0 && bar.Close == 0 {
			continue
		}

		d := contracts.Day(bar.Date)
		if d.Before(from) || d.After(to) {
			continue
		}

		if bar.AdjClose != 0 {
			hasAdj = true
		}

		out = append(out, contracts.PriceBar{
			Date:     d,
			Open:     bar.Open,
			High:     bar.High,
			Low:      bar.Low,
			Close:    bar.Close,
			AdjClose: bar.AdjClose,
			Volume:   int64(bar.Volume),
		})
	}

	// a partial adjusted column falls back to close on the missing rows
	if hasAdj {
		for i := range out {
			if out[i].AdjClose == 0 {
				out[i].AdjClose = out[i].Close
			}
		}
	}

	series := contracts.PriceSeries{
		Ticker:      symbol,
		Bars:        out,
		HasClose:    len(out) > 0,
		HasAdjClose: hasAdj,
	}
	return series.Normalize()
}

// periodFor picks the shortest Yahoo range period covering start..now
func periodFor(start, now time.Time) string {
	age := now.Sub(start)
	const year = 366 * 24 * time.Hour

	switch {
	case age <= year:
		return "1y"
	case age <= 2*year:
		return "2y"
	case age <= 5*year:
		return "5y"
	case age <= 10*year:
		return "10y"
	default:
		return "max"
	}
}
