package naver

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/wonny/alphalens/internal/contracts"
)

var priceRowRe = regexp.MustCompile(`\["(\d{8})",\s*([\d.]+),\s*([\d.]+),\s*([\d.]+),\s*([\d.]+),\s*([\d.]+)`)

// FetchPrices fetches daily prices for a KRX stock code. Naver publishes
// unadjusted closes only, so the series carries no adjusted column.
// ⭐ SSOT: Naver Finance 가격 API 호출은 이 함수에서만
func (c *Client) FetchPrices(ctx context.Context, stockCode string, start, end time.Time) (contracts.PriceSeries, error) {
	params := url.Values{}
	params.Set("symbol", stockCode)
	params.Set("requestType", "1")
	params.Set("startTime", start.Format("20060102"))
	params.Set("endTime", end.Format("20060102"))
	params.Set("timeframe", "day")

	body, err := c.fetch(ctx, c.chartURL, "/siseJson.naver", params)
	if err != nil {
		return contracts.PriceSeries{}, err
	}

	bars, err := parsePriceResponse(string(body))
	if err != nil {
		return contracts.PriceSeries{}, fmt.Errorf("parse response failed: %w", err)
	}

	series := contracts.PriceSeries{
		Ticker:   stockCode,
		Bars:     bars,
		HasClose: len(bars) > 0,
	}.Normalize()

	c.logger.WithFields(map[string]interface{}{
		"stock_code": stockCode,
		"count":      series.Len(),
	}).Debug("Fetched prices")

	return series, nil
}

// parsePriceResponse parses the siseJson body: a JS array literal whose
// first row is the header
func parsePriceResponse(body string) ([]contracts.PriceBar, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, nil
	}
	body = strings.ReplaceAll(body, "'", "\"")

	var rawData [][]interface{}
	if err := json.Unmarshal([]byte(body), &rawData); err == nil {
		return parsePriceJSON(rawData), nil
	}

	// Fallback to regex parsing
	return parsePriceRegex(body), nil
}

// parsePriceJSON parses JSON array format
func parsePriceJSON(rawData [][]interface{}) []contracts.PriceBar {
	var bars []contracts.PriceBar
	for _, row := range rawData {
		if len(row) < 6 {
			continue
		}

		dateStr, ok := row[0].(string)
		if !ok {
			continue
		}
		tradeDate, err := parseDate(dateStr)
		if err != nil {
			continue // header row
		}

		bar := contracts.PriceBar{
			Date:   tradeDate,
			Open:   toFloat64(row[1]),
			High:   toFloat64(row[2]),
			Low:    toFloat64(row[3]),
			Close:  toFloat64(row[4]),
			Volume: int64(toFloat64(row[5])),
		}
		if bar.Close <= 0 {
			continue
		}
		bars = append(bars, bar)
	}
	return bars
}

// parsePriceRegex parses using regex (fallback)
func parsePriceRegex(body string) []contracts.PriceBar {
	var bars []contracts.PriceBar
	for _, match := range priceRowRe.FindAllStringSubmatch(body, -1) {
		tradeDate, err := parseDate(match[1])
		if err != nil {
			continue
		}

		bar := contracts.PriceBar{
			Date:   tradeDate,
			Open:   toFloat64(match[2]),
			High:   toFloat64(match[3]),
			Low:    toFloat64(match[4]),
			Close:  toFloat64(match[5]),
			Volume: int64(toFloat64(match[6])),
		}
		if bar.Close <= 0 {
			continue
		}
		bars = append(bars, bar)
	}
	return bars
}

func parseDate(s string) (time.Time, error) {
	s = strings.Trim(strings.TrimSpace(s), "\"")
	return time.Parse("20060102", s)
}

// toFloat64 converts various JSON scalar types to float64
func toFloat64(v interface{}) float64 {
	switch val := v.(type) {
	case float64:
		return val
	case int64:
		return float64(val)
	case int:
		return float64(val)
	case string:
		n, _ := strconv.ParseFloat(strings.TrimSpace(val), 64)
		return n
	default:
		return 0
	}
}
