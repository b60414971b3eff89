package contracts

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// PriceBar is one daily OHLCV observation
type PriceBar struct {
	Date     time.Time `json:"date"`
	Open     float64   `json:"open"`
	High     float64   `json:"high"`
	Low      float64   `json:"low"`
	Close    float64   `json:"close"`
	AdjClose float64   `json:"adj_close,omitempty"`
	Volume   int64     `json:"volume"`
}

// PriceSeries is a date-ordered daily price table for one ticker
// ⭐ SSOT: 가격 데이터는 이 구조체로만 전달
type PriceSeries struct {
	Ticker string     `json:"ticker"`
	Bars   []PriceBar `json:"bars"`

	// Column presence. A source that only knows adjusted prices sets
	// HasAdjClose and leaves HasClose false.
	HasClose    bool `json:"has_close"`
	HasAdjClose bool `json:"has_adj_close"`
}

// Len returns the number of bars
func (s PriceSeries) Len() int {
	return len(s.Bars)
}

// Empty reports whether the series has no bars
func (s PriceSeries) Empty() bool {
	return len(s.Bars) == 0
}

// Dates returns the bar dates in series order
func (s PriceSeries) Dates() []time.Time {
	dates := make([]time.Time, len(s.Bars))
	for i, b := range s.Bars {
		dates[i] = b.Date
	}
	return dates
}

// Normalize truncates dates to the calendar day, sorts bars by date and
// keeps the last bar of any duplicated day.
func (s PriceSeries) Normalize() PriceSeries {
	bars := make([]PriceBar, len(s.Bars))
	copy(bars, s.Bars)
	for i := range bars {
		bars[i].Date = Day(bars[i].Date)
	}

	sort.SliceStable(bars, func(i, j int) bool {
		return bars[i].Date.Before(bars[j].Date)
	})

	out := bars[:0]
	for _, b := range bars {
		if n := len(out); n > 0 && out[n-1].Date.Equal(b.Date) {
			out[n-1] = b
			continue
		}
		out = append(out, b)
	}

	s.Bars = out
	return s
}

// Validate checks the strictly increasing date invariant
func (s PriceSeries) Validate() error {
	for i := 1; i < len(s.Bars); i++ {
		if !s.Bars[i].Date.After(s.Bars[i-1].Date) {
			return fmt.Errorf("bar %d (%s) is not after bar %d (%s)",
				i, s.Bars[i].Date.Format("2006-01-02"), i-1, s.Bars[i-1].Date.Format("2006-01-02"))
		}
	}
	return nil
}

// NormalizeTicker is the canonical ticker form used in requests and cache keys
func NormalizeTicker(ticker string) string {
	return strings.ToUpper(strings.TrimSpace(ticker))
}

// Day truncates t to midnight UTC of its calendar day
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
