package contracts

import (
	"sort"
	"time"
)

// FactorPoint is a single dated factor score. NaN marks an undefined score.
type FactorPoint struct {
	Date  time.Time `json:"date"`
	Value float64   `json:"value"`
}

// FactorSeries is a date-ordered factor for one ticker. Its dates need not
// match the price dates.
type FactorSeries struct {
	Name   string        `json:"name"`
	Points []FactorPoint `json:"points"`
}

// Len returns the number of points
func (f FactorSeries) Len() int {
	return len(f.Points)
}

// Empty reports whether the series has no points
func (f FactorSeries) Empty() bool {
	return len(f.Points) == 0
}

// Normalize truncates dates to the calendar day, sorts by date and keeps the
// last value of any duplicated day.
func (f FactorSeries) Normalize() FactorSeries {
	pts := make([]FactorPoint, len(f.Points))
	copy(pts, f.Points)
	for i := range pts {
		pts[i].Date = Day(pts[i].Date)
	}

	sort.SliceStable(pts, func(i, j int) bool {
		return pts[i].Date.Before(pts[j].Date)
	})

	out := pts[:0]
	for _, p := range pts {
		if n := len(out); n > 0 && out[n-1].Date.Equal(p.Date) {
			out[n-1] = p
			continue
		}
		out = append(out, p)
	}

	f.Points = out
	return f
}

// Headline is one news item about a ticker
type Headline struct {
	Date   time.Time `json:"date"`
	Title  string    `json:"title"`
	Source string    `json:"source"`
}
