package sentiment

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/wonny/alphalens/internal/contracts"
	"github.com/wonny/alphalens/pkg/logger"
)

// DefaultSmoothingWindow is the trailing mean window of the sentiment factor
const DefaultSmoothingWindow = 5

// FactorName names the series produced by Builder
const FactorName = "sentiment"

// BuildFactor projects scores onto dates and smooths them.
//
// Each date takes the score of the latest headline on or before it, dates
// before the first headline take 0, and the result is a trailing mean over
// window dates with at least one observation. When two headlines share a
// date the later one in the input wins. ok is false when scored is empty.
func BuildFactor(dates []time.Time, scored []ScoredHeadline, window int) (contracts.FactorSeries, bool) {
	if len(scored) == 0 {
		return contracts.FactorSeries{}, false
	}
	if window < 1 {
		window = 1
	}

	byDate := make([]ScoredHeadline, len(scored))
	copy(byDate, scored)
	for i := range byDate {
		byDate[i].Date = contracts.Day(byDate[i].Date)
	}
	sort.SliceStable(byDate, func(i, j int) bool {
		return byDate[i].Date.Before(byDate[j].Date)
	})

	days := make([]time.Time, len(dates))
	for i, d := range dates {
		days[i] = contracts.Day(d)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })

	filled := make([]float64, len(days))
	next := 0
	current := 0.0
	for i, d := range days {
		for next < len(byDate) && !byDate[next].Date.After(d) {
			current = byDate[next].Score
			next++
		}
		filled[i] = current
	}

	points := make([]contracts.FactorPoint, len(days))
	sum := 0.0
	for i, d := range days {
		sum += filled[i]
		if i >= window {
			sum -= filled[i-window]
		}
		n := min(i+1, window)
		points[i] = contracts.FactorPoint{Date: d, Value: sum / float64(n)}
	}

	return contracts.FactorSeries{Name: FactorName, Points: points}, true
}

// Builder turns headlines from a HeadlineSource into a sentiment factor
// ⭐ SSOT: 감성 팩터 생성은 이 구조체에서만
type Builder struct {
	source contracts.HeadlineSource
	scorer *Scorer
	window int
	logger *logger.Logger
}

// NewBuilder creates a factor builder
func NewBuilder(source contracts.HeadlineSource, scorer *Scorer, window int, log *logger.Logger) *Builder {
	if window < 1 {
		window = DefaultSmoothingWindow
	}
	return &Builder{source: source, scorer: scorer, window: window, logger: log}
}

// Factor fetches headlines for ticker on dates and builds the factor.
// ok is false when no headline was found.
func (b *Builder) Factor(ctx context.Context, ticker string, dates []time.Time) (contracts.FactorSeries, bool, error) {
	headlines, err := b.source.FetchHeadlines(ctx, ticker, dates)
	if err != nil {
		return contracts.FactorSeries{}, false, fmt.Errorf("fetch headlines: %w", err)
	}

	scored := b.scorer.ScoreAll(headlines)
	positive := 0
	for _, s := range scored {
		if s.Score > 0 {
			positive++
		}
	}

	b.logger.WithFields(map[string]interface{}{
		"ticker":    ticker,
		"dates":     len(dates),
		"headlines": len(headlines),
		"positive":  positive,
	}).Debug("Scored headlines")

	series, ok := BuildFactor(dates, scored, b.window)
	return series, ok, nil
}
