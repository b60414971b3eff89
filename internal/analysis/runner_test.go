package analysis

import (
	"context"
	"encoding/json"
	"errors"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/alphalens/internal/analysisconfig"
	"github.com/wonny/alphalens/internal/contracts"
	"github.com/wonny/alphalens/internal/factor"
	"github.com/wonny/alphalens/internal/sentiment"
	"github.com/wonny/alphalens/pkg/logger"
)

var baseDate = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

type fakePrices struct {
	series     contracts.PriceSeries
	err        error
	start, end time.Time
	calls      int
}

func (f *fakePrices) FetchPrices(_ context.Context, ticker string, start, end time.Time) (contracts.PriceSeries, error) {
	f.calls++
	f.start, f.end = start, end
	if f.err != nil {
		return contracts.PriceSeries{}, f.err
	}
	s := f.series
	s.Ticker = ticker
	return s, nil
}

type fakeFactor struct {
	value func(i int) float64
	none  bool
	err   error
	dates []time.Time
}

func (f *fakeFactor) Factor(_ context.Context, _ string, dates []time.Time) (contracts.FactorSeries, bool, error) {
	f.dates = dates
	if f.err != nil {
		return contracts.FactorSeries{}, false, f.err
	}
	if f.none {
		return contracts.FactorSeries{}, false, nil
	}
	pts := make([]contracts.FactorPoint, len(dates))
	for i, d := range dates {
		pts[i] = contracts.FactorPoint{Date: d, Value: f.value(i)}
	}
	return contracts.FactorSeries{Name: "fake", Points: pts}, true, nil
}

func walk(n int, seed uint64) contracts.PriceSeries {
	rng := rand.New(rand.NewPCG(seed, seed))
	bars := make([]contracts.PriceBar, n)
	px := 100.0
	for i := range bars {
		bars[i] = contracts.PriceBar{Date: baseDate.AddDate(0, 0, i), Close: px}
		px *= 1 + rng.NormFloat64()*0.02
	}
	return contracts.PriceSeries{Bars: bars, HasClose: true}
}

func randomValues(seed uint64) func(int) float64 {
	rng := rand.New(rand.NewPCG(seed, seed+1))
	cache := map[int]float64{}
	return func(i int) float64 {
		if v, ok := cache[i]; ok {
			return v
		}
		v := rng.Float64()
		cache[i] = v
		return v
	}
}

func newTestRunner(t *testing.T, prices contracts.PriceSource, factors FactorSource) *Runner {
	t.Helper()
	r, err := NewRunner(prices, factors, analysisconfig.Default(), logger.Nop())
	require.NoError(t, err)
	r.now = func() time.Time { return time.Date(2024, 12, 31, 15, 0, 0, 0, time.UTC) }
	return r
}

func TestNewRunner_InvalidConfig(t *testing.T) {
	cfg := analysisconfig.Default()
	cfg.Labeling.Quantiles = 1

	_, err := NewRunner(&fakePrices{}, &fakeFactor{}, cfg, logger.Nop())
	var verr analysisconfig.ValidationError
	assert.True(t, errors.As(err, &verr))
}

func TestResolve(t *testing.T) {
	r := newTestRunner(t, &fakePrices{}, &fakeFactor{})

	tests := []struct {
		name      string
		req       Request
		wantStart time.Time
		wantEnd   time.Time
		wantErr   error
	}{
		{
			name:      "defaults to five years ending today",
			req:       Request{Ticker: " aapl "},
			wantEnd:   time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC),
			wantStart: time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC).Add(-DefaultLookback),
		},
		{
			name:      "explicit range truncated to days",
			req:       Request{Ticker: "AAPL", Start: time.Date(2023, 1, 2, 9, 0, 0, 0, time.UTC), End: time.Date(2023, 6, 30, 23, 0, 0, 0, time.UTC)},
			wantStart: time.Date(2023, 1, 2, 0, 0, 0, 0, time.UTC),
			wantEnd:   time.Date(2023, 6, 30, 0, 0, 0, 0, time.UTC),
		},
		{
			name:    "start after end",
			req:     Request{Ticker: "AAPL", Start: baseDate.AddDate(0, 1, 0), End: baseDate},
			wantErr: ErrInvalidRange,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := r.Resolve(tt.req)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "AAPL", got.Ticker)
			assert.True(t, tt.wantStart.Equal(got.Start), "start %s", got.Start)
			assert.True(t, tt.wantEnd.Equal(got.End), "end %s", got.End)
		})
	}

	_, err := r.Resolve(Request{Ticker: "  "})
	assert.ErrorIs(t, err, ErrTickerRequired)
}

func TestRun_Errors(t *testing.T) {
	boom := errors.New("boom")

	tests := []struct {
		name    string
		prices  *fakePrices
		factor  *fakeFactor
		wantErr error
	}{
		{"no price data", &fakePrices{}, &fakeFactor{value: randomValues(1)}, ErrNoPriceData},
		{"price source fails", &fakePrices{err: boom}, &fakeFactor{value: randomValues(1)}, boom},
		{"no factor", &fakePrices{series: walk(50, 1)}, &fakeFactor{none: true}, ErrNoFactor},
		{"factor source fails", &fakePrices{series: walk(50, 1)}, &fakeFactor{err: boom}, boom},
		{
			"missing price column",
			&fakePrices{series: contracts.PriceSeries{Bars: walk(50, 1).Bars}},
			&fakeFactor{value: randomValues(1)},
			factor.ErrMissingPriceColumn,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newTestRunner(t, tt.prices, tt.factor)
			sheet, err := r.Run(context.Background(), Request{Ticker: "AAPL"})
			assert.Nil(t, sheet)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestRun_PassesPriceDatesToFactor(t *testing.T) {
	prices := &fakePrices{series: walk(30, 2)}
	factors := &fakeFactor{value: randomValues(2)}
	r := newTestRunner(t, prices, factors)

	_, err := r.Run(context.Background(), Request{Ticker: "msft", Start: baseDate, End: baseDate.AddDate(0, 1, 0)})
	require.NoError(t, err)

	assert.Equal(t, 1, prices.calls)
	assert.True(t, baseDate.Equal(prices.start))
	assert.Equal(t, prices.series.Dates(), factors.dates)
}

func TestRun_ShortRangeIsEmpty(t *testing.T) {
	// 5 bars cannot carry a 10 day forward return
	r := newTestRunner(t, &fakePrices{series: walk(5, 3)}, &fakeFactor{value: randomValues(3)})

	sheet, err := r.Run(context.Background(), Request{Ticker: "AAPL"})
	require.NoError(t, err)

	assert.True(t, sheet.Empty)
	assert.Equal(t, EmptyDatasetMessage, sheet.Message)
	assert.Equal(t, 0, sheet.Observations)
	assert.Equal(t, 5, sheet.PriceBars)
	assert.Empty(t, sheet.Returns)
	assert.Empty(t, sheet.Information)
	assert.Empty(t, sheet.Turnover)
	assert.Nil(t, sheet.Cumulative)
}

func TestRun_TearSheet(t *testing.T) {
	r := newTestRunner(t, &fakePrices{series: walk(200, 4)}, &fakeFactor{value: randomValues(4)})

	sheet, err := r.Run(context.Background(), Request{Ticker: "AAPL"})
	require.NoError(t, err)
	require.False(t, sheet.Empty)

	assert.Equal(t, "AAPL", sheet.Ticker)
	assert.Equal(t, "fake", sheet.FactorName)
	assert.Equal(t, "sentiment_default", sheet.ConfigName)
	assert.Len(t, sheet.ConfigHash, 64)
	assert.Empty(t, sheet.Diagnostics)
	assert.Equal(t, 200, sheet.PriceBars)
	assert.Equal(t, 190, sheet.Observations)
	assert.Equal(t, []int{1, 5, 10}, sheet.Periods)

	// 190 distinct values over 5 buckets
	require.Len(t, sheet.QuantileCounts, 5)
	for i, qc := range sheet.QuantileCounts {
		assert.Equal(t, i+1, qc.Quantile)
		assert.Equal(t, 38, qc.Rows)
	}

	require.Len(t, sheet.Returns, 3)
	for _, pr := range sheet.Returns {
		require.Len(t, pr.ByQuantile, 5)
		require.NotNil(t, pr.TopBps)
		require.NotNil(t, pr.BottomBps)
		require.NotNil(t, pr.SpreadBps)
		assert.InDelta(t, *pr.TopBps-*pr.BottomBps, *pr.SpreadBps, 1e-9)
		assert.Equal(t, pr.ByQuantile[4].MeanBps, pr.TopBps)
	}

	require.NotNil(t, sheet.Cumulative)
	assert.Equal(t, 1, sheet.Cumulative.Period)
	total := 0
	for _, qc := range sheet.Cumulative.Quantiles {
		total += len(qc.Points)
	}
	assert.Equal(t, 190, total)

	// one row per date: IC is undefined everywhere
	require.Len(t, sheet.Information, 3)
	for _, pi := range sheet.Information {
		assert.Nil(t, pi.Mean)
		assert.Nil(t, pi.TStat)
		assert.Equal(t, 0.0, pi.PValue)
		assert.Equal(t, 0, pi.Observations)
		require.Len(t, pi.Series, 190)
		assert.Nil(t, pi.Series[0].IC)
		assert.Nil(t, pi.Series[189].MovingAverage)
	}

	require.Len(t, sheet.Turnover, 3)
	assert.Equal(t, 1, sheet.Turnover[0].Lag)
	assert.NotNil(t, sheet.Turnover[0].Autocorrelation)
}

func TestRun_ConstantFactorDegrades(t *testing.T) {
	r := newTestRunner(t, &fakePrices{series: walk(60, 5)}, &fakeFactor{value: func(int) float64 { return 0.5 }})

	sheet, err := r.Run(context.Background(), Request{Ticker: "AAPL"})
	require.NoError(t, err)

	require.Len(t, sheet.Diagnostics, 1)
	assert.Equal(t, factor.CodeInsufficientVariance, sheet.Diagnostics[0].Code)
	assert.Equal(t, []QuantileCount{{Quantile: 1, Rows: 50}}, sheet.QuantileCounts)

	for _, pr := range sheet.Returns {
		assert.NotNil(t, pr.BottomBps)
		assert.Nil(t, pr.TopBps)
		assert.Nil(t, pr.SpreadBps)
	}
	for _, lc := range sheet.Turnover {
		assert.Nil(t, lc.Autocorrelation, "lag %d", lc.Lag)
	}
}

func TestRun_JSONEncodesUndefinedAsNull(t *testing.T) {
	r := newTestRunner(t, &fakePrices{series: walk(60, 6)}, &fakeFactor{value: func(int) float64 { return 1 }})

	sheet, err := r.Run(context.Background(), Request{Ticker: "AAPL"})
	require.NoError(t, err)

	data, err := json.Marshal(sheet)
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &decoded))

	returns := decoded["returns"].([]interface{})
	first := returns[0].(map[string]interface{})
	assert.Contains(t, first, "spread_bps")
	assert.Nil(t, first["spread_bps"])

	info := decoded["information"].([]interface{})[0].(map[string]interface{})
	assert.Nil(t, info["mean"])
	assert.Equal(t, 0.0, info["p_value"])
}

func TestRun_SentimentPipelineIsDeterministic(t *testing.T) {
	newRunner := func() *Runner {
		builder := sentiment.NewBuilder(
			sentiment.NewGenerator(sentiment.DefaultGeneratorConfig()),
			sentiment.NewScorer(),
			sentiment.DefaultSmoothingWindow,
			logger.Nop(),
		)
		return newTestRunner(t, &fakePrices{series: walk(250, 7)}, builder)
	}

	a, err := newRunner().Run(context.Background(), Request{Ticker: "AAPL"})
	require.NoError(t, err)
	b, err := newRunner().Run(context.Background(), Request{Ticker: "AAPL"})
	require.NoError(t, err)

	assert.False(t, a.Empty)
	assert.Equal(t, sentiment.FactorName, a.FactorName)
	assert.Equal(t, a, b)

	rows := 0
	for _, qc := range a.QuantileCounts {
		rows += qc.Rows
	}
	assert.Equal(t, a.Observations, rows)

	_, err = json.Marshal(a)
	assert.NoError(t, err)
}

func TestNum(t *testing.T) {
	assert.Nil(t, Num(Value(nil)))
	assert.Equal(t, 1.5, *Num(1.5))
	assert.Equal(t, 2.0, Value(Num(2)))
}
