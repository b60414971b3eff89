package factor

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvaluateTurnover_TrendingFactor(t *testing.T) {
	values := make([]float64, 40)
	for i := range values {
		values[i] = float64(i)
	}
	ds, _, err := Label(factorSeries(values...), randomWalk(51, 4), DefaultOptions())
	require.NoError(t, err)

	report, err := EvaluateTurnover(ds, []int{0, 1, 5, 10})
	require.NoError(t, err)

	assert.Equal(t, []int{0, 1, 5, 10}, report.Lags)
	for _, lag := range report.Lags {
		assert.InDelta(t, 1.0, report.At(lag), 1e-9, "lag %d", lag)
	}
}

func TestEvaluateTurnover_LagZeroIsOne(t *testing.T) {
	ds, _, err := Label(randomFactor(60, 8), randomWalk(71, 8), DefaultOptions())
	require.NoError(t, err)

	report, err := EvaluateTurnover(ds, []int{0})
	require.NoError(t, err)
	assert.InDelta(t, 1.0, report.At(0), 1e-9)
}

func TestEvaluateTurnover_Alternating(t *testing.T) {
	ds, _, err := Label(factorSeries(1, 2, 1, 2, 1, 2, 1, 2), closeSeries(1, 2, 3, 4, 5, 6, 7, 8, 9), Options{Periods: []int{1}, Quantiles: 2})
	require.NoError(t, err)

	report, err := EvaluateTurnover(ds, []int{1, 2})
	require.NoError(t, err)
	assert.InDelta(t, -1.0, report.At(1), 1e-9)
	assert.InDelta(t, 1.0, report.At(2), 1e-9)
}

func TestEvaluateTurnover_TooFewObservations(t *testing.T) {
	ds, _, err := Label(factorSeries(5, 3, 4, 1, 2, 6), closeSeries(1, 2, 3, 4, 5, 6, 7), Options{Periods: []int{1}, Quantiles: 2})
	require.NoError(t, err)
	require.Equal(t, 6, ds.Len())

	report, err := EvaluateTurnover(ds, DefaultLags)
	require.NoError(t, err)
	assert.True(t, finite(report.At(1)))
	assert.True(t, math.IsNaN(report.At(5)))
	assert.True(t, math.IsNaN(report.At(10)))
	assert.True(t, math.IsNaN(report.At(99)))
}

func TestEvaluateTurnover_NegativeLag(t *testing.T) {
	ds, _, err := Label(factorSeries(1, 2, 3), closeSeries(1, 2, 3, 4), Options{Periods: []int{1}, Quantiles: 2})
	require.NoError(t, err)

	_, err = EvaluateTurnover(ds, []int{-1})
	assert.Error(t, err)
}
