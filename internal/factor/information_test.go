package factor

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvaluateInformation_SingleRowPerDate(t *testing.T) {
	ds, _, err := Label(randomFactor(100, 1), randomWalk(111, 1), DefaultOptions())
	require.NoError(t, err)

	report, err := EvaluateInformation(ds, DefaultPeriods)
	require.NoError(t, err)
	require.Len(t, report.Periods, 3)

	for _, pi := range report.Periods {
		require.Len(t, pi.Series, ds.Len())
		for _, pt := range pi.Series {
			assert.True(t, math.IsNaN(pt.IC))
		}
		assert.Equal(t, 0, pi.Observations)
		assert.True(t, math.IsNaN(pi.Mean))
		assert.True(t, math.IsNaN(pi.Std))
		assert.True(t, math.IsNaN(pi.TStat))
		assert.Equal(t, 0.0, pi.PValue)

		for _, v := range pi.MovingAverage(DefaultICWindow) {
			assert.True(t, math.IsNaN(v))
		}
	}
}

func TestEvaluateInformation_GroupsRowsByDate(t *testing.T) {
	// build a dataset with several rows per date directly
	d0, d1 := dateAt(0), dateAt(1)
	ds := &Dataset{
		periods:   []int{1},
		quantiles: 2,
		rows: []LabeledRow{
			{Date: d0, Factor: 1, Quantile: 1, returns: []float64{0.01}},
			{Date: d0, Factor: 2, Quantile: 1, returns: []float64{0.02}},
			{Date: d0, Factor: 3, Quantile: 2, returns: []float64{0.03}},
			{Date: d1, Factor: 1, Quantile: 1, returns: []float64{0.03}},
			{Date: d1, Factor: 2, Quantile: 2, returns: []float64{0.02}},
			{Date: d1, Factor: 3, Quantile: 2, returns: []float64{0.01}},
		},
	}

	report, err := EvaluateInformation(ds, []int{1})
	require.NoError(t, err)

	pi, ok := report.Period(1)
	require.True(t, ok)
	require.Len(t, pi.Series, 2)
	assert.Equal(t, d0, pi.Series[0].Date)
	assert.InDelta(t, 1.0, pi.Series[0].IC, 1e-12)
	assert.InDelta(t, -1.0, pi.Series[1].IC, 1e-12)

	assert.Equal(t, 2, pi.Observations)
	assert.InDelta(t, 0.0, pi.Mean, 1e-12)
	assert.InDelta(t, math.Sqrt2, pi.Std, 1e-12)
	assert.InDelta(t, 0.0, pi.TStat, 1e-12)
}

func TestEvaluateInformation_UnknownPeriod(t *testing.T) {
	ds, _, err := Label(factorSeries(1, 2, 3), closeSeries(100, 101, 102, 103), Options{Periods: []int{1}, Quantiles: 2})
	require.NoError(t, err)

	_, err = EvaluateInformation(ds, []int{10})
	assert.ErrorIs(t, err, ErrUnknownPeriod)
}

func icPoints(values ...float64) []ICPoint {
	pts := make([]ICPoint, len(values))
	for i, v := range values {
		pts[i] = ICPoint{Date: dateAt(i), IC: v}
	}
	return pts
}

func collect(seq func(func(time.Time, float64) bool)) []float64 {
	var out []float64
	for _, v := range seq {
		out = append(out, v)
	}
	return out
}

func TestRollingMean(t *testing.T) {
	got := collect(RollingMean(icPoints(1, 2, 3, 4, 5), 3))
	require.Len(t, got, 5)
	assert.True(t, math.IsNaN(got[0]))
	assert.True(t, math.IsNaN(got[1]))
	assert.InDelta(t, 2.0, got[2], 1e-12)
	assert.InDelta(t, 3.0, got[3], 1e-12)
	assert.InDelta(t, 4.0, got[4], 1e-12)
}

func TestRollingMean_NaNInWindow(t *testing.T) {
	got := collect(RollingMean(icPoints(1, math.NaN(), 3, 4, 5, 6), 2))
	require.Len(t, got, 6)
	assert.True(t, math.IsNaN(got[1]))
	assert.True(t, math.IsNaN(got[2]))
	assert.InDelta(t, 3.5, got[3], 1e-12)
	assert.InDelta(t, 5.5, got[5], 1e-12)
}

func TestRollingMean_DefaultWindow(t *testing.T) {
	values := make([]float64, 30)
	for i := range values {
		values[i] = float64(i)
	}
	got := collect(RollingMean(icPoints(values...), DefaultICWindow))

	for i := 0; i < DefaultICWindow-1; i++ {
		assert.True(t, math.IsNaN(got[i]))
	}
	// mean of 0..21
	assert.InDelta(t, 10.5, got[21], 1e-12)
	assert.InDelta(t, 18.5, got[29], 1e-12)
}

func TestRollingMean_Restartable(t *testing.T) {
	seq := RollingMean(icPoints(1, 2, 3, 4), 2)

	assert.Equal(t, collect(seq)[1:], collect(seq)[1:])

	// early break stops iteration
	count := 0
	for range seq {
		count++
		if count == 2 {
			break
		}
	}
	assert.Equal(t, 2, count)

	assert.Empty(t, collect(RollingMean(icPoints(1, 2), 0)))
}

func TestTStat(t *testing.T) {
	assert.InDelta(t, 1.0, tStat(0.1, 0.2, 4), 1e-12)
	assert.True(t, math.IsNaN(tStat(0.1, 0.2, 1)))
	assert.True(t, math.IsNaN(tStat(0.1, 0, 10)))
	assert.True(t, math.IsNaN(tStat(0.1, math.NaN(), 10)))
}
