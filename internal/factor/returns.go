package factor

import (
	"math"
	"sort"
	"time"
)

// BasisPoints converts a fractional return to basis points
const BasisPoints = 10000.0

// PeriodReturns summarises forward returns for one horizon. All values are
// in basis points; NaN marks an undefined statistic.
type PeriodReturns struct {
	Period         int
	MeanByQuantile map[int]float64 // only quantiles that hold rows
	TopMean        float64         // quantile Q
	BottomMean     float64         // quantile 1
	Spread         float64         // TopMean - BottomMean
}

// CumulativePoint is one step of a quantile's compounded return curve
type CumulativePoint struct {
	Date  time.Time
	Value float64 // running product of (1 + r)
}

// ReturnsReport is the output of EvaluateReturns
type ReturnsReport struct {
	Periods []PeriodReturns

	// CumulativePeriod is periods[0]; Cumulative holds its curve per quantile
	CumulativePeriod int
	Cumulative       map[int][]CumulativePoint
}

// Empty reports whether the report has no periods
func (r *ReturnsReport) Empty() bool {
	return len(r.Periods) == 0
}

// Period returns the summary for period p
func (r *ReturnsReport) Period(p int) (PeriodReturns, bool) {
	for _, pr := range r.Periods {
		if pr.Period == p {
			return pr, true
		}
	}
	return PeriodReturns{}, false
}

// Spread returns the top-minus-bottom spread for p, NaN when absent
func (r *ReturnsReport) Spread(p int) float64 {
	pr, ok := r.Period(p)
	if !ok {
		return math.NaN()
	}
	return pr.Spread
}

// EvaluateReturns computes mean forward return by quantile, the top/bottom
// spread per period and the compounded curve per quantile for periods[0].
// An empty dataset yields an empty report.
func EvaluateReturns(ds *Dataset, periods []int) (*ReturnsReport, error) {
	idx, err := ds.periodIndexes(periods)
	if err != nil {
		return nil, err
	}

	report := &ReturnsReport{Cumulative: map[int][]CumulativePoint{}}
	if ds.Empty() || len(periods) == 0 {
		return report, nil
	}

	for k, p := range periods {
		report.Periods = append(report.Periods, periodReturns(ds, p, idx[k]))
	}

	report.CumulativePeriod = periods[0]
	report.Cumulative = cumulativeByQuantile(ds, idx[0])

	return report, nil
}

func periodReturns(ds *Dataset, period, pi int) PeriodReturns {
	byQ := make(map[int][]float64)
	for _, r := range ds.rows {
		byQ[r.Quantile] = append(byQ[r.Quantile], r.returns[pi])
	}

	means := make(map[int]float64, len(byQ))
	for q, xs := range byQ {
		means[q] = mean(xs) * BasisPoints
	}

	top, bottom := math.NaN(), math.NaN()
	if v, ok := means[ds.quantiles]; ok {
		top = v
	}
	if v, ok := means[1]; ok {
		bottom = v
	}

	return PeriodReturns{
		Period:         period,
		MeanByQuantile: means,
		TopMean:        top,
		BottomMean:     bottom,
		Spread:         top - bottom,
	}
}

func cumulativeByQuantile(ds *Dataset, pi int) map[int][]CumulativePoint {
	curves := make(map[int][]CumulativePoint)
	acc := make(map[int]float64)
	for _, r := range ds.rows {
		prev, ok := acc[r.Quantile]
		if !ok {
			prev = 1
		}
		v := prev * (1 + r.returns[pi])
		acc[r.Quantile] = v
		curves[r.Quantile] = append(curves[r.Quantile], CumulativePoint{Date: r.Date, Value: v})
	}
	return curves
}

// SortedQuantiles returns the quantile labels present in m in ascending order
func SortedQuantiles[V any](m map[int]V) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}
