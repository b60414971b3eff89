package factor

import (
	"iter"
	"math"
	"time"
)

// DefaultICWindow is the trailing window (observations) of the smoothed IC
const DefaultICWindow = 22

// ICPoint is the information coefficient observed on one date
type ICPoint struct {
	Date time.Time
	IC   float64
}

// PeriodInformation summarises the IC series of one horizon
type PeriodInformation struct {
	Period int
	Series []ICPoint

	Mean         float64 // over defined IC values
	Std          float64 // sample standard deviation
	TStat        float64 // Mean / (Std / sqrt(N)), NaN when N <= 1 or Std == 0
	Observations int     // defined IC values

	// PValue is always 0. It is a placeholder kept for report layout and
	// carries no statistical meaning.
	PValue float64
}

// InformationReport is the output of EvaluateInformation
type InformationReport struct {
	Periods []PeriodInformation
}

// Empty reports whether the report has no periods
func (r *InformationReport) Empty() bool {
	return len(r.Periods) == 0
}

// Period returns the summary for period p
func (r *InformationReport) Period(p int) (PeriodInformation, bool) {
	for _, pi := range r.Periods {
		if pi.Period == p {
			return pi, true
		}
	}
	return PeriodInformation{}, false
}

// EvaluateInformation computes, per period, the Spearman correlation of the
// factor against the forward return across rows sharing a date. A date
// holding a single row has an undefined (NaN) IC, which is the normal case
// for a single-ticker dataset.
func EvaluateInformation(ds *Dataset, periods []int) (*InformationReport, error) {
	idx, err := ds.periodIndexes(periods)
	if err != nil {
		return nil, err
	}

	report := &InformationReport{}
	if ds.Empty() {
		return report, nil
	}

	groups := groupByDate(ds)
	for k, p := range periods {
		report.Periods = append(report.Periods, periodInformation(ds, groups, p, idx[k]))
	}

	return report, nil
}

type dateGroup struct {
	date time.Time
	rows []int
}

func groupByDate(ds *Dataset) []dateGroup {
	var groups []dateGroup
	for i, r := range ds.rows {
		if n := len(groups); n > 0 && groups[n-1].date.Equal(r.Date) {
			groups[n-1].rows = append(groups[n-1].rows, i)
			continue
		}
		groups = append(groups, dateGroup{date: r.Date, rows: []int{i}})
	}
	return groups
}

func periodInformation(ds *Dataset, groups []dateGroup, period, pi int) PeriodInformation {
	series := make([]ICPoint, len(groups))
	values := make([]float64, len(groups))
	for g, grp := range groups {
		f := make([]float64, len(grp.rows))
		r := make([]float64, len(grp.rows))
		for k, i := range grp.rows {
			f[k] = ds.rows[i].Factor
			r[k] = ds.rows[i].returns[pi]
		}
		ic := spearman(f, r)
		series[g] = ICPoint{Date: grp.date, IC: ic}
		values[g] = ic
	}

	m, s, n := describe(values)

	return PeriodInformation{
		Period:       period,
		Series:       series,
		Mean:         m,
		Std:          s,
		TStat:        tStat(m, s, n),
		Observations: n,
		PValue:       0,
	}
}

func tStat(mean, std float64, n int) float64 {
	if n <= 1 || std == 0 || math.IsNaN(std) {
		return math.NaN()
	}
	return mean / (std / math.Sqrt(float64(n)))
}

// MovingAverage returns the trailing mean of the IC series over window
// observations. A point is NaN until window observations are available or
// when any value in its window is NaN. The sequence is finite and can be
// ranged over any number of times.
func (p PeriodInformation) MovingAverage(window int) iter.Seq2[time.Time, float64] {
	return RollingMean(p.Series, window)
}

// RollingMean yields the trailing mean of points over window observations
func RollingMean(points []ICPoint, window int) iter.Seq2[time.Time, float64] {
	return func(yield func(time.Time, float64) bool) {
		if window < 1 {
			return
		}
		var sum float64
		nans := 0
		for i, pt := range points {
			if math.IsNaN(pt.IC) {
				nans++
			} else {
				sum += pt.IC
			}
			if i >= window {
				old := points[i-window].IC
				if math.IsNaN(old) {
					nans--
				} else {
					sum -= old
				}
			}

			v := math.NaN()
			if i >= window-1 && nans == 0 {
				v = sum / float64(window)
			}
			if !yield(pt.Date, v) {
				return
			}
		}
	}
}
