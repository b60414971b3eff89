package factor

import (
	"iter"
	"slices"
	"time"
)

// LabeledRow is one aligned date: the factor value, its forward return for
// each labeled horizon and its quantile bucket.
type LabeledRow struct {
	Date     time.Time
	Factor   float64
	Quantile int

	returns []float64 // parallel to Dataset.Periods()
}

// ForwardReturn returns the forward return (fraction) at period index i
func (r LabeledRow) ForwardReturn(i int) float64 {
	return r.returns[i]
}

// ForwardReturns returns a copy of all forward returns in period order
func (r LabeledRow) ForwardReturns() []float64 {
	return slices.Clone(r.returns)
}

// Dataset is the immutable output of Label. Rows are in ascending date order,
// one per date.
type Dataset struct {
	periods   []int
	quantiles int
	rows      []LabeledRow
}

// Periods returns the labeled forward horizons
func (d *Dataset) Periods() []int {
	return slices.Clone(d.periods)
}

// Quantiles returns the configured bucket count Q
func (d *Dataset) Quantiles() int {
	return d.quantiles
}

// Len returns the number of labeled rows
func (d *Dataset) Len() int {
	return len(d.rows)
}

// Empty reports whether no row survived labeling
func (d *Dataset) Empty() bool {
	return len(d.rows) == 0
}

// Row returns the i-th row in date order
func (d *Dataset) Row(i int) LabeledRow {
	return d.rows[i]
}

// Rows iterates the rows in date order
func (d *Dataset) Rows() iter.Seq2[int, LabeledRow] {
	return func(yield func(int, LabeledRow) bool) {
		for i, r := range d.rows {
			if !yield(i, r) {
				return
			}
		}
	}
}

// PeriodIndex returns the position of period in Periods()
func (d *Dataset) PeriodIndex(period int) (int, bool) {
	i := slices.Index(d.periods, period)
	return i, i >= 0
}

// QuantileCounts returns the number of rows per quantile label
func (d *Dataset) QuantileCounts() map[int]int {
	counts := make(map[int]int, d.quantiles)
	for _, r := range d.rows {
		counts[r.Quantile]++
	}
	return counts
}

// Factors returns the factor column in date order
func (d *Dataset) Factors() []float64 {
	out := make([]float64, len(d.rows))
	for i, r := range d.rows {
		out[i] = r.Factor
	}
	return out
}

// column returns forward returns at period index pi in date order
func (d *Dataset) column(pi int) []float64 {
	out := make([]float64, len(d.rows))
	for i, r := range d.rows {
		out[i] = r.returns[pi]
	}
	return out
}

func (d *Dataset) periodIndexes(periods []int) ([]int, error) {
	idx := make([]int, len(periods))
	for i, p := range periods {
		pi, ok := d.PeriodIndex(p)
		if !ok {
			return nil, unknownPeriod(p)
		}
		idx[i] = pi
	}
	return idx, nil
}
