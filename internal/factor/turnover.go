package factor

import (
	"fmt"
	"math"
	"slices"
)

// DefaultLags are the rank autocorrelation lags reported by default
var DefaultLags = []int{1, 5, 10}

// TurnoverReport maps a lag (in rows) to the rank autocorrelation of the
// factor. NaN marks an undefined value.
type TurnoverReport struct {
	Lags            []int
	Autocorrelation map[int]float64
}

// Empty reports whether no lag was evaluated
func (r *TurnoverReport) Empty() bool {
	return len(r.Lags) == 0
}

// At returns the autocorrelation at lag, NaN when absent
func (r *TurnoverReport) At(lag int) float64 {
	v, ok := r.Autocorrelation[lag]
	if !ok {
		return math.NaN()
	}
	return v
}

// EvaluateTurnover ranks the factor across all labeled dates (average ranks
// for ties) and correlates that rank series with itself shifted by each lag.
// A lag is undefined when fewer than lag+2 rows exist. A higher value means
// the ranking decays slowly and implies lower turnover.
func EvaluateTurnover(ds *Dataset, lags []int) (*TurnoverReport, error) {
	for _, lag := range lags {
		if lag < 0 {
			return nil, fmt.Errorf("lag must be >= 0, got %d", lag)
		}
	}

	report := &TurnoverReport{Autocorrelation: map[int]float64{}}
	if ds.Empty() {
		return report, nil
	}

	ranks := averageRanks(ds.Factors())
	report.Lags = slices.Clone(lags)
	for _, lag := range lags {
		report.Autocorrelation[lag] = autocorrelation(ranks, lag)
	}

	return report, nil
}

func autocorrelation(x []float64, lag int) float64 {
	if len(x) < lag+2 {
		return math.NaN()
	}
	return pearson(x[lag:], x[:len(x)-lag])
}
