package factor

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// averageRanks returns 1-based ranks of x with ties given the mean of the
// ranks they span. NaN inputs get NaN ranks and are excluded from ranking.
func averageRanks(x []float64) []float64 {
	idx := make([]int, 0, len(x))
	ranks := make([]float64, len(x))
	for i, v := range x {
		if math.IsNaN(v) {
			ranks[i] = math.NaN()
			continue
		}
		idx = append(idx, i)
	}

	sort.SliceStable(idx, func(a, b int) bool {
		return x[idx[a]] < x[idx[b]]
	})

	for start := 0; start < len(idx); {
		end := start + 1
		for end < len(idx) && x[idx[end]] == x[idx[start]] {
			end++
		}
		// positions start..end-1 hold 1-based ranks start+1..end
		avg := float64(start+1+end) / 2
		for k := start; k < end; k++ {
			ranks[idx[k]] = avg
		}
		start = end
	}

	return ranks
}

// pearson returns the Pearson correlation of x and y, NaN when fewer than
// two pairs exist or either side is constant.
func pearson(x, y []float64) float64 {
	if len(x) != len(y) || len(x) < 2 {
		return math.NaN()
	}
	if isConstant(x) || isConstant(y) {
		return math.NaN()
	}
	for i := range x {
		if math.IsNaN(x[i]) || math.IsNaN(y[i]) {
			return math.NaN()
		}
	}
	return stat.Correlation(x, y, nil)
}

// spearman is the Pearson correlation of average ranks
func spearman(x, y []float64) float64 {
	if len(x) != len(y) || len(x) < 2 {
		return math.NaN()
	}
	return pearson(averageRanks(x), averageRanks(y))
}

func isConstant(x []float64) bool {
	for i := 1; i < len(x); i++ {
		if x[i] != x[0] {
			return false
		}
	}
	return true
}

// describe returns the mean and sample standard deviation of the defined
// values of x along with their count.
func describe(x []float64) (mean, std float64, n int) {
	defined := dropNaN(x)
	n = len(defined)
	switch n {
	case 0:
		return math.NaN(), math.NaN(), 0
	case 1:
		return defined[0], math.NaN(), 1
	}
	mean, std = stat.MeanStdDev(defined, nil)
	return mean, std, n
}

func dropNaN(x []float64) []float64 {
	out := make([]float64, 0, len(x))
	for _, v := range x {
		if !math.IsNaN(v) {
			out = append(out, v)
		}
	}
	return out
}

func mean(x []float64) float64 {
	if len(x) == 0 {
		return math.NaN()
	}
	return stat.Mean(x, nil)
}
