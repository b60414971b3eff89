package factor

import (
	"fmt"
	"math"
	"slices"

	"github.com/wonny/alphalens/internal/contracts"
)

// Defaults for labeling
var (
	DefaultPeriods   = []int{1, 5, 10}
	DefaultQuantiles = 5
)

// Options controls Label
type Options struct {
	Periods   []int // forward horizons in price observations
	Quantiles int   // bucket count Q, at least 2
}

// DefaultOptions returns periods 1/5/10 and 5 quantiles
func DefaultOptions() Options {
	return Options{Periods: slices.Clone(DefaultPeriods), Quantiles: DefaultQuantiles}
}

// Validate checks the options
func (o Options) Validate() error {
	if o.Quantiles < 2 {
		return fmt.Errorf("%w: quantiles must be >= 2, got %d", ErrInvalidOptions, o.Quantiles)
	}
	if len(o.Periods) == 0 {
		return fmt.Errorf("%w: at least one period is required", ErrInvalidOptions)
	}
	seen := make(map[int]bool, len(o.Periods))
	for _, p := range o.Periods {
		if p < 1 {
			return fmt.Errorf("%w: period must be >= 1, got %d", ErrInvalidOptions, p)
		}
		if seen[p] {
			return fmt.Errorf("%w: duplicate period %d", ErrInvalidOptions, p)
		}
		seen[p] = true
	}
	return nil
}

// Label aligns a factor with prices, computes forward returns for every
// period and assigns quantile buckets.
//
// Only dates present in both series with a defined factor and every forward
// return defined are kept. Buckets are computed over those rows. When they
// cannot be split into Q non-empty buckets, every row goes to bucket 1 and an
// INSUFFICIENT_VARIANCE diagnostic is returned.
//
// Empty prices or an empty factor yield an empty dataset and no error.
// ⭐ SSOT: 팩터-가격 정렬 및 분위 라벨링은 이 함수만 수행
func Label(factor contracts.FactorSeries, prices contracts.PriceSeries, opts Options) (*Dataset, []Diagnostic, error) {
	if err := opts.Validate(); err != nil {
		return nil, nil, err
	}

	ds := &Dataset{
		periods:   slices.Clone(opts.Periods),
		quantiles: opts.Quantiles,
	}

	if prices.Empty() {
		return ds, nil, nil
	}

	px, err := priceColumn(prices)
	if err != nil {
		return nil, nil, err
	}

	if factor.Empty() {
		return ds, nil, nil
	}

	prices = prices.Normalize()
	factor = factor.Normalize()

	position := make(map[int64]int, len(prices.Bars))
	for i, b := range prices.Bars {
		position[b.Date.Unix()] = i
	}

	for _, pt := range factor.Points {
		if math.IsNaN(pt.Value) || math.IsInf(pt.Value, 0) {
			continue
		}
		i, ok := position[pt.Date.Unix()]
		if !ok {
			continue
		}
		returns, ok := forwardReturns(px, i, ds.periods)
		if !ok {
			continue
		}
		ds.rows = append(ds.rows, LabeledRow{
			Date:    pt.Date,
			Factor:  pt.Value,
			returns: returns,
		})
	}

	if len(ds.rows) == 0 {
		return ds, nil, nil
	}

	buckets, ok := assignQuantiles(ds.Factors(), ds.quantiles)
	var diags []Diagnostic
	if !ok {
		diags = append(diags, insufficientVariance(ds.quantiles, len(ds.rows)))
	}
	for i := range ds.rows {
		ds.rows[i].Quantile = buckets[i]
	}

	return ds, diags, nil
}

// priceColumn picks the adjusted close when present, else the close.
// Returned values follow the normalized bar order.
func priceColumn(prices contracts.PriceSeries) ([]float64, error) {
	if !prices.HasAdjClose && !prices.HasClose {
		return nil, ErrMissingPriceColumn
	}

	bars := prices.Normalize().Bars
	px := make([]float64, len(bars))
	for i, b := range bars {
		if prices.HasAdjClose {
			px[i] = b.AdjClose
		} else {
			px[i] = b.Close
		}
	}
	return px, nil
}

// forwardReturns computes px[i+p]/px[i]-1 for each period. ok is false when
// any horizon runs past the series or touches a non-positive price.
func forwardReturns(px []float64, i int, periods []int) ([]float64, bool) {
	base := px[i]
	if !(base > 0) {
		return nil, false
	}

	out := make([]float64, len(periods))
	for k, p := range periods {
		j := i + p
		if j >= len(px) || !(px[j] > 0) {
			return nil, false
		}
		out[k] = px[j]/base - 1
	}
	return out, true
}

func unknownPeriod(p int) error {
	return fmt.Errorf("%w: %d", ErrUnknownPeriod, p)
}
