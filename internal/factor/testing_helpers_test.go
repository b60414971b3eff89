package factor

import (
	"math"
	"math/rand/v2"
	"time"

	"github.com/wonny/alphalens/internal/contracts"
)

var baseDate = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func dateAt(i int) time.Time {
	return baseDate.AddDate(0, 0, i)
}

func closeSeries(closes ...float64) contracts.PriceSeries {
	bars := make([]contracts.PriceBar, len(closes))
	for i, c := range closes {
		bars[i] = contracts.PriceBar{Date: dateAt(i), Open: c, High: c, Low: c, Close: c}
	}
	return contracts.PriceSeries{Ticker: "TEST", Bars: bars, HasClose: true}
}

func factorSeries(values ...float64) contracts.FactorSeries {
	pts := make([]contracts.FactorPoint, len(values))
	for i, v := range values {
		pts[i] = contracts.FactorPoint{Date: dateAt(i), Value: v}
	}
	return contracts.FactorSeries{Name: "test", Points: pts}
}

// growthPrices compounds start by rate(i) at each step
func growthPrices(n int, start float64, rate func(i int) float64) contracts.PriceSeries {
	closes := make([]float64, n)
	closes[0] = start
	for i := 1; i < n; i++ {
		closes[i] = closes[i-1] * (1 + rate(i))
	}
	return closeSeries(closes...)
}

func randomWalk(n int, seed uint64) contracts.PriceSeries {
	rng := rand.New(rand.NewPCG(seed, seed))
	return growthPrices(n, 100, func(int) float64 { return rng.NormFloat64() * 0.02 })
}

func randomFactor(n int, seed uint64) contracts.FactorSeries {
	rng := rand.New(rand.NewPCG(seed, seed+1))
	values := make([]float64, n)
	for i := range values {
		values[i] = rng.Float64()
	}
	return factorSeries(values...)
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
