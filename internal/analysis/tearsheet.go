package analysis

import (
	"math"
	"time"

	"github.com/wonny/alphalens/internal/analysisconfig"
	"github.com/wonny/alphalens/internal/factor"
)

// TearSheet is the JSON-ready result of one run. Undefined statistics are
// nil pointers and encode as null.
type TearSheet struct {
	Ticker      string    `json:"ticker"`
	Start       time.Time `json:"start"`
	End         time.Time `json:"end"`
	GeneratedAt time.Time `json:"generated_at"`
	ConfigName  string    `json:"config_name"`
	ConfigHash  string    `json:"config_hash"`
	FactorName  string    `json:"factor_name"`

	Empty   bool   `json:"empty"`
	Message string `json:"message,omitempty"`

	Diagnostics    []factor.Diagnostic `json:"diagnostics"`
	PriceBars      int                 `json:"price_bars"`
	Observations   int                 `json:"observations"`
	Periods        []int               `json:"periods"`
	Quantiles      int                 `json:"quantiles"`
	QuantileCounts []QuantileCount     `json:"quantile_counts"`

	Returns     []PeriodReturns      `json:"returns"`
	Cumulative  *CumulativeReturns   `json:"cumulative,omitempty"`
	Information []PeriodInformation  `json:"information"`
	ICWindow    int                  `json:"ic_window"`
	Turnover    []LagAutocorrelation `json:"turnover"`
}

// QuantileCount is the number of rows in one bucket
type QuantileCount struct {
	Quantile int `json:"quantile"`
	Rows     int `json:"rows"`
}

// QuantileReturn is a mean forward return in basis points
type QuantileReturn struct {
	Quantile int      `json:"quantile"`
	MeanBps  *float64 `json:"mean_bps"`
}

// PeriodReturns 기간별 분위 수익률 (bps)
type PeriodReturns struct {
	Period     int              `json:"period"`
	ByQuantile []QuantileReturn `json:"by_quantile"`
	TopBps     *float64         `json:"top_bps"`
	BottomBps  *float64         `json:"bottom_bps"`
	SpreadBps  *float64         `json:"spread_bps"`
}

// CumulativeReturns holds one compounded curve per quantile
type CumulativeReturns struct {
	Period    int             `json:"period"`
	Quantiles []QuantileCurve `json:"quantiles"`
}

// QuantileCurve is the compounded (1 + r) curve of one bucket
type QuantileCurve struct {
	Quantile int          `json:"quantile"`
	Points   []CurvePoint `json:"points"`
}

// CurvePoint is one dated value
type CurvePoint struct {
	Date  time.Time `json:"date"`
	Value *float64  `json:"value"`
}

// PeriodInformation IC 요약 (기간별)
type PeriodInformation struct {
	Period       int       `json:"period"`
	Mean         *float64  `json:"mean"`
	Std          *float64  `json:"std"`
	TStat        *float64  `json:"t_stat"`
	PValue       float64   `json:"p_value"` // placeholder, always 0
	Observations int       `json:"observations"`
	Series       []ICValue `json:"series"`
}

// ICValue is the IC of one date and its trailing moving average
type ICValue struct {
	Date          time.Time `json:"date"`
	IC            *float64  `json:"ic"`
	MovingAverage *float64  `json:"moving_average"`
}

// LagAutocorrelation is the factor rank autocorrelation at one lag
type LagAutocorrelation struct {
	Lag             int      `json:"lag"`
	Autocorrelation *float64 `json:"autocorrelation"`
}

func newTearSheet(req Request, cfg *analysisconfig.Config, hash string, now time.Time) *TearSheet {
	return &TearSheet{
		Ticker:      req.Ticker,
		Start:       req.Start,
		End:         req.End,
		GeneratedAt: now,
		ConfigName:  cfg.Meta.Name,
		ConfigHash:  hash,
		Periods:     cfg.LabelOptions().Periods,
		Quantiles:   cfg.Labeling.Quantiles,
		ICWindow:    cfg.Information.ICWindow,
		Diagnostics: []factor.Diagnostic{},
	}
}

func (t *TearSheet) fill(ds *factor.Dataset, returns *factor.ReturnsReport, info *factor.InformationReport, turn *factor.TurnoverReport, icWindow int) {
	counts := ds.QuantileCounts()
	for _, q := range factor.SortedQuantiles(counts) {
		t.QuantileCounts = append(t.QuantileCounts, QuantileCount{Quantile: q, Rows: counts[q]})
	}

	for _, pr := range returns.Periods {
		out := PeriodReturns{
			Period:    pr.Period,
			TopBps:    Num(pr.TopMean),
			BottomBps: Num(pr.BottomMean),
			SpreadBps: Num(pr.Spread),
		}
		for q := 1; q <= ds.Quantiles(); q++ {
			qr := QuantileReturn{Quantile: q}
			if v, ok := pr.MeanByQuantile[q]; ok {
				qr.MeanBps = Num(v)
			}
			out.ByQuantile = append(out.ByQuantile, qr)
		}
		t.Returns = append(t.Returns, out)
	}

	if len(returns.Cumulative) > 0 {
		cum := &CumulativeReturns{Period: returns.CumulativePeriod}
		for _, q := range factor.SortedQuantiles(returns.Cumulative) {
			curve := QuantileCurve{Quantile: q}
			for _, pt := range returns.Cumulative[q] {
				curve.Points = append(curve.Points, CurvePoint{Date: pt.Date, Value: Num(pt.Value)})
			}
			cum.Quantiles = append(cum.Quantiles, curve)
		}
		t.Cumulative = cum
	}

	for _, pi := range info.Periods {
		out := PeriodInformation{
			Period:       pi.Period,
			Mean:         Num(pi.Mean),
			Std:          Num(pi.Std),
			TStat:        Num(pi.TStat),
			PValue:       pi.PValue,
			Observations: pi.Observations,
		}
		i := 0
		for date, ma := range pi.MovingAverage(icWindow) {
			out.Series = append(out.Series, ICValue{
				Date:          date,
				IC:            Num(pi.Series[i].IC),
				MovingAverage: Num(ma),
			})
			i++
		}
		t.Information = append(t.Information, out)
	}

	for _, lag := range turn.Lags {
		t.Turnover = append(t.Turnover, LagAutocorrelation{
			Lag:             lag,
			Autocorrelation: Num(turn.At(lag)),
		})
	}
}

// Num returns nil for NaN or infinite values, else a pointer to v
func Num(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

// Value dereferences p, NaN when nil
func Value(p *float64) float64 {
	if p == nil {
		return math.NaN()
	}
	return *p
}
