package analysisconfig

import (
	"slices"

	"github.com/wonny/alphalens/internal/factor"
	"github.com/wonny/alphalens/internal/sentiment"
)

// Config is the full tear sheet configuration
type Config struct {
	Meta        Meta        `yaml:"meta" json:"meta"`
	Labeling    Labeling    `yaml:"labeling" json:"labeling"`
	Information Information `yaml:"information" json:"information"`
	Turnover    Turnover    `yaml:"turnover" json:"turnover"`
	Sentiment   Sentiment   `yaml:"sentiment" json:"sentiment"`
	Schedule    Schedule    `yaml:"schedule" json:"schedule"`
}

// Meta 메타 정보
type Meta struct {
	Name    string `yaml:"name" json:"name"`
	Version string `yaml:"version" json:"version"`
}

// Labeling controls forward returns and quantile buckets
type Labeling struct {
	Periods   []int `yaml:"periods" json:"periods"`
	Quantiles int   `yaml:"quantiles" json:"quantiles"`
}

// Information controls the IC view
type Information struct {
	ICWindow int `yaml:"ic_window" json:"ic_window"`
}

// Turnover controls rank autocorrelation
type Turnover struct {
	Lags []int `yaml:"lags" json:"lags"`
}

// Sentiment source kinds
const (
	SentimentMock  = "mock"
	SentimentNaver = "naver"
)

// Sentiment controls headline generation and smoothing
type Sentiment struct {
	Source          string  `yaml:"source" json:"source"` // mock, naver
	Seed            uint64  `yaml:"seed" json:"seed"`
	NewsProbability float64 `yaml:"news_probability" json:"news_probability"`
	PositiveBias    float64 `yaml:"positive_bias" json:"positive_bias"`
	SmoothingWindow int     `yaml:"smoothing_window" json:"smoothing_window"`
}

// Schedule controls the periodic tear sheet job
type Schedule struct {
	Cron         string   `yaml:"cron" json:"cron"` // with seconds field
	Tickers      []string `yaml:"tickers" json:"tickers"`
	LookbackDays int      `yaml:"lookback_days" json:"lookback_days"`
}

// Default returns the built-in configuration
func Default() *Config {
	gen := sentiment.DefaultGeneratorConfig()
	return &Config{
		Meta: Meta{Name: "sentiment_default", Version: "1"},
		Labeling: Labeling{
			Periods:   slices.Clone(factor.DefaultPeriods),
			Quantiles: factor.DefaultQuantiles,
		},
		Information: Information{ICWindow: factor.DefaultICWindow},
		Turnover:    Turnover{Lags: slices.Clone(factor.DefaultLags)},
		Sentiment: Sentiment{
			Source:          SentimentMock,
			Seed:            gen.Seed,
			NewsProbability: gen.NewsProbability,
			PositiveBias:    gen.PositiveBias,
			SmoothingWindow: sentiment.DefaultSmoothingWindow,
		},
		Schedule: Schedule{
			Cron:         "0 30 18 * * 1-5",
			LookbackDays: 5 * 365,
		},
	}
}

// LabelOptions returns the labeling options
func (c *Config) LabelOptions() factor.Options {
	return factor.Options{
		Periods:   slices.Clone(c.Labeling.Periods),
		Quantiles: c.Labeling.Quantiles,
	}
}

// GeneratorConfig returns the mock news generator settings
func (c *Config) GeneratorConfig() sentiment.GeneratorConfig {
	return sentiment.GeneratorConfig{
		Seed:            c.Sentiment.Seed,
		NewsProbability: c.Sentiment.NewsProbability,
		PositiveBias:    c.Sentiment.PositiveBias,
	}
}
