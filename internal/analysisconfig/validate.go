package analysisconfig

import (
	"fmt"
	"strings"

	"github.com/robfig/cron/v3"
)

// ValidationError 검증 실패 (프로그램 중단)
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Warning 권장 위반 (경고만)
type Warning struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// CronParser accepts six-field expressions (with seconds) and descriptors
var CronParser = cron.NewParser(
	cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

// Validate checks all required constraints
// 실패 시 error 반환 (프로그램 중단)
func Validate(cfg *Config) error {
	// === Meta ===
	if cfg.Meta.Name == "" {
		return ValidationError{"meta.name", "required"}
	}

	// === Labeling ===
	if len(cfg.Labeling.Periods) == 0 {
		return ValidationError{"labeling.periods", "must not be empty"}
	}
	seen := map[int]bool{}
	for i, p := range cfg.Labeling.Periods {
		if p < 1 {
			return ValidationError{fmt.Sprintf("labeling.periods[%d]", i), "must be >= 1"}
		}
		if seen[p] {
			return ValidationError{fmt.Sprintf("labeling.periods[%d]", i), fmt.Sprintf("duplicate period %d", p)}
		}
		seen[p] = true
	}
	if cfg.Labeling.Quantiles < 2 {
		return ValidationError{"labeling.quantiles", "must be >= 2"}
	}

	// === Information ===
	if cfg.Information.ICWindow < 1 {
		return ValidationError{"information.ic_window", "must be >= 1"}
	}

	// === Turnover ===
	for i, lag := range cfg.Turnover.Lags {
		if lag < 0 {
			return ValidationError{fmt.Sprintf("turnover.lags[%d]", i), "must be >= 0"}
		}
	}

	// === Sentiment ===
	s := cfg.Sentiment
	if s.Source != SentimentMock && s.Source != SentimentNaver {
		return ValidationError{"sentiment.source", "must be one of: mock, naver"}
	}
	if err := validateProbability(s.NewsProbability, "sentiment.news_probability"); err != nil {
		return err
	}
	if err := validateProbability(s.PositiveBias, "sentiment.positive_bias"); err != nil {
		return err
	}
	if s.SmoothingWindow < 1 {
		return ValidationError{"sentiment.smoothing_window", "must be >= 1"}
	}

	// === Schedule ===
	if _, err := CronParser.Parse(cfg.Schedule.Cron); err != nil {
		return ValidationError{"schedule.cron", err.Error()}
	}
	if cfg.Schedule.LookbackDays < 1 {
		return ValidationError{"schedule.lookback_days", "must be >= 1"}
	}
	for i, t := range cfg.Schedule.Tickers {
		if strings.TrimSpace(t) == "" {
			return ValidationError{fmt.Sprintf("schedule.tickers[%d]", i), "must not be blank"}
		}
	}

	return nil
}

// Warn checks recommended constraints (non-fatal)
func Warn(cfg *Config) []Warning {
	var warnings []Warning

	maxPeriod := 0
	for _, p := range cfg.Labeling.Periods {
		maxPeriod = max(maxPeriod, p)
	}
	if maxPeriod > 60 {
		warnings = append(warnings, Warning{
			Code:    "LONG_HORIZON",
			Message: fmt.Sprintf("forward horizon of %d days drops that many trailing dates from the dataset", maxPeriod),
		})
	}

	if cfg.Labeling.Quantiles > 10 {
		warnings = append(warnings, Warning{
			Code:    "MANY_QUANTILES",
			Message: "more than 10 quantiles leaves few rows per bucket on a single ticker",
		})
	}

	if cfg.Sentiment.Source == SentimentMock && cfg.Sentiment.NewsProbability == 0 {
		warnings = append(warnings, Warning{
			Code:    "NO_NEWS",
			Message: "news_probability is 0: the mock source never emits headlines and no factor can be built",
		})
	}

	if cfg.Sentiment.SmoothingWindow > cfg.Information.ICWindow {
		warnings = append(warnings, Warning{
			Code:    "WIDE_SMOOTHING",
			Message: "smoothing_window exceeds ic_window: the factor changes slower than the IC view",
		})
	}

	if len(cfg.Schedule.Tickers) == 0 {
		warnings = append(warnings, Warning{
			Code:    "NO_SCHEDULED_TICKERS",
			Message: "schedule.tickers is empty: the scheduled tear sheet job has nothing to do",
		})
	}

	return warnings
}

func validateProbability(p float64, field string) error {
	if p < 0 || p > 1 {
		return ValidationError{field, "must be in range [0, 1]"}
	}
	return nil
}
