package factor

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingPriceColumn means the price table has neither an adjusted
	// close nor a close column. Fatal to the run.
	ErrMissingPriceColumn = errors.New("price data is missing a usable price column (adj close or close)")

	// ErrInvalidOptions wraps labeling option problems
	ErrInvalidOptions = errors.New("invalid labeling options")

	// ErrUnknownPeriod is returned when an evaluator is asked for a horizon
	// the dataset was not labeled with
	ErrUnknownPeriod = errors.New("period not present in dataset")
)

// Diagnostic levels
const (
	LevelWarn = "warn"
	LevelInfo = "info"
)

// Diagnostic codes
const (
	CodeInsufficientVariance = "INSUFFICIENT_VARIANCE"
)

// Diagnostic is a non-fatal condition found while labeling
type Diagnostic struct {
	Code    string `json:"code"`
	Level   string `json:"level"`
	Message string `json:"message"`
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("[%s] %s: %s", d.Level, d.Code, d.Message)
}

func insufficientVariance(quantiles, rows int) Diagnostic {
	return Diagnostic{
		Code:  CodeInsufficientVariance,
		Level: LevelWarn,
		Message: fmt.Sprintf("could not compute %d quantiles over %d rows, the factor may have low variance; all rows assigned to quantile 1",
			quantiles, rows),
	}
}
