package logger_test

import (
	"errors"

	"github.com/wonny/alphalens/pkg/config"
	"github.com/wonny/alphalens/pkg/logger"
)

// Example_withFields demonstrates structured logging with fields
func Example_withFields() {
	cfg := &config.Config{
		Env:       "production",
		LogLevel:  "info",
		LogFormat: "json",
	}

	log := logger.New(cfg)

	runLog := log.WithFields(map[string]interface{}{
		"ticker":  "AAPL",
		"periods": []int{1, 5, 10},
		"rows":    1247,
	})
	runLog.Info("tear sheet built")

	// Combine error with fields
	err := errors.New("no price data found for ticker")
	log.WithError(err).WithField("ticker", "ZZZZ").Warn("tear sheet skipped")
}
