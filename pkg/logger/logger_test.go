package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		input string
		want  zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"DEBUG", zerolog.DebugLevel},
		{"info", zerolog.InfoLevel},
		{"warn", zerolog.WarnLevel},
		{"warning", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"fatal", zerolog.FatalLevel},
		{"invalid", zerolog.InfoLevel},
		{"", zerolog.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, parseLogLevel(tt.input))
		})
	}
}

func decode(t *testing.T, buf *bytes.Buffer) map[string]interface{} {
	t.Helper()
	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	return entry
}

func TestNewWithWriter_JSON(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&buf, "json", "debug", "development")

	log.WithFields(map[string]interface{}{
		"ticker":  "AAPL",
		"periods": 3,
	}).Warn("quantile labeling degraded")

	entry := decode(t, &buf)
	assert.Equal(t, "warn", entry["level"])
	assert.Equal(t, "quantile labeling degraded", entry["message"])
	assert.Equal(t, "AAPL", entry["ticker"])
	assert.Equal(t, float64(3), entry["periods"])
	assert.Equal(t, "development", entry["env"])
}

func TestWithError(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&buf, "json", "debug", "development")

	log.WithError(errors.New("no price data")).Error("analysis failed")

	entry := decode(t, &buf)
	assert.Equal(t, "no price data", entry["error"])
	assert.Equal(t, "analysis failed", entry["message"])
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&buf, "json", "warn", "development")

	log.Info("hidden")
	assert.Zero(t, buf.Len())

	log.Warnf("shown %d", 1)
	assert.Contains(t, buf.String(), "shown 1")
}

func TestConsoleFormat(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&buf, "console", "info", "development")

	log.Infof("fetched %d bars", 250)
	assert.Contains(t, buf.String(), "fetched 250 bars")
}

func TestNop(t *testing.T) {
	assert.NotPanics(t, func() {
		Nop().WithField("k", "v").Error("discarded")
	})
}
