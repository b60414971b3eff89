package database

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/alphalens/pkg/config"
)

func TestNew_NotConfigured(t *testing.T) {
	db, err := New(&config.Config{})
	assert.Nil(t, db)
	assert.True(t, errors.Is(err, ErrNotConfigured))
}

func TestNew_InvalidURL(t *testing.T) {
	cfg := &config.Config{Database: config.DatabaseConfig{URL: "://not a url"}}

	_, err := New(cfg)
	assert.Error(t, err)
}

func TestHealthCheckAndMigrate(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	url := os.Getenv("DATABASE_URL")
	if url == "" {
		t.Skip("DATABASE_URL not set, skipping integration test")
	}

	cfg := &config.Config{Database: config.DatabaseConfig{URL: url, MaxConns: 2, MinConns: 1}}
	db, err := New(cfg)
	require.NoError(t, err)
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	require.NoError(t, db.Migrate(ctx))

	status, err := db.HealthCheck(ctx)
	require.NoError(t, err)
	assert.True(t, status.Healthy)
	assert.Greater(t, status.TotalConns, int32(0))
}
