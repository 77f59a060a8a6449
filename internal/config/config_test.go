package config

import (
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{"PORT", "STORAGE", "LOG_LEVEL", "GIN_MODE", "GRAPHQL_PLAYGROUND_ENABLED",
		"GRAPHQL_COMPLEXITY_LIMIT", "GRAPHQL_MAX_DEPTH", "SUBSCRIPTION_BUFFER", "SUBSCRIPTION_SEND_TIMEOUT", "WEBSOCKET_KEEPALIVE"} {
		t.Setenv(key, "")
	}

	cfg := Load()
	assert.Equal(t, "4202", cfg.Port)
	assert.Equal(t, StorageMemory, cfg.Storage)
	assert.Equal(t, logrus.InfoLevel, cfg.LogLevel)
	assert.True(t, cfg.PlaygroundEnabled)
	assert.Equal(t, 200, cfg.ComplexityLimit)
	assert.Equal(t, 10, cfg.MaxDepth)
	assert.Equal(t, 16, cfg.SubscriptionBuffer)
	assert.Equal(t, 500*time.Millisecond, cfg.SubscriptionSendTimeout)
	assert.Equal(t, 10*time.Second, cfg.KeepAlive)
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("PORT", "8080")
	t.Setenv("STORAGE", "sqlite")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("GIN_MODE", "release")
	t.Setenv("GRAPHQL_PLAYGROUND_ENABLED", "")
	t.Setenv("GRAPHQL_COMPLEXITY_LIMIT", "0")
	t.Setenv("SUBSCRIPTION_SEND_TIMEOUT", "2s")
	t.Setenv("WEBSOCKET_KEEPALIVE", "30s")

	cfg := Load()
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, StorageSQLite, cfg.Storage)
	assert.Equal(t, logrus.DebugLevel, cfg.LogLevel)
	assert.False(t, cfg.PlaygroundEnabled)
	assert.Equal(t, 0, cfg.ComplexityLimit)
	assert.Equal(t, 2*time.Second, cfg.SubscriptionSendTimeout)
	assert.Equal(t, 30*time.Second, cfg.KeepAlive)
}

func TestGetEnvHelpers_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("TEST_INT", "abc")
	t.Setenv("TEST_BOOL", "maybe")
	t.Setenv("TEST_DURATION", "soon")

	assert.Equal(t, 7, GetEnvInt("TEST_INT", 7))
	assert.True(t, GetEnvBool("TEST_BOOL", true))
	assert.Equal(t, time.Minute, GetEnvDuration("TEST_DURATION", time.Minute))
}

func TestLoadEnv(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("POSTFEED_TEST_VALUE=from-file\n"), 0o600))

	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	t.Setenv("POSTFEED_TEST_VALUE", "")

	logger := logrus.New()
	logger.SetOutput(io.Discard)
	LoadEnv(logger)

	assert.Equal(t, "from-file", os.Getenv("POSTFEED_TEST_VALUE"))
}
