package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLoggerWithService(t *testing.T) {
	var buf bytes.Buffer
	l := NewLoggerWithService("svc-a", logrus.InfoLevel)
	l.SetOutput(&buf)

	l.WithField("k", "v").Info("hello")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "svc-a", entry["service"])
	assert.Equal(t, "v", entry["k"])
	assert.Equal(t, "hello", entry["msg"])
}

func TestNewLogger_Level(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(logrus.WarnLevel)
	l.SetOutput(&buf)

	l.Info("dropped")
	assert.Zero(t, buf.Len())

	l.Warn("kept")
	assert.NotZero(t, buf.Len())
}

func TestWatermillAdapter(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(logrus.DebugLevel)
	l.SetOutput(&buf)

	adapter := NewWatermillAdapter(l).With(watermill.LogFields{"pubsub": "test"})
	adapter.Error("publish failed", errors.New("boom"), watermill.LogFields{"topic": "POST_ADDED"})

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "error", entry["level"])
	assert.Equal(t, "boom", entry["error"])
	assert.Equal(t, "POST_ADDED", entry["topic"])
	assert.Equal(t, "test", entry["pubsub"])
	assert.Equal(t, "watermill", entry["component"])

	t.Run("Info is logged at debug", func(t *testing.T) {
		buf.Reset()
		adapter.Info("No subscribers to send message", nil)

		require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
		assert.Equal(t, "debug", entry["level"])
	})
}
