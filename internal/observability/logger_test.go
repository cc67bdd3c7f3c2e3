package observability

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/couchcryptid/weather-widget/internal/config"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, &config.Config{LogLevel: "info", LogFormat: "json"})

	logger.Debug("hidden")
	logger.Info("report published", "cycle_id", "c-1")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "report published", entry["msg"])
	assert.Equal(t, "c-1", entry["cycle_id"])
	assert.Equal(t, "weather-widget", entry["app"])
}

func TestNewLogger_Text(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, &config.Config{LogLevel: "debug", LogFormat: "text"})

	logger.Debug("scanning payload", "lines", 12)

	assert.Contains(t, buf.String(), "scanning payload")
	assert.Contains(t, buf.String(), "lines")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, parseLevel("debug"))
	assert.Equal(t, slog.LevelWarn, parseLevel("warn"))
	assert.Equal(t, slog.LevelError, parseLevel("error"))
	assert.Equal(t, slog.LevelInfo, parseLevel("info"))
	assert.Equal(t, slog.LevelInfo, parseLevel(""))
}

func TestNewMetricsForTesting_Independent(t *testing.T) {
	a := NewMetricsForTesting()
	b := NewMetricsForTesting()

	a.FetchErrors.Inc()
	a.FieldsExtracted.WithLabelValues("temperature").Add(2)

	assert.Equal(t, 1.0, testutil.ToFloat64(a.FetchErrors))
	assert.Equal(t, 0.0, testutil.ToFloat64(b.FetchErrors))
	assert.Equal(t, 2.0, testutil.ToFloat64(a.FieldsExtracted.WithLabelValues("temperature")))
}
