package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/smb-finance-ledger/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{" error ", slog.LevelError},
		{"verbose", slog.LevelInfo},
		{"", slog.LevelInfo},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLevel(tt.in))
		})
	}
}

func testConfig(level string) *config.Config {
	return &config.Config{
		Application: config.ApplicationConfig{Name: "event_processor", Env: "test"},
		Logging:     config.LoggingConfig{Level: level},
	}
}

func TestNewLogger_TagsEveryLine(t *testing.T) {
	var buf bytes.Buffer
	log := newLogger(&buf, testConfig("info"))

	log.Info("Released stale staging locks", "count", 2)

	var line map[string]interface{}
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &line))
	assert.Equal(t, "event_processor", line["app"])
	assert.Equal(t, "test", line["env"])
	assert.EqualValues(t, 2, line["count"])
	assert.NotContains(t, line, "source")
}

func TestNewLogger_DebugAddsSource(t *testing.T) {
	var buf bytes.Buffer
	log := newLogger(&buf, testConfig("debug"))

	assert.True(t, log.Enabled(context.Background(), slog.LevelDebug))
	assert.Contains(t, buf.String(), `"msg":"logger initialized"`)
	assert.Contains(t, buf.String(), `"source":`)
}

func TestNewLogger_LevelFilters(t *testing.T) {
	var buf bytes.Buffer
	log := newLogger(&buf, testConfig("warn"))

	log.Info("ignored")
	assert.Empty(t, buf.String())
	assert.True(t, log.Enabled(context.Background(), slog.LevelError))
}
