package logger

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/accordkit/accord/config"
)

// newFileLogger builds a JSON logger backed by a temp file and returns
// it together with a reader that decodes every entry written so far.
func newFileLogger(t *testing.T, level string) (*Logger, func() []map[string]any) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "accord.log")
	log, err := NewLogger(&config.LoggingConfig{
		Level:    level,
		Format:   "json",
		Output:   "file",
		FilePath: path,
	})
	require.NoError(t, err)
	t.Cleanup(func() { log.Close() })

	return log, func() []map[string]any {
		require.NoError(t, log.Sync())
		raw, err := os.ReadFile(path)
		require.NoError(t, err)

		var entries []map[string]any
		for _, line := range strings.Split(strings.TrimSpace(string(raw)), "\n") {
			if line == "" {
				continue
			}
			var entry map[string]any
			require.NoError(t, json.Unmarshal([]byte(line), &entry))
			entries = append(entries, entry)
		}
		return entries
	}
}

func TestNewLogger(t *testing.T) {
	t.Run("file output records structured entries", func(t *testing.T) {
		log, entries := newFileLogger(t, "info")

		log.InfoContext(context.Background(), "message dispatched",
			zap.Uint64("channel_id", 2),
			zap.Uint64("message_id", 3),
		)

		got := entries()
		require.Len(t, got, 1)
		assert.Equal(t, "info", got[0]["level"])
		assert.Equal(t, "message dispatched", got[0]["message"])
		assert.Equal(t, float64(2), got[0]["channel_id"])
	})

	t.Run("console format for stdout", func(t *testing.T) {
		log, err := NewLogger(&config.LoggingConfig{Level: "debug", Format: "text", Output: "stdout"})
		require.NoError(t, err)
		log.DebugContext(context.Background(), "gateway frame received")
	})

	t.Run("unknown level falls back to info", func(t *testing.T) {
		log, entries := newFileLogger(t, "extremely-verbose")

		log.DebugContext(context.Background(), "dropped")
		log.InfoContext(context.Background(), "kept")

		got := entries()
		require.Len(t, got, 1)
		assert.Equal(t, "kept", got[0]["message"])
	})
}

func TestLevelFiltering(t *testing.T) {
	log, entries := newFileLogger(t, "warn")
	ctx := context.Background()

	log.DebugContext(ctx, "cache miss")
	log.InfoContext(ctx, "message sent")
	log.WarnContext(ctx, "rate limited")
	log.ErrorContext(ctx, "send failed")

	got := entries()
	require.Len(t, got, 2)
	assert.Equal(t, "rate limited", got[0]["message"])
	assert.Equal(t, "error", got[1]["level"])
}

func TestContextTraceFields(t *testing.T) {
	t.Run("trace ID from context lands in the entry", func(t *testing.T) {
		log, entries := newFileLogger(t, "info")
		ctx := WithTraceID(context.Background(), "reply-4821")

		log.InfoContext(ctx, "reply sent")

		got := entries()
		require.Len(t, got, 1)
		assert.Equal(t, "reply-4821", got[0]["trace_id"])
	})

	t.Run("no trace ID means no trace field", func(t *testing.T) {
		log, entries := newFileLogger(t, "info")

		log.InfoContext(context.Background(), "reply sent")

		got := entries()
		require.Len(t, got, 1)
		assert.NotContains(t, got[0], "trace_id")
	})

	t.Run("WithTraceID pins the field on every entry", func(t *testing.T) {
		log, entries := newFileLogger(t, "info")
		traced := log.WithTraceID("edit-77")

		traced.InfoContext(context.Background(), "validated")
		traced.InfoContext(context.Background(), "committed")

		got := entries()
		require.Len(t, got, 2)
		assert.Equal(t, "edit-77", got[0]["trace_id"])
		assert.Equal(t, "edit-77", got[1]["trace_id"])
	})

	t.Run("WithFields composes with context traces", func(t *testing.T) {
		log, entries := newFileLogger(t, "info")
		svc := log.WithFields(zap.String("service", "messages"), zap.Uint64("guild_id", 1))
		ctx := WithTraceID(context.Background(), "pin-9")

		svc.WarnContext(ctx, "pin denied")

		got := entries()
		require.Len(t, got, 1)
		assert.Equal(t, "messages", got[0]["service"])
		assert.Equal(t, float64(1), got[0]["guild_id"])
		assert.Equal(t, "pin-9", got[0]["trace_id"])
	})
}

func TestNopLogger(t *testing.T) {
	log := NewNopLogger()
	require.NotNil(t, log)

	ctx := WithTraceID(context.Background(), "discarded")
	log.DebugContext(ctx, "nothing")
	log.InfoContext(ctx, "nothing")
	log.WarnContext(ctx, "nothing")
	log.ErrorContext(ctx, "nothing")

	// Derived loggers stay usable and silent.
	log.WithTraceID("x").WithFields(zap.Int("n", 1)).InfoContext(ctx, "still nothing")

	assert.NoError(t, log.Sync())
	assert.NoError(t, log.Close())
}

func TestLoggerClose(t *testing.T) {
	path := filepath.Join(t.TempDir(), "accord.log")
	log, err := NewLogger(&config.LoggingConfig{
		Level:    "info",
		Format:   "json",
		Output:   "file",
		FilePath: path,
	})
	require.NoError(t, err)

	log.InfoContext(context.Background(), "shutting down")
	require.NoError(t, log.Close())

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), "shutting down")
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		input string
		want  zapcore.Level
	}{
		{"debug", zapcore.DebugLevel},
		{"info", zapcore.InfoLevel},
		{"warn", zapcore.WarnLevel},
		{"error", zapcore.ErrorLevel},
		{"fatal", zapcore.FatalLevel},
		{"", zapcore.InfoLevel},
		{"nonsense", zapcore.InfoLevel},
	}
	for _, tt := range tests {
		got, err := parseLogLevel(tt.input)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "level %q", tt.input)
	}
}

func TestPresetConstructors(t *testing.T) {
	dev, err := NewDevelopmentLogger()
	require.NoError(t, err)
	require.NotNil(t, dev)

	prod, err := NewProductionLogger()
	require.NoError(t, err)
	require.NotNil(t, prod)
}
