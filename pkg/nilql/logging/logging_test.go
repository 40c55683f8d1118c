package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestSlogLogger(t *testing.T) {
	var buf bytes.Buffer
	l := New(slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))

	l.With("component", "test").Info(context.Background(), "key loaded", "nodes", 3, Redacted("material"))

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "key loaded", rec["msg"])
	assert.Equal(t, "INFO", rec["level"])
	assert.Equal(t, "test", rec["component"])
	assert.Equal(t, float64(3), rec["nodes"])
	assert.Equal(t, Placeholder(), rec["material"])
}

func TestNewDefaultsToSlogDefault(t *testing.T) {
	assert.NotNil(t, New(nil))
	assert.NotNil(t, OrNop(nil))

	l := Nop()
	assert.Same(t, l, OrNop(l))
	l.Error(context.Background(), "discarded")
}

func TestZapLogger(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := NewZap(zap.New(core)).With("component", "test")

	ctx := context.Background()
	l.Debug(ctx, "debug", "n", 1)
	l.Info(ctx, "info", Redacted("share"), slog.Int("count", 2), slog.Bool("ok", true))
	l.Warn(ctx, "warn", "dangling")
	l.Error(ctx, "error", 42)

	entries := logs.All()
	require.Len(t, entries, 4)

	assert.Equal(t, zapcore.DebugLevel, entries[0].Level)
	assert.Equal(t, map[string]any{"component": "test", "n": int64(1)}, entries[0].ContextMap())

	info := entries[1].ContextMap()
	assert.Equal(t, Placeholder(), info["share"])
	assert.Equal(t, int64(2), info["count"])
	assert.Equal(t, true, info["ok"])

	assert.Equal(t, "dangling", entries[2].ContextMap()["!BADKEY"])
	assert.Equal(t, "42", entries[3].ContextMap()["!BADKEY"])
}
