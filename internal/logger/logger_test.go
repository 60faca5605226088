package logger_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fitai-backend/internal/logger"
)

func TestNew_JSON(t *testing.T) {
	var buf bytes.Buffer
	l := logger.New(logger.WithWriter(&buf), logger.WithFormat("json"))
	l.Info("attempting model", "model", "openai/gpt-4o")

	var parsed map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &parsed))
	assert.Equal(t, "attempting model", parsed["msg"])
	assert.Equal(t, "openai/gpt-4o", parsed["model"])
}

func TestNew_PrettyWritesMessage(t *testing.T) {
	var buf bytes.Buffer
	l := logger.New(logger.WithWriter(&buf))
	l.Info("server ready", "port", "8080")

	assert.Contains(t, buf.String(), "server ready")
	assert.Contains(t, buf.String(), "8080")
}

func TestNew_DebugFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := logger.New(logger.WithWriter(&buf), logger.WithFormat("text"))
	l.Debug("hidden")
	assert.Empty(t, buf.String())

	buf.Reset()
	l = logger.New(logger.WithWriter(&buf), logger.WithFormat("text"), logger.WithDebug(true))
	l.Debug("shown")
	assert.Contains(t, buf.String(), "shown")
}

func TestWithLevel(t *testing.T) {
	var buf bytes.Buffer
	l := logger.New(logger.WithWriter(&buf), logger.WithFormat("text"), logger.WithLevel("warn"))
	l.Info("quiet")
	assert.Empty(t, buf.String())

	l.Warn("loud")
	assert.Contains(t, buf.String(), "loud")
}

func TestNop(t *testing.T) {
	l := logger.Nop()
	assert.False(t, l.Handler().Enabled(context.Background(), slog.LevelError))
	assert.NotPanics(t, func() {
		l.With("k", "v").WithGroup("g").Error("nothing")
	})
}
