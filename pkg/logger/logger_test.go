package logger_test

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/happyculture/soco-concierge/pkg/logger"
	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, logger.ParseLevel("debug"))
	assert.Equal(t, slog.LevelWarn, logger.ParseLevel("WARN"))
	assert.Equal(t, slog.LevelError, logger.ParseLevel(" error "))
	assert.Equal(t, slog.LevelInfo, logger.ParseLevel("nonsense"))
	assert.Equal(t, slog.LevelInfo, logger.ParseLevel(""))
}

func TestColorHandlerLevels(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(&buf, slog.LevelDebug)

	log.Error("retrieval failed")
	assert.Contains(t, buf.String(), "\033[31m")

	buf.Reset()
	log.Warn("embedding retry")
	assert.Contains(t, buf.String(), "\033[33m")

	buf.Reset()
	log.Info("question blocked", "reason", "api_key")
	out := buf.String()
	assert.Contains(t, out, "\033[35m")
	assert.Contains(t, out, "reason=api_key")

	buf.Reset()
	log.Info("request served")
	assert.NotContains(t, buf.String(), "\033[")
}

func TestColorHandlerRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(&buf, slog.LevelWarn)

	log.Info("quiet")
	assert.Empty(t, buf.String())

	log.Warn("loud")
	assert.True(t, strings.Contains(buf.String(), "loud"))
}

func TestWithAttrs(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(&buf, slog.LevelDebug).With("component", "pipeline")

	log.Info("state change", "state", "classified")
	out := buf.String()
	assert.Contains(t, out, "component=pipeline")
	assert.Contains(t, out, "state=classified")
}
