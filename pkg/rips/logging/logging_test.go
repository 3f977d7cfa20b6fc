package logging_test

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hsiuhsiu/rips-go/pkg/rips/logging"
)

func TestSlogBackend(t *testing.T) {
	var buf bytes.Buffer
	handler := slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})
	logger := logging.New(slog.New(handler)).With("component", "rips")

	ctx := context.Background()
	logger.Debug(ctx, "resize", "scale", 0.5)
	logger.Warn(ctx, "vips", "domain", "VIPS")

	out := buf.String()
	assert.Contains(t, out, "level=DEBUG")
	assert.Contains(t, out, "msg=resize")
	assert.Contains(t, out, "component=rips")
	assert.Contains(t, out, "scale=0.5")
	assert.Contains(t, out, "level=WARN")
}

func TestSlogBackendDefault(t *testing.T) {
	assert.NotNil(t, logging.New(nil))
}

func TestLogrusBackend(t *testing.T) {
	base, hook := test.NewNullLogger()
	base.SetLevel(logrus.DebugLevel)
	logger := logging.NewLogrus(base).With("component", "rips")

	ctx := context.Background()
	logger.Info(ctx, "vips initialized", "program", "rips", slog.Bool("leak_checks", true))
	logger.Error(ctx, "failed", "dangling")

	entries := hook.AllEntries()
	require.Len(t, entries, 2)

	assert.Equal(t, logrus.InfoLevel, entries[0].Level)
	assert.Equal(t, "vips initialized", entries[0].Message)
	assert.Equal(t, "rips", entries[0].Data["component"])
	assert.Equal(t, "rips", entries[0].Data["program"])
	assert.Equal(t, true, entries[0].Data["leak_checks"])

	assert.Equal(t, logrus.ErrorLevel, entries[1].Level)
	assert.Equal(t, "dangling", entries[1].Data["!BADKEY"])
}

func TestNop(t *testing.T) {
	logger := logging.Nop().With("k", "v")
	logger.Info(context.Background(), "ignored")
	logger.Error(context.Background(), "ignored")
}
