package logging_test

import (
	"context"
	"log/slog"
	"runtime"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360/edgeipc/logging"
)

func TestSeverityForLevel(t *testing.T) {
	tests := []struct {
		level slog.Level
		want  logging.Severity
	}{
		{slog.LevelDebug - 4, logging.SeverityTrace},
		{slog.LevelDebug, logging.SeverityDebug},
		{slog.LevelInfo, logging.SeverityInfo},
		{slog.LevelInfo + 2, logging.SeverityInfo},
		{slog.LevelWarn, logging.SeverityWarning},
		{slog.LevelError, logging.SeverityError},
		{logging.LevelCritical, logging.SeverityCritical},
		{logging.LevelCritical + 4, logging.SeverityCritical},
	}

	for _, tt := range tests {
		t.Run(tt.level.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, logging.SeverityForLevel(tt.level))
		})
	}
}

func TestHandler_RoutesBySeverity(t *testing.T) {
	router, set := newTestRouter(t, logging.SeverityTrace)
	logger := slog.New(logging.NewHandler(router, nil))

	_, _, line, _ := runtime.Caller(0)
	logger.Info("started", "port", 8080)
	logger.Error("failed", "err", "boom")
	logger.Log(context.Background(), logging.LevelCritical, "gave up")

	origin := "handler_test.go:" + strconv.Itoa(line+1)
	assert.Equal(t, origin+",started port=8080\n", set[logging.SeverityInfo].String())

	origin = "handler_test.go:" + strconv.Itoa(line+2)
	assert.Equal(t, origin+",failed err=boom\n", set[logging.SeverityError].String())

	origin = "handler_test.go:" + strconv.Itoa(line+3)
	assert.Equal(t, origin+",gave up\n", set[logging.SeverityCritical].String())
}

func TestHandler_AttrsAndGroups(t *testing.T) {
	router, set := newTestRouter(t, logging.SeverityTrace)
	logger := slog.New(logging.NewHandler(router, nil)).
		With("component", "relay").
		WithGroup("nats")

	logger.Warn("slow", "subject", "fn.in", slog.Group("rtt", "ms", 12))

	out := set[logging.SeverityWarning].String()
	assert.Contains(t, out, ",slow component=relay nats.subject=fn.in nats.rtt.ms=12\n")
}

func TestHandler_Enabled(t *testing.T) {
	router, set := newTestRouter(t, logging.SeverityWarning)
	h := logging.NewHandler(router, nil)

	assert.False(t, h.Enabled(context.Background(), slog.LevelInfo))
	assert.True(t, h.Enabled(context.Background(), slog.LevelWarn))

	logger := slog.New(h)
	logger.Info("hidden")
	logger.Debug("hidden")
	assert.Empty(t, set[logging.SeverityInfo].String())
	assert.Empty(t, set[logging.SeverityDebug].String())

	h = logging.NewHandler(router, &logging.HandlerOptions{Level: slog.LevelError})
	assert.False(t, h.Enabled(context.Background(), slog.LevelWarn))
	assert.True(t, h.Enabled(context.Background(), slog.LevelError))
}

func TestHandler_ImplementsSlogHandler(t *testing.T) {
	router, _ := newTestRouter(t, logging.SeverityTrace)
	var h slog.Handler = logging.NewHandler(router, nil)
	require.NotNil(t, h)
	assert.Same(t, h, h.WithAttrs(nil))
	assert.Same(t, h, h.WithGroup(""))
}
