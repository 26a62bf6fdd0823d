package main

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/c360/edgeipc/config"
	"github.com/c360/edgeipc/logging"
	"github.com/c360/edgeipc/metric"
)

// setupLogger builds the startup logger. It writes to stderr because stdout
// carries frames in relay mode.
func setupLogger(w io.Writer, level, format string) *slog.Logger {
	var logLevel slog.Level
	switch strings.ToLower(level) {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level:     logLevel,
		AddSource: logLevel == slog.LevelDebug,
	}

	var handler slog.Handler
	if strings.ToLower(format) == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	return slog.New(handler).With(
		"service", appName,
		"version", Version,
		"pid", os.Getpid(),
	)
}

// installRuntimeLogger opens the host's severity channels and sends slog and
// the standard log package through them.
func installRuntimeLogger(rc *config.Runtime, metrics *metric.Metrics) (*logging.Router, error) {
	fds, err := rc.Severities()
	if err != nil {
		return nil, err
	}
	writers, err := logging.OpenChannels(fds)
	if err != nil {
		return nil, err
	}
	threshold, err := rc.Threshold()
	if err != nil {
		return nil, err
	}

	router, err := logging.NewRouter(writers, threshold, logging.WithMetrics(metrics))
	if err != nil {
		return nil, err
	}

	slog.SetDefault(slog.New(logging.NewHandler(router, nil)).With("instance", rc.InstanceID))
	logging.RedirectStdLog(router, logging.SeverityError)
	return router, nil
}
