// Package main is the edgeipc runtime process: it checks interface
// compatibility, routes function logs to the host's severity descriptors and
// relays framed messages over stdio, optionally through NATS.
package main

import (
	"context"
	stderrors "errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"runtime/debug"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"github.com/c360/edgeipc/config"
	"github.com/c360/edgeipc/errors"
	"github.com/c360/edgeipc/health"
	"github.com/c360/edgeipc/ipc"
	"github.com/c360/edgeipc/message"
	"github.com/c360/edgeipc/metric"
	"github.com/c360/edgeipc/natsclient"
	"github.com/c360/edgeipc/pkg/retry"
	"github.com/c360/edgeipc/version"
)

// Build information (set via ldflags)
var (
	Version   = "0.1.0"
	BuildTime = "dev"
)

const appName = "edgeipc"

func main() {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "PANIC: %v\n%s\n", r, debug.Stack())
			os.Exit(2)
		}
	}()

	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	cliCfg, err := parseFlags(flag.NewFlagSet(appName, flag.ContinueOnError), args)
	if err != nil {
		if stderrors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}

	if cliCfg.ShowVersion {
		fmt.Printf("%s version %s (build: %s)\n", appName, Version, BuildTime)
		return nil
	}

	if err := validateFlags(cliCfg); err != nil {
		return fmt.Errorf("invalid flags: %w", err)
	}

	logger := setupLogger(os.Stderr, cliCfg.LogLevel, cliCfg.LogFormat)

	loader := config.NewLoader()
	if cliCfg.ConfigPath != "" {
		loader.AddLayer(cliCfg.ConfigPath)
	}
	loader.EnableValidation(true)

	rc, err := loader.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger.Debug("Configuration loaded", "config", rc.String())

	if cliCfg.Validate {
		logger.Info("Configuration is valid")
		return nil
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	switch cliCfg.Mode {
	case modeCheck:
		return checkInterface(rc, cliCfg.SDKVersion, logger)
	default:
		return runRelay(ctx, rc, cliCfg, logger)
	}
}

func checkInterface(rc *config.Runtime, sdkVersion string, logger *slog.Logger) error {
	if rc.MaxInterfaceVersion == "" {
		return errors.Configuration("main", "checkInterface",
			"missing %s environment variable", config.EnvMaxInterface)
	}
	if err := version.CheckCompatible(sdkVersion, rc.MaxInterfaceVersion); err != nil {
		return err
	}
	if sdkVersion == "" {
		sdkVersion = version.DefaultSDKVersion
	}
	logger.Info("Interface version compatible", "sdk", sdkVersion, "max", rc.MaxInterfaceVersion)
	return nil
}

func runRelay(ctx context.Context, rc *config.Runtime, cliCfg *CLIConfig, logger *slog.Logger) error {
	if err := rc.RequireHost(); err != nil {
		return err
	}
	if err := checkInterface(rc, cliCfg.SDKVersion, logger); err != nil {
		return err
	}

	registry := metric.NewMetricsRegistry()
	metrics := registry.CoreMetrics()
	if err := registerBuildInfo(registry, rc.InstanceID); err != nil {
		return err
	}

	if _, err := installRuntimeLogger(rc, metrics); err != nil {
		return fmt.Errorf("open log channels: %w", err)
	}
	// From here on the function's logs go to the host descriptors.
	rlog := slog.Default().With("component", "relay")

	codec, err := rc.Codec()
	if err != nil {
		return err
	}
	codec = message.Instrument(codec, metrics)
	stream := ipc.NewStream(os.Stdin, os.Stdout, codec, ipc.WithStreamMetrics(metrics))

	relay := &ipc.Relay{Stream: stream, Logger: rlog}

	var running atomic.Bool
	monitor := health.NewMonitor(appName)
	monitor.Register("relay", func(context.Context) health.Status {
		if running.Load() {
			return health.NewHealthy("relay", "pumping frames")
		}
		return health.NewUnhealthy("relay", "not running")
	})

	if rc.NATS.URL != "" {
		client, err := natsclient.NewClient(rc.NATS.URL,
			natsclient.WithName(appName+"-"+rc.InstanceID),
			natsclient.WithLogger(slog.Default()),
			natsclient.WithMetrics(metrics),
		)
		if err != nil {
			return err
		}
		if err := client.ConnectWithRetry(ctx, retry.Quick()); err != nil {
			return fmt.Errorf("connect to NATS: %w", err)
		}
		defer func() {
			closeCtx, cancel := context.WithTimeout(context.Background(), cliCfg.ShutdownTimeout)
			defer cancel()
			if err := client.Close(closeCtx); err != nil {
				rlog.Warn("NATS close failed", "error", err)
			}
		}()

		relay.Transport = ipc.NewNATSTransport(client, codec,
			ipc.WithLogger(rlog),
			ipc.WithTransportMetrics(metrics),
		)
		relay.Subject = rc.NATS.Subject

		monitor.Register("nats", func(context.Context) health.Status {
			switch status := client.Status(); {
			case client.IsHealthy():
				return health.NewHealthy("nats", status.String())
			case status == natsclient.StatusReconnecting:
				return health.NewDegraded("nats", status.String())
			default:
				return health.NewUnhealthy("nats", status.String())
			}
		})
	}

	// The relay ending on EOF also stops the metrics server.
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gctx := errgroup.WithContext(ctx)

	relayDone := make(chan error, 1)
	running.Store(true)
	g.Go(func() error {
		defer cancel()
		defer running.Store(false)
		err := relay.Run(gctx)
		relayDone <- err
		return err
	})

	if cliCfg.MetricsPort > 0 {
		server := metric.NewServer(cliCfg.MetricsPort, "/metrics", registry)
		server.SetHealthHandler(monitor.Handler())
		g.Go(server.Start)
		g.Go(func() error {
			<-gctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), cliCfg.ShutdownTimeout)
			defer cancel()
			return server.Stop(shutdownCtx)
		})
		rlog.Info("Metrics server listening", "address", server.Address())
	}

	rlog.Info("Relay started", "encoding", codec.Name(), "nats", rc.NATS.URL != "")

	done := make(chan error, 1)
	go func() { done <- g.Wait() }()

	if err := awaitShutdown(ctx, done, relayDone, cliCfg.ShutdownTimeout, rlog); err != nil {
		return fmt.Errorf("relay: %w", err)
	}
	rlog.Info("Relay stopped")
	return nil
}

// awaitShutdown waits for the errgroup. Once ctx is done the group gets
// timeout to finish, since stdin may not be pollable. On timeout the relay's
// own result is still reported if it has one.
func awaitShutdown(ctx context.Context, done, relayDone <-chan error, timeout time.Duration, logger *slog.Logger) error {
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
	}

	select {
	case err := <-done:
		return err
	case <-time.After(timeout):
		logger.Warn("Shutdown timeout exceeded", "timeout", timeout)
		select {
		case err := <-relayDone:
			return err
		default:
			return nil
		}
	}
}

func registerBuildInfo(registry *metric.MetricsRegistry, instanceID string) error {
	info := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "edgeipc",
		Name:      "build_info",
		Help:      "Build information of the running edgeipc process",
	}, []string{"version", "build_time", "instance"})
	info.WithLabelValues(Version, BuildTime, instanceID).Set(1)
	return registry.Register(appName, "build_info", info)
}
