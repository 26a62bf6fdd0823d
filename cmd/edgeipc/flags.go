package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"
)

// Run modes.
const (
	modeRelay = "relay"
	modeCheck = "check"
)

// CLIConfig holds command-line configuration
type CLIConfig struct {
	ConfigPath      string
	LogLevel        string
	LogFormat       string
	Mode            string
	SDKVersion      string
	MetricsPort     int
	ShutdownTimeout time.Duration
	ShowVersion     bool
	Validate        bool
}

func parseFlags(fs *flag.FlagSet, args []string) (*CLIConfig, error) {
	cfg := &CLIConfig{}

	fs.StringVar(&cfg.ConfigPath, "config",
		getEnv("EDGEIPC_CONFIG", ""),
		"Optional YAML configuration layer (env: EDGEIPC_CONFIG)")

	fs.StringVar(&cfg.LogLevel, "log-level",
		getEnv("EDGEIPC_LOG_LEVEL", "info"),
		"Startup log level: debug, info, warn, error (env: EDGEIPC_LOG_LEVEL)")

	fs.StringVar(&cfg.LogFormat, "log-format",
		getEnv("EDGEIPC_LOG_FORMAT", "text"),
		"Startup log format: json, text (env: EDGEIPC_LOG_FORMAT)")

	fs.StringVar(&cfg.Mode, "mode",
		getEnv("EDGEIPC_MODE", modeRelay),
		"Run mode: relay, check (env: EDGEIPC_MODE)")

	fs.StringVar(&cfg.SDKVersion, "sdk-version",
		getEnv("EDGEIPC_SDK_VERSION", ""),
		"Interface version of the function SDK, empty for 1.0 (env: EDGEIPC_SDK_VERSION)")

	fs.IntVar(&cfg.MetricsPort, "metrics-port",
		getEnvInt("EDGEIPC_METRICS_PORT", 0),
		"Prometheus metrics port, 0 to disable (env: EDGEIPC_METRICS_PORT)")

	fs.DurationVar(&cfg.ShutdownTimeout, "shutdown-timeout",
		getEnvDuration("EDGEIPC_SHUTDOWN_TIMEOUT", 5*time.Second),
		"Graceful shutdown timeout (env: EDGEIPC_SHUTDOWN_TIMEOUT)")

	fs.BoolVar(&cfg.ShowVersion, "version", false, "Show version information")
	fs.BoolVar(&cfg.Validate, "validate", false, "Validate configuration and exit")

	fs.Usage = func() { printDetailedHelp(fs) }

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	return cfg, nil
}

func validateFlags(cfg *CLIConfig) error {
	if cfg.ShowVersion {
		return nil
	}

	if cfg.ConfigPath != "" {
		if _, err := os.Stat(cfg.ConfigPath); err != nil {
			return fmt.Errorf("config file not found: %s", cfg.ConfigPath)
		}
	}

	if !contains([]string{"debug", "info", "warn", "error"}, cfg.LogLevel) {
		return fmt.Errorf("invalid log level: %s", cfg.LogLevel)
	}

	if !contains([]string{"json", "text"}, cfg.LogFormat) {
		return fmt.Errorf("invalid log format: %s", cfg.LogFormat)
	}

	if !contains([]string{modeRelay, modeCheck}, cfg.Mode) {
		return fmt.Errorf("invalid mode: %s", cfg.Mode)
	}

	if cfg.MetricsPort < 0 || cfg.MetricsPort > 65535 {
		return fmt.Errorf("invalid metrics port: %d", cfg.MetricsPort)
	}

	return nil
}

func printDetailedHelp(fs *flag.FlagSet) {
	out := fs.Output()
	_, _ = fmt.Fprintf(out, `%s - function runtime message and log plumbing

Usage: %s [options]

Options:
`, appName, fs.Name())
	fs.PrintDefaults()
	_, _ = fmt.Fprintf(out, `
Host environment:
  _GG_LOG_FD_{INFO,ERROR,DEBUG,WARN,FATAL}  inherited log descriptors
  LOG_LEVEL                               minimum severity
  ENCODING_TYPE                           json or binary
  GGC_MAX_INTERFACE_VERSION               highest interface version spoken
  MY_FUNCTION_ARN, AWS_CONTAINER_AUTHORIZATION_TOKEN
  EDGEIPC_NATS_URL, EDGEIPC_NATS_SUBJECT  optional NATS relay

Examples:
  # Check SDK compatibility
  %s --mode=check --sdk-version=1.1

  # Relay frames with metrics
  %s --metrics-port=9090

Version: %s
Build: %s
`, fs.Name(), fs.Name(), Version, BuildTime)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
