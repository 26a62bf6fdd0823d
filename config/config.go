package config

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/c360/edgeipc/errors"
	"github.com/c360/edgeipc/logging"
	"github.com/c360/edgeipc/message"
	"github.com/c360/edgeipc/version"
)

// Environment keys set by the host for every function process.
const (
	EnvLogFDInfo    = "_GG_LOG_FD_INFO"
	EnvLogFDError   = "_GG_LOG_FD_ERROR"
	EnvLogFDDebug   = "_GG_LOG_FD_DEBUG"
	EnvLogFDWarn    = "_GG_LOG_FD_WARN"
	EnvLogFDFatal   = "_GG_LOG_FD_FATAL"
	EnvLogLevel     = "LOG_LEVEL"
	EnvFunctionARN  = "MY_FUNCTION_ARN"
	EnvAuthToken    = "AWS_CONTAINER_AUTHORIZATION_TOKEN"
	EnvEncodingType = "ENCODING_TYPE"
	EnvMaxInterface = "GGC_MAX_INTERFACE_VERSION"
)

// Environment keys owned by edgeipc itself.
const (
	EnvNATSURL     = "EDGEIPC_NATS_URL"
	EnvNATSSubject = "EDGEIPC_NATS_SUBJECT"
	EnvInstanceID  = "EDGEIPC_INSTANCE_ID"
)

// unsetFD marks a log descriptor the host did not provide.
const unsetFD = -1

// LogFDs holds the inherited descriptor for each routable severity.
type LogFDs struct {
	Info  int `yaml:"info"`
	Error int `yaml:"error"`
	Debug int `yaml:"debug"`
	Warn  int `yaml:"warn"`
	Fatal int `yaml:"fatal"`
}

// NATSConfig configures the optional NATS relay.
type NATSConfig struct {
	URL     string `yaml:"url"`
	Subject string `yaml:"subject"`
}

// Runtime is the process configuration for a function runtime.
type Runtime struct {
	LogFDs              LogFDs     `yaml:"log_fds"`
	LogLevel            string     `yaml:"log_level"`
	FunctionARN         string     `yaml:"function_arn"`
	AuthToken           string     `yaml:"-"` // environment only
	EncodingType        string     `yaml:"encoding_type"`
	MaxInterfaceVersion string     `yaml:"max_interface_version"`
	NATS                NATSConfig `yaml:"nats"`
	InstanceID          string     `yaml:"instance_id"`
}

// Loader builds a Runtime from defaults, YAML layers and the environment,
// in that order.
type Loader struct {
	layers     []string
	validation bool
	getenv     func(string) string
}

// NewLoader creates a loader that reads the process environment.
func NewLoader() *Loader {
	return &Loader{
		layers: []string{},
		getenv: os.Getenv,
	}
}

// AddLayer adds a YAML file layer. Later layers override earlier ones.
func (l *Loader) AddLayer(path string) {
	l.layers = append(l.layers, path)
}

// EnableValidation enables or disables validation at the end of Load.
func (l *Loader) EnableValidation(enable bool) {
	l.validation = enable
}

// WithEnv replaces the environment lookup.
func (l *Loader) WithEnv(getenv func(string) string) *Loader {
	l.getenv = getenv
	return l
}

// Load merges all layers and the environment.
func (l *Loader) Load() (*Runtime, error) {
	cfg := l.getDefaults()

	for _, path := range l.layers {
		if err := l.loadYAML(path, cfg); err != nil {
			return nil, err
		}
	}

	if err := l.applyEnvOverrides(cfg); err != nil {
		return nil, err
	}

	if cfg.InstanceID == "" {
		cfg.InstanceID = uuid.NewString()
	}

	if l.validation {
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

func (l *Loader) getDefaults() *Runtime {
	return &Runtime{
		LogFDs: LogFDs{
			Info:  unsetFD,
			Error: unsetFD,
			Debug: unsetFD,
			Warn:  unsetFD,
			Fatal: unsetFD,
		},
		EncodingType: message.EncodingJSON,
		NATS: NATSConfig{
			Subject: "edgeipc.messages",
		},
	}
}

func (l *Loader) loadYAML(path string, cfg *Runtime) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.WrapFatal(err, "Loader", "Load", fmt.Sprintf("read %s", path))
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && err != io.EOF {
		return errors.Configuration("Loader", "Load", "parse %s: %v", path, err)
	}
	return nil
}

func (l *Loader) applyEnvOverrides(cfg *Runtime) error {
	fds := []struct {
		key string
		dst *int
	}{
		{EnvLogFDInfo, &cfg.LogFDs.Info},
		{EnvLogFDError, &cfg.LogFDs.Error},
		{EnvLogFDDebug, &cfg.LogFDs.Debug},
		{EnvLogFDWarn, &cfg.LogFDs.Warn},
		{EnvLogFDFatal, &cfg.LogFDs.Fatal},
	}
	for _, fd := range fds {
		val := l.getenv(fd.key)
		if val == "" {
			continue
		}
		n, err := strconv.Atoi(val)
		if err != nil {
			return errors.Configuration("Loader", "Load", "%s is not a descriptor: %q", fd.key, val)
		}
		*fd.dst = n
	}

	strs := []struct {
		key string
		dst *string
	}{
		{EnvLogLevel, &cfg.LogLevel},
		{EnvFunctionARN, &cfg.FunctionARN},
		{EnvAuthToken, &cfg.AuthToken},
		{EnvEncodingType, &cfg.EncodingType},
		{EnvMaxInterface, &cfg.MaxInterfaceVersion},
		{EnvNATSURL, &cfg.NATS.URL},
		{EnvNATSSubject, &cfg.NATS.Subject},
		{EnvInstanceID, &cfg.InstanceID},
	}
	for _, s := range strs {
		if val := l.getenv(s.key); val != "" {
			*s.dst = val
		}
	}
	return nil
}

// Validate checks the format of every value that is set.
func (c *Runtime) Validate() error {
	if _, err := c.Threshold(); err != nil {
		return err
	}

	if _, err := message.CodecFor(c.EncodingType); err != nil {
		return errors.Configuration("Runtime", "Validate", "invalid %s %q", EnvEncodingType, c.EncodingType)
	}

	if c.MaxInterfaceVersion != "" {
		if _, err := version.Parse(c.MaxInterfaceVersion); err != nil {
			return errors.Configuration("Runtime", "Validate", "invalid %s %q", EnvMaxInterface, c.MaxInterfaceVersion)
		}
	}

	for _, fd := range c.fdTable() {
		if fd.fd < unsetFD {
			return errors.Configuration("Runtime", "Validate", "negative descriptor %d in %s", fd.fd, fd.key)
		}
	}

	if c.NATS.URL != "" && c.NATS.Subject == "" {
		return errors.Configuration("Runtime", "Validate", "%s requires %s", EnvNATSURL, EnvNATSSubject)
	}

	return nil
}

// RequireHost checks that the host provided everything a function process
// needs before it starts serving.
func (c *Runtime) RequireHost() error {
	required := []struct {
		key string
		val string
	}{
		{EnvFunctionARN, c.FunctionARN},
		{EnvAuthToken, c.AuthToken},
		{EnvEncodingType, c.EncodingType},
		{EnvMaxInterface, c.MaxInterfaceVersion},
	}
	for _, r := range required {
		if r.val == "" {
			return errors.Configuration("Runtime", "RequireHost", "missing %s environment variable", r.key)
		}
	}

	_, err := c.Severities()
	return err
}

// Threshold parses LogLevel into the router's minimum severity.
func (c *Runtime) Threshold() (logging.Severity, error) {
	return logging.ParseThreshold(c.LogLevel)
}

// Severities converts the descriptor table for logging.OpenChannels. Every
// routable severity must have a descriptor.
func (c *Runtime) Severities() (map[logging.Severity]int, error) {
	out := make(map[logging.Severity]int, len(logging.Routable))
	for _, fd := range c.fdTable() {
		if fd.fd == unsetFD {
			return nil, errors.Configuration("Runtime", "Severities", "missing %s environment variable", fd.key)
		}
		if fd.fd < 0 {
			return nil, errors.Configuration("Runtime", "Severities", "negative descriptor %d in %s", fd.fd, fd.key)
		}
		out[fd.severity] = fd.fd
	}
	return out, nil
}

// Codec returns the message codec selected by EncodingType.
func (c *Runtime) Codec() (message.Codec, error) {
	return message.CodecFor(c.EncodingType)
}

type fdEntry struct {
	key      string
	severity logging.Severity
	fd       int
}

func (c *Runtime) fdTable() []fdEntry {
	return []fdEntry{
		{EnvLogFDInfo, logging.SeverityInfo, c.LogFDs.Info},
		{EnvLogFDError, logging.SeverityError, c.LogFDs.Error},
		{EnvLogFDDebug, logging.SeverityDebug, c.LogFDs.Debug},
		{EnvLogFDWarn, logging.SeverityWarning, c.LogFDs.Warn},
		{EnvLogFDFatal, logging.SeverityCritical, c.LogFDs.Fatal},
	}
}

// String renders the configuration with the auth token masked.
func (c *Runtime) String() string {
	masked := *c
	if masked.AuthToken != "" {
		masked.AuthToken = "****"
	}
	return fmt.Sprintf("%+v", masked)
}
