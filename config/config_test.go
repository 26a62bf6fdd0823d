package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360/edgeipc/errors"
	"github.com/c360/edgeipc/logging"
	"github.com/c360/edgeipc/message"
)

// hostEnv is a complete environment as the host sets it.
func hostEnv() map[string]string {
	return map[string]string{
		EnvLogFDInfo:    "3",
		EnvLogFDError:   "4",
		EnvLogFDDebug:   "3",
		EnvLogFDWarn:    "3",
		EnvLogFDFatal:   "4",
		EnvLogLevel:     "INFO",
		EnvFunctionARN:  "arn:aws:lambda:us-west-2:123456789012:function:hello:1",
		EnvAuthToken:    "secret-token",
		EnvEncodingType: "binary",
		EnvMaxInterface: "1.1",
	}
}

func loaderFor(env map[string]string) *Loader {
	return NewLoader().WithEnv(func(k string) string { return env[k] })
}

func TestLoader_Defaults(t *testing.T) {
	cfg, err := loaderFor(nil).Load()
	require.NoError(t, err)

	assert.Equal(t, message.EncodingJSON, cfg.EncodingType)
	assert.Equal(t, "edgeipc.messages", cfg.NATS.Subject)
	assert.Empty(t, cfg.NATS.URL)
	assert.Equal(t, -1, cfg.LogFDs.Info)

	_, err = uuid.Parse(cfg.InstanceID)
	assert.NoError(t, err, "instance id should be generated")

	threshold, err := cfg.Threshold()
	require.NoError(t, err)
	assert.Equal(t, logging.SeverityTrace, threshold)
}

func TestLoader_HostEnvironment(t *testing.T) {
	loader := loaderFor(hostEnv())
	loader.EnableValidation(true)

	cfg, err := loader.Load()
	require.NoError(t, err)
	require.NoError(t, cfg.RequireHost())

	fds, err := cfg.Severities()
	require.NoError(t, err)
	assert.Equal(t, map[logging.Severity]int{
		logging.SeverityInfo:     3,
		logging.SeverityError:    4,
		logging.SeverityDebug:    3,
		logging.SeverityWarning:  3,
		logging.SeverityCritical: 4,
	}, fds)

	codec, err := cfg.Codec()
	require.NoError(t, err)
	assert.Equal(t, message.EncodingBinary, codec.Name())
}

func TestLoader_DescriptorZero(t *testing.T) {
	env := hostEnv()
	env[EnvLogFDDebug] = "0"

	cfg, err := loaderFor(env).Load()
	require.NoError(t, err)

	fds, err := cfg.Severities()
	require.NoError(t, err)
	assert.Equal(t, 0, fds[logging.SeverityDebug])
}

func TestLoader_YAMLLayer(t *testing.T) {
	path := filepath.Join(t.TempDir(), "edgeipc.yaml")
	yamlConfig := `
log_level: DEBUG
encoding_type: json
max_interface_version: "1.2"
instance_id: local-dev
log_fds:
  info: 1
  error: 2
  debug: 1
  warn: 2
  fatal: 2
nats:
  url: nats://127.0.0.1:4222
  subject: fn.hello
`
	require.NoError(t, os.WriteFile(path, []byte(yamlConfig), 0o600))

	loader := loaderFor(map[string]string{EnvLogLevel: "ERROR"})
	loader.AddLayer(path)
	loader.EnableValidation(true)

	cfg, err := loader.Load()
	require.NoError(t, err)

	// Environment overrides the file.
	assert.Equal(t, "ERROR", cfg.LogLevel)
	assert.Equal(t, "1.2", cfg.MaxInterfaceVersion)
	assert.Equal(t, "local-dev", cfg.InstanceID)
	assert.Equal(t, "nats://127.0.0.1:4222", cfg.NATS.URL)
	assert.Equal(t, "fn.hello", cfg.NATS.Subject)
	assert.Equal(t, LogFDs{Info: 1, Error: 2, Debug: 1, Warn: 2, Fatal: 2}, cfg.LogFDs)
}

func TestLoader_YAMLErrors(t *testing.T) {
	dir := t.TempDir()

	unknown := filepath.Join(dir, "unknown.yaml")
	require.NoError(t, os.WriteFile(unknown, []byte("log_levle: INFO\n"), 0o600))

	loader := loaderFor(nil)
	loader.AddLayer(unknown)
	_, err := loader.Load()
	require.Error(t, err)
	assert.True(t, errors.IsConfiguration(err))

	loader = loaderFor(nil)
	loader.AddLayer(filepath.Join(dir, "missing.yaml"))
	_, err = loader.Load()
	require.Error(t, err)
	assert.True(t, errors.IsFatal(err))
}

func TestLoader_Validation(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{"bogus log level", EnvLogLevel, "BOGUS"},
		{"lowercase log level", EnvLogLevel, "info"},
		{"unknown encoding", EnvEncodingType, "xml"},
		{"bad max interface version", EnvMaxInterface, "one.two"},
		{"unparsable descriptor", EnvLogFDInfo, "three"},
		{"negative descriptor", EnvLogFDError, "-7"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := hostEnv()
			env[tt.key] = tt.val

			loader := loaderFor(env)
			loader.EnableValidation(true)

			_, err := loader.Load()
			require.Error(t, err)
			assert.True(t, errors.IsConfiguration(err), "got %v", err)
			assert.True(t, errors.IsFatal(err))
		})
	}
}

func TestRuntime_RequireHost(t *testing.T) {
	for _, key := range []string{EnvFunctionARN, EnvAuthToken, EnvMaxInterface, EnvLogFDInfo, EnvLogFDFatal} {
		t.Run(key, func(t *testing.T) {
			env := hostEnv()
			delete(env, key)

			cfg, err := loaderFor(env).Load()
			require.NoError(t, err)

			err = cfg.RequireHost()
			require.Error(t, err)
			assert.True(t, errors.IsConfiguration(err))
			assert.Contains(t, err.Error(), key)
		})
	}
}

func TestRuntime_StringMasksToken(t *testing.T) {
	cfg, err := loaderFor(hostEnv()).Load()
	require.NoError(t, err)

	s := cfg.String()
	assert.NotContains(t, s, "secret-token")
	assert.Contains(t, s, "****")
	assert.Equal(t, "secret-token", cfg.AuthToken)
}

func TestNewLoader_ReadsProcessEnvironment(t *testing.T) {
	t.Setenv(EnvLogLevel, "WARN")
	t.Setenv(EnvNATSURL, "nats://nats:4222")

	cfg, err := NewLoader().Load()
	require.NoError(t, err)
	assert.Equal(t, "WARN", cfg.LogLevel)
	assert.Equal(t, "nats://nats:4222", cfg.NATS.URL)

	threshold, err := cfg.Threshold()
	require.NoError(t, err)
	assert.Equal(t, logging.SeverityWarning, threshold)
}
