// Package config loads the runtime configuration of a function process.
//
// The host passes everything through the environment: one inherited output
// descriptor per log severity (_GG_LOG_FD_*), the minimum severity
// (LOG_LEVEL), the message encoding (ENCODING_TYPE), the highest interface
// version it speaks (GGC_MAX_INTERFACE_VERSION) and the function identity.
// A YAML file can supply the same values for local runs; the environment
// always wins.
//
//	loader := config.NewLoader()
//	loader.AddLayer("edgeipc.yaml")
//	loader.EnableValidation(true)
//
//	cfg, err := loader.Load()
//	if err != nil {
//		return err
//	}
//	fds, err := cfg.Severities()
//
// Every failure is an errors.ErrConfiguration, which the errors package
// classifies as fatal: a misconfigured process exits rather than retrying.
package config
