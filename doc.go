// Package edgeipc is the runtime plumbing between an edge host and the
// function processes it launches.
//
// # Architecture
//
// The module has two data paths:
//
// Message path:
//   - message: the Message envelope and its JSON and MessagePack codecs
//   - ipc: length-prefixed frames over stdio, NATS publish/subscribe and the
//     relay that joins them
//   - natsclient: a NATS connection behind a circuit breaker
//
// Log path:
//   - logging: severity parsing, the Router that writes "<file>:<line>,<msg>"
//     lines to per-severity descriptors, the stdio adapter and a slog handler
//
// Supporting packages:
//   - config: host environment and optional YAML layer
//   - version: interface version tags and the compatibility check
//   - errors: classified errors (transient, invalid, fatal)
//   - metric: Prometheus metrics and the /metrics server
//   - health: on-demand health checks served at /health
//   - pkg/retry: exponential backoff with jitter
//
// # Usage
//
// The cmd/edgeipc binary wires everything together:
//
//	ENCODING_TYPE=json GGC_MAX_INTERFACE_VERSION=1.1 \
//	MY_FUNCTION_ARN=arn:fn AWS_CONTAINER_AUTHORIZATION_TOKEN=... \
//	_GG_LOG_FD_INFO=3 _GG_LOG_FD_ERROR=4 _GG_LOG_FD_DEBUG=5 \
//	_GG_LOG_FD_WARN=6 _GG_LOG_FD_FATAL=7 \
//	edgeipc --mode=relay --metrics-port=9090
//
// Libraries never log. They return errors from the errors package so callers
// can decide whether to retry (transient), reject (invalid) or stop (fatal).
package edgeipc
