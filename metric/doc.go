// Package metric provides Prometheus-based metrics for the edgeipc runtime.
//
// The registry owns a private prometheus.Registry holding the runtime metrics
// (log routing, codec operations, IPC frames, NATS health) plus the Go and
// process collectors. Components take a *Metrics and tolerate nil, so metrics
// stay optional everywhere.
//
// # Basic Usage
//
//	registry := metric.NewMetricsRegistry()
//	server := metric.NewServer(9090, "/metrics", registry)
//
//	go func() {
//	    if err := server.Start(); err != nil {
//	        slog.Error("metrics server failed", "error", err)
//	    }
//	}()
//
//	router, err := logging.NewRouter(channels, threshold,
//	    logging.WithMetrics(registry.CoreMetrics()))
//
// # Exposed metrics
//
//	edgeipc_log_records_routed_total{severity}
//	edgeipc_log_records_dropped_total{severity}
//	edgeipc_log_route_errors_total{severity}
//	edgeipc_codec_operations_total{codec,op,status}
//	edgeipc_ipc_frames_total{direction}
//	edgeipc_nats_connected
//	edgeipc_nats_reconnects_total
package metric
