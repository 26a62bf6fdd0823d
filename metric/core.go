package metric

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "edgeipc"

// Metrics contains the runtime-level metrics for routing, codecs and transport
type Metrics struct {
	// Log routing metrics
	RecordsRouted  *prometheus.CounterVec
	RecordsDropped *prometheus.CounterVec
	RouteErrors    *prometheus.CounterVec

	// Codec metrics
	CodecOperations *prometheus.CounterVec

	// Transport metrics
	FramesTotal    *prometheus.CounterVec
	NATSConnected  prometheus.Gauge
	NATSReconnects prometheus.Counter
}

// NewMetrics creates a new Metrics instance with all runtime metrics
func NewMetrics() *Metrics {
	return &Metrics{
		RecordsRouted: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "log",
				Name:      "records_routed_total",
				Help:      "Total number of log records written to a severity channel",
			},
			[]string{"severity"},
		),

		RecordsDropped: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "log",
				Name:      "records_dropped_total",
				Help:      "Total number of log records dropped below the minimum severity",
			},
			[]string{"severity"},
		),

		RouteErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "log",
				Name:      "route_errors_total",
				Help:      "Total number of log records that failed to route",
			},
			[]string{"severity"},
		),

		CodecOperations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "codec",
				Name:      "operations_total",
				Help:      "Total number of message encode/decode operations",
			},
			[]string{"codec", "op", "status"},
		),

		FramesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "ipc",
				Name:      "frames_total",
				Help:      "Total number of IPC frames by direction",
			},
			[]string{"direction"},
		),

		NATSConnected: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "nats",
				Name:      "connected",
				Help:      "NATS connection status (0=disconnected, 1=connected)",
			},
		),

		NATSReconnects: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "nats",
				Name:      "reconnects_total",
				Help:      "Total number of NATS reconnections",
			},
		),
	}
}

// collectors returns every metric for registration
func (c *Metrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		c.RecordsRouted,
		c.RecordsDropped,
		c.RouteErrors,
		c.CodecOperations,
		c.FramesTotal,
		c.NATSConnected,
		c.NATSReconnects,
	}
}

// RecordRouted increments the routed counter for a severity
func (c *Metrics) RecordRouted(severity string) {
	c.RecordsRouted.WithLabelValues(severity).Inc()
}

// RecordDropped increments the dropped counter for a severity
func (c *Metrics) RecordDropped(severity string) {
	c.RecordsDropped.WithLabelValues(severity).Inc()
}

// RecordRouteError increments the route error counter for a severity
func (c *Metrics) RecordRouteError(severity string) {
	c.RouteErrors.WithLabelValues(severity).Inc()
}

// RecordCodec counts one codec operation ("encode" or "decode")
func (c *Metrics) RecordCodec(codec, op string, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	c.CodecOperations.WithLabelValues(codec, op, status).Inc()
}

// RecordFrame counts one IPC frame ("in" or "out")
func (c *Metrics) RecordFrame(direction string) {
	c.FramesTotal.WithLabelValues(direction).Inc()
}

// RecordNATSStatus updates NATS connection status
func (c *Metrics) RecordNATSStatus(connected bool) {
	value := 0.0
	if connected {
		value = 1.0
	}
	c.NATSConnected.Set(value)
}

// RecordNATSReconnect increments reconnection counter
func (c *Metrics) RecordNATSReconnect() {
	c.NATSReconnects.Inc()
}
