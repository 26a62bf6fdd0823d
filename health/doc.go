// Package health reports the liveness of the runtime's moving parts.
//
// A Monitor holds named checks. Each check is evaluated on demand and the
// results are folded into one aggregate Status:
//   - Healthy: every check reports healthy
//   - Degraded: nothing is unhealthy but at least one check is degraded
//   - Unhealthy: at least one check is unhealthy
//
// Monitor.Handler serves the aggregate as JSON, answering 503 when the
// aggregate is unhealthy:
//
//	monitor := health.NewMonitor("edgeipc")
//	monitor.Register("nats", func(context.Context) health.Status {
//	    if client.IsHealthy() {
//	        return health.NewHealthy("nats", "connected")
//	    }
//	    return health.NewUnhealthy("nats", client.Status().String())
//	})
//	server.SetHealthHandler(monitor.Handler())
//
// Messages built from errors pass through FromError, which strips URLs and
// credentials so a NATS token never reaches a health probe.
package health
