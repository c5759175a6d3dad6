/*
Package metrics exposes the runtime's internal state as Prometheus gauges,
for a monitoring stack that wants the numbers the control socket's STATS
command reports (scan/cycle/latency timing, scan count, overruns) plus
heartbeat age, lifecycle state, and per-plugin status, without speaking
the control protocol.

All metrics are registered at package init against the default Prometheus
registry. Handler returns the standard promhttp handler for mounting under
/metrics. Collector owns periodically refreshing the gauges from the
lifecycle manager, plugin driver, and heartbeat:

	collector := metrics.NewCollector(mgr, driver, heartbeat)
	collector.Start()
	defer collector.Stop()

	health := &metrics.HealthSource{Manager: mgr, Driver: driver, Heartbeat: heartbeat, StartTime: start}
	http.Handle("/metrics", metrics.Handler())
	http.Handle("/health", health.HealthHandler())
	http.Handle("/ready", health.ReadyHandler())
	http.Handle("/live", health.LivenessHandler())

health.go answers /health, /ready, and /live directly from the same
lifecycle manager, plugin driver, and heartbeat the Collector reads, rather
than keeping a separate registry of component status that could drift out
of sync with them.
*/
package metrics
