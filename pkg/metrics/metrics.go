package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Scan engine timing statistics, labeled by stat=min|max|avg, mirroring
	// the field set format_timing_stats_response exposes over the control
	// socket's STATS command.
	ScanTimeMicroseconds = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "plc_scan_time_microseconds",
			Help: "Scan step duration in microseconds",
		},
		[]string{"stat"},
	)

	CycleTimeMicroseconds = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "plc_cycle_time_microseconds",
			Help: "Time between successive cycle starts, in microseconds",
		},
		[]string{"stat"},
	)

	CycleLatencyMicroseconds = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "plc_cycle_latency_microseconds",
			Help: "Drift between a cycle's actual and expected start time, in microseconds",
		},
		[]string{"stat"},
	)

	ScanCount = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "plc_scan_count",
			Help: "Total scan cycles completed since the program last started",
		},
	)

	Overruns = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "plc_scan_overruns_total",
			Help: "Total cycles whose scan step finished after the next cycle's expected start",
		},
	)

	HeartbeatAgeSeconds = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "plc_heartbeat_age_seconds",
			Help: "Seconds since the scan engine last published a heartbeat",
		},
	)

	LifecycleState = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "plc_lifecycle_state",
			Help: "1 for the runtime's current lifecycle state, 0 for all others",
		},
		[]string{"state"},
	)

	PluginEnabled = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "plc_plugin_enabled",
			Help: "1 if the named plugin is enabled in the loaded configuration",
		},
		[]string{"plugin"},
	)

	PluginRunning = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "plc_plugin_running",
			Help: "1 if the named plugin's driver has started successfully",
		},
		[]string{"plugin"},
	)
)

func init() {
	prometheus.MustRegister(ScanTimeMicroseconds)
	prometheus.MustRegister(CycleTimeMicroseconds)
	prometheus.MustRegister(CycleLatencyMicroseconds)
	prometheus.MustRegister(ScanCount)
	prometheus.MustRegister(Overruns)
	prometheus.MustRegister(HeartbeatAgeSeconds)
	prometheus.MustRegister(LifecycleState)
	prometheus.MustRegister(PluginEnabled)
	prometheus.MustRegister(PluginRunning)
}

// Handler returns the Prometheus HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}
