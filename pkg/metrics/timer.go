package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Timer measures elapsed wall-clock time and reports it into a Prometheus
// histogram, for timing call sites (a scan cycle, a control command, a
// plugin sweep) without threading time.Now() through the caller directly.
type Timer struct {
	start time.Time
}

// NewTimer starts a timer.
func NewTimer() *Timer {
	return &Timer{start: time.Now()}
}

// Duration returns the elapsed time since the timer started.
func (t *Timer) Duration() time.Duration {
	return time.Since(t.start)
}

// ObserveDuration records the elapsed time into histogram, in seconds.
func (t *Timer) ObserveDuration(histogram prometheus.Histogram) {
	histogram.Observe(t.Duration().Seconds())
}

// ObserveDurationVec records the elapsed time into a labeled histogram
// vector, in seconds.
func (t *Timer) ObserveDurationVec(histogramVec *prometheus.HistogramVec, label string) {
	histogramVec.WithLabelValues(label).Observe(t.Duration().Seconds())
}
