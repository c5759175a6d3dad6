package metrics

import (
	"sync/atomic"
	"time"

	"github.com/sitaram-kernallogicautomation/openplc-runtime-v4/pkg/lifecycle"
	"github.com/sitaram-kernallogicautomation/openplc-runtime-v4/pkg/plctypes"
	"github.com/sitaram-kernallogicautomation/openplc-runtime-v4/pkg/plugin"
)

var allStates = []plctypes.LifecycleState{
	plctypes.Empty, plctypes.Init, plctypes.Running, plctypes.Stopped, plctypes.Error,
}

// Collector periodically snapshots the lifecycle manager, plugin driver,
// and heartbeat into the package's Prometheus collectors, giving an
// external monitoring stack the same numbers the control socket's STATS
// command exposes, without speaking that protocol.
type Collector struct {
	Manager   *lifecycle.Manager
	Driver    *plugin.Driver
	Heartbeat *atomic.Int64
	Interval  time.Duration

	stopCh chan struct{}
}

// NewCollector returns a Collector polling every 15 seconds by default.
func NewCollector(mgr *lifecycle.Manager, driver *plugin.Driver, heartbeat *atomic.Int64) *Collector {
	return &Collector{
		Manager:   mgr,
		Driver:    driver,
		Heartbeat: heartbeat,
		Interval:  15 * time.Second,
		stopCh:    make(chan struct{}),
	}
}

// Start begins collecting on Interval, collecting once immediately.
func (c *Collector) Start() {
	ticker := time.NewTicker(c.Interval)
	go func() {
		c.collect()
		for {
			select {
			case <-ticker.C:
				c.collect()
			case <-c.stopCh:
				ticker.Stop()
				return
			}
		}
	}()
}

// Stop stops the collector.
func (c *Collector) Stop() {
	close(c.stopCh)
}

func (c *Collector) collect() {
	c.collectTimingStats()
	c.collectHeartbeatAge()
	c.collectLifecycleState()
	c.collectPluginStates()
}

func (c *Collector) collectTimingStats() {
	stats := c.Manager.EngineStats()
	if !stats.Valid() {
		return
	}

	ScanTimeMicroseconds.WithLabelValues("min").Set(stats.ScanTimeMinUs)
	ScanTimeMicroseconds.WithLabelValues("max").Set(stats.ScanTimeMaxUs)
	ScanTimeMicroseconds.WithLabelValues("avg").Set(stats.ScanTimeAvgUs)

	CycleTimeMicroseconds.WithLabelValues("min").Set(stats.CycleTimeMinUs)
	CycleTimeMicroseconds.WithLabelValues("max").Set(stats.CycleTimeMaxUs)
	CycleTimeMicroseconds.WithLabelValues("avg").Set(stats.CycleTimeAvgUs)

	CycleLatencyMicroseconds.WithLabelValues("min").Set(stats.CycleLatencyMinUs)
	CycleLatencyMicroseconds.WithLabelValues("max").Set(stats.CycleLatencyMaxUs)
	CycleLatencyMicroseconds.WithLabelValues("avg").Set(stats.CycleLatencyAvgUs)

	ScanCount.Set(float64(stats.ScanCount))
	Overruns.Set(float64(stats.Overruns))
}

func (c *Collector) collectHeartbeatAge() {
	age := time.Now().Unix() - c.Heartbeat.Load()
	HeartbeatAgeSeconds.Set(float64(age))
}

func (c *Collector) collectLifecycleState() {
	current := c.Manager.State()
	for _, s := range allStates {
		value := 0.0
		if s == current {
			value = 1.0
		}
		LifecycleState.WithLabelValues(s.String()).Set(value)
	}
}

func (c *Collector) collectPluginStates() {
	for _, p := range c.Driver.Plugins() {
		PluginEnabled.WithLabelValues(p.Config.Name).Set(boolToFloat(p.Config.Enabled))
		PluginRunning.WithLabelValues(p.Config.Name).Set(boolToFloat(p.Running))
	}
}

func boolToFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
