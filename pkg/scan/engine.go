package scan

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sitaram-kernallogicautomation/openplc-runtime-v4/pkg/loader"
	"github.com/sitaram-kernallogicautomation/openplc-runtime-v4/pkg/plctypes"
	"github.com/sitaram-kernallogicautomation/openplc-runtime-v4/pkg/plugin"
	"github.com/sitaram-kernallogicautomation/openplc-runtime-v4/pkg/timing"
)

// LogFunc matches the logging callback shape used throughout the runtime.
type LogFunc func(format string, args ...any)

// Engine drives a loaded program through periodic scan cycles. One Engine
// corresponds to one run of plc_cycle_thread: it owns the cycle counter, the
// timing statistics, and the heartbeat the watchdog observes.
type Engine struct {
	Handle *loader.Handle
	Driver *plugin.Driver

	// Heartbeat receives the wall-clock second of every completed cycle.
	Heartbeat *atomic.Int64

	LogInfo LogFunc
	LogWarn LogFunc

	statsMu sync.Mutex
	stats   plctypes.TimingStats
	tick    uint64
}

// NewEngine returns an Engine ready to Run. Heartbeat must outlive the
// engine; the watchdog, the metrics collector, and the /live endpoint read
// it concurrently with Run.
func NewEngine(handle *loader.Handle, driver *plugin.Driver, heartbeat *atomic.Int64) *Engine {
	return &Engine{
		Handle:    handle,
		Driver:    driver,
		Heartbeat: heartbeat,
		stats:     plctypes.NewTimingStats(),
	}
}

// Stats returns a snapshot of the current timing statistics. Safe to call
// concurrently with Run.
func (e *Engine) Stats() plctypes.TimingStats {
	e.statsMu.Lock()
	defer e.statsMu.Unlock()
	return e.stats
}

// Tick returns the current cycle counter. Safe to call concurrently with
// Run; may observe a value that is one cycle stale.
func (e *Engine) Tick() uint64 {
	return atomic.LoadUint64(&e.tick)
}

func (e *Engine) logf(fn LogFunc, format string, args ...any) {
	if fn != nil {
		fn(format, args...)
	}
}

// Run executes the scan loop until stop is closed. It attempts (but does
// not require) real-time scheduling and locked memory; failures there are
// logged, not fatal.
func (e *Engine) Run(stop <-chan struct{}) error {
	if e.Handle.Bindings.CommonTicktimeNs == nil {
		return fmt.Errorf("program artifact did not bind CommonTicktimeNs")
	}

	if err := attemptRealtimeScheduling(); err != nil {
		e.logf(e.LogWarn, "failed to elevate scan thread to real-time priority: %v", err)
	}
	if err := attemptLockMemory(); err != nil {
		e.logf(e.LogWarn, "failed to lock scan thread memory: %v", err)
	}

	e.logf(e.LogInfo, "scan cycle engine starting")

	stats := plctypes.NewTimingStats()
	var lastStart, expectedStart time.Time
	firstCycle := true

	for {
		select {
		case <-stop:
			return nil
		default:
		}

		period := time.Duration(atomic.LoadUint64(e.Handle.Bindings.CommonTicktimeNs))
		now := timing.Now()

		if firstCycle {
			lastStart = now
			expectedStart = now.Add(period)
			stats.ScanCount++
			firstCycle = false
		} else {
			cycleTimeUs := float64(timing.Diff(now, lastStart).Microseconds())
			updateRunningStat(&stats.CycleTimeMinUs, &stats.CycleTimeMaxUs, &stats.CycleTimeAvgUs, cycleTimeUs, stats.ScanCount)

			latencyUs := float64(timing.Diff(now, expectedStart).Microseconds())
			updateRunningStat(&stats.CycleLatencyMinUs, &stats.CycleLatencyMaxUs, &stats.CycleLatencyAvgUs, latencyUs, stats.ScanCount)

			lastStart = now
			expectedStart = expectedStart.Add(period)
			stats.ScanCount++
		}

		e.Driver.Mutex.Lock()
		e.Driver.CycleStart()
		e.Handle.Bindings.ConfigRun(atomic.LoadUint64(&e.tick))
		atomic.AddUint64(&e.tick, 1)
		e.Handle.Bindings.UpdateTime()
		e.Heartbeat.Store(time.Now().Unix())
		e.Driver.CycleEnd()
		e.Driver.Mutex.Unlock()

		afterScan := timing.Now()
		scanTimeUs := float64(timing.Diff(afterScan, lastStart).Microseconds())
		updateRunningStat(&stats.ScanTimeMinUs, &stats.ScanTimeMaxUs, &stats.ScanTimeAvgUs, scanTimeUs, stats.ScanCount)

		if afterScan.After(expectedStart) {
			stats.Overruns++
		}

		e.statsMu.Lock()
		e.stats = stats
		e.statsMu.Unlock()

		timing.SleepUntil(expectedStart)
	}
}

// updateRunningStat folds one sample into a min/max/running-mean triple
// following scan_cycle_manager.c's mean += (x - mean) / n formula, where n
// is the number of samples observed so far including this one.
func updateRunningStat(min, max, mean *float64, x float64, n int64) {
	if x < *min {
		*min = x
	}
	if x > *max {
		*max = x
	}
	if n > 0 {
		*mean += (x - *mean) / float64(n)
	}
}
