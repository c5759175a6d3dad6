package watchdog

import (
	"fmt"
	"io"
	"os"
	"sync/atomic"
	"time"
)

// LogFunc matches the logging callback shape used throughout the runtime.
type LogFunc func(format string, args ...any)

// Watchdog polls a heartbeat counter and terminates the process if it stalls
// while the lifecycle is RUNNING. Exit and Stderr are overridable so tests
// can observe a trip without killing the test binary.
type Watchdog struct {
	Heartbeat *atomic.Int64
	IsRunning func() bool
	Interval  time.Duration
	Exit      func(code int)
	Stderr    io.Writer

	LogInfo LogFunc
}

// New returns a Watchdog with the reference's two-second poll interval and
// os.Exit/os.Stderr as its termination path.
func New(heartbeat *atomic.Int64, isRunning func() bool) *Watchdog {
	return &Watchdog{
		Heartbeat: heartbeat,
		IsRunning: isRunning,
		Interval:  2 * time.Second,
		Exit:      os.Exit,
		Stderr:    os.Stderr,
	}
}

// Run polls until stop is closed. It never reads the heartbeat while the
// lifecycle isn't RUNNING, matching watchdog_thread's "continue" before its
// atomic_load: a pause in RUNNING does not leave a stale heartbeat looking
// like a stall the moment the program resumes.
func (w *Watchdog) Run(stop <-chan struct{}) {
	last := w.Heartbeat.Load()

	ticker := time.NewTicker(w.Interval)
	defer ticker.Stop()

	if w.LogInfo != nil {
		w.LogInfo("watchdog started, polling every %s", w.Interval)
	}

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
		}

		if !w.IsRunning() {
			continue
		}

		now := w.Heartbeat.Load()
		if now == last {
			fmt.Fprintln(w.Stderr, "[Watchdog] No heartbeat! PLC unresponsive.")
			w.Exit(1)
			return
		}
		last = now
	}
}
