package metrics

import (
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sitaram-kernallogicautomation/openplc-runtime-v4/pkg/image"
	"github.com/sitaram-kernallogicautomation/openplc-runtime-v4/pkg/lifecycle"
	"github.com/sitaram-kernallogicautomation/openplc-runtime-v4/pkg/loader"
	"github.com/sitaram-kernallogicautomation/openplc-runtime-v4/pkg/plugin"
)

type fakeSymboler map[string]any

func (f fakeSymboler) Lookup(name string) (any, error) {
	v, ok := f[name]
	if !ok {
		return nil, os.ErrNotExist
	}
	return v, nil
}

type fakeOpener struct {
	sym fakeSymboler
}

func (f fakeOpener) Open(path string) (loader.Symboler, error) {
	return f.sym, nil
}

func completeProgramSymbols() fakeSymboler {
	period := uint64(2_000_000)
	return fakeSymboler{
		"ConfigInit":        func() {},
		"ConfigRun":         func(uint64) {},
		"GlueVars":          func() {},
		"UpdateTime":        func() {},
		"SetBufferPointers": func(*image.Tables) {},
		"CommonTicktimeNs":  &period,
		"ProgramMD5":        func() string { return "feedface" },
	}
}

func newTestCollector(t *testing.T) (*Collector, *lifecycle.Manager) {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "libplc_1.so"), []byte("stub"), 0o644))

	tables := image.New()
	driver := plugin.NewDriver(tables, loader.StdlibOpener{})
	var heartbeat atomic.Int64
	heartbeat.Store(time.Now().Unix())

	mgr := lifecycle.NewManager(dir, fakeOpener{sym: completeProgramSymbols()}, tables, driver, &heartbeat)
	return NewCollector(mgr, driver, &heartbeat), mgr
}

func testGaugeValue(t *testing.T, g prometheus.Gauge) float64 {
	t.Helper()
	return testutil.ToFloat64(g)
}

func TestCollectorLifecycleStateReflectsManager(t *testing.T) {
	c, mgr := newTestCollector(t)

	c.collectLifecycleState()
	assert.Equal(t, 1.0, testGaugeValue(t, LifecycleState.WithLabelValues("EMPTY")))
	assert.Equal(t, 0.0, testGaugeValue(t, LifecycleState.WithLabelValues("RUNNING")))

	require.True(t, mgr.SetRunning())
	c.collectLifecycleState()
	assert.Equal(t, 0.0, testGaugeValue(t, LifecycleState.WithLabelValues("EMPTY")))
	assert.Equal(t, 1.0, testGaugeValue(t, LifecycleState.WithLabelValues("RUNNING")))

	mgr.SetStopped()
}

func TestCollectorHeartbeatAge(t *testing.T) {
	c, _ := newTestCollector(t)
	c.Heartbeat.Store(time.Now().Add(-5 * time.Second).Unix())

	c.collectHeartbeatAge()
	assert.InDelta(t, 5.0, testGaugeValue(t, HeartbeatAgeSeconds), 1.0)
}

func TestCollectorSkipsTimingStatsWhenInvalid(t *testing.T) {
	c, mgr := newTestCollector(t)
	stats := mgr.EngineStats()
	require.False(t, stats.Valid())

	// Should not panic on an unsampled engine.
	c.collectTimingStats()
}

func TestCollectorPluginStatesEmptyDriver(t *testing.T) {
	c, _ := newTestCollector(t)
	// No plugins configured; should be a no-op, not a panic.
	c.collectPluginStates()
}

func TestCollectorStartStop(t *testing.T) {
	c, _ := newTestCollector(t)
	c.Interval = time.Millisecond
	c.Start()
	time.Sleep(5 * time.Millisecond)
	c.Stop()
}
