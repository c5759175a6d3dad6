package scan

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sitaram-kernallogicautomation/openplc-runtime-v4/pkg/image"
	"github.com/sitaram-kernallogicautomation/openplc-runtime-v4/pkg/loader"
	"github.com/sitaram-kernallogicautomation/openplc-runtime-v4/pkg/plugin"
)

func newTestHandle(periodNs uint64, onRun func(tick uint64)) *loader.Handle {
	period := periodNs
	return &loader.Handle{
		Path: "test",
		Bindings: loader.Bindings{
			ConfigInit:        func() {},
			ConfigRun:         onRun,
			GlueVars:          func() {},
			UpdateTime:        func() {},
			SetBufferPointers: func(*image.Tables) {},
			CommonTicktimeNs:  &period,
			ProgramMD5:        func() string { return "abc" },
		},
	}
}

func TestEngineRunsCyclesUntilStopped(t *testing.T) {
	var runCount int64
	handle := newTestHandle(2_000_000, func(uint64) { atomic.AddInt64(&runCount, 1) })
	driver := plugin.NewDriver(image.New(), loader.StdlibOpener{})
	var heartbeat atomic.Int64

	engine := NewEngine(handle, driver, &heartbeat)

	stop := make(chan struct{})
	done := make(chan error, 1)
	go func() { done <- engine.Run(stop) }()

	time.Sleep(30 * time.Millisecond)
	close(stop)
	require.NoError(t, <-done)

	assert.Greater(t, atomic.LoadInt64(&runCount), int64(3))

	stats := engine.Stats()
	assert.True(t, stats.Valid())
	assert.Greater(t, engine.Tick(), uint64(3))
	assert.NotZero(t, heartbeat.Load())
}

func TestEngineTimingStatsStayMonotone(t *testing.T) {
	handle := newTestHandle(1_000_000, func(uint64) {})
	driver := plugin.NewDriver(image.New(), loader.StdlibOpener{})
	var heartbeat atomic.Int64

	engine := NewEngine(handle, driver, &heartbeat)

	stop := make(chan struct{})
	done := make(chan error, 1)
	go func() { done <- engine.Run(stop) }()

	time.Sleep(50 * time.Millisecond)
	close(stop)
	require.NoError(t, <-done)

	stats := engine.Stats()
	require.True(t, stats.Valid())

	assert.LessOrEqual(t, stats.ScanTimeMinUs, stats.ScanTimeAvgUs)
	assert.LessOrEqual(t, stats.ScanTimeAvgUs, stats.ScanTimeMaxUs)
	assert.LessOrEqual(t, stats.CycleTimeMinUs, stats.CycleTimeAvgUs)
	assert.LessOrEqual(t, stats.CycleTimeAvgUs, stats.CycleTimeMaxUs)
	assert.LessOrEqual(t, stats.CycleLatencyMinUs, stats.CycleLatencyAvgUs)
	assert.LessOrEqual(t, stats.CycleLatencyAvgUs, stats.CycleLatencyMaxUs)
}

func TestEngineHeartbeatStrictlyIncreasesUnderLoad(t *testing.T) {
	handle := newTestHandle(2_000_000, func(uint64) {})
	driver := plugin.NewDriver(image.New(), loader.StdlibOpener{})
	var heartbeat atomic.Int64

	engine := NewEngine(handle, driver, &heartbeat)

	stop := make(chan struct{})
	done := make(chan error, 1)
	go func() { done <- engine.Run(stop) }()

	first := heartbeat.Load()
	deadline := time.Now().Add(2 * time.Second)
	for heartbeat.Load() == first && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	advanced := heartbeat.Load()

	close(stop)
	require.NoError(t, <-done)

	assert.Greater(t, advanced, first)
}

func TestEngineFailsWithoutCommonTicktime(t *testing.T) {
	handle := &loader.Handle{Bindings: loader.Bindings{}}
	driver := plugin.NewDriver(image.New(), loader.StdlibOpener{})
	var heartbeat atomic.Int64

	engine := NewEngine(handle, driver, &heartbeat)

	err := engine.Run(make(chan struct{}))
	assert.Error(t, err)
}
