package plctypes

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLifecycleStateString(t *testing.T) {
	assert.Equal(t, "EMPTY", Empty.String())
	assert.Equal(t, "INIT", Init.String())
	assert.Equal(t, "RUNNING", Running.String())
	assert.Equal(t, "STOPPED", Stopped.String())
	assert.Equal(t, "ERROR", Error.String())
	assert.Equal(t, "UNKNOWN", LifecycleState(99).String())
}

func TestPluginTypeString(t *testing.T) {
	assert.Equal(t, "native", Native.String())
	assert.Equal(t, "scripted", Scripted.String())
}

func TestNewTimingStatsSeedsInfinityMinimums(t *testing.T) {
	stats := NewTimingStats()

	assert.False(t, stats.Valid())
	assert.True(t, math.IsInf(stats.ScanTimeMinUs, 1))
	assert.True(t, math.IsInf(stats.CycleTimeMinUs, 1))
	assert.True(t, math.IsInf(stats.CycleLatencyMinUs, 1))
	assert.Zero(t, stats.ScanCount)
	assert.Zero(t, stats.Overruns)
}

func TestTimingStatsValidAfterFirstCycle(t *testing.T) {
	stats := NewTimingStats()
	stats.ScanCount = 1

	assert.True(t, stats.Valid())
}
