package plctypes

import "math"

// TimingStats holds the running min/max/mean for the three timing series the
// scan engine tracks, plus the total scan count and overrun count. Min
// sentinels are represented as +Inf instead of INT64_MAX, and durations are
// microseconds to match the wire format the STATS command reports.
type TimingStats struct {
	ScanCount int64
	Overruns  int64

	ScanTimeMinUs float64
	ScanTimeMaxUs float64
	ScanTimeAvgUs float64

	CycleTimeMinUs float64
	CycleTimeMaxUs float64
	CycleTimeAvgUs float64

	CycleLatencyMinUs float64
	CycleLatencyMaxUs float64
	CycleLatencyAvgUs float64
}

// NewTimingStats returns a zero-cycle TimingStats with min fields seeded at
// +Inf, so the first real sample always replaces them.
func NewTimingStats() TimingStats {
	return TimingStats{
		ScanTimeMinUs:     math.Inf(1),
		CycleTimeMinUs:    math.Inf(1),
		CycleLatencyMinUs: math.Inf(1),
	}
}

// Valid reports whether at least one full cycle has completed, i.e. whether
// the snapshot's fields carry real data rather than sentinels.
func (s TimingStats) Valid() bool {
	return s.ScanCount > 0
}
