// Package scan implements the scan cycle engine, the real-time hot path
// that ticks the loaded control program once per period and lets the
// plugin driver observe the image tables around it.
//
// Its timing statistics follow an absolute-deadline sleep, first-cycle
// seeding that skips the cycle-time and latency samples (scan time and the
// overrun check are sampled on every cycle, the first included), a running
// mean for cycle time / cycle latency / scan time, and an overrun counter.
package scan
