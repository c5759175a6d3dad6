// Package timing provides the monotonic clock and absolute-deadline sleep
// primitives the scan cycle engine builds its period on.
//
// These express a sleep_until/normalize_timespec/timespec_diff trio in terms
// of time.Time and time.Duration instead of a raw struct timespec, since Go
// exposes monotonic time as part of time.Time rather than as a separate
// clock id.
package timing
