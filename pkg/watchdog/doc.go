// Package watchdog implements the runtime's independent liveness monitor:
// a loop that wakes every two seconds, compares the scan engine's heartbeat
// against its previous observation, and terminates the process if the
// value has stalled while the lifecycle is RUNNING.
//
// It defers while not RUNNING, and writes its failure line directly to
// stderr rather than through the structured logger, to stay effective if
// the logger itself is the thing that's stuck.
package watchdog
