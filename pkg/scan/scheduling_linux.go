//go:build linux

package scan

import "golang.org/x/sys/unix"

// fifoPriority is a mid-range SCHED_FIFO priority for the scan thread.
const fifoPriority = 50

// attemptRealtimeScheduling elevates the calling OS thread to SCHED_FIFO.
// Failure (most commonly missing CAP_SYS_NICE) is returned for the caller
// to log; it is never fatal.
func attemptRealtimeScheduling() error {
	attr := &unix.SchedAttr{
		Size:     unix.SizeofSchedAttr,
		Policy:   unix.SCHED_FIFO,
		Priority: fifoPriority,
	}
	return unix.SchedSetAttr(0, attr, 0)
}

// attemptLockMemory locks the process's current and future pages, matching
// mlockall(MCL_CURRENT | MCL_FUTURE).
func attemptLockMemory() error {
	return unix.Mlockall(unix.MCL_CURRENT | unix.MCL_FUTURE)
}
