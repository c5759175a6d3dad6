//go:build linux

package plugin

import (
	"runtime"

	"golang.org/x/sys/unix"
)

// linuxPriorityBooster pins the locking goroutine to its OS thread and
// raises that thread's setpriority(2) niceness for the hold duration,
// restoring it on unlock. This never fails loudly: a niceness change that
// the process lacks privilege for is silently a no-op, matching the
// original's "best effort" framing for real-time scheduling attempts.
type linuxPriorityBooster struct {
	boostedNice int
	baseline    int
}

func defaultBooster() priorityBooster {
	return &linuxPriorityBooster{boostedNice: -10}
}

func (b *linuxPriorityBooster) boost() {
	runtime.LockOSThread()
	tid := unix.Gettid()
	if nice, err := unix.Getpriority(unix.PRIO_PROCESS, tid); err == nil {
		// The raw getpriority syscall returns 20-nice; convert back to nice.
		b.baseline = 20 - nice
	}
	_ = unix.Setpriority(unix.PRIO_PROCESS, tid, b.boostedNice)
}

func (b *linuxPriorityBooster) restore() {
	tid := unix.Gettid()
	_ = unix.Setpriority(unix.PRIO_PROCESS, tid, b.baseline)
	runtime.UnlockOSThread()
}
