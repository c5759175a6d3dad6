//go:build !linux

package scan

import "errors"

func attemptRealtimeScheduling() error {
	return errors.New("real-time scheduling is only attempted on linux")
}

func attemptLockMemory() error {
	return errors.New("memory locking is only attempted on linux")
}
