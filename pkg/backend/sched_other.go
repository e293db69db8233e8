//go:build !linux

// ABOUTME: Thread scheduling fallback for non-Linux hosts
// ABOUTME: Explicit overrides fail; defaults are left alone
package backend

import "errors"

var errSchedUnsupported = errors.New("thread scheduling not supported on this platform")

func callerNice() (int, error) {
	return 0, errSchedUnsupported
}

func setThreadNice(int) error {
	return errSchedUnsupported
}

func setThreadAffinity(cpus []int) error {
	return errSchedUnsupported
}
