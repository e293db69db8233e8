// ABOUTME: Backend error taxonomy
// ABOUTME: Sentinel errors reported synchronously from Open, Reset and Start
package backend

import "errors"

var (
	// ErrPortUnavailable means the platform refused to open or reconfigure a port
	ErrPortUnavailable = errors.New("backend: port unavailable")

	// ErrAllocationFailed means a mix buffer or capture ring could not be created
	ErrAllocationFailed = errors.New("backend: allocation failed")

	// ErrThreadStartFailed means the worker could not be started or scheduled
	ErrThreadStartFailed = errors.New("backend: thread start failed")

	// ErrRunning is returned by Open and Reset while the worker runs
	ErrRunning = errors.New("backend: engine is running")

	// ErrNotOpen is returned by capture reads before Open
	ErrNotOpen = errors.New("backend: engine is not open")
)
