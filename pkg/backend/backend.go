// ABOUTME: Backend capability interfaces
// ABOUTME: Shared lifecycle for playback and capture engines
package backend

// Backend is the capability set every engine exposes to the host
type Backend interface {
	// Open negotiates the device format and acquires the hardware port
	Open(name string) error

	// Reset reapplies the device format; only valid while stopped
	Reset() error

	// Start launches the worker
	Start(cfg ThreadConfig) error

	// Stop cancels and joins the worker. Only the first call blocks.
	Stop()

	// Lock takes the mix lock. The playback mixer holds it while rendering
	// each update, so the host can change mixer state between cycles. It is
	// not reentrant: calling Lock again, or from inside Mixer.Mix, deadlocks.
	Lock()
	Unlock()

	// Close stops the worker and releases the port and buffers
	Close()
}

// Capturer is a Backend that records into a ring the host reads from
type Capturer interface {
	Backend

	// AvailableSamples returns the frames readable without blocking
	AvailableSamples() int

	// CaptureSamples copies frames into dst. Frames beyond what is
	// available are zero-filled.
	CaptureSamples(dst []byte, frames int) error
}

var (
	_ Backend  = (*Playback)(nil)
	_ Capturer = (*Capture)(nil)
)
