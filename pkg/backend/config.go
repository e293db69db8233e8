// ABOUTME: Worker thread configuration
// ABOUTME: Explicit priority and CPU affinity overrides passed to Start
package backend

// ThreadConfig overrides the scheduling of an engine's worker thread.
// The zero value keeps the defaults: playback runs one nice step above
// the caller when permitted and no CPU affinity is set.
type ThreadConfig struct {
	// Priority is the worker thread's nice value. Failing to apply an
	// explicit priority fails Start.
	Priority *int

	// Affinity lists the CPUs the worker may run on; empty means any
	Affinity []int
}

// WithPriority returns a copy of c with an explicit nice value
func (c ThreadConfig) WithPriority(nice int) ThreadConfig {
	c.Priority = &nice
	return c
}
