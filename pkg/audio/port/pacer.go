// ABOUTME: Cycle pacing for software ports
// ABOUTME: Blocks callers for one update period to mimic a hardware clock
package port

import "time"

// pacer sleeps so successive waits are one update period apart
type pacer struct {
	period time.Duration
	next   time.Time
}

func newPacer(updateSize, frequency int) *pacer {
	return &pacer{
		period: time.Duration(updateSize) * time.Second / time.Duration(frequency),
	}
}

// wait blocks until the next cycle boundary. A caller that fell more than a
// few cycles behind restarts the clock instead of bursting.
func (p *pacer) wait() {
	now := time.Now()
	if p.next.IsZero() || now.Sub(p.next) > 4*p.period {
		p.next = now
	}
	p.next = p.next.Add(p.period)
	if d := time.Until(p.next); d > 0 {
		time.Sleep(d)
	}
}
