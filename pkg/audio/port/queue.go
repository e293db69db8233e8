// ABOUTME: Byte queue between port callers and device callbacks
// ABOUTME: Wraps a ring buffer with a condition variable for blocking I/O
package port

import (
	"io"
	"sync"

	"github.com/smallnest/ringbuffer"
)

// pcmQueue carries PCM bytes between a blocking port caller and a
// callback-driven device. The ring itself is non-blocking; waiting is done
// on cond so callbacks can always take the non-blocking paths.
type pcmQueue struct {
	rb     *ringbuffer.RingBuffer
	mu     sync.Mutex
	cond   *sync.Cond
	closed bool
}

func newPCMQueue(size int) *pcmQueue {
	q := &pcmQueue{
		rb: ringbuffer.New(size),
	}
	q.cond = sync.NewCond(&q.mu)
	return q
}

// write blocks until all of p is queued or the queue is closed
func (q *pcmQueue) write(p []byte) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	for len(p) > 0 {
		for q.rb.Free() == 0 && !q.closed {
			q.cond.Wait()
		}
		if q.closed {
			return ErrReleased
		}

		n := min(len(p), q.rb.Free())
		if _, err := q.rb.Write(p[:n]); err != nil {
			return err
		}
		p = p[n:]
		q.cond.Broadcast()
	}
	return nil
}

// offer queues as much of p as fits and returns the number of bytes dropped
func (q *pcmQueue) offer(p []byte) int {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return len(p)
	}

	n := min(len(p), q.rb.Free())
	if n > 0 {
		_, _ = q.rb.Write(p[:n])
		q.cond.Broadcast()
	}
	return len(p) - n
}

// readFull blocks until p is completely filled or the queue is closed
func (q *pcmQueue) readFull(p []byte) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	for len(p) > 0 {
		for q.rb.Length() == 0 && !q.closed {
			q.cond.Wait()
		}
		if q.closed {
			return ErrReleased
		}

		n := min(len(p), q.rb.Length())
		if _, err := q.rb.Read(p[:n]); err != nil {
			return err
		}
		p = p[n:]
		q.cond.Broadcast()
	}
	return nil
}

// drain fills p with whatever is queued, zero-filling the rest.
// It never blocks and returns the number of queued bytes consumed.
func (q *pcmQueue) drain(p []byte) int {
	q.mu.Lock()
	defer q.mu.Unlock()

	n := min(len(p), q.rb.Length())
	if n > 0 {
		_, _ = q.rb.Read(p[:n])
		q.cond.Broadcast()
	}
	clear(p[n:])
	return n
}

// Read implements io.Reader for pull-based players. It blocks until at
// least one byte is queued and returns io.EOF once closed.
func (q *pcmQueue) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	for q.rb.Length() == 0 && !q.closed {
		q.cond.Wait()
	}
	if q.closed {
		return 0, io.EOF
	}

	n, err := q.rb.Read(p[:min(len(p), q.rb.Length())])
	q.cond.Broadcast()
	return n, err
}

// buffered returns the number of queued bytes
func (q *pcmQueue) buffered() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.rb.Length()
}

// close wakes every waiter; blocked and later calls return ErrReleased
func (q *pcmQueue) close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.closed = true
	q.cond.Broadcast()
}
