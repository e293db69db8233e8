// ABOUTME: Lock-free single-producer single-consumer frame ring buffer
// ABOUTME: Overwrites the oldest unread frames when the producer laps the consumer
package ringbuffer

import (
	"errors"
	"math"
	"sync/atomic"
)

// ErrInvalidSize is returned when the requested storage cannot be created
var ErrInvalidSize = errors.New("ringbuffer: invalid size")

// maxBytes caps the backing storage of a single ring
const maxBytes = 1 << 30

// RingBuffer is a fixed-capacity circular buffer of fixed-size frames.
//
// Cursors are monotonically increasing frame counters; a slot index is the
// cursor modulo capacity. The writer owns writePos. The reader owns readPos,
// except that an overrunning writer pushes readPos forward with a CAS before
// touching the slots it reclaims. A reader whose CAS fails was overrun and
// restarts from the new oldest frame.
//
// Thread assignment:
//   - Write + WriteSpace: producer goroutine only
//   - Read: consumer goroutine only
//   - ReadSpace, Capacity, FrameSize: any goroutine
type RingBuffer struct {
	writePos atomic.Uint64
	_pad1    [56]byte
	readPos  atomic.Uint64
	_pad2    [56]byte

	buf       []byte
	capacity  uint64
	frameSize int
}

// New creates a ring holding frames frames of frameSize bytes each
func New(frames, frameSize int) (*RingBuffer, error) {
	if frames <= 0 || frameSize <= 0 {
		return nil, ErrInvalidSize
	}
	if frames > math.MaxInt/frameSize || frames*frameSize > maxBytes {
		return nil, ErrInvalidSize
	}
	return &RingBuffer{
		buf:       make([]byte, frames*frameSize),
		capacity:  uint64(frames),
		frameSize: frameSize,
	}, nil
}

// Capacity returns the ring size in frames
func (rb *RingBuffer) Capacity() int {
	return int(rb.capacity)
}

// FrameSize returns the size of one frame in bytes
func (rb *RingBuffer) FrameSize() int {
	return rb.frameSize
}

// ReadSpace returns the number of frames available to read
func (rb *RingBuffer) ReadSpace() int {
	for {
		r := rb.readPos.Load()
		w := rb.writePos.Load()
		// A writer may publish writePos between the two loads after having
		// pushed readPos; re-check so the difference never exceeds capacity.
		if r == rb.readPos.Load() {
			if w-r > rb.capacity {
				return int(rb.capacity)
			}
			return int(w - r)
		}
	}
}

// WriteSpace returns the number of frames that can be written without overrun
func (rb *RingBuffer) WriteSpace() int {
	return int(rb.capacity) - rb.ReadSpace()
}

// Write copies len(data)/FrameSize() frames into the ring and returns that
// count. Unread frames that would be overwritten are discarded; when data
// holds more than Capacity() frames only the newest Capacity() survive.
func (rb *RingBuffer) Write(data []byte) int {
	frames := uint64(len(data) / rb.frameSize)
	if frames == 0 {
		return 0
	}

	w := rb.writePos.Load()
	end := w + frames

	src := data[:frames*uint64(rb.frameSize)]
	start := w
	if frames > rb.capacity {
		skip := frames - rb.capacity
		src = src[skip*uint64(rb.frameSize):]
		start = w + skip
	}

	// Reclaim overrun slots before writing over them.
	for {
		r := rb.readPos.Load()
		if end-r <= rb.capacity {
			break
		}
		if rb.readPos.CompareAndSwap(r, end-rb.capacity) {
			break
		}
	}

	rb.copyIn(start, src)
	rb.writePos.Store(end)
	return int(frames)
}

// Read copies up to len(data)/FrameSize() frames out of the ring, never more
// than ReadSpace(), and returns the number of frames read.
func (rb *RingBuffer) Read(data []byte) int {
	want := uint64(len(data) / rb.frameSize)
	if want == 0 {
		return 0
	}

	for {
		r := rb.readPos.Load()
		w := rb.writePos.Load()
		if w < r {
			// readPos was pushed past a writePos we loaded too early
			continue
		}
		avail := w - r
		if avail > rb.capacity {
			continue
		}
		n := min(want, avail)
		if n == 0 {
			return 0
		}

		rb.copyOut(r, data[:n*uint64(rb.frameSize)])
		if rb.readPos.CompareAndSwap(r, r+n) {
			return int(n)
		}
	}
}

// Reset discards all unread frames. Call only while no goroutine is
// reading or writing.
func (rb *RingBuffer) Reset() {
	rb.readPos.Store(0)
	rb.writePos.Store(0)
}

func (rb *RingBuffer) copyIn(pos uint64, src []byte) {
	off := int(pos%rb.capacity) * rb.frameSize
	n := copy(rb.buf[off:], src)
	if n < len(src) {
		copy(rb.buf, src[n:])
	}
}

func (rb *RingBuffer) copyOut(pos uint64, dst []byte) {
	off := int(pos%rb.capacity) * rb.frameSize
	n := copy(dst, rb.buf[off:])
	if n < len(dst) {
		copy(dst[n:], rb.buf)
	}
}
