// ABOUTME: Capture engine reading a native input port into a ring buffer
// ABOUTME: Polls one update per cycle; the host drains the ring lock-free
package backend

import (
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/Resonate-Protocol/portmix/pkg/audio"
	"github.com/Resonate-Protocol/portmix/pkg/audio/port"
	"github.com/Resonate-Protocol/portmix/pkg/audio/ringbuffer"
)

// Capture records from a raw hardware input port into a ring buffer.
// A full ring is overrun: the oldest unread frames are discarded so the
// input thread never waits on the host.
type Capture struct {
	logger   *slog.Logger
	device   *Device
	platform port.Platform
	worker   *worker

	stateMu sync.Mutex

	// mixMu backs Lock/Unlock; the engine itself never takes it
	mixMu sync.Mutex

	port   port.InputPort
	ring   atomic.Pointer[ringbuffer.RingBuffer]
	format audio.Format
}

// NewCapture creates a capture engine for dev
func NewCapture(dev *Device, platform port.Platform) *Capture {
	logger := slog.Default().With("capture uuid", uuid.New())

	return &Capture{
		logger:   logger,
		device:   dev,
		platform: platform,
		worker:   newWorker(logger),
		format:   dev.Format,
	}
}

// Open forces S16 mono, opens a raw input port and allocates a ring of
// UpdateSize × NumUpdates frames
func (c *Capture) Open(name string) error {
	c.stateMu.Lock()
	defer c.stateMu.Unlock()

	if c.worker.running() {
		return ErrRunning
	}

	c.releasePort()

	dev := c.device
	dev.Type = audio.SampleShort
	dev.Channels = audio.ChannelsMono

	cfg := port.InputConfig{
		UpdateSize: dev.UpdateSize,
		Frequency:  dev.Frequency,
		Format:     port.FormatS16Mono,
	}
	in, err := c.platform.OpenInputPort(port.InputRaw, cfg)
	if err != nil {
		c.logger.Error("could not open input port", "frequency", cfg.Frequency,
			"updateSize", cfg.UpdateSize, "err", err)
		return fmt.Errorf("%w: %w", ErrPortUnavailable, err)
	}

	ring, err := ringbuffer.New(dev.UpdateSize*dev.NumUpdates, dev.FrameSize())
	if err != nil {
		if relErr := in.Release(); relErr != nil {
			c.logger.Warn("input port release error", "err", relErr)
		}
		return fmt.Errorf("%w: %w", ErrAllocationFailed, err)
	}

	c.port = in
	c.ring.Store(ring)
	c.format = dev.Format

	if name == "" {
		name = DefaultCaptureName
	}
	dev.Name = name

	c.logger.Info("capture opened", "device", name, "format", c.format, "ringFrames", ring.Capacity())
	return nil
}

// Reset restores the default channel order. The input port keeps the
// configuration it was opened with.
func (c *Capture) Reset() error {
	c.stateMu.Lock()
	defer c.stateMu.Unlock()

	if c.worker.running() {
		return ErrRunning
	}
	c.device.ChannelOrder = audio.DefaultChannelOrder(c.device.Channels)
	return nil
}

// Start launches the input poll worker. Capture applies explicit
// scheduling overrides only.
func (c *Capture) Start(cfg ThreadConfig) error {
	c.stateMu.Lock()
	defer c.stateMu.Unlock()

	ring := c.ring.Load()
	if c.port == nil || ring == nil {
		return fmt.Errorf("%w: capture is not open", ErrThreadStartFailed)
	}
	in, format := c.port, c.format

	plan := planFor(cfg, false, c.logger)
	if err := c.worker.start(plan, func() error {
		return c.captureProc(in, ring, format)
	}); err != nil {
		c.logger.Error("could not start capture thread", "err", err)
		return err
	}

	c.logger.Info("capture started")
	return nil
}

func (c *Capture) captureProc(in port.InputPort, ring *ringbuffer.RingBuffer, format audio.Format) error {
	scratch := make([]byte, format.UpdateSize*format.FrameSize())
	for !c.worker.cancelled() {
		if err := in.Input(scratch); err != nil {
			return fmt.Errorf("input port: %w", err)
		}
		ring.Write(scratch)
	}
	return nil
}

// Stop cancels the poll worker and waits for it on the first call
func (c *Capture) Stop() {
	c.worker.stop()
}

func (c *Capture) Lock() {
	c.mixMu.Lock()
}

func (c *Capture) Unlock() {
	c.mixMu.Unlock()
}

// AvailableSamples returns the number of frames ready to capture
func (c *Capture) AvailableSamples() int {
	ring := c.ring.Load()
	if ring == nil {
		return 0
	}
	return ring.ReadSpace()
}

// CaptureSamples copies frames out of the ring into dst. When fewer than
// frames are available the remainder of the span is zeroed.
func (c *Capture) CaptureSamples(dst []byte, frames int) error {
	ring := c.ring.Load()
	if ring == nil {
		return ErrNotOpen
	}
	if frames < 0 {
		return fmt.Errorf("invalid frame count: %d", frames)
	}

	span := frames * ring.FrameSize()
	if len(dst) < span {
		return fmt.Errorf("destination holds %d bytes, %d frames need %d", len(dst), frames, span)
	}

	n := ring.Read(dst[:span])
	if n < frames {
		c.logger.Debug("capture underrun", "requested", frames, "available", n)
		clear(dst[n*ring.FrameSize() : span])
	}
	return nil
}

// Close stops the worker, releases the input port and drops the ring
func (c *Capture) Close() {
	c.Stop()

	c.stateMu.Lock()
	defer c.stateMu.Unlock()

	c.releasePort()
}

func (c *Capture) releasePort() {
	c.ring.Store(nil)
	if c.port == nil {
		return
	}
	if err := c.port.Release(); err != nil {
		c.logger.Warn("input port release error", "err", err)
	}
	c.port = nil
}
