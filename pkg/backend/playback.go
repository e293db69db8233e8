// ABOUTME: Playback engine driving a native output port
// ABOUTME: Mixes one update under the mix lock, then emits it to the port
package backend

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/Resonate-Protocol/portmix/pkg/audio"
	"github.com/Resonate-Protocol/portmix/pkg/audio/port"
)

// Playback pulls mixed audio from the device's Mixer and writes it to a
// hardware output port on a dedicated worker thread.
type Playback struct {
	logger   *slog.Logger
	device   *Device
	platform port.Platform
	worker   *worker

	// stateMu orders Open, Reset, Start and Close
	stateMu sync.Mutex

	// mixMu is the mix lock held by the worker while it fills buf
	mixMu sync.Mutex

	port   port.OutputPort
	buf    []byte
	format audio.Format
}

// NewPlayback creates a playback engine for dev. The device's update size
// is aligned immediately.
func NewPlayback(dev *Device, platform port.Platform) *Playback {
	logger := slog.Default().With("playback uuid", uuid.New())

	dev.UpdateSize = audio.AlignUpdateSize(dev.UpdateSize)

	return &Playback{
		logger:   logger,
		device:   dev,
		platform: platform,
		worker:   newWorker(logger),
		format:   dev.Format,
	}
}

// normalize forces the device format onto what output ports carry
func (p *Playback) normalize() port.OutputConfig {
	dev := p.device
	dev.Type = audio.SampleShort
	if dev.Channels != audio.ChannelsMono && dev.Channels != audio.ChannelsStereo {
		p.logger.Debug("channel layout unsupported, using stereo", "requested", dev.Channels)
		dev.Channels = audio.ChannelsStereo
	}
	dev.UpdateSize = audio.AlignUpdateSize(dev.UpdateSize)

	mode := port.ModeStereo
	if dev.Channels == audio.ChannelsMono {
		mode = port.ModeMono
	}
	return port.OutputConfig{
		UpdateSize: dev.UpdateSize,
		Frequency:  dev.Frequency,
		Mode:       mode,
	}
}

// Open negotiates the device format and opens a BGM output port
func (p *Playback) Open(name string) error {
	p.stateMu.Lock()
	defer p.stateMu.Unlock()

	if p.worker.running() {
		return ErrRunning
	}

	p.releasePort()
	p.buf = nil

	cfg := p.normalize()
	out, err := p.platform.OpenOutputPort(port.OutputBGM, cfg)
	if err != nil {
		p.logger.Error("could not open output port", "frequency", cfg.Frequency, "mode", cfg.Mode,
			"updateSize", cfg.UpdateSize, "err", err)
		return fmt.Errorf("%w: %w", ErrPortUnavailable, err)
	}

	buf, err := allocMixBuffer(p.device.Format)
	if err != nil {
		_ = out.Release()
		return err
	}

	p.port = out
	p.buf = buf
	p.format = p.device.Format

	if name == "" {
		name = DefaultPlaybackName
	}
	p.device.Name = name

	p.logger.Info("playback opened", "device", name, "format", p.format)
	return nil
}

// Reset reapplies the device format to the open port and resizes the mix
// buffer to match
func (p *Playback) Reset() error {
	p.stateMu.Lock()
	defer p.stateMu.Unlock()

	if p.worker.running() {
		return ErrRunning
	}
	if p.port == nil {
		return fmt.Errorf("%w: no output port open", ErrPortUnavailable)
	}

	cfg := p.normalize()
	if err := p.port.SetConfig(cfg); err != nil {
		p.logger.Error("could not reconfigure output port", "err", err)
		return fmt.Errorf("%w: %w", ErrPortUnavailable, err)
	}

	buf, err := allocMixBuffer(p.device.Format)
	if err != nil {
		return err
	}
	p.buf = buf
	p.format = p.device.Format
	p.device.ChannelOrder = audio.DefaultChannelOrder(p.device.Channels)

	p.logger.Info("playback reset", "format", p.format)
	return nil
}

// Start launches the mixer worker
func (p *Playback) Start(cfg ThreadConfig) error {
	p.stateMu.Lock()
	defer p.stateMu.Unlock()

	if p.port == nil {
		return fmt.Errorf("%w: playback is not open", ErrThreadStartFailed)
	}

	var mixer Mixer = MixerFunc(silence)
	if p.device.Mixer != nil {
		mixer = p.device.Mixer
	}
	out, buf, format := p.port, p.buf, p.format

	plan := planFor(cfg, true, p.logger)
	if err := p.worker.start(plan, func() error {
		return p.mixerProc(mixer, out, buf, format)
	}); err != nil {
		p.logger.Error("could not start mixer thread", "err", err)
		return err
	}

	p.logger.Info("playback started")
	return nil
}

func (p *Playback) mixerProc(mixer Mixer, out port.OutputPort, buf []byte, format audio.Format) error {
	for !p.worker.cancelled() {
		p.mixMu.Lock()
		mixer.Mix(buf, format.UpdateSize, format)
		p.mixMu.Unlock()

		if err := out.Output(buf); err != nil {
			return fmt.Errorf("output port: %w", err)
		}
	}
	return nil
}

// Stop cancels the mixer worker and waits for it on the first call
func (p *Playback) Stop() {
	p.worker.stop()
}

// Lock blocks until the current mix cycle finishes. Not reentrant; never
// call it from the Mixer.
func (p *Playback) Lock() {
	p.mixMu.Lock()
}

func (p *Playback) Unlock() {
	p.mixMu.Unlock()
}

// Close stops the worker and releases the port. Safe on an engine that
// was never opened.
func (p *Playback) Close() {
	p.Stop()

	p.stateMu.Lock()
	defer p.stateMu.Unlock()

	p.releasePort()
	p.buf = nil
}

func (p *Playback) releasePort() {
	if p.port == nil {
		return
	}
	if err := p.port.Release(); err != nil {
		p.logger.Warn("output port release error", "err", err)
	}
	p.port = nil
}

// allocMixBuffer returns a zeroed buffer holding one update of format
func allocMixBuffer(format audio.Format) ([]byte, error) {
	size := format.UpdateSize * format.FrameSize()
	if size <= 0 {
		return nil, fmt.Errorf("%w: mix buffer of %d bytes", ErrAllocationFailed, size)
	}
	return make([]byte, size), nil
}

func silence(buf []byte, frames int, format audio.Format) {
	clear(buf)
}
