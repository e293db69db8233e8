// ABOUTME: Malgo-based native port implementation
// ABOUTME: Opens miniaudio playback and capture devices as blocking ports
package port

import (
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/gen2brain/malgo"
	"github.com/google/uuid"
)

// queuedCycles is how many updates a malgo queue holds
const (
	outputQueuedCycles = 2
	inputQueuedCycles  = 4
)

// Malgo is a Platform backed by miniaudio through malgo
type Malgo struct {
	logger *slog.Logger

	mu       sync.Mutex
	malgoCtx *malgo.AllocatedContext
}

// NewMalgo creates a malgo platform. The miniaudio context is created on
// first port open.
func NewMalgo() *Malgo {
	return &Malgo{
		logger: slog.Default().With("malgo platform uuid", uuid.New()),
	}
}

func (m *Malgo) context() (malgo.Context, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.malgoCtx == nil {
		ctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, nil)
		if err != nil {
			return malgo.Context{}, fmt.Errorf("failed to initialize malgo context: %w", err)
		}
		m.malgoCtx = ctx
	}
	return m.malgoCtx.Context, nil
}

// Close releases the miniaudio context. Ports must be released first.
func (m *Malgo) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.malgoCtx == nil {
		return nil
	}
	if err := m.malgoCtx.Uninit(); err != nil {
		m.logger.Warn("malgo context uninit error", "err", err)
	}
	m.malgoCtx.Free()
	m.malgoCtx = nil
	return nil
}

// OpenOutputPort opens the default playback device. miniaudio has no port
// classes, so kind only tags the logger.
func (m *Malgo) OpenOutputPort(kind OutputKind, cfg OutputConfig) (OutputPort, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	p := &malgoOutput{
		platform: m,
		logger:   m.logger.With("output kind", kind),
	}
	if err := p.initDevice(cfg); err != nil {
		return nil, err
	}
	return p, nil
}

// OpenInputPort opens the default capture device as S16 mono
func (m *Malgo) OpenInputPort(kind InputKind, cfg InputConfig) (InputPort, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	ctx, err := m.context()
	if err != nil {
		return nil, err
	}

	p := &malgoInput{
		logger: m.logger.With("input kind", kind),
		cfg:    cfg,
		queue:  newPCMQueue(cfg.BufferSize() * inputQueuedCycles),
	}

	deviceConfig := malgo.DefaultDeviceConfig(malgo.Capture)
	deviceConfig.Capture.Format = malgo.FormatS16
	deviceConfig.Capture.Channels = 1
	deviceConfig.SampleRate = uint32(cfg.Frequency)
	deviceConfig.PeriodSizeInFrames = uint32(cfg.UpdateSize)
	deviceConfig.Alsa.NoMMap = 1

	queue := p.queue
	onRecvFrames := func(pOutputSample, pInputSamples []byte, framecount uint32) {
		if dropped := queue.offer(pInputSamples); dropped > 0 {
			if count := p.dropped.Add(1); count%100 == 1 {
				p.logger.Debug("input queue full, dropping samples", "bytes", dropped, "count", count)
			}
		}
	}

	device, err := malgo.InitDevice(ctx, deviceConfig, malgo.DeviceCallbacks{Data: onRecvFrames})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize capture device: %w", err)
	}
	if err := device.Start(); err != nil {
		device.Uninit()
		return nil, fmt.Errorf("failed to start capture device: %w", err)
	}
	p.device = device

	p.logger.Info("malgo input port opened", "frequency", cfg.Frequency, "updateSize", cfg.UpdateSize)
	return p, nil
}

type malgoOutput struct {
	platform *Malgo
	logger   *slog.Logger

	device *malgo.Device
	queue  *pcmQueue
	cfg    OutputConfig
}

func (p *malgoOutput) initDevice(cfg OutputConfig) error {
	ctx, err := p.platform.context()
	if err != nil {
		return err
	}

	queue := newPCMQueue(cfg.BufferSize() * outputQueuedCycles)

	deviceConfig := malgo.DefaultDeviceConfig(malgo.Playback)
	deviceConfig.Playback.Format = malgo.FormatS16
	deviceConfig.Playback.Channels = uint32(cfg.Mode.Channels())
	deviceConfig.SampleRate = uint32(cfg.Frequency)
	deviceConfig.PeriodSizeInFrames = uint32(cfg.UpdateSize)
	deviceConfig.Alsa.NoMMap = 1

	onSamples := func(pOutputSample, pInputSamples []byte, framecount uint32) {
		// Underrun plays silence
		queue.drain(pOutputSample)
	}

	device, err := malgo.InitDevice(ctx, deviceConfig, malgo.DeviceCallbacks{Data: onSamples})
	if err != nil {
		return fmt.Errorf("failed to initialize playback device: %w", err)
	}
	if err := device.Start(); err != nil {
		device.Uninit()
		return fmt.Errorf("failed to start playback device: %w", err)
	}

	p.device = device
	p.queue = queue
	p.cfg = cfg

	p.logger.Info("malgo output port configured",
		"frequency", cfg.Frequency, "mode", cfg.Mode, "updateSize", cfg.UpdateSize)
	return nil
}

func (p *malgoOutput) closeDevice() {
	if p.device == nil {
		return
	}
	p.queue.close()
	if err := p.device.Stop(); err != nil {
		p.logger.Warn("device stop error", "err", err)
	}
	p.device.Uninit()
	p.device = nil
}

// SetConfig reinitializes the playback device with the new stream format
func (p *malgoOutput) SetConfig(cfg OutputConfig) error {
	if err := cfg.validate(); err != nil {
		return err
	}
	if p.device == nil {
		return ErrReleased
	}
	if cfg == p.cfg {
		return nil
	}

	p.logger.Info("format change, reinitializing device",
		"from", fmt.Sprintf("%dHz/%s/%d", p.cfg.Frequency, p.cfg.Mode, p.cfg.UpdateSize),
		"to", fmt.Sprintf("%dHz/%s/%d", cfg.Frequency, cfg.Mode, cfg.UpdateSize))

	p.closeDevice()
	return p.initDevice(cfg)
}

func (p *malgoOutput) Output(buf []byte) error {
	if p.device == nil {
		return ErrReleased
	}
	if len(buf) != p.cfg.BufferSize() {
		return fmt.Errorf("output buffer is %d bytes, port expects %d", len(buf), p.cfg.BufferSize())
	}
	return p.queue.write(buf)
}

func (p *malgoOutput) Release() error {
	p.closeDevice()
	return nil
}

type malgoInput struct {
	logger  *slog.Logger
	device  *malgo.Device
	queue   *pcmQueue
	cfg     InputConfig
	dropped atomic.Uint64
}

func (p *malgoInput) Input(buf []byte) error {
	if len(buf) != p.cfg.BufferSize() {
		return fmt.Errorf("input buffer is %d bytes, port expects %d", len(buf), p.cfg.BufferSize())
	}
	return p.queue.readFull(buf)
}

func (p *malgoInput) Release() error {
	if p.device == nil {
		return nil
	}
	p.queue.close()
	if err := p.device.Stop(); err != nil {
		p.logger.Warn("device stop error", "err", err)
	}
	p.device.Uninit()
	p.device = nil
	return nil
}
