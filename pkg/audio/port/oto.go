// ABOUTME: Oto-based output port implementation
// ABOUTME: Feeds a persistent oto player from a blocking PCM queue
package port

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/ebitengine/oto/v3"
	"github.com/google/uuid"
)

// Oto is an output-only Platform backed by oto.
//
// oto allows a single context per process, so every port opened from this
// platform must share the frequency and mode of the first one.
type Oto struct {
	logger *slog.Logger

	mu         sync.Mutex
	otoCtx     *oto.Context
	sampleRate int
	mode       Mode
}

// NewOto creates an oto platform. The oto context is created on first open.
func NewOto() *Oto {
	return &Oto{
		logger: slog.Default().With("oto platform uuid", uuid.New()),
	}
}

func (o *Oto) context(cfg OutputConfig) (*oto.Context, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.otoCtx != nil {
		if o.sampleRate != cfg.Frequency || o.mode != cfg.Mode {
			return nil, fmt.Errorf("%w: oto context is %dHz %s, cannot reinitialize for %dHz %s",
				ErrUnsupported, o.sampleRate, o.mode, cfg.Frequency, cfg.Mode)
		}
		return o.otoCtx, nil
	}

	op := &oto.NewContextOptions{
		SampleRate:   cfg.Frequency,
		ChannelCount: cfg.Mode.Channels(),
		Format:       oto.FormatSignedInt16LE,
	}

	ctx, readyChan, err := oto.NewContext(op)
	if err != nil {
		return nil, fmt.Errorf("failed to create oto context: %w", err)
	}
	<-readyChan

	o.otoCtx = ctx
	o.sampleRate = cfg.Frequency
	o.mode = cfg.Mode
	return ctx, nil
}

// OpenOutputPort starts a persistent player reading from the port's queue
func (o *Oto) OpenOutputPort(kind OutputKind, cfg OutputConfig) (OutputPort, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	ctx, err := o.context(cfg)
	if err != nil {
		return nil, err
	}

	p := &otoOutput{
		logger: o.logger.With("output kind", kind),
		otoCtx: ctx,
		cfg:    cfg,
		queue:  newPCMQueue(cfg.BufferSize() * outputQueuedCycles),
	}
	p.player = ctx.NewPlayer(p.queue)
	p.player.Play()

	p.logger.Info("oto output port opened",
		"frequency", cfg.Frequency, "mode", cfg.Mode, "updateSize", cfg.UpdateSize)
	return p, nil
}

// OpenInputPort is not supported; oto has no capture path
func (o *Oto) OpenInputPort(kind InputKind, cfg InputConfig) (InputPort, error) {
	return nil, fmt.Errorf("%w: oto has no input ports", ErrUnsupported)
}

// Close suspends the shared oto context
func (o *Oto) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.otoCtx != nil {
		if err := o.otoCtx.Suspend(); err != nil {
			o.logger.Warn("oto context suspend error", "err", err)
		}
	}
	return nil
}

type otoOutput struct {
	logger *slog.Logger
	otoCtx *oto.Context
	player *oto.Player
	queue  *pcmQueue
	cfg    OutputConfig
}

// SetConfig accepts a new update size. Frequency and mode are fixed by the
// shared oto context.
func (p *otoOutput) SetConfig(cfg OutputConfig) error {
	if err := cfg.validate(); err != nil {
		return err
	}
	if p.player == nil {
		return ErrReleased
	}
	if cfg.Frequency != p.cfg.Frequency || cfg.Mode != p.cfg.Mode {
		return fmt.Errorf("%w: oto cannot change %dHz %s to %dHz %s",
			ErrUnsupported, p.cfg.Frequency, p.cfg.Mode, cfg.Frequency, cfg.Mode)
	}
	if cfg.UpdateSize == p.cfg.UpdateSize {
		return nil
	}

	// Resize the queue behind a fresh player so no stale bytes play at the
	// old cycle length.
	p.queue.close()
	if err := p.player.Close(); err != nil {
		p.logger.Warn("player close error", "err", err)
	}

	p.queue = newPCMQueue(cfg.BufferSize() * outputQueuedCycles)
	p.player = p.otoCtx.NewPlayer(p.queue)
	p.player.Play()
	p.cfg = cfg
	return nil
}

func (p *otoOutput) Output(buf []byte) error {
	if p.player == nil {
		return ErrReleased
	}
	if len(buf) != p.cfg.BufferSize() {
		return fmt.Errorf("output buffer is %d bytes, port expects %d", len(buf), p.cfg.BufferSize())
	}
	return p.queue.write(buf)
}

func (p *otoOutput) Release() error {
	if p.player == nil {
		return nil
	}
	p.queue.close()
	if err := p.player.Close(); err != nil {
		p.logger.Warn("player close error", "err", err)
	}
	p.player = nil
	return nil
}
