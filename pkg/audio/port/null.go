// ABOUTME: Null port implementation for headless hosts
// ABOUTME: Discards output and captures silence at the stream rate
package port

import (
	"log/slog"
	"sync/atomic"

	"github.com/google/uuid"
)

// Null is a Platform whose ports discard output and capture silence.
// Each call blocks for one update period so engines run at a realistic
// cadence without hardware.
type Null struct {
	logger *slog.Logger

	// Unpaced turns off the per-call sleep
	Unpaced bool
}

// NewNull creates a paced null platform
func NewNull() *Null {
	return &Null{
		logger: slog.Default().With("null platform uuid", uuid.New()),
	}
}

func (n *Null) OpenOutputPort(kind OutputKind, cfg OutputConfig) (OutputPort, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	p := &nullOutput{cfg: cfg}
	if !n.Unpaced {
		p.pacer = newPacer(cfg.UpdateSize, cfg.Frequency)
	}
	n.logger.Debug("null output port opened", "kind", kind, "frequency", cfg.Frequency, "mode", cfg.Mode)
	return p, nil
}

func (n *Null) OpenInputPort(kind InputKind, cfg InputConfig) (InputPort, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	p := &nullInput{cfg: cfg}
	if !n.Unpaced {
		p.pacer = newPacer(cfg.UpdateSize, cfg.Frequency)
	}
	n.logger.Debug("null input port opened", "kind", kind, "frequency", cfg.Frequency)
	return p, nil
}

type nullOutput struct {
	cfg      OutputConfig
	pacer    *pacer
	released atomic.Bool
}

func (p *nullOutput) SetConfig(cfg OutputConfig) error {
	if err := cfg.validate(); err != nil {
		return err
	}
	if p.released.Load() {
		return ErrReleased
	}
	p.cfg = cfg
	if p.pacer != nil {
		p.pacer = newPacer(cfg.UpdateSize, cfg.Frequency)
	}
	return nil
}

func (p *nullOutput) Output(buf []byte) error {
	if p.released.Load() {
		return ErrReleased
	}
	if p.pacer != nil {
		p.pacer.wait()
	}
	return nil
}

func (p *nullOutput) Release() error {
	p.released.Store(true)
	return nil
}

type nullInput struct {
	cfg      InputConfig
	pacer    *pacer
	released atomic.Bool
}

func (p *nullInput) Input(buf []byte) error {
	if p.released.Load() {
		return ErrReleased
	}
	clear(buf)
	if p.pacer != nil {
		p.pacer.wait()
	}
	return nil
}

func (p *nullInput) Release() error {
	p.released.Store(true)
	return nil
}
