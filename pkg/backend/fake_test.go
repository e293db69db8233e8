// ABOUTME: Fake platform for backend tests
// ABOUTME: Records output buffers and feeds input cycles on demand
package backend

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/Resonate-Protocol/portmix/pkg/audio/port"
)

type fakePlatform struct {
	mu sync.Mutex

	outErr error
	inErr  error

	outputs []*fakeOutput
	inputs  []*fakeInput
}

func (p *fakePlatform) OpenOutputPort(kind port.OutputKind, cfg port.OutputConfig) (port.OutputPort, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.outErr != nil {
		return nil, p.outErr
	}
	out := &fakeOutput{kind: kind, cfg: cfg}
	p.outputs = append(p.outputs, out)
	return out, nil
}

func (p *fakePlatform) OpenInputPort(kind port.InputKind, cfg port.InputConfig) (port.InputPort, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.inErr != nil {
		return nil, p.inErr
	}
	in := &fakeInput{
		kind:   kind,
		cfg:    cfg,
		cycles: make(chan []byte),
		done:   make(chan struct{}),
	}
	p.inputs = append(p.inputs, in)
	return in, nil
}

func (p *fakePlatform) lastOutput() *fakeOutput {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.outputs) == 0 {
		return nil
	}
	return p.outputs[len(p.outputs)-1]
}

func (p *fakePlatform) lastInput() *fakeInput {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.inputs) == 0 {
		return nil
	}
	return p.inputs[len(p.inputs)-1]
}

type fakeOutput struct {
	mu sync.Mutex

	kind      port.OutputKind
	cfg       port.OutputConfig
	setCfgErr error
	outErr    error
	configs   []port.OutputConfig
	emitted   [][]byte
	released  bool
}

func (o *fakeOutput) SetConfig(cfg port.OutputConfig) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.setCfgErr != nil {
		return o.setCfgErr
	}
	o.cfg = cfg
	o.configs = append(o.configs, cfg)
	return nil
}

func (o *fakeOutput) Output(buf []byte) error {
	o.mu.Lock()
	if o.released {
		o.mu.Unlock()
		return port.ErrReleased
	}
	if o.outErr != nil {
		o.mu.Unlock()
		return o.outErr
	}
	o.emitted = append(o.emitted, append([]byte(nil), buf...))
	o.mu.Unlock()

	// Stand in for the hardware cycle
	time.Sleep(time.Millisecond)
	return nil
}

func (o *fakeOutput) Release() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.released = true
	return nil
}

func (o *fakeOutput) config() port.OutputConfig {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.cfg
}

func (o *fakeOutput) emittedCount() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.emitted)
}

func (o *fakeOutput) emittedBuffers() [][]byte {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([][]byte(nil), o.emitted...)
}

func (o *fakeOutput) isReleased() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.released
}

// fakeInput blocks each Input until the test feeds a cycle
type fakeInput struct {
	kind   port.InputKind
	cfg    port.InputConfig
	cycles chan []byte
	calls  atomic.Int64

	releaseOnce sync.Once
	done        chan struct{}
}

func (in *fakeInput) Input(buf []byte) error {
	in.calls.Add(1)
	select {
	case cycle := <-in.cycles:
		copy(buf, cycle)
		return nil
	case <-in.done:
		return port.ErrReleased
	}
}

func (in *fakeInput) Release() error {
	in.releaseOnce.Do(func() { close(in.done) })
	return nil
}

func (in *fakeInput) isReleased() bool {
	select {
	case <-in.done:
		return true
	default:
		return false
	}
}
