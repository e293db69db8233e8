// ABOUTME: Platform audio port interface definitions
// ABOUTME: Common interface for native input and output hardware ports
package port

import (
	"errors"
	"fmt"
)

// ErrUnsupported is returned by platforms that lack a port direction or mode
var ErrUnsupported = errors.New("port: unsupported")

// ErrReleased is returned by I/O on a port after Release
var ErrReleased = errors.New("port: released")

// OutputKind selects the class of output port to open
type OutputKind int

const (
	OutputMain OutputKind = iota
	OutputBGM
	OutputVoice
)

// InputKind selects the class of input port to open
type InputKind int

const (
	InputRaw InputKind = iota
	InputVoice
)

// Mode is the channel mode of an output port
type Mode int

const (
	ModeMono Mode = iota
	ModeStereo
)

// Channels returns the interleaved channel count for the mode
func (m Mode) Channels() int {
	if m == ModeStereo {
		return 2
	}
	return 1
}

func (m Mode) String() string {
	if m == ModeStereo {
		return "stereo"
	}
	return "mono"
}

// InputFormat is the sample format of an input port
type InputFormat int

const (
	FormatS16Mono InputFormat = iota
)

// OutputConfig describes the stream an output port carries
type OutputConfig struct {
	UpdateSize int // frames per Output call
	Frequency  int
	Mode       Mode
}

// FrameSize returns bytes per S16 frame
func (c OutputConfig) FrameSize() int {
	return c.Mode.Channels() * 2
}

// BufferSize returns the exact byte length Output expects
func (c OutputConfig) BufferSize() int {
	return c.UpdateSize * c.FrameSize()
}

func (c OutputConfig) validate() error {
	if c.UpdateSize <= 0 {
		return fmt.Errorf("invalid update size: %d", c.UpdateSize)
	}
	if c.Frequency <= 0 {
		return fmt.Errorf("invalid frequency: %d", c.Frequency)
	}
	return nil
}

// InputConfig describes the stream an input port captures
type InputConfig struct {
	UpdateSize int // frames per Input call
	Frequency  int
	Format     InputFormat
}

// FrameSize returns bytes per frame for the input format
func (c InputConfig) FrameSize() int {
	return 2
}

// BufferSize returns the exact byte length Input fills
func (c InputConfig) BufferSize() int {
	return c.UpdateSize * c.FrameSize()
}

func (c InputConfig) validate() error {
	if c.UpdateSize <= 0 {
		return fmt.Errorf("invalid update size: %d", c.UpdateSize)
	}
	if c.Frequency <= 0 {
		return fmt.Errorf("invalid frequency: %d", c.Frequency)
	}
	if c.Format != FormatS16Mono {
		return fmt.Errorf("%w: input format %d", ErrUnsupported, c.Format)
	}
	return nil
}

// OutputPort is an open hardware output stream
type OutputPort interface {
	// SetConfig reconfigures the open port in place
	SetConfig(cfg OutputConfig) error

	// Output emits one update of interleaved S16 frames.
	// It blocks until the hardware has accepted the buffer.
	Output(buf []byte) error

	// Release closes the port; further I/O returns ErrReleased
	Release() error
}

// InputPort is an open hardware input stream
type InputPort interface {
	// Input fills buf with exactly one update of frames.
	// It blocks until a full cycle has been captured.
	Input(buf []byte) error

	// Release closes the port; further I/O returns ErrReleased
	Release() error
}

// Platform opens native ports
type Platform interface {
	OpenOutputPort(kind OutputKind, cfg OutputConfig) (OutputPort, error)
	OpenInputPort(kind InputKind, cfg InputConfig) (InputPort, error)
}
