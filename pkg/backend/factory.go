// ABOUTME: Backend factory for a platform
// ABOUTME: Reports supported directions, probes device names and builds engines
package backend

import (
	"errors"
	"fmt"

	"github.com/Resonate-Protocol/portmix/pkg/audio/port"
)

// Type is the direction of a backend
type Type int

const (
	TypePlayback Type = iota
	TypeCapture
	// TypeLoopback mirrors the host's backend types so callers can ask for
	// it; no platform here builds one and QuerySupport reports false.
	TypeLoopback
)

func (t Type) String() string {
	switch t {
	case TypePlayback:
		return "playback"
	case TypeCapture:
		return "capture"
	case TypeLoopback:
		return "loopback"
	}
	return fmt.Sprintf("Type(%d)", int(t))
}

// ProbeType selects which device names Probe lists
type ProbeType int

const (
	ProbeAllDevices ProbeType = iota
	ProbeCaptureDevices
)

// ErrUnsupportedType is returned by CreateBackend for directions the
// factory cannot build
var ErrUnsupportedType = errors.New("backend: unsupported backend type")

// Factory builds playback and capture engines over one platform
type Factory struct {
	platform port.Platform
}

// NewFactory creates a factory for platform
func NewFactory(platform port.Platform) *Factory {
	return &Factory{platform: platform}
}

// QuerySupport reports whether the factory builds backends of type t
func (f *Factory) QuerySupport(t Type) bool {
	return t == TypePlayback || t == TypeCapture
}

// Probe lists the device names for probe
func (f *Factory) Probe(probe ProbeType) []string {
	switch probe {
	case ProbeAllDevices:
		return []string{DefaultPlaybackName}
	case ProbeCaptureDevices:
		return []string{DefaultCaptureName}
	}
	return nil
}

// CreateBackend returns an unopened engine of type t bound to dev
func (f *Factory) CreateBackend(dev *Device, t Type) (Backend, error) {
	switch t {
	case TypePlayback:
		return NewPlayback(dev, f.platform), nil
	case TypeCapture:
		return NewCapture(dev, f.platform), nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedType, t)
}
