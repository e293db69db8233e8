// ABOUTME: Audio type definitions
// ABOUTME: Defines device formats, channel layouts and sample types
package audio

import "fmt"

// UpdateAlign is the frame boundary every port update size is rounded up to
const UpdateAlign = 64

// Channels is a device channel layout
type Channels int

const (
	ChannelsMono Channels = iota
	ChannelsStereo
	ChannelsQuad
	ChannelsX51
	ChannelsX51Rear
	ChannelsX61
	ChannelsX71
	ChannelsAmbi3D
)

// Count returns the number of interleaved channels in the layout.
// ambiOrder is only consulted for ChannelsAmbi3D.
func (c Channels) Count(ambiOrder int) int {
	switch c {
	case ChannelsMono:
		return 1
	case ChannelsStereo:
		return 2
	case ChannelsQuad:
		return 4
	case ChannelsX51, ChannelsX51Rear:
		return 6
	case ChannelsX61:
		return 7
	case ChannelsX71:
		return 8
	case ChannelsAmbi3D:
		return (ambiOrder + 1) * (ambiOrder + 1)
	}
	return 0
}

func (c Channels) String() string {
	switch c {
	case ChannelsMono:
		return "mono"
	case ChannelsStereo:
		return "stereo"
	case ChannelsQuad:
		return "quad"
	case ChannelsX51:
		return "5.1"
	case ChannelsX51Rear:
		return "5.1-rear"
	case ChannelsX61:
		return "6.1"
	case ChannelsX71:
		return "7.1"
	case ChannelsAmbi3D:
		return "ambi3d"
	}
	return fmt.Sprintf("Channels(%d)", int(c))
}

// ParseChannels maps a layout name (as produced by String) back to a layout
func ParseChannels(name string) (Channels, error) {
	for c := ChannelsMono; c <= ChannelsAmbi3D; c++ {
		if c.String() == name {
			return c, nil
		}
	}
	return 0, fmt.Errorf("unknown channel layout: %q", name)
}

// SampleType is the storage type of a single sample
type SampleType int

const (
	SampleByte SampleType = iota
	SampleUByte
	SampleShort
	SampleUShort
	SampleInt
	SampleUInt
	SampleFloat
)

// Bytes returns the width of one sample in bytes
func (t SampleType) Bytes() int {
	switch t {
	case SampleByte, SampleUByte:
		return 1
	case SampleShort, SampleUShort:
		return 2
	case SampleInt, SampleUInt, SampleFloat:
		return 4
	}
	return 0
}

func (t SampleType) String() string {
	switch t {
	case SampleByte:
		return "s8"
	case SampleUByte:
		return "u8"
	case SampleShort:
		return "s16"
	case SampleUShort:
		return "u16"
	case SampleInt:
		return "s32"
	case SampleUInt:
		return "u32"
	case SampleFloat:
		return "f32"
	}
	return fmt.Sprintf("SampleType(%d)", int(t))
}

// Format describes a device's negotiated stream format
type Format struct {
	Channels   Channels
	Type       SampleType
	Frequency  int
	UpdateSize int // frames per I/O cycle
	NumUpdates int // cycles buffered by capture
	AmbiOrder  int
}

// FrameSize returns bytes per frame for the format
func (f Format) FrameSize() int {
	return FrameSize(f.Channels, f.Type, f.AmbiOrder)
}

func (f Format) String() string {
	return fmt.Sprintf("%dHz %s %s update=%d", f.Frequency, f.Channels, f.Type, f.UpdateSize)
}

// FrameSize returns channel count × sample width
func FrameSize(ch Channels, t SampleType, ambiOrder int) int {
	return ch.Count(ambiOrder) * t.Bytes()
}

// AlignUpdateSize rounds n up to the next multiple of UpdateAlign
func AlignUpdateSize(n int) int {
	return (n + UpdateAlign - 1) &^ (UpdateAlign - 1)
}
