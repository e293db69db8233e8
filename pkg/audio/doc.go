// ABOUTME: Audio fundamentals package providing core types and utilities
// ABOUTME: Defines Format, channel layouts and S16 PCM helpers
// Package audio provides the fundamental format types shared by ports and backends.
//
// This package defines:
//   - Format: a device's negotiated stream format (layout, sample type,
//     frequency, update size)
//   - Channels / SampleType: layout and storage enums with frame sizing
//   - DefaultChannelOrder: the default speaker interleaving per layout
//
// Every update size handed to a hardware port is rounded with AlignUpdateSize.
//
// Example:
//
//	format := audio.Format{
//	    Channels:   audio.ChannelsStereo,
//	    Type:       audio.SampleShort,
//	    Frequency:  48000,
//	    UpdateSize: audio.AlignUpdateSize(100), // 128
//	}
//	bufLen := format.UpdateSize * format.FrameSize()
package audio
