// ABOUTME: Native audio port package
// ABOUTME: Defines the Platform port API and its concrete implementations
// Package port is the platform audio API that device backends drive.
//
// A Platform opens OutputPort and InputPort streams. Ports move exactly one
// update of S16 frames per call and block until the hardware has accepted or
// produced it, so a single worker goroutine can pace itself on port I/O.
//
// Implementations:
//   - Malgo: miniaudio playback and capture devices
//   - Oto: playback only, one oto context per process
//   - File: WAV recording output, WAV or MP3 replay input
//   - Null: discards output and captures silence at the stream rate
//
// Example:
//
//	platform := port.NewMalgo()
//	defer platform.Close()
//	out, err := platform.OpenOutputPort(port.OutputBGM, port.OutputConfig{
//	    UpdateSize: 256,
//	    Frequency:  48000,
//	    Mode:       port.ModeStereo,
//	})
//	err = out.Output(buf) // len(buf) == 256 * 4
package port
