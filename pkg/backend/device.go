// ABOUTME: Host-owned device session and mixer interface
// ABOUTME: The state a backend negotiates into and the callback it mixes through
package backend

import "github.com/Resonate-Protocol/portmix/pkg/audio"

// Default device names reported when Open is called without one
const (
	DefaultPlaybackName = "Default Speakers/Headphones"
	DefaultCaptureName  = "Default Microphone"
)

// Mixer renders frames of mixed audio into buf in the given format.
// It is called on the playback worker with the mix lock held.
type Mixer interface {
	Mix(buf []byte, frames int, format audio.Format)
}

// MixerFunc adapts a function to the Mixer interface
type MixerFunc func(buf []byte, frames int, format audio.Format)

func (f MixerFunc) Mix(buf []byte, frames int, format audio.Format) {
	f(buf, frames, format)
}

// Device is the host's device session. Backends rewrite the embedded Format
// during Open and Reset to what the hardware accepted; the host may change
// it between Stop and Reset.
type Device struct {
	audio.Format

	Name         string
	ChannelOrder []audio.Channel

	// Mixer feeds playback; nil plays silence. Read once per Start.
	Mixer Mixer
}
