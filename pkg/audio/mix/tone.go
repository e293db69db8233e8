// ABOUTME: Test tone and silence mixers
// ABOUTME: Render a sine wave or zeros into a device mix buffer
package mix

import (
	"encoding/binary"
	"math"

	"github.com/Resonate-Protocol/portmix/pkg/audio"
)

// Tone renders a sine wave on every channel of the device format.
// S16 and F32 are rendered; other sample types get silence.
//
// Tone is not safe for concurrent use. A host adjusting a tone that a
// playback engine is mixing does so while holding the engine's lock.
type Tone struct {
	frequency   float64
	volume      float64
	sampleIndex uint64
}

// NewTone creates a tone at frequency Hz. volume is clamped to [0, 1].
func NewTone(frequency, volume float64) *Tone {
	if frequency <= 0 {
		frequency = 440.0 // A4 note
	}
	return &Tone{
		frequency: frequency,
		volume:    math.Max(0, math.Min(1, volume)),
	}
}

// SetVolume sets the amplitude, clamped to [0, 1]
func (t *Tone) SetVolume(volume float64) {
	t.volume = math.Max(0, math.Min(1, volume))
}

// Volume returns the current amplitude
func (t *Tone) Volume() float64 {
	return t.volume
}

// Mix writes frames of the tone into buf
func (t *Tone) Mix(buf []byte, frames int, format audio.Format) {
	channels := format.Channels.Count(format.AmbiOrder)
	frameSize := format.FrameSize()
	if channels == 0 || frameSize == 0 || format.Frequency <= 0 {
		return
	}
	frames = min(frames, len(buf)/frameSize)

	for i := 0; i < frames; i++ {
		ts := float64(t.sampleIndex+uint64(i)) / float64(format.Frequency)
		sample := math.Sin(2*math.Pi*t.frequency*ts) * t.volume

		frame := buf[i*frameSize : (i+1)*frameSize]
		switch format.Type {
		case audio.SampleShort:
			v := uint16(int16(sample * 32767.0))
			for ch := 0; ch < channels; ch++ {
				binary.LittleEndian.PutUint16(frame[ch*2:], v)
			}
		case audio.SampleFloat:
			v := math.Float32bits(float32(sample))
			for ch := 0; ch < channels; ch++ {
				binary.LittleEndian.PutUint32(frame[ch*4:], v)
			}
		default:
			clear(frame)
		}
	}

	t.sampleIndex += uint64(frames)
}

// Silence zero-fills the mix buffer
type Silence struct{}

func (Silence) Mix(buf []byte, frames int, format audio.Format) {
	clear(buf[:min(len(buf), frames*format.FrameSize())])
}
