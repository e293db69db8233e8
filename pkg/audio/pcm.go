// ABOUTME: 16-bit PCM byte helpers
// ABOUTME: Converts between little-endian S16 bytes and int16 samples
package audio

import "encoding/binary"

// PutInt16s writes samples into dst as little-endian S16.
// It returns the number of samples written.
func PutInt16s(dst []byte, samples []int16) int {
	n := min(len(samples), len(dst)/2)
	for i := 0; i < n; i++ {
		binary.LittleEndian.PutUint16(dst[i*2:], uint16(samples[i]))
	}
	return n
}

// Int16s decodes little-endian S16 bytes from src into dst.
// It returns the number of samples decoded.
func Int16s(dst []int16, src []byte) int {
	n := min(len(dst), len(src)/2)
	for i := 0; i < n; i++ {
		dst[i] = int16(binary.LittleEndian.Uint16(src[i*2:]))
	}
	return n
}

// DownmixToMono averages interleaved S16 frames into one channel.
// dst must hold len(src)/channels samples.
func DownmixToMono(dst []int16, src []int16, channels int) int {
	if channels <= 1 {
		return copy(dst, src)
	}
	frames := min(len(dst), len(src)/channels)
	for i := 0; i < frames; i++ {
		sum := 0
		for ch := 0; ch < channels; ch++ {
			sum += int(src[i*channels+ch])
		}
		dst[i] = int16(sum / channels)
	}
	return frames
}

// PeakInt16 returns the largest absolute sample value in S16 bytes
func PeakInt16(src []byte) int {
	peak := 0
	for i := 0; i+1 < len(src); i += 2 {
		v := int(int16(binary.LittleEndian.Uint16(src[i:])))
		if v < 0 {
			v = -v
		}
		if v > peak {
			peak = v
		}
	}
	return peak
}
