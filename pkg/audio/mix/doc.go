// ABOUTME: Sample mixers for driving a playback backend
// ABOUTME: Provides a sine test tone and silence
// Package mix provides simple mixers a host can hand to a playback backend
// when it has no mixing engine of its own.
//
// Example:
//
//	dev.Mixer = mix.NewTone(440, 0.5)
package mix
