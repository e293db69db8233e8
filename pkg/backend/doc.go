// ABOUTME: Device backend package
// ABOUTME: Playback and capture engines bridging a mixing host to native ports
// Package backend connects a host mixing engine to a platform's native
// audio ports.
//
// A Playback engine runs a worker that, once per update, takes the mix
// lock, asks the device's Mixer for UpdateSize frames, releases the lock and
// blocks on the output port. A Capture engine runs a worker that blocks on
// the input port for one update and writes it into a lock-free ring the host
// drains with CaptureSamples.
//
// Lifecycle:
//
//	dev := &backend.Device{Format: audio.Format{
//	    Channels:   audio.ChannelsStereo,
//	    Frequency:  48000,
//	    UpdateSize: 256,
//	}, Mixer: mix.NewTone(440, 0.5)}
//	pb := backend.NewPlayback(dev, port.NewMalgo())
//	if err := pb.Open(""); err != nil { ... }
//	if err := pb.Start(backend.ThreadConfig{}); err != nil { ... }
//	...
//	pb.Stop()
//	pb.Close()
//
// Open, Reset and Start report ErrPortUnavailable, ErrAllocationFailed or
// ErrThreadStartFailed. Errors on a running worker end its loop and are
// logged when it is joined; they never reach the host.
package backend
