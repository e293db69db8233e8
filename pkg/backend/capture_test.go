// ABOUTME: Tests for the capture engine
// ABOUTME: Covers negotiation, the poll loop, ring overrun and sample reads
package backend

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Resonate-Protocol/portmix/pkg/audio"
	"github.com/Resonate-Protocol/portmix/pkg/audio/port"
)

// cycleOf returns one update of mono S16 frames all holding v
func cycleOf(frames int, v int16) []byte {
	samples := make([]int16, frames)
	for i := range samples {
		samples[i] = v
	}
	buf := make([]byte, frames*2)
	audio.PutInt16s(buf, samples)
	return buf
}

// stopWhileFeeding stops c while feeding silence so a worker blocked in
// Input reaches its next cancellation check
func stopWhileFeeding(c *Capture, in *fakeInput) {
	stopped := make(chan struct{})
	go func() {
		c.Stop()
		close(stopped)
	}()

	silence := make([]byte, in.cfg.BufferSize())
	for {
		select {
		case <-stopped:
			return
		case in.cycles <- silence:
		}
	}
}

func TestCaptureOpenNormalizesToMono(t *testing.T) {
	layouts := []audio.Channels{
		audio.ChannelsMono, audio.ChannelsStereo, audio.ChannelsQuad, audio.ChannelsX51,
		audio.ChannelsX51Rear, audio.ChannelsX61, audio.ChannelsX71, audio.ChannelsAmbi3D,
	}

	for _, ch := range layouts {
		t.Run(ch.String(), func(t *testing.T) {
			platform := &fakePlatform{}
			dev := newTestDevice(ch, 256)
			c := NewCapture(dev, platform)
			defer c.Close()

			require.NoError(t, c.Open(""))
			assert.Equal(t, audio.ChannelsMono, dev.Channels)
			assert.Equal(t, audio.SampleShort, dev.Type)
			assert.Equal(t, 2, dev.FrameSize())

			in := platform.lastInput()
			assert.Equal(t, port.InputRaw, in.kind)
			assert.Equal(t, port.InputConfig{UpdateSize: 256, Frequency: 48000, Format: port.FormatS16Mono}, in.cfg)
		})
	}
}

func TestCaptureOpenName(t *testing.T) {
	dev := newTestDevice(audio.ChannelsMono, 64)
	c := NewCapture(dev, &fakePlatform{})
	defer c.Close()

	require.NoError(t, c.Open(""))
	assert.Equal(t, DefaultCaptureName, dev.Name)

	require.NoError(t, c.Open("Headset Mic"))
	assert.Equal(t, "Headset Mic", dev.Name)
}

func TestCaptureEndToEnd(t *testing.T) {
	platform := &fakePlatform{}
	dev := newTestDevice(audio.ChannelsMono, 256)
	dev.NumUpdates = 4
	c := NewCapture(dev, platform)
	defer c.Close()

	require.NoError(t, c.Open(""))
	assert.Equal(t, 1024, c.ring.Load().Capacity())
	assert.Equal(t, 0, c.AvailableSamples())

	require.NoError(t, c.Start(ThreadConfig{}))
	in := platform.lastInput()

	in.cycles <- cycleOf(256, 1234)
	require.Eventually(t, func() bool { return c.AvailableSamples() == 256 }, time.Second, time.Millisecond)

	dst := make([]byte, 256*2)
	require.NoError(t, c.CaptureSamples(dst, 256))
	assert.Equal(t, cycleOf(256, 1234), dst)
	assert.Equal(t, 0, c.AvailableSamples())

	stopWhileFeeding(c, in)
	assert.False(t, c.worker.running())
}

func TestCaptureOverrunKeepsNewest(t *testing.T) {
	platform := &fakePlatform{}
	dev := newTestDevice(audio.ChannelsMono, 64)
	dev.NumUpdates = 4
	c := NewCapture(dev, platform)
	defer c.Close()

	require.NoError(t, c.Open(""))
	require.NoError(t, c.Start(ThreadConfig{}))
	in := platform.lastInput()

	for v := int16(1); v <= 6; v++ {
		in.cycles <- cycleOf(64, v)
	}
	// The seventh Input begins only after the sixth cycle is in the ring
	require.Eventually(t, func() bool { return in.calls.Load() >= 7 }, time.Second, time.Millisecond)

	assert.Equal(t, 256, c.AvailableSamples())

	dst := make([]byte, 256*2)
	require.NoError(t, c.CaptureSamples(dst, 256))

	var want []byte
	for v := int16(3); v <= 6; v++ {
		want = append(want, cycleOf(64, v)...)
	}
	assert.Equal(t, want, dst)
	assert.Equal(t, 0, c.AvailableSamples())

	stopWhileFeeding(c, in)
}

func TestCaptureSamplesUnderrunZeroFills(t *testing.T) {
	platform := &fakePlatform{}
	dev := newTestDevice(audio.ChannelsMono, 64)
	c := NewCapture(dev, platform)
	defer c.Close()

	require.NoError(t, c.Open(""))
	require.NoError(t, c.Start(ThreadConfig{}))
	in := platform.lastInput()

	in.cycles <- cycleOf(64, -77)
	require.Eventually(t, func() bool { return c.AvailableSamples() == 64 }, time.Second, time.Millisecond)

	dst := make([]byte, 100*2)
	for i := range dst {
		dst[i] = 0xff
	}
	require.NoError(t, c.CaptureSamples(dst, 100))
	assert.Equal(t, cycleOf(64, -77), dst[:128])
	assert.Equal(t, make([]byte, 72), dst[128:])

	stopWhileFeeding(c, in)
}

func TestCaptureSamplesErrors(t *testing.T) {
	c := NewCapture(newTestDevice(audio.ChannelsMono, 64), &fakePlatform{})
	defer c.Close()

	assert.ErrorIs(t, c.CaptureSamples(make([]byte, 128), 64), ErrNotOpen)
	assert.Equal(t, 0, c.AvailableSamples())

	require.NoError(t, c.Open(""))
	assert.Error(t, c.CaptureSamples(make([]byte, 10), 64))
	assert.Error(t, c.CaptureSamples(make([]byte, 10), -1))
	assert.NoError(t, c.CaptureSamples(nil, 0))
}

func TestCaptureOpenPortUnavailable(t *testing.T) {
	cause := errors.New("invalid value")
	c := NewCapture(newTestDevice(audio.ChannelsMono, 64), &fakePlatform{inErr: cause})
	defer c.Close()

	err := c.Open("")
	assert.ErrorIs(t, err, ErrPortUnavailable)
	assert.ErrorIs(t, err, cause)
	assert.ErrorIs(t, c.Start(ThreadConfig{}), ErrThreadStartFailed)
}

func TestCaptureOpenAllocationFailed(t *testing.T) {
	platform := &fakePlatform{}
	dev := newTestDevice(audio.ChannelsMono, 64)
	dev.NumUpdates = 0
	c := NewCapture(dev, platform)
	defer c.Close()

	assert.ErrorIs(t, c.Open(""), ErrAllocationFailed)
	assert.True(t, platform.lastInput().isReleased())
	assert.ErrorIs(t, c.CaptureSamples(nil, 0), ErrNotOpen)
}

func TestCaptureReset(t *testing.T) {
	platform := &fakePlatform{}
	dev := newTestDevice(audio.ChannelsStereo, 64)
	c := NewCapture(dev, platform)
	defer c.Close()

	require.NoError(t, c.Open(""))
	in := platform.lastInput()

	dev.UpdateSize = 512
	require.NoError(t, c.Reset())
	assert.Equal(t, audio.DefaultChannelOrder(audio.ChannelsMono), dev.ChannelOrder)

	// The port keeps its original configuration
	assert.Same(t, in, platform.lastInput())
	assert.Equal(t, 64, in.cfg.UpdateSize)

	require.NoError(t, c.Start(ThreadConfig{}))
	assert.ErrorIs(t, c.Reset(), ErrRunning)
	stopWhileFeeding(c, in)
	assert.NoError(t, c.Reset())
}

func TestCaptureStopTwice(t *testing.T) {
	platform := &fakePlatform{}
	c := NewCapture(newTestDevice(audio.ChannelsMono, 64), platform)
	defer c.Close()

	require.NoError(t, c.Open(""))
	require.NoError(t, c.Start(ThreadConfig{}))
	stopWhileFeeding(c, platform.lastInput())

	done := make(chan struct{})
	go func() {
		c.Stop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("second Stop blocked")
	}
}

func TestCaptureLockUnlock(t *testing.T) {
	c := NewCapture(newTestDevice(audio.ChannelsMono, 64), &fakePlatform{})
	defer c.Close()

	c.Lock()
	locked := make(chan struct{})
	go func() {
		c.Lock()
		close(locked)
		c.Unlock()
	}()

	select {
	case <-locked:
		t.Fatal("second Lock did not wait")
	case <-time.After(10 * time.Millisecond):
	}
	c.Unlock()
	<-locked
}

func TestCaptureClose(t *testing.T) {
	t.Run("never opened", func(t *testing.T) {
		c := NewCapture(newTestDevice(audio.ChannelsMono, 64), &fakePlatform{})
		assert.NotPanics(t, c.Close)
	})

	t.Run("running", func(t *testing.T) {
		platform := &fakePlatform{}
		c := NewCapture(newTestDevice(audio.ChannelsMono, 64), platform)
		require.NoError(t, c.Open(""))
		require.NoError(t, c.Start(ThreadConfig{}))
		in := platform.lastInput()

		stopWhileFeeding(c, in)
		c.Close()

		assert.True(t, in.isReleased())
		assert.Equal(t, 0, c.AvailableSamples())
		assert.ErrorIs(t, c.CaptureSamples(nil, 0), ErrNotOpen)
	})
}
