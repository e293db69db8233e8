// ABOUTME: Entry point for the portmix host demo
// ABOUTME: Plays a test tone through a playback backend and meters capture
package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/pflag"

	"github.com/Resonate-Protocol/portmix/internal/config"
	"github.com/Resonate-Protocol/portmix/internal/logging"
	"github.com/Resonate-Protocol/portmix/internal/ui"
	"github.com/Resonate-Protocol/portmix/internal/version"
	"github.com/Resonate-Protocol/portmix/pkg/audio"
	"github.com/Resonate-Protocol/portmix/pkg/audio/mix"
	"github.com/Resonate-Protocol/portmix/pkg/backend"
)

var (
	configFile  = pflag.String("config", "", "Config file path (yaml, toml or json)")
	showVersion = pflag.Bool("version", false, "Print version and exit")
)

func init() {
	pflag.String("log-level", "info", "Log level: none, error, warn, info, debug")
	pflag.String("log-file", "", "Log file path (JSON); stdout when empty")
	pflag.String("platform", "malgo", "Audio platform: malgo, oto, file, null")
	pflag.Int("frequency", 48000, "Sample rate in Hz")
	pflag.String("channels", "stereo", "Channel layout: mono, stereo, quad, 5.1, 5.1-rear, 6.1, 7.1")
	pflag.Int("update-size", 256, "Frames per I/O cycle (playback rounds up to 64)")
	pflag.Int("num-updates", 4, "Cycles held by the capture ring")
	pflag.Bool("capture", false, "Also open a capture backend and meter its input")
	pflag.Float64("tone", 440, "Test tone frequency in Hz")
	pflag.Int("volume", 50, "Test tone volume 0-100")
	pflag.Int("priority", 0, "Worker nice value (default: one step above the caller)")
	pflag.IntSlice("affinity", nil, "CPUs the workers may run on")
	pflag.String("input-file", "", "WAV or MP3 file captured by the file platform")
	pflag.String("output-file", "portmix.wav", "WAV file written by the file platform")
	pflag.Bool("loop", true, "Loop the file platform's input file")
	pflag.Duration("duration", 0, "Stop after this long (0 runs until interrupted)")
	pflag.Bool("tui", false, "Show the terminal UI")
}

func main() {
	pflag.Parse()

	if *showVersion {
		fmt.Println(version.String())
		return
	}

	cfg, err := config.LoadConfig(*configFile, pflag.CommandLine)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}

	// TUI mode: log only to file
	logFile := cfg.LogFile
	if cfg.TUI && logFile == "" {
		logFile = "portmix.log"
	}
	f, err := logging.ConfigureDefaultLogger(cfg.LogLevel, logFile, slog.HandlerOptions{})
	if err != nil {
		fmt.Fprintf(os.Stderr, "logging error: %v\n", err)
		os.Exit(1)
	}
	if f != nil {
		defer func() { _ = f.Close() }()
	}

	if err := run(cfg); err != nil {
		slog.Error("portmix failed", "err", err)
		if f != nil {
			_ = f.Close()
		}
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	platform, closePlatform, err := newPlatform(cfg)
	if err != nil {
		return err
	}
	defer closePlatform()

	factory := backend.NewFactory(platform)
	slog.Info("starting "+version.String(), "platform", cfg.Platform, "devices", factory.Probe(backend.ProbeAllDevices))

	// TUI setup
	var tuiProg *tea.Program
	var volumeCtrl *ui.VolumeControl
	if cfg.TUI {
		volumeCtrl = ui.NewVolumeControl()
		tuiProg = ui.Run(volumeCtrl, cfg.Volume)
		go func() {
			if _, err := tuiProg.Run(); err != nil {
				slog.Error("tui error", "err", err)
			}
		}()
		defer tuiProg.Quit()
	}

	updateTUI := func(msg ui.StatusMsg) {
		if tuiProg != nil {
			tuiProg.Send(msg)
		}
	}

	tone := mix.NewTone(cfg.ToneFrequency, float64(cfg.Volume)/100)
	dev := &backend.Device{Format: cfg.Format(), Mixer: tone}

	pb, err := factory.CreateBackend(dev, backend.TypePlayback)
	if err != nil {
		return err
	}
	defer pb.Close()

	if err := pb.Open(""); err != nil {
		return fmt.Errorf("playback open: %w", err)
	}
	if err := pb.Start(cfg.ThreadConfig()); err != nil {
		return fmt.Errorf("playback start: %w", err)
	}
	updateTUI(ui.StatusMsg{
		Platform:   cfg.Platform,
		DeviceName: dev.Name,
		Format:     dev.Format.String(),
		Playback:   "running",
	})

	var capturer backend.Capturer
	if cfg.Capture {
		capturer, err = openCapture(factory, cfg)
		if err != nil {
			// Playback keeps going without a meter
			slog.Warn("capture unavailable", "err", err)
		} else {
			defer capturer.Close()
			updateTUI(ui.StatusMsg{Capture: "running", RingFrames: cfg.UpdateSize * cfg.NumUpdates})
		}
	}

	if volumeCtrl != nil {
		go handleVolumeControl(pb, tone, volumeCtrl)
	}

	done := make(chan struct{})
	defer close(done)
	go meterLoop(capturer, updateTUI, done)

	waitForShutdown(cfg.Duration, volumeCtrl)

	pb.Stop()
	slog.Info("portmix stopped")
	return nil
}

func openCapture(factory *backend.Factory, cfg *config.Config) (backend.Capturer, error) {
	dev := &backend.Device{Format: cfg.Format()}
	b, err := factory.CreateBackend(dev, backend.TypeCapture)
	if err != nil {
		return nil, err
	}
	capturer := b.(backend.Capturer)

	if err := capturer.Open(""); err != nil {
		return nil, fmt.Errorf("capture open: %w", err)
	}
	if err := capturer.Start(cfg.ThreadConfig()); err != nil {
		capturer.Close()
		return nil, fmt.Errorf("capture start: %w", err)
	}
	slog.Info("capture running", "device", dev.Name, "format", dev.Format)
	return capturer, nil
}

// handleVolumeControl applies TUI volume changes to the tone under the
// playback mix lock
func handleVolumeControl(pb backend.Backend, tone *mix.Tone, volumeCtrl *ui.VolumeControl) {
	for vol := range volumeCtrl.Changes {
		volume := float64(vol.Volume) / 100
		if vol.Muted {
			volume = 0
		}

		pb.Lock()
		tone.SetVolume(volume)
		pb.Unlock()

		slog.Debug("volume change", "volume", vol.Volume, "muted", vol.Muted)
	}
}

// meterLoop drains the capture ring and reports its peak level
func meterLoop(capturer backend.Capturer, updateTUI func(ui.StatusMsg), done <-chan struct{}) {
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	var buf []byte
	var captured int64
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
		}

		msg := ui.StatusMsg{Goroutines: runtime.NumGoroutine()}
		if capturer != nil {
			frames := capturer.AvailableSamples()
			if need := frames * 2; cap(buf) < need {
				buf = make([]byte, need)
			}
			buf = buf[:frames*2]

			if err := capturer.CaptureSamples(buf, frames); err != nil {
				slog.Warn("capture read error", "err", err)
				continue
			}
			captured += int64(frames)
			peak := audio.PeakInt16(buf)

			msg.Levels = &ui.Levels{Peak: peak, Available: frames, Captured: captured}
			slog.Debug("capture level", "frames", frames, "peak", peak)
		}
		updateTUI(msg)
	}
}

func waitForShutdown(duration time.Duration, volumeCtrl *ui.VolumeControl) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	var timeout <-chan time.Time
	if duration > 0 {
		timeout = time.After(duration)
	}

	var quit chan ui.QuitMsg
	if volumeCtrl != nil {
		quit = volumeCtrl.Quit
	}

	select {
	case <-sigChan:
		slog.Info("shutdown signal received")
	case <-timeout:
		slog.Info("run duration elapsed", "duration", duration)
	case <-quit:
		slog.Info("received quit signal from TUI")
	}
}
