// ABOUTME: Platform selection for the portmix host
// ABOUTME: Builds the configured port platform and its cleanup
package main

import (
	"fmt"
	"log/slog"

	"github.com/Resonate-Protocol/portmix/internal/config"
	"github.com/Resonate-Protocol/portmix/pkg/audio/port"
)

// newPlatform returns the configured platform and a function releasing it
func newPlatform(cfg *config.Config) (port.Platform, func(), error) {
	switch cfg.Platform {
	case "malgo":
		p := port.NewMalgo()
		return p, closer(p.Close), nil
	case "oto":
		p := port.NewOto()
		return p, closer(p.Close), nil
	case "file":
		p := port.NewFile(port.FileConfig{
			OutputPath: cfg.OutputFile,
			InputPath:  cfg.InputFile,
			Realtime:   true,
			Loop:       cfg.Loop,
		})
		return p, func() {}, nil
	case "null":
		return port.NewNull(), func() {}, nil
	}
	return nil, nil, fmt.Errorf("unknown platform %q", cfg.Platform)
}

func closer(closeFn func() error) func() {
	return func() {
		if err := closeFn(); err != nil {
			slog.Warn("platform close error", "err", err)
		}
	}
}
