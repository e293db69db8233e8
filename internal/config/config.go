// ABOUTME: Configuration loading for the portmix host
// ABOUTME: Merges defaults, an optional config file, env vars and flags via viper
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/Resonate-Protocol/portmix/pkg/audio"
	"github.com/Resonate-Protocol/portmix/pkg/backend"
)

// EnvPrefix prefixes environment overrides, e.g. PORTMIX_UPDATE_SIZE
const EnvPrefix = "PORTMIX"

// Platforms accepted by the platform key
var Platforms = []string{"malgo", "oto", "file", "null"}

// Config is the resolved host configuration
type Config struct {
	LogLevel string
	LogFile  string

	Platform   string
	Frequency  int
	Channels   audio.Channels
	UpdateSize int
	NumUpdates int
	Capture    bool

	ToneFrequency float64
	Volume        int

	Priority *int
	Affinity []int

	InputFile  string
	OutputFile string
	Loop       bool

	Duration time.Duration
	TUI      bool
}

func setViperDefaults(v *viper.Viper) {
	v.SetDefault("log-level", "info")
	v.SetDefault("log-file", "")
	v.SetDefault("platform", "malgo")
	v.SetDefault("frequency", 48000)
	v.SetDefault("channels", "stereo")
	v.SetDefault("update-size", 256)
	v.SetDefault("num-updates", 4)
	v.SetDefault("capture", false)
	v.SetDefault("tone", 440.0)
	v.SetDefault("volume", 50)
	v.SetDefault("affinity", []int{})
	v.SetDefault("input-file", "")
	v.SetDefault("output-file", "portmix.wav")
	v.SetDefault("loop", true)
	v.SetDefault("duration", time.Duration(0))
	v.SetDefault("tui", false)
}

// LoadConfig resolves the configuration. Precedence, highest first: flags
// that were set, PORTMIX_* environment variables, the config file, then
// defaults. A missing config file is not an error.
func LoadConfig(configFilePath string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	setViperDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return nil, fmt.Errorf("failed to bind flags: %w", err)
		}
	}

	if configFilePath != "" {
		v.SetConfigFile(configFilePath)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if errors.As(err, &notFound) || errors.Is(err, fs.ErrNotExist) {
				slog.Info("no config file found", "configFilePath", configFilePath)
			} else {
				return nil, fmt.Errorf("error during config read: %w", err)
			}
		}
	}

	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	channels, err := audio.ParseChannels(v.GetString("channels"))
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		LogLevel:      v.GetString("log-level"),
		LogFile:       v.GetString("log-file"),
		Platform:      strings.ToLower(v.GetString("platform")),
		Frequency:     v.GetInt("frequency"),
		Channels:      channels,
		UpdateSize:    v.GetInt("update-size"),
		NumUpdates:    v.GetInt("num-updates"),
		Capture:       v.GetBool("capture"),
		ToneFrequency: v.GetFloat64("tone"),
		Volume:        v.GetInt("volume"),
		Affinity:      v.GetIntSlice("affinity"),
		InputFile:     v.GetString("input-file"),
		OutputFile:    v.GetString("output-file"),
		Loop:          v.GetBool("loop"),
		Duration:      v.GetDuration("duration"),
		TUI:           v.GetBool("tui"),
	}
	if v.IsSet("priority") {
		priority := v.GetInt("priority")
		cfg.Priority = &priority
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	known := false
	for _, p := range Platforms {
		if c.Platform == p {
			known = true
			break
		}
	}
	if !known {
		return fmt.Errorf("unknown platform %q (want one of %s)", c.Platform, strings.Join(Platforms, ", "))
	}
	if c.Frequency <= 0 {
		return fmt.Errorf("frequency must be positive, got %d", c.Frequency)
	}
	if c.UpdateSize <= 0 {
		return fmt.Errorf("update-size must be positive, got %d", c.UpdateSize)
	}
	if c.NumUpdates <= 0 {
		return fmt.Errorf("num-updates must be positive, got %d", c.NumUpdates)
	}
	if c.Volume < 0 || c.Volume > 100 {
		return fmt.Errorf("volume must be 0-100, got %d", c.Volume)
	}
	if c.Priority != nil && (*c.Priority < -20 || *c.Priority > 19) {
		return fmt.Errorf("priority must be a nice value in [-20, 19], got %d", *c.Priority)
	}
	if c.Platform == "file" && c.Capture && c.InputFile == "" {
		return errors.New("file platform capture needs input-file")
	}
	return nil
}

// Format returns the device format requested by the configuration
func (c *Config) Format() audio.Format {
	return audio.Format{
		Channels:   c.Channels,
		Type:       audio.SampleShort,
		Frequency:  c.Frequency,
		UpdateSize: c.UpdateSize,
		NumUpdates: c.NumUpdates,
	}
}

// ThreadConfig returns the worker scheduling overrides
func (c *Config) ThreadConfig() backend.ThreadConfig {
	return backend.ThreadConfig{
		Priority: c.Priority,
		Affinity: c.Affinity,
	}
}
