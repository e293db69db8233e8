// ABOUTME: Tests for host configuration loading
// ABOUTME: Covers defaults, file, environment and flag precedence
package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Resonate-Protocol/portmix/pkg/audio"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig("", nil)
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "malgo", cfg.Platform)
	assert.Equal(t, 48000, cfg.Frequency)
	assert.Equal(t, audio.ChannelsStereo, cfg.Channels)
	assert.Equal(t, 256, cfg.UpdateSize)
	assert.Equal(t, 4, cfg.NumUpdates)
	assert.False(t, cfg.Capture)
	assert.Nil(t, cfg.Priority)
	assert.Empty(t, cfg.Affinity)
	assert.Equal(t, time.Duration(0), cfg.Duration)

	tc := cfg.ThreadConfig()
	assert.Nil(t, tc.Priority)
	assert.Empty(t, tc.Affinity)
}

func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"), nil)
	require.NoError(t, err)
	assert.Equal(t, "malgo", cfg.Platform)
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "portmix.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
platform: "null"
channels: "5.1"
update-size: 100
num-updates: 8
capture: true
priority: 5
affinity: [0, 1]
duration: 2s
`), 0o644))

	cfg, err := LoadConfig(path, nil)
	require.NoError(t, err)

	assert.Equal(t, "null", cfg.Platform)
	assert.Equal(t, audio.ChannelsX51, cfg.Channels)
	assert.Equal(t, 100, cfg.UpdateSize)
	assert.Equal(t, 8, cfg.NumUpdates)
	assert.True(t, cfg.Capture)
	require.NotNil(t, cfg.Priority)
	assert.Equal(t, 5, *cfg.Priority)
	assert.Equal(t, []int{0, 1}, cfg.Affinity)
	assert.Equal(t, 2*time.Second, cfg.Duration)

	format := cfg.Format()
	assert.Equal(t, 100, format.UpdateSize)
	assert.Equal(t, audio.SampleShort, format.Type)
}

func TestLoadConfigMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("platform: [unclosed"), 0o644))

	_, err := LoadConfig(path, nil)
	assert.Error(t, err)
}

func TestLoadConfigPrecedence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "portmix.yaml")
	require.NoError(t, os.WriteFile(path, []byte("frequency: 44100\nupdate-size: 512\nvolume: 10\n"), 0o644))

	t.Setenv("PORTMIX_UPDATE_SIZE", "1024")
	t.Setenv("PORTMIX_VOLUME", "20")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.Int("volume", 50, "")
	flags.Int("frequency", 48000, "")
	require.NoError(t, flags.Parse([]string{"--volume=80"}))

	cfg, err := LoadConfig(path, flags)
	require.NoError(t, err)

	assert.Equal(t, 80, cfg.Volume, "set flag wins")
	assert.Equal(t, 1024, cfg.UpdateSize, "env beats file")
	assert.Equal(t, 44100, cfg.Frequency, "file beats unset flag default")
}

func TestLoadConfigValidation(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"unknown platform", map[string]string{"PORTMIX_PLATFORM": "alsa"}},
		{"bad channels", map[string]string{"PORTMIX_CHANNELS": "9.2"}},
		{"zero update size", map[string]string{"PORTMIX_UPDATE_SIZE": "0"}},
		{"zero num updates", map[string]string{"PORTMIX_NUM_UPDATES": "0"}},
		{"volume out of range", map[string]string{"PORTMIX_VOLUME": "101"}},
		{"priority out of range", map[string]string{"PORTMIX_PRIORITY": "40"}},
		{"file capture without input", map[string]string{"PORTMIX_PLATFORM": "file", "PORTMIX_CAPTURE": "true"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := LoadConfig("", nil)
			assert.Error(t, err)
		})
	}
}
