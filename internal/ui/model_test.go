// ABOUTME: Tests for TUI model and state management
// ABOUTME: Tests status updates, key handling and rendering helpers
package ui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func TestNewModel(t *testing.T) {
	model := NewModel(nil, 50) // VolumeControl is optional for testing

	if model.volume != 50 {
		t.Errorf("expected volume 50, got %d", model.volume)
	}

	if model.playback != "stopped" {
		t.Errorf("expected playback 'stopped', got '%s'", model.playback)
	}

	if model.capture != "off" {
		t.Errorf("expected capture 'off', got '%s'", model.capture)
	}

	if model.muted {
		t.Error("expected muted to be false initially")
	}
}

func TestStatusMsgDevice(t *testing.T) {
	model := NewModel(nil, 50)

	model.applyStatus(StatusMsg{
		Platform:   "malgo",
		DeviceName: "Default Speakers/Headphones",
		Format:     "48000Hz stereo s16 update=256",
	})

	if model.platform != "malgo" {
		t.Errorf("expected platform 'malgo', got '%s'", model.platform)
	}

	if model.deviceName != "Default Speakers/Headphones" {
		t.Errorf("unexpected deviceName '%s'", model.deviceName)
	}

	if model.format != "48000Hz stereo s16 update=256" {
		t.Errorf("unexpected format '%s'", model.format)
	}
}

func TestStatusMsgLevels(t *testing.T) {
	model := NewModel(nil, 50)

	model.applyStatus(StatusMsg{
		Capture:    "running",
		RingFrames: 1024,
		Levels:     &Levels{Peak: 16384, Available: 256, Captured: 4096},
	})

	if model.captureLevel != 16384 {
		t.Errorf("expected captureLevel 16384, got %d", model.captureLevel)
	}

	if model.available != 256 {
		t.Errorf("expected available 256, got %d", model.available)
	}

	if model.captured != 4096 {
		t.Errorf("expected captured 4096, got %d", model.captured)
	}

	// A silent reading is a real reading
	model.applyStatus(StatusMsg{Levels: &Levels{}})

	if model.captureLevel != 0 {
		t.Error("levels should be updated to zero")
	}

	if model.ringFrames != 1024 {
		t.Error("ringFrames should be retained")
	}
}

func TestMultipleStatusUpdates(t *testing.T) {
	model := NewModel(nil, 50)

	model.applyStatus(StatusMsg{Playback: "running", DeviceName: "Speakers"})
	model.applyStatus(StatusMsg{Capture: "running"})

	// Previous values should be retained
	if model.playback != "running" {
		t.Error("previous playback state was lost")
	}

	if model.deviceName != "Speakers" {
		t.Error("previous device name was lost")
	}

	if model.capture != "running" {
		t.Error("new capture state not applied")
	}
}

func TestVolumeKeys(t *testing.T) {
	ctrl := NewVolumeControl()
	var model tea.Model = NewModel(ctrl, 50)

	model, _ = model.Update(tea.KeyMsg{Type: tea.KeyUp})
	change := <-ctrl.Changes
	if change.Volume != 55 || change.Muted {
		t.Errorf("unexpected change after up: %+v", change)
	}

	model, _ = model.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("m")})
	change = <-ctrl.Changes
	if !change.Muted {
		t.Error("expected mute after 'm'")
	}

	for i := 0; i < 30; i++ {
		model, _ = model.Update(tea.KeyMsg{Type: tea.KeyDown})
	}
	if got := model.(Model).volume; got != 0 {
		t.Errorf("expected volume clamped to 0, got %d", got)
	}
}

func TestQuitKey(t *testing.T) {
	ctrl := NewVolumeControl()
	model := NewModel(ctrl, 50)

	_, cmd := model.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if cmd == nil {
		t.Fatal("expected quit command")
	}

	select {
	case <-ctrl.Quit:
	default:
		t.Error("expected quit signal on VolumeControl")
	}
}

func TestView(t *testing.T) {
	model := NewModel(nil, 50)

	if model.View() != "Loading..." {
		t.Error("expected loading view before window size is known")
	}

	updated, _ := model.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	model = updated.(Model)
	model.applyStatus(StatusMsg{Capture: "running", RingFrames: 1024, Levels: &Levels{Peak: 32767}})

	view := model.View()
	for _, want := range []string{"portmix", "(not open)", "Input:", "100%", "q:Quit"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestTruncateFunction(t *testing.T) {
	tests := []struct {
		input    string
		maxLen   int
		expected string
	}{
		{"short", 10, "short"},
		{"exactly ten c", 14, "exactly ten c"},
		{"this is longer than allowed", 10, "this is..."},
		{"", 10, ""},
		{"abcd", 4, "abcd"},
		{"abcde", 4, "a..."},
	}

	for _, tt := range tests {
		result := truncate(tt.input, tt.maxLen)
		if result != tt.expected {
			t.Errorf("truncate(%q, %d) = %q, expected %q",
				tt.input, tt.maxLen, result, tt.expected)
		}
	}
}

func TestRenderBar(t *testing.T) {
	if got := renderBar(50, 100, 10); got != "█████░░░░░" {
		t.Errorf("renderBar(50) = %q", got)
	}
	if got := renderBar(0, 100, 4); got != "░░░░" {
		t.Errorf("renderBar(0) = %q", got)
	}
}
