// ABOUTME: Bubbletea model for the portmix TUI
// ABOUTME: Shows device format, engine state and capture levels
package ui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
)

// Model represents the TUI state
type Model struct {
	// Device
	platform   string
	deviceName string
	format     string

	// Engines
	playback string
	capture  string

	// Levels
	captureLevel int
	available    int
	ringFrames   int

	// Tone
	volume int
	muted  bool

	// Stats
	captured   int64
	goroutines int

	// Debug
	showDebug bool

	// Dimensions
	width  int
	height int

	volumeCtrl *VolumeControl
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	case StatusMsg:
		m.applyStatus(msg)
	}

	return m, nil
}

// View renders the TUI
func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	s := ""
	s += m.renderHeader()
	s += m.renderEngines()
	s += m.renderControls()

	if m.showDebug {
		s += m.renderDebug()
	}

	s += m.renderHelp()

	return s
}

func (m Model) renderHeader() string {
	device := m.deviceName
	if device == "" {
		device = "(not open)"
	}

	return fmt.Sprintf(`┌─ portmix ────────────────────────────────────────────┐
│ Device:   %-42s │
│ Platform: %-42s │
│ Format:   %-42s │
├──────────────────────────────────────────────────────┤
`, truncate(device, 42), truncate(m.platform, 42), truncate(m.format, 42))
}

func (m Model) renderEngines() string {
	s := fmt.Sprintf("│ Playback: %-42s │\n", m.playback)
	s += fmt.Sprintf("│ Capture:  %-42s │\n", m.capture)

	if m.capture != "off" {
		level := m.captureLevel * 100 / 32767
		s += fmt.Sprintf("│ Input:    [%s] %3d%%%-25s │\n", renderBar(level, 100, 10), level, "")
		s += fmt.Sprintf("│ Ring:     %d/%d frames%-*s │\n",
			m.available, m.ringFrames, max(0, 35-digits(m.available)-digits(m.ringFrames)), "")
	}
	return s
}

func (m Model) renderControls() string {
	muteIcon := ""
	if m.muted {
		muteIcon = " (muted)"
	}

	return fmt.Sprintf("│                                                      │\n"+
		"│ Volume:   [%s] %3d%%%-25s │\n",
		renderBar(m.volume, 100, 10), m.volume, muteIcon)
}

func (m Model) renderHelp() string {
	return `│ ↑/↓:Volume  m:Mute  d:Debug  q:Quit                  │
└──────────────────────────────────────────────────────┘
`
}

func (m Model) renderDebug() string {
	return fmt.Sprintf(`├──────────────────────────────────────────────────────┤
│ DEBUG:                                               │
│   Goroutines: %-38d │
│   Captured:   %-38d │
`, m.goroutines, m.captured)
}

// handleKey handles keyboard input
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		if m.volumeCtrl != nil {
			select {
			case m.volumeCtrl.Quit <- QuitMsg{}:
			default:
			}
		}
		return m, tea.Quit
	case "up":
		m.volume = min(100, m.volume+5)
		m.sendVolume()
	case "down":
		m.volume = max(0, m.volume-5)
		m.sendVolume()
	case "m":
		m.muted = !m.muted
		m.sendVolume()
	case "d":
		m.showDebug = !m.showDebug
	}

	return m, nil
}

func (m Model) sendVolume() {
	if m.volumeCtrl == nil {
		return
	}
	select {
	case m.volumeCtrl.Changes <- VolumeChangeMsg{Volume: m.volume, Muted: m.muted}:
	default:
	}
}

// applyStatus updates model from status message
func (m *Model) applyStatus(msg StatusMsg) {
	if msg.Platform != "" {
		m.platform = msg.Platform
	}
	if msg.DeviceName != "" {
		m.deviceName = msg.DeviceName
	}
	if msg.Format != "" {
		m.format = msg.Format
	}
	if msg.Playback != "" {
		m.playback = msg.Playback
	}
	if msg.Capture != "" {
		m.capture = msg.Capture
	}
	if msg.RingFrames != 0 {
		m.ringFrames = msg.RingFrames
	}
	if msg.Levels != nil {
		m.captureLevel = msg.Levels.Peak
		m.available = msg.Levels.Available
		m.captured = msg.Levels.Captured
	}
	if msg.Goroutines != 0 {
		m.goroutines = msg.Goroutines
	}
}

// Levels is a capture meter reading
type Levels struct {
	Peak      int
	Available int
	Captured  int64
}

// StatusMsg updates TUI state; zero fields are left unchanged
type StatusMsg struct {
	Platform   string
	DeviceName string
	Format     string
	Playback   string
	Capture    string
	RingFrames int
	Levels     *Levels
	Goroutines int
}

// Utility functions
func renderBar(value, max, width int) string {
	filled := (value * width) / max
	bar := ""
	for i := 0; i < width; i++ {
		if i < filled {
			bar += "█"
		} else {
			bar += "░"
		}
	}
	return bar
}

func truncate(s string, length int) string {
	if len(s) <= length {
		return s
	}
	return s[:length-3] + "..."
}

func digits(n int) int {
	return len(fmt.Sprint(n))
}
