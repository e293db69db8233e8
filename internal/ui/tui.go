// ABOUTME: TUI initialization and control
// ABOUTME: Wraps the bubbletea program for the portmix host
package ui

import (
	tea "github.com/charmbracelet/bubbletea"
)

// VolumeChangeMsg carries a tone volume change out of the TUI
type VolumeChangeMsg struct {
	Volume int
	Muted  bool
}

// QuitMsg is sent when the user quits the TUI
type QuitMsg struct{}

// VolumeControl holds channels for volume control communication
type VolumeControl struct {
	Changes chan VolumeChangeMsg
	Quit    chan QuitMsg
}

// NewVolumeControl creates a new volume control handler
func NewVolumeControl() *VolumeControl {
	return &VolumeControl{
		Changes: make(chan VolumeChangeMsg, 10),
		Quit:    make(chan QuitMsg, 1),
	}
}

// NewModel creates a new TUI model
func NewModel(volCtrl *VolumeControl, volume int) Model {
	return Model{
		volume:     volume,
		playback:   "stopped",
		capture:    "off",
		volumeCtrl: volCtrl,
	}
}

// Run creates the TUI program; the caller runs it
func Run(volCtrl *VolumeControl, volume int) *tea.Program {
	return tea.NewProgram(NewModel(volCtrl, volume), tea.WithAltScreen())
}
