// ABOUTME: TUI initialization and control
// ABOUTME: Wraps bubbletea programs for the menus and the session screen
package ui

import (
	"fmt"

	"github.com/binaural-go/binaural/internal/version"
	"github.com/binaural-go/binaural/pkg/binaural"
	"github.com/binaural-go/binaural/pkg/preset"
	tea "github.com/charmbracelet/bubbletea"
)

// BannerTitle and BannerAuthor are shown at the top of every screen
var (
	BannerTitle  = "Binaural Beat Generator"
	BannerAuthor = "By " + version.Manufacturer
)

// Controls connects the session screen to the playback side
type Controls struct {
	// Stop receives an event when the user asks to stop playback
	Stop *binaural.ChanSource
}

// NewControls connects the session screen to stop. A nil stop gets a
// private source.
func NewControls(stop *binaural.ChanSource) *Controls {
	if stop == nil {
		stop = binaural.NewChanSource(4)
	}
	return &Controls{Stop: stop}
}

// NewModel creates the session screen model
func NewModel(controls *Controls, name string, params binaural.Params) Model {
	return Model{
		controls: controls,
		name:     name,
		params:   params,
		state:    binaural.StateIdle.String(),
	}
}

// Pick runs the preset and duration menus and returns the choice
func Pick(presets []preset.Definition, opts ...tea.ProgramOption) (Selection, error) {
	final, err := tea.NewProgram(NewPickerModel(presets), opts...).Run()
	if err != nil {
		return Selection{}, fmt.Errorf("preset menu: %w", err)
	}
	m, ok := final.(PickerModel)
	if !ok {
		return Selection{}, fmt.Errorf("preset menu: unexpected model %T", final)
	}
	return m.Selection(), nil
}

// Run creates the session screen program. The caller runs it and feeds it
// StatusMsg updates with Send. The alternate screen is used unless opts
// replace the defaults.
func Run(controls *Controls, name string, params binaural.Params, opts ...tea.ProgramOption) (*tea.Program, error) {
	if controls == nil {
		return nil, fmt.Errorf("session screen: no controls")
	}
	if len(opts) == 0 {
		opts = []tea.ProgramOption{tea.WithAltScreen()}
	}
	return tea.NewProgram(NewModel(controls, name, params), opts...), nil
}
