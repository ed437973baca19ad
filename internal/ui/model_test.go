// ABOUTME: Tests for TUI model and state management
// ABOUTME: Tests status updates, stop keys and menu navigation
package ui

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/binaural-go/binaural/pkg/audio"
	"github.com/binaural-go/binaural/pkg/binaural"
	"github.com/binaural-go/binaural/pkg/preset"
	tea "github.com/charmbracelet/bubbletea"
)

var alphaParams = binaural.Params{CarrierHz: 300, BeatHz: 10, DurationMinutes: 30}

func runeKey(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func TestNewModel(t *testing.T) {
	model := NewModel(nil, "Alpha", alphaParams)

	if model.state != "idle" {
		t.Errorf("expected initial state idle, got %s", model.state)
	}
	if model.stopping {
		t.Error("expected stopping to be false initially")
	}
	if model.showDebug {
		t.Error("expected showDebug to be false initially")
	}
}

func TestStatusMsgUpdatesModel(t *testing.T) {
	model := NewModel(nil, "Alpha", alphaParams)

	model.applyStatus(StatusMsg{Status: binaural.Status{
		State:     "playing",
		Device:    audio.DeviceConfig{SampleRate: 48000, Channels: 2},
		Elapsed:   90 * time.Second,
		Remaining: 28*time.Minute + 30*time.Second,
		Engine:    binaural.EngineStats{Frames: 4320000, Buffers: 8437},
	}})

	if model.state != "playing" {
		t.Errorf("expected state playing, got %s", model.state)
	}
	if model.elapsed != 90*time.Second {
		t.Errorf("expected elapsed 90s, got %v", model.elapsed)
	}
	if model.frames != 4320000 {
		t.Errorf("expected 4320000 frames, got %d", model.frames)
	}
	if !strings.Contains(model.device, "Stereo") {
		t.Errorf("expected device description, got %q", model.device)
	}
}

func TestStatusMsgError(t *testing.T) {
	model := NewModel(nil, "Alpha", alphaParams)

	model.applyStatus(StatusMsg{Err: &binaural.DeviceError{Op: "playback", Err: binaural.ErrDeviceRuntime}})

	if !strings.HasPrefix(model.lastErr, "Audio device problem") {
		t.Errorf("expected device problem message, got %q", model.lastErr)
	}
}

func TestFinalStatusQuits(t *testing.T) {
	model := NewModel(nil, "Alpha", alphaParams)

	updated, cmd := model.Update(StatusMsg{Status: binaural.Status{State: "done", Reason: binaural.StopTimeout}, Final: true})
	m := updated.(Model)

	if !m.quitting {
		t.Error("expected quitting after final status")
	}
	if cmd == nil {
		t.Error("expected quit command")
	}
	if !strings.Contains(m.View(), "Playback finished.") {
		t.Error("expected finished message in view")
	}
}

func TestNewControlsUsesGivenSource(t *testing.T) {
	stop := binaural.NewChanSource(1)
	if got := NewControls(stop); got.Stop != stop {
		t.Error("expected controls to send to the given source")
	}
	if NewControls(nil).Stop == nil {
		t.Error("expected a private source for nil")
	}
}

func TestEnterSendsStopOnce(t *testing.T) {
	controls := NewControls(nil)
	model := NewModel(controls, "Alpha", alphaParams)

	updated, _ := model.Update(tea.KeyMsg{Type: tea.KeyEnter})
	updated, _ = updated.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m := updated.(Model)

	if !m.stopping {
		t.Error("expected stopping after enter")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	ev, err := controls.Stop.Next(ctx)
	if err != nil {
		t.Fatalf("expected a stop event, got %v", err)
	}
	if ev.Key != "enter" || ev.Source != "tui" {
		t.Errorf("unexpected event %+v", ev)
	}

	if _, err := controls.Stop.Next(ctx); err == nil {
		t.Error("expected only one stop event")
	}

	if !strings.Contains(m.View(), "Playback cancelled by user.") {
		t.Error("expected cancel message in view")
	}
}

func TestDebugToggle(t *testing.T) {
	model := NewModel(nil, "Alpha", alphaParams)

	updated, _ := model.Update(runeKey('d'))
	m := updated.(Model)
	if !m.showDebug {
		t.Error("expected debug on")
	}
	if !strings.Contains(m.View(), "DEBUG") {
		t.Error("expected debug section in view")
	}
}

func TestViewShowsSettings(t *testing.T) {
	view := NewModel(nil, "Alpha", alphaParams).View()

	for _, want := range []string{"295.00 Hz", "305.00 Hz", "30 min", "Press Enter to stop playback."} {
		if !strings.Contains(view, want) {
			t.Errorf("expected view to contain %q", want)
		}
	}
}

func TestRenderBar(t *testing.T) {
	tests := []struct {
		value, max, width int
		filled            int
	}{
		{0, 100, 10, 0},
		{50, 100, 10, 5},
		{100, 100, 10, 10},
		{150, 100, 10, 10},
		{5, 0, 4, 4},
	}

	for _, tt := range tests {
		bar := renderBar(tt.value, tt.max, tt.width)
		if got := strings.Count(bar, "█"); got != tt.filled {
			t.Errorf("renderBar(%d, %d, %d): expected %d filled, got %d", tt.value, tt.max, tt.width, tt.filled, got)
		}
		if got := strings.Count(bar, "█") + strings.Count(bar, "░"); got != tt.width {
			t.Errorf("expected bar width %d, got %d", tt.width, got)
		}
	}
}

func TestFormatClock(t *testing.T) {
	if got := formatClock(90 * time.Second); got != "01:30" {
		t.Errorf("expected 01:30, got %s", got)
	}
	if got := formatClock(-time.Second); got != "00:00" {
		t.Errorf("expected 00:00, got %s", got)
	}
}

func TestSettingsSummary(t *testing.T) {
	s := Settings(alphaParams)
	if !strings.Contains(s, "Left Ear Frequency: 295.00 Hz") {
		t.Errorf("missing left ear line in %q", s)
	}
	if !strings.Contains(s, "Duration: 30 minutes") {
		t.Errorf("missing duration line in %q", s)
	}
}

func builtinDefinitions() []preset.Definition {
	var defs []preset.Definition
	for _, p := range preset.All() {
		defs = append(defs, p.Definition())
	}
	return defs
}

func TestPickerDurationStartsAtPresetDefault(t *testing.T) {
	m := tea.Model(NewPickerModel(builtinDefinitions()))

	// Focus -> High Focus -> Relaxation (15 min default)
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})

	pm := m.(PickerModel)
	if pm.phase != phaseDuration {
		t.Fatalf("expected duration phase, got %d", pm.phase)
	}
	if got := pm.durations[pm.durationCursor].Minutes(); got != 15 {
		t.Errorf("expected cursor on 15 min, got %d", got)
	}

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})
	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Error("expected quit after choosing duration")
	}

	sel := m.(PickerModel).Selection()
	if sel.Cancelled {
		t.Error("selection should not be cancelled")
	}
	if sel.Definition.Name != "Relaxation" {
		t.Errorf("expected Relaxation, got %s", sel.Definition.Name)
	}
	if sel.Duration.Minutes() != 20 {
		t.Errorf("expected 20 min, got %d", sel.Duration.Minutes())
	}
}

func TestPickerCustomDurationOfferedFirst(t *testing.T) {
	defs := []preset.Definition{preset.Custom("Schumann", "", 200, 7.83, 45)}
	m := tea.Model(NewPickerModel(defs))

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	pm := m.(PickerModel)

	if pm.durationCursor != 0 || pm.durations[0].Minutes() != 45 {
		t.Errorf("expected 45 min first and selected, got cursor %d on %s", pm.durationCursor, pm.durations[pm.durationCursor])
	}
	if len(pm.durations) != len(preset.Durations())+1 {
		t.Errorf("expected %d choices, got %d", len(preset.Durations())+1, len(pm.durations))
	}
}

func TestPickerCursorClamped(t *testing.T) {
	m := tea.Model(NewPickerModel(builtinDefinitions()))

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyUp})
	if c := m.(PickerModel).presetCursor; c != 0 {
		t.Errorf("expected cursor 0, got %d", c)
	}

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnd})
	if c := m.(PickerModel).presetCursor; c != 31 {
		t.Errorf("expected cursor 31, got %d", c)
	}
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})
	if c := m.(PickerModel).presetCursor; c != 31 {
		t.Errorf("expected cursor to stay at 31, got %d", c)
	}
}

func TestPickerEscBacksOutThenCancels(t *testing.T) {
	m := tea.Model(NewPickerModel(builtinDefinitions()))

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if m.(PickerModel).phase != phasePreset {
		t.Fatal("expected esc to return to preset menu")
	}

	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if cmd == nil || !m.(PickerModel).Selection().Cancelled {
		t.Error("expected esc on preset menu to cancel")
	}
}

func TestPickerWindowKeepsCursorVisible(t *testing.T) {
	m := NewPickerModel(builtinDefinitions())
	m.height = 20

	start, end := m.window(32, 31)
	if end != 32 || start != 22 {
		t.Errorf("expected window 22-32, got %d-%d", start, end)
	}
	start, end = m.window(32, 0)
	if start != 0 || end != 10 {
		t.Errorf("expected window 0-10, got %d-%d", start, end)
	}
}
