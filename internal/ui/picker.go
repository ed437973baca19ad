// ABOUTME: Bubbletea menus for choosing a preset and a session duration
// ABOUTME: The duration menu opens on the chosen preset's default length
package ui

import (
	"fmt"
	"strings"

	"github.com/binaural-go/binaural/pkg/preset"
	tea "github.com/charmbracelet/bubbletea"
)

type pickerPhase int

const (
	phasePreset pickerPhase = iota
	phaseDuration
	phaseDone
)

// Selection is the outcome of the preset and duration menus
type Selection struct {
	Definition preset.Definition
	Duration   preset.DurationSpec
	Cancelled  bool
}

// PickerModel is the bubbletea model behind the two menus
type PickerModel struct {
	presets   []preset.Definition
	durations []preset.DurationSpec

	phase          pickerPhase
	presetCursor   int
	durationCursor int
	selection      Selection

	height int
}

// NewPickerModel creates the menu model over the given presets
func NewPickerModel(presets []preset.Definition) PickerModel {
	return PickerModel{presets: presets}
}

// Init implements tea.Model
func (m PickerModel) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model
func (m PickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.height = msg.Height
	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m PickerModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		m.selection.Cancelled = true
		m.phase = phaseDone
		return m, tea.Quit
	case "esc":
		if m.phase == phaseDuration {
			m.phase = phasePreset
			return m, nil
		}
		m.selection.Cancelled = true
		m.phase = phaseDone
		return m, tea.Quit
	case "up", "k":
		m.move(-1)
	case "down", "j":
		m.move(1)
	case "home":
		m.setCursor(0)
	case "end":
		m.setCursor(m.items() - 1)
	case "enter":
		return m.choose()
	}
	return m, nil
}

func (m *PickerModel) items() int {
	if m.phase == phaseDuration {
		return len(m.durations)
	}
	return len(m.presets)
}

func (m *PickerModel) cursor() int {
	if m.phase == phaseDuration {
		return m.durationCursor
	}
	return m.presetCursor
}

func (m *PickerModel) setCursor(c int) {
	if c < 0 {
		c = 0
	}
	if n := m.items(); c >= n {
		c = n - 1
	}
	if m.phase == phaseDuration {
		m.durationCursor = c
	} else {
		m.presetCursor = c
	}
}

func (m *PickerModel) move(delta int) {
	m.setCursor(m.cursor() + delta)
}

func (m PickerModel) choose() (tea.Model, tea.Cmd) {
	switch m.phase {
	case phasePreset:
		if len(m.presets) == 0 {
			return m, nil
		}
		def := m.presets[m.presetCursor]
		m.selection.Definition = def
		m.durations, m.durationCursor = durationChoices(def.Duration)
		m.phase = phaseDuration
		return m, nil
	case phaseDuration:
		m.selection.Duration = m.durations[m.durationCursor]
		m.phase = phaseDone
		return m, tea.Quit
	}
	return m, nil
}

// durationChoices lists the duration buckets with the cursor on def. A
// preset length that is not a bucket is offered first.
func durationChoices(def preset.DurationSpec) ([]preset.DurationSpec, int) {
	buckets := preset.Durations()
	choices := make([]preset.DurationSpec, 0, len(buckets)+1)

	idx := preset.DurationIndex(def.Minutes())
	if idx < 0 {
		choices = append(choices, def)
		idx = 0
	}
	for _, d := range buckets {
		choices = append(choices, d)
	}
	return choices, idx
}

// Selection returns the menu outcome once the program has exited
func (m PickerModel) Selection() Selection {
	return m.selection
}

// View implements tea.Model
func (m PickerModel) View() string {
	if m.phase == phaseDone {
		return ""
	}

	var b strings.Builder
	b.WriteString(Banner(BannerTitle, BannerAuthor))
	b.WriteString("\n")

	if m.phase == phasePreset {
		b.WriteString(headerStyle.Render("Choose a preset:"))
		b.WriteString("\n")
		start, end := m.window(len(m.presets), m.presetCursor)
		for i := start; i < end; i++ {
			d := m.presets[i]
			line := fmt.Sprintf("%-34s %s", d.Name, faintStyle.Render(truncate(d.Description, 60)))
			b.WriteString(renderItem(line, i == m.presetCursor))
		}
	} else {
		b.WriteString(headerStyle.Render(fmt.Sprintf("Choose a duration for %s:", m.selection.Definition.Name)))
		b.WriteString("\n")
		for i, d := range m.durations {
			b.WriteString(renderItem(d.String(), i == m.durationCursor))
		}
	}

	b.WriteString("\n")
	b.WriteString(faintStyle.Render("↑/↓:Move  Enter:Select  Esc:Back  q:Quit"))
	b.WriteString("\n")
	return b.String()
}

// window returns the visible slice of a list that keeps the cursor on screen
func (m PickerModel) window(total, cursor int) (int, int) {
	visible := total
	if m.height > 0 {
		// banner, header, help and margins
		if avail := m.height - 10; avail > 0 && avail < total {
			visible = avail
		}
	}
	start := cursor - visible/2
	if start < 0 {
		start = 0
	}
	if start+visible > total {
		start = total - visible
	}
	return start, start + visible
}

func renderItem(label string, selected bool) string {
	if selected {
		return selectedStyle.Render("> "+label) + "\n"
	}
	return "  " + valueStyle.Render(label) + "\n"
}
