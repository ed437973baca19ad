// ABOUTME: Bubbletea model for the playback session screen
// ABOUTME: Shows settings, progress and device status; keys raise the stop signal
package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/binaural-go/binaural/pkg/audio"
	"github.com/binaural-go/binaural/pkg/binaural"
	tea "github.com/charmbracelet/bubbletea"
)

// Model represents the session screen state
type Model struct {
	controls *Controls
	name     string
	params   binaural.Params

	// Session
	state     string
	reason    binaural.StopReason
	device    string
	deviceCfg audio.DeviceConfig
	elapsed   time.Duration
	remaining time.Duration

	// Stats
	frames   uint64
	buffers  uint64
	silenced uint64

	// Errors
	lastErr string

	stopping  bool
	showDebug bool
	quitting  bool

	// Dimensions
	width  int
	height int
}

// StatusMsg updates the session screen
type StatusMsg struct {
	Status binaural.Status
	// Err is a device or session error to display
	Err error
	// Final marks the last update; the program exits after rendering it
	Final bool
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
		if msg.Final {
			m.quitting = true
			return m, tea.Quit
		}
	}

	return m, nil
}

// handleKey handles keyboard input
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	switch key {
	case "enter", "q", "ctrl+c", "esc":
		if !m.stopping && m.controls != nil {
			m.controls.Stop.Send(binaural.Event{Key: key, Source: "tui"})
		}
		m.stopping = true
	case "d":
		m.showDebug = !m.showDebug
	}
	return m, nil
}

// applyStatus updates model from status message
func (m *Model) applyStatus(msg StatusMsg) {
	st := msg.Status
	if st.State != "" {
		m.state = st.State
	}
	if st.Reason != binaural.StopNone {
		m.reason = st.Reason
	}
	if st.Device.Valid() {
		m.device = st.Device.String()
		m.deviceCfg = st.Device
	}
	m.elapsed = st.Elapsed
	m.remaining = st.Remaining
	if st.Engine.Buffers != 0 {
		m.frames = st.Engine.Frames
		m.buffers = st.Engine.Buffers
		m.silenced = st.Engine.Silenced
	}
	if st.Cancelled {
		m.stopping = true
	}
	if msg.Err != nil {
		m.lastErr = binaural.Describe(msg.Err)
	}
}

// View renders the session screen
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(Banner(BannerTitle, BannerAuthor))
	b.WriteString("\n")
	b.WriteString(titleStyle.Render(m.name))
	b.WriteString("\n\n")
	b.WriteString(m.renderSettings())
	b.WriteString("\n")
	b.WriteString(m.renderProgress())

	if m.lastErr != "" {
		b.WriteString("\n")
		b.WriteString(errorStyle.Render(m.lastErr))
		b.WriteString("\n")
	}

	if m.showDebug {
		b.WriteString(m.renderDebug())
	}

	b.WriteString("\n")
	b.WriteString(m.renderHelp())
	return b.String()
}

func (m Model) renderSettings() string {
	p := m.params
	rows := [][2]string{
		{"Carrier:", fmt.Sprintf("%.2f Hz", p.CarrierHz)},
		{"Beat:", fmt.Sprintf("%.2f Hz", p.BeatHz)},
		{"Left ear:", fmt.Sprintf("%.2f Hz", p.LeftHz())},
		{"Right ear:", fmt.Sprintf("%.2f Hz", p.RightHz())},
		{"Duration:", fmt.Sprintf("%d min", p.DurationMinutes)},
	}
	if m.device != "" {
		rows = append(rows, [2]string{"Device:", m.device})
	}

	var b strings.Builder
	for _, r := range rows {
		b.WriteString(headerStyle.Render(fmt.Sprintf("%-11s", r[0])))
		b.WriteString(valueStyle.Render(r[1]))
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) renderProgress() string {
	total := m.params.Duration()
	barWidth := 40
	if m.width > 0 && m.width-20 < barWidth {
		barWidth = max(10, m.width-20)
	}

	bar := renderBar(int(m.elapsed/time.Second), int(total/time.Second), barWidth)
	status := m.state
	if status == "" {
		status = binaural.StateIdle.String()
	}
	if m.reason != binaural.StopNone {
		status = fmt.Sprintf("%s (%s)", status, m.reason)
	}

	return fmt.Sprintf("%s %s\n[%s] %s / %s  remaining %s\n",
		headerStyle.Render("State:"), valueStyle.Render(status),
		bar, formatClock(m.elapsed), formatClock(total), formatClock(m.remaining))
}

func (m Model) renderDebug() string {
	return fmt.Sprintf("\n%s\n  Frames: %d (%s)  Buffers: %d  Silenced: %d\n",
		headerStyle.Render("DEBUG:"), m.frames, formatClock(m.deviceCfg.FrameDuration(m.frames)), m.buffers, m.silenced)
}

func (m Model) renderHelp() string {
	if m.quitting {
		return faintStyle.Render("Playback finished.")
	}
	if m.stopping {
		return faintStyle.Render("Playback cancelled by user. Stopping...")
	}
	return faintStyle.Render("Press Enter to stop playback.  d:Debug")
}

// formatClock renders a duration as mm:ss
func formatClock(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	secs := int(d.Round(time.Second) / time.Second)
	return fmt.Sprintf("%02d:%02d", secs/60, secs%60)
}
