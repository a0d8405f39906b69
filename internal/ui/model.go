// ABOUTME: Bubbletea model for the spatial player TUI
// ABOUTME: Defines application state, key handling and rendering
package ui

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const (
	radarWidth  = 29
	radarHeight = 13
	radarRange  = 2.5 // world units from centre to edge
)

// Model represents the TUI state
type Model struct {
	control *Control

	// Source
	fileName   string
	sampleRate int
	channels   int
	duration   time.Duration

	// Playback
	playing  bool
	session  string
	playhead time.Duration
	volume   int
	muted    bool

	// Trajectory
	x, y, z   float64
	angle     float64
	radius    float64
	frequency float64
	magnitude float64
	ticks     int64

	// Render
	mode         string
	renderStatus string

	// Telemetry
	telemetry string

	// Debug
	showDebug bool

	// Dimensions
	width  int
	height int
}

// StatusMsg updates TUI state. Zero fields are left unchanged.
type StatusMsg struct {
	FileName     string
	SampleRate   int
	Channels     int
	Duration     time.Duration
	Playing      *bool
	Session      string
	Mode         string
	RenderStatus string
	Telemetry    string
	Volume       int
}

// FrameMsg carries one live tick
type FrameMsg struct {
	Tick      int64
	Playhead  time.Duration
	X, Y, Z   float64
	Angle     float64
	Radius    float64
	Frequency float64
	Magnitude float64
}

// NewModel creates a new TUI model. control may be nil in tests.
func NewModel(control *Control) Model {
	return Model{
		control:      control,
		volume:       100,
		mode:         "orbit",
		renderStatus: "idle",
		x:            1,
		radius:       1,
	}
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
	case FrameMsg:
		m.applyFrame(msg)
	}

	return m, nil
}

// View renders the TUI
func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("205")).
		MarginBottom(1)

	var b strings.Builder
	b.WriteString(titleStyle.Render("Orbit Spatial Player"))
	b.WriteString("\n\n")
	b.WriteString(m.renderSource())
	b.WriteString("\n")
	b.WriteString(m.renderTrajectory())
	b.WriteString("\n")
	b.WriteString(renderRadar(m.x, m.z))
	b.WriteString("\n")

	if m.showDebug {
		b.WriteString(m.renderDebug())
		b.WriteString("\n")
	}

	b.WriteString(m.renderHelp())
	return b.String()
}

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
	valueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("250"))
)

func field(label, value string) string {
	return headerStyle.Render(label) + valueStyle.Render(value) + "\n"
}

// renderSource renders the loaded file and playback state
func (m Model) renderSource() string {
	if m.fileName == "" {
		return field("File: ", "(none)")
	}

	state := "Stopped"
	if m.playing {
		state = fmt.Sprintf("Playing %s / %s", formatClock(m.playhead), formatClock(m.duration))
	}

	muteIcon := ""
	if m.muted {
		muteIcon = " (muted)"
	}

	s := field("File:   ", truncate(m.fileName, 48))
	s += field("Format: ", fmt.Sprintf("%dHz %s, %s", m.sampleRate, channelName(m.channels), formatClock(m.duration)))
	s += field("State:  ", state)
	s += field("Volume: ", fmt.Sprintf("[%s] %d%%%s", renderBar(m.volume, 100, 10), m.volume, muteIcon))
	s += field("Render: ", fmt.Sprintf("%s (%s mode)", m.renderStatus, m.mode))
	if m.telemetry != "" {
		s += field("Telemetry: ", m.telemetry)
	}
	return s
}

// renderTrajectory renders the latest tick
func (m Model) renderTrajectory() string {
	s := field("Position: ", fmt.Sprintf("x=%+.2f y=%+.2f z=%+.2f", m.x, m.y, m.z))
	s += field("Dominant: ", fmt.Sprintf("%7.1f Hz  [%s]", m.frequency, renderBar(int(m.magnitude*100), 100, 20)))
	return s
}

// renderHelp renders keyboard shortcuts
func (m Model) renderHelp() string {
	return lipgloss.NewStyle().Faint(true).Render("space:Play/Stop  r:Render  ↑/↓:Volume  m:Mute  d:Debug  q:Quit")
}

// renderDebug renders debug information
func (m Model) renderDebug() string {
	return fmt.Sprintf("DEBUG: session=%s ticks=%d angle=%.3f radius=%.3f\n",
		m.session, m.ticks, m.angle, m.radius)
}

// renderRadar draws a top-down view with the listener at the centre,
// +X to the right and -Z (forward) at the top
func renderRadar(x, z float64) string {
	grid := make([][]rune, radarHeight)
	for r := range grid {
		grid[r] = []rune(strings.Repeat("·", radarWidth))
	}

	cx, cy := radarWidth/2, radarHeight/2
	grid[cy][cx] = '+'

	col := cx + int(math.Round(x/radarRange*float64(cx)))
	row := cy + int(math.Round(z/radarRange*float64(cy)))
	if col < 0 {
		col = 0
	} else if col >= radarWidth {
		col = radarWidth - 1
	}
	if row < 0 {
		row = 0
	} else if row >= radarHeight {
		row = radarHeight - 1
	}
	grid[row][col] = '●'

	var b strings.Builder
	for _, line := range grid {
		b.WriteString(string(line))
		b.WriteString("\n")
	}
	return b.String()
}

// handleKey handles keyboard input
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		if m.control != nil {
			select {
			case m.control.Quit <- struct{}{}:
			default:
			}
		}
		return m, tea.Quit
	case " ":
		m.send(CmdToggle)
	case "r":
		m.renderStatus = "rendering..."
		m.send(CmdRender)
	case "up":
		m.volume += 5
		if m.volume > 100 {
			m.volume = 100
		}
		m.sendVolume()
	case "down":
		m.volume -= 5
		if m.volume < 0 {
			m.volume = 0
		}
		m.sendVolume()
	case "m":
		m.muted = !m.muted
		m.sendVolume()
	case "d":
		m.showDebug = !m.showDebug
	}

	return m, nil
}

func (m Model) send(cmd Command) {
	if m.control == nil {
		return
	}
	select {
	case m.control.Commands <- cmd:
	default:
	}
}

func (m Model) sendVolume() {
	if m.control == nil {
		return
	}
	select {
	case m.control.Volume <- VolumeChangeMsg{Volume: m.volume, Muted: m.muted}:
	default:
	}
}

// applyStatus updates model from status message
func (m *Model) applyStatus(msg StatusMsg) {
	if msg.FileName != "" {
		m.fileName = msg.FileName
		m.sampleRate = msg.SampleRate
		m.channels = msg.Channels
		m.duration = msg.Duration
	}
	if msg.Playing != nil {
		m.playing = *msg.Playing
		if !m.playing {
			m.playhead = 0
		}
	}
	if msg.Session != "" {
		m.session = msg.Session
	}
	if msg.Mode != "" {
		m.mode = msg.Mode
	}
	if msg.RenderStatus != "" {
		m.renderStatus = msg.RenderStatus
	}
	if msg.Telemetry != "" {
		m.telemetry = msg.Telemetry
	}
	if msg.Volume != 0 {
		m.volume = msg.Volume
	}
}

// applyFrame updates model from a live tick
func (m *Model) applyFrame(msg FrameMsg) {
	m.ticks = msg.Tick
	m.playhead = msg.Playhead
	m.x, m.y, m.z = msg.X, msg.Y, msg.Z
	m.angle = msg.Angle
	m.radius = msg.Radius
	m.frequency = msg.Frequency
	m.magnitude = msg.Magnitude
}

// Utility functions
func renderBar(value, max, width int) string {
	if value < 0 {
		value = 0
	}
	if value > max {
		value = max
	}
	filled := (value * width) / max
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}

func truncate(s string, length int) string {
	if len(s) <= length {
		return s
	}
	return s[:length-3] + "..."
}

func channelName(channels int) string {
	switch channels {
	case 1:
		return "Mono"
	case 2:
		return "Stereo"
	default:
		return fmt.Sprintf("%dch", channels)
	}
}

func formatClock(d time.Duration) string {
	d = d.Round(time.Second)
	return fmt.Sprintf("%d:%02d", int(d.Minutes()), int(d.Seconds())%60)
}
