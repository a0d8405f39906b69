// ABOUTME: TUI initialization and control
// ABOUTME: Wraps the bubbletea program and the command channel back to the app
package ui

import (
	tea "github.com/charmbracelet/bubbletea"
)

// Command is a user action forwarded to the application
type Command int

const (
	CmdToggle Command = iota // start or stop live playback
	CmdRender                // render the loaded file offline
)

// Control holds channels for communication from the TUI to the app
type Control struct {
	Commands chan Command
	Volume   chan VolumeChangeMsg
	Quit     chan struct{}
}

// VolumeChangeMsg carries a volume or mute change
type VolumeChangeMsg struct {
	Volume int
	Muted  bool
}

// NewControl creates a new control handler
func NewControl() *Control {
	return &Control{
		Commands: make(chan Command, 10),
		Volume:   make(chan VolumeChangeMsg, 10),
		Quit:     make(chan struct{}, 1),
	}
}

// TUI runs the player interface
type TUI struct {
	program *tea.Program
	control *Control
	updates chan StatusMsg
	frames  chan FrameMsg
	done    chan struct{}
}

// New creates the TUI with its initial status
func New(control *Control, initial StatusMsg) *TUI {
	m := NewModel(control)
	m.applyStatus(initial)

	return &TUI{
		program: tea.NewProgram(m, tea.WithAltScreen()),
		control: control,
		updates: make(chan StatusMsg, 10),
		frames:  make(chan FrameMsg, 1),
		done:    make(chan struct{}),
	}
}

// Run blocks until the user quits
func (t *TUI) Run() error {
	go t.forward()
	defer close(t.done)

	_, err := t.program.Run()
	return err
}

// forward relays queued updates into the program
func (t *TUI) forward() {
	for {
		select {
		case msg := <-t.updates:
			t.program.Send(msg)
		case msg := <-t.frames:
			t.program.Send(msg)
		case <-t.done:
			return
		}
	}
}

// Status queues a status update
func (t *TUI) Status(msg StatusMsg) {
	select {
	case t.updates <- msg:
	default:
		// Don't block if channel is full
	}
}

// Frame queues a position update, dropping it if the previous one is
// still pending
func (t *TUI) Frame(msg FrameMsg) {
	select {
	case t.frames <- msg:
	default:
	}
}

// Stop quits the program
func (t *TUI) Stop() {
	t.program.Quit()
}
