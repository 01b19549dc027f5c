package monitor

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rileyhilliard/stripchart/internal/chart"
)

// Engine is the part of a running strip chart the dashboard drives.
type Engine interface {
	Chart() *chart.Chart
	Interval() time.Duration
	SetInterval(d time.Duration) error
}

// Model is the Bubble Tea model for the strip chart dashboard.
type Model struct {
	ctx      context.Context
	engine   Engine
	frames   <-chan chart.Frame
	frame    chart.Frame
	selected int
	width    int
	height   int
	showHelp bool
	quitting bool

	// status is a one-line message from the last key action.
	status string
}

// frameMsg carries a chart frame published after a tick.
type frameMsg chart.Frame

// NewModel subscribes to the engine's chart for as long as ctx lives.
func NewModel(ctx context.Context, engine Engine) Model {
	return Model{
		ctx:    ctx,
		engine: engine,
		frames: engine.Chart().Subscribe(ctx),
		frame:  engine.Chart().Frame(),
	}
}

// Init waits for the first frame.
func (m Model) Init() tea.Cmd {
	return m.waitForFrame()
}

// Update handles messages and updates the model state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		handled, cmd := m.HandleKeyMsg(msg)
		if handled {
			return m, cmd
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case frameMsg:
		m.frame = chart.Frame(msg)
		if m.selected >= len(m.frame.Params) {
			m.selected = len(m.frame.Params) - 1
		}
		if m.selected < 0 {
			m.selected = 0
		}
		return m, m.waitForFrame()
	}

	return m, nil
}

// View renders the dashboard.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if m.showHelp {
		return m.renderHelpOverlay()
	}
	return m.renderDashboard()
}

// waitForFrame blocks until the chart publishes a frame. It yields nil once
// the subscription context is done.
func (m Model) waitForFrame() tea.Cmd {
	frames, ctx := m.frames, m.ctx
	return func() tea.Msg {
		select {
		case f := <-frames:
			return frameMsg(f)
		case <-ctx.Done():
			return nil
		}
	}
}

// Frame returns the frame currently displayed.
func (m Model) Frame() chart.Frame {
	return m.frame
}

// Selected returns the index of the selected parameter.
func (m Model) Selected() int {
	return m.selected
}

// SelectedName returns the name of the selected parameter, or "" when the
// chart is empty.
func (m Model) SelectedName() string {
	if m.selected < 0 || m.selected >= len(m.frame.Params) {
		return ""
	}
	return m.frame.Params[m.selected].Name
}

// Status returns the message left by the last key action.
func (m Model) Status() string {
	return m.status
}
