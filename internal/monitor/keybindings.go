package monitor

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// Key bindings as constants for consistency.
const (
	KeyQuit            = "q"
	KeyQuitAlt         = "ctrl+c"
	KeySelectPrev      = "up"
	KeySelectPrevK     = "k"
	KeySelectNext      = "down"
	KeySelectNextJ     = "j"
	KeySelectFirst     = "home"
	KeySelectLast      = "end"
	KeyToggleAutorange = "a"
	KeyDeactivate      = "d"
	KeySlower          = "+"
	KeySlowerAlt       = "="
	KeyFaster          = "-"
	KeyCollapse        = "esc"
	KeyToggleHelp      = "?"
)

// Interval bounds for the +/- keys.
const (
	MinInterval = 100 * time.Millisecond
	MaxInterval = 10 * time.Minute
)

// HandleKeyMsg processes keyboard input and returns updated model state and command.
// Returns true if the key was handled, false otherwise.
func (m *Model) HandleKeyMsg(msg tea.KeyMsg) (bool, tea.Cmd) {
	key := msg.String()

	// Help toggle takes priority
	if key == KeyToggleHelp {
		m.showHelp = !m.showHelp
		return true, nil
	}

	if m.showHelp && key == KeyCollapse {
		m.showHelp = false
		return true, nil
	}

	switch key {
	case KeyQuit, KeyQuitAlt:
		m.quitting = true
		return true, tea.Quit

	case KeySelectPrev, KeySelectPrevK:
		if m.selected > 0 {
			m.selected--
		}
		return true, nil

	case KeySelectNext, KeySelectNextJ:
		if m.selected < len(m.frame.Params)-1 {
			m.selected++
		}
		return true, nil

	case KeySelectFirst:
		m.selected = 0
		return true, nil

	case KeySelectLast:
		if n := len(m.frame.Params); n > 0 {
			m.selected = n - 1
		}
		return true, nil

	case KeyToggleAutorange:
		m.toggleAutorange()
		return true, nil

	case KeyDeactivate:
		m.deactivateSelected()
		return true, nil

	case KeySlower, KeySlowerAlt:
		m.scaleInterval(2)
		return true, nil

	case KeyFaster:
		m.scaleInterval(0.5)
		return true, nil
	}

	return false, nil
}

func (m *Model) toggleAutorange() {
	name := m.SelectedName()
	if name == "" {
		return
	}
	p, ok := m.engine.Chart().Find(name)
	if !ok {
		return
	}
	on := !p.Snapshot().Autorange
	p.SetAutorange(on)
	if p.Snapshot().Autorange != on {
		m.status = fmt.Sprintf("%s: indicators do not autorange", name)
		return
	}
	if on {
		m.status = fmt.Sprintf("%s: autorange on", name)
	} else {
		m.status = fmt.Sprintf("%s: autorange off", name)
	}
}

func (m *Model) deactivateSelected() {
	name := m.SelectedName()
	if name == "" {
		return
	}
	if p, ok := m.engine.Chart().Find(name); ok {
		p.Deactivate()
		m.status = fmt.Sprintf("%s: deactivated, ages out over its history", name)
	}
}

func (m *Model) scaleInterval(factor float64) {
	d := time.Duration(float64(m.engine.Interval()) * factor)
	if d < MinInterval {
		d = MinInterval
	}
	if d > MaxInterval {
		d = MaxInterval
	}
	if err := m.engine.SetInterval(d); err != nil {
		m.status = err.Error()
		return
	}
	m.status = fmt.Sprintf("interval %v", d)
}
