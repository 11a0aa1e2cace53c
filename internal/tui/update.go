package tui

import (
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

// Update handles Bubbletea messages and advances the display state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case SetEventMsg:
		m.setState = msg.Event.State
		return m, nil

	case UnitEventMsg:
		if index, ok := m.rowIndex[msg.Event.Unit]; ok {
			m.rows[index].state = msg.Event.State
			m.rows[index].info = msg.Event.Info
		}
		return m, nil

	case DoneMsg:
		m.code = msg.Code
		m.err = msg.Err
		m.finished = true
		return m, tea.Quit

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			m.cancelled = true
			return m, tea.Quit
		}

	case tea.QuitMsg:
		m.finished = true
		return m, nil
	}

	return m, nil
}
