package tui

import (
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/mlaporte/confset/internal/config"
	"github.com/mlaporte/confset/internal/events"
	"github.com/mlaporte/confset/internal/model"
)

// UnitEventMsg wraps a unit progress event for the TUI.
type UnitEventMsg struct {
	Event events.UnitEvent
}

// SetEventMsg wraps a set progress event for the TUI.
type SetEventMsg struct {
	Event events.SetEvent
}

// DoneMsg reports that the apply finished, successfully or not.
type DoneMsg struct {
	Code model.ResultCode
	Err  error
}

// unitRow tracks the display state of one unit.
type unitRow struct {
	id     string
	name   string
	intent config.Intent
	state  model.UnitState
	info   model.ResultInformation
}

// Model contains the Bubbletea state for the apply progress display.
type Model struct {
	setName   string
	spin      spinner.Model
	rows      []unitRow
	rowIndex  map[*config.Unit]int
	setState  model.SetState
	code      model.ResultCode
	err       error
	finished  bool
	cancelled bool
}

// NewModel constructs the TUI model for a configuration set. Unit rows are
// laid out in input order and matched to events by unit identity, so
// anonymous units track correctly.
func NewModel(set *config.Set) Model {
	spin := spinner.New()
	spin.Spinner = spinner.Dot

	m := Model{
		setName:  set.Name,
		spin:     spin,
		rowIndex: make(map[*config.Unit]int, len(set.Units)),
		setState: model.SetStateUnknown,
	}

	for i := range set.Units {
		unit := &set.Units[i]
		row := unitRow{
			id:     unit.ID,
			name:   unit.Name,
			intent: unit.Intent,
			state:  model.UnitStateUnknown,
		}
		m.rowIndex[unit] = len(m.rows)
		m.rows = append(m.rows, row)
	}

	return m
}

// Init starts the spinner tick.
func (m Model) Init() tea.Cmd {
	return m.spin.Tick
}

// Finished reports whether the display reached its terminal state.
func (m Model) Finished() bool {
	return m.finished
}

// Cancelled reports whether the user interrupted the run.
func (m Model) Cancelled() bool {
	return m.cancelled
}
