package tui

import (
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"

	"github.com/mlaporte/confset/internal/config"
	"github.com/mlaporte/confset/internal/events"
	"github.com/mlaporte/confset/internal/model"
)

func testModel() (Model, *config.Set) {
	set := &config.Set{
		Version: "1.0",
		Name:    "workstation",
		Units: []config.Unit{
			{ID: "install_git", Type: "command", Intent: config.IntentApply},
			{Type: "command", Intent: config.IntentInform},
		},
	}
	return NewModel(set), set
}

func TestNewModelTracksUnitsInOrder(t *testing.T) {
	t.Parallel()

	m, _ := testModel()
	require.Len(t, m.rows, 2)
	require.Equal(t, "install_git", m.rows[0].id)
	require.Equal(t, model.UnitStateUnknown, m.rows[0].state)
}

func TestUpdateUnitEventAdvancesRow(t *testing.T) {
	t.Parallel()

	m, set := testModel()
	updated, _ := m.Update(UnitEventMsg{Event: events.UnitEvent{
		Unit:  &set.Units[0],
		State: model.UnitStateInProgress,
	}})

	next := updated.(Model)
	require.Equal(t, model.UnitStateInProgress, next.rows[0].state)
	require.Equal(t, model.UnitStateUnknown, next.rows[1].state)
}

func TestUpdateAnonymousUnitTracksByIdentity(t *testing.T) {
	t.Parallel()

	m, set := testModel()
	updated, _ := m.Update(UnitEventMsg{Event: events.UnitEvent{
		Unit:  &set.Units[1],
		State: model.UnitStateCompleted,
	}})

	next := updated.(Model)
	require.Equal(t, model.UnitStateCompleted, next.rows[1].state)
}

func TestUpdateDoneQuits(t *testing.T) {
	t.Parallel()

	m, _ := testModel()
	updated, cmd := m.Update(DoneMsg{Code: model.CodeSetApplyFailed})

	next := updated.(Model)
	require.True(t, next.Finished())
	require.NotNil(t, cmd)
}

func TestViewShowsFailureCode(t *testing.T) {
	t.Parallel()

	m, set := testModel()
	updated, _ := m.Update(UnitEventMsg{Event: events.UnitEvent{
		Unit:  &set.Units[0],
		State: model.UnitStateSkipped,
		Info:  model.ResultInformation{Code: model.CodeDependencyUnsatisfied, Source: model.SourcePrecondition},
	}})
	updated, _ = updated.(Model).Update(DoneMsg{Code: model.CodeAssertionFailed})

	view := updated.(Model).View()
	require.Contains(t, view, "install_git")
	require.Contains(t, view, "dependency_unsatisfied")
	require.Contains(t, view, "apply failed: assertion_failed")
}

func TestViewShowsSuccessSummary(t *testing.T) {
	t.Parallel()

	m, _ := testModel()
	updated, _ := m.Update(DoneMsg{Code: model.OK})
	require.Contains(t, updated.(Model).View(), "apply complete")
}

func TestViewShowsAbortError(t *testing.T) {
	t.Parallel()

	m, _ := testModel()
	updated, _ := m.Update(DoneMsg{Code: model.CodeCancelled, Err: errors.New("apply cancelled: context canceled")})
	view := updated.(Model).View()
	require.Contains(t, view, "apply aborted")
}

func TestCtrlCMarksCancelled(t *testing.T) {
	t.Parallel()

	m, _ := testModel()
	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	next := updated.(Model)
	require.True(t, next.Cancelled())
	require.True(t, strings.Contains(next.View(), "cancelling"))
}
