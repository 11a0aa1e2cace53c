package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/mlaporte/confset/internal/model"
)

// View renders the current state of the apply run.
func (m Model) View() string {
	var sections []string

	title := titleStyle.Render(fmt.Sprintf("confset • %s", m.title()))
	sections = append(sections, title)

	var lines []string
	for _, row := range m.rows {
		lines = append(lines, m.renderRow(row))
	}
	if len(lines) > 0 {
		sections = append(sections, strings.Join(lines, "\n"))
	}

	if summary := m.renderSummary(); summary != "" {
		sections = append(sections, summaryStyle.Render(summary))
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) renderRow(row unitRow) string {
	label := row.id
	if label == "" {
		label = row.name
	}
	if label == "" {
		label = "(anonymous)"
	}

	icon := m.stateIcon(row.state)
	if row.state == model.UnitStateCompleted && row.info.Code.Failed() {
		icon = failureStyle.Render("✗")
	}

	line := fmt.Sprintf(" %s %s %s", icon, intentStyle.Render(string(row.intent)), label)
	if row.info.Code.Failed() {
		line = fmt.Sprintf("%s — %s", line, failureStyle.Render(row.info.Code.String()))
		if row.info.Details != "" {
			line = fmt.Sprintf("%s (%s)", line, row.info.Details)
		}
	}
	return line
}

func (m Model) renderSummary() string {
	switch {
	case m.cancelled:
		return failureStyle.Render("cancelling…")
	case !m.finished:
		return ""
	case m.err != nil:
		return failureStyle.Render(fmt.Sprintf("apply aborted: %v", m.err))
	case m.code.Failed():
		return failureStyle.Render(fmt.Sprintf("apply failed: %s", m.code))
	default:
		return successStyle.Render("apply complete")
	}
}

func (m Model) title() string {
	if strings.TrimSpace(m.setName) != "" {
		return m.setName
	}
	return "apply"
}

func (m Model) stateIcon(state model.UnitState) string {
	switch state {
	case model.UnitStateCompleted:
		return successStyle.Render("✓")
	case model.UnitStateInProgress:
		return runningStyle.Render(m.spin.View())
	case model.UnitStateSkipped:
		return skippedStyle.Render("⊘")
	case model.UnitStatePending, model.UnitStateQueued:
		return pendingStyle.Render("•")
	default:
		return pendingStyle.Render("…")
	}
}
