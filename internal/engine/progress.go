package engine

import (
	"github.com/mlaporte/confset/internal/events"
	"github.com/mlaporte/confset/internal/model"
)

// sendSetProgress emits a set-level transition. Emission failures are logged
// and swallowed; the engine's own state machine always advances.
func (p *ApplyProcessor) sendSetProgress(state model.SetState) {
	if err := p.publisher.PublishSet(events.SetEvent{State: state}); err != nil {
		p.log.Error(err, "failed to publish set progress")
	}
}

// sendUnitProgress records the unit's new state and emits a unit-level
// transition carrying a snapshot of its result information.
func (p *ApplyProcessor) sendUnitProgress(state model.UnitState, info *unitInfo) {
	info.result.State = state

	if err := p.publisher.PublishUnit(events.UnitEvent{
		Unit:  info.unit,
		State: state,
		Info:  *info.result.Info,
	}); err != nil {
		p.log.Error(err, "failed to publish unit progress")
	}
}

// sendUnitProgressIfNotComplete emits only when the unit has not already
// reached its terminal Completed state, preventing duplicate terminal events
// for units marked during validation.
func (p *ApplyProcessor) sendUnitProgressIfNotComplete(state model.UnitState, info *unitInfo) {
	if info.result.State != model.UnitStateCompleted {
		p.sendUnitProgress(state, info)
	}
}
