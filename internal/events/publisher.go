package events

import (
	"github.com/mlaporte/confset/internal/config"
	"github.com/mlaporte/confset/internal/model"
)

// SetEvent reports a state transition of the apply run as a whole.
type SetEvent struct {
	State model.SetState
}

// UnitEvent reports a state transition of a single unit, carrying the unit
// and a snapshot of its result information at emission time.
type UnitEvent struct {
	Unit  *config.Unit
	State model.UnitState
	Info  model.ResultInformation
}

// Publisher receives progress events from the engine. Implementations must
// tolerate concurrent observers; a returned error is logged by the engine and
// otherwise ignored, so a failing publisher never stalls an apply.
type Publisher interface {
	PublishSet(event SetEvent) error
	PublishUnit(event UnitEvent) error
}

// Multi fans events out to several publishers. The first error is returned
// after all publishers ran.
type Multi []Publisher

func (m Multi) PublishSet(event SetEvent) error {
	var first error
	for _, p := range m {
		if err := p.PublishSet(event); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func (m Multi) PublishUnit(event UnitEvent) error {
	var first error
	for _, p := range m {
		if err := p.PublishUnit(event); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// Discard drops every event.
type Discard struct{}

func (Discard) PublishSet(SetEvent) error   { return nil }
func (Discard) PublishUnit(UnitEvent) error { return nil }
