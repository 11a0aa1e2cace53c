package telemetry

import (
	"github.com/mlaporte/confset/internal/config"
	"github.com/mlaporte/confset/internal/model"
)

// Action names recorded with per-unit telemetry, derived from which processor
// call actually ran.
const (
	ActionTest  = "test"
	ActionGet   = "get"
	ActionApply = "apply"
)

// ProcessingSummary aggregates one intent's outcomes across an apply run.
// Count is the number of units declaring the intent, Run those committed to
// execution, Failed those committed and carrying a failure code.
type ProcessingSummary struct {
	Intent config.Intent
	Count  int
	Run    int
	Failed int
}

// UnitRecord captures the outcome of one unit action attempt.
type UnitRecord struct {
	SetInstanceID string
	UnitID        string
	UnitType      string
	Intent        config.Intent
	Action        string
	Info          model.ResultInformation
}

// ApplySummary captures the outcome of a whole apply run.
type ApplySummary struct {
	SetInstanceID string
	FromHistory   bool
	Intent        config.Intent
	Code          model.ResultCode
	Source        model.ResultSource
	Assert        ProcessingSummary
	Inform        ProcessingSummary
	Apply         ProcessingSummary
}

// Sink receives telemetry records from the engine. Implementations decide the
// destination; the engine never inspects outcomes of these calls.
type Sink interface {
	LogUnitRun(record UnitRecord)
	LogApplySummary(summary ApplySummary)
}

// Nop discards all telemetry.
type Nop struct{}

func (Nop) LogUnitRun(UnitRecord)        {}
func (Nop) LogApplySummary(ApplySummary) {}

// Multi forwards records to several sinks.
type Multi []Sink

func (m Multi) LogUnitRun(record UnitRecord) {
	for _, s := range m {
		s.LogUnitRun(record)
	}
}

func (m Multi) LogApplySummary(summary ApplySummary) {
	for _, s := range m {
		s.LogApplySummary(summary)
	}
}
