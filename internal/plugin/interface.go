package plugin

import (
	"context"

	"github.com/mlaporte/confset/internal/config"
	"github.com/mlaporte/confset/internal/model"
)

// TestOutcome is the verdict of a unit processor's TestSettings call.
type TestOutcome int

const (
	// TestUnknown means the processor could not determine the state.
	TestUnknown TestOutcome = iota
	// TestPositive means the system already matches the desired state.
	TestPositive
	// TestNegative means the system does not match the desired state.
	TestNegative
	// TestFailed means the test itself failed; Info carries the reason.
	TestFailed
)

func (o TestOutcome) String() string {
	switch o {
	case TestPositive:
		return "positive"
	case TestNegative:
		return "negative"
	case TestFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// TestResult is returned by TestSettings.
type TestResult struct {
	Outcome TestOutcome
	Info    model.ResultInformation
}

// GetResult is returned by GetSettings. Settings holds the observed state in
// a processor-specific shape.
type GetResult struct {
	Info     model.ResultInformation
	Settings map[string]any
}

// ApplyResult is returned by ApplySettings.
type ApplyResult struct {
	Info           model.ResultInformation
	RebootRequired bool
}

// UnitProcessor performs the real work for one configuration unit. A
// processor may report failure two ways: through the embedded result
// information (a processor-classified failure) or by returning an error (an
// unclassified one the engine will translate itself).
type UnitProcessor interface {
	// TestSettings checks whether the system currently matches the unit's
	// desired state. It must not mutate system state.
	TestSettings(ctx context.Context) (TestResult, error)

	// GetSettings reads the unit's current settings for reporting.
	GetSettings(ctx context.Context) (GetResult, error)

	// ApplySettings moves the system into the unit's desired state. It must
	// be idempotent.
	ApplySettings(ctx context.Context) (ApplyResult, error)
}

// SetProcessor creates unit processors on demand for the units of one
// configuration set.
type SetProcessor interface {
	CreateUnitProcessor(ctx context.Context, unit *config.Unit) (UnitProcessor, error)
}
