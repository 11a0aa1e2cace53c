package engine

import (
	"context"
	"sync"

	"github.com/mlaporte/confset/internal/config"
	"github.com/mlaporte/confset/internal/events"
	"github.com/mlaporte/confset/internal/model"
	"github.com/mlaporte/confset/internal/plugin"
	"github.com/mlaporte/confset/internal/telemetry"
)

// fakeUnitProcessor returns scripted results and records which calls ran.
type fakeUnitProcessor struct {
	test     plugin.TestResult
	testErr  error
	get      plugin.GetResult
	getErr   error
	apply    plugin.ApplyResult
	applyErr error

	onTest  func()
	onApply func()

	testCalls  int
	getCalls   int
	applyCalls int
}

func (f *fakeUnitProcessor) TestSettings(context.Context) (plugin.TestResult, error) {
	f.testCalls++
	if f.onTest != nil {
		f.onTest()
	}
	return f.test, f.testErr
}

func (f *fakeUnitProcessor) GetSettings(context.Context) (plugin.GetResult, error) {
	f.getCalls++
	return f.get, f.getErr
}

func (f *fakeUnitProcessor) ApplySettings(context.Context) (plugin.ApplyResult, error) {
	f.applyCalls++
	if f.onApply != nil {
		f.onApply()
	}
	return f.apply, f.applyErr
}

// fakeSetProcessor hands out per-unit fakes keyed by identifier.
type fakeSetProcessor struct {
	processors map[string]*fakeUnitProcessor
	createErr  map[string]error
	created    []string
}

func newFakeSetProcessor() *fakeSetProcessor {
	return &fakeSetProcessor{
		processors: make(map[string]*fakeUnitProcessor),
		createErr:  make(map[string]error),
	}
}

// positive scripts a processor whose test always reports the desired state.
func (f *fakeSetProcessor) positive(id string) *fakeUnitProcessor {
	proc := &fakeUnitProcessor{test: plugin.TestResult{Outcome: plugin.TestPositive}}
	f.processors[id] = proc
	return proc
}

func (f *fakeSetProcessor) with(id string, proc *fakeUnitProcessor) *fakeUnitProcessor {
	f.processors[id] = proc
	return proc
}

func (f *fakeSetProcessor) CreateUnitProcessor(_ context.Context, unit *config.Unit) (plugin.UnitProcessor, error) {
	f.created = append(f.created, unit.ID)
	if err, ok := f.createErr[unit.ID]; ok {
		return nil, err
	}
	if proc, ok := f.processors[unit.ID]; ok {
		return proc, nil
	}
	return &fakeUnitProcessor{test: plugin.TestResult{Outcome: plugin.TestPositive}}, nil
}

// recordingPublisher captures every event in emission order.
type recordingPublisher struct {
	mu         sync.Mutex
	setEvents  []events.SetEvent
	unitEvents []events.UnitEvent
}

func (r *recordingPublisher) PublishSet(event events.SetEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.setEvents = append(r.setEvents, event)
	return nil
}

func (r *recordingPublisher) PublishUnit(event events.UnitEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.unitEvents = append(r.unitEvents, event)
	return nil
}

// unitStates returns the emitted states for one unit, in order.
func (r *recordingPublisher) unitStates(id string) []model.UnitState {
	r.mu.Lock()
	defer r.mu.Unlock()
	var states []model.UnitState
	for _, event := range r.unitEvents {
		if event.Unit != nil && event.Unit.ID == id {
			states = append(states, event.State)
		}
	}
	return states
}

func (r *recordingPublisher) setStates() []model.SetState {
	r.mu.Lock()
	defer r.mu.Unlock()
	var states []model.SetState
	for _, event := range r.setEvents {
		states = append(states, event.State)
	}
	return states
}

// recordingSink captures telemetry records.
type recordingSink struct {
	unitRuns  []telemetry.UnitRecord
	summaries []telemetry.ApplySummary
}

func (r *recordingSink) LogUnitRun(record telemetry.UnitRecord) {
	r.unitRuns = append(r.unitRuns, record)
}

func (r *recordingSink) LogApplySummary(summary telemetry.ApplySummary) {
	r.summaries = append(r.summaries, summary)
}

func applyUnit(id string, deps ...string) config.Unit {
	return config.Unit{ID: id, Type: "command", Intent: config.IntentApply, DependsOn: deps}
}

func assertUnit(id string, deps ...string) config.Unit {
	return config.Unit{ID: id, Type: "command", Intent: config.IntentAssert, DependsOn: deps}
}

func informUnit(id string, deps ...string) config.Unit {
	return config.Unit{ID: id, Type: "command", Intent: config.IntentInform, DependsOn: deps}
}

func testSet(units ...config.Unit) *config.Set {
	return &config.Set{
		Version:    "1.0",
		Name:       "test",
		InstanceID: "00000000-0000-0000-0000-000000000001",
		Units:      units,
	}
}

type harness struct {
	processor *ApplyProcessor
	setProc   *fakeSetProcessor
	publisher *recordingPublisher
	sink      *recordingSink
}

func newHarness(set *config.Set) *harness {
	h := &harness{
		setProc:   newFakeSetProcessor(),
		publisher: &recordingPublisher{},
		sink:      &recordingSink{},
	}

	proc, err := NewApplyProcessor(Options{
		Set:          set,
		SetProcessor: h.setProc,
		Publisher:    h.publisher,
		Telemetry:    h.sink,
	})
	if err != nil {
		panic(err)
	}
	h.processor = proc
	return h
}
