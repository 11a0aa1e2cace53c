package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mlaporte/confset/internal/config"
	"github.com/mlaporte/confset/internal/events"
	"github.com/mlaporte/confset/internal/logger"
	"github.com/mlaporte/confset/internal/model"
	"github.com/mlaporte/confset/internal/plugin"
	"github.com/mlaporte/confset/internal/telemetry"
	confseterrors "github.com/mlaporte/confset/pkg/errors"
)

// normalizeIdentifier produces the case-folded form used for identifier
// equality. Empty input yields empty output.
func normalizeIdentifier(id string) string {
	return strings.ToLower(id)
}

// unitInfo is the engine's per-unit record. Indices into the table are
// stable for the lifetime of an apply run; dependency edges are indices,
// never references.
type unitInfo struct {
	unit   *config.Unit
	result *model.UnitResult

	// dependencyIndices is resolved from the declared dependency identifiers
	// during preprocessing.
	dependencyIndices []int

	// preprocessed is set by the dry-run pass that proves the graph can be
	// scheduled.
	preprocessed bool

	// processed is set the moment the unit is committed to execution, even if
	// creating its processor fails afterwards.
	processed bool
}

// Options bundles the collaborators of an apply run. Set and SetProcessor
// are required; the rest default to no-ops.
type Options struct {
	Set          *config.Set
	SetProcessor plugin.SetProcessor
	Publisher    events.Publisher
	Telemetry    telemetry.Sink
	Logger       *logger.Logger
}

// ApplyProcessor drives one configuration set through validation and
// intent-phased execution. It is single-use: construct, call Process once,
// read the result.
type ApplyProcessor struct {
	set          *config.Set
	setProcessor plugin.SetProcessor
	publisher    events.Publisher
	telemetry    telemetry.Sink
	log          *logger.Logger

	units     []*unitInfo
	idToIndex map[string]int

	result       *model.SetResult
	resultSource model.ResultSource
}

// NewApplyProcessor constructs a processor over the given set. The unit info
// table and the aggregate result are built up front, one entry per unit in
// input order.
func NewApplyProcessor(opts Options) (*ApplyProcessor, error) {
	if opts.Set == nil {
		return nil, confseterrors.NewValidationError("set", "configuration set is nil", nil)
	}
	if opts.SetProcessor == nil {
		return nil, confseterrors.NewValidationError("set_processor", "set processor is nil", nil)
	}

	publisher := opts.Publisher
	if publisher == nil {
		publisher = events.Discard{}
	}
	sink := opts.Telemetry
	if sink == nil {
		sink = telemetry.Nop{}
	}
	log := opts.Logger
	if log == nil {
		log = logger.Discard()
	}

	p := &ApplyProcessor{
		set:          opts.Set,
		setProcessor: opts.SetProcessor,
		publisher:    publisher,
		telemetry:    sink,
		log:          log,
		idToIndex:    make(map[string]int, len(opts.Set.Units)),
		result:       &model.SetResult{},
	}

	for i := range opts.Set.Units {
		unit := &opts.Set.Units[i]
		info := &unitInfo{
			unit:   unit,
			result: model.NewUnitResult(unit.ID),
		}
		p.units = append(p.units, info)
		p.result.Units = append(p.result.Units, info.result)
	}

	return p, nil
}

// Result returns the aggregate result. Valid at any time; per-unit records
// fill in as the run progresses.
func (p *ApplyProcessor) Result() *model.SetResult {
	return p.result
}

// Process runs the apply from validation through the three intent phases.
// Failures of the set or its units are reported through the result and its
// codes; the returned error is reserved for cancellation and for internal
// errors that escape classification. A final telemetry summary is emitted on
// every path.
func (p *ApplyProcessor) Process(ctx context.Context) (*model.SetResult, error) {
	if err := p.run(ctx); err != nil {
		p.telemetry.LogApplySummary(p.applySummary(codeForError(err), model.SourceInternal))
		return p.result, err
	}
	return p.result, nil
}

func (p *ApplyProcessor) run(ctx context.Context) error {
	if p.preProcess(ctx) {
		p.sendSetProgress(model.SetStateInProgress)
		if _, err := p.processAll(ctx, hasProcessedSuccessfully, p.processUnit, true); err != nil {
			return err
		}
	}

	p.sendSetProgress(model.SetStateCompleted)
	p.telemetry.LogApplySummary(p.applySummary(p.result.Code, p.resultSource))
	return nil
}

// preProcess validates the set: identifier uniqueness, dependency
// resolution, and a dry-run schedule that proves the dependency graph is
// acyclic. Returns false after recording the aggregate result code on any
// finding.
func (p *ApplyProcessor) preProcess(ctx context.Context) bool {
	ok := true
	for i, info := range p.units {
		if !p.addUnitToIndex(info, i) {
			ok = false
		}
	}
	if !ok {
		// The only error the index can produce.
		p.setResultCode(model.CodeDuplicateIdentifier, model.SourceConfigurationSet)
		return false
	}

	for _, info := range p.units {
		for _, dependency := range info.unit.DependsOn {
			// Throw out empty dependency strings.
			if dependency == "" {
				continue
			}

			index, found := p.idToIndex[normalizeIdentifier(dependency)]
			if !found {
				p.log.WithUnit(info.unit.ID).Error(nil, fmt.Sprintf("missing dependency: %s", dependency))
				info.result.Info.SetWithDetails(model.CodeMissingDependency, model.SourceConfigurationSet, dependency)
				p.sendUnitProgress(model.UnitStateCompleted, info)
				ok = false
				// Only the first missing dependency is reported per unit.
				break
			}
			info.dependencyIndices = append(info.dependencyIndices, index)
		}
	}
	if !ok {
		p.setResultCode(model.CodeMissingDependency, model.SourceConfigurationSet)
		return false
	}

	// The dry run simulates processing as if every unit run succeeded. A
	// stall means some unit can never be scheduled even under that
	// assumption, which is only possible with a cycle in the graph.
	if done, _ := p.processAll(ctx, hasPreprocessed, markPreprocessed, false); !done {
		p.log.Error(nil, "dependency cycle detected")
		p.setResultCode(model.CodeDependencyCycle, model.SourceConfigurationSet)
		return false
	}

	return true
}

// addUnitToIndex registers a unit's normalized identifier. Units without an
// identifier are accepted without being recorded. On a collision both the
// incumbent and the newcomer are marked and completed.
func (p *ApplyProcessor) addUnitToIndex(info *unitInfo, index int) bool {
	if info.unit.ID == "" {
		return true
	}

	identifier := normalizeIdentifier(info.unit.ID)

	if existing, found := p.idToIndex[identifier]; found {
		p.log.Error(nil, fmt.Sprintf("duplicate identifier: %s", identifier))
		incumbent := p.units[existing]
		incumbent.result.Info.Set(model.CodeDuplicateIdentifier, model.SourceConfigurationSet)
		p.sendUnitProgressIfNotComplete(model.UnitStateCompleted, incumbent)
		info.result.Info.Set(model.CodeDuplicateIdentifier, model.SourceConfigurationSet)
		p.sendUnitProgress(model.UnitStateCompleted, info)
		return false
	}

	p.idToIndex[identifier] = index
	return true
}

func (p *ApplyProcessor) setResultCode(code model.ResultCode, source model.ResultSource) {
	p.result.SetCode(code)
	p.resultSource = source
}

// codeForError classifies an error escaping the run into a result code for
// the final telemetry summary.
func codeForError(err error) model.ResultCode {
	var cancelled *confseterrors.CancelledError
	if errors.As(err, &cancelled) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return model.CodeCancelled
	}
	return model.CodeUnexpected
}

// checkCancelled is the engine's cooperative cancellation poll.
func checkCancelled(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return confseterrors.NewCancelledError(err)
	}
	return nil
}
