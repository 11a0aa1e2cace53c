package engine

import (
	"context"

	"github.com/mlaporte/confset/internal/config"
	"github.com/mlaporte/confset/internal/model"
)

// dependencyPredicate decides whether a dependency counts as satisfied for
// the current pass.
type dependencyPredicate func(*unitInfo) bool

// unitAction is applied to each scheduled unit. The bool reports unit-level
// success; a non-nil error aborts the whole apply (cancellation).
type unitAction func(context.Context, *unitInfo) (bool, error)

// hasPreprocessed is the dry-run predicate.
func hasPreprocessed(info *unitInfo) bool {
	return info.preprocessed
}

// markPreprocessed is the dry-run action.
func markPreprocessed(_ context.Context, info *unitInfo) (bool, error) {
	info.preprocessed = true
	return true, nil
}

// hasProcessedSuccessfully is the execution predicate: a dependency is
// satisfied only by a unit that ran and carries a success code. A manually
// skipped unit carries a failure code and therefore blocks its dependents.
func hasProcessedSuccessfully(info *unitInfo) bool {
	return info.processed && info.result.Info.Code.Succeeded()
}

// processAll runs the three intent phases in their fixed order over a single
// candidate list holding every unit index.
func (p *ApplyProcessor) processAll(ctx context.Context, check dependencyPredicate, action unitAction, sendProgress bool) (bool, error) {
	candidates := make([]int, len(p.units))
	for i := range candidates {
		candidates[i] = i
	}

	// All assert units run first.
	ok, err := p.processIntent(ctx, &candidates, check, action, config.IntentAssert,
		model.CodeAssertionFailed, model.CodeAssertionFailed, sendProgress)
	if !ok || err != nil {
		return ok, err
	}

	// Then all inform units.
	ok, err = p.processIntent(ctx, &candidates, check, action, config.IntentInform,
		model.CodeDependencyUnsatisfied, model.CodeDependencyUnsatisfied, sendProgress)
	if !ok || err != nil {
		return ok, err
	}

	// Then all apply units. No known intent remains after this phase, so the
	// other-intents code only reaches units with an unrecognized intent.
	return p.processIntent(ctx, &candidates, check, action, config.IntentApply,
		model.CodeFail, model.CodeSetApplyFailed, sendProgress)
}

// processIntent schedules every ready unit of one intent, then classifies
// whatever is left in the candidate list.
func (p *ApplyProcessor) processIntent(
	ctx context.Context,
	candidates *[]int,
	check dependencyPredicate,
	action unitAction,
	intent config.Intent,
	errorForOtherIntents model.ResultCode,
	errorForFailures model.ResultCode,
	sendProgress bool,
) (bool, error) {
	// Always process the first candidate that is ready, then rescan so a
	// newly satisfied dependency can release earlier-positioned units.
	hasProcessed := true
	hasFailure := false
	for hasProcessed {
		hasProcessed = false
		for position, index := range *candidates {
			info := p.units[index]
			if !p.readyForIntent(info, intent, check) {
				continue
			}

			unitOK, err := action(ctx, info)
			if err != nil {
				return false, err
			}
			if !unitOK {
				hasFailure = true
			}

			*candidates = append((*candidates)[:position], (*candidates)[position+1:]...)
			hasProcessed = true
			break
		}
	}

	// Whatever remains with this intent could not be scheduled: a
	// dependency never reached a satisfying state.
	hasRemainingDependencies := false
	for _, index := range *candidates {
		info := p.units[index]
		if info.unit.Intent != intent {
			continue
		}
		hasRemainingDependencies = true
		info.result.Info.Set(model.CodeDependencyUnsatisfied, model.SourcePrecondition)
		if sendProgress {
			p.sendUnitProgress(model.UnitStateSkipped, info)
		}
	}

	// Any failure in this phase is fatal to everything still waiting.
	if hasFailure || hasRemainingDependencies {
		for _, index := range *candidates {
			info := p.units[index]
			if info.unit.Intent == intent {
				continue
			}
			info.result.Info.Set(errorForOtherIntents, model.SourcePrecondition)
			if sendProgress {
				p.sendUnitProgress(model.UnitStateSkipped, info)
			}
		}

		if hasFailure {
			p.setResultCode(errorForFailures, model.SourcePrecondition)
		} else {
			p.setResultCode(model.CodeDependencyUnsatisfied, model.SourcePrecondition)
		}
		return false, nil
	}

	return true, nil
}

// readyForIntent reports whether a unit declares the current intent and all
// of its dependencies satisfy the pass predicate.
func (p *ApplyProcessor) readyForIntent(info *unitInfo, intent config.Intent, check dependencyPredicate) bool {
	if info.unit.Intent != intent {
		return false
	}
	for _, dependencyIndex := range info.dependencyIndices {
		if !check(p.units[dependencyIndex]) {
			return false
		}
	}
	return true
}
