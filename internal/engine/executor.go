package engine

import (
	"context"
	"errors"

	"github.com/mlaporte/confset/internal/config"
	"github.com/mlaporte/confset/internal/model"
	"github.com/mlaporte/confset/internal/plugin"
	"github.com/mlaporte/confset/internal/telemetry"
	confseterrors "github.com/mlaporte/confset/pkg/errors"
)

// processUnit drives a single unit through the test/get/test-then-apply
// protocol against the external set processor. The bool is the unit-level
// verdict; a non-nil error is a cancellation aborting the whole apply.
func (p *ApplyProcessor) processUnit(ctx context.Context, info *unitInfo) (bool, error) {
	if err := checkCancelled(ctx); err != nil {
		return false, err
	}

	// Once we get this far the unit counts as processed, even if creating
	// its processor fails.
	info.processed = true

	if !info.unit.ShouldApply() {
		// A requested skip is recorded as a failure so no dependent runs,
		// while the unit itself reports a successful "processing".
		info.result.Info.Set(model.CodeManuallySkipped, model.SourcePrecondition)
		p.sendUnitProgress(model.UnitStateSkipped, info)
		return true, nil
	}

	p.sendUnitProgress(model.UnitStateInProgress, info)
	defer p.sendUnitProgress(model.UnitStateCompleted, info)

	processor, err := p.setProcessor.CreateUnitProcessor(ctx, info.unit)
	if err != nil {
		extractResultInformation(err, info.result.Info)
		return false, nil
	}

	// Creating the processor could take a while; poll again before work.
	if err := checkCancelled(ctx); err != nil {
		return false, err
	}

	ok := false
	action := telemetry.ActionTest

	switch info.unit.Intent {
	case config.IntentAssert:
		action = telemetry.ActionTest
		testResult, err := processor.TestSettings(ctx)
		switch {
		case err != nil:
			extractResultInformation(err, info.result.Info)
		case testResult.Outcome == plugin.TestPositive:
			ok = true
		case testResult.Outcome == plugin.TestNegative:
			info.result.Info.Set(model.CodeAssertionFailed, model.SourcePrecondition)
		case testResult.Outcome == plugin.TestFailed:
			info.result.Info.Adopt(testResult.Info)
		default:
			info.result.Info.Set(model.CodeUnexpected, model.SourceInternal)
		}

	case config.IntentInform:
		// Force the processor to retrieve the settings.
		action = telemetry.ActionGet
		getResult, err := processor.GetSettings(ctx)
		switch {
		case err != nil:
			extractResultInformation(err, info.result.Info)
		case getResult.Info.Code.Succeeded():
			ok = true
		default:
			info.result.Info.Adopt(getResult.Info)
		}

	case config.IntentApply:
		action = telemetry.ActionTest
		testResult, err := processor.TestSettings(ctx)
		switch {
		case err != nil:
			extractResultInformation(err, info.result.Info)
		case testResult.Outcome == plugin.TestPositive:
			info.result.PreviouslyInDesiredState = true
			ok = true
		case testResult.Outcome == plugin.TestNegative:
			// Testing may have taken a while; poll before mutating anything.
			if err := checkCancelled(ctx); err != nil {
				return false, err
			}

			action = telemetry.ActionApply
			applyResult, err := processor.ApplySettings(ctx)
			switch {
			case err != nil:
				extractResultInformation(err, info.result.Info)
			case applyResult.Info.Code.Succeeded():
				info.result.RebootRequired = applyResult.RebootRequired
				ok = true
			default:
				info.result.Info.Adopt(applyResult.Info)
			}
		case testResult.Outcome == plugin.TestFailed:
			info.result.Info.Adopt(testResult.Info)
		default:
			info.result.Info.Set(model.CodeUnexpected, model.SourceInternal)
		}

	default:
		info.result.Info.Set(model.CodeUnexpected, model.SourceInternal)
	}

	p.telemetry.LogUnitRun(telemetry.UnitRecord{
		SetInstanceID: p.set.InstanceID,
		UnitID:        info.unit.ID,
		UnitType:      info.unit.Type,
		Intent:        info.unit.Intent,
		Action:        action,
		Info:          *info.result.Info,
	})
	return ok, nil
}

// extractResultInformation converts an error from the external processor
// into result information. Processor-classified results are adopted
// verbatim, self-classifying errors contribute their own record, and
// everything else defaults to an internal classification.
func extractResultInformation(err error, info *model.ResultInformation) {
	var resultErr *plugin.ResultError
	if errors.As(err, &resultErr) {
		info.Adopt(resultErr.Info)
		return
	}

	var coded confseterrors.ResultCoded
	if errors.As(err, &coded) {
		info.Adopt(coded.ResultInfo())
		return
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		setWithDescription(info, model.CodeCancelled, model.SourceInternal, err.Error())
		return
	}

	setWithDescription(info, model.CodeUnexpected, model.SourceInternal, err.Error())
}

func setWithDescription(info *model.ResultInformation, code model.ResultCode, source model.ResultSource, description string) {
	info.Set(code, source)
	if info.Code == code {
		info.Description = description
	}
}
