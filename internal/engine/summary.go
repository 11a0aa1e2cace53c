package engine

import (
	"github.com/mlaporte/confset/internal/config"
	"github.com/mlaporte/confset/internal/model"
	"github.com/mlaporte/confset/internal/telemetry"
)

// summaryFor aggregates one intent's outcomes in a single pass over the unit
// table.
func (p *ApplyProcessor) summaryFor(intent config.Intent) telemetry.ProcessingSummary {
	summary := telemetry.ProcessingSummary{Intent: intent}

	for _, info := range p.units {
		if info.unit.Intent != intent {
			continue
		}
		summary.Count++

		if info.processed {
			summary.Run++
			if info.result.Info.Code.Failed() {
				summary.Failed++
			}
		}
	}

	return summary
}

// applySummary assembles the per-apply telemetry record.
func (p *ApplyProcessor) applySummary(code model.ResultCode, source model.ResultSource) telemetry.ApplySummary {
	return telemetry.ApplySummary{
		SetInstanceID: p.set.InstanceID,
		FromHistory:   p.set.FromHistory,
		Intent:        config.IntentApply,
		Code:          code,
		Source:        source,
		Assert:        p.summaryFor(config.IntentAssert),
		Inform:        p.summaryFor(config.IntentInform),
		Apply:         p.summaryFor(config.IntentApply),
	}
}
