package telemetry

import (
	"github.com/mlaporte/confset/internal/logger"
)

// LoggingSink writes telemetry records as structured log entries.
type LoggingSink struct {
	log *logger.Logger
}

// NewLoggingSink creates a sink writing through the supplied logger.
func NewLoggingSink(log *logger.Logger) *LoggingSink {
	return &LoggingSink{log: log}
}

func (s *LoggingSink) LogUnitRun(record UnitRecord) {
	if s == nil || s.log == nil {
		return
	}

	fields := map[string]any{
		"set":    record.SetInstanceID,
		"unit":   record.UnitID,
		"type":   record.UnitType,
		"intent": string(record.Intent),
		"action": record.Action,
		"code":   record.Info.Code.String(),
	}
	if record.Info.Source != "" {
		fields["source"] = string(record.Info.Source)
	}
	if record.Info.Description != "" {
		fields["description"] = record.Info.Description
	}

	s.log.WithFields(fields).Info("unit run")
}

func (s *LoggingSink) LogApplySummary(summary ApplySummary) {
	if s == nil || s.log == nil {
		return
	}

	s.log.WithFields(map[string]any{
		"set":           summary.SetInstanceID,
		"from_history":  summary.FromHistory,
		"intent":        string(summary.Intent),
		"code":          summary.Code.String(),
		"source":        string(summary.Source),
		"assert_count":  summary.Assert.Count,
		"assert_run":    summary.Assert.Run,
		"assert_failed": summary.Assert.Failed,
		"inform_count":  summary.Inform.Count,
		"inform_run":    summary.Inform.Run,
		"inform_failed": summary.Inform.Failed,
		"apply_count":   summary.Apply.Count,
		"apply_run":     summary.Apply.Run,
		"apply_failed":  summary.Apply.Failed,
	}).Info("apply summary")
}
