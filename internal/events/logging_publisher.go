package events

import (
	"github.com/mlaporte/confset/internal/logger"
)

// LoggingPublisher renders each progress event as a structured log entry.
// Used for non-interactive applies where no TUI consumes the stream.
type LoggingPublisher struct {
	log *logger.Logger
}

// NewLoggingPublisher creates a publisher writing through the supplied logger.
func NewLoggingPublisher(log *logger.Logger) *LoggingPublisher {
	return &LoggingPublisher{log: log}
}

func (p *LoggingPublisher) PublishSet(event SetEvent) error {
	if p == nil || p.log == nil {
		return nil
	}
	p.log.WithFields(map[string]any{"state": string(event.State)}).Info("set progress")
	return nil
}

func (p *LoggingPublisher) PublishUnit(event UnitEvent) error {
	if p == nil || p.log == nil {
		return nil
	}

	fields := map[string]any{"state": string(event.State)}
	if event.Unit != nil {
		fields["unit"] = event.Unit.ID
		fields["intent"] = string(event.Unit.Intent)
	}
	if event.Info.Code.Failed() {
		fields["code"] = event.Info.Code.String()
		fields["source"] = string(event.Info.Source)
		if event.Info.Details != "" {
			fields["details"] = event.Info.Details
		}
	}

	p.log.WithFields(fields).Info("unit progress")
	return nil
}
