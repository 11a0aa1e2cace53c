package copyplugin

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mlaporte/confset/internal/config"
	"github.com/mlaporte/confset/internal/logger"
	"github.com/mlaporte/confset/internal/model"
	"github.com/mlaporte/confset/internal/plugin"
	confseterrors "github.com/mlaporte/confset/pkg/errors"
)

type copyProcessor struct {
	unit *config.Unit
	cfg  *config.CopyUnit
	log  *logger.Logger
}

// New creates a unit processor for a copy unit.
func New(unit *config.Unit, log *logger.Logger) (plugin.UnitProcessor, error) {
	if unit.Copy == nil {
		return nil, confseterrors.NewValidationError(unit.ID, "copy settings missing", nil)
	}
	return &copyProcessor{unit: unit, cfg: unit.Copy, log: log}, nil
}

// Register wires the factory into a registry.
func Register(registry *plugin.Registry) error {
	return registry.Register("copy", New)
}

var _ plugin.UnitProcessor = (*copyProcessor)(nil)

// TestSettings compares destination content with the source.
func (p *copyProcessor) TestSettings(_ context.Context) (plugin.TestResult, error) {
	source, err := os.ReadFile(p.cfg.Source)
	if err != nil {
		return plugin.TestResult{Outcome: plugin.TestFailed, Info: readFailure(err)}, nil
	}

	destination, err := os.ReadFile(p.cfg.Destination)
	if err != nil {
		if os.IsNotExist(err) {
			return plugin.TestResult{Outcome: plugin.TestNegative}, nil
		}
		return plugin.TestResult{Outcome: plugin.TestFailed, Info: readFailure(err)}, nil
	}

	if bytes.Equal(source, destination) {
		return plugin.TestResult{Outcome: plugin.TestPositive}, nil
	}
	return plugin.TestResult{Outcome: plugin.TestNegative}, nil
}

// GetSettings reports whether the destination exists and its size.
func (p *copyProcessor) GetSettings(_ context.Context) (plugin.GetResult, error) {
	info, err := os.Stat(p.cfg.Destination)
	if err != nil {
		if os.IsNotExist(err) {
			return plugin.GetResult{Settings: map[string]any{"exists": false}}, nil
		}
		return plugin.GetResult{Info: readFailure(err)}, nil
	}

	return plugin.GetResult{Settings: map[string]any{
		"exists": true,
		"size":   info.Size(),
		"mode":   info.Mode().String(),
	}}, nil
}

// ApplySettings writes the source content to the destination.
func (p *copyProcessor) ApplySettings(_ context.Context) (plugin.ApplyResult, error) {
	if _, err := os.Stat(p.cfg.Destination); err == nil && !p.cfg.Overwrite {
		return plugin.ApplyResult{Info: model.ResultInformation{
			Code:        model.CodeFail,
			Source:      model.SourceUnitProcessing,
			Description: fmt.Sprintf("destination %s already exists", p.cfg.Destination),
		}}, nil
	}

	source, err := os.ReadFile(p.cfg.Source)
	if err != nil {
		return plugin.ApplyResult{Info: readFailure(err)}, nil
	}

	if err := os.MkdirAll(filepath.Dir(p.cfg.Destination), 0o755); err != nil {
		return plugin.ApplyResult{Info: readFailure(err)}, nil
	}

	if err := os.WriteFile(p.cfg.Destination, source, 0o644); err != nil {
		return plugin.ApplyResult{Info: readFailure(err)}, nil
	}

	p.log.Debug("file copied")
	return plugin.ApplyResult{}, nil
}

func readFailure(err error) model.ResultInformation {
	return model.ResultInformation{
		Code:        model.CodeFail,
		Source:      model.SourceUnitProcessing,
		Description: err.Error(),
	}
}
