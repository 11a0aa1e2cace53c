package symlinkplugin

import (
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

type symlinkProcessor struct {
	unit *config.Unit
	cfg  *config.SymlinkUnit
	log  *logger.Logger
}

// New creates a unit processor for a symlink unit.
func New(unit *config.Unit, log *logger.Logger) (plugin.UnitProcessor, error) {
	if unit.Symlink == nil {
		return nil, confseterrors.NewValidationError(unit.ID, "symlink settings missing", nil)
	}
	return &symlinkProcessor{unit: unit, cfg: unit.Symlink, log: log}, nil
}

// Register wires the factory into a registry.
func Register(registry *plugin.Registry) error {
	return registry.Register("symlink", New)
}

var _ plugin.UnitProcessor = (*symlinkProcessor)(nil)

// TestSettings checks whether the target is a symlink pointing at the source.
func (p *symlinkProcessor) TestSettings(_ context.Context) (plugin.TestResult, error) {
	info, err := os.Lstat(p.cfg.Target)
	if err != nil {
		return plugin.TestResult{Outcome: plugin.TestNegative}, nil
	}

	if info.Mode()&os.ModeSymlink == 0 {
		return plugin.TestResult{Outcome: plugin.TestNegative}, nil
	}

	target, err := os.Readlink(p.cfg.Target)
	if err != nil {
		return plugin.TestResult{Outcome: plugin.TestFailed, Info: linkFailure(err)}, nil
	}

	if target == p.cfg.Source {
		return plugin.TestResult{Outcome: plugin.TestPositive}, nil
	}
	return plugin.TestResult{Outcome: plugin.TestNegative}, nil
}

// GetSettings reports the current link target, if any.
func (p *symlinkProcessor) GetSettings(_ context.Context) (plugin.GetResult, error) {
	target, err := os.Readlink(p.cfg.Target)
	if err != nil {
		return plugin.GetResult{Settings: map[string]any{"exists": false}}, nil
	}
	return plugin.GetResult{Settings: map[string]any{"exists": true, "target": target}}, nil
}

// ApplySettings creates the link, replacing an existing target only when
// forced.
func (p *symlinkProcessor) ApplySettings(_ context.Context) (plugin.ApplyResult, error) {
	if err := os.MkdirAll(filepath.Dir(p.cfg.Target), 0o755); err != nil {
		return plugin.ApplyResult{Info: linkFailure(err)}, nil
	}

	if _, err := os.Lstat(p.cfg.Target); err == nil {
		if !p.cfg.Force {
			return plugin.ApplyResult{Info: model.ResultInformation{
				Code:        model.CodeFail,
				Source:      model.SourceUnitProcessing,
				Description: fmt.Sprintf("target %s already exists", p.cfg.Target),
			}}, nil
		}
		if err := os.Remove(p.cfg.Target); err != nil {
			return plugin.ApplyResult{Info: linkFailure(err)}, nil
		}
	}

	if err := os.Symlink(p.cfg.Source, p.cfg.Target); err != nil {
		return plugin.ApplyResult{Info: linkFailure(err)}, nil
	}

	p.log.Debug("symlink created")
	return plugin.ApplyResult{}, nil
}

func linkFailure(err error) model.ResultInformation {
	return model.ResultInformation{
		Code:        model.CodeFail,
		Source:      model.SourceUnitProcessing,
		Description: err.Error(),
	}
}
