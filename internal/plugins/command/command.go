package commandplugin

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/mlaporte/confset/internal/config"
	"github.com/mlaporte/confset/internal/logger"
	"github.com/mlaporte/confset/internal/model"
	"github.com/mlaporte/confset/internal/plugin"
	confseterrors "github.com/mlaporte/confset/pkg/errors"
)

type commandProcessor struct {
	unit *config.Unit
	cfg  *config.CommandUnit
	log  *logger.Logger
}

// New creates a unit processor for a command unit.
func New(unit *config.Unit, log *logger.Logger) (plugin.UnitProcessor, error) {
	if unit.Command == nil {
		return nil, confseterrors.NewValidationError(unit.ID, "command settings missing", nil)
	}
	return &commandProcessor{unit: unit, cfg: unit.Command, log: log}, nil
}

// Register wires the factory into a registry.
func Register(registry *plugin.Registry) error {
	return registry.Register("command", New)
}

var _ plugin.UnitProcessor = (*commandProcessor)(nil)

// TestSettings runs the check command. Exit zero means the system is already
// in the desired state. Without a check command the state is assumed drifted
// so the command always runs on apply.
func (p *commandProcessor) TestSettings(ctx context.Context) (plugin.TestResult, error) {
	if strings.TrimSpace(p.cfg.Check) == "" {
		return plugin.TestResult{Outcome: plugin.TestNegative}, nil
	}

	output, err := p.run(ctx, p.cfg.Check)
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return plugin.TestResult{Outcome: plugin.TestNegative}, nil
		}
		return plugin.TestResult{
			Outcome: plugin.TestFailed,
			Info:    failureInfo(err, output),
		}, nil
	}

	return plugin.TestResult{Outcome: plugin.TestPositive}, nil
}

// GetSettings runs the check command and reports its output as the observed
// state.
func (p *commandProcessor) GetSettings(ctx context.Context) (plugin.GetResult, error) {
	if strings.TrimSpace(p.cfg.Check) == "" {
		return plugin.GetResult{
			Info: model.ResultInformation{
				Code:        model.CodeFail,
				Source:      model.SourceUnitProcessing,
				Description: "no check command configured",
			},
		}, nil
	}

	output, err := p.run(ctx, p.cfg.Check)
	settings := map[string]any{"output": output}
	if err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			return plugin.GetResult{Info: failureInfo(err, output)}, nil
		}
		settings["satisfied"] = false
		return plugin.GetResult{Settings: settings}, nil
	}

	settings["satisfied"] = true
	return plugin.GetResult{Settings: settings}, nil
}

// ApplySettings runs the configured command.
func (p *commandProcessor) ApplySettings(ctx context.Context) (plugin.ApplyResult, error) {
	output, err := p.run(ctx, p.cfg.Command)
	if err != nil {
		return plugin.ApplyResult{Info: failureInfo(err, output)}, nil
	}

	p.log.Debug("command executed")
	return plugin.ApplyResult{}, nil
}

func (p *commandProcessor) run(ctx context.Context, script string) (string, error) {
	shell := p.cfg.Shell
	if shell == "" {
		shell = defaultShell()
	}

	cmd := exec.CommandContext(ctx, shell, "-c", script)
	cmd.Env = buildEnv(p.cfg.Env)
	if p.cfg.WorkDir != "" {
		cmd.Dir = p.cfg.WorkDir
	}

	output, err := cmd.CombinedOutput()
	return strings.TrimSpace(string(output)), err
}

func failureInfo(err error, output string) model.ResultInformation {
	description := err.Error()
	if output != "" {
		description = fmt.Sprintf("%v: %s", err, output)
	}
	return model.ResultInformation{
		Code:        model.CodeFail,
		Source:      model.SourceUnitProcessing,
		Description: description,
	}
}

func defaultShell() string {
	if shell := os.Getenv("SHELL"); shell != "" {
		return shell
	}
	return "/bin/sh"
}

func buildEnv(extra map[string]string) []string {
	env := os.Environ()
	for key, value := range extra {
		env = append(env, fmt.Sprintf("%s=%s", key, value))
	}
	return env
}
