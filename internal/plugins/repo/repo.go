package repoplugin

import (
	"context"
	"fmt"
	"os"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"

	"github.com/mlaporte/confset/internal/config"
	"github.com/mlaporte/confset/internal/logger"
	"github.com/mlaporte/confset/internal/model"
	"github.com/mlaporte/confset/internal/plugin"
	confseterrors "github.com/mlaporte/confset/pkg/errors"
)

type repoProcessor struct {
	unit *config.Unit
	cfg  *config.RepoUnit
	log  *logger.Logger
}

// New creates a unit processor for a repo unit.
func New(unit *config.Unit, log *logger.Logger) (plugin.UnitProcessor, error) {
	if unit.Repo == nil {
		return nil, confseterrors.NewValidationError(unit.ID, "repo settings missing", nil)
	}
	return &repoProcessor{unit: unit, cfg: unit.Repo, log: log}, nil
}

// Register wires the factory into a registry.
func Register(registry *plugin.Registry) error {
	return registry.Register("repo", New)
}

var _ plugin.UnitProcessor = (*repoProcessor)(nil)

// TestSettings checks whether the destination already holds a clone of the
// configured remote.
func (p *repoProcessor) TestSettings(_ context.Context) (plugin.TestResult, error) {
	if _, err := os.Stat(p.cfg.Destination); err != nil {
		if os.IsNotExist(err) {
			return plugin.TestResult{Outcome: plugin.TestNegative}, nil
		}
		return plugin.TestResult{Outcome: plugin.TestFailed, Info: gitFailure(err)}, nil
	}

	repo, err := git.PlainOpen(p.cfg.Destination)
	if err != nil {
		return plugin.TestResult{Outcome: plugin.TestFailed, Info: gitFailure(
			fmt.Errorf("destination %s exists but is not a repository: %w", p.cfg.Destination, err))}, nil
	}

	remote, err := repo.Remote("origin")
	if err != nil {
		return plugin.TestResult{Outcome: plugin.TestFailed, Info: gitFailure(err)}, nil
	}

	urls := remote.Config().URLs
	if len(urls) == 0 || urls[0] != p.cfg.URL {
		actual := ""
		if len(urls) > 0 {
			actual = urls[0]
		}
		return plugin.TestResult{Outcome: plugin.TestFailed, Info: gitFailure(
			fmt.Errorf("destination tracks %q, want %q", actual, p.cfg.URL))}, nil
	}

	return plugin.TestResult{Outcome: plugin.TestPositive}, nil
}

// GetSettings reports the current clone state: remote URL and HEAD.
func (p *repoProcessor) GetSettings(_ context.Context) (plugin.GetResult, error) {
	repo, err := git.PlainOpen(p.cfg.Destination)
	if err != nil {
		return plugin.GetResult{Settings: map[string]any{"cloned": false}}, nil
	}

	settings := map[string]any{"cloned": true}
	if remote, err := repo.Remote("origin"); err == nil && len(remote.Config().URLs) > 0 {
		settings["url"] = remote.Config().URLs[0]
	}
	if head, err := repo.Head(); err == nil {
		settings["head"] = head.Name().Short()
	}

	return plugin.GetResult{Settings: settings}, nil
}

// ApplySettings clones the remote into the destination.
func (p *repoProcessor) ApplySettings(ctx context.Context) (plugin.ApplyResult, error) {
	options := &git.CloneOptions{URL: p.cfg.URL}
	if p.cfg.Depth > 0 {
		options.Depth = p.cfg.Depth
	}
	if p.cfg.Branch != "" {
		options.ReferenceName = plumbing.NewBranchReferenceName(p.cfg.Branch)
		options.SingleBranch = true
	}

	if _, err := git.PlainCloneContext(ctx, p.cfg.Destination, false, options); err != nil {
		return plugin.ApplyResult{Info: gitFailure(err)}, nil
	}

	p.log.Debug("repository cloned")
	return plugin.ApplyResult{}, nil
}

func gitFailure(err error) model.ResultInformation {
	return model.ResultInformation{
		Code:        model.CodeFail,
		Source:      model.SourceUnitProcessing,
		Description: err.Error(),
	}
}
