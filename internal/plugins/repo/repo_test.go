package repoplugin

import (
	"context"
	"path/filepath"
	"testing"

	git "github.com/go-git/go-git/v5"
	gitconfig "github.com/go-git/go-git/v5/config"
	"github.com/stretchr/testify/require"

	"github.com/mlaporte/confset/internal/config"
	"github.com/mlaporte/confset/internal/logger"
	"github.com/mlaporte/confset/internal/plugin"
)

func newProcessor(t *testing.T, cfg config.RepoUnit) plugin.UnitProcessor {
	t.Helper()
	proc, err := New(&config.Unit{ID: "dots", Type: "repo", Repo: &cfg}, logger.Discard())
	require.NoError(t, err)
	return proc
}

func initRepo(t *testing.T, dir, remoteURL string) {
	t.Helper()
	repo, err := git.PlainInit(dir, false)
	require.NoError(t, err)

	_, err = repo.CreateRemote(&gitconfig.RemoteConfig{
		Name: "origin",
		URLs: []string{remoteURL},
	})
	require.NoError(t, err)
}

func TestTestSettingsMissingDestinationIsNegative(t *testing.T) {
	t.Parallel()

	destination := filepath.Join(t.TempDir(), "clone")
	proc := newProcessor(t, config.RepoUnit{URL: "https://example.com/dotfiles.git", Destination: destination})

	result, err := proc.TestSettings(context.Background())
	require.NoError(t, err)
	require.Equal(t, plugin.TestNegative, result.Outcome)
}

func TestTestSettingsMatchingRemoteIsPositive(t *testing.T) {
	t.Parallel()

	destination := t.TempDir()
	initRepo(t, destination, "https://example.com/dotfiles.git")

	proc := newProcessor(t, config.RepoUnit{URL: "https://example.com/dotfiles.git", Destination: destination})

	result, err := proc.TestSettings(context.Background())
	require.NoError(t, err)
	require.Equal(t, plugin.TestPositive, result.Outcome)
}

func TestTestSettingsMismatchedRemoteIsFailed(t *testing.T) {
	t.Parallel()

	destination := t.TempDir()
	initRepo(t, destination, "https://example.com/other.git")

	proc := newProcessor(t, config.RepoUnit{URL: "https://example.com/dotfiles.git", Destination: destination})

	result, err := proc.TestSettings(context.Background())
	require.NoError(t, err)
	require.Equal(t, plugin.TestFailed, result.Outcome)
	require.Contains(t, result.Info.Description, "other.git")
}

func TestTestSettingsNonRepoDirectoryIsFailed(t *testing.T) {
	t.Parallel()

	destination := t.TempDir()
	proc := newProcessor(t, config.RepoUnit{URL: "https://example.com/dotfiles.git", Destination: destination})

	result, err := proc.TestSettings(context.Background())
	require.NoError(t, err)
	require.Equal(t, plugin.TestFailed, result.Outcome)
}

func TestGetSettingsReportsCloneState(t *testing.T) {
	t.Parallel()

	destination := t.TempDir()
	proc := newProcessor(t, config.RepoUnit{URL: "https://example.com/dotfiles.git", Destination: destination})

	result, err := proc.GetSettings(context.Background())
	require.NoError(t, err)
	require.Equal(t, false, result.Settings["cloned"])

	initRepo(t, destination, "https://example.com/dotfiles.git")
	result, err = proc.GetSettings(context.Background())
	require.NoError(t, err)
	require.Equal(t, true, result.Settings["cloned"])
	require.Equal(t, "https://example.com/dotfiles.git", result.Settings["url"])
}

func TestApplySettingsEmptyLocalRemoteReportsFailure(t *testing.T) {
	t.Parallel()

	// A bare local repository serves as the remote so the clone needs no
	// network access.
	remote := t.TempDir()
	_, err := git.PlainInit(remote, true)
	require.NoError(t, err)

	destination := filepath.Join(t.TempDir(), "clone")
	proc := newProcessor(t, config.RepoUnit{URL: remote, Destination: destination})

	result, err := proc.ApplySettings(context.Background())
	require.NoError(t, err)
	require.True(t, result.Info.Code.Failed(), "cloning an empty remote reports the git error")
}

func TestRegister(t *testing.T) {
	t.Parallel()

	registry := plugin.NewRegistry(logger.Discard())
	require.NoError(t, Register(registry))
	require.Contains(t, registry.Types(), "repo")
}
