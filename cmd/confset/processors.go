package main

import (
	"github.com/mlaporte/confset/internal/plugin"
	commandplugin "github.com/mlaporte/confset/internal/plugins/command"
	copyplugin "github.com/mlaporte/confset/internal/plugins/copy"
	repoplugin "github.com/mlaporte/confset/internal/plugins/repo"
	symlinkplugin "github.com/mlaporte/confset/internal/plugins/symlink"
)

// registerUnitProcessors wires every built-in unit processor factory into the
// registry.
func registerUnitProcessors(registry *plugin.Registry) error {
	registrations := []func(*plugin.Registry) error{
		commandplugin.Register,
		copyplugin.Register,
		symlinkplugin.Register,
		repoplugin.Register,
	}

	for _, register := range registrations {
		if err := register(registry); err != nil {
			return err
		}
	}
	return nil
}
