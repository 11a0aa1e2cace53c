package main

import (
	"github.com/spf13/cobra"

	"github.com/mlaporte/confset/internal/plugin"
)

type rootFlags struct {
	verbose bool
}

func newRootCmd(registry *plugin.Registry) *cobra.Command {
	flags := &rootFlags{}

	cmd := &cobra.Command{
		Use:           "confset",
		Short:         "confset applies declarative configuration sets",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "Enable verbose logging")

	cmd.AddCommand(newApplyCmd(flags, registry))
	cmd.AddCommand(newShowCmd())
	cmd.AddCommand(newVersionCmd())

	return cmd
}
