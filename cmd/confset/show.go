package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mlaporte/confset/internal/config"
)

func newShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <set-file>",
		Short: "Show the units of a configuration set",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShow(cmd, args[0])
		},
	}

	return cmd
}

func runShow(cmd *cobra.Command, path string) error {
	set, err := config.ParseSet(path)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s (version %s, %d units)\n", set.Name, set.Version, len(set.Units))
	if set.Description != "" {
		fmt.Fprintln(out, set.Description)
	}

	for i, unit := range set.Units {
		label := unit.ID
		if label == "" {
			label = fmt.Sprintf("(unit %d)", i+1)
		}

		line := fmt.Sprintf("  %-8s %-8s %s", unit.Intent, unit.Type, label)
		if len(unit.DependsOn) > 0 {
			line = fmt.Sprintf("%s <- %s", line, strings.Join(unit.DependsOn, ", "))
		}
		if unit.Skip {
			line += " [skip]"
		}
		fmt.Fprintln(out, line)
	}

	return nil
}
