package main

import (
	"fmt"
	"os"

	"github.com/mlaporte/confset/internal/logger"
	"github.com/mlaporte/confset/internal/plugin"
)

func main() {
	log, err := logger.New(logger.Options{Level: "info", HumanReadable: true, Writer: os.Stderr})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}

	registry := plugin.NewRegistry(log)
	if err := registerUnitProcessors(registry); err != nil {
		fmt.Fprintf(os.Stderr, "failed to prepare unit processors: %v\n", err)
		os.Exit(1)
	}

	if err := newRootCmd(registry).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
