package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/mlaporte/confset/internal/config"
	"github.com/mlaporte/confset/internal/engine"
	"github.com/mlaporte/confset/internal/events"
	"github.com/mlaporte/confset/internal/logger"
	"github.com/mlaporte/confset/internal/model"
	"github.com/mlaporte/confset/internal/plugin"
	"github.com/mlaporte/confset/internal/telemetry"
	"github.com/mlaporte/confset/internal/tui"
)

type applyOptions struct {
	SetPath        string
	MetricsAddr    string
	Verbose        bool
	NonInteractive bool
}

var applyCmdRunner = runApply

func newApplyCmd(root *rootFlags, registry *plugin.Registry) *cobra.Command {
	opts := applyOptions{}

	cmd := &cobra.Command{
		Use:   "apply",
		Short: "Apply a configuration set",
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Verbose = root.verbose
			opts.NonInteractive = !term.IsTerminal(int(os.Stdout.Fd()))
			return applyCmdRunner(opts, registry)
		},
	}

	cmd.Flags().StringVarP(&opts.SetPath, "config", "c", "", "Path to configuration set file")
	cmd.Flags().StringVar(&opts.MetricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address for the duration of the apply (e.g. :9184)")
	cmd.MarkFlagRequired("config") //nolint:errcheck

	return cmd
}

func runApply(opts applyOptions, registry *plugin.Registry) error {
	set, err := config.ParseSet(opts.SetPath)
	if err != nil {
		return err
	}

	level := "info"
	if opts.Verbose {
		level = "debug"
	}
	log, err := logger.New(logger.Options{Level: level, HumanReadable: true, Writer: os.Stderr})
	if err != nil {
		return err
	}

	sink, stopMetrics, err := buildTelemetry(opts.MetricsAddr, log)
	if err != nil {
		return err
	}
	defer stopMetrics()

	if opts.NonInteractive {
		return applyPlain(set, registry, log, sink)
	}
	return applyInteractive(set, registry, log, sink)
}

// buildTelemetry assembles the telemetry sinks for one apply run. Records
// always go to the log; with a metrics address they are additionally counted
// and exposed on /metrics until the run finishes.
func buildTelemetry(metricsAddr string, log *logger.Logger) (telemetry.Sink, func(), error) {
	logSink := telemetry.NewLoggingSink(log)
	if metricsAddr == "" {
		return logSink, func() {}, nil
	}

	registry := prometheus.NewRegistry()
	promSink, err := telemetry.NewPrometheusSink(registry)
	if err != nil {
		return nil, nil, err
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	server := &http.Server{Addr: metricsAddr, Handler: mux}

	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error(err, "metrics server stopped")
		}
	}()

	stop := func() {
		server.Close() //nolint:errcheck
	}
	return telemetry.Multi{logSink, promSink}, stop, nil
}

func applyPlain(set *config.Set, registry *plugin.Registry, log *logger.Logger, sink telemetry.Sink) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	processor, err := engine.NewApplyProcessor(engine.Options{
		Set:          set,
		SetProcessor: registry,
		Publisher:    events.NewLoggingPublisher(log),
		Telemetry:    sink,
		Logger:       log,
	})
	if err != nil {
		return err
	}

	result, err := processor.Process(ctx)
	if err != nil {
		return err
	}
	return resultError(result)
}

func applyInteractive(set *config.Set, registry *plugin.Registry, log *logger.Logger, sink telemetry.Sink) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	publisher := events.NewChannelPublisher(len(set.Units)*4 + 8)

	processor, err := engine.NewApplyProcessor(engine.Options{
		Set:          set,
		SetProcessor: registry,
		Publisher:    publisher,
		Telemetry:    sink,
		Logger:       log,
	})
	if err != nil {
		return err
	}

	program := tea.NewProgram(tui.NewModel(set))

	type applyOutcome struct {
		result *model.SetResult
		err    error
	}
	outcome := make(chan applyOutcome, 1)

	go func() {
		result, err := processor.Process(ctx)
		publisher.Close()
		outcome <- applyOutcome{result: result, err: err}
	}()

	go func() {
		for event := range publisher.Events() {
			switch {
			case event.Set != nil:
				program.Send(tui.SetEventMsg{Event: *event.Set})
			case event.Unit != nil:
				program.Send(tui.UnitEventMsg{Event: *event.Unit})
			}
		}

		done := <-outcome
		outcome <- done

		code := model.OK
		if done.result != nil {
			code = done.result.Code
		}
		program.Send(tui.DoneMsg{Code: code, Err: done.err})
	}()

	finalModel, runErr := program.Run()
	if m, ok := finalModel.(tui.Model); ok && m.Cancelled() {
		cancel()
	}

	done := <-outcome
	if runErr != nil {
		return runErr
	}
	if done.err != nil {
		return done.err
	}
	return resultError(done.result)
}

// resultError maps a failed aggregate code onto the process exit path.
func resultError(result *model.SetResult) error {
	if result == nil || result.Code.Succeeded() {
		return nil
	}
	return fmt.Errorf("apply failed: %s", result.Code)
}
