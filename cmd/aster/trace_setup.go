package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"aster/internal/trace"
)

type traceOptions struct {
	output string
	level  string
	format string
}

func (o *traceOptions) register(f *pflag.FlagSet) {
	f.StringVar(&o.output, "trace", "", "write trace events to a file (\"-\" for stderr)")
	f.StringVar(&o.level, "trace-level", "off", "trace verbosity (off|phase|detail|debug)")
	f.StringVar(&o.format, "trace-format", "auto", "trace format (auto|text|ndjson|zap)")
}

// setupTracing attaches a tracer built from the trace flags to the command
// context and returns its cleanup function.
func setupTracing(cmd *cobra.Command, o traceOptions) (func(), error) {
	level, err := trace.ParseLevel(o.level)
	if err != nil {
		return nil, usageError{err: err}
	}
	format, err := trace.ParseFormat(o.format)
	if err != nil {
		return nil, usageError{err: err}
	}
	// --trace без уровня включает фазы
	if level == trace.LevelOff && o.output != "" {
		level = trace.LevelPhase
	}
	if level == trace.LevelOff {
		cmd.SetContext(trace.WithTracer(cmd.Context(), trace.Nop))
		return func() {}, nil
	}

	cfg := trace.Config{Level: level, Format: format, OutputPath: o.output}
	if o.output == "" || o.output == "-" {
		cfg.Output = cmd.ErrOrStderr()
	}
	tracer, err := trace.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create tracer: %w", err)
	}
	cmd.SetContext(trace.WithTracer(cmd.Context(), tracer))

	return func() {
		if err := tracer.Flush(); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "trace: flush error: %v\n", err)
		}
		if err := tracer.Close(); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "trace: close error: %v\n", err)
		}
	}, nil
}
