package main

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"aster/internal/diagfmt"
	"aster/internal/driver"
	"aster/internal/observ"
	"aster/internal/project"
)

type typecheckOptions struct {
	format         string
	filterCodes    []string
	manifest       string
	leakThreshold  string
	warnUnused     bool
	auditPii       bool
	jobs           int
	maxDiagnostics int
	pathMode       string
	timings        bool
	trace          traceOptions
}

func newTypecheckCmd() *cobra.Command {
	var opts typecheckOptions
	cmd := &cobra.Command{
		Use:   "typecheck <file> [file...]",
		Short: "Check Core IR modules for type, effect, capability and PII errors",
		Long: `Typecheck loads each file (Core IR as .json or .msgpack, or source passed
through the configured frontend) and reports diagnostics. Diagnostics never
change the exit status; only failures to load or configure do.`,
		Args: func(_ *cobra.Command, args []string) error {
			if len(args) == 0 {
				return usagef("typecheck requires at least one file")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTypecheck(cmd, args, &opts)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.format, "format", "json", "output format (json|pretty)")
	f.StringSliceVar(&opts.filterCodes, "filter-codes", nil, "only report these codes (IDs or names, comma-separated)")
	f.StringVar(&opts.manifest, "manifest", "", "capability manifest (overrides $ASTER_CAPS)")
	f.StringVar(&opts.leakThreshold, "leak-threshold", "L2", "lowest PII level reported at sinks (L1|L2|L3)")
	f.BoolVar(&opts.warnUnused, "warn-unused-effects", true, "warn when a declared effect is stronger than needed")
	f.BoolVar(&opts.auditPii, "audit-pii", false, "report every declassification as info")
	f.IntVar(&opts.jobs, "jobs", 0, "modules checked in parallel (0 = GOMAXPROCS)")
	f.IntVar(&opts.maxDiagnostics, "max-diagnostics", 0, "maximum number of diagnostics per file in JSON output (0 = all)")
	f.StringVar(&opts.pathMode, "path-mode", "auto", "how to print file paths (auto|absolute|relative|basename)")
	f.BoolVar(&opts.timings, "timings", false, "print phase timings to stderr")
	opts.trace.register(f)
	return cmd
}

// collectFlags passes only the flags the user actually set, so the
// environment and aster.toml can fill the rest.
func collectFlags(cmd *cobra.Command, opts *typecheckOptions) driver.Flags {
	var flags driver.Flags
	f := cmd.Flags()
	if f.Changed("manifest") {
		flags.Manifest = &opts.manifest
	}
	if f.Changed("leak-threshold") {
		flags.LeakThreshold = &opts.leakThreshold
	}
	if f.Changed("warn-unused-effects") {
		flags.WarnUnusedEffects = &opts.warnUnused
	}
	if f.Changed("audit-pii") {
		flags.AuditPii = &opts.auditPii
	}
	if f.Changed("jobs") {
		flags.Jobs = &opts.jobs
	}
	if f.Changed("filter-codes") {
		flags.FilterCodes = opts.filterCodes
	}
	return flags
}

func runTypecheck(cmd *cobra.Command, args []string, opts *typecheckOptions) error {
	format := strings.ToLower(opts.format)
	if format != "json" && format != "pretty" {
		return usagef("unsupported format %q (must be json or pretty)", opts.format)
	}
	pathMode, ok := diagfmt.ParsePathMode(opts.pathMode)
	if !ok {
		return usagef("invalid --path-mode value %q", opts.pathMode)
	}
	if opts.maxDiagnostics < 0 {
		return usagef("--max-diagnostics must not be negative")
	}
	out := cmd.OutOrStdout()
	colored, err := useColor(cmd, out)
	if err != nil {
		return err
	}

	cleanup, err := setupTracing(cmd, opts.trace)
	if err != nil {
		return err
	}
	defer cleanup()

	startDir, err := filepath.Abs(filepath.Dir(args[0]))
	if err != nil {
		return fmt.Errorf("resolve %s: %w", args[0], err)
	}
	cfg, _, err := project.Discover(startDir)
	if err != nil {
		return err
	}
	settings, err := driver.ResolveSettings(collectFlags(cmd, opts), nil, cfg)
	if err != nil {
		return err
	}

	var timer *observ.Timer
	if opts.timings {
		timer = observ.NewTimer()
	}
	results, err := driver.Typecheck(cmd.Context(), args, settings, timer)
	if err != nil {
		return err
	}

	baseDir := ""
	if cfg != nil {
		baseDir = cfg.Root
	}
	done := timer.Track("render")
	err = render(out, results, format, colored, diagfmt.JSONOpts{
		PathMode: pathMode,
		BaseDir:  baseDir,
		Max:      opts.maxDiagnostics,
		Indent:   len(results) == 1,
	})
	done(format)
	if err != nil {
		return err
	}
	if timer != nil {
		fmt.Fprint(cmd.ErrOrStderr(), timer.Summary())
	}
	return nil
}

// render writes one report per file in argument order. Several JSON
// reports are written one per line.
func render(w io.Writer, results []driver.FileResult, format string, colored bool, jsonOpts diagfmt.JSONOpts) error {
	for _, r := range results {
		if format == "pretty" {
			err := diagfmt.Pretty(w, r.Path, r.Bag, diagfmt.PrettyOpts{
				Color:     colored,
				PathMode:  jsonOpts.PathMode,
				BaseDir:   jsonOpts.BaseDir,
				ShowNotes: true,
				ShowHelp:  true,
			})
			if err != nil {
				return err
			}
			continue
		}
		report := diagfmt.BuildReport(r.Path, r.Bag, jsonOpts)
		if err := diagfmt.JSON(w, report, jsonOpts); err != nil {
			return err
		}
	}
	return nil
}
