package driver

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"aster/internal/coreir"
	"aster/internal/diag"
	"aster/internal/observ"
	"aster/internal/sema"
	"aster/internal/trace"
)

// FileResult is the outcome for one input file, with the code filter
// already applied.
type FileResult struct {
	Path      string
	Module    *coreir.Module
	Bag       *diag.Bag
	Functions []sema.FunctionSummary
}

// IsIRFile reports whether path already holds Core IR rather than source
// that needs the frontend.
func IsIRFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".msgpack", ".mpk":
		return true
	}
	return false
}

// LoadModule reads Core IR from path, running the frontend first for
// source files.
func LoadModule(ctx context.Context, path string, fe Frontend) (*coreir.Module, error) {
	if IsIRFile(path) {
		return coreir.LoadFile(path)
	}
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("read source: %w", err)
	}
	out, err := fe.Emit(ctx, path)
	if err != nil {
		return nil, err
	}
	return coreir.Decode(strings.NewReader(string(out)), coreir.DecodeOptions{Source: path})
}

// Typecheck loads every path, checks the modules concurrently and filters
// the diagnostics. Any load failure aborts the run; semantic problems never
// do. timer may be nil.
func Typecheck(ctx context.Context, paths []string, s Settings, timer *observ.Timer) ([]FileResult, error) {
	runSpan, ctx := trace.Start(ctx, trace.ScopeDriver, "typecheck")
	defer runSpan.End(fmt.Sprintf("%d files", len(paths)))

	done := phase(ctx, timer, "manifest")
	manifest, err := s.LoadManifest()
	done(s.ManifestPath)
	if err != nil {
		return nil, err
	}

	done = phase(ctx, timer, "load")
	mods := make([]*coreir.Module, len(paths))
	for i, path := range paths {
		mod, err := LoadModule(ctx, path, s.Frontend)
		if err != nil {
			done("failed")
			return nil, fmt.Errorf("load %s: %w", path, err)
		}
		mods[i] = mod
	}
	done(fmt.Sprintf("%d modules", len(mods)))

	done = phase(ctx, timer, "check")
	opts := sema.DefaultOptions()
	opts.Manifest = manifest
	opts.LeakThreshold = s.LeakThreshold
	opts.WarnUnusedEffects = s.WarnUnusedEffects
	opts.AuditDeclassify = s.AuditPii
	results, err := sema.CheckModules(ctx, mods, opts, s.Jobs)
	done("")
	if err != nil {
		return nil, err
	}

	done = phase(ctx, timer, "filter")
	keep := diag.CodeFilter(s.FilterCodes)
	out := make([]FileResult, len(results))
	for i, r := range results {
		out[i] = FileResult{
			Path:      paths[i],
			Module:    mods[i],
			Bag:       r.Bag.Filter(keep),
			Functions: r.Functions,
		}
	}
	done(fmt.Sprintf("%d codes", len(s.FilterCodes)))
	return out, nil
}

// phase opens a timer phase and a driver trace span together.
func phase(ctx context.Context, timer *observ.Timer, name string) func(note string) {
	span, _ := trace.Start(ctx, trace.ScopeDriver, name)
	track := timer.Track(name)
	return func(note string) {
		track(note)
		span.End(note)
	}
}
