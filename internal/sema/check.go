// Package sema is the checking engine: one depth-first walk per module that
// infers types, folds effects, gates capabilities against the manifest and
// propagates PII taint. Every semantic problem becomes a diagnostic; nothing
// in this package returns an error for user code.
package sema

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"aster/internal/capability"
	"aster/internal/coreir"
	"aster/internal/diag"
	"aster/internal/effects"
	"aster/internal/pii"
	"aster/internal/source"
	"aster/internal/symbols"
	"aster/internal/trace"
	"aster/internal/types"
)

// Options configure a check. The zero value is usable: no manifest (every
// capability denied), leak threshold L2, no unused-effect warnings.
type Options struct {
	Manifest *capability.Manifest
	// LeakThreshold is the lowest PII level reported by PiiLeak.
	LeakThreshold     pii.Level
	WarnUnusedEffects bool
	// AuditDeclassify emits PiiDeclassified info diagnostics.
	AuditDeclassify bool
	// Reporter receives every diagnostic in addition to Result.Bag.
	Reporter diag.Reporter
	// Tracer overrides the tracer carried by the context.
	Tracer trace.Tracer
}

// DefaultOptions is what the CLI starts from before applying configuration.
func DefaultOptions() Options {
	return Options{LeakThreshold: pii.L2, WarnUnusedEffects: true}
}

func (o Options) threshold() pii.Level {
	if o.LeakThreshold == pii.LevelNone {
		return pii.L2
	}
	return o.LeakThreshold
}

// FunctionSummary records what the engine learned about one function.
type FunctionSummary struct {
	Name     string
	Span     source.Span
	Declared effects.Effect
	Computed effects.Effect
	// Caps lists the capabilities used at call sites in the body.
	Caps capability.Set
}

// Result holds the outcome of checking one module.
type Result struct {
	Module    string
	Source    string
	Bag       *diag.Bag
	Types     *types.Interner
	Aliases   *types.Aliases
	Functions []FunctionSummary
}

// Diagnostics returns the diagnostics in emission order.
func (r Result) Diagnostics() []diag.Diagnostic {
	if r.Bag == nil {
		return nil
	}
	return r.Bag.Items()
}

// CheckModule checks mod. It never fails: a nil module yields an empty result.
func CheckModule(ctx context.Context, mod *coreir.Module, opts Options) Result {
	if ctx == nil {
		ctx = context.Background()
	}
	if opts.Tracer != nil {
		ctx = trace.WithTracer(ctx, opts.Tracer)
	}
	bag := diag.NewBag(16)
	res := Result{Bag: bag}
	if mod == nil {
		return res
	}
	res.Module, res.Source = mod.Name, mod.Source

	span, ctx := trace.Start(ctx, trace.ScopeModule, "module:"+mod.Name)
	var reporter diag.Reporter = diag.BagReporter{Bag: bag}
	if opts.Reporter != nil {
		reporter = diag.MultiReporter{reporter, opts.Reporter}
	}
	strs := source.NewInterner()
	c := &checker{
		ctx:      ctx,
		mod:      mod,
		opts:     opts,
		reporter: reporter,
		types:    types.NewInterner(strs),
		table:    symbols.NewTable(symbols.Hints{Scopes: 32, Symbols: 64}, strs),
		pending:  make([][]diag.Diagnostic, len(mod.Decls)),
		cur:      -1,
	}
	c.run()

	res.Types, res.Aliases, res.Functions = c.types, c.aliases, c.funcs
	s := bag.Summary()
	span.WithExtra("decls", fmt.Sprint(len(mod.Decls))).
		WithExtra("errors", fmt.Sprint(s.Error)).
		End(fmt.Sprintf("%d diagnostics", s.Total))
	return res
}

// CheckModules checks mods concurrently, at most jobs at a time (jobs <= 0
// means one per module). Each module gets its own symbol table and context;
// the manifest is shared read-only. Results follow input order, and
// opts.Reporter sees every module's diagnostics in that order after all
// checks finished. Cancellation stops modules that have not started yet.
func CheckModules(ctx context.Context, mods []*coreir.Module, opts Options, jobs int) ([]Result, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	results := make([]Result, len(mods))
	outer := opts.Reporter
	opts.Reporter = nil

	g, gctx := errgroup.WithContext(ctx)
	if jobs > 0 {
		g.SetLimit(jobs)
	}
	for i, mod := range mods {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = CheckModule(gctx, mod, opts)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("check modules: %w", err)
	}
	if outer != nil {
		for _, r := range results {
			for _, d := range r.Diagnostics() {
				outer.Report(d)
			}
		}
	}
	return results, nil
}
