package sema

import (
	"context"
	"fmt"

	"aster/internal/coreir"
	"aster/internal/diag"
	"aster/internal/effects"
	"aster/internal/source"
	"aster/internal/symbols"
	"aster/internal/trace"
	"aster/internal/types"
)

type checker struct {
	ctx      context.Context
	mod      *coreir.Module
	opts     Options
	reporter diag.Reporter
	types    *types.Interner
	table    *symbols.Table
	aliases  *types.Aliases
	funcs    []FunctionSummary

	// Declaration pre-passes run before bodies are walked; their
	// diagnostics wait in pending[i] and are flushed when declaration i is
	// visited, so the output follows source order.
	pending [][]diag.Diagnostic
	cur     int

	typeDecls map[string]typeDecl
	sigs      map[*coreir.FuncDecl]*symbols.FunctionSignature
}

// typeDecl remembers where a type name was declared.
type typeDecl struct {
	index int
	span  source.Span
}

func (c *checker) run() {
	c.collectTypes()
	c.collectValues()
	for i, decl := range c.mod.Decls {
		c.flush(i)
		fn, ok := decl.(*coreir.FuncDecl)
		if !ok {
			continue
		}
		c.checkFunc(fn, c.sigs[fn])
	}
}

// at makes diagnostics reported during a pre-pass belong to declaration idx.
// It returns a func restoring the previous owner.
func (c *checker) at(idx int) func() {
	prev := c.cur
	c.cur = idx
	return func() { c.cur = prev }
}

func (c *checker) flush(idx int) {
	for _, d := range c.pending[idx] {
		c.reporter.Report(d)
	}
	c.pending[idx] = nil
}

func (c *checker) emit(d diag.Diagnostic) {
	if c.cur >= 0 && c.cur < len(c.pending) {
		c.pending[c.cur] = append(c.pending[c.cur], d)
		return
	}
	c.reporter.Report(d)
}

// pendingReporter routes builder output through emit.
type pendingReporter struct{ c *checker }

func (r pendingReporter) Report(d diag.Diagnostic) { r.c.emit(d) }

func (c *checker) errorf(code diag.Code, span source.Span, format string, args ...any) *diag.ReportBuilder {
	return diag.ReportError(pendingReporter{c}, code, span, fmt.Sprintf(format, args...))
}

func (c *checker) report(code diag.Code, span source.Span, format string, args ...any) {
	c.errorf(code, span, format, args...).Emit()
}

func (c *checker) typeLabel(id types.TypeID) string {
	if id == types.NoTypeID {
		return "Unknown"
	}
	return types.Label(c.types, id)
}

func (c *checker) unknown() types.TypeID { return c.types.Builtins().Unknown }

// reportDuplicate emits DuplicateSymbol with a note at the earlier binding.
func (c *checker) reportDuplicate(what, name string, span, prev source.Span) {
	b := c.errorf(diag.SemaDuplicateSymbol, span, "%s %q is already defined in this scope", what, name)
	if !prev.IsZero() {
		b.WithNote(prev, "previous definition is here")
	}
	b.Emit()
}

// checkFunc walks one function body with a fresh traversal context.
func (c *checker) checkFunc(fn *coreir.FuncDecl, sig *symbols.FunctionSignature) {
	span, ctx := trace.Start(c.ctx, trace.ScopeDecl, "fn:"+fn.Name)
	if sig == nil {
		sig = c.signatureOf(fn)
	}
	fc := newFnContext(c, ctx, fn, sig)
	fc.enter(symbols.ScopeFunction, fn.Pos())
	for i, p := range fn.Params {
		if i >= len(sig.Params) {
			break
		}
		pt := sig.Params[i].Type
		fc.define(p.Name, symbols.Symbol{
			Kind: symbols.SymbolParam,
			Span: p.Pos(),
			Type: pt,
			Pii:  c.types.PiiMeta(pt),
		}, "parameter")
	}

	closed := c.checkBlock(fc, fn.Body)
	if !closed && c.needsReturn(sig.Result) {
		c.errorf(diag.SemaMissingReturn, fn.Pos(), "function %q may finish without returning a value of type %s", fn.Name, c.typeLabel(sig.Result)).
			WithHelp("add a return statement at the end of every path").
			Emit()
	}
	fc.exit()
	fc.finish()

	c.funcs = append(c.funcs, FunctionSummary{
		Name:     fn.Name,
		Span:     fn.Pos(),
		Declared: sig.Effect,
		Computed: fc.effect,
		Caps:     fc.usedCaps,
	})
	span.WithExtra("declared", sig.Effect.String()).End(fc.effect.String())
}

func (c *checker) needsReturn(ret types.TypeID) bool {
	switch c.types.KindOf(ret) {
	case types.KindUnit, types.KindUnknown, types.KindVar:
		return false
	}
	return true
}

// finish compares the declared effect with the computed one. At most one
// diagnostic per function.
func (fc *fnContext) finish() {
	c := fc.c
	declared := fc.sig.Effect
	switch {
	case effects.Less(declared, fc.effect):
		b := c.errorf(diag.EffEscalation, fc.effectSite.Or(fc.decl.Pos()),
			"function %q is declared %s but %s requires %s", fc.name, declared, fc.effectCause, fc.effect).
			WithHelp(fmt.Sprintf("declare the function with effect %s or remove the operation", fc.effect)).
			WithData("function", fc.name).
			WithData("declared", declared.String()).
			WithData("computed", fc.effect.String())
		if !fc.decl.Pos().IsZero() {
			b.WithNote(fc.decl.Pos(), "effect declared here")
		}
		b.Emit()
	case c.opts.WarnUnusedEffects && effects.Less(fc.effect, declared):
		diag.ReportWarning(pendingReporter{c}, diag.EffUnused, fc.decl.Pos(),
			fmt.Sprintf("function %q declares effect %s but only needs %s", fc.name, declared, fc.effect)).
			WithData("function", fc.name).
			WithData("declared", declared.String()).
			WithData("computed", fc.effect.String()).
			Emit()
	}
}
