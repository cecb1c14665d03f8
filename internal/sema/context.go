package sema

import (
	"context"
	"errors"

	"aster/internal/capability"
	"aster/internal/coreir"
	"aster/internal/effects"
	"aster/internal/source"
	"aster/internal/symbols"
	"aster/internal/types"
)

// fnContext is the traversal state of one function body. It is created by
// checkFunc and dropped when the body is done; the symbol table scopes it
// pushes are all popped before that.
type fnContext struct {
	c       *checker
	ctx     context.Context
	table   *symbols.Table
	aliases *types.Aliases

	name     string
	decl     *coreir.FuncDecl
	sig      *symbols.FunctionSignature
	expected types.TypeID
	vars     map[string]struct{}

	// effect only grows; effectSite is the node that raised it last.
	effect      effects.Effect
	effectSite  source.Span
	effectCause string
	usedCaps    capability.Set

	scopes []symbols.ScopeID
}

func newFnContext(c *checker, ctx context.Context, fn *coreir.FuncDecl, sig *symbols.FunctionSignature) *fnContext {
	fc := &fnContext{
		c:        c,
		ctx:      ctx,
		table:    c.table,
		aliases:  c.aliases,
		name:     fn.Name,
		decl:     fn,
		sig:      sig,
		expected: sig.Result,
		effect:   effects.Pure,
	}
	if len(fn.TypeParams) > 0 {
		fc.vars = make(map[string]struct{}, len(fn.TypeParams))
		for _, tp := range fn.TypeParams {
			fc.vars[tp] = struct{}{}
		}
	}
	return fc
}

// raise folds e into the running effect. Only a strict increase moves the
// anchor, so the escalation is reported where the final level was reached.
func (fc *fnContext) raise(e effects.Effect, site source.Span, cause string) {
	if !effects.Less(fc.effect, e) {
		return
	}
	fc.effect = effects.Join(fc.effect, e)
	fc.effectSite = site
	fc.effectCause = cause
}

func (fc *fnContext) enter(kind symbols.ScopeKind, span source.Span) {
	fc.scopes = append(fc.scopes, fc.table.EnterScope(kind, span))
}

func (fc *fnContext) exit() {
	top := fc.scopes[len(fc.scopes)-1]
	fc.scopes = fc.scopes[:len(fc.scopes)-1]
	fc.table.ExitScope(top)
}

// scoped runs fn inside a fresh block-like scope.
func (fc *fnContext) scoped(kind symbols.ScopeKind, span source.Span, fn func() bool) bool {
	fc.enter(kind, span)
	defer fc.exit()
	return fn()
}

// define binds name in the innermost scope, reporting DuplicateSymbol on a
// clash within that scope. It returns nil when the name was not bound.
func (fc *fnContext) define(name string, sym symbols.Symbol, what string) *symbols.Symbol {
	id, err := fc.table.Define(name, sym)
	if err != nil {
		var dup *symbols.DuplicateError
		if errors.As(err, &dup) {
			fc.c.reportDuplicate(what, name, sym.Span, dup.Span)
		}
		return nil
	}
	return fc.table.Get(id)
}

func (fc *fnContext) lookup(name string) (*symbols.Symbol, bool) {
	return fc.table.Lookup(name)
}

// resolve turns a type node into a TypeID using the frozen alias snapshot
// and the function's type parameters.
func (fc *fnContext) resolve(node coreir.TypeNode) types.TypeID {
	return fc.c.resolveType(node, fc.vars, fc.aliases, fc.decl.Pos())
}
