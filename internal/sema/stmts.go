package sema

import (
	"fmt"

	"aster/internal/coreir"
	"aster/internal/diag"
	"aster/internal/effects"
	"aster/internal/pii"
	"aster/internal/symbols"
	"aster/internal/trace"
	"aster/internal/types"
)

// checkBlock checks stmts in order and reports whether every path through
// them ends in a return.
func (c *checker) checkBlock(fc *fnContext, stmts []coreir.Stmt) bool {
	closed := false
	for _, s := range stmts {
		if c.checkStmt(fc, s) {
			closed = true
		}
	}
	return closed
}

func (c *checker) checkStmt(fc *fnContext, stmt coreir.Stmt) bool {
	switch s := stmt.(type) {
	case *coreir.LetStmt:
		trace.Point(fc.ctx, trace.ScopeNode, "let", s.Name)
		c.checkLet(fc, s)
	case *coreir.SetStmt:
		trace.Point(fc.ctx, trace.ScopeNode, "set", s.Name)
		c.checkSet(fc, s)
	case *coreir.ReturnStmt:
		trace.Point(fc.ctx, trace.ScopeNode, "return", "")
		c.checkReturn(fc, s)
		return true
	case *coreir.ExprStmt:
		c.checkExpr(fc, s.Expr)
	case *coreir.IfStmt:
		trace.Point(fc.ctx, trace.ScopeNode, "if", "")
		return c.checkIf(fc, s)
	case *coreir.MatchStmt:
		trace.Point(fc.ctx, trace.ScopeNode, "match", "")
		return c.checkMatch(fc, s)
	case *coreir.ScopeStmt:
		return fc.scoped(symbols.ScopeBlock, s.Pos(), func() bool {
			return c.checkBlock(fc, s.Body)
		})
	case *coreir.StartStmt:
		trace.Point(fc.ctx, trace.ScopeNode, "start", s.Name)
		c.checkStart(fc, s)
	case *coreir.WaitStmt:
		trace.Point(fc.ctx, trace.ScopeNode, "wait", "")
		c.checkWait(fc, s)
	}
	return false
}

func (c *checker) checkLet(fc *fnContext, s *coreir.LetStmt) {
	val := c.checkExpr(fc, s.Expr)
	typ := val.typ
	meta := val.pii
	if s.Type != nil {
		declared := fc.resolve(s.Type)
		if !c.types.Compatible(declared, val.typ) {
			c.errorf(diag.SemaTypeMismatch, spanOf(s.Expr, s.Pos()),
				"cannot bind a value of type %s to %q of type %s", c.typeLabel(val.typ), s.Name, c.typeLabel(declared)).
				WithData("expected", c.typeLabel(declared)).
				WithData("actual", c.typeLabel(val.typ)).
				Emit()
		}
		typ = declared
		meta = pii.Merge(meta, c.types.PiiMeta(declared))
	} else if c.types.KindOf(typ) == types.KindNull {
		typ = c.types.Optional(c.unknown())
	}
	fc.define(s.Name, symbols.Symbol{
		Kind:  symbols.SymbolLet,
		Span:  s.Pos(),
		Flags: symbols.SymbolFlagMutable,
		Type:  typ,
		Pii:   meta,
	}, "binding")
}

func (c *checker) checkSet(fc *fnContext, s *coreir.SetStmt) {
	val := c.checkExpr(fc, s.Expr)
	sym, ok := fc.lookup(s.Name)
	if !ok {
		c.reportUndefined(s.Name, s.Pos())
		return
	}
	if sym.Flags&symbols.SymbolFlagMutable == 0 && sym.Kind != symbols.SymbolParam {
		c.report(diag.SemaTypeMismatch, s.Pos(), "cannot assign to %s %q", sym.Kind, s.Name)
		return
	}
	if !c.types.Compatible(sym.Type, val.typ) {
		c.errorf(diag.SemaTypeMismatch, spanOf(s.Expr, s.Pos()),
			"cannot assign a value of type %s to %q of type %s", c.typeLabel(val.typ), s.Name, c.typeLabel(sym.Type)).
			WithData("expected", c.typeLabel(sym.Type)).
			WithData("actual", c.typeLabel(val.typ)).
			Emit()
	}
	// taint is flow-insensitive: a binding keeps everything ever stored in it
	sym.Pii = pii.Merge(sym.Pii, val.pii)
}

func (c *checker) checkReturn(fc *fnContext, s *coreir.ReturnStmt) {
	expected := fc.expected
	unit := c.types.KindOf(expected) == types.KindUnit
	if s.Expr == nil {
		if !unit && !c.types.IsUnknown(expected) {
			c.errorf(diag.SemaReturnMismatch, s.Pos(), "function %q must return a value of type %s", fc.name, c.typeLabel(expected)).
				WithData("expected", c.typeLabel(expected)).
				Emit()
		}
		return
	}
	val := c.checkExpr(fc, s.Expr)
	span := spanOf(s.Expr, s.Pos())
	if unit && c.types.KindOf(val.typ) != types.KindUnit && !c.types.IsUnknown(val.typ) {
		c.errorf(diag.SemaReturnMismatch, span, "function %q returns Unit but a value of type %s is returned", fc.name, c.typeLabel(val.typ)).
			WithData("expected", "Unit").
			WithData("actual", c.typeLabel(val.typ)).
			Emit()
		return
	}
	if !c.types.Compatible(expected, val.typ) {
		c.errorf(diag.SemaReturnMismatch, span, "function %q returns %s, got %s", fc.name, c.typeLabel(expected), c.typeLabel(val.typ)).
			WithData("expected", c.typeLabel(expected)).
			WithData("actual", c.typeLabel(val.typ)).
			Emit()
	}
}

func (c *checker) checkIf(fc *fnContext, s *coreir.IfStmt) bool {
	cond := c.checkExpr(fc, s.Cond)
	if k := c.types.KindOf(cond.typ); k != types.KindBool && k != types.KindUnknown {
		c.report(diag.SemaNonBoolCondition, spanOf(s.Cond, s.Pos()), "condition must be Bool, got %s", c.typeLabel(cond.typ))
	}
	thenClosed := fc.scoped(symbols.ScopeBlock, s.Pos(), func() bool {
		return c.checkBlock(fc, s.Then)
	})
	if s.Else == nil {
		return false
	}
	elseClosed := fc.scoped(symbols.ScopeBlock, s.Pos(), func() bool {
		return c.checkBlock(fc, s.Else)
	})
	return thenClosed && elseClosed
}

func (c *checker) checkStart(fc *fnContext, s *coreir.StartStmt) {
	val := c.checkExpr(fc, s.Expr)
	fc.raise(effects.Async, s.Pos(), fmt.Sprintf("start of task %q", s.Name))
	fc.define(s.Name, symbols.Symbol{
		Kind: symbols.SymbolTask,
		Span: s.Pos(),
		Type: val.typ,
		Pii:  val.pii,
	}, "task")
}

func (c *checker) checkWait(fc *fnContext, s *coreir.WaitStmt) {
	fc.raise(effects.Async, s.Pos(), "wait")
	for _, name := range s.Names {
		sym, ok := fc.lookup(name)
		if !ok {
			c.reportUndefined(name, s.Pos())
			continue
		}
		if sym.Kind != symbols.SymbolTask {
			c.report(diag.SemaTypeMismatch, s.Pos(), "%q is a %s, not a task started with start", name, sym.Kind)
			continue
		}
		sym.Flags |= symbols.SymbolFlagAwaited
	}
}
