package sema

import (
	"aster/internal/coreir"
	"aster/internal/diag"
	"aster/internal/pii"
	"aster/internal/source"
	"aster/internal/symbols"
	"aster/internal/types"
)

// coverage tracks which shapes the top-level patterns of a match handle.
type coverage struct {
	catchAll  bool
	none      bool
	some      bool
	ok        bool
	err       bool
	trueSeen  bool
	falseSeen bool
	variants  map[string]struct{}
}

func (cv *coverage) exhaustive(c *checker, scrutinee types.TypeID) bool {
	if cv.catchAll {
		return true
	}
	base := c.types.Unwrap(scrutinee)
	switch c.types.KindOf(base) {
	case types.KindOptional:
		return cv.none && cv.some
	case types.KindResult:
		return cv.ok && cv.err
	case types.KindBool:
		return cv.trueSeen && cv.falseSeen
	case types.KindEnum:
		info, ok := c.types.EnumInfo(base)
		if !ok {
			return false
		}
		for _, v := range info.Variants {
			if _, seen := cv.variants[v]; !seen {
				return false
			}
		}
		return len(info.Variants) > 0
	}
	return false
}

// checkMatch checks every case in its own scope. The match closes the path
// only when every case returns and the patterns are exhaustive.
func (c *checker) checkMatch(fc *fnContext, s *coreir.MatchStmt) bool {
	scrut := c.checkExpr(fc, s.Expr)
	cov := &coverage{variants: map[string]struct{}{}}
	allClosed := len(s.Cases) > 0
	for i := range s.Cases {
		cs := &s.Cases[i]
		closed := fc.scoped(symbols.ScopeMatchArm, cs.Pos().Or(s.Pos()), func() bool {
			c.bindPattern(fc, cs.Pattern, scrut.typ, scrut.pii, cov, cs.Pos().Or(s.Pos()))
			return c.checkBlock(fc, cs.Body)
		})
		allClosed = allClosed && closed
	}
	return allClosed && cov.exhaustive(c, scrut.typ)
}

// bindPattern checks pat against a value of type typ and binds the names it
// introduces in the current scope. cov is nil for nested patterns.
func (c *checker) bindPattern(fc *fnContext, pat coreir.Pattern, typ types.TypeID, meta *pii.Meta, cov *coverage, fallback source.Span) {
	if pat == nil {
		return
	}
	span := pat.Pos().Or(fallback)
	base := c.types.Unwrap(typ)
	kind := c.types.KindOf(base)
	unknown := kind == types.KindUnknown || kind == types.KindVar

	switch p := pat.(type) {
	case *coreir.WildcardPattern:
		if cov != nil {
			cov.catchAll = true
		}

	case *coreir.NamePattern:
		if info, ok := c.types.EnumInfo(base); ok && info.HasVariant(p.Name) {
			if cov != nil {
				cov.variants[p.Name] = struct{}{}
			}
			return
		}
		if sym, ok := fc.lookup(p.Name); ok && sym.Kind == symbols.SymbolVariant {
			if !unknown && !c.types.Compatible(base, sym.Type) {
				c.report(diag.SemaTypeMismatch, span, "variant %q of %s cannot match a value of type %s",
					p.Name, c.typeLabel(sym.Type), c.typeLabel(typ))
			}
			return
		}
		fc.define(p.Name, symbols.Symbol{
			Kind: symbols.SymbolLet,
			Span: span,
			Type: typ,
			Pii:  meta,
		}, "binding")
		if cov != nil {
			cov.catchAll = true
		}

	case *coreir.LiteralPattern:
		lit := c.checkExpr(fc, p.Value)
		if !unknown && !c.types.Compatible(typ, lit.typ) {
			c.report(diag.SemaTypeMismatch, span, "pattern of type %s cannot match a value of type %s",
				c.typeLabel(lit.typ), c.typeLabel(typ))
		}
		if le, ok := p.Value.(*coreir.LiteralExpr); ok && cov != nil {
			switch {
			case le.Kind == coreir.LitBool && le.Bool:
				cov.trueSeen = true
			case le.Kind == coreir.LitBool:
				cov.falseSeen = true
			case le.Kind == coreir.LitNull:
				cov.none = true
			}
		}

	case *coreir.NonePattern:
		if !unknown && kind != types.KindOptional && kind != types.KindNull {
			c.report(diag.SemaTypeMismatch, span, "none cannot match a value of type %s", c.typeLabel(typ))
		}
		if cov != nil {
			cov.none = true
		}

	case *coreir.WrapPattern:
		inner := c.wrapPatternElem(p, base, kind, unknown, span, typ)
		c.bindPattern(fc, p.Inner, inner, meta, nil, span)
		if cov != nil && c.isCatchAll(fc, p.Inner, inner) {
			switch p.Wrap {
			case coreir.WrapSome:
				cov.some = true
			case coreir.WrapOk:
				cov.ok = true
			case coreir.WrapErr:
				cov.err = true
			}
		}

	case *coreir.CtorPattern:
		c.bindCtorPattern(fc, p, typ, meta, cov, span)
	}
}

func (c *checker) wrapPatternElem(p *coreir.WrapPattern, base types.TypeID, kind types.Kind, unknown bool, span source.Span, typ types.TypeID) types.TypeID {
	tt, _ := c.types.Lookup(base)
	switch {
	case unknown:
		return c.unknown()
	case p.Wrap == coreir.WrapSome && kind == types.KindOptional:
		return tt.Elem
	case p.Wrap == coreir.WrapOk && kind == types.KindResult:
		return tt.Elem
	case p.Wrap == coreir.WrapErr && kind == types.KindResult:
		return tt.Key
	}
	c.report(diag.SemaTypeMismatch, span, "%s pattern cannot match a value of type %s", p.Wrap, c.typeLabel(typ))
	return c.unknown()
}

// isCatchAll reports whether pat matches every value of type typ.
func (c *checker) isCatchAll(fc *fnContext, pat coreir.Pattern, typ types.TypeID) bool {
	switch p := pat.(type) {
	case *coreir.WildcardPattern:
		return true
	case *coreir.NamePattern:
		if info, ok := c.types.EnumInfo(c.types.Unwrap(typ)); ok && info.HasVariant(p.Name) {
			return false
		}
		sym, ok := fc.lookup(p.Name)
		return !ok || sym.Kind != symbols.SymbolVariant || sym.Type != c.types.Unwrap(typ)
	}
	return false
}

func (c *checker) bindCtorPattern(fc *fnContext, p *coreir.CtorPattern, typ types.TypeID, meta *pii.Meta, cov *coverage, span source.Span) {
	base := c.types.Unwrap(typ)
	kind := c.types.KindOf(base)
	unknown := kind == types.KindUnknown || kind == types.KindVar

	dataID, ok := fc.aliases.Resolve(p.Type)
	if !ok {
		if info, isEnum := c.types.EnumInfo(base); isEnum && info.HasVariant(p.Type) && len(p.Args) == 0 {
			if cov != nil {
				cov.variants[p.Type] = struct{}{}
			}
			return
		}
		c.errorf(diag.SemaUnknownType, span, "unknown type %q", p.Type).WithData("name", p.Type).Emit()
		for _, arg := range p.Args {
			c.bindPattern(fc, arg, c.unknown(), meta, nil, span)
		}
		return
	}
	info, isData := c.types.DataInfo(dataID)
	if !isData {
		c.report(diag.SemaTypeMismatch, span, "%s is not a data type and cannot be destructured", c.typeLabel(dataID))
		for _, arg := range p.Args {
			c.bindPattern(fc, arg, c.unknown(), meta, nil, span)
		}
		return
	}
	if !unknown && !c.types.Compatible(base, dataID) {
		c.report(diag.SemaTypeMismatch, span, "pattern for %s cannot match a value of type %s", info.Name, c.typeLabel(typ))
	}
	if len(p.Args) > len(info.Fields) {
		c.errorf(diag.SemaArityMismatch, span, "pattern for %s has %d fields, got %d", info.Name, len(info.Fields), len(p.Args)).
			WithData("expected", len(info.Fields)).
			WithData("actual", len(p.Args)).
			Emit()
	}
	all := len(p.Args) == len(info.Fields)
	for i, arg := range p.Args {
		ft := c.unknown()
		if i < len(info.Fields) {
			ft = info.Fields[i].Type
		}
		c.bindPattern(fc, arg, ft, pii.Merge(meta, c.types.PiiMeta(ft)), nil, span)
		all = all && c.isCatchAll(fc, arg, ft)
	}
	if cov != nil && all && (unknown || c.types.Compatible(base, dataID)) {
		cov.catchAll = true
	}
}
