package sema

import (
	"fmt"
	"strings"

	"aster/internal/coreir"
	"aster/internal/diag"
	"aster/internal/effects"
	"aster/internal/pii"
	"aster/internal/source"
	"aster/internal/symbols"
	"aster/internal/types"
)

// value is what the walk infers for one expression.
type value struct {
	typ types.TypeID
	pii *pii.Meta
}

func spanOf(e coreir.Expr, fallback source.Span) source.Span {
	if e == nil {
		return fallback
	}
	return e.Pos().Or(fallback)
}

func (c *checker) reportUndefined(name string, span source.Span) {
	c.errorf(diag.SemaUndefinedSymbol, span, "undefined name %q", name).
		WithData("name", name).
		Emit()
}

// checkExpr infers the type and taint of expr bottom-up, folding effects
// into fc as it goes.
func (c *checker) checkExpr(fc *fnContext, expr coreir.Expr) value {
	if expr == nil {
		return value{typ: c.unknown()}
	}
	b := c.types.Builtins()
	switch e := expr.(type) {
	case *coreir.NameExpr:
		sym, ok := fc.lookup(e.Name)
		if !ok {
			c.reportUndefined(e.Name, e.Pos())
			return value{typ: b.Unknown}
		}
		return value{typ: sym.Type, pii: sym.Pii}

	case *coreir.LiteralExpr:
		return value{typ: c.literalType(e.Kind)}

	case *coreir.BinaryExpr:
		return c.checkBinary(fc, e)

	case *coreir.UnaryExpr:
		return c.checkUnary(fc, e)

	case *coreir.CallExpr:
		return c.checkCall(fc, e)

	case *coreir.ConstructExpr:
		return c.checkConstruct(fc, e)

	case *coreir.MemberExpr:
		return c.checkMember(fc, e)

	case *coreir.WrapExpr:
		inner := c.checkExpr(fc, e.Expr)
		switch e.Wrap {
		case coreir.WrapSome:
			if c.types.KindOf(inner.typ) == types.KindOptional {
				return inner
			}
			return value{typ: c.types.Optional(inner.typ), pii: inner.pii}
		case coreir.WrapOk:
			return value{typ: c.types.Result(inner.typ, b.Unknown), pii: inner.pii}
		default:
			return value{typ: c.types.Result(b.Unknown, inner.typ), pii: inner.pii}
		}

	case *coreir.NoneExpr:
		return value{typ: b.Null}

	case *coreir.ListExpr:
		return c.checkList(fc, e)

	case *coreir.AwaitExpr:
		inner := c.checkExpr(fc, e.Expr)
		fc.raise(effects.Async, e.Pos(), "await")
		return inner
	}
	return value{typ: b.Unknown}
}

func (c *checker) literalType(kind coreir.LitKind) types.TypeID {
	b := c.types.Builtins()
	switch kind {
	case coreir.LitInt:
		return b.Int
	case coreir.LitLong:
		return b.Long
	case coreir.LitDouble:
		return b.Double
	case coreir.LitString:
		return b.Text
	case coreir.LitBool:
		return b.Bool
	case coreir.LitNull:
		return b.Null
	}
	return b.Unknown
}

func (c *checker) checkBinary(fc *fnContext, e *coreir.BinaryExpr) value {
	left := c.checkExpr(fc, e.Left)
	right := c.checkExpr(fc, e.Right)
	meta := pii.Merge(left.pii, right.pii)
	b := c.types.Builtins()

	specs := types.BinarySpecs(e.Op)
	if len(specs) == 0 {
		c.report(diag.SemaInvalidOperands, e.Pos(), "unknown operator %q", e.Op)
		return value{typ: b.Unknown, pii: meta}
	}
	resultOf := func(spec types.BinarySpec) types.TypeID {
		if spec.Result == types.BinaryResultBool {
			return b.Bool
		}
		return c.types.Unwrap(left.typ)
	}
	if c.isOpaque(left.typ) || c.isOpaque(right.typ) {
		if specs[0].Result == types.BinaryResultBool {
			return value{typ: b.Bool, pii: meta}
		}
		return value{typ: b.Unknown, pii: meta}
	}
	lf, rf := c.types.Family(left.typ), c.types.Family(right.typ)
	for _, spec := range specs {
		if !lf.Accepts(spec.Left) || !rf.Accepts(spec.Right) {
			continue
		}
		if spec.Flags&types.BinaryFlagSameKind != 0 && c.types.KindOf(left.typ) != c.types.KindOf(right.typ) {
			continue
		}
		if spec.Flags&types.BinaryFlagCompatible != 0 &&
			!c.types.Compatible(left.typ, right.typ) && !c.types.Compatible(right.typ, left.typ) {
			continue
		}
		return value{typ: resultOf(spec), pii: meta}
	}
	c.errorf(diag.SemaInvalidOperands, e.Pos(), "operator %s cannot be applied to %s and %s",
		e.Op, c.typeLabel(left.typ), c.typeLabel(right.typ)).
		WithData("operator", e.Op).
		WithData("left", c.typeLabel(left.typ)).
		WithData("right", c.typeLabel(right.typ)).
		Emit()
	if specs[0].Result == types.BinaryResultBool {
		return value{typ: b.Bool, pii: meta}
	}
	return value{typ: b.Unknown, pii: meta}
}

func (c *checker) checkUnary(fc *fnContext, e *coreir.UnaryExpr) value {
	operand := c.checkExpr(fc, e.Operand)
	b := c.types.Builtins()
	spec, ok := types.UnarySpecFor(e.Op)
	if !ok {
		c.report(diag.SemaInvalidOperands, e.Pos(), "unknown operator %q", e.Op)
		return value{typ: b.Unknown, pii: operand.pii}
	}
	result := c.types.Unwrap(operand.typ)
	if spec.Result == types.UnaryResultBool {
		result = b.Bool
	}
	if c.isOpaque(operand.typ) {
		return value{typ: result, pii: operand.pii}
	}
	if !c.types.Family(operand.typ).Accepts(spec.Operand) {
		c.report(diag.SemaInvalidOperands, e.Pos(), "operator %s cannot be applied to %s", e.Op, c.typeLabel(operand.typ))
		if spec.Result != types.UnaryResultBool {
			result = b.Unknown
		}
	}
	return value{typ: result, pii: operand.pii}
}

func (c *checker) checkList(fc *fnContext, e *coreir.ListExpr) value {
	elem := c.unknown()
	var meta *pii.Meta
	for i, item := range e.Items {
		v := c.checkExpr(fc, item)
		meta = pii.Merge(meta, v.pii)
		if i == 0 {
			elem = v.typ
			continue
		}
		joined, ok := c.types.Join(elem, v.typ)
		if !ok {
			c.report(diag.SemaTypeMismatch, spanOf(item, e.Pos()), "list items have incompatible types %s and %s",
				c.typeLabel(elem), c.typeLabel(v.typ))
			continue
		}
		elem = joined
	}
	return value{typ: c.types.List(elem), pii: meta}
}

// dataType resolves name to a data type, reporting when it is not one.
func (c *checker) dataType(fc *fnContext, name string, span source.Span) (types.TypeID, *types.DataInfo) {
	id, ok := fc.aliases.Resolve(name)
	if !ok {
		c.errorf(diag.SemaUnknownType, span, "unknown type %q", name).WithData("name", name).Emit()
		return c.unknown(), nil
	}
	info, ok := c.types.DataInfo(c.types.Unwrap(id))
	if !ok {
		if !c.types.IsUnknown(id) {
			c.report(diag.SemaTypeMismatch, span, "%s is not a data type", c.typeLabel(id))
		}
		return c.unknown(), nil
	}
	return c.types.Unwrap(id), info
}

func (c *checker) checkConstruct(fc *fnContext, e *coreir.ConstructExpr) value {
	id, info := c.dataType(fc, e.Type, e.Pos())
	var meta *pii.Meta
	seen := make(map[string]struct{}, len(e.Fields))
	for _, fi := range e.Fields {
		v := c.checkExpr(fc, fi.Expr)
		meta = pii.Merge(meta, v.pii)
		if info == nil {
			continue
		}
		span := fi.Pos().Or(e.Pos())
		if _, dup := seen[fi.Name]; dup {
			c.report(diag.SemaDuplicateSymbol, span, "field %q is initialised more than once", fi.Name)
			continue
		}
		seen[fi.Name] = struct{}{}
		field, ok := info.Field(fi.Name)
		if !ok {
			c.errorf(diag.SemaUnknownField, span, "%s has no field %q", info.Name, fi.Name).
				WithData("type", info.Name).
				WithData("field", fi.Name).
				Emit()
			continue
		}
		if !c.types.Compatible(field.Type, v.typ) {
			c.errorf(diag.SemaTypeMismatch, spanOf(fi.Expr, span), "field %q of %s expects %s, got %s",
				fi.Name, info.Name, c.typeLabel(field.Type), c.typeLabel(v.typ)).
				WithData("expected", c.typeLabel(field.Type)).
				WithData("actual", c.typeLabel(v.typ)).
				Emit()
		}
	}
	if info != nil {
		var missing []string
		for _, f := range info.Fields {
			if _, ok := seen[f.Name]; !ok {
				missing = append(missing, f.Name)
			}
		}
		if len(missing) > 0 {
			c.errorf(diag.SemaMissingField, e.Pos(), "construction of %s is missing %s %s",
				info.Name, plural(len(missing), "field", "fields"), strings.Join(missing, ", ")).
				WithData("type", info.Name).
				WithData("fields", missing).
				Emit()
		}
	}
	return value{typ: id, pii: meta}
}

func (c *checker) checkMember(fc *fnContext, e *coreir.MemberExpr) value {
	base := c.checkExpr(fc, e.Expr)
	if c.types.IsUnknown(base.typ) {
		return value{typ: c.unknown(), pii: base.pii}
	}
	info, ok := c.types.DataInfo(c.types.Unwrap(base.typ))
	if !ok {
		c.report(diag.SemaUnknownField, e.Pos(), "type %s has no field %q", c.typeLabel(base.typ), e.Field)
		return value{typ: c.unknown(), pii: base.pii}
	}
	field, ok := info.Field(e.Field)
	if !ok {
		c.errorf(diag.SemaUnknownField, e.Pos(), "%s has no field %q", info.Name, e.Field).
			WithData("type", info.Name).
			WithData("field", e.Field).
			Emit()
		return value{typ: c.unknown(), pii: base.pii}
	}
	return value{typ: field.Type, pii: pii.Merge(base.pii, c.types.PiiMeta(field.Type))}
}

// isOpaque reports types operators cannot be checked against: the Unknown
// placeholder and type variables.
func (c *checker) isOpaque(id types.TypeID) bool {
	k := c.types.KindOf(id)
	return k == types.KindUnknown || k == types.KindVar
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}

// symbolLabel describes sym for NotCallable messages.
func (c *checker) symbolLabel(sym *symbols.Symbol) string {
	return fmt.Sprintf("%s of type %s", sym.Kind, c.typeLabel(sym.Type))
}
