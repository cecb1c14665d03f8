package coreir

import (
	"strconv"

	"aster/internal/capability"
	"aster/internal/effects"
	"aster/internal/pii"
)

// Statements -----------------------------------------------------------------

func (d *decoder) stmt(v any) Stmt {
	o := d.asObject(v)
	if o == nil {
		return nil
	}
	kind := d.str(o, "kind")
	n := d.node(o)
	switch kind {
	case "let":
		s := &LetStmt{Node: n, Name: d.name(o, "name")}
		if t, ok := o["type"]; ok && t != nil {
			s.Type = d.typeField(o, "type")
		}
		s.Expr = d.exprField(o, "expr")
		return s
	case "set":
		return &SetStmt{Node: n, Name: d.name(o, "name"), Expr: d.exprField(o, "expr")}
	case "return":
		s := &ReturnStmt{Node: n}
		if e, ok := o["expr"]; ok && e != nil {
			s.Expr = d.exprField(o, "expr")
		}
		return s
	case "expr":
		return &ExprStmt{Node: n, Expr: d.exprField(o, "expr")}
	case "if":
		return &IfStmt{
			Node: n,
			Cond: d.exprField(o, "cond"),
			Then: d.reqBlock(o, "then"),
			Else: d.optBlock(o, "else"),
		}
	case "match":
		s := &MatchStmt{Node: n, Expr: d.exprField(o, "expr")}
		for i, it := range d.list(o, "cases", true) {
			d.enterIndex("cases", i)
			if co := d.asObject(it); co != nil {
				s.Cases = append(s.Cases, Case{
					Node:    d.node(co),
					Pattern: d.patternField(co, "pattern"),
					Body:    d.reqBlock(co, "body"),
				})
			}
			d.leave()
		}
		return s
	case "scope", "block":
		return &ScopeStmt{Node: n, Body: d.reqBlock(o, "body")}
	case "start":
		return &StartStmt{Node: n, Name: d.name(o, "name"), Expr: d.exprField(o, "expr")}
	case "wait":
		s := &WaitStmt{Node: n}
		names, ok := d.strList(o, "names")
		if !ok {
			d.failf("missing required field %q", "names")
		}
		s.Names = names
		return s
	case "":
		if d.err != nil {
			return nil
		}
	}
	d.failf("unknown statement kind %q", kind)
	return nil
}

// Expressions ----------------------------------------------------------------

func (d *decoder) exprField(o object, key string) Expr {
	v, ok := o[key]
	if !ok || v == nil {
		d.failf("missing required field %q", key)
		return nil
	}
	d.enter(key)
	defer d.leave()
	return d.expr(v)
}

func (d *decoder) exprList(o object, key string) []Expr {
	items := d.list(o, key, false)
	out := make([]Expr, 0, len(items))
	for i, it := range items {
		d.enterIndex(key, i)
		out = append(out, d.expr(it))
		d.leave()
	}
	return out
}

func (d *decoder) expr(v any) Expr {
	o := d.asObject(v)
	if o == nil {
		return nil
	}
	kind := d.str(o, "kind")
	n := d.node(o)
	switch kind {
	case "name":
		return &NameExpr{Node: n, Name: d.name(o, "name")}
	case "int", "long", "double", "string", "bool", "null":
		return d.literal(o, n, kind)
	case "binary":
		return &BinaryExpr{Node: n, Op: d.name(o, "op"), Left: d.exprField(o, "left"), Right: d.exprField(o, "right")}
	case "unary":
		return &UnaryExpr{Node: n, Op: d.name(o, "op"), Operand: d.exprField(o, "operand")}
	case "call":
		return d.call(o, n)
	case "construct":
		e := &ConstructExpr{Node: n, Type: d.name(o, "type")}
		for i, it := range d.list(o, "fields", false) {
			d.enterIndex("fields", i)
			if fo := d.asObject(it); fo != nil {
				e.Fields = append(e.Fields, FieldInit{Node: d.node(fo), Name: d.name(fo, "name"), Expr: d.exprField(fo, "expr")})
			}
			d.leave()
		}
		return e
	case "member":
		return &MemberExpr{Node: n, Expr: d.exprField(o, "expr"), Field: d.name(o, "field")}
	case "some":
		return &WrapExpr{Node: n, Wrap: WrapSome, Expr: d.exprField(o, "expr")}
	case "ok":
		return &WrapExpr{Node: n, Wrap: WrapOk, Expr: d.exprField(o, "expr")}
	case "err":
		return &WrapExpr{Node: n, Wrap: WrapErr, Expr: d.exprField(o, "expr")}
	case "none":
		return &NoneExpr{Node: n}
	case "list":
		return &ListExpr{Node: n, Items: d.exprList(o, "items")}
	case "await":
		return &AwaitExpr{Node: n, Expr: d.exprField(o, "expr")}
	case "":
		if d.err != nil {
			return nil
		}
	}
	d.failf("unknown expression kind %q", kind)
	return nil
}

func (d *decoder) literal(o object, n Node, kind string) *LiteralExpr {
	lit := &LiteralExpr{Node: n}
	raw, ok := o["value"]
	if kind != "null" && (!ok || raw == nil) {
		d.failf("missing required field %q", "value")
		return lit
	}
	switch kind {
	case "int", "long":
		lit.Kind = LitInt
		if kind == "long" {
			lit.Kind = LitLong
		}
		i, ok := toInt64(raw)
		if !ok {
			d.failf("%s literal: expected integer, got %s", kind, describe(raw))
		}
		lit.Int = i
	case "double":
		lit.Kind = LitDouble
		f, ok := toFloat64(raw)
		if !ok {
			d.failf("double literal: expected number, got %s", describe(raw))
		}
		lit.Double = f
	case "string":
		lit.Kind = LitString
		s, ok := raw.(string)
		if !ok {
			d.failf("string literal: expected string, got %s", describe(raw))
		}
		lit.Text = s
	case "bool":
		lit.Kind = LitBool
		b, ok := raw.(bool)
		if !ok {
			d.failf("bool literal: expected bool, got %s", describe(raw))
		}
		lit.Bool = b
	default:
		lit.Kind = LitNull
	}
	return lit
}

func (d *decoder) call(o object, n Node) *CallExpr {
	c := &CallExpr{Node: n, Target: d.name(o, "target")}
	c.Args = d.exprList(o, "args")
	if label, ok := d.optStr(o, "effect"); ok {
		eff, err := effects.Parse(label)
		if err != nil {
			d.failf("%v", err)
		}
		c.Effect, c.HasEffect = eff, true
	}
	if label, ok := d.optStr(o, "capability"); ok {
		cp, err := capability.Parse(label)
		if err != nil {
			d.failf("%v", err)
		}
		c.Capability = cp
	}
	return c
}

// Patterns -------------------------------------------------------------------

func (d *decoder) patternField(o object, key string) Pattern {
	v, ok := o[key]
	if !ok || v == nil {
		d.failf("missing required field %q", key)
		return nil
	}
	d.enter(key)
	defer d.leave()
	return d.pattern(v)
}

func (d *decoder) pattern(v any) Pattern {
	o := d.asObject(v)
	if o == nil {
		return nil
	}
	kind := d.str(o, "kind")
	n := d.node(o)
	switch kind {
	case "wildcard", "_":
		return &WildcardPattern{Node: n}
	case "name":
		return &NamePattern{Node: n, Name: d.name(o, "name")}
	case "int", "long", "double", "string", "bool", "null":
		return &LiteralPattern{Node: n, Value: d.literal(o, n, kind)}
	case "literal":
		return &LiteralPattern{Node: n, Value: d.exprField(o, "value")}
	case "none":
		return &NonePattern{Node: n}
	case "some":
		return &WrapPattern{Node: n, Wrap: WrapSome, Inner: d.patternField(o, "pattern")}
	case "ok":
		return &WrapPattern{Node: n, Wrap: WrapOk, Inner: d.patternField(o, "pattern")}
	case "err":
		return &WrapPattern{Node: n, Wrap: WrapErr, Inner: d.patternField(o, "pattern")}
	case "ctor":
		p := &CtorPattern{Node: n, Type: d.name(o, "type")}
		for i, it := range d.list(o, "args", false) {
			d.enterIndex("args", i)
			p.Args = append(p.Args, d.pattern(it))
			d.leave()
		}
		return p
	case "":
		if d.err != nil {
			return nil
		}
	}
	d.failf("unknown pattern kind %q", kind)
	return nil
}

// Types ----------------------------------------------------------------------

func (d *decoder) typeField(o object, key string) TypeNode {
	v, ok := o[key]
	if !ok || v == nil {
		d.failf("missing required field %q", key)
		return nil
	}
	d.enter(key)
	defer d.leave()
	return d.typ(v)
}

// typ also accepts a bare string as shorthand for {"kind":"name"}.
func (d *decoder) typ(v any) TypeNode {
	if s, ok := v.(string); ok {
		if s == "" {
			d.failf("empty type name")
		}
		return &NameType{Name: s}
	}
	o := d.asObject(v)
	if o == nil {
		return nil
	}
	kind := d.str(o, "kind")
	n := d.node(o)
	switch kind {
	case "name":
		return &NameType{Node: n, Name: d.name(o, "name")}
	case "var":
		return &VarType{Node: n, Name: d.name(o, "name")}
	case "optional":
		return &OptionalType{Node: n, Elem: d.typeField(o, "type")}
	case "list":
		return &ListType{Node: n, Elem: d.typeField(o, "type")}
	case "map":
		return &MapType{Node: n, Key: d.typeField(o, "key"), Value: d.typeField(o, "value")}
	case "result":
		return &ResultType{Node: n, Ok: d.typeField(o, "ok"), Err: d.typeField(o, "err")}
	case "func":
		t := &FuncType{Node: n}
		for i, it := range d.list(o, "params", false) {
			d.enterIndex("params", i)
			t.Params = append(t.Params, d.typ(it))
			d.leave()
		}
		if r, ok := o["ret"]; ok && r != nil {
			t.Ret = d.typeField(o, "ret")
		}
		return t
	case "pii":
		t := &PiiType{Node: n, Elem: d.typeField(o, "type")}
		t.Level = d.piiLevel(o)
		t.Category, _ = d.optStr(o, "category")
		return t
	case "":
		if d.err != nil {
			return nil
		}
	}
	d.failf("unknown type kind %q", kind)
	return nil
}

func (d *decoder) piiLevel(o object) pii.Level {
	raw, ok := o["level"]
	if !ok || raw == nil {
		d.failf("missing required field %q", "level")
		return pii.LevelNone
	}
	var label string
	switch v := raw.(type) {
	case string:
		label = v
	default:
		i, ok := toInt64(v)
		if !ok {
			d.failf("field %q: expected level, got %s", "level", describe(raw))
			return pii.LevelNone
		}
		label = strconv.FormatInt(i, 10)
	}
	lvl, err := pii.ParseLevel(label)
	if err != nil {
		d.failf("%v", err)
	}
	return lvl
}
