package coreir

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"fortio.org/safecast"

	"aster/internal/capability"
	"aster/internal/effects"
	"aster/internal/source"
)

type object = map[string]any

// decoder walks a generic document. The first contract violation sticks;
// later calls keep returning placeholders and the caller discards the result.
type decoder struct {
	source string
	path   []string
	err    *ContractError
}

func (d *decoder) failf(format string, args ...any) {
	if d.err != nil {
		return
	}
	d.err = &ContractError{
		Source: d.source,
		Path:   d.pathString(),
		Msg:    fmt.Sprintf(format, args...),
	}
}

func (d *decoder) pathString() string {
	var b strings.Builder
	for i, seg := range d.path {
		if i > 0 && !strings.HasPrefix(seg, "[") {
			b.WriteByte('.')
		}
		b.WriteString(seg)
	}
	return b.String()
}

func (d *decoder) enter(seg string) { d.path = append(d.path, seg) }
func (d *decoder) leave()           { d.path = d.path[:len(d.path)-1] }

func (d *decoder) enterIndex(key string, i int) {
	d.enter(fmt.Sprintf("%s[%d]", key, i))
}

// Generic accessors ----------------------------------------------------------

func describe(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case bool:
		return "bool"
	case []any:
		return "array"
	case map[string]any, map[any]any:
		return "object"
	default:
		return "number"
	}
}

func (d *decoder) asObject(v any) object {
	switch m := v.(type) {
	case map[string]any:
		return m
	case map[any]any:
		out := make(object, len(m))
		for k, val := range m {
			ks, ok := k.(string)
			if !ok {
				d.failf("object key %v is not a string", k)
				return nil
			}
			out[ks] = val
		}
		return out
	}
	d.failf("expected object, got %s", describe(v))
	return nil
}

func (d *decoder) str(o object, key string) string {
	v, ok := o[key]
	if !ok || v == nil {
		d.failf("missing required field %q", key)
		return ""
	}
	s, ok := v.(string)
	if !ok {
		d.failf("field %q: expected string, got %s", key, describe(v))
		return ""
	}
	return s
}

func (d *decoder) optStr(o object, key string) (string, bool) {
	v, ok := o[key]
	if !ok || v == nil {
		return "", false
	}
	s, ok := v.(string)
	if !ok {
		d.failf("field %q: expected string, got %s", key, describe(v))
		return "", false
	}
	return s, true
}

func (d *decoder) name(o object, key string) string {
	s := d.str(o, key)
	if d.err == nil && strings.TrimSpace(s) == "" {
		d.failf("field %q must not be empty", key)
	}
	return s
}

func (d *decoder) list(o object, key string, required bool) []any {
	v, ok := o[key]
	if !ok || v == nil {
		if required {
			d.failf("missing required field %q", key)
		}
		return nil
	}
	items, ok := v.([]any)
	if !ok {
		d.failf("field %q: expected array, got %s", key, describe(v))
		return nil
	}
	return items
}

func (d *decoder) strList(o object, key string) ([]string, bool) {
	items := d.list(o, key, false)
	if _, present := o[key]; !present || o[key] == nil {
		return nil, false
	}
	out := make([]string, 0, len(items))
	for i, it := range items {
		s, ok := it.(string)
		if !ok {
			d.enterIndex(key, i)
			d.failf("expected string, got %s", describe(it))
			d.leave()
			return nil, true
		}
		out = append(out, s)
	}
	return out, true
}

func toInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case json.Number:
		i, err := n.Int64()
		return i, err == nil
	case int:
		return int64(n), true
	case int8:
		return int64(n), true
	case int16:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case uint8:
		return int64(n), true
	case uint16:
		return int64(n), true
	case uint32:
		return int64(n), true
	case uint64:
		i, err := safecast.Conv[int64](n)
		return i, err == nil
	case float64:
		if n == math.Trunc(n) && n >= math.MinInt64 && n <= math.MaxInt64 {
			return int64(n), true
		}
	}
	return 0, false
}

func toFloat64(v any) (float64, bool) {
	switch n := v.(type) {
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case float64:
		return n, true
	case float32:
		return float64(n), true
	}
	if i, ok := toInt64(v); ok {
		return float64(i), true
	}
	return 0, false
}

// Spans ----------------------------------------------------------------------

func (d *decoder) node(o object) Node {
	v, ok := o["span"]
	if !ok || v == nil {
		return Node{}
	}
	d.enter("span")
	defer d.leave()
	so := d.asObject(v)
	if so == nil {
		return Node{}
	}
	file, _ := d.optStr(so, "file")
	if file == "" {
		file = d.source
	}
	return Node{Span: source.Span{
		File:  file,
		Start: d.position(so, "start"),
		End:   d.position(so, "end"),
	}}
}

func (d *decoder) position(o object, key string) source.Position {
	v, ok := o[key]
	if !ok || v == nil {
		return source.Position{}
	}
	d.enter(key)
	defer d.leave()
	po := d.asObject(v)
	if po == nil {
		return source.Position{}
	}
	return source.Position{Line: d.coord(po, "line"), Col: d.coord(po, "col")}
}

func (d *decoder) coord(o object, key string) uint32 {
	v, ok := o[key]
	if !ok || v == nil {
		return 0
	}
	i, ok := toInt64(v)
	if !ok {
		d.failf("field %q: expected integer, got %s", key, describe(v))
		return 0
	}
	u, err := safecast.Conv[uint32](i)
	if err != nil {
		d.failf("field %q: %d out of range", key, i)
		return 0
	}
	return u
}

// Module and declarations ----------------------------------------------------

func (d *decoder) module(v any) *Module {
	mod := &Module{Version: Version}
	o := d.asObject(v)
	if o == nil {
		return mod
	}
	if raw, ok := o["version"]; ok && raw != nil {
		ver, ok := toInt64(raw)
		if !ok || ver != Version {
			d.failf("unsupported IR version %v (want %d)", raw, Version)
			return mod
		}
	}
	mod.Name = d.name(o, "name")
	key := "decls"
	if _, ok := o[key]; !ok {
		if _, alt := o["declarations"]; alt {
			key = "declarations"
		}
	}
	items := d.list(o, key, true)
	mod.Decls = make([]Decl, 0, len(items))
	for i, it := range items {
		d.enterIndex(key, i)
		if decl := d.decl(it); decl != nil {
			mod.Decls = append(mod.Decls, decl)
		}
		d.leave()
		if d.err != nil {
			break
		}
	}
	return mod
}

func (d *decoder) decl(v any) Decl {
	o := d.asObject(v)
	if o == nil {
		return nil
	}
	kind := d.str(o, "kind")
	n := d.node(o)
	switch kind {
	case "func", "fn", "function":
		return d.funcDecl(o, n)
	case "data":
		decl := &DataDecl{Node: n, Name: d.name(o, "name")}
		for i, it := range d.list(o, "fields", false) {
			d.enterIndex("fields", i)
			if fo := d.asObject(it); fo != nil {
				decl.Fields = append(decl.Fields, Field{Node: d.node(fo), Name: d.name(fo, "name"), Type: d.typeField(fo, "type")})
			}
			d.leave()
		}
		return decl
	case "enum":
		decl := &EnumDecl{Node: n, Name: d.name(o, "name")}
		decl.Variants, _ = d.strList(o, "variants")
		return decl
	case "alias", "type":
		return &AliasDecl{Node: n, Name: d.name(o, "name"), Target: d.typeField(o, "type")}
	case "import":
		return &ImportDecl{Node: n, Name: d.name(o, "name")}
	case "":
		if d.err != nil {
			return nil
		}
	}
	d.failf("unknown declaration kind %q", kind)
	return nil
}

func (d *decoder) funcDecl(o object, n Node) *FuncDecl {
	fn := &FuncDecl{Node: n, Name: d.name(o, "name")}
	fn.TypeParams, _ = d.strList(o, "typeParams")
	for i, it := range d.list(o, "params", false) {
		d.enterIndex("params", i)
		if po := d.asObject(it); po != nil {
			fn.Params = append(fn.Params, Param{Node: d.node(po), Name: d.name(po, "name"), Type: d.typeField(po, "type")})
		}
		d.leave()
	}
	if _, ok := o["ret"]; ok && o["ret"] != nil {
		fn.Ret = d.typeField(o, "ret")
	}

	labels, _ := d.strList(o, "effects")
	if single, ok := d.optStr(o, "effect"); ok {
		labels = append(labels, single)
	}
	eff, err := effects.FromLabels(labels)
	if err != nil {
		d.failf("%v", err)
	}
	fn.Effect = eff

	capLabels, declared := d.strList(o, "capabilities")
	fn.CapsDeclared = declared
	for i, l := range capLabels {
		c, err := capability.Parse(l)
		if err != nil {
			d.enterIndex("capabilities", i)
			d.failf("%v", err)
			d.leave()
			break
		}
		fn.Caps = append(fn.Caps, c)
	}

	raw, ok := o["body"]
	if !ok || raw == nil {
		d.failf("missing required field %q", "body")
		return fn
	}
	d.enter("body")
	fn.Body = d.block(raw)
	d.leave()
	return fn
}

// block accepts either {"statements": [...]} or a bare array.
func (d *decoder) block(v any) []Stmt {
	items, ok := v.([]any)
	if !ok {
		o := d.asObject(v)
		if o == nil {
			return nil
		}
		items = d.list(o, "statements", true)
		d.enter("statements")
		defer d.leave()
	}
	out := make([]Stmt, 0, len(items))
	for i, it := range items {
		d.enter(fmt.Sprintf("[%d]", i))
		if s := d.stmt(it); s != nil {
			out = append(out, s)
		}
		d.leave()
		if d.err != nil {
			break
		}
	}
	return out
}

func (d *decoder) optBlock(o object, key string) []Stmt {
	v, ok := o[key]
	if !ok || v == nil {
		return nil
	}
	d.enter(key)
	defer d.leave()
	return d.block(v)
}

func (d *decoder) reqBlock(o object, key string) []Stmt {
	if v, ok := o[key]; !ok || v == nil {
		d.failf("missing required field %q", key)
		return nil
	}
	return d.optBlock(o, key)
}
