package sema

import (
	"aster/internal/capability"
	"aster/internal/coreir"
	"aster/internal/diag"
	"aster/internal/source"
	"aster/internal/symbols"
	"aster/internal/types"
)

const (
	aliasVisiting uint8 = iota + 1
	aliasDone
)

// aliasPass resolves alias targets on demand so aliases may refer to names
// declared later in the module. It implements types.Resolver.
type aliasPass struct {
	c       *checker
	builder *types.AliasBuilder
	decls   map[string]int // alias name -> declaration index
	state   map[string]uint8
}

func (p *aliasPass) Resolve(name string) (types.TypeID, bool) {
	if idx, ok := p.decls[name]; ok {
		return p.resolveAlias(name, idx), true
	}
	return p.builder.Resolve(name)
}

func (p *aliasPass) resolveAlias(name string, idx int) types.TypeID {
	switch p.state[name] {
	case aliasDone:
		id, _ := p.builder.Resolve(name)
		return id
	case aliasVisiting:
		restore := p.c.at(idx)
		decl := p.c.mod.Decls[idx]
		p.c.errorf(diag.SemaUnknownType, decl.Pos(), "type alias %q refers to itself", name).
			WithHelp("break the cycle by spelling out the target type").
			Emit()
		restore()
		return p.c.unknown()
	}
	p.state[name] = aliasVisiting
	restore := p.c.at(idx)
	decl := p.c.mod.Decls[idx].(*coreir.AliasDecl)
	id := p.c.resolveType(decl.Target, nil, p, decl.Pos())
	restore()
	p.builder.Set(name, id)
	p.state[name] = aliasDone
	return id
}

// collectTypes registers data, enum and alias names, resolves alias targets
// and data fields, and freezes the alias snapshot used by every body.
func (c *checker) collectTypes() {
	builder := types.NewAliasBuilder(c.types)
	pass := &aliasPass{c: c, builder: builder, decls: map[string]int{}, state: map[string]uint8{}}
	c.typeDecls = make(map[string]typeDecl)
	dataIDs := make(map[int]types.TypeID)

	for i, decl := range c.mod.Decls {
		var id types.TypeID
		switch d := decl.(type) {
		case *coreir.DataDecl:
			id = c.types.RegisterData(d.Name, d.Pos())
			dataIDs[i] = id
		case *coreir.EnumDecl:
			id = c.types.RegisterEnum(d.Name, d.Pos(), d.Variants)
			restore := c.at(i)
			seen := make(map[string]struct{}, len(d.Variants))
			for _, v := range d.Variants {
				if _, dup := seen[v]; dup {
					c.reportDuplicate("enum variant", v, d.Pos(), source.Span{})
				}
				seen[v] = struct{}{}
			}
			restore()
		case *coreir.AliasDecl:
			id = c.unknown()
		default:
			continue
		}
		c.defineTypeName(builder, pass, i, decl, id)
	}

	for i, decl := range c.mod.Decls {
		switch d := decl.(type) {
		case *coreir.AliasDecl:
			if idx, ok := pass.decls[d.Name]; ok && idx == i {
				pass.resolveAlias(d.Name, i)
				continue
			}
			// duplicate alias: still check its target
			restore := c.at(i)
			c.resolveType(d.Target, nil, pass, d.Pos())
			restore()
		case *coreir.DataDecl:
			restore := c.at(i)
			c.types.SetDataFields(dataIDs[i], c.dataFields(d, pass))
			restore()
		}
	}
	c.aliases = builder.Freeze()
}

func (c *checker) defineTypeName(builder *types.AliasBuilder, pass *aliasPass, idx int, decl coreir.Decl, id types.TypeID) {
	name := decl.DeclName()
	restore := c.at(idx)
	defer restore()
	if types.IsPrimitiveName(name) {
		c.errorf(diag.SemaDuplicateSymbol, decl.Pos(), "type %q is a builtin type and cannot be redeclared", name).Emit()
		return
	}
	if !builder.Define(name, id) {
		c.reportDuplicate("type", name, decl.Pos(), c.typeDecls[name].span)
		return
	}
	c.typeDecls[name] = typeDecl{index: idx, span: decl.Pos()}
	if _, ok := decl.(*coreir.AliasDecl); ok {
		pass.decls[name] = idx
	}
}

func (c *checker) dataFields(d *coreir.DataDecl, r types.Resolver) []types.Field {
	fields := make([]types.Field, 0, len(d.Fields))
	seen := make(map[string]source.Span, len(d.Fields))
	for _, f := range d.Fields {
		span := f.Pos().Or(d.Pos())
		if prev, dup := seen[f.Name]; dup {
			c.reportDuplicate("field", f.Name, span, prev)
			continue
		}
		seen[f.Name] = span
		fields = append(fields, types.Field{
			Name: f.Name,
			Type: c.resolveType(f.Type, nil, r, d.Pos()),
			Span: f.Pos(),
		})
	}
	return fields
}

// collectValues binds functions, enum variants and imports in the module
// scope so bodies can call functions declared later.
func (c *checker) collectValues() {
	c.sigs = make(map[*coreir.FuncDecl]*symbols.FunctionSignature)
	for i, decl := range c.mod.Decls {
		restore := c.at(i)
		switch d := decl.(type) {
		case *coreir.FuncDecl:
			sig := c.signatureOf(d)
			c.sigs[d] = sig
			fnType := c.types.RegisterFn(sig.ParamTypes(), sig.Result)
			c.defineGlobal(d.Name, symbols.Symbol{
				Kind:      symbols.SymbolFunction,
				Span:      d.Pos(),
				Type:      fnType,
				Signature: sig,
			}, "function")
		case *coreir.EnumDecl:
			if td, ok := c.typeDecls[d.Name]; !ok || td.index != i {
				break // duplicate enum, already reported
			}
			enumID, _ := c.aliases.Resolve(d.Name)
			for _, v := range d.Variants {
				if sym, exists := c.table.LookupLocal(v); exists && sym.Kind == symbols.SymbolVariant && sym.Type == enumID {
					continue // already reported as a duplicate variant
				}
				c.defineGlobal(v, symbols.Symbol{Kind: symbols.SymbolVariant, Span: d.Pos(), Type: enumID}, "value")
			}
		case *coreir.ImportDecl:
			c.defineGlobal(d.Name, symbols.Symbol{
				Kind:  symbols.SymbolImport,
				Span:  d.Pos(),
				Type:  c.unknown(),
				Flags: symbols.SymbolFlagBuiltin,
			}, "import")
		}
		restore()
	}
}

func (c *checker) defineGlobal(name string, sym symbols.Symbol, what string) {
	_, err := c.table.Define(name, sym)
	if dup, ok := err.(*symbols.DuplicateError); ok {
		c.reportDuplicate(what, name, sym.Span, dup.Span)
	}
}

// signatureOf resolves the declared parameter and result types of fn.
func (c *checker) signatureOf(fn *coreir.FuncDecl) *symbols.FunctionSignature {
	var vars map[string]struct{}
	if len(fn.TypeParams) > 0 {
		vars = make(map[string]struct{}, len(fn.TypeParams))
		for _, tp := range fn.TypeParams {
			vars[tp] = struct{}{}
		}
	}
	sig := &symbols.FunctionSignature{
		Params:       make([]symbols.Param, 0, len(fn.Params)),
		Result:       c.types.Builtins().Unit,
		Effect:       fn.Effect,
		Caps:         capability.NewSet(fn.Caps...),
		CapsDeclared: fn.CapsDeclared,
	}
	for _, p := range fn.Params {
		sig.Params = append(sig.Params, symbols.Param{
			Name: p.Name,
			Type: c.resolveType(p.Type, vars, c.aliases, p.Pos().Or(fn.Pos())),
			Span: p.Pos(),
		})
	}
	if fn.Ret != nil {
		sig.Result = c.resolveType(fn.Ret, vars, c.aliases, fn.Pos())
	}
	return sig
}

// resolveType maps a type node to a TypeID. Unresolvable names report
// UnknownType and become the Unknown placeholder so checking continues.
func (c *checker) resolveType(node coreir.TypeNode, vars map[string]struct{}, r types.Resolver, fallback source.Span) types.TypeID {
	if node == nil {
		return c.unknown()
	}
	span := node.Pos().Or(fallback)
	switch n := node.(type) {
	case *coreir.NameType:
		if _, ok := vars[n.Name]; ok {
			return c.types.Var(n.Name)
		}
		if id, ok := r.Resolve(n.Name); ok {
			return id
		}
		c.errorf(diag.SemaUnknownType, span, "unknown type %q", n.Name).
			WithData("name", n.Name).
			Emit()
		return c.unknown()
	case *coreir.VarType:
		return c.types.Var(n.Name)
	case *coreir.OptionalType:
		elem := c.resolveType(n.Elem, vars, r, span)
		if c.types.KindOf(elem) == types.KindOptional {
			return elem
		}
		return c.types.Optional(elem)
	case *coreir.ListType:
		return c.types.List(c.resolveType(n.Elem, vars, r, span))
	case *coreir.MapType:
		return c.types.Map(c.resolveType(n.Key, vars, r, span), c.resolveType(n.Value, vars, r, span))
	case *coreir.ResultType:
		return c.types.Result(c.resolveType(n.Ok, vars, r, span), c.resolveType(n.Err, vars, r, span))
	case *coreir.FuncType:
		params := make([]types.TypeID, len(n.Params))
		for i, p := range n.Params {
			params[i] = c.resolveType(p, vars, r, span)
		}
		ret := c.types.Builtins().Unit
		if n.Ret != nil {
			ret = c.resolveType(n.Ret, vars, r, span)
		}
		return c.types.RegisterFn(params, ret)
	case *coreir.PiiType:
		return c.types.Pii(c.resolveType(n.Elem, vars, r, span), n.Level, n.Category)
	}
	return c.unknown()
}
