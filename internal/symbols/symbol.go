package symbols

import (
	"aster/internal/capability"
	"aster/internal/effects"
	"aster/internal/pii"
	"aster/internal/source"
	"aster/internal/types"
)

// SymbolKind classifies the semantic meaning of a symbol.
type SymbolKind uint8

const (
	SymbolInvalid SymbolKind = iota
	SymbolFunction
	SymbolLet
	SymbolParam
	SymbolVariant // enum variant, a module-level value
	SymbolTask    // handle bound by a start statement
	SymbolImport
)

// SymbolFlags encode misc attributes for quick checks.
type SymbolFlags uint16

const (
	SymbolFlagMutable SymbolFlags = 1 << iota
	SymbolFlagBuiltin
	SymbolFlagAwaited // task handle already waited on
)

func (k SymbolKind) String() string {
	switch k {
	case SymbolFunction:
		return "function"
	case SymbolLet:
		return "let"
	case SymbolParam:
		return "param"
	case SymbolVariant:
		return "variant"
	case SymbolTask:
		return "task"
	case SymbolImport:
		return "import"
	default:
		return "invalid"
	}
}

// Strings returns a slice of textual flag labels.
func (f SymbolFlags) Strings() []string {
	if f == 0 {
		return nil
	}
	labels := make([]string, 0, 3)
	if f&SymbolFlagMutable != 0 {
		labels = append(labels, "mutable")
	}
	if f&SymbolFlagBuiltin != 0 {
		labels = append(labels, "builtin")
	}
	if f&SymbolFlagAwaited != 0 {
		labels = append(labels, "awaited")
	}
	return labels
}

// Symbol describes a named entity available in a scope.
type Symbol struct {
	Name      source.StringID
	Kind      SymbolKind
	Scope     ScopeID
	Depth     int
	Span      source.Span
	Flags     SymbolFlags
	Type      types.TypeID
	Pii       *pii.Meta // taint of the bound value, nil when clean
	Signature *FunctionSignature
}

// Param is one declared function parameter.
type Param struct {
	Name string
	Type types.TypeID
	Span source.Span
}

// FunctionSignature captures what callers need to check a call.
type FunctionSignature struct {
	Params []Param
	Result types.TypeID
	Effect effects.Effect
	// Caps is the declared capability list; CapsDeclared distinguishes an
	// explicit empty list from no list at all.
	Caps         capability.Set
	CapsDeclared bool
}

// Arity is the number of parameters.
func (s *FunctionSignature) Arity() int {
	if s == nil {
		return 0
	}
	return len(s.Params)
}

// ParamTypes lists parameter types in order.
func (s *FunctionSignature) ParamTypes() []types.TypeID {
	if s == nil {
		return nil
	}
	out := make([]types.TypeID, len(s.Params))
	for i, p := range s.Params {
		out[i] = p.Type
	}
	return out
}
