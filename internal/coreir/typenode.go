package coreir

import (
	"aster/internal/pii"
	"aster/internal/source"
)

// TypeNode is an unresolved type reference as written by the producer.
type TypeNode interface {
	Pos() source.Span
	typeNode()
}

// NameType references a primitive, alias, data or enum by name.
type NameType struct {
	Node
	Name string
}

// VarType references a type parameter.
type VarType struct {
	Node
	Name string
}

// OptionalType is T?.
type OptionalType struct {
	Node
	Elem TypeNode
}

// ListType is List<T>.
type ListType struct {
	Node
	Elem TypeNode
}

// MapType is Map<K, V>.
type MapType struct {
	Node
	Key   TypeNode
	Value TypeNode
}

// ResultType is Result<Ok, Err>.
type ResultType struct {
	Node
	Ok  TypeNode
	Err TypeNode
}

// FuncType is (P...) -> R.
type FuncType struct {
	Node
	Params []TypeNode
	Ret    TypeNode
}

// PiiType marks Elem as sensitive.
type PiiType struct {
	Node
	Elem     TypeNode
	Level    pii.Level
	Category string
}

func (*NameType) typeNode()     {}
func (*VarType) typeNode()      {}
func (*OptionalType) typeNode() {}
func (*ListType) typeNode()     {}
func (*MapType) typeNode()      {}
func (*ResultType) typeNode()   {}
func (*FuncType) typeNode()     {}
func (*PiiType) typeNode()      {}
