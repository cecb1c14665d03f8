// Package coreir is the in-memory Core IR consumed by the checker together
// with its boundary decoders.
//
// The IR is produced by an external frontend. Decoding is strict: missing
// required fields, unknown node kinds and unknown effect or capability labels
// are contract violations reported as *ContractError before any checking
// starts. Spans are optional everywhere.
package coreir

import (
	"aster/internal/capability"
	"aster/internal/effects"
	"aster/internal/source"
)

// Version is the only IR schema version understood.
const Version = 1

// Node carries the optional source span shared by every IR node.
type Node struct {
	Span source.Span
}

// Pos returns the node span; zero when the producer omitted it.
func (n Node) Pos() source.Span { return n.Span }

// Module is one decoded Core IR document.
type Module struct {
	Version int
	Name    string
	Source  string // input path, used as the report "source"
	Decls   []Decl
}

// Decl is a top-level declaration.
type Decl interface {
	Pos() source.Span
	DeclName() string
	declNode()
}

// Param is a function parameter.
type Param struct {
	Node
	Name string
	Type TypeNode
}

// FuncDecl is a function with a body.
type FuncDecl struct {
	Node
	Name       string
	TypeParams []string
	Params     []Param
	Ret        TypeNode // nil means Unit
	// Effect is the join of the declared effect labels; Pure when absent.
	Effect effects.Effect
	// Caps is the declared capability list; CapsDeclared is false when the
	// producer emitted no list at all.
	Caps         []capability.Capability
	CapsDeclared bool
	Body         []Stmt
}

// Field is a data field declaration.
type Field struct {
	Node
	Name string
	Type TypeNode
}

// DataDecl declares a nominal record.
type DataDecl struct {
	Node
	Name   string
	Fields []Field
}

// EnumDecl declares an enum with named variants.
type EnumDecl struct {
	Node
	Name     string
	Variants []string
}

// AliasDecl binds a name to a type.
type AliasDecl struct {
	Node
	Name   string
	Target TypeNode
}

// ImportDecl brings a namespace name into scope.
type ImportDecl struct {
	Node
	Name string
}

func (*FuncDecl) declNode()   {}
func (*DataDecl) declNode()   {}
func (*EnumDecl) declNode()   {}
func (*AliasDecl) declNode()  {}
func (*ImportDecl) declNode() {}

func (d *FuncDecl) DeclName() string   { return d.Name }
func (d *DataDecl) DeclName() string   { return d.Name }
func (d *EnumDecl) DeclName() string   { return d.Name }
func (d *AliasDecl) DeclName() string  { return d.Name }
func (d *ImportDecl) DeclName() string { return d.Name }
