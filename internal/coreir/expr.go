package coreir

import (
	"aster/internal/capability"
	"aster/internal/effects"
	"aster/internal/source"
)

// Expr is an expression node.
type Expr interface {
	Pos() source.Span
	exprNode()
}

// NameExpr references a binding.
type NameExpr struct {
	Node
	Name string
}

// LitKind tells literal flavours apart.
type LitKind uint8

const (
	LitInt LitKind = iota
	LitLong
	LitDouble
	LitString
	LitBool
	LitNull
)

func (k LitKind) String() string {
	switch k {
	case LitInt:
		return "int"
	case LitLong:
		return "long"
	case LitDouble:
		return "double"
	case LitString:
		return "string"
	case LitBool:
		return "bool"
	default:
		return "null"
	}
}

// LiteralExpr is a constant; only the field matching Kind is meaningful.
type LiteralExpr struct {
	Node
	Kind   LitKind
	Int    int64
	Double float64
	Text   string
	Bool   bool
}

// BinaryExpr applies Op to two operands.
type BinaryExpr struct {
	Node
	Op    string
	Left  Expr
	Right Expr
}

// UnaryExpr applies Op to one operand.
type UnaryExpr struct {
	Node
	Op      string
	Operand Expr
}

// CallExpr invokes Target. Dotted targets ("Http.get") are external.
// Effect and Capability are the producer's explicit tags; HasEffect tells
// an explicit Pure apart from no tag, and Capability is capability.Invalid
// when untagged.
type CallExpr struct {
	Node
	Target     string
	Args       []Expr
	Effect     effects.Effect
	HasEffect  bool
	Capability capability.Capability
}

// FieldInit is one named field of a construct expression.
type FieldInit struct {
	Node
	Name string
	Expr Expr
}

// ConstructExpr builds a data value.
type ConstructExpr struct {
	Node
	Type   string
	Fields []FieldInit
}

// MemberExpr reads a field.
type MemberExpr struct {
	Node
	Expr  Expr
	Field string
}

// WrapKind selects the wrapper built by WrapExpr.
type WrapKind uint8

const (
	WrapSome WrapKind = iota
	WrapOk
	WrapErr
)

func (k WrapKind) String() string {
	switch k {
	case WrapSome:
		return "some"
	case WrapOk:
		return "ok"
	default:
		return "err"
	}
}

// WrapExpr is some(x), ok(x) or err(x).
type WrapExpr struct {
	Node
	Wrap WrapKind
	Expr Expr
}

// NoneExpr is the absent optional.
type NoneExpr struct{ Node }

// ListExpr is a list literal.
type ListExpr struct {
	Node
	Items []Expr
}

// AwaitExpr waits for an async result.
type AwaitExpr struct {
	Node
	Expr Expr
}

func (*NameExpr) exprNode()      {}
func (*LiteralExpr) exprNode()   {}
func (*BinaryExpr) exprNode()    {}
func (*UnaryExpr) exprNode()     {}
func (*CallExpr) exprNode()      {}
func (*ConstructExpr) exprNode() {}
func (*MemberExpr) exprNode()    {}
func (*WrapExpr) exprNode()      {}
func (*NoneExpr) exprNode()      {}
func (*ListExpr) exprNode()      {}
func (*AwaitExpr) exprNode()     {}
