package coreir

import "aster/internal/source"

// Stmt is a statement inside a function body.
type Stmt interface {
	Pos() source.Span
	stmtNode()
}

// LetStmt introduces a binding; Type is nil when inferred.
type LetStmt struct {
	Node
	Name string
	Type TypeNode
	Expr Expr
}

// SetStmt reassigns an existing binding.
type SetStmt struct {
	Node
	Name string
	Expr Expr
}

// ReturnStmt returns Expr, or Unit when Expr is nil.
type ReturnStmt struct {
	Node
	Expr Expr
}

// ExprStmt evaluates an expression for its effects.
type ExprStmt struct {
	Node
	Expr Expr
}

// IfStmt branches on a Bool condition. Else may be empty.
type IfStmt struct {
	Node
	Cond Expr
	Then []Stmt
	Else []Stmt
}

// Case is one arm of a match.
type Case struct {
	Node
	Pattern Pattern
	Body    []Stmt
}

// MatchStmt dispatches on the shape of Expr.
type MatchStmt struct {
	Node
	Expr  Expr
	Cases []Case
}

// ScopeStmt is a nested block.
type ScopeStmt struct {
	Node
	Body []Stmt
}

// StartStmt launches Expr asynchronously and binds the task handle to Name.
type StartStmt struct {
	Node
	Name string
	Expr Expr
}

// WaitStmt waits for the named tasks.
type WaitStmt struct {
	Node
	Names []string
}

func (*LetStmt) stmtNode()    {}
func (*SetStmt) stmtNode()    {}
func (*ReturnStmt) stmtNode() {}
func (*ExprStmt) stmtNode()   {}
func (*IfStmt) stmtNode()     {}
func (*MatchStmt) stmtNode()  {}
func (*ScopeStmt) stmtNode()  {}
func (*StartStmt) stmtNode()  {}
func (*WaitStmt) stmtNode()   {}

// Pattern is the left side of a match case.
type Pattern interface {
	Pos() source.Span
	patternNode()
}

// WildcardPattern matches anything.
type WildcardPattern struct{ Node }

// NamePattern binds the scrutinee, or matches an enum variant of that name.
type NamePattern struct {
	Node
	Name string
}

// LiteralPattern compares against a literal expression.
type LiteralPattern struct {
	Node
	Value Expr
}

// NonePattern matches an absent optional.
type NonePattern struct{ Node }

// WrapPattern matches some / ok / err and destructures the payload.
type WrapPattern struct {
	Node
	Wrap  WrapKind
	Inner Pattern
}

// CtorPattern destructures a data value positionally over its fields.
type CtorPattern struct {
	Node
	Type string
	Args []Pattern
}

func (*WildcardPattern) patternNode() {}
func (*NamePattern) patternNode()     {}
func (*LiteralPattern) patternNode()  {}
func (*NonePattern) patternNode()     {}
func (*WrapPattern) patternNode()     {}
func (*CtorPattern) patternNode()     {}
