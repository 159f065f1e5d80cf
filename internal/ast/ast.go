// Package ast defines the tagged syntax tree the loader builds once per file.
package ast

import (
	"mslash/internal/span"
	"mslash/internal/token"

	"github.com/samber/mo"
)

// ============================================================
// Node interfaces
// ============================================================

// Node is the interface implemented by all AST nodes.
type Node interface {
	nodeNode()
	GetSpan() span.Span
}

// Expr is the interface for expression nodes.
type Expr interface {
	Node
	exprNode()
}

// Stmt is the interface for statement nodes.
type Stmt interface {
	Node
	stmtNode()
}

// Decl is the interface for file-level declarations, kept in textual order.
type Decl interface {
	Node
	declNode()
}

// ============================================================
// Base types (embedded to provide common fields)
// ============================================================

// NodeBase provides the common Span field for all AST nodes.
type NodeBase struct {
	Span span.Span
}

func (n NodeBase) nodeNode()          {}
func (n NodeBase) GetSpan() span.Span { return n.Span }

// ExprBase is embedded by all expression nodes.
type ExprBase struct{ NodeBase }

func (ExprBase) exprNode() {}

// StmtBase is embedded by all statement nodes.
type StmtBase struct{ NodeBase }

func (StmtBase) stmtNode() {}

// DeclBase is embedded by all declaration nodes.
type DeclBase struct{ NodeBase }

func (DeclBase) declNode() {}

// ============================================================
// Program (per-file root)
// ============================================================

// Program is one loaded script file: its declarations in textual order and
// the main-program statements left after extraction.
type Program struct {
	NodeBase
	File  string
	Decls []Decl
	Main  []Stmt
}

// ============================================================
// Declarations
// ============================================================

// FuncDef is a function or method declaration.
type FuncDef struct {
	DeclBase
	Name   string
	Params []string
	Body   []Stmt
}

// ClassDef is a class declaration with its method table.
type ClassDef struct {
	DeclBase
	Name    string
	Methods map[string]*FuncDef
	Order   []string // method names in declaration order
}

// StealDecl is a `steal <Symbol> from <Path>` directive.
type StealDecl struct {
	DeclBase
	Symbol string
	Path   string
}

// ============================================================
// Expressions
// ============================================================

// IdentExpr represents a variable or function name.
type IdentExpr struct {
	ExprBase
	Name string
}

// IntLiteral represents an integer literal.
type IntLiteral struct {
	ExprBase
	Value int64
}

// FloatLiteral represents a floating-point literal.
type FloatLiteral struct {
	ExprBase
	Value float64
}

// StringLiteral represents a string literal without interpolation.
type StringLiteral struct {
	ExprBase
	Value string
}

// TemplateLiteral is a string with ${...} segments.
// Parts always has len(Exprs)+1 elements.
type TemplateLiteral struct {
	ExprBase
	Parts []string
	Exprs []Expr
}

// BoolLiteral represents true or false.
type BoolLiteral struct {
	ExprBase
	Value bool
}

// NoneLiteral represents none.
type NoneLiteral struct {
	ExprBase
}

// ListLiteral represents [a, b, c].
type ListLiteral struct {
	ExprBase
	Elements []Expr
}

// MapLiteral represents ("k": v, ...).
type MapLiteral struct {
	ExprBase
	Keys   []Expr
	Values []Expr
}

// UnaryExpr represents a unary operation: -x, not x.
type UnaryExpr struct {
	ExprBase
	Op      token.Kind
	Operand Expr
}

// BinaryExpr represents a binary operation: a + b, x == y.
type BinaryExpr struct {
	ExprBase
	Op    token.Kind
	Left  Expr
	Right Expr
}

// CallExpr represents a call: f(args) or obj.method(args).
type CallExpr struct {
	ExprBase
	Callee Expr
	Args   []Expr
}

// MemberExpr represents field access: obj.field.
type MemberExpr struct {
	ExprBase
	Object   Expr
	Property string
}

// IndexExpr represents xs[i] or m["k"].
type IndexExpr struct {
	ExprBase
	Object Expr
	Index  Expr
}

// NewExpr represents new ClassName(args).
type NewExpr struct {
	ExprBase
	ClassName string
	Args      []Expr
}

// ============================================================
// Statements
// ============================================================

// AssignStmt is `var target = value` (or the bare `target = value`).
// Target is an *IdentExpr, *MemberExpr or *IndexExpr.
type AssignStmt struct {
	StmtBase
	Target Expr
	Value  Expr
}

// SayStmt prints Value.
type SayStmt struct {
	StmtBase
	Value Expr
}

// MathStmt evaluates Value and prints the result.
type MathStmt struct {
	StmtBase
	Value Expr
}

// InputStmt reads a console line into Name.
type InputStmt struct {
	StmtBase
	Name string
}

// EmptyLineStmt writes Count blank lines.
type EmptyLineStmt struct {
	StmtBase
	Count Expr
}

// PauseStmt waits for an acknowledgment from the console.
type PauseStmt struct {
	StmtBase
}

// BreakStmt terminates the whole run.
type BreakStmt struct {
	StmtBase
}

// ReturnStmt ends the current call. Value is nil for a bare return.
type ReturnStmt struct {
	StmtBase
	Value Expr
}

// HelpStmt prints the language summary.
type HelpStmt struct {
	StmtBase
}

// ExprStmt is a call evaluated for its side effects.
type ExprStmt struct {
	StmtBase
	Expr Expr
}

// IfStmt is if/else/endif.
type IfStmt struct {
	StmtBase
	Condition Expr
	Then      []Stmt
	Else      mo.Option[[]Stmt]
}

// LoopStmt is loop <count>/endloop.
type LoopStmt struct {
	StmtBase
	Count Expr
	Body  []Stmt
}
