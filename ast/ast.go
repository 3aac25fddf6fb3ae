// Package ast defines the abstract syntax tree representation of Aul code.
//
// Every node owns its children exclusively. When parsing fails part way
// through a construct, the parser moves whatever it already built into a
// BadStmt or BadExpr so tooling can still report on the partial tree.
package ast

import (
	"strings"

	"github.com/aulscript/aul/internal/token"
)

// Node represents a portion of the syntax tree. All nodes have position
// information indicating where they appear in the source code.
type Node interface {
	// Pos returns the position of the first character belonging to the node.
	Pos() token.Position

	// End returns the position of the first character immediately after the node.
	End() token.Position

	// String returns a human friendly representation of the Node. This should
	// be similar to the original source code, but not necessarily identical.
	String() string
}

// Stmt represents a statement node. Statements cause side effects but
// do not evaluate to a value.
type Stmt interface {
	Node
	stmtNode()
}

// Expr represents an expression node. Expressions evaluate to a value
// and may be embedded within other expressions.
type Expr interface {
	Node
	exprNode()
}

// Span records the source range of a node.
type Span struct {
	From token.Position
	To   token.Position
}

func (s Span) Pos() token.Position { return s.From }
func (s Span) End() token.Position { return s.To }

// BadExpr represents an expression containing syntax errors. Children holds
// the parts that were successfully parsed before the error.
type BadExpr struct {
	Span
	Children []Node
}

func (x *BadExpr) exprNode() {}

func (x *BadExpr) String() string { return "<bad expression>" }

// BadStmt represents a statement containing syntax errors. Children holds
// the parts that were successfully parsed before the error.
type BadStmt struct {
	Span
	Children []Node
}

func (x *BadStmt) stmtNode() {}

func (x *BadStmt) String() string { return "<bad statement>" }

// Script is the root node: the ordered top-level declarations of one file.
type Script struct {
	Span
	Decls []Stmt
}

func (s *Script) String() string {
	parts := make([]string, 0, len(s.Decls))
	for _, d := range s.Decls {
		parts = append(parts, d.String())
	}
	return strings.Join(parts, "\n")
}

// Functions returns the function definitions of the script in order.
func (s *Script) Functions() []*FunctionDef {
	var fns []*FunctionDef
	for _, d := range s.Decls {
		if fn, ok := d.(*FunctionDef); ok {
			fns = append(fns, fn)
		}
	}
	return fns
}
