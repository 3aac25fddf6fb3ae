package ast

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/aulscript/aul/op"
	"github.com/aulscript/aul/symbol"
	"github.com/aulscript/aul/value"
)

// IntLiteral is an integer constant.
type IntLiteral struct {
	Span
	Value int32
}

func (x *IntLiteral) exprNode() {}

func (x *IntLiteral) String() string { return strconv.Itoa(int(x.Value)) }

// BoolLiteral is true or false.
type BoolLiteral struct {
	Span
	Value bool
}

func (x *BoolLiteral) exprNode() {}

func (x *BoolLiteral) String() string { return strconv.FormatBool(x.Value) }

// StringLiteral is a string constant. Str is its string table handle.
type StringLiteral struct {
	Span
	Value string
	Str   int
}

func (x *StringLiteral) exprNode() {}

func (x *StringLiteral) String() string { return strconv.Quote(x.Value) }

// IDLiteral is a packed four character definition id.
type IDLiteral struct {
	Span
	Value uint32
}

func (x *IDLiteral) exprNode() {}

func (x *IDLiteral) String() string { return value.UnpackID(x.Value) }

// NilLiteral is nil.
type NilLiteral struct {
	Span
}

func (x *NilLiteral) exprNode() {}

func (x *NilLiteral) String() string { return "nil" }

// ArrayLiteral is [a, b, c].
type ArrayLiteral struct {
	Span
	Elems []Expr
}

func (x *ArrayLiteral) exprNode() {}

func (x *ArrayLiteral) String() string { return "[" + joinExprs(x.Elems) + "]" }

// MapEntry is one key/value pair of a map literal.
type MapEntry struct {
	Key   Expr
	Value Expr
}

// MapLiteral is {key = value, ...}. Identifier keys are stored as strings.
type MapLiteral struct {
	Span
	Entries []MapEntry
}

func (x *MapLiteral) exprNode() {}

func (x *MapLiteral) String() string {
	parts := make([]string, 0, len(x.Entries))
	for _, e := range x.Entries {
		parts = append(parts, e.Key.String()+" = "+e.Value.String())
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// Ident is a name that has not been resolved. Preparse produces these for
// every name; a full parse only for names it could not resolve.
type Ident struct {
	Span
	Name string
}

func (x *Ident) exprNode() {}

func (x *Ident) String() string { return x.Name }

// ParamRef refers to a parameter of the enclosing function.
type ParamRef struct {
	Span
	Name  string
	Index int
}

func (x *ParamRef) exprNode() {}

func (x *ParamRef) String() string { return x.Name }

// VarRef refers to a "var" variable of the enclosing function.
type VarRef struct {
	Span
	Name  string
	Index int
}

func (x *VarRef) exprNode() {}

func (x *VarRef) String() string { return x.Name }

// LocalRef refers to an object field declared with "local".
type LocalRef struct {
	Span
	Name  string
	Index int
}

func (x *LocalRef) exprNode() {}

func (x *LocalRef) String() string { return x.Name }

// GlobalRef refers to a "static" global variable.
type GlobalRef struct {
	Span
	Name  string
	Index int
}

func (x *GlobalRef) exprNode() {}

func (x *GlobalRef) String() string { return x.Name }

// ConstRef refers to a constant, already folded to its value.
type ConstRef struct {
	Span
	Name  string
	Value value.Value
}

func (x *ConstRef) exprNode() {}

func (x *ConstRef) String() string { return x.Name }

// PropertyAccess is x.name, or x["name"] with a literal key.
type PropertyAccess struct {
	Span
	X    Expr
	Name string
	Str  int
}

func (x *PropertyAccess) exprNode() {}

func (x *PropertyAccess) String() string { return x.X.String() + "." + x.Name }

// ArrayAccess is x[index].
type ArrayAccess struct {
	Span
	X     Expr
	Index Expr
}

func (x *ArrayAccess) exprNode() {}

func (x *ArrayAccess) String() string { return fmt.Sprintf("%s[%s]", x.X, x.Index) }

// ArrayAppend is x[], only valid as the target of an assignment.
type ArrayAppend struct {
	Span
	X Expr
}

func (x *ArrayAppend) exprNode() {}

func (x *ArrayAppend) String() string { return x.X.String() + "[]" }

// UnaryOp is a prefix or postfix operator applied to one operand.
type UnaryOp struct {
	Span
	Op *op.Operator
	X  Expr
}

func (x *UnaryOp) exprNode() {}

// Postfix returns true for x++ and x--.
func (x *UnaryOp) Postfix() bool { return x.Op.Postfix }

func (x *UnaryOp) String() string {
	if x.Op.Postfix {
		return "(" + x.X.String() + x.Op.Name + ")"
	}
	return "(" + x.Op.Name + x.X.String() + ")"
}

// BinaryOp is an infix operator, including assignments.
type BinaryOp struct {
	Span
	Op *op.Operator
	X  Expr
	Y  Expr
}

func (x *BinaryOp) exprNode() {}

func (x *BinaryOp) String() string {
	return "(" + x.X.String() + " " + x.Op.Name + " " + x.Y.String() + ")"
}

// Call is a direct call of a script, global or engine function.
type Call struct {
	Span
	Name string
	Func *symbol.Function
	Args []Expr
	// Global is set for global->Name(), which skips script-local overloads.
	Global bool
}

func (x *Call) exprNode() {}

func (x *Call) String() string {
	prefix := ""
	if x.Global {
		prefix = "global->"
	}
	return prefix + x.Name + "(" + joinExprs(x.Args) + ")"
}

// ObjectCall is x->Name(...), x->~Name(...) or x->DEF::Name(...).
type ObjectCall struct {
	Span
	X         Expr
	Namespace string // optional four character id
	Name      string
	Failsafe  bool
	Args      []Expr
	// Str is the string table handle of the qualified name.
	Str int
}

func (x *ObjectCall) exprNode() {}

// QualifiedName returns the callee name including its namespace.
func (x *ObjectCall) QualifiedName() string {
	if x.Namespace == "" {
		return x.Name
	}
	return x.Namespace + "::" + x.Name
}

func (x *ObjectCall) String() string {
	arrow := "->"
	if x.Failsafe {
		arrow = "->~"
	}
	return fmt.Sprintf("%s%s%s(%s)", x.X, arrow, x.QualifiedName(), joinExprs(x.Args))
}

// Inherited calls the function the enclosing function overrides.
// Safe is set for _inherited, which yields nil when there is none.
type Inherited struct {
	Span
	Func *symbol.Function
	Args []Expr
	Safe bool
}

func (x *Inherited) exprNode() {}

func (x *Inherited) String() string {
	kw := "inherited"
	if x.Safe {
		kw = "_inherited"
	}
	return kw + "(" + joinExprs(x.Args) + ")"
}

// NilCheck marks a "?" in a navigation chain: if X is nil, evaluation of
// the enclosing SafeNav stops and yields nil.
type NilCheck struct {
	Span
	X Expr
}

func (x *NilCheck) exprNode() {}

func (x *NilCheck) String() string { return x.X.String() + "?" }

// SafeNav delimits a navigation chain containing NilChecks.
type SafeNav struct {
	Span
	X Expr
}

func (x *SafeNav) exprNode() {}

func (x *SafeNav) String() string { return x.X.String() }

func joinExprs(exprs []Expr) string {
	parts := make([]string, 0, len(exprs))
	for _, e := range exprs {
		parts = append(parts, e.String())
	}
	return strings.Join(parts, ", ")
}
