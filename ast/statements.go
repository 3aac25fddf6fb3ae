package ast

import (
	"fmt"
	"strings"

	"github.com/aulscript/aul/dialect"
	"github.com/aulscript/aul/internal/token"
	"github.com/aulscript/aul/symbol"
	"github.com/aulscript/aul/value"
)

// Directive is a "#name argument" line such as #strict or #include.
type Directive struct {
	Span
	Name string
	Arg  string
}

func (s *Directive) stmtNode() {}

func (s *Directive) String() string {
	if s.Arg == "" {
		return "#" + s.Name
	}
	return "#" + s.Name + " " + s.Arg
}

// Param is a declared function parameter.
type Param struct {
	NamePos token.Position
	Name    string
	Type    value.Type
}

// FunctionDef is a function declaration. When the body fails to parse,
// Body is a *BadStmt holding the partial statements.
type FunctionDef struct {
	Span
	Name   string
	Access symbol.Access
	// Legacy is set for the "Name:" label form.
	Legacy bool
	Params []Param
	Body   Stmt
	// Func is the resolver entry registered for this declaration.
	Func *symbol.Function
	// Dialect is the level in effect where the function was declared.
	Dialect dialect.Level
}

func (s *FunctionDef) stmtNode() {}

// Errored returns true if the function body failed to parse.
func (s *FunctionDef) Errored() bool {
	_, bad := s.Body.(*BadStmt)
	return bad
}

func (s *FunctionDef) String() string {
	if s.Legacy {
		return fmt.Sprintf("%s: %s", s.Name, s.Body)
	}
	params := make([]string, 0, len(s.Params))
	for _, p := range s.Params {
		if p.Type != value.Any {
			params = append(params, p.Type.String()+" "+p.Name)
		} else {
			params = append(params, p.Name)
		}
	}
	return fmt.Sprintf("%s func %s(%s) %s", s.Access, s.Name, strings.Join(params, ", "), s.Body)
}

// Block is a braced statement list.
type Block struct {
	Span
	Stmts []Stmt
}

func (s *Block) stmtNode() {}

func (s *Block) String() string {
	var b strings.Builder
	b.WriteString("{")
	for _, stmt := range s.Stmts {
		b.WriteString(" ")
		b.WriteString(stmt.String())
	}
	b.WriteString(" }")
	return b.String()
}

// Empty is a lone semicolon.
type Empty struct {
	Span
}

func (s *Empty) stmtNode() {}

func (s *Empty) String() string { return ";" }

// Declarator is one name of a declaration list, with its optional
// initializer and the slot the resolver assigned to it.
type Declarator struct {
	NamePos token.Position
	Name    string
	Value   Expr
	Slot    int
}

func (d *Declarator) String() string {
	if d.Value == nil {
		return d.Name
	}
	return d.Name + " = " + d.Value.String()
}

func declString(keyword string, decls []*Declarator) string {
	parts := make([]string, 0, len(decls))
	for _, d := range decls {
		parts = append(parts, d.String())
	}
	return keyword + " " + strings.Join(parts, ", ") + ";"
}

// VarDecl declares function-scoped variables.
type VarDecl struct {
	Span
	Decls []*Declarator
}

func (s *VarDecl) stmtNode() {}

func (s *VarDecl) String() string { return declString("var", s.Decls) }

// LocalDecl declares object fields.
type LocalDecl struct {
	Span
	Decls []*Declarator
}

func (s *LocalDecl) stmtNode() {}

func (s *LocalDecl) String() string { return declString("local", s.Decls) }

// StaticDecl declares global variables.
type StaticDecl struct {
	Span
	Decls []*Declarator
}

func (s *StaticDecl) stmtNode() {}

func (s *StaticDecl) String() string { return declString("static", s.Decls) }

// ConstDecl declares global constants. Values are folded at parse time.
type ConstDecl struct {
	Span
	Decls  []*Declarator
	Values []value.Value
}

func (s *ConstDecl) stmtNode() {}

func (s *ConstDecl) String() string { return declString("static const", s.Decls) }

// If is a conditional statement.
type If struct {
	Span
	Cond Expr
	Then Stmt
	Else Stmt // may be nil
}

func (s *If) stmtNode() {}

func (s *If) String() string {
	out := fmt.Sprintf("if (%s) %s", s.Cond, s.Then)
	if s.Else != nil {
		out += " else " + s.Else.String()
	}
	return out
}

// While is a pre-tested loop.
type While struct {
	Span
	Cond Expr
	Body Stmt
}

func (s *While) stmtNode() {}

func (s *While) String() string { return fmt.Sprintf("while (%s) %s", s.Cond, s.Body) }

// For is a C-style loop. Init, Cond and Incr are each optional.
type For struct {
	Span
	Init Stmt
	Cond Expr
	Incr Expr
	Body Stmt
}

func (s *For) stmtNode() {}

func (s *For) String() string {
	str := func(n Node) string {
		if n == nil {
			return ""
		}
		return strings.TrimSuffix(n.String(), ";")
	}
	var init, cond, incr string
	if s.Init != nil {
		init = str(s.Init)
	}
	if s.Cond != nil {
		cond = str(s.Cond)
	}
	if s.Incr != nil {
		incr = str(s.Incr)
	}
	return fmt.Sprintf("for (%s; %s; %s) %s", init, cond, incr, s.Body)
}

// LoopVar is an iteration variable of a ForEach loop.
type LoopVar struct {
	NamePos token.Position
	Name    string
	Slot    int
}

// ForEach iterates over an array, or over the keys and values of a map
// when Key is set.
type ForEach struct {
	Span
	Key        *LoopVar // nil for the single-variable form
	Value      *LoopVar
	Collection Expr
	Body       Stmt
}

func (s *ForEach) stmtNode() {}

func (s *ForEach) String() string {
	vars := s.Value.Name
	if s.Key != nil {
		vars = s.Key.Name + ", " + s.Value.Name
	}
	return fmt.Sprintf("for (var %s in %s) %s", vars, s.Collection, s.Body)
}

// Return leaves the current function. Value is nil for a bare return.
// Extra holds the additional arguments of the legacy return(a, b) form;
// they are evaluated and discarded.
type Return struct {
	Span
	Value Expr
	Extra []Expr
}

func (s *Return) stmtNode() {}

func (s *Return) String() string {
	if s.Value == nil {
		return "return;"
	}
	if len(s.Extra) > 0 {
		parts := []string{s.Value.String()}
		for _, e := range s.Extra {
			parts = append(parts, e.String())
		}
		return "return(" + strings.Join(parts, ", ") + ");"
	}
	return "return " + s.Value.String() + ";"
}

// Break exits the innermost loop.
type Break struct {
	Span
}

func (s *Break) stmtNode() {}

func (s *Break) String() string { return "break;" }

// Continue jumps to the next iteration of the innermost loop.
type Continue struct {
	Span
}

func (s *Continue) stmtNode() {}

func (s *Continue) String() string { return "continue;" }

// ExprStmt is an expression evaluated for its side effects.
type ExprStmt struct {
	Span
	X Expr
}

func (s *ExprStmt) stmtNode() {}

func (s *ExprStmt) String() string { return s.X.String() + ";" }
