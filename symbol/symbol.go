// Package symbol defines how the compiler resolves names and the default
// in-memory symbol table.
//
// The compiler never owns symbol storage. It queries a Resolver during both
// passes and registers newly declared names only during preparse. Resolver
// implementations are not required to be safe for concurrent use; callers
// compiling scripts in parallel must serialize access themselves.
package symbol

import (
	"fmt"

	"github.com/aulscript/aul/op"
	"github.com/aulscript/aul/value"
)

// MaxParams is the maximum number of parameters a function may declare.
const MaxParams = op.MaxParams

// Access is a function's declared visibility. Levels are ordered so that a
// higher level grants everything a lower one does.
type Access int

const (
	Private Access = iota
	Protected
	Public
	Global
)

func (a Access) String() string {
	switch a {
	case Private:
		return "private"
	case Protected:
		return "protected"
	case Public:
		return "public"
	case Global:
		return "global"
	}
	return fmt.Sprintf("access(%d)", int(a))
}

// LookupAccess maps an access modifier keyword to its level.
func LookupAccess(word string) (Access, bool) {
	switch word {
	case "private":
		return Private, true
	case "protected":
		return Protected, true
	case "public":
		return Public, true
	case "global":
		return Global, true
	}
	return Public, false
}

// Param is a declared function parameter.
type Param struct {
	Name string
	Type value.Type
}

// Var is a function-scoped variable declared with "var".
type Var struct {
	Name string
	// Pos is the byte offset of the declaration.
	Pos int
}

// Function describes a callable function.
type Function struct {
	Name   string
	Script string // empty for engine functions
	Access Access
	Params []Param
	Locals []Var
	// DeclOffset is the byte offset of the declaration in its script.
	DeclOffset int
}

// ParamCount returns the number of declared parameters.
func (f *Function) ParamCount() int {
	return len(f.Params)
}

// Engine returns true for functions provided by the host engine rather than
// declared in a script.
func (f *Function) Engine() bool {
	return f.Script == ""
}

// Resolver resolves and registers the names a script refers to.
type Resolver interface {
	LookupParameter(fn *Function, name string) (int, bool)
	LookupLocal(fn *Function, name string) (int, bool)
	LookupObjectField(name string) (int, bool)
	LookupGlobal(name string) (int, bool)
	LookupConstant(name string) (value.Value, bool)
	LookupFunction(name string) (*Function, bool)
	// LookupInherited returns the function fn overrides, if any.
	LookupInherited(fn *Function) (*Function, bool)

	RegisterFunction(fn *Function) error
	RegisterLocal(fn *Function, name string, pos int) (int, error)
	RegisterObjectField(name string) (int, error)
	RegisterGlobal(name string) (int, error)
	RegisterConstant(name string, v value.Value) error
}

// DuplicateError is returned by Register methods when a name is already
// declared in the same scope.
type DuplicateError struct {
	What string
	Name string
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("%s %s is already declared", e.What, e.Name)
}
