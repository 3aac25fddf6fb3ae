// Package compiler lowers a parsed Aul script into bytecode.
//
// # Code Layout
//
// All functions of a script share one instruction segment. Each function's
// code is contiguous and ends with EOFN; the segment ends with EOF. A
// function whose body failed to parse compiles to a stub:
//
//	ERR n
//	EOFN
//
// where n indexes the error message in the code's error table, so calling
// the function fails at runtime with the original compile error.
//
// # Stack Tracking
//
// The Emitter tracks the operand stack depth of every instruction. A
// function body must leave the stack exactly as it found it, and every jump
// it emits must be patched. A violation is an internal error that aborts
// compilation; it never results from user input.
//
// # Dialect Quirks
//
// Below strict 3 a literal 0 compiles to NIL and "0 + x" compiles to just
// x. Below strict 2 "&&" and "||" evaluate both operands.
package compiler

import (
	"fmt"

	"github.com/aulscript/aul/ast"
	"github.com/aulscript/aul/bytecode"
	"github.com/aulscript/aul/dialect"
	"github.com/aulscript/aul/errors"
	"github.com/aulscript/aul/op"
)

// Compiler generates bytecode for one script.
type Compiler struct {
	strings    *bytecode.StringTable
	filename   string
	source     string
	scriptName string
	// parse errors, used to describe errored functions
	parseErrors []*errors.CompileError

	e         *Emitter
	messages  []string
	functions []*bytecode.Function

	// function being compiled
	fn *ast.FunctionDef
	// open safe navigation chains, innermost last
	nav [][]JumpSite
}

// Option configures a Compiler.
type Option func(*Compiler)

// WithStrings sets the string table literals were interned into. The
// compiler interns names it needs into the same table.
func WithStrings(strings *bytecode.StringTable) Option {
	return func(c *Compiler) {
		c.strings = strings
	}
}

// WithFilename sets the filename recorded on the code.
func WithFilename(filename string) Option {
	return func(c *Compiler) {
		c.filename = filename
	}
}

// WithSource sets the source text recorded on the code.
func WithSource(source string) Option {
	return func(c *Compiler) {
		c.source = source
	}
}

// WithScriptName sets the script the compiled functions belong to.
func WithScriptName(name string) Option {
	return func(c *Compiler) {
		c.scriptName = name
	}
}

// WithErrors supplies the parse errors of the script. The first error
// inside a failed function becomes that function's runtime error.
func WithErrors(errs []*errors.CompileError) Option {
	return func(c *Compiler) {
		c.parseErrors = errs
	}
}

// New returns a compiler configured with the given options.
func New(opts ...Option) *Compiler {
	c := &Compiler{}
	for _, opt := range opts {
		opt(c)
	}
	if c.strings == nil {
		c.strings = bytecode.NewStringTable()
	}
	return c
}

// Compile is shorthand for New(opts...).Compile(script).
func Compile(script *ast.Script, opts ...Option) (*bytecode.Code, error) {
	return New(opts...).Compile(script)
}

// Compile generates the code segment for script. A function that failed to
// parse becomes an ERR stub; any other failure is internal and aborts.
func (c *Compiler) Compile(script *ast.Script) (*bytecode.Code, error) {
	if script == nil {
		return nil, errors.Internalf("no script to compile")
	}
	c.e = NewEmitter()
	c.messages = nil
	c.functions = nil
	for _, decl := range script.Decls {
		fn, ok := decl.(*ast.FunctionDef)
		if !ok {
			continue
		}
		if err := c.compileFunction(fn); err != nil {
			return nil, err
		}
	}
	c.e.SetOffset(script.End().Char)
	c.e.Emit(op.EOF, 0)
	if err := c.e.Err(); err != nil {
		return nil, err
	}
	return bytecode.NewCode(bytecode.CodeParams{
		Script:       c.scriptName,
		Filename:     c.filename,
		Source:       c.source,
		Instructions: c.e.Instructions(),
		Strings:      c.strings.Strings(),
		Calls:        c.e.Calls(),
		Errors:       c.messages,
		Functions:    c.functions,
	}), nil
}

func (c *Compiler) compileFunction(fn *ast.FunctionDef) error {
	c.fn = fn
	c.nav = nil
	defer func() { c.fn = nil }()

	e := c.e
	start := e.Begin()
	e.SetOffset(fn.Pos().Char)
	errored := fn.Errored()
	if errored {
		e.Emit(op.ERR, c.addMessage(c.failureMessage(fn)))
	} else {
		if err := c.compileStmt(fn.Body); err != nil {
			return fmt.Errorf("function %s: %w", fn.Name, err)
		}
		if !e.EndsWithReturn() {
			e.SetOffset(fn.End().Char)
			e.Emit(op.NIL, 0)
			e.Emit(op.RETURN, 0)
		}
		if err := e.Finish(); err != nil {
			return fmt.Errorf("function %s: %w", fn.Name, err)
		}
	}
	e.Emit(op.EOFN, 0)

	params := bytecode.FunctionParams{
		Name:    fn.Name,
		Script:  c.scriptName,
		Start:   start,
		End:     e.Len(),
		Errored: errored,
	}
	if fn.Func != nil {
		params.ParamCount = fn.Func.ParamCount()
		if fn.Func.Script != "" {
			params.Script = fn.Func.Script
		}
	} else {
		params.ParamCount = len(fn.Params)
	}
	c.functions = append(c.functions, bytecode.NewFunction(params))
	return nil
}

// failureMessage returns the first parse error reported for fn.
func (c *Compiler) failureMessage(fn *ast.FunctionDef) string {
	from, to := fn.Pos().Char, fn.End().Char
	for _, err := range c.parseErrors {
		if err.Function == fn.Name || (err.Location.Offset >= from && err.Location.Offset < to) {
			return err.Error()
		}
	}
	return fmt.Sprintf("function %s failed to compile", fn.Name)
}

func (c *Compiler) addMessage(msg string) int32 {
	c.messages = append(c.messages, msg)
	return int32(len(c.messages) - 1)
}

// level returns the dialect of the function being compiled.
func (c *Compiler) level() dialect.Level {
	if c.fn == nil {
		return dialect.Strict3
	}
	return c.fn.Dialect
}

func (c *Compiler) enabled(f dialect.Feature) bool {
	return dialect.Enabled(f, c.level())
}

// intern returns handle if the parser already interned the string, or
// interns it now.
func (c *Compiler) intern(handle int, s string) int32 {
	if handle >= 0 {
		return int32(handle)
	}
	return int32(c.strings.Hold(s))
}
