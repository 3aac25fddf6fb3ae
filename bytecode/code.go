package bytecode

import (
	"fmt"
	"strings"

	"github.com/aulscript/aul/op"
)

// Instruction is one emitted operation. Operand is an immediate value, a
// relative jump displacement, a slot index or a table index depending on
// the opcode. Offset is the byte offset of the source that produced it.
type Instruction struct {
	Op      op.Code
	Operand int32
	Offset  int
}

func (i Instruction) String() string {
	return fmt.Sprintf("%s %d", i.Op, i.Operand)
}

// CallKind distinguishes the instructions that refer to a CallTarget.
type CallKind int

const (
	// DirectCall is a FUNC call of a script or engine function.
	DirectCall CallKind = iota
	// ObjectCall is a CALL or CALLFS through an object.
	ObjectCall
	// InheritedCall is an INHERITED or INHERITED_FS call.
	InheritedCall
)

func (k CallKind) String() string {
	switch k {
	case DirectCall:
		return "direct"
	case ObjectCall:
		return "object"
	case InheritedCall:
		return "inherited"
	}
	return fmt.Sprintf("call(%d)", int(k))
}

// CallTarget describes a callee. ParamCount is the number of arguments the
// call instruction consumes.
type CallTarget struct {
	Kind CallKind
	// Script owns the callee. It is empty for engine functions and object
	// calls.
	Script     string
	Namespace  string
	Name       string
	ParamCount int
	// Str is the string table handle of the qualified name.
	Str int
}

// QualifiedName returns the callee name including its namespace.
func (t CallTarget) QualifiedName() string {
	if t.Namespace == "" {
		return t.Name
	}
	return t.Namespace + "::" + t.Name
}

// Code is the compiled segment of one script. It is immutable after
// creation and safe for concurrent use.
type Code struct {
	script       string
	filename     string
	source       string
	instructions []Instruction
	strings      []string
	calls        []CallTarget
	errors       []string
	functions    []*Function
}

// CodeParams contains parameters for creating a new Code.
type CodeParams struct {
	Script       string
	Filename     string
	Source       string
	Instructions []Instruction
	// Strings is the string table contents, indexed by handle.
	Strings   []string
	Calls     []CallTarget
	Errors    []string
	Functions []*Function
}

// NewCode creates a new immutable Code from the given parameters.
// Input slices are copied.
func NewCode(params CodeParams) *Code {
	return &Code{
		script:       params.Script,
		filename:     params.Filename,
		source:       params.Source,
		instructions: copySlice(params.Instructions),
		strings:      copySlice(params.Strings),
		calls:        copySlice(params.Calls),
		errors:       copySlice(params.Errors),
		functions:    copySlice(params.Functions),
	}
}

// Script returns the name of the compiled script.
func (c *Code) Script() string {
	return c.script
}

// Filename returns the source filename.
func (c *Code) Filename() string {
	return c.filename
}

// Source returns the script source.
func (c *Code) Source() string {
	return c.source
}

// InstructionCount returns the number of instructions.
func (c *Code) InstructionCount() int {
	return len(c.instructions)
}

// InstructionAt returns the instruction at the given index.
func (c *Code) InstructionAt(index int) Instruction {
	return c.instructions[index]
}

// StringCount returns the number of interned strings.
func (c *Code) StringCount() int {
	return len(c.strings)
}

// StringAt returns the string with the given handle. Returns an empty
// string if the handle is out of range.
func (c *Code) StringAt(handle int) string {
	if handle < 0 || handle >= len(c.strings) {
		return ""
	}
	return c.strings[handle]
}

// CallCount returns the number of call targets.
func (c *Code) CallCount() int {
	return len(c.calls)
}

// CallAt returns the call target at the given index.
func (c *Code) CallAt(index int) CallTarget {
	return c.calls[index]
}

// ErrorCount returns the number of ERR messages.
func (c *Code) ErrorCount() int {
	return len(c.errors)
}

// ErrorAt returns the message an ERR instruction with operand index raises.
func (c *Code) ErrorAt(index int) string {
	return c.errors[index]
}

// FunctionCount returns the number of compiled functions.
func (c *Code) FunctionCount() int {
	return len(c.functions)
}

// FunctionAt returns the function at the given index, in declaration order.
func (c *Code) FunctionAt(index int) *Function {
	return c.functions[index]
}

// Function returns the first function with the given name.
func (c *Code) Function(name string) (*Function, bool) {
	for _, fn := range c.functions {
		if fn.name == name {
			return fn, true
		}
	}
	return nil, false
}

// FunctionNames returns the names of all compiled functions.
func (c *Code) FunctionNames() []string {
	names := make([]string, 0, len(c.functions))
	for _, fn := range c.functions {
		names = append(names, fn.name)
	}
	return names
}

// FunctionAtOffset returns the function containing the instruction at ip.
func (c *Code) FunctionAtOffset(ip int) (*Function, bool) {
	for _, fn := range c.functions {
		if ip >= fn.start && ip < fn.end {
			return fn, true
		}
	}
	return nil, false
}

// LocationAt returns the source location of the instruction at the given
// index.
func (c *Code) LocationAt(ip int) SourceLocation {
	if ip < 0 || ip >= len(c.instructions) {
		return SourceLocation{}
	}
	return locate(c.source, c.instructions[ip].Offset)
}

// GetSourceLine returns the source code line at the given 1-based line
// number.
func (c *Code) GetSourceLine(lineNum int) string {
	if lineNum < 1 {
		return ""
	}
	lines := strings.Split(c.source, "\n")
	if lineNum > len(lines) {
		return ""
	}
	return strings.TrimRight(lines[lineNum-1], "\r")
}

// Stats returns statistics about this code segment.
func (c *Code) Stats() Stats {
	errored := 0
	for _, fn := range c.functions {
		if fn.errored {
			errored++
		}
	}
	return Stats{
		InstructionCount: len(c.instructions),
		StringCount:      len(c.strings),
		CallCount:        len(c.calls),
		FunctionCount:    len(c.functions),
		ErroredCount:     errored,
		SourceBytes:      len(c.source),
	}
}
