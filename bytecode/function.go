package bytecode

import "fmt"

// Function is the part of a code segment belonging to one function. It is
// immutable after creation.
type Function struct {
	name       string
	script     string
	start      int
	end        int
	paramCount int
	errored    bool
}

// FunctionParams contains parameters for creating a new Function.
type FunctionParams struct {
	Name       string
	Script     string
	Start      int
	End        int
	ParamCount int
	Errored    bool
}

// NewFunction creates a new immutable Function from the given parameters.
func NewFunction(params FunctionParams) *Function {
	return &Function{
		name:       params.Name,
		script:     params.Script,
		start:      params.Start,
		end:        params.End,
		paramCount: params.ParamCount,
		errored:    params.Errored,
	}
}

// Name returns the function name.
func (f *Function) Name() string {
	return f.name
}

// Script returns the script the function was declared in.
func (f *Function) Script() string {
	return f.script
}

// Start returns the index of the function's first instruction.
func (f *Function) Start() int {
	return f.start
}

// End returns the index one past the function's EOFN instruction.
func (f *Function) End() int {
	return f.end
}

// Len returns the number of instructions, EOFN included.
func (f *Function) Len() int {
	return f.end - f.start
}

// ParamCount returns the number of declared parameters.
func (f *Function) ParamCount() int {
	return f.paramCount
}

// Errored returns true if the function failed to compile. Its code is a
// single ERR instruction followed by EOFN.
func (f *Function) Errored() bool {
	return f.errored
}

func (f *Function) String() string {
	if f.errored {
		return fmt.Sprintf("func %s [%d, %d) errored", f.name, f.start, f.end)
	}
	return fmt.Sprintf("func %s [%d, %d)", f.name, f.start, f.end)
}
