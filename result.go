package aul

import (
	"github.com/aulscript/aul/ast"
	"github.com/aulscript/aul/bytecode"
	"github.com/aulscript/aul/errors"
	"github.com/hashicorp/go-multierror"
)

// Result is the outcome of compiling one script.
type Result struct {
	AST      *ast.Script
	Code     *bytecode.Code
	Warnings []*errors.Warning
	Errors   []*errors.CompileError
	// Includes lists the ids named by #include and #appendto.
	Includes []string
}

// ErroredFunctions returns the names of the functions that failed to
// compile, in source order.
func (r *Result) ErroredFunctions() []string {
	if r.Code == nil {
		return nil
	}
	var names []string
	for i := 0; i < r.Code.FunctionCount(); i++ {
		if fn := r.Code.FunctionAt(i); fn.Errored() {
			names = append(names, fn.Name())
		}
	}
	return names
}

// Err returns the compile errors as a single error, or nil.
func (r *Result) Err() error {
	var result *multierror.Error
	for _, e := range r.Errors {
		result = multierror.Append(result, e)
	}
	return result.ErrorOrNil()
}

// FormattedErrors returns the errors and warnings in display form.
func (r *Result) FormattedErrors() []*errors.FormattedError {
	out := make([]*errors.FormattedError, 0, len(r.Errors)+len(r.Warnings))
	for _, e := range r.Errors {
		out = append(out, e.ToFormatted())
	}
	for _, w := range r.Warnings {
		out = append(out, w.ToFormatted())
	}
	return out
}
