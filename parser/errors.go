package parser

import (
	"fmt"

	"github.com/aulscript/aul/errors"
	"github.com/aulscript/aul/internal/token"
)

func tokenDescription(t token.Token) string {
	switch t.Type {
	case token.EOF:
		return "end of file"
	case token.ILLEGAL:
		return "illegal token"
	case token.INT, token.STRING, token.ID:
		return t.Literal
	default:
		if t.Literal == "" {
			return string(t.Type)
		}
		return "'" + t.Literal + "'"
	}
}

// Errors wraps multiple parser errors for multi-error reporting.
// It implements the error interface so it can be returned from Parse().
type Errors struct {
	errs []*errors.CompileError
}

// NewErrors creates an Errors from a slice of compile errors.
func NewErrors(errs []*errors.CompileError) *Errors {
	if len(errs) == 0 {
		return nil
	}
	return &Errors{errs: errs}
}

// Error implements the error interface. Returns the first error message.
func (e *Errors) Error() string {
	if len(e.errs) == 0 {
		return ""
	}
	if len(e.errs) == 1 {
		return e.errs[0].Error()
	}
	return fmt.Sprintf("%s (and %d more errors)", e.errs[0].Error(), len(e.errs)-1)
}

// Errors returns the underlying slice of compile errors.
func (e *Errors) Errors() []*errors.CompileError {
	return e.errs
}

// Count returns the number of errors.
func (e *Errors) Count() int {
	return len(e.errs)
}

// First returns the first error, or nil if empty.
func (e *Errors) First() *errors.CompileError {
	if len(e.errs) == 0 {
		return nil
	}
	return e.errs[0]
}

// FriendlyErrorMessage returns a formatted message showing all errors.
func (e *Errors) FriendlyErrorMessage() string {
	formatted := make([]*errors.FormattedError, 0, len(e.errs))
	for _, err := range e.errs {
		formatted = append(formatted, err.ToFormatted())
	}
	return errors.NewFormatter(false).FormatMultiple(formatted)
}

// Unwrap returns the underlying errors for use with errors.Is/As.
func (e *Errors) Unwrap() []error {
	result := make([]error, len(e.errs))
	for i, err := range e.errs {
		result[i] = err
	}
	return result
}
