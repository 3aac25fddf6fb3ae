package errors

import (
	"fmt"
	"strings"
)

// CompileError is a positioned error raised while lexing or parsing a script.
type CompileError struct {
	Code     ErrorCode
	Kind     Kind
	Message  string
	Location SourceLocation
	// Function and Script name the enclosing declaration, when known.
	Function string
	Script   string
}

// Error implements the error interface.
func (e *CompileError) Error() string {
	var b strings.Builder
	if !e.Location.IsZero() || e.Location.Filename != "" {
		b.WriteString(e.Location.String())
		b.WriteString(": ")
	}
	b.WriteString(e.Kind.String())
	b.WriteString(": ")
	b.WriteString(e.Message)
	b.WriteString(e.context())
	return b.String()
}

func (e *CompileError) context() string {
	switch {
	case e.Function != "" && e.Script != "":
		return fmt.Sprintf(" (in function %s of script %s)", e.Function, e.Script)
	case e.Function != "":
		return fmt.Sprintf(" (in function %s)", e.Function)
	case e.Script != "":
		return fmt.Sprintf(" (in script %s)", e.Script)
	}
	return ""
}

// FriendlyErrorMessage returns a human-friendly error message.
func (e *CompileError) FriendlyErrorMessage() string {
	return NewFormatter(false).Format(e.ToFormatted())
}

// ToFormatted converts to the FormattedError type for display.
func (e *CompileError) ToFormatted() *FormattedError {
	return &FormattedError{
		Code:     e.Code,
		Kind:     e.Kind.String(),
		Message:  e.Message,
		Location: e.Location,
		Context:  strings.TrimSpace(e.context()),
	}
}

// Warning is a non-fatal diagnostic, typically deprecated dialect syntax.
type Warning struct {
	Code     ErrorCode
	Message  string
	Location SourceLocation
	Function string
	Script   string
}

func (w *Warning) String() string {
	return fmt.Sprintf("%s: warning: %s", w.Location, w.Message)
}

// ToFormatted converts to the FormattedError type for display.
func (w *Warning) ToFormatted() *FormattedError {
	fe := &FormattedError{
		Code:     w.Code,
		Kind:     "warning",
		Message:  w.Message,
		Location: w.Location,
	}
	if w.Function != "" {
		fe.Context = fmt.Sprintf("(in function %s)", w.Function)
	}
	return fe
}
