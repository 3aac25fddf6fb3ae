// Package errors defines the error taxonomy of the Aul compiler: positioned
// compile errors, dialect warnings, and the formatter used to print them.
package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrInternal marks an internal-consistency failure of the compiler, such as
// an unbalanced operand stack or an unpatched jump. It is never caused by
// user input and aborts compilation.
var ErrInternal = stderrors.New("internal compiler error")

// Internalf returns an error wrapping ErrInternal.
func Internalf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInternal, fmt.Sprintf(format, args...))
}

// Kind classifies a compile error.
type Kind int

const (
	// LexError is an unterminated string, illegal character or malformed
	// number. Fatal to the current token stream.
	LexError Kind = iota
	// SyntaxError is an unexpected token, missing punctuation, misplaced
	// keyword or syntax the script's dialect level does not accept.
	SyntaxError
	// SemanticError is an unknown identifier, arity mismatch, access
	// violation or duplicate declaration.
	SemanticError
)

func (k Kind) String() string {
	switch k {
	case LexError:
		return "lex error"
	case SyntaxError:
		return "syntax error"
	case SemanticError:
		return "semantic error"
	default:
		return "error"
	}
}

// SourceLocation represents a position in source code.
type SourceLocation struct {
	Filename string
	Offset   int // 0-based byte offset
	Line     int // 1-based line number
	Column   int // 1-based column number
	Source   string
}

// String returns a formatted string representation of the source location.
func (s SourceLocation) String() string {
	if s.Filename != "" {
		return fmt.Sprintf("%s:%d:%d", s.Filename, s.Line, s.Column)
	}
	return fmt.Sprintf("%d:%d", s.Line, s.Column)
}

// IsZero returns true if the location has not been set.
func (s SourceLocation) IsZero() bool {
	return s.Line == 0 && s.Column == 0
}

// Is is a re-export of the standard library errors.Is.
func Is(err, target error) bool {
	return stderrors.Is(err, target)
}

// As is a re-export of the standard library errors.As.
func As(err error, target any) bool {
	return stderrors.As(err, target)
}
