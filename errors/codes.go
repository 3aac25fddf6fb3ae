package errors

// ErrorCode represents a unique identifier for error types.
// Codes are organized by category:
//   - E1xxx: Lex and syntax errors
//   - E2xxx: Semantic errors
//   - W1xxx: Dialect warnings
type ErrorCode string

const (
	// Lex and syntax errors (E1xxx)
	E1001 ErrorCode = "E1001" // Unexpected token
	E1002 ErrorCode = "E1002" // Unterminated string literal
	E1003 ErrorCode = "E1003" // Invalid syntax
	E1004 ErrorCode = "E1004" // Missing expression
	E1005 ErrorCode = "E1005" // Invalid assignment target
	E1006 ErrorCode = "E1006" // Expected identifier
	E1007 ErrorCode = "E1007" // Unterminated comment
	E1008 ErrorCode = "E1008" // Invalid number literal
	E1009 ErrorCode = "E1009" // Maximum nesting depth exceeded
	E1010 ErrorCode = "E1010" // Control character in string
	E1011 ErrorCode = "E1011" // Illegal character
	E1012 ErrorCode = "E1012" // Invalid directive
	E1013 ErrorCode = "E1013" // Syntax not available in dialect

	// Semantic errors (E2xxx)
	E2001 ErrorCode = "E2001" // Undefined identifier
	E2002 ErrorCode = "E2002" // Undefined function
	E2003 ErrorCode = "E2003" // Invalid break statement
	E2004 ErrorCode = "E2004" // Invalid continue statement
	E2005 ErrorCode = "E2005" // Duplicate declaration
	E2006 ErrorCode = "E2006" // Duplicate parameter name
	E2007 ErrorCode = "E2007" // Too many parameters
	E2008 ErrorCode = "E2008" // Insufficient access
	E2009 ErrorCode = "E2009" // No inherited function
	E2010 ErrorCode = "E2010" // Not a constant expression
	E2011 ErrorCode = "E2011" // Deprecated syntax

	// Dialect warnings (W1xxx)
	W1001 ErrorCode = "W1001" // Deprecated syntax
	W1002 ErrorCode = "W1002" // Unknown escape sequence
)

// codeDescriptions maps error codes to their short descriptions.
var codeDescriptions = map[ErrorCode]string{
	E1001: "unexpected token",
	E1002: "unterminated string literal",
	E1003: "invalid syntax",
	E1004: "missing expression",
	E1005: "invalid assignment target",
	E1006: "expected identifier",
	E1007: "unterminated comment",
	E1008: "invalid number literal",
	E1009: "maximum nesting depth exceeded",
	E1010: "control character in string",
	E1011: "illegal character",
	E1012: "invalid directive",
	E1013: "syntax not available in dialect",

	E2001: "undefined identifier",
	E2002: "undefined function",
	E2003: "invalid break statement",
	E2004: "invalid continue statement",
	E2005: "duplicate declaration",
	E2006: "duplicate parameter name",
	E2007: "too many parameters",
	E2008: "insufficient access",
	E2009: "no inherited function",
	E2010: "not a constant expression",
	E2011: "deprecated syntax",

	W1001: "deprecated syntax",
	W1002: "unknown escape sequence",
}

// Description returns the short description for an error code.
func (c ErrorCode) Description() string {
	if desc, ok := codeDescriptions[c]; ok {
		return desc
	}
	return "unknown error"
}

// String returns the error code as a string.
func (c ErrorCode) String() string {
	return string(c)
}

// Category returns the error category based on the code prefix.
func (c ErrorCode) Category() string {
	if len(c) < 2 {
		return "unknown"
	}
	if c[0] == 'W' {
		return "warning"
	}
	switch c[1] {
	case '1':
		return "syntax"
	case '2':
		return "semantic"
	default:
		return "unknown"
	}
}
