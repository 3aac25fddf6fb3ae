// Package token defines language keywords and tokens used when lexing source code.
package token

import "github.com/aulscript/aul/dialect"

// Type describes the type of a token as a string.
type Type string

// Position points to a particular location in an input string.
type Position struct {
	Char      int    // byte offset within the file
	LineStart int    // byte offset of the start of the current line
	Line      int    // 0-indexed line number
	Column    int    // 0-indexed column number
	File      string // filename
}

// LineNumber returns the 1-indexed line number for this position in the input.
func (p Position) LineNumber() int {
	return p.Line + 1
}

// ColumnNumber returns the 1-indexed column number for this position in the input.
func (p Position) ColumnNumber() int {
	return p.Column + 1
}

// IsValid returns true if this position has been set.
func (p Position) IsValid() bool {
	return p.File != "" || p.Line > 0 || p.Column > 0 || p.Char > 0
}

// NoPos is the zero value Position, representing an invalid/unset position.
var NoPos = Position{}

// Token represents one token lexed from the input source code.
type Token struct {
	Type Type
	// Literal is the raw text for identifiers, keywords, punctuation and
	// directive names, and the decoded text of string literals.
	Literal string
	// Int holds the payload of INT tokens and the packed value of ID tokens.
	Int int32
	// Op is the operator table index of OPERATOR tokens.
	Op int
	// Str is the string table handle of a held string literal, or -1.
	Str int
	// Directive holds the raw remainder of the line after a directive name.
	Directive     string
	StartPosition Position
	EndPosition   Position
}

// Is returns true if the token has the given type.
func (t Token) Is(typ Type) bool {
	return t.Type == typ
}

// Token types
const (
	EOF       Type = "EOF"
	ILLEGAL   Type = "ILLEGAL"
	DIRECTIVE Type = "DIRECTIVE"
	IDENT     Type = "IDENT"
	INT       Type = "INT"
	STRING    Type = "STRING"
	ID        Type = "ID"
	OPERATOR  Type = "OPERATOR"

	// Punctuation
	LPAREN         Type = "("
	RPAREN         Type = ")"
	LBRACE         Type = "{"
	RBRACE         Type = "}"
	LBRACKET       Type = "["
	RBRACKET       Type = "]"
	COMMA          Type = ","
	SEMICOLON      Type = ";"
	COLON          Type = ":"
	DOUBLE_COLON   Type = "::"
	PERIOD         Type = "."
	ARROW          Type = "->"
	ARROW_FAILSAFE Type = "->~"
	QUESTION       Type = "?"
	GLOBAL_ARROW   Type = "global->"
	ELLIPSIS       Type = "..."

	// Keywords
	FUNC           Type = "func"
	VAR            Type = "var"
	LOCAL          Type = "local"
	STATIC         Type = "static"
	CONST          Type = "const"
	IF             Type = "if"
	ELSE           Type = "else"
	WHILE          Type = "while"
	FOR            Type = "for"
	RETURN         Type = "return"
	BREAK          Type = "break"
	CONTINUE       Type = "continue"
	INHERITED      Type = "inherited"
	SAFE_INHERITED Type = "_inherited"
	TRUE           Type = "true"
	FALSE          Type = "false"
	NIL            Type = "nil"
)

// Reserved keywords
var keywords = map[string]Type{
	"func":       FUNC,
	"var":        VAR,
	"local":      LOCAL,
	"static":     STATIC,
	"const":      CONST,
	"if":         IF,
	"else":       ELSE,
	"while":      WHILE,
	"for":        FOR,
	"return":     RETURN,
	"break":      BREAK,
	"continue":   CONTINUE,
	"inherited":  INHERITED,
	"_inherited": SAFE_INHERITED,
	"true":       TRUE,
	"false":      FALSE,
	"nil":        NIL,
}

// LookupIdentifier determines whether the identifier is a keyword at the
// given dialect level.
func LookupIdentifier(identifier string, level dialect.Level) Type {
	tok, ok := keywords[identifier]
	if !ok {
		return IDENT
	}
	if tok == NIL && !dialect.Enabled(dialect.NilKeyword, level) {
		return IDENT
	}
	return tok
}

// IsKeyword returns true if the token type is a reserved word.
func IsKeyword(t Type) bool {
	_, ok := keywords[string(t)]
	return ok
}
