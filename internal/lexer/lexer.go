// Package lexer converts Aul source text into tokens.
//
// Lexing is dialect aware: the accepted identifier charset, keywords and
// alphabetic operator aliases depend on the current dialect level, which
// the parser may raise mid-file when it sees a "#strict" directive.
package lexer

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/aulscript/aul/dialect"
	"github.com/aulscript/aul/errors"
	"github.com/aulscript/aul/internal/token"
	"github.com/aulscript/aul/op"
	"github.com/aulscript/aul/value"
)

// StringPolicy controls what happens to the text of string literals.
type StringPolicy int

const (
	// DiscardStrings decodes the literal but does not intern it.
	DiscardStrings StringPolicy = iota
	// HoldStrings interns the literal for the lifetime of the code unit.
	HoldStrings
	// RefStrings interns the literal and takes a reference on it.
	RefStrings
)

// Interner stores string literals and returns stable handles for them.
type Interner interface {
	Hold(s string) int
	Ref(s string) int
}

// WarningFunc receives non-fatal diagnostics.
type WarningFunc func(w *errors.Warning)

// State is a snapshot of the lexer used to rewind after lookahead.
type State struct {
	pos             int
	line            int
	lineStart       int
	level           dialect.Level
	prevEndsOperand bool
}

// Lexer produces tokens one at a time.
type Lexer struct {
	input     string
	file      string
	pos       int
	line      int
	lineStart int
	level     dialect.Level
	// prevEndsOperand is set when the previous token completed an operand,
	// in which case a following sign is an operator.
	prevEndsOperand bool
	strings         Interner
	onWarning       WarningFunc
}

// Option is a configuration function for a Lexer.
type Option func(*Lexer)

// WithFile sets the filename reported in positions.
func WithFile(file string) Option {
	return func(l *Lexer) {
		l.file = file
	}
}

// WithDialect sets the initial dialect level.
func WithDialect(level dialect.Level) Option {
	return func(l *Lexer) {
		l.level = level
	}
}

// WithInterner sets the table string literals are interned into.
func WithInterner(i Interner) Option {
	return func(l *Lexer) {
		l.strings = i
	}
}

// WithWarningHandler sets the callback that receives warnings.
func WithWarningHandler(fn WarningFunc) Option {
	return func(l *Lexer) {
		l.onWarning = fn
	}
}

// New returns a Lexer for the given input.
func New(input string, opts ...Option) *Lexer {
	l := &Lexer{input: input}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Dialect returns the current dialect level.
func (l *Lexer) Dialect() dialect.Level {
	return l.level
}

// SetDialect switches the dialect level for the remainder of the input.
func (l *Lexer) SetDialect(level dialect.Level) {
	l.level = level
}

// SetWarningHandler replaces the warning callback.
func (l *Lexer) SetWarningHandler(fn WarningFunc) {
	l.onWarning = fn
}

// File returns the filename used in positions.
func (l *Lexer) File() string {
	return l.file
}

// SaveState captures the current position.
func (l *Lexer) SaveState() State {
	return State{
		pos:             l.pos,
		line:            l.line,
		lineStart:       l.lineStart,
		level:           l.level,
		prevEndsOperand: l.prevEndsOperand,
	}
}

// RestoreState rewinds to a previously saved position.
func (l *Lexer) RestoreState(s State) {
	l.pos = s.pos
	l.line = s.line
	l.lineStart = s.lineStart
	l.level = s.level
	l.prevEndsOperand = s.prevEndsOperand
}

// Position returns the current position.
func (l *Lexer) Position() token.Position {
	return token.Position{
		Char:      l.pos,
		LineStart: l.lineStart,
		Line:      l.line,
		Column:    l.pos - l.lineStart,
		File:      l.file,
	}
}

// GetLineText returns the source line containing the given position,
// without its line terminator.
func (l *Lexer) GetLineText(p token.Position) string {
	start := p.LineStart
	if start < 0 || start > len(l.input) {
		return ""
	}
	end := strings.IndexByte(l.input[start:], '\n')
	if end < 0 {
		end = len(l.input)
	} else {
		end += start
	}
	return strings.TrimRight(l.input[start:end], "\r")
}

// Location converts a position into an error location with source text.
func (l *Lexer) Location(p token.Position) errors.SourceLocation {
	return errors.SourceLocation{
		Filename: p.File,
		Offset:   p.Char,
		Line:     p.LineNumber(),
		Column:   p.ColumnNumber(),
		Source:   l.GetLineText(p),
	}
}

// Next returns the next token. String literals are handled according to
// the given policy.
func (l *Lexer) Next(policy StringPolicy) (token.Token, error) {
	if err := l.skipWhitespace(); err != nil {
		return token.Token{Type: token.ILLEGAL}, err
	}
	start := l.Position()
	tok, err := l.scan(start, policy)
	tok.StartPosition = start
	tok.EndPosition = l.Position()
	if err != nil {
		tok.Type = token.ILLEGAL
		return tok, err
	}
	l.prevEndsOperand = l.endsOperand(tok)
	return tok, nil
}

func (l *Lexer) endsOperand(tok token.Token) bool {
	switch tok.Type {
	case token.IDENT, token.INT, token.STRING, token.ID, token.TRUE,
		token.FALSE, token.NIL, token.RPAREN, token.RBRACKET:
		return true
	case token.OPERATOR:
		// x++ - 1 still ends an operand after the postfix operator
		name := op.Operators[tok.Op].Name
		if name == "++" || name == "--" {
			return l.prevEndsOperand
		}
	}
	return false
}

func (l *Lexer) scan(start token.Position, policy StringPolicy) (token.Token, error) {
	if l.pos >= len(l.input) {
		return token.Token{Type: token.EOF, Str: -1}, nil
	}
	ch := l.input[l.pos]
	switch {
	case ch == '#':
		return l.readDirective(start)
	case isDigit(ch):
		return l.readNumber(start, false)
	case (ch == '-' || ch == '+') && isDigit(l.peekAt(1)) && !l.prevEndsOperand:
		return l.readNumber(start, true)
	case ch == '"':
		return l.readString(start, policy)
	case isLetter(ch) || (ch >= utf8.RuneSelf && dialect.Enabled(dialect.UnicodeIdentifiers, l.level)):
		return l.readWord(start)
	}
	if tok, ok := l.readPunctuation(); ok {
		return tok, nil
	}
	if tok, ok := l.readOperator(); ok {
		return tok, nil
	}
	r, size := utf8.DecodeRuneInString(l.input[l.pos:])
	l.pos += size
	return token.Token{}, l.errorf(errors.E1011, start, "illegal character %q", r)
}

func (l *Lexer) peekAt(n int) byte {
	if l.pos+n >= len(l.input) {
		return 0
	}
	return l.input[l.pos+n]
}

func (l *Lexer) hasPrefix(s string) bool {
	return strings.HasPrefix(l.input[l.pos:], s)
}

func (l *Lexer) newline() {
	l.line++
	l.lineStart = l.pos
}

func (l *Lexer) skipWhitespace() error {
	for l.pos < len(l.input) {
		ch := l.input[l.pos]
		switch {
		case ch == '\n':
			l.pos++
			l.newline()
		case ch == ' ' || ch == '\t' || ch == '\r' || ch == '\f' || ch == '\v':
			l.pos++
		case ch == '/' && l.peekAt(1) == '/':
			for l.pos < len(l.input) && l.input[l.pos] != '\n' {
				l.pos++
			}
		case ch == '/' && l.peekAt(1) == '*':
			start := l.Position()
			l.pos += 2
			for {
				if l.pos >= len(l.input) {
					return l.errorf(errors.E1007, start, "unterminated comment")
				}
				if l.hasPrefix("*/") {
					l.pos += 2
					break
				}
				l.pos++
				if l.input[l.pos-1] == '\n' {
					l.newline()
				}
			}
		default:
			return nil
		}
	}
	return nil
}

func (l *Lexer) readDirective(start token.Position) (token.Token, error) {
	l.pos++
	nameStart := l.pos
	for l.pos < len(l.input) && isLetter(l.input[l.pos]) {
		l.pos++
	}
	name := l.input[nameStart:l.pos]
	if name == "" {
		return token.Token{}, l.errorf(errors.E1012, start, "missing directive name after '#'")
	}
	restStart := l.pos
	for l.pos < len(l.input) && l.input[l.pos] != '\n' {
		l.pos++
	}
	return token.Token{
		Type:      token.DIRECTIVE,
		Literal:   name,
		Directive: strings.TrimSpace(l.input[restStart:l.pos]),
		Str:       -1,
	}, nil
}

func (l *Lexer) readNumber(start token.Position, signed bool) (token.Token, error) {
	negative := false
	if signed {
		negative = l.input[l.pos] == '-'
		l.pos++
	}
	litStart := l.pos
	var val int64
	if l.input[l.pos] == '0' && (l.peekAt(1) == 'x' || l.peekAt(1) == 'X') {
		l.pos += 2
		digitsStart := l.pos
		for l.pos < len(l.input) && isHexDigit(l.input[l.pos]) {
			l.pos++
		}
		digits := l.input[digitsStart:l.pos]
		if digits == "" {
			return token.Token{}, l.errorf(errors.E1008, start, "hex literal %q has no digits", l.input[litStart:l.pos])
		}
		u, err := strconv.ParseUint(digits, 16, 32)
		if err != nil {
			return token.Token{}, l.errorf(errors.E1008, start, "hex literal 0x%s out of range", digits)
		}
		// 0x80000000 and above wrap around to negative values
		val = int64(int32(uint32(u)))
	} else {
		for l.pos < len(l.input) && isDigit(l.input[l.pos]) {
			l.pos++
		}
		digits := l.input[litStart:l.pos]
		n, err := strconv.ParseInt(digits, 10, 64)
		if err != nil || n > 1<<31 {
			return token.Token{}, l.errorf(errors.E1008, start, "integer literal %s out of range", digits)
		}
		val = n
	}
	if l.pos < len(l.input) && isIdentChar(l.input[l.pos]) {
		for l.pos < len(l.input) && isIdentChar(l.input[l.pos]) {
			l.pos++
		}
		return token.Token{}, l.errorf(errors.E1008, start, "malformed number %q", l.input[start.Char:l.pos])
	}
	if negative {
		val = -val
	}
	if val > 1<<31-1 || val < -1<<31 {
		return token.Token{}, l.errorf(errors.E1008, start, "integer literal %s out of range", l.input[start.Char:l.pos])
	}
	return token.Token{
		Type:    token.INT,
		Literal: l.input[start.Char:l.pos],
		Int:     int32(val),
		Str:     -1,
	}, nil
}

func (l *Lexer) readString(start token.Position, policy StringPolicy) (token.Token, error) {
	l.pos++ // opening quote
	var b strings.Builder
	for {
		if l.pos >= len(l.input) {
			return token.Token{}, l.errorf(errors.E1002, start, "unterminated string")
		}
		ch := l.input[l.pos]
		switch {
		case ch == '"':
			l.pos++
			s := b.String()
			return token.Token{
				Type:    token.STRING,
				Literal: s,
				Str:     l.intern(s, policy),
			}, nil
		case ch == '\\':
			next := l.peekAt(1)
			if l.pos+1 >= len(l.input) {
				l.pos++
				return token.Token{}, l.errorf(errors.E1002, start, "unterminated string")
			}
			if next == '"' || next == '\\' {
				b.WriteByte(next)
			} else if next < 0x20 {
				l.pos++
				return token.Token{}, l.errorf(errors.E1010, l.Position(), "control character %q in string", next)
			} else {
				l.warn(errors.W1002, dialect.UnknownEscape, l.Position(),
					fmt.Sprintf("unknown escape sequence \\%c", next))
				b.WriteByte('\\')
				b.WriteByte(next)
			}
			l.pos += 2
		case ch < 0x20:
			return token.Token{}, l.errorf(errors.E1010, l.Position(), "control character %q in string", ch)
		default:
			b.WriteByte(ch)
			l.pos++
		}
	}
}

func (l *Lexer) intern(s string, policy StringPolicy) int {
	if l.strings == nil {
		return -1
	}
	switch policy {
	case HoldStrings:
		return l.strings.Hold(s)
	case RefStrings:
		return l.strings.Ref(s)
	}
	return -1
}

func (l *Lexer) readWord(start token.Position) (token.Token, error) {
	unicodeOK := dialect.Enabled(dialect.UnicodeIdentifiers, l.level)
	for l.pos < len(l.input) {
		ch := l.input[l.pos]
		if isIdentChar(ch) {
			l.pos++
			continue
		}
		if ch >= utf8.RuneSelf && unicodeOK {
			r, size := utf8.DecodeRuneInString(l.input[l.pos:])
			if unicode.IsLetter(r) || unicode.IsDigit(r) {
				l.pos += size
				continue
			}
		}
		break
	}
	word := l.input[start.Char:l.pos]
	if word == "" {
		r, size := utf8.DecodeRuneInString(l.input[l.pos:])
		l.pos += size
		return token.Token{}, l.errorf(errors.E1011, start, "illegal character %q", r)
	}

	if word == "global" && l.hasPrefix("->") && !l.hasPrefix("->~") &&
		dialect.Enabled(dialect.GlobalArrow, l.level) {
		l.pos += 2
		return token.Token{Type: token.GLOBAL_ARROW, Literal: "global->", Str: -1}, nil
	}
	if dialect.Enabled(dialect.AliasOperators, l.level) {
		name := word
		// S= must not swallow the first half of ==
		if word == "S" && l.peekAt(0) == '=' && l.peekAt(1) != '=' {
			l.pos++
			name = "S="
		}
		if name == "eq" || name == "ne" || name == "S=" {
			return token.Token{Type: token.OPERATOR, Literal: name, Op: op.Index(name), Str: -1}, nil
		}
	}
	if value.LooksLikeID(word) {
		return token.Token{
			Type:    token.ID,
			Literal: word,
			Int:     int32(value.PackID(word)),
			Str:     -1,
		}, nil
	}
	return token.Token{
		Type:    token.LookupIdentifier(word, l.level),
		Literal: word,
		Str:     -1,
	}, nil
}

var punctuation = []token.Type{
	token.ARROW_FAILSAFE,
	token.ELLIPSIS,
	token.ARROW,
	token.DOUBLE_COLON,
	token.LPAREN,
	token.RPAREN,
	token.LBRACE,
	token.RBRACE,
	token.LBRACKET,
	token.RBRACKET,
	token.COMMA,
	token.SEMICOLON,
	token.COLON,
}

func (l *Lexer) readPunctuation() (token.Token, bool) {
	for _, p := range punctuation {
		if l.hasPrefix(string(p)) {
			l.pos += len(p)
			return token.Token{Type: p, Literal: string(p), Str: -1}, true
		}
	}
	// "." and "?" only when no operator starts here (".." and "??")
	switch {
	case l.hasPrefix("."):
		if l.hasPrefix("..") {
			return token.Token{}, false
		}
		l.pos++
		return token.Token{Type: token.PERIOD, Literal: ".", Str: -1}, true
	case l.hasPrefix("?"):
		if l.hasPrefix("??") {
			return token.Token{}, false
		}
		l.pos++
		return token.Token{Type: token.QUESTION, Literal: "?", Str: -1}, true
	}
	return token.Token{}, false
}

// readOperator finds the longest operator in the table matching the input.
func (l *Lexer) readOperator() (token.Token, bool) {
	for n := op.MaxOperatorLen; n > 0; n-- {
		if l.pos+n > len(l.input) {
			continue
		}
		candidate := l.input[l.pos : l.pos+n]
		i := op.Index(candidate)
		if i < 0 || op.Operators[i].Alpha() {
			continue
		}
		l.pos += n
		return token.Token{Type: token.OPERATOR, Literal: candidate, Op: i, Str: -1}, true
	}
	return token.Token{}, false
}

func (l *Lexer) errorf(code errors.ErrorCode, p token.Position, format string, args ...any) *errors.CompileError {
	return &errors.CompileError{
		Code:     code,
		Kind:     errors.LexError,
		Message:  fmt.Sprintf(format, args...),
		Location: l.Location(p),
	}
}

func (l *Lexer) warn(code errors.ErrorCode, f dialect.Feature, p token.Position, msg string) {
	if l.onWarning == nil || dialect.Check(f, l.level) != dialect.Warn {
		return
	}
	l.onWarning(&errors.Warning{
		Code:     code,
		Message:  msg,
		Location: l.Location(p),
	})
}

func isDigit(ch byte) bool {
	return '0' <= ch && ch <= '9'
}

func isHexDigit(ch byte) bool {
	return isDigit(ch) || ('a' <= ch && ch <= 'f') || ('A' <= ch && ch <= 'F')
}

func isLetter(ch byte) bool {
	return ('a' <= ch && ch <= 'z') || ('A' <= ch && ch <= 'Z') || ch == '_'
}

func isIdentChar(ch byte) bool {
	return isLetter(ch) || isDigit(ch)
}
