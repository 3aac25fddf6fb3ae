// Package parser turns a stream of Aul tokens into an AST.
//
// A script is read twice by the same Parser implementation. In Preparse
// mode the parser registers every declaration with the resolver so that
// the Parse pass can resolve names used before their declaration. Errors
// found during preparse are not reported; the Parse pass finds them again.
//
// Errors are isolated per top-level declaration: the first error inside a
// function turns its body into an *ast.BadStmt holding the statements
// parsed so far, and parsing resumes after the function.
package parser

import (
	"context"
	"fmt"

	"github.com/aulscript/aul/ast"
	"github.com/aulscript/aul/dialect"
	"github.com/aulscript/aul/errors"
	"github.com/aulscript/aul/internal/lexer"
	"github.com/aulscript/aul/internal/token"
	"github.com/aulscript/aul/op"
	"github.com/aulscript/aul/symbol"
)

// DefaultMaxDepth is the default nesting limit for statements and
// expressions.
const DefaultMaxDepth = 500

// MaxErrors stops parsing once this many errors were collected.
const MaxErrors = 50

// Mode selects between the two passes over a script.
type Mode int

const (
	// Preparse registers declarations and leaves names unresolved.
	Preparse Mode = iota
	// Parse resolves names and reports errors.
	Parse
)

func (m Mode) String() string {
	if m == Preparse {
		return "preparse"
	}
	return "parse"
}

// Option is a configuration function for a Parser.
type Option func(*Parser)

// WithMode selects the pass. The default is Parse.
func WithMode(mode Mode) Option {
	return func(p *Parser) {
		p.mode = mode
	}
}

// WithScriptName sets the script name attached to errors.
func WithScriptName(name string) Option {
	return func(p *Parser) {
		p.script = name
	}
}

// WithMaxDepth sets the maximum nesting depth.
func WithMaxDepth(depth int) Option {
	return func(p *Parser) {
		p.maxDepth = depth
	}
}

// WithWarningHandler receives warnings from the lexer and the parser.
// Warnings are only delivered in Parse mode.
func WithWarningHandler(fn func(*errors.Warning)) Option {
	return func(p *Parser) {
		p.onWarning = fn
	}
}

// includer is implemented by resolvers that track #include and #appendto.
type includer interface {
	Include(parent string)
}

// Parser is a recursive-descent parser with precedence climbing for
// operators. It holds a single token of lookahead; longer lookahead is
// done by saving and restoring the lexer state.
type Parser struct {
	ctx      context.Context
	l        *lexer.Lexer
	resolver symbol.Resolver
	mode     Mode
	script   string

	prevToken token.Token
	curToken  token.Token
	// lexErr is the error that produced an ILLEGAL curToken.
	lexErr error

	depth    int
	maxDepth int

	errors    []*errors.CompileError
	warnings  []*errors.Warning
	onWarning func(*errors.Warning)
	// quiet suppresses warnings while looking ahead.
	quiet int

	// names declared so far in this pass, keyed by kind and name
	declared map[string]bool

	// state of the function being parsed
	fn       *symbol.Function
	fnName   string
	fnVars   map[string]bool
	loops    int
	includes []string
}

// New returns a Parser reading tokens from l and resolving names with r.
func New(l *lexer.Lexer, r symbol.Resolver, opts ...Option) *Parser {
	p := &Parser{
		ctx:      context.Background(),
		l:        l,
		resolver: r,
		mode:     Parse,
		maxDepth: DefaultMaxDepth,
		declared: map[string]bool{},
	}
	for _, opt := range opts {
		opt(p)
	}
	l.SetWarningHandler(p.lexerWarning)
	return p
}

// Mode returns the pass this parser runs.
func (p *Parser) Mode() Mode {
	return p.mode
}

// Errors returns every error found so far, including those a preparse
// does not report.
func (p *Parser) Errors() []*errors.CompileError {
	return p.errors
}

// Warnings returns the warnings found so far.
func (p *Parser) Warnings() []*errors.Warning {
	return p.warnings
}

// Parse reads the whole script. The returned script is never nil; broken
// functions appear in it with a *ast.BadStmt body. In Parse mode the error
// is an *Errors holding every collected error.
func (p *Parser) Parse(ctx context.Context) (*ast.Script, error) {
	p.ctx = ctx
	p.nextToken()
	script := &ast.Script{Span: ast.Span{From: p.curToken.StartPosition}}
	for !p.curTokenIs(token.EOF) {
		if err := ctx.Err(); err != nil {
			return script, err
		}
		if p.tooManyErrors() {
			break
		}
		start := p.curToken.StartPosition
		decl, err := p.parseDeclaration()
		if decl != nil {
			script.Decls = append(script.Decls, decl)
		}
		if err != nil {
			p.addError(err)
			if p.curToken.StartPosition == start && !p.curTokenIs(token.EOF) {
				p.nextToken()
			}
			p.synchronize()
		}
	}
	script.To = p.curToken.EndPosition
	if p.mode == Preparse {
		return script, nil
	}
	if errs := NewErrors(p.errors); errs != nil {
		return script, errs
	}
	return script, nil
}

// Includes returns the ids named by #include and #appendto directives.
func (p *Parser) Includes() []string {
	return p.includes
}

func (p *Parser) level() dialect.Level {
	return p.l.Dialect()
}

func (p *Parser) policy() lexer.StringPolicy {
	if p.mode == Preparse {
		return lexer.DiscardStrings
	}
	return lexer.HoldStrings
}

func (p *Parser) nextToken() {
	p.prevToken = p.curToken
	tok, err := p.l.Next(p.policy())
	p.lexErr = nil
	if err != nil {
		if !tok.StartPosition.IsValid() {
			tok.StartPosition = p.l.Position()
			tok.EndPosition = tok.StartPosition
		}
		tok.Type = token.ILLEGAL
		p.lexErr = err
	}
	p.curToken = tok
}

func (p *Parser) curTokenIs(t token.Type) bool {
	return p.curToken.Type == t
}

// curOperatorIs returns true if the current token is the named operator.
func (p *Parser) curOperatorIs(name string) bool {
	return p.curToken.Type == token.OPERATOR && op.Operators[p.curToken.Op].Name == name
}

// snapshot captures the parser position for backtracking.
type snapshot struct {
	state     lexer.State
	prevToken token.Token
	curToken  token.Token
	lexErr    error
}

func (p *Parser) save() snapshot {
	return snapshot{
		state:     p.l.SaveState(),
		prevToken: p.prevToken,
		curToken:  p.curToken,
		lexErr:    p.lexErr,
	}
}

func (p *Parser) restore(s snapshot) {
	p.l.RestoreState(s.state)
	p.prevToken = s.prevToken
	p.curToken = s.curToken
	p.lexErr = s.lexErr
}

// quietly runs f with warnings suppressed. Tokens read by f are lexed again
// after a restore, which reports their warnings once.
func (p *Parser) quietly(f func()) {
	p.quiet++
	defer func() { p.quiet-- }()
	f()
}

// peekToken returns the token after the current one without consuming it.
func (p *Parser) peekToken() token.Token {
	s := p.save()
	var tok token.Token
	p.quietly(func() {
		p.nextToken()
		tok = p.curToken
	})
	p.restore(s)
	return tok
}

func (p *Parser) peekTokenIs(t token.Type) bool {
	return p.peekToken().Type == t
}

// expect consumes a token of type t or fails.
func (p *Parser) expect(t token.Type, what string) error {
	if !p.curTokenIs(t) {
		return p.unexpected(what)
	}
	p.nextToken()
	return nil
}

func (p *Parser) spanFrom(start token.Position) ast.Span {
	return ast.Span{From: start, To: p.prevToken.EndPosition}
}

func (p *Parser) tokenSpan() ast.Span {
	return ast.Span{From: p.curToken.StartPosition, To: p.curToken.EndPosition}
}

func (p *Parser) enter() error {
	p.depth++
	if p.depth > p.maxDepth {
		return p.syntaxError(errors.E1009, p.curToken.StartPosition,
			"maximum nesting depth of %d exceeded", p.maxDepth)
	}
	return nil
}

func (p *Parser) leave() {
	p.depth--
}

func (p *Parser) tooManyErrors() bool {
	return len(p.errors) >= MaxErrors
}

func (p *Parser) newError(kind errors.Kind, code errors.ErrorCode, pos token.Position, format string, args ...any) *errors.CompileError {
	return &errors.CompileError{
		Code:     code,
		Kind:     kind,
		Message:  fmt.Sprintf(format, args...),
		Location: p.l.Location(pos),
		Function: p.fnName,
		Script:   p.script,
	}
}

func (p *Parser) syntaxError(code errors.ErrorCode, pos token.Position, format string, args ...any) *errors.CompileError {
	return p.newError(errors.SyntaxError, code, pos, format, args...)
}

func (p *Parser) semanticError(code errors.ErrorCode, pos token.Position, format string, args ...any) *errors.CompileError {
	return p.newError(errors.SemanticError, code, pos, format, args...)
}

// unexpected reports the current token. An ILLEGAL token reports the lexer
// error that produced it instead.
func (p *Parser) unexpected(expected string) error {
	return p.unexpectedAs(errors.E1001, expected)
}

// missingExpression reports a token that cannot start an expression.
func (p *Parser) missingExpression() error {
	return p.unexpectedAs(errors.E1004, "expression")
}

// expectedName reports a token where an identifier naming what was needed.
func (p *Parser) expectedName(what string) error {
	return p.unexpectedAs(errors.E1006, what)
}

func (p *Parser) unexpectedAs(code errors.ErrorCode, expected string) error {
	if p.curTokenIs(token.ILLEGAL) && p.lexErr != nil {
		return p.lexErr
	}
	return p.syntaxError(code, p.curToken.StartPosition,
		"unexpected %s, expected %s", tokenDescription(p.curToken), expected)
}

func (p *Parser) addError(err error) {
	if p.tooManyErrors() {
		return
	}
	var ce *errors.CompileError
	if !errors.As(err, &ce) {
		ce = &errors.CompileError{Code: errors.E1003, Kind: errors.SyntaxError, Message: err.Error()}
	}
	if ce.Function == "" {
		ce.Function = p.fnName
	}
	if ce.Script == "" {
		ce.Script = p.script
	}
	p.errors = append(p.errors, ce)
}

// feature applies the dialect rule for f at pos: nothing, a warning, or
// an error.
func (p *Parser) feature(f dialect.Feature, pos token.Position) error {
	switch dialect.Check(f, p.level()) {
	case dialect.Warn:
		p.warn(errors.W1001, pos, "%s is deprecated", f)
	case dialect.Forbidden:
		if f.Deprecated() {
			return p.syntaxError(errors.E2011, pos, "%s is not allowed in %s", f, p.level())
		}
		return p.newError(errors.SyntaxError, errors.E1013, pos,
			"%s is not available in %s", f, p.level())
	}
	return nil
}

func (p *Parser) warn(code errors.ErrorCode, pos token.Position, format string, args ...any) {
	p.emitWarning(&errors.Warning{
		Code:     code,
		Message:  fmt.Sprintf(format, args...),
		Location: p.l.Location(pos),
	})
}

func (p *Parser) lexerWarning(w *errors.Warning) {
	p.emitWarning(w)
}

func (p *Parser) emitWarning(w *errors.Warning) {
	if p.mode == Preparse || p.quiet > 0 {
		return
	}
	if w.Function == "" {
		w.Function = p.fnName
	}
	if w.Script == "" {
		w.Script = p.script
	}
	p.warnings = append(p.warnings, w)
	if p.onWarning != nil {
		p.onWarning(w)
	}
}

// synchronize skips to the start of the next top-level declaration,
// stepping over balanced braces.
func (p *Parser) synchronize() {
	p.quietly(func() {
		for !p.atDeclarationStart() {
			if p.curTokenIs(token.LBRACE) {
				p.skipBraces()
				continue
			}
			p.nextToken()
		}
	})
}

// atDeclarationStart returns true at EOF and at tokens that can only start
// a top-level declaration.
func (p *Parser) atDeclarationStart() bool {
	switch p.curToken.Type {
	case token.EOF, token.FUNC, token.DIRECTIVE, token.LOCAL, token.STATIC:
		return true
	case token.IDENT:
		next := p.peekToken()
		if _, ok := symbol.LookupAccess(p.curToken.Literal); ok && next.Type == token.FUNC {
			return true
		}
		return next.Type == token.COLON
	}
	return false
}

// skipBraces consumes a balanced {...} group starting at the current "{".
// It stops early at a token that can only begin a declaration, so an
// unterminated body does not swallow the functions after it.
func (p *Parser) skipBraces() {
	depth := 0
	for !p.curTokenIs(token.EOF) {
		switch p.curToken.Type {
		case token.LBRACE:
			depth++
		case token.RBRACE:
			depth--
		case token.FUNC, token.DIRECTIVE:
			if depth > 0 {
				return
			}
		case token.IDENT:
			if _, ok := symbol.LookupAccess(p.curToken.Literal); ok && depth > 0 && p.peekTokenIs(token.FUNC) {
				return
			}
		}
		p.nextToken()
		if depth <= 0 {
			return
		}
	}
}

func (p *Parser) beginFunction(name string) {
	p.fnName = name
	p.fn = nil
	p.fnVars = map[string]bool{}
	p.loops = 0
}

func (p *Parser) endFunction() {
	p.fnName = ""
	p.fn = nil
	p.fnVars = nil
	p.loops = 0
}

// redeclared records a declaration and returns true if the same kind and
// name was already declared in this pass. Only the Parse pass checks.
func (p *Parser) redeclared(kind, name string) bool {
	if p.mode != Parse {
		return false
	}
	key := kind + " " + name
	if p.declared[key] {
		return true
	}
	p.declared[key] = true
	return false
}

// registered filters the error of a resolver Register call. Duplicates are
// expected on the second pass; other failures are reported.
func (p *Parser) registered(slot int, err error, pos token.Position) (int, error) {
	if err == nil {
		return slot, nil
	}
	var dup *symbol.DuplicateError
	if errors.As(err, &dup) {
		return slot, nil
	}
	return slot, p.semanticError(errors.E2005, pos, "%v", err)
}
