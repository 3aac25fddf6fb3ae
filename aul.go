// Package aul compiles Aul scripts into bytecode.
//
// Compilation runs in three steps over one source buffer: a preparse that
// registers the script's declarations with the symbol resolver, a parse
// that builds the syntax tree with every name resolved, and code
// generation. A function that fails to parse does not stop the others
// from compiling; its code fails at runtime with the original error.
//
//	result, err := aul.Compile(ctx, source, aul.WithScriptName("Rock"))
//	if err != nil {
//		return err // internal failure or cancellation
//	}
//	if err := result.Err(); err != nil {
//		fmt.Println(err) // compile errors, one per line
//	}
package aul

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/aulscript/aul/ast"
	"github.com/aulscript/aul/bytecode"
	"github.com/aulscript/aul/compiler"
	"github.com/aulscript/aul/dialect"
	"github.com/aulscript/aul/errors"
	"github.com/aulscript/aul/internal/lexer"
	"github.com/aulscript/aul/parser"
	"github.com/aulscript/aul/symbol"
	"github.com/rs/zerolog"
)

// DefaultScriptName is used when neither a script name nor a filename is
// given.
const DefaultScriptName = "Main"

// Option configures a compilation.
type Option func(*options)

type options struct {
	filename   string
	scriptName string
	level      dialect.Level
	resolver   symbol.Resolver
	table      *symbol.Table
	strings    *bytecode.StringTable
	logger     zerolog.Logger
	maxDepth   int
}

func collectOptions(opts ...Option) *options {
	o := &options{logger: zerolog.Nop()}
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}
	if o.scriptName == "" {
		o.scriptName = scriptNameFromFile(o.filename)
	}
	return o
}

func scriptNameFromFile(filename string) string {
	if filename == "" {
		return DefaultScriptName
	}
	base := filepath.Base(filename)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func (o *options) lexerOpts() []lexer.Option {
	opts := []lexer.Option{lexer.WithDialect(o.level)}
	if o.filename != "" {
		opts = append(opts, lexer.WithFile(o.filename))
	}
	return opts
}

func (o *options) parserOpts(mode parser.Mode) []parser.Option {
	opts := []parser.Option{
		parser.WithMode(mode),
		parser.WithScriptName(o.scriptName),
	}
	if o.maxDepth > 0 {
		opts = append(opts, parser.WithMaxDepth(o.maxDepth))
	}
	return opts
}

// resolverFor returns the resolver the script's names are registered with.
// A table's entry for the script is reset first so a script can be
// compiled again.
func (o *options) resolverFor() symbol.Resolver {
	if o.resolver != nil {
		return o.resolver
	}
	table := o.table
	if table == nil {
		table = symbol.NewTable()
	}
	table.Reset(o.scriptName)
	return table.Script(o.scriptName)
}

// WithFilename sets the filename used in error locations. Without
// WithScriptName, the script is named after the file.
func WithFilename(filename string) Option {
	return func(o *options) {
		o.filename = filename
	}
}

// WithScriptName sets the name the script's functions are registered
// under.
func WithScriptName(name string) Option {
	return func(o *options) {
		o.scriptName = name
	}
}

// WithDialect sets the dialect level in effect until a #strict directive
// changes it. The default is the legacy dialect.
func WithDialect(level dialect.Level) Option {
	return func(o *options) {
		o.level = level
	}
}

// WithResolver sets the resolver names are looked up in and registered
// with. It takes precedence over WithTable.
func WithResolver(r symbol.Resolver) Option {
	return func(o *options) {
		o.resolver = r
	}
}

// WithTable compiles the script into a shared symbol table, which makes
// the functions and globals of previously compiled scripts visible.
func WithTable(table *symbol.Table) Option {
	return func(o *options) {
		o.table = table
	}
}

// WithStrings sets the string table literals are interned into.
func WithStrings(strings *bytecode.StringTable) Option {
	return func(o *options) {
		o.strings = strings
	}
}

// WithLogger sets the logger compile errors and warnings are reported to.
// By default nothing is logged.
func WithLogger(logger zerolog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithMaxDepth limits the nesting depth of the parser.
func WithMaxDepth(depth int) Option {
	return func(o *options) {
		o.maxDepth = depth
	}
}

// Compile compiles source into bytecode. Compile errors do not make
// Compile fail: they are reported on the result, and the functions they
// occur in compile to code that fails when called. The returned error is
// non-nil only when the context is cancelled or the compiler detects an
// internal inconsistency.
func Compile(ctx context.Context, source string, opts ...Option) (*Result, error) {
	o := collectOptions(opts...)
	logger := o.logger.With().Str("script", o.scriptName).Logger()
	resolver := o.resolverFor()

	pre := parser.New(lexer.New(source, o.lexerOpts()...), resolver, o.parserOpts(parser.Preparse)...)
	if _, err := pre.Parse(ctx); err != nil {
		return nil, err
	}

	strs := o.strings
	if strs == nil {
		strs = bytecode.NewStringTable()
	}
	result := &Result{}
	p := parser.New(
		lexer.New(source, append(o.lexerOpts(), lexer.WithInterner(strs))...),
		resolver,
		append(o.parserOpts(parser.Parse), parser.WithWarningHandler(func(w *errors.Warning) {
			result.Warnings = append(result.Warnings, w)
			logWarning(logger, w)
		}))...,
	)
	script, err := p.Parse(ctx)
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}
	result.AST = script
	result.Errors = p.Errors()
	result.Includes = p.Includes()
	for _, e := range result.Errors {
		logError(logger, e)
	}
	if err != nil && len(result.Errors) == 0 {
		return nil, err
	}

	code, err := compiler.Compile(script,
		compiler.WithStrings(strs),
		compiler.WithFilename(o.filename),
		compiler.WithSource(source),
		compiler.WithScriptName(o.scriptName),
		compiler.WithErrors(result.Errors))
	if err != nil {
		logger.Error().Err(err).Msg("code generation failed")
		return nil, err
	}
	result.Code = code
	if n := len(result.ErroredFunctions()); n > 0 {
		logger.Debug().Int("errored", n).Msg("compiled with errors")
	}
	return result, nil
}

func logError(logger zerolog.Logger, e *errors.CompileError) {
	logger.Error().
		Str("code", string(e.Code)).
		Str("kind", e.Kind.String()).
		Str("function", e.Function).
		Int("line", e.Location.Line).
		Int("column", e.Location.Column).
		Msg(e.Message)
}

func logWarning(logger zerolog.Logger, w *errors.Warning) {
	logger.Warn().
		Str("code", string(w.Code)).
		Str("function", w.Function).
		Int("line", w.Location.Line).
		Int("column", w.Location.Column).
		Msg(w.Message)
}

// Parse runs both parser passes without generating code. It returns the
// syntax tree together with the parse errors, if any.
func Parse(ctx context.Context, source string, opts ...Option) (*ast.Script, error) {
	o := collectOptions(opts...)
	resolver := o.resolverFor()
	pre := parser.New(lexer.New(source, o.lexerOpts()...), resolver, o.parserOpts(parser.Preparse)...)
	if _, err := pre.Parse(ctx); err != nil {
		return nil, err
	}
	p := parser.New(lexer.New(source, o.lexerOpts()...), resolver, o.parserOpts(parser.Parse)...)
	return p.Parse(ctx)
}
