package lexer

import (
	"testing"

	"github.com/aulscript/aul/dialect"
	"github.com/aulscript/aul/errors"
	"github.com/aulscript/aul/internal/token"
	"github.com/stretchr/testify/require"
)

type expectedToken struct {
	typ     token.Type
	literal string
}

func lexAll(t *testing.T, l *Lexer, tests []expectedToken) {
	t.Helper()
	for i, tt := range tests {
		tok, err := l.Next(HoldStrings)
		require.NoError(t, err, "tests[%d]", i)
		require.Equal(t, tt.typ, tok.Type, "tests[%d] - tokentype wrong", i)
		require.Equal(t, tt.literal, tok.Literal, "tests[%d] - literal wrong", i)
	}
}

func TestPunctuationAndOperators(t *testing.T) {
	input := `( ) { } [ ] , ; : :: . -> ->~ ? ... ** **= ?? ??= .. ..= == != <<= ~ ++`
	lexAll(t, New(input), []expectedToken{
		{token.LPAREN, "("},
		{token.RPAREN, ")"},
		{token.LBRACE, "{"},
		{token.RBRACE, "}"},
		{token.LBRACKET, "["},
		{token.RBRACKET, "]"},
		{token.COMMA, ","},
		{token.SEMICOLON, ";"},
		{token.COLON, ":"},
		{token.DOUBLE_COLON, "::"},
		{token.PERIOD, "."},
		{token.ARROW, "->"},
		{token.ARROW_FAILSAFE, "->~"},
		{token.QUESTION, "?"},
		{token.ELLIPSIS, "..."},
		{token.OPERATOR, "**"},
		{token.OPERATOR, "**="},
		{token.OPERATOR, "??"},
		{token.OPERATOR, "??="},
		{token.OPERATOR, ".."},
		{token.OPERATOR, "..="},
		{token.OPERATOR, "=="},
		{token.OPERATOR, "!="},
		{token.OPERATOR, "<<="},
		{token.OPERATOR, "~"},
		{token.OPERATOR, "++"},
		{token.EOF, ""},
	})
}

func TestKeywordsAndIdentifiers(t *testing.T) {
	input := `func Test(a) { var x = nil; return _inherited(a); }`
	lexAll(t, New(input, WithDialect(dialect.Strict1)), []expectedToken{
		{token.FUNC, "func"},
		{token.IDENT, "Test"},
		{token.LPAREN, "("},
		{token.IDENT, "a"},
		{token.RPAREN, ")"},
		{token.LBRACE, "{"},
		{token.VAR, "var"},
		{token.IDENT, "x"},
		{token.OPERATOR, "="},
		{token.NIL, "nil"},
		{token.SEMICOLON, ";"},
		{token.RETURN, "return"},
		{token.SAFE_INHERITED, "_inherited"},
		{token.LPAREN, "("},
		{token.IDENT, "a"},
		{token.RPAREN, ")"},
		{token.SEMICOLON, ";"},
		{token.RBRACE, "}"},
		{token.EOF, ""},
	})
}

func TestNilIsIdentifierInLegacy(t *testing.T) {
	lexAll(t, New("nil"), []expectedToken{{token.IDENT, "nil"}})
}

func TestIDLiterals(t *testing.T) {
	l := New("CLNK Clnk ABCDE A_1B")
	tok, err := l.Next(DiscardStrings)
	require.NoError(t, err)
	require.Equal(t, token.ID, tok.Type)
	require.Equal(t, int32(0x434C4E4B), tok.Int)

	for _, want := range []token.Type{token.IDENT, token.IDENT, token.ID} {
		tok, err = l.Next(DiscardStrings)
		require.NoError(t, err)
		require.Equal(t, want, tok.Type, tok.Literal)
	}
}

func TestIntegers(t *testing.T) {
	tests := []struct {
		input string
		want  int32
	}{
		{"10", 10},
		{"0x10", 16},
		{"0XfF", 255},
		{"2147483647", 2147483647},
		{"-2147483648", -2147483648},
		{"0xFFFFFFFF", -1},
		{"0x80000000", -2147483648},
		{"-5", -5},
		{"+7", 7},
	}
	for _, tt := range tests {
		tok, err := New(tt.input).Next(DiscardStrings)
		require.NoError(t, err, tt.input)
		require.Equal(t, token.INT, tok.Type, tt.input)
		require.Equal(t, tt.want, tok.Int, tt.input)
	}
}

func TestInvalidIntegers(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"12ab", `malformed number "12ab"`},
		{"0x", `hex literal "0x" has no digits`},
		{"0x1FFFFFFFF", "hex literal 0x1FFFFFFFF out of range"},
		{"2147483648", "integer literal 2147483648 out of range"},
		{"99999999999999999999", "integer literal 99999999999999999999 out of range"},
	}
	for _, tt := range tests {
		_, err := New(tt.input).Next(DiscardStrings)
		require.Error(t, err, tt.input)
		var ce *errors.CompileError
		require.ErrorAs(t, err, &ce)
		require.Equal(t, errors.LexError, ce.Kind)
		require.Equal(t, errors.E1008, ce.Code)
		require.Equal(t, tt.expected, ce.Message)
	}
}

func TestSignAbsorption(t *testing.T) {
	// after an operand the sign is an operator
	lexAll(t, New("x-1"), []expectedToken{
		{token.IDENT, "x"},
		{token.OPERATOR, "-"},
		{token.INT, "1"},
	})
	lexAll(t, New("a[0]-1"), []expectedToken{
		{token.IDENT, "a"},
		{token.LBRACKET, "["},
		{token.INT, "0"},
		{token.RBRACKET, "]"},
		{token.OPERATOR, "-"},
		{token.INT, "1"},
	})
	// at the start of an operand it belongs to the literal
	lexAll(t, New("return -1; x = +2"), []expectedToken{
		{token.RETURN, "return"},
		{token.INT, "-1"},
		{token.SEMICOLON, ";"},
		{token.IDENT, "x"},
		{token.OPERATOR, "="},
		{token.INT, "+2"},
	})
	lexAll(t, New("x++ -1"), []expectedToken{
		{token.IDENT, "x"},
		{token.OPERATOR, "++"},
		{token.OPERATOR, "-"},
		{token.INT, "1"},
	})
}

func TestStrings(t *testing.T) {
	var warnings []*errors.Warning
	l := New(`"a\"b\\c" "\q"`, WithWarningHandler(func(w *errors.Warning) {
		warnings = append(warnings, w)
	}))
	lexAll(t, l, []expectedToken{
		{token.STRING, `a"b\c`},
		{token.STRING, `\q`},
		{token.EOF, ""},
	})
	require.Len(t, warnings, 1)
	require.Equal(t, errors.W1002, warnings[0].Code)
	require.Equal(t, 1, warnings[0].Location.Line)
}

func TestStringErrors(t *testing.T) {
	tests := []struct {
		input string
		code  errors.ErrorCode
	}{
		{`"abc`, errors.E1002},
		{`"abc\`, errors.E1002},
		{"\"a\nb\"", errors.E1010},
		{"\"a\tb\"", errors.E1010},
	}
	for _, tt := range tests {
		_, err := New(tt.input).Next(HoldStrings)
		var ce *errors.CompileError
		require.ErrorAs(t, err, &ce, tt.input)
		require.Equal(t, tt.code, ce.Code, tt.input)
	}
}

type fakeInterner struct {
	held []string
	refs []string
}

func (f *fakeInterner) Hold(s string) int {
	f.held = append(f.held, s)
	return len(f.held) - 1
}

func (f *fakeInterner) Ref(s string) int {
	f.refs = append(f.refs, s)
	return len(f.refs) - 1
}

func TestStringPolicy(t *testing.T) {
	in := &fakeInterner{}
	l := New(`"a" "b" "c"`, WithInterner(in))

	tok, err := l.Next(DiscardStrings)
	require.NoError(t, err)
	require.Equal(t, -1, tok.Str)
	require.Equal(t, "a", tok.Literal)

	tok, err = l.Next(HoldStrings)
	require.NoError(t, err)
	require.Equal(t, 0, tok.Str)

	tok, err = l.Next(RefStrings)
	require.NoError(t, err)
	require.Equal(t, 0, tok.Str)

	require.Equal(t, []string{"b"}, in.held)
	require.Equal(t, []string{"c"}, in.refs)
}

func TestComments(t *testing.T) {
	input := `a // line comment
/* block
comment */ b`
	l := New(input)
	lexAll(t, l, []expectedToken{
		{token.IDENT, "a"},
		{token.IDENT, "b"},
	})
	require.Equal(t, 2, l.Position().Line)

	_, err := New("/* open").Next(DiscardStrings)
	var ce *errors.CompileError
	require.ErrorAs(t, err, &ce)
	require.Equal(t, errors.E1007, ce.Code)
}

func TestDirectives(t *testing.T) {
	l := New("#strict 2\n#include CLNK // base\nfunc")
	tok, err := l.Next(DiscardStrings)
	require.NoError(t, err)
	require.Equal(t, token.DIRECTIVE, tok.Type)
	require.Equal(t, "strict", tok.Literal)
	require.Equal(t, "2", tok.Directive)

	tok, err = l.Next(DiscardStrings)
	require.NoError(t, err)
	require.Equal(t, "include", tok.Literal)
	require.Equal(t, "CLNK // base", tok.Directive)

	tok, err = l.Next(DiscardStrings)
	require.NoError(t, err)
	require.Equal(t, token.FUNC, tok.Type)
}

func TestAliasOperators(t *testing.T) {
	legacy := `a eq b ne c S= d eql S==e`
	lexAll(t, New(legacy), []expectedToken{
		{token.IDENT, "a"},
		{token.OPERATOR, "eq"},
		{token.IDENT, "b"},
		{token.OPERATOR, "ne"},
		{token.IDENT, "c"},
		{token.OPERATOR, "S="},
		{token.IDENT, "d"},
		{token.IDENT, "eql"},
		{token.IDENT, "S"},
		{token.OPERATOR, "=="},
		{token.IDENT, "e"},
	})
	lexAll(t, New("a eq b", WithDialect(dialect.Strict1)), []expectedToken{
		{token.IDENT, "a"},
		{token.IDENT, "eq"},
		{token.IDENT, "b"},
	})
}

func TestGlobalArrow(t *testing.T) {
	lexAll(t, New("global->Foo()", WithDialect(dialect.Strict2)), []expectedToken{
		{token.GLOBAL_ARROW, "global->"},
		{token.IDENT, "Foo"},
	})
	lexAll(t, New("global->Foo()", WithDialect(dialect.Strict1)), []expectedToken{
		{token.IDENT, "global"},
		{token.ARROW, "->"},
		{token.IDENT, "Foo"},
	})
}

func TestUnicodeIdentifiers(t *testing.T) {
	lexAll(t, New("größe", WithDialect(dialect.Strict3)), []expectedToken{
		{token.IDENT, "größe"},
	})
	_, err := New("ä").Next(DiscardStrings)
	var ce *errors.CompileError
	require.ErrorAs(t, err, &ce)
	require.Equal(t, errors.E1011, ce.Code)
}

func TestIllegalCharacter(t *testing.T) {
	l := New("a @", WithFile("Script.c"))
	_, err := l.Next(DiscardStrings)
	require.NoError(t, err)
	_, err = l.Next(DiscardStrings)
	var ce *errors.CompileError
	require.ErrorAs(t, err, &ce)
	require.Equal(t, "Script.c:1:3: lex error: illegal character '@'", ce.Error())
	require.Equal(t, "a @", ce.Location.Source)
}

func TestSaveRestore(t *testing.T) {
	l := New("Label: return 1;")
	saved := l.SaveState()
	lexAll(t, l, []expectedToken{
		{token.IDENT, "Label"},
		{token.COLON, ":"},
	})
	l.RestoreState(saved)
	lexAll(t, l, []expectedToken{
		{token.IDENT, "Label"},
		{token.COLON, ":"},
		{token.RETURN, "return"},
		{token.INT, "1"},
	})
}

func TestPositions(t *testing.T) {
	l := New("a\n  bb\n", WithFile("x.c"))
	tok, _ := l.Next(DiscardStrings)
	require.Equal(t, 0, tok.StartPosition.Line)
	tok, _ = l.Next(DiscardStrings)
	require.Equal(t, 1, tok.StartPosition.Line)
	require.Equal(t, 2, tok.StartPosition.Column)
	require.Equal(t, 4, tok.StartPosition.Char)
	require.Equal(t, 6, tok.EndPosition.Char)
	require.Equal(t, "  bb", l.GetLineText(tok.StartPosition))
}
