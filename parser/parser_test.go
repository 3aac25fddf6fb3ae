package parser

import (
	"context"
	"strings"
	"testing"

	"github.com/aulscript/aul/ast"
	"github.com/aulscript/aul/dialect"
	"github.com/aulscript/aul/errors"
	"github.com/aulscript/aul/internal/lexer"
	"github.com/aulscript/aul/symbol"
	"github.com/aulscript/aul/value"
	"github.com/stretchr/testify/require"
)

type result struct {
	script   *ast.Script
	parser   *Parser
	err      error
	table    *symbol.Table
	warnings []*errors.Warning
}

func newTable() *symbol.Table {
	table := symbol.NewTable()
	table.DefineEngineFunction("Log", symbol.Public, symbol.Param{Name: "msg", Type: value.String})
	table.DefineEngineFunction("Secret", symbol.Private)
	table.DefineEngineFunction("CreateObject", symbol.Public,
		symbol.Param{Name: "id", Type: value.ID},
		symbol.Param{Name: "x", Type: value.Int},
		symbol.Param{Name: "y", Type: value.Int})
	return table
}

// compileIn runs both passes over src as script name in table.
func compileIn(table *symbol.Table, name, src string, level dialect.Level, opts ...Option) result {
	ctx := context.Background()
	scope := table.Script(name)
	pre := New(lexer.New(src, lexer.WithDialect(level)), scope,
		append([]Option{WithMode(Preparse), WithScriptName(name)}, opts...)...)
	pre.Parse(ctx)

	r := result{table: table}
	opts = append([]Option{
		WithScriptName(name),
		WithWarningHandler(func(w *errors.Warning) { r.warnings = append(r.warnings, w) }),
	}, opts...)
	r.parser = New(lexer.New(src, lexer.WithDialect(level)), scope, opts...)
	r.script, r.err = r.parser.Parse(ctx)
	return r
}

func compile(src string, level dialect.Level, opts ...Option) result {
	return compileIn(newTable(), "Test", src, level, opts...)
}

func function(t *testing.T, script *ast.Script, i int) *ast.FunctionDef {
	t.Helper()
	fns := script.Functions()
	require.Greater(t, len(fns), i)
	return fns[i]
}

// firstStmt returns the first statement of the first function.
func firstStmt(t *testing.T, r result) ast.Stmt {
	t.Helper()
	require.NoError(t, r.err)
	body, ok := function(t, r.script, 0).Body.(*ast.Block)
	require.True(t, ok, "function body is %T", function(t, r.script, 0).Body)
	require.NotEmpty(t, body.Stmts)
	return body.Stmts[0]
}

func firstError(t *testing.T, r result) *errors.CompileError {
	t.Helper()
	require.Error(t, r.err)
	var errs *Errors
	require.ErrorAs(t, r.err, &errs)
	return errs.First()
}

func TestPrecedence(t *testing.T) {
	tests := []struct {
		expr string
		want string
	}{
		{"1 + 2 * 3", "Return(BinaryOp(+, IntLiteral(1), BinaryOp(*, IntLiteral(2), IntLiteral(3))))"},
		{"1 - 2 - 3", "Return(BinaryOp(-, BinaryOp(-, IntLiteral(1), IntLiteral(2)), IntLiteral(3)))"},
		{"2 ** 3 ** 2", "Return(BinaryOp(**, IntLiteral(2), BinaryOp(**, IntLiteral(3), IntLiteral(2))))"},
		{"(1 + 2) * 3", "Return(BinaryOp(*, BinaryOp(+, IntLiteral(1), IntLiteral(2)), IntLiteral(3)))"},
		{"-a * b", "Return(BinaryOp(*, UnaryOp(-, ParamRef(a)), ParamRef(b)))"},
		{"!a == b", "Return(BinaryOp(==, UnaryOp(!, ParamRef(a)), ParamRef(b)))"},
		{"a || b && c", "Return(BinaryOp(||, ParamRef(a), BinaryOp(&&, ParamRef(b), ParamRef(c))))"},
		{"a ?? b ?? c", "Return(BinaryOp(??, BinaryOp(??, ParamRef(a), ParamRef(b)), ParamRef(c)))"},
		{"a = b = c", "Return(BinaryOp(=, ParamRef(a), BinaryOp(=, ParamRef(b), ParamRef(c))))"},
		{"a += b * c", "Return(BinaryOp(+=, ParamRef(a), BinaryOp(*, ParamRef(b), ParamRef(c))))"},
		{"a++ - 1", "Return(BinaryOp(-, UnaryOp(post++, ParamRef(a)), IntLiteral(1)))"},
		{"-a++", "Return(UnaryOp(-, UnaryOp(post++, ParamRef(a))))"},
		{"++a", "Return(UnaryOp(++, ParamRef(a)))"},
		{"a < b == b < c", "Return(BinaryOp(==, BinaryOp(<, ParamRef(a), ParamRef(b)), BinaryOp(<, ParamRef(b), ParamRef(c))))"},
		{"a & b | c", "Return(BinaryOp(|, BinaryOp(&, ParamRef(a), ParamRef(b)), ParamRef(c)))"},
		{"a .. \"x\"", `Return(BinaryOp(.., ParamRef(a), StringLiteral("x")))`},
		{"a << 1 + 2", "Return(BinaryOp(<<, ParamRef(a), BinaryOp(+, IntLiteral(1), IntLiteral(2))))"},
	}
	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			r := compile("func f(a, b, c) { return "+tt.expr+"; }", dialect.Strict2)
			require.Equal(t, tt.want, ast.Dump(firstStmt(t, r)))
		})
	}
}

func TestLiterals(t *testing.T) {
	tests := []struct {
		expr  string
		level dialect.Level
		want  string
	}{
		{"-5", dialect.Legacy, "Return(IntLiteral(-5))"},
		{"0x10", dialect.Legacy, "Return(IntLiteral(16))"},
		{"true", dialect.Legacy, "Return(BoolLiteral(true))"},
		{"CLNK", dialect.Legacy, "Return(IdLiteral(CLNK))"},
		{"nil", dialect.Strict1, "Return(NilLiteral())"},
		{"[1, 2,]", dialect.Legacy, "Return(ArrayLiteral(IntLiteral(1), IntLiteral(2)))"},
		{`{a = 1, "b": 2}`, dialect.Strict3, `Return(MapLiteral(StringLiteral("a"), IntLiteral(1), StringLiteral("b"), IntLiteral(2)))`},
	}
	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			r := compile("func f() { return "+tt.expr+"; }", tt.level)
			require.Equal(t, tt.want, ast.Dump(firstStmt(t, r)))
		})
	}
}

func TestNameResolution(t *testing.T) {
	src := `
local field;
static glob;
static const MAX = 10;
func f(par) {
	var v;
	return [par, v, field, glob, MAX, later];
}
local later;
`
	r := compile(src, dialect.Strict2)
	require.Equal(t,
		"Return(ArrayLiteral(ParamRef(par), VarRef(v), LocalRef(field), GlobalRef(glob), ConstRef(MAX), LocalRef(later)))",
		ast.Dump(function(t, r.script, 0).Body.(*ast.Block).Stmts[1]))
	require.Len(t, r.script.Decls, 5)
}

func TestVariablesDeclaredLater(t *testing.T) {
	r := compile("func f() { x = 1; var x; return x; }", dialect.Strict2)
	require.Equal(t, "ExprStmt(BinaryOp(=, VarRef(x), IntLiteral(1)))", ast.Dump(firstStmt(t, r)))
	fn := function(t, r.script, 0)
	require.Len(t, fn.Func.Locals, 1)
}

func TestUnknownIdentifier(t *testing.T) {
	r := compile("func f() { return nope; }", dialect.Strict2)
	err := firstError(t, r)
	require.Equal(t, errors.SemanticError, err.Kind)
	require.Equal(t, errors.E2001, err.Code)
	require.Equal(t, "f", err.Function)
	require.Equal(t, "Test", err.Script)
	require.Equal(t, 1, err.Location.Line)
	require.Equal(t, 19, err.Location.Column)

	fn := function(t, r.script, 0)
	require.True(t, fn.Errored())
	require.Equal(t, "FunctionDef(f, Error(Return(Ident(nope))))", ast.Dump(fn))
}

func TestErrorIsolation(t *testing.T) {
	src := `
func a() { return 1; }
func b() {
	var x = 1;
	if (x) { x = ; }
	return x;
}
func c() { return nope; }
func d() { return 4; }
`
	r := compile(src, dialect.Strict2)
	var errs *Errors
	require.ErrorAs(t, r.err, &errs)
	require.Equal(t, 2, errs.Count())
	require.Equal(t, errors.SyntaxError, errs.Errors()[0].Kind)
	require.Equal(t, "b", errs.Errors()[0].Function)
	require.Equal(t, "c", errs.Errors()[1].Function)

	fns := r.script.Functions()
	require.Len(t, fns, 4)
	require.False(t, fns[0].Errored())
	require.True(t, fns[1].Errored())
	require.True(t, fns[2].Errored())
	require.False(t, fns[3].Errored())

	// the broken function keeps what was parsed before the error
	bad := fns[1].Body.(*ast.BadStmt)
	require.Len(t, bad.Children, 2)
	require.IsType(t, &ast.VarDecl{}, bad.Children[0])
	require.IsType(t, &ast.If{}, bad.Children[1])
}

func TestTopLevelRecovery(t *testing.T) {
	src := `
garbage here;
func ok() { return 1; }
func (broken) { }
func ok2() { return 2; }
`
	r := compile(src, dialect.Strict2)
	var errs *Errors
	require.ErrorAs(t, r.err, &errs)
	require.Equal(t, 2, errs.Count())
	names := []string{}
	for _, fn := range r.script.Functions() {
		names = append(names, fn.Name)
	}
	require.Equal(t, []string{"ok", "ok2"}, names)
}

func TestLexErrorsAreReported(t *testing.T) {
	r := compile("func g() { return 1; }\nfunc f() { return \"abc", dialect.Strict2)
	err := firstError(t, r)
	require.Equal(t, errors.LexError, err.Kind)
	require.Equal(t, errors.E1002, err.Code)
	require.Equal(t, "f", err.Function)
	require.False(t, function(t, r.script, 0).Errored())
	require.True(t, function(t, r.script, 1).Errored())
}

func TestDialectGates(t *testing.T) {
	tests := []struct {
		name     string
		src      string
		level    dialect.Level
		code     errors.ErrorCode
		warnings int
	}{
		{"array index legacy", "func f(a) { return a[0]; }", dialect.Legacy, errors.E1013, 0},
		{"array index strict2", "func f(a) { return a[0]; }", dialect.Strict2, "", 0},
		{"map literal strict2", "func f() { return {x = 1}; }", dialect.Strict2, errors.E1013, 0},
		{"member access strict2", "func f(a) { return a.x; }", dialect.Strict2, errors.E1013, 0},
		{"member access strict3", "func f(a) { return a.x; }", dialect.Strict3, "", 0},
		{"label legacy", "f: return 1;", dialect.Legacy, "", 0},
		{"label strict1", "f: return 1;", dialect.Strict1, "", 1},
		{"label strict2", "f: return 1;", dialect.Strict2, errors.E2011, 0},
		{"return call legacy", "func f() { return(1, 2); }", dialect.Legacy, "", 0},
		{"return call strict1", "func f() { return(1, 2); }", dialect.Strict1, "", 1},
		{"return call strict2", "func f() { return(1, 2); }", dialect.Strict2, errors.E2011, 0},
		{"var redeclaration legacy", "func f() { var x; var x; }", dialect.Legacy, "", 1},
		{"var redeclaration strict2", "func f() { var x; var x; }", dialect.Strict2, errors.E2011, 0},
		{"nil legacy", "func f() { return nil; }", dialect.Legacy, errors.E2001, 0},
		{"strict directive", "#strict 2\nfunc f(a) { return a[0]; }", dialect.Legacy, "", 0},
		{"unknown escape", `func f() { return "\q"; }`, dialect.Strict3, "", 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := compile(tt.src, tt.level)
			if tt.code == "" {
				require.NoError(t, r.err)
			} else {
				require.Equal(t, tt.code, firstError(t, r).Code)
			}
			require.Len(t, r.warnings, tt.warnings)
			require.Len(t, r.parser.Warnings(), tt.warnings)
		})
	}
}

func TestDialectErrorKind(t *testing.T) {
	tests := []struct {
		name  string
		src   string
		level dialect.Level
		code  errors.ErrorCode
		msg   string
	}{
		{"array index", "func f(a) { return a[0]; }", dialect.Legacy, errors.E1013, "array indexing is not available in legacy"},
		{"map literal", "func f() { return {}; }", dialect.Strict2, errors.E1013, "map literal is not available in strict 2"},
		{"label function", "f: return 1;", dialect.Strict2, errors.E2011, "not allowed in strict 2"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := firstError(t, compile(tt.src, tt.level))
			require.Equal(t, errors.SyntaxError, err.Kind)
			require.Equal(t, tt.code, err.Code)
			require.Contains(t, err.Message, tt.msg)
		})
	}
}

func TestAppendInsideNilCheckChain(t *testing.T) {
	tests := []string{
		"func f(a) { a?[]; return 1; }",
		"func f(a) { return a?.b[]; }",
		"func f(a) { a?.b[] = 1; }",
	}
	for _, src := range tests {
		t.Run(src, func(t *testing.T) {
			r := compile(src+"\nfunc g() { return 2; }", dialect.Strict3)
			err := firstError(t, r)
			require.Equal(t, errors.SyntaxError, err.Kind)
			require.Equal(t, errors.E1005, err.Code)
			require.True(t, function(t, r.script, 0).Errored())
			require.False(t, function(t, r.script, 1).Errored())
		})
	}
}

func TestUnterminatedFunctionBody(t *testing.T) {
	src := "func A() { return 1; }\nfunc B() { if (1) { return 2; }\nfunc C() { return 3; }\nprivate func D() { return 4; }"
	r := compile(src, dialect.Strict2)
	var errs *Errors
	require.ErrorAs(t, r.err, &errs)
	require.Equal(t, 1, errs.Count())
	require.Equal(t, "B", errs.First().Function)

	fns := r.script.Functions()
	require.Len(t, fns, 4)
	for i, name := range []string{"A", "B", "C", "D"} {
		require.Equal(t, name, fns[i].Name)
		require.Equal(t, name == "B", fns[i].Errored(), name)
	}
	require.Equal(t, symbol.Private, fns[3].Access)
}

func TestVarShadowingParameter(t *testing.T) {
	for _, level := range []dialect.Level{dialect.Legacy, dialect.Strict3} {
		r := compile("func f(a) { var a = 5; return a; }", level)
		err := firstError(t, r)
		require.Equal(t, errors.SemanticError, err.Kind)
		require.Equal(t, errors.E2005, err.Code)
		require.Contains(t, err.Message, "variable a is already declared as a parameter")
		require.Empty(t, function(t, r.script, 0).Func.Locals)
	}
}

func TestLabelFunctions(t *testing.T) {
	src := "Init: var x = 1; return x;\nOther: return 2;\nfunc g() { return 3; }"
	r := compile(src, dialect.Legacy)
	require.NoError(t, r.err)
	fns := r.script.Functions()
	require.Len(t, fns, 3)
	require.True(t, fns[0].Legacy)
	require.Equal(t, "Init", fns[0].Name)
	require.Equal(t,
		"FunctionDef(Init, Block(VarDecl(x, IntLiteral(1)), Return(VarRef(x))))",
		ast.Dump(fns[0]))
	require.True(t, fns[1].Legacy)
	require.False(t, fns[2].Legacy)
}

func TestLegacyReturn(t *testing.T) {
	r := compile("func f(a) { return(a, 2); }", dialect.Legacy)
	ret := firstStmt(t, r).(*ast.Return)
	require.Equal(t, "ParamRef(a)", ast.Dump(ret.Value))
	require.Len(t, ret.Extra, 1)

	r = compile("func f(a) { return (a) + 1; }", dialect.Strict2)
	require.Equal(t, "Return(BinaryOp(+, ParamRef(a), IntLiteral(1)))", ast.Dump(firstStmt(t, r)))
}

func TestCalls(t *testing.T) {
	src := `
func a() { return b(1); }
func b(x) { return CreateObject(CLNK, x); }
`
	r := compile(src, dialect.Strict2)
	require.NoError(t, r.err)
	ret := firstStmt(t, r).(*ast.Return)
	call := ret.Value.(*ast.Call)
	require.Equal(t, "b", call.Func.Name)
	require.Equal(t, "Test", call.Func.Script)
	require.Equal(t, 1, call.Func.ParamCount())
}

func TestCallErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
		code errors.ErrorCode
	}{
		{"unknown function", "Nope();", errors.E2002},
		{"too many arguments", `Log("a", "b");`, errors.E2007},
		{"private engine function", "Secret();", errors.E2008},
		{"object call argument limit", "a->F(1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11);", errors.E2007},
		{"no inherited", "inherited();", errors.E2009},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := compile("func f(a) { "+tt.body+" }", dialect.Strict2)
			err := firstError(t, r)
			require.Equal(t, tt.code, err.Code)
			require.Equal(t, errors.SemanticError, err.Kind)
		})
	}
}

func TestPrivateFunctions(t *testing.T) {
	table := newTable()
	lib := compileIn(table, "LIBR", "global func Util() { return 1; }\nprivate func Own() { return 2; }", dialect.Strict2)
	require.NoError(t, lib.err)

	r := compileIn(table, "Rock", "func f() { Own(); return Util(); }\nprivate func Mine() {}\nfunc g() { Mine(); }", dialect.Strict2)
	err := firstError(t, r)
	require.Equal(t, errors.E2002, err.Code)

	var errs *Errors
	require.ErrorAs(t, r.err, &errs)
	require.Equal(t, 1, errs.Count(), "calling a private function of the same script is allowed")

	r = compileIn(table, "Other", "#include LIBR\nfunc f() { return Own(); }", dialect.Strict2)
	require.Equal(t, errors.E2008, firstError(t, r).Code)
}

func TestInherited(t *testing.T) {
	table := newTable()
	base := compileIn(table, "BASE", "func Hit(x) { return x; }", dialect.Strict2)
	require.NoError(t, base.err)

	r := compileIn(table, "Rock", "#include BASE\nfunc Hit(x) { return inherited(x); }\nfunc Other() { return _inherited(); }", dialect.Strict2)
	require.NoError(t, r.err)
	require.Equal(t, []string{"BASE"}, r.parser.Includes())

	inh := firstStmt(t, r).(*ast.Return).Value.(*ast.Inherited)
	require.Equal(t, "BASE", inh.Func.Script)

	other := function(t, r.script, 1).Body.(*ast.Block).Stmts[0].(*ast.Return).Value.(*ast.Inherited)
	require.True(t, other.Safe)
	require.Nil(t, other.Func)
}

func TestLoops(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"while", "while (a) break;", "While(ParamRef(a), Break())"},
		{"for", "for (var i = 0; i < 3; i++) continue;",
			"For(VarDecl(i, IntLiteral(0)), BinaryOp(<, VarRef(i), IntLiteral(3)), UnaryOp(post++, VarRef(i)), Continue())"},
		{"empty for", "for (;;) break;", "For(Break())"},
		{"for each", "for (var x in a) Log(x);", "ForEach(x, ParamRef(a), ExprStmt(FunctionCall(Log, VarRef(x))))"},
		{"for each pair", "for (var k, v in a) ;", "ForEach(k, v, ParamRef(a), Empty())"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := compile("func f(a) { "+tt.body+" }", dialect.Strict2)
			require.Equal(t, tt.want, ast.Dump(firstStmt(t, r)))
		})
	}
}

func TestBreakOutsideLoop(t *testing.T) {
	require.Equal(t, errors.E2003, firstError(t, compile("func f() { break; }", dialect.Strict2)).Code)
	require.Equal(t, errors.E2004, firstError(t, compile("func f() { if (1) continue; }", dialect.Strict2)).Code)
}

func TestAssignmentTargets(t *testing.T) {
	tests := []struct {
		name string
		body string
		ok   bool
	}{
		{"literal", "1 = 2;", false},
		{"constant", "MAX = 2;", false},
		{"call", "f(a) = 1;", false},
		{"increment literal", "5++;", false},
		{"param", "a = 1;", true},
		{"index", "a[0] += 1;", true},
		{"append", "a[] = 1;", true},
		{"append compound", "a[] += 1;", false},
		{"append read", "return a[];", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := compile("static const MAX = 1;\nfunc f(a) { "+tt.body+" }", dialect.Strict2)
			if tt.ok {
				require.NoError(t, r.err)
				return
			}
			require.Equal(t, errors.E1005, firstError(t, r).Code)
		})
	}
}

func TestNavigation(t *testing.T) {
	tests := []struct {
		expr string
		want string
	}{
		{`a["k"]`, "Return(PropertyAccess(k, ParamRef(a)))"},
		{"a[1][2]", "Return(ArrayAccess(ArrayAccess(ParamRef(a), IntLiteral(1)), IntLiteral(2)))"},
		{"a->Hit(1)", "Return(IndirectCall(Hit, ParamRef(a), IntLiteral(1)))"},
		{"a->~CLNK::Hit()", "Return(IndirectCall(CLNK::Hit, ParamRef(a)))"},
		{"a?.b", "Return(SafeNav(PropertyAccess(b, NilCheck(ParamRef(a)))))"},
		{"a?->F().x", "Return(SafeNav(PropertyAccess(x, IndirectCall(F, NilCheck(ParamRef(a))))))"},
		{"global->Log(a)", "Return(FunctionCall(Log, ParamRef(a)))"},
	}
	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			r := compile("func f(a) { return "+tt.expr+"; }", dialect.Strict3)
			require.Equal(t, tt.want, ast.Dump(firstStmt(t, r)))
		})
	}
}

func TestConstants(t *testing.T) {
	r := compile("static const A = 2 * 3 + 1, B = -A, C = \"s\", D = CLNK;\nfunc f() { return B; }", dialect.Strict2)
	require.NoError(t, r.err)
	scope := r.table.Script("Test")
	b, ok := scope.LookupConstant("B")
	require.True(t, ok)
	require.Equal(t, value.NewInt(-7), b)
	c, _ := scope.LookupConstant("C")
	require.Equal(t, value.NewString("s"), c)

	decl := r.script.Decls[0].(*ast.ConstDecl)
	require.Len(t, decl.Values, 4)

	r = compile("static const X = Log(\"x\");", dialect.Strict2)
	require.Equal(t, errors.E2010, firstError(t, r).Code)
}

func TestDuplicateDeclarations(t *testing.T) {
	tests := []struct {
		name string
		src  string
		code errors.ErrorCode
	}{
		{"function", "func f() {}\nfunc f() {}", errors.E2005},
		{"local", "local x;\nlocal x;", errors.E2005},
		{"parameter", "func f(a, a) {}", errors.E2006},
		{"too many parameters", "func f(a, b, c, d, e, g, h, i, j, k, l) {}", errors.E2007},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := compile(tt.src, dialect.Strict2)
			require.Equal(t, tt.code, firstError(t, r).Code)
		})
	}
}

func TestParameterTypes(t *testing.T) {
	r := compile("func f(int a, object b, c) { return a; }", dialect.Strict2)
	require.NoError(t, r.err)
	fn := function(t, r.script, 0)
	require.Equal(t, value.Int, fn.Params[0].Type)
	require.Equal(t, value.Object, fn.Params[1].Type)
	require.Equal(t, value.Any, fn.Params[2].Type)
	require.Equal(t, value.Int, fn.Func.Params[0].Type)
}

func TestAccessModifiers(t *testing.T) {
	r := compile("private func a() {}\nprotected func b() {}\npublic func c() {}\nglobal func d() {}\nfunc e() {}", dialect.Strict2)
	require.NoError(t, r.err)
	want := []symbol.Access{symbol.Private, symbol.Protected, symbol.Public, symbol.Global, symbol.Public}
	for i, fn := range r.script.Functions() {
		require.Equal(t, want[i], fn.Access, fn.Name)
	}
}

func TestDirectives(t *testing.T) {
	r := compile("#strict 3\n#appendto CLNK\nfunc f() {}", dialect.Legacy)
	require.NoError(t, r.err)
	d := r.script.Decls[0].(*ast.Directive)
	require.Equal(t, "strict", d.Name)
	require.Equal(t, "3", d.Arg)
	require.Equal(t, dialect.Strict3, function(t, r.script, 0).Dialect)
	require.Equal(t, []string{"CLNK"}, r.parser.Includes())

	r = compile("#strict 9\nfunc f() {}", dialect.Legacy)
	require.Equal(t, errors.E1012, firstError(t, r).Code)
	require.Len(t, r.script.Functions(), 1)

	r = compile("#frobnicate\nfunc f() {}", dialect.Legacy)
	require.Equal(t, errors.E1012, firstError(t, r).Code)
}

func TestPreparseDropsErrors(t *testing.T) {
	table := newTable()
	p := New(lexer.New("func f() { return nope; }"), table.Script("Test"), WithMode(Preparse))
	script, err := p.Parse(context.Background())
	require.NoError(t, err)
	require.Len(t, script.Functions(), 1)

	fn, ok := table.Script("Test").LookupFunction("f")
	require.True(t, ok)
	require.Equal(t, "f", fn.Name)
}

func TestMaxDepth(t *testing.T) {
	src := "func f() { return " + strings.Repeat("(", 50) + "1" + strings.Repeat(")", 50) + "; }"
	r := compile(src, dialect.Strict2, WithMaxDepth(20))
	require.Equal(t, errors.E1009, firstError(t, r).Code)
}

func TestCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	p := New(lexer.New("func f() {}"), newTable().Script("Test"))
	_, err := p.Parse(ctx)
	require.ErrorIs(t, err, context.Canceled)
}

func TestMaxErrors(t *testing.T) {
	var b strings.Builder
	for i := 0; i < MaxErrors+10; i++ {
		b.WriteString("func f() { return nope; }\n")
	}
	r := compile(b.String(), dialect.Strict2)
	var errs *Errors
	require.ErrorAs(t, r.err, &errs)
	require.Equal(t, MaxErrors, errs.Count())
}

func TestErrorsFriendlyMessage(t *testing.T) {
	r := compile("func f() { return nope; }", dialect.Strict2)
	var errs *Errors
	require.ErrorAs(t, r.err, &errs)
	msg := errs.FriendlyErrorMessage()
	require.Contains(t, msg, "unknown identifier nope")
	require.Contains(t, msg, "return nope;")
	require.Len(t, errs.Unwrap(), 1)
}

func TestMissingTokenCodes(t *testing.T) {
	tests := []struct {
		src  string
		code errors.ErrorCode
		msg  string
	}{
		{"func f() { return 1 + ; }", errors.E1004, "expected expression"},
		{"func f() { return (); }", errors.E1004, "expected expression"},
		{"func 5() {}", errors.E1006, "expected function name"},
		{"func f(a, 5) {}", errors.E1006, "expected parameter name"},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			err := firstError(t, compile(tt.src, dialect.Strict3))
			require.Equal(t, tt.code, err.Code)
			require.Equal(t, errors.SyntaxError, err.Kind)
			require.Contains(t, err.Message, tt.msg)
		})
	}
}
