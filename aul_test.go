package aul

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/aulscript/aul/ast"
	"github.com/aulscript/aul/bytecode"
	"github.com/aulscript/aul/dialect"
	"github.com/aulscript/aul/op"
	"github.com/aulscript/aul/parser"
	"github.com/aulscript/aul/symbol"
	"github.com/aulscript/aul/value"
	"github.com/hashicorp/go-multierror"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestCompile(t *testing.T) {
	result, err := Compile(context.Background(), "func Add(a, b) { return a + b; }",
		WithDialect(dialect.Strict2))
	require.NoError(t, err)
	require.NoError(t, result.Err())
	require.Empty(t, result.Warnings)
	require.Len(t, result.AST.Functions(), 1)
	require.Equal(t, DefaultScriptName, result.Code.Script())
	require.Equal(t, []string{"Add"}, result.Code.FunctionNames())
	require.Empty(t, result.ErroredFunctions())
	require.Empty(t, result.FormattedErrors())
}

func TestScriptName(t *testing.T) {
	tests := []struct {
		name string
		opts []Option
		want string
	}{
		{"default", nil, "Main"},
		{"filename", []Option{WithFilename("objects/Rock.c")}, "Rock"},
		{"explicit", []Option{WithFilename("Script.c"), WithScriptName("CLNK")}, "CLNK"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := Compile(context.Background(), "func f() {}", tt.opts...)
			require.NoError(t, err)
			require.Equal(t, tt.want, result.Code.Script())
			fn, ok := result.Code.Function("f")
			require.True(t, ok)
			require.Equal(t, tt.want, fn.Script())
		})
	}
}

func TestCompileErrors(t *testing.T) {
	src := "#strict 2\nfunc One() { return nope; }\nfunc Two() { break; }\nfunc Three() { return 3; }"
	result, err := Compile(context.Background(), src, WithFilename("Rock.c"))
	require.NoError(t, err)
	require.Len(t, result.Errors, 2)
	require.Equal(t, []string{"One", "Two"}, result.ErroredFunctions())

	err = result.Err()
	require.Error(t, err)
	var merr *multierror.Error
	require.ErrorAs(t, err, &merr)
	require.Len(t, merr.Errors, 2)
	require.Contains(t, err.Error(), "Rock.c:2:")
	require.Contains(t, err.Error(), "Rock.c:3:")

	formatted := result.FormattedErrors()
	require.Len(t, formatted, 2)
	require.Equal(t, result.Errors[0].Code, formatted[0].Code)

	// the broken functions fail with their parse error at runtime
	one, _ := result.Code.Function("One")
	ins := result.Code.InstructionAt(one.Start())
	require.Equal(t, op.ERR, ins.Op)
	require.Equal(t, result.Errors[0].Error(), result.Code.ErrorAt(int(ins.Operand)))
}

func TestLogging(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)
	src := "#strict 2\nfunc f() { return nope; }"
	_, err := Compile(context.Background(), src, WithScriptName("Rock"), WithLogger(logger))
	require.NoError(t, err)

	line := buf.String()
	require.Contains(t, line, `"level":"error"`)
	require.Contains(t, line, `"script":"Rock"`)
	require.Contains(t, line, `"function":"f"`)
	require.Contains(t, line, `"code":"E2001"`)
	require.Contains(t, line, `"line":2`)
}

func TestSharedTable(t *testing.T) {
	ctx := context.Background()
	table := symbol.NewTable()
	table.DefineEngineFunction("Log", symbol.Public, symbol.Param{Name: "msg", Type: value.String})

	base, err := Compile(ctx, "func Hit(x) { Log(\"hit\"); return x; }",
		WithTable(table), WithScriptName("BASE"), WithDialect(dialect.Strict2))
	require.NoError(t, err)
	require.NoError(t, base.Err())

	rock, err := Compile(ctx, "#include BASE\nfunc Hit(x) { return inherited(x); }",
		WithTable(table), WithScriptName("Rock"), WithDialect(dialect.Strict2))
	require.NoError(t, err)
	require.NoError(t, rock.Err())
	require.Equal(t, []string{"BASE"}, rock.Includes)

	var kinds []bytecode.CallKind
	for i := 0; i < rock.Code.CallCount(); i++ {
		kinds = append(kinds, rock.Code.CallAt(i).Kind)
	}
	require.Equal(t, []bytecode.CallKind{bytecode.InheritedCall}, kinds)
	require.Equal(t, "BASE", rock.Code.CallAt(0).Script)

	// recompiling a script replaces its declarations
	base, err = Compile(ctx, "func Hit(x) { return x; }",
		WithTable(table), WithScriptName("BASE"), WithDialect(dialect.Strict2))
	require.NoError(t, err)
	require.NoError(t, base.Err())
}

func TestWithResolver(t *testing.T) {
	table := symbol.NewTable()
	scope := table.Script("Lib")
	_, err := Compile(context.Background(), "global func Util() { return 1; }",
		WithResolver(scope), WithScriptName("Lib"), WithDialect(dialect.Strict2))
	require.NoError(t, err)
	fn, ok := scope.LookupFunction("Util")
	require.True(t, ok)
	require.Equal(t, "Lib", fn.Script)
}

func TestWarnings(t *testing.T) {
	var buf bytes.Buffer
	result, err := Compile(context.Background(), `func f() { return "a\q"; }`,
		WithLogger(zerolog.New(&buf)))
	require.NoError(t, err)
	require.NoError(t, result.Err())
	require.NotEmpty(t, result.Warnings)
	require.Contains(t, buf.String(), `"level":"warn"`)
	require.Len(t, result.FormattedErrors(), len(result.Warnings))
}

func TestCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	result, err := Compile(ctx, "func f() {}")
	require.ErrorIs(t, err, context.Canceled)
	require.Nil(t, result)

	script, err := Parse(ctx, "func f() {}")
	require.ErrorIs(t, err, context.Canceled)
	require.Nil(t, script)
}

func TestParse(t *testing.T) {
	script, err := Parse(context.Background(), "func f(a) { return a * 2; }", WithDialect(dialect.Strict2))
	require.NoError(t, err)
	require.Equal(t, "Return(BinaryOp(*, ParamRef(a), IntLiteral(2)))",
		ast.Dump(script.Functions()[0].Body.(*ast.Block).Stmts[0]))

	script, err = Parse(context.Background(), "func f() { return (; }", WithDialect(dialect.Strict2))
	var errs *parser.Errors
	require.ErrorAs(t, err, &errs)
	require.Equal(t, 1, errs.Count())
	require.True(t, script.Functions()[0].Errored())
}

func TestMaxDepth(t *testing.T) {
	src := "func f() { return " + strings.Repeat("(", 20) + "1" + strings.Repeat(")", 20) + "; }"
	result, err := Compile(context.Background(), src, WithMaxDepth(10), WithDialect(dialect.Strict2))
	require.NoError(t, err)
	require.Equal(t, []string{"f"}, result.ErroredFunctions())
	require.Equal(t, "E1009", string(result.Errors[0].Code))
}
