package passes_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/excyrender/et1/internal/ast"
	"github.com/excyrender/et1/internal/codegen"
	"github.com/excyrender/et1/internal/diag"
	"github.com/excyrender/et1/internal/lexer"
	"github.com/excyrender/et1/internal/passes"
)

func TestMangle(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		{
			src:  "let f(x) = x in f(2)",
			want: "let f$auto(x) = x, int f$int(int x) = x in f$int(2)",
		},
		{
			src:  "let f(int a) = let g(int b) = a + b in g(1) in f(2)",
			want: "let int f$int(int a) = g.1$int_int(a, 1), int g.1$int_int(int a, int b) = a + b in f$int(2)",
		},
		{
			src:  "let k = 1 in k",
			want: "let int k = 1 in k",
		},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, through(t, tt.src, diag.StageMangle), tt.src)
	}
}

func TestMangleIsIdempotent(t *testing.T) {
	for _, src := range []string{
		"let f(x) = x, y = f(2.0) in f(2)",
		"let f(x, y) = y, f(int x, y) = x in f(1, 1.0) + f(1.0, 2)",
		"let f(int a) = let g(x) = x * a in g(a) in f(3)",
	} {
		prog := mustParse(t, src)
		require.NoError(t, passes.RunThrough(prog, diag.StageMangle), src)
		once := codegen.Print(prog)

		require.NoError(t, passes.Mangle(prog), src)
		assert.Equal(t, once, codegen.Print(prog), src)
	}
}

func TestMangledNamesAreDistinct(t *testing.T) {
	var sp lexer.Span
	sig := func(id string, types ...ast.Type) string {
		args := make([]ast.Argument, len(types))
		for i, typ := range types {
			args[i] = ast.Argument{Name: "p", Type: typ}
		}
		return passes.MangledName(ast.NewBinding(id, ast.Auto, args, ast.NewIntegerLiteral(0, sp), sp))
	}

	names := []string{
		sig("f"),
		sig("f", ast.Int),
		sig("f", ast.Float),
		sig("f", ast.Int, ast.Float),
		sig("f", ast.Float, ast.Int),
		sig("f", ast.Int, ast.Int),
		sig("g", ast.Int),
		sig("f.1", ast.Int),
	}
	seen := map[string]bool{}
	for _, n := range names {
		assert.False(t, seen[n], "duplicate mangled name %s", n)
		seen[n] = true
	}

	assert.Equal(t, "f$int_float", sig("f$bool", ast.Int, ast.Float))
	assert.Equal(t, "f", sig("f"))
	assert.Equal(t, "f", passes.BaseName("f$int_float"))
}
