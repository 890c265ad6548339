package passes_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/excyrender/et1/internal/codegen"
	"github.com/excyrender/et1/internal/diag"
	"github.com/excyrender/et1/internal/passes"
)

func TestGlobalizeOrdersByDependency(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		{
			src:  "let a = b + 1, b = 2 in a",
			want: "let int b = 2, int a = b + 1 in a",
		},
		{
			src: "let main(int n) = even(n), " +
				"even(int n) = if n == 0 then true else odd(n - 1), " +
				"odd(int n) = if n == 0 then false else even(n - 1) in main(3)",
			want: "let bool even$int(int n) = if n == 0 then true else odd$int(n - 1), " +
				"bool odd$int(int n) = if n == 0 then false else even$int(n - 1), " +
				"bool main$int(int n) = even$int(n) in main$int(3)",
		},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, through(t, tt.src, diag.StageGlobalize), tt.src)
	}
}

func TestGlobalizeAbsorbsLetIn(t *testing.T) {
	prog := mustParse(t, "let f(int a) = let c = 2 in a * c in f(1)")
	require.NoError(t, passes.GlobalizeFunctions(prog))
	assert.Equal(t, "let c = 2, f(int a) = a * c in f(1)", codegen.Print(prog))
}

func TestGlobalizeIsIdempotent(t *testing.T) {
	for _, src := range []string{
		"let a = b + 1, b = 2 in a",
		"let f(x) = g(x), g(x) = x * 2 in f(1) > 0 && f(1.5) > 0.0",
		"let f(int a) = let g(int b) = a + b in g(1) in f(2)",
	} {
		prog := mustParse(t, src)
		require.NoError(t, passes.Run(prog), src)
		once := codegen.Print(prog)

		require.NoError(t, passes.GlobalizeFunctions(prog), src)
		assert.Equal(t, once, codegen.Print(prog), src)
	}
}

func TestGlobalizeRejectsDuplicates(t *testing.T) {
	err := passes.GlobalizeFunctions(mustParse(t, "let k = 1, k = 2 in k"))
	require.Error(t, err)
	assert.Equal(t, diag.CodeInternalInvariant, diag.CodeOf(err))
}

func TestGlobalizeNeedsLiftingForSiblingRegions(t *testing.T) {
	const src = "let a = let b = 1 in b, c = let b = 2.0 in b in a"

	err := passes.GlobalizeFunctions(mustParse(t, src))
	d, ok := diag.As(err)
	require.True(t, ok, "%v", err)
	assert.Equal(t, diag.CodeInternalInvariant, d.Code)
	assert.Contains(t, d.Help, "lift lambdas")

	prog := mustParse(t, src)
	require.NoError(t, passes.LiftLambdas(prog))
	require.NoError(t, passes.GlobalizeFunctions(prog))
	assert.Equal(t, "let b.1 = 1, a = b.1, b.2 = 2.0, c = b.2 in a", codegen.Print(prog))
}
