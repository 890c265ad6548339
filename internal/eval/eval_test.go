package eval_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/excyrender/et1/internal/ast"
	"github.com/excyrender/et1/internal/diag"
	"github.com/excyrender/et1/internal/eval"
	"github.com/excyrender/et1/internal/parser"
	"github.com/excyrender/et1/internal/passes"
)

func prepare(t *testing.T, src string, opts ...eval.Option) *eval.Interpreter {
	t.Helper()

	prog, err := parser.Parse(src)
	require.NoError(t, err, src)
	require.NoError(t, passes.Run(prog), src)
	return eval.New(prog, opts...)
}

func TestEval(t *testing.T) {
	tests := []struct {
		src  string
		want eval.Value
	}{
		{"1 + 2 * 3", eval.Int(7)},
		{"-7 / 2", eval.Int(-3)},
		{"1.0 / 4.0", eval.Float(0.25)},
		{"3 >= 3 && 2.5 < 1.0 || !false", eval.Bool(true)},
		{"let f(x) = x + x in f(2) * 10", eval.Int(40)},
		{"let f(x) = x + x in f(1.5)", eval.Float(3)},
		{"let fib(int n) = if n < 2 then n else fib(n - 1) + fib(n - 2) in fib(15)", eval.Int(610)},
		{"let k = 4, sq(int x) = x * x in sq(k) - k", eval.Int(12)},
		{"let f(int a) = let g(int b) = a * b in g(3) in f(5)", eval.Int(15)},
		{"true == (1 != 2)", eval.Bool(true)},
	}

	for _, tt := range tests {
		got, err := prepare(t, tt.src).Eval()
		require.NoError(t, err, tt.src)
		assert.Equal(t, tt.want, got, tt.src)
	}
}

func TestConditionalAndLogicalAreLazy(t *testing.T) {
	in := prepare(t, "let d(int x) = 1 / x in if false then d(0) else 2")
	got, err := in.Eval()
	require.NoError(t, err)
	assert.Equal(t, eval.Int(2), got)

	in = prepare(t, "let d(int x) = 1 / x in false && d(0) == 1")
	got, err = in.Eval()
	require.NoError(t, err)
	assert.Equal(t, eval.Bool(false), got)
}

func TestDivisionByZero(t *testing.T) {
	_, err := prepare(t, "let d(int x) = 1 / x in d(0)").Eval()
	require.Error(t, err)
	assert.Equal(t, diag.CodeEvalDivisionByZero, diag.CodeOf(err))

	got, err := prepare(t, "1.0 / 0.0 > 1.0").Eval()
	require.NoError(t, err)
	assert.Equal(t, eval.Bool(true), got)
}

func TestRecursionLimit(t *testing.T) {
	in := prepare(t, "let down(int n) = if n == 0 then 0 else down(n - 1) in down(100)", eval.WithMaxDepth(50))
	_, err := in.Eval()
	require.Error(t, err)
	assert.Equal(t, diag.CodeEvalRecursionLimit, diag.CodeOf(err))

	in = prepare(t, "let down(int n) = if n == 0 then 0 else down(n - 1) in down(40)", eval.WithMaxDepth(50))
	got, err := in.Eval()
	require.NoError(t, err)
	assert.Equal(t, eval.Int(0), got)
}

func TestInvoke(t *testing.T) {
	in := prepare(t, `
let height(float x, float z) = x * 2.0 + z,
    height(int x, int z) = x - z,
    scale(s) = s
in scale(1.0)`)

	got, err := in.Invoke("height", eval.Float(1.5), eval.Float(1))
	require.NoError(t, err)
	assert.Equal(t, eval.Float(4), got)

	got, err = in.Invoke("height", eval.Int(1), eval.Int(5))
	require.NoError(t, err)
	assert.Equal(t, eval.Int(-4), got)

	got, err = in.Invoke("scale", eval.Float(2))
	require.NoError(t, err)
	assert.Equal(t, eval.Float(2), got)

	_, err = in.Invoke("scale", eval.Bool(true))
	require.Error(t, err)
	assert.Equal(t, diag.CodeEvalUndefined, diag.CodeOf(err))

	_, err = in.Invoke("missing")
	assert.Equal(t, diag.CodeEvalUndefined, diag.CodeOf(err))
}

func TestValueConversions(t *testing.T) {
	v, ok := eval.Of(int64(3))
	require.True(t, ok)
	assert.Equal(t, eval.Int(3), v)
	assert.Equal(t, int64(3), v.Any())
	assert.Equal(t, "3", v.String())

	v, ok = eval.Of(2.5)
	require.True(t, ok)
	assert.Equal(t, ast.Float, v.Type)
	assert.Equal(t, "2.5", v.String())

	_, ok = eval.Of("text")
	assert.False(t, ok)
	assert.Nil(t, eval.Value{}.Any())
}
