package codegen_test

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/excyrender/et1/internal/ast"
	"github.com/excyrender/et1/internal/codegen"
	"github.com/excyrender/et1/internal/diag"
	"github.com/excyrender/et1/internal/parser"
	"github.com/excyrender/et1/internal/passes"
)

func compile(t *testing.T, src string) *ast.Program {
	t.Helper()

	prog, err := parser.Parse(src)
	require.NoError(t, err, src)
	require.NoError(t, passes.Run(prog), src)
	return prog
}

// runCodegenTest compiles src, renders it with backend and checks that
// every expected fragment shows up in the output.
func runCodegenTest(t *testing.T, backend, src string, checks []string) string {
	t.Helper()

	b, err := codegen.Lookup(backend)
	require.NoError(t, err)
	out, err := b.Generate(compile(t, src))
	require.NoError(t, err, src)
	for _, check := range checks {
		if !strings.Contains(out, check) {
			t.Errorf("%s output missing %q\n--- output ---\n%s", backend, check, out)
		}
	}
	return out
}

func TestLookup(t *testing.T) {
	assert.Equal(t, []string{"et1", "js", "python"}, codegen.Names())

	for _, name := range codegen.Names() {
		b, err := codegen.Lookup(name)
		require.NoError(t, err)
		assert.Equal(t, name, b.Name())
	}

	_, err := codegen.Lookup("wasm")
	require.Error(t, err)
	assert.Equal(t, diag.CodeGenUnknownBackend, diag.CodeOf(err))
}

func TestJavaScriptLayout(t *testing.T) {
	out := runCodegenTest(t, "js", "let f(x) = x in f(2)", nil)

	want := strings.Join([]string{
		"(function ($et1) {",
		"    function f_sint(x) { return x; }",
		"    return f_sint(2);",
		"})",
	}, "\n")
	if diff := cmp.Diff(want, out); diff != "" {
		t.Errorf("js output mismatch (-want +got):\n%s", diff)
	}
}

func TestPythonLayout(t *testing.T) {
	out := runCodegenTest(t, "python", "let f(x) = x in f(2)", nil)

	want := strings.Join([]string{
		"def et1_program(et1_rt):",
		"    def f_sint(x):",
		"        return x",
		"    return f_sint(2)",
	}, "\n")
	if diff := cmp.Diff(want, out); diff != "" {
		t.Errorf("python output mismatch (-want +got):\n%s", diff)
	}
}

const divisionProgram = `
let half(int x) = x / 2,
    avg(float a, float b) = (a + b) / 2.0
in if half(7) > 2 then avg(1.0, 2.0) else 0.0`

func TestJavaScriptOperators(t *testing.T) {
	runCodegenTest(t, "js", divisionProgram, []string{
		"function half_sint(x) { return $et1.idiv(x, 2); }",
		"function avg_sfloat__float(a, b) { return (((a + b)) / 2.0); }",
		"return $et1.cond((half_sint(7) > 2), function () { return avg_sfloat__float(1.0, 2.0); }, function () { return 0.0; });",
	})

	runCodegenTest(t, "js", "let same(bool a, bool b) = a == b && !(a != b) || false in same(true, -1 < 2)", []string{
		"(((a === b) && (!((a !== b)))) || false)",
		"same_sbool__bool(true, ((-1) < 2))",
	})
}

func TestPythonOperators(t *testing.T) {
	runCodegenTest(t, "python", divisionProgram, []string{
		"        return et1_rt.idiv(x, 2)",
		"        return et1_rt.fdiv(((a + b)), 2.0)",
		"    return et1_rt.cond((half_sint(7) > 2), lambda: avg_sfloat__float(1.0, 2.0), lambda: 0.0)",
	})

	runCodegenTest(t, "python", "let same(bool a, bool b) = a == b && !(a != b) || false in same(true, -1 < 2)", []string{
		"(((a == b) and (not ((a != b)))) or False)",
		"same_sbool__bool(True, ((-1) < 2))",
	})
}

func TestZeroArityBindingsAreCalled(t *testing.T) {
	runCodegenTest(t, "js", "let k = 3 in k + 1", []string{
		"function k() { return 3; }",
		"return (k() + 1);",
	})
	runCodegenTest(t, "python", "let k = 3 in k + 1", []string{
		"    def k():\n        return 3",
		"    return (k() + 1)",
	})
}

func TestLiftedNamesAreEscaped(t *testing.T) {
	out := runCodegenTest(t, "js", "let f(int a) = let g(int b) = a + b in g(1) in f(2)", []string{
		"function g_d1_sint__int(a, b) { return (a + b); }",
		"function f_sint(a) { return g_d1_sint__int(a, 1); }",
	})
	assert.NotContains(t, out, "$int")
	assert.NotContains(t, out, "g.1")
}

func TestGenericBindingsAreNotEmitted(t *testing.T) {
	for _, backend := range []string{"js", "python"} {
		out := runCodegenTest(t, backend, "let id(x) = x in id(1) + id(2)", nil)
		assert.NotContains(t, out, "id_sauto", backend)
		assert.Equal(t, 1, strings.Count(out, "id_sint(x)"), backend)
	}
}

func TestLetInIsRejected(t *testing.T) {
	prog, err := parser.Parse("let f = let g = 1 in g in f")
	require.NoError(t, err)

	for _, backend := range []string{"js", "python"} {
		b, err := codegen.Lookup(backend)
		require.NoError(t, err)
		out, err := b.Generate(prog)
		require.Error(t, err, backend)
		assert.Empty(t, out)
		assert.Equal(t, diag.CodeGenUnsupportedNode, diag.CodeOf(err), backend)
	}
}

func TestGenerateIsDeterministic(t *testing.T) {
	src := "let f(x, y) = x * y, g(x) = f(x, x) in if g(2) > 3 then f(1.0, 2.0) else g(0.5)"
	for _, backend := range codegen.Names() {
		first := runCodegenTest(t, backend, src, nil)
		for i := 0; i < 5; i++ {
			assert.Equal(t, first, runCodegenTest(t, backend, src, nil), backend)
		}
	}
}
