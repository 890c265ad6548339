package parser_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/excyrender/et1/internal/ast"
	"github.com/excyrender/et1/internal/diag"
	"github.com/excyrender/et1/internal/parser"
)

func mustParse(t *testing.T, src string) *ast.Program {
	t.Helper()

	prog, err := parser.Parse(src)
	require.NoError(t, err, src)
	require.NotNil(t, prog)
	return prog
}

// shape renders an expression fully parenthesized so tests can assert the
// grouping the parser chose.
func shape(e ast.Expr) string {
	switch n := e.(type) {
	case *ast.Binary:
		return "(" + shape(n.LHS) + " " + n.Op.Symbol() + " " + shape(n.RHS) + ")"
	case *ast.Unary:
		return "(" + n.Op.Symbol() + shape(n.Operand) + ")"
	case *ast.Paren:
		return "[" + shape(n.Inner) + "]"
	case *ast.IfThenElse:
		return "if " + shape(n.Cond) + " then " + shape(n.Then) + " else " + shape(n.Else)
	case *ast.Identifier:
		return n.Name
	case *ast.IntegerLiteral:
		return "int"
	case *ast.RealLiteral:
		return "float"
	case *ast.BoolLiteral:
		return "bool"
	case *ast.Call:
		s := n.ID + "("
		for i, a := range n.Args {
			if i > 0 {
				s += ", "
			}
			s += shape(a)
		}
		return s + ")"
	case *ast.LetIn:
		return "let{" + shape(n.Body) + "}"
	}
	return "?"
}

func TestPrecedence(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		{"1 + 2 * 3", "(int + (int * int))"},
		{"1 - 2 - 3", "((int - int) - int)"},
		{"a < b == c >= d", "((a < b) == (c >= d))"},
		{"a || b && !c", "(a || (b && (!c)))"},
		{"-x * y", "((-x) * y)"},
		{"(1 + 2) * 3", "([(int + int)] * int)"},
		{"f(1, g(x) + 2) / 2.5", "(f(int, (g(x) + int)) / float)"},
		{"if a then 1 else 2 + 3", "if a then int else (int + int)"},
		{"1 + if a then 1 else 2", "(int + if a then int else int)"},
		{"f()", "f()"},
	}

	for _, tt := range tests {
		prog := mustParse(t, tt.src)
		assert.Empty(t, prog.Bindings, tt.src)
		assert.Equal(t, tt.want, shape(prog.Body), tt.src)
	}
}

func TestTopLevelLetBecomesProgramRegion(t *testing.T) {
	prog := mustParse(t, "let int f(float x, y) = x, z = 1 in f(2.0, z)")

	require.Len(t, prog.Bindings, 2)

	f := prog.Bindings[0]
	assert.Equal(t, "f", f.ID)
	assert.Equal(t, ast.Int, f.Type)
	assert.Equal(t, []ast.Argument{{Name: "x", Type: ast.Float}, {Name: "y", Type: ast.Auto}}, f.Args)
	assert.True(t, f.IsGeneric())

	z := prog.Bindings[1]
	assert.Equal(t, ast.Auto, z.Type)
	assert.Empty(t, z.Args)

	assert.Equal(t, "f(float, z)", shape(prog.Body))
}

func TestNestedLet(t *testing.T) {
	prog := mustParse(t, "let f(x) = let g(y) = x + y in g(1) in f(2)")

	require.Len(t, prog.Bindings, 1)
	inner, ok := prog.Bindings[0].Body.(*ast.LetIn)
	require.True(t, ok, "expected nested let, got %T", prog.Bindings[0].Body)
	require.Len(t, inner.Bindings, 1)
	assert.Equal(t, "g", inner.Bindings[0].ID)
	assert.Equal(t, "(x + y)", shape(inner.Bindings[0].Body))
	assert.Equal(t, "g(int)", shape(inner.Body))
}

func TestSpans(t *testing.T) {
	prog, err := parser.Parse("let y = 1 +\n  22 in y", parser.WithFilename("s.et1"))
	require.NoError(t, err)

	sum := prog.Bindings[0].Body.(*ast.Binary)
	assert.Equal(t, "s.et1", sum.Span().Filename)
	assert.Equal(t, 1, sum.Span().Line)
	assert.Equal(t, 9, sum.Span().Column)
	assert.Equal(t, 8, sum.Span().Start)
	assert.Equal(t, 16, sum.Span().End)

	assert.Equal(t, 0, prog.Span().Start)
	assert.Equal(t, 21, prog.Span().End)
}

func TestErrors(t *testing.T) {
	tests := []struct {
		src  string
		code diag.Code
		msg  string
	}{
		{"let f(x) = in 1", diag.CodeParseError, "unexpected 'in' in expression"},
		{"let f(x) = x f(1)", diag.CodeParseError, "expected 'in', found 'f'"},
		{"(f)(1)", diag.CodeParseError, "only named bindings can be called"},
		{"let f(x, x) = x in f(1, 2)", diag.CodeParseError, "duplicate parameter 'x'"},
		{"let int = 1 in 2", diag.CodeParseError, "expected binding name, found '='"},
		{"1 2", diag.CodeParseError, "unexpected '2' after end of program"},
		{"1 & 2", diag.CodeLexerIllegalRune, `illegal character "&"`},
		{"99999999999999999999", diag.CodeParseError, "integer literal 99999999999999999999 out of range"},
	}

	for _, tt := range tests {
		prog, err := parser.Parse(tt.src)
		require.Error(t, err, tt.src)
		assert.Nil(t, prog, tt.src)

		d, ok := diag.As(err)
		require.True(t, ok, tt.src)
		assert.Equal(t, tt.code, d.Code, tt.src)
		assert.Equal(t, tt.msg, d.Message, tt.src)
	}
}

func TestErrorsAreCollected(t *testing.T) {
	p := parser.New("1 # 2")
	assert.Nil(t, p.ParseProgram())

	errs := p.Errors()
	require.NotEmpty(t, errs)
	assert.Equal(t, diag.CodeLexerIllegalRune, errs[0].ToDiagnostic().Code)
}
