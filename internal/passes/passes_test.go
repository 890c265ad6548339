package passes_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/excyrender/et1/internal/ast"
	"github.com/excyrender/et1/internal/codegen"
	"github.com/excyrender/et1/internal/diag"
	"github.com/excyrender/et1/internal/parser"
	"github.com/excyrender/et1/internal/passes"
)

func mustParse(t *testing.T, src string) *ast.Program {
	t.Helper()

	prog, err := parser.Parse(src)
	require.NoError(t, err, src)
	return prog
}

// through parses src, runs the pipeline up to stage and prints the result.
func through(t *testing.T, src string, stage diag.Stage, opts ...passes.Option) string {
	t.Helper()

	prog := mustParse(t, src)
	require.NoError(t, passes.RunThrough(prog, stage, opts...), src)
	return codegen.Print(prog)
}

// failsWith runs the whole pipeline on src and returns the diagnostic.
func failsWith(t *testing.T, src string, code diag.Code, opts ...passes.Option) diag.Diagnostic {
	t.Helper()

	err := passes.Run(mustParse(t, src), opts...)
	require.Error(t, err, src)
	d, ok := diag.As(err)
	require.True(t, ok, "%T is not a diagnostic: %v", err, err)
	require.Equal(t, code, d.Code, d.Error())
	return d
}
