package compiler_test

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/excyrender/et1/internal/ast"
	"github.com/excyrender/et1/internal/compiler"
	"github.com/excyrender/et1/internal/diag"
	"github.com/excyrender/et1/internal/eval"
)

type corpusEntry struct {
	Name         string `yaml:"name"`
	Src          string `yaml:"src"`
	Type         string `yaml:"type"`
	Want         string `yaml:"want"`
	Error        string `yaml:"error"`
	RuntimeError string `yaml:"runtime_error"`
}

func loadCorpus(t *testing.T) []corpusEntry {
	t.Helper()

	data, err := os.ReadFile("testdata/corpus.yaml")
	require.NoError(t, err)
	var entries []corpusEntry
	require.NoError(t, yaml.Unmarshal(data, &entries))
	require.NotEmpty(t, entries)
	return entries
}

func newCompiler(t *testing.T) *compiler.Compiler {
	t.Helper()

	c, err := compiler.New(compiler.Options{})
	require.NoError(t, err)
	return c
}

func TestCorpusRoundTrip(t *testing.T) {
	c := newCompiler(t)

	for _, tt := range loadCorpus(t) {
		t.Run(tt.Name, func(t *testing.T) {
			prog, err := c.Compile(tt.Src)
			if tt.Error != "" {
				require.Error(t, err)
				assert.Equal(t, diag.Code(tt.Error), diag.CodeOf(err), err.Error())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, ast.Type(tt.Type), prog.Type)

			tree, treeErr := eval.New(prog).Eval()
			js, jsErr := c.EvalJS(context.Background(), tt.Src)

			if tt.RuntimeError != "" {
				assert.Equal(t, diag.Code(tt.RuntimeError), diag.CodeOf(treeErr))
				assert.Equal(t, diag.Code(tt.RuntimeError), diag.CodeOf(jsErr))
				return
			}
			require.NoError(t, treeErr)
			require.NoError(t, jsErr)
			if !assert.Equal(t, tree, js, "tree and JavaScript results differ") {
				t.Log(spew.Sdump(prog))
			}
			assert.Equal(t, tt.Want, tree.String())
		})
	}
}

func TestCorpusPython(t *testing.T) {
	c := newCompiler(t)

	for _, tt := range loadCorpus(t) {
		if tt.Error != "" {
			continue
		}
		art, err := c.CompileTo("python", tt.Src)
		require.NoError(t, err, tt.Name)
		assert.True(t, strings.HasPrefix(art.Text, "def et1_program(et1_rt):\n"), tt.Name)
		assert.Equal(t, ast.Type(tt.Type), art.Type, tt.Name)
	}
}

func TestCompileToCaches(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))
	c, err := compiler.New(compiler.Options{Logger: logger, CacheSize: 4})
	require.NoError(t, err)

	first, err := c.CompileTo("js", "1 + 1")
	require.NoError(t, err)
	second, err := c.CompileTo("js", "1 + 1")
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, strings.Count(logs.String(), "artifact cache hit"))

	py, err := c.CompileTo("python", "1 + 1")
	require.NoError(t, err)
	assert.NotEqual(t, first.Text, py.Text)

	_, err = c.CompileTo("cobol", "1 + 1")
	assert.Equal(t, diag.CodeGenUnknownBackend, diag.CodeOf(err))
}

func TestCompileFileRecordsFilename(t *testing.T) {
	_, err := newCompiler(t).CompileFile("terrain.et1", "let f(int x) = x in f(true)")
	require.Error(t, err)

	d, ok := diag.As(err)
	require.True(t, ok)
	assert.Equal(t, "terrain.et1", d.Span.Filename)
}

func TestMaxResolveRunsIsPassedThrough(t *testing.T) {
	c, err := compiler.New(compiler.Options{MaxResolveRuns: 1})
	require.NoError(t, err)

	_, err = c.Compile("let id(x) = x in id(1)")
	assert.Equal(t, diag.CodeResolutionDiverged, diag.CodeOf(err))
}

func TestHeightFunction(t *testing.T) {
	c := newCompiler(t)

	height, err := c.HeightFunction("let height(x, z) = x * 0.5 + z in 0")
	require.NoError(t, err)
	got, err := height(4, 1)
	require.NoError(t, err)
	assert.Equal(t, 3.0, got)

	height, err = c.HeightFunction(`
let hill(float d) = if d < 1.0 then 1.0 - d else 0.0,
    height(float x, float z) = hill(x * x + z * z)
in 0`)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := height(0.5, 0.5)
			assert.NoError(t, err)
			assert.Equal(t, 0.5, v)
		}()
	}
	wg.Wait()
}

func TestHeightFunctionErrors(t *testing.T) {
	c := newCompiler(t)

	_, err := c.HeightFunction("let h(x, z) = x in 0")
	assert.Equal(t, diag.CodeEvalUndefined, diag.CodeOf(err))

	_, err = c.HeightFunction("let height(x, z) = x < z in 0")
	assert.Equal(t, diag.CodeTypeMismatch, diag.CodeOf(err))

	src := "let height(int x, int z) = x + z in 0"
	_, err = c.HeightFunction(src)
	d, ok := diag.As(err)
	require.True(t, ok, "%v", err)
	assert.Equal(t, diag.CodeTypeMismatch, d.Code)
	assert.Contains(t, d.Message, "must accept (float, float)")
	assert.Equal(t, strings.Index(src, "height"), d.Span.Start, "reported against the declared binding")
}

func TestPackageHelpers(t *testing.T) {
	js, err := compiler.CompileToJS("let f(x) = x in f(2)")
	require.NoError(t, err)
	assert.Contains(t, js, "function f_sint(x)")

	py, err := compiler.CompileToPython("let f(x) = x in f(2)")
	require.NoError(t, err)
	assert.Contains(t, py, "def f_sint(x):")

	v, err := compiler.Eval("let f(x) = x in f(2)")
	require.NoError(t, err)
	assert.Equal(t, eval.Int(2), v)
}
