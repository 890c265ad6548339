// Package compiler ties the Et1 front end, pass pipeline, backends and
// evaluator together behind a small API.
package compiler

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"sync"

	lru "github.com/hashicorp/golang-lru"

	"github.com/excyrender/et1/internal/ast"
	"github.com/excyrender/et1/internal/codegen"
	"github.com/excyrender/et1/internal/codegen/jsrt"
	"github.com/excyrender/et1/internal/diag"
	"github.com/excyrender/et1/internal/eval"
	"github.com/excyrender/et1/internal/parser"
	"github.com/excyrender/et1/internal/passes"
)

// DefaultCacheSize is the number of generated artifacts kept per Compiler.
const DefaultCacheSize = 128

// HeightBinding is the binding HeightFunction exposes.
const HeightBinding = "height"

// Options configures a Compiler. Zero values select the defaults.
type Options struct {
	Logger         *slog.Logger
	MaxResolveRuns int
	CacheSize      int
}

// Compiler runs compilations. It is safe for concurrent use; every
// compilation works on its own tree.
type Compiler struct {
	logger  *slog.Logger
	maxRuns int
	cache   *lru.Cache
}

// Artifact is generated target text plus the type of the program body.
type Artifact struct {
	Backend string
	Text    string
	Type    ast.Type
}

// New creates a Compiler.
func New(opts Options) (*Compiler, error) {
	c := &Compiler{
		logger:  opts.Logger,
		maxRuns: opts.MaxResolveRuns,
	}
	if c.logger == nil {
		c.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if c.maxRuns <= 0 {
		c.maxRuns = passes.DefaultMaxResolveRuns
	}
	size := opts.CacheSize
	if size <= 0 {
		size = DefaultCacheSize
	}
	cache, err := lru.New(size)
	if err != nil {
		return nil, fmt.Errorf("artifact cache: %w", err)
	}
	c.cache = cache
	return c, nil
}

func (c *Compiler) passOptions() []passes.Option {
	return []passes.Option{passes.WithLogger(c.logger), passes.WithMaxResolveRuns(c.maxRuns)}
}

// Compile parses src and runs the whole pass pipeline.
func (c *Compiler) Compile(src string) (*ast.Program, error) {
	return c.CompileFile("", src)
}

// CompileFile is Compile with filename recorded in spans.
func (c *Compiler) CompileFile(filename, src string) (*ast.Program, error) {
	return c.compile(filename, src, nil)
}

func (c *Compiler) compile(filename, src string, prepare func(*ast.Program) error) (*ast.Program, error) {
	prog, err := parser.Parse(src, parser.WithFilename(filename))
	if err != nil {
		return nil, err
	}
	if prepare != nil {
		if err := prepare(prog); err != nil {
			return nil, err
		}
	}
	if err := passes.Run(prog, c.passOptions()...); err != nil {
		return nil, err
	}
	c.logger.Debug("compiled", "file", filename, "bindings", len(prog.Bindings), "type", string(prog.Type))
	return prog, nil
}

// CompileTo renders src with the named backend. Successful results are
// cached by backend and source hash.
func (c *Compiler) CompileTo(backend, src string) (Artifact, error) {
	return c.CompileFileTo(backend, "", src)
}

// CompileFileTo is CompileTo with filename recorded in diagnostics.
func (c *Compiler) CompileFileTo(backend, filename, src string) (Artifact, error) {
	b, err := codegen.Lookup(backend)
	if err != nil {
		return Artifact{}, err
	}

	sum := sha256.Sum256([]byte(src))
	key := backend + ":" + hex.EncodeToString(sum[:])
	if v, ok := c.cache.Get(key); ok {
		c.logger.Debug("artifact cache hit", "backend", backend, "file", filename)
		return v.(Artifact), nil
	}

	prog, err := c.CompileFile(filename, src)
	if err != nil {
		return Artifact{}, err
	}
	text, err := b.Generate(prog)
	if err != nil {
		return Artifact{}, err
	}

	art := Artifact{Backend: backend, Text: text, Type: prog.Type}
	c.cache.Add(key, art)
	return art, nil
}

// Eval compiles src and evaluates it on the tree.
func (c *Compiler) Eval(src string) (eval.Value, error) {
	prog, err := c.Compile(src)
	if err != nil {
		return eval.Value{}, err
	}
	return eval.New(prog).Eval()
}

// EvalJS compiles src to JavaScript and runs it in an embedded
// interpreter.
func (c *Compiler) EvalJS(ctx context.Context, src string) (eval.Value, error) {
	art, err := c.CompileTo("js", src)
	if err != nil {
		return eval.Value{}, err
	}
	rt, err := jsrt.New()
	if err != nil {
		return eval.Value{}, err
	}
	res, err := rt.Run(ctx, art.Text, art.Type)
	if err != nil {
		return eval.Value{}, err
	}
	v, ok := eval.Of(res)
	if !ok {
		return eval.Value{}, fmt.Errorf("unexpected %T result from %s", res, art.Backend)
	}
	return v, nil
}

// HeightFunction compiles a program defining height(x, z) and returns it
// as a Go function over floats. The program body is not evaluated. A
// generic height is instantiated for (float, float).
func (c *Compiler) HeightFunction(src string) (func(x, z float64) (float64, error), error) {
	prog, err := c.compile("", src, func(p *ast.Program) error {
		var declared *ast.Binding
		fits := false
		for _, b := range p.Bindings {
			if b.ID != HeightBinding {
				continue
			}
			if declared == nil {
				declared = b
			}
			fits = fits || passes.Fitness(b, HeightBinding, []ast.Type{ast.Float, ast.Float}) >= 0
		}
		if declared == nil {
			return diag.Errorf(diag.StageEval, diag.CodeEvalUndefined, p.Span().Diag(),
				"program defines no %s binding", HeightBinding).
				WithHelp("declare it in the top-level let, e.g. let height(x, z) = ... in 0")
		}
		if !fits {
			return diag.Errorf(diag.StageEval, diag.CodeTypeMismatch, declared.Span().Diag(),
				"%s must accept (float, float)", HeightBinding).
				WithHelp("declare the parameters as float or leave them untyped")
		}

		sp := p.Span()
		use := ast.NewCall(HeightBinding, []ast.Expr{ast.NewRealLiteral(0, sp), ast.NewRealLiteral(0, sp)}, sp)
		p.Bindings = append(p.Bindings, ast.NewBinding(HeightBinding+".use", ast.Auto, nil, use, sp))
		return nil
	})
	if err != nil {
		return nil, err
	}

	types := []ast.Type{ast.Float, ast.Float}
	var target *ast.Binding
	for _, b := range prog.Bindings {
		if !b.IsGeneric() && passes.Fitness(b, HeightBinding, types) > 0 {
			target = b
		}
	}
	if target != nil && target.Type != ast.Float {
		return nil, diag.Errorf(diag.StageEval, diag.CodeTypeMismatch, target.Span().Diag(),
			"%s(float, float) returns %s, want float", HeightBinding, target.Type)
	}

	var mu sync.Mutex
	in := eval.New(prog)
	return func(x, z float64) (float64, error) {
		mu.Lock()
		defer mu.Unlock()

		v, err := in.Invoke(HeightBinding, eval.Float(x), eval.Float(z))
		if err != nil {
			return 0, err
		}
		return v.Float, nil
	}, nil
}
