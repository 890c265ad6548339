package passes

import (
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/excyrender/et1/internal/ast"
	"github.com/excyrender/et1/internal/diag"
)

// DefaultMaxResolveRuns bounds the type resolution fixpoint.
const DefaultMaxResolveRuns = 256

type config struct {
	logger  *slog.Logger
	maxRuns int
}

// Option configures the pass driver.
type Option func(*config)

// WithLogger routes pass progress records to logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithMaxResolveRuns overrides DefaultMaxResolveRuns. Values below one are
// ignored.
func WithMaxResolveRuns(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.maxRuns = n
		}
	}
}

func newConfig(opts []Option) config {
	cfg := config{
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		maxRuns: DefaultMaxResolveRuns,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// Pass is one named stage of the middle-end.
type Pass struct {
	Stage diag.Stage
	Run   func(*ast.Program) error
}

// Pipeline returns the passes in the order they must run.
func Pipeline(opts ...Option) []Pass {
	return []Pass{
		{Stage: diag.StageLift, Run: LiftLambdas},
		{Stage: diag.StageResolve, Run: func(p *ast.Program) error { return ResolveTypes(p, opts...) }},
		{Stage: diag.StageMangle, Run: Mangle},
		{Stage: diag.StageGlobalize, Run: GlobalizeFunctions},
	}
}

// Run applies the whole pipeline to p. On error p is left in whatever state
// the failing pass reached and must be discarded.
func Run(p *ast.Program, opts ...Option) error {
	return RunThrough(p, diag.StageGlobalize, opts...)
}

// RunThrough applies the pipeline up to and including stage. Errors are
// returned as produced; diagnostics already name their stage.
func RunThrough(p *ast.Program, stage diag.Stage, opts ...Option) error {
	cfg := newConfig(opts)
	passes := Pipeline(opts...)

	last := -1
	for i, pass := range passes {
		if pass.Stage == stage {
			last = i
		}
	}
	if last < 0 {
		return fmt.Errorf("unknown pipeline stage %q", stage)
	}

	for _, pass := range passes[:last+1] {
		start := time.Now()
		if err := pass.Run(p); err != nil {
			return err
		}
		cfg.logger.Debug("pass finished", "pass", string(pass.Stage), "bindings", len(p.Bindings), "elapsed", time.Since(start))
	}
	return nil
}
