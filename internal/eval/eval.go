// Package eval interprets resolved Et1 programs directly on the tree.
package eval

import (
	"github.com/excyrender/et1/internal/ast"
	"github.com/excyrender/et1/internal/diag"
	"github.com/excyrender/et1/internal/lexer"
	"github.com/excyrender/et1/internal/passes"
)

// DefaultMaxDepth bounds the call depth of one evaluation.
const DefaultMaxDepth = 10000

// Option configures an Interpreter.
type Option func(*Interpreter)

// WithMaxDepth overrides DefaultMaxDepth. Values below one are ignored.
func WithMaxDepth(n int) Option {
	return func(in *Interpreter) {
		if n > 0 {
			in.maxDepth = n
		}
	}
}

// Interpreter evaluates a program that went through the whole pass
// pipeline: every call names exactly one binding of the flat program
// region. Zero-arity bindings are evaluated once and memoized. An
// Interpreter is not safe for concurrent use.
type Interpreter struct {
	prog     *ast.Program
	funcs    map[string]*ast.Binding
	consts   map[string]Value
	maxDepth int
	depth    int
}

type env map[string]Value

// New prepares p for evaluation.
func New(p *ast.Program, opts ...Option) *Interpreter {
	in := &Interpreter{
		prog:     p,
		funcs:    make(map[string]*ast.Binding, len(p.Bindings)),
		consts:   map[string]Value{},
		maxDepth: DefaultMaxDepth,
	}
	for _, b := range p.Bindings {
		if !b.IsGeneric() {
			in.funcs[b.ID] = b
		}
	}
	for _, opt := range opts {
		opt(in)
	}
	return in
}

// Eval evaluates the program body.
func (in *Interpreter) Eval() (Value, error) {
	in.depth = 0
	return in.eval(in.prog.Body, env{})
}

// Invoke calls the best concrete overload of base for the argument values,
// chosen by the same fitness rule type resolution uses.
func (in *Interpreter) Invoke(base string, args ...Value) (Value, error) {
	types := make([]ast.Type, len(args))
	for i, a := range args {
		types[i] = a.Type
	}

	var best *ast.Binding
	bestScore := -1
	for _, b := range in.prog.Bindings {
		if b.IsGeneric() {
			continue
		}
		if score := passes.Fitness(b, base, types); score > bestScore {
			best, bestScore = b, score
		}
	}
	if best == nil {
		return Value{}, diag.Errorf(diag.StageEval, diag.CodeEvalUndefined, diag.Span{},
			"no concrete binding %s accepts %d argument(s) of these types", base, len(args)).
			WithHelp("generic bindings only get concrete instances for the argument types they are called with")
	}

	in.depth = 0
	return in.apply(best, args, best.Span())
}

func (in *Interpreter) apply(b *ast.Binding, args []Value, at lexer.Span) (Value, error) {
	if len(args) != len(b.Args) {
		return Value{}, diag.Errorf(diag.StageEval, diag.CodeEvalArgumentMismatch, at.Diag(),
			"%s takes %d argument(s), got %d", b.ID, len(b.Args), len(args))
	}
	in.depth++
	defer func() { in.depth-- }()
	if in.depth > in.maxDepth {
		return Value{}, diag.Errorf(diag.StageEval, diag.CodeEvalRecursionLimit, at.Diag(),
			"call depth exceeds %d", in.maxDepth)
	}

	frame := make(env, len(args))
	for i, a := range b.Args {
		if args[i].Type != a.Type {
			return Value{}, diag.Errorf(diag.StageEval, diag.CodeEvalArgumentMismatch, at.Diag(),
				"argument %s of %s is %s, got %s", a.Name, b.ID, a.Type, args[i].Type)
		}
		frame[a.Name] = args[i]
	}
	return in.eval(b.Body, frame)
}

func (in *Interpreter) eval(e ast.Expr, vars env) (Value, error) {
	switch n := e.(type) {
	case *ast.IntegerLiteral:
		return Int(n.Value), nil
	case *ast.RealLiteral:
		return Float(n.Value), nil
	case *ast.BoolLiteral:
		return Bool(n.Value), nil

	case *ast.Paren:
		return in.eval(n.Inner, vars)

	case *ast.Identifier:
		if v, ok := vars[n.Name]; ok {
			return v, nil
		}
		if v, ok := in.consts[n.Name]; ok {
			return v, nil
		}
		b, ok := in.funcs[n.Name]
		if !ok || len(b.Args) > 0 {
			return Value{}, undefined(n, n.Name)
		}
		v, err := in.apply(b, nil, n.Span())
		if err != nil {
			return Value{}, err
		}
		in.consts[n.Name] = v
		return v, nil

	case *ast.Call:
		b, ok := in.funcs[n.ID]
		if !ok {
			return Value{}, undefined(n, n.ID)
		}
		args := make([]Value, len(n.Args))
		for i, a := range n.Args {
			v, err := in.eval(a, vars)
			if err != nil {
				return Value{}, err
			}
			args[i] = v
		}
		return in.apply(b, args, n.Span())

	case *ast.IfThenElse:
		c, err := in.eval(n.Cond, vars)
		if err != nil {
			return Value{}, err
		}
		if c.Bool {
			return in.eval(n.Then, vars)
		}
		return in.eval(n.Else, vars)

	case *ast.Unary:
		v, err := in.eval(n.Operand, vars)
		if err != nil {
			return Value{}, err
		}
		return unary(n, v)

	case *ast.Binary:
		return in.binary(n, vars)
	}

	return Value{}, diag.Errorf(diag.StageEval, diag.CodeInternalInvariant, e.Span().Diag(),
		"cannot evaluate %T", e).WithHelp("run the globalize-functions pass first")
}

func undefined(n ast.Node, name string) error {
	return diag.Errorf(diag.StageEval, diag.CodeEvalUndefined, n.Span().Diag(), "%s is not defined", name)
}
