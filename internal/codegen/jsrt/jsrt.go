// Package jsrt runs programs produced by the JavaScript backend inside an
// embedded goja interpreter.
package jsrt

import (
	"context"
	"errors"
	"fmt"

	"github.com/dop251/goja"

	"github.com/excyrender/et1/internal/ast"
	"github.com/excyrender/et1/internal/diag"
)

// prelude builds the helper object passed to a generated program. Only
// idiv is native since it needs exact 64-bit integer division.
const prelude = `(function (idiv) {
	return {
		cond: function (c, t, e) { return c ? t() : e(); },
		idiv: idiv
	};
})`

// errDivisionByZero is thrown into the interpreter by idiv.
var errDivisionByZero = errors.New("integer division by zero")

// Runtime is one interpreter instance. It is not safe for concurrent use.
type Runtime struct {
	vm      *goja.Runtime
	helper  goja.Value
	divZero bool
}

// New creates a runtime with the helper object installed.
func New() (*Runtime, error) {
	r := &Runtime{vm: goja.New()}

	mk, err := r.function(prelude)
	if err != nil {
		return nil, fmt.Errorf("jsrt prelude: %w", err)
	}
	helper, err := mk(goja.Undefined(), r.vm.ToValue(r.idiv))
	if err != nil {
		return nil, fmt.Errorf("jsrt prelude: %w", err)
	}
	r.helper = helper
	return r, nil
}

func (r *Runtime) idiv(call goja.FunctionCall) goja.Value {
	a, b := call.Argument(0).ToInteger(), call.Argument(1).ToInteger()
	if b == 0 {
		r.divZero = true
		panic(r.vm.ToValue(errDivisionByZero.Error()))
	}
	return r.vm.ToValue(a / b)
}

func (r *Runtime) function(text string) (goja.Callable, error) {
	v, err := r.vm.RunString(text)
	if err != nil {
		return nil, err
	}
	fn, ok := goja.AssertFunction(v)
	if !ok {
		return nil, errors.New("script does not evaluate to a function")
	}
	return fn, nil
}

// Run evaluates generated program text and converts its result to typ.
func (r *Runtime) Run(ctx context.Context, text string, typ ast.Type) (any, error) {
	if !typ.IsConcrete() {
		return nil, fmt.Errorf("jsrt: cannot convert result to %s", typ)
	}

	fn, err := r.function(text)
	if err != nil {
		return nil, fmt.Errorf("jsrt load: %w", err)
	}

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("jsrt: %w", err)
	}
	r.divZero = false
	r.vm.ClearInterrupt()

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			r.vm.Interrupt(ctx.Err())
		case <-done:
		}
	}()

	v, err := fn(goja.Undefined(), r.helper)
	if err != nil {
		if r.divZero {
			return nil, diag.Errorf(diag.StageEval, diag.CodeEvalDivisionByZero, diag.Span{}, "%v", errDivisionByZero)
		}
		var interrupted *goja.InterruptedError
		if errors.As(err, &interrupted) {
			return nil, fmt.Errorf("jsrt: %w", ctx.Err())
		}
		return nil, fmt.Errorf("jsrt run: %w", err)
	}

	switch typ {
	case ast.Int:
		return v.ToInteger(), nil
	case ast.Float:
		return v.ToFloat(), nil
	default:
		return v.ToBoolean(), nil
	}
}

// Run evaluates text in a fresh runtime.
func Run(text string, typ ast.Type) (any, error) {
	r, err := New()
	if err != nil {
		return nil, err
	}
	return r.Run(context.Background(), text, typ)
}
