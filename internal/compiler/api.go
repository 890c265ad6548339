package compiler

import (
	"sync"

	"github.com/excyrender/et1/internal/eval"
)

var defaultCompiler = sync.OnceValues(func() (*Compiler, error) { return New(Options{}) })

// CompileToJS renders src with the JavaScript backend using default options.
func CompileToJS(src string) (string, error) {
	return compileWithDefault("js", src)
}

// CompileToPython renders src with the Python backend using default options.
func CompileToPython(src string) (string, error) {
	return compileWithDefault("python", src)
}

func compileWithDefault(backend, src string) (string, error) {
	c, err := defaultCompiler()
	if err != nil {
		return "", err
	}
	art, err := c.CompileTo(backend, src)
	if err != nil {
		return "", err
	}
	return art.Text, nil
}

// Eval compiles and evaluates src using default options.
func Eval(src string) (eval.Value, error) {
	c, err := defaultCompiler()
	if err != nil {
		return eval.Value{}, err
	}
	return c.Eval(src)
}
