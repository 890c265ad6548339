package codegen

import "github.com/excyrender/et1/internal/ast"

// Python renders a program as a module-level function taking the host
// helper object:
//
//	def et1_program(et1_rt):
//	    def f_sint(x):
//	        return x
//	    return f_sint(2)
//
// The helper provides cond, idiv and fdiv with the same contract as the
// JavaScript helper; fdiv follows IEEE 754 on a zero divisor.
type Python struct{}

func (Python) Name() string { return "python" }

func (Python) Generate(p *ast.Program) (string, error) { return generate(python, p) }

var python = &dialect{
	name: "python",
	reserved: wordSet(
		"False", "None", "True", "and", "as", "assert", "async", "await", "break",
		"class", "continue", "def", "del", "elif", "else", "except", "finally", "for",
		"from", "global", "if", "import", "in", "is", "lambda", "nonlocal", "not", "or",
		"pass", "raise", "return", "try", "while", "with", "yield",
	),
	ops: map[ast.BinaryOp]string{
		ast.Addition:       "+",
		ast.Subtraction:    "-",
		ast.Multiplication: "*",
		ast.Division:       "/",
		ast.LessThan:       "<",
		ast.LessEqual:      "<=",
		ast.GreaterThan:    ">",
		ast.GreaterEqual:   ">=",
		ast.Equal:          "==",
		ast.NotEqual:       "!=",
		ast.LogicalAnd:     "and",
		ast.LogicalOr:      "or",
	},
	neg:       "-",
	not:       "not ",
	true:      "True",
	false:     "False",
	idiv:      "et1_rt.idiv",
	fdiv:      "et1_rt.fdiv",
	condOpen:  "et1_rt.cond(",
	condThen:  ", lambda: ",
	condElse:  ", lambda: ",
	condClose: ")",

	header: func(e *emitter) {
		e.line("def et1_program(et1_rt):")
		e.indent++
	},
	footer: func(e *emitter) { e.indent-- },
	beginBinding: func(e *emitter, name string, params []string) {
		e.line("def ", name, "(", joinParams(params), "):")
		e.indent++
		e.line("return ")
	},
	endBinding: func(e *emitter) { e.indent-- },
	beginBody:  func(e *emitter) { e.line("return ") },
	endBody:    func(e *emitter) {},
}
