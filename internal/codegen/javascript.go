package codegen

import "github.com/excyrender/et1/internal/ast"

// JavaScript is the reference backend. A program becomes a function
// expression taking the host helper object:
//
//	(function ($et1) {
//	    function f_sint(x) { return x; }
//	    return f_sint(2);
//	})
//
// The helper must provide cond(c, then, else), which calls one of two
// thunks, and idiv(a, b), which divides integers truncating toward zero.
type JavaScript struct{}

func (JavaScript) Name() string { return "js" }

func (JavaScript) Generate(p *ast.Program) (string, error) { return generate(javascript, p) }

var javascript = &dialect{
	name: "js",
	reserved: wordSet(
		"arguments", "await", "break", "case", "catch", "class", "const", "continue",
		"debugger", "default", "delete", "do", "else", "enum", "eval", "export",
		"extends", "false", "finally", "for", "function", "if", "implements", "import",
		"in", "instanceof", "interface", "let", "new", "null", "package", "private",
		"protected", "public", "return", "static", "super", "switch", "this", "throw",
		"true", "try", "typeof", "undefined", "var", "void", "while", "with", "yield",
		"NaN", "Infinity",
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
		ast.Equal:          "===",
		ast.NotEqual:       "!==",
		ast.LogicalAnd:     "&&",
		ast.LogicalOr:      "||",
	},
	neg:       "-",
	not:       "!",
	true:      "true",
	false:     "false",
	idiv:      "$et1.idiv",
	condOpen:  "$et1.cond(",
	condThen:  ", function () { return ",
	condElse:  "; }, function () { return ",
	condClose: "; })",

	header: func(e *emitter) {
		e.line("(function ($et1) {")
		e.indent++
	},
	footer: func(e *emitter) {
		e.indent--
		e.line("})")
	},
	beginBinding: func(e *emitter, name string, params []string) {
		e.line("function ", name, "(", joinParams(params), ") { return ")
	},
	endBinding: func(e *emitter) { e.write("; }") },
	beginBody:  func(e *emitter) { e.line("return ") },
	endBody:    func(e *emitter) { e.write(";") },
}
