package codegen

import (
	"strconv"
	"strings"

	"github.com/excyrender/et1/internal/ast"
	"github.com/excyrender/et1/internal/query"
)

// dialect is the surface syntax of a host language. Both host backends
// share one visitor and differ only in these strings and layout hooks.
type dialect struct {
	name     string
	reserved map[string]bool

	ops         map[ast.BinaryOp]string
	neg, not    string
	true, false string

	// idiv and fdiv name host helpers for division. An empty fdiv keeps
	// the native operator for reals.
	idiv, fdiv string

	condOpen, condThen, condElse, condClose string

	header       func(e *emitter)
	footer       func(e *emitter)
	beginBinding func(e *emitter, name string, params []string)
	endBinding   func(e *emitter)
	beginBody    func(e *emitter)
	endBody      func(e *emitter)
}

func generate(d *dialect, p *ast.Program) (string, error) {
	t := &target{d: d}
	p.Accept(t)
	return t.result()
}

// target emits a globalized program as one host function that defines
// every concrete binding as a nested function and returns the body.
type target struct {
	ast.BaseVisitor
	emitter

	d      *dialect
	params map[string]bool
}

func (t *target) ident(name string) string { return escapeIdent(name, t.d.reserved) }

func (t *target) BeginProgram(*ast.Program) { t.d.header(&t.emitter) }

func (t *target) BeforeProgramBody(p *ast.Program) {
	t.d.beginBody(&t.emitter)
	t.push("", p)
}

func (t *target) EndProgram(*ast.Program) {
	t.pop()
	t.d.endBody(&t.emitter)
	t.d.footer(&t.emitter)
}

func (t *target) BeginBinding(b *ast.Binding) {
	if b.IsGeneric() {
		t.mute++
		return
	}
	params := make([]string, len(b.Args))
	t.params = make(map[string]bool, len(b.Args))
	for i, a := range b.Args {
		params[i] = t.ident(a.Name)
		t.params[a.Name] = true
	}
	t.d.beginBinding(&t.emitter, t.ident(b.ID), params)
	t.push("", b)
}

func (t *target) EndBinding(b *ast.Binding) {
	if b.IsGeneric() {
		t.mute--
		return
	}
	t.pop()
	t.params = nil
	t.d.endBinding(&t.emitter)
}

func (t *target) BeginLetIn(l *ast.LetIn) {
	t.unsupported(l, t.d.name)
	t.push("", l)
}

func (t *target) EndLetIn(*ast.LetIn) { t.pop() }

func (t *target) open(n ast.Node, text, sep, closer string) {
	t.separate()
	t.write(text)
	t.frames = append(t.frames, frame{sep: sep, node: n, closer: closer})
}

func (t *target) close() {
	closer := t.frames[len(t.frames)-1].closer
	t.pop()
	t.write(closer)
}

func (t *target) BeginBinary(b *ast.Binary) {
	helper := ""
	if t.mute == 0 && b.Op == ast.Division {
		isInt, err := divisionHelper(b, query.TypeOf)
		switch {
		case err != nil:
			t.fail(err)
		case isInt:
			helper = t.d.idiv
		default:
			helper = t.d.fdiv
		}
	}
	if helper != "" {
		t.open(b, helper+"(", ", ", ")")
		return
	}
	t.open(b, "(", " "+t.d.ops[b.Op]+" ", ")")
}

func (t *target) EndBinary(*ast.Binary) { t.close() }

func (t *target) BeginUnary(u *ast.Unary) {
	op := t.d.neg
	if u.Op == ast.LogicalNot {
		op = t.d.not
	}
	t.open(u, "("+op, "", ")")
}

func (t *target) EndUnary(*ast.Unary) { t.close() }

func (t *target) BeginParen(p *ast.Paren) { t.open(p, "(", "", ")") }

func (t *target) EndParen(*ast.Paren) { t.close() }

func (t *target) BeginIfThenElse(e *ast.IfThenElse) { t.open(e, t.d.condOpen, "", t.d.condClose) }

func (t *target) BeforeThen(*ast.IfThenElse) { t.write(t.d.condThen) }

func (t *target) BeforeElse(*ast.IfThenElse) { t.write(t.d.condElse) }

func (t *target) EndIfThenElse(*ast.IfThenElse) { t.close() }

func (t *target) BeginLiteral(l ast.Literal) {
	t.separate()
	switch v := l.(type) {
	case *ast.IntegerLiteral:
		t.write(strconv.FormatInt(v.Value, 10))
	case *ast.RealLiteral:
		t.write(formatReal(v.Value))
	case *ast.BoolLiteral:
		if v.Value {
			t.write(t.d.true)
		} else {
			t.write(t.d.false)
		}
	}
}

// BeginIdentifier emits parameters by name. Anything else names a
// zero-arity binding, which is emitted as a function and called here.
func (t *target) BeginIdentifier(id *ast.Identifier) {
	t.separate()
	if t.params[id.Name] {
		t.write(t.ident(id.Name))
		return
	}
	t.write(t.ident(id.Name), "()")
}

func (t *target) BeginCall(c *ast.Call) { t.open(c, t.ident(c.ID)+"(", ", ", ")") }

func (t *target) EndCall(*ast.Call) { t.close() }

func joinParams(params []string) string { return strings.Join(params, ", ") }
