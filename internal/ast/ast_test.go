package ast

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/excyrender/et1/internal/lexer"
)

// recorder logs hook invocations in order.
type recorder struct {
	BaseVisitor
	log []string
}

func (r *recorder) add(format string, args ...any) { r.log = append(r.log, fmt.Sprintf(format, args...)) }

func (r *recorder) BeginBinary(e *Binary)         { r.add("begin %s", e.Op) }
func (r *recorder) EndBinary(e *Binary)           { r.add("end %s", e.Op) }
func (r *recorder) BeginIfThenElse(*IfThenElse)   { r.add("begin if") }
func (r *recorder) BeforeThen(*IfThenElse)        { r.add("then") }
func (r *recorder) BeforeElse(*IfThenElse)        { r.add("else") }
func (r *recorder) EndIfThenElse(*IfThenElse)     { r.add("end if") }
func (r *recorder) BeginLiteral(l Literal)        { r.add("lit %s", l.LiteralType()) }
func (r *recorder) BeginIdentifier(e *Identifier) { r.add("id %s", e.Name) }
func (r *recorder) BeginCall(e *Call)             { r.add("begin call %s", e.ID) }
func (r *recorder) EndCall(e *Call)               { r.add("end call %s", e.ID) }
func (r *recorder) BeginLetIn(*LetIn)             { r.add("begin let") }
func (r *recorder) BeforeLetInBody(*LetIn)        { r.add("in") }
func (r *recorder) EndLetIn(*LetIn)               { r.add("end let") }
func (r *recorder) BeginBinding(b *Binding)       { r.add("begin binding %s", b.ID) }
func (r *recorder) EndBinding(b *Binding)         { r.add("end binding %s", b.ID) }
func (r *recorder) BeginProgram(*Program)         { r.add("begin program") }
func (r *recorder) BeforeProgramBody(*Program)    { r.add("body") }
func (r *recorder) EndProgram(*Program)           { r.add("end program") }

var nowhere = lexer.Span{}

func id(name string) *Identifier { return NewIdentifier(name, nowhere) }
func num(v int64) *IntegerLiteral { return NewIntegerLiteral(v, nowhere) }

// let f(x) = if x < 1 then 1 else g(x), g(y) = let h = y in h in f(2)
func sample() *Program {
	f := NewBinding("f", Auto, []Argument{{Name: "x", Type: Auto}},
		NewIfThenElse(
			NewBinary(LessThan, id("x"), num(1), nowhere),
			num(1),
			NewCall("g", []Expr{id("x")}, nowhere),
			nowhere),
		nowhere)
	g := NewBinding("g", Auto, []Argument{{Name: "y", Type: Auto}},
		NewLetIn([]*Binding{NewBinding("h", Unresolved, nil, id("y"), nowhere)}, id("h"), nowhere),
		nowhere)
	return NewProgram([]*Binding{f, g}, NewCall("f", []Expr{num(2)}, nowhere), nowhere)
}

func TestAcceptOrder(t *testing.T) {
	r := &recorder{}
	sample().Accept(r)

	assert.Equal(t, []string{
		"begin program",
		"begin binding f",
		"begin if",
		"begin LessThan", "id x", "lit int", "end LessThan",
		"then",
		"lit int",
		"else",
		"begin call g", "id x", "end call g",
		"end if",
		"end binding f",
		"begin binding g",
		"begin let",
		"begin binding h", "id y", "end binding h",
		"in",
		"id h",
		"end let",
		"end binding g",
		"body",
		"begin call f", "lit int", "end call f",
		"end program",
	}, r.log)
}

// appender adds a binding to the program the first time it sees f.
type appender struct {
	BaseVisitor
	p       *Program
	visited []string
	done    bool
}

func (a *appender) BeginBinding(b *Binding) {
	a.visited = append(a.visited, b.ID)
	if !a.done {
		a.done = true
		a.p.Bindings = append(a.p.Bindings, NewBinding("late", Unresolved, nil, num(0), nowhere))
	}
}

func (a *appender) Transformed() bool { return a.done }

func TestAcceptVisitsAppendedBindings(t *testing.T) {
	p := sample()
	a := &appender{p: p}
	require.True(t, Run(p, a))
	assert.Equal(t, []string{"f", "g", "late"}, a.visited)
}

func TestBindingHelpers(t *testing.T) {
	b := NewBinding("f", Unresolved, []Argument{{"x", Int}, {"y", Auto}}, id("x"), nowhere)
	assert.Equal(t, Auto, b.Type)
	assert.True(t, b.IsGeneric())
	assert.Equal(t, []Type{Int, Auto}, b.ArgTypes())

	b.Args[1].Type = Float
	assert.False(t, b.IsGeneric())
}

func TestBinaryOpClasses(t *testing.T) {
	assert.True(t, Division.IsArithmetic())
	assert.False(t, LessThan.IsArithmetic())
	assert.True(t, GreaterEqual.IsOrdering())
	assert.True(t, NotEqual.IsEquality())
	assert.True(t, LogicalOr.IsLogical())
	assert.Equal(t, "<=", LessEqual.Symbol())
	assert.Equal(t, "LogicalAnd", LogicalAnd.String())
}

func TestCopyBindingIsDeep(t *testing.T) {
	p := sample()
	orig := p.Bindings[0]
	cp := CopyBinding(orig)

	cp.Args[0].Type = Int
	cp.Body.(*IfThenElse).Cond.(*Binary).LHS.(*Identifier).Type = Int
	cp.Body.(*IfThenElse).Else.(*Call).ID = "changed"

	assert.Equal(t, Auto, orig.Args[0].Type)
	assert.Equal(t, Unresolved, orig.Body.(*IfThenElse).Cond.(*Binary).LHS.(*Identifier).Type)
	assert.Equal(t, "g", orig.Body.(*IfThenElse).Else.(*Call).ID)
}

func TestCopyKeepsZeroArity(t *testing.T) {
	var sp lexer.Span
	value := NewBinding("k", Auto, nil, NewIntegerLiteral(1, sp), sp)
	empty := NewBinding("f", Auto, []Argument{}, NewIntegerLiteral(1, sp), sp)

	assert.Nil(t, CopyBinding(value).Args)
	assert.NotNil(t, CopyBinding(empty).Args)
}

func TestRewriteIsBottomUp(t *testing.T) {
	p := sample()

	var order []string
	RewriteProgram(p, func(e Expr) Expr {
		switch n := e.(type) {
		case *Identifier:
			order = append(order, n.Name)
			return NewCall("get_"+n.Name, nil, n.Span())
		case *LetIn:
			order = append(order, "let")
			return n.Body
		}
		return e
	})

	// h's body is rewritten before the let itself is replaced.
	assert.Equal(t, []string{"x", "x", "y", "h", "let"}, order)

	body := p.Bindings[1].Body.(*Call)
	assert.Equal(t, "get_h", body.ID)

	var calls []string
	Walk(p, func(n Node) bool {
		if c, ok := n.(*Call); ok {
			calls = append(calls, c.ID)
		}
		return true
	})
	assert.Equal(t, []string{"get_x", "g", "get_x", "get_h", "f"}, calls)
}
