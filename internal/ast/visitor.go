package ast

// Visitor receives hooks in a fixed order while a tree is traversed via
// Accept. Begin hooks fire before a node's children, End hooks after them.
// The Before hooks mark the boundaries between the children of control
// constructs.
type Visitor interface {
	BeginBinary(*Binary)
	EndBinary(*Binary)

	BeginUnary(*Unary)
	EndUnary(*Unary)

	BeginParen(*Paren)
	EndParen(*Paren)

	BeginIfThenElse(*IfThenElse)
	BeforeThen(*IfThenElse)
	BeforeElse(*IfThenElse)
	EndIfThenElse(*IfThenElse)

	BeginLiteral(Literal)
	EndLiteral(Literal)

	BeginIdentifier(*Identifier)
	EndIdentifier(*Identifier)

	BeginCall(*Call)
	EndCall(*Call)

	BeginLetIn(*LetIn)
	BeforeLetInBody(*LetIn)
	EndLetIn(*LetIn)

	BeginBinding(*Binding)
	EndBinding(*Binding)

	BeginProgram(*Program)
	BeforeProgramBody(*Program)
	EndProgram(*Program)
}

// Transform is a visitor whose End hooks may edit the visited nodes in place.
// Transformed reports whether the last traversal changed anything, which is
// what fixpoint drivers loop on.
type Transform interface {
	Visitor
	Transformed() bool
}

// BaseVisitor implements every hook as a no-op. Embed it to override only
// the hooks of interest.
type BaseVisitor struct{}

func (BaseVisitor) BeginBinary(*Binary)         {}
func (BaseVisitor) EndBinary(*Binary)           {}
func (BaseVisitor) BeginUnary(*Unary)           {}
func (BaseVisitor) EndUnary(*Unary)             {}
func (BaseVisitor) BeginParen(*Paren)           {}
func (BaseVisitor) EndParen(*Paren)             {}
func (BaseVisitor) BeginIfThenElse(*IfThenElse) {}
func (BaseVisitor) BeforeThen(*IfThenElse)      {}
func (BaseVisitor) BeforeElse(*IfThenElse)      {}
func (BaseVisitor) EndIfThenElse(*IfThenElse)   {}
func (BaseVisitor) BeginLiteral(Literal)        {}
func (BaseVisitor) EndLiteral(Literal)          {}
func (BaseVisitor) BeginIdentifier(*Identifier) {}
func (BaseVisitor) EndIdentifier(*Identifier)   {}
func (BaseVisitor) BeginCall(*Call)             {}
func (BaseVisitor) EndCall(*Call)               {}
func (BaseVisitor) BeginLetIn(*LetIn)           {}
func (BaseVisitor) BeforeLetInBody(*LetIn)      {}
func (BaseVisitor) EndLetIn(*LetIn)             {}
func (BaseVisitor) BeginBinding(*Binding)       {}
func (BaseVisitor) EndBinding(*Binding)         {}
func (BaseVisitor) BeginProgram(*Program)       {}
func (BaseVisitor) BeforeProgramBody(*Program)  {}
func (BaseVisitor) EndProgram(*Program)         {}

// Accept visits the operands left to right.
func (e *Binary) Accept(v Visitor) {
	v.BeginBinary(e)
	e.LHS.Accept(v)
	e.RHS.Accept(v)
	v.EndBinary(e)
}

func (e *Unary) Accept(v Visitor) {
	v.BeginUnary(e)
	e.Operand.Accept(v)
	v.EndUnary(e)
}

func (e *Paren) Accept(v Visitor) {
	v.BeginParen(e)
	e.Inner.Accept(v)
	v.EndParen(e)
}

// Accept visits the condition, then both branches with BeforeThen and
// BeforeElse in between.
func (e *IfThenElse) Accept(v Visitor) {
	v.BeginIfThenElse(e)
	e.Cond.Accept(v)
	v.BeforeThen(e)
	e.Then.Accept(v)
	v.BeforeElse(e)
	e.Else.Accept(v)
	v.EndIfThenElse(e)
}

func (e *IntegerLiteral) Accept(v Visitor) {
	v.BeginLiteral(e)
	v.EndLiteral(e)
}

func (e *RealLiteral) Accept(v Visitor) {
	v.BeginLiteral(e)
	v.EndLiteral(e)
}

func (e *BoolLiteral) Accept(v Visitor) {
	v.BeginLiteral(e)
	v.EndLiteral(e)
}

func (e *Identifier) Accept(v Visitor) {
	v.BeginIdentifier(e)
	v.EndIdentifier(e)
}

// Accept visits the arguments left to right.
func (e *Call) Accept(v Visitor) {
	v.BeginCall(e)
	for _, arg := range e.Args {
		arg.Accept(v)
	}
	v.EndCall(e)
}

// Accept visits every binding of the region, then the body. The binding
// list is re-read on each step so instantiations appended during the
// traversal are visited in the same run.
func (e *LetIn) Accept(v Visitor) {
	v.BeginLetIn(e)
	for i := 0; i < len(e.Bindings); i++ {
		e.Bindings[i].Accept(v)
	}
	v.BeforeLetInBody(e)
	e.Body.Accept(v)
	v.EndLetIn(e)
}

func (b *Binding) Accept(v Visitor) {
	v.BeginBinding(b)
	b.Body.Accept(v)
	v.EndBinding(b)
}

// Accept visits every top-level binding, then the body. Like LetIn it picks
// up bindings appended while it runs.
func (p *Program) Accept(v Visitor) {
	v.BeginProgram(p)
	for i := 0; i < len(p.Bindings); i++ {
		p.Bindings[i].Accept(v)
	}
	v.BeforeProgramBody(p)
	if p.Body != nil {
		p.Body.Accept(v)
	}
	v.EndProgram(p)
}

// Run applies t to the whole program and reports whether it changed anything.
func Run(p *Program, t Transform) bool {
	p.Accept(t)
	return t.Transformed()
}
