package codegen

import (
	"strconv"

	"github.com/excyrender/et1/internal/ast"
)

// Et1 prints a tree back as Et1 source. Unlike the other backends it accepts
// trees at any stage: let-in regions and generic bindings are printed, and
// resolved types are written in front of bindings and parameters.
type Et1 struct{}

func (Et1) Name() string { return "et1" }

func (Et1) Generate(p *ast.Program) (string, error) {
	pr := &et1Printer{}
	p.Accept(pr)
	return pr.result()
}

// Print renders any node as Et1 source.
func Print(n ast.Node) string {
	pr := &et1Printer{}
	n.Accept(pr)
	return pr.sb.String()
}

func precedence(op ast.BinaryOp) int {
	switch {
	case op == ast.LogicalOr:
		return 1
	case op == ast.LogicalAnd:
		return 2
	case op.IsEquality():
		return 3
	case op.IsOrdering():
		return 4
	case op == ast.Addition || op == ast.Subtraction:
		return 5
	default:
		return 6
	}
}

type et1Printer struct {
	ast.BaseVisitor
	emitter
}

// open starts node n, wrapping it in parentheses when its parent would
// otherwise bind tighter, and pushes its frame.
func (pr *et1Printer) open(n ast.Node, sep string) {
	rhs := len(pr.frames) > 0 && pr.frames[len(pr.frames)-1].count > 0
	pr.separate()

	wrap := false
	switch parent := pr.parent().(type) {
	case *ast.Binary:
		switch e := n.(type) {
		case *ast.Binary:
			pp, cp := precedence(parent.Op), precedence(e.Op)
			wrap = cp < pp || (cp == pp && rhs)
		case *ast.IfThenElse, *ast.LetIn:
			wrap = true
		}
	case *ast.Unary:
		switch n.(type) {
		case *ast.Binary, *ast.IfThenElse, *ast.LetIn:
			wrap = true
		}
	}

	closer := ""
	if wrap {
		pr.write("(")
		closer = ")"
	}
	pr.frames = append(pr.frames, frame{sep: sep, node: n, closer: closer})
}

func (pr *et1Printer) close() {
	closer := pr.frames[len(pr.frames)-1].closer
	pr.pop()
	pr.write(closer)
}

func typed(t ast.Type, name string) string {
	if t.IsConcrete() {
		return string(t) + " " + name
	}
	return name
}

func (pr *et1Printer) BeginProgram(p *ast.Program) {
	if len(p.Bindings) > 0 {
		pr.write("let ")
		pr.push(", ", p)
	}
}

func (pr *et1Printer) BeforeProgramBody(p *ast.Program) {
	if len(p.Bindings) > 0 {
		pr.pop()
		pr.write(" in ")
	}
}

func (pr *et1Printer) BeginBinding(b *ast.Binding) {
	pr.separate()
	pr.write(typed(b.Type, b.ID))
	if b.Args != nil {
		pr.write("(")
		for i, a := range b.Args {
			if i > 0 {
				pr.write(", ")
			}
			pr.write(typed(a.Type, a.Name))
		}
		pr.write(")")
	}
	pr.write(" = ")
	pr.push("", b)
}

func (pr *et1Printer) EndBinding(*ast.Binding) { pr.pop() }

func (pr *et1Printer) BeginLetIn(l *ast.LetIn) {
	pr.open(l, ", ")
	pr.write("let ")
}

func (pr *et1Printer) BeforeLetInBody(*ast.LetIn) {
	pr.frames[len(pr.frames)-1].sep = ""
	pr.frames[len(pr.frames)-1].count = 0
	pr.write(" in ")
}

func (pr *et1Printer) EndLetIn(*ast.LetIn) { pr.close() }

func (pr *et1Printer) BeginBinary(b *ast.Binary) { pr.open(b, " "+b.Op.Symbol()+" ") }

func (pr *et1Printer) EndBinary(*ast.Binary) { pr.close() }

func (pr *et1Printer) BeginUnary(u *ast.Unary) {
	pr.open(u, "")
	pr.write(u.Op.Symbol())
}

func (pr *et1Printer) EndUnary(*ast.Unary) { pr.close() }

func (pr *et1Printer) BeginParen(p *ast.Paren) {
	pr.open(p, "")
	pr.write("(")
}

func (pr *et1Printer) EndParen(*ast.Paren) {
	pr.write(")")
	pr.close()
}

func (pr *et1Printer) BeginIfThenElse(e *ast.IfThenElse) {
	pr.open(e, "")
	pr.write("if ")
}

func (pr *et1Printer) BeforeThen(*ast.IfThenElse) { pr.write(" then ") }

func (pr *et1Printer) BeforeElse(*ast.IfThenElse) { pr.write(" else ") }

func (pr *et1Printer) EndIfThenElse(*ast.IfThenElse) { pr.close() }

func (pr *et1Printer) BeginLiteral(l ast.Literal) {
	pr.separate()
	switch v := l.(type) {
	case *ast.IntegerLiteral:
		pr.write(strconv.FormatInt(v.Value, 10))
	case *ast.RealLiteral:
		pr.write(formatReal(v.Value))
	case *ast.BoolLiteral:
		pr.write(strconv.FormatBool(v.Value))
	}
}

func (pr *et1Printer) BeginIdentifier(id *ast.Identifier) {
	pr.separate()
	pr.write(id.Name)
}

func (pr *et1Printer) BeginCall(c *ast.Call) {
	pr.open(c, ", ")
	pr.write(c.ID, "(")
}

func (pr *et1Printer) EndCall(*ast.Call) {
	pr.write(")")
	pr.close()
}
