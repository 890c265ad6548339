package ast

// CopyBinding returns a deep copy of b. Spans are shared since they are
// immutable values.
func CopyBinding(b *Binding) *Binding {
	var args []Argument
	if b.Args != nil {
		args = make([]Argument, len(b.Args))
		copy(args, b.Args)
	}
	return &Binding{
		ID:   b.ID,
		Args: args,
		Body: CopyExpr(b.Body),
		Type: b.Type,
		span: b.span,
	}
}

// CopyExpr returns a deep copy of e.
func CopyExpr(e Expr) Expr {
	switch n := e.(type) {
	case *Binary:
		return &Binary{Op: n.Op, LHS: CopyExpr(n.LHS), RHS: CopyExpr(n.RHS), span: n.span}
	case *Unary:
		return &Unary{Op: n.Op, Operand: CopyExpr(n.Operand), span: n.span}
	case *Paren:
		return &Paren{Inner: CopyExpr(n.Inner), span: n.span}
	case *IfThenElse:
		return &IfThenElse{Cond: CopyExpr(n.Cond), Then: CopyExpr(n.Then), Else: CopyExpr(n.Else), span: n.span}
	case *IntegerLiteral:
		c := *n
		return &c
	case *RealLiteral:
		c := *n
		return &c
	case *BoolLiteral:
		c := *n
		return &c
	case *Identifier:
		c := *n
		return &c
	case *Call:
		args := make([]Expr, len(n.Args))
		for i, arg := range n.Args {
			args[i] = CopyExpr(arg)
		}
		return &Call{ID: n.ID, Args: args, Type: n.Type, span: n.span}
	case *LetIn:
		bindings := make([]*Binding, len(n.Bindings))
		for i, b := range n.Bindings {
			bindings[i] = CopyBinding(b)
		}
		return &LetIn{Bindings: bindings, Body: CopyExpr(n.Body), span: n.span}
	case nil:
		return nil
	default:
		panic("ast: CopyExpr on unknown expression type")
	}
}

// CopyProgram returns a deep copy of p.
func CopyProgram(p *Program) *Program {
	bindings := make([]*Binding, len(p.Bindings))
	for i, b := range p.Bindings {
		bindings[i] = CopyBinding(b)
	}
	return &Program{Bindings: bindings, Body: CopyExpr(p.Body), Type: p.Type, span: p.span}
}
