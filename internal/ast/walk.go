package ast

// Walk traverses the tree starting from node, calling fn for each node in
// pre-order. If fn returns false, Walk stops traversing that branch.
func Walk(node Node, fn func(Node) bool) {
	if !fn(node) {
		return
	}

	switch n := node.(type) {
	case *Program:
		for _, b := range n.Bindings {
			Walk(b, fn)
		}
		if n.Body != nil {
			Walk(n.Body, fn)
		}

	case *Binding:
		Walk(n.Body, fn)

	case *LetIn:
		for _, b := range n.Bindings {
			Walk(b, fn)
		}
		Walk(n.Body, fn)

	case *Binary:
		Walk(n.LHS, fn)
		Walk(n.RHS, fn)

	case *Unary:
		Walk(n.Operand, fn)

	case *Paren:
		Walk(n.Inner, fn)

	case *IfThenElse:
		Walk(n.Cond, fn)
		Walk(n.Then, fn)
		Walk(n.Else, fn)

	case *Call:
		for _, arg := range n.Args {
			Walk(arg, fn)
		}

	case *Identifier, *IntegerLiteral, *RealLiteral, *BoolLiteral:
		// leaves
	}
}

// Rewrite replaces sub-expressions of expr bottom-up: children are rewritten
// first, then fn is applied to the node itself and its result takes the
// node's place. Bodies of bindings inside LetIn regions are rewritten too.
// Rewrite is the tool for edits that change a node's kind, which a
// Transform cannot do from its End hooks.
func Rewrite(expr Expr, fn func(Expr) Expr) Expr {
	switch n := expr.(type) {
	case *Binary:
		n.LHS = Rewrite(n.LHS, fn)
		n.RHS = Rewrite(n.RHS, fn)
	case *Unary:
		n.Operand = Rewrite(n.Operand, fn)
	case *Paren:
		n.Inner = Rewrite(n.Inner, fn)
	case *IfThenElse:
		n.Cond = Rewrite(n.Cond, fn)
		n.Then = Rewrite(n.Then, fn)
		n.Else = Rewrite(n.Else, fn)
	case *Call:
		for i, arg := range n.Args {
			n.Args[i] = Rewrite(arg, fn)
		}
	case *LetIn:
		for _, b := range n.Bindings {
			b.Body = Rewrite(b.Body, fn)
		}
		n.Body = Rewrite(n.Body, fn)
	}
	return fn(expr)
}

// RewriteProgram applies Rewrite to every top-level binding body and to the
// program body.
func RewriteProgram(p *Program, fn func(Expr) Expr) {
	for i := 0; i < len(p.Bindings); i++ {
		p.Bindings[i].Body = Rewrite(p.Bindings[i].Body, fn)
	}
	if p.Body != nil {
		p.Body = Rewrite(p.Body, fn)
	}
}
