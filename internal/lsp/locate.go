package lsp

import (
	"github.com/excyrender/et1/internal/ast"
	"github.com/excyrender/et1/internal/lexer"
	"github.com/excyrender/et1/internal/passes"
	"github.com/excyrender/et1/internal/query"
)

// location is what the cursor points at, with the scope around it.
type location struct {
	// node is the innermost *ast.Binding name, *ast.Identifier or *ast.Call
	// name under the cursor, or nil.
	node ast.Node
	// visible lists the bindings in scope, outermost first.
	visible []*ast.Binding
	// owners lists the enclosing bindings, innermost last.
	owners []*ast.Binding
}

type locator struct {
	doc    *Document
	offset int
	loc    location
}

func locate(doc *Document, offset int) location {
	l := &locator{doc: doc, offset: offset}
	p := doc.Program
	if p == nil {
		return l.loc
	}
	visible := append([]*ast.Binding(nil), p.Bindings...)
	l.loc.visible = visible
	for _, b := range p.Bindings {
		l.binding(b, visible, nil)
	}
	l.expr(p.Body, visible, nil)
	return l.loc
}

func (l *locator) contains(sp lexer.Span) bool {
	return sp.Start <= l.offset && l.offset <= sp.End
}

func (l *locator) enter(visible, owners []*ast.Binding) {
	l.loc.visible = visible
	l.loc.owners = owners
}

func (l *locator) hit(n ast.Node, visible, owners []*ast.Binding) {
	if l.loc.node == nil {
		l.loc.node = n
		l.enter(visible, owners)
	}
}

func (l *locator) binding(b *ast.Binding, visible, owners []*ast.Binding) {
	if l.loc.node != nil || !l.contains(b.Span()) {
		return
	}
	owners = append(owners[:len(owners):len(owners)], b)
	l.enter(visible, owners)

	if start, end := l.doc.nameRange(b); start <= l.offset && l.offset <= end && start < end {
		l.hit(b, visible, owners)
		return
	}
	l.expr(b.Body, visible, owners)
}

func (l *locator) expr(e ast.Expr, visible, owners []*ast.Binding) {
	if e == nil || l.loc.node != nil || !l.contains(e.Span()) {
		return
	}

	switch n := e.(type) {
	case *ast.Identifier:
		l.hit(n, visible, owners)

	case *ast.Call:
		if l.offset <= n.Span().Start+len([]rune(n.ID)) {
			l.hit(n, visible, owners)
			return
		}
		for _, arg := range n.Args {
			l.expr(arg, visible, owners)
		}

	case *ast.LetIn:
		inner := append(visible[:len(visible):len(visible)], n.Bindings...)
		l.enter(inner, owners)
		for _, b := range n.Bindings {
			l.binding(b, inner, owners)
		}
		l.expr(n.Body, inner, owners)

	case *ast.Binary:
		l.expr(n.LHS, visible, owners)
		l.expr(n.RHS, visible, owners)

	case *ast.Unary:
		l.expr(n.Operand, visible, owners)

	case *ast.Paren:
		l.expr(n.Inner, visible, owners)

	case *ast.IfThenElse:
		l.expr(n.Cond, visible, owners)
		l.expr(n.Then, visible, owners)
		l.expr(n.Else, visible, owners)
	}
}

// paramOwner returns the innermost enclosing binding with a parameter
// called name.
func (loc location) paramOwner(name string) (*ast.Binding, ast.Argument) {
	for i := len(loc.owners) - 1; i >= 0; i-- {
		for _, a := range loc.owners[i].Args {
			if a.Name == name {
				return loc.owners[i], a
			}
		}
	}
	return nil, ast.Argument{}
}

// value returns the innermost visible zero-arity binding called name.
func (loc location) value(name string) *ast.Binding {
	for i := len(loc.visible) - 1; i >= 0; i-- {
		if b := loc.visible[i]; b.ID == name && len(b.Args) == 0 {
			return b
		}
	}
	return nil
}

// target picks the binding a call resolves to by the same fitness scoring
// the resolver uses. Instances beat their generic, so calls whose argument
// types are known land on the instance.
func (loc location) target(c *ast.Call) *ast.Binding {
	types := make([]ast.Type, len(c.Args))
	for i, arg := range c.Args {
		types[i], _ = query.TypeOf(arg)
	}

	var best *ast.Binding
	bestScore := -1
	for _, b := range loc.visible {
		if score := passes.Fitness(b, c.ID, types); score > bestScore {
			best, bestScore = b, score
		}
	}
	if best != nil {
		return best
	}
	for _, b := range loc.visible {
		if b.ID == c.ID && len(b.Args) == len(c.Args) {
			return b
		}
	}
	return nil
}

// instances returns the resolved copies of generic b visible next to it.
func (loc location) instances(b *ast.Binding) []*ast.Binding {
	var out []*ast.Binding
	for _, other := range loc.visible {
		if other != b && other.ID == b.ID && other.Span() == b.Span() {
			out = append(out, other)
		}
	}
	return out
}
