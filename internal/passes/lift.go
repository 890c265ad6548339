package passes

import (
	"fmt"
	"sort"

	"github.com/excyrender/et1/internal/ast"
)

// LiftLambdas hoists every binding declared in a let-in region into the
// program's top-level region. A hoisted binding is renamed to id.n, where n
// is the pre-order number of its region, and receives the parameters of
// enclosing bindings it uses (directly or through other hoisted bindings)
// as leading parameters. Every reference to it passes them along. Each
// let-in is replaced by its body.
//
// A region that declares a name also visible from an enclosing region gets
// a forwarding binding for every outer overload none of its own bindings
// shadows with the same parameter list, so calls inside it still choose
// among the whole lexical overload set.
func LiftLambdas(p *ast.Program) error {
	c := &liftCollector{
		groups: map[*ast.Binding]*liftGroup{},
		refs:   map[ast.Expr]liftRef{},
	}
	p.Accept(c)
	if len(c.order) == 0 {
		return nil
	}

	c.computeCaptures()

	ast.RewriteProgram(p, c.rewrite)
	for _, b := range c.forwards {
		b.Body = ast.Rewrite(b.Body, c.rewrite)
	}

	for _, g := range c.order {
		for _, b := range g.bindings {
			b.ID = g.name
			if len(g.captures) > 0 {
				args := make([]ast.Argument, 0, len(g.captures)+len(b.Args))
				for _, cp := range g.captures {
					args = append(args, ast.Argument{Name: g.names[cp], Type: cp.typ})
				}
				b.Args = append(args, b.Args...)
			}
			p.Bindings = append(p.Bindings, b)
		}
	}
	return nil
}

// liftParam is one formal parameter of some binding in the tree.
type liftParam struct {
	name  string
	typ   ast.Type
	seq   int
	owner *ast.Binding
}

// liftGroup is the set of same-named bindings of one let-in region. They
// are hoisted under one name and share one capture list.
type liftGroup struct {
	name     string
	bindings []*ast.Binding
	captures []*liftParam
	names    map[*liftParam]string

	direct map[*liftParam]bool
	calls  map[*liftGroup]bool
}

func (g *liftGroup) owns(p *liftParam) bool {
	for _, b := range g.bindings {
		if b == p.owner {
			return true
		}
	}
	return false
}

// liftRef is what an identifier or call resolved to, plus the innermost
// binding whose body contains it (nil in the program body).
type liftRef struct {
	param *liftParam
	group *liftGroup
	ctx   *ast.Binding
}

// liftFrame is one lexical level: either a binding's parameters or a
// region's bindings.
type liftFrame struct {
	params map[string]*liftParam
	groups map[string]*liftGroup
}

type liftCollector struct {
	ast.BaseVisitor

	frames   []liftFrame
	ctx      []*ast.Binding
	regions  int
	seq      int
	order    []*liftGroup
	groups   map[*ast.Binding]*liftGroup
	refs     map[ast.Expr]liftRef
	top      map[string][]*ast.Binding
	forwards []*ast.Binding
}

func (c *liftCollector) BeginProgram(p *ast.Program) {
	c.top = map[string][]*ast.Binding{}
	for _, b := range p.Bindings {
		c.top[b.ID] = append(c.top[b.ID], b)
	}
}

func (c *liftCollector) BeginLetIn(l *ast.LetIn) {
	c.regions++
	frame := liftFrame{groups: map[string]*liftGroup{}}
	for _, b := range l.Bindings {
		g, ok := frame.groups[b.ID]
		if !ok {
			g = &liftGroup{
				name:   fmt.Sprintf("%s.%d", b.ID, c.regions),
				names:  map[*liftParam]string{},
				direct: map[*liftParam]bool{},
				calls:  map[*liftGroup]bool{},
			}
			frame.groups[b.ID] = g
			c.order = append(c.order, g)
		}
		g.bindings = append(g.bindings, b)
		c.groups[b] = g
	}
	for _, b := range l.Bindings {
		if g := frame.groups[b.ID]; g.bindings[0] == b {
			c.forwardOuter(b.ID, g)
		}
	}
	c.frames = append(c.frames, frame)
}

// forwardOuter adds to g a binding per unshadowed overload of name visible
// from outside the region, whose body calls that overload.
func (c *liftCollector) forwardOuter(name string, g *liftGroup) {
	outer, overloads := c.outerOverloads(name)
	own := append([]*ast.Binding(nil), g.bindings...)
	for _, ob := range overloads {
		if shadowed(own, ob) {
			continue
		}
		span := ob.Span()
		var body ast.Expr
		if ob.Args == nil {
			body = ast.NewIdentifier(name, span)
		} else {
			args := make([]ast.Expr, 0, len(ob.Args))
			for _, a := range ob.Args {
				args = append(args, ast.NewIdentifier(a.Name, span))
			}
			body = ast.NewCall(name, args, span)
		}
		var params []ast.Argument
		if ob.Args != nil {
			params = append([]ast.Argument{}, ob.Args...)
		}
		fwd := ast.NewBinding(name, ast.Auto, params, body, span)
		g.bindings = append(g.bindings, fwd)
		c.groups[fwd] = g
		c.forwards = append(c.forwards, fwd)
		if outer != nil {
			c.record(body, liftRef{group: outer, ctx: fwd})
		}
	}
}

// outerOverloads returns the innermost enclosing group named name, or the
// program's bindings of that name when no region declares it.
func (c *liftCollector) outerOverloads(name string) (*liftGroup, []*ast.Binding) {
	for i := len(c.frames) - 1; i >= 0; i-- {
		if g, ok := c.frames[i].groups[name]; ok {
			return g, g.bindings
		}
	}
	return nil, c.top[name]
}

func shadowed(own []*ast.Binding, b *ast.Binding) bool {
	for _, o := range own {
		if sameParams(o, b) {
			return true
		}
	}
	return false
}

func sameParams(a, b *ast.Binding) bool {
	if (a.Args == nil) != (b.Args == nil) || len(a.Args) != len(b.Args) {
		return false
	}
	for i := range a.Args {
		if a.Args[i].Type != b.Args[i].Type {
			return false
		}
	}
	return true
}

func (c *liftCollector) EndLetIn(*ast.LetIn) { c.frames = c.frames[:len(c.frames)-1] }

func (c *liftCollector) BeginBinding(b *ast.Binding) {
	frame := liftFrame{params: map[string]*liftParam{}}
	for _, a := range b.Args {
		c.seq++
		frame.params[a.Name] = &liftParam{name: a.Name, typ: a.Type, seq: c.seq, owner: b}
	}
	c.frames = append(c.frames, frame)
	c.ctx = append(c.ctx, b)
}

func (c *liftCollector) EndBinding(*ast.Binding) {
	c.frames = c.frames[:len(c.frames)-1]
	c.ctx = c.ctx[:len(c.ctx)-1]
}

func (c *liftCollector) current() *ast.Binding {
	if len(c.ctx) == 0 {
		return nil
	}
	return c.ctx[len(c.ctx)-1]
}

func (c *liftCollector) EndIdentifier(id *ast.Identifier) {
	ref := liftRef{ctx: c.current()}
	for i := len(c.frames) - 1; i >= 0; i-- {
		if p, ok := c.frames[i].params[id.Name]; ok {
			ref.param = p
			break
		}
		if g, ok := c.frames[i].groups[id.Name]; ok {
			ref.group = g
			break
		}
	}
	c.record(id, ref)
}

func (c *liftCollector) EndCall(call *ast.Call) {
	ref := liftRef{ctx: c.current()}
	for i := len(c.frames) - 1; i >= 0; i-- {
		if g, ok := c.frames[i].groups[call.ID]; ok {
			ref.group = g
			break
		}
	}
	c.record(call, ref)
}

func (c *liftCollector) record(e ast.Expr, ref liftRef) {
	if ref.param == nil && ref.group == nil {
		return
	}
	c.refs[e] = ref

	g := c.groups[ref.ctx]
	if ref.ctx == nil || g == nil {
		return
	}
	switch {
	case ref.param != nil && !g.owns(ref.param):
		g.direct[ref.param] = true
	case ref.group != nil:
		g.calls[ref.group] = true
	}
}

// computeCaptures closes every group's direct parameter uses over the
// groups it references, minus its own parameters, until nothing grows.
func (c *liftCollector) computeCaptures() {
	captured := map[*liftGroup]map[*liftParam]bool{}
	for _, g := range c.order {
		captured[g] = map[*liftParam]bool{}
		for p := range g.direct {
			captured[g][p] = true
		}
	}

	for changed := true; changed; {
		changed = false
		for _, g := range c.order {
			for callee := range g.calls {
				for p := range captured[callee] {
					if !captured[g][p] && !g.owns(p) {
						captured[g][p] = true
						changed = true
					}
				}
			}
		}
	}

	for _, g := range c.order {
		for p := range captured[g] {
			g.captures = append(g.captures, p)
		}
		sort.Slice(g.captures, func(i, j int) bool { return g.captures[i].seq < g.captures[j].seq })

		used := map[string]bool{}
		for _, b := range g.bindings {
			for _, a := range b.Args {
				used[a.Name] = true
			}
		}
		for _, p := range g.captures {
			name := p.name
			for k := 1; used[name]; k++ {
				name = fmt.Sprintf("%s.%d", p.name, k)
			}
			used[name] = true
			g.names[p] = name
		}
	}
}

// paramName is how parameter p is spelled inside the body of ctx once
// ctx's group is hoisted.
func (c *liftCollector) paramName(p *liftParam, ctx *ast.Binding) string {
	if ctx == nil || ctx == p.owner {
		return p.name
	}
	if g := c.groups[ctx]; g != nil {
		if name, ok := g.names[p]; ok {
			return name
		}
	}
	return p.name
}

func (c *liftCollector) captureArgs(g *liftGroup, ctx *ast.Binding, e ast.Expr) []ast.Expr {
	args := make([]ast.Expr, len(g.captures))
	for i, p := range g.captures {
		args[i] = ast.NewIdentifier(c.paramName(p, ctx), e.Span())
	}
	return args
}

func (c *liftCollector) rewrite(e ast.Expr) ast.Expr {
	switch n := e.(type) {
	case *ast.LetIn:
		return n.Body

	case *ast.Identifier:
		ref, ok := c.refs[n]
		switch {
		case !ok:
		case ref.param != nil:
			n.Name = c.paramName(ref.param, ref.ctx)
		case len(ref.group.captures) > 0:
			return ast.NewCall(ref.group.name, c.captureArgs(ref.group, ref.ctx, n), n.Span())
		default:
			n.Name = ref.group.name
		}

	case *ast.Call:
		if ref, ok := c.refs[n]; ok {
			n.ID = ref.group.name
			n.Args = append(c.captureArgs(ref.group, ref.ctx, n), n.Args...)
		}
	}
	return e
}
