package passes

import (
	"fmt"
	"strings"

	"github.com/excyrender/et1/internal/ast"
	"github.com/excyrender/et1/internal/diag"
	"github.com/excyrender/et1/internal/query"
)

// ResolveTypes annotates every reachable expression with a concrete type and
// instantiates generic bindings for the argument types they are called
// with. It runs the resolver over the whole tree until a run changes
// nothing. State still unresolved at that point is fatal.
func ResolveTypes(p *ast.Program, opts ...Option) error {
	cfg := newConfig(opts)

	for run := 1; ; run++ {
		if run > cfg.maxRuns {
			return diag.Errorf(diag.StageResolve, diag.CodeResolutionDiverged, p.Span().Diag(),
				"type resolution did not settle after %d runs", cfg.maxRuns).
				WithHelp("a generic binding may keep instantiating itself with new argument types")
		}

		r := &resolver{}
		changed := ast.Run(p, r)
		if r.err != nil {
			return r.err
		}
		if changed {
			continue
		}

		cfg.logger.Debug("pass complete", "pass", string(diag.StageResolve), "runs", run)
		if len(r.pending) > 0 {
			return r.unresolved()
		}
		return nil
	}
}

// pending records a soft failure: something that may resolve in a later run.
type pending struct {
	span diag.Span
	what string
}

// resolver is one run of type resolution. Scopes mirror the descent through
// Program, LetIn and Binding nodes. The first fatal error is kept and turns
// every later hook into a no-op apart from scope bookkeeping.
type resolver struct {
	ast.BaseVisitor

	scopes      []scope
	transformed bool
	pending     []pending
	err         error
}

var _ ast.Transform = (*resolver)(nil)

func (r *resolver) Transformed() bool { return r.transformed }

func (r *resolver) top() *scope { return &r.scopes[len(r.scopes)-1] }

func (r *resolver) push(s scope) { r.scopes = append(r.scopes, s) }

func (r *resolver) pop() { r.scopes = r.scopes[:len(r.scopes)-1] }

func (r *resolver) fail(err error) {
	if r.err == nil {
		r.err = err
	}
}

func (r *resolver) skip() bool { return r.err != nil || r.top().generic }

func (r *resolver) postpone(n ast.Node, format string, args ...any) {
	r.pending = append(r.pending, pending{span: n.Span().Diag(), what: fmt.Sprintf(format, args...)})
}

func (r *resolver) BeginProgram(p *ast.Program) { r.push(programScope(p)) }

func (r *resolver) EndProgram(p *ast.Program) {
	defer r.pop()
	if r.err != nil || p.Body == nil {
		return
	}
	t, err := query.TypeOf(p.Body)
	switch {
	case err != nil:
		r.fail(err)
	case t == ast.Unresolved:
		r.postpone(p.Body, "type of the program body")
	case t != p.Type:
		p.Type = t
		r.transformed = true
	}
}

func (r *resolver) BeginLetIn(l *ast.LetIn) { r.push(r.top().enterRegion(&l.Bindings)) }

func (r *resolver) EndLetIn(*ast.LetIn) { r.pop() }

func (r *resolver) BeginBinding(b *ast.Binding) { r.push(r.top().enterBinding(b)) }

// EndBinding infers the return type of a concrete binding from its body.
func (r *resolver) EndBinding(b *ast.Binding) {
	defer r.pop()
	if r.skip() {
		return
	}

	t, err := query.TypeOf(b.Body)
	switch {
	case err != nil:
		r.fail(err)
	case t == ast.Unresolved:
		r.postpone(b, "return type of %s", signature(b.ID, b.ArgTypes()))
	case b.Type == ast.Auto || b.Type == ast.Unresolved:
		b.Type = t
		r.transformed = true
	case b.Type != t:
		r.fail(diag.Errorf(diag.StageResolve, diag.CodeReturnTypeConflict, b.Span().Diag(),
			"%s is declared %s, but its body is %s", b.ID, b.Type, t).
			WithPrimarySpan(b.Body.Span().Diag(), "this is "+t.String()))
	}
}

// EndIdentifier types a reference to a parameter or a zero-arity binding.
func (r *resolver) EndIdentifier(id *ast.Identifier) {
	if r.skip() {
		return
	}
	s := r.top()

	if t, ok := s.symbols[id.Name]; ok {
		r.annotate(&id.Type, t)
		return
	}

	best, tied := selectOverload(s.visible, id.Name, nil)
	switch {
	case len(tied) > 1:
		r.fail(ambiguous(id, id.Name, nil, tied))
	case best == nil:
		r.postpone(id, "no binding named %s is visible", id.Name)
	case !best.Type.IsConcrete():
		r.postpone(id, "type of %s", id.Name)
	default:
		r.annotate(&id.Type, best.Type)
	}
}

// EndCall selects the fittest visible overload for the call's argument
// types, instantiating it when it is generic.
func (r *resolver) EndCall(c *ast.Call) {
	if r.skip() {
		return
	}
	s := r.top()

	types := make([]ast.Type, len(c.Args))
	for i, arg := range c.Args {
		t, err := query.TypeOf(arg)
		if err != nil {
			r.fail(err)
			return
		}
		if !t.IsConcrete() {
			r.postpone(arg, "argument %d of call to %s", i+1, c.ID)
			return
		}
		types[i] = t
	}

	best, tied := selectOverload(s.visible, c.ID, types)
	if len(tied) > 1 {
		r.fail(ambiguous(c, c.ID, types, tied))
		return
	}
	if best == nil {
		if err := noCandidate(c, types, namedCandidates(s.visible, c.ID)); err != nil {
			r.fail(err)
			return
		}
		r.postpone(c, "no binding named %s is visible", c.ID)
		return
	}

	target := best
	if best.IsGeneric() {
		inst, created, err := s.instantiate(best, types, c)
		if err != nil {
			r.fail(err)
			return
		}
		if created {
			r.transformed = true
		}
		target = inst
	}

	if target.Type.IsConcrete() {
		r.annotate(&c.Type, target.Type)
	}
}

func (r *resolver) annotate(field *ast.Type, t ast.Type) {
	if *field != t {
		*field = t
		r.transformed = true
	}
}

// instantiate returns the concrete copy of generic for types, appending a
// new one to the current region unless an identical one already sits there.
func (s *scope) instantiate(generic *ast.Binding, types []ast.Type, c *ast.Call) (*ast.Binding, bool, error) {
	if len(types) != len(generic.Args) {
		return nil, false, diag.Errorf(diag.StageResolve, diag.CodeArityMismatch, c.Span().Diag(),
			"%s expects %d arguments, got %d", generic.ID, len(generic.Args), len(types))
	}

	for _, b := range *s.region {
		if b != generic && b.ID == generic.ID && !b.IsGeneric() && sameTypes(b.ArgTypes(), types) {
			s.visible = withVisible(s.visible, b)
			return b, false, nil
		}
	}

	inst := ast.CopyBinding(generic)
	for i := range inst.Args {
		if inst.Args[i].Type != ast.Auto && inst.Args[i].Type != types[i] {
			return nil, false, diag.Errorf(diag.StageResolve, diag.CodeTypeMismatch, c.Args[i].Span().Diag(),
				"cannot instantiate %s: parameter %s is %s, argument is %s",
				generic.ID, inst.Args[i].Name, inst.Args[i].Type, types[i])
		}
		inst.Args[i].Type = types[i]
	}

	*s.region = append(*s.region, inst)
	s.visible = append(s.visible, inst)
	return inst, true, nil
}

// noCandidate explains why no visible binding named like the call fits.
// It returns nil when no binding of that name is visible at all.
func noCandidate(c *ast.Call, types []ast.Type, named []*ast.Binding) error {
	if len(named) == 0 {
		return nil
	}

	for _, b := range named {
		if len(b.Args) == len(types) {
			d := diag.Errorf(diag.StageResolve, diag.CodeTypeMismatch, c.Span().Diag(),
				"no overload of %s accepts %s", c.ID, signature(c.ID, types))
			for _, cand := range named {
				d = d.WithNote("candidate " + signature(cand.ID, cand.ArgTypes()))
			}
			return d
		}
	}

	d := diag.Errorf(diag.StageResolve, diag.CodeArityMismatch, c.Span().Diag(),
		"%s called with %d arguments", c.ID, len(types))
	for _, b := range named {
		d = d.WithNote(fmt.Sprintf("%s takes %d", signature(b.ID, b.ArgTypes()), len(b.Args)))
	}
	return d
}

func ambiguous(n ast.Node, id string, types []ast.Type, tied []*ast.Binding) error {
	d := diag.Errorf(diag.StageResolve, diag.CodeAmbiguousOverload, n.Span().Diag(),
		"call to %s is ambiguous", signature(id, types))
	for _, b := range tied {
		d = d.WithSecondarySpan(b.Span().Diag(), "candidate "+signature(b.ID, b.ArgTypes()))
	}
	return d
}

func (r *resolver) unresolved() error {
	first := r.pending[0]
	d := diag.Errorf(diag.StageResolve, diag.CodeUnresolvedProgram, first.span,
		"program is not fully resolvable")
	seen := map[string]bool{}
	for _, pd := range r.pending {
		note := fmt.Sprintf("%s: cannot determine %s [%s]", pd.span, pd.what, diag.CodeUnresolvedType)
		if !seen[note] {
			seen[note] = true
			d = d.WithNote(note)
		}
	}
	if strings.Contains(d.Notes[0], "no binding named") {
		d = d.WithHelp("check the spelling or declare the binding in an enclosing let")
	}
	return d
}
