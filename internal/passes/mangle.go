package passes

import (
	"strings"

	"github.com/excyrender/et1/internal/ast"
	"github.com/excyrender/et1/internal/diag"
	"github.com/excyrender/et1/internal/query"
)

// MangledName derives the flat name of b from its base name and parameter
// types: f(int x, float y) becomes f$int_float. Zero-arity bindings keep
// their base name since they cannot be overloaded.
func MangledName(b *ast.Binding) string {
	return mangle(b.ID, b.ArgTypes())
}

func mangle(id string, types []ast.Type) string {
	base := BaseName(id)
	if len(types) == 0 {
		return base
	}

	var sb strings.Builder
	sb.WriteString(base)
	sb.WriteString("$")
	for i, t := range types {
		if i > 0 {
			sb.WriteString("_")
		}
		sb.WriteString(string(t))
	}
	return sb.String()
}

// Mangle renames every binding to its mangled name and points every call
// at the mangled name of the overload it resolves to. Calls are resolved
// again by fitness, so the pass can run on already mangled trees and leaves
// them unchanged.
func Mangle(p *ast.Program) error {
	m := &mangler{}
	p.Accept(m)
	return m.err
}

type mangler struct {
	ast.BaseVisitor

	scopes []scope
	err    error
}

func (m *mangler) top() *scope { return &m.scopes[len(m.scopes)-1] }

func (m *mangler) pop() { m.scopes = m.scopes[:len(m.scopes)-1] }

func (m *mangler) BeginProgram(p *ast.Program) { m.scopes = append(m.scopes, programScope(p)) }

func (m *mangler) EndProgram(*ast.Program) { m.pop() }

func (m *mangler) BeginLetIn(l *ast.LetIn) {
	m.scopes = append(m.scopes, m.top().enterRegion(&l.Bindings))
}

func (m *mangler) EndLetIn(*ast.LetIn) { m.pop() }

func (m *mangler) BeginBinding(b *ast.Binding) {
	m.scopes = append(m.scopes, m.top().enterBinding(b))
}

func (m *mangler) EndBinding(b *ast.Binding) {
	m.pop()
	b.ID = MangledName(b)
}

func (m *mangler) EndCall(c *ast.Call) {
	if m.err != nil || m.top().generic {
		return
	}

	types := make([]ast.Type, len(c.Args))
	for i, arg := range c.Args {
		t, err := query.TypeOf(arg)
		if err != nil {
			m.err = err
			return
		}
		types[i] = t
	}

	best, tied := selectOverload(m.top().visible, c.ID, types)
	switch {
	case len(tied) > 1:
		m.err = ambiguous(c, c.ID, types, tied)
	case best == nil || best.IsGeneric():
		m.err = diag.Errorf(diag.StageMangle, diag.CodeInternalInvariant, c.Span().Diag(),
			"call %s has no concrete target", signature(c.ID, types)).
			WithHelp("run type resolution before mangling")
	default:
		c.ID = MangledName(best)
	}
}
