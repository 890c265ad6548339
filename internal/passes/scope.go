// Package passes implements the Et1 middle-end: lambda lifting, type
// resolution, mangling and function globalization.
package passes

import (
	"strings"

	"github.com/excyrender/et1/internal/ast"
)

// scope is the resolution state at one tree position. Scopes are values:
// entering a region or binding copies the parent, so sibling subtrees never
// observe each other's additions.
type scope struct {
	symbols map[string]ast.Type
	visible []*ast.Binding
	region  *[]*ast.Binding
	generic bool
}

func programScope(p *ast.Program) scope {
	return scope{
		symbols: map[string]ast.Type{},
		visible: withVisible(nil, p.Bindings...),
		region:  &p.Bindings,
	}
}

func (s scope) enterRegion(region *[]*ast.Binding) scope {
	s.visible = withVisible(s.visible, (*region)...)
	s.region = region
	return s
}

func (s scope) enterBinding(b *ast.Binding) scope {
	symbols := make(map[string]ast.Type, len(s.symbols)+len(b.Args))
	for name, t := range s.symbols {
		symbols[name] = t
	}
	for _, a := range b.Args {
		symbols[a.Name] = a.Type
	}
	s.symbols = symbols
	s.visible = withVisible(s.visible, b)
	s.generic = s.generic || b.IsGeneric()
	return s
}

// withVisible returns a fresh list holding visible followed by every
// binding of add not already present.
func withVisible(visible []*ast.Binding, add ...*ast.Binding) []*ast.Binding {
	out := make([]*ast.Binding, len(visible), len(visible)+len(add))
	copy(out, visible)
	for _, b := range add {
		if !containsBinding(out, b) {
			out = append(out, b)
		}
	}
	return out
}

func containsBinding(list []*ast.Binding, b *ast.Binding) bool {
	for _, x := range list {
		if x == b {
			return true
		}
	}
	return false
}

// BaseName strips the mangled signature suffix from a binding name.
func BaseName(id string) string {
	if i := strings.IndexByte(id, '$'); i >= 0 {
		return id[:i]
	}
	return id
}

// Fitness scores b as the target of a call to id with the given argument
// types. It is -1 when b is not a candidate at all. Otherwise every Auto
// parameter adds 1 and every exactly matching concrete parameter adds
// 1+len(types), so one concrete match outweighs any number of generic ones.
func Fitness(b *ast.Binding, id string, types []ast.Type) int {
	if BaseName(b.ID) != BaseName(id) || len(b.Args) != len(types) {
		return -1
	}
	score := 0
	for i, a := range b.Args {
		switch a.Type {
		case ast.Auto:
			score++
		case types[i]:
			score += 1 + len(types)
		default:
			return -1
		}
	}
	return score
}

// selectOverload picks the strictly fittest candidate among visible. When
// several candidates share the highest score, all of them are returned in
// tied and best is nil.
func selectOverload(visible []*ast.Binding, id string, types []ast.Type) (best *ast.Binding, tied []*ast.Binding) {
	bestScore := -1
	for _, b := range visible {
		score := Fitness(b, id, types)
		switch {
		case score < 0:
		case score > bestScore:
			bestScore = score
			tied = append(tied[:0], b)
		case score == bestScore:
			tied = append(tied, b)
		}
	}
	if len(tied) == 1 {
		return tied[0], nil
	}
	return nil, tied
}

// namedCandidates returns the visible bindings sharing id's base name.
func namedCandidates(visible []*ast.Binding, id string) []*ast.Binding {
	var out []*ast.Binding
	for _, b := range visible {
		if BaseName(b.ID) == BaseName(id) {
			out = append(out, b)
		}
	}
	return out
}

func sameTypes(a, b []ast.Type) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func signature(id string, types []ast.Type) string {
	parts := make([]string, len(types))
	for i, t := range types {
		parts[i] = t.String()
	}
	return id + "(" + strings.Join(parts, ", ") + ")"
}
