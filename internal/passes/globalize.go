package passes

import (
	"sort"

	"github.com/excyrender/et1/internal/ast"
	"github.com/excyrender/et1/internal/diag"
)

// GlobalizeFunctions moves the bindings of every remaining let-in into the
// program region, replacing each let-in by its body, and orders the region
// so that a binding comes after everything it references. Mutually
// recursive bindings keep their relative order. The pass is idempotent.
//
// Absorbed bindings keep their names, so two regions declaring the same
// non-generic name collide in the program region. Run LiftLambdas first
// when that can happen; the pipeline always does.
func GlobalizeFunctions(p *ast.Program) error {
	var absorbed []*ast.Binding
	ast.Walk(p, func(n ast.Node) bool {
		if l, ok := n.(*ast.LetIn); ok {
			absorbed = append(absorbed, l.Bindings...)
		}
		return true
	})
	if len(absorbed) > 0 {
		ast.RewriteProgram(p, func(e ast.Expr) ast.Expr {
			if l, ok := e.(*ast.LetIn); ok {
				return l.Body
			}
			return e
		})
		p.Bindings = append(p.Bindings, absorbed...)
	}

	byName := map[string][]int{}
	for i, b := range p.Bindings {
		if others := byName[b.ID]; len(others) > 0 && !b.IsGeneric() {
			for _, j := range others {
				if !p.Bindings[j].IsGeneric() {
					return diag.Errorf(diag.StageGlobalize, diag.CodeInternalInvariant, b.Span().Diag(),
						"binding %s is declared twice in the global region", b.ID).
						WithSecondarySpan(p.Bindings[j].Span().Diag(), "first declared here").
						WithHelp("lift lambdas before globalizing so region bindings get distinct names")
				}
			}
		}
		byName[b.ID] = append(byName[b.ID], i)
	}

	deps := make([][]int, len(p.Bindings))
	for i, b := range p.Bindings {
		seen := map[int]bool{}
		ast.Walk(b.Body, func(n ast.Node) bool {
			var name string
			switch e := n.(type) {
			case *ast.Call:
				name = e.ID
			case *ast.Identifier:
				name = e.Name
			default:
				return true
			}
			for _, j := range byName[name] {
				if !seen[j] {
					seen[j] = true
					deps[i] = append(deps[i], j)
				}
			}
			return true
		})
	}

	order := dependencyOrder(deps)
	sorted := make([]*ast.Binding, len(order))
	for k, i := range order {
		sorted[k] = p.Bindings[i]
	}
	p.Bindings = sorted
	return nil
}

// dependencyOrder returns the node indices of the graph so that every node
// follows its dependencies. Strongly connected components stay together in
// index order, and among components ready at the same time the one with the
// smallest index goes first, which makes the order a function of the graph
// alone.
func dependencyOrder(deps [][]int) []int {
	comps := stronglyConnected(deps)

	compOf := make([]int, len(deps))
	for c, members := range comps {
		for _, i := range members {
			compOf[i] = c
		}
	}

	pending := make([]int, len(comps))
	dependents := make([][]int, len(comps))
	for i, ds := range deps {
		for _, j := range ds {
			ci, cj := compOf[i], compOf[j]
			if ci != cj {
				pending[ci]++
				dependents[cj] = append(dependents[cj], ci)
			}
		}
	}

	done := make([]bool, len(comps))
	order := make([]int, 0, len(deps))
	for range comps {
		next := -1
		for c := range comps {
			if !done[c] && pending[c] == 0 && (next < 0 || comps[c][0] < comps[next][0]) {
				next = c
			}
		}
		done[next] = true
		order = append(order, comps[next]...)
		for _, d := range dependents[next] {
			pending[d]--
		}
	}
	return order
}

// stronglyConnected computes the strongly connected components of the graph
// with Tarjan's algorithm. Members of each component are sorted ascending.
func stronglyConnected(deps [][]int) [][]int {
	var (
		index   = make([]int, len(deps))
		low     = make([]int, len(deps))
		onStack = make([]bool, len(deps))
		stack   []int
		comps   [][]int
		counter = 1
	)

	var visit func(v int)
	visit = func(v int) {
		index[v] = counter
		low[v] = counter
		counter++
		stack = append(stack, v)
		onStack[v] = true

		for _, w := range deps[v] {
			switch {
			case index[w] == 0:
				visit(w)
				low[v] = min(low[v], low[w])
			case onStack[w]:
				low[v] = min(low[v], index[w])
			}
		}

		if low[v] == index[v] {
			var comp []int
			for {
				w := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				onStack[w] = false
				comp = append(comp, w)
				if w == v {
					break
				}
			}
			sort.Ints(comp)
			comps = append(comps, comp)
		}
	}

	for v := range deps {
		if index[v] == 0 {
			visit(v)
		}
	}
	return comps
}
