package lsp

import "github.com/excyrender/et1/internal/ast"

var (
	keywords  = []string{"let", "in", "if", "then", "else", "true", "false"}
	typeNames = []ast.Type{ast.Int, ast.Float, ast.Bool, ast.Auto}
)

func (s *Server) handleCompletion(msg *jsonrpcMessage) *jsonrpcMessage {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, offset, bad := s.positionRequest(msg)
	if bad != nil {
		return bad
	}
	if doc == nil {
		return reply(msg, CompletionList{Items: []CompletionItem{}})
	}
	return reply(msg, CompletionList{Items: doc.completions(offset)})
}

// completions offers the parameters and bindings in scope at offset,
// innermost first, then keywords and type names. While the text does not
// parse, the top-level bindings of the last good version stand in.
func (d *Document) completions(offset int) []CompletionItem {
	var items []CompletionItem
	seen := map[string]bool{}
	add := func(item CompletionItem) {
		if !seen[item.Label] {
			seen[item.Label] = true
			items = append(items, item)
		}
	}

	var loc location
	switch {
	case d.Program != nil:
		loc = locate(d, offset)
	case d.previous != nil:
		loc.visible = d.previous.Bindings
	}

	for i := len(loc.owners) - 1; i >= 0; i-- {
		for _, a := range loc.owners[i].Args {
			add(CompletionItem{Label: a.Name, Kind: completionKindVariable, Detail: typed(a.Type, a.Name)})
		}
	}
	for i := len(loc.visible) - 1; i >= 0; i-- {
		b := loc.visible[i]
		if isInstance(loc.visible, i) {
			continue
		}
		kind := completionKindFunction
		if b.Args == nil {
			kind = completionKindVariable
		}
		add(CompletionItem{Label: b.ID, Kind: kind, Detail: signature(b)})
	}
	for _, kw := range keywords {
		add(CompletionItem{Label: kw, Kind: completionKindKeyword})
	}
	for _, t := range typeNames {
		add(CompletionItem{Label: string(t), Kind: completionKindTypeParameter})
	}
	return items
}

// isInstance reports whether visible[i] is a resolved copy of an earlier
// binding.
func isInstance(visible []*ast.Binding, i int) bool {
	for _, b := range visible[:i] {
		if b.ID == visible[i].ID && b.Span() == visible[i].Span() {
			return true
		}
	}
	return false
}
