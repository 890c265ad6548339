package lsp

import "github.com/excyrender/et1/internal/ast"

func (s *Server) handleDefinition(msg *jsonrpcMessage) *jsonrpcMessage {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, offset, bad := s.positionRequest(msg)
	if bad != nil {
		return bad
	}
	if doc == nil || doc.Program == nil {
		return reply(msg, nil)
	}
	if l := doc.definition(offset); l != nil {
		return reply(msg, l)
	}
	return reply(msg, nil)
}

// definition finds the declaration of what is under the cursor. A
// parameter leads to the binding declaring it. Every definition is in the
// same document since Et1 has no imports.
func (d *Document) definition(offset int) *Location {
	loc := locate(d, offset)

	var b *ast.Binding
	switch n := loc.node.(type) {
	case *ast.Binding:
		b = n
	case *ast.Identifier:
		if owner, _ := loc.paramOwner(n.Name); owner != nil {
			b = owner
		} else {
			b = loc.value(n.Name)
		}
	case *ast.Call:
		b = loc.target(n)
	}
	if b == nil {
		return nil
	}

	start, end := d.nameRange(b)
	return &Location{URI: d.URI, Range: d.rangeOf(start, end)}
}
