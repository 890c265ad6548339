package lsp

import (
	"strings"

	"github.com/excyrender/et1/internal/ast"
)

func (s *Server) handleHover(msg *jsonrpcMessage) *jsonrpcMessage {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, offset, bad := s.positionRequest(msg)
	if bad != nil {
		return bad
	}
	if doc == nil || doc.Program == nil {
		return reply(msg, nil)
	}
	if h := doc.hover(offset); h != nil {
		return reply(msg, h)
	}
	return reply(msg, nil)
}

func (d *Document) hover(offset int) *Hover {
	loc := locate(d, offset)

	var text string
	var start, end int
	switch n := loc.node.(type) {
	case *ast.Binding:
		text = describeBinding(n, loc)
		start, end = d.nameRange(n)

	case *ast.Identifier:
		start, end = n.Span().Start, n.Span().End
		if _, arg := loc.paramOwner(n.Name); arg.Name != "" {
			typ := arg.Type
			if n.Type.IsConcrete() {
				typ = n.Type
			}
			text = code("(parameter) " + typed(typ, n.Name))
		} else if b := loc.value(n.Name); b != nil {
			text = describeBinding(b, loc)
		} else {
			text = code(typed(n.Type, n.Name))
		}

	case *ast.Call:
		start = n.Span().Start
		end = start + len([]rune(n.ID))
		b := loc.target(n)
		if b == nil {
			return nil
		}
		text = code(signature(b))

	default:
		return nil
	}

	r := d.rangeOf(start, end)
	return &Hover{
		Contents: MarkupContent{Kind: "markdown", Value: text},
		Range:    &r,
	}
}

func describeBinding(b *ast.Binding, loc location) string {
	var sb strings.Builder
	sb.WriteString(code(signature(b)))

	if b.IsGeneric() {
		if inst := loc.instances(b); len(inst) > 0 {
			sb.WriteString("\n\nInstances:")
			for _, i := range inst {
				sb.WriteString("\n- `")
				sb.WriteString(signature(i))
				sb.WriteString("`")
			}
		}
	}
	return sb.String()
}

func code(s string) string { return "```et1\n" + s + "\n```" }

// signature renders a binding head the way it is written in source, with
// resolved types filled in.
func signature(b *ast.Binding) string {
	var sb strings.Builder
	sb.WriteString(typed(b.Type, b.ID))
	if b.Args != nil {
		sb.WriteString("(")
		for i, a := range b.Args {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(typed(a.Type, a.Name))
		}
		sb.WriteString(")")
	}
	return sb.String()
}

func typed(t ast.Type, name string) string {
	if !t.IsConcrete() {
		return name
	}
	return string(t) + " " + name
}
