package parser

import (
	"github.com/excyrender/et1/internal/ast"
	"github.com/excyrender/et1/internal/lexer"
)

// parseLetExpr parses `let binding (, binding)* in body`.
func (p *Parser) parseLetExpr() ast.Expr {
	start := p.curTok.Span

	var bindings []*ast.Binding
	for {
		p.nextToken()
		b := p.parseBinding()
		if b == nil {
			return nil
		}
		bindings = append(bindings, b)

		if p.peekTok.Type != lexer.COMMA {
			break
		}
		p.nextToken()
	}

	if !p.expect(lexer.IN) {
		return nil
	}
	p.nextToken()

	body := p.parseExpr()
	if body == nil {
		return nil
	}

	span := p.spanWithFilename(mergeSpan(start, body.Span()))
	return ast.NewLetIn(bindings, body, span)
}

// parseBinding parses `[type] id [( [type] name, ... )] = expr`. Omitted
// types are Auto.
func (p *Parser) parseBinding() *ast.Binding {
	start := p.curTok.Span

	typ := ast.Auto
	if p.curTok.Type == lexer.TYPENAME {
		typ = ast.Type(p.curTok.Literal)
		p.nextToken()
	}

	if p.curTok.Type != lexer.IDENT {
		p.reportError("expected binding name, found '"+describeTok(p.curTok)+"'", p.curTok.Span)
		return nil
	}
	name := p.curTok.Literal

	var args []ast.Argument
	if p.peekTok.Type == lexer.LPAREN {
		p.nextToken()
		var ok bool
		args, ok = p.parseArguments()
		if !ok {
			return nil
		}
	}

	if !p.expect(lexer.ASSIGN) {
		return nil
	}
	p.nextToken()

	body := p.parseExpr()
	if body == nil {
		return nil
	}

	span := p.spanWithFilename(mergeSpan(start, body.Span()))
	return ast.NewBinding(name, typ, args, body, span)
}

// parseArguments parses a formal parameter list; curTok is '('.
func (p *Parser) parseArguments() ([]ast.Argument, bool) {
	args := []ast.Argument{}
	if p.peekTok.Type == lexer.RPAREN {
		p.nextToken()
		return args, true
	}

	seen := make(map[string]bool)
	for {
		p.nextToken()

		arg := ast.Argument{Type: ast.Auto}
		if p.curTok.Type == lexer.TYPENAME {
			arg.Type = ast.Type(p.curTok.Literal)
			p.nextToken()
		}
		if p.curTok.Type != lexer.IDENT {
			p.reportError("expected parameter name, found '"+describeTok(p.curTok)+"'", p.curTok.Span)
			return nil, false
		}
		arg.Name = p.curTok.Literal
		if seen[arg.Name] {
			p.reportError("duplicate parameter '"+arg.Name+"'", p.curTok.Span)
			return nil, false
		}
		seen[arg.Name] = true
		args = append(args, arg)

		if p.peekTok.Type != lexer.COMMA {
			break
		}
		p.nextToken()
	}

	if !p.expect(lexer.RPAREN) {
		return nil, false
	}
	return args, true
}
