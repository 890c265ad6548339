package parser

import (
	"strconv"

	"github.com/excyrender/et1/internal/ast"
	"github.com/excyrender/et1/internal/lexer"
)

func (p *Parser) parseExpr() ast.Expr {
	return p.parseExprPrecedence(precedenceLowest)
}

func (p *Parser) parseExprPrecedence(precedence int) ast.Expr {
	prefix := p.prefixFns[p.curTok.Type]
	if prefix == nil {
		p.reportErrorWithHelp("unexpected '"+describeTok(p.curTok)+"' in expression", p.curTok.Span,
			"an expression starts with a literal, an identifier, '-', '!', '(', 'if' or 'let'")
		return nil
	}

	left := prefix()
	if left == nil {
		return nil
	}

	for precedence < p.peekPrecedence() {
		infix := p.infixFns[p.peekTok.Type]
		if infix == nil {
			break
		}

		p.nextToken()

		left = infix(left)
		if left == nil {
			return nil
		}
	}

	return left
}

func (p *Parser) parseIdentifier() ast.Expr {
	return ast.NewIdentifier(p.curTok.Literal, p.spanWithFilename(p.curTok.Span))
}

func (p *Parser) parseIntegerLiteral() ast.Expr {
	value, err := strconv.ParseInt(p.curTok.Literal, 10, 64)
	if err != nil {
		p.reportError("integer literal "+p.curTok.Literal+" out of range", p.curTok.Span)
		return nil
	}
	return ast.NewIntegerLiteral(value, p.spanWithFilename(p.curTok.Span))
}

func (p *Parser) parseRealLiteral() ast.Expr {
	value, err := strconv.ParseFloat(p.curTok.Literal, 64)
	if err != nil {
		p.reportError("real literal "+p.curTok.Literal+" out of range", p.curTok.Span)
		return nil
	}
	return ast.NewRealLiteral(value, p.spanWithFilename(p.curTok.Span))
}

func (p *Parser) parseBoolLiteral() ast.Expr {
	return ast.NewBoolLiteral(p.curTok.Type == lexer.TRUE, p.spanWithFilename(p.curTok.Span))
}

func (p *Parser) parsePrefixExpr() ast.Expr {
	operatorTok := p.curTok

	p.nextToken()

	operand := p.parseExprPrecedence(precedencePrefix)
	if operand == nil {
		return nil
	}

	op := ast.Negation
	if operatorTok.Type == lexer.BANG {
		op = ast.LogicalNot
	}
	span := p.spanWithFilename(mergeSpan(operatorTok.Span, operand.Span()))
	return ast.NewUnary(op, operand, span)
}

func (p *Parser) parseGroupedExpr() ast.Expr {
	start := p.curTok.Span

	p.nextToken()

	inner := p.parseExpr()
	if inner == nil {
		return nil
	}
	if !p.expect(lexer.RPAREN) {
		return nil
	}

	span := p.spanWithFilename(mergeSpan(start, p.curTok.Span))
	return ast.NewParen(inner, span)
}

func (p *Parser) parseInfixExpr(left ast.Expr) ast.Expr {
	operatorTok := p.curTok
	precedence := p.curPrecedence()

	p.nextToken()

	right := p.parseExprPrecedence(precedence)
	if right == nil {
		return nil
	}

	span := mergeSpan(left.Span(), operatorTok.Span)
	span = mergeSpan(span, right.Span())
	span = p.spanWithFilename(span)

	return ast.NewBinary(binaryOps[operatorTok.Type], left, right, span)
}

// parseCallExpr parses the argument list of a call. Only bindings are
// callable, so the callee must be a plain identifier.
func (p *Parser) parseCallExpr(callee ast.Expr) ast.Expr {
	id, ok := callee.(*ast.Identifier)
	if !ok {
		p.reportErrorWithHelp("only named bindings can be called", p.curTok.Span,
			"Et1 has no first-class functions; call a binding by its name")
		return nil
	}

	var args []ast.Expr
	if p.peekTok.Type == lexer.RPAREN {
		p.nextToken()
	} else {
		for {
			p.nextToken()
			arg := p.parseExpr()
			if arg == nil {
				return nil
			}
			args = append(args, arg)

			if p.peekTok.Type != lexer.COMMA {
				break
			}
			p.nextToken()
		}
		if !p.expect(lexer.RPAREN) {
			return nil
		}
	}

	span := p.spanWithFilename(mergeSpan(id.Span(), p.curTok.Span))
	return ast.NewCall(id.Name, args, span)
}

func (p *Parser) parseIfExpr() ast.Expr {
	start := p.curTok.Span

	p.nextToken()
	cond := p.parseExpr()
	if cond == nil {
		return nil
	}

	if !p.expect(lexer.THEN) {
		return nil
	}
	p.nextToken()
	then := p.parseExpr()
	if then == nil {
		return nil
	}

	if !p.expect(lexer.ELSE) {
		return nil
	}
	p.nextToken()
	els := p.parseExpr()
	if els == nil {
		return nil
	}

	span := p.spanWithFilename(mergeSpan(start, els.Span()))
	return ast.NewIfThenElse(cond, then, els, span)
}
