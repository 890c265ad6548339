package parser

import (
	"github.com/excyrender/et1/internal/ast"
	"github.com/excyrender/et1/internal/lexer"
)

type (
	prefixParseFn func() ast.Expr
	infixParseFn  func(ast.Expr) ast.Expr
)

type Option func(*options)

type options struct {
	filename string
}

// WithFilename configures the parser to attribute all emitted spans to the provided filename.
func WithFilename(name string) Option {
	return func(o *options) {
		o.filename = name
	}
}

const (
	precedenceLowest = iota
	precedenceOr
	precedenceAnd
	precedenceEquality
	precedenceComparison
	precedenceSum
	precedenceProduct
	precedencePrefix
	precedencePostfix
)

var precedences = map[lexer.TokenType]int{
	lexer.OR:       precedenceOr,
	lexer.AND:      precedenceAnd,
	lexer.EQ:       precedenceEquality,
	lexer.NOT_EQ:   precedenceEquality,
	lexer.LT:       precedenceComparison,
	lexer.LE:       precedenceComparison,
	lexer.GT:       precedenceComparison,
	lexer.GE:       precedenceComparison,
	lexer.PLUS:     precedenceSum,
	lexer.MINUS:    precedenceSum,
	lexer.ASTERISK: precedenceProduct,
	lexer.SLASH:    precedenceProduct,
	lexer.LPAREN:   precedencePostfix,
}

var binaryOps = map[lexer.TokenType]ast.BinaryOp{
	lexer.PLUS:     ast.Addition,
	lexer.MINUS:    ast.Subtraction,
	lexer.ASTERISK: ast.Multiplication,
	lexer.SLASH:    ast.Division,
	lexer.LT:       ast.LessThan,
	lexer.LE:       ast.LessEqual,
	lexer.GT:       ast.GreaterThan,
	lexer.GE:       ast.GreaterEqual,
	lexer.EQ:       ast.Equal,
	lexer.NOT_EQ:   ast.NotEqual,
	lexer.AND:      ast.LogicalAnd,
	lexer.OR:       ast.LogicalOr,
}

// Parser implements a Pratt-style recursive descent parser for Et1.
//   - Lookahead: curTok is the token under examination, peekTok the next one.
//     Both only move through nextToken.
//   - Diagnostics: errors is append-only; callers consult Errors() after
//     ParseProgram.
//   - Spans: node spans are composed via mergeSpan and are never changed
//     after the node is constructed.
type Parser struct {
	lx      *lexer.Lexer
	curTok  lexer.Token
	peekTok lexer.Token

	errors []ParseError

	filename string

	prefixFns map[lexer.TokenType]prefixParseFn
	infixFns  map[lexer.TokenType]infixParseFn
}

// New returns a parser initialised with the provided source input.
func New(input string, opts ...Option) *Parser {
	cfg := options{}
	for _, opt := range opts {
		opt(&cfg)
	}

	p := &Parser{
		lx:        lexer.New(input),
		prefixFns: make(map[lexer.TokenType]prefixParseFn),
		infixFns:  make(map[lexer.TokenType]infixParseFn),
		filename:  cfg.filename,
	}

	if cfg.filename != "" {
		p.lx.SetFilename(cfg.filename)
	}

	p.registerPrefix(lexer.IDENT, p.parseIdentifier)
	p.registerPrefix(lexer.INT, p.parseIntegerLiteral)
	p.registerPrefix(lexer.FLOAT, p.parseRealLiteral)
	p.registerPrefix(lexer.TRUE, p.parseBoolLiteral)
	p.registerPrefix(lexer.FALSE, p.parseBoolLiteral)
	p.registerPrefix(lexer.MINUS, p.parsePrefixExpr)
	p.registerPrefix(lexer.BANG, p.parsePrefixExpr)
	p.registerPrefix(lexer.LPAREN, p.parseGroupedExpr)
	p.registerPrefix(lexer.IF, p.parseIfExpr)
	p.registerPrefix(lexer.LET, p.parseLetExpr)

	for tt := range binaryOps {
		p.registerInfix(tt, p.parseInfixExpr)
	}
	p.registerInfix(lexer.LPAREN, p.parseCallExpr)

	// Seed curTok/peekTok.
	p.nextToken()
	p.nextToken()

	return p
}

// Errors returns all lexer and parse errors that were encountered, lexer
// errors first.
func (p *Parser) Errors() []ParseError {
	var all []ParseError
	for _, le := range p.lx.Errors {
		all = append(all, ParseError{lexErr: &le, Message: le.Message, Span: le.Span})
	}
	return append(all, p.errors...)
}

// ParseProgram parses a complete Et1 program. A top-level let-in becomes the
// program's own declarative region; any other expression becomes a program
// without bindings. It returns nil when errors were reported.
func (p *Parser) ParseProgram() *ast.Program {
	start := p.curTok.Span

	expr := p.parseExpr()
	if expr == nil {
		return nil
	}

	if p.peekTok.Type != lexer.EOF {
		p.reportError("unexpected '"+p.peekTok.Literal+"' after end of program", p.peekTok.Span)
		return nil
	}
	if len(p.lx.Errors) > 0 || len(p.errors) > 0 {
		return nil
	}

	span := p.spanWithFilename(mergeSpan(start, expr.Span()))
	if letin, ok := expr.(*ast.LetIn); ok {
		return ast.NewProgram(letin.Bindings, letin.Body, span)
	}
	return ast.NewProgram(nil, expr, span)
}

// Parse parses src into a program, returning the first error as a
// diagnostic.
func Parse(src string, opts ...Option) (*ast.Program, error) {
	p := New(src, opts...)
	prog := p.ParseProgram()
	if errs := p.Errors(); len(errs) > 0 {
		d := errs[0].ToDiagnostic()
		if len(errs) > 1 {
			d = d.WithNote(pluralErrors(len(errs) - 1))
		}
		return nil, d
	}
	return prog, nil
}

// nextToken advances the parser's token window.
// Contract: after calling nextToken, curTok == old(peekTok).
func (p *Parser) nextToken() {
	p.curTok = p.peekTok
	p.peekTok = p.lx.NextToken()
}

// expect asserts that the peek token matches the provided type.
// On success it promotes peekTok into curTok.
func (p *Parser) expect(tt lexer.TokenType) bool {
	if p.peekTok.Type == tt {
		p.nextToken()
		return true
	}

	p.reportError("expected '"+describe(tt)+"', found '"+describeTok(p.peekTok)+"'", p.peekTok.Span)
	return false
}

func (p *Parser) spanWithFilename(span lexer.Span) lexer.Span {
	if span.Filename == "" && p.filename != "" {
		span.Filename = p.filename
	}
	return span
}

func (p *Parser) registerPrefix(tokenType lexer.TokenType, fn prefixParseFn) {
	p.prefixFns[tokenType] = fn
}

func (p *Parser) registerInfix(tokenType lexer.TokenType, fn infixParseFn) {
	p.infixFns[tokenType] = fn
}

func (p *Parser) peekPrecedence() int {
	if prec, ok := precedences[p.peekTok.Type]; ok {
		return prec
	}
	return precedenceLowest
}

func (p *Parser) curPrecedence() int {
	if prec, ok := precedences[p.curTok.Type]; ok {
		return prec
	}
	return precedenceLowest
}

func mergeSpan(start, end lexer.Span) lexer.Span {
	span := start

	if span.Filename == "" {
		span.Filename = end.Filename
	}

	if end.End > span.End {
		span.End = end.End
	}

	return span
}
