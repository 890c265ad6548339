package parser

import (
	"fmt"
	"strings"

	"github.com/excyrender/et1/internal/diag"
	"github.com/excyrender/et1/internal/lexer"
)

// ParseError captures a parsing error with location context. Lexer errors
// surface through the same type so callers see one ordered list.
type ParseError struct {
	Message string
	Span    lexer.Span
	Help    string

	lexErr *lexer.LexerError
}

func (e ParseError) Error() string {
	return e.ToDiagnostic().Error()
}

// ToDiagnostic converts the parse error into a shared diagnostic.
func (e ParseError) ToDiagnostic() diag.Diagnostic {
	if e.lexErr != nil {
		return e.lexErr.ToDiagnostic()
	}
	d := diag.Diagnostic{
		Stage:    diag.StageParser,
		Severity: diag.SeverityError,
		Code:     diag.CodeParseError,
		Message:  e.Message,
		Span:     e.Span.Diag(),
	}
	if e.Help != "" {
		d = d.WithHelp(e.Help)
	}
	return d
}

// reportError records a diagnostic at the best-effort span available at the
// failure site.
func (p *Parser) reportError(msg string, span lexer.Span) {
	p.errors = append(p.errors, ParseError{
		Message: msg,
		Span:    p.spanWithFilename(span),
	})
}

// reportErrorWithHelp records a diagnostic with help text.
func (p *Parser) reportErrorWithHelp(msg string, span lexer.Span, help string) {
	p.errors = append(p.errors, ParseError{
		Message: msg,
		Span:    p.spanWithFilename(span),
		Help:    help,
	})
}

func describe(tt lexer.TokenType) string {
	switch tt {
	case lexer.EOF:
		return "end of input"
	case lexer.IDENT:
		return "identifier"
	case lexer.TYPENAME:
		return "type name"
	case lexer.LET, lexer.IN, lexer.IF, lexer.THEN, lexer.ELSE, lexer.TRUE, lexer.FALSE:
		return strings.ToLower(string(tt))
	}
	return string(tt)
}

func describeTok(tok lexer.Token) string {
	if tok.Literal == "" {
		return describe(tok.Type)
	}
	return tok.Literal
}

func pluralErrors(n int) string {
	if n == 1 {
		return "1 more error not shown"
	}
	return fmt.Sprintf("%d more errors not shown", n)
}
