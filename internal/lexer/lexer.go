package lexer

import (
	"strconv"
	"unicode"

	"github.com/excyrender/et1/internal/diag"
)

type LexerErrorKind int

const (
	ErrUnterminatedBlockComment LexerErrorKind = iota
	ErrIllegalRune
)

type LexerError struct {
	Kind    LexerErrorKind
	Message string
	Span    Span
}

func (k LexerErrorKind) diagnosticCode() diag.Code {
	switch k {
	case ErrUnterminatedBlockComment:
		return diag.CodeLexerUnterminatedBlockComment
	case ErrIllegalRune:
		return diag.CodeLexerIllegalRune
	default:
		return diag.Code("LEXER_UNKNOWN_ERROR")
	}
}

// ToDiagnostic converts a lexer error into a shared diagnostic structure.
func (e LexerError) ToDiagnostic() diag.Diagnostic {
	return diag.Diagnostic{
		Stage:    diag.StageLexer,
		Severity: diag.SeverityError,
		Code:     e.Kind.diagnosticCode(),
		Message:  e.Message,
		Span:     e.Span.Diag(),
	}
}

// Lexer represents the lexer state
type Lexer struct {
	input    []rune
	pos      int  // index of the current rune
	ch       rune // current rune (0 = EOF)
	line     int  // current line number (1-based)
	column   int  // current column number (1-based)
	filename string

	Errors []LexerError
}

func (l *Lexer) addError(kind LexerErrorKind, msg string, span Span) {
	span.Filename = l.filename
	l.Errors = append(l.Errors, LexerError{
		Kind:    kind,
		Message: msg,
		Span:    span,
	})
}

// New creates a new lexer for the given input
func New(input string) *Lexer {
	l := &Lexer{
		input:  []rune(input),
		pos:    -1, // start before first rune
		line:   1,
		column: 0, // will be 1 after first read()
	}
	l.read()
	return l
}

// SetFilename attributes every subsequent span to name.
func (l *Lexer) SetFilename(name string) {
	l.filename = name
}

// read advances the lexer to the next character.
// line/column always reflect the position of the character at pos.
func (l *Lexer) read() {
	l.pos++
	prevPos := l.pos - 1
	inputLen := len(l.input)

	if l.pos >= inputLen {
		if prevPos >= 0 && prevPos < inputLen {
			if l.input[prevPos] == '\n' {
				l.line++
				l.column = 1
			} else {
				l.column++
			}
		} else if prevPos < 0 {
			l.column = 1
		}
		l.ch = 0
		l.pos = inputLen
		return
	}

	l.ch = l.input[l.pos]

	if prevPos >= 0 && l.input[prevPos] == '\n' {
		l.line++
		l.column = 1
	} else {
		l.column++
	}
}

// peek returns the next character without advancing
func (l *Lexer) peek() rune {
	if l.pos+1 >= len(l.input) {
		return 0
	}
	return l.input[l.pos+1]
}

func (l *Lexer) currentSpanStart() (line, column, pos int) {
	return l.line, l.column, l.pos
}

func (l *Lexer) makeToken(tokType TokenType, startLine, startColumn, startPos int, literal string) Token {
	return Token{
		Type:    tokType,
		Literal: literal,
		Span: Span{
			Filename: l.filename,
			Line:     startLine,
			Column:   startColumn,
			Start:    startPos,
			End:      l.pos,
		},
	}
}

func (l *Lexer) skipWhitespace() {
	for l.ch == ' ' || l.ch == '\t' || l.ch == '\n' || l.ch == '\r' {
		l.read()
	}
}

func (l *Lexer) skipLineComment() {
	for l.ch != '\n' && l.ch != '\r' && l.ch != 0 {
		l.read()
	}
}

// skipBlockComment skips a possibly nested block comment whose opening "/*"
// has already been consumed.
func (l *Lexer) skipBlockComment(startLine, startColumn, startPos int) {
	depth := 1
	for depth > 0 {
		if l.ch == 0 {
			l.addError(
				ErrUnterminatedBlockComment,
				"unterminated block comment",
				Span{Line: startLine, Column: startColumn, Start: startPos, End: l.pos},
			)
			return
		}
		if l.ch == '/' && l.peek() == '*' {
			l.read()
			l.read()
			depth++
		} else if l.ch == '*' && l.peek() == '/' {
			l.read()
			l.read()
			depth--
		} else {
			l.read()
		}
	}
}

func (l *Lexer) readIdentifier() string {
	start := l.pos
	for isLetter(l.ch) || isDigit(l.ch) {
		l.read()
	}
	return string(l.input[start:l.pos])
}

// readNumber reads a decimal integer or real literal (with optional exponent).
func (l *Lexer) readNumber() (string, TokenType) {
	start := l.pos
	tokType := INT

	for isDigit(l.ch) {
		l.read()
	}

	if l.ch == '.' && isDigit(l.peek()) {
		tokType = FLOAT
		l.read()
		for isDigit(l.ch) {
			l.read()
		}
	}

	if l.ch == 'e' || l.ch == 'E' {
		next := l.peek()
		if isDigit(next) || next == '+' || next == '-' {
			tokType = FLOAT
			l.read()
			if l.ch == '+' || l.ch == '-' {
				l.read()
			}
			for isDigit(l.ch) {
				l.read()
			}
		}
	}

	return string(l.input[start:l.pos]), tokType
}

// twoRune emits either the two-rune operator (when the next rune is second)
// or the single-rune fallback. An empty fallback marks the single rune illegal.
func (l *Lexer) twoRune(second rune, double, single TokenType) Token {
	startLine, startColumn, startPos := l.currentSpanStart()
	first := l.ch
	if l.peek() == second {
		l.read()
		l.read()
		return l.makeToken(double, startLine, startColumn, startPos, string(first)+string(second))
	}
	l.read()
	if single == "" {
		tok := l.makeToken(ILLEGAL, startLine, startColumn, startPos, string(first))
		l.addError(ErrIllegalRune, "illegal character "+strconv.Quote(string(first)), tok.Span)
		return tok
	}
	return l.makeToken(single, startLine, startColumn, startPos, string(first))
}

// NextToken returns the next token from the input
func (l *Lexer) NextToken() Token {
	for {
		l.skipWhitespace()

		switch l.ch {
		case 0:
			startLine, startColumn, startPos := l.currentSpanStart()
			return l.makeToken(EOF, startLine, startColumn, startPos, "")

		case '=':
			return l.twoRune('=', EQ, ASSIGN)
		case '!':
			return l.twoRune('=', NOT_EQ, BANG)
		case '<':
			return l.twoRune('=', LE, LT)
		case '>':
			return l.twoRune('=', GE, GT)
		case '&':
			return l.twoRune('&', AND, "")
		case '|':
			return l.twoRune('|', OR, "")

		case '/':
			startLine, startColumn, startPos := l.currentSpanStart()
			switch l.peek() {
			case '/':
				l.read()
				l.read()
				l.skipLineComment()
				continue
			case '*':
				l.read()
				l.read()
				l.skipBlockComment(startLine, startColumn, startPos)
				continue
			}
			l.read()
			return l.makeToken(SLASH, startLine, startColumn, startPos, "/")
		}

		if tt, ok := singleRune[l.ch]; ok {
			startLine, startColumn, startPos := l.currentSpanStart()
			raw := string(l.ch)
			l.read()
			return l.makeToken(tt, startLine, startColumn, startPos, raw)
		}

		startLine, startColumn, startPos := l.currentSpanStart()
		switch {
		case isLetter(l.ch):
			literal := l.readIdentifier()
			return l.makeToken(LookupIdent(literal), startLine, startColumn, startPos, literal)
		case isDigit(l.ch):
			literal, tokType := l.readNumber()
			return l.makeToken(tokType, startLine, startColumn, startPos, literal)
		default:
			raw := string(l.ch)
			l.read()
			tok := l.makeToken(ILLEGAL, startLine, startColumn, startPos, raw)
			l.addError(ErrIllegalRune, "illegal character "+strconv.Quote(raw), tok.Span)
			return tok
		}
	}
}

var singleRune = map[rune]TokenType{
	'+': PLUS,
	'-': MINUS,
	'*': ASTERISK,
	',': COMMA,
	'(': LPAREN,
	')': RPAREN,
}

func isLetter(ch rune) bool {
	return unicode.IsLetter(ch) || ch == '_'
}

func isDigit(ch rune) bool {
	// Numeric literals are restricted to ASCII digits.
	return ch >= '0' && ch <= '9'
}
