package lexer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/excyrender/et1/internal/diag"
)

func collect(t *testing.T, src string) ([]Token, *Lexer) {
	t.Helper()

	l := New(src)
	var toks []Token
	for {
		tok := l.NextToken()
		toks = append(toks, tok)
		if tok.Type == EOF {
			break
		}
		require.Less(t, len(toks), 1000, "lexer did not terminate")
	}
	return toks, l
}

func TestNextToken(t *testing.T) {
	src := `let int f(auto x) = x * 2.5e1, y = !true in if f(1) <= 3 then y else false || 1 != 2 && 1 >= -0`

	want := []struct {
		typ     TokenType
		literal string
	}{
		{LET, "let"}, {TYPENAME, "int"}, {IDENT, "f"}, {LPAREN, "("}, {TYPENAME, "auto"},
		{IDENT, "x"}, {RPAREN, ")"}, {ASSIGN, "="}, {IDENT, "x"}, {ASTERISK, "*"},
		{FLOAT, "2.5e1"}, {COMMA, ","}, {IDENT, "y"}, {ASSIGN, "="}, {BANG, "!"},
		{TRUE, "true"}, {IN, "in"}, {IF, "if"}, {IDENT, "f"}, {LPAREN, "("}, {INT, "1"},
		{RPAREN, ")"}, {LE, "<="}, {INT, "3"}, {THEN, "then"}, {IDENT, "y"}, {ELSE, "else"},
		{FALSE, "false"}, {OR, "||"}, {INT, "1"}, {NOT_EQ, "!="}, {INT, "2"}, {AND, "&&"},
		{INT, "1"}, {GE, ">="}, {MINUS, "-"}, {INT, "0"}, {EOF, ""},
	}

	toks, l := collect(t, src)
	require.Empty(t, l.Errors)
	require.Len(t, toks, len(want))
	for i, w := range want {
		assert.Equal(t, w.typ, toks[i].Type, "token %d", i)
		assert.Equal(t, w.literal, toks[i].Literal, "token %d", i)
	}
}

func TestNumbers(t *testing.T) {
	tests := []struct {
		src  string
		typ  TokenType
		text string
	}{
		{"42", INT, "42"},
		{"2.0", FLOAT, "2.0"},
		{"1e9", FLOAT, "1e9"},
		{"3.25E-2", FLOAT, "3.25E-2"},
	}
	for _, tt := range tests {
		toks, l := collect(t, tt.src)
		require.Empty(t, l.Errors, tt.src)
		assert.Equal(t, tt.typ, toks[0].Type, tt.src)
		assert.Equal(t, tt.text, toks[0].Literal, tt.src)
	}

	// A trailing dot is not part of the literal.
	toks, _ := collect(t, "1.")
	assert.Equal(t, INT, toks[0].Type)
}

func TestCommentsAndSpans(t *testing.T) {
	src := "// heading\nlet /* nested /* block */ comment */ y = 1\nin y"

	toks, l := collect(t, src)
	require.Empty(t, l.Errors)
	require.Equal(t, LET, toks[0].Type)
	assert.Equal(t, Span{Line: 2, Column: 1, Start: 11, End: 14}, toks[0].Span)

	last := toks[len(toks)-2]
	assert.Equal(t, IDENT, last.Type)
	assert.Equal(t, 3, last.Span.Line)
	assert.Equal(t, 4, last.Span.Column)
}

func TestErrors(t *testing.T) {
	toks, l := collect(t, "1 & 2 # /* open")
	require.Len(t, l.Errors, 3)

	assert.Equal(t, ILLEGAL, toks[1].Type)
	assert.Equal(t, ErrIllegalRune, l.Errors[0].Kind)
	assert.Equal(t, ErrIllegalRune, l.Errors[1].Kind)
	assert.Equal(t, ErrUnterminatedBlockComment, l.Errors[2].Kind)

	d := l.Errors[2].ToDiagnostic()
	assert.Equal(t, diag.StageLexer, d.Stage)
	assert.Equal(t, diag.CodeLexerUnterminatedBlockComment, d.Code)
	assert.Equal(t, 1, d.Span.Line)
	assert.Equal(t, 9, d.Span.Column)
}

func TestFilenameOnSpans(t *testing.T) {
	l := New("x")
	l.SetFilename("terrain.et1")
	tok := l.NextToken()
	assert.Equal(t, "terrain.et1", tok.Span.Filename)
	assert.Equal(t, "terrain.et1:1:1", tok.Span.Diag().String())
}
