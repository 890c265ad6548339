package diag_test

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/excyrender/et1/internal/diag"
	"github.com/excyrender/et1/internal/lexer"
)

func TestFromLexerError(t *testing.T) {
	err := lexer.LexerError{
		Kind:    lexer.ErrUnterminatedBlockComment,
		Message: "unterminated block comment",
		Span: lexer.Span{
			Line:   1,
			Column: 3,
			Start:  2,
			End:    6,
		},
	}

	diagnostic := err.ToDiagnostic()

	if diagnostic.Stage != diag.StageLexer {
		t.Fatalf("expected stage %q, got %q", diag.StageLexer, diagnostic.Stage)
	}
	if diagnostic.Code != diag.CodeLexerUnterminatedBlockComment {
		t.Fatalf("expected code %q, got %q", diag.CodeLexerUnterminatedBlockComment, diagnostic.Code)
	}
	if diagnostic.Message != err.Message {
		t.Fatalf("expected message %q, got %q", err.Message, diagnostic.Message)
	}
	if diagnostic.Severity != diag.SeverityError {
		t.Fatalf("expected severity %q, got %q", diag.SeverityError, diagnostic.Severity)
	}

	wantSpan := diag.Span{
		Line:   err.Span.Line,
		Column: err.Span.Column,
		Start:  err.Span.Start,
		End:    err.Span.End,
	}
	if diagnostic.Span != wantSpan {
		t.Fatalf("expected span %+v, got %+v", wantSpan, diagnostic.Span)
	}
}

func TestDiagnosticAsError(t *testing.T) {
	d := diag.Errorf(diag.StageResolve, diag.CodeAmbiguousOverload, diag.Span{Filename: "a.et1", Line: 2, Column: 5},
		"ambiguous call to %q", "f")

	wrapped := fmt.Errorf("compiling: %w", d)

	got, ok := diag.As(wrapped)
	if !ok {
		t.Fatalf("expected diagnostic to be extractable from %v", wrapped)
	}
	if got.Code != diag.CodeAmbiguousOverload {
		t.Fatalf("expected code %q, got %q", diag.CodeAmbiguousOverload, got.Code)
	}
	if code := diag.CodeOf(wrapped); code != diag.CodeAmbiguousOverload {
		t.Fatalf("CodeOf: expected %q, got %q", diag.CodeAmbiguousOverload, code)
	}
	if code := diag.CodeOf(fmt.Errorf("plain")); code != "" {
		t.Fatalf("CodeOf on foreign error: expected empty code, got %q", code)
	}

	want := `a.et1:2:5: resolve-types: ambiguous call to "f" [AMBIGUOUS_OVERLOAD]`
	if d.Error() != want {
		t.Fatalf("expected %q, got %q", want, d.Error())
	}
}

func TestBuildersDoNotAlias(t *testing.T) {
	base := diag.Errorf(diag.StageResolve, diag.CodeUnresolvedProgram, diag.Span{}, "unresolved")
	a := base.WithNote("first")
	b := base.WithNote("second").WithHelp("annotate a type")

	if len(base.Notes) != 0 {
		t.Fatalf("base diagnostic was mutated: %v", base.Notes)
	}
	if len(a.Notes) != 1 || a.Notes[0] != "first" {
		t.Fatalf("unexpected notes on a: %v", a.Notes)
	}
	if len(b.Notes) != 1 || b.Notes[0] != "second" || b.Help == "" {
		t.Fatalf("unexpected b: %+v", b)
	}
}

func TestFormatterSnippet(t *testing.T) {
	src := "let f(x) = x\nin f(1, 2)"
	span := diag.Span{Filename: "snippet.et1", Line: 2, Column: 4, Start: 16, End: 23}
	d := diag.Errorf(diag.StageResolve, diag.CodeArityMismatch, span, "f expects 1 argument, got 2").
		WithPrimarySpan(span, "called here").
		WithNote("f is declared at snippet.et1:1:5")

	var out bytes.Buffer
	f := diag.NewFormatter(&out, false)
	f.AddSource("snippet.et1", src)
	f.Format(d)

	text := out.String()
	for _, want := range []string{
		"error[ARITY_MISMATCH]: f expects 1 argument, got 2",
		"--> snippet.et1:2:4",
		"2 | in f(1, 2)",
		"^^^^^^^ called here",
		"= note: f is declared at snippet.et1:1:5",
	} {
		if !strings.Contains(text, want) {
			t.Fatalf("formatted output missing %q:\n%s", want, text)
		}
	}
}

func TestFormatterFallsBackWithoutSource(t *testing.T) {
	var out bytes.Buffer
	f := diag.NewFormatter(&out, false)
	f.FormatError(fmt.Errorf("boom"))

	if got := out.String(); got != "error: boom\n" {
		t.Fatalf("unexpected output %q", got)
	}
}
