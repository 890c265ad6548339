package lsp

import (
	"unicode"
	"unicode/utf16"

	"github.com/excyrender/et1/internal/ast"
	"github.com/excyrender/et1/internal/diag"
	"github.com/excyrender/et1/internal/parser"
	"github.com/excyrender/et1/internal/passes"
)

// Document represents an open document.
type Document struct {
	URI     string
	Version int
	Content string

	// Program is the parsed source with types annotated by resolution. It
	// is nil while the text does not parse.
	Program *ast.Program
	Errors  []diag.Diagnostic

	runes    []rune
	previous *ast.Program
}

// update reparses text. Diagnostics come from running the whole pipeline
// on a copy, since lifting renames bindings and would break navigation;
// the kept tree is only resolved.
func (d *Document) update(text string, opts []passes.Option) {
	d.Content = text
	d.runes = []rune(text)
	d.Errors = nil
	if d.Program != nil {
		d.previous = d.Program
	}
	d.Program = nil

	p := parser.New(text, parser.WithFilename(uriToPath(d.URI)))
	prog := p.ParseProgram()
	if errs := p.Errors(); len(errs) > 0 {
		for _, e := range errs {
			d.Errors = append(d.Errors, e.ToDiagnostic())
		}
		return
	}

	if err := passes.Run(ast.CopyProgram(prog), opts...); err != nil {
		d.Errors = append(d.Errors, diagnosticOf(err))
	}
	// Errors were already reported above; partial annotations still help.
	_ = passes.ResolveTypes(prog, opts...)
	d.Program = prog
}

func diagnosticOf(err error) diag.Diagnostic {
	if d, ok := diag.As(err); ok {
		return d
	}
	return diag.Diagnostic{Severity: diag.SeverityError, Message: err.Error()}
}

func (d *Document) lspDiagnostic(dg diag.Diagnostic) Diagnostic {
	var r Range
	if dg.Span.IsValid() {
		r.Start = d.positionAt(dg.Span.Start)
		r.End = r.Start
		if dg.Span.End > dg.Span.Start {
			r.End = d.positionAt(dg.Span.End)
		}
	}

	msg := dg.Message
	for _, note := range dg.Notes {
		msg += "\nnote: " + note
	}
	if dg.Help != "" {
		msg += "\nhelp: " + dg.Help
	}

	stage := "et1"
	if dg.Stage != "" {
		stage += " " + string(dg.Stage)
	}
	return Diagnostic{
		Range:    r,
		Severity: diagnosticSeverity(dg.Severity),
		Code:     string(dg.Code),
		Source:   stage,
		Message:  msg,
	}
}

func diagnosticSeverity(sev diag.Severity) int {
	switch sev {
	case diag.SeverityWarning:
		return 2
	case diag.SeverityNote:
		return 3
	default:
		return 1
	}
}

// offset converts an LSP position, counted in UTF-16 units, to a rune
// index into the document.
func (d *Document) offset(pos Position) int {
	line, col := 0, 0
	for i, r := range d.runes {
		if line == pos.Line && col >= pos.Character {
			return i
		}
		if r == '\n' {
			if line == pos.Line {
				return i
			}
			line++
			col = 0
			continue
		}
		col += utf16.RuneLen(r)
	}
	return len(d.runes)
}

// positionAt converts a rune index into an LSP position.
func (d *Document) positionAt(offset int) Position {
	var pos Position
	for i, r := range d.runes {
		if i >= offset {
			break
		}
		if r == '\n' {
			pos.Line++
			pos.Character = 0
			continue
		}
		pos.Character += utf16.RuneLen(r)
	}
	return pos
}

func (d *Document) rangeOf(start, end int) Range {
	return Range{Start: d.positionAt(start), End: d.positionAt(end)}
}

// nameRange returns the rune range of b's name within its declaration.
func (d *Document) nameRange(b *ast.Binding) (int, int) {
	sp := b.Span()
	if sp.Start < 0 || sp.End > len(d.runes) || sp.Start > sp.End {
		return sp.Start, sp.Start
	}
	name := []rune(b.ID)
	if i := wordIndex(d.runes[sp.Start:sp.End], name); i >= 0 {
		return sp.Start + i, sp.Start + i + len(name)
	}
	return sp.Start, sp.Start
}

// wordIndex finds word in text where it is not part of a longer identifier,
// so a declared return type never matches a binding name.
func wordIndex(text, word []rune) int {
	for i := 0; i+len(word) <= len(text); i++ {
		if string(text[i:i+len(word)]) != string(word) {
			continue
		}
		if i > 0 && isIdentRune(text[i-1]) {
			continue
		}
		if end := i + len(word); end < len(text) && isIdentRune(text[end]) {
			continue
		}
		return i
	}
	return -1
}

func isIdentRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}
