package diag

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/fatih/color"
)

// Formatter formats diagnostics in a Rust-style format with source code snippets.
type Formatter struct {
	out         io.Writer
	sourceCache map[string]string // Cache of source files by filename

	severity func(a ...interface{}) string
	gutter   func(a ...interface{}) string
	caret    func(a ...interface{}) string
}

// NewFormatter creates a diagnostic formatter writing to out. Colors follow
// fatih/color's terminal detection unless disabled explicitly.
func NewFormatter(out io.Writer, useColor bool) *Formatter {
	f := &Formatter{
		out:         out,
		sourceCache: make(map[string]string),
	}
	severity := color.New(color.FgRed, color.Bold)
	gutter := color.New(color.FgBlue, color.Bold)
	caret := color.New(color.FgRed)
	if !useColor {
		severity.DisableColor()
		gutter.DisableColor()
		caret.DisableColor()
	}
	f.severity = severity.SprintFunc()
	f.gutter = gutter.SprintFunc()
	f.caret = caret.SprintFunc()
	return f
}

// AddSource registers in-memory source text for filename.
func (f *Formatter) AddSource(filename, src string) {
	f.sourceCache[filename] = src
}

// LoadSource loads source code for a file (cached).
func (f *Formatter) LoadSource(filename string) (string, error) {
	if src, ok := f.sourceCache[filename]; ok {
		return src, nil
	}
	if filename == "" {
		return "", fmt.Errorf("no source registered for anonymous input")
	}
	data, err := os.ReadFile(filename)
	if err != nil {
		return "", err
	}
	src := string(data)
	f.sourceCache[filename] = src
	return src, nil
}

// FormatError prints err as a diagnostic when it carries one, and as a plain
// error line otherwise.
func (f *Formatter) FormatError(err error) {
	if d, ok := As(err); ok {
		f.Format(d)
		return
	}
	fmt.Fprintf(f.out, "%s: %v\n", f.severity("error"), err)
}

// Format formats and prints a diagnostic in Rust-style format.
func (f *Formatter) Format(d Diagnostic) {
	spans := f.collectSpans(d)
	if len(spans) == 0 {
		f.formatSimple(d)
		return
	}

	filename := spans[0].Span.Filename
	src, err := f.LoadSource(filename)
	if err != nil {
		f.formatSimple(d)
		return
	}

	f.printHeader(d)
	f.printSpans(filename, src, spans)
	f.printHelp(d)
}

// collectSpans collects all spans from the diagnostic, prioritizing LabeledSpans.
func (f *Formatter) collectSpans(d Diagnostic) []LabeledSpan {
	if len(d.LabeledSpans) > 0 {
		return d.LabeledSpans
	}
	if d.Span.IsValid() {
		return []LabeledSpan{{Span: d.Span, Style: "primary"}}
	}
	return nil
}

// printHeader prints the error header (error[CODE]: message).
func (f *Formatter) printHeader(d Diagnostic) {
	severity := string(d.Severity)
	if severity == "" {
		severity = "error"
	}

	if d.Code != "" {
		fmt.Fprintf(f.out, "%s: %s\n", f.severity(severity+"["+string(d.Code)+"]"), d.Message)
	} else {
		fmt.Fprintf(f.out, "%s: %s\n", f.severity(severity), d.Message)
	}
}

// printSpans prints source lines with underlines for the spans of one file.
func (f *Formatter) printSpans(filename, src string, spans []LabeledSpan) {
	sort.SliceStable(spans, func(i, j int) bool {
		if spans[i].Span.Line != spans[j].Span.Line {
			return spans[i].Span.Line < spans[j].Span.Line
		}
		return spans[i].Span.Column < spans[j].Span.Column
	})

	lines := strings.Split(src, "\n")
	spansByLine := make(map[int][]LabeledSpan)
	for _, span := range spans {
		if line := span.Span.Line; line > 0 && line <= len(lines) {
			spansByLine[line] = append(spansByLine[line], span)
		}
	}
	if len(spansByLine) == 0 {
		return
	}

	first := spans[0].Span.Line
	last := spans[len(spans)-1].Span.Line
	contextStart := max(1, first-1)
	contextEnd := min(len(lines), last+1)
	width := len(fmt.Sprintf("%d", contextEnd))
	pad := strings.Repeat(" ", width)

	if filename == "" {
		filename = "<input>"
	}
	fmt.Fprintf(f.out, "  %s %s:%d:%d\n", f.gutter("-->"), filename, spans[0].Span.Line, spans[0].Span.Column)
	fmt.Fprintf(f.out, " %s %s\n", pad, f.gutter("|"))

	for lineNum := contextStart; lineNum <= contextEnd; lineNum++ {
		content := lines[lineNum-1]
		fmt.Fprintf(f.out, " %s %s\n", f.gutter(fmt.Sprintf("%*d |", width, lineNum)), content)
		if lineSpans := spansByLine[lineNum]; len(lineSpans) > 0 {
			f.printUnderlines(pad, content, lineSpans)
		}
	}

	fmt.Fprintf(f.out, " %s %s\n", pad, f.gutter("|"))
}

// printUnderlines prints ^ under primary spans and ~ under secondary spans.
func (f *Formatter) printUnderlines(pad string, content string, spans []LabeledSpan) {
	underline := []byte(strings.Repeat(" ", len(content)+1))
	var labels []string

	for _, span := range spans {
		mark := byte('~')
		if span.Style == "primary" {
			mark = '^'
		}
		start := max(0, span.Span.Column-1)
		end := min(len(underline), start+max(1, span.Span.End-span.Span.Start))
		for i := start; i < end; i++ {
			if underline[i] == ' ' || mark == '^' {
				underline[i] = mark
			}
		}
		if span.Label != "" {
			labels = append(labels, span.Label)
		}
	}

	marks := strings.TrimRight(string(underline), " ")
	fmt.Fprintf(f.out, " %s %s %s\n", pad, f.gutter("|"), f.caret(marks+" "+strings.Join(labels, "; ")))
}

// printHelp prints notes and help text.
func (f *Formatter) printHelp(d Diagnostic) {
	for _, note := range d.Notes {
		fmt.Fprintf(f.out, "  = note: %s\n", note)
	}
	if d.Help != "" {
		fmt.Fprintf(f.out, "help: %s\n", d.Help)
	}
}

// formatSimple formats a diagnostic without source code (fallback).
func (f *Formatter) formatSimple(d Diagnostic) {
	f.printHeader(d)
	if d.Span.IsValid() {
		fmt.Fprintf(f.out, "  %s %s\n", f.gutter("-->"), d.Span.String())
	}
	f.printHelp(d)
}
