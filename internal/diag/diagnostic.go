package diag

import (
	"errors"
	"fmt"
	"strings"
)

// Stage identifies which compiler phase produced the diagnostic.
type Stage string

const (
	StageLexer     Stage = "lexer"
	StageParser    Stage = "parser"
	StageLift      Stage = "lambda-lift"
	StageResolve   Stage = "resolve-types"
	StageMangle    Stage = "mangle"
	StageGlobalize Stage = "globalize-functions"
	StageCodegen   Stage = "codegen"
	StageEval      Stage = "eval"
)

// Severity captures how impactful the diagnostic is.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityNote    Severity = "note"
)

// LabeledSpan represents a span with an optional label.
type LabeledSpan struct {
	Span  Span
	Label string // Optional label (e.g., "expected `int`, found `float`")
	Style string // "primary" or "secondary" - primary spans are emphasized
}

// Code is a stable identifier for a diagnostic.
type Code string

const (
	// Lexer and parser errors
	CodeLexerUnterminatedBlockComment Code = "LEXER_UNTERMINATED_BLOCK_COMMENT"
	CodeLexerIllegalRune              Code = "LEXER_ILLEGAL_RUNE"
	CodeParseError                    Code = "PARSE_ERROR"

	// Type resolution errors. CodeUnresolvedType is a soft failure that never
	// leaves the resolve pass; it only shows up as a note on CodeUnresolvedProgram.
	CodeUnresolvedType     Code = "UNRESOLVED_TYPE"
	CodeUnresolvedProgram  Code = "UNRESOLVED_PROGRAM"
	CodeAmbiguousOverload  Code = "AMBIGUOUS_OVERLOAD"
	CodeArityMismatch      Code = "ARITY_MISMATCH"
	CodeTypeMismatch       Code = "TYPE_MISMATCH"
	CodeReturnTypeConflict Code = "RETURN_TYPE_CONFLICT"
	CodeResolutionDiverged Code = "RESOLUTION_DIVERGED"

	// Structural errors
	CodeInternalInvariant Code = "INTERNAL_INVARIANT"

	// Codegen errors
	CodeGenUnknownBackend   Code = "CODEGEN_UNKNOWN_BACKEND"
	CodeGenUnsupportedNode  Code = "CODEGEN_UNSUPPORTED_NODE"
	CodeGenUnresolvedTarget Code = "CODEGEN_UNRESOLVED_TARGET"

	// Evaluation errors
	CodeEvalDivisionByZero   Code = "EVAL_DIVISION_BY_ZERO"
	CodeEvalUndefined        Code = "EVAL_UNDEFINED"
	CodeEvalRecursionLimit   Code = "EVAL_RECURSION_LIMIT"
	CodeEvalArgumentMismatch Code = "EVAL_ARGUMENT_MISMATCH"
)

// Span represents a location in source code.
type Span struct {
	Filename string
	Line     int
	Column   int
	Start    int
	End      int
}

// String returns a human-readable representation of the span.
func (s Span) String() string {
	if s.Filename != "" {
		return fmt.Sprintf("%s:%d:%d", s.Filename, s.Line, s.Column)
	}
	return fmt.Sprintf("%d:%d", s.Line, s.Column)
}

// IsValid returns true if the span has valid location information.
func (s Span) IsValid() bool {
	return s.Line > 0 && s.Column > 0
}

// Diagnostic is a compiler diagnostic surfaced to end-users. Fatal
// diagnostics travel through the pipeline as Go errors.
type Diagnostic struct {
	Stage        Stage
	Severity     Severity
	Code         Code
	Message      string
	Span         Span
	LabeledSpans []LabeledSpan
	Notes        []string
	Help         string
}

// Errorf builds an error-severity diagnostic.
func Errorf(stage Stage, code Code, span Span, format string, args ...any) Diagnostic {
	return Diagnostic{
		Stage:    stage,
		Severity: SeverityError,
		Code:     code,
		Message:  fmt.Sprintf(format, args...),
		Span:     span,
	}
}

// Error implements the error interface.
func (d Diagnostic) Error() string {
	var sb strings.Builder
	if d.Span.IsValid() {
		sb.WriteString(d.Span.String())
		sb.WriteString(": ")
	}
	if d.Stage != "" {
		sb.WriteString(string(d.Stage))
		sb.WriteString(": ")
	}
	sb.WriteString(d.Message)
	if d.Code != "" {
		sb.WriteString(" [")
		sb.WriteString(string(d.Code))
		sb.WriteString("]")
	}
	return sb.String()
}

// As extracts the diagnostic carried by err, if any.
func As(err error) (Diagnostic, bool) {
	var d Diagnostic
	if errors.As(err, &d) {
		return d, true
	}
	return Diagnostic{}, false
}

// CodeOf returns the diagnostic code carried by err, or "" for foreign errors.
func CodeOf(err error) Code {
	if d, ok := As(err); ok {
		return d.Code
	}
	return ""
}

// WithLabeledSpan adds a labeled span to the diagnostic.
func (d Diagnostic) WithLabeledSpan(span Span, label string, style string) Diagnostic {
	if style == "" {
		style = "primary"
	}
	d.LabeledSpans = append(d.LabeledSpans, LabeledSpan{
		Span:  span,
		Label: label,
		Style: style,
	})
	return d
}

// WithPrimarySpan adds a primary labeled span.
func (d Diagnostic) WithPrimarySpan(span Span, label string) Diagnostic {
	return d.WithLabeledSpan(span, label, "primary")
}

// WithSecondarySpan adds a secondary labeled span.
func (d Diagnostic) WithSecondarySpan(span Span, label string) Diagnostic {
	return d.WithLabeledSpan(span, label, "secondary")
}

// WithNote adds a note to the diagnostic.
func (d Diagnostic) WithNote(note string) Diagnostic {
	d.Notes = append(d.Notes, note)
	return d
}

// WithHelp adds help text to the diagnostic.
func (d Diagnostic) WithHelp(help string) Diagnostic {
	d.Help = help
	return d
}
