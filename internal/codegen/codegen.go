// Package codegen renders resolved, mangled and globalized Et1 programs as
// source text for a target language.
package codegen

import (
	"sort"
	"strconv"
	"strings"

	"github.com/excyrender/et1/internal/ast"
	"github.com/excyrender/et1/internal/diag"
)

// Backend renders a program as target source text.
type Backend interface {
	Name() string
	Generate(p *ast.Program) (string, error)
}

var backends = map[string]func() Backend{
	"et1":    func() Backend { return Et1{} },
	"js":     func() Backend { return JavaScript{} },
	"python": func() Backend { return Python{} },
}

// Lookup returns the backend registered under name.
func Lookup(name string) (Backend, error) {
	mk, ok := backends[name]
	if !ok {
		return nil, diag.Errorf(diag.StageCodegen, diag.CodeGenUnknownBackend, diag.Span{},
			"unknown backend %q", name).WithHelp("available backends: " + strings.Join(Names(), ", "))
	}
	return mk(), nil
}

// Names lists the registered backends in alphabetical order.
func Names() []string {
	names := make([]string, 0, len(backends))
	for name := range backends {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// frame is one entry of the emitter's context stack. Each construct with
// children pushes a frame; children call separate when they begin so the
// separator lands between them and never before the first.
type frame struct {
	sep    string
	count  int
	node   ast.Node
	closer string
}

// emitter is the output state shared by the backends.
type emitter struct {
	sb     strings.Builder
	frames []frame
	mute   int
	indent int
	err    error
}

func (e *emitter) write(parts ...string) {
	if e.mute > 0 {
		return
	}
	for _, s := range parts {
		e.sb.WriteString(s)
	}
}

// line starts a new line at the current indentation.
func (e *emitter) line(parts ...string) {
	if e.mute > 0 {
		return
	}
	if e.sb.Len() > 0 {
		e.sb.WriteString("\n")
	}
	e.sb.WriteString(strings.Repeat("    ", e.indent))
	e.write(parts...)
}

func (e *emitter) push(sep string, node ast.Node) {
	e.frames = append(e.frames, frame{sep: sep, node: node})
}

func (e *emitter) pop() {
	e.frames = e.frames[:len(e.frames)-1]
}

// parent returns the node owning the innermost frame, or nil.
func (e *emitter) parent() ast.Node {
	if len(e.frames) == 0 {
		return nil
	}
	return e.frames[len(e.frames)-1].node
}

func (e *emitter) separate() {
	if e.mute > 0 || len(e.frames) == 0 {
		return
	}
	top := &e.frames[len(e.frames)-1]
	if top.count > 0 {
		e.sb.WriteString(top.sep)
	}
	top.count++
}

func (e *emitter) fail(err error) {
	if e.err == nil {
		e.err = err
	}
}

func (e *emitter) unsupported(n ast.Node, backend string) {
	e.fail(diag.Errorf(diag.StageCodegen, diag.CodeGenUnsupportedNode, n.Span().Diag(),
		"%s backend cannot render %T", backend, n).
		WithHelp("run the globalize-functions pass first"))
}

func (e *emitter) result() (string, error) {
	if e.err != nil {
		return "", e.err
	}
	return e.sb.String(), nil
}

// formatReal renders v so that it always reads back as a real literal.
func formatReal(v float64) string {
	s := strconv.FormatFloat(v, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eEIN") {
		s += ".0"
	}
	return s
}

// escapeIdent maps an Et1 identifier onto a target-safe alphabet: '_' is
// doubled, the pass sigils '.' and '$' become "_d" and "_s", and names that
// collide with a reserved word get a "_k" suffix. Since a single underscore
// only ever starts an escape, distinct Et1 names stay distinct.
func escapeIdent(name string, reserved map[string]bool) string {
	var sb strings.Builder
	for _, r := range name {
		switch r {
		case '_':
			sb.WriteString("__")
		case '.':
			sb.WriteString("_d")
		case '$':
			sb.WriteString("_s")
		default:
			sb.WriteRune(r)
		}
	}
	out := sb.String()
	if reserved[out] {
		out += "_k"
	}
	return out
}

func wordSet(words ...string) map[string]bool {
	set := make(map[string]bool, len(words))
	for _, w := range words {
		set[w] = true
	}
	return set
}

// divisionHelper reports whether b divides integers, which the targets
// route through the host's truncating division helper.
func divisionHelper(b *ast.Binary, typeOf func(ast.Expr) (ast.Type, error)) (bool, error) {
	if b.Op != ast.Division {
		return false, nil
	}
	t, err := typeOf(b.LHS)
	if err != nil {
		return false, err
	}
	if !t.IsConcrete() {
		return false, diag.Errorf(diag.StageCodegen, diag.CodeGenUnresolvedTarget, b.Span().Diag(),
			"operand type of %s is unresolved", b.Op.Symbol())
	}
	return t == ast.Int, nil
}
