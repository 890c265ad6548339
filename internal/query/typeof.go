// Package query answers structural questions about annotated Et1 trees
// without changing them.
package query

import (
	"github.com/excyrender/et1/internal/ast"
	"github.com/excyrender/et1/internal/diag"
)

// TypeOf computes the type of expr bottom-up from the annotations already
// present on identifiers, calls and literals. It returns ast.Unresolved when
// a needed sub-expression is not annotated yet, and a TYPE_MISMATCH
// diagnostic when the annotated operands cannot combine.
//
// A conditional with only one typed branch takes that branch's type. This
// lets a recursive binding get its type from the base case before the
// recursive call is annotated.
func TypeOf(expr ast.Expr) (ast.Type, error) {
	switch e := expr.(type) {
	case ast.Literal:
		return e.LiteralType(), nil

	case *ast.Identifier:
		return known(e.Type), nil

	case *ast.Call:
		return known(e.Type), nil

	case *ast.Paren:
		return TypeOf(e.Inner)

	case *ast.LetIn:
		return TypeOf(e.Body)

	case *ast.Unary:
		t, err := TypeOf(e.Operand)
		if err != nil || t == ast.Unresolved {
			return ast.Unresolved, err
		}
		switch {
		case e.Op == ast.Negation && t.IsNumeric():
			return t, nil
		case e.Op == ast.LogicalNot && t == ast.Bool:
			return ast.Bool, nil
		}
		return ast.Unresolved, mismatch(e, "operator %s cannot be applied to %s", e.Op.Symbol(), t)

	case *ast.Binary:
		return binaryType(e)

	case *ast.IfThenElse:
		return conditionalType(e)
	}

	return ast.Unresolved, diag.Errorf(diag.StageResolve, diag.CodeInternalInvariant, expr.Span().Diag(),
		"cannot compute the type of %T", expr)
}

func known(t ast.Type) ast.Type {
	if t.IsConcrete() {
		return t
	}
	return ast.Unresolved
}

func binaryType(e *ast.Binary) (ast.Type, error) {
	l, err := TypeOf(e.LHS)
	if err != nil {
		return ast.Unresolved, err
	}
	r, err := TypeOf(e.RHS)
	if err != nil {
		return ast.Unresolved, err
	}
	if l == ast.Unresolved || r == ast.Unresolved {
		return ast.Unresolved, nil
	}

	switch {
	case e.Op.IsArithmetic():
		if l == r && l.IsNumeric() {
			return l, nil
		}
	case e.Op.IsOrdering():
		if l == r && l.IsNumeric() {
			return ast.Bool, nil
		}
	case e.Op.IsEquality():
		if l == r {
			return ast.Bool, nil
		}
	case e.Op.IsLogical():
		if l == ast.Bool && r == ast.Bool {
			return ast.Bool, nil
		}
	}
	return ast.Unresolved, mismatch(e, "operator %s cannot be applied to %s and %s", e.Op.Symbol(), l, r)
}

func conditionalType(e *ast.IfThenElse) (ast.Type, error) {
	c, err := TypeOf(e.Cond)
	if err != nil {
		return ast.Unresolved, err
	}
	if c != ast.Unresolved && c != ast.Bool {
		return ast.Unresolved, mismatch(e.Cond, "condition must be bool, found %s", c)
	}

	t, err := TypeOf(e.Then)
	if err != nil {
		return ast.Unresolved, err
	}
	f, err := TypeOf(e.Else)
	if err != nil {
		return ast.Unresolved, err
	}

	switch {
	case t == ast.Unresolved:
		return f, nil
	case f == ast.Unresolved || t == f:
		return t, nil
	}
	return ast.Unresolved, mismatch(e, "branches of conditional disagree: %s and %s", t, f).
		WithSecondarySpan(e.Then.Span().Diag(), t.String()).
		WithSecondarySpan(e.Else.Span().Diag(), f.String())
}

func mismatch(n ast.Node, format string, args ...any) diag.Diagnostic {
	return diag.Errorf(diag.StageResolve, diag.CodeTypeMismatch, n.Span().Diag(), format, args...)
}
