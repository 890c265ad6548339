package eval

import (
	"github.com/excyrender/et1/internal/ast"
	"github.com/excyrender/et1/internal/diag"
)

func unary(n *ast.Unary, v Value) (Value, error) {
	switch {
	case n.Op == ast.LogicalNot && v.Type == ast.Bool:
		return Bool(!v.Bool), nil
	case n.Op == ast.Negation && v.Type == ast.Int:
		return Int(-v.Int), nil
	case n.Op == ast.Negation && v.Type == ast.Float:
		return Float(-v.Float), nil
	}
	return Value{}, operandMismatch(n, n.Op.Symbol(), v, v)
}

// binary evaluates n. Logical operators short-circuit, matching the host
// backends.
func (in *Interpreter) binary(n *ast.Binary, vars env) (Value, error) {
	l, err := in.eval(n.LHS, vars)
	if err != nil {
		return Value{}, err
	}
	if n.Op.IsLogical() {
		if l.Type != ast.Bool {
			return Value{}, operandMismatch(n, n.Op.Symbol(), l, l)
		}
		if (n.Op == ast.LogicalAnd) != l.Bool {
			return l, nil
		}
	}

	r, err := in.eval(n.RHS, vars)
	if err != nil {
		return Value{}, err
	}
	if l.Type != r.Type {
		return Value{}, operandMismatch(n, n.Op.Symbol(), l, r)
	}

	switch {
	case n.Op.IsLogical():
		return r, nil
	case n.Op.IsEquality():
		eq := l == r
		return Bool(eq == (n.Op == ast.Equal)), nil
	}

	switch l.Type {
	case ast.Int:
		return intOp(n, l.Int, r.Int)
	case ast.Float:
		return floatOp(n.Op, l.Float, r.Float), nil
	}
	return Value{}, operandMismatch(n, n.Op.Symbol(), l, r)
}

func intOp(n *ast.Binary, a, b int64) (Value, error) {
	switch n.Op {
	case ast.Addition:
		return Int(a + b), nil
	case ast.Subtraction:
		return Int(a - b), nil
	case ast.Multiplication:
		return Int(a * b), nil
	case ast.Division:
		if b == 0 {
			return Value{}, diag.Errorf(diag.StageEval, diag.CodeEvalDivisionByZero, n.Span().Diag(),
				"integer division by zero")
		}
		return Int(a / b), nil
	case ast.LessThan:
		return Bool(a < b), nil
	case ast.LessEqual:
		return Bool(a <= b), nil
	case ast.GreaterThan:
		return Bool(a > b), nil
	default:
		return Bool(a >= b), nil
	}
}

func floatOp(op ast.BinaryOp, a, b float64) Value {
	switch op {
	case ast.Addition:
		return Float(a + b)
	case ast.Subtraction:
		return Float(a - b)
	case ast.Multiplication:
		return Float(a * b)
	case ast.Division:
		return Float(a / b)
	case ast.LessThan:
		return Bool(a < b)
	case ast.LessEqual:
		return Bool(a <= b)
	case ast.GreaterThan:
		return Bool(a > b)
	default:
		return Bool(a >= b)
	}
}

func operandMismatch(n ast.Node, op string, l, r Value) error {
	return diag.Errorf(diag.StageEval, diag.CodeInternalInvariant, n.Span().Diag(),
		"operator %s applied to %s and %s", op, l.Type, r.Type)
}
