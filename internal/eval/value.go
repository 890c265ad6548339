package eval

import (
	"strconv"

	"github.com/excyrender/et1/internal/ast"
)

// Value is the result of evaluating an expression. Only the field matching
// Type is meaningful.
type Value struct {
	Type  ast.Type
	Int   int64
	Float float64
	Bool  bool
}

func Int(v int64) Value     { return Value{Type: ast.Int, Int: v} }
func Float(v float64) Value { return Value{Type: ast.Float, Float: v} }
func Bool(v bool) Value     { return Value{Type: ast.Bool, Bool: v} }

// Of converts a Go int64, float64 or bool into a Value.
func Of(v any) (Value, bool) {
	switch x := v.(type) {
	case int64:
		return Int(x), true
	case int:
		return Int(int64(x)), true
	case float64:
		return Float(x), true
	case bool:
		return Bool(x), true
	}
	return Value{}, false
}

// Any returns the Go representation of v: int64, float64 or bool.
func (v Value) Any() any {
	switch v.Type {
	case ast.Int:
		return v.Int
	case ast.Float:
		return v.Float
	case ast.Bool:
		return v.Bool
	}
	return nil
}

func (v Value) String() string {
	switch v.Type {
	case ast.Int:
		return strconv.FormatInt(v.Int, 10)
	case ast.Float:
		return strconv.FormatFloat(v.Float, 'g', -1, 64)
	case ast.Bool:
		return strconv.FormatBool(v.Bool)
	}
	return "<invalid>"
}
