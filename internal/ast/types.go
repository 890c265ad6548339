package ast

// Type names an Et1 value type. Auto marks a type the author left open and
// Unresolved marks one no pass has computed yet.
type Type string

const (
	Unresolved Type = ""
	Auto       Type = "auto"
	Int        Type = "int"
	Float      Type = "float"
	Bool       Type = "bool"
)

// IsConcrete reports whether t is a fixed value type.
func (t Type) IsConcrete() bool {
	return t == Int || t == Float || t == Bool
}

// IsNumeric reports whether t supports arithmetic.
func (t Type) IsNumeric() bool {
	return t == Int || t == Float
}

func (t Type) String() string {
	if t == Unresolved {
		return "<unresolved>"
	}
	return string(t)
}
