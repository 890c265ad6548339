package ast

import "github.com/excyrender/et1/internal/lexer"

// Node represents any AST node with an associated source span.
type Node interface {
	Span() lexer.Span
	Accept(v Visitor)
}

// Expr represents an expression node.
type Expr interface {
	Node
	exprNode()
}

// Literal represents a literal expression with a fixed type.
type Literal interface {
	Expr
	LiteralType() Type
}

// BinaryOp enumerates the infix operators.
type BinaryOp int

const (
	Addition BinaryOp = iota
	Subtraction
	Multiplication
	Division
	LessThan
	LessEqual
	GreaterThan
	GreaterEqual
	Equal
	NotEqual
	LogicalAnd
	LogicalOr
)

var binaryOps = [...]struct {
	name   string
	symbol string
}{
	Addition:       {"Addition", "+"},
	Subtraction:    {"Subtraction", "-"},
	Multiplication: {"Multiplication", "*"},
	Division:       {"Division", "/"},
	LessThan:       {"LessThan", "<"},
	LessEqual:      {"LessEqual", "<="},
	GreaterThan:    {"GreaterThan", ">"},
	GreaterEqual:   {"GreaterEqual", ">="},
	Equal:          {"Equal", "=="},
	NotEqual:       {"NotEqual", "!="},
	LogicalAnd:     {"LogicalAnd", "&&"},
	LogicalOr:      {"LogicalOr", "||"},
}

func (op BinaryOp) String() string { return binaryOps[op].name }

// Symbol returns the operator as written in Et1 source.
func (op BinaryOp) Symbol() string { return binaryOps[op].symbol }

// IsArithmetic reports whether op maps two numbers of one type to that type.
func (op BinaryOp) IsArithmetic() bool { return op <= Division }

// IsOrdering reports whether op is one of <, <=, >, >=.
func (op BinaryOp) IsOrdering() bool { return op >= LessThan && op <= GreaterEqual }

// IsEquality reports whether op is == or !=.
func (op BinaryOp) IsEquality() bool { return op == Equal || op == NotEqual }

// IsLogical reports whether op is && or ||.
func (op BinaryOp) IsLogical() bool { return op == LogicalAnd || op == LogicalOr }

// Binary represents an infix operation.
type Binary struct {
	Op   BinaryOp
	LHS  Expr
	RHS  Expr
	span lexer.Span
}

// NewBinary constructs a binary expression node.
func NewBinary(op BinaryOp, lhs, rhs Expr, span lexer.Span) *Binary {
	return &Binary{Op: op, LHS: lhs, RHS: rhs, span: span}
}

// Span returns the expression span.
func (e *Binary) Span() lexer.Span { return e.span }

func (*Binary) exprNode() {}

// UnaryOp enumerates the prefix operators.
type UnaryOp int

const (
	Negation UnaryOp = iota
	LogicalNot
)

func (op UnaryOp) String() string {
	if op == Negation {
		return "Negation"
	}
	return "LogicalNot"
}

// Symbol returns the operator as written in Et1 source.
func (op UnaryOp) Symbol() string {
	if op == Negation {
		return "-"
	}
	return "!"
}

// Unary represents a prefix operation.
type Unary struct {
	Op      UnaryOp
	Operand Expr
	span    lexer.Span
}

// NewUnary constructs a unary expression node.
func NewUnary(op UnaryOp, operand Expr, span lexer.Span) *Unary {
	return &Unary{Op: op, Operand: operand, span: span}
}

// Span returns the expression span.
func (e *Unary) Span() lexer.Span { return e.span }

func (*Unary) exprNode() {}

// Paren is an explicitly parenthesized expression. It carries no semantics
// and only steers grouping when the tree is printed again.
type Paren struct {
	Inner Expr
	span  lexer.Span
}

// NewParen constructs a parenthesized expression node.
func NewParen(inner Expr, span lexer.Span) *Paren {
	return &Paren{Inner: inner, span: span}
}

// Span returns the expression span.
func (e *Paren) Span() lexer.Span { return e.span }

func (*Paren) exprNode() {}

// IfThenElse is a conditional expression. Only the chosen branch is evaluated.
type IfThenElse struct {
	Cond Expr
	Then Expr
	Else Expr
	span lexer.Span
}

// NewIfThenElse constructs a conditional expression node.
func NewIfThenElse(cond, then, els Expr, span lexer.Span) *IfThenElse {
	return &IfThenElse{Cond: cond, Then: then, Else: els, span: span}
}

// Span returns the expression span.
func (e *IfThenElse) Span() lexer.Span { return e.span }

func (*IfThenElse) exprNode() {}

// IntegerLiteral represents an integer literal.
type IntegerLiteral struct {
	Value int64
	span  lexer.Span
}

// NewIntegerLiteral constructs an integer literal node.
func NewIntegerLiteral(value int64, span lexer.Span) *IntegerLiteral {
	return &IntegerLiteral{Value: value, span: span}
}

// Span returns the literal span.
func (e *IntegerLiteral) Span() lexer.Span { return e.span }

// LiteralType returns Int.
func (*IntegerLiteral) LiteralType() Type { return Int }

func (*IntegerLiteral) exprNode() {}

// RealLiteral represents a floating point literal.
type RealLiteral struct {
	Value float64
	span  lexer.Span
}

// NewRealLiteral constructs a real literal node.
func NewRealLiteral(value float64, span lexer.Span) *RealLiteral {
	return &RealLiteral{Value: value, span: span}
}

// Span returns the literal span.
func (e *RealLiteral) Span() lexer.Span { return e.span }

// LiteralType returns Float.
func (*RealLiteral) LiteralType() Type { return Float }

func (*RealLiteral) exprNode() {}

// BoolLiteral represents true or false.
type BoolLiteral struct {
	Value bool
	span  lexer.Span
}

// NewBoolLiteral constructs a boolean literal node.
func NewBoolLiteral(value bool, span lexer.Span) *BoolLiteral {
	return &BoolLiteral{Value: value, span: span}
}

// Span returns the literal span.
func (e *BoolLiteral) Span() lexer.Span { return e.span }

// LiteralType returns Bool.
func (*BoolLiteral) LiteralType() Type { return Bool }

func (*BoolLiteral) exprNode() {}

// Identifier references a parameter or a zero-arity binding. Its type is
// annotated in place during resolution.
type Identifier struct {
	Name string
	Type Type
	span lexer.Span
}

// NewIdentifier constructs an identifier node with an unresolved type.
func NewIdentifier(name string, span lexer.Span) *Identifier {
	return &Identifier{Name: name, span: span}
}

// Span returns the identifier span.
func (e *Identifier) Span() lexer.Span { return e.span }

func (*Identifier) exprNode() {}

// Call applies a binding by name. It never stores the binding it resolves
// to: every pass looks the callee up again among the visible bindings. Type
// holds the result type of the last successful resolution.
type Call struct {
	ID   string
	Args []Expr
	Type Type
	span lexer.Span
}

// NewCall constructs a call expression node.
func NewCall(id string, args []Expr, span lexer.Span) *Call {
	return &Call{ID: id, Args: args, span: span}
}

// Span returns the call span.
func (e *Call) Span() lexer.Span { return e.span }

func (*Call) exprNode() {}

// LetIn introduces a declarative region of bindings visible in Body.
type LetIn struct {
	Bindings []*Binding
	Body     Expr
	span     lexer.Span
}

// NewLetIn constructs a let-in expression node.
func NewLetIn(bindings []*Binding, body Expr, span lexer.Span) *LetIn {
	return &LetIn{Bindings: bindings, Body: body, span: span}
}

// Span returns the expression span.
func (e *LetIn) Span() lexer.Span { return e.span }

func (*LetIn) exprNode() {}

// Argument is a formal parameter of a binding.
type Argument struct {
	Name string
	Type Type
}

// Binding declares a value (no arguments) or a function. A binding with
// at least one Auto argument is generic and is only ever instantiated.
type Binding struct {
	ID   string
	Args []Argument
	Body Expr
	Type Type
	span lexer.Span
}

// NewBinding constructs a binding node. An unset return type becomes Auto.
func NewBinding(id string, typ Type, args []Argument, body Expr, span lexer.Span) *Binding {
	if typ == Unresolved {
		typ = Auto
	}
	return &Binding{ID: id, Args: args, Body: body, Type: typ, span: span}
}

// Span returns the binding span.
func (b *Binding) Span() lexer.Span { return b.span }

// IsGeneric reports whether any argument is still Auto.
func (b *Binding) IsGeneric() bool {
	for _, a := range b.Args {
		if a.Type == Auto {
			return true
		}
	}
	return false
}

// ArgTypes returns the ordered argument types.
func (b *Binding) ArgTypes() []Type {
	types := make([]Type, len(b.Args))
	for i, a := range b.Args {
		types[i] = a.Type
	}
	return types
}

// Program is the root of an Et1 tree: the top-level declarative region and
// the expression it evaluates to.
type Program struct {
	Bindings []*Binding
	Body     Expr
	Type     Type
	span     lexer.Span
}

// NewProgram constructs a program node.
func NewProgram(bindings []*Binding, body Expr, span lexer.Span) *Program {
	return &Program{Bindings: bindings, Body: body, span: span}
}

// Span returns the span covering the entire program.
func (p *Program) Span() lexer.Span { return p.span }
