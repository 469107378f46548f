package ast

import "github.com/go-sass/sass/sasserror"

// NumberLit is a numeric literal, optionally with a unit, e.g. `10px`.
type NumberLit struct {
	Base
	Value float64
	Unit  string
}

func (*NumberLit) expressionNode() {}

// StringLit is a quoted or unquoted string literal; Chunks holds
// interleaved literal/interpolated pieces when the string contains
// `#{}` (Chunks is nil for a plain literal with no interpolation).
type StringLit struct {
	Base
	Quoted bool
	Text   string
	Chunks []Expression
}

func (*StringLit) expressionNode() {}

// BoolLit is `true`/`false`.
type BoolLit struct {
	Base
	Value bool
}

func (*BoolLit) expressionNode() {}

// NullLit is the `null` literal.
type NullLit struct{ Base }

func (*NullLit) expressionNode() {}

// ColorLit is a `#rgb`/`#rrggbb[aa]` hex literal.
type ColorLit struct {
	Base
	Hex string
}

func (*ColorLit) expressionNode() {}

// VariableRef is `$name`, optionally namespaced as `module.$name` (in
// which case Namespace holds "module").
type VariableRef struct {
	Base
	Namespace string
	Name      string
}

func (*VariableRef) expressionNode() {}

// Interpolation is `#{<expr>}`.
type Interpolation struct {
	Base
	Expr Expression
}

func (*Interpolation) expressionNode() {}

// ListExpr is a space- or comma-separated expression list, optionally
// bracketed (`[a, b, c]`).
type ListExpr struct {
	Base
	Items     []Expression
	Comma     bool
	Bracketed bool
}

func (*ListExpr) expressionNode() {}

// MapExpr is `(key: value, key2: value2)`.
type MapExpr struct {
	Base
	Keys   []Expression
	Values []Expression
}

func (*MapExpr) expressionNode() {}

// FunctionCall is `name(args...)`, optionally namespaced
// (`module.name(...)`).
type FunctionCall struct {
	Base
	Namespace string
	Name      string
	Args      []Argument
}

func (*FunctionCall) expressionNode() {}

// BinaryExpr is a binary operator application: arithmetic (+ - * / %),
// comparison (< <= > >=), equality (== !=), or logical (and or).
type BinaryExpr struct {
	Base
	Op    string
	Left  Expression
	Right Expression
}

func (*BinaryExpr) expressionNode() {}

// UnaryExpr is unary -, + or `not`.
type UnaryExpr struct {
	Base
	Op      string
	Operand Expression
}

func (*UnaryExpr) expressionNode() {}

// ParenExpr preserves explicit parenthesization so that, e.g., a
// single-element parenthesized list (`(1,)`) can be distinguished from
// a bare value.
type ParenExpr struct {
	Base
	Inner Expression
}

func (*ParenExpr) expressionNode() {}

// SelectorRef is the bare `&` used inside a SassScript expression
// (rare, but legal inside some function contexts via `&` being treated
// as a selector value through `selector-*` functions' dynamic forms).
type SelectorRef struct{ Base }

func (*SelectorRef) expressionNode() {}

// NewBase is a tiny constructor helper so parser code building literal
// nodes doesn't need to spell out the embedded Base{} each time,
// matching ast.NewStylesheet/ast.NewRule's constructor-helper habit in
// the teacher.
func NewBase(span sasserror.Span) Base { return Base{span: span} }
