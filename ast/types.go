// Package ast defines the Sass syntax tree produced by the parser
// packages (SCSS, indented, and plain-CSS surface syntax all parse
// into this one tree shape) and consumed by the evaluator. It
// generalizes the teacher's ast.types.go -- a flat LESS-shaped tree of
// Rule/Declaration/Literal/Variable/MixinCall -- into the richer
// statement/expression split Sass needs (separate @use/@forward/@if/
// @each/@for/@while/@function statements, a full SassScript expression
// grammar), while keeping the same "small structs implementing a
// marker interface, constructor helpers for the common cases" idiom.
package ast

import "github.com/go-sass/sass/sasserror"

// Node is the base interface every syntax-tree node implements.
type Node interface {
	Span() sasserror.Span
}

// Statement is anything that can appear at stylesheet/block top level:
// style rules, at-rules, declarations, variable assignments and
// control-flow constructs.
type Statement interface {
	Node
	statementNode()
}

// Expression is anything that evaluates to a value.Value: literals,
// variable references, function calls, operators, interpolation.
type Expression interface {
	Node
	expressionNode()
}

type Base struct {
	span sasserror.Span
}

func (b Base) Span() sasserror.Span { return b.span }

// Stylesheet is the root of a parsed file.
type Stylesheet struct {
	Base
	Statements []Statement
}

// Comment is a `/* */` comment; the lexer discards `//` comments, so
// they never produce one. Loud (`/*! */`) comments are preserved into
// CSS output; all other comments are dropped during evaluation.
type Comment struct {
	Base
	Text string
	Loud bool
	Line bool // true for `//`
}

func (*Comment) statementNode() {}

// StyleRule is a selector block: `<selector> { ... }`.
type StyleRule struct {
	Base
	SelectorText  string // raw, pre-interpolation-resolution text (may contain #{})
	Selector      Expression
	Body          []Statement
}

func (*StyleRule) statementNode() {}

// Declaration is a `property: value;` pair, possibly with a nested
// block (`font: { family: sans; size: 1em; }`).
type Declaration struct {
	Base
	Property Expression // may itself contain interpolation
	Value    Expression // nil when only Body is present
	Body     []Statement
}

func (*Declaration) statementNode() {}

// VariableDecl is `$name: value [!default] [!global];`.
type VariableDecl struct {
	Base
	Name      string
	Value     Expression
	Default   bool
	Global    bool
	Namespace string // for `module.$name: value`; the parser never sets it
}

func (*VariableDecl) statementNode() {}

// AtRule is a generic, unrecognized at-rule passed through to CSS
// output verbatim (e.g. `@font-face`, `@keyframes`, `@media`, vendor
// at-rules), mirroring ast.AtRule's catch-all shape in the teacher.
type AtRule struct {
	Base
	Name   string
	Params Expression
	Body   []Statement // nil for statement-form at-rules (`@charset "utf-8";`)
}

func (*AtRule) statementNode() {}

// IfStatement is `@if cond { } @else if cond { } @else { }`.
type IfStatement struct {
	Base
	Condition Expression
	Body      []Statement
	Else      *IfStatement // nil, or the @else clause (Condition nil means plain @else)
}

func (*IfStatement) statementNode() {}

// EachStatement is `@each $a, $b in <list-or-map expr> { }`.
type EachStatement struct {
	Base
	Variables []string
	List      Expression
	Body      []Statement
}

func (*EachStatement) statementNode() {}

// ForStatement is `@for $i from <expr> through|to <expr> { }`.
type ForStatement struct {
	Base
	Variable  string
	From      Expression
	To        Expression
	Exclusive bool // true for "to", false for "through"
	Body      []Statement
}

func (*ForStatement) statementNode() {}

// WhileStatement is `@while cond { }`.
type WhileStatement struct {
	Base
	Condition Expression
	Body      []Statement
}

func (*WhileStatement) statementNode() {}

// Param is one entry of a function/mixin ArgumentDeclaration.
type Param struct {
	Name    string
	Default Expression // nil if no default
	Rest    bool        // true for `$args...`
}

// FunctionDecl is `@function name($args...) { }`.
type FunctionDecl struct {
	Base
	Name   string
	Params []Param
	Body   []Statement
}

func (*FunctionDecl) statementNode() {}

// MixinDecl is `@mixin name($args...) { }`.
type MixinDecl struct {
	Base
	Name      string
	Params    []Param
	Body      []Statement
	HasContent bool // true if body references @content
}

func (*MixinDecl) statementNode() {}

// IncludeStatement is `@include name($args...) { content-block }`.
type IncludeStatement struct {
	Base
	Namespace string
	Name      string
	Args      []Argument
	Content   []Statement // nil if no content block supplied
	ContentParams []Param
}

func (*IncludeStatement) statementNode() {}

// ContentStatement is the bare `@content($args...);` marker inside a
// mixin body.
type ContentStatement struct {
	Base
	Args []Argument
}

func (*ContentStatement) statementNode() {}

// ReturnStatement is `@return <expr>;`, valid only inside @function.
type ReturnStatement struct {
	Base
	Value Expression
}

func (*ReturnStatement) statementNode() {}

// Argument is one positional or named argument in a call.
type Argument struct {
	Name  string // empty for positional
	Value Expression
	Rest  bool // `...`-expanded argument
}

// UseStatement is `@use "<url>" [as <ns>|*] [with (...)]`.
type UseStatement struct {
	Base
	URL         string
	Namespace   string // "" means derive from URL, "*" means global
	Configuration []Argument
}

func (*UseStatement) statementNode() {}

// ForwardStatement is `@forward "<url>" [as <prefix>-*] [show|hide ...] [with (...)]`.
type ForwardStatement struct {
	Base
	URL           string
	Prefix        string
	Show          []string
	Hide          []string
	Configuration []Argument
}

func (*ForwardStatement) statementNode() {}

// ImportStatement is `@import "<url>", ...;` (the legacy global-scope
// import, distinct from @use/@forward).
type ImportStatement struct {
	Base
	URLs []string
}

func (*ImportStatement) statementNode() {}

// ExtendStatement is `@extend <selector> [!optional];`.
type ExtendStatement struct {
	Base
	SelectorText string
	Optional     bool
}

func (*ExtendStatement) statementNode() {}

// WarnStatement/ErrorStatement/DebugStatement are `@warn`, `@error`,
// `@debug` directives.
type WarnStatement struct {
	Base
	Value Expression
}

func (*WarnStatement) statementNode() {}

type ErrorStatement struct {
	Base
	Value Expression
}

func (*ErrorStatement) statementNode() {}

type DebugStatement struct {
	Base
	Value Expression
}

func (*DebugStatement) statementNode() {}

// AtRootStatement is `@at-root [(query)] { }`.
type AtRootStatement struct {
	Base
	Query Expression
	Body  []Statement
}

func (*AtRootStatement) statementNode() {}
