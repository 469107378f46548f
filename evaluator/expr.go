package evaluator

import (
	"strings"

	"github.com/go-sass/sass/ast"
	"github.com/go-sass/sass/sasserror"
	"github.com/go-sass/sass/value"
)

// evalExpr reduces a SassScript expression to a runtime value.Value.
func (e *Evaluator) evalExpr(expr ast.Expression) (*value.Value, error) {
	switch x := expr.(type) {
	case *ast.NumberLit:
		return value.NumUnit(x.Value, x.Unit), nil
	case *ast.StringLit:
		return e.evalStringLit(x)
	case *ast.BoolLit:
		return value.Bool(x.Value), nil
	case *ast.NullLit:
		return value.Null, nil
	case *ast.ColorLit:
		c, err := value.ParseHex(x.Hex)
		if err != nil {
			return nil, sasserror.Syntax(x.Span(), "invalid color literal %q: %v", x.Hex, err)
		}
		return &value.Value{Kind: value.KindColor, Color: c}, nil
	case *ast.VariableRef:
		return e.evalVariableRef(x)
	case *ast.Interpolation:
		v, err := e.evalExpr(x.Expr)
		if err != nil {
			return nil, err
		}
		return value.Str(e.textOf(v)), nil
	case *ast.ListExpr:
		return e.evalListExpr(x)
	case *ast.MapExpr:
		return e.evalMapExpr(x)
	case *ast.FunctionCall:
		return e.evalCall(x.Namespace, x.Name, x.Args, x.Span())
	case *ast.BinaryExpr:
		return e.evalBinary(x)
	case *ast.UnaryExpr:
		return e.evalUnary(x)
	case *ast.ParenExpr:
		return e.evalExpr(x.Inner)
	case *ast.SelectorRef:
		return e.evalSelectorRef(x)
	default:
		return nil, sasserror.Internal("unhandled expression type %T", expr)
	}
}

func (e *Evaluator) evalVariableRef(ref *ast.VariableRef) (*value.Value, error) {
	if ref.Namespace != "" {
		view, ok := e.namespaces[ref.Namespace]
		if !ok {
			return nil, sasserror.ModuleLoadFailure(ref.Span(), "there is no module with namespace %q", ref.Namespace)
		}
		v, ok := view.Variable(ref.Name)
		if !ok {
			return nil, sasserror.UndefinedVariable(ref.Span(), ref.Namespace+"."+ref.Name)
		}
		return v, nil
	}
	for _, view := range e.globalViews {
		if v, ok := view.Variable(ref.Name); ok {
			return v, nil
		}
	}
	if v, ok := e.env.GetVariable(ref.Name); ok {
		return v, nil
	}
	return nil, sasserror.UndefinedVariable(ref.Span(), ref.Name)
}

// evalStringLit evaluates a (possibly interpolated) string literal.
// Interpolated chunks of a quoted string substitute their unquoted
// textual form, matching Sass's `"a#{1 + 1}b"` -> `"a2b"` behavior.
func (e *Evaluator) evalStringLit(lit *ast.StringLit) (*value.Value, error) {
	if lit.Chunks == nil {
		return &value.Value{Kind: value.KindString, Str: lit.Text, Quoted: lit.Quoted}, nil
	}
	var b strings.Builder
	for _, chunk := range lit.Chunks {
		switch c := chunk.(type) {
		case *ast.StringLit:
			if c.Chunks == nil {
				b.WriteString(c.Text)
				continue
			}
			v, err := e.evalStringLit(c)
			if err != nil {
				return nil, err
			}
			b.WriteString(e.textOf(v))
		case *ast.Interpolation:
			v, err := e.evalExpr(c.Expr)
			if err != nil {
				return nil, err
			}
			b.WriteString(e.textOf(v))
		default:
			v, err := e.evalExpr(chunk)
			if err != nil {
				return nil, err
			}
			b.WriteString(e.textOf(v))
		}
	}
	return &value.Value{Kind: value.KindString, Str: b.String(), Quoted: lit.Quoted}, nil
}

func (e *Evaluator) evalListExpr(list *ast.ListExpr) (*value.Value, error) {
	items := make([]*value.Value, len(list.Items))
	for i, item := range list.Items {
		v, err := e.evalExpr(item)
		if err != nil {
			return nil, err
		}
		items[i] = v
	}
	sep := value.SepSpace
	if list.Comma {
		sep = value.SepComma
	}
	return value.NewList(items, sep, list.Bracketed), nil
}

func (e *Evaluator) evalMapExpr(m *ast.MapExpr) (*value.Value, error) {
	out := &value.Value{Kind: value.KindMap}
	for i, keyExpr := range m.Keys {
		k, err := e.evalExpr(keyExpr)
		if err != nil {
			return nil, err
		}
		v, err := e.evalExpr(m.Values[i])
		if err != nil {
			return nil, err
		}
		out = value.MapSet(out, k, v)
	}
	return out, nil
}

func (e *Evaluator) evalSelectorRef(ref *ast.SelectorRef) (*value.Value, error) {
	if len(e.selectorStack) == 0 {
		return nil, sasserror.Syntax(ref.Span(), "top-level selector may not contain a parent selector \"&\"")
	}
	return value.Str(e.selectorStack[len(e.selectorStack)-1].String()), nil
}

func (e *Evaluator) evalUnary(u *ast.UnaryExpr) (*value.Value, error) {
	v, err := e.evalExpr(u.Operand)
	if err != nil {
		return nil, err
	}
	switch u.Op {
	case "-":
		return value.Negate(v, u.Span())
	case "+":
		if v.Kind != value.KindNumber {
			return nil, sasserror.Type(u.Span(), "unary + requires a number, got %s", v.String())
		}
		return v, nil
	case "not":
		return value.Bool(!v.IsTruthy()), nil
	default:
		return nil, sasserror.Internal("unknown unary operator %q", u.Op)
	}
}

func (e *Evaluator) evalBinary(b *ast.BinaryExpr) (*value.Value, error) {
	if b.Op == "and" {
		left, err := e.evalExpr(b.Left)
		if err != nil {
			return nil, err
		}
		if !left.IsTruthy() {
			return left, nil
		}
		return e.evalExpr(b.Right)
	}
	if b.Op == "or" {
		left, err := e.evalExpr(b.Left)
		if err != nil {
			return nil, err
		}
		if left.IsTruthy() {
			return left, nil
		}
		return e.evalExpr(b.Right)
	}

	left, err := e.evalExpr(b.Left)
	if err != nil {
		return nil, err
	}
	right, err := e.evalExpr(b.Right)
	if err != nil {
		return nil, err
	}

	switch b.Op {
	case "+":
		return value.Add(left, right, b.Span())
	case "-":
		return value.Subtract(left, right, b.Span())
	case "*":
		return value.Multiply(left, right, b.Span())
	case "/":
		return value.Divide(left, right, b.Span())
	case "%":
		return value.Modulo(left, right, b.Span())
	case "==":
		return value.Bool(value.Equal(left, right)), nil
	case "!=":
		return value.Bool(!value.Equal(left, right)), nil
	case "<", "<=", ">", ">=":
		cmp, err := value.Compare(left, right, b.Span())
		if err != nil {
			return nil, err
		}
		switch b.Op {
		case "<":
			return value.Bool(cmp < 0), nil
		case "<=":
			return value.Bool(cmp <= 0), nil
		case ">":
			return value.Bool(cmp > 0), nil
		default:
			return value.Bool(cmp >= 0), nil
		}
	default:
		return nil, sasserror.Internal("unknown binary operator %q", b.Op)
	}
}
