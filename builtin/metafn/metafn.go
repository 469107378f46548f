// Package metafn implements the `meta.*` introspection module. It has
// no teacher analogue; the scope/function-existence queries are
// grounded on the builtin.Context interface the evaluator implements,
// generalizing the way the teacher's expression package threads a
// variable-lookup closure (expression/value.go) through evaluation
// instead of a global map.
package metafn

import (
	"fmt"
	"sort"
	"strings"

	"github.com/go-sass/sass/builtin"
	"github.com/go-sass/sass/sasserror"
	"github.com/go-sass/sass/value"
)

// Register adds every meta.* function to r.
func Register(r *builtin.Registry) {
	r.RegisterModule("meta", "type-of", typeOfFn, true)
	r.RegisterModule("meta", "inspect", inspectFn, true)
	r.RegisterModule("meta", "feature-exists", featureExistsFn, true)
	r.RegisterModule("meta", "variable-exists", variableExistsFn, true)
	r.RegisterModule("meta", "global-variable-exists", globalVariableExistsFn, true)
	r.RegisterModule("meta", "function-exists", functionExistsFn, true)
	r.RegisterModule("meta", "mixin-exists", mixinExistsFn, true)
	r.RegisterModule("meta", "content-exists", contentExistsFn, true)
	r.RegisterModule("meta", "calc-args", calcArgsFn, false)
	r.RegisterModule("meta", "calc-name", calcNameFn, false)
	r.RegisterModule("meta", "get-function", getFunctionFn, true)
	r.RegisterModule("meta", "call", callFn, true)
	r.RegisterModule("meta", "module-variables", moduleVariablesFn, false)
	r.RegisterModule("meta", "module-functions", moduleFunctionsFn, false)
	r.RegisterGlobal("if", ifFn)
}

// ifFn is Sass's global if($condition, $if-true, $if-false): unlike
// @if, both branches are ordinary arguments and are evaluated before
// the call, same as any other function call's argument list.
func ifFn(a *builtin.Args) (*value.Value, error) {
	cond := a.Get(0, value.Null)
	if cond.IsTruthy() {
		return a.Get(1, value.Null), nil
	}
	return a.Get(2, value.Null), nil
}

func typeOfFn(a *builtin.Args) (*value.Value, error) {
	v := a.Get(0, value.Null)
	return value.QuotedStr(typeName(v)), nil
}

func typeName(v *value.Value) string {
	switch v.Kind {
	case value.KindNull:
		return "null"
	case value.KindBoolean:
		return "bool"
	case value.KindNumber:
		return "number"
	case value.KindString:
		return "string"
	case value.KindColor:
		return "color"
	case value.KindList, value.KindArgList:
		return "list"
	case value.KindMap:
		return "map"
	case value.KindFunction:
		return "function"
	case value.KindCalculation:
		return "calculation"
	default:
		return "unknown"
	}
}

func inspectFn(a *builtin.Args) (*value.Value, error) {
	v := a.Get(0, value.Null)
	return value.QuotedStr(inspect(v)), nil
}

// inspect renders a value the way Sass's debug output does: quoted
// strings with their quotes, unquoted strings bare, nulls as the
// literal "null", maps as "(k: v, ...)".
func inspect(v *value.Value) string {
	switch v.Kind {
	case value.KindNull:
		return "null"
	case value.KindString:
		if v.Quoted {
			return `"` + v.Str + `"`
		}
		return v.Str
	case value.KindList, value.KindArgList:
		parts := make([]string, len(v.List))
		for i, item := range v.List {
			parts[i] = inspect(item)
		}
		sep := ", "
		if v.Sep == value.SepSpace {
			sep = " "
		}
		body := strings.Join(parts, sep)
		if v.Bracket {
			return "[" + body + "]"
		}
		if len(v.List) == 1 && v.Sep == value.SepComma {
			return "(" + body + ",)"
		}
		return body
	case value.KindMap:
		parts := make([]string, len(v.MapKeys))
		for i, k := range v.MapKeys {
			parts[i] = inspect(k) + ": " + inspect(v.MapValues[i])
		}
		return "(" + strings.Join(parts, ", ") + ")"
	default:
		return v.String()
	}
}

// featureExistsFn only answers for the fixed set of feature names this
// compiler actually supports; any name it doesn't recognize reads as
// not-present rather than erroring, matching dart-sass's behavior for
// a forward-compatible feature query.
func featureExistsFn(a *builtin.Args) (*value.Value, error) {
	name, err := requireString(a, 0)
	if err != nil {
		return nil, err
	}
	switch name {
	case "global-variable-shadowing", "extend-selector-pseudoclass", "units-level-3", "at-error", "module-system":
		return value.True, nil
	default:
		return value.False, nil
	}
}

func requireString(a *builtin.Args, i int) (string, error) {
	v := a.Get(i, nil)
	if v == nil || v.Kind != value.KindString {
		return "", sasserror.Type(a.Span, "argument must be a string")
	}
	return v.Str, nil
}

func requireContext(a *builtin.Args) (builtin.Context, error) {
	if a.Context == nil {
		return nil, sasserror.Internal("meta function called without an evaluation context")
	}
	return a.Context, nil
}

func variableExistsFn(a *builtin.Args) (*value.Value, error) {
	name, err := requireString(a, 0)
	if err != nil {
		return nil, err
	}
	ctx, err := requireContext(a)
	if err != nil {
		return nil, err
	}
	return value.Bool(ctx.HasVariable(name)), nil
}

func globalVariableExistsFn(a *builtin.Args) (*value.Value, error) {
	name, err := requireString(a, 0)
	if err != nil {
		return nil, err
	}
	ctx, err := requireContext(a)
	if err != nil {
		return nil, err
	}
	return value.Bool(ctx.HasGlobalVariable(name)), nil
}

func functionExistsFn(a *builtin.Args) (*value.Value, error) {
	name, err := requireString(a, 0)
	if err != nil {
		return nil, err
	}
	ctx, err := requireContext(a)
	if err != nil {
		return nil, err
	}
	return value.Bool(ctx.HasFunction(name)), nil
}

func mixinExistsFn(a *builtin.Args) (*value.Value, error) {
	name, err := requireString(a, 0)
	if err != nil {
		return nil, err
	}
	ctx, err := requireContext(a)
	if err != nil {
		return nil, err
	}
	return value.Bool(ctx.HasMixin(name)), nil
}

func contentExistsFn(a *builtin.Args) (*value.Value, error) {
	ctx, err := requireContext(a)
	if err != nil {
		return nil, err
	}
	return value.Bool(ctx.HasContentBlock()), nil
}

func calcArgsFn(a *builtin.Args) (*value.Value, error) {
	v := a.Get(0, nil)
	if v == nil || v.Kind != value.KindCalculation {
		return nil, sasserror.Type(a.Span, "argument must be a calculation")
	}
	items := make([]*value.Value, len(v.Calc.Args))
	for i, arg := range v.Calc.Args {
		items[i] = calcArgToValue(arg)
	}
	return value.NewList(items, value.SepComma, false), nil
}

func calcArgToValue(arg value.CalcArg) *value.Value {
	switch {
	case arg.Number != nil:
		return arg.Number
	case arg.Calculation != nil:
		return &value.Value{Kind: value.KindCalculation, Calc: arg.Calculation}
	case arg.Operation != nil:
		return value.Str(fmt.Sprintf("%s %c %s", calcArgToValue(arg.Operation.Left).String(), arg.Operation.Op, calcArgToValue(arg.Operation.Right).String()))
	default:
		return value.Str(arg.Str)
	}
}

func calcNameFn(a *builtin.Args) (*value.Value, error) {
	v := a.Get(0, nil)
	if v == nil || v.Kind != value.KindCalculation {
		return nil, sasserror.Type(a.Span, "argument must be a calculation")
	}
	return value.QuotedStr(v.Calc.Name), nil
}

func getFunctionFn(a *builtin.Args) (*value.Value, error) {
	name, err := requireString(a, 0)
	if err != nil {
		return nil, err
	}
	return &value.Value{Kind: value.KindFunction, Callable: &value.Callable{Name: name}}, nil
}

func callFn(a *builtin.Args) (*value.Value, error) {
	fn := a.Get(0, nil)
	if fn == nil || fn.Kind != value.KindFunction {
		return nil, sasserror.Type(a.Span, "argument must be a function reference")
	}
	ctx, err := requireContext(a)
	if err != nil {
		return nil, err
	}
	rest := &builtin.Args{Positional: a.Positional[1:], Named: a.Named, Span: a.Span, Context: a.Context}
	return ctx.Call(fn, rest)
}

func moduleVariablesFn(a *builtin.Args) (*value.Value, error) {
	namespace, err := requireString(a, 0)
	if err != nil {
		return nil, err
	}
	ctx, err := requireContext(a)
	if err != nil {
		return nil, err
	}
	names := ctx.ModuleVariableNames(namespace)
	sort.Strings(names)
	keys := make([]*value.Value, len(names))
	for i, n := range names {
		keys[i] = value.QuotedStr(n)
	}
	return &value.Value{Kind: value.KindMap, MapKeys: keys, MapValues: keys}, nil
}

func moduleFunctionsFn(a *builtin.Args) (*value.Value, error) {
	namespace, err := requireString(a, 0)
	if err != nil {
		return nil, err
	}
	ctx, err := requireContext(a)
	if err != nil {
		return nil, err
	}
	names := ctx.ModuleFunctionNames(namespace)
	sort.Strings(names)
	items := make([]*value.Value, len(names))
	for i, n := range names {
		items[i] = &value.Value{Kind: value.KindFunction, Callable: &value.Callable{Name: n}}
	}
	return value.NewList(items, value.SepComma, false), nil
}
