// Package listfn implements the `list.*` built-in module. Grounded on
// the teacher's functions/registry.go list section (Length/Extract/
// Range, each a thin string-indexing wrapper), generalized onto
// value.Value's List/Sep/Bracket fields, since Sass lists carry their
// separator and bracket-ness as part of their identity rather than
// being plain comma-joined text.
package listfn

import (
	"github.com/go-sass/sass/builtin"
	"github.com/go-sass/sass/sasserror"
	"github.com/go-sass/sass/value"
)

// Register adds every list.* function to r.
func Register(r *builtin.Registry) {
	r.RegisterModule("list", "length", lengthFn, true)
	r.RegisterModule("list", "nth", nthFn, true)
	r.RegisterModule("list", "set-nth", setNthFn, true)
	r.RegisterModule("list", "join", joinFn, true)
	r.RegisterModule("list", "append", appendFn, true)
	r.RegisterModule("list", "zip", zipFn, true)
	r.RegisterModule("list", "index", indexFn, true)
	r.RegisterModule("list", "separator", separatorFn, true)
	r.RegisterModule("list", "is-bracketed", isBracketedFn, true)
}

// asList treats any non-list value as a single-element list, matching
// Sass's "everything is a list" rule.
func asList(v *value.Value) []*value.Value {
	if v.Kind == value.KindList {
		return v.List
	}
	return []*value.Value{v}
}

func lengthFn(a *builtin.Args) (*value.Value, error) {
	v := a.Get(0, nil)
	if v == nil {
		return nil, sasserror.Arity(a.Span, "list.length() requires an argument")
	}
	if v.Kind == value.KindMap {
		return value.Num(float64(len(v.MapKeys))), nil
	}
	return value.Num(float64(len(asList(v)))), nil
}

func resolveIndex(n *value.Value, length int, span sasserror.Span) (int, error) {
	if n == nil || n.Kind != value.KindNumber || n.HasUnits() {
		return 0, sasserror.Type(span, "$n must be a unitless number")
	}
	idx := int(n.Number)
	if idx < 0 {
		idx = length + idx + 1
	}
	if idx < 1 || idx > length {
		return 0, sasserror.Range(span, "invalid index %d for a list of length %d", idx, length)
	}
	return idx - 1, nil
}

func nthFn(a *builtin.Args) (*value.Value, error) {
	list := asList(a.Get(0, value.Null))
	idx, err := resolveIndex(a.Get(1, nil), len(list), a.Span)
	if err != nil {
		return nil, err
	}
	return list[idx], nil
}

func setNthFn(a *builtin.Args) (*value.Value, error) {
	orig := a.Get(0, value.Null)
	list := append([]*value.Value(nil), asList(orig)...)
	idx, err := resolveIndex(a.Get(1, nil), len(list), a.Span)
	if err != nil {
		return nil, err
	}
	list[idx] = a.Get(2, value.Null)
	sep := value.SepSpace
	bracket := false
	if orig.Kind == value.KindList {
		sep = orig.Sep
		bracket = orig.Bracket
	}
	return value.NewList(list, sep, bracket), nil
}

func joinFn(a *builtin.Args) (*value.Value, error) {
	l1 := asList(a.Get(0, value.Null))
	l2 := asList(a.Get(1, value.Null))
	sep := value.SepSpace
	if sepArg := a.NamedOr("separator", nil); sepArg != nil && sepArg.Kind == value.KindString {
		switch sepArg.Str {
		case "comma":
			sep = value.SepComma
		case "space":
			sep = value.SepSpace
		case "auto":
			sep = inferSeparator(a.Get(0, value.Null), a.Get(1, value.Null))
		}
	} else {
		sep = inferSeparator(a.Get(0, value.Null), a.Get(1, value.Null))
	}
	bracket := false
	if first := a.Get(0, value.Null); first.Kind == value.KindList {
		bracket = first.Bracket
	}
	combined := append(append([]*value.Value(nil), l1...), l2...)
	return value.NewList(combined, sep, bracket), nil
}

func inferSeparator(a, b *value.Value) value.Separator {
	if a.Kind == value.KindList && a.Sep != value.SepUndecided {
		return a.Sep
	}
	if b.Kind == value.KindList && b.Sep != value.SepUndecided {
		return b.Sep
	}
	return value.SepSpace
}

func appendFn(a *builtin.Args) (*value.Value, error) {
	orig := a.Get(0, value.Null)
	list := append([]*value.Value(nil), asList(orig)...)
	list = append(list, a.Get(1, value.Null))
	sep := value.SepSpace
	bracket := false
	if orig.Kind == value.KindList {
		sep = orig.Sep
		bracket = orig.Bracket
	}
	if sepArg := a.NamedOr("separator", nil); sepArg != nil && sepArg.Kind == value.KindString {
		if sepArg.Str == "comma" {
			sep = value.SepComma
		} else if sepArg.Str == "space" {
			sep = value.SepSpace
		}
	}
	return value.NewList(list, sep, bracket), nil
}

func zipFn(a *builtin.Args) (*value.Value, error) {
	lists := make([][]*value.Value, len(a.Positional))
	minLen := -1
	for i, v := range a.Positional {
		lists[i] = asList(v)
		if minLen == -1 || len(lists[i]) < minLen {
			minLen = len(lists[i])
		}
	}
	if minLen < 0 {
		minLen = 0
	}
	rows := make([]*value.Value, minLen)
	for i := 0; i < minLen; i++ {
		row := make([]*value.Value, len(lists))
		for j := range lists {
			row[j] = lists[j][i]
		}
		rows[i] = value.NewList(row, value.SepSpace, false)
	}
	return value.NewList(rows, value.SepComma, false), nil
}

func indexFn(a *builtin.Args) (*value.Value, error) {
	list := asList(a.Get(0, value.Null))
	target := a.Get(1, value.Null)
	for i, v := range list {
		if value.Equal(v, target) {
			return value.Num(float64(i + 1)), nil
		}
	}
	return value.Null, nil
}

func separatorFn(a *builtin.Args) (*value.Value, error) {
	v := a.Get(0, value.Null)
	if v.Kind != value.KindList || v.Sep == value.SepUndecided || len(v.List) < 2 {
		return value.QuotedStr("space"), nil
	}
	if v.Sep == value.SepComma {
		return value.QuotedStr("comma"), nil
	}
	return value.QuotedStr("space"), nil
}

func isBracketedFn(a *builtin.Args) (*value.Value, error) {
	v := a.Get(0, value.Null)
	return value.Bool(v.Kind == value.KindList && v.Bracket), nil
}
