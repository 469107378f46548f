// Package selectorfn implements the `selector.*` built-in module. It
// has no teacher analogue (LESS has no selector-introspection
// functions), so it's grounded directly on the selector package's own
// parse/unify/specificity primitives (selector/selector.go,
// selector/unify.go, selector/specificity.go) rather than on
// functions/registry.go.
package selectorfn

import (
	"strings"

	"github.com/go-sass/sass/builtin"
	"github.com/go-sass/sass/sasserror"
	"github.com/go-sass/sass/selector"
	"github.com/go-sass/sass/value"
)

// Register adds every selector.* function to r.
func Register(r *builtin.Registry) {
	r.RegisterModule("selector", "nest", nestFn, false)
	r.RegisterModule("selector", "append", appendFn, false)
	r.RegisterModule("selector", "extend", extendFn, false)
	r.RegisterModule("selector", "replace", replaceFn, false)
	r.RegisterModule("selector", "unify", unifyFn, false)
	r.RegisterModule("selector", "is-superselector", isSuperselectorFn, false)
	r.RegisterModule("selector", "simple-selectors", simpleSelectorsFn, false)
	r.RegisterModule("selector", "parse", parseFn, false)
}

func selectorArg(a *builtin.Args, i int) (*selector.List, error) {
	v := a.Get(i, nil)
	if v == nil {
		return nil, sasserror.Arity(a.Span, "selector argument required")
	}
	return coerceList(v, a.Span)
}

// coerceList accepts either a string or a comma/space list of strings,
// the same "selector or list of selectors" input Sass's selector
// functions take, and parses it into a selector.List.
func coerceList(v *value.Value, span sasserror.Span) (*selector.List, error) {
	text, err := selectorText(v, span)
	if err != nil {
		return nil, err
	}
	list, err := selector.Parse(text)
	if err != nil {
		return nil, sasserror.Syntax(span, "invalid selector: %v", err)
	}
	return list, nil
}

func selectorText(v *value.Value, span sasserror.Span) (string, error) {
	switch v.Kind {
	case value.KindString:
		return v.Str, nil
	case value.KindList:
		parts := make([]string, len(v.List))
		for i, item := range v.List {
			s, err := selectorText(item, span)
			if err != nil {
				return "", err
			}
			parts[i] = s
		}
		sep := ", "
		if v.Sep == value.SepSpace {
			sep = " "
		}
		return strings.Join(parts, sep), nil
	default:
		return "", sasserror.Type(span, "expected a string or list of selectors")
	}
}

func listToValue(l *selector.List) *value.Value {
	items := make([]*value.Value, len(l.Complex))
	for i, c := range l.Complex {
		items[i] = value.QuotedStr(c.String())
	}
	return value.NewList(items, value.SepComma, false)
}

func nestFn(a *builtin.Args) (*value.Value, error) {
	if len(a.Positional) == 0 {
		return nil, sasserror.Arity(a.Span, "selector.nest() requires at least one argument")
	}
	result, err := selectorArg(a, 0)
	if err != nil {
		return nil, err
	}
	for i := 1; i < len(a.Positional); i++ {
		child, err := selectorArg(a, i)
		if err != nil {
			return nil, err
		}
		result = nestLists(result, child)
	}
	return listToValue(result), nil
}

func nestLists(parent, child *selector.List) *selector.List {
	out := &selector.List{}
	for _, p := range parent.Complex {
		for _, c := range child.Complex {
			out.Complex = append(out.Complex, selector.ResolveParent(p, c))
		}
	}
	return out
}

func appendFn(a *builtin.Args) (*value.Value, error) {
	if len(a.Positional) == 0 {
		return nil, sasserror.Arity(a.Span, "selector.append() requires at least one argument")
	}
	result, err := selectorArg(a, 0)
	if err != nil {
		return nil, err
	}
	for i := 1; i < len(a.Positional); i++ {
		next, err := selectorArg(a, i)
		if err != nil {
			return nil, err
		}
		result = concatLists(result, next)
	}
	return listToValue(result), nil
}

// concatLists implements selector.append's compound-gluing semantics
// (`selector.append(".a", ".b")` => `.a.b`, not `.a .b`), by merging
// the child's leading compound directly onto the parent's trailing one.
func concatLists(parent, child *selector.List) *selector.List {
	out := &selector.List{}
	for _, p := range parent.Complex {
		for _, c := range child.Complex {
			out.Complex = append(out.Complex, gluePrefix(p, c))
		}
	}
	return out
}

func gluePrefix(parent, child *selector.Complex) *selector.Complex {
	if len(child.Components) == 0 {
		return parent
	}
	merged := &selector.Complex{LeadingCombinator: parent.LeadingCombinator}
	merged.Components = append(merged.Components, parent.Components...)
	head := child.Components[0]
	if n := len(merged.Components); n > 0 && merged.Components[n-1].Compound != nil && head.Compound != nil {
		glued := &selector.Compound{Simple: append(append([]selector.Simple(nil), merged.Components[n-1].Compound.Simple...), head.Compound.Simple...)}
		merged.Components[n-1] = selector.Component{Compound: glued}
		merged.Components = append(merged.Components, child.Components[1:]...)
	} else {
		merged.Components = append(merged.Components, child.Components...)
	}
	return merged
}

func extendFn(a *builtin.Args) (*value.Value, error) {
	base, err := selectorArg(a, 0)
	if err != nil {
		return nil, err
	}
	target, err := selectorArg(a, 1)
	if err != nil {
		return nil, err
	}
	source, err := selectorArg(a, 2)
	if err != nil {
		return nil, err
	}
	return listToValue(applyExtend(base, target, source, false)), nil
}

func replaceFn(a *builtin.Args) (*value.Value, error) {
	base, err := selectorArg(a, 0)
	if err != nil {
		return nil, err
	}
	target, err := selectorArg(a, 1)
	if err != nil {
		return nil, err
	}
	source, err := selectorArg(a, 2)
	if err != nil {
		return nil, err
	}
	return listToValue(applyExtend(base, target, source, true)), nil
}

// applyExtend implements the functional (non-@extend-store) form of
// selector extension: for each complex in base that contains a
// compound-component matching every simple selector of target, splice
// in source in its place (replace=true drops the original match,
// replace=false keeps both).
func applyExtend(base, target, source *selector.List, replace bool) *selector.List {
	out := &selector.List{}
	for _, complex := range base.Complex {
		matched := false
		for _, comp := range complex.Components {
			if comp.Compound != nil && containsAllSimples(comp.Compound, target) {
				matched = true
				break
			}
		}
		if !matched {
			out.Complex = append(out.Complex, complex)
			continue
		}
		if !replace {
			out.Complex = append(out.Complex, complex)
		}
		out.Complex = append(out.Complex, source.Complex...)
	}
	return out
}

func containsAllSimples(compound *selector.Compound, target *selector.List) bool {
	for _, complex := range target.Complex {
		if len(complex.Components) != 1 || complex.Components[0].Compound == nil {
			continue
		}
		want := complex.Components[0].Compound
		ok := true
		for _, w := range want.Simple {
			found := false
			for _, s := range compound.Simple {
				if s.String() == w.String() {
					found = true
					break
				}
			}
			if !found {
				ok = false
				break
			}
		}
		if ok {
			return true
		}
	}
	return false
}

func unifyFn(a *builtin.Args) (*value.Value, error) {
	l1, err := selectorArg(a, 0)
	if err != nil {
		return nil, err
	}
	l2, err := selectorArg(a, 1)
	if err != nil {
		return nil, err
	}
	out := &selector.List{}
	for _, c1 := range l1.Complex {
		for _, c2 := range l2.Complex {
			if len(c1.Components) != 1 || len(c2.Components) != 1 ||
				c1.Components[0].Compound == nil || c2.Components[0].Compound == nil {
				continue
			}
			unified, ok := selector.UnifyCompounds(c1.Components[0].Compound, c2.Components[0].Compound)
			if !ok {
				continue
			}
			out.Complex = append(out.Complex, &selector.Complex{Components: []selector.Component{{Compound: unified}}})
		}
	}
	if len(out.Complex) == 0 {
		return value.Null, nil
	}
	return listToValue(out), nil
}

func isSuperselectorFn(a *builtin.Args) (*value.Value, error) {
	super, err := selectorArg(a, 0)
	if err != nil {
		return nil, err
	}
	sub, err := selectorArg(a, 1)
	if err != nil {
		return nil, err
	}
	for _, subComplex := range sub.Complex {
		covered := false
		for _, superComplex := range super.Complex {
			if isComplexSuperselector(superComplex, subComplex) {
				covered = true
				break
			}
		}
		if !covered {
			return value.False, nil
		}
	}
	return value.True, nil
}

// isComplexSuperselector approximates Sass's superselector relation
// for the common single-compound case (no combinators): super matches
// a superset of what sub matches when every simple selector super
// requires is also required by sub.
func isComplexSuperselector(super, sub *selector.Complex) bool {
	if len(super.Components) != 1 || len(sub.Components) != 1 ||
		super.Components[0].Compound == nil || sub.Components[0].Compound == nil {
		return super.String() == sub.String()
	}
	superSimples := super.Components[0].Compound.Simple
	subSimples := sub.Components[0].Compound.Simple
	for _, s := range superSimples {
		found := false
		for _, o := range subSimples {
			if s.String() == o.String() {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func simpleSelectorsFn(a *builtin.Args) (*value.Value, error) {
	v := a.Get(0, nil)
	if v == nil || v.Kind != value.KindString {
		return nil, sasserror.Type(a.Span, "argument must be a compound selector string")
	}
	list, err := selector.Parse(v.Str)
	if err != nil || len(list.Complex) != 1 || len(list.Complex[0].Components) != 1 ||
		list.Complex[0].Components[0].Compound == nil {
		return nil, sasserror.Syntax(a.Span, "expected a single compound selector")
	}
	simples := list.Complex[0].Components[0].Compound.Simple
	items := make([]*value.Value, len(simples))
	for i, s := range simples {
		items[i] = value.QuotedStr(s.String())
	}
	return value.NewList(items, value.SepComma, false), nil
}

func parseFn(a *builtin.Args) (*value.Value, error) {
	list, err := selectorArg(a, 0)
	if err != nil {
		return nil, err
	}
	return listToValue(list), nil
}
