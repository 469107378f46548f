// Package mapfn implements the `map.*` built-in module, operating on
// value.Value's MapKeys/MapValues parallel slices. There is no teacher
// precedent (LESS has no map literal), so this is grounded directly on
// value.MapSet/value.SortedMapKeys (value/value.go), keeping the same
// "insertion order preserved, update-in-place on key match" semantics
// those helpers already implement.
package mapfn

import (
	"github.com/go-sass/sass/builtin"
	"github.com/go-sass/sass/sasserror"
	"github.com/go-sass/sass/value"
)

// Register adds every map.* function to r.
func Register(r *builtin.Registry) {
	r.RegisterModule("map", "get", getFn, true)
	r.RegisterModule("map", "set", setFn, false)
	r.RegisterModule("map", "merge", mergeFn, true)
	r.RegisterModule("map", "remove", removeFn, true)
	r.RegisterModule("map", "keys", keysFn, true)
	r.RegisterModule("map", "values", valuesFn, true)
	r.RegisterModule("map", "has-key", hasKeyFn, true)
}

func mapArg(a *builtin.Args, i int) (*value.Value, error) {
	v := a.Get(i, nil)
	if v == nil || v.Kind != value.KindMap {
		return nil, sasserror.Type(a.Span, "argument must be a map")
	}
	return v, nil
}

func lookup(m *value.Value, key *value.Value) (*value.Value, bool) {
	for i, k := range m.MapKeys {
		if value.Equal(k, key) {
			return m.MapValues[i], true
		}
	}
	return nil, false
}

func getFn(a *builtin.Args) (*value.Value, error) {
	m, err := mapArg(a, 0)
	if err != nil {
		return nil, err
	}
	cur := m
	for i := 1; i < len(a.Positional); i++ {
		v, ok := lookup(cur, a.Positional[i])
		if !ok {
			return value.Null, nil
		}
		if i < len(a.Positional)-1 {
			if v.Kind != value.KindMap {
				return value.Null, nil
			}
		}
		cur = v
	}
	return cur, nil
}

func setFn(a *builtin.Args) (*value.Value, error) {
	m, err := mapArg(a, 0)
	if err != nil {
		return nil, err
	}
	if len(a.Positional) < 3 {
		return nil, sasserror.Arity(a.Span, "map.set() requires a key and a value")
	}
	key := a.Positional[1]
	val := a.Positional[len(a.Positional)-1]
	return value.MapSet(m, key, val), nil
}

func mergeFn(a *builtin.Args) (*value.Value, error) {
	m1, err := mapArg(a, 0)
	if err != nil {
		return nil, err
	}
	m2, err := mapArg(a, 1)
	if err != nil {
		return nil, err
	}
	result := m1
	for i, k := range m2.MapKeys {
		result = value.MapSet(result, k, m2.MapValues[i])
	}
	return result, nil
}

func removeFn(a *builtin.Args) (*value.Value, error) {
	m, err := mapArg(a, 0)
	if err != nil {
		return nil, err
	}
	toRemove := a.Positional[1:]
	var keys, vals []*value.Value
	for i, k := range m.MapKeys {
		remove := false
		for _, r := range toRemove {
			if value.Equal(k, r) {
				remove = true
				break
			}
		}
		if !remove {
			keys = append(keys, k)
			vals = append(vals, m.MapValues[i])
		}
	}
	return &value.Value{Kind: value.KindMap, MapKeys: keys, MapValues: vals}, nil
}

func keysFn(a *builtin.Args) (*value.Value, error) {
	m, err := mapArg(a, 0)
	if err != nil {
		return nil, err
	}
	return value.NewList(m.MapKeys, value.SepComma, false), nil
}

func valuesFn(a *builtin.Args) (*value.Value, error) {
	m, err := mapArg(a, 0)
	if err != nil {
		return nil, err
	}
	return value.NewList(m.MapValues, value.SepComma, false), nil
}

func hasKeyFn(a *builtin.Args) (*value.Value, error) {
	m, err := mapArg(a, 0)
	if err != nil {
		return nil, err
	}
	_, ok := lookup(m, a.Get(1, value.Null))
	return value.Bool(ok), nil
}
