// Package builtin defines the Registry/Func shape every built-in
// module (mathfn, stringfn, listfn, mapfn, colorfn, selectorfn,
// metafn) registers into. It generalizes the teacher's
// functions.FuncMap (functions/registry.go: a map[string]interface{}
// of variadic-string-in/string-out closures) onto typed
// *value.Value arguments and errors, since Sass functions operate on
// the tagged value union rather than raw CSS text.
package builtin

import (
	"github.com/go-sass/sass/sasserror"
	"github.com/go-sass/sass/value"
)

// Context exposes the evaluator's environment to built-ins that need
// to introspect scope or invoke other callables (meta.variable-exists,
// meta.call, meta.content-exists), without the builtin package
// depending on the evaluator package directly.
type Context interface {
	HasVariable(name string) bool
	HasGlobalVariable(name string) bool
	HasFunction(name string) bool
	HasMixin(name string) bool
	HasContentBlock() bool
	Call(callable *value.Value, args *Args) (*value.Value, error)
	ModuleVariableNames(namespace string) []string
	ModuleFunctionNames(namespace string) []string
}

// Args is the call-site argument bundle passed to a Func: the evaluated
// positional arguments in call order and the named arguments keyed by
// name, with rest arguments already expanded. No parameter binding is
// done and no defaults are applied; a Func supplies its own defaults
// through Get and NamedOr.
type Args struct {
	Positional []*value.Value
	Named      map[string]*value.Value
	Span       sasserror.Span
	Context    Context
}

// Get returns the i'th positional argument, or def if there aren't
// that many.
func (a *Args) Get(i int, def *value.Value) *value.Value {
	if i < len(a.Positional) {
		return a.Positional[i]
	}
	return def
}

// NamedOr looks up a keyword argument, falling back to def.
func (a *Args) NamedOr(name string, def *value.Value) *value.Value {
	if v, ok := a.Named[name]; ok {
		return v
	}
	return def
}

// Func is a single built-in function/signature implementation.
type Func func(a *Args) (*value.Value, error)

// Registry maps "module.name" (or bare "name" for global built-ins)
// to its implementation, the same flat-map-of-callables idiom as
// functions.FuncMap, but keyed to support Sass's namespaced built-in
// modules (`math.div`, `color.adjust`, `list.append`, ...).
type Registry struct {
	global map[string]Func
	module map[string]map[string]Func
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{global: map[string]Func{}, module: map[string]map[string]Func{}}
}

// RegisterGlobal adds a function callable only with no namespace prefix
// (e.g. `if`). Legacy global names of module functions such as `darken`
// or `nth` come from RegisterModule instead.
func (r *Registry) RegisterGlobal(name string, fn Func) {
	r.global[name] = fn
}

// RegisterModule adds a function under a built-in module namespace
// (`math.div`, `color.scale`, ...), also exposing it globally with a
// deprecation-eligible bare name when legacy is true.
func (r *Registry) RegisterModule(namespace, name string, fn Func, legacy bool) {
	if r.module[namespace] == nil {
		r.module[namespace] = map[string]Func{}
	}
	r.module[namespace][name] = fn
	if legacy {
		r.global[name] = fn
	}
}

// Lookup resolves a (possibly namespaced) function call.
func (r *Registry) Lookup(namespace, name string) (Func, bool) {
	if namespace != "" {
		fns, ok := r.module[namespace]
		if !ok {
			return nil, false
		}
		fn, ok := fns[name]
		return fn, ok
	}
	fn, ok := r.global[name]
	return fn, ok
}

// Names returns every function name registered under namespace ("" for globals).
func (r *Registry) Names(namespace string) []string {
	src := r.global
	if namespace != "" {
		src = r.module[namespace]
	}
	names := make([]string, 0, len(src))
	for n := range src {
		names = append(names, n)
	}
	return names
}
