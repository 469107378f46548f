// Package module implements the namespacing semantics of @use and
// @forward: each loaded stylesheet becomes a Module with its own
// private variable/function/mixin scope, and @use/@forward build
// read-only, optionally prefixed/filtered views onto another module's
// members instead of splicing them into a shared global scope the way
// the teacher's old @import-only LESS model did.
package module

import (
	"strings"

	"github.com/go-sass/sass/value"
)

// Member is anything a module can export: a variable value, a
// function, or a mixin. Functions/mixins are stored as opaque
// references the evaluator resolves back to their ast.FunctionDecl/
// ast.MixinDecl by name; module itself doesn't need to know their
// shape.
type Member struct {
	Variable *value.Value
	Function any
	Mixin    any
}

// Module is one compiled, cached stylesheet's exported surface.
type Module struct {
	URL       string
	Variables map[string]*value.Value
	Functions map[string]any
	Mixins    map[string]any

	// used records modules this module itself @use'd, so `@use`
	// cycles can be detected during loading.
	used map[string]bool
}

// New creates an empty Module for url.
func New(url string) *Module {
	return &Module{
		URL:       url,
		Variables: map[string]*value.Value{},
		Functions: map[string]any{},
		Mixins:    map[string]any{},
		used:      map[string]bool{},
	}
}

// MarkUsed records that this module has loaded dependency.
func (m *Module) MarkUsed(dependencyURL string) { m.used[dependencyURL] = true }

// Uses reports whether this module has (transitively, as far as
// recorded) loaded dependencyURL -- used for cycle detection.
func (m *Module) Uses(dependencyURL string) bool { return m.used[dependencyURL] }

// View is a read-only, namespace-qualified projection of a Module,
// produced by @use (ForwardedView with a namespace prefix) or @forward
// (ShadowedView, unprefixed but filterable via show/hide).
type View struct {
	Namespace string // "" for @forward's unprefixed merge, "*" for @use ... as *
	module    *Module
	show      map[string]bool // nil means "all members visible"
	hide      map[string]bool
}

// ForwardedView builds the view @use "<url>" as <ns> produces: every
// member of mod is reachable as `<ns>.$var` / `ns.fn()` / `@include
// ns.mixin`, with no filtering.
func ForwardedView(mod *Module, namespace string) *View {
	return &View{Namespace: namespace, module: mod}
}

// ShadowedView builds the view @forward "<url>" [as <prefix>-*] [show
// ...|hide ...] produces: members flow through unprefixed (or with
// prefix prepended to their name) into the forwarding module's own
// namespace, filtered by show/hide.
func ShadowedView(mod *Module, prefix string, show, hide []string) *View {
	v := &View{module: mod}
	if len(show) > 0 {
		v.show = toSet(show)
	}
	if len(hide) > 0 {
		v.hide = toSet(hide)
	}
	if prefix != "" {
		v.Namespace = prefix
	}
	return v
}

func toSet(names []string) map[string]bool {
	set := make(map[string]bool, len(names))
	for _, n := range names {
		set[n] = true
	}
	return set
}

func (v *View) visible(name string) bool {
	if v.hide != nil && v.hide[name] {
		return false
	}
	if v.show != nil && !v.show[name] {
		return false
	}
	return true
}

func (v *View) exportedName(name string) string {
	if v.Namespace == "" || v.Namespace == "*" {
		return name
	}
	return v.Namespace + "-" + strings.TrimPrefix(name, v.Namespace+"-")
}

// Variable looks up a variable by its unqualified name as seen from
// this view (after prefix stripping for ShadowedView, or exact match
// for ForwardedView accessed as `ns.name`).
func (v *View) Variable(name string) (*value.Value, bool) {
	if !v.visible(name) {
		return nil, false
	}
	val, ok := v.module.Variables[name]
	return val, ok
}

// Function looks up a forwarded/used function member.
func (v *View) Function(name string) (any, bool) {
	if !v.visible(name) {
		return nil, false
	}
	fn, ok := v.module.Functions[name]
	return fn, ok
}

// Mixin looks up a forwarded/used mixin member.
func (v *View) Mixin(name string) (any, bool) {
	if !v.visible(name) {
		return nil, false
	}
	mx, ok := v.module.Mixins[name]
	return mx, ok
}

// Names returns every member name visible through this view, each
// passed through exportedName, for module-functions()/module-
// variables() meta introspection.
func (v *View) Names(kind string) []string {
	var src map[string]bool
	switch kind {
	case "variable":
		src = make(map[string]bool, len(v.module.Variables))
		for k := range v.module.Variables {
			src[k] = true
		}
	case "function":
		src = make(map[string]bool, len(v.module.Functions))
		for k := range v.module.Functions {
			src[k] = true
		}
	case "mixin":
		src = make(map[string]bool, len(v.module.Mixins))
		for k := range v.module.Mixins {
			src[k] = true
		}
	}
	var names []string
	for name := range src {
		if v.visible(name) {
			names = append(names, v.exportedName(name))
		}
	}
	return names
}

// Registry caches loaded modules by their resolved canonical URL so a
// stylesheet @use'd from two different places is only evaluated once,
// matching Sass's module-identity guarantee.
type Registry struct {
	loaded map[string]*Module
	order  []string
}

// NewRegistry creates an empty module registry.
func NewRegistry() *Registry {
	return &Registry{loaded: map[string]*Module{}}
}

// Get returns the cached module for url, if any.
func (r *Registry) Get(url string) (*Module, bool) {
	m, ok := r.loaded[url]
	return m, ok
}

// Store caches mod under url.
func (r *Registry) Store(url string, mod *Module) {
	if _, exists := r.loaded[url]; !exists {
		r.order = append(r.order, url)
	}
	r.loaded[url] = mod
}

// Loading reports whether url is currently being loaded (present in
// the registry but not yet finalized) -- the evaluator uses this to
// raise a module-load-cycle error instead of recursing forever.
func (r *Registry) Loading(url string) bool {
	m, ok := r.loaded[url]
	return ok && m == nil
}

// MarkLoading reserves url's slot before evaluating it, so a cyclic
// @use is detected via Loading before Store replaces it with the
// finished Module.
func (r *Registry) MarkLoading(url string) { r.loaded[url] = nil }
