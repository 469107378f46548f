// Package evaluator walks a parsed Sass stylesheet and produces a CSS
// syntax tree. It generalizes the teacher's evaluator.Evaluator (a
// single-pass LESS guard-expression evaluator holding a flat variable
// map and delegating arithmetic to a third-party expr.Compile/Run
// engine) into a Sass evaluator proper: lexical scoping via
// Environment, module isolation via @use/@forward, mixin @content
// closures, and selector-context nesting with "&" resolution through
// the selector package -- guard expressions in LESS and SassScript
// expressions here play the same role, so this still evaluates
// expressions by walking a small typed tree rather than shelling out
// to a general-purpose expression engine, since Sass's operators carry
// unit and color semantics no generic evaluator models.
package evaluator

import (
	"fmt"
	"strings"

	"github.com/go-sass/sass/ast"
	"github.com/go-sass/sass/builtin"
	"github.com/go-sass/sass/cssast"
	"github.com/go-sass/sass/extend"
	"github.com/go-sass/sass/importer"
	"github.com/go-sass/sass/module"
	"github.com/go-sass/sass/sasserror"
	"github.com/go-sass/sass/selector"
	"github.com/go-sass/sass/value"
)

// maxCallDepth bounds mixin/function recursion so a runaway recursive
// mixin fails with a diagnosable error instead of exhausting the Go
// call stack.
const maxCallDepth = 255

// maxLoopIterations bounds @while, guarding against a condition that
// never goes false.
const maxLoopIterations = 1_000_000

// contentFrame captures a @content block together with the lexical
// environment of its @include call site, so the block -- when later
// invoked from inside the mixin body -- resolves variables as a
// closure over the includer's scope rather than the mixin's own.
type contentFrame struct {
	body         []ast.Statement
	params       []ast.Param
	callerScopes []*scope
}

// Evaluator holds all mutable state threaded through one compile.
type Evaluator struct {
	env      *Environment
	builtins *builtin.Registry
	modules  *module.Registry
	imp      *importer.Importer
	logger   sasserror.Logger

	tree   *cssast.Tree
	extend *extend.Store

	sourceName string

	selectorStack []*selector.List
	ruleSelectors []ruleSelectorEntry

	namespaces  map[string]*module.View
	globalViews []*module.View
	currentMod  *module.Module

	contentStack []contentFrame
	callDepth    int

	keyframeDepth int

	loadedURLs []string
}

// LoadedURLs returns the canonical URL of every stylesheet this
// Evaluator resolved via @use, @forward or @import, entry stylesheet
// excluded, in load order. A compiler surfaces this so callers (a
// build tool's dependency graph, a --watch mode) know what to re-run
// on when a non-entry file changes.
func (e *Evaluator) LoadedURLs() []string {
	return e.loadedURLs
}

type ruleSelectorEntry struct {
	node cssast.NodeID
	list *selector.List
}

// New creates an Evaluator sharing registry, module cache and importer
// across an entire compile (including every module a @use/@forward
// loads), each with its own fresh Environment.
func New(imp *importer.Importer, reg *builtin.Registry, modules *module.Registry, logger sasserror.Logger) *Evaluator {
	if logger == nil {
		logger = sasserror.DiscardLogger{}
	}
	return &Evaluator{
		env:        NewEnvironment(),
		builtins:   reg,
		modules:    modules,
		imp:        imp,
		logger:     logger,
		extend:     extend.NewStore(),
		namespaces: map[string]*module.View{},
	}
}

// Run evaluates sheet (the entry stylesheet, sourceName identifying it
// for diagnostics and relative-import resolution) into a finished CSS
// tree with every @extend applied.
func (e *Evaluator) Run(sheet *ast.Stylesheet, sourceName string) (*cssast.Tree, error) {
	e.sourceName = sourceName
	e.tree = cssast.NewTree()
	if _, err := e.evalStatements(sheet.Statements, e.tree.Root()); err != nil {
		return nil, err
	}
	if err := e.finalizeExtends(); err != nil {
		return nil, err
	}
	return e.tree, nil
}

func (e *Evaluator) finalizeExtends() error {
	resolved, err := e.extend.Finalize()
	if err != nil {
		return err
	}
	for _, entry := range e.ruleSelectors {
		if list, ok := resolved[entry.list]; ok {
			e.tree.Node(entry.node).Selector = list.String()
		}
	}
	return nil
}

// evalStatements evaluates stmts in order under parent, stopping and
// bubbling the first non-nil @return value or error it encounters.
func (e *Evaluator) evalStatements(stmts []ast.Statement, parent cssast.NodeID) (*value.Value, error) {
	for _, stmt := range stmts {
		ret, err := e.evalStatement(stmt, parent)
		if err != nil {
			return nil, err
		}
		if ret != nil {
			return ret, nil
		}
	}
	return nil, nil
}

func (e *Evaluator) evalStatement(stmt ast.Statement, parent cssast.NodeID) (*value.Value, error) {
	switch s := stmt.(type) {
	case *ast.Comment:
		return nil, e.evalComment(s, parent)
	case *ast.StyleRule:
		return nil, e.evalStyleRule(s, parent)
	case *ast.Declaration:
		return nil, e.evalDeclaration(s, parent)
	case *ast.VariableDecl:
		return nil, e.evalVariableDecl(s)
	case *ast.AtRule:
		return nil, e.evalAtRule(s, parent)
	case *ast.IfStatement:
		return e.evalIf(s, parent)
	case *ast.EachStatement:
		return e.evalEach(s, parent)
	case *ast.ForStatement:
		return e.evalFor(s, parent)
	case *ast.WhileStatement:
		return e.evalWhile(s, parent)
	case *ast.FunctionDecl:
		e.env.DeclareFunction(s)
		return nil, nil
	case *ast.MixinDecl:
		e.env.DeclareMixin(s)
		return nil, nil
	case *ast.IncludeStatement:
		return e.evalInclude(s, parent)
	case *ast.ContentStatement:
		return e.evalContent(s, parent)
	case *ast.ReturnStatement:
		v, err := e.evalExpr(s.Value)
		if err != nil {
			return nil, err
		}
		return v, nil
	case *ast.UseStatement:
		return nil, e.evalUse(s, parent)
	case *ast.ForwardStatement:
		return nil, e.evalForward(s, parent)
	case *ast.ImportStatement:
		return nil, e.evalImport(s, parent)
	case *ast.ExtendStatement:
		return nil, e.evalExtend(s)
	case *ast.WarnStatement:
		return nil, e.evalWarn(s)
	case *ast.ErrorStatement:
		return nil, e.evalError(s)
	case *ast.DebugStatement:
		return nil, e.evalDebug(s)
	case *ast.AtRootStatement:
		return e.evalAtRoot(s, parent)
	default:
		return nil, sasserror.Internal("unhandled statement type %T", stmt)
	}
}

func (e *Evaluator) evalComment(c *ast.Comment, parent cssast.NodeID) error {
	if !c.Loud {
		return nil
	}
	e.tree.AddComment(parent, c.Text, true, c.Span())
	return nil
}

// evalStyleRule resolves "&", nests the parsed selector under the
// enclosing selector context, registers it with the extension engine,
// and evaluates the rule body with the resolved selector pushed as the
// new context.
func (e *Evaluator) evalStyleRule(rule *ast.StyleRule, parent cssast.NodeID) error {
	text, err := e.evalTextExpr(rule.Selector)
	if err != nil {
		return err
	}

	if e.keyframeDepth > 0 {
		node := e.tree.AddStyleRule(parent, strings.TrimSpace(text), rule.Span())
		_, err := e.evalStatements(rule.Body, node)
		return err
	}

	parsed, err := selector.Parse(text)
	if err != nil {
		return sasserror.Syntax(rule.Span(), "invalid selector %q: %v", text, err)
	}
	resolved := e.nestSelector(parsed)

	node := e.tree.AddStyleRule(parent, resolved.String(), rule.Span())
	e.extend.AddSelector(resolved)
	e.ruleSelectors = append(e.ruleSelectors, ruleSelectorEntry{node: node, list: resolved})

	e.selectorStack = append(e.selectorStack, resolved)
	_, err = e.evalStatements(rule.Body, node)
	e.selectorStack = e.selectorStack[:len(e.selectorStack)-1]
	return err
}

// nestSelector combines parsed with the enclosing selector context by
// resolving "&" against every complex selector of the current context,
// cross-producted against every complex selector of parsed -- matching
// how Sass expands `.a, .b { .c, .d { } }` into all four combinations.
func (e *Evaluator) nestSelector(parsed *selector.List) *selector.List {
	if len(e.selectorStack) == 0 {
		return parsed
	}
	parentList := e.selectorStack[len(e.selectorStack)-1]
	out := &selector.List{}
	for _, p := range parentList.Complex {
		for _, c := range parsed.Complex {
			out.Complex = append(out.Complex, selector.ResolveParent(p, c))
		}
	}
	return out
}

// evalDeclaration drops the declaration entirely when its value
// evaluates to an empty string or null, matching Sass's "blank
// declarations vanish" rule, and expands a nested declaration block
// (`font: { family: ...; size: ...; }`) into hyphen-joined properties.
func (e *Evaluator) evalDeclaration(decl *ast.Declaration, parent cssast.NodeID) error {
	prop, err := e.evalTextExpr(decl.Property)
	if err != nil {
		return err
	}

	if decl.Value != nil {
		v, err := e.evalExpr(decl.Value)
		if err != nil {
			return err
		}
		text := e.textOf(v)
		if text != "" && v.Kind != value.KindNull {
			e.tree.AddDeclaration(parent, prop, text, decl.Span())
		}
	}

	if decl.Body != nil {
		return e.evalNestedDeclarations(prop, decl.Body, parent)
	}
	return nil
}

func (e *Evaluator) evalNestedDeclarations(prefix string, stmts []ast.Statement, parent cssast.NodeID) error {
	for _, stmt := range stmts {
		inner, ok := stmt.(*ast.Declaration)
		if !ok {
			if _, err := e.evalStatement(stmt, parent); err != nil {
				return err
			}
			continue
		}
		sub, err := e.evalTextExpr(inner.Property)
		if err != nil {
			return err
		}
		full := prefix + "-" + sub
		if inner.Value != nil {
			v, err := e.evalExpr(inner.Value)
			if err != nil {
				return err
			}
			text := e.textOf(v)
			if text != "" && v.Kind != value.KindNull {
				e.tree.AddDeclaration(parent, full, text, inner.Span())
			}
		}
		if inner.Body != nil {
			if err := e.evalNestedDeclarations(full, inner.Body, parent); err != nil {
				return err
			}
		}
	}
	return nil
}

// evalVariableDecl applies Sass's !default (skip if already bound to a
// non-null value) and !global semantics.
func (e *Evaluator) evalVariableDecl(decl *ast.VariableDecl) error {
	if decl.Namespace != "" {
		return sasserror.Internal("cannot assign into module %q's variable from outside it", decl.Namespace)
	}
	if decl.Default {
		if existing, ok := e.env.GetVariable(decl.Name); ok && existing.Kind != value.KindNull {
			return nil
		}
	}
	v, err := e.evalExpr(decl.Value)
	if err != nil {
		return err
	}
	e.env.SetVariable(decl.Name, v, decl.Global)
	return nil
}

// evalAtRule handles both statement-form (`@charset "utf-8";`) and
// block-form at-rules, special-casing @keyframes bodies whose nested
// "selectors" (`50%`, `from`, `to`) aren't CSS selector syntax and so
// bypass selector.Parse/resolution/@extend entirely.
func (e *Evaluator) evalAtRule(rule *ast.AtRule, parent cssast.NodeID) error {
	name := rule.Name
	params := ""
	if rule.Params != nil {
		p, err := e.evalTextExpr(rule.Params)
		if err != nil {
			return err
		}
		params = p
	}
	node := e.tree.AddAtRule(parent, name, params, rule.Span())
	if rule.Body == nil {
		return nil
	}
	if isKeyframesName(name) {
		e.keyframeDepth++
		_, err := e.evalStatements(rule.Body, node)
		e.keyframeDepth--
		return err
	}
	_, err := e.evalStatements(rule.Body, node)
	return err
}

func isKeyframesName(name string) bool {
	return strings.HasSuffix(strings.ToLower(name), "keyframes")
}

// evalAtRoot hoists its body out to the document root, escaping any
// enclosing selector nesting. It does not yet interpret @at-root's
// `(without: ...)`/`(with: ...)` query and always escapes fully.
func (e *Evaluator) evalAtRoot(stmt *ast.AtRootStatement, parent cssast.NodeID) (*value.Value, error) {
	saved := e.selectorStack
	e.selectorStack = nil
	ret, err := e.evalStatements(stmt.Body, e.tree.Root())
	e.selectorStack = saved
	return ret, err
}

func (e *Evaluator) evalExtend(stmt *ast.ExtendStatement) error {
	if len(e.selectorStack) == 0 {
		return sasserror.Syntax(stmt.Span(), "@extend may not be used at the root of a stylesheet")
	}
	targets, err := selector.Parse(stmt.SelectorText)
	if err != nil {
		return sasserror.Syntax(stmt.Span(), "invalid @extend target %q: %v", stmt.SelectorText, err)
	}
	owner := e.selectorStack[len(e.selectorStack)-1]
	for _, t := range targets.Complex {
		if len(t.Components) != 1 || t.Components[0].Compound == nil {
			return sasserror.Syntax(stmt.Span(), "@extend may only target a compound selector, got %q", stmt.SelectorText)
		}
		target := t.Components[0].Compound
		for _, ownerComplex := range owner.Complex {
			e.extend.AddExtension(target, stmt.SelectorText, ownerComplex, stmt.Optional, ownerComplex.Specificity(), stmt.Span())
		}
	}
	return nil
}

func (e *Evaluator) evalWarn(stmt *ast.WarnStatement) error {
	v, err := e.evalExpr(stmt.Value)
	if err != nil {
		return err
	}
	e.logger.Warn(e.textOf(v), stmt.Span())
	return nil
}

func (e *Evaluator) evalDebug(stmt *ast.DebugStatement) error {
	v, err := e.evalExpr(stmt.Value)
	if err != nil {
		return err
	}
	e.logger.Warn(fmt.Sprintf("DEBUG: %s", e.textOf(v)), stmt.Span())
	return nil
}

func (e *Evaluator) evalError(stmt *ast.ErrorStatement) error {
	v, err := e.evalExpr(stmt.Value)
	if err != nil {
		return err
	}
	return sasserror.New(sasserror.KindInternal, stmt.Span(), "%s", e.textOf(v))
}

// ---- control flow ----

func (e *Evaluator) evalIf(stmt *ast.IfStatement, parent cssast.NodeID) (*value.Value, error) {
	cond, err := e.evalExpr(stmt.Condition)
	if err != nil {
		return nil, err
	}
	if cond.IsTruthy() {
		e.env.Push()
		ret, err := e.evalStatements(stmt.Body, parent)
		e.env.Pop()
		return ret, err
	}
	if stmt.Else == nil {
		return nil, nil
	}
	if stmt.Else.Condition == nil {
		e.env.Push()
		ret, err := e.evalStatements(stmt.Else.Body, parent)
		e.env.Pop()
		return ret, err
	}
	return e.evalIf(stmt.Else, parent)
}

func (e *Evaluator) evalEach(stmt *ast.EachStatement, parent cssast.NodeID) (*value.Value, error) {
	list, err := e.evalExpr(stmt.List)
	if err != nil {
		return nil, err
	}
	for _, item := range e.asIterable(list) {
		e.env.Push()
		e.bindEachVars(stmt.Variables, item)
		ret, err := e.evalStatements(stmt.Body, parent)
		e.env.Pop()
		if err != nil {
			return nil, err
		}
		if ret != nil {
			return ret, nil
		}
	}
	return nil, nil
}

func (e *Evaluator) asIterable(v *value.Value) []*value.Value {
	switch v.Kind {
	case value.KindMap:
		pairs := make([]*value.Value, len(v.MapKeys))
		for i := range v.MapKeys {
			pairs[i] = value.NewList([]*value.Value{v.MapKeys[i], v.MapValues[i]}, value.SepSpace, false)
		}
		return pairs
	case value.KindList, value.KindArgList:
		return v.List
	default:
		return []*value.Value{v}
	}
}

func (e *Evaluator) bindEachVars(names []string, item *value.Value) {
	if len(names) == 1 {
		e.env.top().variables[names[0]] = item
		return
	}
	parts := []*value.Value{item}
	if item.Kind == value.KindList || item.Kind == value.KindArgList {
		parts = item.List
	}
	for i, name := range names {
		if i < len(parts) {
			e.env.top().variables[name] = parts[i]
		} else {
			e.env.top().variables[name] = value.Null
		}
	}
}

func (e *Evaluator) evalFor(stmt *ast.ForStatement, parent cssast.NodeID) (*value.Value, error) {
	fromV, err := e.evalExpr(stmt.From)
	if err != nil {
		return nil, err
	}
	toV, err := e.evalExpr(stmt.To)
	if err != nil {
		return nil, err
	}
	if fromV.Kind != value.KindNumber || toV.Kind != value.KindNumber {
		return nil, sasserror.Type(stmt.Span(), "@for bounds must be numbers")
	}
	from, to := int(fromV.Number), int(toV.Number)
	step := 1
	if from > to {
		step = -1
	}
	for i := from; (step > 0 && i <= to) || (step < 0 && i >= to); i += step {
		if stmt.Exclusive && i == to {
			break
		}
		e.env.Push()
		e.env.top().variables[stmt.Variable] = value.Num(float64(i))
		ret, err := e.evalStatements(stmt.Body, parent)
		e.env.Pop()
		if err != nil {
			return nil, err
		}
		if ret != nil {
			return ret, nil
		}
	}
	return nil, nil
}

func (e *Evaluator) evalWhile(stmt *ast.WhileStatement, parent cssast.NodeID) (*value.Value, error) {
	for i := 0; ; i++ {
		if i > maxLoopIterations {
			return nil, sasserror.Internal("@while exceeded %d iterations without terminating", maxLoopIterations)
		}
		cond, err := e.evalExpr(stmt.Condition)
		if err != nil {
			return nil, err
		}
		if !cond.IsTruthy() {
			return nil, nil
		}
		e.env.Push()
		ret, err := e.evalStatements(stmt.Body, parent)
		e.env.Pop()
		if err != nil {
			return nil, err
		}
		if ret != nil {
			return ret, nil
		}
	}
}

// ---- mixin/function calls ----

func (e *Evaluator) callArguments(args []ast.Argument) ([]*value.Value, map[string]*value.Value, error) {
	var positional []*value.Value
	named := map[string]*value.Value{}
	for _, a := range args {
		v, err := e.evalExpr(a.Value)
		if err != nil {
			return nil, nil, err
		}
		if a.Rest {
			switch v.Kind {
			case value.KindArgList:
				positional = append(positional, v.ArgPositional...)
				for k, val := range v.ArgKeyword {
					named[k] = val
				}
			case value.KindMap:
				for i, k := range v.MapKeys {
					named[e.textOf(k)] = v.MapValues[i]
				}
			case value.KindList:
				positional = append(positional, v.List...)
			default:
				positional = append(positional, v)
			}
			continue
		}
		if a.Name != "" {
			named[a.Name] = v
			continue
		}
		positional = append(positional, v)
	}
	return positional, named, nil
}

// bindParams assumes a fresh scope has already been pushed onto e.env
// and binds params' values directly into it, evaluating defaults
// (which may reference earlier params) in that same new scope.
func (e *Evaluator) bindParams(params []ast.Param, positional []*value.Value, named map[string]*value.Value, span sasserror.Span) error {
	named = copyNamed(named)
	pos := 0
	for _, p := range params {
		if p.Rest {
			rest := append([]*value.Value{}, positional[pos:]...)
			e.env.top().variables[p.Name] = &value.Value{
				Kind:          value.KindArgList,
				List:          rest,
				Sep:           value.SepComma,
				ArgPositional: rest,
				ArgKeyword:    named,
			}
			pos = len(positional)
			named = map[string]*value.Value{}
			continue
		}
		var v *value.Value
		switch {
		case pos < len(positional):
			v = positional[pos]
			pos++
		case named[p.Name] != nil:
			v = named[p.Name]
			delete(named, p.Name)
		case p.Default != nil:
			dv, err := e.evalExpr(p.Default)
			if err != nil {
				return err
			}
			v = dv
		default:
			return sasserror.Arity(span, "missing argument $%s", p.Name)
		}
		e.env.top().variables[p.Name] = v
	}
	hasRest := len(params) > 0 && params[len(params)-1].Rest
	if !hasRest {
		if pos < len(positional) {
			return sasserror.Arity(span, "too many positional arguments (expected %d, got %d)", len(params), len(positional))
		}
		for k := range named {
			return sasserror.Arity(span, "no argument named $%s", k)
		}
	}
	return nil
}

func copyNamed(named map[string]*value.Value) map[string]*value.Value {
	out := make(map[string]*value.Value, len(named))
	for k, v := range named {
		out[k] = v
	}
	return out
}

func (e *Evaluator) resolveFunction(namespace, name string) (*ast.FunctionDecl, builtin.Func, bool) {
	if namespace != "" {
		if view, ok := e.namespaces[namespace]; ok {
			if any, ok2 := view.Function(name); ok2 {
				if decl, ok3 := any.(*ast.FunctionDecl); ok3 {
					return decl, nil, true
				}
			}
		}
		if fn, ok := e.builtins.Lookup(namespace, name); ok {
			return nil, fn, true
		}
		return nil, nil, false
	}
	for _, view := range e.globalViews {
		if any, ok := view.Function(name); ok {
			if decl, ok2 := any.(*ast.FunctionDecl); ok2 {
				return decl, nil, true
			}
		}
	}
	if decl, ok := e.env.GetFunction(name); ok {
		return decl, nil, true
	}
	if fn, ok := e.builtins.Lookup("", name); ok {
		return nil, fn, true
	}
	return nil, nil, false
}

func (e *Evaluator) resolveMixin(namespace, name string) (*ast.MixinDecl, bool) {
	if namespace != "" {
		view, ok := e.namespaces[namespace]
		if !ok {
			return nil, false
		}
		any, ok := view.Mixin(name)
		if !ok {
			return nil, false
		}
		decl, ok := any.(*ast.MixinDecl)
		return decl, ok
	}
	for _, view := range e.globalViews {
		if any, ok := view.Mixin(name); ok {
			if decl, ok2 := any.(*ast.MixinDecl); ok2 {
				return decl, true
			}
		}
	}
	return e.env.GetMixin(name)
}

func qualifiedName(namespace, name string) string {
	if namespace == "" {
		return name
	}
	return namespace + "." + name
}

// evalCall dispatches a function call to a user @function, a built-in,
// or -- when neither matches a bare (unnamespaced) name -- reconstructs
// it as a plain, unevaluated CSS function (`translateX(10px)`,
// `url(...)`, `format("woff")`), since most CSS function syntax is not
// a Sass function at all.
func (e *Evaluator) evalCall(namespace, name string, argExprs []ast.Argument, span sasserror.Span) (*value.Value, error) {
	decl, fn, found := e.resolveFunction(namespace, name)
	if !found {
		if namespace != "" {
			return nil, sasserror.UndefinedFunction(span, qualifiedName(namespace, name))
		}
		return e.passthroughCall(name, argExprs, span)
	}
	positional, named, err := e.callArguments(argExprs)
	if err != nil {
		return nil, err
	}
	if decl != nil {
		return e.callUserFunction(decl, positional, named, span)
	}
	args := &builtin.Args{Positional: positional, Named: named, Span: span, Context: e}
	return fn(args)
}

func (e *Evaluator) callUserFunction(decl *ast.FunctionDecl, positional []*value.Value, named map[string]*value.Value, span sasserror.Span) (*value.Value, error) {
	e.callDepth++
	if e.callDepth > maxCallDepth {
		e.callDepth--
		return nil, sasserror.RecursionLimit(span, maxCallDepth)
	}
	e.env.Push()
	err := e.bindParams(decl.Params, positional, named, span)
	var ret *value.Value
	if err == nil {
		ret, err = e.evalStatements(decl.Body, e.tree.Root())
	}
	e.env.Pop()
	e.callDepth--
	if err != nil {
		return nil, err
	}
	if ret == nil {
		return value.Null, nil
	}
	return ret, nil
}

func (e *Evaluator) passthroughCall(name string, args []ast.Argument, span sasserror.Span) (*value.Value, error) {
	parts := make([]string, len(args))
	for i, a := range args {
		v, err := e.evalExpr(a.Value)
		if err != nil {
			return nil, err
		}
		s := v.String()
		if a.Rest {
			s += "..."
		}
		if a.Name != "" {
			s = "$" + a.Name + ": " + s
		}
		parts[i] = s
	}
	return value.Str(name + "(" + strings.Join(parts, ", ") + ")"), nil
}

func (e *Evaluator) evalInclude(stmt *ast.IncludeStatement, parent cssast.NodeID) (*value.Value, error) {
	decl, found := e.resolveMixin(stmt.Namespace, stmt.Name)
	if !found {
		return nil, sasserror.UndefinedMixin(stmt.Span(), qualifiedName(stmt.Namespace, stmt.Name))
	}
	positional, named, err := e.callArguments(stmt.Args)
	if err != nil {
		return nil, err
	}

	e.callDepth++
	if e.callDepth > maxCallDepth {
		e.callDepth--
		return nil, sasserror.RecursionLimit(stmt.Span(), maxCallDepth)
	}

	callerScopes := append([]*scope{}, e.env.scopes...)
	e.env.Push()
	if err := e.bindParams(decl.Params, positional, named, stmt.Span()); err != nil {
		e.env.Pop()
		e.callDepth--
		return nil, err
	}

	pushedContent := stmt.Content != nil || decl.HasContent
	if pushedContent {
		e.contentStack = append(e.contentStack, contentFrame{
			body:         stmt.Content,
			params:       stmt.ContentParams,
			callerScopes: callerScopes,
		})
	}

	_, err = e.evalStatements(decl.Body, parent)

	if pushedContent {
		e.contentStack = e.contentStack[:len(e.contentStack)-1]
	}
	e.env.Pop()
	e.callDepth--
	return nil, err
}

// evalContent runs the captured @content block as a closure over the
// includer's scope: temporarily swap in the environment saved at
// @include time, bind $content-block arguments there, run the block,
// then restore the mixin body's own scope chain.
func (e *Evaluator) evalContent(stmt *ast.ContentStatement, parent cssast.NodeID) (*value.Value, error) {
	if len(e.contentStack) == 0 {
		return nil, nil
	}
	frame := e.contentStack[len(e.contentStack)-1]
	if frame.body == nil {
		return nil, nil
	}
	positional, named, err := e.callArguments(stmt.Args)
	if err != nil {
		return nil, err
	}

	saved := e.env.scopes
	e.env.scopes = append([]*scope{}, frame.callerScopes...)
	e.env.Push()
	err = e.bindParams(frame.params, positional, named, stmt.Span())
	var ret *value.Value
	if err == nil {
		ret, err = e.evalStatements(frame.body, parent)
	}
	e.env.Pop()
	e.env.scopes = saved
	return ret, err
}

// ---- modules ----

func (e *Evaluator) evalUse(stmt *ast.UseStatement, parent cssast.NodeID) error {
	resolved, err := e.imp.Load(stmt.URL, e.sourceName)
	if err != nil {
		return sasserror.ModuleLoadFailure(stmt.Span(), "%v", err)
	}
	mod, err := e.loadModule(resolved, stmt.Configuration, parent, stmt.Span())
	if err != nil {
		return err
	}
	if e.currentMod != nil {
		e.currentMod.MarkUsed(resolved.CanonicalURL)
	}
	if stmt.Namespace == "*" {
		e.globalViews = append(e.globalViews, module.ForwardedView(mod, "*"))
		return nil
	}
	ns := stmt.Namespace
	if ns == "" {
		ns = deriveNamespace(stmt.URL)
	}
	e.namespaces[ns] = module.ForwardedView(mod, ns)
	return nil
}

func (e *Evaluator) evalForward(stmt *ast.ForwardStatement, parent cssast.NodeID) error {
	resolved, err := e.imp.Load(stmt.URL, e.sourceName)
	if err != nil {
		return sasserror.ModuleLoadFailure(stmt.Span(), "%v", err)
	}
	mod, err := e.loadModule(resolved, stmt.Configuration, parent, stmt.Span())
	if err != nil {
		return err
	}
	if e.currentMod != nil {
		e.currentMod.MarkUsed(resolved.CanonicalURL)
	}
	view := module.ShadowedView(mod, stmt.Prefix, stmt.Show, stmt.Hide)
	e.globalViews = append(e.globalViews, view)
	if e.currentMod != nil {
		mergeIntoModule(e.currentMod, view)
	}
	return nil
}

// mergeIntoModule copies a forwarded view's visible members into mod
// so a file that @forwards another module re-exports those names to
// whoever later @use's mod itself.
func mergeIntoModule(mod *module.Module, view *module.View) {
	for _, name := range view.Names("variable") {
		if v, ok := view.Variable(name); ok {
			mod.Variables[name] = v
		}
	}
	for _, name := range view.Names("function") {
		if fn, ok := view.Function(name); ok {
			mod.Functions[name] = fn
		}
	}
	for _, name := range view.Names("mixin") {
		if mx, ok := view.Mixin(name); ok {
			mod.Mixins[name] = mx
		}
	}
}

// loadModule evaluates resolved's stylesheet with a fresh Evaluator
// and Environment, applies `with (...)` configuration by pre-seeding
// global variables before the module body runs (so its own `!default`
// assignments see them already bound and skip), grafts any CSS the
// module itself emits into the current tree at the @use/@forward
// site (only on the module's first load -- a second @use of an
// already-cached module contributes members but not a second copy of
// its CSS, matching real Sass), and caches the resulting Module by
// canonical URL.
func (e *Evaluator) loadModule(resolved *importer.Resolved, config []ast.Argument, parent cssast.NodeID, span sasserror.Span) (*module.Module, error) {
	e.loadedURLs = append(e.loadedURLs, resolved.CanonicalURL)

	if mod, ok := e.modules.Get(resolved.CanonicalURL); ok {
		return mod, nil
	}
	if e.modules.Loading(resolved.CanonicalURL) {
		return nil, sasserror.ModuleLoadFailure(span, "module loop: %q is already loading", resolved.CanonicalURL)
	}
	e.modules.MarkLoading(resolved.CanonicalURL)

	sub := New(e.imp, e.builtins, e.modules, e.logger)
	sub.sourceName = resolved.CanonicalURL
	sub.currentMod = module.New(resolved.CanonicalURL)
	sub.tree = cssast.NewTree()

	for _, arg := range config {
		if arg.Name == "" {
			continue
		}
		v, err := e.evalExpr(arg.Value)
		if err != nil {
			return nil, err
		}
		sub.env.global().variables[arg.Name] = v
	}

	if _, err := sub.evalStatements(resolved.Stylesheet.Statements, sub.tree.Root()); err != nil {
		return nil, err
	}
	if err := sub.finalizeExtends(); err != nil {
		return nil, err
	}

	for name, v := range sub.env.global().variables {
		sub.currentMod.Variables[name] = v
	}
	for name, fn := range sub.env.global().functions {
		sub.currentMod.Functions[name] = fn
	}
	for name, mx := range sub.env.global().mixins {
		sub.currentMod.Mixins[name] = mx
	}

	e.tree.Graft(parent, sub.tree)
	e.loadedURLs = append(e.loadedURLs, sub.loadedURLs...)

	e.modules.Store(resolved.CanonicalURL, sub.currentMod)
	return sub.currentMod, nil
}

func deriveNamespace(url string) string {
	base := url
	if i := strings.LastIndexByte(base, '/'); i >= 0 {
		base = base[i+1:]
	}
	base = strings.TrimSuffix(base, ".scss")
	base = strings.TrimSuffix(base, ".sass")
	base = strings.TrimSuffix(base, ".css")
	base = strings.TrimPrefix(base, "_")
	return base
}

// evalImport implements the legacy global-scope @import: the imported
// file's statements run directly against the current Environment and
// selector context, as if textually inlined, rather than through a
// namespaced module.Module.
func (e *Evaluator) evalImport(stmt *ast.ImportStatement, parent cssast.NodeID) error {
	for _, url := range stmt.URLs {
		resolved, err := e.imp.Load(url, e.sourceName)
		if err != nil {
			return sasserror.ModuleLoadFailure(stmt.Span(), "%v", err)
		}
		e.loadedURLs = append(e.loadedURLs, resolved.CanonicalURL)
		prevSource := e.sourceName
		e.sourceName = resolved.CanonicalURL
		_, err = e.evalStatements(resolved.Stylesheet.Statements, parent)
		e.sourceName = prevSource
		if err != nil {
			return err
		}
	}
	return nil
}

// ---- builtin.Context ----

func (e *Evaluator) HasVariable(name string) bool      { return e.env.HasVariable(name) }
func (e *Evaluator) HasGlobalVariable(name string) bool { return e.env.HasGlobalVariable(name) }

func (e *Evaluator) HasFunction(name string) bool {
	_, _, found := e.resolveFunction("", name)
	return found
}

func (e *Evaluator) HasMixin(name string) bool {
	_, found := e.resolveMixin("", name)
	return found
}

func (e *Evaluator) HasContentBlock() bool {
	return len(e.contentStack) > 0 && e.contentStack[len(e.contentStack)-1].body != nil
}

func (e *Evaluator) Call(callable *value.Value, args *builtin.Args) (*value.Value, error) {
	name := callable.Callable.Name
	decl, fn, found := e.resolveFunction("", name)
	if !found {
		return nil, sasserror.UndefinedFunction(args.Span, name)
	}
	if decl != nil {
		e.env.Push()
		err := e.bindParams(decl.Params, args.Positional, args.Named, args.Span)
		var ret *value.Value
		if err == nil {
			ret, err = e.evalStatements(decl.Body, e.tree.Root())
		}
		e.env.Pop()
		if err != nil {
			return nil, err
		}
		if ret == nil {
			return value.Null, nil
		}
		return ret, nil
	}
	args.Context = e
	return fn(args)
}

func (e *Evaluator) ModuleVariableNames(namespace string) []string {
	view, ok := e.namespaces[namespace]
	if !ok {
		return nil
	}
	return view.Names("variable")
}

func (e *Evaluator) ModuleFunctionNames(namespace string) []string {
	view, ok := e.namespaces[namespace]
	if !ok {
		return nil
	}
	return view.Names("function")
}

// textOf returns v's unquoted textual form, used wherever Sass
// substitutes a value into plain text: selectors, property names,
// @warn/@debug/@error messages, at-rule parameters.
func (e *Evaluator) textOf(v *value.Value) string {
	if v.Kind == value.KindString {
		return v.Str
	}
	return v.String()
}

// evalTextExpr evaluates an interpolated-text expression (a selector,
// property name, or at-rule parameter list, all of which parse as a
// StringLit possibly containing #{} chunks) down to its final text.
func (e *Evaluator) evalTextExpr(expr ast.Expression) (string, error) {
	v, err := e.evalExpr(expr)
	if err != nil {
		return "", err
	}
	return e.textOf(v), nil
}
