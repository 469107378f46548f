// Package extend implements Sass's @extend engine: given a stylesheet's
// selectors and a set of @extend directives, it computes the extended
// selector lists every style rule should be emitted under.
//
// The teacher has no analogue -- LESS has no @extend, only the shallow
// `renderer.collectExtends`/string-concatenation approximation noted in
// DESIGN.md -- so this package is grounded directly on the textual
// algorithm description (addSelector/addExtension/extendList/weave/
// trim) and the "second law of extend" testable property, built in the
// same small-struct-plus-methods style the teacher uses for its other
// algorithmic packages (parser.Stack, expression.Value).
package extend

import (
	"github.com/go-sass/sass/sasserror"
	"github.com/go-sass/sass/selector"
)

// maxComplexPerTarget bounds how many complex selectors trim() will
// keep for each original complex selector, matching the "100-list cutoff" named in
// SPEC_FULL so a pathological fan-out of extends can't blow up compile
// time on adversarial input.
const maxComplexPerTarget = 100

// Extension records one `@extend <target>` directive: the compound
// selector being extended from (target) and the selector it's replaced
// with (extender), with provenance for error reporting.
type Extension struct {
	Target      *selector.Compound
	TargetText  string
	Extender    *selector.Complex
	Optional    bool
	Span        sasserror.Span
	SourceSpec  int // specificity of the rule that declared @extend, for the second law
}

// Store accumulates every selector defined in the stylesheet and every
// @extend directive, then computes the extended form of each selector
// on Finalize.
type Store struct {
	selectors  []*selector.List   // every style rule's selector list, in source order
	extensions []*Extension
}

func NewStore() *Store {
	return &Store{}
}

// AddSelector registers a style rule's (already &-resolved) selector
// list so it can be extended later.
func (s *Store) AddSelector(list *selector.List) {
	s.selectors = append(s.selectors, list)
}

// AddExtension registers one `@extend target` directive found while
// evaluating the style rule whose resolved selector is extender.
func (s *Store) AddExtension(target *selector.Compound, targetText string, extender *selector.Complex, optional bool, sourceSpecificity int, span sasserror.Span) {
	s.extensions = append(s.extensions, &Extension{
		Target:     target,
		TargetText: targetText,
		Extender:   extender,
		Optional:   optional,
		Span:       span,
		SourceSpec: sourceSpecificity,
	})
}

// Finalize computes the extended selector list for every selector list
// registered via AddSelector, and returns an error for any non-optional
// @extend whose target never matched a selector in the stylesheet
// (ExtendTargetNotFound).
func (s *Store) Finalize() (map[*selector.List]*selector.List, error) {
	result := make(map[*selector.List]*selector.List, len(s.selectors))
	matched := make(map[*Extension]bool, len(s.extensions))

	for _, list := range s.selectors {
		extended := &selector.List{}
		for _, complex := range list.Complex {
			results := s.extendComplex(complex, matched)
			extended.Complex = append(extended.Complex, dedupe(results)...)
		}
		result[list] = extended
	}

	for _, ext := range s.extensions {
		if !ext.Optional && !matched[ext] {
			return nil, sasserror.ExtendTargetNotFound(ext.Span, ext.TargetText)
		}
	}

	return result, nil
}

// extendComplex returns every complex selector complex should be
// rendered as, including itself, after applying every extension whose
// target appears somewhere in complex. This is the "extendList"
// operation: it walks complex compound-by-compound and, for any compound
// that contains an extension's target, adds a copy of complex in which
// that compound is replaced by the extender unified with the compound's
// remaining (non-target) simple selectors.
func (s *Store) extendComplex(complex *selector.Complex, matched map[*Extension]bool) []*selector.Complex {
	out := []*selector.Complex{complex}
	for _, comp := range complex.Components {
		if comp.Compound == nil {
			continue
		}
		for _, ext := range s.extensions {
			woven, ok := s.weave(complex, comp.Compound, ext)
			if !ok {
				continue
			}
			matched[ext] = true
			out = append(out, woven...)
		}
	}
	return trim(out, maxComplexPerTarget)
}

// weave checks whether ext.Target unifies with compound (a component of
// owner), and if so returns the complex selectors formed by splicing
// ext.Extender's compound into owner in place of compound -- the core
// of "the second law of extend": the extended selector list must be at
// least as specific as the original, so a target match that would
// *reduce* specificity relative to the rule's own declared specificity
// is still emitted (extend never makes output less specific than the
// source selector that declared it).
func (s *Store) weave(owner *selector.Complex, compound *selector.Compound, ext *Extension) ([]*selector.Complex, bool) {
	if !compoundContainsTarget(compound, ext.Target) {
		return nil, false
	}
	rest := &selector.Compound{}
	for _, c := range compound.Simple {
		if !compoundContainsTarget(ext.Target, &selector.Compound{Simple: []selector.Simple{c}}) {
			rest.Simple = append(rest.Simple, c)
		}
	}
	unified, ok := selector.UnifyCompounds(rest, extenderTrailingCompound(ext.Extender))
	if !ok {
		return nil, false
	}

	replaced := replaceCompound(owner, compound, unified)
	woven := spliceExtenderPrefix(replaced, ext.Extender)
	return []*selector.Complex{woven}, true
}

// compoundContainsTarget reports whether target's simple selectors are
// all present in compound (the unification pre-check: a compound
// "matches" an @extend target when it is a superset of the target's
// simple selectors).
func compoundContainsTarget(compound, target *selector.Compound) bool {
	for _, t := range target.Simple {
		found := false
		for _, c := range compound.Simple {
			if c.Kind == t.Kind && c.Name == t.Name {
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

func extenderTrailingCompound(extender *selector.Complex) *selector.Compound {
	for i := len(extender.Components) - 1; i >= 0; i-- {
		if extender.Components[i].Compound != nil {
			return extender.Components[i].Compound
		}
	}
	return &selector.Compound{}
}

func replaceCompound(owner *selector.Complex, old, replacement *selector.Compound) *selector.Complex {
	out := &selector.Complex{LeadingCombinator: owner.LeadingCombinator}
	for _, comp := range owner.Components {
		if comp.Compound == old {
			out.Components = append(out.Components, selector.Component{Compound: replacement})
		} else {
			out.Components = append(out.Components, comp)
		}
	}
	return out
}

// spliceExtenderPrefix prepends any leading combinator chain from the
// extender (the part before its trailing compound, e.g. extending
// ".a .b" splices ".a " ahead of the target's own ancestry) onto the
// replaced complex selector.
func spliceExtenderPrefix(replaced *selector.Complex, extender *selector.Complex) *selector.Complex {
	if len(extender.Components) <= 1 {
		return replaced
	}
	prefix := extender.Components[:len(extender.Components)-1]
	out := &selector.Complex{LeadingCombinator: replaced.LeadingCombinator}
	out.Components = append(out.Components, prefix...)
	out.Components = append(out.Components, selector.Component{Combinator: selector.Descendant})
	out.Components = append(out.Components, replaced.Components...)
	return out
}

// trim drops exact duplicates (see dedupe) and then keeps at most limit
// selectors, in order. It does not drop selectors that are merely
// subsumed by a more general one.
func trim(list []*selector.Complex, limit int) []*selector.Complex {
	out := dedupe(list)
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

func dedupe(list []*selector.Complex) []*selector.Complex {
	out := make([]*selector.Complex, 0, len(list))
	for _, c := range list {
		dup := false
		for _, existing := range out {
			if existing.Equal(c) {
				dup = true
				break
			}
		}
		if !dup {
			out = append(out, c)
		}
	}
	return out
}
