// Package selector implements the CSS selector AST used by the
// evaluator's nested-rule resolution and by the extension engine's
// unification algorithm. The teacher represents a selector as a flat
// []string of textual parts (ast.Selector) and resolves "&" and
// @extend by string concatenation/ReplaceAll in renderer.go; that is
// not enough to unify selectors structurally for @extend, so this
// package generalizes the same "parse once into small typed nodes"
// idiom the teacher uses for values/colors into a real selector grammar.
package selector

import "strings"

// Combinator precedes a CompoundSelector inside a ComplexSelector:
// descendant (implicit space), child (>), sibling (~), next-sibling (+).
type Combinator byte

const (
	Descendant Combinator = 0
	Child      Combinator = '>'
	Sibling    Combinator = '~'
	NextSibling Combinator = '+'
)

// List is a comma-separated group of complex selectors.
type List struct {
	Complex []*Complex
}

// Complex is a sequence of compound selectors joined by combinators,
// e.g. "div > .a ~ .b".
type Complex struct {
	Components []Component
	// LeadingCombinator is set when the complex selector starts with a
	// combinator, as can occur mid-@extend processing.
	LeadingCombinator Combinator
}

// Component is either a CompoundSelector or a bare Combinator token.
type Component struct {
	Compound   *Compound
	Combinator Combinator // meaningful only when Compound is nil; Descendant is the zero value
}

// Compound is a run of simple selectors with no combinator between
// them, e.g. "a.btn:hover".
type Compound struct {
	Simple []Simple
}

// SimpleKind tags a Simple selector's variant.
type SimpleKind int

const (
	KindType SimpleKind = iota
	KindUniversal
	KindClass
	KindID
	KindAttribute
	KindPlaceholder
	KindPseudo
	KindParent // "&"
)

// Simple is one atomic selector component.
type Simple struct {
	Kind SimpleKind
	Name string // tag/class/id/placeholder/pseudo name, namespace-qualified for Type

	// Attribute-selector fields.
	AttrOp    string // "", "=", "~=", "|=", "^=", "$=", "*="
	AttrValue string
	AttrCI    bool

	// Pseudo-selector fields.
	PseudoArgList *List  // for :not(), :is(), :matches(), :has()
	PseudoArgRaw  string // raw argument text for pseudos we don't parse structurally (:nth-child(2n+1))
	PseudoElement bool   // true for ::before-style pseudo-elements
}

func (s Simple) String() string {
	switch s.Kind {
	case KindUniversal:
		return "*"
	case KindClass:
		return "." + s.Name
	case KindID:
		return "#" + s.Name
	case KindPlaceholder:
		return "%" + s.Name
	case KindParent:
		return "&"
	case KindAttribute:
		var b strings.Builder
		b.WriteByte('[')
		b.WriteString(s.Name)
		if s.AttrOp != "" {
			b.WriteString(s.AttrOp)
			b.WriteByte('"')
			b.WriteString(s.AttrValue)
			b.WriteByte('"')
			if s.AttrCI {
				b.WriteString(" i")
			}
		}
		b.WriteByte(']')
		return b.String()
	case KindPseudo:
		prefix := ":"
		if s.PseudoElement {
			prefix = "::"
		}
		if s.PseudoArgList != nil {
			return prefix + s.Name + "(" + s.PseudoArgList.String() + ")"
		}
		if s.PseudoArgRaw != "" {
			return prefix + s.Name + "(" + s.PseudoArgRaw + ")"
		}
		return prefix + s.Name
	default:
		return s.Name
	}
}

func (c *Compound) String() string {
	var b strings.Builder
	for _, s := range c.Simple {
		b.WriteString(s.String())
	}
	return b.String()
}

func (comb Combinator) String() string {
	switch comb {
	case Child:
		return ">"
	case Sibling:
		return "~"
	case NextSibling:
		return "+"
	default:
		return ""
	}
}

func (c *Complex) String() string {
	var b strings.Builder
	if c.LeadingCombinator != Descendant {
		b.WriteString(c.LeadingCombinator.String())
		b.WriteByte(' ')
	}
	for i, comp := range c.Components {
		if comp.Compound == nil && comp.Combinator == Descendant {
			continue
		}
		if i > 0 {
			b.WriteByte(' ')
		}
		if comp.Compound != nil {
			b.WriteString(comp.Compound.String())
		} else {
			b.WriteString(comp.Combinator.String())
		}
	}
	return b.String()
}

func (l *List) String() string {
	parts := make([]string, len(l.Complex))
	for i, c := range l.Complex {
		parts[i] = c.String()
	}
	return strings.Join(parts, ", ")
}

// ContainsParent reports whether any compound in the complex selector
// contains a "&" simple selector, used by the evaluator to decide
// whether a nested rule needs cross-product substitution or implicit
// descendant nesting.
func (c *Complex) ContainsParent() bool {
	for _, comp := range c.Components {
		if comp.Compound == nil {
			continue
		}
		for _, s := range comp.Compound.Simple {
			if s.Kind == KindParent {
				return true
			}
		}
	}
	return false
}

// ResolveParent substitutes every "&" compound in child with the full
// parent complex selector, or -- if child has no "&" at all --
// implicitly nests child as a descendant of parent. This generalizes
// renderer.buildSelector's strings.ReplaceAll(part, "&", parentSelector)
// into structural substitution so the result is a real Complex the
// extension engine can unify against, not an opaque string.
func ResolveParent(parent, child *Complex) *Complex {
	if !child.ContainsParent() {
		merged := &Complex{}
		merged.Components = append(merged.Components, parent.Components...)
		merged.Components = append(merged.Components, child.Components...)
		return merged
	}
	out := &Complex{}
	for _, comp := range child.Components {
		if comp.Compound == nil {
			out.Components = append(out.Components, comp)
			continue
		}
		if !containsParentSimple(comp.Compound) {
			out.Components = append(out.Components, comp)
			continue
		}
		out.Components = append(out.Components, expandParentCompound(parent, comp.Compound)...)
	}
	return out
}

func containsParentSimple(c *Compound) bool {
	for _, s := range c.Simple {
		if s.Kind == KindParent {
			return true
		}
	}
	return false
}

// expandParentCompound splices parent's trailing compound's simple
// selectors in place of "&", e.g. parent ".a .b", child "&:hover"
// yields ".a .b:hover".
func expandParentCompound(parent *Complex, compound *Compound) []Component {
	if len(parent.Components) == 0 {
		return []Component{{Compound: compound}}
	}
	last := len(parent.Components) - 1
	lastCompound := parent.Components[last].Compound
	merged := &Compound{}
	for _, s := range compound.Simple {
		if s.Kind == KindParent {
			if lastCompound != nil {
				merged.Simple = append(merged.Simple, lastCompound.Simple...)
			}
		} else {
			merged.Simple = append(merged.Simple, s)
		}
	}
	out := append([]Component{}, parent.Components[:last]...)
	out = append(out, Component{Compound: merged})
	return out
}
