package selector

// UnifyCompounds merges two compound selectors into one that matches
// only elements both would match, or reports ok=false if they target
// incompatible type selectors (e.g. "div" and "span") or duplicate
// ID selectors with different names. This is the primitive the
// extension engine's weave step uses to combine an extender's
// compound with the compound it's replacing.
func UnifyCompounds(a, b *Compound) (*Compound, bool) {
	out := &Compound{}
	out.Simple = append(out.Simple, a.Simple...)

	aType, aHasType := typeOf(a)
	bType, bHasType := typeOf(b)
	if aHasType && bHasType && aType != bType {
		return nil, false
	}

	aID, aHasID := idOf(a)
	bID, bHasID := idOf(b)
	if aHasID && bHasID && aID != bID {
		return nil, false
	}

	for _, s := range b.Simple {
		if s.Kind == KindType && aHasType {
			continue
		}
		if s.Kind == KindUniversal && hasUniversal(a) {
			continue
		}
		if containsSimple(out.Simple, s) {
			continue
		}
		out.Simple = append(out.Simple, s)
	}
	return out, true
}

func typeOf(c *Compound) (string, bool) {
	for _, s := range c.Simple {
		if s.Kind == KindType {
			return s.Name, true
		}
	}
	return "", false
}

func idOf(c *Compound) (string, bool) {
	for _, s := range c.Simple {
		if s.Kind == KindID {
			return s.Name, true
		}
	}
	return "", false
}

func hasUniversal(c *Compound) bool {
	for _, s := range c.Simple {
		if s.Kind == KindUniversal {
			return true
		}
	}
	return false
}

func containsSimple(list []Simple, s Simple) bool {
	for _, e := range list {
		if e.Kind == s.Kind && e.Name == s.Name && e.PseudoArgRaw == s.PseudoArgRaw && e.AttrValue == s.AttrValue {
			return true
		}
	}
	return false
}

// Equal reports whether two compound selectors contain the same set of
// simple selectors irrespective of order, used to detect redundant
// extended selectors (extend.Store drops them through Complex.Equal).
func (c *Compound) Equal(o *Compound) bool {
	if len(c.Simple) != len(o.Simple) {
		return false
	}
	for _, s := range c.Simple {
		if !containsSimple(o.Simple, s) {
			return false
		}
	}
	return true
}

// Equal reports whether two complex selectors are component-for-
// component identical.
func (complex *Complex) Equal(o *Complex) bool {
	if len(complex.Components) != len(o.Components) {
		return false
	}
	for i, comp := range complex.Components {
		oc := o.Components[i]
		if (comp.Compound == nil) != (oc.Compound == nil) {
			return false
		}
		if comp.Compound != nil {
			if !comp.Compound.Equal(oc.Compound) {
				return false
			}
		} else if comp.Combinator != oc.Combinator {
			return false
		}
	}
	return true
}
