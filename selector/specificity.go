package selector

// Specificity encodes CSS specificity as a single fixed-radix integer
// (a*1e6 + b*1e3 + c), matching the GLOSSARY's "single-integer
// specificity" definition: a = ID count, b = class/attribute/pseudo-
// class count, c = type/pseudo-element count.
func (s Simple) specificityTriple() (a, b, c int) {
	switch s.Kind {
	case KindID:
		return 1, 0, 0
	case KindClass, KindAttribute, KindPlaceholder:
		return 0, 1, 0
	case KindPseudo:
		if s.PseudoElement {
			return 0, 0, 1
		}
		// :not()/:is()/:has() borrow the specificity of their most
		// specific argument; a simple pseudo-class counts as one b.
		if s.PseudoArgList != nil {
			maxA, maxB, maxC := 0, 0, 0
			for _, complex := range s.PseudoArgList.Complex {
				ca, cb, cc := complex.specificityTriple()
				if ca*1000000+cb*1000+cc > maxA*1000000+maxB*1000+maxC {
					maxA, maxB, maxC = ca, cb, cc
				}
			}
			return maxA, maxB, maxC
		}
		return 0, 1, 0
	case KindType:
		return 0, 0, 1
	default: // Universal, Parent
		return 0, 0, 0
	}
}

func (comp *Compound) specificityTriple() (a, b, c int) {
	for _, s := range comp.Simple {
		sa, sb, sc := s.specificityTriple()
		a += sa
		b += sb
		c += sc
	}
	return
}

func (complex *Complex) specificityTriple() (a, b, c int) {
	for _, comp := range complex.Components {
		if comp.Compound == nil {
			continue
		}
		ca, cb, cc := comp.Compound.specificityTriple()
		a += ca
		b += cb
		c += cc
	}
	return
}

// Specificity returns the complex selector's specificity as a single
// comparable integer.
func (complex *Complex) Specificity() int {
	a, b, c := complex.specificityTriple()
	return a*1_000_000 + b*1_000 + c
}

// MinSpecificity returns the lowest specificity among the list's
// complex selectors, used when comparing an extended selector's
// "source specificity" floor per the second law of extend.
func (l *List) MinSpecificity() int {
	min := -1
	for _, c := range l.Complex {
		s := c.Specificity()
		if min == -1 || s < min {
			min = s
		}
	}
	if min == -1 {
		return 0
	}
	return min
}

// MaxSpecificity returns the highest specificity among the list's
// complex selectors.
func (l *List) MaxSpecificity() int {
	max := 0
	for _, c := range l.Complex {
		if s := c.Specificity(); s > max {
			max = s
		}
	}
	return max
}
