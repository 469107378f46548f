// Package mathfn implements the `math.*` built-in module plus the
// legacy global math functions it replaces (`percentage`, `round`,
// `ceil`, `floor`, `abs`, `min`, `max`). It's grounded on the shape of
// the teacher's functions/math.go (Ceil/Floor/Round/Abs/Pow/Min/Max,
// each a thin wrapper over a math.* stdlib call plus original-unit
// preservation) but operates on value.Value/value.Number directly
// instead of parsing/formatting through strings.
package mathfn

import (
	"math"

	"github.com/go-sass/sass/builtin"
	"github.com/go-sass/sass/sasserror"
	"github.com/go-sass/sass/value"
)

// Register adds every math.* function (and its legacy global alias,
// where Sass defines one) to r.
func Register(r *builtin.Registry) {
	r.RegisterModule("math", "ceil", unary(math.Ceil), true)
	r.RegisterModule("math", "floor", unary(math.Floor), true)
	r.RegisterModule("math", "round", unary(math.Round), true)
	r.RegisterModule("math", "abs", unary(math.Abs), true)
	r.RegisterModule("math", "sqrt", unaryUnitless(math.Sqrt), true)
	r.RegisterModule("math", "sin", unaryUnitless(math.Sin), true)
	r.RegisterModule("math", "cos", unaryUnitless(math.Cos), true)
	r.RegisterModule("math", "tan", unaryUnitless(math.Tan), true)
	r.RegisterModule("math", "div", divFn, false)
	r.RegisterModule("math", "pow", powFn, false)
	r.RegisterModule("math", "min", minMax(false), true)
	r.RegisterModule("math", "max", minMax(true), true)
	r.RegisterModule("math", "percentage", percentageFn, true)
	r.RegisterModule("math", "random", randomFn, true)
	r.RegisterModule("math", "compatible", compatibleFn, false)
	r.RegisterModule("math", "is-unitless", isUnitlessFn, false)
	r.RegisterModule("math", "unit", unitFn, false)
}

func unary(f func(float64) float64) builtin.Func {
	return func(a *builtin.Args) (*value.Value, error) {
		n := a.Get(0, nil)
		if n == nil || n.Kind != value.KindNumber {
			return nil, sasserror.Type(a.Span, "argument must be a number")
		}
		return value.NumUnit(f(n.Number), n.Unit()), nil
	}
}

// unaryUnitless requires its argument be unitless, matching Sass's
// trig/sqrt built-ins (they'd be dimensionally meaningless otherwise).
func unaryUnitless(f func(float64) float64) builtin.Func {
	return func(a *builtin.Args) (*value.Value, error) {
		n := a.Get(0, nil)
		if n == nil || n.Kind != value.KindNumber {
			return nil, sasserror.Type(a.Span, "argument must be a number")
		}
		if n.HasUnits() {
			return nil, sasserror.Type(a.Span, "expected unitless number, got %s", n.Unit())
		}
		return value.Num(f(n.Number)), nil
	}
}

func divFn(a *builtin.Args) (*value.Value, error) {
	x := a.Get(0, nil)
	y := a.Get(1, nil)
	if x == nil || y == nil {
		return nil, sasserror.Arity(a.Span, "math.div() requires 2 arguments")
	}
	return value.Divide(x, y, a.Span)
}

func powFn(a *builtin.Args) (*value.Value, error) {
	base := a.Get(0, nil)
	exp := a.Get(1, nil)
	if base == nil || exp == nil {
		return nil, sasserror.Arity(a.Span, "math.pow() requires 2 arguments")
	}
	if base.HasUnits() || exp.HasUnits() {
		return nil, sasserror.Type(a.Span, "math.pow() arguments must be unitless")
	}
	return value.Num(math.Pow(base.Number, exp.Number)), nil
}

func minMax(wantMax bool) builtin.Func {
	return func(a *builtin.Args) (*value.Value, error) {
		if len(a.Positional) == 0 {
			return nil, sasserror.Arity(a.Span, "at least one argument required")
		}
		best := a.Positional[0]
		if best.Kind != value.KindNumber {
			return nil, sasserror.Type(a.Span, "argument must be a number")
		}
		for _, v := range a.Positional[1:] {
			if v.Kind != value.KindNumber {
				return nil, sasserror.Type(a.Span, "argument must be a number")
			}
			cmp, err := value.Compare(best, v, a.Span)
			if err != nil {
				return nil, err
			}
			if (wantMax && cmp < 0) || (!wantMax && cmp > 0) {
				best = v
			}
		}
		return best, nil
	}
}

func percentageFn(a *builtin.Args) (*value.Value, error) {
	n := a.Get(0, nil)
	if n == nil || n.HasUnits() {
		return nil, sasserror.Type(a.Span, "percentage() requires a unitless number")
	}
	return value.NumUnit(n.Number*100, "%"), nil
}

func randomFn(a *builtin.Args) (*value.Value, error) {
	limit := a.Get(0, nil)
	if limit == nil {
		return value.Num(pseudoRandom()), nil
	}
	if limit.HasUnits() || limit.Number < 1 {
		return nil, sasserror.Range(a.Span, "$limit must be a unitless number >= 1")
	}
	n := int(limit.Number)
	return value.Num(float64(1 + int(pseudoRandom()*float64(n))%n)), nil
}

// pseudoRandom draws from a package-level splitmix64 generator with a
// fixed seed, so every process produces the same sequence of values;
// math/rand is not used.
var randSource = newSplitMix64(0x9e3779b97f4a7c15)

func pseudoRandom() float64 {
	return float64(randSource.next()%1_000_000) / 1_000_000
}

type splitMix64 struct{ state uint64 }

func newSplitMix64(seed uint64) *splitMix64 { return &splitMix64{state: seed} }

func (s *splitMix64) next() uint64 {
	s.state += 0x9e3779b97f4a7c15
	z := s.state
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	return z ^ (z >> 31)
}

func compatibleFn(a *builtin.Args) (*value.Value, error) {
	x := a.Get(0, nil)
	y := a.Get(1, nil)
	if x == nil || y == nil {
		return nil, sasserror.Arity(a.Span, "math.compatible() requires 2 arguments")
	}
	return value.Bool(value.CompatibleUnits(x, y)), nil
}

func isUnitlessFn(a *builtin.Args) (*value.Value, error) {
	n := a.Get(0, nil)
	if n == nil || n.Kind != value.KindNumber {
		return nil, sasserror.Type(a.Span, "argument must be a number")
	}
	return value.Bool(!n.HasUnits()), nil
}

func unitFn(a *builtin.Args) (*value.Value, error) {
	n := a.Get(0, nil)
	if n == nil || n.Kind != value.KindNumber {
		return nil, sasserror.Type(a.Span, "argument must be a number")
	}
	return value.QuotedStr(n.Unit()), nil
}
