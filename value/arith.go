package value

import (
	"fmt"

	"github.com/go-sass/sass/sasserror"
)

// unitFactor maps a length/angle/time/frequency/resolution unit to its
// size relative to that dimension's base unit, generalizing
// expression.Value's bare px/no-px arithmetic (which only ever compared
// raw numbers) into the real CSS unit-conversion table Sass performs
// arithmetic through.
var unitFactor = map[string]float64{
	// length, base = px
	"px": 1, "in": 96, "pc": 16, "pt": 96.0 / 72.0, "cm": 96.0 / 2.54, "mm": 96.0 / 25.4, "q": 96.0 / 101.6,
	// angle, base = deg
	"deg": 1, "grad": 0.9, "rad": 180 / 3.141592653589793, "turn": 360,
	// time, base = s
	"s": 1, "ms": 0.001,
	// frequency, base = Hz
	"hz": 1, "khz": 1000,
	// resolution, base = dpi
	"dpi": 1, "dpcm": 2.54, "dppx": 96, "x": 96,
}

var unitDim = map[string]string{
	"px": "length", "in": "length", "pc": "length", "pt": "length", "cm": "length", "mm": "length", "q": "length",
	"deg": "angle", "grad": "angle", "rad": "angle", "turn": "angle",
	"s": "time", "ms": "time",
	"hz": "frequency", "khz": "frequency",
	"dpi": "resolution", "dpcm": "resolution", "dppx": "resolution", "x": "resolution",
}

func unitDimension(u string) string {
	if d, ok := unitDim[u]; ok {
		return d
	}
	return u // unrecognized units are only "compatible" with themselves
}

func factorFor(u string) (float64, bool) {
	f, ok := unitFactor[u]
	return f, ok
}

// normalizeToBase converts a Number to its dimension's base unit so
// equality/comparison can ignore which unit it was written in (1in ==
// 96px). Numbers with incommensurable units are compared in their
// original units by fuzzy-equality's CompatibleUnits guard, which
// normalizeToBase does not need to re-check.
func normalizeToBase(v *Value) float64 {
	if !v.HasUnits() {
		return v.Number
	}
	n := v.Number
	for _, u := range v.Numerator {
		if f, ok := factorFor(u); ok {
			n *= f
		}
	}
	for _, u := range v.Denominator {
		if f, ok := factorFor(u); ok {
			n /= f
		}
	}
	return n
}

// convertedNumber returns b's numeric value expressed in a's unit, for
// arithmetic where Sass implicitly converts the right operand into the
// left operand's unit (1in + 10px => 1.104166667in).
func convertedNumber(a, b *Value) (float64, error) {
	if !a.HasUnits() || !b.HasUnits() {
		return b.Number, nil
	}
	af, ok1 := factorFor(a.Unit())
	bf, ok2 := factorFor(b.Unit())
	if !ok1 || !ok2 {
		if a.Unit() == b.Unit() {
			return b.Number, nil
		}
		return 0, fmt.Errorf("incompatible units %s and %s", a.Unit(), b.Unit())
	}
	return b.Number * bf / af, nil
}

// Add implements Sass's + operator across numbers, strings (concat) and
// colors (channel-wise), the same operator-overload-by-Kind shape as
// expression.Value.Add but extended to strings/colors.
func Add(a, b *Value, span sasserror.Span) (*Value, error) {
	switch {
	case a.Kind == KindNumber && b.Kind == KindNumber:
		if !CompatibleUnits(a, b) {
			return nil, sasserror.Type(span, "%s and %s have incompatible units", a, b)
		}
		bn, err := convertedNumber(a, b)
		if err != nil {
			return nil, sasserror.Type(span, "%s", err)
		}
		return &Value{Kind: KindNumber, Number: a.Number + bn, Numerator: a.Numerator, Denominator: a.Denominator}, nil
	case a.Kind == KindColor && b.Kind == KindColor:
		return &Value{Kind: KindColor, Color: channelOp(a.Color, b.Color, func(x, y float64) float64 { return x + y })}, nil
	case a.Kind == KindString || b.Kind == KindString:
		text := func(v *Value) string {
			if v.Kind == KindString {
				return v.Str
			}
			return v.String()
		}
		return &Value{Kind: KindString, Str: text(a) + text(b), Quoted: a.Quoted || b.Quoted}, nil
	default:
		return &Value{Kind: KindString, Str: a.String() + b.String()}, nil
	}
}

// Subtract implements -.
func Subtract(a, b *Value, span sasserror.Span) (*Value, error) {
	if a.Kind == KindNumber && b.Kind == KindNumber {
		if !CompatibleUnits(a, b) {
			return nil, sasserror.Type(span, "%s and %s have incompatible units", a, b)
		}
		bn, err := convertedNumber(a, b)
		if err != nil {
			return nil, sasserror.Type(span, "%s", err)
		}
		return &Value{Kind: KindNumber, Number: a.Number - bn, Numerator: a.Numerator, Denominator: a.Denominator}, nil
	}
	if a.Kind == KindColor && b.Kind == KindColor {
		return &Value{Kind: KindColor, Color: channelOp(a.Color, b.Color, func(x, y float64) float64 { return x - y })}, nil
	}
	return nil, sasserror.Type(span, "cannot subtract %s from %s", b, a)
}

// Multiply implements *.
func Multiply(a, b *Value, span sasserror.Span) (*Value, error) {
	if a.Kind != KindNumber || b.Kind != KindNumber {
		return nil, sasserror.Type(span, "%s and %s can't be multiplied", a, b)
	}
	num := append(append([]string{}, a.Numerator...), b.Numerator...)
	den := append(append([]string{}, a.Denominator...), b.Denominator...)
	num, den = cancelUnits(num, den)
	return &Value{Kind: KindNumber, Number: a.Number * b.Number, Numerator: num, Denominator: den}, nil
}

// Divide implements /.
func Divide(a, b *Value, span sasserror.Span) (*Value, error) {
	if a.Kind != KindNumber || b.Kind != KindNumber {
		return nil, sasserror.Type(span, "%s and %s can't be divided", a, b)
	}
	if b.Number == 0 {
		return nil, sasserror.Range(span, "division by zero: %s / %s", a, b)
	}
	num := append(append([]string{}, a.Numerator...), b.Denominator...)
	den := append(append([]string{}, a.Denominator...), b.Numerator...)
	num, den = cancelUnits(num, den)
	return &Value{Kind: KindNumber, Number: a.Number / b.Number, Numerator: num, Denominator: den}, nil
}

// Modulo implements %.
func Modulo(a, b *Value, span sasserror.Span) (*Value, error) {
	if a.Kind != KindNumber || b.Kind != KindNumber {
		return nil, sasserror.Type(span, "%s and %s can't be used with %%", a, b)
	}
	bn, err := convertedNumber(a, b)
	if err != nil {
		return nil, sasserror.Type(span, "%s", err)
	}
	if bn == 0 {
		return nil, sasserror.Range(span, "modulo by zero")
	}
	r := a.Number - bn*float64(int64(a.Number/bn))
	return &Value{Kind: KindNumber, Number: r, Numerator: a.Numerator, Denominator: a.Denominator}, nil
}

// Negate implements unary -.
func Negate(a *Value, span sasserror.Span) (*Value, error) {
	if a.Kind != KindNumber {
		return nil, sasserror.Type(span, "%s is not a number", a)
	}
	return &Value{Kind: KindNumber, Number: -a.Number, Numerator: a.Numerator, Denominator: a.Denominator}, nil
}

// cancelUnits removes one matching unit from each side, implementing
// e.g. px*px/px -> px.
func cancelUnits(num, den []string) ([]string, []string) {
	for i := 0; i < len(num); i++ {
		for j := 0; j < len(den); j++ {
			if num[i] == den[j] {
				num = append(num[:i], num[i+1:]...)
				den = append(den[:j], den[j+1:]...)
				i--
				break
			}
		}
	}
	return num, den
}

func channelOp(a, b *Color, op func(x, y float64) float64) *Color {
	return &Color{
		R: clampByte(op(float64(a.R), float64(b.R))),
		G: clampByte(op(float64(a.G), float64(b.G))),
		B: clampByte(op(float64(a.B), float64(b.B))),
		A: a.A,
	}
}

func clampByte(f float64) uint8 {
	if f < 0 {
		return 0
	}
	if f > 255 {
		return 255
	}
	return uint8(f)
}

// Compare implements Sass's <, <=, >, >= for numbers, which must share
// a comparable unit dimension.
func Compare(a, b *Value, span sasserror.Span) (int, error) {
	if a.Kind != KindNumber || b.Kind != KindNumber {
		return 0, sasserror.Type(span, "%s and %s can't be compared", a, b)
	}
	if !CompatibleUnits(a, b) {
		return 0, sasserror.Type(span, "%s and %s have incompatible units", a, b)
	}
	af, bf := normalizeToBase(a), normalizeToBase(b)
	switch {
	case af < bf:
		return -1, nil
	case af > bf:
		return 1, nil
	default:
		return 0, nil
	}
}
