// Package value implements the SassScript value algebra: the tagged union
// of Null, Boolean, Number, String, Color, List, Map, ArgList, Function,
// Mixin and Calculation that every expression in the evaluator reduces
// to. It generalizes the teacher's expression.Value (a single
// number+unit+color+raw struct good enough for LESS) into the full
// variant set Sass needs, while keeping the same "parse once, carry a
// presentation-preserving Raw/Original form" habit for literals that
// can't be renormalized without changing their printed form.
package value

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Kind tags which variant a Value holds.
type Kind int

const (
	KindNull Kind = iota
	KindBoolean
	KindNumber
	KindString
	KindColor
	KindList
	KindMap
	KindArgList
	KindFunction
	KindMixin
	KindCalculation
)

// Separator is a List's item separator, tracked because Sass lists are
// semantically distinguishable by it (space-list vs comma-list) even
// when both serialize similarly.
type Separator int

const (
	SepUndecided Separator = iota
	SepSpace
	SepComma
	SepSlash
)

// Value is the single SassScript runtime value type. Only the fields
// relevant to Kind are meaningful; this mirrors expression.Value's
// "one struct, several optional facets" shape rather than a Go
// interface-per-variant, since every builtin needs fast Kind dispatch
// and Go interface type-switches on ~10 variants read worse than a
// tag field here.
type Value struct {
	Kind Kind

	Boolean bool

	Number       float64
	Numerator    []string // e.g. ["px"] or ["px", "deg"]
	Denominator  []string // e.g. ["s"] for px/s
	SlashNumber  *Value   // present only for a slash-separated Number pair (width/height)
	SlashDenom   *Value

	Str       string
	Quoted    bool

	Color *Color

	List     []*Value
	Sep      Separator
	Bracket  bool

	MapKeys   []*Value
	MapValues []*Value

	ArgPositional []*Value
	ArgKeyword    map[string]*Value

	Callable *Callable

	Calc *Calculation
}

// Callable is a first-class reference to a user-defined or built-in
// function/mixin, returned by Sass's meta.get-function et al.
type Callable struct {
	Name      string
	IsBuiltIn bool
}

// Calculation models calc()/min()/max()/clamp() trees that survive to
// CSS output unevaluated when they contain indeterminate operands.
type Calculation struct {
	Name string
	Args []CalcArg
}

// CalcArg is one operand of a Calculation: a Number, a bare String
// (e.g. an unresolved CSS custom property), a nested Calculation, or a
// CalcOperation (a binary +,-,*,/ node).
type CalcArg struct {
	Number      *Value
	Str         string
	Calculation *Calculation
	Operation   *CalcOperation
}

type CalcOperation struct {
	Op    byte // '+', '-', '*', '/'
	Left  CalcArg
	Right CalcArg
}

var Null = &Value{Kind: KindNull}
var True = &Value{Kind: KindBoolean, Boolean: true}
var False = &Value{Kind: KindBoolean, Boolean: false}

func Bool(b bool) *Value {
	if b {
		return True
	}
	return False
}

// Num builds a unitless number.
func Num(n float64) *Value {
	return &Value{Kind: KindNumber, Number: n}
}

// NumUnit builds a number with a single numerator unit, the common case
// ("10px", "1.5em").
func NumUnit(n float64, unit string) *Value {
	v := &Value{Kind: KindNumber, Number: n}
	if unit != "" {
		v.Numerator = []string{unit}
	}
	return v
}

// Str builds an unquoted string.
func Str(s string) *Value {
	return &Value{Kind: KindString, Str: s}
}

// QuotedStr builds a quoted string.
func QuotedStr(s string) *Value {
	return &Value{Kind: KindString, Str: s, Quoted: true}
}

// NewList builds a list with the given separator.
func NewList(items []*Value, sep Separator, bracketed bool) *Value {
	return &Value{Kind: KindList, List: items, Sep: sep, Bracket: bracketed}
}

// IsTruthy implements Sass truthiness: everything except null and the
// boolean false is truthy (unlike JS/Python, 0 and "" are truthy).
func (v *Value) IsTruthy() bool {
	if v == nil {
		return false
	}
	switch v.Kind {
	case KindNull:
		return false
	case KindBoolean:
		return v.Boolean
	default:
		return true
	}
}

// unitString renders a unit fraction like "px" or "px*deg/s".
func unitString(num, den []string) string {
	if len(num) == 0 && len(den) == 0 {
		return ""
	}
	n := strings.Join(num, "*")
	if len(den) == 0 {
		return n
	}
	return n + "/" + strings.Join(den, "*")
}

// Unit returns the combined numerator/denominator unit string of a
// Number, e.g. "px" or "" for unitless.
func (v *Value) Unit() string {
	if v.Kind != KindNumber {
		return ""
	}
	return unitString(v.Numerator, v.Denominator)
}

// HasUnits reports whether a Number carries any unit at all.
func (v *Value) HasUnits() bool {
	return v.Kind == KindNumber && (len(v.Numerator) > 0 || len(v.Denominator) > 0)
}

// CompatibleUnits reports whether two numbers' units are convertible
// (same physical dimension, e.g. both lengths) per the unitDim
// dimension table.
func CompatibleUnits(a, b *Value) bool {
	if !a.HasUnits() || !b.HasUnits() {
		return true
	}
	return unitDimension(a.Unit()) == unitDimension(b.Unit())
}

// formatFloat mirrors expression.Value's trimFloat: round to 10
// significant digits, render without an exponent, then strip a trailing
// ".000..." artifact, matching Sass's "print up to 10 significant
// digits, no trailing zeros" number formatting rule. NaN and the
// infinities render as calc(NaN), calc(infinity) and calc(-infinity).
func formatFloat(f float64) string {
	if math.IsNaN(f) {
		return "calc(NaN)"
	}
	if math.IsInf(f, 1) {
		return "calc(infinity)"
	}
	if math.IsInf(f, -1) {
		return "calc(-infinity)"
	}
	f, _ = strconv.ParseFloat(strconv.FormatFloat(f, 'g', 10, 64), 64)
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if strings.Contains(s, ".") {
		s = strings.TrimRight(s, "0")
		s = strings.TrimRight(s, ".")
	}
	if s == "-0" {
		s = "0"
	}
	return s
}

// String renders a Value the way it would appear in generated CSS
// (unquoted strings bare, quoted strings with their quotes, numbers
// with units, colors as the most compact equivalent literal).
func (v *Value) String() string {
	if v == nil {
		return ""
	}
	switch v.Kind {
	case KindNull:
		return ""
	case KindBoolean:
		if v.Boolean {
			return "true"
		}
		return "false"
	case KindNumber:
		s := formatFloat(v.Number)
		if v.SlashNumber != nil && v.SlashDenom != nil {
			return v.SlashNumber.String() + "/" + v.SlashDenom.String()
		}
		return s + unitString(v.Numerator, v.Denominator)
	case KindString:
		if v.Quoted {
			return quoteString(v.Str)
		}
		return v.Str
	case KindColor:
		return v.Color.String()
	case KindList, KindArgList:
		return joinList(v.List, v.Sep, v.Bracket)
	case KindMap:
		parts := make([]string, len(v.MapKeys))
		for i := range v.MapKeys {
			parts[i] = v.MapKeys[i].String() + ": " + v.MapValues[i].String()
		}
		return "(" + strings.Join(parts, ", ") + ")"
	case KindFunction:
		return "get-function(\"" + v.Callable.Name + "\")"
	case KindMixin:
		return v.Callable.Name
	case KindCalculation:
		return v.Calc.String()
	default:
		return ""
	}
}

func (c *Calculation) String() string {
	parts := make([]string, len(c.Args))
	for i, a := range c.Args {
		parts[i] = a.String()
	}
	return c.Name + "(" + strings.Join(parts, ", ") + ")"
}

func (a CalcArg) String() string {
	switch {
	case a.Number != nil:
		return a.Number.String()
	case a.Calculation != nil:
		return a.Calculation.String()
	case a.Operation != nil:
		return fmt.Sprintf("(%s %c %s)", a.Operation.Left, a.Operation.Op, a.Operation.Right)
	default:
		return a.Str
	}
}

func quoteString(s string) string {
	q := byte('"')
	if strings.Contains(s, "\"") && !strings.Contains(s, "'") {
		q = '\''
	}
	var b strings.Builder
	b.WriteByte(q)
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == q || c == '\\' {
			b.WriteByte('\\')
		}
		b.WriteByte(c)
	}
	b.WriteByte(q)
	return b.String()
}

func joinList(items []*Value, sep Separator, bracketed bool) string {
	var d string
	switch sep {
	case SepComma:
		d = ", "
	case SepSlash:
		d = "/"
	default:
		d = " "
	}
	parts := make([]string, len(items))
	for i, it := range items {
		parts[i] = it.String()
	}
	s := strings.Join(parts, d)
	if bracketed {
		return "[" + s + "]"
	}
	return s
}

// Equal implements Sass's fuzzy-equality: numbers compare within an
// epsilon after unit normalization, everything else compares
// structurally.
func Equal(a, b *Value) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case KindNull:
		return true
	case KindBoolean:
		return a.Boolean == b.Boolean
	case KindNumber:
		if !CompatibleUnits(a, b) {
			return false
		}
		af, bf := normalizeToBase(a), normalizeToBase(b)
		return math.Abs(af-bf) < 1e-11
	case KindString:
		return a.Str == b.Str
	case KindColor:
		return a.Color.Equal(b.Color)
	case KindList, KindArgList:
		if a.Sep != b.Sep || a.Bracket != b.Bracket || len(a.List) != len(b.List) {
			return false
		}
		for i := range a.List {
			if !Equal(a.List[i], b.List[i]) {
				return false
			}
		}
		return true
	case KindMap:
		if len(a.MapKeys) != len(b.MapKeys) {
			return false
		}
		for i, k := range a.MapKeys {
			bv, ok := mapLookup(b, k)
			if !ok || !Equal(a.MapValues[i], bv) {
				return false
			}
		}
		return true
	default:
		return a.String() == b.String()
	}
}

func mapLookup(m *Value, key *Value) (*Value, bool) {
	for i, k := range m.MapKeys {
		if Equal(k, key) {
			return m.MapValues[i], true
		}
	}
	return nil, false
}

// MapSet returns a new map value with key set to val, preserving
// existing key order and appending new keys (mirrors Sass's map.set
// and @use of the immutable-map idiom).
func MapSet(m *Value, key, val *Value) *Value {
	keys := make([]*Value, 0, len(m.MapKeys)+1)
	vals := make([]*Value, 0, len(m.MapValues)+1)
	found := false
	for i, k := range m.MapKeys {
		keys = append(keys, k)
		if Equal(k, key) {
			vals = append(vals, val)
			found = true
		} else {
			vals = append(vals, m.MapValues[i])
		}
	}
	if !found {
		keys = append(keys, key)
		vals = append(vals, val)
	}
	return &Value{Kind: KindMap, MapKeys: keys, MapValues: vals}
}

// SortedMapKeys returns the map's keys in the fixed insertion order
// Sass requires (maps are ordered, not sorted) -- kept as a helper so
// callers don't need to reach into MapKeys directly.
func SortedMapKeys(m *Value) []*Value {
	return append([]*Value(nil), m.MapKeys...)
}
