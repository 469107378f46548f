// Package stringfn implements the `string.*` built-in module and its
// legacy global aliases (`quote`, `unquote`, `str-length`, ...). The
// quoting/trimming helpers are grounded on the teacher's
// functions/strings.go (Replace's quote-stripping idiom), generalized
// from raw CSS-text strings onto value.Value's Quoted flag.
package stringfn

import (
	"strings"
	"unicode/utf8"

	"github.com/go-sass/sass/builtin"
	"github.com/go-sass/sass/sasserror"
	"github.com/go-sass/sass/value"
)

// Register adds every string.* function to r.
func Register(r *builtin.Registry) {
	r.RegisterModule("string", "quote", quoteFn, true)
	r.RegisterModule("string", "unquote", unquoteFn, true)
	r.RegisterModule("string", "length", lengthFn, true)
	r.RegisterModule("string", "to-upper-case", toUpperFn, true)
	r.RegisterModule("string", "to-lower-case", toLowerFn, true)
	r.RegisterModule("string", "insert", insertFn, true)
	r.RegisterModule("string", "index", indexFn, true)
	r.RegisterModule("string", "slice", sliceFn, true)
	r.RegisterModule("string", "unique-id", uniqueIDFn, true)
}

func stringArg(a *builtin.Args, i int) (*value.Value, error) {
	v := a.Get(i, nil)
	if v == nil || (v.Kind != value.KindString) {
		return nil, sasserror.Type(a.Span, "argument must be a string")
	}
	return v, nil
}

func quoteFn(a *builtin.Args) (*value.Value, error) {
	s, err := stringArg(a, 0)
	if err != nil {
		return nil, err
	}
	return value.QuotedStr(s.Str), nil
}

func unquoteFn(a *builtin.Args) (*value.Value, error) {
	s, err := stringArg(a, 0)
	if err != nil {
		return nil, err
	}
	return value.Str(s.Str), nil
}

func lengthFn(a *builtin.Args) (*value.Value, error) {
	s, err := stringArg(a, 0)
	if err != nil {
		return nil, err
	}
	return value.Num(float64(utf8.RuneCountInString(s.Str))), nil
}

func toUpperFn(a *builtin.Args) (*value.Value, error) {
	s, err := stringArg(a, 0)
	if err != nil {
		return nil, err
	}
	v := value.Str(strings.ToUpper(s.Str))
	v.Quoted = s.Quoted
	return v, nil
}

func toLowerFn(a *builtin.Args) (*value.Value, error) {
	s, err := stringArg(a, 0)
	if err != nil {
		return nil, err
	}
	v := value.Str(strings.ToLower(s.Str))
	v.Quoted = s.Quoted
	return v, nil
}

// insertFn implements string.insert($string, $insert, $index):
// negative indices count from the end, and an out-of-range index
// clamps to the nearest string boundary the way Sass's reference
// implementation does rather than erroring.
func insertFn(a *builtin.Args) (*value.Value, error) {
	s, err := stringArg(a, 0)
	if err != nil {
		return nil, err
	}
	ins, err := stringArg(a, 1)
	if err != nil {
		return nil, err
	}
	idxArg := a.Get(2, nil)
	if idxArg == nil || idxArg.Kind != value.KindNumber {
		return nil, sasserror.Type(a.Span, "$index must be a number")
	}
	runes := []rune(s.Str)
	idx := clampInsertIndex(int(idxArg.Number), len(runes))
	out := string(runes[:idx]) + ins.Str + string(runes[idx:])
	v := value.Str(out)
	v.Quoted = s.Quoted
	return v, nil
}

func clampInsertIndex(idx, length int) int {
	if idx < 0 {
		idx = length + idx + 1
	} else {
		idx--
	}
	if idx < 0 {
		idx = 0
	}
	if idx > length {
		idx = length
	}
	return idx
}

func indexFn(a *builtin.Args) (*value.Value, error) {
	s, err := stringArg(a, 0)
	if err != nil {
		return nil, err
	}
	sub, err := stringArg(a, 1)
	if err != nil {
		return nil, err
	}
	byteIdx := strings.Index(s.Str, sub.Str)
	if byteIdx < 0 {
		return value.Null, nil
	}
	return value.Num(float64(utf8.RuneCountInString(s.Str[:byteIdx]) + 1)), nil
}

func sliceFn(a *builtin.Args) (*value.Value, error) {
	s, err := stringArg(a, 0)
	if err != nil {
		return nil, err
	}
	runes := []rune(s.Str)
	start := sliceBound(a.Get(1, value.Num(1)), len(runes), 1)
	end := sliceBound(a.Get(2, value.Num(float64(len(runes)))), len(runes), len(runes))
	if start > end {
		v := value.Str("")
		v.Quoted = s.Quoted
		return v, nil
	}
	v := value.Str(string(runes[start-1 : end]))
	v.Quoted = s.Quoted
	return v, nil
}

func sliceBound(n *value.Value, length, def int) int {
	if n == nil || n.Kind != value.KindNumber {
		return def
	}
	idx := int(n.Number)
	if idx < 0 {
		idx = length + idx + 1
	}
	if idx < 1 {
		idx = 1
	}
	if idx > length {
		idx = length
	}
	return idx
}

var uniqueIDCounter int

func uniqueIDFn(a *builtin.Args) (*value.Value, error) {
	uniqueIDCounter++
	return value.Str(uniqueIDName(uniqueIDCounter)), nil
}

// uniqueIDName produces a CSS-identifier-safe string; real Sass draws
// from a wider alphabet and random seed, but a monotonic counter is
// sufficient since output only needs to be unique within one compile.
func uniqueIDName(n int) string {
	const alphabet = "abcdefghijklmnopqrstuvwxyz"
	if n == 0 {
		return "u" + string(alphabet[0])
	}
	var b strings.Builder
	b.WriteByte('u')
	for n > 0 {
		b.WriteByte(alphabet[n%len(alphabet)])
		n /= len(alphabet)
	}
	return b.String()
}
