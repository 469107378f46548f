// Package colorfn implements the `color.*` built-in module plus the
// legacy global color functions it replaces (`rgb`, `hsl`, `lighten`,
// `darken`, `mix`, ...). Grounded on functions/colors.go's category
// split (constructors / channel getters / HSL adjusters / blend
// modes), with the actual arithmetic delegated to value.Color's
// methods (value/color.go) instead of functions/colors.go's standalone
// Color type, since the evaluator already represents every color as a
// value.Value wrapping *value.Color, and every Color already carries
// its H/S/L (hue in degrees, saturation and lightness on a 0-100 scale)
// alongside R/G/B.
package colorfn

import (
	"github.com/go-sass/sass/builtin"
	"github.com/go-sass/sass/sasserror"
	"github.com/go-sass/sass/value"
)

// Register adds every color.* function (and legacy global aliases) to r.
func Register(r *builtin.Registry) {
	r.RegisterModule("color", "rgb", rgbFn, true)
	r.RegisterModule("color", "rgba", rgbaFn, true)
	r.RegisterModule("color", "hsl", hslFn, true)
	r.RegisterModule("color", "hsla", hslaFn, true)
	r.RegisterModule("color", "red", channel(func(c *value.Color) float64 { return float64(c.R) }, ""), true)
	r.RegisterModule("color", "green", channel(func(c *value.Color) float64 { return float64(c.G) }, ""), true)
	r.RegisterModule("color", "blue", channel(func(c *value.Color) float64 { return float64(c.B) }, ""), true)
	r.RegisterModule("color", "alpha", alphaFn, true)
	r.RegisterModule("color", "opacity", alphaFn, false)
	r.RegisterModule("color", "hue", channel(func(c *value.Color) float64 { return c.H }, "deg"), true)
	r.RegisterModule("color", "saturation", channel(func(c *value.Color) float64 { return c.S }, "%"), true)
	r.RegisterModule("color", "lightness", channel(func(c *value.Color) float64 { return c.L }, "%"), true)
	r.RegisterModule("color", "mix", mixFn, true)
	r.RegisterModule("color", "invert", invertFn, true)
	r.RegisterModule("color", "complement", complementFn, true)
	r.RegisterModule("color", "grayscale", grayscaleFn, true)
	r.RegisterModule("color", "adjust", adjustFn, false)
	r.RegisterModule("color", "scale", scaleFn, false)
	r.RegisterModule("color", "change", changeFn, false)
	r.RegisterModule("color", "lighten", hslDelta(0, 0, 1), true)
	r.RegisterModule("color", "darken", hslDelta(0, 0, -1), true)
	r.RegisterModule("color", "saturate", hslDelta(0, 1, 0), true)
	r.RegisterModule("color", "desaturate", hslDelta(0, -1, 0), true)
}

func colorArg(a *builtin.Args, i int) (*value.Color, error) {
	v := a.Get(i, nil)
	if v == nil || v.Kind != value.KindColor || v.Color == nil {
		return nil, sasserror.Type(a.Span, "argument must be a color")
	}
	return v.Color, nil
}

func channelNumber(a *builtin.Args, i int) (float64, error) {
	v := a.Get(i, nil)
	if v == nil || v.Kind != value.KindNumber {
		return 0, sasserror.Type(a.Span, "argument must be a number")
	}
	return v.Number, nil
}

func colorOf(c *value.Color) *value.Value { return &value.Value{Kind: value.KindColor, Color: c} }

func rgbFn(a *builtin.Args) (*value.Value, error) {
	r, err := channelNumber(a, 0)
	if err != nil {
		return nil, err
	}
	g, err := channelNumber(a, 1)
	if err != nil {
		return nil, err
	}
	b, err := channelNumber(a, 2)
	if err != nil {
		return nil, err
	}
	alpha := 1.0
	if len(a.Positional) > 3 {
		alpha, err = channelNumber(a, 3)
		if err != nil {
			return nil, err
		}
	}
	return colorOf(value.RGBA(clampByte(r), clampByte(g), clampByte(b), alpha)), nil
}

func rgbaFn(a *builtin.Args) (*value.Value, error) { return rgbFn(a) }

func hslFn(a *builtin.Args) (*value.Value, error) {
	h, err := channelNumber(a, 0)
	if err != nil {
		return nil, err
	}
	s, err := channelNumber(a, 1)
	if err != nil {
		return nil, err
	}
	l, err := channelNumber(a, 2)
	if err != nil {
		return nil, err
	}
	alpha := 1.0
	if len(a.Positional) > 3 {
		alpha, err = channelNumber(a, 3)
		if err != nil {
			return nil, err
		}
	}
	return colorOf(value.HSLA(h, s, l, alpha)), nil
}

func hslaFn(a *builtin.Args) (*value.Value, error) { return hslFn(a) }

func clampByte(f float64) uint8 {
	if f < 0 {
		return 0
	}
	if f > 255 {
		return 255
	}
	return uint8(f)
}

func channel(get func(*value.Color) float64, unit string) builtin.Func {
	return func(a *builtin.Args) (*value.Value, error) {
		c, err := colorArg(a, 0)
		if err != nil {
			return nil, err
		}
		return value.NumUnit(get(c), unit), nil
	}
}

func alphaFn(a *builtin.Args) (*value.Value, error) {
	c, err := colorArg(a, 0)
	if err != nil {
		return nil, err
	}
	return value.Num(c.A), nil
}

func mixFn(a *builtin.Args) (*value.Value, error) {
	c1, err := colorArg(a, 0)
	if err != nil {
		return nil, err
	}
	c2, err := colorArg(a, 1)
	if err != nil {
		return nil, err
	}
	weight := 50.0
	if len(a.Positional) > 2 {
		w, err := channelNumber(a, 2)
		if err != nil {
			return nil, err
		}
		weight = w
	}
	return colorOf(value.Mix(c1, c2, weight)), nil
}

func invertFn(a *builtin.Args) (*value.Value, error) {
	c, err := colorArg(a, 0)
	if err != nil {
		return nil, err
	}
	weight := 100.0
	if len(a.Positional) > 1 {
		w, err := channelNumber(a, 1)
		if err != nil {
			return nil, err
		}
		weight = w
	}
	inverted := value.RGBA(255-c.R, 255-c.G, 255-c.B, c.A)
	return colorOf(value.Mix(inverted, c, weight)), nil
}

func complementFn(a *builtin.Args) (*value.Value, error) {
	c, err := colorArg(a, 0)
	if err != nil {
		return nil, err
	}
	return colorOf(c.AdjustHSL(180, 0, 0)), nil
}

func grayscaleFn(a *builtin.Args) (*value.Value, error) {
	c, err := colorArg(a, 0)
	if err != nil {
		return nil, err
	}
	return colorOf(c.AdjustHSL(0, -c.S, 0)), nil
}

// hslDelta builds lighten/darken/saturate/desaturate: each adjusts one
// HSL channel (hue in degrees, saturation/lightness in percentage
// points) by a percentage argument times sign.
func hslDelta(dh, ds, dl float64) builtin.Func {
	return func(a *builtin.Args) (*value.Value, error) {
		c, err := colorArg(a, 0)
		if err != nil {
			return nil, err
		}
		amount, err := channelNumber(a, 1)
		if err != nil {
			return nil, err
		}
		return colorOf(c.AdjustHSL(dh*amount, ds*amount, dl*amount)), nil
	}
}

func adjustFn(a *builtin.Args) (*value.Value, error) {
	c, err := colorArg(a, 0)
	if err != nil {
		return nil, err
	}
	dh := namedNumber(a, "hue")
	ds := namedNumber(a, "saturation")
	dl := namedNumber(a, "lightness")
	result := c.AdjustHSL(dh, ds, dl)
	if dr := namedNumber(a, "red"); dr != 0 {
		result = value.RGBA(clampByte(float64(result.R)+dr), result.G, result.B, result.A)
	}
	if dg := namedNumber(a, "green"); dg != 0 {
		result = value.RGBA(result.R, clampByte(float64(result.G)+dg), result.B, result.A)
	}
	if db := namedNumber(a, "blue"); db != 0 {
		result = value.RGBA(result.R, result.G, clampByte(float64(result.B)+db), result.A)
	}
	if da := namedNumber(a, "alpha"); da != 0 {
		result = result.WithAlpha(result.A + da)
	}
	return colorOf(result), nil
}

func scaleFn(a *builtin.Args) (*value.Value, error) {
	c, err := colorArg(a, 0)
	if err != nil {
		return nil, err
	}
	l := namedNumber(a, "lightness") / 100
	s := namedNumber(a, "saturation") / 100
	h, sat, light := c.H, c.S/100, c.L/100
	if l != 0 {
		light = scaleTowards(light, l)
	}
	if s != 0 {
		sat = scaleTowards(sat, s)
	}
	alpha := c.A
	if da := namedNumber(a, "alpha"); da != 0 {
		alpha = scaleTowards(c.A, da/100)
	}
	return colorOf(value.HSLA(h, sat*100, light*100, alpha)), nil
}

// scaleTowards moves current proportionally toward 1 (positive
// factor) or 0 (negative factor), the fluid scale() semantics Sass
// defines instead of a flat additive delta.
func scaleTowards(current, factor float64) float64 {
	if factor > 0 {
		return current + (1-current)*factor
	}
	return current + current*factor
}

func changeFn(a *builtin.Args) (*value.Value, error) {
	c, err := colorArg(a, 0)
	if err != nil {
		return nil, err
	}
	h, s, l := c.H, c.S, c.L
	useHSL := false
	if v, ok := a.Named["hue"]; ok {
		h = v.Number
		useHSL = true
	}
	if v, ok := a.Named["saturation"]; ok {
		s = v.Number
		useHSL = true
	}
	if v, ok := a.Named["lightness"]; ok {
		l = v.Number
		useHSL = true
	}
	alpha := c.A
	if v, ok := a.Named["alpha"]; ok {
		alpha = v.Number
	}
	r, g, b := c.R, c.G, c.B
	if v, ok := a.Named["red"]; ok {
		r = clampByte(v.Number)
	}
	if v, ok := a.Named["green"]; ok {
		g = clampByte(v.Number)
	}
	if v, ok := a.Named["blue"]; ok {
		b = clampByte(v.Number)
	}
	if useHSL {
		return colorOf(value.HSLA(h, s, l, alpha)), nil
	}
	return colorOf(value.RGBA(r, g, b, alpha)), nil
}

func namedNumber(a *builtin.Args, name string) float64 {
	if v, ok := a.Named[name]; ok && v.Kind == value.KindNumber {
		return v.Number
	}
	return 0
}
