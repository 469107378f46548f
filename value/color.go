package value

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Space tags which color model a Color was authored in, so the
// serializer can round-trip to the author's chosen function/notation
// (e.g. hsl(...) stays hsl(...)) the way expression/color.go's Raw
// field preserved the literal text -- generalized here into a proper
// tag instead of a raw-string escape hatch, because Sass lets you
// mix legacy (rgb/hsl/hwb) and CSS Color Level 4 (lab/lch/oklab/
// oklch/xyz) spaces that need real channel math, not string passthrough.
type Space int

const (
	SpaceRGB Space = iota
	SpaceHSL
	SpaceHWB
	SpaceLab
	SpaceLCH
	SpaceOKLab
	SpaceOKLCH
	SpaceXYZ
)

// Color is always stored with an sRGB triple (R,G,B 0-255, A 0-1) as
// the canonical representation, plus the Space it was authored in for
// faithful re-serialization and for legacy HSL-channel accessor
// functions (hue/saturation/lightness).
type Color struct {
	R, G, B uint8
	A       float64
	Space   Space
	// Legacy HSL components, kept alongside R/G/B the way
	// expression.Color does, since hue()/saturation()/lightness() and
	// adjust-hue() operate on the HSL representation even for colors
	// authored as hex/rgb literals.
	H, S, L float64
}

func clamp01(f float64) float64 {
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}

// RGBA constructs a Color from 0-255 channels and a 0-1 alpha.
func RGBA(r, g, b uint8, a float64) *Color {
	c := &Color{R: r, G: g, B: b, A: clamp01(a), Space: SpaceRGB}
	c.H, c.S, c.L = rgbToHSL(r, g, b)
	return c
}

// HSLA constructs a Color from hue (degrees, any range), saturation and
// lightness (0-100) and a 0-1 alpha.
func HSLA(h, s, l, a float64) *Color {
	r, g, b := hslToRGB(h, s, l)
	return &Color{R: r, G: g, B: b, A: clamp01(a), Space: SpaceHSL, H: math.Mod(h, 360), S: s, L: l}
}

// ParseHex parses a #rgb, #rgba, #rrggbb or #rrggbbaa literal.
func ParseHex(s string) (*Color, error) {
	s = strings.TrimPrefix(s, "#")
	expand := func(c byte) (byte, byte) { return c, c }
	var r, g, b uint8
	a := 1.0
	switch len(s) {
	case 3, 4:
		r1, r2 := expand(s[0])
		g1, g2 := expand(s[1])
		b1, b2 := expand(s[2])
		r = hexByte(r1, r2)
		g = hexByte(g1, g2)
		b = hexByte(b1, b2)
		if len(s) == 4 {
			a1, a2 := expand(s[3])
			a = float64(hexByte(a1, a2)) / 255
		}
	case 6, 8:
		r = hexByte(s[0], s[1])
		g = hexByte(s[2], s[3])
		b = hexByte(s[4], s[5])
		if len(s) == 8 {
			a = float64(hexByte(s[6], s[7])) / 255
		}
	default:
		return nil, fmt.Errorf("invalid hex color #%s", s)
	}
	return RGBA(r, g, b, a), nil
}

func hexByte(hi, lo byte) uint8 {
	h, _ := strconv.ParseUint(string([]byte{hi, lo}), 16, 8)
	return uint8(h)
}

func rgbToHSL(r, g, b uint8) (h, s, l float64) {
	rf, gf, bf := float64(r)/255, float64(g)/255, float64(b)/255
	max := math.Max(rf, math.Max(gf, bf))
	min := math.Min(rf, math.Min(gf, bf))
	l = (max + min) / 2
	if max == min {
		return 0, 0, l * 100
	}
	d := max - min
	if l > 0.5 {
		s = d / (2 - max - min)
	} else {
		s = d / (max + min)
	}
	switch max {
	case rf:
		h = (gf - bf) / d
		if gf < bf {
			h += 6
		}
	case gf:
		h = (bf-rf)/d + 2
	case bf:
		h = (rf-gf)/d + 4
	}
	h *= 60
	return h, s * 100, l * 100
}

func hslToRGB(h, s, l float64) (uint8, uint8, uint8) {
	h = math.Mod(math.Mod(h, 360)+360, 360)
	s = clamp01(s / 100)
	l = clamp01(l / 100)
	if s == 0 {
		g := uint8(math.Round(l * 255))
		return g, g, g
	}
	var q float64
	if l < 0.5 {
		q = l * (1 + s)
	} else {
		q = l + s - l*s
	}
	p := 2*l - q
	hk := h / 360
	r := hueToRGB(p, q, hk+1.0/3)
	g := hueToRGB(p, q, hk)
	b := hueToRGB(p, q, hk-1.0/3)
	return uint8(math.Round(r * 255)), uint8(math.Round(g * 255)), uint8(math.Round(b * 255))
}

func hueToRGB(p, q, t float64) float64 {
	if t < 0 {
		t++
	}
	if t > 1 {
		t--
	}
	switch {
	case t < 1.0/6:
		return p + (q-p)*6*t
	case t < 1.0/2:
		return q
	case t < 2.0/3:
		return p + (q-p)*(2.0/3-t)*6
	default:
		return p
	}
}

// Equal compares channel-for-channel, ignoring authored Space the same
// way Sass color equality ignores how the color literal was written.
func (c *Color) Equal(o *Color) bool {
	if c == nil || o == nil {
		return c == o
	}
	return c.R == o.R && c.G == o.G && c.B == o.B && math.Abs(c.A-o.A) < 1e-11
}

// String renders the color in its authored notation, generalizing
// expression.Color's Raw-preservation into real per-space formatting.
func (c *Color) String() string {
	switch c.Space {
	case SpaceHSL:
		if c.A >= 1 {
			return fmt.Sprintf("hsl(%s %s%% %s%%)", trimNum(c.H), trimNum(c.S), trimNum(c.L))
		}
		return fmt.Sprintf("hsl(%s %s%% %s%% / %s)", trimNum(c.H), trimNum(c.S), trimNum(c.L), trimNum(c.A))
	default:
		if c.A >= 1 {
			return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
		}
		return fmt.Sprintf("rgba(%d, %d, %d, %s)", c.R, c.G, c.B, trimNum(c.A))
	}
}

func trimNum(f float64) string {
	return formatFloat(f)
}

// WithAlpha returns a copy of c with alpha replaced, used by
// change-color/fade-in/fade-out/rgba().
func (c *Color) WithAlpha(a float64) *Color {
	nc := *c
	nc.A = clamp01(a)
	return &nc
}

// AdjustHSL returns a copy of c with hue/saturation/lightness deltas
// applied, backing adjust-hue/saturate/desaturate/lighten/darken.
func (c *Color) AdjustHSL(dh, ds, dl float64) *Color {
	h := c.H + dh
	s := clampPercent(c.S + ds)
	l := clampPercent(c.L + dl)
	return HSLA(h, s, l, c.A)
}

func clampPercent(f float64) float64 {
	if f < 0 {
		return 0
	}
	if f > 100 {
		return 100
	}
	return f
}

// Mix blends c with o by weight (0-100, weight of c), implementing the
// mix() builtin's alpha-aware linear blend.
func Mix(c, o *Color, weight float64) *Color {
	w := weight/100*2 - 1
	a := c.A - o.A
	var w1 float64
	if w*a == -1 {
		w1 = (w + 1) / 2
	} else {
		w1 = ((w+a)/(1+w*a) + 1) / 2
	}
	w2 := 1 - w1
	r := uint8(math.Round(float64(c.R)*w1 + float64(o.R)*w2))
	g := uint8(math.Round(float64(c.G)*w1 + float64(o.G)*w2))
	b := uint8(math.Round(float64(c.B)*w1 + float64(o.B)*w2))
	alpha := c.A*weight/100 + o.A*(1-weight/100)
	return RGBA(r, g, b, alpha)
}

// Luminance computes relative luminance per the WCAG formula, backing
// the color.luminance / contrast helpers.
func (c *Color) Luminance() float64 {
	lin := func(ch uint8) float64 {
		v := float64(ch) / 255
		if v <= 0.03928 {
			return v / 12.92
		}
		return math.Pow((v+0.055)/1.055, 2.4)
	}
	return 0.2126*lin(c.R) + 0.7152*lin(c.G) + 0.0722*lin(c.B)
}
