package vecboard

import (
	"fmt"
	"image/color"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// namedColorCaser folds a CSS color keyword to lowercase before the
// cssNamedColors lookup, so "Red", "RED", and "red" all resolve the same
// way regardless of the authoring tool that wrote the document.
var namedColorCaser = cases.Lower(language.Und)

// RGBA represents a color with red, green, blue, and alpha components.
// Each component is in the range [0, 1].
type RGBA struct {
	R, G, B, A float64
}

// RGBA implements color.Color, returning premultiplied 16-bit components as
// the interface requires.
func (c RGBA) RGBA() (r, g, b, a uint32) {
	pm := c.Premultiply()
	r = uint32(clamp01(pm.R) * 65535)
	g = uint32(clamp01(pm.G) * 65535)
	b = uint32(clamp01(pm.B) * 65535)
	a = uint32(clamp01(pm.A) * 65535)
	return
}

// Color converts RGBA to the standard color.Color interface.
func (c RGBA) Color() color.Color {
	return color.NRGBA{
		R: uint8(clamp255(c.R * 255)),
		G: uint8(clamp255(c.G * 255)),
		B: uint8(clamp255(c.B * 255)),
		A: uint8(clamp255(c.A * 255)),
	}
}

// FromColor converts a standard color.Color to RGBA, undoing the
// premultiplication that color.Color.RGBA applies. A fully transparent
// color converts to the zero RGBA.
func FromColor(c color.Color) RGBA {
	r, g, b, a := c.RGBA()
	if a == 0 {
		return RGBA{}
	}
	af := float64(a)
	return RGBA{
		R: float64(r) / af,
		G: float64(g) / af,
		B: float64(b) / af,
		A: af / 65535,
	}
}

// RGB creates an opaque color from RGB components.
func RGB(r, g, b float64) RGBA {
	return RGBA{R: r, G: g, B: b, A: 1.0}
}

// RGBA2 creates a color from RGBA components.
func RGBA2(r, g, b, a float64) RGBA {
	return RGBA{R: r, G: g, B: b, A: a}
}

// Hex creates a color from a hex string.
// Supports formats: "RGB", "RGBA", "RRGGBB", "RRGGBBAA".
func Hex(hex string) RGBA {
	if hex != "" && hex[0] == '#' {
		hex = hex[1:]
	}

	var r, g, b, a uint32
	a = 255

	switch len(hex) {
	case 3: // RGB
		parseHex(hex[0:1], &r)
		parseHex(hex[1:2], &g)
		parseHex(hex[2:3], &b)
		r, g, b = r*17, g*17, b*17
	case 4: // RGBA
		parseHex(hex[0:1], &r)
		parseHex(hex[1:2], &g)
		parseHex(hex[2:3], &b)
		parseHex(hex[3:4], &a)
		r, g, b, a = r*17, g*17, b*17, a*17
	case 6: // RRGGBB
		parseHex(hex[0:2], &r)
		parseHex(hex[2:4], &g)
		parseHex(hex[4:6], &b)
	case 8: // RRGGBBAA
		parseHex(hex[0:2], &r)
		parseHex(hex[2:4], &g)
		parseHex(hex[4:6], &b)
		parseHex(hex[6:8], &a)
	default:
		return RGBA{R: 0, G: 0, B: 0, A: 1}
	}

	return RGBA{
		R: float64(r) / 255,
		G: float64(g) / 255,
		B: float64(b) / 255,
		A: float64(a) / 255,
	}
}

// parseHex is a helper for hex parsing
func parseHex(s string, val *uint32) {
	*val = 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		*val *= 16
		switch {
		case '0' <= c && c <= '9':
			*val += uint32(c - '0')
		case 'a' <= c && c <= 'f':
			*val += uint32(c - 'a' + 10)
		case 'A' <= c && c <= 'F':
			*val += uint32(c - 'A' + 10)
		default:
			return
		}
	}
}

// Premultiply returns a premultiplied color.
func (c RGBA) Premultiply() RGBA {
	return RGBA{
		R: c.R * c.A,
		G: c.G * c.A,
		B: c.B * c.A,
		A: c.A,
	}
}

// Unpremultiply returns an unpremultiplied color.
func (c RGBA) Unpremultiply() RGBA {
	if c.A == 0 {
		return RGBA{R: 0, G: 0, B: 0, A: 0}
	}
	return RGBA{
		R: c.R / c.A,
		G: c.G / c.A,
		B: c.B / c.A,
		A: c.A,
	}
}

// Lerp performs linear interpolation between two colors.
func (c RGBA) Lerp(other RGBA, t float64) RGBA {
	return RGBA{
		R: c.R + (other.R-c.R)*t,
		G: c.G + (other.G-c.G)*t,
		B: c.B + (other.B-c.B)*t,
		A: c.A + (other.A-c.A)*t,
	}
}

// clamp255 restricts a value to [0, 255] range.
func clamp255(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 255 {
		return 255
	}
	return x
}

// Common colors
var (
	Black       = RGB(0, 0, 0)
	White       = RGB(1, 1, 1)
	Red         = RGB(1, 0, 0)
	Green       = RGB(0, 1, 0)
	Blue        = RGB(0, 0, 1)
	Yellow      = RGB(1, 1, 0)
	Cyan        = RGB(0, 1, 1)
	Magenta     = RGB(1, 0, 1)
	Transparent = RGBA2(0, 0, 0, 0)
)

// cssNamedColors covers the CSS Color Module Level 3 basic + extended
// keyword set most often seen in hand-authored or exported SVG: enough to
// round-trip whiteboard content without carrying the full 147-name table.
var cssNamedColors = map[string]string{
	"black":       "#000000",
	"white":       "#ffffff",
	"red":         "#ff0000",
	"green":       "#008000",
	"lime":        "#00ff00",
	"blue":        "#0000ff",
	"yellow":      "#ffff00",
	"cyan":        "#00ffff",
	"aqua":        "#00ffff",
	"magenta":     "#ff00ff",
	"fuchsia":     "#ff00ff",
	"gray":        "#808080",
	"grey":        "#808080",
	"silver":      "#c0c0c0",
	"maroon":      "#800000",
	"olive":       "#808000",
	"navy":        "#000080",
	"purple":      "#800080",
	"teal":        "#008080",
	"orange":      "#ffa500",
	"pink":        "#ffc0cb",
	"brown":       "#a52a2a",
	"gold":        "#ffd700",
	"indigo":      "#4b0082",
	"violet":      "#ee82ee",
	"coral":       "#ff7f50",
	"salmon":      "#fa8072",
	"khaki":       "#f0e68c",
	"lavender":    "#e6e6fa",
	"turquoise":   "#40e0d0",
	"chocolate":   "#d2691e",
	"crimson":     "#dc143c",
	"transparent": "#00000000",
}

var rgbaFuncPattern = regexp.MustCompile(`(?i)^rgba?\(\s*([^)]+?)\s*\)$`)

// ParseColor parses a CSS-style color string: "#rgb", "#rgba", "#rrggbb",
// "#rrggbbaa", a CSS named color, or "rgba(r, g, b, a)" / "rgb(r, g, b)"
// with r/g/b as 0-255 integers or percentages and a as a 0-1 fraction. It
// returns ErrInvalidColor for anything else, matching the InvalidInput
// error class: malformed color strings are reported to the caller rather
// than silently substituted, so the SVG loader can decide whether to log
// and drop the attribute or keep the element as an UnknownSVGObject.
func ParseColor(s string) (RGBA, error) {
	trimmed := strings.TrimSpace(s)
	lower := namedColorCaser.String(trimmed)

	if strings.HasPrefix(trimmed, "#") {
		return parseHexColor(trimmed)
	}
	if hex, ok := cssNamedColors[lower]; ok {
		return parseHexColor(hex)
	}
	if m := rgbaFuncPattern.FindStringSubmatch(trimmed); m != nil {
		return parseRGBAFunc(m[1])
	}
	return RGBA{}, fmt.Errorf("%w: %q", ErrInvalidColor, s)
}

// ErrInvalidColor is returned by ParseColor for a string that is not a
// recognized hex, named, or rgba() color.
var ErrInvalidColor = fmt.Errorf("vecboard: invalid color string")

func parseHexColor(hex string) (RGBA, error) {
	body := hex
	if strings.HasPrefix(body, "#") {
		body = body[1:]
	}
	switch len(body) {
	case 3, 4, 6, 8:
		return Hex(hex), nil
	default:
		return RGBA{}, fmt.Errorf("%w: %q", ErrInvalidColor, hex)
	}
}

func parseRGBAFunc(body string) (RGBA, error) {
	parts := strings.Split(body, ",")
	if len(parts) != 3 && len(parts) != 4 {
		return RGBA{}, fmt.Errorf("%w: rgba(%s)", ErrInvalidColor, body)
	}

	channel := func(s string) (float64, error) {
		s = strings.TrimSpace(s)
		if strings.HasSuffix(s, "%") {
			v, err := strconv.ParseFloat(strings.TrimSuffix(s, "%"), 64)
			if err != nil {
				return 0, err
			}
			return clamp01(v / 100), nil
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, err
		}
		return clamp01(v / 255), nil
	}

	r, err := channel(parts[0])
	if err != nil {
		return RGBA{}, fmt.Errorf("%w: %v", ErrInvalidColor, err)
	}
	g, err := channel(parts[1])
	if err != nil {
		return RGBA{}, fmt.Errorf("%w: %v", ErrInvalidColor, err)
	}
	b, err := channel(parts[2])
	if err != nil {
		return RGBA{}, fmt.Errorf("%w: %v", ErrInvalidColor, err)
	}

	a := 1.0
	if len(parts) == 4 {
		av, err := strconv.ParseFloat(strings.TrimSpace(parts[3]), 64)
		if err != nil {
			return RGBA{}, fmt.Errorf("%w: %v", ErrInvalidColor, err)
		}
		a = clamp01(av)
	}

	return RGBA{R: r, G: g, B: b, A: a}, nil
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// ToHex renders c as a deterministic lowercase "#rrggbbaa" string (or
// "#rrggbb" when fully opaque), using go-colorful's hex formatting for the
// opaque RGB channels so round-tripping through the SVG writer matches the
// same quantization the rest of the ecosystem uses.
func (c RGBA) ToHex() string {
	cc := colorful.Color{R: clamp01(c.R), G: clamp01(c.G), B: clamp01(c.B)}
	rgbHex := cc.Hex()
	if c.A >= 1.0 {
		return rgbHex
	}
	return fmt.Sprintf("%s%02x", rgbHex, uint8(clamp255(c.A*255)+0.5))
}

// BlendLab interpolates between c and other in CIE-Lab space via
// go-colorful, producing a perceptually uniform gradient where a linear
// Lerp in sRGB would dip through muddy intermediate hues (notably
// red-to-green). Alpha is still blended linearly.
func (c RGBA) BlendLab(other RGBA, t float64) RGBA {
	c1 := colorful.Color{R: clamp01(c.R), G: clamp01(c.G), B: clamp01(c.B)}
	c2 := colorful.Color{R: clamp01(other.R), G: clamp01(other.G), B: clamp01(other.B)}
	blended := c1.BlendLab(c2, t)
	return RGBA{
		R: blended.R,
		G: blended.G,
		B: blended.B,
		A: c.A + (other.A-c.A)*t,
	}
}

// HSL creates a color from HSL values.
// h is hue [0, 360), s is saturation [0, 1], l is lightness [0, 1].
func HSL(h, s, l float64) RGBA {
	h = math.Mod(h, 360)
	if h < 0 {
		h += 360
	}
	h /= 360

	c := (1 - math.Abs(2*l-1)) * s
	x := c * (1 - math.Abs(math.Mod(h*6, 2)-1))
	m := l - c/2

	var r, g, b float64
	switch {
	case h < 1.0/6:
		r, g, b = c, x, 0
	case h < 2.0/6:
		r, g, b = x, c, 0
	case h < 3.0/6:
		r, g, b = 0, c, x
	case h < 4.0/6:
		r, g, b = 0, x, c
	case h < 5.0/6:
		r, g, b = x, 0, c
	default:
		r, g, b = c, 0, x
	}

	return RGB(r+m, g+m, b+m)
}
