package less

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// color channels are 0-255, alpha 0-1. raw keeps the source spelling of
// colours that were never computed on.
type color struct {
	r, g, b float64
	a       float64
	raw     string
}

func (c *color) css() string {
	if c.raw != "" {
		return c.raw
	}
	r, g, b := channel(c.r), channel(c.g), channel(c.b)
	if a := clamp(c.a, 0, 1); a < 1 {
		return fmt.Sprintf("rgba(%d, %d, %d, %s)", r, g, b, formatNumber(a))
	}
	return fmt.Sprintf("#%02x%02x%02x", r, g, b)
}

func channel(v float64) int {
	return int(math.Round(clamp(v, 0, 255)))
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(hi, math.Max(lo, v))
}

// parseHex parses #rgb, #rgba, #rrggbb and #rrggbbaa.
func parseHex(s string) *color {
	hex := strings.TrimPrefix(s, "#")
	if len(hex) == 3 || len(hex) == 4 {
		var b strings.Builder
		for i := 0; i < len(hex); i++ {
			b.WriteByte(hex[i])
			b.WriteByte(hex[i])
		}
		hex = b.String()
	}
	c := &color{a: 1, raw: s}
	n, _ := strconv.ParseUint(hex, 16, 32)
	if len(hex) == 8 {
		c.a = float64(n&0xff) / 255
		n >>= 8
	}
	c.r = float64(n >> 16 & 0xff)
	c.g = float64(n >> 8 & 0xff)
	c.b = float64(n & 0xff)
	return c
}

// toColor converts colour values and named colour keywords.
func toColor(v value) (*color, bool) {
	switch v := v.(type) {
	case *color:
		return v, true
	case keyword:
		if hex, ok := namedColors[strings.ToLower(string(v))]; ok {
			c := parseHex(hex)
			c.raw = string(v)
			if strings.EqualFold(string(v), "transparent") {
				c.a = 0
			}
			return c, true
		}
	}
	return nil, false
}

// hsl returns hue in degrees and saturation, lightness and alpha in 0-1.
func (c *color) hsl() (h, s, l, a float64) {
	r, g, b := c.r/255, c.g/255, c.b/255
	mx := math.Max(r, math.Max(g, b))
	mn := math.Min(r, math.Min(g, b))
	l = (mx + mn) / 2
	d := mx - mn
	if d != 0 {
		if l > 0.5 {
			s = d / (2 - mx - mn)
		} else {
			s = d / (mx + mn)
		}
		switch mx {
		case r:
			h = (g - b) / d
			if g < b {
				h += 6
			}
		case g:
			h = (b-r)/d + 2
		default:
			h = (r-g)/d + 4
		}
		h /= 6
	}
	return h * 360, s, l, c.a
}

func fromHSL(h, s, l, a float64) *color {
	h = math.Mod(h, 360) / 360
	if h < 0 {
		h++
	}
	s, l = clamp(s, 0, 1), clamp(l, 0, 1)

	var m2 float64
	if l <= 0.5 {
		m2 = l * (s + 1)
	} else {
		m2 = l + s - l*s
	}
	m1 := l*2 - m2
	hue := func(h float64) float64 {
		if h < 0 {
			h++
		} else if h > 1 {
			h--
		}
		switch {
		case h*6 < 1:
			return m1 + (m2-m1)*h*6
		case h*2 < 1:
			return m2
		case h*3 < 2:
			return m1 + (m2-m1)*(2.0/3-h)*6
		}
		return m1
	}
	return &color{
		r: hue(h+1.0/3) * 255,
		g: hue(h) * 255,
		b: hue(h-1.0/3) * 255,
		a: clamp(a, 0, 1),
	}
}

var namedColors = map[string]string{
	"aqua":        "#00ffff",
	"black":       "#000000",
	"blue":        "#0000ff",
	"brown":       "#a52a2a",
	"coral":       "#ff7f50",
	"crimson":     "#dc143c",
	"cyan":        "#00ffff",
	"darkgray":    "#a9a9a9",
	"darkgreen":   "#006400",
	"darkgrey":    "#a9a9a9",
	"dimgray":     "#696969",
	"dimgrey":     "#696969",
	"fuchsia":     "#ff00ff",
	"gold":        "#ffd700",
	"gray":        "#808080",
	"green":       "#008000",
	"grey":        "#808080",
	"indigo":      "#4b0082",
	"khaki":       "#f0e68c",
	"lightgray":   "#d3d3d3",
	"lightgrey":   "#d3d3d3",
	"lime":        "#00ff00",
	"magenta":     "#ff00ff",
	"maroon":      "#800000",
	"navy":        "#000080",
	"olive":       "#808000",
	"olivedrab":   "#6b8e23",
	"orange":      "#ffa500",
	"pink":        "#ffc0cb",
	"purple":      "#800080",
	"red":         "#ff0000",
	"silver":      "#c0c0c0",
	"tan":         "#d2b48c",
	"teal":        "#008080",
	"transparent": "#000000",
	"violet":      "#ee82ee",
	"white":       "#ffffff",
	"whitesmoke":  "#f5f5f5",
	"yellow":      "#ffff00",
}
