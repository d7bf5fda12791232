package less

import (
	"errors"
	"fmt"
	"math"
)

type builtin func(args []value) (value, error)

// errPassThrough tells the evaluator to emit the call unevaluated, which is
// how CSS functions sharing a name with a LESS function (rgba(var(--x), .5))
// survive compilation.
var errPassThrough = errors.New("pass through")

var builtins = map[string]builtin{
	"rgb":        rgbFunc,
	"rgba":       rgbaFunc,
	"hsl":        hslFunc,
	"hsla":       hslaFunc,
	"lighten":    hslAdjust(func(h, s, l, a, amt float64) (float64, float64, float64, float64) { return h, s, l + amt, a }),
	"darken":     hslAdjust(func(h, s, l, a, amt float64) (float64, float64, float64, float64) { return h, s, l - amt, a }),
	"saturate":   hslAdjust(func(h, s, l, a, amt float64) (float64, float64, float64, float64) { return h, s + amt, l, a }),
	"desaturate": hslAdjust(func(h, s, l, a, amt float64) (float64, float64, float64, float64) { return h, s - amt, l, a }),
	"fadein":     hslAdjust(func(h, s, l, a, amt float64) (float64, float64, float64, float64) { return h, s, l, a + amt }),
	"fadeout":    hslAdjust(func(h, s, l, a, amt float64) (float64, float64, float64, float64) { return h, s, l, a - amt }),
	"fade":       hslAdjust(func(h, s, l, a, amt float64) (float64, float64, float64, float64) { return h, s, l, amt }),
	"spin":       spinFunc,
	"mix":        mixFunc,
	"tint":       shadeFunc(&color{r: 255, g: 255, b: 255, a: 1}),
	"shade":      shadeFunc(&color{a: 1}),
	"percentage": percentageFunc,
	"e":          escapeFunc,
	"unit":       unitFunc,
	"ceil":       mathFunc(math.Ceil),
	"floor":      mathFunc(math.Floor),
	"round":      roundFunc,
}

func numberArgs(args []value, n int) ([]*dimension, bool) {
	if len(args) != n {
		return nil, false
	}
	out := make([]*dimension, n)
	for i, a := range args {
		d, ok := a.(*dimension)
		if !ok {
			return nil, false
		}
		out[i] = d
	}
	return out, true
}

// scaled reads a channel or alpha argument, mapping percentages onto full.
func scaled(d *dimension, full float64) float64 {
	if d.unit == "%" {
		return d.n * full / 100
	}
	return d.n
}

func rgbFunc(args []value) (value, error) {
	d, ok := numberArgs(args, 3)
	if !ok {
		return nil, errPassThrough
	}
	return &color{r: scaled(d[0], 255), g: scaled(d[1], 255), b: scaled(d[2], 255), a: 1}, nil
}

func rgbaFunc(args []value) (value, error) {
	if len(args) == 2 {
		c, ok := toColor(args[0])
		d, isNum := args[1].(*dimension)
		if !ok || !isNum {
			return nil, errPassThrough
		}
		return &color{r: c.r, g: c.g, b: c.b, a: scaled(d, 1)}, nil
	}
	d, ok := numberArgs(args, 4)
	if !ok {
		return nil, errPassThrough
	}
	return &color{r: scaled(d[0], 255), g: scaled(d[1], 255), b: scaled(d[2], 255), a: scaled(d[3], 1)}, nil
}

func hslFunc(args []value) (value, error) {
	d, ok := numberArgs(args, 3)
	if !ok {
		return nil, errPassThrough
	}
	return fromHSL(d[0].n, scaled(d[1], 1), scaled(d[2], 1), 1), nil
}

func hslaFunc(args []value) (value, error) {
	d, ok := numberArgs(args, 4)
	if !ok {
		return nil, errPassThrough
	}
	return fromHSL(d[0].n, scaled(d[1], 1), scaled(d[2], 1), scaled(d[3], 1)), nil
}

func colorAndAmount(args []value) (*color, *dimension, error) {
	if len(args) < 2 {
		return nil, nil, fmt.Errorf("expected a color and an amount, got %d arguments", len(args))
	}
	c, ok := toColor(args[0])
	if !ok {
		return nil, nil, fmt.Errorf("argument %q is not a color", args[0].css())
	}
	d, ok := args[1].(*dimension)
	if !ok {
		return nil, nil, fmt.Errorf("argument %q is not a number", args[1].css())
	}
	return c, d, nil
}

// hslAdjust builds a colour function that edits the HSL representation.
// Amounts are percentages regardless of the unit written.
func hslAdjust(adjust func(h, s, l, a, amt float64) (float64, float64, float64, float64)) builtin {
	return func(args []value) (value, error) {
		c, amt, err := colorAndAmount(args)
		if err != nil {
			return nil, err
		}
		h, s, l, a := c.hsl()
		h, s, l, a = adjust(h, s, l, a, amt.n/100)
		return fromHSL(h, s, l, a), nil
	}
}

func spinFunc(args []value) (value, error) {
	c, amt, err := colorAndAmount(args)
	if err != nil {
		return nil, err
	}
	h, s, l, a := c.hsl()
	return fromHSL(h+amt.n, s, l, a), nil
}

func mixColors(c1, c2 *color, weight float64) *color {
	p := weight / 100
	w := p*2 - 1
	a := c1.a - c2.a
	var w1 float64
	if w*a == -1 {
		w1 = (w + 1) / 2
	} else {
		w1 = ((w+a)/(1+w*a) + 1) / 2
	}
	w2 := 1 - w1
	return &color{
		r: c1.r*w1 + c2.r*w2,
		g: c1.g*w1 + c2.g*w2,
		b: c1.b*w1 + c2.b*w2,
		a: c1.a*p + c2.a*(1-p),
	}
}

func mixFunc(args []value) (value, error) {
	if len(args) < 2 || len(args) > 3 {
		return nil, fmt.Errorf("mix expects 2 or 3 arguments, got %d", len(args))
	}
	c1, ok1 := toColor(args[0])
	c2, ok2 := toColor(args[1])
	if !ok1 || !ok2 {
		return nil, errors.New("mix expects two colors")
	}
	weight := 50.0
	if len(args) == 3 {
		d, ok := args[2].(*dimension)
		if !ok {
			return nil, fmt.Errorf("argument %q is not a number", args[2].css())
		}
		weight = d.n
	}
	return mixColors(c1, c2, weight), nil
}

func shadeFunc(with *color) builtin {
	return func(args []value) (value, error) {
		c, amt, err := colorAndAmount(args)
		if err != nil {
			return nil, err
		}
		return mixColors(with, c, amt.n), nil
	}
}

func percentageFunc(args []value) (value, error) {
	d, ok := numberArgs(args, 1)
	if !ok {
		return nil, errors.New("percentage expects a number")
	}
	return &dimension{n: d[0].n * 100, unit: "%"}, nil
}

func escapeFunc(args []value) (value, error) {
	if len(args) != 1 {
		return nil, errors.New("e expects a single string")
	}
	return keyword(plain(args[0])), nil
}

func unitFunc(args []value) (value, error) {
	if len(args) < 1 || len(args) > 2 {
		return nil, errors.New("unit expects a number and an optional unit")
	}
	d, ok := args[0].(*dimension)
	if !ok {
		return nil, fmt.Errorf("argument %q is not a number", args[0].css())
	}
	unit := ""
	if len(args) == 2 {
		unit = plain(args[1])
	}
	return &dimension{n: d.n, unit: unit}, nil
}

func mathFunc(fn func(float64) float64) builtin {
	return func(args []value) (value, error) {
		d, ok := numberArgs(args, 1)
		if !ok {
			return nil, errors.New("expected a single number")
		}
		return &dimension{n: fn(d[0].n), unit: d[0].unit}, nil
	}
}

func roundFunc(args []value) (value, error) {
	if len(args) == 0 || len(args) > 2 {
		return nil, errors.New("round expects a number and optional decimal places")
	}
	d, ok := numberArgs(args, len(args))
	if !ok {
		return nil, errors.New("round expects numbers")
	}
	places := 0.0
	if len(d) == 2 {
		places = d[1].n
	}
	f := math.Pow(10, places)
	return &dimension{n: math.Round(d[0].n*f) / f, unit: d[0].unit}, nil
}
