package less

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// value is an evaluated expression.
type value interface {
	css() string
}

type dimension struct {
	n    float64
	unit string
}

func (d *dimension) css() string {
	return formatNumber(d.n) + d.unit
}

type keyword string

func (k keyword) css() string {
	return string(k)
}

type quoted struct {
	s       string
	quote   byte
	escaped bool
}

func (q *quoted) css() string {
	if q.escaped || q.quote == 0 {
		return q.s
	}
	return string(q.quote) + q.s + string(q.quote)
}

type list struct {
	items []value
	sep   string
}

func (l *list) css() string {
	parts := make([]string, len(l.items))
	for i, v := range l.items {
		parts[i] = v.css()
	}
	return strings.Join(parts, l.sep)
}

// call is a function lessc does not evaluate, such as calc() or var().
type call struct {
	name string
	args []value
}

func (c *call) css() string {
	parts := make([]string, len(c.args))
	for i, v := range c.args {
		parts[i] = v.css()
	}
	return c.name + "(" + strings.Join(parts, ", ") + ")"
}

type url struct {
	inner string
}

func (u *url) css() string {
	return "url(" + u.inner + ")"
}

// opLiteral is an operation kept as written: a slash outside parentheses,
// or any operation inside calc().
type opLiteral struct {
	op     byte
	left   value
	right  value
	spaced bool
}

func (o *opLiteral) css() string {
	if o.spaced {
		return o.left.css() + " " + string(o.op) + " " + o.right.css()
	}
	return o.left.css() + string(o.op) + o.right.css()
}

// formatNumber renders n with at most eight decimal places and no
// trailing zeros.
func formatNumber(n float64) string {
	n = math.Round(n*1e8) / 1e8
	if n == 0 {
		return "0"
	}
	return strconv.FormatFloat(n, 'f', -1, 64)
}

// plain renders v with string quotes removed.
func plain(v value) string {
	if q, ok := v.(*quoted); ok {
		return q.s
	}
	return v.css()
}

var errInvalidOperation = errors.New("operation on an invalid type")

func operate(op byte, a, b value) (value, error) {
	da, aDim := a.(*dimension)
	db, bDim := b.(*dimension)
	if aDim && bDim {
		return operateDimensions(op, da, db)
	}

	ca, aColor := toColor(a)
	cb, bColor := toColor(b)
	switch {
	case aColor && bColor:
	case aColor && bDim:
		cb = &color{r: db.n, g: db.n, b: db.n, a: 1}
	case aDim && bColor:
		ca = &color{r: da.n, g: da.n, b: da.n, a: 1}
	default:
		return nil, errInvalidOperation
	}
	return operateColors(op, ca, cb)
}

func operateDimensions(op byte, a, b *dimension) (value, error) {
	unit := a.unit
	if unit == "" {
		unit = b.unit
	}
	n, err := arith(op, a.n, b.n)
	if err != nil {
		return nil, err
	}
	return &dimension{n: n, unit: unit}, nil
}

func operateColors(op byte, a, b *color) (value, error) {
	out := &color{a: a.a*(1-b.a) + b.a}
	var err error
	if out.r, err = arith(op, a.r, b.r); err != nil {
		return nil, err
	}
	if out.g, err = arith(op, a.g, b.g); err != nil {
		return nil, err
	}
	if out.b, err = arith(op, a.b, b.b); err != nil {
		return nil, err
	}
	return out, nil
}

func arith(op byte, a, b float64) (float64, error) {
	switch op {
	case '+':
		return a + b, nil
	case '-':
		return a - b, nil
	case '*':
		return a * b, nil
	case '/':
		if b == 0 {
			return 0, errors.New("division by zero")
		}
		return a / b, nil
	}
	return 0, fmt.Errorf("unknown operator %q", op)
}
