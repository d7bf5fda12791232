package less

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	numberRe   = regexp.MustCompile(`^[+-]?(?:\d*\.\d+|\d+)(?:%|[a-zA-Z]+)?`)
	identRe    = regexp.MustCompile(`^-{0,2}[a-zA-Z_][\w-]*`)
	varRefRe   = regexp.MustCompile(`^@@?[\w-]+`)
	rangeRe    = regexp.MustCompile(`^[Uu]\+[0-9a-fA-F?]+(?:-[0-9a-fA-F?]+)?`)
	hexColorRe = regexp.MustCompile(`^#(?:[0-9a-fA-F]{8}|[0-9a-fA-F]{6}|[0-9a-fA-F]{3,4})`)
)

// expr is a parsed, unevaluated value expression.
type expr any

type literal struct {
	v value
}

type varExpr struct {
	name     string
	indirect bool // @@name
}

type negExpr struct {
	x expr
}

type parenExpr struct {
	x expr
}

type opExpr struct {
	op       byte
	left     expr
	right    expr
	spaced   bool
	inParens bool
}

type listExpr struct {
	items []expr
	sep   string
}

type callExpr struct {
	name string
	args []expr
}

type urlExpr struct {
	raw   string
	quote byte
}

type quotedExpr struct {
	s       string
	quote   byte
	escaped bool
}

type exprParser struct {
	s     string
	i     int
	depth int
}

func parseExpr(s string) (expr, error) {
	p := &exprParser{s: s}
	x, err := p.commaList()
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if p.i < len(p.s) {
		return nil, fmt.Errorf("unexpected %q", p.s[p.i:])
	}
	return x, nil
}

func (p *exprParser) skipSpace() bool {
	start := p.i
	for p.i < len(p.s) && isSpace(p.s[p.i]) {
		p.i++
	}
	return p.i > start
}

func (p *exprParser) commaList() (expr, error) {
	var items []expr
	for {
		x, err := p.spaceList()
		if err != nil {
			return nil, err
		}
		items = append(items, x)
		p.skipSpace()
		if p.i < len(p.s) && p.s[p.i] == ',' {
			p.i++
			continue
		}
		break
	}
	if len(items) == 1 {
		return items[0], nil
	}
	return &listExpr{items: items, sep: ", "}, nil
}

func (p *exprParser) spaceList() (expr, error) {
	var items []expr
	for {
		p.skipSpace()
		if p.i >= len(p.s) || p.s[p.i] == ',' || p.s[p.i] == ')' {
			break
		}
		x, err := p.additive()
		if err != nil {
			return nil, err
		}
		items = append(items, x)
	}
	switch len(items) {
	case 0:
		return nil, errors.New("expected value")
	case 1:
		return items[0], nil
	}
	return &listExpr{items: items, sep: " "}, nil
}

// additive parses + and -. A sign preceded by whitespace but not followed
// by it starts the next list item instead ("0 -1px").
func (p *exprParser) additive() (expr, error) {
	left, err := p.multiplicative()
	if err != nil {
		return nil, err
	}
	for {
		save := p.i
		before := p.skipSpace()
		if p.i >= len(p.s) || (p.s[p.i] != '+' && p.s[p.i] != '-') {
			p.i = save
			return left, nil
		}
		op := p.s[p.i]
		after := p.i+1 < len(p.s) && isSpace(p.s[p.i+1])
		if before && !after {
			p.i = save
			return left, nil
		}
		p.i++
		p.skipSpace()
		right, err := p.multiplicative()
		if err != nil {
			return nil, err
		}
		left = &opExpr{op: op, left: left, right: right, spaced: before || after, inParens: p.depth > 0}
	}
}

func (p *exprParser) multiplicative() (expr, error) {
	left, err := p.operand()
	if err != nil {
		return nil, err
	}
	for {
		save := p.i
		before := p.skipSpace()
		if p.i >= len(p.s) || (p.s[p.i] != '*' && p.s[p.i] != '/') {
			p.i = save
			return left, nil
		}
		op := p.s[p.i]
		after := p.i+1 < len(p.s) && isSpace(p.s[p.i+1])
		p.i++
		p.skipSpace()
		right, err := p.operand()
		if err != nil {
			return nil, err
		}
		left = &opExpr{op: op, left: left, right: right, spaced: before || after, inParens: p.depth > 0}
	}
}

func (p *exprParser) operand() (expr, error) {
	if p.i >= len(p.s) {
		return nil, errors.New("expected value")
	}
	rest := p.s[p.i:]
	c := rest[0]

	switch {
	case c == '(':
		p.i++
		p.depth++
		x, err := p.commaList()
		if err != nil {
			return nil, err
		}
		p.skipSpace()
		if p.i >= len(p.s) || p.s[p.i] != ')' {
			return nil, errors.New("missing closing `)`")
		}
		p.i++
		p.depth--
		return &parenExpr{x: x}, nil
	case c == '"' || c == '\'':
		s, n, err := readQuoted(rest)
		if err != nil {
			return nil, err
		}
		p.i += n
		return &quotedExpr{s: s, quote: c}, nil
	case c == '~' && len(rest) > 1 && (rest[1] == '"' || rest[1] == '\''):
		s, n, err := readQuoted(rest[1:])
		if err != nil {
			return nil, err
		}
		p.i += 1 + n
		return &quotedExpr{s: s, quote: rest[1], escaped: true}, nil
	case c == '@':
		if m := varRefRe.FindString(rest); m != "" {
			p.i += len(m)
			if strings.HasPrefix(m, "@@") {
				return &varExpr{name: m[2:], indirect: true}, nil
			}
			return &varExpr{name: m[1:]}, nil
		}
	case c == '#':
		if m := hexColorRe.FindString(rest); m != "" && !isWordByte(rest, len(m)) {
			p.i += len(m)
			return &literal{v: parseHex(m)}, nil
		}
	case c == '-' && len(rest) > 1 && (rest[1] == '@' || rest[1] == '('):
		p.i++
		x, err := p.operand()
		if err != nil {
			return nil, err
		}
		return &negExpr{x: x}, nil
	}

	// unicode-range values look like arithmetic on a keyword.
	if m := rangeRe.FindString(rest); m != "" && !isWordByte(rest, len(m)) {
		p.i += len(m)
		return &literal{v: keyword(m)}, nil
	}

	if m := numberRe.FindString(rest); m != "" {
		p.i += len(m)
		return &literal{v: parseDimension(m)}, nil
	}

	if m := identRe.FindString(rest); m != "" {
		if len(m) < len(rest) && rest[len(m)] == '(' {
			return p.call(m)
		}
		n := len(m) + wordLen(rest[len(m):])
		p.i += n
		return keywordExpr(rest[:n]), nil
	}

	n := wordLen(rest)
	if n == 0 {
		n = 1
		if strings.ContainsRune(",();\"'", rune(c)) {
			return nil, fmt.Errorf("unexpected %q", string(c))
		}
	}
	p.i += n
	return keywordExpr(rest[:n]), nil
}

func keywordExpr(s string) expr {
	if strings.Contains(s, "@{") {
		return &quotedExpr{s: s, escaped: true}
	}
	return &literal{v: keyword(s)}
}

// call parses a function call; p.i is at the function name.
func (p *exprParser) call(name string) (expr, error) {
	p.i += len(name) + 1
	if strings.EqualFold(name, "url") {
		return p.url()
	}

	p.skipSpace()
	if p.i < len(p.s) && p.s[p.i] == ')' {
		p.i++
		return &callExpr{name: name}, nil
	}
	var args []expr
	for {
		x, err := p.spaceList()
		if err != nil {
			return nil, err
		}
		args = append(args, x)
		p.skipSpace()
		if p.i < len(p.s) && p.s[p.i] == ',' {
			p.i++
			continue
		}
		break
	}
	if p.i >= len(p.s) || p.s[p.i] != ')' {
		return nil, fmt.Errorf("missing closing `)` for %s()", name)
	}
	p.i++
	return &callExpr{name: name, args: args}, nil
}

// url reads the raw contents of url(...); quoted contents keep their quotes.
func (p *exprParser) url() (expr, error) {
	var quote byte
	end := -1
	for i := p.i; i < len(p.s); i++ {
		c := p.s[i]
		if quote != 0 {
			if c == '\\' {
				i++
			} else if c == quote {
				quote = 0
			}
			continue
		}
		if c == '"' || c == '\'' {
			quote = c
			continue
		}
		if c == ')' {
			end = i
			break
		}
	}
	if end < 0 {
		return nil, errors.New("missing closing `)` for url()")
	}
	inner := strings.TrimSpace(p.s[p.i:end])
	p.i = end + 1
	if n := len(inner); n >= 2 && (inner[0] == '"' || inner[0] == '\'') && inner[n-1] == inner[0] {
		return &urlExpr{raw: inner[1 : n-1], quote: inner[0]}, nil
	}
	return &urlExpr{raw: inner}, nil
}

// readQuoted reads the quoted string at the start of s and returns its
// contents and the number of bytes consumed.
func readQuoted(s string) (string, int, error) {
	quote := s[0]
	for i := 1; i < len(s); i++ {
		switch s[i] {
		case '\\':
			i++
		case quote:
			return s[1:i], i + 1, nil
		}
	}
	return "", 0, errors.New("unterminated string")
}

// wordLen measures a run of bytes that belong to a single anonymous token.
func wordLen(s string) int {
	for i := 0; i < len(s); i++ {
		c := s[i]
		if isSpace(c) || strings.IndexByte(",()\"';*+/", c) >= 0 {
			return i
		}
	}
	return len(s)
}

func isWordByte(s string, i int) bool {
	if i >= len(s) {
		return false
	}
	c := s[i]
	return c == '-' || c == '_' || (c >= '0' && c <= '9') || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func parseDimension(s string) *dimension {
	i := len(s)
	for i > 0 {
		c := s[i-1]
		if (c >= '0' && c <= '9') || c == '.' {
			break
		}
		i--
	}
	n, _ := strconv.ParseFloat(s[:i], 64)
	return &dimension{n: n, unit: s[i:]}
}
