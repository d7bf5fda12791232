package less

import (
	"regexp"
	"strings"
)

var (
	varDeclRe    = regexp.MustCompile(`^@([\w-]+)\s*:`)
	atNameRe     = regexp.MustCompile(`^@[\w-]+`)
	mixinDefRe   = regexp.MustCompile(`(?s)^([.#][\w-]+)\s*\((.*)\)$`)
	mixinHeadRe  = regexp.MustCompile(`^(?:[.#][\w-]+\s*>?\s*)+$`)
	mixinPathRe  = regexp.MustCompile(`[.#][\w-]+`)
	guardRe      = regexp.MustCompile(`(?:^|[\s)])when\s*\(`)
	importantRe  = regexp.MustCompile(`\s*!\s*important\s*$`)
	propertyRe   = regexp.MustCompile(`^[*_]?-{0,2}[a-zA-Z_@][\w\-@{}]*$`)
	namedParamRe = regexp.MustCompile(`(?s)^@([\w-]+)\s*:(.*)$`)
)

// scanner walks one source file.
type scanner struct {
	src *source
	pos int
}

func (s *scanner) eof() bool {
	return s.pos >= len(s.src.text)
}

func (s *scanner) rest() string {
	return s.src.text[s.pos:]
}

func (s *scanner) at(offset int) position {
	return position{src: s.src, offset: offset}
}

// skipSpace skips whitespace and // comments.
func (s *scanner) skipSpace() {
	for !s.eof() {
		if isSpace(s.src.text[s.pos]) {
			s.pos++
			continue
		}
		if strings.HasPrefix(s.rest(), "//") {
			s.skipLine()
			continue
		}
		return
	}
}

func (s *scanner) skipLine() {
	if i := strings.IndexByte(s.rest(), '\n'); i >= 0 {
		s.pos += i
		return
	}
	s.pos = len(s.src.text)
}

func (s *scanner) blockComment() (string, error) {
	start := s.pos
	end := strings.Index(s.src.text[start+2:], "*/")
	if end < 0 {
		return "", newError(ParseError, s.at(start), "missing closing `*/`")
	}
	s.pos = start + 2 + end + 2
	return s.src.text[start:s.pos], nil
}

// skipString returns the offset just past the string starting at start.
func (s *scanner) skipString(start int) (int, error) {
	text := s.src.text
	quote := text[start]
	for i := start + 1; i < len(text); i++ {
		switch text[i] {
		case '\\':
			i++
		case quote:
			return i + 1, nil
		case '\n':
			return 0, newError(ParseError, s.at(start), "unterminated string")
		}
	}
	return 0, newError(ParseError, s.at(start), "unterminated string")
}

// readChunk reads up to the next top-level ';', '{' or '}'. The terminator
// is returned; ';' and '{' are consumed, '}' is left for the enclosing block.
// Comments inside the chunk are dropped.
func (s *scanner) readChunk() (string, byte, error) {
	var b strings.Builder
	text := s.src.text
	depth := 0
	for s.pos < len(text) {
		c := text[s.pos]
		switch {
		case c == '"' || c == '\'':
			end, err := s.skipString(s.pos)
			if err != nil {
				return "", 0, err
			}
			b.WriteString(text[s.pos:end])
			s.pos = end
			continue
		case c == '@' && s.pos+1 < len(text) && text[s.pos+1] == '{':
			end := strings.IndexByte(text[s.pos:], '}')
			if end < 0 {
				return "", 0, newError(ParseError, s.at(s.pos), "unterminated interpolation")
			}
			b.WriteString(text[s.pos : s.pos+end+1])
			s.pos += end + 1
			continue
		case c == '/' && strings.HasPrefix(text[s.pos:], "/*"):
			end := strings.Index(text[s.pos+2:], "*/")
			if end < 0 {
				return "", 0, newError(ParseError, s.at(s.pos), "missing closing `*/`")
			}
			s.pos += end + 4
			b.WriteByte(' ')
			continue
		case c == '/' && depth == 0 && strings.HasPrefix(text[s.pos:], "//"):
			s.skipLine()
			continue
		case c == '(' || c == '[':
			depth++
		case c == ')' || c == ']':
			if depth > 0 {
				depth--
			}
		case depth == 0 && (c == ';' || c == '{'):
			s.pos++
			return b.String(), c, nil
		case depth == 0 && c == '}':
			return b.String(), c, nil
		}
		b.WriteByte(c)
		s.pos++
	}
	return b.String(), 0, nil
}

// parseBlock parses statements until the closing brace of a nested block,
// or to end of file for a top-level one.
func (p *parser) parseBlock(s *scanner, dir string, nested bool) ([]node, error) {
	var nodes []node
	for {
		s.skipSpace()
		if s.eof() {
			if nested {
				return nil, newError(ParseError, s.at(len(s.src.text)), "missing closing `}`")
			}
			return nodes, nil
		}

		start := s.pos
		rest := s.rest()
		switch {
		case rest[0] == '}':
			if !nested {
				return nil, newError(ParseError, s.at(start), "Unrecognised input")
			}
			s.pos++
			return nodes, nil
		case rest[0] == ';':
			s.pos++
		case strings.HasPrefix(rest, "/*"):
			text, err := s.blockComment()
			if err != nil {
				return nil, err
			}
			nodes = append(nodes, &comment{text: text})
		case rest[0] == '@' && !strings.HasPrefix(rest, "@{"):
			n, err := p.parseAt(s, dir)
			if err != nil {
				return nil, err
			}
			nodes = append(nodes, n...)
		default:
			n, err := p.parseChunk(s, dir)
			if err != nil {
				return nil, err
			}
			if n != nil {
				nodes = append(nodes, n)
			}
		}
	}
}

// parseAt parses variable definitions, imports and at-rules.
func (p *parser) parseAt(s *scanner, dir string) ([]node, error) {
	start := s.pos
	pos := s.at(start)
	rest := s.rest()

	if m := varDeclRe.FindStringSubmatch(rest); m != nil && !strings.EqualFold(m[1], "page") {
		s.pos += len(m[0])
		text, term, err := s.readChunk()
		if err != nil {
			return nil, err
		}
		if term == '{' {
			return nil, newError(SyntaxError, pos, "detached rulesets are not supported")
		}
		value := strings.TrimSpace(text)
		if value == "" {
			return nil, newError(ParseError, pos, "Unrecognised input")
		}
		return []node{&declaration{name: m[1], value: value, variable: true, pos: pos}}, nil
	}

	name := atNameRe.FindString(rest)
	if name == "" {
		return nil, newError(ParseError, pos, "Unrecognised input")
	}
	s.pos += len(name)

	switch strings.ToLower(name) {
	case "@import":
		return p.parseImport(s, dir, pos)
	case "@plugin":
		return nil, newError(SyntaxError, pos, "@plugin is not supported")
	}

	prelude, term, err := s.readChunk()
	if err != nil {
		return nil, err
	}
	a := &atRule{name: name[1:], prelude: collapseSpace(prelude), pos: pos}
	if term == '{' {
		a.block = true
		if a.rules, err = p.parseBlock(s, dir, true); err != nil {
			return nil, err
		}
	}
	return []node{a}, nil
}

// parseChunk parses a ruleset, declaration or mixin call.
func (p *parser) parseChunk(s *scanner, dir string) (node, error) {
	pos := s.at(s.pos)
	text, term, err := s.readChunk()
	if err != nil {
		return nil, err
	}
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		if term == '{' {
			return nil, newError(ParseError, pos, "Unrecognised input")
		}
		return nil, nil
	}
	if strings.Contains(trimmed, ":extend(") {
		return nil, newError(SyntaxError, pos, ":extend is not supported")
	}

	if term == '{' {
		return p.parseRuleset(s, dir, trimmed, pos)
	}

	d, err := parseDeclaration(trimmed, pos)
	if err != nil {
		return nil, err
	}
	if d != nil {
		return d, nil
	}
	if c := parseMixinCall(trimmed, pos); c != nil {
		return c, nil
	}
	return nil, newError(ParseError, pos, "Unrecognised input")
}

func (p *parser) parseRuleset(s *scanner, dir, selector string, pos position) (node, error) {
	if guardRe.MatchString(maskNested(selector)) {
		return nil, newError(SyntaxError, pos, "mixin guards are not supported")
	}
	rs := &ruleset{selector: selector, pos: pos}
	if m := mixinDefRe.FindStringSubmatch(selector); m != nil {
		rs.mixinName = m[1]
		rs.params = parseParams(m[2])
	}
	rules, err := p.parseBlock(s, dir, true)
	if err != nil {
		return nil, err
	}
	rs.rules = rules
	return rs, nil
}

// parseDeclaration returns nil without error when text is not shaped like
// a declaration.
func parseDeclaration(text string, pos position) (*declaration, error) {
	i := topLevelIndex(text, ':')
	if i <= 0 {
		return nil, nil
	}
	name := strings.TrimSpace(text[:i])
	if !propertyRe.MatchString(name) {
		return nil, nil
	}

	d := &declaration{name: name, pos: pos}
	value := strings.TrimSpace(text[i+1:])
	custom := strings.HasPrefix(name, "--")
	if loc := importantRe.FindStringIndex(value); loc != nil && !custom {
		d.important = true
		value = strings.TrimSpace(value[:loc[0]])
	}
	if value == "" && !custom {
		return nil, newError(ParseError, pos, "Unrecognised input")
	}
	d.value = value
	return d, nil
}

func parseMixinCall(text string, pos position) *mixinCall {
	c := &mixinCall{raw: text, pos: pos}
	if loc := importantRe.FindStringIndex(text); loc != nil {
		c.important = true
		text = strings.TrimSpace(text[:loc[0]])
	}

	head, args := text, ""
	if i := strings.IndexByte(text, '('); i >= 0 {
		if !strings.HasSuffix(text, ")") {
			return nil
		}
		head, args = strings.TrimSpace(text[:i]), text[i+1:len(text)-1]
	}
	if !mixinHeadRe.MatchString(head) {
		return nil
	}
	c.path = mixinPathRe.FindAllString(head, -1)

	for _, part := range splitArgs(args) {
		if m := namedParamRe.FindStringSubmatch(part); m != nil {
			c.args = append(c.args, mixinArg{name: m[1], value: strings.TrimSpace(m[2])})
			continue
		}
		c.args = append(c.args, mixinArg{value: part})
	}
	return c
}

func parseParams(raw string) []param {
	var params []param
	for _, part := range splitArgs(raw) {
		switch {
		case part == "...":
			params = append(params, param{variadic: true})
		case strings.HasPrefix(part, "@"):
			if m := namedParamRe.FindStringSubmatch(part); m != nil {
				params = append(params, param{name: m[1], def: strings.TrimSpace(m[2]), hasDef: true})
			} else if strings.HasSuffix(part, "...") {
				params = append(params, param{name: strings.TrimSpace(part[1 : len(part)-3]), variadic: true})
			} else {
				params = append(params, param{name: part[1:]})
			}
		default:
			params = append(params, param{pattern: part})
		}
	}
	return params
}

// splitArgs splits mixin arguments on semicolons when any are present,
// otherwise on commas, dropping empty entries.
func splitArgs(raw string) []string {
	sep := byte(',')
	if topLevelIndex(raw, ';') >= 0 {
		sep = ';'
	}
	var out []string
	for _, part := range splitTopLevel(raw, sep) {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// maskNested blanks quoted text and the contents of parentheses and
// brackets, keeping the delimiters, so patterns only see the top level.
func maskNested(s string) string {
	b := []byte(s)
	depth := 0
	var quote byte
	for i := 0; i < len(b); i++ {
		c := b[i]
		switch {
		case quote != 0:
			if c == quote {
				quote = 0
			}
			b[i] = ' '
		case c == '"' || c == '\'':
			quote = c
			b[i] = ' '
		case c == '(' || c == '[':
			depth++
		case c == ')' || c == ']':
			if depth > 0 {
				depth--
			}
		case depth > 0:
			b[i] = ' '
		}
	}
	return string(b)
}
