package less

import (
	"regexp"
	"strings"
)

// node is one statement of a parsed block.
type node any

type comment struct {
	text string
}

// declaration is a property or, when variable is set, a variable definition.
// Values stay unparsed until evaluation so variables can be lazy.
type declaration struct {
	name      string
	value     string
	important bool
	variable  bool
	pos       position
}

type ruleset struct {
	selector  string
	mixinName string // set for parametric mixin definitions, which are never output
	params    []param
	rules     []node
	pos       position
}

type param struct {
	name     string // without the leading @
	def      string
	hasDef   bool
	pattern  string
	variadic bool
}

type mixinCall struct {
	path      []string
	args      []mixinArg
	important bool
	raw       string
	pos       position
}

type mixinArg struct {
	name  string
	value string
}

type atRule struct {
	name    string
	prelude string
	block   bool
	rules   []node
	pos     position
}

// importGroup holds the statements of an imported file, spliced in where
// the @import appeared.
type importGroup struct {
	rules     []node
	reference bool
}

// rawCSS is the verbatim content of an (inline) import.
type rawCSS struct {
	text string
}

// cssImport is a plain CSS @import kept in the output.
type cssImport struct {
	text string
}

var simpleSelectorRe = regexp.MustCompile(`^[.#][\w-]+$`)

func (r *ruleset) parametric() bool {
	return r.mixinName != ""
}

// callableAs reports whether a mixin call naming name can expand r.
func (r *ruleset) callableAs(name string) bool {
	if r.parametric() {
		return r.mixinName == name
	}
	for _, sel := range splitTopLevel(r.selector, ',') {
		sel = strings.TrimSpace(sel)
		if simpleSelectorRe.MatchString(sel) && sel == name {
			return true
		}
	}
	return false
}

func (r *ruleset) paramIndex(name string) int {
	for i, p := range r.params {
		if p.name == name && !p.variadic {
			return i
		}
	}
	return -1
}

// accepts reports whether args can bind to r's parameters.
func (r *ruleset) accepts(args []boundArg) bool {
	if !r.parametric() {
		return len(args) == 0
	}
	named := make(map[string]bool)
	var positional []value
	for _, a := range args {
		if a.name != "" {
			if r.paramIndex(a.name) < 0 {
				return false
			}
			named[a.name] = true
			continue
		}
		positional = append(positional, a.val)
	}

	k := 0
	for _, p := range r.params {
		if p.name != "" && named[p.name] {
			continue
		}
		if p.variadic {
			return true
		}
		if k < len(positional) {
			if p.pattern != "" && plain(positional[k]) != p.pattern {
				return false
			}
			k++
			continue
		}
		if p.pattern != "" || !p.hasDef {
			return false
		}
	}
	return k == len(positional)
}

// splitTopLevel splits s on sep, ignoring separators inside quotes,
// parentheses and brackets.
func splitTopLevel(s string, sep byte) []string {
	var parts []string
	depth := 0
	var quote byte
	start := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		if quote != 0 {
			if c == '\\' {
				i++
			} else if c == quote {
				quote = 0
			}
			continue
		}
		switch c {
		case '"', '\'':
			quote = c
		case '(', '[':
			depth++
		case ')', ']':
			if depth > 0 {
				depth--
			}
		case sep:
			if depth == 0 {
				parts = append(parts, s[start:i])
				start = i + 1
			}
		}
	}
	return append(parts, s[start:])
}

// topLevelIndex returns the index of the first c outside quotes,
// parentheses and brackets, or -1.
func topLevelIndex(s string, c byte) int {
	depth := 0
	var quote byte
	for i := 0; i < len(s); i++ {
		ch := s[i]
		if quote != 0 {
			if ch == '\\' {
				i++
			} else if ch == quote {
				quote = 0
			}
			continue
		}
		switch {
		case ch == '"' || ch == '\'':
			quote = ch
		case ch == '(' || ch == '[':
			depth++
		case ch == ')' || ch == ']':
			if depth > 0 {
				depth--
			}
		case ch == c && depth == 0:
			return i
		}
	}
	return -1
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f'
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
