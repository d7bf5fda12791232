package less

import (
	"fmt"
	"regexp"
	"slices"
	"strings"
)

var (
	interpRe     = regexp.MustCompile(`@\{([\w-]+)\}`)
	preludeVarRe = regexp.MustCompile(`@\{([\w-]+)\}|@([\w-]+)`)
	mediaFeatRe  = regexp.MustCompile(`\(\s*([\w-]+)\s*:\s*`)
	mediaCloseRe = regexp.MustCompile(`\s+\)`)
)

// scope is the variables and mixin candidates of one block. Scopes are
// created per evaluation, so cached variable values never leak between
// mixin calls.
type scope struct {
	vars     map[string]*binding
	rulesets []*ruleset
}

type binding struct {
	decl       *declaration
	val        value
	done       bool
	evaluating bool
}

// frames is a scope chain, innermost first.
type frames []*scope

func (f frames) push(sc *scope) frames {
	out := make(frames, 0, len(f)+1)
	out = append(out, sc)
	return append(out, f...)
}

func newScope(rules []node) *scope {
	sc := &scope{vars: make(map[string]*binding)}
	sc.collect(rules)
	return sc
}

func (sc *scope) collect(rules []node) {
	for _, n := range rules {
		switch n := n.(type) {
		case *declaration:
			if n.variable {
				sc.vars[n.name] = &binding{decl: n}
			}
		case *ruleset:
			sc.rulesets = append(sc.rulesets, n)
		case *importGroup:
			sc.collect(n.rules)
		}
	}
}

// block accumulates the output of one selector context: declarations for
// the current rule, and rules or at-rules emitted after it.
type block struct {
	lines    []cssNode
	nodes    []cssNode
	declMode bool // inside @font-face and similar, where declarations need no selector
}

type boundArg struct {
	name string
	val  value
}

type mixinCandidate struct {
	rs   *ruleset
	defs frames
}

type evaluator struct {
	stack   []*ruleset // rulesets whose bodies are being evaluated
	charset string
	imports []cssNode
}

func (e *evaluator) evalRoot(rules []node) ([]cssNode, error) {
	out := &block{}
	if err := e.evalRules(rules, frames{newScope(rules)}, nil, "", out); err != nil {
		return nil, err
	}
	return out.nodes, nil
}

func (e *evaluator) evalRules(rules []node, fr frames, sels []string, media string, out *block) error {
	bare := sels == nil && !out.declMode
	for _, n := range rules {
		switch n := n.(type) {
		case *comment:
			c := &cssComment{text: n.text}
			if bare {
				out.nodes = append(out.nodes, c)
			} else {
				out.lines = append(out.lines, c)
			}
		case *declaration:
			if n.variable {
				continue
			}
			d, err := e.evalDeclaration(n, fr)
			if err != nil {
				return err
			}
			if bare {
				out.nodes = append(out.nodes, &cssText{text: d.String()})
			} else {
				out.lines = append(out.lines, d)
			}
		case *ruleset:
			nodes, err := e.evalRuleset(n, fr, sels, media)
			if err != nil {
				return err
			}
			out.nodes = append(out.nodes, nodes...)
		case *mixinCall:
			if err := e.evalMixinCall(n, fr, sels, media, out); err != nil {
				return err
			}
		case *atRule:
			if err := e.evalAtRule(n, fr, sels, media, out); err != nil {
				return err
			}
		case *importGroup:
			if n.reference {
				continue
			}
			if err := e.evalRules(n.rules, fr, sels, media, out); err != nil {
				return err
			}
		case *rawCSS:
			if text := strings.TrimRight(n.text, "\r\n"); text != "" {
				out.nodes = append(out.nodes, &cssText{text: text})
			}
		case *cssImport:
			e.imports = append(e.imports, &cssText{text: n.text})
		}
	}
	return nil
}

func (e *evaluator) evalRuleset(rs *ruleset, fr frames, parents []string, media string) ([]cssNode, error) {
	if rs.parametric() {
		return nil, nil
	}
	raw, err := e.interpolate(rs.selector, fr)
	if err != nil {
		return nil, locate(err, NameError, rs.pos)
	}
	sels := joinSelectors(parents, splitSelectors(raw))

	e.stack = append(e.stack, rs)
	defer func() { e.stack = e.stack[:len(e.stack)-1] }()

	out := &block{}
	if err := e.evalRules(rs.rules, fr.push(newScope(rs.rules)), sels, media, out); err != nil {
		return nil, err
	}
	var nodes []cssNode
	if hasDeclaration(out.lines) {
		nodes = append(nodes, &cssRule{selectors: sels, lines: out.lines})
	}
	return append(nodes, out.nodes...), nil
}

func (e *evaluator) evalDeclaration(d *declaration, fr frames) (*cssDecl, error) {
	name, err := e.interpolate(d.name, fr)
	if err != nil {
		return nil, locate(err, NameError, d.pos)
	}
	if strings.HasPrefix(name, "--") || strings.HasPrefix(strings.ToLower(d.value), "progid:") {
		v, err := e.interpolate(d.value, fr)
		if err != nil {
			return nil, locate(err, NameError, d.pos)
		}
		return &cssDecl{name: name, value: v, important: d.important}, nil
	}
	v, err := e.evalValue(d.value, d.pos, fr)
	if err != nil {
		return nil, err
	}
	return &cssDecl{name: name, value: v.css(), important: d.important}, nil
}

func (e *evaluator) evalValue(raw string, pos position, fr frames) (value, error) {
	x, err := parseExpr(raw)
	if err != nil {
		return nil, newError(ParseError, pos, "Unrecognised input (%v)", err)
	}
	v, err := e.eval(x, fr, false)
	if err != nil {
		return nil, locate(err, ArgumentError, pos)
	}
	return v, nil
}

func (e *evaluator) eval(x expr, fr frames, mathOff bool) (value, error) {
	switch x := x.(type) {
	case *literal:
		return x.v, nil
	case *varExpr:
		name := x.name
		if x.indirect {
			v, err := e.lookupVar(name, fr)
			if err != nil {
				return nil, err
			}
			name = strings.TrimPrefix(plain(v), "@")
		}
		return e.lookupVar(name, fr)
	case *negExpr:
		v, err := e.eval(x.x, fr, mathOff)
		if err != nil {
			return nil, err
		}
		if d, ok := v.(*dimension); ok {
			return &dimension{n: -d.n, unit: d.unit}, nil
		}
		return keyword("-" + v.css()), nil
	case *parenExpr:
		v, err := e.eval(x.x, fr, mathOff)
		if err != nil {
			return nil, err
		}
		if mathOff {
			return keyword("(" + v.css() + ")"), nil
		}
		return v, nil
	case *opExpr:
		l, err := e.eval(x.left, fr, mathOff)
		if err != nil {
			return nil, err
		}
		r, err := e.eval(x.right, fr, mathOff)
		if err != nil {
			return nil, err
		}
		if mathOff || (x.op == '/' && !x.inParens) {
			return &opLiteral{op: x.op, left: l, right: r, spaced: x.spaced}, nil
		}
		return operate(x.op, l, r)
	case *listExpr:
		items := make([]value, len(x.items))
		for i, item := range x.items {
			v, err := e.eval(item, fr, mathOff)
			if err != nil {
				return nil, err
			}
			items[i] = v
		}
		return &list{items: items, sep: x.sep}, nil
	case *quotedExpr:
		s, err := e.interpolate(x.s, fr)
		if err != nil {
			return nil, err
		}
		return &quoted{s: s, quote: x.quote, escaped: x.escaped}, nil
	case *urlExpr:
		return e.evalURL(x, fr)
	case *callExpr:
		return e.evalCall(x, fr, mathOff)
	}
	return nil, fmt.Errorf("unexpected expression %T", x)
}

func (e *evaluator) evalURL(x *urlExpr, fr frames) (value, error) {
	if x.quote == 0 && x.raw != "" && varRefRe.FindString(x.raw) == x.raw {
		ref := &varExpr{name: strings.TrimLeft(x.raw, "@"), indirect: strings.HasPrefix(x.raw, "@@")}
		v, err := e.eval(ref, fr, false)
		if err != nil {
			return nil, err
		}
		return &url{inner: v.css()}, nil
	}
	s, err := e.interpolate(x.raw, fr)
	if err != nil {
		return nil, err
	}
	if x.quote != 0 {
		s = string(x.quote) + s + string(x.quote)
	}
	return &url{inner: s}, nil
}

func (e *evaluator) evalCall(x *callExpr, fr frames, mathOff bool) (value, error) {
	name := strings.ToLower(x.name)
	argsMathOff := mathOff || name == "calc"
	args := make([]value, len(x.args))
	for i, a := range x.args {
		v, err := e.eval(a, fr, argsMathOff)
		if err != nil {
			return nil, err
		}
		args[i] = v
	}
	if fn, ok := builtins[name]; ok && !mathOff {
		v, err := fn(args)
		if err == nil {
			return v, nil
		}
		if err != errPassThrough {
			return nil, fmt.Errorf("error evaluating function `%s`: %w", x.name, err)
		}
	}
	return &call{name: x.name, args: args}, nil
}

func (e *evaluator) lookupVar(name string, fr frames) (value, error) {
	for i, sc := range fr {
		b, ok := sc.vars[name]
		if !ok {
			continue
		}
		// Values are evaluated on first use in the defining scope, so a
		// variable may reference one declared later in the same block.
		if b.done {
			return b.val, nil
		}
		if b.evaluating {
			return nil, &Error{Kind: NameError, Message: fmt.Sprintf("Recursive variable definition for @%s", name)}
		}
		b.evaluating = true
		v, err := e.evalValue(b.decl.value, b.decl.pos, fr[i:])
		b.evaluating = false
		if err != nil {
			return nil, err
		}
		b.val, b.done = v, true
		return v, nil
	}
	return nil, &Error{Kind: NameError, Message: fmt.Sprintf("variable @%s is undefined", name)}
}

// interpolate replaces @{name} with the unquoted value of @name.
func (e *evaluator) interpolate(s string, fr frames) (string, error) {
	if !strings.Contains(s, "@{") {
		return s, nil
	}
	return e.replaceVars(s, interpRe, fr)
}

func (e *evaluator) replaceVars(s string, re *regexp.Regexp, fr frames) (string, error) {
	var firstErr error
	out := re.ReplaceAllStringFunc(s, func(m string) string {
		if firstErr != nil {
			return m
		}
		name := strings.TrimPrefix(m, "@")
		name = strings.TrimSuffix(strings.TrimPrefix(name, "{"), "}")
		v, err := e.lookupVar(name, fr)
		if err != nil {
			firstErr = err
			return m
		}
		return plain(v)
	})
	return out, firstErr
}

func (e *evaluator) evalMixinCall(c *mixinCall, fr frames, sels []string, media string, out *block) error {
	args := make([]boundArg, 0, len(c.args))
	for _, a := range c.args {
		v, err := e.evalValue(a.value, c.pos, fr)
		if err != nil {
			return err
		}
		args = append(args, boundArg{name: a.name, val: v})
	}

	candidates := e.findMixins(c.path, fr)
	if len(candidates) == 0 {
		return newError(NameError, c.pos, "%s is undefined", strings.Join(c.path, " > "))
	}

	matched := false
	for _, cand := range candidates {
		if !cand.rs.accepts(args) {
			continue
		}
		matched = true

		body := newScope(cand.rs.rules)
		chain := frames{body}
		if cand.rs.parametric() {
			argScope, err := e.bindArgs(cand.rs, args, append(slices.Clone(cand.defs), fr...))
			if err != nil {
				return locate(err, ArgumentError, c.pos)
			}
			chain = append(chain, argScope)
		}
		chain = append(chain, cand.defs...)
		chain = append(chain, fr...)

		sub := &block{declMode: out.declMode}
		e.stack = append(e.stack, cand.rs)
		err := e.evalRules(cand.rs.rules, chain, sels, media, sub)
		e.stack = e.stack[:len(e.stack)-1]
		if err != nil {
			return err
		}
		if c.important {
			markImportant(sub.lines)
			markImportant(sub.nodes)
		}
		out.lines = append(out.lines, sub.lines...)
		out.nodes = append(out.nodes, sub.nodes...)
	}
	if !matched {
		return newError(ArgumentError, c.pos, "No matching definition was found for `%s`", c.raw)
	}
	return nil
}

func (e *evaluator) evaluating(rs *ruleset) bool {
	return slices.Contains(e.stack, rs)
}

// findMixins returns every ruleset matching path in the innermost scope that
// has any match.
func (e *evaluator) findMixins(path []string, fr frames) []mixinCandidate {
	for i, sc := range fr {
		var found []mixinCandidate
		for _, rs := range sc.rulesets {
			found = append(found, e.matchPath(rs, path, fr[i:])...)
		}
		if len(found) > 0 {
			return found
		}
	}
	return nil
}

func (e *evaluator) matchPath(rs *ruleset, path []string, defs frames) []mixinCandidate {
	if !rs.callableAs(path[0]) {
		return nil
	}
	if len(path) == 1 {
		if e.evaluating(rs) {
			return nil
		}
		return []mixinCandidate{{rs: rs, defs: defs}}
	}
	inner := defs.push(newScope(rs.rules))
	var found []mixinCandidate
	for _, child := range inner[0].rulesets {
		found = append(found, e.matchPath(child, path[1:], inner)...)
	}
	return found
}

// bindArgs binds call arguments to rs's parameters. Defaults are evaluated
// in order, so they may refer to earlier parameters.
func (e *evaluator) bindArgs(rs *ruleset, args []boundArg, outer frames) (*scope, error) {
	sc := &scope{vars: make(map[string]*binding)}
	vals := make([]value, len(rs.params))
	set := make([]bool, len(rs.params))

	var positional []value
	for _, a := range args {
		if a.name == "" {
			positional = append(positional, a.val)
			continue
		}
		i := rs.paramIndex(a.name)
		if i < 0 {
			return nil, fmt.Errorf("named argument for %s @%s not found", rs.mixinName, a.name)
		}
		vals[i], set[i] = a.val, true
	}

	pi := 0
	for k := 0; k < len(positional); k++ {
		for pi < len(rs.params) && set[pi] {
			pi++
		}
		if pi >= len(rs.params) {
			return nil, fmt.Errorf("wrong number of arguments for %s", rs.mixinName)
		}
		if rs.params[pi].variadic {
			rest := positional[k:]
			if len(rest) == 1 {
				vals[pi] = rest[0]
			} else {
				vals[pi] = &list{items: rest, sep: " "}
			}
			set[pi] = true
			break
		}
		vals[pi], set[pi] = positional[k], true
		pi++
	}

	chain := outer.push(sc)
	var all []value
	for i, p := range rs.params {
		if p.pattern != "" {
			if vals[i] == nil {
				vals[i] = keyword(p.pattern)
			}
			all = append(all, vals[i])
			continue
		}
		if !set[i] {
			if p.variadic {
				continue
			}
			if !p.hasDef {
				return nil, fmt.Errorf("wrong number of arguments for %s", rs.mixinName)
			}
			v, err := e.evalValue(p.def, rs.pos, chain)
			if err != nil {
				return nil, err
			}
			vals[i] = v
		}
		if p.name != "" {
			sc.vars[p.name] = &binding{val: vals[i], done: true}
		}
		all = append(all, vals[i])
	}
	sc.vars["arguments"] = &binding{val: &list{items: all, sep: " "}, done: true}
	return sc, nil
}

func (e *evaluator) evalAtRule(a *atRule, fr frames, sels []string, media string, out *block) error {
	name := strings.ToLower(a.name)
	prelude, err := e.replaceVars(a.prelude, preludeVarRe, fr)
	if err != nil {
		return locate(err, NameError, a.pos)
	}
	if name == "media" {
		prelude = mediaCloseRe.ReplaceAllString(mediaFeatRe.ReplaceAllString(prelude, "($1: "), ")")
	}

	if !a.block {
		if name == "charset" {
			if e.charset == "" {
				e.charset = "@charset " + prelude + ";"
			}
			return nil
		}
		stmt := "@" + a.name
		if prelude != "" {
			stmt += " " + prelude
		}
		out.nodes = append(out.nodes, &cssText{text: stmt + ";"})
		return nil
	}

	chain := fr.push(newScope(a.rules))
	switch {
	case isDeclarationAtRule(name):
		inner := &block{declMode: true}
		if err := e.evalRules(a.rules, chain, nil, media, inner); err != nil {
			return err
		}
		if len(inner.lines)+len(inner.nodes) > 0 {
			out.nodes = append(out.nodes, &cssAtRule{name: a.name, prelude: prelude, lines: inner.lines, children: inner.nodes})
		}
		return nil

	case strings.HasSuffix(name, "keyframes"):
		inner := &block{}
		if err := e.evalRules(a.rules, chain, nil, "", inner); err != nil {
			return err
		}
		if len(inner.nodes) > 0 {
			out.nodes = append(out.nodes, &cssAtRule{name: a.name, prelude: prelude, children: inner.nodes})
		}
		return nil
	}

	// Conditional group rules bubble out of rulesets; nested @media queries
	// are combined and emitted next to their parent.
	query, nested := prelude, media
	if name == "media" {
		if media != "" {
			query = media + " and " + prelude
		}
		nested = query
	}
	inner := &block{}
	if err := e.evalRules(a.rules, chain, sels, nested, inner); err != nil {
		return err
	}

	var children, bubbled []cssNode
	if hasDeclaration(inner.lines) {
		if sels != nil {
			children = append(children, &cssRule{selectors: sels, lines: inner.lines})
		} else {
			children = append(children, inner.lines...)
		}
	}
	// Nested queries were already emitted with the combined prelude; hoist
	// them after this block instead of nesting them.
	for _, n := range inner.nodes {
		if at, ok := n.(*cssAtRule); ok && name == "media" && strings.EqualFold(at.name, "media") {
			bubbled = append(bubbled, n)
			continue
		}
		children = append(children, n)
	}
	if len(children) > 0 {
		out.nodes = append(out.nodes, &cssAtRule{name: a.name, prelude: query, children: children})
	}
	out.nodes = append(out.nodes, bubbled...)
	return nil
}

func isDeclarationAtRule(name string) bool {
	switch strings.TrimPrefix(name, "-ms-") {
	case "font-face", "page", "viewport", "counter-style", "font-feature-values", "property", "font-palette-values":
		return true
	}
	return false
}
