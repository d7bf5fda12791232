package less

import "strings"

// cssNode is one statement of the compiled stylesheet.
type cssNode interface {
	write(b *strings.Builder, depth int)
}

type cssDecl struct {
	name      string
	value     string
	important bool
}

func (d *cssDecl) String() string {
	s := d.name + ": " + d.value
	if d.important {
		s += " !important"
	}
	return s + ";"
}

func (d *cssDecl) write(b *strings.Builder, depth int) {
	indent(b, depth)
	b.WriteString(d.String())
	b.WriteByte('\n')
}

type cssComment struct {
	text string
}

func (c *cssComment) write(b *strings.Builder, depth int) {
	indent(b, depth)
	b.WriteString(c.text)
	b.WriteByte('\n')
}

// cssText is emitted verbatim: statements, inline imports, bare
// declarations at the root.
type cssText struct {
	text string
}

func (t *cssText) write(b *strings.Builder, depth int) {
	for _, line := range strings.Split(t.text, "\n") {
		indent(b, depth)
		b.WriteString(line)
		b.WriteByte('\n')
	}
}

type cssRule struct {
	selectors []string
	lines     []cssNode
}

func (r *cssRule) write(b *strings.Builder, depth int) {
	indent(b, depth)
	b.WriteString(strings.Join(r.selectors, ",\n"+strings.Repeat("  ", depth)))
	b.WriteString(" {\n")
	for _, l := range r.lines {
		l.write(b, depth+1)
	}
	indent(b, depth)
	b.WriteString("}\n")
}

type cssAtRule struct {
	name     string
	prelude  string
	lines    []cssNode
	children []cssNode
}

func (a *cssAtRule) write(b *strings.Builder, depth int) {
	indent(b, depth)
	b.WriteString("@" + a.name)
	if a.prelude != "" {
		b.WriteString(" " + a.prelude)
	}
	b.WriteString(" {\n")
	for _, l := range a.lines {
		l.write(b, depth+1)
	}
	for _, c := range a.children {
		c.write(b, depth+1)
	}
	indent(b, depth)
	b.WriteString("}\n")
}

func indent(b *strings.Builder, depth int) {
	for i := 0; i < depth; i++ {
		b.WriteString("  ")
	}
}

func render(nodes []cssNode) string {
	var b strings.Builder
	for _, n := range nodes {
		n.write(&b, 0)
	}
	return b.String()
}

func hasDeclaration(lines []cssNode) bool {
	for _, l := range lines {
		if _, ok := l.(*cssDecl); ok {
			return true
		}
	}
	return false
}

// markImportant flags every declaration under nodes as !important.
func markImportant(nodes []cssNode) {
	for _, n := range nodes {
		switch n := n.(type) {
		case *cssDecl:
			n.important = true
		case *cssRule:
			markImportant(n.lines)
		case *cssAtRule:
			markImportant(n.lines)
			markImportant(n.children)
		}
	}
}
