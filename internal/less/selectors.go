package less

import "strings"

// splitSelectors splits a selector list and normalises each member.
func splitSelectors(raw string) []string {
	var out []string
	for _, part := range splitTopLevel(raw, ',') {
		if s := normalizeSelector(part); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// normalizeSelector collapses whitespace and puts single spaces around
// top-level combinators.
func normalizeSelector(s string) string {
	var b strings.Builder
	depth := 0
	pending := false
	var quote byte
	for i := 0; i < len(s); i++ {
		c := s[i]
		if quote != 0 {
			b.WriteByte(c)
			if c == '\\' && i+1 < len(s) {
				i++
				b.WriteByte(s[i])
			} else if c == quote {
				quote = 0
			}
			continue
		}
		switch {
		case isSpace(c):
			pending = true
			continue
		case depth == 0 && (c == '>' || c == '+' || c == '~'):
			if b.Len() > 0 {
				b.WriteByte(' ')
			}
			b.WriteByte(c)
			pending = true
			continue
		case c == '"' || c == '\'':
			quote = c
		case c == '(' || c == '[':
			depth++
		case c == ')' || c == ']':
			if depth > 0 {
				depth--
			}
		}
		if pending && b.Len() > 0 {
			b.WriteByte(' ')
		}
		pending = false
		b.WriteByte(c)
	}
	return b.String()
}

// joinSelectors resolves nested selectors against their parents. Child
// selectors containing & substitute a parent at every &, each occurrence
// ranging over all parents independently; others are joined as
// descendants. The result iterates children in the outer loop, as lessc does.
func joinSelectors(parents, children []string) []string {
	out := make([]string, 0, len(children)*max(len(parents), 1))
	if len(parents) == 0 {
		for _, c := range children {
			if s := normalizeSelector(strings.ReplaceAll(c, "&", "")); s != "" {
				out = append(out, s)
			}
		}
		return out
	}
	for _, c := range children {
		if !strings.Contains(c, "&") {
			for _, p := range parents {
				out = append(out, p+" "+c)
			}
			continue
		}
		out = append(out, expandParents(strings.Split(c, "&"), parents)...)
	}
	return out
}

// expandParents fills the gaps between parts with every combination of
// parents, varying the last gap fastest.
func expandParents(parts, parents []string) []string {
	results := []string{parts[0]}
	for _, part := range parts[1:] {
		next := make([]string, 0, len(results)*len(parents))
		for _, prefix := range results {
			for _, p := range parents {
				next = append(next, prefix+p+part)
			}
		}
		results = next
	}
	return results
}
