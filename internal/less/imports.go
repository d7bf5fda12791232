package less

import (
	"errors"
	"io/fs"
	"path/filepath"
	"regexp"
	"slices"
	"strings"
)

var importRe = regexp.MustCompile(`(?s)^(?:\(([^)]*)\)\s*)?("([^"]*)"|'([^']*)'|url\(\s*(?:"([^"]*)"|'([^']*)'|([^)]*?))\s*\))\s*(.*)$`)

type importOptions struct {
	reference bool
	inline    bool
	less      bool
	css       bool
	multiple  bool
	optional  bool
}

func parseImportOptions(raw string, pos position) (importOptions, error) {
	var opts importOptions
	if strings.TrimSpace(raw) == "" {
		return opts, nil
	}
	for _, o := range strings.Split(raw, ",") {
		switch strings.TrimSpace(o) {
		case "reference":
			opts.reference = true
		case "inline":
			opts.inline = true
		case "less":
			opts.less = true
		case "css":
			opts.css = true
		case "multiple":
			opts.multiple = true
		case "optional":
			opts.optional = true
		case "once":
		default:
			return opts, newError(SyntaxError, pos, "unrecognised import option %q", strings.TrimSpace(o))
		}
	}
	return opts, nil
}

func (p *parser) parseImport(s *scanner, dir string, pos position) ([]node, error) {
	text, term, err := s.readChunk()
	if err != nil {
		return nil, err
	}
	if term == '{' {
		return nil, newError(ParseError, pos, "Unrecognised input")
	}
	m := importRe.FindStringSubmatch(strings.TrimSpace(text))
	if m == nil {
		return nil, newError(ParseError, pos, "Unrecognised input")
	}
	opts, err := parseImportOptions(m[1], pos)
	if err != nil {
		return nil, err
	}

	target := m[2]
	path := firstNonEmpty(m[3], m[4], m[5], m[6], strings.TrimSpace(m[7]))
	media := collapseSpace(m[8])
	isURL := strings.HasPrefix(target, "url(")

	if opts.css || (!opts.less && !opts.inline && (isURL || isCSSPath(path))) {
		stmt := "@import " + target
		if media != "" {
			stmt += " " + media
		}
		return []node{&cssImport{text: stmt + ";"}}, nil
	}
	return p.importFile(path, dir, opts, pos, media)
}

func isCSSPath(path string) bool {
	return strings.HasSuffix(path, ".css") ||
		strings.HasPrefix(path, "http://") ||
		strings.HasPrefix(path, "https://") ||
		strings.HasPrefix(path, "//")
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// importFile resolves, reads and parses an imported LESS file. Files are
// imported once per compile unless the multiple option is given.
func (p *parser) importFile(path, dir string, opts importOptions, pos position, media string) ([]node, error) {
	name := path
	if filepath.Ext(name) == "" {
		name += ".less"
	}

	file, data, tried, err := p.resolve(name, dir)
	if err != nil {
		e := newError(FileError, pos, "failed to read '%s': %v", path, err)
		e.Err = err
		return nil, e
	}
	if file == "" {
		if opts.optional {
			return nil, nil
		}
		return nil, newError(FileError, pos, "'%s' wasn't found. Tried - %s", path, strings.Join(tried, ","))
	}

	// A file already on the import stack is a cycle. Plain imports drop it
	// silently; (multiple) would recurse forever, so it fails instead.
	key := fileKey(file)
	if slices.Contains(p.stack, key) {
		if !opts.multiple {
			return nil, nil
		}
		return nil, newError(SyntaxError, pos, "recursive import of '%s'", path)
	}
	// import-once: later plain imports of a parsed file contribute nothing.
	if p.seen[key] && !opts.multiple {
		return nil, nil
	}
	p.seen[key] = true

	if opts.inline {
		return []node{&rawCSS{text: string(data)}}, nil
	}

	p.stack = append(p.stack, key)
	rules, err := p.parseBlock(&scanner{src: newSource(file, string(data))}, filepath.Dir(file), false)
	p.stack = p.stack[:len(p.stack)-1]
	if err != nil {
		return nil, err
	}

	var n node = &importGroup{rules: rules, reference: opts.reference}
	// A media list on the import wraps the file's rules, which then bubble
	// like any nested @media.
	if media != "" {
		n = &atRule{name: "media", prelude: media, block: true, rules: []node{n}, pos: pos}
	}
	return []node{n}, nil
}

// resolve looks name up relative to the importing file's directory and then
// each search path. A missing file yields an empty path and no error.
func (p *parser) resolve(name, dir string) (string, []byte, []string, error) {
	var dirs []string
	if filepath.IsAbs(name) {
		dirs = []string{""}
	} else {
		if dir != "" {
			dirs = append(dirs, dir)
		}
		for _, d := range p.opts.Paths {
			if !slices.Contains(dirs, d) {
				dirs = append(dirs, d)
			}
		}
		if len(dirs) == 0 {
			dirs = []string{"."}
		}
	}

	var tried []string
	for _, d := range dirs {
		file := name
		if d != "" {
			file = filepath.Join(d, name)
		}
		data, err := p.readFile(file)
		if err == nil {
			return file, data, tried, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return "", nil, tried, err
		}
		tried = append(tried, file)
	}
	return "", nil, tried, nil
}

func fileKey(file string) string {
	if abs, err := filepath.Abs(file); err == nil {
		return abs
	}
	return filepath.Clean(file)
}
