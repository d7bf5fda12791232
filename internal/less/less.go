package less

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Options control how a stylesheet is compiled.
type Options struct {
	// Paths are searched, in order, for imports that are not found next to
	// the importing file.
	Paths []string

	// Filename names the source in diagnostics. Imports from the root file
	// also resolve against its directory when it has one.
	Filename string

	// ReadFile loads imported files. Defaults to os.ReadFile.
	ReadFile func(name string) ([]byte, error)
}

type parser struct {
	opts     Options
	readFile func(string) ([]byte, error)
	seen     map[string]bool
	stack    []string
}

// Compile compiles LESS source text to CSS.
func Compile(src string, opts Options) (string, error) {
	p := &parser{
		opts:     opts,
		readFile: opts.ReadFile,
		seen:     make(map[string]bool),
	}
	if p.readFile == nil {
		p.readFile = os.ReadFile
	}

	name := opts.Filename
	if name == "" {
		name = "input"
	}
	dir := ""
	if d := filepath.Dir(opts.Filename); opts.Filename != "" && d != "." {
		dir = d
	}

	if opts.Filename != "" {
		root := opts.Filename
		if dir == "" && len(opts.Paths) > 0 {
			root = filepath.Join(opts.Paths[0], opts.Filename)
		}
		key := fileKey(root)
		p.seen[key] = true
		p.stack = append(p.stack, key)
	}

	src = strings.TrimPrefix(src, "\ufeff")
	rules, err := p.parseBlock(&scanner{src: newSource(name, src)}, dir, false)
	if err != nil {
		return "", err
	}

	e := &evaluator{}
	nodes, err := e.evalRoot(rules)
	if err != nil {
		return "", err
	}

	var header []cssNode
	if e.charset != "" {
		header = append(header, &cssText{text: e.charset})
	}
	header = append(header, e.imports...)
	return render(append(header, nodes...)), nil
}

// CompileFile reads path and compiles it with path's directory prepended to
// the search paths.
func CompileFile(path string, opts Options) (string, error) {
	readFile := opts.ReadFile
	if readFile == nil {
		readFile = os.ReadFile
	}
	data, err := readFile(path)
	if err != nil {
		return "", fmt.Errorf("read source: %w", err)
	}
	opts.Paths = append([]string{filepath.Dir(path)}, opts.Paths...)
	if opts.Filename == "" {
		opts.Filename = filepath.Base(path)
	}
	return Compile(string(data), opts)
}
