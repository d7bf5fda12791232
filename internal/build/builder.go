// Package build compiles themes to standalone CSS files.
package build

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/JamesIves/vgui.css/internal/less"
	"github.com/JamesIves/vgui.css/internal/theme"
)

// Result describes a theme that was built successfully.
type Result struct {
	Theme      theme.Spec
	OutputPath string
	Bytes      int
	Inlined    int // url() references replaced with data URIs
}

// Builder runs the compile and inline pipeline for each theme.
type Builder struct {
	root   string
	out    io.Writer
	logger *slog.Logger
	name   lipgloss.Style
}

// NewBuilder creates a Builder resolving theme paths against root (the
// working directory when empty) and reporting built themes to out.
func NewBuilder(root string, out io.Writer, logger *slog.Logger) *Builder {
	if logger == nil {
		logger = slog.Default()
	}
	if out == nil {
		out = os.Stdout
	}

	renderer := lipgloss.NewRenderer(out)
	return &Builder{
		root:   root,
		out:    out,
		logger: logger,
		name:   renderer.NewStyle().Bold(true).Foreground(lipgloss.Color("2")),
	}
}

// Run builds specs in order and stops at the first failure.
func (b *Builder) Run(ctx context.Context, specs []theme.Spec) error {
	for _, spec := range specs {
		if err := ctx.Err(); err != nil {
			return err
		}
		if _, err := b.BuildTheme(ctx, spec); err != nil {
			return fmt.Errorf("build %s: %w", spec.Name, err)
		}
	}
	return nil
}

// BuildTheme compiles one theme, inlines its assets and writes the result.
// Nothing is written when any step before the write fails.
func (b *Builder) BuildTheme(ctx context.Context, spec theme.Spec) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	paths := spec.Resolve(b.root)
	logger := b.logger.With("theme", spec.Name)

	readFile := func(name string) ([]byte, error) {
		data, err := os.ReadFile(name)
		if err == nil {
			logger.Debug("read stylesheet", "path", name, "size", humanize.Bytes(uint64(len(data))))
		}
		return data, err
	}
	css, err := less.CompileFile(paths.Source, less.Options{ReadFile: readFile})
	if err != nil {
		return nil, err
	}

	css, inlined, err := theme.InlineAssetsCount(css, paths.AssetDir)
	if err != nil {
		return nil, fmt.Errorf("inline assets: %w", err)
	}
	logger.Debug("inlined assets", "count", inlined, "asset_dir", paths.AssetDir)

	if err := os.MkdirAll(filepath.Dir(paths.Output), 0755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}
	if err := os.WriteFile(paths.Output, []byte(css), 0644); err != nil {
		return nil, fmt.Errorf("write output: %w", err)
	}
	logger.Debug("wrote stylesheet", "output", paths.Output, "size", humanize.Bytes(uint64(len(css))))

	fmt.Fprintf(b.out, "Built %s to %s\n", b.name.Render(spec.Name), paths.Output)

	return &Result{
		Theme:      spec,
		OutputPath: paths.Output,
		Bytes:      len(css),
		Inlined:    inlined,
	}, nil
}
