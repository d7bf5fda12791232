package build

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JamesIves/vgui.css/internal/config"
	"github.com/JamesIves/vgui.css/internal/less"
	"github.com/JamesIves/vgui.css/internal/theme"
)

var onePixelPNG, _ = base64.StdEncoding.DecodeString(
	"iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAYAAAAfFcSJAAAADUlEQVR42mNkYPhfDwAChwGA60e6kgAAAABJRU5ErkJggg==")

// newTheme lays out styles/<name>/<name>.less plus extra files in root and
// returns the matching spec.
func newTheme(t *testing.T, root, name, source string, files map[string][]byte) theme.Spec {
	t.Helper()
	dir := filepath.Join(root, "styles", name)
	require.NoError(t, os.MkdirAll(dir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, name+".less"), []byte(source), 0644))
	for file, data := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, file), data, 0644))
	}
	return theme.Spec{
		Name:     name,
		Source:   filepath.Join("styles", name, name+".less"),
		Output:   filepath.Join("dist", name+".css"),
		AssetDir: filepath.Join("styles", name),
	}
}

func TestBuildTheme_InlinesAssets(t *testing.T) {
	root := t.TempDir()
	spec := newTheme(t, root, "greensteam", `body { background: url("bg.png"); }`,
		map[string][]byte{"bg.png": onePixelPNG})

	var out bytes.Buffer
	b := NewBuilder(root, &out, nil)

	result, err := b.BuildTheme(context.Background(), spec)
	require.NoError(t, err)

	outputPath := filepath.Join(root, "dist", "greensteam.css")
	want := "body {\n  background: url('data:image/png;base64," +
		base64.StdEncoding.EncodeToString(onePixelPNG) + "');\n}\n"

	data, err := os.ReadFile(outputPath)
	require.NoError(t, err)
	assert.Equal(t, want, string(data))

	assert.Equal(t, outputPath, result.OutputPath)
	assert.Equal(t, 1, result.Inlined)
	assert.Equal(t, len(want), result.Bytes)
	assert.Equal(t, spec, result.Theme)
	assert.Equal(t, "Built greensteam to "+outputPath+"\n", out.String())
}

func TestBuildTheme_ResolvesImportsFromSourceDir(t *testing.T) {
	root := t.TempDir()
	spec := newTheme(t, root, "blacksteam", "@import \"_vars\";\n.a { color: @accent; }\n",
		map[string][]byte{"_vars.less": []byte("@accent: #000;\n")})

	_, err := NewBuilder(root, &bytes.Buffer{}, nil).BuildTheme(context.Background(), spec)
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(root, "dist", "blacksteam.css"))
	require.NoError(t, err)
	assert.Equal(t, ".a {\n  color: #000;\n}\n", string(data))
}

func TestBuildTheme_LogsEveryStylesheetRead(t *testing.T) {
	root := t.TempDir()
	spec := newTheme(t, root, "blacksteam", "@import \"_vars\";\n.a { color: @accent; }\n",
		map[string][]byte{"_vars.less": []byte("@accent: #000;\n")})

	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))

	_, err := NewBuilder(root, &bytes.Buffer{}, logger).BuildTheme(context.Background(), spec)
	require.NoError(t, err)

	assert.Contains(t, logs.String(), "read stylesheet")
	assert.Contains(t, logs.String(), "blacksteam.less")
	assert.Contains(t, logs.String(), "_vars.less")
	assert.Contains(t, logs.String(), "size=")
}

func TestBuildTheme_MissingSource(t *testing.T) {
	root := t.TempDir()
	spec := theme.Spec{Name: "gone", Source: "styles/gone.less", Output: "dist/gone.css", AssetDir: "styles"}

	var out bytes.Buffer
	_, err := NewBuilder(root, &out, nil).BuildTheme(context.Background(), spec)
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.Contains(t, err.Error(), "read source")
	assert.Empty(t, out.String())

	_, err = os.Stat(filepath.Join(root, "dist", "gone.css"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestBuildTheme_CompileError(t *testing.T) {
	root := t.TempDir()
	spec := newTheme(t, root, "broken", ".a {\n  color: @missing;\n}\n", nil)

	_, err := NewBuilder(root, &bytes.Buffer{}, nil).BuildTheme(context.Background(), spec)
	require.Error(t, err)

	var lessErr *less.Error
	require.True(t, errors.As(err, &lessErr))
	assert.Equal(t, less.NameError, lessErr.Kind)
	assert.Equal(t, "broken.less", lessErr.Filename)
	assert.Equal(t, 2, lessErr.Line)

	_, err = os.Stat(filepath.Join(root, "dist", "broken.css"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestBuildTheme_Deterministic(t *testing.T) {
	root := t.TempDir()
	spec := newTheme(t, root, "greensteam", "@c: #123;\n.a { color: @c; background: url(bg.png); }\n",
		map[string][]byte{"bg.png": onePixelPNG})
	b := NewBuilder(root, &bytes.Buffer{}, nil)
	outputPath := filepath.Join(root, "dist", "greensteam.css")

	_, err := b.BuildTheme(context.Background(), spec)
	require.NoError(t, err)
	first, err := os.ReadFile(outputPath)
	require.NoError(t, err)

	_, err = b.BuildTheme(context.Background(), spec)
	require.NoError(t, err)
	second, err := os.ReadFile(outputPath)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestRun_StopsAtFirstFailure(t *testing.T) {
	root := t.TempDir()
	good := newTheme(t, root, "good", ".a { top: 0; }", nil)
	bad := theme.Spec{Name: "bad", Source: "styles/bad.less", Output: "dist/bad.css", AssetDir: "styles"}
	after := newTheme(t, root, "after", ".b { top: 0; }", nil)

	var out bytes.Buffer
	err := NewBuilder(root, &out, nil).Run(context.Background(), []theme.Spec{good, bad, after})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "build bad: read source")

	assert.FileExists(t, filepath.Join(root, "dist", "good.css"))
	assert.NoFileExists(t, filepath.Join(root, "dist", "after.css"))
	assert.Equal(t, "Built good to "+filepath.Join(root, "dist", "good.css")+"\n", out.String())
}

func TestRun_BuildsInOrder(t *testing.T) {
	root := t.TempDir()
	specs := []theme.Spec{
		newTheme(t, root, "greensteam", ".a { top: 0; }", nil),
		newTheme(t, root, "blacksteam", ".b { top: 0; }", nil),
	}

	var out bytes.Buffer
	require.NoError(t, NewBuilder(root, &out, nil).Run(context.Background(), specs))
	assert.Equal(t,
		"Built greensteam to "+filepath.Join(root, "dist", "greensteam.css")+"\n"+
			"Built blacksteam to "+filepath.Join(root, "dist", "blacksteam.css")+"\n",
		out.String())
}

func TestRun_Cancelled(t *testing.T) {
	root := t.TempDir()
	spec := newTheme(t, root, "greensteam", ".a { top: 0; }", nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := NewBuilder(root, &bytes.Buffer{}, nil).Run(ctx, []theme.Spec{spec})
	assert.ErrorIs(t, err, context.Canceled)
	assert.NoFileExists(t, filepath.Join(root, "dist", "greensteam.css"))
}

func TestBuildTheme_BundledThemes(t *testing.T) {
	themes, err := config.Themes()
	require.NoError(t, err)

	outDir := t.TempDir()
	b := NewBuilder(filepath.Join("..", ".."), &bytes.Buffer{}, nil)
	for _, spec := range themes {
		t.Run(spec.Name, func(t *testing.T) {
			spec.Output = filepath.Join(outDir, spec.Name+".css")

			result, err := b.BuildTheme(context.Background(), spec)
			require.NoError(t, err)
			assert.Equal(t, 3, result.Inlined)

			data, err := os.ReadFile(spec.Output)
			require.NoError(t, err)
			css := string(data)
			assert.Contains(t, css, "url('data:image/png;base64,")
			assert.NotContains(t, css, "images/")
			assert.Contains(t, css, ".vgui-frame .vgui-title {")
			assert.Contains(t, css, ".vgui-button:active,\n.vgui-button.active {")
		})
	}
}
