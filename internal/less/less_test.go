package less

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func compile(t *testing.T, src string) string {
	t.Helper()
	css, err := Compile(src, Options{Filename: "theme.less"})
	require.NoError(t, err)
	return css
}

func TestCompile_VariablesAndNesting(t *testing.T) {
	src := `// dropped
@primary: #336699;
@pad: 4px;
.box {
  color: @primary;
  padding: @pad (@pad * 2);
  .title { margin: 0 -1px; }
  &:hover, &.active { color: red; }
}
`
	want := `.box {
  color: #336699;
  padding: 4px 8px;
}
.box .title {
  margin: 0 -1px;
}
.box:hover,
.box.active {
  color: red;
}
`
	assert.Equal(t, want, compile(t, src))
}

func TestCompile_Mixins(t *testing.T) {
	src := `.bordered(@width: 2px; @style: solid) {
  border: @width @style black;
}
.rounded { border-radius: 3px; }
#ns {
  .m() { color: blue; }
}
.card {
  .bordered(4px);
  .rounded;
  #ns > .m();
}
`
	want := `.rounded {
  border-radius: 3px;
}
.card {
  border: 4px solid black;
  border-radius: 3px;
  color: blue;
}
`
	assert.Equal(t, want, compile(t, src))
}

func TestCompile_MixinArgumentsAndImportant(t *testing.T) {
	src := `.shadow(@x; @y; @c: #000) { box-shadow: @arguments; }
.a { .shadow(1px; 2px) !important; }
.b { .shadow(@y: 3px; @x: 1px); }
`
	css := compile(t, src)
	assert.Contains(t, css, ".a {\n  box-shadow: 1px 2px #000 !important;\n}")
	assert.Contains(t, css, ".b {\n  box-shadow: 1px 3px #000;\n}")
	assert.NotContains(t, css, ".shadow")
}

func TestCompile_MediaBubbling(t *testing.T) {
	src := `.a {
  color: red;
  @media (min-width:768px) {
    color: blue;
    @media print { color: black; }
  }
}
`
	want := `.a {
  color: red;
}
@media (min-width: 768px) {
  .a {
    color: blue;
  }
}
@media (min-width: 768px) and print {
  .a {
    color: black;
  }
}
`
	assert.Equal(t, want, compile(t, src))
}

func TestCompile_OperationsAndFunctions(t *testing.T) {
	src := `@base: 10px;
.f {
  width: (@base / 2);
  height: @base * 2 + 1;
  font: 12px/1.5 sans-serif;
  color: lighten(#000, 50%);
  background: fade(#000, 50%);
  border-color: mix(#ff0000, #0000ff);
  left: percentage(0.5);
  top: calc(100% - @base);
  content: ~"raw";
}
`
	css := compile(t, src)
	for _, decl := range []string{
		"width: 5px;",
		"height: 21px;",
		"font: 12px/1.5 sans-serif;",
		"color: #808080;",
		"background: rgba(0, 0, 0, 0.5);",
		"border-color: #800080;",
		"left: 50%;",
		"top: calc(100% - 10px);",
		"content: raw;",
	} {
		assert.Contains(t, css, "  "+decl+"\n")
	}
}

func TestCompile_Interpolation(t *testing.T) {
	src := `@name: banner;
@prop: color;
@img: "../img";
.@{name} { @{prop}: red; background: url("@{img}/a.png"); }
`
	want := `.banner {
  color: red;
  background: url("../img/a.png");
}
`
	assert.Equal(t, want, compile(t, src))
}

func TestCompile_Scoping(t *testing.T) {
	src := `.lazy { width: @w; @w: @v; }
@v: 9px;
@w: 1px;
@last: 1;
@last: 2;
.x { z-index: @last; height: @w; }
`
	css := compile(t, src)
	assert.Contains(t, css, ".lazy {\n  width: 9px;\n}")
	assert.Contains(t, css, ".x {\n  z-index: 2;\n  height: 1px;\n}")
}

func TestCompile_AtRules(t *testing.T) {
	src := `.a{color:red;}
@charset "UTF-8";
@font-face { font-family: "X"; src: url(x.woff); }
@keyframes spin { from { opacity: 0; } to { opacity: 1; } }
`
	want := `@charset "UTF-8";
.a {
  color: red;
}
@font-face {
  font-family: "X";
  src: url(x.woff);
}
@keyframes spin {
  from {
    opacity: 0;
  }
  to {
    opacity: 1;
  }
}
`
	assert.Equal(t, want, compile(t, src))
}

func TestCompile_FontFaceUnicodeRange(t *testing.T) {
	src := `@font-face {
  font-family: X;
  src: url(x.woff2) format("woff2");
  unicode-range: U+0000-00FF, U+0131, u+4??;
}
`
	want := `@font-face {
  font-family: X;
  src: url(x.woff2) format("woff2");
  unicode-range: U+0000-00FF, U+0131, u+4??;
}
`
	assert.Equal(t, want, compile(t, src))
}

func TestCompile_ParentSelectorCombinations(t *testing.T) {
	src := ".a, .b { & + & { top: 0; } }\n"
	want := `.a + .a,
.a + .b,
.b + .a,
.b + .b {
  top: 0;
}
`
	assert.Equal(t, want, compile(t, src))
}

func TestCompile_WhenInsideSelectorIsNotAGuard(t *testing.T) {
	css := compile(t, `.when { top: 0; }
a[title="x when (y)"] { top: 1px; }
`)
	assert.Contains(t, css, ".when {\n  top: 0;\n}")
	assert.Contains(t, css, `a[title="x when (y)"] {`)
}

func TestCompile_CommentsAndCombinators(t *testing.T) {
	src := `/* header */
.a>.b+.c { /* inner */ color: red; }
`
	want := `/* header */
.a > .b + .c {
  /* inner */
  color: red;
}
`
	assert.Equal(t, want, compile(t, src))
}

func writeFiles(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
	}
	return dir
}

func TestCompileFile_Imports(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"_vars.less": "@accent: #f00;\n.mixin-a { margin: 0; }\n",
		"ref.less":   ".ref-m { padding: 1px; }\n.unused { top: 0; }\n",
		"raw.css":    ".raw { top: 0; }\n",
		"theme.less": `@import "_vars";
@import "_vars.less";
@import (reference) "ref.less";
@import (inline) "raw.css";
@import "plain.css";
.x { color: @accent; .ref-m; }
`,
	})

	css, err := CompileFile(filepath.Join(dir, "theme.less"), Options{})
	require.NoError(t, err)

	want := `@import "plain.css";
.mixin-a {
  margin: 0;
}
.raw { top: 0; }
.x {
  color: #f00;
  padding: 1px;
}
`
	assert.Equal(t, want, css)
	assert.Equal(t, 1, strings.Count(css, ".mixin-a"))
	assert.NotContains(t, css, ".unused")
}

func TestCompileFile_ImportErrors(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"optional.less": "@import (optional) \"gone\";\n.a { top: 0; }\n",
		"missing.less":  "@import \"gone\";\n",
	})

	css, err := CompileFile(filepath.Join(dir, "optional.less"), Options{})
	require.NoError(t, err)
	assert.Contains(t, css, ".a {")

	_, err = CompileFile(filepath.Join(dir, "missing.less"), Options{})
	require.Error(t, err)
	var lessErr *Error
	require.True(t, errors.As(err, &lessErr))
	assert.Equal(t, FileError, lessErr.Kind)
	assert.Contains(t, lessErr.Message, "'gone' wasn't found")
	assert.Equal(t, 1, lessErr.Line)

	_, err = CompileFile(filepath.Join(dir, "absent.less"), Options{})
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestCompile_Errors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		kind ErrorKind
		msg  string
	}{
		{"undefined variable", ".a { color: @nope; }", NameError, "variable @nope is undefined"},
		{"recursive variable", "@a: @a;\n.x { top: @a; }", NameError, "Recursive variable definition for @a"},
		{"undefined mixin", ".a { .nope(); }", NameError, ".nope is undefined"},
		{"no matching mixin", ".m(@a) { top: @a; }\n.b { .m(1; 2); }", ArgumentError, "No matching definition was found for `.m(1; 2)`"},
		{"division by zero", ".a { top: (1px / 0); }", ArgumentError, "division by zero"},
		{"missing brace", ".a { color: red;", ParseError, "missing closing `}`"},
		{"stray brace", "}", ParseError, "Unrecognised input"},
		{"guard", ".m(@a) when (@a > 1) { top: 0; }", SyntaxError, "guards"},
		{"css guard", ".a when (@mode = dark) { color: red; }\n@mode: dark;", SyntaxError, "guards"},
		{"nested css guard", ".a { & when (@mode = dark) { color: red; } }\n@mode: dark;", SyntaxError, "guards"},
		{"extend", ".a:extend(.b) { top: 0; }", SyntaxError, ":extend"},
		{"detached ruleset", "@dr: { color: red; }", SyntaxError, "detached rulesets"},
		{"plugin", "@plugin \"x\";", SyntaxError, "@plugin"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Compile(tt.src, Options{Filename: "theme.less"})
			require.Error(t, err)

			var lessErr *Error
			require.True(t, errors.As(err, &lessErr), "got %T: %v", err, err)
			assert.Equal(t, tt.kind, lessErr.Kind)
			assert.Contains(t, lessErr.Message, tt.msg)
			assert.Equal(t, "theme.less", lessErr.Filename)
		})
	}
}

func TestError_Format(t *testing.T) {
	_, err := Compile(".a {\n  color: @nope;\n}\n", Options{Filename: "theme.less"})
	require.Error(t, err)
	assert.Equal(t,
		"NameError: variable @nope is undefined in theme.less on line 2, column 3:\n2   color: @nope;",
		err.Error())
}
