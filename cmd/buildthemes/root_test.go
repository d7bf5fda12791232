package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runRoot(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})
	err := rootCmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestRootCmd_BuildsThemes(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"greensteam", "blacksteam"} {
		src := filepath.Join(dir, "styles", name)
		require.NoError(t, os.MkdirAll(src, 0755))
		require.NoError(t, os.WriteFile(filepath.Join(src, name+".less"), []byte(".a { top: 0; }\n"), 0644))
	}
	chdir(t, dir)

	stdout, _, err := runRoot(t)
	require.NoError(t, err)

	assert.Equal(t,
		"Built greensteam to dist/greensteam.css\nBuilt blacksteam to dist/blacksteam.css\n",
		stdout)
	assert.FileExists(t, filepath.Join(dir, "dist", "greensteam.css"))
	assert.FileExists(t, filepath.Join(dir, "dist", "blacksteam.css"))
}

func TestRootCmd_MissingSource(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)

	stdout, stderr, err := runRoot(t)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "build greensteam")
	assert.Contains(t, stderr, "Error: build greensteam")
	assert.Empty(t, stdout)
	assert.NoDirExists(t, filepath.Join(dir, "dist"))
}

func TestRootCmd_RejectsArguments(t *testing.T) {
	_, _, err := runRoot(t, "extra")
	assert.Error(t, err)
}

// chdir changes the working directory for the duration of the test,
// equivalent to testing.T.Chdir (Go 1.24+) for older toolchains.
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(old) })
}
