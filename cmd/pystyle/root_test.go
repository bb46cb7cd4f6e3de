package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Wladim1r/pystyle/internal/model"
)

// execute runs the root command with args and returns stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func writeFiles(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	}
	return dir
}

// noConfig points --config at a file that does not exist.
func noConfig(t *testing.T) string {
	return "--config=" + filepath.Join(t.TempDir(), "none.yaml")
}

// ---------------------------------------------------------------------------
// Text output
// ---------------------------------------------------------------------------

func TestRoot_TextDirectory(t *testing.T) {
	t.Parallel()

	dir := writeFiles(t, map[string]string{
		"b.py":     "class  foo:\n    pass\n",
		"a.py":     "x = 1;\n",
		"skip.txt": "x = 1;\n",
	})

	out, err := execute(t, noConfig(t), "--color=never", dir)
	require.NoError(t, err)
	assert.Equal(t,
		filepath.Join(dir, "a.py")+": Line 1: S003 Unnecessary semicolon\n"+
			filepath.Join(dir, "b.py")+": Line 1: S007 Too many spaces after construction_name\n"+
			filepath.Join(dir, "b.py")+": Line 1: S008 Class name class_name should be written in CamelCase\n",
		out)
}

func TestRoot_SingleFileNotATerminal(t *testing.T) {
	t.Parallel()

	dir := writeFiles(t, map[string]string{"m.py": "# TODO: later\n"})
	path := filepath.Join(dir, "m.py")

	out, err := execute(t, noConfig(t), path)
	require.NoError(t, err)
	assert.Equal(t, path+": Line 1: S005 TODO found\n", out, "auto color stays off for a buffer")
}

func TestRoot_SilentLocations(t *testing.T) {
	t.Parallel()

	dir := writeFiles(t, map[string]string{"run.sh": "echo hi;\n"})

	tests := []struct {
		name     string
		location string
	}{
		{"missing path", filepath.Join(dir, "missing.py")},
		{"wrong extension", filepath.Join(dir, "run.sh")},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			out, err := execute(t, noConfig(t), tc.location)
			require.NoError(t, err)
			assert.Empty(t, out)
		})
	}
}

func TestRoot_SyntaxErrorFails(t *testing.T) {
	t.Parallel()

	dir := writeFiles(t, map[string]string{
		"a.py": "x = 1;\n",
		"b.py": "def f(:\n",
	})

	out, err := execute(t, noConfig(t), "--color=never", dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "b.py")
	assert.Equal(t, filepath.Join(dir, "a.py")+": Line 1: S003 Unnecessary semicolon\n", out,
		"diagnostics of earlier files are kept")
}

func TestRoot_RequiresOneArgument(t *testing.T) {
	t.Parallel()

	_, err := execute(t)
	assert.Error(t, err)

	_, err = execute(t, "a", "b")
	assert.Error(t, err)
}

// ---------------------------------------------------------------------------
// Formats and configuration
// ---------------------------------------------------------------------------

func TestRoot_JSONFormat(t *testing.T) {
	t.Parallel()

	dir := writeFiles(t, map[string]string{"a.py": "def f(A=[]):\n    pass\n"})

	out, err := execute(t, noConfig(t), "--format=json", dir)
	require.NoError(t, err)

	var got []model.Diagnostic
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	require.Len(t, got, 2)
	assert.Equal(t, "S010", string(got[0].Code))
	assert.Equal(t, "S012", string(got[1].Code))
	assert.Equal(t, filepath.Join(dir, "a.py"), got[0].File)
}

func TestRoot_ConfigFile(t *testing.T) {
	t.Parallel()

	dir := writeFiles(t, map[string]string{
		"src/a.py":    "x = 1;\n",
		"src/b.pyi":   "y = 2;\n",
		"pystyle.yml": "extensions: [\".pyi\"]\nformat: sarif\ncolor: never\n",
	})
	cfg := "--config=" + filepath.Join(dir, "pystyle.yml")
	src := filepath.Join(dir, "src")

	out, err := execute(t, cfg, src)
	require.NoError(t, err)
	assert.Contains(t, out, `"version": "2.1.0"`)
	assert.Contains(t, out, `"ruleId": "S003"`)
	assert.NotContains(t, out, "a.py")

	out, err = execute(t, cfg, "--format=text", src)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(src, "b.pyi")+": Line 1: S003 Unnecessary semicolon\n", out,
		"flags override the config file")
}

func TestRoot_InvalidFlags(t *testing.T) {
	t.Parallel()

	dir := writeFiles(t, map[string]string{"a.py": "x = 1\n"})

	_, err := execute(t, noConfig(t), "--format=xml", dir)
	assert.Error(t, err)

	_, err = execute(t, noConfig(t), "--color=rainbow", dir)
	assert.Error(t, err)
}

func TestUseColor(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	tests := []struct {
		mode string
		want bool
	}{
		{"always", true},
		{"never", false},
		{"auto", false},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.mode, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, useColor(tc.mode, &buf))
		})
	}
}
