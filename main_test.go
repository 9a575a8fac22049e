package main

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odvcencio/zcode/settings"
	"github.com/odvcencio/zcode/workbench"
)

type captured struct {
	stdout, stderr bytes.Buffer
	started        []workbench.Options
	err            error
}

func (c *captured) options() options {
	return options{
		stdin:  strings.NewReader(""),
		stdout: &c.stdout,
		stderr: &c.stderr,
		start: func(o workbench.Options) error {
			c.started = append(c.started, o)
			return c.err
		},
	}
}

func isolate(t *testing.T) {
	t.Helper()
	t.Setenv(settings.EnvDisableSettings, "1")
	t.Setenv(settings.EnvDisableLSP, "1")
	t.Setenv(settings.EnvLogFile, "")
}

func TestRunExitCodes(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	tests := []struct {
		name string
		args []string
		want int
	}{
		{"help", []string{"--help"}, exitOK},
		{"short version", []string{"-V"}, exitOK},
		{"long version", []string{"--version"}, exitOK},
		{"directory", []string{dir}, exitOK},
		{"missing path", []string{filepath.Join(dir, "missing")}, exitError},
		{"too many paths", []string{dir, dir}, exitUsage},
		{"unknown flag", []string{"--bogus"}, exitUsage},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var c captured
			if got := run(tt.args, c.options()); got != tt.want {
				t.Errorf("run(%q) = %d, want %d (stderr %q)", tt.args, got, tt.want, c.stderr.String())
			}
		})
	}
}

func TestRunPrintsVersion(t *testing.T) {
	isolate(t)
	var c captured
	require.Equal(t, exitOK, run([]string{"-V"}, c.options()))
	assert.Equal(t, "zcode "+version+"\n", c.stdout.String())
	assert.Empty(t, c.started)
}

func TestRunOpensFileInItsDirectory(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	file := filepath.Join(dir, "main.go")
	require.NoError(t, os.WriteFile(file, []byte("package main\n"), 0o644))

	var c captured
	require.Equal(t, exitOK, run([]string{file}, c.options()))
	require.Len(t, c.started, 1)
	o := c.started[0]
	assert.Equal(t, dir, o.Root)
	assert.Equal(t, []string{file}, o.Open)
	assert.True(t, o.DisableLSP)
	assert.Nil(t, o.Settings, "settings disabled by the environment")
	assert.Empty(t, o.DataDir)
}

func TestRunOpensFileUnderCurrentDirectory(t *testing.T) {
	isolate(t)
	t.Chdir(t.TempDir())
	cwd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.MkdirAll(filepath.Join(cwd, "src"), 0o755))
	file := filepath.Join(cwd, "src", "main.go")
	require.NoError(t, os.WriteFile(file, []byte("package main\n"), 0o644))

	var c captured
	require.Equal(t, exitOK, run([]string{filepath.Join("src", "main.go")}, c.options()))
	require.Len(t, c.started, 1)
	assert.Equal(t, cwd, c.started[0].Root, "the current directory is an ancestor of the file")
	assert.Equal(t, []string{file}, c.started[0].Open)
}

func TestFileRootFallsBackToParent(t *testing.T) {
	t.Chdir(t.TempDir())
	other := t.TempDir()
	file := filepath.Join(other, "lib", "a.go")
	assert.Equal(t, filepath.Join(other, "lib"), fileRoot(file))
}

func TestRunReportsEditorFailure(t *testing.T) {
	isolate(t)
	c := captured{err: errors.New("no terminal")}
	assert.Equal(t, exitError, run([]string{t.TempDir()}, c.options()))
	assert.Contains(t, c.stderr.String(), "no terminal")
}

// TestEditorStartsAndQuits drives the real editor over pipes. It needs a
// terminal-capable environment and only runs when ZCODE_RUN_TUI_E2E is set.
func TestEditorStartsAndQuits(t *testing.T) {
	if !settings.EnvEnabled(settings.EnvRunTUIE2E) {
		t.Skipf("set %s=1 to run", settings.EnvRunTUIE2E)
	}
	isolate(t)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("hello\n"), 0o644))

	in, keys := io.Pipe()
	var out bytes.Buffer
	done := make(chan int, 1)
	go func() {
		done <- run([]string{dir}, options{stdin: in, stdout: &out, stderr: io.Discard, start: startWorkbench})
	}()
	time.Sleep(500 * time.Millisecond)
	_, err := keys.Write([]byte{0x11}) // ctrl+q
	require.NoError(t, err)

	select {
	case code := <-done:
		assert.Equal(t, exitOK, code)
	case <-time.After(10 * time.Second):
		t.Fatal("editor did not quit")
	}
	assert.Contains(t, out.String(), "EXPLORER")
}
