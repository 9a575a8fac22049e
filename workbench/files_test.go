package workbench

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odvcencio/zcode/lsp"
	"github.com/odvcencio/zcode/store"
)

func writeTestFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func readTestFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestAtomicWriteKeepsMode(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.sh")
	require.NoError(t, os.WriteFile(path, []byte("old"), 0o755))
	require.NoError(t, atomicWrite(path, []byte("new")))
	assert.Equal(t, "new", readTestFile(t, path))
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o755), info.Mode().Perm())

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary file left behind")
}

func TestWriteFileReportsSaved(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.txt")
	got := writeFile(store.WriteFile{Path: path, Content: "hi", Version: 4})
	assert.Equal(t, store.FileSaved{Path: path, Version: 4}, got)

	missing := filepath.Join(t.TempDir(), "no", "such", "a.txt")
	_, ok := writeFile(store.WriteFile{Path: missing}).(store.FsOpError)
	assert.True(t, ok)
}

func TestReadTextRejectsBinary(t *testing.T) {
	dir := t.TempDir()
	bin := filepath.Join(dir, "a.bin")
	require.NoError(t, os.WriteFile(bin, []byte{'a', 0, 'b'}, 0o644))
	_, err := readText(bin)
	assert.ErrorIs(t, err, errBinary)

	bad := filepath.Join(dir, "latin1.txt")
	require.NoError(t, os.WriteFile(bad, []byte{0xff, 0xfe, 'x'}, 0o644))
	_, err = readText(bad)
	assert.ErrorIs(t, err, errBinary)

	ok := filepath.Join(dir, "ok.txt")
	writeTestFile(t, ok, "h\u00e9llo")
	text, err := readText(ok)
	require.NoError(t, err)
	assert.Equal(t, "h\u00e9llo", text)
}

func TestCreateFileIsExclusive(t *testing.T) {
	path := filepath.Join(t.TempDir(), "new.go")
	assert.Equal(t, store.PathCreated{Path: path}, createFile(path))
	_, ok := createFile(path).(store.FsOpError)
	assert.True(t, ok)

	dir := filepath.Join(filepath.Dir(path), "pkg")
	assert.Equal(t, store.PathCreated{Path: dir, IsDir: true}, createDir(dir))
}

func TestRenamePathRefusesOverwrite(t *testing.T) {
	dir := t.TempDir()
	from := filepath.Join(dir, "a.txt")
	to := filepath.Join(dir, "b.txt")
	writeTestFile(t, from, "a")
	writeTestFile(t, to, "b")

	got, ok := renamePath(store.RenamePath{From: from, To: to}).(store.FsOpError)
	require.True(t, ok)
	assert.Equal(t, errExists.Error(), got.Err)
	assert.Equal(t, "b", readTestFile(t, to))

	assert.Equal(t, store.PathRenamed{From: from, To: to}, renamePath(store.RenamePath{From: from, To: to, Overwrite: true}))
	assert.Equal(t, "a", readTestFile(t, to))
}

func TestRenamePathCreatesParents(t *testing.T) {
	dir := t.TempDir()
	from := filepath.Join(dir, "a.txt")
	to := filepath.Join(dir, "x", "y", "a.txt")
	writeTestFile(t, from, "a")
	_, ok := renamePath(store.RenamePath{From: from, To: to}).(store.PathRenamed)
	require.True(t, ok)
	assert.Equal(t, "a", readTestFile(t, to))
}

func TestCopyPathTree(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src")
	writeTestFile(t, filepath.Join(src, "a.go"), "package a")
	writeTestFile(t, filepath.Join(src, "inner", "b.go"), "package inner")

	dst := filepath.Join(dir, "copy")
	assert.Equal(t, store.PathCreated{Path: dst, IsDir: true}, copyPath(store.CopyPath{From: src, To: dst, IsDir: true}))
	assert.Equal(t, "package a", readTestFile(t, filepath.Join(dst, "a.go")))
	assert.Equal(t, "package inner", readTestFile(t, filepath.Join(dst, "inner", "b.go")))

	_, ok := copyPath(store.CopyPath{From: src, To: dst, IsDir: true}).(store.FsOpError)
	assert.True(t, ok, "existing target")

	_, ok = copyPath(store.CopyPath{From: src, To: filepath.Join(src, "inner", "again"), IsDir: true}).(store.FsOpError)
	assert.True(t, ok, "copy into itself")
}

func TestDeletePath(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "sub")
	writeTestFile(t, filepath.Join(sub, "a.txt"), "a")
	assert.Equal(t, store.PathDeleted{Path: sub}, deletePath(store.DeletePath{Path: sub, IsDir: true}))
	_, err := os.Stat(sub)
	assert.True(t, os.IsNotExist(err))
}

func TestApplyEditToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "main.go")
	writeTestFile(t, path, "package main\n\nfunc old() {}\n")
	e := store.LspApplyEdit{
		Path:     path,
		Encoding: lsp.UTF16,
		Edits: []lsp.TextEdit{{
			Range:   lsp.Range{Start: lsp.Position{Line: 2, Character: 5}, End: lsp.Position{Line: 2, Character: 8}},
			NewText: "renamed",
		}},
	}
	_, ok := applyEditToFile(e, 1).(store.LogLine)
	require.True(t, ok)
	assert.Equal(t, "package main\n\nfunc renamed() {}\n", readTestFile(t, path))
}

func TestHistoryLinesAppendAndReplace(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history", "x.log")
	lines, err := readLines(path)
	require.NoError(t, err)
	assert.Nil(t, lines)

	require.NoError(t, appendLines(path, []string{"a", "b"}))
	require.NoError(t, appendLines(path, []string{"c"}))
	lines, err = readLines(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, lines)

	require.NoError(t, writeLines(path, []string{"z"}))
	lines, err = readLines(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"z"}, lines)
}

func TestSerialQueueRunsInOrder(t *testing.T) {
	q := newSerialQueue(slog.New(slog.NewTextHandler(io.Discard, nil)))
	var mu sync.Mutex
	var got []int
	for i := 0; i < 100; i++ {
		q.Do(func() {
			mu.Lock()
			got = append(got, i)
			mu.Unlock()
		})
	}
	q.Close()
	require.Len(t, got, 100)
	for i, v := range got {
		if v != i {
			t.Fatalf("job %d ran as %d", v, i)
		}
	}

	q.Do(func() { t.Error("job ran after close") })
	q.Close()
}
