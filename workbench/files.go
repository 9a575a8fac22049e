package workbench

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"unicode/utf8"

	"github.com/odvcencio/zcode/editor"
	"github.com/odvcencio/zcode/explorer"
	"github.com/odvcencio/zcode/store"
)

// binarySniff is how much of a file is checked for NUL bytes.
const binarySniff = 8000

var (
	errBinary = errors.New("binary file")
	errExists = errors.New("already exists")
)

func loadDir(path string) store.Action {
	entries, err := explorer.ReadDir(path)
	if err != nil {
		return store.DirLoadError{Path: path, Err: err.Error()}
	}
	return store.DirLoaded{Path: path, Entries: entries}
}

// readText reads a file that should be shown as text.
func readText(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	if bytes.IndexByte(data[:min(len(data), binarySniff)], 0) >= 0 || !utf8.Valid(data) {
		return "", errBinary
	}
	return string(data), nil
}

// loadFile reads path and recovers its undo history when a log matches
// the content on disk.
func (w *Workbench) loadFile(path string) store.Action {
	text, err := readText(path)
	if err != nil {
		return store.FileLoadError{Path: path, Err: err.Error()}
	}
	a := store.FileLoaded{Path: path, Content: text}
	logPath := w.historyPath(path)
	if logPath == "" {
		return a
	}
	lines, err := readLines(logPath)
	if err != nil || len(lines) == 0 {
		return a
	}
	h, head, err := editor.RecoverHistory(text, lines)
	switch {
	case errors.Is(err, editor.ErrHistoryMismatch):
		w.log.Debug("history log is for other content", "path", path)
	case err != nil:
		w.log.Warn("history log unreadable", "path", path, "error", err)
	default:
		a.History, a.Head = h, head
	}
	return a
}

// atomicWrite replaces path with data through a temporary file in the same
// directory, keeping the mode of an existing file.
func atomicWrite(path string, data []byte) error {
	mode := fs.FileMode(0o644)
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode().Perm()
	}
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Chmod(mode); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

func writeFile(e store.WriteFile) store.Action {
	if err := atomicWrite(e.Path, []byte(e.Content)); err != nil {
		return store.FsOpError{Op: "save", Path: e.Path, Err: err.Error()}
	}
	return store.FileSaved{Path: e.Path, Version: e.Version}
}

func createFile(path string) store.Action {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return store.FsOpError{Op: "create", Path: path, Err: err.Error()}
	}
	if err := f.Close(); err != nil {
		return store.FsOpError{Op: "create", Path: path, Err: err.Error()}
	}
	return store.PathCreated{Path: path}
}

func createDir(path string) store.Action {
	if err := os.Mkdir(path, 0o755); err != nil {
		return store.FsOpError{Op: "create folder", Path: path, Err: err.Error()}
	}
	return store.PathCreated{Path: path, IsDir: true}
}

func deletePath(e store.DeletePath) store.Action {
	var err error
	if e.IsDir {
		err = os.RemoveAll(e.Path)
	} else {
		err = os.Remove(e.Path)
	}
	if err != nil {
		return store.FsOpError{Op: "delete", Path: e.Path, Err: err.Error()}
	}
	return store.PathDeleted{Path: e.Path}
}

func renamePath(e store.RenamePath) store.Action {
	if !e.Overwrite {
		if _, err := os.Lstat(e.To); err == nil {
			return store.FsOpError{Op: "rename", Path: e.To, Err: errExists.Error()}
		}
	}
	if err := os.MkdirAll(filepath.Dir(e.To), 0o755); err != nil {
		return store.FsOpError{Op: "rename", Path: e.To, Err: err.Error()}
	}
	if err := os.Rename(e.From, e.To); err != nil {
		return store.FsOpError{Op: "rename", Path: e.From, Err: err.Error()}
	}
	return store.PathRenamed{From: e.From, To: e.To, IsDir: e.IsDir}
}

func copyPath(e store.CopyPath) store.Action {
	if _, err := os.Lstat(e.To); err == nil {
		return store.FsOpError{Op: "copy", Path: e.To, Err: errExists.Error()}
	}
	var err error
	if e.IsDir {
		err = copyTree(e.From, e.To)
	} else {
		err = copyFile(e.From, e.To)
	}
	if err != nil {
		return store.FsOpError{Op: "copy", Path: e.From, Err: err.Error()}
	}
	return store.PathCreated{Path: e.To, IsDir: e.IsDir}
}

func copyFile(from, to string) error {
	in, err := os.Open(from)
	if err != nil {
		return err
	}
	defer in.Close()
	info, err := in.Stat()
	if err != nil {
		return err
	}
	out, err := os.OpenFile(to, os.O_CREATE|os.O_EXCL|os.O_WRONLY, info.Mode().Perm())
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

func copyTree(from, to string) error {
	if rel, err := filepath.Rel(from, to); err == nil && !startsWithDotDot(rel) {
		return fmt.Errorf("cannot copy %s into itself", from)
	}
	return filepath.WalkDir(from, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(from, path)
		if err != nil {
			return err
		}
		dst := filepath.Join(to, rel)
		switch {
		case d.IsDir():
			info, err := d.Info()
			if err != nil {
				return err
			}
			return os.Mkdir(dst, info.Mode().Perm()|0o700)
		case d.Type()&fs.ModeSymlink != 0:
			target, err := os.Readlink(path)
			if err != nil {
				return err
			}
			return os.Symlink(target, dst)
		}
		return copyFile(path, dst)
	})
}

func startsWithDotDot(rel string) bool {
	return rel == ".." || len(rel) > 2 && rel[:3] == ".."+string(filepath.Separator)
}

// applyEditToFile applies language server edits to a file that has no
// open tab.
func applyEditToFile(e store.LspApplyEdit, now int64) store.Action {
	text, err := readText(e.Path)
	if err != nil {
		return store.FsOpError{Op: "apply edit", Path: e.Path, Err: err.Error()}
	}
	buf := editor.NewTextBuffer(text)
	if res := buf.ApplyEdits(e.Encoding.TextEdits(buf.Rope(), e.Edits), now); !res.Changed {
		return nil
	}
	if err := atomicWrite(e.Path, []byte(buf.Text())); err != nil {
		return store.FsOpError{Op: "apply edit", Path: e.Path, Err: err.Error()}
	}
	return store.LogLine{Line: "applied edits to " + e.Path}
}
