package explorer

import (
	"path/filepath"
	"strconv"
	"strings"
)

// ClipOp says what a paste does with the clipboard path.
type ClipOp uint8

const (
	ClipCopy ClipOp = iota
	ClipCut
)

// ClipboardEntry is the single path held by the explorer clipboard.
type ClipboardEntry struct {
	Op    ClipOp
	Path  string
	IsDir bool
}

// Paste describes the filesystem operation a paste requests.
type Paste struct {
	Op    ClipOp
	From  string
	To    string
	IsDir bool
}

// Clipboard returns the held entry.
func (m *Model) Clipboard() (ClipboardEntry, bool) {
	if m.clipboard == nil {
		return ClipboardEntry{}, false
	}
	return *m.clipboard, true
}

// Cut marks id to be moved by the next paste.
func (m *Model) Cut(id NodeID) bool { return m.hold(id, ClipCut) }

// Copy marks id to be copied by the next paste.
func (m *Model) Copy(id NodeID) bool { return m.hold(id, ClipCopy) }

func (m *Model) hold(id NodeID, op ClipOp) bool {
	n, ok := m.nodes[id]
	if !ok || id == m.rootID {
		return false
	}
	m.clipboard = &ClipboardEntry{Op: op, Path: m.Path(id), IsDir: n.Kind == Dir}
	return true
}

// ClearClipboard drops the held entry.
func (m *Model) ClearClipboard() { m.clipboard = nil }

// Paste computes the operation for pasting into target, a directory or the
// directory holding a file. A cut is consumed. Copies into the source
// directory get a " copy" suffix; exists reports names already taken.
func (m *Model) Paste(target NodeID, exists func(path string) bool) (Paste, bool) {
	if m.clipboard == nil {
		return Paste{}, false
	}
	n, ok := m.nodes[target]
	if !ok {
		return Paste{}, false
	}
	dir := m.Path(target)
	if n.Kind != Dir {
		dir = filepath.Dir(dir)
	}
	entry := *m.clipboard
	if entry.IsDir && (dir == entry.Path || strings.HasPrefix(dir, entry.Path+string(filepath.Separator))) {
		return Paste{}, false
	}
	to := filepath.Join(dir, filepath.Base(entry.Path))
	if entry.Op == ClipCut {
		if to == entry.Path {
			return Paste{}, false
		}
		m.clipboard = nil
		return Paste{Op: ClipCut, From: entry.Path, To: to, IsDir: entry.IsDir}, true
	}
	if exists == nil {
		exists = func(p string) bool {
			_, ok := m.byPath[p]
			return ok
		}
	}
	to = uniqueName(to, exists)
	return Paste{Op: ClipCopy, From: entry.Path, To: to, IsDir: entry.IsDir}, true
}

// uniqueName appends " copy", " copy 2", ... before the extension until the
// name is free.
func uniqueName(path string, exists func(string) bool) string {
	if !exists(path) {
		return path
	}
	dir, base := filepath.Split(path)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	if stem == "" {
		stem, ext = base, ""
	}
	for i := 1; ; i++ {
		suffix := " copy"
		if i > 1 {
			suffix += " " + strconv.Itoa(i)
		}
		cand := filepath.Join(dir, stem+suffix+ext)
		if !exists(cand) {
			return cand
		}
	}
}
