package store

import (
	"strings"

	"github.com/sahilm/fuzzy"

	"github.com/odvcencio/zcode/commands"
	"github.com/odvcencio/zcode/editor"
	"github.com/odvcencio/zcode/keymap"
)

// InputPurpose says what an input dialog's text is used for.
type InputPurpose int

const (
	InputNewFile InputPurpose = iota
	InputNewFolder
	InputRename
	InputGotoLine
	InputOpenFile
	InputLspRename
	InputWorkspaceSymbols
	InputSaveAs
)

// InputDialog is a one-line prompt.
type InputDialog struct {
	Purpose InputPurpose
	Title   string
	Field   editor.Field
	// Target is the path the dialog acts on: the parent directory for
	// creation, the renamed path for renames.
	Target string
	IsDir  bool
	// Tab is the tab a save as dialog names.
	Tab TabID
	Err string
}

// ConfirmPurpose says what accepting a confirm dialog does.
type ConfirmPurpose int

const (
	ConfirmCloseTab ConfirmPurpose = iota
	ConfirmDelete
	ConfirmQuit
	ConfirmOverwrite
	ConfirmRevert
)

// ConfirmDialog is a yes/no question.
type ConfirmDialog struct {
	Purpose ConfirmPurpose
	Message string
	Pane    int
	Tab     int
	Path    string
	To      string
	IsDir   bool
}

// MenuItem is one context menu entry.
type MenuItem struct {
	Label   string
	Command commands.Command
}

// ContextMenu is a popup list of commands anchored at a cell.
type ContextMenu struct {
	X, Y     int
	Path     string
	Items    []MenuItem
	Selected int
}

// PaletteEntry is one runnable command in the palette, or a file when
// Path is set.
type PaletteEntry struct {
	Command  commands.Command
	Label    string
	Category string
	Keys     string
	Path     string
}

// Palette is the command palette: a query and the entries matching it.
// In file mode it lists the workspace for quick open.
type Palette struct {
	Query    editor.Field
	Entries  []PaletteEntry
	Matches  []PaletteEntry
	Selected int
	Scroll   int

	Files     bool
	Loading   bool
	Truncated bool
}

type paletteSource []PaletteEntry

func (p paletteSource) String(i int) string {
	e := p[i]
	if e.Category == "" {
		return e.Label
	}
	return e.Category + ": " + e.Label
}

func (p paletteSource) Len() int { return len(p) }

// Filter recomputes Matches for the query. Entries keep their order when
// the query is empty; otherwise they are sorted by fuzzy score.
func (p *Palette) Filter() {
	q := strings.TrimSpace(p.Query.Text)
	if q == "" {
		p.Matches = append(p.Matches[:0], p.Entries...)
	} else {
		found := fuzzy.FindFrom(q, paletteSource(p.Entries))
		p.Matches = p.Matches[:0]
		for _, m := range found {
			p.Matches = append(p.Matches, p.Entries[m.Index])
		}
	}
	p.Selected = 0
	p.Scroll = 0
}

// Move changes the selection by delta, clamped.
func (p *Palette) Move(delta int) {
	if len(p.Matches) == 0 {
		p.Selected = 0
		return
	}
	p.Selected = max(0, min(p.Selected+delta, len(p.Matches)-1))
}

// Current returns the selected entry.
func (p *Palette) Current() (PaletteEntry, bool) {
	if p.Selected < 0 || p.Selected >= len(p.Matches) {
		return PaletteEntry{}, false
	}
	return p.Matches[p.Selected], true
}

// paletteEntries lists built-in, custom and plugin commands with the keys
// bound to them.
func (s *AppState) paletteEntries() []PaletteEntry {
	keys := func(c commands.Command) string {
		ks := s.Keymap.KeysFor(keymap.Editor, c)
		return strings.Join(ks, ", ")
	}
	var out []PaletteEntry
	for _, info := range commands.AllCommands() {
		out = append(out, PaletteEntry{Command: info.Command, Label: info.Label, Category: info.Category, Keys: keys(info.Command)})
	}
	for _, c := range s.CustomCommands {
		out = append(out, PaletteEntry{Command: c, Label: c.CustomName(), Category: "Custom", Keys: keys(c)})
	}
	for _, id := range s.PluginIDs() {
		p := s.Plugins[id]
		for _, c := range p.Commands {
			cmd := commands.Plugin(id, c.ID)
			label := c.Title
			if label == "" {
				label = c.ID
			}
			out = append(out, PaletteEntry{Command: cmd, Label: label, Category: id, Keys: keys(cmd)})
		}
	}
	return out
}

func newPalette(entries []PaletteEntry) *Palette {
	p := &Palette{Entries: entries}
	p.Filter()
	return p
}

// quickOpen shows the file palette and asks for the file list.
func (s *Store) quickOpen() bool {
	s.st.UI.Palette = &Palette{Files: true, Loading: true}
	s.emit(ListFiles{Root: s.st.Root})
	return true
}

// filesListed fills an open quick open palette, keeping the typed query.
func (s *Store) filesListed(a FilesListed) bool {
	p := s.st.UI.Palette
	if p == nil || !p.Files {
		return false
	}
	p.Loading = false
	if a.Err != "" {
		s.message("list files: %s", a.Err)
	}
	p.Truncated = a.Truncated
	p.Entries = make([]PaletteEntry, 0, len(a.Files))
	for _, f := range a.Files {
		p.Entries = append(p.Entries, PaletteEntry{Label: f.Rel, Path: f.Abs})
	}
	p.Filter()
	return true
}

// explorerMenu lists the context menu of an explorer node.
func explorerMenu(isDir bool) []MenuItem {
	items := []MenuItem{
		{"New File", commands.ExplorerNewFile},
		{"New Folder", commands.ExplorerNewFolder},
		{"Rename", commands.ExplorerRename},
		{"Delete", commands.ExplorerDelete},
		{"Cut", commands.ExplorerCut},
		{"Copy", commands.ExplorerCopy},
		{"Paste", commands.ExplorerPaste},
	}
	if !isDir {
		items = append([]MenuItem{{"Open", commands.ExplorerActivate}}, items...)
	}
	return items
}
