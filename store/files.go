package store

import (
	"path/filepath"
	"strings"

	"github.com/odvcencio/zcode/commands"
	"github.com/odvcencio/zcode/completion"
	"github.com/odvcencio/zcode/editor"
	"github.com/odvcencio/zcode/explorer"
	"github.com/odvcencio/zcode/lsp"
	"github.com/odvcencio/zcode/syntax"
)

// newTab wraps buf in a tab for path. Version starts at 1 so that no
// cached language server result matches a fresh tab.
func (s *Store) newTab(path string, buf *editor.TextBuffer) *Tab {
	s.st.nextTab++
	t := &Tab{
		ID:      s.st.nextTab,
		Path:    path,
		Buffer:  buf,
		Version: 1,
		Folds:   editor.NewFoldState(),
	}
	s.setLanguage(t)
	t.Indent = s.detectIndent(buf.Text())
	return t
}

// setLanguage derives the language, completion strategy and syntax
// document of t from its path and contents.
func (s *Store) setLanguage(t *Tab) {
	text := t.Buffer.Text()
	lang := syntax.Detect(t.Path, text)
	t.Lang = syntax.PlainText
	if lang != nil {
		t.Lang = lang.ID
	}
	t.Strategy = completion.For(t.Lang)
	t.Doc = syntax.NewDocument(lang, t.Path, text)
	if err := t.Doc.Err(); err != nil {
		s.logf("syntax %s: %s", s.rel(t.Path), err)
	}
	t.Folds.SetRegions(s.syntaxFolds(t))
	t.FoldVersion = 0
	t.Semantic, t.SemanticVersion = nil, 0
	t.Hints, t.HintsVersion = nil, 0
}

// detectIndent follows the file when it has indented lines and the
// settings otherwise.
func (s *Store) detectIndent(text string) string {
	for _, line := range strings.Split(text, "\n") {
		if strings.HasPrefix(line, "\t") || strings.HasPrefix(line, " ") {
			return editor.DetectIndentStyle(text)
		}
	}
	if s.st.Config.InsertSpaces {
		return strings.Repeat(" ", max(s.st.Config.TabSize, 1))
	}
	return "\t"
}

// openPath focuses the tab showing a path or asks for the file.
func (s *Store) openPath(a OpenPath) bool {
	path := s.abs(a.Path)
	if path == "" {
		return false
	}
	if t := s.st.Layout.FindPath(path); t != nil {
		s.focusTab(t)
		if a.Line >= 0 {
			s.jumpTo(t, a.Line, a.Col, lsp.UTF32)
		}
		return true
	}
	if a.Line >= 0 {
		s.jumps[path] = jump{line: a.Line, col: a.Col, enc: lsp.UTF32}
	}
	s.emit(LoadFile{Path: path})
	return false
}

// openLocation opens loc and places the cursor on it.
func (s *Store) openLocation(loc Location) bool {
	if t := s.st.Layout.FindPath(loc.Path); t != nil {
		s.focusTab(t)
		s.jumpTo(t, loc.Line, loc.Col, loc.Enc)
		return true
	}
	s.jumps[loc.Path] = jump{line: loc.Line, col: loc.Col, enc: loc.Enc}
	s.emit(LoadFile{Path: loc.Path})
	return true
}

// fileLoaded opens a tab for a loaded file, or focuses the one already
// showing it. A revert replaces the contents of the open tab.
func (s *Store) fileLoaded(a FileLoaded) bool {
	j, hasJump := s.jumps[a.Path]
	delete(s.jumps, a.Path)
	if s.reverting[a.Path] {
		delete(s.reverting, a.Path)
		if t := s.st.Layout.FindPath(a.Path); t != nil {
			s.edited(t, t.Buffer.SetText(a.Content, s.now), s.now)
			t.Buffer.MarkSaved()
			t.Dirty = false
			t.Buffer.History().TakePending()
			s.emit(ResetHistoryLog{Path: a.Path, Lines: editor.NewHistoryLog(a.Content)})
			s.message("reverted %s", s.rel(a.Path))
			return true
		}
	}
	t := s.st.Layout.FindPath(a.Path)
	if t == nil {
		var buf *editor.TextBuffer
		if a.History != nil {
			buf = editor.RestoreTextBuffer(a.History, a.Head)
		} else {
			buf = editor.NewTextBuffer(a.Content)
		}
		t = s.newTab(a.Path, buf)
		t.Dirty = buf.Modified()
		if t.Dirty {
			s.logf("recovered unsaved edits of %s", s.rel(a.Path))
		}
		s.st.Layout.ActivePane().Add(t)
		s.st.OpenPathsVersion++
		if a.History == nil {
			s.emit(ResetHistoryLog{Path: a.Path, Lines: editor.NewHistoryLog(a.Content)})
		}
		if !s.st.LspDisabled {
			s.emit(LspOpen{Path: t.Path, Lang: t.Lang, Version: t.Version, Text: t.Buffer.Rope()})
		}
		for _, dir := range s.st.Explorer.Reveal(a.Path) {
			s.emit(LoadDir{Path: dir})
		}
	}
	s.focusTab(t)
	if hasJump {
		s.jumpTo(t, j.line, j.col, j.enc)
	}
	for _, k := range []DeadlineKind{DeadlineSemanticTokens, DeadlineInlayHints, DeadlineFolding} {
		s.st.Debounce.Schedule(k, s.now, "")
	}
	return true
}

// focusTab makes t the active tab, switching panes if another pane shows
// it.
func (s *Store) focusTab(t *Tab) {
	l := &s.st.Layout
	if i := indexOfTab(l.ActivePane(), t); i >= 0 {
		l.ActivePane().SetActive(i)
	} else {
		for pi, p := range l.Panes {
			if i := indexOfTab(p, t); i >= 0 {
				l.Active = pi
				p.SetActive(i)
				break
			}
		}
	}
	s.st.UI.Focus = FocusEditor
	s.tabSwitched()
}

func indexOfTab(p *Pane, t *Tab) int {
	for i, o := range p.Tabs {
		if o == t {
			return i
		}
	}
	return -1
}

// tabSwitched drops popups tied to the previous tab and reruns the search
// bar of the active pane.
func (s *Store) tabSwitched() {
	s.st.Completion.Close()
	s.st.UI.Hover = ""
	s.st.UI.Signature = ""
	if s.st.Layout.ActivePane().Bar.Visible {
		s.runBarSearch(s.st.Layout.Active)
	}
}

// save writes t, asking for a path first when it has none.
func (s *Store) save(t *Tab) bool {
	if t.Untitled() {
		s.st.UI.Input = &InputDialog{Purpose: InputSaveAs, Title: "Save As", Field: editor.NewField(s.st.Root + string(filepath.Separator)), Tab: t.ID}
		return true
	}
	s.emit(WriteFile{Path: t.Path, Content: t.Buffer.Text(), Version: t.Version})
	return false
}

// saveAs gives an untitled tab its path and writes it.
func (s *Store) saveAs(id TabID, path string) bool {
	var t *Tab
	for _, o := range s.st.Layout.Tabs() {
		if o.ID == id {
			t = o
		}
	}
	if t == nil {
		return false
	}
	if o := s.st.Layout.FindPath(path); o != nil && o != t {
		s.message("%s is already open", s.rel(path))
		return true
	}
	t.Path = path
	s.setLanguage(t)
	t.Buffer.History().TakePending()
	s.st.OpenPathsVersion++
	if !s.st.LspDisabled {
		s.emit(LspOpen{Path: t.Path, Lang: t.Lang, Version: t.Version, Text: t.Buffer.Rope()})
	}
	s.emit(WriteFile{Path: t.Path, Content: t.Buffer.Text(), Version: t.Version})
	return true
}

// fileSaved clears the dirty flag when nothing changed since the write
// began and starts a fresh history log at the saved state.
func (s *Store) fileSaved(a FileSaved) bool {
	t := s.st.Layout.FindPath(a.Path)
	if t == nil {
		return false
	}
	if a.Version == t.Version {
		t.Buffer.MarkSaved()
		t.Dirty = false
		s.emit(ResetHistoryLog{Path: t.Path, Lines: t.Buffer.History().Rebase(t.Buffer.Text())})
	}
	if !s.st.LspDisabled {
		s.emit(LspSave{Path: t.Path})
	}
	s.refreshGit()
	s.message("saved %s", s.rel(t.Path))
	return true
}

// closeActiveTab closes the active tab, confirming first when closing it
// would lose edits.
func (s *Store) closeActiveTab() bool {
	l := &s.st.Layout
	p := l.ActivePane()
	t := p.ActiveTab()
	if t == nil {
		if len(l.Panes) > 1 {
			return s.closePane(l.Active)
		}
		return false
	}
	if t.Dirty && l.refs(t) == 1 {
		s.st.UI.Confirm = &ConfirmDialog{
			Purpose: ConfirmCloseTab,
			Message: t.Title() + " has unsaved changes. Close anyway?",
			Pane:    l.Active,
			Tab:     p.Active,
		}
		return true
	}
	return s.closeTabAt(l.Active, p.Active)
}

// closeTabAt closes a tab without asking. The document leaves language
// servers once no pane shows it.
func (s *Store) closeTabAt(pi, ti int) bool {
	l := &s.st.Layout
	p := l.Pane(pi)
	if p == nil {
		return false
	}
	t := p.Close(ti)
	if t == nil {
		return false
	}
	if l.refs(t) == 0 {
		s.released(t)
	}
	if p.Count() == 0 && len(l.Panes) > 1 {
		l.closePane(pi)
		s.relayout()
	}
	s.tabSwitched()
	return true
}

// refreshGit asks for a new status when the workspace is a repository.
func (s *Store) refreshGit() {
	if s.st.RepoRoot != "" {
		s.emit(GitRefreshStatus{Root: s.st.Root})
	}
}

// released forgets a tab no pane shows anymore.
func (s *Store) released(t *Tab) {
	s.st.OpenPathsVersion++
	if t.Path == "" {
		return
	}
	if !s.st.LspDisabled {
		s.emit(LspClose{Path: t.Path})
	}
	if s.st.Completion.Path == t.Path {
		s.st.Completion.Close()
	}
	if _, ok := s.st.Diagnostics[t.Path]; ok {
		delete(s.st.Diagnostics, t.Path)
		delete(s.diagEnc, t.Path)
		s.rebuildProblems()
	}
}

func (s *Store) closePane(i int) bool {
	l := &s.st.Layout
	tabs, ok := l.closePane(i)
	if !ok {
		return false
	}
	for _, t := range tabs {
		if l.refs(t) == 0 {
			s.released(t)
		}
	}
	s.relayout()
	s.tabSwitched()
	return true
}

// pathCreated adds a created path to the explorer and opens files created
// from the new file dialog.
func (s *Store) pathCreated(a PathCreated) bool {
	s.st.Explorer.PathCreated(a.Path, a.IsDir)
	if id, ok := s.st.Explorer.Lookup(a.Path); ok {
		s.st.Explorer.SelectNode(id)
	}
	if s.openOnCreate == a.Path {
		s.openOnCreate = ""
		if !a.IsDir {
			s.openPath(OpenPath{Path: a.Path, Line: -1})
		}
	}
	s.refreshGit()
	return true
}

// pathDeleted drops a deleted path from the explorer. Open tabs under it
// keep their text and become dirty.
func (s *Store) pathDeleted(a PathDeleted) bool {
	s.st.Explorer.PathDeleted(a.Path)
	for _, t := range s.st.Layout.Tabs() {
		if t.Path == a.Path || strings.HasPrefix(t.Path, a.Path+string(filepath.Separator)) {
			t.Dirty = true
		}
	}
	s.message("deleted %s", s.rel(a.Path))
	s.refreshGit()
	return true
}

// pathRenamed moves explorer nodes and open tabs to their new path.
func (s *Store) pathRenamed(a PathRenamed) bool {
	s.st.Explorer.PathRenamed(a.From, a.To, a.IsDir)
	moved := false
	for _, t := range s.st.Layout.Tabs() {
		old := t.Path
		if !t.renamePath(a.From, a.To, a.IsDir) {
			continue
		}
		moved = true
		delete(s.st.Diagnostics, old)
		delete(s.diagEnc, old)
		if !s.st.LspDisabled {
			s.emit(LspClose{Path: old}, LspOpen{Path: t.Path, Lang: t.Lang, Version: t.Version, Text: t.Buffer.Rope()})
		}
		s.emit(ResetHistoryLog{Path: t.Path, Lines: t.Buffer.History().Rebase(t.Buffer.Text())})
	}
	if moved {
		s.st.OpenPathsVersion++
		s.rebuildProblems()
	}
	s.message("renamed %s to %s", s.rel(a.From), s.rel(a.To))
	s.refreshGit()
	return true
}

// explorerClick selects a row; a double click activates it.
func (s *Store) explorerClick(row int, now int64) bool {
	s.st.UI.Focus = FocusExplorer
	s.st.UI.Sidebar = SidebarExplorer
	if s.st.Explorer.Click(row, now) {
		s.explorerActivate()
	}
	return true
}

// explorerActivate toggles the selected directory or opens the selected
// file.
func (s *Store) explorerActivate() bool {
	id, ok := s.st.Explorer.SelectedNode()
	if !ok {
		return false
	}
	n, _ := s.st.Explorer.Node(id)
	if n.Kind == explorer.Dir {
		if path, load := s.st.Explorer.Toggle(id); load {
			s.emit(LoadDir{Path: path})
		}
		return true
	}
	s.openPath(OpenPath{Path: s.st.Explorer.Path(id), Line: -1})
	return true
}

// explorerTarget returns the directory new entries go into: the selected
// directory, or the parent of the selected file.
func (s *Store) explorerTarget() string {
	m := s.st.Explorer
	id, ok := m.SelectedNode()
	if !ok {
		return m.Root
	}
	n, _ := m.Node(id)
	if n.Kind == explorer.Dir {
		return m.Path(id)
	}
	return filepath.Dir(m.Path(id))
}

// explorerCommand runs commands acting on the explorer selection.
func (s *Store) explorerCommand(cmd commands.Command) bool {
	m := s.st.Explorer
	id, selected := m.SelectedNode()
	var node explorer.Node
	if selected {
		node, _ = m.Node(id)
	}
	switch cmd {
	case commands.ExplorerUp:
		m.MoveSelection(-1)
	case commands.ExplorerDown:
		m.MoveSelection(1)
	case commands.ExplorerActivate:
		return s.explorerActivate()
	case commands.ExplorerExpand:
		if !selected || node.Kind != explorer.Dir {
			return false
		}
		if m.IsExpanded(id) {
			m.MoveSelection(1)
		} else if path, load := m.Expand(id); load {
			s.emit(LoadDir{Path: path})
		}
	case commands.ExplorerCollapse:
		if !selected {
			return false
		}
		if node.Kind == explorer.Dir && m.IsExpanded(id) && id != m.RootID() {
			m.Collapse(id)
		} else if node.Parent != explorer.NoNode {
			m.SelectNode(node.Parent)
		}
	case commands.ExplorerNewFile, commands.NewFile:
		if cmd == commands.NewFile && s.st.UI.Focus != FocusExplorer {
			t := s.newTab("", editor.NewTextBuffer(""))
			s.st.Layout.ActivePane().Add(t)
			s.st.OpenPathsVersion++
			s.focusTab(t)
			return true
		}
		s.st.UI.Input = &InputDialog{Purpose: InputNewFile, Title: "New File", Target: s.explorerTarget()}
	case commands.ExplorerNewFolder:
		s.st.UI.Input = &InputDialog{Purpose: InputNewFolder, Title: "New Folder", Target: s.explorerTarget()}
	case commands.ExplorerRename:
		if !selected || id == m.RootID() {
			return false
		}
		s.st.UI.Input = &InputDialog{Purpose: InputRename, Title: "Rename", Field: editor.NewField(node.Name), Target: m.Path(id), IsDir: node.Kind == explorer.Dir}
	case commands.ExplorerDelete:
		if !selected || id == m.RootID() {
			return false
		}
		path := m.Path(id)
		s.st.UI.Confirm = &ConfirmDialog{Purpose: ConfirmDelete, Message: "Delete " + s.rel(path) + "?", Path: path, IsDir: node.Kind == explorer.Dir}
	case commands.ExplorerCut, commands.ExplorerCopy:
		if !selected || id == m.RootID() {
			return false
		}
		if cmd == commands.ExplorerCut {
			m.Cut(id)
		} else {
			m.Copy(id)
		}
		s.message("%s %s", strings.TrimPrefix(string(cmd), "explorer."), s.rel(m.Path(id)))
	case commands.ExplorerPaste:
		target := m.RootID()
		if selected {
			target = id
		}
		p, ok := m.Paste(target, nil)
		if !ok {
			return false
		}
		if p.Op == explorer.ClipCut {
			s.emit(RenamePath{From: p.From, To: p.To, IsDir: p.IsDir})
		} else {
			s.emit(CopyPath{From: p.From, To: p.To, IsDir: p.IsDir})
		}
	case commands.ExplorerRefresh:
		s.emit(LoadDir{Path: m.Root})
		for _, r := range m.Rows() {
			if r.Kind == explorer.Dir && r.Expanded && r.Node != m.RootID() {
				s.emit(LoadDir{Path: m.Path(r.Node)})
			}
		}
		s.emit(GitRefreshStatus{Root: s.st.Root})
	default:
		return false
	}
	return true
}

// drop moves a dragged path or tab onto the target under the pointer.
func (s *Store) drop(a ExplorerDrop) bool {
	target, ok := explorer.ResolveDrop(a.Payload, a.Targets, a.X, a.Y)
	if !ok {
		return false
	}
	p := a.Payload
	switch {
	case target.Kind == explorer.TargetDir:
		to := explorer.DropPath(p, target)
		if _, exists := s.st.Explorer.Lookup(to); exists {
			s.st.UI.Confirm = &ConfirmDialog{Purpose: ConfirmOverwrite, Message: s.rel(to) + " exists. Replace it?", Path: p.Path, To: to, IsDir: p.IsDir}
			return true
		}
		s.emit(RenamePath{From: p.Path, To: to, IsDir: p.IsDir})
		return false
	case p.Kind == explorer.PayloadPath:
		if s.st.Layout.Pane(target.Pane) == nil {
			return false
		}
		s.st.Layout.Active = target.Pane
		s.openPath(OpenPath{Path: p.Path, Line: -1})
		return true
	case p.Kind == explorer.PayloadTab:
		return s.moveTab(p.Pane, p.Tab, target.Pane)
	}
	return false
}

// moveTab moves a tab into another pane.
func (s *Store) moveTab(from, index, to int) bool {
	l := &s.st.Layout
	src, dst := l.Pane(from), l.Pane(to)
	if src == nil || dst == nil || src == dst {
		return false
	}
	t := src.Tab(index)
	if t == nil {
		return false
	}
	if i := indexOfTab(dst, t); i >= 0 {
		dst.SetActive(i)
	} else {
		dst.Add(t)
	}
	src.Close(index)
	l.Active = to
	if src.Count() == 0 && len(l.Panes) > 1 {
		l.closePane(from)
		if l.Active >= len(l.Panes) || l.Panes[l.Active] != dst {
			l.Active = indexOfPane(l, dst)
		}
		s.relayout()
	}
	s.tabSwitched()
	return true
}

func indexOfPane(l *Layout, p *Pane) int {
	for i, o := range l.Panes {
		if o == p {
			return i
		}
	}
	return 0
}

// openContextMenu shows the explorer menu for path and selects it.
func (s *Store) openContextMenu(a OpenContextMenu) bool {
	path := a.Path
	if path == "" {
		path = s.st.Root
	}
	isDir := true
	if id, ok := s.st.Explorer.Lookup(path); ok {
		s.st.Explorer.SelectNode(id)
		n, _ := s.st.Explorer.Node(id)
		isDir = n.Kind == explorer.Dir
	}
	s.st.UI.Focus = FocusExplorer
	s.st.UI.Menu = &ContextMenu{X: a.X, Y: a.Y, Path: path, Items: explorerMenu(isDir)}
	return true
}

// contextMenuSelect closes the menu and runs the chosen item.
func (s *Store) contextMenuSelect(i int) bool {
	m := s.st.UI.Menu
	if m == nil {
		return false
	}
	s.st.UI.Menu = nil
	if i < 0 || i >= len(m.Items) {
		return true
	}
	s.runCommand(m.Items[i].Command, s.now)
	return true
}
