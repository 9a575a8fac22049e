package store

import (
	"strings"

	"github.com/odvcencio/zcode/commands"
	"github.com/odvcencio/zcode/editor"
	"github.com/odvcencio/zcode/plugin"
)

// runCommand is the single entry point of commands, whether they come from
// a key, the palette, a menu or a debounce deadline.
func (s *Store) runCommand(cmd commands.Command, now int64) bool {
	if cmd == "" {
		return false
	}
	if s.fieldCommand(cmd) {
		return true
	}
	if s.st.UI.Blocked() && !modal(cmd) {
		return false
	}
	if cmd.IsCustom() {
		s.message("no handler for %s", cmd.CustomName())
		return true
	}
	if _, _, ok := cmd.PluginParts(); ok {
		return s.pluginCommand(cmd)
	}

	switch cmd {
	case commands.Save:
		if t := s.st.Layout.ActiveTab(); t != nil {
			return s.save(t)
		}
		return false
	case commands.SaveAll:
		return s.saveAll()
	case commands.NewFile:
		return s.explorerCommand(cmd)
	case commands.QuickOpen:
		return s.quickOpen()
	case commands.OpenFile:
		s.st.UI.Input = &InputDialog{Purpose: InputOpenFile, Title: "Open File"}
		return true
	case commands.CloseTab:
		return s.closeActiveTab()
	case commands.GotoLine:
		if s.st.Layout.ActiveTab() == nil {
			return false
		}
		s.st.UI.Input = &InputDialog{Purpose: InputGotoLine, Title: "Go to Line"}
		return true
	case commands.RevertFile:
		return s.revert()

	case commands.Quit:
		return s.quit(false)
	case commands.CommandPalette:
		s.st.UI.Palette = newPalette(s.st.paletteEntries())
		return true
	case commands.ReloadSettings:
		s.emit(ReloadSettings{})
		return false

	case commands.Paste:
		s.emit(ClipboardRead{})
		return false
	case commands.ClearCursors:
		s.st.UI.Hover = ""
		s.st.UI.Signature = ""
		s.st.Completion.Close()
		s.cursorCommand(cmd, now)
		return true

	case commands.Find, commands.Replace, commands.FindNext, commands.FindPrev,
		commands.ReplaceCurrent, commands.ReplaceAll,
		commands.SearchBarToggleField, commands.SearchBarClose:
		return s.barCommand(cmd, now)

	case commands.CompletionAccept:
		return s.acceptCompletion(now)
	case commands.CompletionNext:
		s.st.Completion.Move(1)
		return true
	case commands.CompletionPrev:
		s.st.Completion.Move(-1)
		return true
	case commands.CompletionDismiss:
		s.st.Completion.Close()
		return true

	case commands.SearchRun, commands.SearchToggleCase, commands.SearchToggleRegex,
		commands.SearchNextResult, commands.SearchPrevResult, commands.SearchOpenResult,
		commands.SearchToggleExpand, commands.SearchCancel:
		return s.searchCommand(cmd)

	case commands.DialogConfirm, commands.DialogCancel, commands.ListUp,
		commands.ListDown, commands.ListActivate:
		return s.dialogCommand(cmd, now)
	}

	switch group, _, _ := strings.Cut(string(cmd), "."); group {
	case "view":
		return s.viewCommand(cmd)
	case "lsp":
		return s.lspCommand(cmd)
	case "explorer":
		return s.explorerCommand(cmd)
	}
	if s.editCommand(cmd, now) {
		return true
	}
	return s.cursorCommand(cmd, now)
}

// modal lists the commands that reach an open dialog.
func modal(cmd commands.Command) bool {
	switch cmd {
	case commands.DialogConfirm, commands.DialogCancel, commands.ListUp,
		commands.ListDown, commands.ListActivate, commands.Paste:
		return true
	}
	return false
}

// fieldCommand applies line editing commands to the focused text field.
func (s *Store) fieldCommand(cmd commands.Command) bool {
	f, changed := s.activeField()
	if f == nil {
		return false
	}
	edit := func(ok bool) bool {
		if ok {
			changed()
		}
		return true
	}
	switch cmd {
	case commands.Backspace:
		return edit(f.Backspace())
	case commands.DeleteForward:
		return edit(f.Delete())
	case commands.DeleteWordBackward:
		return edit(f.DeleteWordBackward())
	case commands.CursorLeft:
		f.Left()
	case commands.CursorRight:
		f.Right()
	case commands.CursorLineStart:
		f.Home()
	case commands.CursorLineEnd:
		f.End()
	default:
		return false
	}
	return true
}

func (s *Store) saveAll() bool {
	changed := false
	for _, t := range s.st.Layout.Tabs() {
		if !t.Dirty {
			continue
		}
		if t.Untitled() {
			s.logf("skipped untitled tab %d", t.ID)
			continue
		}
		s.emit(WriteFile{Path: t.Path, Content: t.Buffer.Text(), Version: t.Version})
		changed = true
	}
	return changed
}

// revert rereads the active file, confirming first when edits would be
// lost.
func (s *Store) revert() bool {
	t := s.st.Layout.ActiveTab()
	if t == nil || t.Untitled() {
		return false
	}
	if t.Dirty {
		s.st.UI.Confirm = &ConfirmDialog{Purpose: ConfirmRevert, Message: "Discard changes to " + t.Title() + "?", Path: t.Path}
		return true
	}
	s.reverting[t.Path] = true
	s.emit(LoadFile{Path: t.Path})
	return false
}

// quit asks before losing edits unless force is set.
func (s *Store) quit(force bool) bool {
	if !force {
		for _, t := range s.st.Layout.Tabs() {
			if t.Dirty {
				s.st.UI.Confirm = &ConfirmDialog{Purpose: ConfirmQuit, Message: "There are unsaved changes. Quit anyway?"}
				return true
			}
		}
	}
	s.st.UI.Quit = true
	s.saveRanker()
	s.emit(Quit{})
	return true
}

// viewCommand changes panels, panes, tabs and folds.
func (s *Store) viewCommand(cmd commands.Command) bool {
	ui := &s.st.UI
	l := &s.st.Layout
	switch cmd {
	case commands.ToggleSidebar:
		ui.SidebarVisible = !ui.SidebarVisible
		if !ui.SidebarVisible && ui.Focus == FocusExplorer {
			ui.Focus = FocusEditor
		}
	case commands.ShowExplorer, commands.FocusExplorer:
		ui.SidebarVisible = true
		ui.Sidebar = SidebarExplorer
		ui.Focus = FocusExplorer
	case commands.ShowSearch:
		ui.SidebarVisible = true
		ui.Sidebar = SidebarSearch
		ui.SearchResultsFocused = false
		ui.Focus = FocusExplorer
		if t := l.ActiveTab(); t != nil {
			if seed := selectionSeed(t); seed != "" {
				s.st.Search.Query.SetText(seed)
				s.st.Search.Query.End()
			}
		}
	case commands.ToggleBottomPanel:
		ui.BottomVisible = !ui.BottomVisible
		switch {
		case ui.BottomVisible:
			ui.Focus = FocusBottomPanel
		case ui.Focus == FocusBottomPanel:
			ui.Focus = FocusEditor
		}
		s.relayout()
	case commands.ShowTerminal:
		if !s.st.TerminalRunning {
			s.emit(TerminalStart{Dir: s.st.Root})
			s.st.TerminalRunning = true
		}
		s.showBottom(BottomTerminal)
	case commands.ShowProblems:
		s.showBottom(BottomProblems)
	case commands.ShowSearchResults:
		s.showBottom(BottomSearchResults)
	case commands.ShowLogs:
		s.showBottom(BottomLogs)
	case commands.ShowLocations:
		s.showBottom(BottomLocations)
	case commands.ShowSymbols:
		s.showBottom(BottomSymbols)
	case commands.ShowCodeActions:
		s.showBottom(BottomCodeActions)
	case commands.FocusEditor:
		ui.Focus = FocusEditor
		ui.SearchResultsFocused = false
		l.ActivePane().BarFocused = false
	case commands.SplitPane:
		if !l.split() {
			return false
		}
		ui.Focus = FocusEditor
		s.relayout()
		s.tabSwitched()
	case commands.ClosePane:
		return s.closePane(l.Active)
	case commands.FocusNextPane:
		if len(l.Panes) < 2 {
			return false
		}
		l.Active = (l.Active + 1) % len(l.Panes)
		ui.Focus = FocusEditor
		s.tabSwitched()
	case commands.NextTab, commands.PrevTab:
		p := l.ActivePane()
		if p.Count() < 2 {
			return false
		}
		if cmd == commands.NextTab {
			p.Cycle(1)
		} else {
			p.Cycle(-1)
		}
		s.tabSwitched()
	case commands.ToggleFold, commands.FoldAll, commands.UnfoldAll:
		return s.foldCommand(cmd)
	default:
		return false
	}
	return true
}

// showBottom opens the bottom panel on tab and focuses it.
func (s *Store) showBottom(tab BottomTab) {
	ui := &s.st.UI
	if ui.Bottom != tab {
		ui.PanelSelected, ui.PanelScroll = 0, 0
	}
	ui.Bottom = tab
	ui.Focus = FocusBottomPanel
	if !ui.BottomVisible {
		ui.BottomVisible = true
		s.relayout()
	}
	if tab == BottomLogs || tab == BottomTerminal {
		ui.PanelScroll = max(s.st.PanelLen()-ui.PanelHeight, 0)
	}
}

// foldCommand folds the active buffer. The cursor leaves lines a fold
// hides.
func (s *Store) foldCommand(cmd commands.Command) bool {
	t := s.activeEditor()
	if t == nil {
		return false
	}
	row := t.Buffer.Cursor().Row
	switch cmd {
	case commands.ToggleFold:
		if !t.Folds.Toggle(row) {
			return false
		}
	case commands.FoldAll:
		t.Folds.FoldAll()
	case commands.UnfoldAll:
		t.Folds.UnfoldAll()
	}
	for _, r := range t.Folds.Regions() {
		if r.Folded && row > r.StartLine && row <= r.EndLine {
			t.Buffer.SetCursor(editor.Position{Row: r.StartLine, Col: 0})
			t.Buffer.MoveLineEnd(false)
			break
		}
	}
	return true
}

// pluginCommand forwards a plugin command to its plugin.
func (s *Store) pluginCommand(cmd commands.Command) bool {
	id, commandID, _ := cmd.PluginParts()
	p, ok := s.st.Plugins[id]
	if !ok || p.State != plugin.StateOnline {
		s.message("plugin %s is not running", id)
		return true
	}
	s.emit(EmitPluginNotification{PluginID: id, Method: plugin.MethodCommandInvoked, Params: plugin.CommandInvokedParams{CommandID: commandID}})
	return false
}
