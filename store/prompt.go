package store

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/odvcencio/zcode/commands"
	"github.com/odvcencio/zcode/lsp"
)

// dialogCommand runs confirm, cancel and list navigation against the
// topmost dialog, or the bottom panel when none is open.
func (s *Store) dialogCommand(cmd commands.Command, now int64) bool {
	ui := &s.st.UI
	switch cmd {
	case commands.DialogCancel:
		switch {
		case ui.Confirm != nil:
			ui.Confirm = nil
		case ui.Menu != nil:
			ui.Menu = nil
		case ui.Palette != nil:
			ui.Palette = nil
		case ui.Input != nil:
			ui.Input = nil
		default:
			return false
		}
		return true
	case commands.DialogConfirm, commands.ListActivate:
		switch {
		case ui.Confirm != nil:
			return s.confirm(now)
		case ui.Menu != nil:
			return s.contextMenuSelect(ui.Menu.Selected)
		case ui.Palette != nil:
			return s.runPalette(now)
		case ui.Input != nil:
			return s.submitInput()
		}
		if cmd == commands.ListActivate {
			return s.panelActivate()
		}
		return false
	case commands.ListUp, commands.ListDown:
		delta := 1
		if cmd == commands.ListUp {
			delta = -1
		}
		switch {
		case ui.Menu != nil:
			if n := len(ui.Menu.Items); n > 0 {
				ui.Menu.Selected = max(0, min(ui.Menu.Selected+delta, n-1))
			}
		case ui.Palette != nil:
			ui.Palette.Move(delta)
		case ui.Bottom == BottomSearchResults:
			s.st.Search.Move(&s.st.Search.Panel, delta)
		default:
			s.selectPanelRow(ui.PanelSelected + delta)
		}
		return true
	}
	return false
}

// runPalette closes the palette and runs the selected entry.
func (s *Store) runPalette(now int64) bool {
	e, ok := s.st.UI.Palette.Current()
	s.st.UI.Palette = nil
	switch {
	case !ok:
	case e.Path != "":
		s.openPath(OpenPath{Path: e.Path, Line: -1})
	default:
		s.runCommand(e.Command, now)
	}
	return true
}

// confirm accepts the open confirm dialog.
func (s *Store) confirm(now int64) bool {
	c := s.st.UI.Confirm
	s.st.UI.Confirm = nil
	switch c.Purpose {
	case ConfirmCloseTab:
		return s.closeTabAt(c.Pane, c.Tab)
	case ConfirmDelete:
		s.emit(DeletePath{Path: c.Path, IsDir: c.IsDir})
	case ConfirmQuit:
		return s.quit(true)
	case ConfirmOverwrite:
		s.emit(RenamePath{From: c.Path, To: c.To, IsDir: c.IsDir, Overwrite: true})
	case ConfirmRevert:
		s.reverting[c.Path] = true
		s.emit(LoadFile{Path: c.Path})
	}
	return true
}

// validName checks a single path element typed into a dialog.
func validName(name string) error {
	switch {
	case name == "":
		return fmt.Errorf("name is empty")
	case name == "." || name == "..":
		return fmt.Errorf("%q is not a valid name", name)
	case strings.ContainsRune(name, 0):
		return fmt.Errorf("name contains a NUL byte")
	}
	for _, part := range strings.Split(filepath.ToSlash(name), "/") {
		if part == ".." {
			return fmt.Errorf("name may not leave its directory")
		}
	}
	return nil
}

// parseLine reads "line" or "line:col", both one based.
func parseLine(text string) (line, col int, err error) {
	ls, cs, hasCol := strings.Cut(text, ":")
	line, err = strconv.Atoi(strings.TrimSpace(ls))
	if err != nil || line < 1 {
		return 0, 0, fmt.Errorf("%q is not a line number", ls)
	}
	col = 1
	if hasCol {
		col, err = strconv.Atoi(strings.TrimSpace(cs))
		if err != nil || col < 1 {
			return 0, 0, fmt.Errorf("%q is not a column", cs)
		}
	}
	return line, col, nil
}

// submitInput acts on the text of the open input dialog. Invalid input
// keeps the dialog open with an error.
func (s *Store) submitInput() bool {
	in := s.st.UI.Input
	text := strings.TrimSpace(in.Field.Text)
	fail := func(err error) bool {
		in.Err = err.Error()
		return true
	}
	switch in.Purpose {
	case InputNewFile, InputNewFolder:
		if err := validName(text); err != nil {
			return fail(err)
		}
		path := filepath.Join(in.Target, text)
		if _, ok := s.st.Explorer.Lookup(path); ok {
			return fail(fmt.Errorf("%s already exists", text))
		}
		s.st.UI.Input = nil
		if in.Purpose == InputNewFile {
			s.openOnCreate = path
			s.emit(CreateFile{Path: path})
		} else {
			s.emit(CreateDir{Path: path})
		}
	case InputRename:
		if err := validName(text); err != nil {
			return fail(err)
		}
		to := filepath.Join(filepath.Dir(in.Target), text)
		s.st.UI.Input = nil
		if to == in.Target {
			return true
		}
		if _, ok := s.st.Explorer.Lookup(to); ok {
			s.st.UI.Confirm = &ConfirmDialog{Purpose: ConfirmOverwrite, Message: s.rel(to) + " exists. Replace it?", Path: in.Target, To: to, IsDir: in.IsDir}
			return true
		}
		s.emit(RenamePath{From: in.Target, To: to, IsDir: in.IsDir})
	case InputGotoLine:
		line, col, err := parseLine(text)
		if err != nil {
			return fail(err)
		}
		s.st.UI.Input = nil
		if t := s.st.Layout.ActiveTab(); t != nil {
			s.st.UI.Focus = FocusEditor
			s.jumpTo(t, line-1, col-1, lsp.UTF32)
		}
	case InputOpenFile:
		path := s.abs(text)
		if path == "" {
			return fail(fmt.Errorf("path is empty"))
		}
		s.st.UI.Input = nil
		s.openPath(OpenPath{Path: path, Line: -1})
	case InputSaveAs:
		path := s.abs(text)
		if path == "" || strings.HasSuffix(text, string(filepath.Separator)) {
			return fail(fmt.Errorf("enter a file name"))
		}
		s.st.UI.Input = nil
		return s.saveAs(in.Tab, path)
	case InputLspRename, InputWorkspaceSymbols:
		if text == "" && in.Purpose == InputLspRename {
			return fail(fmt.Errorf("name is empty"))
		}
		s.st.UI.Input = nil
		t := s.lspTab(true)
		if t == nil {
			return true
		}
		if in.Purpose == InputLspRename {
			req := s.request(t, lsp.KindRename)
			req.NewName = text
			s.emit(LspRenameRequest{Request: req})
		} else {
			req := s.request(t, lsp.KindWorkspaceSymbols)
			req.Query = text
			s.emit(LspSymbolsRequest{Request: req})
		}
	}
	return true
}

// selectPanelRow moves the bottom panel selection to row, clamped, and
// scrolls it into view.
func (s *Store) selectPanelRow(row int) {
	ui := &s.st.UI
	n := s.st.PanelLen()
	if n == 0 {
		ui.PanelSelected, ui.PanelScroll = 0, 0
		return
	}
	ui.PanelSelected = max(0, min(row, n-1))
	h := max(ui.PanelHeight, 1)
	if ui.PanelSelected < ui.PanelScroll {
		ui.PanelScroll = ui.PanelSelected
	}
	if ui.PanelSelected >= ui.PanelScroll+h {
		ui.PanelScroll = ui.PanelSelected - h + 1
	}
}

// scrollPanel moves the bottom panel window by delta rows.
func (s *Store) scrollPanel(delta int) {
	ui := &s.st.UI
	if ui.Bottom == BottomSearchResults {
		s.st.Search.Scroll(&s.st.Search.Panel, delta)
		return
	}
	n := s.st.PanelLen()
	ui.PanelScroll = max(0, min(ui.PanelScroll+delta, n-max(ui.PanelHeight, 1)))
}

// panelActivate opens the selected row of the bottom panel.
func (s *Store) panelActivate() bool {
	ui := &s.st.UI
	i := ui.PanelSelected
	switch ui.Bottom {
	case BottomProblems:
		if i < len(s.st.Problems) {
			return s.openLocation(s.st.Problems[i])
		}
	case BottomLocations:
		if i < len(s.st.Locations) {
			return s.openLocation(s.st.Locations[i])
		}
	case BottomSymbols:
		if i < len(s.st.Symbols) {
			sym := s.st.Symbols[i]
			return s.openLocation(s.location(lsp.PathFromURI(sym.Location.URI), sym.Location.Range.Start, s.symbolEnc, sym.Name, 0))
		}
	case BottomCodeActions:
		return s.applyCodeAction(i)
	case BottomSearchResults:
		return s.openSearchTarget(&s.st.Search.Panel)
	}
	return false
}
