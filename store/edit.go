package store

import (
	"strings"
	"unicode/utf8"

	"github.com/odvcencio/zcode/commands"
	"github.com/odvcencio/zcode/completion"
	"github.com/odvcencio/zcode/editor"
	"github.com/odvcencio/zcode/lsp"
	"github.com/odvcencio/zcode/search"
)

// edited records a mutation of t: the version moves, the syntax tree and
// folds follow the deltas, language servers and the history log hear
// about it and the debounced requests restart.
func (s *Store) edited(t *Tab, res editor.EditResult, now int64) bool {
	if !res.Changed {
		return false
	}
	t.Version++
	t.Dirty = t.Buffer.Modified()
	if t.Doc != nil {
		if len(res.Deltas) > 0 {
			t.Doc.Apply(res.Deltas, t.Buffer.Rope())
		} else {
			t.Doc.Reset(t.Buffer.Rope())
		}
	}
	for _, d := range res.Deltas {
		t.Folds.ApplyDelta(d)
	}
	if t.FoldVersion == 0 {
		t.Folds.SetRegions(s.syntaxFolds(t))
	}
	lines := t.Buffer.History().TakePending()
	if t.Path != "" {
		if !s.st.LspDisabled {
			s.emit(LspChange{Path: t.Path, Version: t.Version, Deltas: res.Deltas, Text: t.Buffer.Rope()})
		}
		if len(lines) > 0 {
			s.emit(AppendHistoryLog{Path: t.Path, Lines: lines})
		}
	}
	s.scheduleEdit(now)
	s.reveal(t)
	for i, p := range s.st.Layout.Panes {
		if p.ActiveTab() == t && p.Bar.Visible {
			s.runBarSearch(i)
		}
	}
	return true
}

// syntaxFolds returns the fold regions the parser found, or the indent
// based ones when there is no tree.
func (s *Store) syntaxFolds(t *Tab) []editor.FoldRegion {
	if t.Doc != nil && t.Doc.HasTree() {
		return t.Doc.FoldRegions()
	}
	return editor.DetectFoldRegions(t.Buffer.Rope())
}

// reveal scrolls t so the primary cursor is visible in the active pane.
func (s *Store) reveal(t *Tab) {
	h := max(s.st.Layout.ActivePane().ViewHeight, 1)
	row := t.Buffer.Cursor().Row
	switch {
	case row < t.Scroll:
		t.Scroll = row
	case row >= t.Scroll+h:
		t.Scroll = row - h + 1
	}
}

// moved settles the UI after a cursor motion in t.
func (s *Store) moved(t *Tab, now int64) {
	s.reveal(t)
	s.st.Completion.Close()
	s.scheduleHover(now)
}

// activeEditor returns the active tab when the editor owns input.
func (s *Store) activeEditor() *Tab {
	if s.st.UI.Focus != FocusEditor || s.st.UI.Blocked() {
		return nil
	}
	return s.st.Layout.ActiveTab()
}

// activeField returns the text field keyboard input goes to, if any, and
// what to run after it changes.
func (s *Store) activeField() (*editor.Field, func()) {
	ui := &s.st.UI
	switch {
	case ui.Confirm != nil, ui.Menu != nil:
		return nil, nil
	case ui.Palette != nil:
		return &ui.Palette.Query, ui.Palette.Filter
	case ui.Input != nil:
		return &ui.Input.Field, func() { ui.Input.Err = "" }
	}
	switch ui.Focus {
	case FocusExplorer:
		if ui.Sidebar == SidebarSearch && !ui.SearchResultsFocused {
			return &s.st.Search.Query, func() {}
		}
		return nil, nil
	case FocusEditor:
		pi := s.st.Layout.Active
		p := s.st.Layout.ActivePane()
		if p.Bar.Visible && p.BarFocused {
			return p.Bar.Active(), func() {
				if p.Bar.Focus == search.FieldFind {
					s.runBarSearch(pi)
				}
			}
		}
	}
	return nil, nil
}

// typeText routes typed text to the focused field, the terminal or the
// active buffer.
func (s *Store) typeText(text string, now int64) bool {
	if text == "" {
		return false
	}
	if f, changed := s.activeField(); f != nil {
		f.Insert(text)
		changed()
		return true
	}
	if s.st.UI.Blocked() {
		return false
	}
	switch s.st.UI.Focus {
	case FocusBottomPanel:
		if s.st.UI.Bottom == BottomTerminal && s.st.TerminalRunning {
			s.emit(TerminalWrite{Data: text})
		}
		return false
	case FocusEditor:
		return s.insertText(text, now)
	}
	return false
}

// insertText types into the active buffer and drives completion and
// signature help from the last typed character.
func (s *Store) insertText(text string, now int64) bool {
	t := s.st.Layout.ActiveTab()
	if t == nil {
		return false
	}
	if !s.edited(t, t.Buffer.InsertText(text, now), now) {
		return false
	}
	r, _ := utf8.DecodeLastRuneInString(text)
	if strings.ContainsRune(text, '\n') || utf8.RuneCountInString(text) > 2 {
		s.st.Completion.Close()
		return true
	}
	s.afterTyped(t, r, now)
	return true
}

// paste inserts clipboard text where typing would go.
func (s *Store) paste(text string, now int64) bool {
	if text == "" {
		return false
	}
	if f, changed := s.activeField(); f != nil {
		f.Insert(text)
		changed()
		return true
	}
	if s.st.UI.Blocked() {
		return false
	}
	switch s.st.UI.Focus {
	case FocusBottomPanel:
		if s.st.UI.Bottom == BottomTerminal && s.st.TerminalRunning {
			s.emit(TerminalWrite{Data: text})
		}
		return false
	case FocusEditor:
		t := s.st.Layout.ActiveTab()
		if t == nil {
			return false
		}
		s.st.Completion.Close()
		return s.edited(t, t.Buffer.InsertText(text, now), now)
	}
	return false
}

// completionContext returns the cursor line of t and its rune column,
// along with the offset where the line starts.
func completionContext(t *Tab) (completion.Context, int) {
	r := t.Buffer.Rope()
	pos := t.Buffer.Primary().Pos
	row := r.CharToLine(pos)
	start := r.LineStart(row)
	return completion.Context{Line: r.Line(row), Col: pos - start}, start
}

func (t *Tab) strategy() completion.Strategy {
	if t.Strategy == nil {
		return completion.For(t.Lang)
	}
	return t.Strategy
}

// afterTyped updates the completion popup and signature help for ch, the
// character just typed into t.
func (s *Store) afterTyped(t *Tab, ch rune, now int64) {
	st := t.strategy()
	ctx, lineStart := completionContext(t)
	caps, _ := s.capsFor(t)
	comp := &s.st.Completion
	timing := s.st.Config.LspTiming

	if comp.Visible {
		if st.KeepsOpen(ch) && comp.Path == t.Path {
			start, end := st.PrefixBounds(ctx)
			comp.Refilter(t.Buffer.Rope().Slice(lineStart+start, lineStart+end), s.st.Ranker, now)
		} else {
			comp.Close()
		}
	}
	if st.Allowed(ctx) {
		switch {
		case st.TriggersRequest(ctx, ch, caps.CompletionTriggers):
			s.st.Debounce.Schedule(DeadlineCompletion, now+Delay(TriggerPunctuation, timing), string(ch))
		case st.DebounceOn(ch):
			s.st.Debounce.Schedule(DeadlineCompletion, now+Delay(TriggerIdentifier, timing), "")
		}
	}
	sig := completion.SignatureTriggers{Trigger: caps.SignatureTriggers, Retrigger: caps.SignatureRetrigger}
	switch st.Signature(ch, sig) {
	case completion.SignatureOpen:
		s.requestSignature(t, string(ch))
	case completion.SignatureKeep:
		if s.st.UI.Signature != "" {
			s.requestSignature(t, string(ch))
		}
	case completion.SignatureClose:
		s.st.UI.Signature = ""
	}
}

// deleted narrows or closes the completion popup after a deletion.
func (s *Store) deleted(t *Tab, now int64) {
	comp := &s.st.Completion
	if !comp.Visible {
		return
	}
	pos := t.Buffer.Primary().Pos
	if comp.Path != t.Path || pos <= comp.Anchor {
		comp.Close()
		return
	}
	comp.Refilter(t.Buffer.Rope().Slice(comp.Anchor, pos), s.st.Ranker, now)
}

// acceptCompletion replaces the typed prefix with the selected item.
func (s *Store) acceptCompletion(now int64) bool {
	comp := &s.st.Completion
	c, ok := comp.Selection()
	if !ok {
		return false
	}
	t := s.st.Layout.ActiveTab()
	if t == nil || t.Path != comp.Path {
		comp.Close()
		return true
	}
	ins := completion.Accept(c.Item, t.Buffer.Rope(), comp.Anchor, t.Buffer.Primary().Pos, s.compEnc)
	lang := comp.Lang
	comp.Close()
	t.Buffer.ClearSecondary()
	s.edited(t, t.Buffer.ApplyEdits([]editor.Edit{ins.Edit}, now), now)
	if ins.SelectEnd > ins.Cursor {
		t.Buffer.SetSelection(ins.Cursor, ins.SelectEnd)
	} else {
		t.Buffer.SetCursorOffset(ins.Cursor)
	}
	s.st.Ranker.Record(lang, c.Item.Label, now)
	s.st.rankerSeen++
	if s.st.rankerSeen%10 == 0 {
		s.saveRanker()
	}
	return true
}

func (s *Store) saveRanker() {
	data, err := s.st.Ranker.MarshalJSON()
	if err != nil {
		s.logf("completion ranker: %s", err)
		return
	}
	s.emit(SaveRanker{Data: data})
}

// indentUnit is what Tab inserts in t.
func (s *Store) indentUnit(t *Tab) string {
	if t.Indent != "" {
		return t.Indent
	}
	if s.st.Config.InsertSpaces {
		return strings.Repeat(" ", max(s.st.Config.TabSize, 1))
	}
	return "\t"
}

// editCommand runs a command that mutates the active buffer.
func (s *Store) editCommand(cmd commands.Command, now int64) bool {
	t := s.activeEditor()
	if t == nil {
		return false
	}
	b := t.Buffer
	var res editor.EditResult
	switch cmd {
	case commands.Undo:
		res = b.Undo()
		s.st.Completion.Close()
	case commands.Redo:
		res = b.Redo()
		s.st.Completion.Close()
	case commands.Newline:
		res = b.InsertNewline(now)
		s.st.Completion.Close()
	case commands.Backspace:
		res = b.DeleteBackward(now)
	case commands.DeleteForward:
		res = b.DeleteForward(now)
	case commands.DeleteWordBackward:
		res = b.DeleteWordBackward(now)
	case commands.DeleteWordForward:
		res = b.DeleteWordForward(now)
	case commands.InsertTab:
		if sel, ok := b.Selection(); ok && sel.Anchor.Row != sel.Active.Row {
			res = b.IndentLines(s.indentUnit(t), now)
		} else {
			res = b.InsertText(s.indentUnit(t), now)
		}
		s.st.Completion.Close()
	case commands.Indent:
		res = b.IndentLines(s.indentUnit(t), now)
	case commands.Outdent:
		res = b.OutdentLines(max(s.st.Config.TabSize, 1), now)
	case commands.DeleteLine:
		res = b.DeleteLines(now)
	case commands.DuplicateLine:
		res = b.DuplicateLines(now)
	case commands.MoveLineUp:
		res = b.MoveLines(-1, now)
	case commands.MoveLineDown:
		res = b.MoveLines(1, now)
	case commands.Cut:
		text := b.SelectedText()
		if text == "" {
			row := b.Cursor().Row
			text = b.Line(row) + "\n"
			res = b.DeleteLines(now)
		} else {
			res = b.DeleteSelection(now)
		}
		s.emit(ClipboardWrite{Text: text})
	default:
		return false
	}
	changed := s.edited(t, res, now)
	switch cmd {
	case commands.Backspace, commands.DeleteForward, commands.DeleteWordBackward, commands.DeleteWordForward:
		s.deleted(t, now)
	}
	return changed
}

// cursorCommand moves the cursors of the active buffer.
func (s *Store) cursorCommand(cmd commands.Command, now int64) bool {
	t := s.activeEditor()
	if t == nil {
		return false
	}
	b := t.Buffer
	page := max(s.st.Layout.ActivePane().ViewHeight-1, 1)
	switch cmd {
	case commands.CursorLeft, commands.SelectLeft:
		b.MoveCursorByGrapheme(-1, cmd == commands.SelectLeft)
	case commands.CursorRight, commands.SelectRight:
		b.MoveCursorByGrapheme(1, cmd == commands.SelectRight)
	case commands.CursorUp, commands.SelectUp:
		b.MoveCursorVertical(-1, cmd == commands.SelectUp)
	case commands.CursorDown, commands.SelectDown:
		b.MoveCursorVertical(1, cmd == commands.SelectDown)
	case commands.CursorWordLeft, commands.SelectWordLeft:
		b.MoveCursorByWord(-1, cmd == commands.SelectWordLeft)
	case commands.CursorWordRight, commands.SelectWordRight:
		b.MoveCursorByWord(1, cmd == commands.SelectWordRight)
	case commands.CursorLineStart, commands.SelectLineStart:
		b.MoveLineStart(cmd == commands.SelectLineStart)
	case commands.CursorLineEnd, commands.SelectLineEnd:
		b.MoveLineEnd(cmd == commands.SelectLineEnd)
	case commands.CursorDocStart, commands.SelectDocStart:
		b.MoveDocStart(cmd == commands.SelectDocStart)
	case commands.CursorDocEnd, commands.SelectDocEnd:
		b.MoveDocEnd(cmd == commands.SelectDocEnd)
	case commands.CursorPageUp:
		b.MoveCursorVertical(-page, false)
		t.Scroll = max(t.Scroll-page, 0)
	case commands.CursorPageDown:
		b.MoveCursorVertical(page, false)
		t.Scroll = min(t.Scroll+page, max(b.LineCount()-1, 0))
	case commands.SelectAll:
		b.SelectAll()
	case commands.AddCursorAbove:
		b.AddCursorVertical(-1)
	case commands.AddCursorBelow:
		b.AddCursorVertical(1)
	case commands.AddNextOccurrence:
		if !b.AddNextOccurrence() {
			return false
		}
	case commands.ClearCursors:
		b.ClearSecondary()
	case commands.JumpToBracket:
		if !b.JumpToMatchingBracket() {
			return false
		}
	case commands.Copy:
		text := b.SelectedText()
		if text == "" {
			text = b.Line(b.Cursor().Row) + "\n"
		}
		s.emit(ClipboardWrite{Text: text})
		return false
	default:
		return false
	}
	s.moved(t, now)
	return true
}

// editorAction applies pointer driven edits and motions to the active tab.
func (s *Store) editorAction(a EditorAction) bool {
	if a.Op == EditInsertText {
		return s.insertText(a.Text, s.now)
	}
	t := s.st.Layout.ActiveTab()
	if t == nil {
		return false
	}
	b := t.Buffer
	switch a.Op {
	case EditSetCursor:
		b.SetCursor(a.Pos)
	case EditExtendSelection:
		b.ExtendSelectionTo(a.Pos)
	case EditSelectWord:
		b.SelectWordAt(a.Pos)
	case EditSelectLine:
		b.SelectLineAt(a.Pos.Row)
	case EditAddCursor:
		b.AddCursor(a.Pos)
	case EditScroll:
		t.Scroll = max(0, min(t.Scroll+a.Delta, b.LineCount()-1))
		return true
	default:
		return false
	}
	s.st.Completion.Close()
	s.scheduleHover(s.now)
	return true
}

const wheelRows = 3

// mouse handles a pointer event the view already resolved to a region.
func (s *Store) mouse(a MouseAction) bool {
	if s.st.UI.Blocked() {
		if a.Kind == MousePress && s.st.UI.Menu != nil {
			s.st.UI.Menu = nil
			return true
		}
		return false
	}
	switch a.Region {
	case RegionEditor:
		return s.editorMouse(a)
	case RegionTabBar:
		p := s.st.Layout.Pane(a.Pane)
		if a.Kind != MousePress || p == nil || p.Tab(a.Col) == nil {
			return false
		}
		s.st.Layout.Active = a.Pane
		p.SetActive(a.Col)
		s.tabSwitched()
		return true
	case RegionExplorer:
		switch a.Kind {
		case MousePress:
			return s.explorerClick(a.Row, a.Now)
		case MouseWheelUp:
			s.st.Explorer.ScrollBy(-wheelRows)
			return true
		case MouseWheelDown:
			s.st.Explorer.ScrollBy(wheelRows)
			return true
		}
	case RegionSearch:
		switch a.Kind {
		case MousePress:
			return s.searchClick(SearchClickRow{Row: a.Row})
		case MouseWheelUp:
			s.st.Search.Scroll(&s.st.Search.Sidebar, -wheelRows)
			return true
		case MouseWheelDown:
			s.st.Search.Scroll(&s.st.Search.Sidebar, wheelRows)
			return true
		}
	case RegionBottomPanel:
		switch a.Kind {
		case MousePress:
			s.st.UI.Focus = FocusBottomPanel
			if s.st.UI.Bottom == BottomSearchResults {
				return s.searchClick(SearchClickRow{Row: a.Row, Panel: true})
			}
			s.selectPanelRow(a.Row)
			return true
		case MouseWheelUp:
			s.scrollPanel(-wheelRows)
			return true
		case MouseWheelDown:
			s.scrollPanel(wheelRows)
			return true
		}
	}
	return false
}

func (s *Store) editorMouse(a MouseAction) bool {
	if s.st.Layout.Pane(a.Pane) == nil {
		return false
	}
	s.st.Layout.Active = a.Pane
	s.st.UI.Focus = FocusEditor
	p := s.st.Layout.ActivePane()
	p.BarFocused = false
	t := p.ActiveTab()
	if t == nil {
		return true
	}
	pos := editor.Position{Row: a.Row, Col: a.Col}
	switch a.Kind {
	case MousePress:
		c := &s.lastEditorClick
		if c.count > 0 && c.row == a.Row && c.col == a.Col && a.Now >= c.at && a.Now-c.at <= s.st.Config.DoubleClickMs {
			c.count = c.count%3 + 1
		} else {
			c.count = 1
		}
		c.row, c.col, c.at = a.Row, a.Col, a.Now
		op := [...]EditorOp{EditSetCursor, EditSelectWord, EditSelectLine}[c.count-1]
		return s.editorAction(EditorAction{Op: op, Pos: pos, Now: a.Now})
	case MouseDrag:
		return s.editorAction(EditorAction{Op: EditExtendSelection, Pos: pos, Now: a.Now})
	case MouseWheelUp:
		return s.editorAction(EditorAction{Op: EditScroll, Delta: -wheelRows})
	case MouseWheelDown:
		return s.editorAction(EditorAction{Op: EditScroll, Delta: wheelRows})
	}
	return false
}

// wordAt returns the identifier around the primary cursor of t.
func wordAt(t *Tab) string {
	r := t.Buffer.Rope()
	pos := t.Buffer.Primary().Pos
	start, end := pos, pos
	for start > 0 && editor.IsWordRune(r.RuneAt(start-1)) {
		start--
	}
	for end < r.Len() && editor.IsWordRune(r.RuneAt(end)) {
		end++
	}
	return r.Slice(start, end)
}

// selectionSeed returns the selected text when it fits on one line.
func selectionSeed(t *Tab) string {
	if t == nil {
		return ""
	}
	text := t.Buffer.SelectedText()
	if strings.ContainsRune(text, '\n') {
		return ""
	}
	return text
}

// jumpTo places the cursor of t at line and col, col measured in enc.
func (s *Store) jumpTo(t *Tab, line, col int, enc lsp.Encoding) {
	r := t.Buffer.Rope()
	line = max(0, min(line, r.LineCount()-1))
	if enc == "" {
		enc = lsp.UTF32
	}
	t.Buffer.SetCursorOffset(r.LineStart(line) + enc.CharCol(r.Line(line), col))
	h := max(s.st.Layout.ActivePane().ViewHeight, 1)
	if line < t.Scroll || line >= t.Scroll+h {
		t.Scroll = max(line-h/3, 0)
	}
}
