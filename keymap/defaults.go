package keymap

import "github.com/odvcencio/zcode/commands"

// DefaultBindings returns the built-in bindings. Palette shortcuts are bound
// in Global for file, app and view commands and in Editor for edit and
// language commands.
func DefaultBindings() []Binding {
	var out []Binding
	for _, info := range commands.AllCommands() {
		if info.Shortcut == "" {
			continue
		}
		switch info.Category {
		case "File", "App", "View":
			out = append(out, Binding{Key: info.Shortcut, Command: info.Command, Context: Global})
		case "Edit", "Language":
			out = append(out, Binding{Key: info.Shortcut, Command: info.Command, Context: Editor})
		}
	}
	add := func(ctx Context, pairs ...any) {
		for i := 0; i+1 < len(pairs); i += 2 {
			out = append(out, Binding{Key: pairs[i].(string), Command: pairs[i+1].(commands.Command), Context: ctx})
		}
	}
	add(Editor,
		"left", commands.CursorLeft, "right", commands.CursorRight,
		"up", commands.CursorUp, "down", commands.CursorDown,
		"ctrl+left", commands.CursorWordLeft, "ctrl+right", commands.CursorWordRight,
		"alt+left", commands.CursorWordLeft, "alt+right", commands.CursorWordRight,
		"home", commands.CursorLineStart, "end", commands.CursorLineEnd,
		"ctrl+home", commands.CursorDocStart, "ctrl+end", commands.CursorDocEnd,
		"pgup", commands.CursorPageUp, "pgdown", commands.CursorPageDown,
		"shift+left", commands.SelectLeft, "shift+right", commands.SelectRight,
		"shift+up", commands.SelectUp, "shift+down", commands.SelectDown,
		"ctrl+shift+left", commands.SelectWordLeft, "ctrl+shift+right", commands.SelectWordRight,
		"shift+home", commands.SelectLineStart, "shift+end", commands.SelectLineEnd,
		"ctrl+shift+home", commands.SelectDocStart, "ctrl+shift+end", commands.SelectDocEnd,
		"enter", commands.Newline, "backspace", commands.Backspace,
		"delete", commands.DeleteForward, "alt+backspace", commands.DeleteWordBackward,
		"alt+delete", commands.DeleteWordForward,
		"tab", commands.InsertTab, "esc", commands.ClearCursors,
		"ctrl+@", commands.LspCompletion,
	)
	add(Completion,
		"up", commands.CompletionPrev, "down", commands.CompletionNext,
		"enter", commands.CompletionAccept, "tab", commands.CompletionAccept,
		"esc", commands.CompletionDismiss,
	)
	add(EditorSearchBar,
		"enter", commands.FindNext, "esc", commands.SearchBarClose,
		"tab", commands.SearchBarToggleField, "alt+c", commands.SearchToggleCase,
		"alt+r", commands.SearchToggleRegex, "ctrl+r", commands.ReplaceCurrent,
		"alt+a", commands.ReplaceAll, "up", commands.FindPrev, "down", commands.FindNext,
	)
	add(Explorer,
		"up", commands.ExplorerUp, "down", commands.ExplorerDown,
		"k", commands.ExplorerUp, "j", commands.ExplorerDown,
		"right", commands.ExplorerExpand, "left", commands.ExplorerCollapse,
		"enter", commands.ExplorerActivate, "a", commands.ExplorerNewFile,
		"A", commands.ExplorerNewFolder, "f2", commands.ExplorerRename, "r", commands.ExplorerRename,
		"delete", commands.ExplorerDelete, "d", commands.ExplorerDelete,
		"ctrl+x", commands.ExplorerCut, "ctrl+c", commands.ExplorerCopy, "ctrl+v", commands.ExplorerPaste,
		"f5", commands.ExplorerRefresh, "esc", commands.FocusEditor,
	)
	add(SearchInput,
		"enter", commands.SearchRun, "alt+c", commands.SearchToggleCase,
		"alt+r", commands.SearchToggleRegex, "down", commands.SearchNextResult,
		"up", commands.SearchPrevResult, "esc", commands.SearchCancel,
	)
	add(SearchResults,
		"up", commands.SearchPrevResult, "down", commands.SearchNextResult,
		"enter", commands.SearchOpenResult, "space", commands.SearchToggleExpand,
		"esc", commands.FocusEditor,
	)
	add(BottomPanel,
		"up", commands.ListUp, "down", commands.ListDown,
		"enter", commands.ListActivate, "esc", commands.FocusEditor,
	)
	add(Terminal,
		"ctrl+q", commands.Quit, "ctrl+t", commands.FocusEditor,
		"ctrl+j", commands.ToggleBottomPanel,
	)
	add(Palette,
		"up", commands.ListUp, "down", commands.ListDown,
		"enter", commands.DialogConfirm, "esc", commands.DialogCancel,
	)
	add(Dialog,
		"enter", commands.DialogConfirm, "esc", commands.DialogCancel,
	)
	add(Confirm,
		"enter", commands.DialogConfirm, "y", commands.DialogConfirm,
		"esc", commands.DialogCancel, "n", commands.DialogCancel,
	)
	return out
}
