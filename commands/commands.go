package commands

import "strings"

// Command identifies something the user can run from a key, the palette or
// a plugin. Built-in commands are dotted ids; custom and plugin commands
// carry a prefix.
type Command string

const (
	customPrefix = "custom:"
	pluginPrefix = "plugin:"
)

// Custom wraps a name that no built-in command claims.
func Custom(name string) Command { return Command(customPrefix + name) }

// Plugin names a command registered by a plugin.
func Plugin(pluginID, commandID string) Command {
	return Command(pluginPrefix + pluginID + ":" + commandID)
}

// IsCustom reports whether c was built by Custom.
func (c Command) IsCustom() bool { return strings.HasPrefix(string(c), customPrefix) }

// CustomName returns the name given to Custom.
func (c Command) CustomName() string { return strings.TrimPrefix(string(c), customPrefix) }

// PluginParts splits a plugin command into plugin and command ids.
func (c Command) PluginParts() (pluginID, commandID string, ok bool) {
	rest, found := strings.CutPrefix(string(c), pluginPrefix)
	if !found {
		return "", "", false
	}
	pluginID, commandID, ok = strings.Cut(rest, ":")
	if !ok || pluginID == "" || commandID == "" {
		return "", "", false
	}
	return pluginID, commandID, true
}

// File
const (
	Save       Command = "file.save"
	SaveAll    Command = "file.saveAll"
	NewFile    Command = "file.new"
	OpenFile   Command = "file.open"
	CloseTab   Command = "file.close"
	GotoLine   Command = "file.gotoLine"
	QuickOpen  Command = "file.quickOpen"
	RevertFile Command = "file.revert"
)

// App
const (
	Quit           Command = "app.quit"
	CommandPalette Command = "app.palette"
	ReloadSettings Command = "app.reloadSettings"
)

// View
const (
	ToggleSidebar     Command = "view.sidebar"
	ShowExplorer      Command = "view.explorer"
	ShowSearch        Command = "view.search"
	ToggleBottomPanel Command = "view.bottomPanel"
	ShowTerminal      Command = "view.terminal"
	ShowProblems      Command = "view.problems"
	ShowSearchResults Command = "view.searchResults"
	ShowLogs          Command = "view.logs"
	ShowLocations     Command = "view.locations"
	ShowSymbols       Command = "view.symbols"
	ShowCodeActions   Command = "view.codeActions"
	FocusEditor       Command = "view.focusEditor"
	FocusExplorer     Command = "view.focusExplorer"
	SplitPane         Command = "view.split"
	ClosePane         Command = "view.closePane"
	FocusNextPane     Command = "view.nextPane"
	NextTab           Command = "view.nextTab"
	PrevTab           Command = "view.prevTab"
	ToggleFold        Command = "view.toggleFold"
	FoldAll           Command = "view.foldAll"
	UnfoldAll         Command = "view.unfoldAll"
)

// Edit
const (
	Undo               Command = "edit.undo"
	Redo               Command = "edit.redo"
	Copy               Command = "edit.copy"
	Cut                Command = "edit.cut"
	Paste              Command = "edit.paste"
	SelectAll          Command = "edit.selectAll"
	Find               Command = "edit.find"
	Replace            Command = "edit.replace"
	FindNext           Command = "edit.findNext"
	FindPrev           Command = "edit.findPrev"
	ReplaceCurrent     Command = "edit.replaceCurrent"
	ReplaceAll         Command = "edit.replaceAll"
	DeleteLine         Command = "edit.deleteLine"
	DuplicateLine      Command = "edit.duplicateLine"
	MoveLineUp         Command = "edit.moveLineUp"
	MoveLineDown       Command = "edit.moveLineDown"
	Indent             Command = "edit.indent"
	Outdent            Command = "edit.outdent"
	AddCursorAbove     Command = "edit.addCursorAbove"
	AddCursorBelow     Command = "edit.addCursorBelow"
	AddNextOccurrence  Command = "edit.addNextOccurrence"
	ClearCursors       Command = "edit.clearCursors"
	JumpToBracket      Command = "edit.jumpToBracket"
	Newline            Command = "edit.newline"
	Backspace          Command = "edit.backspace"
	DeleteForward      Command = "edit.delete"
	DeleteWordBackward Command = "edit.deleteWordBackward"
	DeleteWordForward  Command = "edit.deleteWordForward"
	InsertTab          Command = "edit.tab"
)

// Cursor motion. The Select variants extend the selection.
const (
	CursorLeft      Command = "cursor.left"
	CursorRight     Command = "cursor.right"
	CursorUp        Command = "cursor.up"
	CursorDown      Command = "cursor.down"
	CursorWordLeft  Command = "cursor.wordLeft"
	CursorWordRight Command = "cursor.wordRight"
	CursorLineStart Command = "cursor.lineStart"
	CursorLineEnd   Command = "cursor.lineEnd"
	CursorDocStart  Command = "cursor.docStart"
	CursorDocEnd    Command = "cursor.docEnd"
	CursorPageUp    Command = "cursor.pageUp"
	CursorPageDown  Command = "cursor.pageDown"
	SelectLeft      Command = "cursor.selectLeft"
	SelectRight     Command = "cursor.selectRight"
	SelectUp        Command = "cursor.selectUp"
	SelectDown      Command = "cursor.selectDown"
	SelectWordLeft  Command = "cursor.selectWordLeft"
	SelectWordRight Command = "cursor.selectWordRight"
	SelectLineStart Command = "cursor.selectLineStart"
	SelectLineEnd   Command = "cursor.selectLineEnd"
	SelectDocStart  Command = "cursor.selectDocStart"
	SelectDocEnd    Command = "cursor.selectDocEnd"
)

// Language server
const (
	LspHover            Command = "lsp.hover"
	LspCompletion       Command = "lsp.completion"
	LspSignatureHelp    Command = "lsp.signatureHelp"
	LspSemanticTokens   Command = "lsp.semanticTokens"
	LspInlayHints       Command = "lsp.inlayHints"
	LspFoldingRange     Command = "lsp.foldingRange"
	LspDefinition       Command = "lsp.definition"
	LspReferences       Command = "lsp.references"
	LspFormat           Command = "lsp.format"
	LspRename           Command = "lsp.rename"
	LspCodeActions      Command = "lsp.codeActions"
	LspDocumentSymbols  Command = "lsp.documentSymbols"
	LspWorkspaceSymbols Command = "lsp.workspaceSymbols"
	LspRestart          Command = "lsp.restart"
)

// Completion popup
const (
	CompletionAccept  Command = "completion.accept"
	CompletionNext    Command = "completion.next"
	CompletionPrev    Command = "completion.prev"
	CompletionDismiss Command = "completion.dismiss"
)

// Explorer
const (
	ExplorerUp        Command = "explorer.up"
	ExplorerDown      Command = "explorer.down"
	ExplorerExpand    Command = "explorer.expand"
	ExplorerCollapse  Command = "explorer.collapse"
	ExplorerActivate  Command = "explorer.activate"
	ExplorerNewFile   Command = "explorer.newFile"
	ExplorerNewFolder Command = "explorer.newFolder"
	ExplorerRename    Command = "explorer.rename"
	ExplorerDelete    Command = "explorer.delete"
	ExplorerCut       Command = "explorer.cut"
	ExplorerCopy      Command = "explorer.copy"
	ExplorerPaste     Command = "explorer.paste"
	ExplorerRefresh   Command = "explorer.refresh"
)

// Search sidebar and results
const (
	SearchRun          Command = "search.run"
	SearchToggleCase   Command = "search.toggleCase"
	SearchToggleRegex  Command = "search.toggleRegex"
	SearchNextResult   Command = "search.nextResult"
	SearchPrevResult   Command = "search.prevResult"
	SearchOpenResult   Command = "search.openResult"
	SearchToggleExpand Command = "search.toggleExpand"
	SearchCancel       Command = "search.cancel"
)

// Dialogs and lists
const (
	DialogConfirm        Command = "dialog.confirm"
	DialogCancel         Command = "dialog.cancel"
	ListUp               Command = "list.up"
	ListDown             Command = "list.down"
	ListActivate         Command = "list.activate"
	SearchBarToggleField Command = "searchBar.toggleField"
	SearchBarClose       Command = "searchBar.close"
)

// Info describes a command for the palette.
type Info struct {
	Command  Command
	Label    string
	Shortcut string
	Category string
}

var table = []Info{
	{Save, "Save File", "ctrl+s", "File"},
	{SaveAll, "Save All", "", "File"},
	{NewFile, "New File", "ctrl+n", "File"},
	{OpenFile, "Open File...", "ctrl+o", "File"},
	{QuickOpen, "Quick Open", "ctrl+p", "File"},
	{CloseTab, "Close Tab", "ctrl+w", "File"},
	{GotoLine, "Go to Line...", "ctrl+g", "File"},
	{RevertFile, "Revert File", "", "File"},
	{Quit, "Quit", "ctrl+q", "App"},
	{CommandPalette, "Command Palette", "ctrl+k", "App"},
	{ReloadSettings, "Reload Settings", "", "App"},
	{ToggleSidebar, "Toggle Sidebar", "ctrl+b", "View"},
	{ShowExplorer, "Show Explorer", "ctrl+e", "View"},
	{ShowSearch, "Search in Files", "alt+f", "View"},
	{ToggleBottomPanel, "Toggle Bottom Panel", "ctrl+j", "View"},
	{ShowTerminal, "Show Terminal", "ctrl+t", "View"},
	{ShowProblems, "Show Problems", "", "View"},
	{ShowSearchResults, "Show Search Results", "", "View"},
	{ShowLogs, "Show Logs", "", "View"},
	{ShowLocations, "Show Locations", "", "View"},
	{ShowSymbols, "Show Symbols", "", "View"},
	{ShowCodeActions, "Show Code Actions", "", "View"},
	{FocusEditor, "Focus Editor", "", "View"},
	{FocusExplorer, "Focus Explorer", "", "View"},
	{SplitPane, "Split Editor", "ctrl+\\", "View"},
	{ClosePane, "Close Pane", "", "View"},
	{FocusNextPane, "Focus Next Pane", "f6", "View"},
	{NextTab, "Next Tab", "ctrl+pgdown", "View"},
	{PrevTab, "Previous Tab", "ctrl+pgup", "View"},
	{ToggleFold, "Toggle Fold", "ctrl+]", "View"},
	{FoldAll, "Fold All", "", "View"},
	{UnfoldAll, "Unfold All", "", "View"},
	{Undo, "Undo", "ctrl+z", "Edit"},
	{Redo, "Redo", "ctrl+y", "Edit"},
	{Copy, "Copy", "ctrl+c", "Edit"},
	{Cut, "Cut", "ctrl+x", "Edit"},
	{Paste, "Paste", "ctrl+v", "Edit"},
	{SelectAll, "Select All", "ctrl+a", "Edit"},
	{Find, "Find", "ctrl+f", "Edit"},
	{Replace, "Replace", "ctrl+h", "Edit"},
	{FindNext, "Find Next", "f3", "Edit"},
	{FindPrev, "Find Previous", "shift+f3", "Edit"},
	{ReplaceCurrent, "Replace Current Match", "", "Edit"},
	{ReplaceAll, "Replace All", "", "Edit"},
	{DeleteLine, "Delete Line", "alt+k", "Edit"},
	{DuplicateLine, "Duplicate Line", "alt+d", "Edit"},
	{MoveLineUp, "Move Line Up", "alt+up", "Edit"},
	{MoveLineDown, "Move Line Down", "alt+down", "Edit"},
	{Indent, "Indent", "", "Edit"},
	{Outdent, "Outdent", "shift+tab", "Edit"},
	{AddCursorAbove, "Add Cursor Above", "ctrl+alt+up", "Edit"},
	{AddCursorBelow, "Add Cursor Below", "ctrl+alt+down", "Edit"},
	{AddNextOccurrence, "Add Next Occurrence", "ctrl+d", "Edit"},
	{JumpToBracket, "Jump to Matching Bracket", "alt+m", "Edit"},
	{LspHover, "Show Hover", "alt+h", "Language"},
	{LspCompletion, "Trigger Completion", "ctrl+@", "Language"},
	{LspSignatureHelp, "Signature Help", "", "Language"},
	{LspDefinition, "Go to Definition", "f12", "Language"},
	{LspReferences, "Find References", "shift+f12", "Language"},
	{LspFormat, "Format Document", "alt+l", "Language"},
	{LspRename, "Rename Symbol", "f2", "Language"},
	{LspCodeActions, "Code Actions", "alt+.", "Language"},
	{LspDocumentSymbols, "Document Symbols", "ctrl+r", "Language"},
	{LspWorkspaceSymbols, "Workspace Symbols", "", "Language"},
	{LspRestart, "Restart Language Server", "", "Language"},
	{ExplorerNewFile, "New File in Explorer", "", "Explorer"},
	{ExplorerNewFolder, "New Folder", "", "Explorer"},
	{ExplorerRename, "Rename", "", "Explorer"},
	{ExplorerDelete, "Delete", "", "Explorer"},
	{ExplorerRefresh, "Refresh Explorer", "", "Explorer"},
	{SearchToggleCase, "Toggle Case Sensitive Search", "alt+c", "Search"},
	{SearchToggleRegex, "Toggle Regex Search", "alt+r", "Search"},
	{SearchCancel, "Cancel Search", "", "Search"},
}

var byCommand = func() map[Command]Info {
	m := make(map[Command]Info, len(table))
	for _, info := range table {
		m[info.Command] = info
	}
	return m
}()

// known holds every built-in command, listed in the palette or not.
var known = func() map[Command]struct{} {
	m := make(map[Command]struct{})
	for _, info := range table {
		m[info.Command] = struct{}{}
	}
	for _, c := range []Command{
		Backspace, DeleteForward, DeleteWordBackward, DeleteWordForward, Newline, InsertTab, ClearCursors,
		CursorLeft, CursorRight, CursorUp, CursorDown, CursorWordLeft, CursorWordRight,
		CursorLineStart, CursorLineEnd, CursorDocStart, CursorDocEnd, CursorPageUp, CursorPageDown,
		SelectLeft, SelectRight, SelectUp, SelectDown, SelectWordLeft, SelectWordRight,
		SelectLineStart, SelectLineEnd, SelectDocStart, SelectDocEnd,
		LspSemanticTokens, LspInlayHints, LspFoldingRange,
		CompletionAccept, CompletionNext, CompletionPrev, CompletionDismiss,
		ExplorerUp, ExplorerDown, ExplorerExpand, ExplorerCollapse, ExplorerActivate,
		ExplorerCut, ExplorerCopy, ExplorerPaste,
		SearchRun, SearchNextResult, SearchPrevResult, SearchOpenResult, SearchToggleExpand,
		DialogConfirm, DialogCancel, ListUp, ListDown, ListActivate,
		SearchBarToggleField, SearchBarClose,
	} {
		m[c] = struct{}{}
	}
	return m
}()

// Parse maps a command name from settings to a Command. Names no built-in
// claims become Custom; plugin names are kept as is. An empty name reports
// false.
func Parse(name string) (Command, bool) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", false
	}
	c := Command(name)
	if _, ok := known[c]; ok {
		return c, true
	}
	if _, _, ok := c.PluginParts(); ok {
		return c, true
	}
	if c.IsCustom() {
		return c, true
	}
	return Custom(name), true
}

// IsBuiltin reports whether c is one of the commands above.
func IsBuiltin(c Command) bool {
	_, ok := known[c]
	return ok
}

// Lookup returns palette metadata for c.
func Lookup(c Command) (Info, bool) {
	info, ok := byCommand[c]
	return info, ok
}

// AllCommands returns the built-in palette commands in display order.
func AllCommands() []Info {
	out := make([]Info, len(table))
	copy(out, table)
	return out
}
