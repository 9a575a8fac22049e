package store

import (
	"github.com/odvcencio/zcode/commands"
	"github.com/odvcencio/zcode/editor"
	"github.com/odvcencio/zcode/explorer"
	"github.com/odvcencio/zcode/lsp"
	"github.com/odvcencio/zcode/plugin"
	"github.com/odvcencio/zcode/search"
	"github.com/odvcencio/zcode/settings"
)

// Action is the only input of the reducer. Anything time dependent is
// carried in the action; Now fields are Unix milliseconds.
type Action interface{ action() }

// RunCommand runs a command as if its key was pressed.
type RunCommand struct {
	Command commands.Command
	Now     int64
}

// EditorOp selects what an EditorAction does to the active buffer.
type EditorOp int

const (
	EditInsertText EditorOp = iota
	EditSetCursor
	EditExtendSelection
	EditSelectWord
	EditSelectLine
	EditAddCursor
	EditScroll
)

// EditorAction edits or moves within the active tab. Pos is a buffer
// position; Delta is a line count for EditScroll.
type EditorAction struct {
	Op    EditorOp
	Text  string
	Pos   editor.Position
	Delta int
	Now   int64
}

// TypeText is text typed with no binding, delivered to the focused target.
type TypeText struct {
	Text string
	Now  int64
}

// Paste is bracketed paste input.
type Paste struct {
	Text string
	Now  int64
}

// OpenPath asks to open a file in the active pane.
type OpenPath struct {
	Path string
	// Line and Col position the cursor once loaded; Line < 0 keeps it.
	Line, Col int
}

// FileLoaded delivers a file's content. History is a recovered undo DAG for
// it, nil when none was found; Head is the text at its HEAD.
type FileLoaded struct {
	Path    string
	Content string
	History *editor.History
	Head    editor.Rope
}

// FileLoadError reports that a file could not be read.
type FileLoadError struct {
	Path string
	Err  string
}

// FileSaved reports that Version of Path reached the disk.
type FileSaved struct {
	Path    string
	Version uint64
}

// CloseTabAt closes a tab without asking.
type CloseTabAt struct {
	Pane int
	Tab  int
}

// DirLoaded delivers a directory listing.
type DirLoaded struct {
	Path    string
	Entries []explorer.Entry
}

// DirLoadError reports a failed directory listing.
type DirLoadError struct {
	Path string
	Err  string
}

// PathCreated, PathDeleted and PathRenamed confirm filesystem changes.
type PathCreated struct {
	Path  string
	IsDir bool
}

type PathDeleted struct {
	Path string
}

type PathRenamed struct {
	From, To string
	IsDir    bool
}

// FsOpError reports a failed filesystem operation.
type FsOpError struct {
	Op   string
	Path string
	Err  string
}

// FilesListed fills the quick open palette.
type FilesListed struct {
	Files     []search.File
	Truncated bool
	Err       string
}

// GitStatusLoaded delivers the porcelain status of the repository.
type GitStatusLoaded struct {
	RepoRoot string
	Statuses map[string]explorer.GitStatus
}

// Explorer actions. Rows index Explorer.Rows.
type (
	ExplorerClickRow struct {
		Row int
		Now int64
	}
	ExplorerScroll struct{ Delta int }
	// ExplorerDrop moves Payload onto the topmost target under (X, Y)
	// that accepts it.
	ExplorerDrop struct {
		Payload explorer.Payload
		Targets []explorer.Target
		X, Y    int
	}
)

// Search actions.
type (
	GlobalSearchMsg struct{ Msg search.Message }
	EditorSearchMsg struct{ Msg search.EditorMessage }
	// SearchClickRow clicks a result item. Row indexes Search.Items.
	SearchClickRow struct {
		Row   int
		Panel bool
	}
)

// Language server actions. Each wraps the event the session delivered.
type (
	LspDiagnostics    struct{ lsp.DiagnosticsEvent }
	LspSemanticTokens struct{ lsp.SemanticTokensEvent }
	LspHover          struct{ lsp.HoverEvent }
	LspCompletion     struct {
		lsp.CompletionEvent
		Now int64
	}
	LspSignatureHelp struct{ lsp.SignatureHelpEvent }
	LspInlayHints    struct{ lsp.InlayHintsEvent }
	LspFoldingRanges struct{ lsp.FoldingRangesEvent }
	LspLocations     struct{ lsp.LocationsEvent }
	LspSymbols       struct{ lsp.SymbolsEvent }
	LspCodeActions   struct{ lsp.CodeActionsEvent }
	LspEdits         struct {
		lsp.EditsEvent
		Now int64
	}
	LspWorkspaceEdit struct {
		lsp.ApplyEditEvent
		Now int64
	}
	LspRequestFailed struct{ lsp.RequestFailedEvent }
	LspServerState   struct{ lsp.StateEvent }
)

// FromLspEvent wraps a session event in its action. now stamps edits.
func FromLspEvent(ev lsp.Event, now int64) (Action, bool) {
	switch ev := ev.(type) {
	case lsp.DiagnosticsEvent:
		return LspDiagnostics{ev}, true
	case lsp.SemanticTokensEvent:
		return LspSemanticTokens{ev}, true
	case lsp.HoverEvent:
		return LspHover{ev}, true
	case lsp.CompletionEvent:
		return LspCompletion{ev, now}, true
	case lsp.SignatureHelpEvent:
		return LspSignatureHelp{ev}, true
	case lsp.InlayHintsEvent:
		return LspInlayHints{ev}, true
	case lsp.FoldingRangesEvent:
		return LspFoldingRanges{ev}, true
	case lsp.LocationsEvent:
		return LspLocations{ev}, true
	case lsp.SymbolsEvent:
		return LspSymbols{ev}, true
	case lsp.CodeActionsEvent:
		return LspCodeActions{ev}, true
	case lsp.EditsEvent:
		return LspEdits{ev, now}, true
	case lsp.ApplyEditEvent:
		return LspWorkspaceEdit{ev, now}, true
	case lsp.RequestFailedEvent:
		return LspRequestFailed{ev}, true
	case lsp.StateEvent:
		return LspServerState{ev}, true
	}
	return nil, false
}

// Plugin actions.
type (
	PluginRegistered struct{ plugin.RegisteredEvent }
	PluginPatched    struct{ plugin.PatchEvent }
	PluginOnline     struct{ plugin.OnlineEvent }
	PluginOffline    struct{ plugin.OfflineEvent }
	PluginLog        struct{ plugin.LogEvent }
)

// FromPluginEvent wraps a host event in its action.
func FromPluginEvent(ev plugin.Event) (Action, bool) {
	switch ev := ev.(type) {
	case plugin.RegisteredEvent:
		return PluginRegistered{ev}, true
	case plugin.PatchEvent:
		return PluginPatched{ev}, true
	case plugin.OnlineEvent:
		return PluginOnline{ev}, true
	case plugin.OfflineEvent:
		return PluginOffline{ev}, true
	case plugin.LogEvent:
		return PluginLog{ev}, true
	}
	return nil, false
}

// SettingsReloaded replaces keymap, theme and editor config at once.
type SettingsReloaded struct {
	Settings *settings.File
}

// SettingsError reports a settings file that could not be used.
type SettingsError struct{ Err string }

// LogLine appends to the Logs tab.
type LogLine struct{ Line string }

// TerminalOutput appends shell output to the terminal tab.
type TerminalOutput struct{ Data string }

// TerminalExited reports the end of the shell.
type TerminalExited struct{ Err string }

// ClipboardText answers a ClipboardRead.
type ClipboardText struct {
	Text string
	Now  int64
}

// Tick drives debounce deadlines.
type Tick struct{ Now int64 }

// Resize reports the terminal size in cells.
type Resize struct{ Width, Height int }

// Dialog and context menu actions. Text fields of dialogs are edited
// through TypeText and the list/dialog commands.
type (
	OpenContextMenu struct {
		X, Y int
		Path string
	}
	ContextMenuSelect struct{ Index int }
)

// MouseKind classifies mouse input.
type MouseKind int

const (
	MousePress MouseKind = iota
	MouseDrag
	MouseRelease
	MouseWheelUp
	MouseWheelDown
)

// MouseAction is mouse input already resolved to a region by the view.
// In the editor Row and Col are a buffer position; on the tab bar Col is
// the tab index; in lists Row is the item index.
type MouseAction struct {
	Kind   MouseKind
	Region Region
	Row    int
	Col    int
	Pane   int
	Now    int64
}

// Region is the part of the screen a mouse event hit.
type Region int

const (
	RegionNone Region = iota
	RegionEditor
	RegionTabBar
	RegionExplorer
	RegionSearch
	RegionBottomPanel
)

func (RunCommand) action()        {}
func (EditorAction) action()      {}
func (TypeText) action()          {}
func (Paste) action()             {}
func (OpenPath) action()          {}
func (FileLoaded) action()        {}
func (FileLoadError) action()     {}
func (FileSaved) action()         {}
func (CloseTabAt) action()        {}
func (DirLoaded) action()         {}
func (DirLoadError) action()      {}
func (PathCreated) action()       {}
func (PathDeleted) action()       {}
func (PathRenamed) action()       {}
func (FsOpError) action()         {}
func (GitStatusLoaded) action()   {}
func (FilesListed) action()       {}
func (ExplorerClickRow) action()  {}
func (ExplorerScroll) action()    {}
func (ExplorerDrop) action()      {}
func (GlobalSearchMsg) action()   {}
func (EditorSearchMsg) action()   {}
func (SearchClickRow) action()    {}
func (LspDiagnostics) action()    {}
func (LspSemanticTokens) action() {}
func (LspHover) action()          {}
func (LspCompletion) action()     {}
func (LspSignatureHelp) action()  {}
func (LspInlayHints) action()     {}
func (LspFoldingRanges) action()  {}
func (LspLocations) action()      {}
func (LspSymbols) action()        {}
func (LspCodeActions) action()    {}
func (LspEdits) action()          {}
func (LspWorkspaceEdit) action()  {}
func (LspRequestFailed) action()  {}
func (LspServerState) action()    {}
func (PluginRegistered) action()  {}
func (PluginPatched) action()     {}
func (PluginOnline) action()      {}
func (PluginOffline) action()     {}
func (PluginLog) action()         {}
func (SettingsReloaded) action()  {}
func (SettingsError) action()     {}
func (LogLine) action()           {}
func (TerminalOutput) action()    {}
func (TerminalExited) action()    {}
func (ClipboardText) action()     {}
func (Tick) action()              {}
func (Resize) action()            {}
func (OpenContextMenu) action()   {}
func (ContextMenuSelect) action() {}
func (MouseAction) action()       {}
