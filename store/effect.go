package store

import (
	"github.com/odvcencio/zcode/editor"
	"github.com/odvcencio/zcode/lsp"
	"github.com/odvcencio/zcode/search"
)

// Effect is a side effect requested by the reducer. Effects are plain
// values; the workbench hands each to the adapter that owns it.
type Effect interface{ effect() }

type (
	StartGlobalSearch  struct{ Request search.Request }
	CancelGlobalSearch struct{ ID uint64 }
	StartEditorSearch  struct {
		Pane    int
		Request search.EditorRequest
	}
	CancelEditorSearch struct{ Pane int }
)

type (
	LoadDir  struct{ Path string }
	LoadFile struct{ Path string }
	// WriteFile saves Content as Version of Path.
	WriteFile struct {
		Path    string
		Content string
		Version uint64
	}
	CreateFile struct{ Path string }
	CreateDir  struct{ Path string }
	DeletePath struct {
		Path  string
		IsDir bool
	}
	RenamePath struct {
		From, To  string
		IsDir     bool
		Overwrite bool
	}
	CopyPath struct {
		From, To string
		IsDir    bool
	}
	GitRefreshStatus struct{ Root string }
	// ListFiles lists the workspace for quick open.
	ListFiles struct{ Root string }
)

// Document sync with language servers.
type (
	LspOpen struct {
		Path    string
		Lang    string
		Version uint64
		Text    editor.Rope
	}
	LspChange struct {
		Path    string
		Version uint64
		Deltas  []editor.EditDelta
		Text    editor.Rope
	}
	LspClose struct{ Path string }
	LspSave  struct{ Path string }
)

// LspRequest sends one document request. The request kinds of the
// language server protocol share this shape; the named types below keep
// them apart for adapters and tests.
type (
	LspHoverRequest          struct{ Request lsp.Request }
	LspCompletionRequest     struct{ Request lsp.Request }
	LspSignatureHelpRequest  struct{ Request lsp.Request }
	LspSemanticTokensRequest struct{ Request lsp.Request }
	LspInlayHintsRequest     struct{ Request lsp.Request }
	LspFoldingRangeRequest   struct{ Request lsp.Request }
	LspDefinitionRequest     struct{ Request lsp.Request }
	LspReferencesRequest     struct{ Request lsp.Request }
	LspFormatRequest         struct{ Request lsp.Request }
	LspRenameRequest         struct{ Request lsp.Request }
	LspCodeActionRequest     struct{ Request lsp.Request }
	LspSymbolsRequest        struct{ Request lsp.Request }
)

// LspApplyEdit applies server edits to a file that is not open.
type LspApplyEdit struct {
	Path     string
	Encoding lsp.Encoding
	Edits    []lsp.TextEdit
}

type (
	RestartLspClient struct{ Path string }
	ClipboardWrite   struct{ Text string }
	ClipboardRead    struct{}
)

// EmitPluginNotification sends a notification to a plugin.
type EmitPluginNotification struct {
	PluginID string
	Method   string
	Params   any
}

type (
	TerminalStart struct{ Dir string }
	TerminalWrite struct{ Data string }
)

// AppendHistoryLog appends records to the history log of Path.
// ResetHistoryLog replaces the log.
type (
	AppendHistoryLog struct {
		Path  string
		Lines []string
	}
	ResetHistoryLog struct {
		Path  string
		Lines []string
	}
)

type (
	SaveRanker struct{ Data []byte }
	// ReloadSettings rereads the settings file; the result arrives as
	// SettingsReloaded or SettingsError.
	ReloadSettings struct{}
	Quit           struct{}
)

func (StartGlobalSearch) effect()        {}
func (CancelGlobalSearch) effect()       {}
func (StartEditorSearch) effect()        {}
func (CancelEditorSearch) effect()       {}
func (LoadDir) effect()                  {}
func (LoadFile) effect()                 {}
func (WriteFile) effect()                {}
func (CreateFile) effect()               {}
func (CreateDir) effect()                {}
func (DeletePath) effect()               {}
func (RenamePath) effect()               {}
func (CopyPath) effect()                 {}
func (GitRefreshStatus) effect()         {}
func (ListFiles) effect()                {}
func (LspOpen) effect()                  {}
func (LspChange) effect()                {}
func (LspClose) effect()                 {}
func (LspSave) effect()                  {}
func (LspHoverRequest) effect()          {}
func (LspCompletionRequest) effect()     {}
func (LspSignatureHelpRequest) effect()  {}
func (LspSemanticTokensRequest) effect() {}
func (LspInlayHintsRequest) effect()     {}
func (LspFoldingRangeRequest) effect()   {}
func (LspDefinitionRequest) effect()     {}
func (LspReferencesRequest) effect()     {}
func (LspFormatRequest) effect()         {}
func (LspRenameRequest) effect()         {}
func (LspCodeActionRequest) effect()     {}
func (LspSymbolsRequest) effect()        {}
func (LspApplyEdit) effect()             {}
func (RestartLspClient) effect()         {}
func (ClipboardWrite) effect()           {}
func (ClipboardRead) effect()            {}
func (EmitPluginNotification) effect()   {}
func (TerminalStart) effect()            {}
func (TerminalWrite) effect()            {}
func (AppendHistoryLog) effect()         {}
func (ResetHistoryLog) effect()          {}
func (SaveRanker) effect()               {}
func (ReloadSettings) effect()           {}
func (Quit) effect()                     {}

// LspRequestOf returns the request carried by an LSP request effect.
func LspRequestOf(e Effect) (lsp.Request, bool) {
	switch e := e.(type) {
	case LspHoverRequest:
		return e.Request, true
	case LspCompletionRequest:
		return e.Request, true
	case LspSignatureHelpRequest:
		return e.Request, true
	case LspSemanticTokensRequest:
		return e.Request, true
	case LspInlayHintsRequest:
		return e.Request, true
	case LspFoldingRangeRequest:
		return e.Request, true
	case LspDefinitionRequest:
		return e.Request, true
	case LspReferencesRequest:
		return e.Request, true
	case LspFormatRequest:
		return e.Request, true
	case LspRenameRequest:
		return e.Request, true
	case LspCodeActionRequest:
		return e.Request, true
	case LspSymbolsRequest:
		return e.Request, true
	}
	return lsp.Request{}, false
}

func requestEffect(req lsp.Request) Effect {
	switch req.Kind {
	case lsp.KindHover:
		return LspHoverRequest{req}
	case lsp.KindCompletion:
		return LspCompletionRequest{req}
	case lsp.KindSignatureHelp:
		return LspSignatureHelpRequest{req}
	case lsp.KindSemanticTokens:
		return LspSemanticTokensRequest{req}
	case lsp.KindInlayHints:
		return LspInlayHintsRequest{req}
	case lsp.KindFoldingRange:
		return LspFoldingRangeRequest{req}
	case lsp.KindDefinition:
		return LspDefinitionRequest{req}
	case lsp.KindReferences:
		return LspReferencesRequest{req}
	case lsp.KindFormatting:
		return LspFormatRequest{req}
	case lsp.KindRename:
		return LspRenameRequest{req}
	case lsp.KindCodeAction:
		return LspCodeActionRequest{req}
	}
	return LspSymbolsRequest{req}
}
