package lsp

import (
	json "github.com/goccy/go-json"
)

// Text document sync kinds.
const (
	SyncNone        = 0
	SyncFull        = 1
	SyncIncremental = 2
)

// Capabilities is the subset of server capabilities the editor acts on.
type Capabilities struct {
	Encoding        Encoding
	EncodingKnown   bool
	Sync            int
	SaveIncludeText bool

	CompletionTriggers []string
	SignatureTriggers  []string
	SignatureRetrigger []string

	Legend Legend

	Hover            bool
	Completion       bool
	SignatureHelp    bool
	SemanticTokens   bool
	InlayHints       bool
	FoldingRange     bool
	Definition       bool
	References       bool
	Formatting       bool
	Rename           bool
	CodeAction       bool
	DocumentSymbols  bool
	WorkspaceSymbols bool
}

// Incremental reports whether didChange may carry ranged edits.
func (c Capabilities) Incremental() bool {
	return c.Sync == SyncIncremental && c.EncodingKnown
}

type rawCapabilities struct {
	PositionEncoding   string          `json:"positionEncoding"`
	TextDocumentSync   json.RawMessage `json:"textDocumentSync"`
	CompletionProvider *struct {
		TriggerCharacters []string `json:"triggerCharacters"`
	} `json:"completionProvider"`
	SignatureHelpProvider *struct {
		TriggerCharacters   []string `json:"triggerCharacters"`
		RetriggerCharacters []string `json:"retriggerCharacters"`
	} `json:"signatureHelpProvider"`
	SemanticTokensProvider *struct {
		Legend Legend          `json:"legend"`
		Full   json.RawMessage `json:"full"`
	} `json:"semanticTokensProvider"`
	HoverProvider              json.RawMessage `json:"hoverProvider"`
	InlayHintProvider          json.RawMessage `json:"inlayHintProvider"`
	FoldingRangeProvider       json.RawMessage `json:"foldingRangeProvider"`
	DefinitionProvider         json.RawMessage `json:"definitionProvider"`
	ReferencesProvider         json.RawMessage `json:"referencesProvider"`
	DocumentFormattingProvider json.RawMessage `json:"documentFormattingProvider"`
	RenameProvider             json.RawMessage `json:"renameProvider"`
	CodeActionProvider         json.RawMessage `json:"codeActionProvider"`
	DocumentSymbolProvider     json.RawMessage `json:"documentSymbolProvider"`
	WorkspaceSymbolProvider    json.RawMessage `json:"workspaceSymbolProvider"`
}

// provided interprets a "boolean | options" capability.
func provided(raw json.RawMessage) bool {
	s := string(raw)
	return s != "" && s != "false" && s != "null"
}

// ParseCapabilities reads the capabilities of an initialize result.
// clangd's pre-standard offsetEncoding is honoured when positionEncoding
// is absent.
func ParseCapabilities(result json.RawMessage) (Capabilities, error) {
	var init struct {
		Capabilities   rawCapabilities `json:"capabilities"`
		OffsetEncoding string          `json:"offsetEncoding"`
	}
	if len(result) > 0 {
		if err := json.Unmarshal(result, &init); err != nil {
			return Capabilities{}, err
		}
	}
	raw := init.Capabilities
	var c Capabilities
	name := raw.PositionEncoding
	if name == "" {
		name = init.OffsetEncoding
	}
	if name == "" {
		c.Encoding, c.EncodingKnown = UTF16, true
	} else {
		c.Encoding, c.EncodingKnown = ParseEncoding(name)
	}

	if len(raw.TextDocumentSync) > 0 {
		var kind int
		if err := json.Unmarshal(raw.TextDocumentSync, &kind); err == nil {
			c.Sync = kind
		} else {
			var opts struct {
				Change int             `json:"change"`
				Save   json.RawMessage `json:"save"`
			}
			if err := json.Unmarshal(raw.TextDocumentSync, &opts); err == nil {
				c.Sync = opts.Change
				var save struct {
					IncludeText bool `json:"includeText"`
				}
				if json.Unmarshal(opts.Save, &save) == nil {
					c.SaveIncludeText = save.IncludeText
				}
			}
		}
	}
	if p := raw.CompletionProvider; p != nil {
		c.Completion = true
		c.CompletionTriggers = p.TriggerCharacters
	}
	if p := raw.SignatureHelpProvider; p != nil {
		c.SignatureHelp = true
		c.SignatureTriggers = p.TriggerCharacters
		c.SignatureRetrigger = p.RetriggerCharacters
	}
	if p := raw.SemanticTokensProvider; p != nil && provided(p.Full) {
		c.SemanticTokens = true
		c.Legend = p.Legend
	}
	c.Hover = provided(raw.HoverProvider)
	c.InlayHints = provided(raw.InlayHintProvider)
	c.FoldingRange = provided(raw.FoldingRangeProvider)
	c.Definition = provided(raw.DefinitionProvider)
	c.References = provided(raw.ReferencesProvider)
	c.Formatting = provided(raw.DocumentFormattingProvider)
	c.Rename = provided(raw.RenameProvider)
	c.CodeAction = provided(raw.CodeActionProvider)
	c.DocumentSymbols = provided(raw.DocumentSymbolProvider)
	c.WorkspaceSymbols = provided(raw.WorkspaceSymbolProvider)
	return c, nil
}

// Supports reports whether the server advertised the feature behind kind.
func (c Capabilities) Supports(kind RequestKind) bool {
	switch kind {
	case KindHover:
		return c.Hover
	case KindCompletion:
		return c.Completion
	case KindSignatureHelp:
		return c.SignatureHelp
	case KindSemanticTokens:
		return c.SemanticTokens
	case KindInlayHints:
		return c.InlayHints
	case KindFoldingRange:
		return c.FoldingRange
	case KindDefinition:
		return c.Definition
	case KindReferences:
		return c.References
	case KindFormatting:
		return c.Formatting
	case KindRename:
		return c.Rename
	case KindCodeAction:
		return c.CodeAction
	case KindDocumentSymbols:
		return c.DocumentSymbols
	case KindWorkspaceSymbols:
		return c.WorkspaceSymbols
	}
	return false
}
