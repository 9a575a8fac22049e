package lsp

import (
	"strings"

	json "github.com/goccy/go-json"
)

// Position in a text document: zero based line and a column in the
// negotiated position encoding.
type Position struct {
	Line      int `json:"line"`
	Character int `json:"character"`
}

// Range in a text document.
type Range struct {
	Start Position `json:"start"`
	End   Position `json:"end"`
}

// Location links a range in a document to a URI.
type Location struct {
	URI   string `json:"uri"`
	Range Range  `json:"range"`
}

// LocationLink is the richer form servers may return for definitions.
type LocationLink struct {
	TargetURI            string `json:"targetUri"`
	TargetRange          Range  `json:"targetRange"`
	TargetSelectionRange Range  `json:"targetSelectionRange"`
}

// TextDocumentIdentifier identifies a text document.
type TextDocumentIdentifier struct {
	URI string `json:"uri"`
}

// VersionedTextDocumentIdentifier identifies a document at a version.
type VersionedTextDocumentIdentifier struct {
	URI     string `json:"uri"`
	Version int    `json:"version"`
}

// TextDocumentItem represents a text document transferred from client to server.
type TextDocumentItem struct {
	URI        string `json:"uri"`
	LanguageID string `json:"languageId"`
	Version    int    `json:"version"`
	Text       string `json:"text"`
}

// ContentChange is one entry of didChange. A nil Range replaces the whole
// document.
type ContentChange struct {
	Range *Range `json:"range,omitempty"`
	Text  string `json:"text"`
}

// CompletionItemKind values used by the popup and ranker.
const (
	CompletionText        = 1
	CompletionMethod      = 2
	CompletionFunction    = 3
	CompletionConstructor = 4
	CompletionField       = 5
	CompletionVariable    = 6
	CompletionClass       = 7
	CompletionInterface   = 8
	CompletionModule      = 9
	CompletionProperty    = 10
	CompletionKeyword     = 14
	CompletionSnippet     = 15
	CompletionFile        = 17
	CompletionConstant    = 21
	CompletionStruct      = 22
)

// InsertTextFormatSnippet marks InsertText or TextEdit.NewText as a snippet.
const InsertTextFormatSnippet = 2

// CompletionItem represents a completion suggestion.
type CompletionItem struct {
	Label            string          `json:"label"`
	Kind             int             `json:"kind,omitempty"`
	Detail           string          `json:"detail,omitempty"`
	Documentation    json.RawMessage `json:"documentation,omitempty"`
	SortText         string          `json:"sortText,omitempty"`
	FilterText       string          `json:"filterText,omitempty"`
	InsertText       string          `json:"insertText,omitempty"`
	InsertTextFormat int             `json:"insertTextFormat,omitempty"`
	TextEdit         *TextEdit       `json:"textEdit,omitempty"`
	Preselect        bool            `json:"preselect,omitempty"`
}

// IsSnippet reports whether the insert text uses snippet syntax.
func (c CompletionItem) IsSnippet() bool { return c.InsertTextFormat == InsertTextFormatSnippet }

// Text returns what accepting the item inserts, before snippet expansion.
func (c CompletionItem) Text() string {
	switch {
	case c.TextEdit != nil:
		return c.TextEdit.NewText
	case c.InsertText != "":
		return c.InsertText
	}
	return c.Label
}

// FilterKey is the string matched against the typed prefix.
func (c CompletionItem) FilterKey() string {
	if c.FilterText != "" {
		return c.FilterText
	}
	return c.Label
}

// CompletionList represents LSP completion results.
type CompletionList struct {
	IsIncomplete bool             `json:"isIncomplete"`
	Items        []CompletionItem `json:"items"`
}

// Diagnostic severities.
const (
	SeverityError       = 1
	SeverityWarning     = 2
	SeverityInformation = 3
	SeverityHint        = 4
)

// Diagnostic represents a compiler error or warning.
type Diagnostic struct {
	Range    Range           `json:"range"`
	Severity int             `json:"severity,omitempty"`
	Code     json.RawMessage `json:"code,omitempty"`
	Source   string          `json:"source,omitempty"`
	Message  string          `json:"message"`
}

// PublishDiagnosticsParams is the payload of textDocument/publishDiagnostics.
type PublishDiagnosticsParams struct {
	URI         string       `json:"uri"`
	Version     *int         `json:"version,omitempty"`
	Diagnostics []Diagnostic `json:"diagnostics"`
}

// TextEdit represents a change to a text document.
type TextEdit struct {
	Range   Range  `json:"range"`
	NewText string `json:"newText"`
}

// TextDocumentEdit is the documentChanges form of a workspace edit entry.
type TextDocumentEdit struct {
	TextDocument VersionedTextDocumentIdentifier `json:"textDocument"`
	Edits        []TextEdit                      `json:"edits"`
}

// WorkspaceEdit is a set of textual edits to apply across documents.
type WorkspaceEdit struct {
	Changes         map[string][]TextEdit `json:"changes,omitempty"`
	DocumentChanges []TextDocumentEdit    `json:"documentChanges,omitempty"`
}

// ByURI flattens both edit forms into one map. Resource operations in
// documentChanges (create, rename, delete) are ignored.
func (w WorkspaceEdit) ByURI() map[string][]TextEdit {
	out := make(map[string][]TextEdit, len(w.Changes)+len(w.DocumentChanges))
	for uri, edits := range w.Changes {
		out[uri] = append(out[uri], edits...)
	}
	for _, dc := range w.DocumentChanges {
		if dc.TextDocument.URI == "" {
			continue
		}
		out[dc.TextDocument.URI] = append(out[dc.TextDocument.URI], dc.Edits...)
	}
	return out
}

// Command is an LSP command reference.
type Command struct {
	Title     string            `json:"title"`
	Command   string            `json:"command"`
	Arguments []json.RawMessage `json:"arguments,omitempty"`
}

// CodeAction represents a code action suggestion.
type CodeAction struct {
	Title       string         `json:"title"`
	Kind        string         `json:"kind,omitempty"`
	Edit        *WorkspaceEdit `json:"edit,omitempty"`
	Command     *Command       `json:"command,omitempty"`
	Diagnostics []Diagnostic   `json:"diagnostics,omitempty"`
}

// Hover result. Contents is kept raw: it may be a string, a MarkedString,
// a MarkupContent or an array of those.
type Hover struct {
	Contents json.RawMessage `json:"contents"`
	Range    *Range          `json:"range,omitempty"`
}

// Text flattens the hover contents.
func (h Hover) Text() string {
	var v any
	if err := json.Unmarshal(h.Contents, &v); err != nil {
		return ""
	}
	return hoverText(v)
}

func hoverText(v any) string {
	switch v := v.(type) {
	case string:
		return strings.TrimSpace(v)
	case map[string]any:
		if value, ok := v["value"].(string); ok {
			return strings.TrimSpace(value)
		}
	case []any:
		parts := make([]string, 0, len(v))
		for _, item := range v {
			if text := hoverText(item); text != "" {
				parts = append(parts, text)
			}
		}
		return strings.Join(parts, "\n\n")
	}
	return ""
}

// ParameterInformation describes one signature parameter. Label is either
// a string or a [start, end] offset pair.
type ParameterInformation struct {
	Label json.RawMessage `json:"label"`
}

// SignatureInformation is one overload.
type SignatureInformation struct {
	Label           string                 `json:"label"`
	Parameters      []ParameterInformation `json:"parameters,omitempty"`
	ActiveParameter *int                   `json:"activeParameter,omitempty"`
}

// SignatureHelp is the result of textDocument/signatureHelp.
type SignatureHelp struct {
	Signatures      []SignatureInformation `json:"signatures"`
	ActiveSignature int                    `json:"activeSignature,omitempty"`
	ActiveParameter int                    `json:"activeParameter,omitempty"`
}

// InlayHint is one inline annotation. Label may be a string or a list of
// label parts.
type InlayHint struct {
	Position     Position        `json:"position"`
	Label        json.RawMessage `json:"label"`
	Kind         int             `json:"kind,omitempty"`
	PaddingLeft  bool            `json:"paddingLeft,omitempty"`
	PaddingRight bool            `json:"paddingRight,omitempty"`
}

// Text flattens the hint label.
func (h InlayHint) Text() string {
	var s string
	if err := json.Unmarshal(h.Label, &s); err == nil {
		return s
	}
	var parts []struct {
		Value string `json:"value"`
	}
	if err := json.Unmarshal(h.Label, &parts); err != nil {
		return ""
	}
	var sb strings.Builder
	for _, p := range parts {
		sb.WriteString(p.Value)
	}
	return sb.String()
}

// FoldingRange is a foldable line span.
type FoldingRange struct {
	StartLine int    `json:"startLine"`
	EndLine   int    `json:"endLine"`
	Kind      string `json:"kind,omitempty"`
}

// SemanticTokens is the full-document semantic tokens result.
type SemanticTokens struct {
	ResultID string   `json:"resultId,omitempty"`
	Data     []uint32 `json:"data"`
}

// DocumentSymbol is the hierarchical symbol form.
type DocumentSymbol struct {
	Name           string           `json:"name"`
	Detail         string           `json:"detail,omitempty"`
	Kind           int              `json:"kind"`
	Range          Range            `json:"range"`
	SelectionRange Range            `json:"selectionRange"`
	Children       []DocumentSymbol `json:"children,omitempty"`
}

// SymbolInformation is the flat symbol form, also used by workspace/symbol.
type SymbolInformation struct {
	Name          string   `json:"name"`
	Kind          int      `json:"kind"`
	Location      Location `json:"location"`
	ContainerName string   `json:"containerName,omitempty"`
}

// Symbol is the flattened form the symbols panel shows.
type Symbol struct {
	Name      string
	Detail    string
	Kind      int
	Depth     int
	Container string
	Location  Location
}

// FormattingOptions accompany formatting requests.
type FormattingOptions struct {
	TabSize      int  `json:"tabSize"`
	InsertSpaces bool `json:"insertSpaces"`
}
