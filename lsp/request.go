package lsp

import (
	"fmt"

	json "github.com/goccy/go-json"

	"github.com/odvcencio/zcode/editor"
	"github.com/odvcencio/zcode/syntax"
)

// RequestKind classifies outgoing requests for correlation.
type RequestKind int

const (
	KindHover RequestKind = iota
	KindCompletion
	KindSignatureHelp
	KindSemanticTokens
	KindInlayHints
	KindFoldingRange
	KindFormatting
	KindRename
	KindDocumentSymbols
	KindWorkspaceSymbols
	KindDefinition
	KindReferences
	KindCodeAction
	numKinds
)

var kindNames = [...]string{
	KindHover:            "hover",
	KindCompletion:       "completion",
	KindSignatureHelp:    "signatureHelp",
	KindSemanticTokens:   "semanticTokens",
	KindInlayHints:       "inlayHints",
	KindFoldingRange:     "foldingRange",
	KindFormatting:       "formatting",
	KindRename:           "rename",
	KindDocumentSymbols:  "documentSymbols",
	KindWorkspaceSymbols: "workspaceSymbols",
	KindDefinition:       "definition",
	KindReferences:       "references",
	KindCodeAction:       "codeAction",
}

func (k RequestKind) String() string {
	if k >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// LatestOnly reports whether only the newest response of this kind is
// useful. Older responses are dropped on arrival.
func (k RequestKind) LatestOnly() bool {
	return k <= KindWorkspaceSymbols
}

// Request is a document request. Point, End and Text describe the document
// as of Version; responses are converted against the same snapshot.
type Request struct {
	Kind    RequestKind
	Path    string
	Version uint64
	Text    editor.Rope
	Point   editor.Point
	End     editor.Point

	TriggerChar  string
	NewName      string
	Query        string
	TabSize      int
	InsertSpaces bool
	Diagnostics  []Diagnostic
}

func (r Request) method() string {
	switch r.Kind {
	case KindHover:
		return "textDocument/hover"
	case KindCompletion:
		return "textDocument/completion"
	case KindSignatureHelp:
		return "textDocument/signatureHelp"
	case KindSemanticTokens:
		return "textDocument/semanticTokens/full"
	case KindInlayHints:
		return "textDocument/inlayHint"
	case KindFoldingRange:
		return "textDocument/foldingRange"
	case KindFormatting:
		return "textDocument/formatting"
	case KindRename:
		return "textDocument/rename"
	case KindDocumentSymbols:
		return "textDocument/documentSymbol"
	case KindWorkspaceSymbols:
		return "workspace/symbol"
	case KindDefinition:
		return "textDocument/definition"
	case KindReferences:
		return "textDocument/references"
	case KindCodeAction:
		return "textDocument/codeAction"
	}
	return ""
}

func (r Request) params(enc Encoding) map[string]any {
	doc := TextDocumentIdentifier{URI: FileURI(r.Path)}
	pos := enc.PositionOf(r.Point)
	switch r.Kind {
	case KindWorkspaceSymbols:
		return map[string]any{"query": r.Query}
	case KindSemanticTokens, KindFoldingRange, KindDocumentSymbols:
		return map[string]any{"textDocument": doc}
	case KindInlayHints:
		return map[string]any{"textDocument": doc, "range": Range{Start: pos, End: enc.PositionOf(r.End)}}
	case KindFormatting:
		return map[string]any{"textDocument": doc, "options": FormattingOptions{TabSize: r.TabSize, InsertSpaces: r.InsertSpaces}}
	case KindRename:
		return map[string]any{"textDocument": doc, "position": pos, "newName": r.NewName}
	case KindReferences:
		return map[string]any{"textDocument": doc, "position": pos, "context": map[string]any{"includeDeclaration": true}}
	case KindCodeAction:
		diags := r.Diagnostics
		if diags == nil {
			diags = []Diagnostic{}
		}
		return map[string]any{"textDocument": doc, "range": Range{Start: pos, End: enc.PositionOf(r.End)}, "context": map[string]any{"diagnostics": diags}}
	case KindCompletion:
		p := map[string]any{"textDocument": doc, "position": pos}
		if r.TriggerChar != "" {
			p["context"] = map[string]any{"triggerKind": 2, "triggerCharacter": r.TriggerChar}
		} else {
			p["context"] = map[string]any{"triggerKind": 1}
		}
		return p
	}
	return map[string]any{"textDocument": doc, "position": pos}
}

// decode converts a raw result into the event delivered to the editor.
func (r Request) decode(raw json.RawMessage, caps Capabilities) (Event, error) {
	enc := caps.Encoding
	base := Response{Kind: r.Kind, Path: r.Path, Version: r.Version, Encoding: enc}
	null := len(raw) == 0 || string(raw) == "null"
	switch r.Kind {
	case KindHover:
		var h Hover
		if !null {
			if err := json.Unmarshal(raw, &h); err != nil {
				return nil, err
			}
		}
		return HoverEvent{Response: base, Text: h.Text()}, nil
	case KindCompletion:
		ev := CompletionEvent{Response: base}
		if null {
			return ev, nil
		}
		var list CompletionList
		if err := json.Unmarshal(raw, &list); err == nil && list.Items != nil {
			ev.Items, ev.Incomplete = list.Items, list.IsIncomplete
			return ev, nil
		}
		if err := json.Unmarshal(raw, &ev.Items); err != nil {
			return nil, err
		}
		return ev, nil
	case KindSignatureHelp:
		ev := SignatureHelpEvent{Response: base}
		if !null {
			var h SignatureHelp
			if err := json.Unmarshal(raw, &h); err != nil {
				return nil, err
			}
			if len(h.Signatures) > 0 {
				ev.Help = &h
			}
		}
		return ev, nil
	case KindSemanticTokens:
		var toks SemanticTokens
		if !null {
			if err := json.Unmarshal(raw, &toks); err != nil {
				return nil, err
			}
		}
		return SemanticTokensEvent{Response: base, Lines: DecodeSemanticTokens(toks.Data, caps.Legend, r.Text, enc)}, nil
	case KindInlayHints:
		var hints []InlayHint
		if !null {
			if err := json.Unmarshal(raw, &hints); err != nil {
				return nil, err
			}
		}
		return InlayHintsEvent{Response: base, Hints: hints}, nil
	case KindFoldingRange:
		var ranges []FoldingRange
		if !null {
			if err := json.Unmarshal(raw, &ranges); err != nil {
				return nil, err
			}
		}
		return FoldingRangesEvent{Response: base, Ranges: ranges}, nil
	case KindFormatting:
		var edits []TextEdit
		if !null {
			if err := json.Unmarshal(raw, &edits); err != nil {
				return nil, err
			}
		}
		return EditsEvent{Response: base, Edit: WorkspaceEdit{Changes: map[string][]TextEdit{FileURI(r.Path): edits}}}, nil
	case KindRename:
		var edit WorkspaceEdit
		if !null {
			if err := json.Unmarshal(raw, &edit); err != nil {
				return nil, err
			}
		}
		return EditsEvent{Response: base, Edit: edit}, nil
	case KindCodeAction:
		var actions []CodeAction
		if !null {
			if err := json.Unmarshal(raw, &actions); err != nil {
				return nil, err
			}
		}
		return CodeActionsEvent{Response: base, Actions: actions}, nil
	case KindDefinition, KindReferences:
		locs, err := decodeLocations(raw)
		if err != nil {
			return nil, err
		}
		return LocationsEvent{Response: base, Locations: locs}, nil
	case KindDocumentSymbols, KindWorkspaceSymbols:
		syms, err := decodeSymbols(raw, r.Path)
		if err != nil {
			return nil, err
		}
		return SymbolsEvent{Response: base, Symbols: syms}, nil
	}
	return nil, fmt.Errorf("unhandled request kind %v", r.Kind)
}

// decodeLocations accepts Location, []Location and []LocationLink.
func decodeLocations(raw json.RawMessage) ([]Location, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	if raw[0] == '{' {
		var single Location
		if err := json.Unmarshal(raw, &single); err != nil {
			return nil, err
		}
		return []Location{single}, nil
	}
	var mixed []struct {
		Location
		LocationLink
	}
	if err := json.Unmarshal(raw, &mixed); err != nil {
		return nil, err
	}
	out := make([]Location, 0, len(mixed))
	for _, m := range mixed {
		if m.URI != "" {
			out = append(out, m.Location)
			continue
		}
		out = append(out, Location{URI: m.TargetURI, Range: m.TargetSelectionRange})
	}
	return out, nil
}

// decodeSymbols accepts the hierarchical and the flat symbol forms and
// flattens them depth first.
func decodeSymbols(raw json.RawMessage, path string) ([]Symbol, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	var probe []map[string]json.RawMessage
	if err := json.Unmarshal(raw, &probe); err != nil {
		return nil, err
	}
	if len(probe) == 0 {
		return nil, nil
	}
	if _, flat := probe[0]["location"]; flat {
		var infos []SymbolInformation
		if err := json.Unmarshal(raw, &infos); err != nil {
			return nil, err
		}
		out := make([]Symbol, 0, len(infos))
		for _, si := range infos {
			out = append(out, Symbol{Name: si.Name, Kind: si.Kind, Container: si.ContainerName, Location: si.Location})
		}
		return out, nil
	}
	var docs []DocumentSymbol
	if err := json.Unmarshal(raw, &docs); err != nil {
		return nil, err
	}
	uri := FileURI(path)
	var out []Symbol
	type item struct {
		sym   DocumentSymbol
		depth int
	}
	stack := make([]item, 0, len(docs))
	for i := len(docs) - 1; i >= 0; i-- {
		stack = append(stack, item{docs[i], 0})
	}
	for len(stack) > 0 {
		it := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		out = append(out, Symbol{
			Name:     it.sym.Name,
			Detail:   it.sym.Detail,
			Kind:     it.sym.Kind,
			Depth:    it.depth,
			Location: Location{URI: uri, Range: it.sym.SelectionRange},
		})
		for i := len(it.sym.Children) - 1; i >= 0; i-- {
			stack = append(stack, item{it.sym.Children[i], it.depth + 1})
		}
	}
	return out, nil
}

// Event is delivered from sessions to the editor.
type Event interface{ lspEvent() }

// Response carries the identity of the request an event answers.
type Response struct {
	Kind     RequestKind
	Path     string
	Version  uint64
	Encoding Encoding
}

func (Response) lspEvent() {}

type (
	HoverEvent struct {
		Response
		Text string
	}
	CompletionEvent struct {
		Response
		Items      []CompletionItem
		Incomplete bool
	}
	SignatureHelpEvent struct {
		Response
		Help *SignatureHelp
	}
	SemanticTokensEvent struct {
		Response
		Lines [][]syntax.Span
	}
	InlayHintsEvent struct {
		Response
		Hints []InlayHint
	}
	FoldingRangesEvent struct {
		Response
		Ranges []FoldingRange
	}
	EditsEvent struct {
		Response
		Edit WorkspaceEdit
	}
	CodeActionsEvent struct {
		Response
		Actions []CodeAction
	}
	LocationsEvent struct {
		Response
		Locations []Location
	}
	SymbolsEvent struct {
		Response
		Symbols []Symbol
	}
	// RequestFailedEvent reports a request the server answered with an error.
	RequestFailedEvent struct {
		Response
		Err string
	}
)

// DiagnosticsEvent is published by the server for a document.
type DiagnosticsEvent struct {
	Path        string
	Version     *int
	Encoding    Encoding
	Diagnostics []Diagnostic
}

func (DiagnosticsEvent) lspEvent() {}

// ApplyEditEvent is a workspace/applyEdit request from the server.
type ApplyEditEvent struct {
	Label    string
	Encoding Encoding
	Edit     WorkspaceEdit
}

func (ApplyEditEvent) lspEvent() {}

// StateEvent reports a session lifecycle change.
type StateEvent struct {
	Server  string
	Root    string
	State   State
	Attempt int
	Err     string
	Caps    Capabilities
}

func (StateEvent) lspEvent() {}
