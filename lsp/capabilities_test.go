package lsp

import (
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/require"
)

func TestParseCapabilities(t *testing.T) {
	raw := json.RawMessage(`{"capabilities":{
		"positionEncoding":"utf-8",
		"textDocumentSync":{"openClose":true,"change":2,"save":{"includeText":true}},
		"completionProvider":{"triggerCharacters":[".",":"]},
		"signatureHelpProvider":{"triggerCharacters":["("],"retriggerCharacters":[","]},
		"semanticTokensProvider":{"legend":{"tokenTypes":["type"],"tokenModifiers":[]},"full":true},
		"hoverProvider":true,
		"renameProvider":{"prepareProvider":true},
		"definitionProvider":false
	}}`)
	c, err := ParseCapabilities(raw)
	require.NoError(t, err)
	require.Equal(t, UTF8, c.Encoding)
	require.True(t, c.Incremental())
	require.True(t, c.SaveIncludeText)
	require.Equal(t, []string{".", ":"}, c.CompletionTriggers)
	require.Equal(t, []string{","}, c.SignatureRetrigger)
	require.True(t, c.SemanticTokens)
	require.Equal(t, []string{"type"}, c.Legend.TokenTypes)
	require.True(t, c.Supports(KindHover))
	require.True(t, c.Supports(KindRename))
	require.False(t, c.Supports(KindDefinition))
}

func TestParseCapabilitiesDefaults(t *testing.T) {
	c, err := ParseCapabilities(json.RawMessage(`{"capabilities":{"textDocumentSync":1}}`))
	require.NoError(t, err)
	require.Equal(t, UTF16, c.Encoding)
	require.Equal(t, SyncFull, c.Sync)
	require.False(t, c.Incremental())

	c, err = ParseCapabilities(json.RawMessage(`{"capabilities":{"positionEncoding":"utf-7","textDocumentSync":2}}`))
	require.NoError(t, err)
	require.False(t, c.Incremental())

	c, err = ParseCapabilities(json.RawMessage(`{"capabilities":{},"offsetEncoding":"utf-32"}`))
	require.NoError(t, err)
	require.Equal(t, UTF32, c.Encoding)
}

func TestDecodeLocationsForms(t *testing.T) {
	single, err := decodeLocations(json.RawMessage(`{"uri":"file:///a","range":{"start":{"line":1,"character":2},"end":{"line":1,"character":3}}}`))
	require.NoError(t, err)
	require.Len(t, single, 1)

	links, err := decodeLocations(json.RawMessage(`[{"targetUri":"file:///b","targetRange":{"start":{"line":0,"character":0},"end":{"line":9,"character":0}},"targetSelectionRange":{"start":{"line":4,"character":5},"end":{"line":4,"character":8}}}]`))
	require.NoError(t, err)
	require.Equal(t, "file:///b", links[0].URI)
	require.Equal(t, 4, links[0].Range.Start.Line)

	none, err := decodeLocations(json.RawMessage(`null`))
	require.NoError(t, err)
	require.Empty(t, none)
}

func TestDecodeSymbolsFlattensTree(t *testing.T) {
	raw := json.RawMessage(`[{"name":"T","kind":23,"range":{"start":{"line":0,"character":0},"end":{"line":5,"character":0}},"selectionRange":{"start":{"line":0,"character":5},"end":{"line":0,"character":6}},
		"children":[{"name":"f","kind":8,"range":{"start":{"line":1,"character":0},"end":{"line":1,"character":3}},"selectionRange":{"start":{"line":1,"character":0},"end":{"line":1,"character":1}}}]},
		{"name":"main","kind":12,"range":{"start":{"line":7,"character":0},"end":{"line":9,"character":0}},"selectionRange":{"start":{"line":7,"character":5},"end":{"line":7,"character":9}}}]`)
	syms, err := decodeSymbols(raw, "/w/a.go")
	require.NoError(t, err)
	require.Len(t, syms, 3)
	require.Equal(t, []string{"T", "f", "main"}, []string{syms[0].Name, syms[1].Name, syms[2].Name})
	require.Equal(t, 1, syms[1].Depth)

	flat, err := decodeSymbols(json.RawMessage(`[{"name":"x","kind":13,"location":{"uri":"file:///w/b.go","range":{"start":{"line":2,"character":0},"end":{"line":2,"character":1}}},"containerName":"pkg"}]`), "")
	require.NoError(t, err)
	require.Equal(t, "pkg", flat[0].Container)
}

func TestHoverAndHintText(t *testing.T) {
	h := Hover{Contents: json.RawMessage(`[{"language":"go","value":"func f()"}, "docs "]`)}
	require.Equal(t, "func f()\n\ndocs", h.Text())
	h = Hover{Contents: json.RawMessage(`{"kind":"markdown","value":" **x** "}`)}
	require.Equal(t, "**x**", h.Text())

	hint := InlayHint{Label: json.RawMessage(`[{"value":"n"},{"value":":"}]`)}
	require.Equal(t, "n:", hint.Text())
	hint = InlayHint{Label: json.RawMessage(`"int"`)}
	require.Equal(t, "int", hint.Text())
}

func TestBackoff(t *testing.T) {
	want := []int64{200, 400, 800, 1600, 3200, 5000, 5000}
	for i, ms := range want {
		if got := Backoff(i + 1).Milliseconds(); got != ms {
			t.Fatalf("Backoff(%d) = %dms, want %dms", i+1, got, ms)
		}
	}
}

func TestLatestOnlyKinds(t *testing.T) {
	for _, k := range []RequestKind{KindHover, KindCompletion, KindSemanticTokens, KindInlayHints, KindFoldingRange, KindSignatureHelp, KindFormatting, KindRename, KindDocumentSymbols, KindWorkspaceSymbols} {
		require.True(t, k.LatestOnly(), k.String())
	}
	for _, k := range []RequestKind{KindDefinition, KindReferences, KindCodeAction} {
		require.False(t, k.LatestOnly(), k.String())
	}
}
