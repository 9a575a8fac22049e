package completion

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/odvcencio/zcode/editor"
	"github.com/odvcencio/zcode/lsp"
)

func TestPopupIgnoresUnrequestedAndOlderResponses(t *testing.T) {
	var s State
	require.False(t, s.Apply("/a.go", 1, printItems, false, "", "go", nil, 0))

	s.Request("/a.go", 3, 4)
	require.False(t, s.Apply("/a.go", 2, printItems, false, "", "go", nil, 0))
	require.False(t, s.Apply("/b.go", 3, printItems, false, "", "go", nil, 0))
	require.True(t, s.Apply("/a.go", 3, printItems, false, "Pr", "go", nil, 0))
	require.True(t, s.Visible)
	require.Nil(t, s.Pending)
	require.Equal(t, 4, s.Anchor)

	s.Refilter("Prz", nil, 0)
	require.False(t, s.Visible)
	_, ok := s.Selection()
	require.False(t, ok)
}

func TestPopupMoveWraps(t *testing.T) {
	var s State
	s.Request("/a.go", 1, 0)
	s.Apply("/a.go", 1, printItems, false, "", "go", nil, 0)
	s.Move(-1)
	require.Equal(t, len(printItems)-1, s.Selected)
	s.Move(1)
	require.Equal(t, 0, s.Selected)
	s.Close()
	require.False(t, s.Visible)
	require.Empty(t, s.Items)
}

func TestAcceptPlainItem(t *testing.T) {
	text := editor.NewRope("fmt.Pr")
	ins := Accept(lsp.CompletionItem{Label: "Println"}, text, 4, 6, lsp.UTF16)
	require.Equal(t, editor.Edit{Start: 4, End: 6, Deleted: "Pr", Inserted: "Println"}, ins.Edit)
	require.Equal(t, 11, ins.Cursor)
	require.Equal(t, 11, ins.SelectEnd)
}

func TestAcceptSnippetWithTextEdit(t *testing.T) {
	text := editor.NewRope("x.fo")
	item := lsp.CompletionItem{
		Label:            "foo",
		InsertTextFormat: lsp.InsertTextFormatSnippet,
		TextEdit: &lsp.TextEdit{
			Range:   lsp.Range{Start: lsp.Position{Line: 0, Character: 2}, End: lsp.Position{Line: 0, Character: 3}},
			NewText: "foo(${1:arg})",
		},
	}
	ins := Accept(item, text, 2, 4, lsp.UTF16)
	require.Equal(t, 2, ins.Edit.Start)
	require.Equal(t, 4, ins.Edit.End)
	require.Equal(t, "foo(arg)", ins.Edit.Inserted)
	require.Equal(t, 6, ins.Cursor)
	require.Equal(t, 9, ins.SelectEnd)
}
