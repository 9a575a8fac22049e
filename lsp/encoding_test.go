package lsp

import (
	"testing"

	"github.com/odvcencio/zcode/editor"
)

func TestEncodingColumns(t *testing.T) {
	// "a😀é" : the emoji is 4 bytes and 2 UTF-16 units.
	r := editor.NewRope("x\na😀éz")
	p := r.Point(r.LineStart(1) + 3) // before z
	tests := []struct {
		enc  Encoding
		want int
	}{
		{UTF8, 1 + 4 + 2},
		{UTF16, 1 + 2 + 1},
		{UTF32, 3},
	}
	for _, tt := range tests {
		if got := tt.enc.Column(p); got != tt.want {
			t.Errorf("%s Column = %d, want %d", tt.enc, got, tt.want)
		}
		pos := tt.enc.ToPosition(r, r.LineStart(1)+3)
		if pos.Line != 1 || pos.Character != tt.want {
			t.Errorf("%s ToPosition = %+v", tt.enc, pos)
		}
		if got := tt.enc.Offset(r, pos); got != r.LineStart(1)+3 {
			t.Errorf("%s Offset = %d, want %d", tt.enc, got, r.LineStart(1)+3)
		}
	}
}

func TestCharColSnapsInsideCodePoint(t *testing.T) {
	line := "a😀b"
	if got := UTF16.CharCol(line, 2); got != 1 {
		t.Fatalf("CharCol inside surrogate pair = %d, want 1", got)
	}
	if got := UTF8.CharCol(line, 99); got != 3 {
		t.Fatalf("CharCol past end = %d, want 3", got)
	}
	if got := UTF16.ByteCol(line, 3); got != 5 {
		t.Fatalf("ByteCol = %d, want 5", got)
	}
}

func TestOffsetClampsLines(t *testing.T) {
	r := editor.NewRope("ab\ncd")
	if got := UTF16.Offset(r, Position{Line: 9}); got != r.Len() {
		t.Fatalf("Offset past last line = %d, want %d", got, r.Len())
	}
	if got := UTF16.Offset(r, Position{Line: -1}); got != 0 {
		t.Fatalf("Offset negative line = %d", got)
	}
}

func TestParseEncoding(t *testing.T) {
	if e, ok := ParseEncoding("utf-8"); !ok || e != UTF8 {
		t.Fatalf("ParseEncoding(utf-8) = %v, %v", e, ok)
	}
	if e, ok := ParseEncoding("latin1"); ok || e != UTF16 {
		t.Fatalf("ParseEncoding(latin1) = %v, %v", e, ok)
	}
}

func TestTextEditsSortedAndDeduplicated(t *testing.T) {
	r := editor.NewRope("hello world")
	edits := UTF16.TextEdits(r, []TextEdit{
		{Range: Range{Start: Position{0, 6}, End: Position{0, 11}}, NewText: "there"},
		{Range: Range{Start: Position{0, 0}, End: Position{0, 5}}, NewText: "HELLO"},
		{Range: Range{Start: Position{0, 1}, End: Position{0, 2}}, NewText: "x"},
	})
	if len(edits) != 2 || edits[0].Start != 0 || edits[1].Start != 6 {
		t.Fatalf("TextEdits = %+v", edits)
	}
}

func TestTextEditsKeepInsertsAtOnePosition(t *testing.T) {
	r := editor.NewRope("x")
	edits := UTF16.TextEdits(r, []TextEdit{
		{Range: Range{Start: Position{0, 0}, End: Position{0, 1}}, NewText: "y"},
		{Range: Range{Start: Position{0, 0}, End: Position{0, 0}}, NewText: "import a\n"},
		{Range: Range{Start: Position{0, 0}, End: Position{0, 0}}, NewText: "import b\n"},
	})
	b := editor.NewTextBuffer("x")
	b.ApplyEdits(edits, 1)
	if got := b.Text(); got != "import a\nimport b\ny" {
		t.Fatalf("applied text = %q, want %q", got, "import a\nimport b\ny")
	}
}

func TestURIRoundTrip(t *testing.T) {
	uri := FileURI("/tmp/a b/c.go")
	if uri != "file:///tmp/a%20b/c.go" {
		t.Fatalf("FileURI = %q", uri)
	}
	if got := PathFromURI(uri); got != "/tmp/a b/c.go" {
		t.Fatalf("PathFromURI = %q", got)
	}
	if got := PathFromURI("untitled:1"); got != "untitled:1" {
		t.Fatalf("PathFromURI(non-file) = %q", got)
	}
}
