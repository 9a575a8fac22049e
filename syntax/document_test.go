package syntax

import (
	"testing"

	"github.com/odvcencio/zcode/editor"
)

const goSample = "package main\n\nfunc main() {\n\tx := \"hi\"\n\t_ = x\n}\n"

func goLanguage(t *testing.T) *Language {
	t.Helper()
	lang, ok := Lookup("go")
	if !ok {
		t.Fatal("go language not registered")
	}
	return lang
}

func TestDocumentHighlightsGo(t *testing.T) {
	d := NewDocument(goLanguage(t), "main.go", goSample)
	if !d.HasTree() {
		t.Fatal("expected a parse tree")
	}
	if got := KindAt(d.Highlights(0), 0); got != KindKeyword {
		t.Fatalf("kind of %q = %v, want keyword", "package", got)
	}
	if got := KindAt(d.Highlights(3), 7); got != KindString {
		t.Fatalf("kind inside string literal = %v, want string", got)
	}
	if got := d.Highlights(99); got != nil {
		t.Fatalf("Highlights past end = %+v, want nil", got)
	}
}

func TestDocumentFoldRegionsFromTree(t *testing.T) {
	d := NewDocument(goLanguage(t), "main.go", goSample)
	found := false
	for _, r := range d.FoldRegions() {
		if r.StartLine == 2 && r.EndLine == 5 {
			found = true
		}
	}
	if !found {
		t.Fatalf("FoldRegions = %+v, want a region for lines 2-5", d.FoldRegions())
	}
}

func TestDocumentIncrementalEdit(t *testing.T) {
	b := editor.NewTextBuffer(goSample)
	d := NewDocument(goLanguage(t), "main.go", b.Text())

	b.SetCursor(editor.Position{Row: 3, Col: 9})
	res := b.InsertText("ya", 1)
	if !res.Changed {
		t.Fatal("insert did not change the buffer")
	}
	d.Apply(res.Deltas, b.Rope())

	if got := b.Line(3); got != "\tx := \"hiya\"" {
		t.Fatalf("line = %q", got)
	}
	fresh := NewDocument(goLanguage(t), "main.go", b.Text())
	for row := 0; row < b.LineCount(); row++ {
		a, f := d.Highlights(row), fresh.Highlights(row)
		if len(a) != len(f) {
			t.Fatalf("row %d: incremental %+v, fresh %+v", row, a, f)
		}
		for i := range a {
			if a[i] != f[i] {
				t.Fatalf("row %d: incremental %+v, fresh %+v", row, a, f)
			}
		}
	}
	if got := d.NodeKindAt(0, 0); got == "" {
		t.Fatal("NodeKindAt returned no node")
	}
}

func TestDocumentChromaFallback(t *testing.T) {
	lang, ok := Lookup("json")
	if !ok {
		t.Fatal("json language not registered")
	}
	d := NewDocument(lang, "a.json", "{\n  \"k\": 12\n}\n")
	if d.HasTree() {
		t.Fatal("json has no grammar, expected no tree")
	}
	if got := KindAt(d.Highlights(1), 7); got != KindNumber {
		t.Fatalf("kind of 12 = %v, want number (spans %+v)", got, d.Highlights(1))
	}
	d.Apply(nil, editor.NewRope("{\n  \"k\": \"v\"\n}\n"))
	if got := KindAt(d.Highlights(1), 7); got != KindString {
		t.Fatalf("after edit kind = %v, want string", got)
	}
}

func TestDocumentWithoutLanguage(t *testing.T) {
	d := NewDocument(nil, "notes.unknownext", "just text {\n}\n")
	if d.HasTree() {
		t.Fatal("unexpected tree")
	}
	if len(d.FoldRegions()) != 0 {
		t.Fatalf("FoldRegions = %+v", d.FoldRegions())
	}
}
