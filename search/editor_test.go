package search

import (
	"context"
	"strings"
	"testing"

	"github.com/odvcencio/zcode/editor"
)

func TestFindAll(t *testing.T) {
	tests := []struct {
		name          string
		text, pattern string
		caseSensitive bool
		regex         bool
		want          []TextMatch
	}{
		{"literal", "ab ab", "ab", true, false, []TextMatch{{0, 2}, {3, 5}}},
		{"literal after wide chars", "世界ab", "ab", true, false, []TextMatch{{2, 4}}},
		{"case folded", "Ab aB", "ab", false, false, []TextMatch{{0, 2}, {3, 5}}},
		{"regex anchors per line", "foo\nfoo", "^foo$", true, true, []TextMatch{{0, 3}, {4, 7}}},
		{"regex skips empty", "abc", "x*", true, true, nil},
		{"empty pattern", "abc", "", true, false, nil},
		{"no overlap", "aaaa", "aa", true, false, []TextMatch{{0, 2}, {2, 4}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FindAll(tt.text, tt.pattern, tt.caseSensitive, tt.regex)
			if err != nil {
				t.Fatalf("FindAll error: %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("FindAll = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Fatalf("FindAll = %v, want %v", got, tt.want)
				}
			}
		})
	}
}

func TestFindAllInvalidRegex(t *testing.T) {
	if _, err := FindAll("abc", "[", true, true); err == nil || !strings.Contains(err.Error(), "invalid regex") {
		t.Fatalf("FindAll error = %v, want invalid regex", err)
	}
}

func TestEditorSearchStreamsBatches(t *testing.T) {
	text := strings.Repeat("x ", 250)
	out := make(chan EditorMessage, 8)
	h := StartEditor(context.Background(), EditorRequest{ID: 4, Pane: 1, Text: editor.NewRope(text), Pattern: "x", CaseSensitive: true}, out)
	<-h.Done()
	close(out)
	var sizes []int
	var last EditorMessage
	for m := range out {
		if m.SearchID != 4 || m.Pane != 1 {
			t.Fatalf("message ids = (%d, %d), want (4, 1)", m.SearchID, m.Pane)
		}
		if m.Kind == EditorBatch {
			sizes = append(sizes, len(m.Matches))
		}
		last = m
	}
	if len(sizes) != 3 || sizes[0] != 100 || sizes[2] != 50 {
		t.Fatalf("batch sizes = %v, want [100 100 50]", sizes)
	}
	if last.Kind != EditorComplete || last.Total != 250 {
		t.Fatalf("final = %+v, want Complete with 250", last)
	}
}

func TestEditorSearchError(t *testing.T) {
	out := make(chan EditorMessage, 1)
	h := StartEditor(context.Background(), EditorRequest{ID: 2, Text: editor.NewRope("a"), Pattern: "(", Regex: true}, out)
	<-h.Done()
	if m := <-out; m.Kind != EditorError || m.Err == "" {
		t.Fatalf("message = %+v, want error", m)
	}
}

func TestReplacementExpandsGroups(t *testing.T) {
	got, err := Replacement("key=value", `(\w+)=(\w+)`, "$2=$1", true, true)
	if err != nil {
		t.Fatal(err)
	}
	if got != "value=key" {
		t.Fatalf("Replacement = %q, want %q", got, "value=key")
	}
	if got, _ := Replacement("abc", "abc", "$1", true, false); got != "$1" {
		t.Fatalf("literal Replacement = %q, want %q", got, "$1")
	}
}
