package syntax

import (
	"reflect"
	"testing"
)

func TestKindFromName(t *testing.T) {
	tests := map[string]TokenKind{
		"keyword":             KindKeyword,
		"function.method":     KindFunction,
		"boolean":             KindConstant,
		"string.special":      KindString,
		"type.builtin":        KindType,
		"module":              KindNamespace,
		"nonsense":            KindNone,
		"punctuation.bracket": KindPunctuation,
	}
	for name, want := range tests {
		if got := KindFromName(name); got != want {
			t.Errorf("KindFromName(%q) = %v, want %v", name, got, want)
		}
	}
}

func TestNormalizeSpans(t *testing.T) {
	in := []Span{
		{StartCol: 6, EndCol: 8, Kind: KindString},
		{StartCol: 0, EndCol: 3, Kind: KindKeyword},
		{StartCol: 3, EndCol: 5, Kind: KindKeyword},
		{StartCol: 4, EndCol: 7, Kind: KindNumber},
		{StartCol: 9, EndCol: 9, Kind: KindComment},
		{StartCol: 10, EndCol: 12, Kind: KindNone},
	}
	want := []Span{
		{StartCol: 0, EndCol: 5, Kind: KindKeyword},
		{StartCol: 5, EndCol: 7, Kind: KindNumber},
		{StartCol: 7, EndCol: 8, Kind: KindString},
	}
	if got := NormalizeSpans(in); !reflect.DeepEqual(got, want) {
		t.Fatalf("NormalizeSpans = %+v, want %+v", got, want)
	}
	if got := NormalizeSpans(nil); got != nil {
		t.Fatalf("NormalizeSpans(nil) = %+v", got)
	}
}

func TestKindAt(t *testing.T) {
	spans := []Span{{0, 2, KindKeyword}, {4, 6, KindString}}
	tests := []struct {
		col  int
		want TokenKind
	}{
		{0, KindKeyword}, {1, KindKeyword}, {2, KindNone}, {5, KindString}, {6, KindNone},
	}
	for _, tt := range tests {
		if got := KindAt(spans, tt.col); got != tt.want {
			t.Errorf("KindAt(%d) = %v, want %v", tt.col, got, tt.want)
		}
	}
}
