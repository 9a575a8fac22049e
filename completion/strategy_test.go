package completion

import "testing"

func TestDefaultTriggers(t *testing.T) {
	s := For("go")
	tests := []struct {
		line     string
		ch       rune
		triggers []string
		want     bool
	}{
		{"fmt.", '.', nil, true},
		{"std::", ':', nil, true},
		{"a:", ':', nil, false},
		{"fmtx", 'x', []string{"."}, false},
		{"fmt.", '.', []string{"."}, true},
		{`s := "fmt.`, '.', nil, false},
		{"x // fmt.", '.', nil, false},
	}
	for _, tt := range tests {
		c := Context{Line: tt.line, Col: len([]rune(tt.line))}
		if got := s.TriggersRequest(c, tt.ch, tt.triggers); got != tt.want {
			t.Errorf("TriggersRequest(%q, %q) = %v, want %v", tt.line, tt.ch, got, tt.want)
		}
	}
}

func TestDefaultPrefixBounds(t *testing.T) {
	s := For("python")
	if start, end := s.PrefixBounds(Context{Line: "foo.bär", Col: 7}); start != 4 || end != 7 {
		t.Fatalf("PrefixBounds = %d,%d, want 4,7", start, end)
	}
	if start, end := s.PrefixBounds(Context{Line: "x = ", Col: 4}); start != 4 || end != 4 {
		t.Fatalf("PrefixBounds at space = %d,%d", start, end)
	}
	if !s.KeepsOpen('a') || s.KeepsOpen(' ') || !s.DebounceOn('.') {
		t.Fatal("default strategy character classes are wrong")
	}
	if s.Allowed(Context{Line: `x = "ab`, Col: 7}) {
		t.Fatal("completion allowed inside a string")
	}
}

func TestCIncludeContext(t *testing.T) {
	s := For("cpp")
	line := "#include <sys/ty"
	c := Context{Line: line, Col: len(line)}
	if !s.Allowed(c) {
		t.Fatal("include path should allow completion")
	}
	if start, end := s.PrefixBounds(c); start != 14 || end != 16 {
		t.Fatalf("PrefixBounds = %d,%d, want 14,16", start, end)
	}
	if !s.TriggersRequest(Context{Line: "#include <", Col: 10}, '<', nil) {
		t.Fatal("< after #include should trigger")
	}
	if !s.TriggersRequest(Context{Line: `  # include "a/`, Col: 15}, '/', nil) {
		t.Fatal("/ inside quoted include should trigger")
	}
	if s.TriggersRequest(Context{Line: "#include <a.h>", Col: 14}, '>', nil) {
		t.Fatal("closed include should not trigger")
	}
}

func TestCMemberAccess(t *testing.T) {
	s := For("c")
	clangd := []string{".", "<", ">", ":", "\"", "/", "*"}
	tests := []struct {
		line string
		ch   rune
		want bool
	}{
		{"p->", '>', true},
		{"a >", '>', false},
		{"a <", '<', false},
		{"obj.", '.', true},
		{"x = 1.", '.', false},
		{"ns::", ':', true},
	}
	for _, tt := range tests {
		c := Context{Line: tt.line, Col: len(tt.line)}
		if got := s.TriggersRequest(c, tt.ch, clangd); got != tt.want {
			t.Errorf("TriggersRequest(%q) = %v, want %v", tt.line, got, tt.want)
		}
	}
}

func TestSignatureActions(t *testing.T) {
	s := For("go")
	tests := []struct {
		ch   rune
		trig SignatureTriggers
		want SignatureAction
	}{
		{'(', SignatureTriggers{}, SignatureOpen},
		{',', SignatureTriggers{}, SignatureKeep},
		{')', SignatureTriggers{}, SignatureClose},
		{'a', SignatureTriggers{}, SignatureNone},
		{'<', SignatureTriggers{Trigger: []string{"(", "<"}}, SignatureOpen},
		{'(', SignatureTriggers{Trigger: []string{"<"}}, SignatureNone},
	}
	for _, tt := range tests {
		if got := s.Signature(tt.ch, tt.trig); got != tt.want {
			t.Errorf("Signature(%q) = %v, want %v", tt.ch, got, tt.want)
		}
	}
}
