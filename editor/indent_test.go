package editor

import "testing"

func TestInsertNewlineIndents(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		caret int
		want  string
	}{
		{"plain line", "hello", 5, "hello\n"},
		{"keeps tab indent", "\thello", 6, "\thello\n\t"},
		{"keeps space indent", "    hello", 9, "    hello\n    "},
		{"brace opens a block", "\tif x {", 7, "\tif x {\n\t\t"},
		{"paren under spaces adds four", "    call(", 9, "    call(\n        "},
		{"trailing colon", "if ok:", 6, "if ok:\n\t"},
		{"trailing blanks after bracket", "items [  ", 9, "items [  \n\t"},
		{"only the text before the caret counts", "\tf(x) {", 3, "\tf(\n\t\tx) {"},
		{"blank line keeps its whitespace", "    ", 4, "    \n    "},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewTextBuffer(tt.text)
			b.SetCursorOffset(tt.caret)
			b.InsertNewline(1)
			if got := b.Text(); got != tt.want {
				t.Errorf("InsertNewline on %q = %q, want %q", tt.text, got, tt.want)
			}
			if got, want := b.Primary().Pos, len([]rune(tt.want))-len([]rune(tt.text))+tt.caret; got != want {
				t.Errorf("caret = %d, want %d", got, want)
			}
		})
	}
}

func TestInsertNewlineEveryCursorAndSelection(t *testing.T) {
	b := NewTextBuffer("a {\n\tb\nccc")
	b.SetCursors([]Cursor{
		caret(3),
		{Anchor: 8, Pos: 10, Goal: -1},
	})
	b.InsertNewline(1)
	if got, want := b.Text(), "a {\n\t\n\tb\nc\n"; got != want {
		t.Fatalf("text = %q, want %q", got, want)
	}
}

func TestDetectIndentStyle(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"tabs", "func main() {\n\tfmt.Println()\n}", "\t"},
		{"four spaces", "def main():\n    print()\n", "    "},
		{"narrowest space run", "a:\n  b:\n    c\n", "  "},
		{"tabs outnumber spaces", "\ta\n\tb\n  c\n", "\t"},
		{"whitespace-only lines ignored", "x\n        \n  y\n", "  "},
		{"no indent", "a\nb\n", "\t"},
	}
	for _, tt := range tests {
		if got := DetectIndentStyle(tt.text); got != tt.want {
			t.Errorf("%s: DetectIndentStyle = %q, want %q", tt.name, got, tt.want)
		}
	}
}
