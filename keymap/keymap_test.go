package keymap

import (
	"reflect"
	"testing"

	"github.com/odvcencio/zcode/commands"
)

func TestNormalizeKey(t *testing.T) {
	tests := map[string]string{
		"Ctrl+S":        "ctrl+s",
		"alt+ctrl+up":   "ctrl+alt+up",
		"shift+Alt+F":   "alt+shift+F",
		"A":             "A",
		"PgDown":        "pgdown",
		" ":             "space",
		"ctrl++":        "ctrl++",
		" ctrl+shift+k": "ctrl+shift+k",
	}
	for in, want := range tests {
		if got := NormalizeKey(in); got != want {
			t.Errorf("NormalizeKey(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestChain(t *testing.T) {
	want := []Context{EditorSearchBar, Editor, Global}
	if got := Chain(EditorSearchBar); !reflect.DeepEqual(got, want) {
		t.Fatalf("Chain = %v, want %v", got, want)
	}
	if got := Chain(Palette); !reflect.DeepEqual(got, []Context{Palette}) {
		t.Fatalf("Chain(Palette) = %v", got)
	}
}

func TestDefaultLookupOverlaysGlobal(t *testing.T) {
	s := NewDefault()
	tests := []struct {
		ctx  Context
		key  string
		want commands.Command
	}{
		{Editor, "ctrl+s", commands.Save},
		{Editor, "ctrl+z", commands.Undo},
		{EditorSearchBar, "enter", commands.FindNext},
		{EditorSearchBar, "ctrl+z", commands.Undo},
		{Completion, "enter", commands.CompletionAccept},
		{Completion, "left", commands.CursorLeft},
		{Explorer, "enter", commands.ExplorerActivate},
		{Explorer, "ctrl+q", commands.Quit},
		{Global, "alt+ctrl+up", ""},
		{Editor, "alt+ctrl+up", commands.AddCursorAbove},
	}
	for _, tt := range tests {
		got, ok := s.Lookup(tt.ctx, tt.key)
		if ok != (tt.want != "") || got != tt.want {
			t.Errorf("Lookup(%s, %q) = %q, %v, want %q", tt.ctx, tt.key, got, ok, tt.want)
		}
	}
	if _, ok := s.Lookup(Palette, "ctrl+s"); ok {
		t.Fatal("the palette is modal and should not see global keys")
	}
}

func TestUserBindingsOverrideAndUnbind(t *testing.T) {
	s := NewDefault().WithUserBindings([]Binding{
		{Key: "Ctrl+S", Command: commands.Custom("fmt-and-save"), Context: Global},
		{Key: "ctrl+z", Command: "", Context: Editor},
	})
	if got, _ := s.Lookup(Editor, "ctrl+s"); got != commands.Custom("fmt-and-save") {
		t.Fatalf("ctrl+s = %q", got)
	}
	if got, ok := s.Lookup(Editor, "ctrl+z"); ok {
		t.Fatalf("ctrl+z should be unbound, got %q", got)
	}
	if got, _ := NewDefault().Lookup(Editor, "ctrl+z"); got != commands.Undo {
		t.Fatalf("the original service changed: %q", got)
	}
}

func TestPluginBindingPrecedence(t *testing.T) {
	plug := commands.Plugin("fmt", "run")
	s := NewDefault().WithPluginBindings("fmt", []Binding{
		{Key: "ctrl+s", Command: plug, Context: Global},
		{Key: "alt+9", Command: plug, Context: Editor},
	})
	if got, _ := s.Lookup(Editor, "ctrl+s"); got != plug {
		t.Fatalf("plugin should beat the default: %q", got)
	}
	s = s.WithUserBindings([]Binding{{Key: "ctrl+s", Command: commands.Save, Context: Global}})
	if got, _ := s.Lookup(Editor, "ctrl+s"); got != commands.Save {
		t.Fatalf("user should beat the plugin: %q", got)
	}
	s = s.WithPluginBindings("fmt", nil)
	if _, ok := s.Lookup(Editor, "alt+9"); ok {
		t.Fatal("re-registering the plugin should drop its old bindings")
	}
}

func TestKeysFor(t *testing.T) {
	s := NewDefault()
	keys := s.KeysFor(Editor, commands.CursorWordLeft)
	want := []string{"alt+left", "ctrl+left"}
	if !reflect.DeepEqual(keys, want) {
		t.Fatalf("KeysFor = %v, want %v", keys, want)
	}
}

func TestParseContext(t *testing.T) {
	if c, ok := ParseContext(""); !ok || c != Global {
		t.Fatalf("ParseContext(\"\") = %q, %v", c, ok)
	}
	if _, ok := ParseContext("nowhere"); ok {
		t.Fatal("unknown context accepted")
	}
}
