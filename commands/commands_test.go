package commands

import "testing"

func TestParseBuiltin(t *testing.T) {
	c, ok := Parse("file.save")
	if !ok || c != Save {
		t.Fatalf("Parse(file.save) = %q, %v", c, ok)
	}
	if !IsBuiltin(CursorLeft) {
		t.Fatal("cursor.left should be built in even though the palette hides it")
	}
}

func TestParseUnknownBecomesCustom(t *testing.T) {
	c, ok := Parse("my.macro")
	if !ok {
		t.Fatal("Parse reported false for a non-empty name")
	}
	if !c.IsCustom() || c.CustomName() != "my.macro" {
		t.Fatalf("Parse(my.macro) = %q, want Custom(my.macro)", c)
	}
	if again, _ := Parse(string(c)); again != c {
		t.Fatalf("Parse is not idempotent: %q -> %q", c, again)
	}
}

func TestParseEmptyUnbinds(t *testing.T) {
	if _, ok := Parse("  "); ok {
		t.Fatal("Parse of a blank name should report false")
	}
}

func TestPluginCommand(t *testing.T) {
	c := Plugin("fmt", "run")
	if c != "plugin:fmt:run" {
		t.Fatalf("Plugin = %q", c)
	}
	p, id, ok := c.PluginParts()
	if !ok || p != "fmt" || id != "run" {
		t.Fatalf("PluginParts = %q %q %v", p, id, ok)
	}
	if parsed, _ := Parse("plugin:fmt:run"); parsed != c {
		t.Fatalf("Parse(plugin) = %q", parsed)
	}
	if _, _, ok := Command("plugin:only").PluginParts(); ok {
		t.Fatal("a plugin name without a command id should not split")
	}
}

func TestAllCommandsHaveLabels(t *testing.T) {
	seen := map[Command]bool{}
	for _, info := range AllCommands() {
		if info.Label == "" || info.Category == "" {
			t.Fatalf("%q lacks a label or category", info.Command)
		}
		if seen[info.Command] {
			t.Fatalf("%q listed twice", info.Command)
		}
		seen[info.Command] = true
		if got, ok := Lookup(info.Command); !ok || got != info {
			t.Fatalf("Lookup(%q) = %+v, %v", info.Command, got, ok)
		}
	}
}
