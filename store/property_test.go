package store

import (
	"fmt"
	"testing"

	"pgregory.net/rapid"

	"github.com/odvcencio/zcode/commands"
)

var propertyCommands = []commands.Command{
	commands.Undo, commands.Redo, commands.Backspace, commands.DeleteForward,
	commands.Newline, commands.InsertTab, commands.CursorLeft, commands.CursorRight,
	commands.CursorUp, commands.CursorDown, commands.SelectWordLeft, commands.SelectAll,
	commands.DuplicateLine, commands.MoveLineUp, commands.AddCursorBelow,
	commands.DeleteLine, commands.Save, commands.Find, commands.SearchBarClose,
	commands.NextTab, commands.SplitPane, commands.ClosePane, commands.ToggleFold,
}

func genAction(t *rapid.T, now int64) Action {
	switch rapid.IntRange(0, 5).Draw(t, "kind") {
	case 0, 1:
		return TypeText{Text: rapid.SampledFrom([]string{"a", "(", ".", " ", "é", "\t", "xy"}).Draw(t, "text"), Now: now}
	case 2:
		return RunCommand{Command: rapid.SampledFrom(propertyCommands).Draw(t, "cmd"), Now: now}
	case 3:
		return Tick{Now: now}
	case 4:
		return FileLoaded{Path: rapid.SampledFrom([]string{"/ws/a.txt", "/ws/b.txt"}).Draw(t, "path"), Content: "one\n  two\nthree"}
	}
	return Paste{Text: "p\nq", Now: now}
}

// snapshot renders the observable state of s and the kinds of effects it
// produced.
func snapshot(s *Store, res DispatchResult) string {
	st := s.State()
	out := fmt.Sprintf("changed=%v focus=%d panes=%d", res.StateChanged, st.UI.Focus, len(st.Layout.Panes))
	for _, t := range st.Layout.Tabs() {
		out += fmt.Sprintf(" [%s v%d dirty=%v %q %v]", t.Path, t.Version, t.Dirty, t.Buffer.Text(), t.Buffer.Cursor())
	}
	for _, e := range res.Effects {
		out += fmt.Sprintf(" %T", e)
	}
	return out
}

func TestDispatchIsDeterministic(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		a := New(Config{Root: "/ws", LspDisabled: true, Width: 80, Height: 24})
		b := New(Config{Root: "/ws", LspDisabled: true, Width: 80, Height: 24})
		n := rapid.IntRange(1, 40).Draw(t, "n")
		for i := range n {
			act := genAction(t, int64(i)*37)
			ga, gb := snapshot(a, a.Dispatch(act)), snapshot(b, b.Dispatch(act))
			if ga != gb {
				t.Fatalf("step %d (%T) diverged:\n%s\n%s", i, act, ga, gb)
			}
		}
	})
}

func TestVersionNeverDecreases(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		s := New(Config{Root: "/ws", LspDisabled: true, Width: 80, Height: 24})
		seen := make(map[TabID]uint64)
		n := rapid.IntRange(1, 40).Draw(t, "n")
		for i := range n {
			s.Dispatch(genAction(t, int64(i)*37))
			for _, tab := range s.State().Layout.Tabs() {
				if tab.Version < seen[tab.ID] {
					t.Fatalf("tab %d version went from %d to %d", tab.ID, seen[tab.ID], tab.Version)
				}
				seen[tab.ID] = tab.Version
				if !tab.Dirty && tab.Buffer.Modified() {
					t.Fatalf("tab %d is modified but not dirty", tab.ID)
				}
			}
		}
	})
}
