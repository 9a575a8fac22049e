package store

import (
	"testing"

	"github.com/odvcencio/zcode/editor"
)

func testTabs(paths ...string) *Pane {
	p := newPane()
	for i, path := range paths {
		p.Add(&Tab{ID: TabID(i + 1), Path: path, Buffer: editor.NewTextBuffer("")})
	}
	return p
}

func TestNewPaneEmpty(t *testing.T) {
	p := newPane()
	if p.Count() != 0 {
		t.Errorf("Count = %d, want 0", p.Count())
	}
	if p.Active != -1 {
		t.Errorf("Active = %d, want -1", p.Active)
	}
	if p.ActiveTab() != nil {
		t.Error("ActiveTab should be nil when empty")
	}
}

func TestPaneAddActivates(t *testing.T) {
	p := testTabs("/a", "/b", "/c")
	if p.Count() != 3 {
		t.Errorf("Count = %d, want 3", p.Count())
	}
	if p.Active != 2 {
		t.Errorf("Active = %d, want 2", p.Active)
	}
	if got := p.IndexOf("/b"); got != 1 {
		t.Errorf("IndexOf(/b) = %d, want 1", got)
	}
	if got := p.IndexOf(""); got != -1 {
		t.Errorf("IndexOf(\"\") = %d, want -1", got)
	}
}

func TestPaneCloseShiftsActive(t *testing.T) {
	p := testTabs("/a", "/b", "/c")

	// Closing a tab before the active one shifts the index down.
	p.Close(0)
	if p.Active != 1 || p.ActiveTab().Path != "/c" {
		t.Errorf("after closing before active: Active = %d (%s), want 1 (/c)", p.Active, p.ActiveTab().Path)
	}

	// Closing the last, active tab clamps.
	p.Close(1)
	if p.Active != 0 || p.ActiveTab().Path != "/b" {
		t.Errorf("after closing active: Active = %d, want 0 (/b)", p.Active)
	}

	p.Close(0)
	if p.Active != -1 || p.Count() != 0 {
		t.Errorf("after closing all: Active = %d, Count = %d", p.Active, p.Count())
	}
	if p.Close(0) != nil {
		t.Error("Close on empty pane should return nil")
	}
}

func TestPaneCloseAfterActiveKeepsIndex(t *testing.T) {
	p := testTabs("/a", "/b", "/c")
	p.SetActive(0)
	p.Close(2)
	if p.Active != 0 {
		t.Errorf("Active = %d, want 0", p.Active)
	}
}

func TestPaneCycleWraps(t *testing.T) {
	p := testTabs("/a", "/b", "/c")
	p.Cycle(1)
	if p.Active != 0 {
		t.Errorf("Cycle(1) from last: Active = %d, want 0", p.Active)
	}
	p.Cycle(-1)
	if p.Active != 2 {
		t.Errorf("Cycle(-1) from first: Active = %d, want 2", p.Active)
	}
	p.SetActive(7)
	if p.Active != 2 {
		t.Errorf("SetActive out of range changed Active to %d", p.Active)
	}
}

func TestLayoutSplitAndClosePane(t *testing.T) {
	l := newLayout()
	l.ActivePane().Add(&Tab{ID: 1, Path: "/a", Buffer: editor.NewTextBuffer("")})
	if !l.split() {
		t.Fatal("split failed")
	}
	if l.split() {
		t.Error("split past MaxPanes succeeded")
	}
	if l.Active != 1 || l.ActiveTab() != l.Panes[0].ActiveTab() {
		t.Error("split should show the same tab in the new, focused pane")
	}
	if n := l.refs(l.ActiveTab()); n != 2 {
		t.Errorf("refs = %d, want 2", n)
	}
	tabs, ok := l.closePane(1)
	if !ok || len(tabs) != 1 {
		t.Fatalf("closePane = %d tabs, %v", len(tabs), ok)
	}
	if l.Active != 0 {
		t.Errorf("Active = %d, want 0", l.Active)
	}
	if _, ok := l.closePane(0); ok {
		t.Error("closing the last pane succeeded")
	}
}

func TestTabRenamePath(t *testing.T) {
	tab := &Tab{Path: "/ws/src/a.go"}
	if !tab.renamePath("/ws/src", "/ws/lib", true) || tab.Path != "/ws/lib/a.go" {
		t.Errorf("dir rename: Path = %s", tab.Path)
	}
	if tab.renamePath("/ws/li", "/ws/x", true) {
		t.Error("prefix of a name must not match")
	}
	if !tab.renamePath("/ws/lib/a.go", "/ws/lib/b.go", false) || tab.Path != "/ws/lib/b.go" {
		t.Errorf("file rename: Path = %s", tab.Path)
	}
}

func TestRingDropsOldest(t *testing.T) {
	r := NewRing(3)
	for _, s := range []string{"a", "b", "c", "d", "e"} {
		r.Push(s)
	}
	got := r.Lines()
	want := []string{"c", "d", "e"}
	if len(got) != len(want) {
		t.Fatalf("Lines = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Lines = %v, want %v", got, want)
		}
	}
	if r.Dropped != 2 {
		t.Errorf("Dropped = %d, want 2", r.Dropped)
	}
	if r.At(0) != "c" || r.At(5) != "" {
		t.Errorf("At(0) = %q, At(5) = %q", r.At(0), r.At(5))
	}
}
