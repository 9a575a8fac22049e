package explorer

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func rowNames(m *Model) []string {
	var out []string
	for _, r := range m.Rows() {
		if r.Placeholder {
			out = append(out, strings.Repeat(" ", r.Depth)+"…")
			continue
		}
		out = append(out, strings.Repeat(" ", r.Depth)+r.Name)
	}
	return out
}

func loadedModel(t *testing.T) *Model {
	t.Helper()
	m := New("/ws", 400)
	require.True(t, m.DirLoaded("/ws", []Entry{
		{Name: "zeta.txt"}, {Name: "src", IsDir: true}, {Name: "Alpha.md"}, {Name: "bin", IsDir: true},
	}))
	return m
}

func TestNewRootIsExpandedAndLoading(t *testing.T) {
	m := New("/ws", 400)
	root, ok := m.Node(m.RootID())
	require.True(t, ok)
	require.Equal(t, Loading, root.Load)
	require.True(t, m.IsExpanded(m.RootID()))
	require.Equal(t, []string{"ws", " …"}, rowNames(m))
}

func TestFlattenOrdersDirsFirst(t *testing.T) {
	m := loadedModel(t)
	require.Equal(t, []string{"ws", " bin", " src", " Alpha.md", " zeta.txt"}, rowNames(m))
}

func TestExpandLoadsOnce(t *testing.T) {
	m := loadedModel(t)
	src, _ := m.Lookup("/ws/src")
	path, need := m.Expand(src)
	require.True(t, need)
	require.Equal(t, "/ws/src", path)
	n, _ := m.Node(src)
	require.Equal(t, Loading, n.Load)

	_, need = m.Expand(src)
	require.False(t, need, "a Loading directory must not be requested twice")

	require.True(t, m.DirLoaded("/ws/src", []Entry{{Name: "main.go"}}))
	require.Equal(t, []string{"ws", " bin", " src", "  main.go", " Alpha.md", " zeta.txt"}, rowNames(m))

	m.Collapse(src)
	_, need = m.Expand(src)
	require.False(t, need)
}

func TestDirLoadErrorReturnsToNotLoaded(t *testing.T) {
	m := loadedModel(t)
	bin, _ := m.Lookup("/ws/bin")
	m.Expand(bin)
	require.True(t, m.DirLoadError("/ws/bin"))
	n, _ := m.Node(bin)
	require.Equal(t, NotLoaded, n.Load)
	_, need := m.Expand(bin)
	require.True(t, need)
}

func TestRootNeverCollapses(t *testing.T) {
	m := loadedModel(t)
	m.Collapse(m.RootID())
	require.True(t, m.IsExpanded(m.RootID()))
}

func TestReloadKeepsSurvivingChildren(t *testing.T) {
	m := loadedModel(t)
	src, _ := m.Lookup("/ws/src")
	m.Expand(src)
	m.DirLoaded("/ws/src", []Entry{{Name: "a.go"}})
	m.DirLoaded("/ws", []Entry{{Name: "src", IsDir: true}, {Name: "new.txt"}})
	again, ok := m.Lookup("/ws/src")
	require.True(t, ok)
	require.Equal(t, src, again)
	require.True(t, m.IsExpanded(src))
	_, ok = m.Lookup("/ws/bin")
	require.False(t, ok)
	require.Equal(t, []string{"ws", " src", "  a.go", " new.txt"}, rowNames(m))
}

func TestCreateDeleteRename(t *testing.T) {
	m := loadedModel(t)
	require.True(t, m.PathCreated("/ws/b.txt", false))
	require.Equal(t, []string{"ws", " bin", " src", " Alpha.md", " b.txt", " zeta.txt"}, rowNames(m))

	src, _ := m.Lookup("/ws/src")
	m.Expand(src)
	m.DirLoaded("/ws/src", []Entry{{Name: "x.go"}})
	require.True(t, m.PathRenamed("/ws/src", "/ws/lib", true))
	_, ok := m.Lookup("/ws/src/x.go")
	require.False(t, ok)
	x, ok := m.Lookup("/ws/lib/x.go")
	require.True(t, ok)
	require.Equal(t, "/ws/lib/x.go", m.Path(x))
	require.Equal(t, []string{"ws", " bin", " lib", "  x.go", " Alpha.md", " b.txt", " zeta.txt"}, rowNames(m))

	require.True(t, m.PathDeleted("/ws/lib"))
	_, ok = m.Lookup("/ws/lib/x.go")
	require.False(t, ok)
	require.False(t, m.PathDeleted("/ws"), "the root cannot be deleted")
}

func TestRenameIntoUnloadedDirDropsNode(t *testing.T) {
	m := loadedModel(t)
	require.True(t, m.PathRenamed("/ws/zeta.txt", "/ws/bin/zeta.txt", false))
	_, ok := m.Lookup("/ws/zeta.txt")
	require.False(t, ok)
	_, ok = m.Lookup("/ws/bin/zeta.txt")
	require.False(t, ok)
}

func TestSelectionFollowsNode(t *testing.T) {
	m := loadedModel(t)
	z, _ := m.Lookup("/ws/zeta.txt")
	require.True(t, m.SelectNode(z))
	m.PathCreated("/ws/a.txt", false)
	got, _ := m.SelectedNode()
	require.Equal(t, z, got)
}

func TestSelectionStaysVisible(t *testing.T) {
	m := loadedModel(t)
	m.SetViewHeight(2)
	m.MoveSelection(4)
	require.Equal(t, 4, m.Selected())
	require.Equal(t, 3, m.Scroll())
	m.MoveSelection(-10)
	require.Equal(t, 0, m.Selected())
	require.Equal(t, 0, m.Scroll())
}

func TestDoubleClick(t *testing.T) {
	m := loadedModel(t)
	tests := []struct {
		row  int
		now  int64
		want bool
	}{
		{1, 1000, false},
		{1, 1300, true},
		{1, 1400, false},
		{2, 1500, false},
		{1, 1600, false},
		{1, 2100, false},
		{1, 2500, true},
	}
	for i, tt := range tests {
		if got := m.Click(tt.row, tt.now); got != tt.want {
			t.Fatalf("click %d (row %d at %d) = %v, want %v", i, tt.row, tt.now, got, tt.want)
		}
	}
}

func TestRevealExpandsAncestors(t *testing.T) {
	m := loadedModel(t)
	loads := m.Reveal("/ws/src/pkg/file.go")
	require.Equal(t, []string{"/ws/src"}, loads)
	m.DirLoaded("/ws/src", []Entry{{Name: "pkg", IsDir: true}})
	loads = m.Reveal("/ws/src/pkg/file.go")
	require.Equal(t, []string{"/ws/src/pkg"}, loads)
}

func TestGitOverlay(t *testing.T) {
	m := loadedModel(t)
	src, _ := m.Lookup("/ws/src")
	m.Expand(src)
	m.DirLoaded("/ws/src", []Entry{{Name: "main.go"}})
	m.SetGitStatus(ParsePorcelain("/ws", " M src/main.go\n?? zeta.txt\nR  old.md -> Alpha.md\n"))
	require.Equal(t, GitModified, m.GitStatusOf("/ws/src/main.go"))
	require.Equal(t, GitModified, m.GitStatusOf("/ws/src"))
	require.Equal(t, GitUntracked, m.GitStatusOf("/ws/zeta.txt"))
	require.Equal(t, GitRenamed, m.GitStatusOf("/ws/Alpha.md"))
	require.Equal(t, GitClean, m.GitStatusOf("/ws/bin"))
	for _, r := range m.Rows() {
		if r.Name == "main.go" {
			require.Equal(t, GitModified, r.Git)
		}
	}
}

func TestParsePorcelainKinds(t *testing.T) {
	got := ParsePorcelain("/r", "A  a\nD  b\nUU c\n!! d\nMM e\n")
	require.Equal(t, map[string]GitStatus{
		"/r/a": GitAdded, "/r/b": GitDeleted, "/r/c": GitConflicted, "/r/d": GitIgnored, "/r/e": GitModified,
	}, got)
}

func TestClipboardPaste(t *testing.T) {
	m := loadedModel(t)
	z, _ := m.Lookup("/ws/zeta.txt")
	bin, _ := m.Lookup("/ws/bin")

	require.True(t, m.Copy(z))
	p, ok := m.Paste(m.RootID(), nil)
	require.True(t, ok)
	require.Equal(t, Paste{Op: ClipCopy, From: "/ws/zeta.txt", To: "/ws/zeta copy.txt"}, p)
	_, held := m.Clipboard()
	require.True(t, held, "copies stay on the clipboard")

	require.True(t, m.Cut(z))
	p, ok = m.Paste(bin, nil)
	require.True(t, ok)
	require.Equal(t, Paste{Op: ClipCut, From: "/ws/zeta.txt", To: "/ws/bin/zeta.txt"}, p)
	_, held = m.Clipboard()
	require.False(t, held, "a cut is consumed by the paste")

	src, _ := m.Lookup("/ws/src")
	require.True(t, m.Cut(src))
	_, ok = m.Paste(src, nil)
	require.False(t, ok, "a directory cannot be pasted into itself")
	require.False(t, m.Copy(m.RootID()))
}

func TestUniqueNameCounts(t *testing.T) {
	taken := map[string]bool{"/d/a.txt": true, "/d/a copy.txt": true, "/d/a copy 2.txt": true}
	got := uniqueName("/d/a.txt", func(p string) bool { return taken[p] })
	require.Equal(t, "/d/a copy 3.txt", got)
	require.Equal(t, "/d/.env copy", uniqueName("/d/.env", func(p string) bool { return p == "/d/.env" }))
}

func TestCanDropAndTopmostWins(t *testing.T) {
	dirPayload := Payload{Kind: PayloadPath, Path: "/ws/src", IsDir: true}
	require.False(t, CanDrop(dirPayload, Target{Kind: TargetDir, Path: "/ws/src"}))
	require.False(t, CanDrop(dirPayload, Target{Kind: TargetDir, Path: "/ws/src/pkg"}))
	require.False(t, CanDrop(dirPayload, Target{Kind: TargetDir, Path: "/ws"}))
	require.True(t, CanDrop(dirPayload, Target{Kind: TargetDir, Path: "/ws/bin"}))
	require.False(t, CanDrop(dirPayload, Target{Kind: TargetPane}))

	file := Payload{Kind: PayloadPath, Path: "/ws/a.go"}
	require.True(t, CanDrop(file, Target{Kind: TargetPane, Pane: 0}))
	tab := Payload{Kind: PayloadTab, Pane: 0}
	require.False(t, CanDrop(tab, Target{Kind: TargetPane, Pane: 0}))
	require.True(t, CanDrop(tab, Target{Kind: TargetPane, Pane: 1}))

	targets := []Target{
		{Kind: TargetDir, Path: "/ws/bin", Area: Rect{0, 0, 10, 10}, Z: 1},
		{Kind: TargetDir, Path: "/ws", Area: Rect{0, 0, 10, 10}, Z: 3},
		{Kind: TargetDir, Path: "/ws/lib", Area: Rect{0, 0, 10, 10}, Z: 2},
		{Kind: TargetDir, Path: "/ws/top", Area: Rect{20, 20, 5, 5}, Z: 9},
	}
	got, ok := ResolveDrop(file, targets, 3, 3)
	require.True(t, ok)
	require.Equal(t, "/ws/lib", got.Path, "the incompatible topmost target is skipped")
	_, ok = ResolveDrop(file, targets, 15, 15)
	require.False(t, ok)
	require.Equal(t, "/ws/lib/a.go", DropPath(file, got))
}

func TestReadDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub"), 0o755))
	require.NoError(t, os.Mkdir(filepath.Join(dir, ".git"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "f.txt"), nil, 0o644))
	entries, err := ReadDir(dir)
	require.NoError(t, err)
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	require.Equal(t, []Entry{{Name: "f.txt"}, {Name: "sub", IsDir: true}}, entries)

	_, err = ReadDir(filepath.Join(dir, "missing"))
	require.Error(t, err)
}

// TestFlattenProperty loads random trees and checks the row order
// invariants.
func TestFlattenProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		m := New("/r", 400)
		dirs := []string{"/r"}
		loads := rapid.IntRange(1, 12).Draw(t, "loads")
		for i := 0; i < loads; i++ {
			dir := rapid.SampledFrom(dirs).Draw(t, "dir")
			names := rapid.SliceOfNDistinct(rapid.StringMatching(`[a-cA-C]{1,3}`), 0, 5, func(s string) string { return s }).Draw(t, "names")
			var entries []Entry
			for _, n := range names {
				isDir := rapid.Bool().Draw(t, "isDir")
				entries = append(entries, Entry{Name: n, IsDir: isDir})
			}
			if !m.DirLoaded(dir, entries) {
				continue
			}
			for _, e := range entries {
				if e.IsDir {
					p := filepath.Join(dir, e.Name)
					dirs = append(dirs, p)
					if id, ok := m.Lookup(p); ok && rapid.Bool().Draw(t, "expand") {
						m.Expand(id)
					}
				}
			}
		}
		rows := m.Rows()
		if len(rows) == 0 || rows[0].Node != m.RootID() {
			t.Fatalf("first row is not the root")
		}
		for i := 1; i < len(rows); i++ {
			if rows[i].Depth > rows[i-1].Depth+1 {
				t.Fatalf("row %d jumps from depth %d to %d", i, rows[i-1].Depth, rows[i].Depth)
			}
		}
		for _, r := range rows {
			if r.Placeholder {
				continue
			}
			n, _ := m.Node(r.Node)
			for j := 1; j < len(n.Children); j++ {
				a, _ := m.Node(n.Children[j-1])
				b, _ := m.Node(n.Children[j])
				if a.Kind == File && b.Kind == Dir {
					t.Fatalf("file %q sorted before dir %q", a.Name, b.Name)
				}
				if a.Kind == b.Kind && strings.ToLower(a.Name) > strings.ToLower(b.Name) {
					t.Fatalf("%q sorted before %q", a.Name, b.Name)
				}
			}
		}
		if sel := m.Selected(); sel < 0 || sel >= len(rows) {
			t.Fatalf("selection %d out of %d rows", sel, len(rows))
		}
	})
}
