package workbench

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odvcencio/zcode/explorer"
	"github.com/odvcencio/zcode/store"
)

// newLayoutStore returns a 100x30 store with a loaded root holding src/
// and a.txt open in a tab.
func newLayoutStore(t *testing.T) (*store.Store, string) {
	t.Helper()
	root := t.TempDir()
	s := store.New(store.Config{Root: root, LspDisabled: true, Width: 100, Height: 30})
	s.Dispatch(store.DirLoaded{Path: root, Entries: []explorer.Entry{{Name: "src", IsDir: true}, {Name: "a.txt"}}})
	path := filepath.Join(root, "a.txt")
	s.Dispatch(store.FileLoaded{Path: path, Content: "hello\nworld"})
	require.NotNil(t, s.State().Layout.ActiveTab())
	return s, path
}

func TestComputeLayoutGeometry(t *testing.T) {
	s, _ := newLayoutStore(t)
	l := computeLayout(s.State())
	assert.Equal(t, explorer.Rect{X: 0, Y: 0, W: 25, H: 29}, l.Sidebar)
	assert.Equal(t, explorer.Rect{X: 0, Y: 29, W: 100, H: 1}, l.Status)
	require.Len(t, l.Panes, 1)
	pl := l.Panes[0]
	assert.Equal(t, explorer.Rect{X: 26, Y: 0, W: 74, H: 1}, pl.TabBar)
	assert.Equal(t, 5, pl.Gutter.W)
	assert.Equal(t, 31, pl.Text.X)
	assert.Equal(t, []int{0, 1}, pl.Lines)
	assert.Zero(t, l.Bottom.H)
}

func TestComputeLayoutMatchesStoreViewport(t *testing.T) {
	s, _ := newLayoutStore(t)
	s.Dispatch(store.Resize{Width: 90, Height: 40})
	st := s.State()
	l := computeLayout(st)
	pl := l.Panes[0]
	assert.Equal(t, st.Layout.ActivePane().ViewHeight, pl.Text.H)
}

func TestHitResolvesRegions(t *testing.T) {
	s, _ := newLayoutStore(t)
	st := s.State()
	l := computeLayout(st)

	region, row, _, _ := l.hit(st, 2, 2)
	assert.Equal(t, store.RegionExplorer, region)
	assert.Equal(t, 1, row, "row 0 is the workspace root")

	region, _, col, pane := l.hit(st, 28, 0)
	assert.Equal(t, store.RegionTabBar, region)
	assert.Equal(t, 0, col)
	assert.Equal(t, 0, pane)

	region, row, col, _ = l.hit(st, 33, 2)
	assert.Equal(t, store.RegionEditor, region)
	assert.Equal(t, 1, row)
	assert.Equal(t, 2, col)

	region, row, col, _ = l.hit(st, 60, 20)
	assert.Equal(t, store.RegionEditor, region, "below the text clamps to the last line")
	assert.Equal(t, 1, row)
	assert.Equal(t, 5, col)

	region, _, _, _ = l.hit(st, 50, 29)
	assert.Equal(t, store.RegionNone, region)
}

func TestDropTargetsListDirectoriesAbovePanes(t *testing.T) {
	s, _ := newLayoutStore(t)
	st := s.State()
	targets := computeLayout(st).dropTargets(st)
	var dirs []string
	panes := 0
	for _, tg := range targets {
		switch tg.Kind {
		case explorer.TargetDir:
			dirs = append(dirs, filepath.Base(tg.Path))
			assert.Equal(t, 1, tg.Z)
		case explorer.TargetPane:
			panes++
		}
	}
	assert.Equal(t, 1, panes)
	assert.Equal(t, []string{filepath.Base(st.Root), "src"}, dirs)
}

func TestRenderDrawsEveryRegion(t *testing.T) {
	s, _ := newLayoutStore(t)
	st := s.State()
	p := newPainter(st.Theme)
	frame := ansi.Strip(p.render(st, computeLayout(st)))
	lines := strings.Split(frame, "\n")
	require.Len(t, lines, 30)
	for i, l := range lines {
		assert.Equal(t, 100, ansi.StringWidth(l), "line %d", i)
	}
	assert.Contains(t, lines[0], "EXPLORER")
	assert.Contains(t, lines[0], " a.txt ")
	assert.Contains(t, lines[1], "hello")
	assert.Contains(t, lines[2], "src")
	assert.Contains(t, lines[29], "Ln 1, Col 1")
}

func TestRenderWelcomeWithoutTabs(t *testing.T) {
	s := store.New(store.Config{Root: t.TempDir(), LspDisabled: true, Width: 80, Height: 24})
	st := s.State()
	frame := ansi.Strip(newPainter(st.Theme).render(st, computeLayout(st)))
	assert.Contains(t, frame, "Quick Open")
	assert.Contains(t, frame, "ctrl+p")
}
