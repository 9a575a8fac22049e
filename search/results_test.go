package search

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func fileMsg(id uint64, path string, n int) Message {
	ms := make([]Match, n)
	for i := range ms {
		ms[i] = Match{Line: i, Len: 1}
	}
	return Message{SearchID: id, Kind: MsgFileMatches, File: FileMatches{Path: path, Matches: ms}}
}

func TestStateIgnoresStaleIDs(t *testing.T) {
	var s State
	s.Begin(1, "/w")
	require.True(t, s.Apply(fileMsg(1, "/w/a", 1)))
	s.Begin(2, "/w")
	require.False(t, s.Apply(fileMsg(1, "/w/b", 3)))
	require.Empty(t, s.Files)
	require.True(t, s.Apply(fileMsg(2, "/w/c", 2)))
	require.False(t, s.Apply(Message{SearchID: 1, Kind: MsgComplete}))
	require.True(t, s.Running)
	require.True(t, s.Apply(Message{SearchID: 2, Kind: MsgComplete, TotalFiles: 5, TotalMatches: 2}))
	require.False(t, s.Running)
	require.Equal(t, 2, s.TotalMatches)
}

func TestStateItemsAlternateHeadersAndMatches(t *testing.T) {
	var s State
	s.Begin(1, "/w")
	s.Apply(fileMsg(1, "/w/a", 2))
	s.Apply(fileMsg(1, "/w/b", 1))
	kinds := func() []ItemKind {
		var out []ItemKind
		for _, it := range s.Items {
			out = append(out, it.Kind)
		}
		return out
	}
	require.Equal(t, []ItemKind{ItemFileHeader, ItemMatchLine, ItemMatchLine, ItemFileHeader, ItemMatchLine}, kinds())

	s.ToggleFile(0)
	require.Equal(t, []ItemKind{ItemFileHeader, ItemFileHeader, ItemMatchLine}, kinds())
	s.SetExpandedAll(false)
	require.Len(t, s.Items, 2)
	require.Equal(t, "a", s.DisplayPath("/w/a"))
}

func TestViewportsAreIndependent(t *testing.T) {
	var s State
	s.Begin(1, "/w")
	for i := 0; i < 5; i++ {
		s.Apply(fileMsg(1, "/w/f", 3))
	}
	s.SetHeight(&s.Sidebar, 4)
	s.SetHeight(&s.Panel, 10)
	s.Move(&s.Sidebar, 6)
	require.Equal(t, 6, s.Sidebar.Selected)
	require.Equal(t, 3, s.Sidebar.Scroll)
	require.Equal(t, 0, s.Panel.Selected)
	s.Move(&s.Panel, 100)
	require.Equal(t, len(s.Items)-1, s.Panel.Selected)
	require.Equal(t, len(s.Items)-10, s.Panel.Scroll)

	path, m, isMatch, ok := s.Target(s.Sidebar)
	require.True(t, ok)
	require.True(t, isMatch)
	require.Equal(t, "/w/f", path)
	require.Equal(t, 1, m.Line)
}
