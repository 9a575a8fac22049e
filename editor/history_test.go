package editor

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpIDParseRoundTrip(t *testing.T) {
	id := OpID{Millis: 1700000000123, Seq: 42}
	got, err := ParseOpID(id.String())
	require.NoError(t, err)
	assert.Equal(t, id, got)

	_, err = ParseOpID("nope")
	assert.Error(t, err)
}

func TestOpIDOrdering(t *testing.T) {
	a := OpID{Millis: 5, Seq: 9}
	b := OpID{Millis: 6, Seq: 1}
	c := OpID{Millis: 6, Seq: 2}
	assert.True(t, a.Less(b))
	assert.True(t, b.Less(c))
	assert.False(t, c.Less(a))
}

func TestHistoryBranchesAndRedoNewestChild(t *testing.T) {
	b := NewTextBuffer("")
	b.InsertText("a", 1)
	b.InsertText("b", 2)
	b.Undo()
	b.InsertText("c", 3)
	assert.Equal(t, "ac", b.Text())

	b.Undo()
	assert.Equal(t, "a", b.Text())
	b.Redo()
	assert.Equal(t, "ac", b.Text(), "redo follows the most recent branch")

	h := b.History()
	assert.Equal(t, 3, h.Len(), "abandoned branch is kept")
	branches := h.Branches()
	require.Len(t, branches, 1)
	assert.Len(t, h.Children(branches[0]), 2)
}

func TestHistoryUndoToRootAndBack(t *testing.T) {
	b := NewTextBuffer("x")
	for i := 0; i < 5; i++ {
		b.InsertText("y", int64(i+1))
	}
	for b.CanUndo() {
		b.Undo()
	}
	assert.Equal(t, "x", b.Text())
	assert.False(t, b.Undo().Changed)
	for b.CanRedo() {
		b.Redo()
	}
	assert.Equal(t, "yyyyyx", b.Text())
}

func TestHistoryCheckpointsRebuildDeepNodes(t *testing.T) {
	b := NewTextBuffer("")
	for i := 0; i < CheckpointEvery*3+5; i++ {
		b.InsertText("z", int64(i))
	}
	h := b.History()
	assert.Greater(t, len(h.checkpoints), 3)
	want := b.Text()
	assert.Equal(t, want, h.RopeAt(h.Head()).String())
	for i := 0; i < CheckpointEvery+1; i++ {
		b.Undo()
	}
	assert.Equal(t, want[:len(want)-CheckpointEvery-1], b.Text())
}

func TestHistoryOpRecordsAreSelfDescribing(t *testing.T) {
	b := NewTextBuffer("hello")
	b.SetSelection(0, 5)
	b.InsertText("bye", 7)
	op, ok := b.History().Op(b.History().Head())
	require.True(t, ok)
	assert.Equal(t, OpReplace, op.Kind)
	require.Len(t, op.Edits, 1)
	assert.Equal(t, "hello", op.Edits[0].Deleted)
	assert.Equal(t, "bye", op.Edits[0].Inserted)
	assert.Equal(t, int64(7), op.ID.Millis)
}

func TestHistoryLogRecovery(t *testing.T) {
	const saved = "package main\n"
	b := NewTextBuffer(saved)
	log := NewHistoryLog(saved)

	b.MoveDocEnd(false)
	b.InsertText("func a() {}\n", 100)
	b.InsertText("func b() {}\n", 101)
	b.Undo()
	b.InsertText("func c() {}\n", 102)
	log = append(log, b.History().TakePending()...)

	h, r, err := RecoverHistory(saved, log)
	require.NoError(t, err)
	assert.Equal(t, b.Text(), r.String())
	assert.Equal(t, b.History().Head(), h.Head())
	assert.Equal(t, b.History().Len(), h.Len())

	restored := RestoreTextBuffer(h, r)
	assert.True(t, restored.Modified())
	restored.Undo()
	assert.Equal(t, saved+"func a() {}\n", restored.Text())
}

func TestHistoryLogRebaseAfterSave(t *testing.T) {
	b := NewTextBuffer("v1")
	b.MoveDocEnd(false)
	b.InsertText("+", 1)
	savedText := b.Text()
	log := b.History().Rebase(savedText)
	require.Len(t, log, 2)
	assert.True(t, strings.HasPrefix(log[1], "ROOT="))

	b.InsertText("!", 2)
	log = append(log, b.History().TakePending()...)

	h, r, err := RecoverHistory(savedText, log)
	require.NoError(t, err)
	assert.Equal(t, "v1+!", r.String())
	restored := RestoreTextBuffer(h, r)
	restored.Undo()
	assert.Equal(t, savedText, restored.Text())
	assert.False(t, restored.CanUndo())
}

func TestHistoryLogRejectsForeignContent(t *testing.T) {
	log := NewHistoryLog("one")
	_, _, err := RecoverHistory("two", log)
	assert.True(t, errors.Is(err, ErrHistoryMismatch))
}

func TestHistoryLogRejectsCorruptRecords(t *testing.T) {
	log := append(NewHistoryLog("x"), "OP {not json")
	_, _, err := RecoverHistory("x", log)
	assert.Error(t, err)

	log = append(NewHistoryLog("x"), "HEAD=9-9")
	_, _, err = RecoverHistory("x", log)
	assert.Error(t, err)
}
