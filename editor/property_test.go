package editor

import (
	"testing"

	"pgregory.net/rapid"
)

var alphabet = []string{"a", "b", " ", "\n", "\u00e9", "_", ".", "\U0001F600", "e\u0301", "1\u20e3", "\u0915\u094d\u200d"}

func genText(t *rapid.T, label string) string {
	parts := rapid.SliceOfN(rapid.SampledFrom(alphabet), 0, 40).Draw(t, label)
	out := ""
	for _, p := range parts {
		out += p
	}
	return out
}

// applyRandomOp runs one buffer operation chosen by the generator.
func applyRandomOp(t *rapid.T, b *TextBuffer, now int64) {
	switch rapid.IntRange(0, 16).Draw(t, "op") {
	case 0:
		b.InsertText(genText(t, "insert"), now)
	case 1:
		b.DeleteBackward(now)
	case 2:
		b.DeleteForward(now)
	case 3:
		b.MoveCursorByGrapheme(rapid.IntRange(-3, 3).Draw(t, "delta"), rapid.Bool().Draw(t, "extend"))
	case 4:
		b.MoveCursorByWord(rapid.SampledFrom([]int{-1, 1}).Draw(t, "dir"), rapid.Bool().Draw(t, "extend"))
	case 5:
		b.MoveCursorVertical(rapid.IntRange(-2, 2).Draw(t, "rows"), rapid.Bool().Draw(t, "extend"))
	case 6:
		b.AddCursor(Position{
			Row: rapid.IntRange(-1, 6).Draw(t, "row"),
			Col: rapid.IntRange(-1, 12).Draw(t, "col"),
		})
	case 7:
		b.AddNextOccurrence()
	case 8:
		b.InsertNewline(now)
	case 9:
		b.DeleteWordBackward(now)
	case 10:
		b.Undo()
	case 11:
		b.Redo()
	case 12:
		b.DuplicateLines(now)
	case 13:
		b.MoveLines(rapid.SampledFrom([]int{-1, 1}).Draw(t, "dir"), now)
	case 14:
		b.SelectWordAt(Position{Row: rapid.IntRange(0, 4).Draw(t, "row"), Col: rapid.IntRange(0, 8).Draw(t, "col")})
	case 15:
		b.AddCursorVertical(rapid.SampledFrom([]int{-1, 1}).Draw(t, "dir"))
	case 16:
		b.DeleteWordForward(now)
	}
}

func TestPropertyCursorInvariantsHold(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		b := NewTextBuffer(genText(t, "initial"))
		steps := rapid.IntRange(1, 40).Draw(t, "steps")
		for i := 0; i < steps; i++ {
			applyRandomOp(t, b, int64(i+1))
			if err := b.CheckInvariants(); err != nil {
				t.Fatalf("step %d: %v", i, err)
			}
		}
	})
}

func TestPropertyUndoRestoresEveryState(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		b := NewTextBuffer(genText(t, "initial"))
		var states []string
		steps := rapid.IntRange(1, 25).Draw(t, "steps")
		for i := 0; i < steps; i++ {
			before := b.Text()
			res := b.InsertText(genText(t, "text"), int64(i+1))
			if res.Changed {
				states = append(states, before)
			}
		}
		for i := len(states) - 1; i >= 0; i-- {
			b.Undo()
			if got := b.Text(); got != states[i] {
				t.Fatalf("undo %d = %q, want %q", i, got, states[i])
			}
		}
	})
}

func TestPropertyDeltasReplayToFinalText(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		b := NewTextBuffer(genText(t, "initial"))
		shadow := []byte(b.Text())
		steps := rapid.IntRange(1, 30).Draw(t, "steps")
		for i := 0; i < steps; i++ {
			before := b.Text()
			var deltas []EditDelta
			switch rapid.IntRange(0, 3).Draw(t, "kind") {
			case 0:
				deltas = b.InsertText(genText(t, "text"), int64(i)).Deltas
			case 1:
				deltas = b.DeleteBackward(int64(i)).Deltas
			case 2:
				deltas = b.Undo().Deltas
			default:
				b.AddCursor(Position{Row: rapid.IntRange(0, 5).Draw(t, "row"), Col: rapid.IntRange(0, 9).Draw(t, "col")})
			}
			if string(shadow) != before {
				t.Fatalf("shadow diverged before step %d", i)
			}
			for _, d := range deltas {
				next := make([]byte, 0, len(shadow)+len(d.Text))
				next = append(next, shadow[:d.StartByte]...)
				next = append(next, d.Text...)
				next = append(next, shadow[d.OldEndByte:]...)
				shadow = next
			}
			if string(shadow) != b.Text() {
				t.Fatalf("step %d: replayed %q, buffer %q", i, shadow, b.Text())
			}
		}
	})
}

func TestPropertyHistoryLogRecovers(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		initial := genText(t, "initial")
		b := NewTextBuffer(initial)
		log := NewHistoryLog(initial)
		steps := rapid.IntRange(1, 40).Draw(t, "steps")
		for i := 0; i < steps; i++ {
			applyRandomOp(t, b, int64(i+1))
		}
		log = append(log, b.History().TakePending()...)
		_, r, err := RecoverHistory(initial, log)
		if err != nil {
			t.Fatalf("recover: %v", err)
		}
		if r.String() != b.Text() {
			t.Fatalf("recovered %q, want %q", r.String(), b.Text())
		}
	})
}
