package store

import (
	"unicode"

	"github.com/odvcencio/zcode/commands"
	"github.com/odvcencio/zcode/settings"
)

// TickInterval is how often the workbench sends Tick.
const TickInterval = 50 // ms

// Trigger is why a language server request is being debounced.
type Trigger int

const (
	// TriggerTyping is any edit; it refreshes document wide data.
	TriggerTyping Trigger = iota
	// TriggerIdentifier is an identifier character, which narrows or opens
	// completion.
	TriggerIdentifier
	// TriggerPunctuation is a trigger character such as '.'.
	TriggerPunctuation
)

var delays = map[settings.LspTiming][3]int64{
	settings.TimingFast:   {TriggerTyping: 120, TriggerIdentifier: 40, TriggerPunctuation: 0},
	settings.TimingNormal: {TriggerTyping: 250, TriggerIdentifier: 100, TriggerPunctuation: 30},
	settings.TimingSlow:   {TriggerTyping: 600, TriggerIdentifier: 250, TriggerPunctuation: 80},
}

// Delay returns the debounce delay of t in milliseconds.
func Delay(t Trigger, timing settings.LspTiming) int64 {
	d, ok := delays[timing]
	if !ok {
		d = delays[settings.TimingNormal]
	}
	return d[t]
}

// Classify maps a command to the debounce trigger it causes. Commands that
// do not edit text cause none.
func Classify(cmd commands.Command, timing settings.LspTiming) (Trigger, int64, bool) {
	switch cmd {
	case commands.Backspace, commands.DeleteForward, commands.DeleteWordBackward,
		commands.DeleteWordForward, commands.Newline, commands.InsertTab,
		commands.Undo, commands.Redo, commands.Cut, commands.Paste,
		commands.DeleteLine, commands.DuplicateLine, commands.MoveLineUp,
		commands.MoveLineDown, commands.Indent, commands.Outdent,
		commands.ReplaceCurrent, commands.ReplaceAll, commands.CompletionAccept:
		return TriggerTyping, Delay(TriggerTyping, timing), true
	}
	return 0, 0, false
}

// ClassifyRune maps a typed character to its trigger.
func ClassifyRune(r rune) Trigger {
	if r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r) {
		return TriggerIdentifier
	}
	return TriggerPunctuation
}

// DeadlineKind names one of the debounced requests.
type DeadlineKind int

const (
	DeadlineCompletion DeadlineKind = iota
	DeadlineSemanticTokens
	DeadlineInlayHints
	DeadlineFolding
	DeadlineHover
	numDeadlines
)

var deadlineCommands = [numDeadlines]commands.Command{
	DeadlineCompletion:     commands.LspCompletion,
	DeadlineSemanticTokens: commands.LspSemanticTokens,
	DeadlineInlayHints:     commands.LspInlayHints,
	DeadlineFolding:        commands.LspFoldingRange,
	DeadlineHover:          commands.LspHover,
}

// Deadline is a scheduled request.
type Deadline struct {
	At  int64
	Set bool
	// Char is the trigger character of a completion deadline.
	Char string
}

// Debounce holds the deadlines inspected on every tick.
type Debounce struct {
	deadlines [numDeadlines]Deadline
	// firing is the completion trigger character of the deadline being
	// fired, consumed by the completion request.
	firing string
	// Fired counts fired deadlines.
	Fired int
}

// Schedule sets or moves the deadline of kind.
func (d *Debounce) Schedule(kind DeadlineKind, at int64, char string) {
	d.deadlines[kind] = Deadline{At: at, Set: true, Char: char}
}

// Clear drops the deadline of kind.
func (d *Debounce) Clear(kind DeadlineKind) { d.deadlines[kind] = Deadline{} }

// Get returns the deadline of kind.
func (d *Debounce) Get(kind DeadlineKind) (Deadline, bool) {
	dl := d.deadlines[kind]
	return dl, dl.Set
}

// due lists the kinds whose deadline passed, in kind order.
func (d *Debounce) due(now int64) []DeadlineKind {
	var out []DeadlineKind
	for k := range numDeadlines {
		if dl := d.deadlines[k]; dl.Set && dl.At <= now {
			out = append(out, k)
		}
	}
	return out
}

// scheduleEdit resets the document refresh deadlines after an edit.
func (s *Store) scheduleEdit(now int64) {
	d := Delay(TriggerTyping, s.st.Config.LspTiming)
	s.st.Debounce.Schedule(DeadlineSemanticTokens, now+d, "")
	s.st.Debounce.Schedule(DeadlineInlayHints, now+2*d, "")
	s.st.Debounce.Schedule(DeadlineFolding, now+2*d, "")
	s.scheduleHover(now)
}

// scheduleHover restarts the idle hover timer.
func (s *Store) scheduleHover(now int64) {
	s.st.lastInputAt = now
	s.st.UI.Hover = ""
	if s.st.Config.HoverIdleMs > 0 {
		s.st.Debounce.Schedule(DeadlineHover, now+s.st.Config.HoverIdleMs, "")
	}
}

// tick fires every due deadline whose conditions hold. A deadline fires at
// most once: it is cleared whether or not its request is sent.
func (s *Store) tick(now int64) bool {
	changed := false
	for _, k := range s.st.Debounce.due(now) {
		dl, _ := s.st.Debounce.Get(k)
		s.st.Debounce.Clear(k)
		if !s.canFire(k, now) {
			continue
		}
		s.st.Debounce.Fired++
		s.st.Debounce.firing = dl.Char
		s.ticking = true
		if s.runCommand(deadlineCommands[k], now) {
			changed = true
		}
		s.ticking = false
		s.st.Debounce.firing = ""
	}
	return changed
}

// canFire checks that the editor still wants the request: it has focus,
// no dialog is open, the same request is not already in flight and, for
// hover, the user has been idle long enough.
func (s *Store) canFire(k DeadlineKind, now int64) bool {
	if s.st.UI.Focus != FocusEditor || s.st.UI.Blocked() || s.st.LspDisabled {
		return false
	}
	t := s.st.Layout.ActiveTab()
	if t == nil || t.Path == "" {
		return false
	}
	switch k {
	case DeadlineCompletion:
		if p := s.st.Completion.Pending; p != nil && p.Path == t.Path && p.Version == t.Version {
			return false
		}
	case DeadlineSemanticTokens:
		return t.SemanticVersion != t.Version
	case DeadlineInlayHints:
		return t.HintsVersion != t.Version
	case DeadlineFolding:
		return t.FoldVersion != t.Version
	case DeadlineHover:
		return now-s.st.lastInputAt >= s.st.Config.HoverIdleMs && !s.st.Completion.Visible
	}
	return true
}
