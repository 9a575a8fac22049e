package workbench

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/odvcencio/zcode/commands"
	"github.com/odvcencio/zcode/explorer"
	"github.com/odvcencio/zcode/keymap"
	"github.com/odvcencio/zcode/store"
)

// fieldKeys edit the focused text field when no binding claims the key.
var fieldKeys = map[string]commands.Command{
	"backspace":      commands.Backspace,
	"ctrl+h":         commands.Backspace,
	"delete":         commands.DeleteForward,
	"ctrl+w":         commands.DeleteWordBackward,
	"alt+backspace":  commands.DeleteWordBackward,
	"ctrl+backspace": commands.DeleteWordBackward,
	"left":           commands.CursorLeft,
	"right":          commands.CursorRight,
	"home":           commands.CursorLineStart,
	"ctrl+a":         commands.CursorLineStart,
	"end":            commands.CursorLineEnd,
	"ctrl+e":         commands.CursorLineEnd,
}

var fieldContexts = map[keymap.Context]bool{
	keymap.Dialog:          true,
	keymap.Palette:         true,
	keymap.SearchInput:     true,
	keymap.EditorSearchBar: true,
}

// terminalKeys are the bytes a shell expects for keys with no rune.
var terminalKeys = map[string]string{
	"enter":     "\n",
	"tab":       "\t",
	"backspace": "\x7f",
	"space":     " ",
	"ctrl+c":    "\x03",
	"ctrl+d":    "\x04",
	"ctrl+l":    "\x0c",
	"ctrl+u":    "\x15",
	"ctrl+z":    "\x1a",
	"up":        "\x1b[A",
	"down":      "\x1b[B",
	"right":     "\x1b[C",
	"left":      "\x1b[D",
}

// key resolves a key press against the keymap of the focused context.
// Unbound keys become text, field edits or terminal bytes.
func (w *Workbench) key(msg tea.KeyMsg) {
	now := w.now()
	if msg.Paste {
		w.dispatch(store.Paste{Text: string(msg.Runes), Now: now})
		return
	}
	st := w.store.State()
	ctx := st.KeyContext()
	name := keymap.NormalizeKey(msg.String())
	if cmd, ok := st.Keymap.Lookup(ctx, name); ok {
		w.dispatch(store.RunCommand{Command: cmd, Now: now})
		return
	}
	if ctx == keymap.Terminal {
		if b, ok := terminalKeys[name]; ok {
			w.dispatch(store.TypeText{Text: b, Now: now})
			return
		}
	} else if cmd, ok := fieldKeys[name]; ok && fieldContexts[ctx] {
		w.dispatch(store.RunCommand{Command: cmd, Now: now})
		return
	}
	switch {
	case msg.Type == tea.KeyRunes && !msg.Alt:
		w.dispatch(store.TypeText{Text: string(msg.Runes), Now: now})
	case msg.Type == tea.KeySpace:
		w.dispatch(store.TypeText{Text: " ", Now: now})
	case msg.Type == tea.KeyTab && ctx == keymap.Editor:
		w.dispatch(store.TypeText{Text: "\t", Now: now})
	}
}

// dragState follows a left button press until its release.
type dragState struct {
	pressed  bool
	region   store.Region
	pane     int
	payload  *explorer.Payload
	x, y     int
	dragging bool
}

// mouse resolves a mouse event against the last drawn layout.
func (w *Workbench) mouse(msg tea.MouseMsg) {
	st := w.store.State()
	if w.layout.Width == 0 {
		w.layout = computeLayout(st)
	}
	now := w.now()
	region, row, col, pane := w.layout.hit(st, msg.X, msg.Y)
	act := store.MouseAction{Region: region, Row: row, Col: col, Pane: pane, Now: now}

	switch {
	case msg.Button == tea.MouseButtonWheelUp || msg.Button == tea.MouseButtonWheelDown:
		if msg.Action != tea.MouseActionPress {
			return
		}
		act.Kind = store.MouseWheelDown
		if msg.Button == tea.MouseButtonWheelUp {
			act.Kind = store.MouseWheelUp
		}
		w.dispatch(act)

	case msg.Button == tea.MouseButtonRight && msg.Action == tea.MouseActionPress:
		if region != store.RegionExplorer || st.UI.Blocked() {
			return
		}
		path := st.Root
		if rows := st.Explorer.Rows(); row >= 0 && row < len(rows) && !rows[row].Placeholder {
			path = st.Explorer.Path(rows[row].Node)
		}
		w.dispatch(store.OpenContextMenu{X: msg.X, Y: msg.Y, Path: path})

	case msg.Button == tea.MouseButtonLeft && msg.Action == tea.MouseActionPress:
		if m := st.UI.Menu; m != nil {
			r := menuRect(m, w.layout.Width, w.layout.Height)
			if r.Contains(msg.X, msg.Y) {
				if i := msg.Y - r.Y - 1; i >= 0 && i < len(m.Items) {
					w.dispatch(store.ContextMenuSelect{Index: i})
				}
				return
			}
		}
		w.drag = dragState{pressed: true, region: region, pane: pane, x: msg.X, y: msg.Y}
		w.drag.payload = dragPayload(st, region, row, col, pane)
		act.Kind = store.MousePress
		w.dispatch(act)

	case msg.Action == tea.MouseActionMotion:
		if !w.drag.pressed {
			return
		}
		if w.drag.payload != nil {
			if msg.X != w.drag.x || msg.Y != w.drag.y {
				w.drag.dragging = true
			}
			return
		}
		if w.drag.region == store.RegionEditor && region == store.RegionEditor && pane == w.drag.pane {
			act.Kind = store.MouseDrag
			w.dispatch(act)
		}

	case msg.Action == tea.MouseActionRelease:
		d := w.drag
		w.drag = dragState{}
		if !d.pressed {
			return
		}
		if d.dragging && d.payload != nil {
			w.dispatch(store.ExplorerDrop{
				Payload: *d.payload,
				Targets: w.layout.dropTargets(st),
				X:       msg.X,
				Y:       msg.Y,
			})
			return
		}
		if region == d.region {
			act.Kind = store.MouseRelease
			w.dispatch(act)
		}
	}
}

// dragPayload is what a press can start dragging: an explorer entry or a
// tab.
func dragPayload(st *store.AppState, region store.Region, row, col, pane int) *explorer.Payload {
	switch region {
	case store.RegionExplorer:
		rows := st.Explorer.Rows()
		if row < 0 || row >= len(rows) || rows[row].Placeholder || rows[row].Node == st.Explorer.RootID() {
			return nil
		}
		r := rows[row]
		return &explorer.Payload{Kind: explorer.PayloadPath, Path: st.Explorer.Path(r.Node), IsDir: r.Kind == explorer.Dir}
	case store.RegionTabBar:
		p := st.Layout.Pane(pane)
		if p == nil {
			return nil
		}
		t := p.Tab(col)
		if t == nil {
			return nil
		}
		return &explorer.Payload{Kind: explorer.PayloadTab, Path: t.Path, Pane: pane, Tab: col}
	}
	return nil
}
