package workbench

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/odvcencio/zcode/store"
)

// tickInterval drives debounce deadlines and the drain of adapter events.
const tickInterval = 50 * time.Millisecond

// Per drain caps keep one busy adapter from starving input.
const (
	drainPlugin  = 256
	drainLog     = 1024
	drainSearch  = 256
	drainLsp     = 256
	drainResults = 64
)

type tickMsg time.Time

type wakeMsg struct{}

func tick() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (w *Workbench) waitWake() tea.Cmd {
	return func() tea.Msg {
		select {
		case <-w.wake:
			return wakeMsg{}
		case <-w.ctx.Done():
			return nil
		}
	}
}

// Init performs the effects that load the workspace and starts the tick.
func (w *Workbench) Init() tea.Cmd {
	w.perform(w.store.Init())
	for _, path := range w.opts.Open {
		w.dispatch(store.OpenPath{Path: path, Line: -1})
	}
	return tea.Batch(tick(), w.waitWake())
}

// Update turns one message into actions.
func (w *Workbench) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch msg := msg.(type) {
	case tickMsg:
		w.drain()
		w.dispatch(store.Tick{Now: w.now()})
		cmd = tick()
	case wakeMsg:
		w.drain()
		cmd = w.waitWake()
	case tea.WindowSizeMsg:
		w.dispatch(store.Resize{Width: msg.Width, Height: msg.Height})
	case tea.KeyMsg:
		w.key(msg)
	case tea.MouseMsg:
		w.mouse(msg)
	}
	if w.quitting || w.store.State().UI.Quit {
		w.quitting = true
		return w, tea.Quit
	}
	return w, cmd
}

// View draws the current state.
func (w *Workbench) View() string {
	st := w.store.State()
	w.painter.setTheme(st.Theme)
	w.layout = computeLayout(st)
	return w.painter.render(st, w.layout)
}

// dispatch reduces a and performs the resulting effects.
func (w *Workbench) dispatch(a store.Action) {
	res := w.store.Dispatch(a)
	w.perform(res.Effects)
	if s, ok := a.(store.SettingsReloaded); ok && s.Settings != nil {
		w.settingsApplied()
	}
}

// drain moves pending adapter output into the store, a bounded amount per
// source.
func (w *Workbench) drain() {
	for i := 0; i < drainResults; i++ {
		select {
		case a := <-w.results:
			w.dispatch(a)
			continue
		default:
		}
		break
	}
	now := w.now()
	for i := 0; i < drainLsp; i++ {
		select {
		case ev := <-w.lspEvents:
			if a, ok := store.FromLspEvent(ev, now); ok {
				w.dispatch(a)
			}
			continue
		default:
		}
		break
	}
	for i := 0; i < drainSearch; i++ {
		select {
		case m := <-w.globalMsgs:
			w.dispatch(store.GlobalSearchMsg{Msg: m})
			continue
		case m := <-w.editorMsgs:
			w.dispatch(store.EditorSearchMsg{Msg: m})
			continue
		default:
		}
		break
	}
	for i := 0; i < drainPlugin; i++ {
		select {
		case ev := <-w.plugEvents:
			if a, ok := store.FromPluginEvent(ev); ok {
				w.dispatch(a)
			}
			continue
		default:
		}
		break
	}
	for i := 0; i < drainLog; i++ {
		select {
		case line := <-w.logs:
			w.dispatch(store.LogLine{Line: line})
			continue
		default:
		}
		break
	}
	if n := w.logDrops.Swap(0); n > 0 {
		w.dispatch(store.LogLine{Line: fmt.Sprintf("%d log lines dropped", n)})
	}
}

// settingsApplied pushes reloaded settings to the adapters that keep
// their own copy.
func (w *Workbench) settingsApplied() {
	st := w.store.State()
	if w.lsp != nil {
		w.lsp.SetServers(st.Servers)
	}
	w.startPlugins(st.PluginConfigs)
}
