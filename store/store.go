// Package store holds the editor state and the reducer that evolves it.
// Dispatch is synchronous and deterministic: time arrives in actions, and
// anything that touches the outside world leaves as an Effect.
package store

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/odvcencio/zcode/commands"
	"github.com/odvcencio/zcode/completion"
	"github.com/odvcencio/zcode/explorer"
	"github.com/odvcencio/zcode/keymap"
	"github.com/odvcencio/zcode/lsp"
	"github.com/odvcencio/zcode/settings"
)

// DispatchResult is what one action produced. StateChanged may report a
// change that did not happen, never the reverse.
type DispatchResult struct {
	Effects      []Effect
	StateChanged bool
}

// Config seeds a Store.
type Config struct {
	Root        string
	Settings    *settings.File
	Ranker      *completion.Ranker
	LspDisabled bool
	Width       int
	Height      int
}

// Store owns the AppState.
type Store struct {
	st      *AppState
	effects []Effect
	// now is the latest timestamp seen in an action, used by reductions
	// whose action carries none.
	now int64
	// openOnCreate is a path created from the new file dialog.
	openOnCreate string
	// jumps are cursor targets waiting for a file load.
	jumps map[string]jump
	// reverting lists paths whose next load replaces the buffer.
	reverting map[string]bool
	// lastEditorClick detects double and triple clicks in the editor.
	lastEditorClick editorClick
	userBindings    []keymap.Binding
	// compEnc is the position encoding of the completion items shown.
	compEnc lsp.Encoding
	// diagEnc, symbolEnc and actionEnc are the encodings of the stored
	// language server results.
	diagEnc   map[string]lsp.Encoding
	symbolEnc lsp.Encoding
	actionEnc lsp.Encoding
	// ticking is set while deadlines fire, which keeps automatic requests
	// quiet.
	ticking bool
}

type jump struct {
	line, col int
	enc       lsp.Encoding
}

type editorClick struct {
	row, col, count int
	at              int64
}

// New builds a store for cfg. Call Init for the effects that load the
// workspace.
func New(cfg Config) *Store {
	f := cfg.Settings
	if f == nil {
		f = settings.Default()
	}
	root := filepath.Clean(cfg.Root)
	ranker := cfg.Ranker
	if ranker == nil {
		ranker = completion.NewRanker()
	}
	st := &AppState{
		Root:        root,
		Layout:      newLayout(),
		Explorer:    explorer.New(root, f.Editor.DoubleClickMs),
		Plugins:     make(map[string]*PluginState),
		Lsp:         make(map[string]ServerStatus),
		Diagnostics: make(map[string][]lsp.Diagnostic),
		Ranker:      ranker,
		LspDisabled: cfg.LspDisabled,
		Logs:        NewRing(MaxLogLines),
		Terminal:    NewRing(MaxTerminalLines),
		UI: UIState{
			Focus:          FocusEditor,
			SidebarVisible: true,
			Width:          max(cfg.Width, 1),
			Height:         max(cfg.Height, 1),
		},
	}
	s := &Store{
		st:        st,
		jumps:     make(map[string]jump),
		reverting: make(map[string]bool),
		diagEnc:   make(map[string]lsp.Encoding),
	}
	s.applySettings(f)
	s.relayout()
	return s
}

// State returns the current state. Callers must not mutate it.
func (s *Store) State() *AppState { return s.st }

// Init returns the effects that populate a fresh store.
func (s *Store) Init() []Effect {
	return []Effect{LoadDir{Path: s.st.Root}, GitRefreshStatus{Root: s.st.Root}}
}

// Dispatch reduces a.
func (s *Store) Dispatch(a Action) DispatchResult {
	s.effects = nil
	changed := s.reduce(a)
	out := s.effects
	s.effects = nil
	return DispatchResult{Effects: out, StateChanged: changed}
}

func (s *Store) emit(e ...Effect) { s.effects = append(s.effects, e...) }

func (s *Store) logf(format string, args ...any) {
	s.st.Logs.Push(fmt.Sprintf(format, args...))
}

// message shows a line in the status bar and the logs.
func (s *Store) message(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	s.st.UI.Message = msg
	s.st.Logs.Push(msg)
}

func (s *Store) clock(now int64) int64 {
	if now > s.now {
		s.now = now
	}
	return s.now
}

func (s *Store) reduce(a Action) bool {
	switch a := a.(type) {
	case RunCommand:
		s.clock(a.Now)
		return s.runCommand(a.Command, s.now)
	case EditorAction:
		s.clock(a.Now)
		return s.editorAction(a)
	case TypeText:
		s.clock(a.Now)
		return s.typeText(a.Text, s.now)
	case Paste:
		s.clock(a.Now)
		return s.paste(a.Text, s.now)
	case ClipboardText:
		s.clock(a.Now)
		return s.paste(a.Text, s.now)
	case Tick:
		s.clock(a.Now)
		return s.tick(s.now)
	case Resize:
		s.st.UI.Width, s.st.UI.Height = max(a.Width, 1), max(a.Height, 1)
		s.relayout()
		return true
	case MouseAction:
		s.clock(a.Now)
		return s.mouse(a)

	case OpenPath:
		return s.openPath(a)
	case FileLoaded:
		return s.fileLoaded(a)
	case FileLoadError:
		delete(s.jumps, a.Path)
		delete(s.reverting, a.Path)
		s.message("open %s: %s", s.rel(a.Path), a.Err)
		return true
	case FileSaved:
		return s.fileSaved(a)
	case CloseTabAt:
		return s.closeTabAt(a.Pane, a.Tab)

	case DirLoaded:
		s.st.Explorer.DirLoaded(a.Path, a.Entries)
		return true
	case DirLoadError:
		s.st.Explorer.DirLoadError(a.Path)
		s.logf("list %s: %s", s.rel(a.Path), a.Err)
		return true
	case PathCreated:
		return s.pathCreated(a)
	case PathDeleted:
		return s.pathDeleted(a)
	case PathRenamed:
		return s.pathRenamed(a)
	case FsOpError:
		s.message("%s %s: %s", a.Op, s.rel(a.Path), a.Err)
		return true
	case FilesListed:
		return s.filesListed(a)
	case GitStatusLoaded:
		s.st.RepoRoot = a.RepoRoot
		s.st.Explorer.SetGitStatus(a.Statuses)
		return true
	case ExplorerClickRow:
		s.clock(a.Now)
		return s.explorerClick(a.Row, a.Now)
	case ExplorerScroll:
		s.st.Explorer.ScrollBy(a.Delta)
		return true
	case ExplorerDrop:
		return s.drop(a)

	case GlobalSearchMsg:
		return s.st.Search.Apply(a.Msg)
	case EditorSearchMsg:
		return s.editorSearchMsg(a.Msg)
	case SearchClickRow:
		return s.searchClick(a)

	case LspDiagnostics:
		return s.lspDiagnostics(a.DiagnosticsEvent)
	case LspSemanticTokens:
		return s.lspSemanticTokens(a.SemanticTokensEvent)
	case LspHover:
		return s.lspHover(a.HoverEvent)
	case LspCompletion:
		s.clock(a.Now)
		return s.lspCompletion(a.CompletionEvent, s.now)
	case LspSignatureHelp:
		return s.lspSignatureHelp(a.SignatureHelpEvent)
	case LspInlayHints:
		return s.lspInlayHints(a.InlayHintsEvent)
	case LspFoldingRanges:
		return s.lspFoldingRanges(a.FoldingRangesEvent)
	case LspLocations:
		return s.lspLocations(a.LocationsEvent)
	case LspSymbols:
		return s.lspSymbols(a.SymbolsEvent)
	case LspCodeActions:
		return s.lspCodeActions(a.CodeActionsEvent)
	case LspEdits:
		s.clock(a.Now)
		return s.lspEdits(a.EditsEvent, s.now)
	case LspWorkspaceEdit:
		s.clock(a.Now)
		s.applyWorkspaceEdit(a.Edit, a.Encoding, s.now)
		return true
	case LspRequestFailed:
		s.logf("lsp %s %s: %s", a.Kind, s.rel(a.Path), a.Err)
		return true
	case LspServerState:
		return s.lspServerState(a.StateEvent)

	case PluginRegistered:
		return s.pluginRegistered(a.RegisteredEvent)
	case PluginPatched:
		return s.pluginPatched(a.PatchEvent)
	case PluginOnline:
		return s.pluginOnline(a.OnlineEvent)
	case PluginOffline:
		return s.pluginOffline(a.OfflineEvent)
	case PluginLog:
		s.logf("[%s] %s: %s", a.PluginID, strings.ToUpper(orDefault(a.Level, "info")), a.Message)
		return true

	case SettingsReloaded:
		s.applySettings(a.Settings)
		s.logf("settings reloaded")
		return true
	case SettingsError:
		s.message("settings: %s", a.Err)
		return true
	case LogLine:
		s.st.Logs.Push(a.Line)
		return s.st.UI.BottomVisible && s.st.UI.Bottom == BottomLogs
	case TerminalOutput:
		s.terminalOutput(a.Data)
		return true
	case TerminalExited:
		s.st.TerminalRunning = false
		s.terminalOutput("\n[process exited" + suffix(a.Err) + "]\n")
		return true

	case OpenContextMenu:
		return s.openContextMenu(a)
	case ContextMenuSelect:
		return s.contextMenuSelect(a.Index)
	}
	return false
}

func suffix(err string) string {
	if err == "" {
		return ""
	}
	return ": " + err
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

// rel shortens path for messages.
func (s *Store) rel(path string) string {
	if r, err := filepath.Rel(s.st.Root, path); err == nil && !strings.HasPrefix(r, "..") {
		return r
	}
	return path
}

// abs resolves a user typed path against the workspace root.
func (s *Store) abs(path string) string {
	path = strings.TrimSpace(path)
	if path == "" {
		return ""
	}
	if !filepath.IsAbs(path) {
		path = filepath.Join(s.st.Root, path)
	}
	return filepath.Clean(path)
}

// applySettings installs f wholesale: keymap, theme, editor config and
// server table are all rebuilt.
func (s *Store) applySettings(f *settings.File) {
	if f == nil {
		f = settings.Default()
	}
	s.st.Config = f.Editor
	s.st.Theme = settings.DefaultTheme().Merge(f.Theme)
	overrides := make(map[string]lsp.ServerConfig, len(f.Lsp))
	for lang, srv := range f.Lsp {
		overrides[lang] = lsp.ServerConfig{Command: srv.Command, Args: srv.Args}
	}
	s.st.Servers = lsp.MergeServers(lsp.DefaultServers(), overrides)
	s.st.PluginConfigs = append([]settings.Plugin(nil), f.Plugins...)
	s.st.Explorer.DoubleClickMs = f.Editor.DoubleClickMs
	s.userBindings = f.Bindings()
	s.st.CustomCommands = s.st.CustomCommands[:0]
	seen := make(map[commands.Command]bool)
	for _, b := range s.userBindings {
		if b.Command.IsCustom() && !seen[b.Command] {
			seen[b.Command] = true
			s.st.CustomCommands = append(s.st.CustomCommands, b.Command)
		}
	}
	s.rebuildKeymap()
}

// rebuildKeymap layers user and plugin bindings over the defaults.
func (s *Store) rebuildKeymap() {
	km := keymap.NewDefault().WithUserBindings(s.userBindings)
	for _, id := range s.st.PluginIDs() {
		p := s.st.Plugins[id]
		var bs []keymap.Binding
		for _, c := range p.Commands {
			if c.Key == "" {
				continue
			}
			ctx, ok := keymap.ParseContext(c.Context)
			if !ok {
				continue
			}
			bs = append(bs, keymap.Binding{Key: c.Key, Command: commands.Plugin(id, c.ID), Context: ctx})
		}
		km = km.WithPluginBindings(id, bs)
	}
	s.st.Keymap = km
}

// relayout sizes viewports from the terminal size: one row each for the
// tab bar and the status bar, a third of the screen for the bottom panel.
func (s *Store) relayout() {
	h := s.st.UI.Height
	body := max(h-1, 1)
	panel := 0
	if s.st.UI.BottomVisible {
		panel = max(body/3, 3)
	}
	s.st.UI.PanelHeight = max(panel-1, 1)
	editorRows := max(body-panel-1, 1)
	for _, p := range s.st.Layout.Panes {
		p.ViewHeight = editorRows
		if p.Bar.Visible {
			p.ViewHeight = max(editorRows-2, 1)
		}
	}
	s.st.Explorer.SetViewHeight(max(body-1, 1))
	s.st.Search.SetHeight(&s.st.Search.Sidebar, max(body-4, 1))
	s.st.Search.SetHeight(&s.st.Search.Panel, s.st.UI.PanelHeight)
}
