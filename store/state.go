package store

import (
	"sort"

	"github.com/odvcencio/zcode/commands"
	"github.com/odvcencio/zcode/completion"
	"github.com/odvcencio/zcode/explorer"
	"github.com/odvcencio/zcode/keymap"
	"github.com/odvcencio/zcode/lsp"
	"github.com/odvcencio/zcode/plugin"
	"github.com/odvcencio/zcode/search"
	"github.com/odvcencio/zcode/settings"
)

// Focus is the target keyboard input goes to.
type Focus int

const (
	FocusEditor Focus = iota
	FocusExplorer
	FocusBottomPanel
	FocusCommandPalette
)

// SidebarTab selects what the sidebar shows.
type SidebarTab int

const (
	SidebarExplorer SidebarTab = iota
	SidebarSearch
)

// BottomTab selects what the bottom panel shows.
type BottomTab int

const (
	BottomTerminal BottomTab = iota
	BottomProblems
	BottomSearchResults
	BottomLogs
	BottomLocations
	BottomSymbols
	BottomCodeActions
	numBottomTabs
)

var bottomNames = [...]string{
	BottomTerminal:      "Terminal",
	BottomProblems:      "Problems",
	BottomSearchResults: "Search",
	BottomLogs:          "Logs",
	BottomLocations:     "Locations",
	BottomSymbols:       "Symbols",
	BottomCodeActions:   "Code Actions",
}

func (t BottomTab) String() string {
	if t >= 0 && t < numBottomTabs {
		return bottomNames[t]
	}
	return "?"
}

// BottomTabs lists the bottom panel tabs in display order.
func BottomTabs() []BottomTab {
	out := make([]BottomTab, numBottomTabs)
	for i := range out {
		out[i] = BottomTab(i)
	}
	return out
}

// Location is one row of the Locations and Problems panels.
type Location struct {
	Path     string
	Line     int
	Col      int
	Text     string
	Severity int
	// Enc is the unit of Col when it came from a language server that
	// could not convert it; empty means runes.
	Enc lsp.Encoding
}

// PluginState is what the editor knows about a plugin.
type PluginState struct {
	ID       string
	State    plugin.State
	Reason   string
	Commands []plugin.CommandDecl
	Status   []plugin.StatusItem
}

// ServerStatus is the last lifecycle report of a language server.
type ServerStatus struct {
	Server  string
	Root    string
	State   lsp.State
	Attempt int
	Err     string
	Caps    lsp.Capabilities
}

// UIState is everything about the screen that is not a document.
type UIState struct {
	Focus          Focus
	Sidebar        SidebarTab
	Bottom         BottomTab
	SidebarVisible bool
	BottomVisible  bool
	// SearchResultsFocused moves sidebar search input to the result list.
	SearchResultsFocused bool
	PanelSelected        int
	PanelScroll          int
	PanelHeight          int

	Input   *InputDialog
	Confirm *ConfirmDialog
	Menu    *ContextMenu
	Palette *Palette

	Hover     string
	Signature string
	Message   string

	Width, Height int
	Quit          bool
}

// Blocked reports whether a modal dialog owns input.
func (u *UIState) Blocked() bool {
	return u.Input != nil || u.Confirm != nil || u.Menu != nil || u.Palette != nil
}

// AppState is the single source of truth of the editor.
type AppState struct {
	Root             string
	Layout           Layout
	OpenPathsVersion uint64

	Explorer *explorer.Model
	RepoRoot string
	Search   search.State

	Keymap  *keymap.Service
	Theme   settings.Theme
	Config  settings.Editor
	Servers map[string]lsp.ServerConfig
	Plugins map[string]*PluginState
	// PluginConfigs are the plugins the settings declare.
	PluginConfigs []settings.Plugin
	// CustomCommands are the names user bindings give that no built-in
	// command claims.
	CustomCommands []commands.Command
	LspDisabled    bool

	Lsp         map[string]ServerStatus
	Diagnostics map[string][]lsp.Diagnostic
	Problems    []Location
	Locations   []Location
	Symbols     []lsp.Symbol
	CodeActions []lsp.CodeAction
	actionPath  string

	Completion completion.State
	Ranker     *completion.Ranker
	rankerSeen int

	Debounce Debounce

	Logs            Ring
	Terminal        Ring
	terminalPartial string
	TerminalRunning bool

	UI UIState

	nextTab     TabID
	nextSearch  uint64
	lastInputAt int64
}

// PluginIDs returns known plugin ids, sorted.
func (s *AppState) PluginIDs() []string {
	ids := make([]string, 0, len(s.Plugins))
	for id := range s.Plugins {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// KeyContext is the keymap context input is resolved against.
func (s *AppState) KeyContext() keymap.Context {
	switch {
	case s.UI.Confirm != nil:
		return keymap.Confirm
	case s.UI.Palette != nil:
		return keymap.Palette
	case s.UI.Input != nil, s.UI.Menu != nil:
		return keymap.Dialog
	}
	switch s.UI.Focus {
	case FocusExplorer:
		if s.UI.Sidebar == SidebarSearch {
			if s.UI.SearchResultsFocused {
				return keymap.SearchResults
			}
			return keymap.SearchInput
		}
		return keymap.Explorer
	case FocusBottomPanel:
		if s.UI.Bottom == BottomTerminal {
			return keymap.Terminal
		}
		return keymap.BottomPanel
	case FocusCommandPalette:
		return keymap.Palette
	}
	p := s.Layout.ActivePane()
	switch {
	case p.Bar.Visible && p.BarFocused:
		return keymap.EditorSearchBar
	case s.Completion.Visible:
		return keymap.Completion
	}
	return keymap.Editor
}

// StatusItems returns the status bar entries plugins declared, ordered by
// plugin id.
func (s *AppState) StatusItems() []plugin.StatusItem {
	var out []plugin.StatusItem
	for _, id := range s.PluginIDs() {
		p := s.Plugins[id]
		if p.State != plugin.StateOnline {
			continue
		}
		out = append(out, p.Status...)
	}
	return out
}

// PanelLen returns the number of rows in the current bottom tab.
func (s *AppState) PanelLen() int {
	switch s.UI.Bottom {
	case BottomProblems:
		return len(s.Problems)
	case BottomSearchResults:
		return len(s.Search.Items)
	case BottomLogs:
		return s.Logs.Len()
	case BottomLocations:
		return len(s.Locations)
	case BottomSymbols:
		return len(s.Symbols)
	case BottomCodeActions:
		return len(s.CodeActions)
	case BottomTerminal:
		return s.Terminal.Len()
	}
	return 0
}
