package keymap

import (
	"sort"
	"strings"

	"github.com/odvcencio/zcode/commands"
)

// Context names the input target a key is resolved against.
type Context string

const (
	Global          Context = "global"
	Editor          Context = "editor"
	EditorSearchBar Context = "editor.searchBar"
	Completion      Context = "editor.completion"
	Explorer        Context = "explorer"
	SearchInput     Context = "search.input"
	SearchResults   Context = "search.results"
	BottomPanel     Context = "bottomPanel"
	Terminal        Context = "terminal"
	Palette         Context = "palette"
	Dialog          Context = "dialog"
	Confirm         Context = "confirm"
)

// parents lists the context each one overlays. Modal contexts overlay
// nothing.
var parents = map[Context]Context{
	Editor:          Global,
	EditorSearchBar: Editor,
	Completion:      Editor,
	Explorer:        Global,
	SearchInput:     Global,
	SearchResults:   Global,
	BottomPanel:     Global,
}

// ParseContext maps a settings context name; blank means Global.
func ParseContext(name string) (Context, bool) {
	if strings.TrimSpace(name) == "" {
		return Global, true
	}
	c := Context(strings.TrimSpace(name))
	switch c {
	case Global, Editor, EditorSearchBar, Completion, Explorer, SearchInput,
		SearchResults, BottomPanel, Terminal, Palette, Dialog, Confirm:
		return c, true
	}
	return "", false
}

// Chain returns ctx followed by the contexts it overlays.
func Chain(ctx Context) []Context {
	out := []Context{ctx}
	for p, ok := parents[ctx]; ok; p, ok = parents[p] {
		out = append(out, p)
	}
	return out
}

// Binding maps a key in a context to a command. An empty Command unbinds
// the key, hiding any binding from a lower layer or a parent context.
type Binding struct {
	Key     string
	Command commands.Command
	Context Context
}

type layer int

const (
	layerDefault layer = iota
	layerPlugin
	layerUser
	layerCount
)

type entry struct {
	cmd   commands.Command
	owner string
}

type table map[Context]map[string]entry

func (t table) set(b Binding, owner string) {
	m := t[b.Context]
	if m == nil {
		m = make(map[string]entry)
		t[b.Context] = m
	}
	m[b.Key] = entry{cmd: b.Command, owner: owner}
}

// Service resolves (context, key) pairs. It is immutable; the With methods
// return modified copies so a reload replaces the whole service.
type Service struct {
	layers [layerCount]table
}

// New builds a service from default bindings.
func New(defaults []Binding) *Service {
	s := &Service{}
	for i := range s.layers {
		s.layers[i] = make(table)
	}
	for _, b := range defaults {
		b.Key = NormalizeKey(b.Key)
		s.layers[layerDefault].set(b, "")
	}
	return s
}

// NewDefault builds a service holding the built-in bindings.
func NewDefault() *Service { return New(DefaultBindings()) }

func (s *Service) clone() *Service {
	out := &Service{}
	for i, t := range s.layers {
		out.layers[i] = make(table, len(t))
		for ctx, m := range t {
			cp := make(map[string]entry, len(m))
			for k, v := range m {
				cp[k] = v
			}
			out.layers[i][ctx] = cp
		}
	}
	return out
}

// WithUserBindings returns a copy whose user layer is replaced by bs.
func (s *Service) WithUserBindings(bs []Binding) *Service {
	out := s.clone()
	out.layers[layerUser] = make(table)
	for _, b := range bs {
		b.Key = NormalizeKey(b.Key)
		out.layers[layerUser].set(b, "")
	}
	return out
}

// WithPluginBindings returns a copy in which pluginID's bindings are
// replaced by bs. Another plugin's binding for the same key is kept only if
// bs does not claim it.
func (s *Service) WithPluginBindings(pluginID string, bs []Binding) *Service {
	out := s.clone()
	for _, m := range out.layers[layerPlugin] {
		for k, e := range m {
			if e.owner == pluginID {
				delete(m, k)
			}
		}
	}
	for _, b := range bs {
		b.Key = NormalizeKey(b.Key)
		out.layers[layerPlugin].set(b, pluginID)
	}
	return out
}

// Lookup resolves key in ctx. Contexts are tried from the most specific;
// within a context a user binding beats a plugin binding, which beats a
// default. An unbinding stops the search.
func (s *Service) Lookup(ctx Context, key string) (commands.Command, bool) {
	key = NormalizeKey(key)
	for _, c := range Chain(ctx) {
		for l := layerUser; l >= layerDefault; l-- {
			if e, ok := s.layers[l][c][key]; ok {
				if e.cmd == "" {
					return "", false
				}
				return e.cmd, true
			}
		}
	}
	return "", false
}

// KeysFor returns the keys that resolve to cmd in ctx, sorted.
func (s *Service) KeysFor(ctx Context, cmd commands.Command) []string {
	seen := make(map[string]bool)
	var keys []string
	for _, c := range Chain(ctx) {
		for l := layerUser; l >= layerDefault; l-- {
			for k := range s.layers[l][c] {
				if seen[k] {
					continue
				}
				seen[k] = true
				if got, ok := s.Lookup(ctx, k); ok && got == cmd {
					keys = append(keys, k)
				}
			}
		}
	}
	sort.Strings(keys)
	return keys
}

var modifierOrder = []string{"ctrl", "alt", "shift"}

// NormalizeKey canonicalises a key description such as "Alt+Ctrl+Up" to
// "ctrl+alt+up". Single printable keys keep their case because shift is
// encoded in it.
func NormalizeKey(key string) string {
	if key == " " {
		return "space"
	}
	key = strings.TrimSpace(key)
	if key == "" || key == "+" {
		return key
	}
	var base string
	rest := key
	if strings.HasSuffix(key, "++") {
		base, rest = "+", strings.TrimSuffix(key, "++")
	} else if i := strings.LastIndexByte(key, '+'); i >= 0 {
		base, rest = key[i+1:], key[:i]
	} else {
		base, rest = key, ""
	}
	mods := make(map[string]bool)
	if rest != "" {
		for _, m := range strings.Split(rest, "+") {
			mods[strings.ToLower(strings.TrimSpace(m))] = true
		}
	}
	if len([]rune(base)) > 1 {
		base = strings.ToLower(base)
	}
	var sb strings.Builder
	for _, m := range modifierOrder {
		if mods[m] {
			sb.WriteString(m)
			sb.WriteByte('+')
		}
	}
	sb.WriteString(base)
	return sb.String()
}
