package settings

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"

	"github.com/odvcencio/zcode/commands"
	"github.com/odvcencio/zcode/keymap"
)

// LspTiming selects how eagerly language server requests follow typing.
type LspTiming string

const (
	TimingFast   LspTiming = "fast"
	TimingNormal LspTiming = "normal"
	TimingSlow   LspTiming = "slow"
)

const (
	DefaultTabSize       = 4
	DefaultDoubleClickMs = 400
	DefaultHoverIdleMs   = 700
)

// Keybinding is one entry of the keybindings list. An empty command unbinds
// the key.
type Keybinding struct {
	Key     string `yaml:"key"`
	Command string `yaml:"command"`
	Context string `yaml:"context,omitempty"`
}

// Editor holds editor behaviour knobs.
type Editor struct {
	TabSize       int       `yaml:"tab_size"`
	InsertSpaces  bool      `yaml:"insert_spaces"`
	DoubleClickMs int64     `yaml:"double_click_ms"`
	LspTiming     LspTiming `yaml:"lsp_timing"`
	HoverIdleMs   int64     `yaml:"hover_idle_ms"`
}

// Server overrides the command that starts a language server.
type Server struct {
	Command string   `yaml:"command"`
	Args    []string `yaml:"args,omitempty"`
}

// Plugin declares a plugin process to launch.
type Plugin struct {
	ID      string   `yaml:"id"`
	Command string   `yaml:"command"`
	Args    []string `yaml:"args,omitempty"`
}

// File is the decoded settings file.
type File struct {
	Keybindings []Keybinding      `yaml:"keybindings,omitempty"`
	Theme       map[string]string `yaml:"theme,omitempty"`
	Editor      Editor            `yaml:"editor"`
	Lsp         map[string]Server `yaml:"lsp,omitempty"`
	Plugins     []Plugin          `yaml:"plugins,omitempty"`
}

// Default returns the settings used when no file exists.
func Default() *File {
	f := &File{}
	f.applyDefaults()
	return f
}

func (f *File) applyDefaults() {
	if f.Editor.TabSize <= 0 {
		f.Editor.TabSize = DefaultTabSize
	}
	if f.Editor.DoubleClickMs <= 0 {
		f.Editor.DoubleClickMs = DefaultDoubleClickMs
	}
	if f.Editor.HoverIdleMs <= 0 {
		f.Editor.HoverIdleMs = DefaultHoverIdleMs
	}
	if f.Editor.LspTiming == "" {
		f.Editor.LspTiming = TimingNormal
	}
}

// Validate reports every problem in the file at once.
func (f *File) Validate() error {
	var err error
	switch f.Editor.LspTiming {
	case TimingFast, TimingNormal, TimingSlow:
	default:
		err = multierr.Append(err, fmt.Errorf("editor.lsp_timing: unknown profile %q", f.Editor.LspTiming))
	}
	if f.Editor.TabSize > 16 {
		err = multierr.Append(err, fmt.Errorf("editor.tab_size: %d is larger than 16", f.Editor.TabSize))
	}
	for i, kb := range f.Keybindings {
		if strings.TrimSpace(kb.Key) == "" {
			err = multierr.Append(err, fmt.Errorf("keybindings[%d]: key is required", i))
		}
		if _, ok := keymap.ParseContext(kb.Context); !ok {
			err = multierr.Append(err, fmt.Errorf("keybindings[%d]: unknown context %q", i, kb.Context))
		}
	}
	seen := make(map[string]bool)
	for i, p := range f.Plugins {
		if p.ID == "" || p.Command == "" {
			err = multierr.Append(err, fmt.Errorf("plugins[%d]: id and command are required", i))
			continue
		}
		if strings.Contains(p.ID, ":") {
			err = multierr.Append(err, fmt.Errorf("plugins[%d]: id %q contains a colon", i, p.ID))
		}
		if seen[p.ID] {
			err = multierr.Append(err, fmt.Errorf("plugins[%d]: duplicate id %q", i, p.ID))
		}
		seen[p.ID] = true
	}
	for lang, s := range f.Lsp {
		if s.Command == "" {
			err = multierr.Append(err, fmt.Errorf("lsp.%s: command is required", lang))
		}
	}
	return err
}

// Bindings converts the keybindings list for the keymap. Entries with an
// unknown context are skipped; Validate reports them.
func (f *File) Bindings() []keymap.Binding {
	out := make([]keymap.Binding, 0, len(f.Keybindings))
	for _, kb := range f.Keybindings {
		ctx, ok := keymap.ParseContext(kb.Context)
		if !ok || strings.TrimSpace(kb.Key) == "" {
			continue
		}
		cmd, _ := commands.Parse(kb.Command)
		out = append(out, keymap.Binding{Key: kb.Key, Command: cmd, Context: ctx})
	}
	return out
}

// Parse decodes settings YAML and applies defaults.
func Parse(data []byte) (*File, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing settings: %w", err)
	}
	f.applyDefaults()
	if err := f.Validate(); err != nil {
		return &f, fmt.Errorf("invalid settings: %w", err)
	}
	return &f, nil
}

// Load reads the settings file at path. A missing file yields the defaults
// without error. A file that decodes but fails validation is returned along
// with the error so callers can still use the valid parts.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading settings: %w", err)
	}
	return Parse(data)
}

// Save writes f to path, creating the directory.
func Save(path string, f *File) error {
	data, err := yaml.Marshal(f)
	if err != nil {
		return fmt.Errorf("encoding settings: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating settings dir: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// Path returns the settings file location: $XDG_CONFIG_HOME/zcode or the
// OS config directory.
func Path() (string, error) {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		var err error
		dir, err = os.UserConfigDir()
		if err != nil {
			return "", fmt.Errorf("locating config dir: %w", err)
		}
	}
	return filepath.Join(dir, "zcode", "settings.yaml"), nil
}

// DataDir returns the directory for persisted editor state such as history
// logs and the completion ranker.
func DataDir() (string, error) {
	dir := os.Getenv("XDG_STATE_HOME")
	if dir == "" {
		base, err := os.UserCacheDir()
		if err != nil {
			return "", fmt.Errorf("locating state dir: %w", err)
		}
		dir = base
	}
	return filepath.Join(dir, "zcode"), nil
}
