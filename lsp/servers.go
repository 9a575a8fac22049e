package lsp

import (
	"os"
	"path/filepath"
	"strings"
)

// ServerConfig is how to launch a language server.
type ServerConfig struct {
	Command string
	Args    []string
}

// DefaultServers returns built-in language server mappings keyed by LSP
// language id.
func DefaultServers() map[string]ServerConfig {
	return map[string]ServerConfig{
		"go":              {Command: "gopls"},
		"typescript":      {Command: "typescript-language-server", Args: []string{"--stdio"}},
		"typescriptreact": {Command: "typescript-language-server", Args: []string{"--stdio"}},
		"javascript":      {Command: "typescript-language-server", Args: []string{"--stdio"}},
		"python":          {Command: "pyright-langserver", Args: []string{"--stdio"}},
		"rust":            {Command: "rust-analyzer"},
		"c":               {Command: "clangd"},
		"cpp":             {Command: "clangd"},
		"java":            {Command: "jdtls"},
		"lua":             {Command: "lua-language-server"},
		"zig":             {Command: "zls"},
		"json":            {Command: "vscode-json-language-server", Args: []string{"--stdio"}},
	}
}

// MergeServers overlays overrides onto base. Keys are lowercased; entries
// without a command are ignored.
func MergeServers(base, overrides map[string]ServerConfig) map[string]ServerConfig {
	out := make(map[string]ServerConfig, len(base)+len(overrides))
	for k, v := range base {
		out[k] = v
	}
	for lang, cfg := range overrides {
		lang = strings.ToLower(strings.TrimSpace(lang))
		cfg.Command = strings.TrimSpace(cfg.Command)
		if lang == "" || cfg.Command == "" {
			continue
		}
		out[lang] = cfg
	}
	return out
}

// InstallHint is logged once per server whose executable is missing.
func InstallHint(command string) string {
	return "language server " + command + " was not found on PATH; install it or map it under lsp in settings"
}

var rootMarkers = map[string][]string{
	"go":              {"go.work", "go.mod"},
	"rust":            {"Cargo.toml"},
	"python":          {"pyproject.toml", "setup.py", "setup.cfg", "requirements.txt"},
	"javascript":      {"package.json", "jsconfig.json"},
	"typescript":      {"tsconfig.json", "package.json"},
	"typescriptreact": {"tsconfig.json", "package.json"},
	"c":               {"compile_commands.json", "compile_flags.txt", ".clangd"},
	"cpp":             {"compile_commands.json", "compile_flags.txt", ".clangd"},
	"zig":             {"build.zig"},
}

// RootFor finds the language root of path: the nearest ancestor inside
// workspace holding one of the language's marker files, else workspace.
func RootFor(lang, path, workspace string) string {
	markers := rootMarkers[lang]
	if len(markers) == 0 || workspace == "" {
		return workspace
	}
	ws := filepath.Clean(workspace)
	for dir := filepath.Dir(path); ; dir = filepath.Dir(dir) {
		if !within(dir, ws) {
			break
		}
		for _, m := range markers {
			if _, err := os.Stat(filepath.Join(dir, m)); err == nil {
				return dir
			}
		}
		if dir == ws || dir == filepath.Dir(dir) {
			break
		}
	}
	return ws
}

func within(path, root string) bool {
	rel, err := filepath.Rel(root, path)
	return err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
