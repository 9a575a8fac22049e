package syntax

import (
	"path/filepath"
	"strings"

	sitter "github.com/mitjafelicijan/go-tree-sitter"
)

// PlainText is the language id used when nothing matches.
const PlainText = "plaintext"

// Language holds a registered language with its grammar, file patterns and
// highlight query.
type Language struct {
	// ID is the LSP languageId, e.g. "go" or "typescriptreact".
	ID         string
	Name       string
	Extensions []string // e.g. [".go"]
	Filenames  []string // exact base names, e.g. ["Makefile"]
	Shebangs   []string // interpreter names, e.g. ["python3"]
	// Grammar is nil for languages highlighted by chroma only.
	Grammar        func() *sitter.Language
	HighlightQuery string
	// ChromaLexer names the fallback lexer; empty means match by filename.
	ChromaLexer string
}

var registry []Language

// Register adds a language to the registry. A later registration with the
// same ID replaces the earlier one.
func Register(lang Language) {
	for i := range registry {
		if registry[i].ID == lang.ID {
			registry[i] = lang
			return
		}
	}
	registry = append(registry, lang)
}

// Lookup returns the language registered under id.
func Lookup(id string) (*Language, bool) {
	for i := range registry {
		if registry[i].ID == id {
			return &registry[i], true
		}
	}
	return nil, false
}

// DetectLanguage returns the language for a path, or nil if unknown.
// Exact file names win over extensions; the longest matching extension wins
// so ".d.ts" style suffixes can be told apart.
func DetectLanguage(path string) *Language {
	base := filepath.Base(path)
	for i := range registry {
		for _, name := range registry[i].Filenames {
			if base == name {
				return &registry[i]
			}
		}
	}
	var best *Language
	bestLen := 0
	lower := strings.ToLower(base)
	for i := range registry {
		for _, ext := range registry[i].Extensions {
			if strings.HasSuffix(lower, ext) && len(ext) > bestLen {
				best, bestLen = &registry[i], len(ext)
			}
		}
	}
	return best
}

// DetectLanguageByShebang checks the first line of content for an
// interpreter registered by some language.
func DetectLanguageByShebang(firstLine string) *Language {
	if !strings.HasPrefix(firstLine, "#!") {
		return nil
	}
	fields := strings.Fields(strings.TrimPrefix(firstLine, "#!"))
	if len(fields) == 0 {
		return nil
	}
	interp := filepath.Base(fields[0])
	if interp == "env" {
		interp = ""
		for _, f := range fields[1:] {
			if !strings.HasPrefix(f, "-") {
				interp = f
				break
			}
		}
	}
	for i := range registry {
		for _, sb := range registry[i].Shebangs {
			if interp == sb {
				return &registry[i]
			}
		}
	}
	return nil
}

// Detect resolves a language from the path, then the shebang of content.
func Detect(path, content string) *Language {
	if lang := DetectLanguage(path); lang != nil {
		return lang
	}
	first := content
	if i := strings.IndexByte(first, '\n'); i >= 0 {
		first = first[:i]
	}
	return DetectLanguageByShebang(first)
}

// LanguageID returns the LSP language id for a path, or PlainText.
func LanguageID(path string) string {
	if lang := DetectLanguage(path); lang != nil {
		return lang.ID
	}
	return PlainText
}

// AllLanguages returns all registered languages.
func AllLanguages() []Language {
	return registry
}
