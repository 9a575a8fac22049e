package syntax

import (
	"github.com/mitjafelicijan/go-tree-sitter/bash"
	"github.com/mitjafelicijan/go-tree-sitter/c"
	"github.com/mitjafelicijan/go-tree-sitter/cpp"
	"github.com/mitjafelicijan/go-tree-sitter/css"
	"github.com/mitjafelicijan/go-tree-sitter/dockerfile"
	"github.com/mitjafelicijan/go-tree-sitter/golang"
	"github.com/mitjafelicijan/go-tree-sitter/html"
	"github.com/mitjafelicijan/go-tree-sitter/javascript"
	"github.com/mitjafelicijan/go-tree-sitter/lua"
	markdown "github.com/mitjafelicijan/go-tree-sitter/markdown/tree-sitter-markdown"
	"github.com/mitjafelicijan/go-tree-sitter/php"
	"github.com/mitjafelicijan/go-tree-sitter/python"
	"github.com/mitjafelicijan/go-tree-sitter/sql"
	"github.com/mitjafelicijan/go-tree-sitter/typescript/tsx"
	"github.com/mitjafelicijan/go-tree-sitter/typescript/typescript"
)

func init() {
	for _, lang := range builtinLanguages() {
		Register(lang)
	}
}

func builtinLanguages() []Language {
	return []Language{
		{
			ID: "go", Name: "Go", Extensions: []string{".go"},
			Grammar: golang.GetLanguage, HighlightQuery: goHighlights, ChromaLexer: "go",
		},
		{
			ID: "python", Name: "Python", Extensions: []string{".py", ".pyi"},
			Shebangs: []string{"python", "python3"},
			Grammar:  python.GetLanguage, HighlightQuery: pythonHighlights, ChromaLexer: "python",
		},
		{
			ID: "javascript", Name: "JavaScript", Extensions: []string{".js", ".mjs", ".cjs", ".jsx"},
			Shebangs: []string{"node"},
			Grammar:  javascript.GetLanguage, HighlightQuery: javascriptHighlights, ChromaLexer: "javascript",
		},
		{
			ID: "typescript", Name: "TypeScript", Extensions: []string{".ts", ".mts", ".cts"},
			Shebangs: []string{"deno", "ts-node"},
			Grammar:  typescript.GetLanguage, ChromaLexer: "typescript",
		},
		{
			ID: "typescriptreact", Name: "TSX", Extensions: []string{".tsx"},
			Grammar: tsx.GetLanguage, ChromaLexer: "tsx",
		},
		{
			ID: "c", Name: "C", Extensions: []string{".c", ".h"},
			Grammar: c.GetLanguage, HighlightQuery: cHighlights, ChromaLexer: "c",
		},
		{
			ID: "cpp", Name: "C++", Extensions: []string{".cc", ".cpp", ".cxx", ".hpp", ".hh", ".hxx"},
			Grammar: cpp.GetLanguage, HighlightQuery: cHighlights, ChromaLexer: "c++",
		},
		{
			ID: "shellscript", Name: "Bash", Extensions: []string{".sh", ".bash", ".zsh"},
			Filenames: []string{".bashrc", ".zshrc", ".profile"},
			Shebangs:  []string{"sh", "bash", "zsh"},
			Grammar:   bash.GetLanguage, ChromaLexer: "bash",
		},
		{
			ID: "css", Name: "CSS", Extensions: []string{".css"},
			Grammar: css.GetLanguage, ChromaLexer: "css",
		},
		{
			ID: "html", Name: "HTML", Extensions: []string{".html", ".htm"},
			Grammar: html.GetLanguage, ChromaLexer: "html",
		},
		{
			ID: "lua", Name: "Lua", Extensions: []string{".lua"},
			Shebangs: []string{"lua"},
			Grammar:  lua.GetLanguage, ChromaLexer: "lua",
		},
		{
			ID: "markdown", Name: "Markdown", Extensions: []string{".md", ".markdown"},
			Grammar: markdown.GetLanguage, ChromaLexer: "markdown",
		},
		{
			ID: "php", Name: "PHP", Extensions: []string{".php"},
			Shebangs: []string{"php"},
			Grammar:  php.GetLanguage, ChromaLexer: "php",
		},
		{
			ID: "sql", Name: "SQL", Extensions: []string{".sql"},
			Grammar: sql.GetLanguage, ChromaLexer: "sql",
		},
		{
			ID: "dockerfile", Name: "Dockerfile", Extensions: []string{".dockerfile"},
			Filenames: []string{"Dockerfile", "Containerfile"},
			Grammar:   dockerfile.GetLanguage, ChromaLexer: "docker",
		},
		{ID: "rust", Name: "Rust", Extensions: []string{".rs"}, ChromaLexer: "rust"},
		{ID: "java", Name: "Java", Extensions: []string{".java"}, ChromaLexer: "java"},
		{ID: "ruby", Name: "Ruby", Extensions: []string{".rb"}, Shebangs: []string{"ruby"}, ChromaLexer: "ruby"},
		{ID: "zig", Name: "Zig", Extensions: []string{".zig"}, ChromaLexer: "zig"},
		{ID: "json", Name: "JSON", Extensions: []string{".json"}, ChromaLexer: "json"},
		{ID: "yaml", Name: "YAML", Extensions: []string{".yaml", ".yml"}, ChromaLexer: "yaml"},
		{ID: "toml", Name: "TOML", Extensions: []string{".toml"}, ChromaLexer: "toml"},
		{ID: "makefile", Name: "Makefile", Extensions: []string{".mk"}, Filenames: []string{"Makefile", "GNUmakefile"}, ChromaLexer: "makefile"},
	}
}

const goHighlights = `
(comment) @comment
[(interpreted_string_literal) (raw_string_literal) (rune_literal)] @string
[(int_literal) (float_literal) (imaginary_literal)] @number
[(true) (false) (nil) (iota)] @constant
(type_identifier) @type
(package_identifier) @namespace
(field_identifier) @property
(parameter_declaration name: (identifier) @parameter)
(function_declaration name: (identifier) @function)
(method_declaration name: (field_identifier) @method)
(call_expression function: (identifier) @function)
(call_expression function: (selector_expression field: (field_identifier) @method))
[
  "break" "case" "chan" "const" "continue" "default" "defer" "else"
  "fallthrough" "for" "func" "go" "goto" "if" "import" "interface" "map"
  "package" "range" "return" "select" "struct" "switch" "type" "var"
] @keyword
`

const pythonHighlights = `
(comment) @comment
(string) @string
[(integer) (float)] @number
[(true) (false) (none)] @constant
(decorator) @attribute
(function_definition name: (identifier) @function)
(class_definition name: (identifier) @type)
(call function: (identifier) @function)
(call function: (attribute attribute: (identifier) @method))
[
  "and" "as" "assert" "break" "class" "continue" "def" "del" "elif" "else"
  "except" "finally" "for" "from" "global" "if" "import" "in" "is" "lambda"
  "not" "or" "pass" "raise" "return" "try" "while" "with" "yield"
] @keyword
`

const javascriptHighlights = `
(comment) @comment
[(string) (template_string) (regex)] @string
(number) @number
[(true) (false) (null) (undefined)] @constant
(this) @keyword
(property_identifier) @property
(function_declaration name: (identifier) @function)
(class_declaration name: (identifier) @type)
(method_definition name: (property_identifier) @method)
(call_expression function: (identifier) @function)
(call_expression function: (member_expression property: (property_identifier) @method))
[
  "async" "await" "break" "case" "catch" "class" "const" "continue" "default"
  "delete" "do" "else" "export" "extends" "finally" "for" "from" "function"
  "if" "import" "in" "instanceof" "let" "new" "of" "return" "static"
  "switch" "throw" "try" "typeof" "var" "void" "while" "yield"
] @keyword
`

const cHighlights = `
(comment) @comment
[(string_literal) (char_literal) (system_lib_string)] @string
(number_literal) @number
[(primitive_type) (type_identifier) (sized_type_specifier)] @type
(field_identifier) @property
(function_declarator declarator: (identifier) @function)
(call_expression function: (identifier) @function)
(preproc_def name: (identifier) @constant)
["#include" "#define" "#if" "#ifdef" "#ifndef" "#endif" "#else"] @macro
[
  "break" "case" "const" "continue" "default" "do" "else" "enum" "extern"
  "for" "goto" "if" "return" "sizeof" "static" "struct" "switch" "typedef"
  "union" "volatile" "while"
] @keyword
`
