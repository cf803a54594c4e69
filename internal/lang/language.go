package lang

import "strings"

// Language identifies one entry of the closed language registry.
// The zero value is Plain.
type Language int

// Registered languages.
const (
	Plain Language = iota
	Math
	JSON
	Python
	JavaScript
	TypeScript
	HTML
	CSS
	XML
	SQL
	Markdown
	Java
	PHP
	Cpp
	CSharp
	Rust
	Go
	Ruby
	Shell
	YAML
	TOML
	Kotlin
	Swift
	Lua
	Clojure
	Erlang
	Elixir
	Diff
	Groovy
	Scala
	PowerShell
	Dart

	languageCount
)

// AutoSuffix marks a delimiter tag as being in auto-detection mode.
const AutoSuffix = "-a"

// FoldStrategy selects how an inner grammar computes fold ranges.
type FoldStrategy int

// Fold strategies.
const (
	FoldNone FoldStrategy = iota
	FoldBrackets
	FoldIndent
	FoldHeadings
)

// String returns the strategy name.
func (f FoldStrategy) String() string {
	switch f {
	case FoldBrackets:
		return "brackets"
	case FoldIndent:
		return "indent"
	case FoldHeadings:
		return "headings"
	default:
		return "none"
	}
}

// Info describes how a language's inner grammar is assembled.
type Info struct {
	Tag     string       // delimiter tag
	Name    string       // display name
	Chroma  string       // chroma lexer name; empty when not chroma-backed
	Fold    FoldStrategy // fold range strategy
	Openers string       // trailing characters that open an indented scope
}

const braces = "{[("

var registry = [languageCount]Info{
	Plain:      {Tag: "text", Name: "Plain Text"},
	Math:       {Tag: "math", Name: "Math", Fold: FoldIndent},
	JSON:       {Tag: "json", Name: "JSON", Chroma: "JSON", Fold: FoldBrackets, Openers: "{["},
	Python:     {Tag: "python", Name: "Python", Chroma: "Python", Fold: FoldIndent, Openers: ":"},
	JavaScript: {Tag: "javascript", Name: "JavaScript", Chroma: "JavaScript", Fold: FoldBrackets, Openers: braces},
	TypeScript: {Tag: "typescript", Name: "TypeScript", Chroma: "TypeScript", Fold: FoldBrackets, Openers: braces},
	HTML:       {Tag: "html", Name: "HTML", Chroma: "HTML", Fold: FoldIndent},
	CSS:        {Tag: "css", Name: "CSS", Chroma: "CSS", Fold: FoldBrackets, Openers: "{"},
	XML:        {Tag: "xml", Name: "XML", Chroma: "XML", Fold: FoldIndent},
	SQL:        {Tag: "sql", Name: "SQL", Chroma: "SQL", Fold: FoldBrackets, Openers: "("},
	Markdown:   {Tag: "markdown", Name: "Markdown", Chroma: "markdown", Fold: FoldHeadings},
	Java:       {Tag: "java", Name: "Java", Chroma: "Java", Fold: FoldBrackets, Openers: braces},
	PHP:        {Tag: "php", Name: "PHP", Chroma: "PHP", Fold: FoldBrackets, Openers: braces},
	Cpp:        {Tag: "cpp", Name: "C++", Chroma: "C++", Fold: FoldBrackets, Openers: braces},
	CSharp:     {Tag: "csharp", Name: "C#", Chroma: "C#", Fold: FoldBrackets, Openers: braces},
	Rust:       {Tag: "rust", Name: "Rust", Chroma: "Rust", Fold: FoldBrackets, Openers: braces},
	Go:         {Tag: "go", Name: "Go", Chroma: "Go", Fold: FoldBrackets, Openers: braces},
	Ruby:       {Tag: "ruby", Name: "Ruby", Chroma: "Ruby", Fold: FoldIndent, Openers: "|"},
	Shell:      {Tag: "shell", Name: "Shell", Chroma: "Bash", Fold: FoldBrackets, Openers: "{("},
	YAML:       {Tag: "yaml", Name: "YAML", Chroma: "YAML", Fold: FoldIndent, Openers: ":"},
	TOML:       {Tag: "toml", Name: "TOML", Chroma: "TOML", Fold: FoldBrackets, Openers: "[{"},
	Kotlin:     {Tag: "kotlin", Name: "Kotlin", Chroma: "Kotlin", Fold: FoldBrackets, Openers: braces},
	Swift:      {Tag: "swift", Name: "Swift", Chroma: "Swift", Fold: FoldBrackets, Openers: braces},
	Lua:        {Tag: "lua", Name: "Lua", Chroma: "Lua", Fold: FoldIndent, Openers: "{("},
	Clojure:    {Tag: "clojure", Name: "Clojure", Chroma: "Clojure", Fold: FoldBrackets, Openers: braces},
	Erlang:     {Tag: "erlang", Name: "Erlang", Chroma: "Erlang", Fold: FoldIndent, Openers: ">"},
	Elixir:     {Tag: "elixir", Name: "Elixir", Chroma: "Elixir", Fold: FoldIndent},
	Diff:       {Tag: "diff", Name: "Diff", Chroma: "Diff"},
	Groovy:     {Tag: "groovy", Name: "Groovy", Chroma: "Groovy", Fold: FoldBrackets, Openers: braces},
	Scala:      {Tag: "scala", Name: "Scala", Chroma: "Scala", Fold: FoldBrackets, Openers: braces},
	PowerShell: {Tag: "powershell", Name: "PowerShell", Chroma: "PowerShell", Fold: FoldBrackets, Openers: braces},
	Dart:       {Tag: "dart", Name: "Dart", Chroma: "Dart", Fold: FoldBrackets, Openers: braces},
}

var byTag = func() map[string]Language {
	m := make(map[string]Language, languageCount)
	for i, info := range registry {
		m[info.Tag] = Language(i)
	}
	return m
}()

// Info returns the registry entry for l. Out-of-range values report Plain.
func (l Language) Info() Info {
	if l < 0 || l >= languageCount {
		return registry[Plain]
	}
	return registry[l]
}

// Tag returns the delimiter tag for l.
func (l Language) Tag() string {
	return l.Info().Tag
}

// String returns the display name.
func (l Language) String() string {
	return l.Info().Name
}

// IsPlain reports whether l is the no-op plain variant.
func (l Language) IsPlain() bool {
	return l.Info().Tag == registry[Plain].Tag
}

// Lookup returns the language registered under tag.
func Lookup(tag string) (Language, bool) {
	l, ok := byTag[tag]
	return l, ok
}

// Resolve returns the language for tag, falling back to Plain.
func Resolve(tag string) Language {
	if l, ok := byTag[tag]; ok {
		return l
	}
	return Plain
}

// ParseTag interprets the tag text of a delimiter. The empty tag is plain
// text in auto mode. Any other tag must be a registered tag, optionally
// followed by AutoSuffix. ok is false for anything else.
func ParseTag(raw string) (l Language, auto bool, ok bool) {
	if raw == "" {
		return Plain, true, true
	}
	if base, found := strings.CutSuffix(raw, AutoSuffix); found {
		l, ok = byTag[base]
		return l, ok, ok
	}
	l, ok = byTag[raw]
	return l, false, ok
}

// FormatTag renders the tag text of a delimiter for l.
func FormatTag(l Language, auto bool) string {
	if auto {
		return l.Tag() + AutoSuffix
	}
	return l.Tag()
}

// All returns every registered language in registry order.
func All() []Language {
	out := make([]Language, languageCount)
	for i := range out {
		out[i] = Language(i)
	}
	return out
}

// Tags returns every registered tag in registry order.
func Tags() []string {
	out := make([]string, languageCount)
	for i, info := range registry {
		out[i] = info.Tag
	}
	return out
}

// DelimiterTags returns every tag text that may appear inside a delimiter.
func DelimiterTags() []string {
	out := make([]string, 0, 2*languageCount+1)
	out = append(out, "")
	for _, info := range registry {
		out = append(out, info.Tag, info.Tag+AutoSuffix)
	}
	return out
}
