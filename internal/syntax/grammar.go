package syntax

import (
	"sync"

	"github.com/dshills/blockpad/internal/engine/buffer"
	"github.com/dshills/blockpad/internal/lang"
	"github.com/dshills/blockpad/internal/syntax/highlight"
)

// Grammar is an inner grammar applied to one block's content.
// All offsets are relative to src.
type Grammar interface {
	// Language returns the language this grammar parses.
	Language() lang.Language

	// Highlight returns sorted, non-overlapping tokens.
	Highlight(src string) []highlight.Token

	// Folds returns foldable ranges sorted by start.
	Folds(src string) []buffer.Range

	// Indent returns the indentation for a new line inserted at pos.
	Indent(src string, pos int, unit string) string
}

// innerGrammar combines a highlighter with a fold strategy and an
// indentation rule taken from the language registry.
type innerGrammar struct {
	language    lang.Language
	highlighter highlight.Highlighter
	fold        lang.FoldStrategy
	openers     string
}

func (g *innerGrammar) Language() lang.Language {
	return g.language
}

func (g *innerGrammar) Highlight(src string) []highlight.Token {
	if g.highlighter == nil || src == "" {
		return nil
	}
	return g.highlighter.Highlight(src)
}

func (g *innerGrammar) Folds(src string) []buffer.Range {
	switch g.fold {
	case lang.FoldBrackets:
		return bracketFolds(src, g.Highlight(src))
	case lang.FoldIndent:
		return indentFolds(src)
	case lang.FoldHeadings:
		return headingFolds(src)
	default:
		return nil
	}
}

func (g *innerGrammar) Indent(src string, pos int, unit string) string {
	return indentFor(src, pos, unit, g.openers)
}

// Registry hands out the inner grammar for each language.
// Grammars are built on first use.
type Registry struct {
	mu       sync.Mutex
	grammars map[lang.Language]Grammar
	fallback func(l lang.Language, err error)
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{grammars: make(map[lang.Language]Grammar)}
}

// OnFallback sets a callback invoked when a language has to use the
// plain grammar because its lexer could not be loaded.
func (r *Registry) OnFallback(fn func(l lang.Language, err error)) {
	r.mu.Lock()
	r.fallback = fn
	r.mu.Unlock()
}

// Register replaces the grammar for its language.
func (r *Registry) Register(g Grammar) {
	r.mu.Lock()
	r.grammars[g.Language()] = g
	r.mu.Unlock()
}

// Get returns the grammar for l. Unknown languages get the plain grammar.
func (r *Registry) Get(l lang.Language) Grammar {
	r.mu.Lock()
	defer r.mu.Unlock()

	if g, ok := r.grammars[l]; ok {
		return g
	}
	g := r.build(l)
	r.grammars[l] = g
	return g
}

func (r *Registry) build(l lang.Language) Grammar {
	info := l.Info()
	g := &innerGrammar{language: l, fold: info.Fold, openers: info.Openers}

	switch {
	case l == lang.Math:
		g.highlighter = highlight.MathHighlighter()
	case info.Chroma != "":
		h, err := highlight.NewChromaHighlighter(info.Chroma)
		if err != nil {
			if r.fallback != nil {
				r.fallback(l, err)
			}
			break
		}
		g.highlighter = h
	}
	if resolved, _ := lang.Lookup(info.Tag); resolved != l {
		g.language = lang.Plain
	}
	return g
}
