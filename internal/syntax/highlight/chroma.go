package highlight

import (
	"fmt"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/lexers"

	"github.com/dshills/blockpad/internal/engine/buffer"
)

// ChromaHighlighter adapts a chroma lexer to the Highlighter interface.
type ChromaHighlighter struct {
	lexer chroma.Lexer
}

// NewChromaHighlighter looks up a chroma lexer by name or alias.
func NewChromaHighlighter(name string) (*ChromaHighlighter, error) {
	lexer := lexers.Get(name)
	if lexer == nil {
		return nil, fmt.Errorf("chroma lexer %q: not found", name)
	}
	return &ChromaHighlighter{lexer: chroma.Coalesce(lexer)}, nil
}

// Name returns the lexer name.
func (h *ChromaHighlighter) Name() string {
	return h.lexer.Config().Name
}

// Highlight tokenizes src. Tokenization runs in nested mode so the lexer
// does not append a trailing newline, which keeps every token offset
// inside src.
func (h *ChromaHighlighter) Highlight(src string) []Token {
	it, err := h.lexer.Tokenise(&chroma.TokeniseOptions{State: "root", Nested: true}, src)
	if err != nil {
		return nil
	}

	var tokens []Token
	pos := 0
	for _, ct := range it.Tokens() {
		start := pos
		pos = min(pos+len(ct.Value), len(src))
		tt := mapChromaType(ct.Type)
		if tt == TokenNone || pos <= start {
			continue
		}
		if n := len(tokens); n > 0 && tokens[n-1].Type == tt && tokens[n-1].Range.End == start {
			tokens[n-1].Range.End = pos
			continue
		}
		tokens = append(tokens, Token{Type: tt, Range: buffer.NewRange(start, pos)})
	}
	return tokens
}

// mapChromaType maps a chroma token type to a TokenType.
func mapChromaType(t chroma.TokenType) TokenType {
	switch t {
	case chroma.CommentPreproc, chroma.NameDecorator:
		return TokenMeta
	case chroma.KeywordConstant:
		return TokenConstantLanguage
	case chroma.KeywordDeclaration:
		return TokenKeywordDeclaration
	case chroma.KeywordType:
		return TokenTypeBuiltin
	case chroma.NameBuiltin:
		return TokenFunctionBuiltin
	case chroma.NameFunction:
		return TokenFunction
	case chroma.NameClass:
		return TokenTypeName
	case chroma.NameTag:
		return TokenTag
	case chroma.NameAttribute:
		return TokenAttribute
	case chroma.NameConstant:
		return TokenConstant
	case chroma.NameVariable:
		return TokenVariable
	case chroma.LiteralStringEscape:
		return TokenStringEscape
	case chroma.LiteralNumberHex:
		return TokenNumberHex
	case chroma.GenericHeading, chroma.GenericSubheading:
		return TokenMarkupHeading
	case chroma.GenericEmph:
		return TokenMarkupItalic
	case chroma.GenericStrong:
		return TokenMarkupBold
	case chroma.GenericInserted:
		return TokenMarkupInserted
	case chroma.GenericDeleted:
		return TokenMarkupDeleted
	case chroma.GenericError, chroma.Error:
		return TokenInvalid
	}

	switch {
	case t.InCategory(chroma.Comment):
		return TokenComment
	case t.InCategory(chroma.Keyword):
		return TokenKeyword
	case t.InSubCategory(chroma.LiteralString):
		return TokenString
	case t.InSubCategory(chroma.LiteralNumber):
		return TokenNumber
	case t.InCategory(chroma.Literal):
		return TokenConstant
	case t.InCategory(chroma.Operator):
		return TokenOperator
	case t.InCategory(chroma.Punctuation):
		return TokenPunctuation
	case t.InCategory(chroma.Name):
		return TokenIdentifier
	}
	return TokenNone
}
