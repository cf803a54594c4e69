// Package highlight produces semantic tokens for block content and maps
// them to terminal styles.
package highlight

import "github.com/dshills/blockpad/internal/engine/buffer"

// TokenType represents the semantic type of a token.
type TokenType uint16

// Token types for syntax highlighting.
const (
	TokenNone TokenType = iota

	// Comments
	TokenComment
	TokenCommentLine
	TokenCommentBlock

	// Strings
	TokenString
	TokenStringEscape

	// Numbers
	TokenNumber
	TokenNumberHex

	// Keywords
	TokenKeyword
	TokenKeywordControl
	TokenKeywordDeclaration

	// Operators and punctuation
	TokenOperator
	TokenPunctuation

	// Identifiers
	TokenIdentifier
	TokenVariable
	TokenConstant
	TokenConstantLanguage

	// Functions
	TokenFunction
	TokenFunctionBuiltin

	// Types
	TokenTypeName
	TokenTypeBuiltin

	// Markup (for markdown, HTML, etc.)
	TokenMarkupHeading
	TokenMarkupBold
	TokenMarkupItalic
	TokenMarkupQuote
	TokenMarkupList
	TokenMarkupLink
	TokenMarkupCode
	TokenMarkupInserted
	TokenMarkupDeleted

	// Invalid/Error
	TokenInvalid

	// Special
	TokenMeta      // Meta information (e.g., preprocessor)
	TokenTag       // HTML/XML tags
	TokenAttribute // HTML/XML attributes
	TokenUnit      // math units

	// Sentinel for iteration
	tokenTypeCount
)

// tokenTypeNames maps token types to their string names.
var tokenTypeNames = [tokenTypeCount]string{
	TokenNone: "none",

	TokenComment:      "comment",
	TokenCommentLine:  "comment.line",
	TokenCommentBlock: "comment.block",

	TokenString:       "string",
	TokenStringEscape: "string.escape",

	TokenNumber:    "number",
	TokenNumberHex: "number.hex",

	TokenKeyword:            "keyword",
	TokenKeywordControl:     "keyword.control",
	TokenKeywordDeclaration: "keyword.declaration",

	TokenOperator:    "operator",
	TokenPunctuation: "punctuation",

	TokenIdentifier:       "identifier",
	TokenVariable:         "variable",
	TokenConstant:         "constant",
	TokenConstantLanguage: "constant.language",

	TokenFunction:        "function",
	TokenFunctionBuiltin: "function.builtin",

	TokenTypeName:    "type",
	TokenTypeBuiltin: "type.builtin",

	TokenMarkupHeading:  "markup.heading",
	TokenMarkupBold:     "markup.bold",
	TokenMarkupItalic:   "markup.italic",
	TokenMarkupQuote:    "markup.quote",
	TokenMarkupList:     "markup.list",
	TokenMarkupLink:     "markup.link",
	TokenMarkupCode:     "markup.code",
	TokenMarkupInserted: "markup.inserted",
	TokenMarkupDeleted:  "markup.deleted",

	TokenInvalid: "invalid",

	TokenMeta:      "meta",
	TokenTag:       "tag",
	TokenAttribute: "attribute",
	TokenUnit:      "unit",
}

// String returns the string representation of a token type.
func (t TokenType) String() string {
	if t < tokenTypeCount {
		return tokenTypeNames[t]
	}
	return "unknown"
}

// IsComment returns true if this is a comment token.
func (t TokenType) IsComment() bool {
	return t >= TokenComment && t <= TokenCommentBlock
}

// IsString returns true if this is a string token.
func (t TokenType) IsString() bool {
	return t >= TokenString && t <= TokenStringEscape
}

// IsKeyword returns true if this is a keyword token.
func (t TokenType) IsKeyword() bool {
	return t >= TokenKeyword && t <= TokenKeywordDeclaration
}

// Token is a highlighted span. Offsets are relative to the source handed
// to the highlighter until the dispatcher rebases them into document
// coordinates.
type Token struct {
	Type  TokenType
	Range buffer.Range
}

// Shift returns the token moved by delta bytes.
func (t Token) Shift(delta int) Token {
	t.Range = t.Range.Shift(delta)
	return t
}

// Highlighter tokenizes a complete source text.
type Highlighter interface {
	// Highlight returns non-overlapping tokens sorted by start offset.
	Highlight(src string) []Token
}

// TokenAt returns the token covering offset in a sorted token slice.
func TokenAt(tokens []Token, offset int) (Token, bool) {
	lo, hi := 0, len(tokens)
	for lo < hi {
		mid := (lo + hi) / 2
		switch r := tokens[mid].Range; {
		case offset < r.Start:
			hi = mid
		case offset >= r.End:
			lo = mid + 1
		default:
			return tokens[mid], true
		}
	}
	return Token{}, false
}
