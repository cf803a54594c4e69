package highlight

import (
	"regexp"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/dshills/blockpad/internal/engine/buffer"
)

// Rule defines a highlighting rule.
type Rule struct {
	// Pattern is the regex pattern to match.
	Pattern *regexp.Regexp

	// TokenType is the type to assign to matches.
	TokenType TokenType
}

// multiLineRule defines a construct that may span lines.
type multiLineRule struct {
	start     string
	end       string
	tokenType TokenType
}

// SimpleHighlighter is a small regex-based highlighter for languages
// without a chroma lexer. Rules are applied line by line in the order
// they were added; earlier rules win.
type SimpleHighlighter struct {
	name      string
	rules     []Rule
	keywords  map[string]TokenType
	multiLine []multiLineRule
}

// NewSimpleHighlighter creates an empty highlighter.
func NewSimpleHighlighter(name string) *SimpleHighlighter {
	return &SimpleHighlighter{
		name:     name,
		keywords: make(map[string]TokenType),
	}
}

// Name returns the highlighter name.
func (h *SimpleHighlighter) Name() string {
	return h.name
}

// AddRule adds a highlighting rule.
func (h *SimpleHighlighter) AddRule(pattern string, tokenType TokenType) *SimpleHighlighter {
	h.rules = append(h.rules, Rule{Pattern: regexp.MustCompile(pattern), TokenType: tokenType})
	return h
}

// AddKeywords adds keywords with a specific token type.
func (h *SimpleHighlighter) AddKeywords(tokenType TokenType, keywords ...string) *SimpleHighlighter {
	for _, kw := range keywords {
		h.keywords[kw] = tokenType
	}
	return h
}

// AddMultiLine adds a construct delimited by start and end that may span
// several lines.
func (h *SimpleHighlighter) AddMultiLine(start, end string, tokenType TokenType) *SimpleHighlighter {
	h.multiLine = append(h.multiLine, multiLineRule{start: start, end: end, tokenType: tokenType})
	return h
}

// Highlight tokenizes src.
func (h *SimpleHighlighter) Highlight(src string) []Token {
	var tokens []Token
	open := -1 // index of the multi-line rule left open by the previous line

	lineStart := 0
	for lineStart <= len(src) {
		lineEnd := strings.IndexByte(src[lineStart:], '\n')
		if lineEnd < 0 {
			lineEnd = len(src)
		} else {
			lineEnd += lineStart
		}
		line := src[lineStart:lineEnd]

		var lineTokens []Token
		lineTokens, open = h.highlightLine(line, open)
		for _, tok := range lineTokens {
			tokens = append(tokens, tok.Shift(lineStart))
		}
		lineStart = lineEnd + 1
	}
	return tokens
}

func (h *SimpleHighlighter) highlightLine(line string, open int) ([]Token, int) {
	var tokens []Token
	covered := make([]bool, len(line))
	pos := 0

	if open >= 0 {
		rule := h.multiLine[open]
		idx := strings.Index(line, rule.end)
		if idx < 0 {
			if len(line) > 0 {
				tokens = append(tokens, Token{Type: rule.tokenType, Range: buffer.NewRange(0, len(line))})
			}
			return tokens, open
		}
		pos = idx + len(rule.end)
		tokens = append(tokens, Token{Type: rule.tokenType, Range: buffer.NewRange(0, pos)})
		markCovered(covered, 0, pos)
		open = -1
	}

	for i, rule := range h.multiLine {
		idx := strings.Index(line[pos:], rule.start)
		if idx < 0 {
			continue
		}
		start := pos + idx
		if isCovered(covered, start, start+len(rule.start)) {
			continue
		}
		end := strings.Index(line[start+len(rule.start):], rule.end)
		if end < 0 {
			tokens = append(tokens, Token{Type: rule.tokenType, Range: buffer.NewRange(start, len(line))})
			markCovered(covered, start, len(line))
			open = i
			break
		}
		end += start + len(rule.start) + len(rule.end)
		tokens = append(tokens, Token{Type: rule.tokenType, Range: buffer.NewRange(start, end)})
		markCovered(covered, start, end)
	}

	for _, rule := range h.rules {
		for _, m := range rule.Pattern.FindAllStringIndex(line, -1) {
			if m[1] > m[0] && !isCovered(covered, m[0], m[1]) {
				tokens = append(tokens, Token{Type: rule.TokenType, Range: buffer.NewRange(m[0], m[1])})
				markCovered(covered, m[0], m[1])
			}
		}
	}

	tokens = append(tokens, h.findIdentifiers(line, covered)...)
	sort.Slice(tokens, func(i, j int) bool {
		return tokens[i].Range.Start < tokens[j].Range.Start
	})
	return tokens, open
}

// findIdentifiers finds uncovered words and classifies keywords.
func (h *SimpleHighlighter) findIdentifiers(line string, covered []bool) []Token {
	var tokens []Token
	for i := 0; i < len(line); {
		r, size := utf8.DecodeRuneInString(line[i:])
		if covered[i] || !(unicode.IsLetter(r) || r == '_') {
			i += size
			continue
		}
		start := i
		for i < len(line) && !covered[i] {
			r, size = utf8.DecodeRuneInString(line[i:])
			if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' {
				break
			}
			i += size
		}
		tokenType := TokenIdentifier
		if kw, ok := h.keywords[line[start:i]]; ok {
			tokenType = kw
		}
		tokens = append(tokens, Token{Type: tokenType, Range: buffer.NewRange(start, i)})
	}
	return tokens
}

func isCovered(covered []bool, start, end int) bool {
	for i := max(start, 0); i < end && i < len(covered); i++ {
		if covered[i] {
			return true
		}
	}
	return false
}

func markCovered(covered []bool, start, end int) {
	for i := max(start, 0); i < end && i < len(covered); i++ {
		covered[i] = true
	}
}

// MathHighlighter returns the highlighter for math blocks: expressions,
// assignments, units and line comments.
func MathHighlighter() *SimpleHighlighter {
	h := NewSimpleHighlighter("math")

	h.AddRule(`#.*$`, TokenCommentLine)
	h.AddRule(`//.*$`, TokenCommentLine)
	h.AddRule(`"(?:[^"\\]|\\.)*"`, TokenString)
	h.AddRule(`\b0[xX][0-9a-fA-F]+\b`, TokenNumberHex)
	h.AddRule(`\b\d+(?:\.\d+)?\s*(?:km|cm|mm|m|kg|g|mg|lb|oz|s|ms|min|h|day|week|year|inch|ft|mi|l|ml|kB|MB|GB|TB|USD|EUR)\b`, TokenUnit)
	h.AddRule(`\b\d+(?:\.\d+)?(?:[eE][+-]?\d+)?`, TokenNumber)
	h.AddRule(`[+\-*/^%=!<>]=?|\bto\b|\bin\b`, TokenOperator)
	h.AddRule(`[()\[\],]`, TokenPunctuation)

	h.AddKeywords(TokenFunctionBuiltin,
		"sqrt", "cbrt", "abs", "round", "floor", "ceil", "exp", "log", "log10", "log2",
		"sin", "cos", "tan", "asin", "acos", "atan", "sinh", "cosh", "tanh",
		"min", "max", "mean", "median", "prod", "std", "var", "factorial", "mod")
	h.AddKeywords(TokenConstantLanguage,
		"pi", "e", "tau", "phi", "Infinity", "NaN", "true", "false", "i")
	h.AddKeywords(TokenKeyword, "prev", "sum", "total")

	return h
}
