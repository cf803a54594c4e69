package delim

import "github.com/dshills/blockpad/internal/engine/buffer"

// Kind classifies a token.
type Kind int

// Token kinds.
const (
	KindContent Kind = iota
	KindDelimiter
)

// String returns the kind name.
func (k Kind) String() string {
	if k == KindDelimiter {
		return "Delimiter"
	}
	return "Content"
}

// Token is one span of the document.
type Token struct {
	Kind      Kind
	Range     buffer.Range
	Delimiter Delimiter // set for KindDelimiter
}

// Tokenizer lazily splits text into delimiter and content tokens.
// Content tokens are maximal: they run to the next delimiter or to the
// end of input, and are never empty.
type Tokenizer struct {
	text    string
	pos     buffer.ByteOffset
	pending *Delimiter
}

// NewTokenizer creates a tokenizer positioned at the start of text.
func NewTokenizer(text string) *Tokenizer {
	return &Tokenizer{text: text}
}

// Reset restarts tokenization at pos.
func (t *Tokenizer) Reset(pos buffer.ByteOffset) {
	t.pos = min(max(pos, 0), len(t.text))
	t.pending = nil
}

// Pos returns the offset of the next token.
func (t *Tokenizer) Pos() buffer.ByteOffset {
	return t.pos
}

// Next returns the next token, or false at end of input.
func (t *Tokenizer) Next() (Token, bool) {
	if t.pos >= len(t.text) {
		return Token{}, false
	}

	d, ok := Delimiter{}, false
	if t.pending != nil {
		d, ok = *t.pending, true
		t.pending = nil
	} else {
		d, ok = Next(t.text, t.pos)
	}

	if ok && d.Start == t.pos {
		t.pos = d.End
		return Token{Kind: KindDelimiter, Range: d.Range(), Delimiter: d}, true
	}

	end := len(t.text)
	if ok {
		end = d.Start
		t.pending = &d
	}
	tok := Token{Kind: KindContent, Range: buffer.Range{Start: t.pos, End: end}}
	t.pos = end
	return tok, true
}

// Tokenize returns every token of text.
func Tokenize(text string) []Token {
	var out []Token
	tz := NewTokenizer(text)
	for {
		tok, ok := tz.Next()
		if !ok {
			return out
		}
		out = append(out, tok)
	}
}
