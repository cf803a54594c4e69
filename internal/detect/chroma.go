package detect

import (
	"context"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/lexers"

	"github.com/dshills/blockpad/internal/lang"
)

// tokenWeight caps token-based scores below analyser scores. Analysers
// only fire on explicit markers such as shebangs or doctypes.
const tokenWeight = 0.8

// ChromaClassifier scores every registered language with chroma. A
// lexer's own analyser wins when it recognizes the content; otherwise the
// language whose lexer tokenizes the content without errors and with the
// largest share of keyword and builtin bytes is chosen.
type ChromaClassifier struct {
	candidates []candidate
}

type candidate struct {
	language lang.Language
	lexer    chroma.Lexer
}

// NewChromaClassifier creates a classifier over the registered languages
// that have a chroma lexer.
func NewChromaClassifier() *ChromaClassifier {
	c := &ChromaClassifier{}
	for _, l := range lang.All() {
		name := l.Info().Chroma
		if name == "" {
			continue
		}
		if lexer := lexers.Get(name); lexer != nil {
			c.candidates = append(c.candidates, candidate{language: l, lexer: lexer})
		}
	}
	return c
}

// Languages returns the languages the classifier can answer.
func (c *ChromaClassifier) Languages() []lang.Language {
	out := make([]lang.Language, len(c.candidates))
	for i, cand := range c.candidates {
		out[i] = cand.language
	}
	return out
}

// Classify returns the best scoring language. Content no lexer accepts is
// plain text marked illegal.
func (c *ChromaClassifier) Classify(ctx context.Context, content string) (Result, error) {
	best := Result{Language: lang.Plain, Illegal: true}
	for _, cand := range c.candidates {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}
		if score := float64(cand.lexer.AnalyseText(content)); score > 0 {
			if best.Illegal || score > best.Relevance {
				best = Result{Language: cand.language, Relevance: min(score, MaxRelevance)}
			}
			continue
		}
		score, ok := tokenScore(cand.lexer, content)
		if !ok {
			continue
		}
		if best.Illegal || score*tokenWeight > best.Relevance {
			best = Result{Language: cand.language, Relevance: score * tokenWeight}
		}
	}
	return best, nil
}

// tokenScore returns the share of non-space bytes in keyword, builtin and
// declaration tokens. ok is false when the lexer reports an error token.
func tokenScore(lexer chroma.Lexer, content string) (float64, bool) {
	it, err := lexer.Tokenise(&chroma.TokeniseOptions{State: "root", Nested: true}, content)
	if err != nil {
		return 0, false
	}

	var signal, total int
	for _, tok := range it.Tokens() {
		switch {
		case tok.Type == chroma.Error:
			return 0, false
		case tok.Type == chroma.Whitespace || tok.Type == chroma.Text:
			continue
		case tok.Type.InCategory(chroma.Keyword), tok.Type == chroma.NameBuiltin,
			tok.Type == chroma.NameTag, tok.Type == chroma.CommentPreproc:
			signal += len(tok.Value)
		}
		total += len(tok.Value)
	}
	if total == 0 {
		return 0, false
	}
	return float64(signal) / float64(total), true
}
