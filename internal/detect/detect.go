package detect

import (
	"context"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/dshills/blockpad/internal/lang"
)

// MaxRelevance is the relevance of a result that needs no heuristic.
const MaxRelevance = 1.0

// Result is a classifier's answer for one piece of content.
type Result struct {
	Language  lang.Language
	Relevance float64 // 0 to MaxRelevance
	Illegal   bool    // the content cannot be valid in Language
}

// String returns a short description of the result.
func (r Result) String() string {
	s := fmt.Sprintf("%s (%.2f)", r.Language.Tag(), r.Relevance)
	if r.Illegal {
		s += " illegal"
	}
	return s
}

// Classifier guesses the language of a block's content.
// Implementations must be safe for concurrent use.
type Classifier interface {
	Classify(ctx context.Context, content string) (Result, error)
}

// ClassifierFunc adapts a function to the Classifier interface.
type ClassifierFunc func(ctx context.Context, content string) (Result, error)

// Classify calls f.
func (f ClassifierFunc) Classify(ctx context.Context, content string) (Result, error) {
	return f(ctx, content)
}

// Request asks for the language of one block. ID is opaque to the
// detector and is echoed back in the Response.
type Request struct {
	ID         uint64
	Session    string
	Generation uint64
	Block      int
	Content    string
}

// Response answers a Request. Err is set when the classifier failed; the
// Result is then the zero value.
type Response struct {
	ID         uint64
	Session    string
	Generation uint64
	Block      int
	Result
	Err error
}

// Precheck answers content that is a complete JSON object or array
// without consulting a classifier.
func Precheck(content string) (Result, bool) {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" || (trimmed[0] != '{' && trimmed[0] != '[') {
		return Result{}, false
	}
	if !gjson.Valid(trimmed) {
		return Result{}, false
	}
	return Result{Language: lang.JSON, Relevance: MaxRelevance}, true
}

// Policy decides which blocks are submitted and which answers are applied.
type Policy struct {
	// MinRelevance is the lowest relevance that changes a block's language.
	MinRelevance float64

	// MinContentLength is the shortest trimmed content sent to a classifier.
	// Content answered by Precheck is exempt.
	MinContentLength int
}

// DefaultPolicy returns the default thresholds.
func DefaultPolicy() Policy {
	return Policy{MinRelevance: 0.3, MinContentLength: 8}
}

// Eligible reports whether content is worth classifying.
func (p Policy) Eligible(content string) bool {
	if _, ok := Precheck(content); ok {
		return true
	}
	return len(strings.TrimSpace(content)) >= p.MinContentLength
}

// Accept reports whether a response should change the block's language.
func (p Policy) Accept(resp Response) bool {
	return resp.Err == nil && !resp.Illegal && resp.Relevance >= p.MinRelevance
}
