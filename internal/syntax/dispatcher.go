package syntax

import (
	"sort"

	"github.com/dshills/blockpad/internal/document/index"
	"github.com/dshills/blockpad/internal/engine/buffer"
	"github.com/dshills/blockpad/internal/lang"
	"github.com/dshills/blockpad/internal/syntax/highlight"
)

// Result is the inner parse of one block in document coordinates.
type Result struct {
	Block    int
	Language lang.Language
	Content  buffer.Range
	Tokens   []highlight.Token
	Folds    []buffer.Range
}

// Stats counts inner parses. Hits are blocks served from the cache.
type Stats struct {
	Syncs  int
	Parses int
	Hits   int
}

type cacheKey struct {
	language lang.Language
	content  string
}

// parsed holds an inner parse in content-relative coordinates.
type parsed struct {
	tokens []highlight.Token
	folds  []buffer.Range
}

// Dispatcher runs the inner grammar of every block and keeps the results
// of the latest Sync. It is not safe for concurrent use.
type Dispatcher struct {
	registry *Registry
	index    *index.Index
	cache    map[cacheKey]*parsed
	results  []Result
	stats    Stats
}

// NewDispatcher creates a dispatcher using the grammars in reg.
func NewDispatcher(reg *Registry) *Dispatcher {
	if reg == nil {
		reg = NewRegistry()
	}
	return &Dispatcher{
		registry: reg,
		cache:    make(map[cacheKey]*parsed),
	}
}

// Registry returns the grammar registry.
func (d *Dispatcher) Registry() *Registry {
	return d.registry
}

// Sync re-dispatches every block of ix. Blocks whose language and content
// are unchanged reuse their previous parse; cache entries not used by ix
// are dropped.
func (d *Dispatcher) Sync(ix *index.Index) {
	d.stats.Syncs++
	d.index = ix

	blocks := ix.Blocks()
	next := make(map[cacheKey]*parsed, len(blocks))
	results := make([]Result, len(blocks))

	for i, b := range blocks {
		key := cacheKey{language: b.Language, content: ix.Content(i)}
		p, ok := next[key]
		if !ok {
			p, ok = d.cache[key]
		}
		if ok {
			d.stats.Hits++
		} else {
			g := d.registry.Get(b.Language)
			p = &parsed{
				tokens: g.Highlight(key.content),
				folds:  g.Folds(key.content),
			}
			d.stats.Parses++
		}
		next[key] = p
		results[i] = rebase(i, b, p)
	}

	d.cache = next
	d.results = results
}

func rebase(i int, b index.Block, p *parsed) Result {
	off := b.Content.Start
	r := Result{Block: i, Language: b.Language, Content: b.Content}
	if len(p.tokens) > 0 {
		r.Tokens = make([]highlight.Token, len(p.tokens))
		for j, tok := range p.tokens {
			r.Tokens[j] = tok.Shift(off)
		}
	}
	if len(p.folds) > 0 {
		r.Folds = make([]buffer.Range, len(p.folds))
		for j, f := range p.folds {
			r.Folds[j] = f.Shift(off)
		}
	}
	return r
}

// Stats returns the parse counters.
func (d *Dispatcher) Stats() Stats {
	return d.stats
}

// Results returns the per-block results of the latest Sync.
func (d *Dispatcher) Results() []Result {
	return d.results
}

// Block returns the result for block i.
func (d *Dispatcher) Block(i int) (Result, bool) {
	if i < 0 || i >= len(d.results) {
		return Result{}, false
	}
	return d.results[i], true
}

// Tokens returns the tokens overlapping r, sorted by start.
func (d *Dispatcher) Tokens(r buffer.Range) []highlight.Token {
	var out []highlight.Token
	for _, res := range d.results {
		if res.Content.End < r.Start {
			continue
		}
		if res.Content.Start >= r.End {
			break
		}
		start := sort.Search(len(res.Tokens), func(j int) bool {
			return res.Tokens[j].Range.End > r.Start
		})
		for _, tok := range res.Tokens[start:] {
			if tok.Range.Start >= r.End {
				break
			}
			out = append(out, tok)
		}
	}
	return out
}

// Folds returns the fold ranges of every block. Each block contributes
// its whole-content fold followed by the folds of its inner grammar.
func (d *Dispatcher) Folds() []buffer.Range {
	if d.index == nil {
		return nil
	}
	var out []buffer.Range
	for i, res := range d.results {
		if whole, ok := d.index.FoldRange(i); ok {
			out = append(out, whole)
		}
		out = append(out, res.Folds...)
	}
	return out
}

// Indent returns the indentation for a line break inserted at the document
// offset pos, using the grammar of the block containing pos.
func (d *Dispatcher) Indent(pos buffer.ByteOffset, unit string) string {
	if d.index == nil {
		return ""
	}
	b, ok := d.index.ContentBlockAt(pos)
	if !ok {
		return ""
	}
	g := d.registry.Get(b.Language)
	return g.Indent(d.index.Content(b.Index), pos-b.Content.Start, unit)
}
