package index

import (
	"fmt"
	"slices"
	"sort"

	"github.com/dshills/blockpad/internal/document/grammar"
	"github.com/dshills/blockpad/internal/engine/buffer"
	"github.com/dshills/blockpad/internal/lang"
)

// Block is the read-only description of one block.
type Block struct {
	Index     int
	Delimiter buffer.Range // empty for an implicit block
	Content   buffer.Range
	Language  lang.Language
	Tag       string // raw delimiter tag
	Auto      bool
	Implicit  bool
}

// Range returns the whole block span, delimiter included.
func (b Block) Range() buffer.Range {
	return buffer.Range{Start: b.Delimiter.Start, End: b.Content.End}
}

// String returns a short description for logs.
func (b Block) String() string {
	mode := ""
	if b.Auto {
		mode = " auto"
	}
	return fmt.Sprintf("block %d %s%s %s", b.Index, b.Language.Tag(), mode, b.Content)
}

// Index is the ordered block list derived from one parse.
// It is immutable and safe to share between goroutines.
type Index struct {
	text   string
	blocks []Block
}

// Build derives the index of text from its parse tree.
func Build(text string, tree *grammar.Tree) *Index {
	ix := &Index{text: text, blocks: make([]Block, tree.BlockCount())}
	for i, b := range tree.Blocks() {
		blk := Block{
			Index:     i,
			Delimiter: b.DelimiterRange(),
			Content:   b.Content,
			Language:  lang.Plain,
			Implicit:  b.Implicit,
		}
		if !b.Implicit {
			blk.Language = b.Delimiter.Language
			blk.Tag = b.Delimiter.Tag
			blk.Auto = b.Delimiter.Auto
		}
		ix.blocks[i] = blk
	}
	return ix
}

// Text returns the indexed text.
func (ix *Index) Text() string {
	return ix.text
}

// Len returns the number of blocks. It is always at least one.
func (ix *Index) Len() int {
	return len(ix.blocks)
}

// Block returns block i.
func (ix *Index) Block(i int) Block {
	return ix.blocks[i]
}

// Blocks returns a copy of all blocks in document order.
func (ix *Index) Blocks() []Block {
	return slices.Clone(ix.blocks)
}

// First returns the first block.
func (ix *Index) First() Block {
	return ix.blocks[0]
}

// Last returns the last block.
func (ix *Index) Last() Block {
	return ix.blocks[len(ix.blocks)-1]
}

// Content returns the content text of block i.
func (ix *Index) Content(i int) string {
	c := ix.blocks[i].Content
	return ix.text[c.Start:c.End]
}

// FirstDelimiterEnd returns the offset just past the first delimiter.
// No selection may start before it.
func (ix *Index) FirstDelimiterEnd() buffer.ByteOffset {
	return ix.blocks[0].Delimiter.End
}

// BlockAt returns the block whose span contains offset. Offsets at or
// past the end of the document belong to the last block.
func (ix *Index) BlockAt(offset buffer.ByteOffset) Block {
	i := sort.Search(len(ix.blocks), func(i int) bool {
		return ix.blocks[i].Delimiter.Start > offset
	}) - 1
	return ix.blocks[max(i, 0)]
}

// ContentBlockAt returns the block whose content span contains offset,
// counting the end of the content as inside. Offsets strictly inside a
// delimiter belong to no block.
func (ix *Index) ContentBlockAt(offset buffer.ByteOffset) (Block, bool) {
	b := ix.BlockAt(offset)
	if b.Content.ContainsInclusive(offset) {
		return b, true
	}
	if offset == b.Delimiter.Start && b.Index > 0 {
		return ix.blocks[b.Index-1], true
	}
	return Block{}, false
}

// DelimiterAt returns the delimiter span that strictly contains offset.
func (ix *Index) DelimiterAt(offset buffer.ByteOffset) (buffer.Range, bool) {
	b := ix.BlockAt(offset)
	if b.Delimiter.StrictlyContains(offset) {
		return b.Delimiter, true
	}
	return buffer.Range{}, false
}

// Delimiters returns the span of every explicit delimiter.
func (ix *Index) Delimiters() []buffer.Range {
	out := make([]buffer.Range, 0, len(ix.blocks))
	for _, b := range ix.blocks {
		if !b.Implicit {
			out = append(out, b.Delimiter)
		}
	}
	return out
}

// FoldRange returns the range that folding block i collapses: its content
// without the trailing newline. ok is false when that range is empty.
func (ix *Index) FoldRange(i int) (buffer.Range, bool) {
	if i < 0 || i >= len(ix.blocks) {
		return buffer.Range{}, false
	}
	c := ix.blocks[i].Content
	if c.End > c.Start && ix.text[c.End-1] == '\n' {
		c.End--
	}
	return c, !c.IsEmpty()
}
