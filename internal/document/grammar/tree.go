package grammar

import (
	"slices"

	"github.com/dshills/blockpad/internal/document/delim"
	"github.com/dshills/blockpad/internal/engine/buffer"
)

// Kind is the kind of a parse tree node.
type Kind int

// Node kinds.
const (
	KindDocument Kind = iota
	KindBlock
	KindDelimiter
	KindContent
)

var kindNames = [...]string{
	KindDocument:  "Document",
	KindBlock:     "Block",
	KindDelimiter: "Delimiter",
	KindContent:   "Content",
}

// String returns the kind name.
func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "Unknown"
	}
	return kindNames[k]
}

// Node is one node of the outer parse tree.
type Node struct {
	Kind     Kind
	Range    buffer.Range
	Tag      buffer.Range // tag sub-span, set on Delimiter nodes
	Children []Node
}

// Block is a parsed block: one delimiter followed by its content.
// An implicit block covers text before the first delimiter and has an
// empty delimiter span.
type Block struct {
	Range     buffer.Range
	Delimiter delim.Delimiter
	Content   buffer.Range
	Implicit  bool
}

// DelimiterRange returns the span of the block's delimiter.
func (b Block) DelimiterRange() buffer.Range {
	if b.Implicit {
		return buffer.Range{Start: b.Range.Start, End: b.Range.Start}
	}
	return b.Delimiter.Range()
}

// Tree is the immutable result of parsing a document.
type Tree struct {
	length int
	delims []delim.Delimiter
	blocks []Block
}

// Len returns the length of the parsed text.
func (t *Tree) Len() int {
	return t.length
}

// Delimiters returns the recognized delimiters in document order.
func (t *Tree) Delimiters() []delim.Delimiter {
	return slices.Clone(t.delims)
}

// Blocks returns the blocks in document order. There is always at least one.
func (t *Tree) Blocks() []Block {
	return slices.Clone(t.blocks)
}

// BlockCount returns the number of blocks.
func (t *Tree) BlockCount() int {
	return len(t.blocks)
}

// Block returns block i.
func (t *Tree) Block(i int) Block {
	return t.blocks[i]
}

// Equal reports whether two trees describe the same structure.
func (t *Tree) Equal(other *Tree) bool {
	return t.length == other.length && slices.Equal(t.blocks, other.blocks)
}

// Root returns the Document node with its Block, Delimiter and Content
// children.
func (t *Tree) Root() Node {
	root := Node{
		Kind:     KindDocument,
		Range:    buffer.Range{Start: 0, End: t.length},
		Children: make([]Node, 0, len(t.blocks)),
	}
	for _, b := range t.blocks {
		dr := b.DelimiterRange()
		d := Node{Kind: KindDelimiter, Range: dr, Tag: buffer.Range{Start: dr.End, End: dr.End}}
		if !b.Implicit {
			d.Tag = b.Delimiter.TagRange()
		}
		root.Children = append(root.Children, Node{
			Kind:  KindBlock,
			Range: b.Range,
			Children: []Node{
				d,
				{Kind: KindContent, Range: b.Content},
			},
		})
	}
	return root
}

// build derives blocks from an ordered delimiter list.
func build(length int, delims []delim.Delimiter) *Tree {
	t := &Tree{length: length, delims: delims}
	t.blocks = make([]Block, 0, len(delims)+1)

	if len(delims) == 0 || delims[0].Start > 0 {
		end := length
		if len(delims) > 0 {
			end = delims[0].Start
		}
		t.blocks = append(t.blocks, Block{
			Range:    buffer.Range{Start: 0, End: end},
			Content:  buffer.Range{Start: 0, End: end},
			Implicit: true,
		})
	}

	for i, d := range delims {
		end := length
		if i+1 < len(delims) {
			end = delims[i+1].Start
		}
		t.blocks = append(t.blocks, Block{
			Range:     buffer.Range{Start: d.Start, End: end},
			Delimiter: d,
			Content:   buffer.Range{Start: d.End, End: end},
		})
	}
	return t
}
