package render

import (
	"strings"

	"github.com/dshills/blockpad/internal/document/index"
	"github.com/dshills/blockpad/internal/engine/buffer"
)

// RowKind tells what a visual row shows.
type RowKind int

// Row kinds.
const (
	// TextRow shows one line of block content.
	TextRow RowKind = iota
	// MarkerRow shows a block-level marker in place of a delimiter.
	MarkerRow
)

// Row is one visual row of the document.
type Row struct {
	Kind   RowKind
	Block  int
	Parity int
	Range  buffer.Range // content shown on a TextRow
	Marker index.Marker // for a MarkerRow, or the inline marker of Inline
	Inline bool         // a TextRow starting with the first block's marker
}

// Layout splits the document into visual rows. A content line ending in
// the newline just before the next delimiter adds no empty row.
func Layout(ix *index.Index) []Row {
	deco := ix.Decorations()
	text := ix.Text()
	blocks := ix.Blocks()
	rows := make([]Row, 0, strings.Count(text, "\n")+len(blocks))

	for _, b := range blocks {
		parity := b.Index % 2
		marker, hasMarker := deco.MarkerAt(b.Delimiter.Start)
		hasMarker = hasMarker && !b.Implicit
		inline := hasMarker && marker.Kind == index.FirstBlockMarker
		if hasMarker && !inline {
			rows = append(rows, Row{Kind: MarkerRow, Block: b.Index, Parity: parity, Marker: marker})
		}

		content := b.Content
		last := b.Index == len(blocks)-1
		if !last && content.End > content.Start && text[content.End-1] == '\n' {
			content.End--
		}
		start := content.Start
		for {
			end := content.End
			if i := strings.IndexByte(text[start:content.End], '\n'); i >= 0 {
				end = start + i
			}
			row := Row{Kind: TextRow, Block: b.Index, Parity: parity, Range: buffer.NewRange(start, end)}
			if inline {
				row.Inline, row.Marker = true, marker
				inline = false
			}
			rows = append(rows, row)
			if end >= content.End {
				break
			}
			start = end + 1
		}
	}
	return rows
}

// RowOf returns the index of the text row holding offset.
func RowOf(rows []Row, offset buffer.ByteOffset) int {
	found := 0
	for i, r := range rows {
		if r.Kind != TextRow {
			continue
		}
		if r.Range.Start > offset {
			break
		}
		found = i
	}
	return found
}
