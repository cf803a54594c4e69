package index

import (
	"github.com/dshills/blockpad/internal/engine/buffer"
	"github.com/dshills/blockpad/internal/lang"
)

// MarkerKind selects how a delimiter is drawn.
type MarkerKind int

// Marker kinds.
const (
	// FirstBlockMarker is drawn inline on the first line of the document.
	FirstBlockMarker MarkerKind = iota
	// BlockMarker is drawn as a separator row between blocks.
	BlockMarker
)

// String returns the marker kind name.
func (k MarkerKind) String() string {
	if k == FirstBlockMarker {
		return "first"
	}
	return "block"
}

// Marker replaces one delimiter span with a zero-width block start widget.
type Marker struct {
	Kind     MarkerKind
	Block    int
	Range    buffer.Range // the delimiter span hidden by the marker
	Language lang.Language
	Auto     bool
}

// Band is the background treatment of one block.
type Band struct {
	Block  int
	Range  buffer.Range // block content
	Parity int          // 0 or 1, alternating per block
}

// Decorations are the visual annotations derived from an index.
type Decorations struct {
	Bands   []Band
	Markers []Marker
}

// Decorations returns alternating backgrounds and block markers.
func (ix *Index) Decorations() Decorations {
	d := Decorations{
		Bands:   make([]Band, 0, len(ix.blocks)),
		Markers: make([]Marker, 0, len(ix.blocks)),
	}
	for _, b := range ix.blocks {
		d.Bands = append(d.Bands, Band{Block: b.Index, Range: b.Content, Parity: b.Index % 2})
		if b.Implicit {
			continue
		}
		kind := BlockMarker
		if b.Delimiter.Start == 0 {
			kind = FirstBlockMarker
		}
		d.Markers = append(d.Markers, Marker{
			Kind:     kind,
			Block:    b.Index,
			Range:    b.Delimiter,
			Language: b.Language,
			Auto:     b.Auto,
		})
	}
	return d
}

// MarkerAt returns the marker starting at offset.
func (d Decorations) MarkerAt(offset buffer.ByteOffset) (Marker, bool) {
	for _, m := range d.Markers {
		if m.Range.Start == offset {
			return m, true
		}
		if m.Range.Start > offset {
			break
		}
	}
	return Marker{}, false
}

// BandAt returns the band covering offset. The end of a band's content
// counts as inside so an empty trailing line keeps its block background.
func (d Decorations) BandAt(offset buffer.ByteOffset) (Band, bool) {
	for i := len(d.Bands) - 1; i >= 0; i-- {
		if d.Bands[i].Range.ContainsInclusive(offset) {
			return d.Bands[i], true
		}
	}
	return Band{}, false
}
