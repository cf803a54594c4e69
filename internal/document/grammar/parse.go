package grammar

import (
	"github.com/dshills/blockpad/internal/document/delim"
	"github.com/dshills/blockpad/internal/engine/buffer"
)

// Change describes one edited region: [Start, OldEnd) in the old text was
// replaced by [Start, NewEnd) in the new text.
type Change struct {
	Start  buffer.ByteOffset
	OldEnd buffer.ByteOffset
	NewEnd buffer.ByteOffset
}

// Delta returns the length change.
func (c Change) Delta() int {
	return c.NewEnd - c.OldEnd
}

// ChangeFromEdit describes a single applied edit.
func ChangeFromEdit(e buffer.Edit) Change {
	return Change{Start: e.Range.Start, OldEnd: e.Range.End, NewEnd: e.NewEnd()}
}

// Envelope returns one change enclosing every edit of an ascending edit
// set. ok is false when edits is empty.
func Envelope(edits []buffer.Edit) (Change, bool) {
	if len(edits) == 0 {
		return Change{}, false
	}
	delta := 0
	for _, e := range edits {
		delta += e.Delta()
	}
	last := edits[len(edits)-1].Range.End
	return Change{Start: edits[0].Range.Start, OldEnd: last, NewEnd: last + delta}, true
}

// Parse is the reference full parse of text.
func Parse(text string) *Tree {
	return build(len(text), delim.All(text))
}

// Reparse updates old for the edited text. Only the positions where a
// delimiter match could involve edited bytes are rescanned; every other
// delimiter is kept, shifted when it follows the change. The result is
// always identical to Parse(text).
func Reparse(old *Tree, text string, ch Change) *Tree {
	if old == nil || ch.Start < 0 || ch.OldEnd < ch.Start || ch.NewEnd < ch.Start ||
		ch.OldEnd > old.length || ch.NewEnd > len(text) || len(text) != old.length+ch.Delta() {
		return Parse(text)
	}

	delta := ch.Delta()
	delims := make([]delim.Delimiter, 0, len(old.delims)+1)

	i := 0
	for ; i < len(old.delims) && old.delims[i].End <= ch.Start; i++ {
		delims = append(delims, old.delims[i])
	}

	for _, d := range delim.Scan(text, max(0, ch.Start-delim.MaxLen+1), ch.NewEnd) {
		if d.End > ch.Start {
			delims = append(delims, d)
		}
	}

	for ; i < len(old.delims); i++ {
		d := old.delims[i]
		if d.Start < ch.OldEnd {
			continue
		}
		d.Start += delta
		d.End += delta
		delims = append(delims, d)
	}

	return build(len(text), delims)
}
