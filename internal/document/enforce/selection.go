package enforce

import (
	"github.com/dshills/blockpad/internal/document/index"
	"github.com/dshills/blockpad/internal/engine/buffer"
	"github.com/dshills/blockpad/internal/engine/cursor"
)

// Clamp moves every selection endpoint of next to a valid position in ix:
// never before the end of the first delimiter and never strictly inside a
// delimiter. An endpoint inside a delimiter moves to the delimiter's end,
// or to its start when the matching endpoint of prev lay at or after the
// delimiter's end, so moving backwards across a delimiter skips it.
func Clamp(ix *index.Index, next, prev cursor.Set) cursor.Set {
	length := len(ix.Text())
	floor := min(ix.FirstDelimiterEnd(), length)
	prevSels := prev.All()
	i := 0

	return next.Map(func(sel cursor.Selection) cursor.Selection {
		var before cursor.Selection
		hasPrev := i < len(prevSels)
		if hasPrev {
			before = prevSels[i]
		}
		i++

		sel = sel.Clamp(length)
		sel.Anchor = clampOffset(ix, sel.Anchor, floor, before.Anchor, hasPrev)
		sel.Head = clampOffset(ix, sel.Head, floor, before.Head, hasPrev)
		return sel
	})
}

func clampOffset(ix *index.Index, offset, floor, prev buffer.ByteOffset, hasPrev bool) buffer.ByteOffset {
	if offset < floor {
		return floor
	}
	d, ok := ix.DelimiterAt(offset)
	if !ok {
		return offset
	}
	if hasPrev && prev >= d.End && d.Start >= floor {
		return d.Start
	}
	return d.End
}

// IsClamped reports whether every endpoint of set is at a valid position.
func IsClamped(ix *index.Index, set cursor.Set) bool {
	floor := ix.FirstDelimiterEnd()
	for _, sel := range set.All() {
		for _, off := range []buffer.ByteOffset{sel.Anchor, sel.Head} {
			if off < floor || off > len(ix.Text()) {
				return false
			}
			if _, inside := ix.DelimiterAt(off); inside {
				return false
			}
		}
	}
	return true
}

// SelectAll is the two-level select-all toggle. The first invocation
// selects the content of the block holding the primary cursor; when that
// content is already selected exactly, the whole document content after
// the first delimiter is selected instead.
func SelectAll(ix *index.Index, set cursor.Set) cursor.Set {
	primary := set.Primary()
	b, ok := ix.ContentBlockAt(primary.Head)
	if !ok {
		b = ix.BlockAt(primary.Head)
	}
	if primary.SameRangeAs(b.Content) {
		return cursor.NewSet(cursor.FromRange(buffer.Range{
			Start: ix.FirstDelimiterEnd(),
			End:   len(ix.Text()),
		}))
	}
	return cursor.NewSet(cursor.FromRange(b.Content))
}

// MoveLineUpBlocked reports whether a move-line-up must be suppressed:
// some selection starts on the line holding the first block's content
// start, and moving it would drag content above the first delimiter.
func MoveLineUpBlocked(text buffer.Text, ix *index.Index, set cursor.Set) bool {
	firstLine := text.LineAt(ix.First().Content.Start)
	for _, sel := range set.All() {
		if text.LineAt(sel.Start()) <= firstLine {
			return true
		}
	}
	return false
}
