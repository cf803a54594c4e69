package buffer

import (
	"sort"
	"strings"
)

// Text is an immutable document text with a line-start index.
// The zero value is an empty text.
//
// Text values are safe to share between goroutines.
type Text struct {
	s          string
	lineStarts []ByteOffset
}

// NewText creates a Text from s. Line endings are not modified; callers
// load external content through NormalizeNewlines first.
func NewText(s string) Text {
	starts := make([]ByteOffset, 1, strings.Count(s, "\n")+1)
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			starts = append(starts, i+1)
		}
	}
	return Text{s: s, lineStarts: starts}
}

// String returns the full text.
func (t Text) String() string {
	return t.s
}

// Len returns the total byte length.
func (t Text) Len() ByteOffset {
	return len(t.s)
}

// IsEmpty returns true if the text is empty.
func (t Text) IsEmpty() bool {
	return len(t.s) == 0
}

// Slice returns the text in [start, end), clamped to the text bounds.
func (t Text) Slice(start, end ByteOffset) string {
	r := Range{Start: start, End: end}.Clamp(len(t.s))
	return t.s[r.Start:r.End]
}

// SliceRange returns the text covered by r.
func (t Text) SliceRange(r Range) string {
	return t.Slice(r.Start, r.End)
}

// LineCount returns the number of lines. An empty text has one line.
func (t Text) LineCount() int {
	if t.lineStarts == nil {
		return 1
	}
	return len(t.lineStarts)
}

// LineStart returns the byte offset of the start of a line.
func (t Text) LineStart(line int) ByteOffset {
	if line <= 0 || t.lineStarts == nil {
		return 0
	}
	if line >= len(t.lineStarts) {
		return len(t.s)
	}
	return t.lineStarts[line]
}

// LineEnd returns the byte offset of the end of a line (before newline).
func (t Text) LineEnd(line int) ByteOffset {
	if line+1 < t.LineCount() {
		return t.lineStarts[line+1] - 1
	}
	return len(t.s)
}

// LineText returns the text of a line without its newline.
func (t Text) LineText(line int) string {
	return t.s[t.LineStart(line):t.LineEnd(line)]
}

// LineAt returns the 0-indexed line containing offset.
func (t Text) LineAt(offset ByteOffset) int {
	if t.lineStarts == nil || offset <= 0 {
		return 0
	}
	offset = min(offset, len(t.s))
	return sort.Search(len(t.lineStarts), func(i int) bool {
		return t.lineStarts[i] > offset
	}) - 1
}

// OffsetToPoint converts a byte offset to line/column.
func (t Text) OffsetToPoint(offset ByteOffset) Point {
	offset = min(max(offset, 0), len(t.s))
	line := t.LineAt(offset)
	return Point{Line: line, Column: offset - t.LineStart(line)}
}

// PointToOffset converts line/column to a byte offset.
// Columns past the end of the line are clamped to the line end.
func (t Text) PointToOffset(p Point) ByteOffset {
	if p.Line >= t.LineCount() {
		return len(t.s)
	}
	start := t.LineStart(p.Line)
	return min(start+max(p.Column, 0), t.LineEnd(p.Line))
}

// Apply returns a new Text with ascending, non-overlapping edits applied.
func (t Text) Apply(edits []Edit) (Text, error) {
	s, err := ApplyEdits(t.s, edits)
	if err != nil {
		return t, err
	}
	return NewText(s), nil
}
