package buffer

import (
	"fmt"
	"sort"
	"strings"
)

// Edit represents a text edit operation.
// It specifies a range to replace and the new text.
type Edit struct {
	Range   Range  // The range to replace
	NewText string // The replacement text
}

// NewEdit creates a new Edit.
func NewEdit(r Range, newText string) Edit {
	return Edit{Range: r, NewText: newText}
}

// NewInsert creates an Edit that inserts text at a position.
func NewInsert(offset ByteOffset, text string) Edit {
	return Edit{
		Range:   Range{Start: offset, End: offset},
		NewText: text,
	}
}

// NewDelete creates an Edit that deletes a range of text.
func NewDelete(start, end ByteOffset) Edit {
	return Edit{
		Range:   Range{Start: start, End: end},
		NewText: "",
	}
}

// String returns a human-readable representation of the edit.
func (e Edit) String() string {
	if e.Range.IsEmpty() {
		return fmt.Sprintf("Insert(%d, %q)", e.Range.Start, e.NewText)
	}
	if e.NewText == "" {
		return fmt.Sprintf("Delete%s", e.Range.String())
	}
	return fmt.Sprintf("Replace%s with %q", e.Range.String(), e.NewText)
}

// IsInsert returns true if this is a pure insertion (empty range).
func (e Edit) IsInsert() bool {
	return e.Range.IsEmpty() && e.NewText != ""
}

// IsDelete returns true if this is a pure deletion (empty replacement).
func (e Edit) IsDelete() bool {
	return !e.Range.IsEmpty() && e.NewText == ""
}

// IsNoOp returns true if this edit does nothing.
func (e Edit) IsNoOp() bool {
	return e.Range.IsEmpty() && e.NewText == ""
}

// Delta returns the change in document length caused by this edit.
func (e Edit) Delta() ByteOffset {
	return ByteOffset(len(e.NewText)) - e.Range.Len()
}

// NewEnd returns the end of the replacement text once the edit is applied.
func (e Edit) NewEnd() ByteOffset {
	return e.Range.Start + ByteOffset(len(e.NewText))
}

// SortEdits sorts edits in ascending order by start position.
// Edits with equal starts keep their relative order.
func SortEdits(edits []Edit) {
	sort.SliceStable(edits, func(i, j int) bool {
		return edits[i].Range.Start < edits[j].Range.Start
	})
}

// ValidateEdits checks that edits are ascending, non-overlapping and
// inside a document of the given length.
func ValidateEdits(edits []Edit, length ByteOffset) error {
	prevEnd := ByteOffset(0)
	for i, e := range edits {
		if !e.Range.IsValid() {
			return fmt.Errorf("edit %d %s: %w", i, e.Range, ErrRangeInvalid)
		}
		if e.Range.Start < 0 || e.Range.End > length {
			return fmt.Errorf("edit %d %s: %w", i, e.Range, ErrOffsetOutOfRange)
		}
		if i > 0 && e.Range.Start < prevEnd {
			return fmt.Errorf("edit %d %s: %w", i, e.Range, ErrEditsOverlap)
		}
		prevEnd = e.Range.End
	}
	return nil
}

// ApplyEdits applies ascending, non-overlapping edits expressed in the
// coordinates of text and returns the result.
func ApplyEdits(text string, edits []Edit) (string, error) {
	if err := ValidateEdits(edits, ByteOffset(len(text))); err != nil {
		return "", err
	}
	var sb strings.Builder
	sb.Grow(len(text) + int(totalDelta(edits)))
	pos := ByteOffset(0)
	for _, e := range edits {
		sb.WriteString(text[pos:e.Range.Start])
		sb.WriteString(e.NewText)
		pos = e.Range.End
	}
	sb.WriteString(text[pos:])
	return sb.String(), nil
}

// InvertEdits returns the edits that undo edits once they have been
// applied to text. The result is expressed in post-edit coordinates.
func InvertEdits(text string, edits []Edit) []Edit {
	inverse := make([]Edit, 0, len(edits))
	delta := ByteOffset(0)
	for _, e := range edits {
		start := e.Range.Start + delta
		inverse = append(inverse, Edit{
			Range:   Range{Start: start, End: start + ByteOffset(len(e.NewText))},
			NewText: text[e.Range.Start:e.Range.End],
		})
		delta += e.Delta()
	}
	return inverse
}

// MapOffset maps an offset through ascending edits. Offsets inside a
// replaced range, and offsets at an insertion point, move to the end of
// the replacement text.
func MapOffset(offset ByteOffset, edits []Edit) ByteOffset {
	delta := ByteOffset(0)
	for _, e := range edits {
		if e.Range.End <= offset {
			delta += e.Delta()
			continue
		}
		if e.Range.Start >= offset {
			break
		}
		return e.NewEnd() + delta
	}
	return offset + delta
}

func totalDelta(edits []Edit) ByteOffset {
	var d ByteOffset
	for _, e := range edits {
		d += e.Delta()
	}
	if d < 0 {
		return 0
	}
	return d
}
