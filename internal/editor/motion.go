package editor

import (
	"unicode/utf8"

	"github.com/dshills/blockpad/internal/engine/buffer"
	"github.com/dshills/blockpad/internal/engine/cursor"
)

// Motion names a cursor movement.
type Motion int

// Cursor motions.
const (
	MoveLeft Motion = iota
	MoveRight
	MoveUp
	MoveDown
	MoveLineStart
	MoveLineEnd
	MoveDocumentStart
	MoveDocumentEnd
)

// Move moves every selection head by m. With extend set the anchors stay
// put; otherwise selections collapse to their new heads. Heads landing
// inside a delimiter skip over it in the direction of travel.
func (s *Session) Move(m Motion, extend bool) {
	text := s.snap.Lines()
	next := s.sel.Map(func(sel cursor.Selection) cursor.Selection {
		head := target(text, sel.Head, m)
		if extend {
			return sel.Extend(head)
		}
		return cursor.Point(head)
	})
	s.SetSelection(next)
}

func target(text buffer.Text, head buffer.ByteOffset, m Motion) buffer.ByteOffset {
	s := text.String()
	switch m {
	case MoveLeft:
		if head == 0 {
			return 0
		}
		_, size := utf8.DecodeLastRuneInString(s[:head])
		return head - size
	case MoveRight:
		if head >= len(s) {
			return len(s)
		}
		_, size := utf8.DecodeRuneInString(s[head:])
		return head + size
	case MoveUp, MoveDown:
		p := text.OffsetToPoint(head)
		if m == MoveUp {
			if p.Line == 0 {
				return head
			}
			p.Line--
		} else {
			if p.Line+1 >= text.LineCount() {
				return head
			}
			p.Line++
		}
		return runeBoundary(s, text.PointToOffset(p))
	case MoveLineStart:
		return text.LineStart(text.LineAt(head))
	case MoveLineEnd:
		return text.LineEnd(text.LineAt(head))
	case MoveDocumentStart:
		return 0
	case MoveDocumentEnd:
		return len(s)
	default:
		return head
	}
}

// runeBoundary moves off back to the start of the rune containing it.
func runeBoundary(s string, off buffer.ByteOffset) buffer.ByteOffset {
	for off > 0 && off < len(s) && !utf8.RuneStart(s[off]) {
		off--
	}
	return off
}
