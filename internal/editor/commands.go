package editor

import (
	"unicode/utf8"

	"github.com/dshills/blockpad/internal/document"
	"github.com/dshills/blockpad/internal/document/delim"
	"github.com/dshills/blockpad/internal/document/enforce"
	"github.com/dshills/blockpad/internal/engine/buffer"
	"github.com/dshills/blockpad/internal/engine/cursor"
	"github.com/dshills/blockpad/internal/lang"
)

// InsertText replaces every selection with text.
func (s *Session) InsertText(text string) (enforce.Verdict, error) {
	sels := s.sel.All()
	edits := make([]buffer.Edit, 0, len(sels))
	for _, sel := range sels {
		edits = append(edits, buffer.NewEdit(sel.Range(), text))
	}
	return s.Apply(document.NewTransaction("insert", edits...))
}

// InsertNewline replaces every selection with a line break followed by
// the indentation the block's grammar asks for.
func (s *Session) InsertNewline() (enforce.Verdict, error) {
	sels := s.sel.All()
	edits := make([]buffer.Edit, 0, len(sels))
	for _, sel := range sels {
		indent := s.dispatcher.Indent(sel.Start(), s.indentUnit)
		edits = append(edits, buffer.NewEdit(sel.Range(), "\n"+indent))
	}
	return s.Apply(document.NewTransaction("newline", edits...))
}

// DeleteBackward deletes each selection, or the character before each
// cursor. At the start of a block's content the delete reaches into the
// delimiter and removes all of it, joining the block with the one above.
func (s *Session) DeleteBackward() (enforce.Verdict, error) {
	text := s.snap.Text()
	var edits []buffer.Edit
	for _, sel := range s.sel.All() {
		if !sel.IsEmpty() {
			edits = append(edits, buffer.NewEdit(sel.Range(), ""))
			continue
		}
		if sel.Head == 0 {
			continue
		}
		_, size := utf8.DecodeLastRuneInString(text[:sel.Head])
		edits = append(edits, buffer.NewDelete(sel.Head-size, sel.Head))
	}
	return s.Apply(document.NewTransaction("delete backward", edits...))
}

// DeleteForward deletes each selection, or the character after each
// cursor. At the end of a block's content the following delimiter is
// removed whole.
func (s *Session) DeleteForward() (enforce.Verdict, error) {
	text := s.snap.Text()
	var edits []buffer.Edit
	for _, sel := range s.sel.All() {
		if !sel.IsEmpty() {
			edits = append(edits, buffer.NewEdit(sel.Range(), ""))
			continue
		}
		if sel.Head >= len(text) {
			continue
		}
		_, size := utf8.DecodeRuneInString(text[sel.Head:])
		edits = append(edits, buffer.NewDelete(sel.Head, sel.Head+size))
	}
	return s.Apply(document.NewTransaction("delete forward", edits...))
}

// AddBlockAfterCurrent inserts a new block after the block holding the
// primary cursor and moves the cursor into it.
func (s *Session) AddBlockAfterCurrent(l lang.Language, auto bool) (enforce.Verdict, error) {
	b := s.cursorBlock()
	return s.insertDelimiter("add block", buffer.Range{Start: b.Content.End, End: b.Content.End}, l, auto)
}

// AddBlockAfterLast appends a new block to the document and moves the
// cursor into it.
func (s *Session) AddBlockAfterLast(l lang.Language, auto bool) (enforce.Verdict, error) {
	end := s.snap.Len()
	return s.insertDelimiter("add block", buffer.Range{Start: end, End: end}, l, auto)
}

// SplitBlock replaces the primary selection with a delimiter of the
// current block's language, splitting the block in two.
func (s *Session) SplitBlock() (enforce.Verdict, error) {
	b := s.cursorBlock()
	return s.insertDelimiter("split block", s.sel.Primary().Range(), b.Language, b.Auto)
}

func (s *Session) insertDelimiter(name string, r buffer.Range, l lang.Language, auto bool) (enforce.Verdict, error) {
	text := s.snap.Text()
	ins := delim.Format(l, auto)
	if r.Start > 0 && text[r.Start-1] != '\n' {
		ins = "\n" + ins
	}
	tx := document.NewTransaction(name, buffer.NewEdit(r, ins)).
		WithSelection(cursor.NewSetAt(r.Start + len(ins)))
	return s.Apply(tx)
}

// DeleteBlock removes the block holding the primary cursor. The last
// remaining block only loses its content. Deleting the first block of
// several promotes the second block's delimiter to the top.
func (s *Session) DeleteBlock() (enforce.Verdict, error) {
	ix := s.snap.Index()
	b := s.cursorBlock()

	var tx document.Transaction
	switch {
	case len(ix.Blocks()) == 1:
		tx = document.NewTransaction("delete block", buffer.NewDelete(b.Content.Start, b.Content.End)).
			WithSelection(cursor.NewSetAt(b.Content.Start))
	case b.Index > 0:
		tx = document.NewTransaction("delete block", buffer.NewDelete(b.Delimiter.Start, b.Content.End)).
			WithSelection(cursor.NewSetAt(b.Delimiter.Start))
	default:
		second := ix.Block(1)
		promoted := ix.Text()[second.Delimiter.Start:second.Delimiter.End]
		tx = document.Transaction{
			Name:   "delete block",
			Origin: document.OriginLanguage,
			Edits: []buffer.Edit{
				buffer.NewEdit(b.Delimiter, promoted),
				buffer.NewDelete(b.Content.Start, second.Delimiter.End),
			},
		}.WithSelection(cursor.NewSetAt(len(promoted)))
	}
	return s.Apply(tx)
}

// ChangeLanguage rewrites the delimiter of the block holding the primary
// cursor. With auto set the block stays open to detection.
func (s *Session) ChangeLanguage(l lang.Language, auto bool) (enforce.Verdict, error) {
	b := s.cursorBlock()
	if b.Implicit {
		return enforce.Verdict{}, ErrNoBlock
	}
	tx := document.Transaction{
		Name:   "change language",
		Origin: document.OriginLanguage,
		Edits:  []buffer.Edit{buffer.NewEdit(b.Delimiter, delim.Format(l, auto))},
	}
	return s.Apply(tx)
}

// GotoNextBlock moves the cursor to the start of the next block's
// content, or to the end of the document from the last block.
func (s *Session) GotoNextBlock() {
	ix := s.snap.Index()
	b := s.cursorBlock()
	target := s.snap.Len()
	if b.Index+1 < len(ix.Blocks()) {
		target = ix.Block(b.Index + 1).Content.Start
	}
	s.SetSelection(cursor.NewSetAt(target))
}

// GotoPreviousBlock moves the cursor to the start of the current block's
// content, or to the start of the previous block's content when it is
// already there.
func (s *Session) GotoPreviousBlock() {
	ix := s.snap.Index()
	b := s.cursorBlock()
	target := b.Content.Start
	if s.sel.Primary().Head <= target && b.Index > 0 {
		target = ix.Block(b.Index - 1).Content.Start
	}
	s.SetSelection(cursor.NewSetAt(target))
}

// SelectAll selects the current block's content, or the whole document
// when the block's content is already selected.
func (s *Session) SelectAll() {
	s.SetSelection(enforce.SelectAll(s.snap.Index(), s.sel))
}

// lineGroup is a run of lines moved together.
type lineGroup struct {
	first, last int
}

// MoveLineUp swaps the lines touched by the selections with the line
// above them. It reports false, changing nothing, when a selection is on
// the first content line of the document.
func (s *Session) MoveLineUp() (bool, error) {
	text := s.snap.Lines()
	ix := s.snap.Index()
	if enforce.MoveLineUpBlocked(text, ix, s.sel) {
		return false, nil
	}

	sels := s.sel.All()
	var groups []lineGroup
	for _, sel := range sels {
		g := lineGroup{first: text.LineAt(sel.Start()), last: text.LineAt(sel.End())}
		// A selection ending at a line start does not touch that line.
		if g.last > g.first && sel.End() == text.LineStart(g.last) {
			g.last--
		}
		if n := len(groups); n > 0 && g.first <= groups[n-1].last+1 {
			groups[n-1].last = max(groups[n-1].last, g.last)
			continue
		}
		groups = append(groups, g)
	}

	edits := make([]buffer.Edit, 0, len(groups))
	for _, g := range groups {
		above := g.first - 1
		moved := text.Slice(text.LineStart(g.first), text.LineEnd(g.last))
		aboveText := text.LineText(above)

		r := buffer.Range{Start: text.LineStart(above), End: text.LineStart(g.last + 1)}
		repl := moved + "\n" + aboveText + "\n"
		if g.last+1 >= text.LineCount() {
			r.End = text.Len()
			repl = moved + "\n" + aboveText
			// A delimiter needs its newline back when it becomes the
			// last line.
			if _, ok := ix.DelimiterAt(text.LineStart(g.first) - 1); ok {
				repl += "\n"
			}
		}
		edits = append(edits, buffer.NewEdit(r, repl))
	}

	moved := s.sel.Map(func(sel cursor.Selection) cursor.Selection {
		line := text.LineAt(sel.Start())
		for _, g := range groups {
			if line >= g.first && line <= g.last {
				shift := len(text.LineText(g.first-1)) + 1
				return cursor.NewSelection(sel.Anchor-shift, sel.Head-shift)
			}
		}
		return sel
	})

	_, err := s.Apply(document.NewTransaction("move line up", edits...).WithSelection(moved))
	return err == nil, err
}

// FormatBlock pretty-prints the JSON block holding the primary cursor.
// The delimiter and the content's trailing newline are left as they are.
func (s *Session) FormatBlock() (enforce.Verdict, error) {
	ix := s.snap.Index()
	b := s.cursorBlock()
	content := ix.Content(b.Index)
	if b.Language != lang.JSON {
		return enforce.Verdict{}, ErrNotJSON
	}

	formatted, err := FormatJSON(content, s.indentUnit)
	if err != nil {
		return enforce.Verdict{}, err
	}
	if formatted == content {
		return enforce.Verdict{}, nil
	}

	offset := min(s.sel.Primary().Head-b.Content.Start, len(formatted))
	tx := document.NewTransaction("format block", buffer.NewEdit(b.Content, formatted)).
		WithSelection(cursor.NewSetAt(b.Content.Start + max(offset, 0)))
	return s.Apply(tx)
}
