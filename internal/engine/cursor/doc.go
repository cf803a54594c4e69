// Package cursor provides selection management for block editing.
//
// Selections use an anchor/head model where:
//   - Anchor: The position where the selection started
//   - Head: The current cursor position (where typing would occur)
//
// When Anchor == Head, the selection represents just a cursor with no
// selected text.
//
// Set holds one primary selection plus secondary ones. Sets are immutable
// values so that a proposed transaction can carry the selection it wants
// without aliasing the session's current state:
//
//	set := cursor.NewSet(cursor.Point(10), cursor.NewSelection(20, 25))
//	set = set.MapEdits([]buffer.Edit{buffer.NewInsert(0, "abc")})
//	// set.Primary() == Cursor(13)
package cursor
