// Package history provides undo/redo for the block editor.
//
// Every transaction the editor applies is recorded as a Step: the edits
// that were applied plus their inverse, computed against the text the
// edits were applied to. Steps recorded between BeginGroup and EndGroup
// collapse into one Entry so that a compound command undoes as a unit.
//
// History never touches the document itself. Undo and Redo hand back the
// Entry; the caller applies UndoEdits or RedoEdits through its normal
// transaction pipeline and restores the recorded selections:
//
//	h := history.New(0)
//	h.Record("insert", history.NewStep(text, edits), before, after)
//
//	entry, err := h.Undo()
//	for _, edits := range entry.UndoEdits() {
//	    // apply edits
//	}
package history
