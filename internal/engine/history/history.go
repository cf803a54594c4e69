package history

import (
	"errors"
	"slices"
	"sync"
	"time"

	"github.com/dshills/blockpad/internal/engine/buffer"
	"github.com/dshills/blockpad/internal/engine/cursor"
)

// Common errors for history operations.
var (
	ErrNothingToUndo = errors.New("nothing to undo")
	ErrNothingToRedo = errors.New("nothing to redo")
)

// DefaultMaxEntries bounds the undo stack when no limit is given.
const DefaultMaxEntries = 1000

// Step is one applied edit set together with its inverse.
// Edits are in the coordinates of the text before the step; Inverse is in
// the coordinates of the text after it.
type Step struct {
	Edits   []buffer.Edit
	Inverse []buffer.Edit
}

// NewStep records edits applied to before.
func NewStep(before string, edits []buffer.Edit) Step {
	return Step{
		Edits:   slices.Clone(edits),
		Inverse: buffer.InvertEdits(before, edits),
	}
}

// Reverse returns the step that undoes s as a forward step.
func (s Step) Reverse() Step {
	return Step{Edits: s.Inverse, Inverse: s.Edits}
}

// Entry is one undo unit: one or more steps applied in order.
type Entry struct {
	Name   string
	Steps  []Step
	Before cursor.Set // selections before the first step
	After  cursor.Set // selections after the last step

	timestamp time.Time
}

// Timestamp returns when the entry was recorded.
func (e Entry) Timestamp() time.Time {
	return e.timestamp
}

// UndoEdits returns the edit sets that revert the entry, in the order they
// must be applied.
func (e Entry) UndoEdits() [][]buffer.Edit {
	out := make([][]buffer.Edit, 0, len(e.Steps))
	for i := len(e.Steps) - 1; i >= 0; i-- {
		out = append(out, e.Steps[i].Inverse)
	}
	return out
}

// RedoEdits returns the edit sets that reapply the entry, in order.
func (e Entry) RedoEdits() [][]buffer.Edit {
	out := make([][]buffer.Edit, 0, len(e.Steps))
	for _, s := range e.Steps {
		out = append(out, s.Edits)
	}
	return out
}

// History manages undo/redo stacks of entries.
type History struct {
	mu sync.Mutex

	undoStack []Entry
	redoStack []Entry

	// Grouping state
	grouping bool
	group    Entry

	maxEntries int
}

// New creates a history bounded to maxEntries undo units.
func New(maxEntries int) *History {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	return &History{maxEntries: maxEntries}
}

// Record adds an applied step to the undo stack and clears the redo stack.
// While a group is open the step joins the group instead.
func (h *History) Record(name string, step Step, before, after cursor.Set) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.grouping {
		if len(h.group.Steps) == 0 {
			h.group.Before = before
		}
		h.group.Steps = append(h.group.Steps, step)
		h.group.After = after
		return
	}

	h.pushLocked(Entry{Name: name, Steps: []Step{step}, Before: before, After: after})
}

// Amend appends a step to the most recent undo entry so that undoing the
// entry also reverts the step. With an empty undo stack the step is not
// recorded. Redo entries are kept: the most recently undone entry gets
// the reverse of step prepended, so redoing it first returns the text to
// the state it was recorded against.
func (h *History) Amend(step Step, after cursor.Set) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if n := len(h.redoStack); n > 0 {
		top := &h.redoStack[n-1]
		top.Steps = append([]Step{step.Reverse()}, top.Steps...)
	}
	if h.grouping {
		h.group.Steps = append(h.group.Steps, step)
		h.group.After = after
		return
	}
	if len(h.undoStack) == 0 {
		return
	}
	top := &h.undoStack[len(h.undoStack)-1]
	top.Steps = append(top.Steps, step)
	top.After = after
}

func (h *History) pushLocked(e Entry) {
	e.timestamp = time.Now()
	h.undoStack = append(h.undoStack, e)
	h.redoStack = nil

	if excess := len(h.undoStack) - h.maxEntries; excess > 0 {
		h.undoStack = h.undoStack[excess:]
	}
}

// Undo pops the most recent entry and moves it to the redo stack.
// The caller applies Entry.UndoEdits and restores Entry.Before.
func (h *History) Undo() (Entry, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(h.undoStack) == 0 {
		return Entry{}, ErrNothingToUndo
	}
	e := h.undoStack[len(h.undoStack)-1]
	h.undoStack = h.undoStack[:len(h.undoStack)-1]
	h.redoStack = append(h.redoStack, e)
	return e, nil
}

// Redo pops the most recently undone entry and moves it back to the undo
// stack. The caller applies Entry.RedoEdits and restores Entry.After.
func (h *History) Redo() (Entry, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(h.redoStack) == 0 {
		return Entry{}, ErrNothingToRedo
	}
	e := h.redoStack[len(h.redoStack)-1]
	h.redoStack = h.redoStack[:len(h.redoStack)-1]
	h.undoStack = append(h.undoStack, e)
	return e, nil
}

// BeginGroup starts a group. Steps recorded until EndGroup form one undo
// unit. Nested calls are ignored.
func (h *History) BeginGroup(name string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.grouping {
		return
	}
	h.grouping = true
	h.group = Entry{Name: name}
}

// EndGroup closes the open group and pushes it if it recorded anything.
func (h *History) EndGroup() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if !h.grouping {
		return
	}
	h.grouping = false
	if len(h.group.Steps) > 0 {
		h.pushLocked(h.group)
	}
	h.group = Entry{}
}

// CanUndo returns true if undo is available.
func (h *History) CanUndo() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.undoStack) > 0
}

// CanRedo returns true if redo is available.
func (h *History) CanRedo() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.redoStack) > 0
}

// UndoCount returns the number of undo entries available.
func (h *History) UndoCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.undoStack)
}

// Clear removes all undo/redo history.
func (h *History) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.undoStack = nil
	h.redoStack = nil
	h.grouping = false
	h.group = Entry{}
}
