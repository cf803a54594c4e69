package editor

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dshills/blockpad/internal/detect"
	"github.com/dshills/blockpad/internal/document"
	"github.com/dshills/blockpad/internal/document/delim"
	"github.com/dshills/blockpad/internal/document/enforce"
	"github.com/dshills/blockpad/internal/document/index"
	"github.com/dshills/blockpad/internal/engine/buffer"
	"github.com/dshills/blockpad/internal/engine/cursor"
	"github.com/dshills/blockpad/internal/engine/history"
	"github.com/dshills/blockpad/internal/lang"
	"github.com/dshills/blockpad/internal/syntax"
	"github.com/dshills/blockpad/internal/syntax/highlight"
)

// recordMode selects how an applied transaction enters the history.
type recordMode int

const (
	recordEntry recordMode = iota // new undo entry
	recordAmend                   // joins the most recent entry
	recordNone                    // not recorded
)

// pendingDetection tracks a submitted detection request.
type pendingDetection struct {
	delim      buffer.Range // mapped through every later edit
	content    string
	generation uint64
	sent       time.Time
}

// Session is one open block document.
type Session struct {
	id   string
	snap *document.Snapshot
	sel  cursor.Set

	history    *history.History
	registry   *syntax.Registry
	dispatcher *syntax.Dispatcher
	detector   *detect.Detector
	policy     detect.Policy
	logger     Logger

	indentUnit string
	maxUndo    int

	nextID    uint64
	expiry    time.Duration
	pending   map[uint64]pendingDetection
	submitted map[buffer.ByteOffset]string // delimiter start -> content last submitted

	lastVerdict enforce.Verdict
}

// New opens a session on text. Line endings are normalized to LF. A text
// that does not start with a delimiter gets the plain auto delimiter
// inserted by the initialization transaction, which is not undoable.
func New(text string, opts ...Option) *Session {
	s := &Session{
		id:         uuid.NewString(),
		indentUnit: DefaultIndentUnit,
		maxUndo:    DefaultMaxUndoEntries,
		policy:     detect.DefaultPolicy(),
		logger:     nopLogger{},
		expiry:     DefaultDetectionExpiry,
		pending:    make(map[uint64]pendingDetection),
		submitted:  make(map[buffer.ByteOffset]string),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.history = history.New(s.maxUndo)
	s.dispatcher = syntax.NewDispatcher(s.registry)
	s.snap = document.New(buffer.NormalizeNewlines(text))
	s.sel = cursor.NewSetAt(0)

	if s.snap.Index().First().Implicit {
		seed := document.Transaction{
			Name:   "init",
			Origin: document.OriginInit,
			Edits:  []buffer.Edit{buffer.NewInsert(0, delim.Format(lang.Plain, true))},
		}
		if _, err := s.apply(seed, recordNone); err != nil {
			s.logger.Warn("seed document: %v", err)
		}
	} else {
		s.dispatcher.Sync(s.snap.Index())
		s.RequestDetections()
	}
	s.sel = enforce.Clamp(s.snap.Index(), s.sel, s.sel)
	return s
}

// ID returns the session identifier carried by detection requests.
func (s *Session) ID() string {
	return s.id
}

// Snapshot returns the current immutable document state.
func (s *Session) Snapshot() *document.Snapshot {
	return s.snap
}

// Text returns the current document text.
func (s *Session) Text() string {
	return s.snap.Text()
}

// Index returns the current block index.
func (s *Session) Index() *index.Index {
	return s.snap.Index()
}

// Selection returns the current selections.
func (s *Session) Selection() cursor.Set {
	return s.sel
}

// Dispatcher returns the inner-grammar dispatcher, synced to the current
// snapshot.
func (s *Session) Dispatcher() *syntax.Dispatcher {
	return s.dispatcher
}

// Tokens returns the highlight tokens overlapping r.
func (s *Session) Tokens(r buffer.Range) []highlight.Token {
	return s.dispatcher.Tokens(r)
}

// Folds returns every fold range of the document.
func (s *Session) Folds() []buffer.Range {
	return s.dispatcher.Folds()
}

// LastVerdict returns what the enforcer did to the last transaction.
func (s *Session) LastVerdict() enforce.Verdict {
	return s.lastVerdict
}

// CanUndo reports whether an undo entry is available.
func (s *Session) CanUndo() bool {
	return s.history.CanUndo()
}

// CanRedo reports whether a redo entry is available.
func (s *Session) CanRedo() bool {
	return s.history.CanRedo()
}

// Apply filters tx against the current document, applies what survives
// and records it as one undo entry. A rejected transaction changes
// nothing and is reported through the verdict, not as an error.
func (s *Session) Apply(tx document.Transaction) (enforce.Verdict, error) {
	return s.apply(tx, recordEntry)
}

// SetSelection replaces the selections, clamped to valid positions.
func (s *Session) SetSelection(set cursor.Set) {
	_, _ = s.apply(document.Transaction{Name: "select"}.WithSelection(set), recordNone)
}

func (s *Session) apply(tx document.Transaction, mode recordMode) (enforce.Verdict, error) {
	ix := s.snap.Index()
	filtered, v := enforce.Filter(ix, tx)
	s.lastVerdict = v

	switch v.Action {
	case enforce.Rejected:
		s.logger.Debug("%s transaction %q: %s", tx.Origin, tx.Name, v)
		return v, nil
	case enforce.Rewritten:
		s.logger.Debug("%s transaction %q: %s", tx.Origin, tx.Name, v)
	}

	prev := s.sel
	if len(filtered.Edits) == 0 {
		if filtered.Selection != nil {
			s.sel = enforce.Clamp(ix, *filtered.Selection, prev)
		}
		return v, nil
	}

	before := s.snap.Text()
	next, err := s.snap.Apply(filtered.Edits)
	if err != nil {
		return v, fmt.Errorf("%s: %w", tx.Name, err)
	}

	// A proposed selection is only meaningful for the edits it was
	// computed against.
	mapped := prev.MapEdits(filtered.Edits)
	proposed := mapped
	if filtered.Selection != nil && v.Action == enforce.Accepted {
		proposed = *filtered.Selection
	}

	s.snap = next
	s.sel = enforce.Clamp(next.Index(), proposed, mapped)

	step := history.NewStep(before, filtered.Edits)
	switch mode {
	case recordEntry:
		s.history.Record(tx.Name, step, prev, s.sel)
	case recordAmend:
		s.history.Amend(step, s.sel)
	}

	s.remapDetections(ix, filtered.Edits)
	s.dispatcher.Sync(next.Index())
	s.RequestDetections()
	return v, nil
}

// Undo reverts the most recent undo entry.
func (s *Session) Undo() error {
	e, err := s.history.Undo()
	if err != nil {
		return err
	}
	if err := s.replay("undo", e.UndoEdits()); err != nil {
		return err
	}
	s.sel = enforce.Clamp(s.snap.Index(), e.Before, s.sel)
	return nil
}

// Redo reapplies the most recently undone entry.
func (s *Session) Redo() error {
	e, err := s.history.Redo()
	if err != nil {
		return err
	}
	if err := s.replay("redo", e.RedoEdits()); err != nil {
		return err
	}
	s.sel = enforce.Clamp(s.snap.Index(), e.After, s.sel)
	return nil
}

func (s *Session) replay(name string, steps [][]buffer.Edit) error {
	for _, edits := range steps {
		tx := document.Transaction{Name: name, Origin: document.OriginHistory, Edits: edits}
		v, err := s.apply(tx, recordNone)
		if err != nil {
			return err
		}
		if v.Action == enforce.Rejected {
			s.logger.Warn("%s: %s", name, v)
			return fmt.Errorf("%s: %w", name, ErrReplayRejected)
		}
	}
	return nil
}

// cursorBlock returns the block holding the primary cursor.
func (s *Session) cursorBlock() index.Block {
	ix := s.snap.Index()
	head := s.sel.Primary().Head
	if b, ok := ix.ContentBlockAt(head); ok {
		return b
	}
	return ix.BlockAt(head)
}
