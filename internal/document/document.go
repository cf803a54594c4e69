package document

import (
	"fmt"
	"slices"

	"github.com/dshills/blockpad/internal/document/grammar"
	"github.com/dshills/blockpad/internal/document/index"
	"github.com/dshills/blockpad/internal/engine/buffer"
	"github.com/dshills/blockpad/internal/engine/cursor"
)

// Origin tells the enforcer who proposed a transaction.
type Origin int

// Transaction origins.
const (
	// OriginUser is any edit typed or commanded by the user.
	OriginUser Origin = iota
	// OriginInit is the one-time seeding of a new document.
	OriginInit
	// OriginLanguage rewrites a delimiter tag, explicitly or from detection.
	OriginLanguage
	// OriginHistory replays an undo or redo step.
	OriginHistory
)

// String returns the origin name.
func (o Origin) String() string {
	switch o {
	case OriginUser:
		return "user"
	case OriginInit:
		return "init"
	case OriginLanguage:
		return "language"
	case OriginHistory:
		return "history"
	default:
		return fmt.Sprintf("Origin(%d)", int(o))
	}
}

// Transaction is a proposed set of text replacements plus an optional
// proposed selection. Edits are ascending and non-overlapping, in the
// coordinates of the snapshot the transaction is applied to. When
// Selection is nil the current selection is mapped through the edits.
type Transaction struct {
	Name      string
	Origin    Origin
	Edits     []buffer.Edit
	Selection *cursor.Set
}

// NewTransaction creates a user transaction.
func NewTransaction(name string, edits ...buffer.Edit) Transaction {
	return Transaction{Name: name, Origin: OriginUser, Edits: edits}
}

// WithSelection returns a copy of tx proposing sel.
func (tx Transaction) WithSelection(sel cursor.Set) Transaction {
	tx.Selection = &sel
	return tx
}

// WithOrigin returns a copy of tx with origin o.
func (tx Transaction) WithOrigin(o Origin) Transaction {
	tx.Origin = o
	return tx
}

// IsEmpty reports whether tx changes neither text nor selection.
func (tx Transaction) IsEmpty() bool {
	return tx.Selection == nil && !slices.ContainsFunc(tx.Edits, func(e buffer.Edit) bool {
		return !e.IsNoOp()
	})
}

// Snapshot is an immutable document state: text, parse tree and block
// index. Every applied transaction produces a new snapshot with the next
// generation number.
type Snapshot struct {
	text       buffer.Text
	tree       *grammar.Tree
	index      *index.Index
	generation uint64
}

// New parses text into a generation zero snapshot.
func New(text string) *Snapshot {
	tree := grammar.Parse(text)
	return &Snapshot{
		text:  buffer.NewText(text),
		tree:  tree,
		index: index.Build(text, tree),
	}
}

// Text returns the raw document text.
func (s *Snapshot) Text() string {
	return s.text.String()
}

// Lines returns the text with its line index.
func (s *Snapshot) Lines() buffer.Text {
	return s.text
}

// Len returns the document length in bytes.
func (s *Snapshot) Len() int {
	return s.text.Len()
}

// Tree returns the outer parse tree.
func (s *Snapshot) Tree() *grammar.Tree {
	return s.tree
}

// Index returns the block index.
func (s *Snapshot) Index() *index.Index {
	return s.index
}

// Generation returns the snapshot's generation counter.
func (s *Snapshot) Generation() uint64 {
	return s.generation
}

// Apply returns the snapshot produced by edits. The parse tree is patched
// incrementally over the envelope of the edits.
func (s *Snapshot) Apply(edits []buffer.Edit) (*Snapshot, error) {
	next, err := s.text.Apply(edits)
	if err != nil {
		return nil, fmt.Errorf("apply transaction: %w", err)
	}
	tree := s.tree
	if ch, ok := grammar.Envelope(edits); ok {
		tree = grammar.Reparse(s.tree, next.String(), ch)
	}
	return &Snapshot{
		text:       next,
		tree:       tree,
		index:      index.Build(next.String(), tree),
		generation: s.generation + 1,
	}, nil
}
