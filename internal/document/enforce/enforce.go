package enforce

import (
	"fmt"

	"github.com/dshills/blockpad/internal/document"
	"github.com/dshills/blockpad/internal/document/delim"
	"github.com/dshills/blockpad/internal/document/index"
	"github.com/dshills/blockpad/internal/engine/buffer"
)

// Action is the outcome of filtering a transaction.
type Action int

// Filter outcomes.
const (
	Accepted Action = iota
	Rewritten
	Rejected
)

// String returns the action name.
func (a Action) String() string {
	switch a {
	case Accepted:
		return "accepted"
	case Rewritten:
		return "rewritten"
	case Rejected:
		return "rejected"
	default:
		return fmt.Sprintf("Action(%d)", int(a))
	}
}

// Verdict records what the enforcer did to a transaction.
type Verdict struct {
	Action  Action
	Reasons []string
}

func (v *Verdict) rewrite(format string, args ...any) {
	if v.Action == Accepted {
		v.Action = Rewritten
	}
	v.Reasons = append(v.Reasons, fmt.Sprintf(format, args...))
}

func (v *Verdict) reject(format string, args ...any) {
	v.Action = Rejected
	v.Reasons = append(v.Reasons, fmt.Sprintf(format, args...))
}

// String summarizes the verdict for logs.
func (v Verdict) String() string {
	if len(v.Reasons) == 0 {
		return v.Action.String()
	}
	return fmt.Sprintf("%s: %v", v.Action, v.Reasons)
}

// Filter checks tx against the structural invariants of ix and returns
// the transaction that may be applied. A rejected transaction comes back
// with no edits and no selection; the caller applies nothing.
//
// Rules, in order:
//   - edits must be valid for the document; otherwise the transaction is
//     rejected
//   - edits touching the first delimiter reject the transaction unless it
//     is the initialization transaction, or a language or history change
//     replacing the whole first delimiter with another delimiter
//   - user and language edits strictly inside a delimiter are dropped;
//     edits partially overlapping a delimiter grow to cover all of it,
//     and edits that overlap after growing are merged
//
// Selections are clamped after the transaction is applied, see Clamp.
func Filter(ix *index.Index, tx document.Transaction) (document.Transaction, Verdict) {
	var v Verdict
	out := tx
	out.Edits = nil

	edits := make([]buffer.Edit, 0, len(tx.Edits))
	for _, e := range tx.Edits {
		if !e.IsNoOp() {
			edits = append(edits, e)
		}
	}
	buffer.SortEdits(edits)
	if err := buffer.ValidateEdits(edits, len(ix.Text())); err != nil {
		v.reject("invalid edits: %v", err)
		return document.Transaction{Name: tx.Name, Origin: tx.Origin}, v
	}

	if tx.Origin == document.OriginInit {
		out.Edits = edits
		return out, v
	}

	first := ix.First()
	if !first.Implicit {
		for _, e := range edits {
			if e.Range.Start >= first.Delimiter.End {
				continue
			}
			if wholeDelimiterSwap(tx.Origin, e, first.Delimiter) {
				continue
			}
			v.reject("edit %v touches the first delimiter", e)
			return document.Transaction{Name: tx.Name, Origin: tx.Origin}, v
		}
	}

	if tx.Origin == document.OriginHistory {
		out.Edits = edits
		return out, v
	}

	out.Edits = atomize(ix, edits, &v)
	return out, v
}

// wholeDelimiterSwap reports whether e replaces exactly d with another
// well-formed delimiter, which only language and history changes may do.
func wholeDelimiterSwap(origin document.Origin, e buffer.Edit, d buffer.Range) bool {
	if origin != document.OriginLanguage && origin != document.OriginHistory {
		return false
	}
	return e.Range == d && delim.IsDelimiter(e.NewText)
}

// atomize drops edits strictly inside a delimiter and grows edits that
// partially overlap one.
func atomize(ix *index.Index, edits []buffer.Edit, v *Verdict) []buffer.Edit {
	delims := ix.Delimiters()
	out := make([]buffer.Edit, 0, len(edits))

	for _, e := range edits {
		keep := true
		for _, d := range delims {
			if d.Start >= e.Range.End {
				break
			}
			switch {
			case e.Range.Start > d.Start && e.Range.End < d.End:
				v.rewrite("dropped %v inside delimiter %v", e, d)
				keep = false
			case e.Range.Overlaps(d) && !e.Range.ContainsRange(d):
				grown := e.Range.Union(d)
				v.rewrite("expanded %v to delimiter %v", e, grown)
				e.Range = grown
			}
			if !keep {
				break
			}
		}
		if keep {
			out = append(out, e)
		}
	}
	buffer.SortEdits(out)
	return mergeOverlapping(out, v)
}

// mergeOverlapping joins ascending edits whose ranges overlap.
func mergeOverlapping(edits []buffer.Edit, v *Verdict) []buffer.Edit {
	if len(edits) <= 1 {
		return edits
	}
	merged := edits[:1]
	for _, e := range edits[1:] {
		last := &merged[len(merged)-1]
		if e.Range.Start < last.Range.End {
			v.rewrite("merged %v into %v", e, *last)
			last.Range = last.Range.Union(e.Range)
			last.NewText += e.NewText
			continue
		}
		merged = append(merged, e)
	}
	return merged
}
