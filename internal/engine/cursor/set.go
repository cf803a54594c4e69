package cursor

import (
	"slices"
	"sort"

	"github.com/dshills/blockpad/internal/engine/buffer"
)

// Set is an immutable collection of selections with one primary.
// Selections are kept sorted by position; overlapping selections are
// merged, and touching empty cursors collapse into one.
type Set struct {
	sels    []Selection
	primary int
}

// NewSet creates a set from a primary selection and optional secondaries.
func NewSet(primary Selection, others ...Selection) Set {
	sels := make([]Selection, 0, len(others)+1)
	sels = append(sels, primary)
	sels = append(sels, others...)
	return normalize(sels, 0)
}

// NewSetAt creates a set holding a single cursor at offset.
func NewSetAt(offset ByteOffset) Set {
	return Set{sels: []Selection{Point(offset)}}
}

// Primary returns the primary selection.
func (s Set) Primary() Selection {
	if len(s.sels) == 0 {
		return Selection{}
	}
	return s.sels[s.primary]
}

// PrimaryIndex returns the index of the primary selection in All().
func (s Set) PrimaryIndex() int {
	return s.primary
}

// All returns a copy of all selections in position order.
func (s Set) All() []Selection {
	if len(s.sels) == 0 {
		return []Selection{{}}
	}
	return slices.Clone(s.sels)
}

// Len returns the number of selections.
func (s Set) Len() int {
	return max(len(s.sels), 1)
}

// Ranges returns the range of every selection.
func (s Set) Ranges() []Range {
	all := s.All()
	out := make([]Range, len(all))
	for i, sel := range all {
		out[i] = sel.Range()
	}
	return out
}

// Map returns a new set with f applied to every selection.
func (s Set) Map(f func(Selection) Selection) Set {
	all := s.All()
	for i := range all {
		all[i] = f(all[i])
	}
	return normalize(all, s.primary)
}

// MapEdits maps every selection through ascending edits.
func (s Set) MapEdits(edits []buffer.Edit) Set {
	return s.Map(func(sel Selection) Selection {
		return sel.MapEdits(edits)
	})
}

// Equals returns true if both sets hold the same selections and primary.
func (s Set) Equals(other Set) bool {
	return s.PrimaryIndex() == other.PrimaryIndex() && slices.Equal(s.All(), other.All())
}

// normalize sorts selections and merges overlapping ones, tracking where
// the primary selection ends up.
func normalize(sels []Selection, primary int) Set {
	if len(sels) <= 1 {
		return Set{sels: sels}
	}

	type entry struct {
		sel     Selection
		primary bool
	}
	entries := make([]entry, len(sels))
	for i, sel := range sels {
		entries[i] = entry{sel: sel, primary: i == primary}
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].sel.Start() < entries[j].sel.Start()
	})

	out := Set{sels: make([]Selection, 0, len(entries))}
	for _, e := range entries {
		n := len(out.sels)
		if n > 0 {
			last := out.sels[n-1]
			if e.sel.Start() < last.End() || (e.sel.Start() == last.End() && (e.sel.IsEmpty() || last.IsEmpty())) {
				merged := last.Merge(e.sel)
				switch {
				case last.SameRange(merged):
					merged = last
				case e.sel.SameRange(merged):
					merged = e.sel
				}
				out.sels[n-1] = merged
				if e.primary {
					out.primary = n - 1
				}
				continue
			}
		}
		if e.primary {
			out.primary = n
		}
		out.sels = append(out.sels, e.sel)
	}
	return out
}
