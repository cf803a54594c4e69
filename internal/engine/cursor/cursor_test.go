package cursor

import (
	"testing"

	"github.com/dshills/blockpad/internal/engine/buffer"
)

func TestSelectionBounds(t *testing.T) {
	sel := NewSelection(20, 10)

	if sel.Start() != 10 || sel.End() != 20 {
		t.Errorf("expected [10,20], got [%d,%d]", sel.Start(), sel.End())
	}
	if !sel.IsBackward() {
		t.Error("selection should be backward")
	}
	if sel.Range() != buffer.NewRange(10, 20) {
		t.Errorf("unexpected range %v", sel.Range())
	}
	if !sel.SameRange(NewSelection(10, 20)) {
		t.Error("SameRange should ignore direction")
	}
}

func TestSelectionClamp(t *testing.T) {
	sel := NewSelection(-5, 50).Clamp(30)
	if sel.Anchor != 0 || sel.Head != 30 {
		t.Errorf("unexpected clamp result %v", sel)
	}
}

func TestSelectionMapEdits(t *testing.T) {
	edits := []buffer.Edit{buffer.NewInsert(0, "abc"), buffer.NewDelete(12, 18)}

	tests := []struct {
		name string
		in   Selection
		want Selection
	}{
		{"cursor before deletion", Point(10), Point(13)},
		{"cursor inside deletion", Point(15), Point(15)},
		{"selection across deletion", NewSelection(11, 20), NewSelection(14, 17)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.in.MapEdits(edits); got != tt.want {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestSetNormalizes(t *testing.T) {
	set := NewSet(Point(30), NewSelection(5, 15), NewSelection(10, 20), Point(40))

	all := set.All()
	if len(all) != 3 {
		t.Fatalf("expected 3 selections, got %d: %v", len(all), all)
	}
	if !all[0].SameRangeAs(buffer.NewRange(5, 20)) {
		t.Errorf("expected merged [5,20), got %v", all[0])
	}
	if set.Primary() != Point(30) {
		t.Errorf("primary should stay Cursor(30), got %v", set.Primary())
	}
	if set.PrimaryIndex() != 1 {
		t.Errorf("expected primary index 1, got %d", set.PrimaryIndex())
	}
}

func TestSetMergeKeepsDirection(t *testing.T) {
	set := NewSet(NewSelection(10, 2), Point(10))
	if set.Len() != 1 {
		t.Fatalf("expected 1 selection, got %d", set.Len())
	}
	if set.Primary() != NewSelection(10, 2) {
		t.Errorf("expected backward selection kept, got %v", set.Primary())
	}
}

func TestSetMapEdits(t *testing.T) {
	set := NewSet(Point(10), NewSelection(20, 25))
	set = set.MapEdits([]buffer.Edit{buffer.NewInsert(0, "abc")})

	if set.Primary() != Point(13) {
		t.Errorf("expected Cursor(13), got %v", set.Primary())
	}
	if got := set.All()[1]; got != NewSelection(23, 28) {
		t.Errorf("expected Selection(23→28), got %v", got)
	}
}

func TestZeroSet(t *testing.T) {
	var set Set
	if set.Len() != 1 || set.Primary() != Point(0) {
		t.Errorf("zero set should act as a cursor at 0, got %v", set.All())
	}
	if !set.Equals(NewSetAt(0)) {
		t.Error("zero set should equal NewSetAt(0)")
	}
}
