package enforce

import (
	"math/rand"
	"slices"
	"strings"
	"testing"

	"github.com/dshills/blockpad/internal/document"
	"github.com/dshills/blockpad/internal/document/delim"
	"github.com/dshills/blockpad/internal/engine/buffer"
	"github.com/dshills/blockpad/internal/engine/cursor"
	"github.com/dshills/blockpad/internal/lang"
)

const sample = "∞∞∞text\nhello\nworld\n∞∞∞json\n{\"a\":1}\n∞∞∞python\nx = 1\ny = 2"

// apply filters and applies tx, returning the new snapshot.
func apply(t *testing.T, snap *document.Snapshot, tx document.Transaction) (*document.Snapshot, Verdict) {
	t.Helper()
	out, v := Filter(snap.Index(), tx)
	if v.Action == Rejected {
		if len(out.Edits) != 0 || out.Selection != nil {
			t.Fatalf("rejected transaction still carries changes: %+v", out)
		}
		return snap, v
	}
	next, err := snap.Apply(out.Edits)
	if err != nil {
		t.Fatalf("filtered transaction failed to apply: %v (%v)", err, v)
	}
	return next, v
}

func delimiterTexts(snap *document.Snapshot) []string {
	var out []string
	for _, d := range delim.All(snap.Text()) {
		out = append(out, d.Text())
	}
	return out
}

func TestFilterFirstDelimiter(t *testing.T) {
	snap := document.New(sample)
	firstEnd := snap.Index().FirstDelimiterEnd()

	tests := []struct {
		name   string
		tx     document.Transaction
		action Action
	}{
		{"delete first delimiter", document.NewTransaction("del", buffer.NewDelete(0, firstEnd)), Rejected},
		{"backspace into first delimiter", document.NewTransaction("bs", buffer.NewDelete(firstEnd-1, firstEnd)), Rejected},
		{"insert at start", document.NewTransaction("ins", buffer.NewInsert(0, "x")), Rejected},
		{"type inside tag", document.NewTransaction("ins", buffer.NewInsert(10, "x")), Rejected},
		{"insert at content start", document.NewTransaction("ins", buffer.NewInsert(firstEnd, "x")), Accepted},
		{
			"init may rewrite",
			document.NewTransaction("init", buffer.NewDelete(0, firstEnd)).WithOrigin(document.OriginInit),
			Accepted,
		},
		{
			"language swap",
			document.NewTransaction("lang", buffer.NewEdit(buffer.NewRange(0, firstEnd), delim.Format(lang.Markdown, false))).
				WithOrigin(document.OriginLanguage),
			Accepted,
		},
		{
			"language swap to garbage",
			document.NewTransaction("lang", buffer.NewEdit(buffer.NewRange(0, firstEnd), "nope\n")).
				WithOrigin(document.OriginLanguage),
			Rejected,
		},
		{
			"user swap",
			document.NewTransaction("lang", buffer.NewEdit(buffer.NewRange(0, firstEnd), delim.Format(lang.Go, false))),
			Rejected,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next, v := apply(t, snap, tt.tx)
			if v.Action != tt.action {
				t.Fatalf("expected %v, got %v", tt.action, v)
			}
			if tt.tx.Origin == document.OriginUser {
				if _, ok := delim.MatchAt(next.Text(), 0); !ok {
					t.Error("first delimiter lost")
				}
			}
		})
	}
}

func TestFilterAtomicity(t *testing.T) {
	snap := document.New(sample)
	json := snap.Index().Block(1).Delimiter

	tests := []struct {
		name   string
		edit   buffer.Edit
		want   []buffer.Edit
		action Action
	}{
		{"insert inside", buffer.NewInsert(json.Start+4, "x"), nil, Rewritten},
		{"delete inside", buffer.NewDelete(json.Start+3, json.End-2), nil, Rewritten},
		{"insert before", buffer.NewInsert(json.Start, "x"), []buffer.Edit{buffer.NewInsert(json.Start, "x")}, Accepted},
		{"insert after", buffer.NewInsert(json.End, "x"), []buffer.Edit{buffer.NewInsert(json.End, "x")}, Accepted},
		{
			"backspace over newline",
			buffer.NewDelete(json.End-1, json.End),
			[]buffer.Edit{buffer.NewDelete(json.Start, json.End)},
			Rewritten,
		},
		{
			"delete across start",
			buffer.NewDelete(json.Start-3, json.Start+2),
			[]buffer.Edit{buffer.NewDelete(json.Start-3, json.End)},
			Rewritten,
		},
		{
			"delete whole",
			buffer.NewDelete(json.Start, json.End),
			[]buffer.Edit{buffer.NewDelete(json.Start, json.End)},
			Accepted,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, v := Filter(snap.Index(), document.NewTransaction(tt.name, tt.edit))
			if v.Action != tt.action {
				t.Errorf("expected %v, got %v", tt.action, v)
			}
			if !slices.Equal(out.Edits, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, out.Edits)
			}
		})
	}
}

func TestFilterMergesGrownEdits(t *testing.T) {
	snap := document.New(sample)
	json := snap.Index().Block(1).Delimiter

	tx := document.NewTransaction("multi",
		buffer.NewDelete(json.Start-1, json.Start+1),
		buffer.NewEdit(buffer.NewRange(json.End-1, json.End+1), "Z"),
	)
	out, v := Filter(snap.Index(), tx)
	if v.Action != Rewritten {
		t.Fatalf("expected rewrite, got %v", v)
	}
	want := []buffer.Edit{buffer.NewEdit(buffer.NewRange(json.Start-1, json.End+1), "Z")}
	if !slices.Equal(out.Edits, want) {
		t.Errorf("expected %v, got %v", want, out.Edits)
	}
}

func TestFilterRejectsInvalidEdits(t *testing.T) {
	snap := document.New(sample)
	_, v := Filter(snap.Index(), document.NewTransaction("bad", buffer.NewDelete(20, 10)))
	if v.Action != Rejected {
		t.Errorf("expected rejection, got %v", v)
	}
}

func TestAtomicityProperty(t *testing.T) {
	snap := document.New(sample)
	before := delimiterTexts(snap)
	r := rand.New(rand.NewSource(3))

	for i := 0; i < 500; i++ {
		blk := snap.Index().Block(r.Intn(snap.Index().Len()))
		d := blk.Delimiter
		start := d.Start + 1 + r.Intn(d.Len()-1)
		end := start + r.Intn(d.End-start)
		e := buffer.NewEdit(buffer.NewRange(start, end), strings.Repeat("∞", r.Intn(3)))

		next, _ := apply(t, snap, document.NewTransaction("inside", e))
		if got := delimiterTexts(next); !slices.Equal(got, before) {
			t.Fatalf("edit %v changed delimiters: %q", e, got)
		}
	}
}

func TestFirstDelimiterProperty(t *testing.T) {
	snap := document.New(sample)
	firstEnd := snap.Index().FirstDelimiterEnd()
	r := rand.New(rand.NewSource(5))

	for i := 0; i < 300; i++ {
		start := r.Intn(firstEnd)
		end := start + r.Intn(snap.Len()-start+1)
		e := buffer.NewEdit(buffer.NewRange(start, end), "x")

		next, _ := apply(t, snap, document.NewTransaction("first", e))
		if !strings.HasPrefix(next.Text(), sample[:firstEnd]) {
			t.Fatalf("edit %v altered first delimiter: %q", e, next.Text())
		}
	}
}

func TestClamp(t *testing.T) {
	snap := document.New(sample)
	ix := snap.Index()
	firstEnd := ix.FirstDelimiterEnd()
	json := ix.Block(1).Delimiter

	tests := []struct {
		name string
		next cursor.Selection
		prev cursor.Selection
		want cursor.Selection
	}{
		{"before first", cursor.Point(2), cursor.Point(firstEnd), cursor.Point(firstEnd)},
		{"negative", cursor.NewSelection(-4, 20), cursor.Point(20), cursor.NewSelection(firstEnd, 20)},
		{"into delimiter from before", cursor.Point(json.Start + 3), cursor.Point(json.Start), cursor.Point(json.End)},
		{"into delimiter from after", cursor.Point(json.End - 1), cursor.Point(json.End), cursor.Point(json.Start)},
		{"delimiter start is valid", cursor.Point(json.Start), cursor.Point(json.End), cursor.Point(json.Start)},
		{"past end", cursor.Point(snap.Len() + 5), cursor.Point(0), cursor.Point(snap.Len())},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Clamp(ix, cursor.NewSet(tt.next), cursor.NewSet(tt.prev))
			if got.Primary() != tt.want {
				t.Errorf("expected %v, got %v", tt.want, got.Primary())
			}
			if !IsClamped(ix, got) {
				t.Errorf("%v is not clamped", got.Primary())
			}
		})
	}
}

func TestClampProperty(t *testing.T) {
	snap := document.New(sample)
	r := rand.New(rand.NewSource(9))
	for i := 0; i < 500; i++ {
		next := cursor.NewSet(cursor.NewSelection(r.Intn(snap.Len()+10)-5, r.Intn(snap.Len()+10)-5))
		prev := cursor.NewSet(cursor.Point(r.Intn(snap.Len())))
		got := Clamp(snap.Index(), next, prev)
		for _, sel := range got.All() {
			if sel.Start() < snap.Index().FirstDelimiterEnd() {
				t.Fatalf("selection %v starts before first delimiter end", sel)
			}
		}
		if !IsClamped(snap.Index(), got) {
			t.Fatalf("%v not clamped", got.All())
		}
	}
}

func TestSelectAllTwoLevel(t *testing.T) {
	snap := document.New(sample)
	ix := snap.Index()
	json := ix.Block(1)

	set := cursor.NewSetAt(json.Content.Start + 2)
	set = SelectAll(ix, set)
	if !set.Primary().SameRangeAs(json.Content) {
		t.Fatalf("first select-all should select block content, got %v", set.Primary())
	}

	set = SelectAll(ix, set)
	whole := buffer.NewRange(ix.FirstDelimiterEnd(), snap.Len())
	if !set.Primary().SameRangeAs(whole) {
		t.Errorf("second select-all should select the document, got %v", set.Primary())
	}
}

func TestSelectAllPartialSelection(t *testing.T) {
	snap := document.New(sample)
	ix := snap.Index()
	py := ix.Block(2)

	set := cursor.NewSet(cursor.NewSelection(py.Content.Start, py.Content.Start+3))
	set = SelectAll(ix, set)
	if !set.Primary().SameRangeAs(py.Content) {
		t.Errorf("expected python content, got %v", set.Primary())
	}
}

func TestMoveLineUpGuard(t *testing.T) {
	snap := document.New(sample)
	ix := snap.Index()
	firstEnd := ix.FirstDelimiterEnd()

	tests := []struct {
		name    string
		set     cursor.Set
		blocked bool
	}{
		{"first content line", cursor.NewSetAt(firstEnd + 2), true},
		{"second content line", cursor.NewSetAt(firstEnd + 7), false},
		{"one of many", cursor.NewSet(cursor.Point(snap.Len()), cursor.Point(firstEnd)), true},
		{"later block", cursor.NewSetAt(ix.Block(2).Content.Start), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MoveLineUpBlocked(snap.Lines(), ix, tt.set); got != tt.blocked {
				t.Errorf("expected blocked=%v, got %v", tt.blocked, got)
			}
		})
	}
}
