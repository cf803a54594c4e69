package index

import (
	"testing"

	"github.com/dshills/blockpad/internal/document/grammar"
	"github.com/dshills/blockpad/internal/engine/buffer"
	"github.com/dshills/blockpad/internal/lang"
)

const sample = "∞∞∞text\nhello\n∞∞∞json-a\n{}\n∞∞∞python\nx = 1"

// offsets in sample
const (
	firstEnd   = 14 // end of ∞∞∞text\n
	secondDel  = 20 // start of ∞∞∞json-a\n
	secondEnd  = 36
	thirdDel   = 39
	thirdEnd   = 55
	sampleSize = 60
)

func build(text string) *Index {
	return Build(text, grammar.Parse(text))
}

func TestBuild(t *testing.T) {
	ix := build(sample)
	if len(sample) != sampleSize {
		t.Fatalf("sample length changed: %d", len(sample))
	}
	if ix.Len() != 3 {
		t.Fatalf("expected 3 blocks, got %d", ix.Len())
	}

	want := []Block{
		{Index: 0, Delimiter: buffer.NewRange(0, firstEnd), Content: buffer.NewRange(firstEnd, secondDel), Language: lang.Plain, Tag: "text"},
		{Index: 1, Delimiter: buffer.NewRange(secondDel, secondEnd), Content: buffer.NewRange(secondEnd, thirdDel), Language: lang.JSON, Tag: "json-a", Auto: true},
		{Index: 2, Delimiter: buffer.NewRange(thirdDel, thirdEnd), Content: buffer.NewRange(thirdEnd, sampleSize), Language: lang.Python, Tag: "python"},
	}
	for i, w := range want {
		if got := ix.Block(i); got != w {
			t.Errorf("block %d:\n got %+v\nwant %+v", i, got, w)
		}
	}
	if ix.Content(1) != "{}\n" {
		t.Errorf("unexpected content %q", ix.Content(1))
	}
	if ix.FirstDelimiterEnd() != firstEnd {
		t.Errorf("expected first delimiter end %d, got %d", firstEnd, ix.FirstDelimiterEnd())
	}
}

func TestBlockAt(t *testing.T) {
	ix := build(sample)
	tests := []struct {
		offset buffer.ByteOffset
		block  int
	}{
		{0, 0}, {5, 0}, {firstEnd, 0}, {secondDel - 1, 0},
		{secondDel, 1}, {secondEnd + 1, 1},
		{thirdDel, 2}, {sampleSize, 2}, {sampleSize + 10, 2},
	}
	for _, tt := range tests {
		if got := ix.BlockAt(tt.offset).Index; got != tt.block {
			t.Errorf("BlockAt(%d) = %d, want %d", tt.offset, got, tt.block)
		}
	}
}

func TestContentBlockAt(t *testing.T) {
	ix := build(sample)
	tests := []struct {
		offset buffer.ByteOffset
		block  int
		ok     bool
	}{
		{firstEnd, 0, true},
		{secondDel, 0, true}, // end of first content is inclusive
		{secondDel + 1, 0, false},
		{secondEnd, 1, true},
		{sampleSize, 2, true},
		{3, 0, false},
	}
	for _, tt := range tests {
		b, ok := ix.ContentBlockAt(tt.offset)
		if ok != tt.ok || (ok && b.Index != tt.block) {
			t.Errorf("ContentBlockAt(%d) = (%d, %v), want (%d, %v)", tt.offset, b.Index, ok, tt.block, tt.ok)
		}
	}
}

func TestDelimiterAt(t *testing.T) {
	ix := build(sample)
	if _, ok := ix.DelimiterAt(secondDel); ok {
		t.Error("delimiter start is not strictly inside")
	}
	if r, ok := ix.DelimiterAt(secondDel + 4); !ok || r != buffer.NewRange(secondDel, secondEnd) {
		t.Errorf("unexpected delimiter %v %v", r, ok)
	}
	if _, ok := ix.DelimiterAt(secondEnd); ok {
		t.Error("delimiter end is not strictly inside")
	}
}

func TestDecorations(t *testing.T) {
	d := build(sample).Decorations()

	if len(d.Bands) != 3 || len(d.Markers) != 3 {
		t.Fatalf("expected 3 bands and markers, got %d and %d", len(d.Bands), len(d.Markers))
	}
	for i, b := range d.Bands {
		if b.Parity != i%2 {
			t.Errorf("band %d parity %d", i, b.Parity)
		}
	}
	if d.Markers[0].Kind != FirstBlockMarker {
		t.Error("first marker should be inline")
	}
	for _, m := range d.Markers[1:] {
		if m.Kind != BlockMarker {
			t.Errorf("marker %d should be a block marker", m.Block)
		}
	}
	if m, ok := d.MarkerAt(secondDel); !ok || m.Language != lang.JSON || !m.Auto {
		t.Errorf("unexpected marker %+v", m)
	}
	if b, ok := d.BandAt(secondDel); !ok || b.Block != 0 {
		t.Errorf("expected band 0 at end of first content, got %+v", b)
	}
}

func TestImplicitFirstBlock(t *testing.T) {
	ix := build("loose\n∞∞∞go\nx")
	first := ix.First()
	if !first.Implicit || first.Delimiter != buffer.NewRange(0, 0) {
		t.Fatalf("expected implicit first block, got %+v", first)
	}
	if ix.FirstDelimiterEnd() != 0 {
		t.Errorf("expected 0, got %d", ix.FirstDelimiterEnd())
	}
	d := ix.Decorations()
	if len(d.Markers) != 1 || d.Markers[0].Kind != BlockMarker {
		t.Errorf("implicit block has no marker, got %+v", d.Markers)
	}
}

func TestFoldRange(t *testing.T) {
	ix := build(sample)
	tests := []struct {
		block int
		want  buffer.Range
		ok    bool
	}{
		{0, buffer.NewRange(firstEnd, secondDel-1), true},
		{2, buffer.NewRange(thirdEnd, sampleSize), true},
		{5, buffer.Range{}, false},
	}
	for _, tt := range tests {
		got, ok := ix.FoldRange(tt.block)
		if ok != tt.ok || got != tt.want {
			t.Errorf("FoldRange(%d) = %v %v, want %v %v", tt.block, got, ok, tt.want, tt.ok)
		}
	}

	empty := build("∞∞∞text\n\n∞∞∞go\n")
	if _, ok := empty.FoldRange(0); ok {
		t.Error("newline-only content should not fold")
	}
}
