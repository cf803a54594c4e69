package syntax

import (
	"testing"

	"github.com/dshills/blockpad/internal/document"
	"github.com/dshills/blockpad/internal/engine/buffer"
	"github.com/dshills/blockpad/internal/lang"
	"github.com/dshills/blockpad/internal/syntax/highlight"
)

func TestRegistryGet(t *testing.T) {
	reg := NewRegistry()

	tests := []struct {
		name  string
		l     lang.Language
		want  lang.Language
		color bool
	}{
		{"plain", lang.Plain, lang.Plain, false},
		{"math", lang.Math, lang.Math, true},
		{"json", lang.JSON, lang.JSON, true},
		{"python", lang.Python, lang.Python, true},
		{"out of range", lang.Language(-3), lang.Plain, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := reg.Get(tt.l)
			if g.Language() != tt.want {
				t.Errorf("Language() = %v, want %v", g.Language(), tt.want)
			}
			hasTokens := len(g.Highlight("x = 1 # 2")) > 0
			if hasTokens != tt.color {
				t.Errorf("highlighted = %v, want %v", hasTokens, tt.color)
			}
		})
	}

	if reg.Get(lang.Go) != reg.Get(lang.Go) {
		t.Error("grammars should be built once")
	}
}

func TestEveryRegisteredLanguageLoads(t *testing.T) {
	reg := NewRegistry()
	var failed []lang.Language
	reg.OnFallback(func(l lang.Language, err error) {
		failed = append(failed, l)
	})
	for _, l := range lang.All() {
		reg.Get(l)
	}
	if len(failed) > 0 {
		t.Errorf("languages without a lexer: %v", failed)
	}
}

func TestBracketFolds(t *testing.T) {
	src := "{\n  \"a\": [1,\n    2],\n  \"s\": \"{\\n\"\n}"
	g := NewRegistry().Get(lang.JSON)
	folds := g.Folds(src)

	if len(folds) != 2 {
		t.Fatalf("Folds() = %v, want 2 folds", folds)
	}
	if folds[0] != buffer.NewRange(1, len(src)-1) {
		t.Errorf("outer fold = %v, want %v", folds[0], buffer.NewRange(1, len(src)-1))
	}
	open := 10
	if src[open-1] != '[' || folds[1].Start != open {
		t.Errorf("inner fold = %v, want start %d", folds[1], open)
	}
}

func TestBracketFoldsSingleLine(t *testing.T) {
	g := NewRegistry().Get(lang.Go)
	if folds := g.Folds("func f() { return }"); len(folds) != 0 {
		t.Errorf("single-line brackets folded: %v", folds)
	}
}

func TestIndentFolds(t *testing.T) {
	src := "def f():\n    x = 1\n\n    return x\ny = 2\n"
	folds := indentFolds(src)
	if len(folds) != 1 {
		t.Fatalf("indentFolds() = %v, want 1 fold", folds)
	}
	want := buffer.NewRange(len("def f():"), len("def f():\n    x = 1\n\n    return x"))
	if folds[0] != want {
		t.Errorf("fold = %v, want %v", folds[0], want)
	}
}

func TestHeadingFolds(t *testing.T) {
	src := "# A\ntext\n## B\nmore\n\n# C\n```\n# not a heading\n```\n"
	folds := headingFolds(src)

	b := buffer.NewText(src)
	want := []buffer.Range{
		buffer.NewRange(b.LineEnd(0), b.LineEnd(3)), // # A through "more"
		buffer.NewRange(b.LineEnd(2), b.LineEnd(3)), // ## B
		buffer.NewRange(b.LineEnd(5), b.LineEnd(8)), // # C through the fence
	}
	if len(folds) != len(want) {
		t.Fatalf("headingFolds() = %v, want %v", folds, want)
	}
	for i := range want {
		if folds[i] != want[i] {
			t.Errorf("fold %d = %v, want %v", i, folds[i], want[i])
		}
	}
}

func TestIndent(t *testing.T) {
	reg := NewRegistry()
	tests := []struct {
		name string
		l    lang.Language
		src  string
		want string
	}{
		{"python opener", lang.Python, "    if x:", "        "},
		{"python plain line", lang.Python, "    x = 1", "    "},
		{"brace", lang.Go, "func f() {", "\t"},
		{"trailing space after brace", lang.JavaScript, "  if (a) {  ", "  \t"},
		{"plain keeps indent", lang.Plain, "\t\tnote {", "\t\t"},
		{"empty", lang.Go, "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			unit := "    "
			if tt.l != lang.Python {
				unit = "\t"
			}
			got := reg.Get(tt.l).Indent(tt.src, len(tt.src), unit)
			if got != tt.want {
				t.Errorf("Indent(%q) = %q, want %q", tt.src, got, tt.want)
			}
		})
	}
}

const dispatchSample = "∞∞∞json\n{\"a\": 1}\n∞∞∞python\nx = 1\n∞∞∞text\nhello"

func TestDispatcherRebasesTokens(t *testing.T) {
	snap := document.New(dispatchSample)
	d := NewDispatcher(nil)
	d.Sync(snap.Index())

	if len(d.Results()) != 3 {
		t.Fatalf("Results() = %d, want 3", len(d.Results()))
	}

	for _, res := range d.Results() {
		for _, tok := range res.Tokens {
			if !res.Content.ContainsRange(tok.Range) {
				t.Errorf("block %d token %s outside content %s", res.Block, tok.Range, res.Content)
			}
		}
	}

	py, _ := d.Block(1)
	if !hasNumber(snap.Text(), py, "1") {
		t.Errorf("python number token not found in %v", py.Tokens)
	}

	plain, _ := d.Block(2)
	if len(plain.Tokens) != 0 {
		t.Errorf("plain block has tokens: %v", plain.Tokens)
	}
}

func TestDispatcherInvalidatesOnlyChangedBlocks(t *testing.T) {
	snap := document.New(dispatchSample)
	d := NewDispatcher(nil)
	d.Sync(snap.Index())

	if got := d.Stats(); got.Parses != 3 || got.Hits != 0 {
		t.Fatalf("initial stats = %+v, want 3 parses", got)
	}

	// Edit the plain block only; the JSON and Python blocks are reused
	// even though nothing before them moved.
	next, err := snap.Apply([]buffer.Edit{buffer.NewInsert(snap.Len(), " world")})
	if err != nil {
		t.Fatal(err)
	}
	d.Sync(next.Index())
	if got := d.Stats(); got.Parses != 4 || got.Hits != 2 {
		t.Errorf("after content edit stats = %+v, want 4 parses 2 hits", got)
	}

	// Inserting text before the Python block shifts it without changing
	// its content, so its tokens are rebased rather than re-parsed.
	shifted, err := next.Apply([]buffer.Edit{buffer.NewInsert(len("∞∞∞json\n"), " ")})
	if err != nil {
		t.Fatal(err)
	}
	d.Sync(shifted.Index())
	if got := d.Stats(); got.Parses != 5 || got.Hits != 4 {
		t.Errorf("after shift stats = %+v, want 5 parses 4 hits", got)
	}
	py, _ := d.Block(1)
	if !hasNumber(shifted.Text(), py, "1") {
		t.Error("python tokens were not rebased to the shifted content")
	}

	// Changing only the tag re-dispatches that block.
	tagStart := len("∞∞∞json\n {\"a\": 1}\n∞∞∞")
	retagged, err := shifted.Apply([]buffer.Edit{buffer.NewEdit(buffer.NewRange(tagStart, tagStart+len("python")), "text")})
	if err != nil {
		t.Fatal(err)
	}
	d.Sync(retagged.Index())
	if got := d.Stats(); got.Parses != 6 || got.Hits != 6 {
		t.Errorf("after retag stats = %+v, want 6 parses 6 hits", got)
	}
	if res, _ := d.Block(1); res.Language != lang.Plain || len(res.Tokens) != 0 {
		t.Errorf("retagged block = %v with %d tokens, want plain and none", res.Language, len(res.Tokens))
	}
}

func hasNumber(text string, res Result, want string) bool {
	for _, tok := range res.Tokens {
		if tok.Type == highlight.TokenNumber && text[tok.Range.Start:tok.Range.End] == want {
			return true
		}
	}
	return false
}

func TestDispatcherTokensInRange(t *testing.T) {
	snap := document.New(dispatchSample)
	d := NewDispatcher(nil)
	d.Sync(snap.Index())

	b := snap.Index().Block(1)
	toks := d.Tokens(b.Content)
	if len(toks) == 0 {
		t.Fatal("no tokens in python block")
	}
	for _, tok := range toks {
		if !tok.Range.Overlaps(b.Content) {
			t.Errorf("token %s outside %s", tok.Range, b.Content)
		}
	}
	if got := d.Tokens(snap.Index().Block(0).Delimiter); len(got) != 0 {
		t.Errorf("tokens in delimiter = %v", got)
	}
}

func TestDispatcherFoldsAndIndent(t *testing.T) {
	src := "∞∞∞json\n{\n  \"a\": 1\n}\n∞∞∞python\nif x:"
	snap := document.New(src)
	d := NewDispatcher(nil)
	d.Sync(snap.Index())

	folds := d.Folds()
	jsonContent := snap.Index().Block(0).Content
	var inner bool
	for _, f := range folds {
		if !f.IsValid() || f.End > snap.Len() {
			t.Errorf("invalid fold %s", f)
		}
		if f.Start == jsonContent.Start+1 {
			inner = true
		}
	}
	if !inner {
		t.Errorf("bracket fold missing from %v", folds)
	}

	if got := d.Indent(snap.Len(), "    "); got != "    " {
		t.Errorf("Indent at end = %q, want four spaces", got)
	}
	if got := d.Indent(3, "    "); got != "" {
		t.Errorf("Indent inside delimiter = %q, want empty", got)
	}
}
