package render

import (
	"github.com/gdamore/tcell/v2"
	"github.com/rivo/uniseg"

	"github.com/dshills/blockpad/internal/document/index"
	"github.com/dshills/blockpad/internal/engine/buffer"
	"github.com/dshills/blockpad/internal/engine/cursor"
	"github.com/dshills/blockpad/internal/syntax/highlight"
)

// Options configures a Painter.
type Options struct {
	// TabWidth is the number of columns a tab advances to.
	TabWidth int

	// MarkerGlyph is drawn for every block marker.
	MarkerGlyph string

	// AlternateShift is the Lab lightness difference between the two
	// block backgrounds.
	AlternateShift float64

	// Background overrides the theme background when valid.
	Background tcell.Color
}

// DefaultOptions returns the default painter options.
func DefaultOptions() Options {
	return Options{
		TabWidth:       4,
		MarkerGlyph:    "∞",
		AlternateShift: 0.04,
		Background:     tcell.ColorDefault,
	}
}

// Frame is what one Paint call draws.
type Frame struct {
	Index     *index.Index
	Tokens    []highlight.Token // sorted, document coordinates
	Selection cursor.Set
	Top       int // first row to draw
}

// Painter draws frames onto a screen.
type Painter struct {
	screen tcell.Screen
	theme  *highlight.Theme
	opts   Options
	bands  [2]tcell.Style
}

// NewPainter creates a painter. A nil theme uses the default theme.
func NewPainter(screen tcell.Screen, theme *highlight.Theme, opts Options) *Painter {
	if theme == nil {
		theme = highlight.DefaultTheme()
	}
	if opts.TabWidth <= 0 {
		opts.TabWidth = DefaultOptions().TabWidth
	}
	if opts.MarkerGlyph == "" {
		opts.MarkerGlyph = DefaultOptions().MarkerGlyph
	}
	bg := theme.Background
	if opts.Background.Valid() {
		bg = opts.Background
	}
	base := tcell.StyleDefault.Foreground(theme.Foreground)
	return &Painter{
		screen: screen,
		theme:  theme,
		opts:   opts,
		bands: [2]tcell.Style{
			base.Background(bg),
			base.Background(AlternateBackground(bg, opts.AlternateShift)),
		},
	}
}

// BandStyle returns the base style of blocks with the given parity.
func (p *Painter) BandStyle(parity int) tcell.Style {
	return p.bands[parity%2]
}

// Paint draws f and positions the terminal cursor on the primary cursor
// when it is visible. It does not call Show.
func (p *Painter) Paint(f Frame) {
	width, height := p.screen.Size()
	rows := Layout(f.Index)
	text := f.Index.Text()
	head := f.Selection.Primary().Head
	cursorRow := RowOf(rows, head)
	ranges := f.Selection.Ranges()

	p.screen.HideCursor()
	for y := 0; y < height; y++ {
		i := f.Top + y
		if i < 0 || i >= len(rows) {
			p.fill(0, y, width, p.bands[0])
			continue
		}
		row := rows[i]
		base := p.BandStyle(row.Parity)
		p.fill(0, y, width, base)

		if row.Kind == MarkerRow {
			p.drawMarker(y, width, row.Marker, base)
			continue
		}

		x := 0
		if row.Inline {
			x = p.drawString(0, y, width, p.opts.MarkerGlyph+" ", p.markerStyle(base))
		}
		cx := p.drawText(x, y, width, text, row.Range, f.Tokens, ranges, head, base)
		if i == cursorRow && cx >= 0 {
			p.screen.ShowCursor(cx, y)
		}
	}
}

func (p *Painter) markerStyle(base tcell.Style) tcell.Style {
	return p.theme.StyleForToken(highlight.TokenComment, base)
}

func (p *Painter) drawMarker(y, width int, m index.Marker, base tcell.Style) {
	label := p.opts.MarkerGlyph + " " + m.Language.Tag()
	if m.Auto {
		label += " (auto)"
	}
	p.drawString(0, y, width, label, p.markerStyle(base))
}

// drawText draws the content in r starting at column x and returns the
// column of head. A head past the end of the row is placed after its last
// cell; a head before the row gives -1.
func (p *Painter) drawText(x, y, width int, text string, r buffer.Range, tokens []highlight.Token, sels []buffer.Range, head buffer.ByteOffset, base tcell.Style) int {
	cursorX := -1
	start := x
	state := -1
	for off := r.Start; off < r.End; {
		if off == head {
			cursorX = x
		}
		cluster, _, w, newState := uniseg.FirstGraphemeClusterInString(text[off:r.End], state)
		state = newState

		style := base.Foreground(p.theme.Foreground)
		if tok, ok := highlight.TokenAt(tokens, off); ok {
			style = p.theme.StyleForToken(tok.Type, base)
		}
		if selected(sels, off) {
			style = style.Reverse(true)
		}

		if cluster == "\t" {
			next := start + ((x-start)/p.opts.TabWidth+1)*p.opts.TabWidth
			for ; x < next && x < width; x++ {
				p.screen.SetContent(x, y, ' ', nil, style)
			}
		} else {
			runes := []rune(cluster)
			if x < width {
				p.screen.SetContent(x, y, runes[0], runes[1:], style)
			}
			x += max(w, 1)
		}
		off += len(cluster)
	}
	if cursorX < 0 && head >= r.End {
		cursorX = x
	}
	if cursorX >= width {
		cursorX = width - 1
	}
	return cursorX
}

func (p *Painter) drawString(x, y, width int, s string, style tcell.Style) int {
	state := -1
	for s != "" && x < width {
		var cluster string
		var w int
		cluster, s, w, state = uniseg.FirstGraphemeClusterInString(s, state)
		runes := []rune(cluster)
		p.screen.SetContent(x, y, runes[0], runes[1:], style)
		x += max(w, 1)
	}
	return x
}

func (p *Painter) fill(x, y, width int, style tcell.Style) {
	for ; x < width; x++ {
		p.screen.SetContent(x, y, ' ', nil, style)
	}
}

func selected(sels []buffer.Range, off buffer.ByteOffset) bool {
	for _, r := range sels {
		if r.Contains(off) {
			return true
		}
	}
	return false
}
