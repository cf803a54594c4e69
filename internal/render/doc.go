// Package render draws a block document onto a tcell screen.
//
// Delimiters are never shown as text. The first delimiter becomes an
// inline marker at the start of the first row; every later delimiter
// becomes a marker row of its own naming the block's language. Each
// block's rows are filled with one of two alternating backgrounds, and
// content is styled from the dispatcher's highlight tokens.
//
// Usage:
//
//	p := render.NewPainter(screen, highlight.DefaultTheme(), render.DefaultOptions())
//	p.Paint(render.Frame{Index: s.Index(), Tokens: s.Tokens(whole), Selection: s.Selection()})
//	screen.Show()
package render
