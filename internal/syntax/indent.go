package syntax

import "strings"

// indentFor returns the indentation for a line break inserted at pos:
// the leading whitespace of the current line, plus one unit when the text
// before pos ends with one of the opener characters.
func indentFor(src string, pos int, unit, openers string) string {
	pos = min(max(pos, 0), len(src))
	lineStart := strings.LastIndexByte(src[:pos], '\n') + 1
	line := src[lineStart:pos]

	indent := line[:indentWidth(line)]
	before := strings.TrimRight(line, " \t")
	if before != "" && strings.IndexByte(openers, before[len(before)-1]) >= 0 {
		indent += unit
	}
	return indent
}
