package syntax

import (
	"sort"
	"strings"

	"github.com/dshills/blockpad/internal/engine/buffer"
	"github.com/dshills/blockpad/internal/syntax/highlight"
)

// bracketFolds pairs brackets that span more than one line. Brackets
// inside string and comment tokens are ignored. Each fold covers the
// text between the brackets.
func bracketFolds(src string, tokens []highlight.Token) []buffer.Range {
	type open struct {
		pos  int
		char byte
	}
	var (
		stack []open
		folds []buffer.Range
		ti    int
	)

	for i := 0; i < len(src); i++ {
		for ti < len(tokens) && tokens[ti].Range.End <= i {
			ti++
		}
		if ti < len(tokens) && tokens[ti].Range.Contains(i) {
			if tt := tokens[ti].Type; tt.IsString() || tt.IsComment() {
				i = tokens[ti].Range.End - 1
				continue
			}
		}

		switch c := src[i]; c {
		case '{', '[', '(':
			stack = append(stack, open{pos: i, char: c})
		case '}', ']', ')':
			n := len(stack)
			if n == 0 || stack[n-1].char != matching(c) {
				continue
			}
			o := stack[n-1]
			stack = stack[:n-1]
			if strings.IndexByte(src[o.pos:i], '\n') >= 0 {
				folds = append(folds, buffer.NewRange(o.pos+1, i))
			}
		}
	}

	sort.Slice(folds, func(i, j int) bool {
		return folds[i].Start < folds[j].Start
	})
	return folds
}

func matching(closer byte) byte {
	switch closer {
	case '}':
		return '{'
	case ']':
		return '['
	default:
		return '('
	}
}

// indentFolds folds every line followed by more deeply indented lines.
// A fold runs from the end of the header line to the end of the last
// deeper line; blank lines inside the run do not end it.
func indentFolds(src string) []buffer.Range {
	text := buffer.NewText(src)
	n := text.LineCount()
	var folds []buffer.Range

	for i := 0; i < n; i++ {
		line := text.LineText(i)
		if isBlank(line) {
			continue
		}
		depth := indentWidth(line)
		last := -1
		for j := i + 1; j < n; j++ {
			next := text.LineText(j)
			if isBlank(next) {
				continue
			}
			if indentWidth(next) <= depth {
				break
			}
			last = j
		}
		if last > i {
			folds = append(folds, buffer.NewRange(text.LineEnd(i), text.LineEnd(last)))
		}
	}
	return folds
}

// headingFolds folds markdown sections. A section runs from the end of its
// heading line to the last non-blank line before the next heading of the
// same or a higher level. Headings inside fenced code are ignored.
func headingFolds(src string) []buffer.Range {
	text := buffer.NewText(src)
	n := text.LineCount()

	levels := make([]int, n)
	fenced := false
	for i := 0; i < n; i++ {
		line := text.LineText(i)
		if strings.HasPrefix(strings.TrimLeft(line, " "), "```") {
			fenced = !fenced
			continue
		}
		if !fenced {
			levels[i] = headingLevel(line)
		}
	}

	var folds []buffer.Range
	for i := 0; i < n; i++ {
		if levels[i] == 0 {
			continue
		}
		last := i
		for j := i + 1; j < n; j++ {
			if levels[j] != 0 && levels[j] <= levels[i] {
				break
			}
			if !isBlank(text.LineText(j)) {
				last = j
			}
		}
		if last > i {
			folds = append(folds, buffer.NewRange(text.LineEnd(i), text.LineEnd(last)))
		}
	}
	return folds
}

// headingLevel returns the ATX heading level of line, or 0.
func headingLevel(line string) int {
	level := 0
	for level < len(line) && line[level] == '#' {
		level++
	}
	if level == 0 || level > 6 {
		return 0
	}
	if level < len(line) && line[level] != ' ' && line[level] != '\t' {
		return 0
	}
	return level
}

func isBlank(line string) bool {
	return strings.TrimSpace(line) == ""
}

func indentWidth(line string) int {
	return len(line) - len(strings.TrimLeft(line, " \t"))
}
