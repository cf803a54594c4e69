package delim

import (
	"strings"

	"github.com/dshills/blockpad/internal/engine/buffer"
	"github.com/dshills/blockpad/internal/lang"
)

// Marker is the three-character sequence that opens every delimiter.
const Marker = "∞∞∞"

// MaxLen is the byte length of the longest possible delimiter.
var MaxLen = func() int {
	longest := 0
	for _, tag := range lang.DelimiterTags() {
		longest = max(longest, len(tag))
	}
	return len(Marker) + longest + 1
}()

// Delimiter is one recognized block delimiter.
type Delimiter struct {
	Start    buffer.ByteOffset
	End      buffer.ByteOffset // exclusive, just past the newline
	Tag      string            // raw tag text between marker and newline
	Language lang.Language
	Auto     bool
}

// Range returns the span of the whole delimiter.
func (d Delimiter) Range() buffer.Range {
	return buffer.Range{Start: d.Start, End: d.End}
}

// TagRange returns the span of the tag text.
func (d Delimiter) TagRange() buffer.Range {
	return buffer.Range{Start: d.Start + len(Marker), End: d.End - 1}
}

// Len returns the delimiter length in bytes.
func (d Delimiter) Len() int {
	return d.End - d.Start
}

// Text returns the wire form of the delimiter.
func (d Delimiter) Text() string {
	return Marker + d.Tag + "\n"
}

// Format renders the delimiter for a language.
func Format(l lang.Language, auto bool) string {
	return Marker + lang.FormatTag(l, auto) + "\n"
}

// MatchAt reports whether a delimiter starts at pos. The tag must be one
// of the registered delimiter tags, compared literally.
func MatchAt(text string, pos buffer.ByteOffset) (Delimiter, bool) {
	if pos < 0 || pos > len(text) || !strings.HasPrefix(text[pos:], Marker) {
		return Delimiter{}, false
	}
	tagStart := pos + len(Marker)
	window := text[tagStart:min(len(text), pos+MaxLen)]
	nl := strings.IndexByte(window, '\n')
	if nl < 0 {
		return Delimiter{}, false
	}
	tag := window[:nl]
	l, auto, ok := lang.ParseTag(tag)
	if !ok {
		return Delimiter{}, false
	}
	return Delimiter{
		Start:    pos,
		End:      tagStart + nl + 1,
		Tag:      tag,
		Language: l,
		Auto:     auto,
	}, true
}

// IsDelimiter reports whether s is exactly one well-formed delimiter.
func IsDelimiter(s string) bool {
	d, ok := MatchAt(s, 0)
	return ok && d.End == len(s)
}

// Next returns the first delimiter starting at or after from.
func Next(text string, from buffer.ByteOffset) (Delimiter, bool) {
	return next(text, from, len(text))
}

func next(text string, from, to buffer.ByteOffset) (Delimiter, bool) {
	p := max(from, 0)
	for p < to && p < len(text) {
		i := strings.Index(text[p:], Marker)
		if i < 0 || p+i >= to {
			break
		}
		p += i
		if d, ok := MatchAt(text, p); ok {
			return d, true
		}
		p++
	}
	return Delimiter{}, false
}

// Scan returns every delimiter whose start lies in [from, to).
// Delimiters never overlap, so the result is the same whatever from is.
func Scan(text string, from, to buffer.ByteOffset) []Delimiter {
	var out []Delimiter
	for {
		d, ok := next(text, from, to)
		if !ok {
			return out
		}
		out = append(out, d)
		from = d.End
	}
}

// All returns every delimiter in text.
func All(text string) []Delimiter {
	return Scan(text, 0, len(text))
}
