// Package delim recognizes block delimiters in raw document text.
//
// A delimiter is Marker, a tag and a newline:
//
//	∞∞∞json\n      explicit JSON block
//	∞∞∞python-a\n  Python, proposed by auto-detection
//	∞∞∞\n          plain text in auto mode
//
// The tag must be one of lang.DelimiterTags, compared literally, so text
// that only resembles a delimiter stays ordinary content. A delimiter can
// never overlap another one, which makes the set of delimiters a pure
// function of local text and lets callers rescan only a window of at most
// MaxLen bytes around an edit.
package delim
