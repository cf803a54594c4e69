// Package grammar builds the outer parse tree of a block document:
//
//	Document → Block+
//	Block    → Delimiter Content
//
// The grammar has no reject state. Text before the first delimiter forms
// an implicit block with an empty delimiter span, and an empty document
// is one implicit empty block.
//
// Parse is the reference semantics. Reparse patches a previous tree after
// an edit by rescanning only the window in which a delimiter could have
// appeared or disappeared, and produces the same tree as Parse.
package grammar
