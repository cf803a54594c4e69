// Package syntax dispatches each block's content to its inner grammar.
//
// A Grammar highlights, folds and indents the content of one block. The
// Registry builds one grammar per registered language: chroma-backed
// grammars for most languages, the regex math highlighter for math
// blocks and a no-op grammar for plain text and unknown tags.
//
// The Dispatcher runs after every parse:
//
//	d := syntax.NewDispatcher(syntax.NewRegistry())
//	d.Sync(snapshot.Index())
//	for _, tok := range d.Tokens(visible) {
//	    // tok.Range is in document coordinates
//	}
//
// Inner results are cached by (language, content) and rebased into
// document coordinates when read, so an edit only re-parses the blocks
// whose content or language changed.
package syntax
