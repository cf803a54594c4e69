// Package index is the read-only block view derived from a parse.
//
// The Index answers the structural questions the editor asks on every
// keystroke (which block holds an offset, where the first delimiter ends,
// which delimiter a position falls into) and produces the decorations the
// renderer draws: alternating block backgrounds and the two block marker
// variants that stand in for delimiters.
package index
