// Package lang is the closed registry of block content languages.
//
// Each Language is a small integer naming one registry entry. The entry
// carries the delimiter tag, the chroma lexer used for highlighting, the
// fold strategy and the indentation openers, which is everything the
// syntax package needs to assemble an inner grammar. Tags outside the
// registry are never recognized inside a delimiter and resolve to Plain
// everywhere else.
package lang
