// Package document holds the immutable document snapshot and the
// transaction type that moves the editor from one snapshot to the next.
//
// Subpackages implement the layers a snapshot is made of:
//
//   - delim: delimiter recognition and tokenization
//   - grammar: the outer Document → Block → (Delimiter, Content) tree
//   - index: the derived block list and its decorations
//   - enforce: the structural invariants applied to every transaction
package document
