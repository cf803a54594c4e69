// Package enforce keeps a block document structurally valid while it is
// edited.
//
// Filter runs before a transaction is applied. It protects the first
// delimiter, keeps every delimiter atomic and normalizes the edit set.
// Clamp runs after the transaction and moves selections out of delimiter
// spans and out of the first delimiter. SelectAll and MoveLineUpBlocked
// implement the two commands whose behavior depends on block structure.
//
// Nothing here returns an error. Every transaction is either passed
// through, rewritten into a valid one or rejected, and the Verdict says
// which.
package enforce
