// Package editor holds a block document session: the current snapshot,
// selections, undo history, inner-grammar dispatch and pending language
// detections.
//
// Every change goes through Session.Apply:
//
//	proposed transaction
//	  -> enforce.Filter   (reject or rewrite against the current index)
//	  -> Snapshot.Apply   (incremental reparse, new block index)
//	  -> enforce.Clamp    (keep selections out of delimiters)
//	  -> history          (record, or amend for detection results)
//	  -> Dispatcher.Sync  (re-dispatch changed blocks)
//	  -> detection        (submit auto blocks whose content changed)
//
// A Session is single-writer. Snapshots it hands out are immutable and
// may be read from other goroutines. Detection results arrive on the
// detector's channel and are applied by the session owner with
// ApplyDetections.
package editor
