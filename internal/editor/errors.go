package editor

import "errors"

// Sentinel errors for editor commands.
var (
	// ErrNotJSON is returned when formatting a block that is not valid JSON.
	ErrNotJSON = errors.New("block is not valid JSON")

	// ErrNoBlock is returned when a block index is out of range.
	ErrNoBlock = errors.New("no such block")
)

// ErrReplayRejected is returned when an undo or redo step no longer
// passes the structural checks. The history is left as it was.
var ErrReplayRejected = errors.New("history step rejected")
