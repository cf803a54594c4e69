package detect

import "errors"

// Sentinel errors for the detect package.
var (
	// ErrAlreadyRunning is returned when Start is called on a running detector.
	ErrAlreadyRunning = errors.New("detector is already running")

	// ErrNotRunning is returned when requests are submitted to a stopped detector.
	ErrNotRunning = errors.New("detector is not running")

	// ErrQueueFull is returned when the request queue cannot accept more work.
	ErrQueueFull = errors.New("detection queue is full")

	// ErrNoClassifyFunc is returned when a Lua script does not define classify.
	ErrNoClassifyFunc = errors.New("script does not define a classify function")

	// ErrStateClosed is returned when a closed Lua classifier is used.
	ErrStateClosed = errors.New("lua state is closed")

	// ErrNoAnswer is returned when a remote model reply has no usable tag.
	ErrNoAnswer = errors.New("model reply has no language")
)
