package loader

import "errors"

// ErrUnsupportedFormat is returned for a file extension no loader reads.
var ErrUnsupportedFormat = errors.New("unsupported config format")
