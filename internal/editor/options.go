package editor

import (
	"time"

	"github.com/dshills/blockpad/internal/detect"
	"github.com/dshills/blockpad/internal/engine/history"
	"github.com/dshills/blockpad/internal/syntax"
)

// Default configuration values.
const (
	DefaultIndentUnit     = "    "
	DefaultMaxUndoEntries = history.DefaultMaxEntries

	// DefaultDetectionExpiry is how long a request may stay unanswered.
	DefaultDetectionExpiry = 30 * time.Second
)

// Logger receives session diagnostics.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Warn(string, ...any)  {}

// Option configures a Session during creation.
type Option func(*Session)

// WithIndentUnit sets the string inserted for one level of indentation.
func WithIndentUnit(unit string) Option {
	return func(s *Session) {
		if unit != "" {
			s.indentUnit = unit
		}
	}
}

// WithMaxUndoEntries sets the maximum number of undo entries.
func WithMaxUndoEntries(max int) Option {
	return func(s *Session) {
		if max > 0 {
			s.maxUndo = max
		}
	}
}

// WithRegistry sets the inner grammar registry.
func WithRegistry(reg *syntax.Registry) Option {
	return func(s *Session) {
		s.registry = reg
	}
}

// WithDetector sets the language detector. The session submits requests
// while the detector is running; it never starts or stops it.
func WithDetector(d *detect.Detector) Option {
	return func(s *Session) {
		s.detector = d
	}
}

// WithDetectionExpiry sets how long a submitted request may stay
// unanswered before the block is submitted again.
func WithDetectionExpiry(d time.Duration) Option {
	return func(s *Session) {
		if d > 0 {
			s.expiry = d
		}
	}
}

// WithPolicy sets the detection policy.
func WithPolicy(p detect.Policy) Option {
	return func(s *Session) {
		s.policy = p
	}
}

// WithLogger sets the logger.
func WithLogger(l Logger) Option {
	return func(s *Session) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithSessionID overrides the generated session identifier.
func WithSessionID(id string) Option {
	return func(s *Session) {
		if id != "" {
			s.id = id
		}
	}
}
