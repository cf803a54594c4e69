package config

import (
	"errors"
	"fmt"
)

// Errors returned by configuration operations.
var (
	// ErrUnknownSetting indicates a path that names no setting.
	ErrUnknownSetting = errors.New("unknown setting")

	// ErrInvalidValue indicates a value of the wrong type or out of range.
	ErrInvalidValue = errors.New("invalid value")
)

// ValidationError describes a setting whose value is not acceptable.
type ValidationError struct {
	// Path is the setting path that failed validation.
	Path string
	// Message describes the validation error.
	Message string
	// Value is the invalid value.
	Value any
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s (value: %v)", e.Path, e.Message, e.Value)
}

// Unwrap makes every ValidationError match ErrInvalidValue.
func (e *ValidationError) Unwrap() error {
	return ErrInvalidValue
}

func invalid(path string, value any, format string, args ...any) error {
	return &ValidationError{Path: path, Message: fmt.Sprintf(format, args...), Value: value}
}
