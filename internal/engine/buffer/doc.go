// Package buffer provides the immutable text value and the position,
// range and edit types shared by every layer of the block engine.
//
// The package provides:
//
//   - Text: an immutable string with a line-start index
//   - Coordinate conversion between byte offsets and line/column positions
//   - Range and Edit value types with validation and application
//   - Offset mapping through a set of applied edits
//   - Line ending normalization
//
// Basic usage:
//
//	txt := buffer.NewText("Hello, World!")
//	next, err := txt.Apply([]buffer.Edit{buffer.NewInsert(7, "Beautiful ")})
//	// next.String() == "Hello, Beautiful World!"
//
// All offsets are byte offsets. Edits passed to Apply, ApplyEdits and
// MapOffset must be ascending and non-overlapping, expressed in the
// coordinates of the text before the edit.
package buffer
