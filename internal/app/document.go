package app

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/dshills/blockpad/internal/engine/buffer"
)

// readDocument loads path with normalized newlines. An empty path or a
// missing file gives an empty document.
func readDocument(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", &FileError{Op: "open", Path: path, Err: err}
	}
	return buffer.NormalizeNewlines(string(data)), nil
}

// Path returns the document path.
func (app *Application) Path() string {
	return app.path
}

// Modified reports whether the document differs from the last save.
func (app *Application) Modified() bool {
	return app.session.Text() != app.saved
}

// Save writes the document to its path.
func (app *Application) Save() error {
	if app.path == "" {
		return ErrNoFilePath
	}
	return app.SaveAs(app.path)
}

// SaveAs writes the document to path and makes it the document path.
// The file is replaced atomically.
func (app *Application) SaveAs(path string) error {
	text := app.session.Text()
	if err := writeAtomic(path, text); err != nil {
		return &FileError{Op: "save", Path: path, Err: err}
	}
	app.path = path
	app.saved = text
	app.logger.Info("saved %q (%d bytes)", path, len(text))
	return nil
}

func writeAtomic(path, text string) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.WriteString(text); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if info, err := os.Stat(path); err == nil {
		_ = os.Chmod(tmp.Name(), info.Mode().Perm())
	} else {
		_ = os.Chmod(tmp.Name(), 0o644)
	}
	return os.Rename(tmp.Name(), path)
}
