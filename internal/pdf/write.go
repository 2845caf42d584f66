package pdf

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// WriteError reports a document that could not be written to its destination
type WriteError struct {
	Path string
	Err  error
}

func (e *WriteError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("failed to write pdf: %v", e.Err)
	}
	return fmt.Sprintf("failed to write pdf %s: %v", e.Path, e.Err)
}

func (e *WriteError) Unwrap() error {
	return e.Err
}

// writeFile streams output into a temporary file next to path and renames it
// into place once everything has been written
func writeFile(path string, output func(io.Writer) error) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".facturas-*.pdf")
	if err != nil {
		return &WriteError{Path: path, Err: err}
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	if err := output(tmp); err != nil {
		return &WriteError{Path: path, Err: err}
	}
	if err := tmp.Chmod(0o644); err != nil {
		return &WriteError{Path: path, Err: err}
	}
	if err := tmp.Close(); err != nil {
		return &WriteError{Path: path, Err: err}
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return &WriteError{Path: path, Err: err}
	}
	return nil
}
