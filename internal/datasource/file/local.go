// Package file opens exports and input lists from the local disk.
package file

import (
	"context"
	"fmt"
	"io"
	"os"
)

// Local is one export file on disk.
type Local struct{ path string }

// NewLocal binds a Local to path. Nothing is opened until Open.
func NewLocal(path string) *Local { return &Local{path: path} }

// Path returns the bound path.
func (l *Local) Path() string { return l.path }

// Open returns ctx.Err() without touching the disk when ctx is already done;
// otherwise it opens the file. Filesystem errors keep their identity for
// errors.Is (os.ErrNotExist and friends).
func (l *Local) Open(ctx context.Context) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(l.path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", l.path, err)
	}
	return f, nil
}
