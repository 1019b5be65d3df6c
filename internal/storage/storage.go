package storage

import (
	"context"
	"io"
)

// Store holds uploaded resume files. Upload returns the stored object key;
// Open streams it back for download.
type Store interface {
	Upload(ctx context.Context, objectName string, contentType string, r io.Reader) (storedPath string, err error)
	Open(ctx context.Context, objectName string) (io.ReadCloser, error)
}
