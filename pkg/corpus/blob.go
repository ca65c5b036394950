package corpus

import (
	"context"
	"io"
)

// BlobStore is the storage a corpus is persisted to.
//
// Names are forward-slash separated and relative to the store root.
// Implementations must be safe for concurrent use.
type BlobStore interface {
	// Read opens the named blob. The caller must close the returned
	// ReadCloser. A missing blob yields an error wrapping os.ErrNotExist.
	Read(ctx context.Context, name string) (io.ReadCloser, error)

	// Write opens the named blob for writing, replacing any existing one.
	// The blob becomes visible only once Close returns nil.
	Write(ctx context.Context, name string) (io.WriteCloser, error)

	// Delete removes the named blob. Missing blobs are not an error.
	Delete(ctx context.Context, name string) error

	// Exists reports whether the named blob exists.
	Exists(ctx context.Context, name string) (bool, error)
}
