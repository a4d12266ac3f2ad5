package blobstore

import (
	"context"
	"io"
	"os"
)

// ErrNotFound is returned when a blob does not exist.
//
// Implementations should return an error that satisfies `errors.Is(err, ErrNotFound)`.
// The default maps to `os.ErrNotExist`.
var ErrNotFound = os.ErrNotExist

// BlobStore is an abstraction for storing and retrieving immutable data
// blobs (bit-vector snapshots). Implementations must be safe for
// concurrent use.
type BlobStore interface {
	// Open opens an existing blob for reading.
	Open(ctx context.Context, name string) (Blob, error)

	// Create creates a new blob for streaming writes. The blob becomes
	// visible once Close returns without error.
	Create(ctx context.Context, name string) (WritableBlob, error)

	// Put writes a small blob in one call.
	Put(ctx context.Context, name string, data []byte) error

	// Delete removes a blob. Deleting a missing blob is not an error.
	Delete(ctx context.Context, name string) error

	// List returns the names of all blobs with the given prefix, sorted.
	List(ctx context.Context, prefix string) ([]string, error)
}

// Blob is a read-only handle to a data blob.
type Blob interface {
	// ReadAt reads len(p) bytes starting at offset off.
	// It returns io.EOF when fewer than len(p) bytes remain.
	ReadAt(ctx context.Context, p []byte, off int64) (int, error)

	// ReadRange returns a reader over [off, off+length), clamped to the
	// blob size. An offset at or past the end returns io.EOF.
	ReadRange(ctx context.Context, off, length int64) (io.ReadCloser, error)

	// Size returns the size of the blob in bytes.
	Size() int64

	// Close releases the handle.
	Close() error
}

// WritableBlob is a write-only handle to a blob under construction.
type WritableBlob interface {
	io.WriteCloser

	// Sync flushes buffered data to stable storage where the backend
	// supports it. Object stores commit on Close and treat Sync as a no-op.
	Sync() error
}

// Aborter is an optional interface for WritableBlobs that can discard a
// partially written blob. Every store in this package implements it.
type Aborter interface {
	// Abort drops everything written so far; the name never becomes
	// visible. Abort after Close is a no-op.
	Abort() error
}

// Discard drops a partially written blob after a failed write. The blob
// is aborted when the store supports it; otherwise the handle is closed
// and the caller must tolerate a short blob under the name.
func Discard(w WritableBlob) error {
	if a, ok := w.(Aborter); ok {
		return a.Abort()
	}
	return w.Close()
}

// Mappable is an optional interface for Blobs that expose their content
// as a byte slice without copying. Local mmap-backed blobs implement it;
// decoding directly from the mapped bytes skips the read path entirely.
type Mappable interface {
	// Bytes returns the underlying byte slice.
	// The slice is valid until the Blob is closed.
	Bytes() ([]byte, error)
}
