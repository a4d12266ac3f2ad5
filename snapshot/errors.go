package snapshot

import "fmt"

// ErrCorruptSnapshot is returned when a snapshot stream cannot be
// decompressed or read back.
type ErrCorruptSnapshot struct {
	// Name is the snapshot blob name.
	Name string

	cause error
}

// Error implements the error interface.
func (e *ErrCorruptSnapshot) Error() string {
	return fmt.Sprintf("snapshot %q is corrupt: %v", e.Name, e.cause)
}

// Unwrap returns the underlying error.
func (e *ErrCorruptSnapshot) Unwrap() error {
	return e.cause
}
