package roargo

import (
	"errors"
	"fmt"
)

var (
	// ErrNilReader is returned when a decode entry point is given a nil
	// byte-stream source.
	ErrNilReader = errors.New("nil reader")

	// ErrUniverseExceeded is returned when a byte stream holds more bits
	// than the 32-bit value universe can address (more than 1<<16 chunks).
	ErrUniverseExceeded = errors.New("bit vector exceeds the 32-bit value universe")
)

// ErrStreamRead indicates the underlying byte-stream source failed
// mid-decode. Stream exhaustion is never reported this way; it is the
// normal termination condition.
//
// The original underlying error can be accessed via errors.Unwrap.
type ErrStreamRead struct {
	// Offset is the number of bytes consumed before the failing read.
	Offset int64
	cause  error
}

func (e *ErrStreamRead) Error() string {
	return fmt.Sprintf("stream read at offset %d: %v", e.Offset, e.cause)
}

func (e *ErrStreamRead) Unwrap() error { return e.cause }
