// Package mmap provides read-only memory-mapped file access for zero-copy I/O.
//
// # Overview
//
// Memory mapping allows direct access to file contents without copying data
// through read buffers. Snapshot files decoded straight from a mapping never
// leave the page cache, which matters when many snapshots are loaded at once.
//
// # Usage
//
//	m, err := mmap.Open("snap-001.bits")
//	if err != nil { ... }
//	defer m.Close()
//
//	// Zero-copy access to file contents
//	data := m.Bytes()
//
//	// Provide kernel hints for access patterns
//	m.Advise(mmap.AccessSequential)
//
// # Platform Support
//
//   - Unix (Linux, macOS, BSD): Uses mmap(2) with madvise(2) for access hints
//   - Windows: Uses CreateFileMapping/MapViewOfFile (advice is a no-op)
//
// # Thread Safety
//
// Mapping is safe for concurrent read access. Close() is idempotent and
// protected by atomic operations, but callers must ensure no goroutine
// touches Bytes() after Close() returns.
package mmap
