// Package bitmap implements the chunked, mixed-representation bitmap
// produced by the roargo conversion engine.
//
// # Data Model
//
// A Bitmap partitions the 32-bit integer domain into 65536 chunks of
// 65536 values each. Every non-empty chunk is stored as one container
// under its 16-bit chunk key; empty chunks have no entry at all:
//
//	value v = (key << 16) | offset
//
//	┌──────────────┬──────────────┬──────────────┐
//	│ key 0x0000   │ key 0x0003   │ key 0x01ff   │   keys strictly
//	│ container    │ container    │ container    │   increasing
//	└──────────────┴──────────────┴──────────────┘
//
// # Representation Selection
//
// Each container independently picks the cheaper of two layouts based
// on its cardinality:
//
//   - array: sorted []uint16 of offsets, at most ArrayMaxSize (4096)
//     entries — 2 bytes per member.
//   - bitmap: fixed 1024×uint64 bit vector (8 KiB) with an explicitly
//     maintained cardinality — constant size regardless of members.
//
// 4096 is the break-even point: above it the array would outgrow the
// 8 KiB bit vector.
//
// # Construction Contract
//
// Builders append containers with InsertAppend in strictly increasing
// key order and never insert empty containers. The bitmap is
// single-writer during construction.
//
//	b := bitmap.New()
//	b.InsertAppend(0, bitmap.NewArrayContainer([]uint16{1, 3}))
//	b.Contains(3) // true
package bitmap
