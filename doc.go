// Package roargo builds Roaring-style compressed bitmaps from flat bit
// vectors.
//
// A flat bit vector — a []uint64 word array, a bitset.BitSet, or a
// little-endian byte stream — is split into 65536-bit chunks. Each
// non-empty chunk becomes one container keyed by the chunk ordinal:
// chunks with at most 4096 members store a sorted uint16 array, denser
// chunks store a fixed 1024-word bit vector. Empty chunks are elided
// entirely.
//
// # Quick Start
//
// In-memory conversion:
//
//	b := roargo.FromWords(words)            // []uint64, bit i*64+b
//	b := roargo.FromBitSet(bs)              // *bitset.BitSet
//	b := roargo.FromBytes(data)             // LE byte image
//
// Streaming decode:
//
//	b, err := roargo.FromReader(r)          // chunk-buffered
//	b, err := roargo.FromReaderInPlace(r)   // no chunk staging
//
// # Decoder Reuse
//
// FromReader allocates a fresh Decoder per call. Hot paths that decode
// many streams should hold a Decoder (or a DecoderPool) so scratch
// buffers are reused and steady-state allocation stays flat:
//
//	pool := roargo.NewDecoderPool()
//	d := pool.Get()
//	b, err := d.DecodeInPlace(r)
//	pool.Put(d)
//
// # Snapshots
//
// The snapshot package persists word arrays to a blobstore.BlobStore
// (local disk, S3, S3 Express, MinIO, or in-memory), optionally
// compressed with zstd or LZ4. DecodeAll fans a set of snapshots out
// across a bounded worker pool:
//
//	store, _ := blobstore.NewLocalStore("./snapshots")
//	info, _ := snapshot.Write(ctx, store, "daily.bits.zst", words)
//	bitmaps, _ := roargo.DecodeAll(ctx, store, names,
//	    roargo.WithConcurrency(8))
//
// # Verification
//
// Equal and EqualWords compare a constructed bitmap against its flat
// source without materializing either side:
//
//	if !roargo.Equal(bs, b) {
//	    // construction bug or corrupted stream
//	}
//
// # Key Features
//
//   - Array/bitmap container split at the 4096-member threshold
//   - Zero steady-state allocation streaming decode
//   - Batch decode with bounded concurrency and rate limiting
//   - Pluggable snapshot storage (local, S3, S3 Express, MinIO, memory)
//   - zstd and LZ4 snapshot compression
//   - Structured logging (slog) and pluggable metrics
package roargo
