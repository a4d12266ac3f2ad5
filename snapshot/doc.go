// Package snapshot persists bit-vector word streams to a blob store.
//
// # Format
//
// A snapshot is the little-endian serialization of a []uint64 word array,
// optionally wrapped in an LZ4 or zstd stream. The codec is derived from
// the snapshot name: ".zst" selects zstd, ".lz4" selects LZ4, anything
// else is stored raw. Because the name carries the codec, a plain store
// listing is enough to read every snapshot back.
//
// # Usage
//
//	store := blobstore.NewLocalStore(dir)
//
//	info, err := snapshot.Write(ctx, store, "snap-001.bits.zst", bs.Bytes())
//	if err != nil { ... }
//
//	rc, err := snapshot.Open(ctx, store, "snap-001.bits.zst")
//	if err != nil { ... }
//	defer rc.Close()
//
//	b, err := roargo.FromReader(rc)
//
// Open returns the decompressed word stream, so the decoder never sees
// codec framing. Write reports the stored size and a CRC32C checksum of
// the stored bytes for registry records.
package snapshot
