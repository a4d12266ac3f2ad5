package snapshot

import (
	"bufio"
	"context"
	"encoding/binary"
	"io"

	"github.com/bits-and-blooms/bitset"
	"github.com/hupe1980/roargo/blobstore"
	"github.com/hupe1980/roargo/internal/hash"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// writeBufSize batches 8-byte word writes before they hit the codec.
const writeBufSize = 64 * 1024

// Info describes a written snapshot.
type Info struct {
	// Name is the blob name the snapshot was stored under.
	Name string
	// Compression is the codec derived from the name.
	Compression Compression
	// Words is the number of 64-bit words serialized.
	Words int
	// Bytes is the stored (post-compression) size.
	Bytes int64
	// CRC32C is the Castagnoli checksum of the stored bytes.
	CRC32C uint32
}

// Write serializes words as a little-endian byte stream into the store,
// compressed according to the name's suffix (see ForName). The returned
// Info carries the stored size and checksum for registry records. A
// failed write never publishes the name.
func Write(ctx context.Context, store blobstore.BlobStore, name string, words []uint64, optFns ...Option) (*Info, error) {
	o := applyOptions(optFns)

	w, err := store.Create(ctx, name)
	if err != nil {
		return nil, err
	}

	crc := hash.NewCRC32C()
	counted := &countingWriter{w: io.MultiWriter(w, crc)}

	comp := ForName(name)
	cw, err := newCompressor(counted, comp, &o)
	if err != nil {
		_ = blobstore.Discard(w)
		return nil, err
	}

	bw := bufio.NewWriterSize(cw, writeBufSize)
	var tmp [8]byte
	for _, word := range words {
		binary.LittleEndian.PutUint64(tmp[:], word)
		if _, err := bw.Write(tmp[:]); err != nil {
			_ = blobstore.Discard(w)
			return nil, err
		}
	}
	if err := bw.Flush(); err != nil {
		_ = blobstore.Discard(w)
		return nil, err
	}
	if err := cw.Close(); err != nil {
		_ = blobstore.Discard(w)
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}

	return &Info{
		Name:        name,
		Compression: comp,
		Words:       len(words),
		Bytes:       counted.n,
		CRC32C:      crc.Sum32(),
	}, nil
}

// WriteBitSet snapshots a flat bit set. The set's backing words are
// serialized as-is, so a later decode reproduces exactly its members.
func WriteBitSet(ctx context.Context, store blobstore.BlobStore, name string, bs *bitset.BitSet, optFns ...Option) (*Info, error) {
	var words []uint64
	if bs != nil {
		words = bs.Bytes()
	}
	return Write(ctx, store, name, words, optFns...)
}

// Open returns the decompressed word stream of a stored snapshot. The
// stream is suitable for roargo.FromReader and its in-place variant.
// Close releases the codec and the underlying blob.
func Open(ctx context.Context, store blobstore.BlobStore, name string) (io.ReadCloser, error) {
	blob, err := store.Open(ctx, name)
	if err != nil {
		return nil, err
	}

	if blob.Size() == 0 {
		// A snapshot of the empty set is an empty blob.
		return &stream{r: emptyReader{}, closers: []func() error{blob.Close}}, nil
	}

	rc, err := blob.ReadRange(ctx, 0, blob.Size())
	if err != nil {
		_ = blob.Close()
		return nil, err
	}

	switch ForName(name) {
	case CompressionZstd:
		dec, err := zstd.NewReader(rc)
		if err != nil {
			_ = rc.Close()
			_ = blob.Close()
			return nil, &ErrCorruptSnapshot{Name: name, cause: err}
		}
		closeDec := func() error { dec.Close(); return nil }
		return &stream{r: dec, closers: []func() error{closeDec, rc.Close, blob.Close}}, nil
	case CompressionLZ4:
		return &stream{r: lz4.NewReader(rc), closers: []func() error{rc.Close, blob.Close}}, nil
	default:
		return &stream{r: rc, closers: []func() error{rc.Close, blob.Close}}, nil
	}
}

// ReadWords loads a snapshot back into a word array. A final partial word
// is zero-padded, mirroring the wire contract.
func ReadWords(ctx context.Context, store blobstore.BlobStore, name string) ([]uint64, error) {
	rc, err := Open(ctx, store, name)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, &ErrCorruptSnapshot{Name: name, cause: err}
	}

	full := len(data) / 8
	words := make([]uint64, full, full+1)
	for i := range words {
		words[i] = binary.LittleEndian.Uint64(data[i*8:])
	}
	if rem := len(data) % 8; rem > 0 {
		var tail [8]byte
		copy(tail[:], data[full*8:])
		words = append(words, binary.LittleEndian.Uint64(tail[:]))
	}
	return words, nil
}

// stream couples a decompressing reader with the close chain under it.
type stream struct {
	r       io.Reader
	closers []func() error
}

func (s *stream) Read(p []byte) (int, error) {
	return s.r.Read(p)
}

func (s *stream) Close() error {
	var first error
	for _, fn := range s.closers {
		if err := fn(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

type emptyReader struct{}

func (emptyReader) Read([]byte) (int, error) { return 0, io.EOF }

// countingWriter tracks how many bytes reached the store.
type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}
