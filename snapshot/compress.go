package snapshot

import (
	"io"
	"strings"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Compression identifies the codec applied to a snapshot stream.
type Compression uint8

const (
	// CompressionNone stores the raw little-endian word stream.
	CompressionNone Compression = iota
	// CompressionLZ4 favors decode speed over ratio.
	CompressionLZ4
	// CompressionZstd favors ratio at a modest decode cost.
	CompressionZstd
)

// String implements fmt.Stringer.
func (c Compression) String() string {
	switch c {
	case CompressionLZ4:
		return "lz4"
	case CompressionZstd:
		return "zstd"
	default:
		return "none"
	}
}

// Ext returns the file name suffix for the codec.
func (c Compression) Ext() string {
	switch c {
	case CompressionLZ4:
		return ".lz4"
	case CompressionZstd:
		return ".zst"
	default:
		return ""
	}
}

// ForName derives the codec from the snapshot name. The name is the single
// source of truth: Write compresses and Open decompresses according to it,
// so a store listing is enough to know how to read every snapshot.
func ForName(name string) Compression {
	switch {
	case strings.HasSuffix(name, ".zst"):
		return CompressionZstd
	case strings.HasSuffix(name, ".lz4"):
		return CompressionLZ4
	default:
		return CompressionNone
	}
}

// newCompressor wraps w with the codec's stream encoder.
func newCompressor(w io.Writer, c Compression, o *options) (io.WriteCloser, error) {
	switch c {
	case CompressionLZ4:
		zw := lz4.NewWriter(w)
		if err := zw.Apply(lz4.CompressionLevelOption(o.lz4Level)); err != nil {
			return nil, err
		}
		return zw, nil
	case CompressionZstd:
		return zstd.NewWriter(w, zstd.WithEncoderLevel(o.zstdLevel))
	default:
		return nopWriteCloser{w}, nil
	}
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }
