package snapshot

import (
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// options holds codec tuning for Write.
type options struct {
	zstdLevel zstd.EncoderLevel
	lz4Level  lz4.CompressionLevel
}

// Option configures how snapshots are written.
type Option func(*options)

// WithZstdLevel sets the zstd encoder level used when the snapshot name
// ends in ".zst". Defaults to zstd.SpeedDefault.
func WithZstdLevel(level zstd.EncoderLevel) Option {
	return func(o *options) {
		o.zstdLevel = level
	}
}

// WithLZ4Level sets the LZ4 compression level used when the snapshot name
// ends in ".lz4". Defaults to lz4.Fast.
func WithLZ4Level(level lz4.CompressionLevel) Option {
	return func(o *options) {
		o.lz4Level = level
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		zstdLevel: zstd.SpeedDefault,
		lz4Level:  lz4.Fast,
	}
	for _, fn := range optFns {
		fn(&o)
	}
	return o
}
