package roargo

import (
	"encoding/binary"
	"io"
	"math/bits"
	"time"

	"github.com/bits-and-blooms/bitset"

	"github.com/hupe1980/roargo/bitmap"
)

// maxWords is the largest word-array input: one full chunk per possible
// chunk key. Bits past it have no 32-bit value to map to.
const maxWords = bitmap.WordsPerChunk * (bitmap.MaxKey + 1)

// FromWords converts a word array into a compressed bitmap. Word i
// carries bits [i*64, i*64+63], least significant bit first, so the
// result represents exactly {i*64 + b : bit b of words[i] is set}.
// The input is not modified and not retained.
//
// Panics if the array extends past the 32-bit value universe
// (len(words) > 1<<26).
func FromWords(words []uint64, optFns ...Option) *bitmap.Bitmap {
	o := applyOptions(optFns)
	if len(words) > maxWords {
		panic("roargo: word array exceeds the 32-bit value universe")
	}

	start := time.Now()
	b := o.newBitmap()

	for from := 0; from < len(words); from += bitmap.WordsPerChunk {
		to := min(from+bitmap.WordsPerChunk, len(words))
		chunk := words[from:to]

		card := 0
		for _, w := range chunk {
			card += bits.OnesCount64(w)
		}
		appendChunk(b, uint16(from/bitmap.WordsPerChunk), chunk, card)
	}

	o.metricsCollector.RecordBuild(time.Since(start), len(words), b.ContainerCount())
	o.logger.LogBuild(len(words), b.ContainerCount())
	return b
}

// FromBitSet converts a flat bit set into a compressed bitmap via its
// backing word array. The bit set is not modified.
func FromBitSet(bs *bitset.BitSet, optFns ...Option) *bitmap.Bitmap {
	var words []uint64
	if bs != nil {
		words = bs.Bytes()
	}
	return FromWords(words, optFns...)
}

// FromBytes converts an in-memory little-endian bit-vector image into a
// compressed bitmap. Byte 0 carries bits 0-7; a trailing sub-8-byte
// tail is treated as a zero-padded final word. The input is not
// modified and not retained.
//
// Panics if the image extends past the 32-bit value universe.
func FromBytes(data []byte, optFns ...Option) *bitmap.Bitmap {
	o := applyOptions(optFns)
	if len(data) > maxWords*8 {
		panic("roargo: byte image exceeds the 32-bit value universe")
	}

	start := time.Now()
	b := o.newBitmap()

	var (
		words [bitmap.WordsPerChunk]uint64
		chunk int
		n     int
		card  int
	)
	for ; len(data) >= 8; data = data[8:] {
		w := binary.LittleEndian.Uint64(data)

		words[n] = w
		card += bits.OnesCount64(w)
		n++

		if n == bitmap.WordsPerChunk {
			appendChunk(b, uint16(chunk), words[:n], card)
			chunk++
			n, card = 0, 0
		}
	}

	if len(data) > 0 {
		var w uint64
		for j, by := range data {
			w |= uint64(by) << (8 * j)
		}
		// The padded tail joins the block only when it has bits.
		if w != 0 {
			words[n] = w
			card += bits.OnesCount64(w)
			n++
		}
	}

	if n > 0 {
		appendChunk(b, uint16(chunk), words[:n], card)
	}

	o.metricsCollector.RecordBuild(time.Since(start), chunk*bitmap.WordsPerChunk+n, b.ContainerCount())
	o.logger.LogBuild(chunk*bitmap.WordsPerChunk+n, b.ContainerCount())
	return b
}

// FromReader decodes a little-endian bit-vector byte stream into a
// compressed bitmap using the buffered path. One-shot convenience:
// repeated decodes should reuse a Decoder (or a DecoderPool) to keep
// scratch allocations out of steady state.
func FromReader(r io.Reader, optFns ...Option) (*bitmap.Bitmap, error) {
	return NewDecoder().Decode(r, optFns...)
}

// FromReaderInPlace decodes a little-endian bit-vector byte stream
// using the in-place path (see Decoder.DecodeInPlace). One-shot
// convenience around NewDecoder.
func FromReaderInPlace(r io.Reader, optFns ...Option) (*bitmap.Bitmap, error) {
	return NewDecoder().DecodeInPlace(r, optFns...)
}

// Equal reports whether a flat bit set and a compressed bitmap contain
// the same members. Cardinalities are compared first; on a match,
// every bitmap member is probed against the flat set. Equal
// cardinality plus one-directional containment implies set equality.
func Equal(bs *bitset.BitSet, b *bitmap.Bitmap) bool {
	var flat uint64
	if bs != nil {
		flat = uint64(bs.Count())
	}
	if b == nil {
		return flat == 0
	}
	if flat != b.GetCardinality() {
		return false
	}

	equal := true
	b.ForEach(func(v uint32) bool {
		if !bs.Test(uint(v)) {
			equal = false
		}
		return equal
	})
	return equal
}

// EqualWords reports whether a raw word array and a compressed bitmap
// contain the same members. Word semantics match FromWords.
func EqualWords(words []uint64, b *bitmap.Bitmap) bool {
	var flat uint64
	for _, w := range words {
		flat += uint64(bits.OnesCount64(w))
	}
	if b == nil {
		return flat == 0
	}
	if flat != b.GetCardinality() {
		return false
	}

	equal := true
	b.ForEach(func(v uint32) bool {
		i := int(v >> 6)
		if i >= len(words) || words[i]&(uint64(1)<<(v&63)) == 0 {
			equal = false
		}
		return equal
	})
	return equal
}

// appendChunk appends one chunk's words to the bitmap as a container
// keyed by the chunk ordinal, eliding empty chunks. words may be
// shorter than a full chunk (final short chunk); missing words are
// zero.
func appendChunk(b *bitmap.Bitmap, key uint16, words []uint64, card int) {
	if card == 0 {
		return
	}
	if card <= bitmap.ArrayMaxSize {
		b.InsertAppend(key, bitmap.NewArrayContainer(extractPositions(words, card)))
		return
	}
	full := make([]uint64, bitmap.WordsPerChunk)
	copy(full, words)
	b.InsertAppend(key, bitmap.NewBitmapContainer(full, card))
}

// extractPositions returns the ascending set-bit positions of a chunk's
// words as chunk-local 16-bit values. card must be the total population
// count of words.
func extractPositions(words []uint64, card int) []uint16 {
	out := make([]uint16, card)
	idx := 0
	for i, word := range words {
		base := uint16(i << 6)
		for word != 0 {
			out[idx] = base + uint16(bits.TrailingZeros64(word))
			idx++
			word &= word - 1
		}
	}
	return out
}
