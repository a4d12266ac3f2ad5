package roargo

import (
	"bytes"
	"encoding/binary"
	"io"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/require"

	"github.com/hupe1980/roargo/bitmap"
)

func wordsToBytes(words []uint64) []byte {
	out := make([]byte, len(words)*8)
	for i, w := range words {
		binary.LittleEndian.PutUint64(out[i*8:], w)
	}
	return out
}

func collect(b *bitmap.Bitmap) []uint32 {
	var got []uint32
	it := b.Iterator()
	for it.HasNext() {
		got = append(got, it.Next())
	}
	return got
}

func TestDecoder_ThresholdBoundary(t *testing.T) {
	// 64 all-one words put exactly 4096 bits in chunk 0.
	atThreshold := make([]uint64, bitmap.WordsPerChunk)
	for i := 0; i < 64; i++ {
		atThreshold[i] = ^uint64(0)
	}

	// One more bit tips the chunk over.
	overThreshold := make([]uint64, bitmap.WordsPerChunk)
	copy(overThreshold, atThreshold)
	overThreshold[64] = 1

	decode := map[string]func(data []byte) (*bitmap.Bitmap, error){
		"buffered": func(data []byte) (*bitmap.Bitmap, error) {
			return NewDecoder().Decode(bytes.NewReader(data))
		},
		"in-place": func(data []byte) (*bitmap.Bitmap, error) {
			return NewDecoder().DecodeInPlace(bytes.NewReader(data))
		},
	}

	for name, fn := range decode {
		t.Run(name, func(t *testing.T) {
			b, err := fn(wordsToBytes(atThreshold))
			require.NoError(t, err)
			c, ok := b.Get(0)
			require.True(t, ok)
			require.True(t, c.IsArray(), "a chunk of exactly 4096 bits stays an array")
			require.Equal(t, 4096, c.Cardinality())
			require.True(t, b.Contains(0))
			require.True(t, b.Contains(4095))
			require.False(t, b.Contains(4096))

			b, err = fn(wordsToBytes(overThreshold))
			require.NoError(t, err)
			c, ok = b.Get(0)
			require.True(t, ok)
			require.False(t, c.IsArray(), "4097 bits force the dense layout")
			require.Equal(t, 4097, c.Cardinality())
			require.True(t, EqualWords(overThreshold, b))
		})
	}
}

func TestDecoder_DenseUpgradeReplaysEarlierPositions(t *testing.T) {
	// A few scattered bits first, then enough weight to force the
	// upgrade mid-chunk. The replay must carry the early bits over.
	words := make([]uint64, bitmap.WordsPerChunk)
	words[0] = 1<<5 | 1<<60
	for i := 1; i <= 80; i++ {
		words[i] = ^uint64(0)
	}

	b, err := NewDecoder().DecodeInPlace(bytes.NewReader(wordsToBytes(words)))
	require.NoError(t, err)

	c, ok := b.Get(0)
	require.True(t, ok)
	require.False(t, c.IsArray())
	require.Equal(t, uint64(2+80*64), b.GetCardinality())
	require.True(t, b.Contains(5))
	require.True(t, b.Contains(60))
	require.True(t, EqualWords(words, b))
}

func TestDecoder_VariantEquivalence(t *testing.T) {
	// Chunk 0 sparse, chunk 1 dense, chunk 2 empty, chunk 3 short.
	words := make([]uint64, 3*bitmap.WordsPerChunk+100)
	words[3] = 0b1010
	words[900] = 1 << 63
	for i := bitmap.WordsPerChunk; i < 2*bitmap.WordsPerChunk; i += 2 {
		words[i] = 0xDEADBEEFDEADBEEF
	}
	words[3*bitmap.WordsPerChunk+99] = 0xF0F0

	data := wordsToBytes(words)

	built := FromWords(words)
	fromBytes := FromBytes(data)

	buffered, err := NewDecoder().Decode(bytes.NewReader(data))
	require.NoError(t, err)

	inPlace, err := NewDecoder().DecodeInPlace(bytes.NewReader(data))
	require.NoError(t, err)

	for _, b := range []*bitmap.Bitmap{built, fromBytes, buffered, inPlace} {
		require.True(t, EqualWords(words, b))
		require.Equal(t, built.ContainerCount(), b.ContainerCount())

		// Same layout decision chunk for chunk.
		for key := uint16(0); key <= 3; key++ {
			want, wantOK := built.Get(key)
			got, gotOK := b.Get(key)
			require.Equal(t, wantOK, gotOK)
			if wantOK {
				require.Equal(t, want.IsArray(), got.IsArray())
				require.Equal(t, want.Cardinality(), got.Cardinality())
			}
		}
	}
}

func TestDecoder_PartialFinalWordPadding(t *testing.T) {
	// Five bytes: bits 0-7 from byte 0, bit 32 from byte 4. The
	// missing three bytes of the final word read as zero.
	data := []byte{0xFF, 0, 0, 0, 0x01}

	for _, fn := range []func() (*bitmap.Bitmap, error){
		func() (*bitmap.Bitmap, error) { return NewDecoder().Decode(bytes.NewReader(data)) },
		func() (*bitmap.Bitmap, error) { return NewDecoder().DecodeInPlace(bytes.NewReader(data)) },
	} {
		b, err := fn()
		require.NoError(t, err)
		require.Equal(t, []uint32{0, 1, 2, 3, 4, 5, 6, 7, 32}, collect(b))
	}
}

func TestDecoder_EmptyChunkElision(t *testing.T) {
	words := make([]uint64, 4*bitmap.WordsPerChunk)
	words[bitmap.WordsPerChunk] = 1        // chunk 1, value 1<<16
	words[3*bitmap.WordsPerChunk+5] = 0b10 // chunk 3, value 3<<16|321

	b, err := NewDecoder().DecodeInPlace(bytes.NewReader(wordsToBytes(words)))
	require.NoError(t, err)

	require.Equal(t, 2, b.ContainerCount())
	_, ok := b.Get(0)
	require.False(t, ok)
	_, ok = b.Get(2)
	require.False(t, ok)

	require.Equal(t, []uint32{1 << 16, 3<<16 | 321}, collect(b))
}

func TestDecoder_NilReader(t *testing.T) {
	d := NewDecoder()

	_, err := d.Decode(nil)
	require.ErrorIs(t, err, ErrNilReader)
	_, err = d.DecodeInPlace(nil)
	require.ErrorIs(t, err, ErrNilReader)

	// The decoder stays usable.
	b, err := d.Decode(bytes.NewReader(wordsToBytes([]uint64{1})))
	require.NoError(t, err)
	require.True(t, b.Contains(0))
}

func TestDecoder_ReuseAfterStreamError(t *testing.T) {
	d := NewDecoder()

	// First stream delivers one heavy word, then fails. The abort
	// leaves mid-chunk sparse state behind.
	heavy := iotest.TimeoutReader(bytes.NewReader(wordsToBytes([]uint64{^uint64(0)})))
	_, err := d.DecodeInPlace(heavy)
	var streamErr *ErrStreamRead
	require.ErrorAs(t, err, &streamErr)

	// A clean decode on the same decoder must not leak positions from
	// the aborted run.
	b, err := d.DecodeInPlace(bytes.NewReader(wordsToBytes([]uint64{1 << 9})))
	require.NoError(t, err)
	require.Equal(t, []uint32{9}, collect(b))
}

func TestDecoder_StreamErrorOffset(t *testing.T) {
	data := wordsToBytes([]uint64{7, 9})

	_, err := NewDecoder().Decode(iotest.TimeoutReader(bytes.NewReader(data)))
	require.Error(t, err)

	var streamErr *ErrStreamRead
	require.ErrorAs(t, err, &streamErr)
	require.Equal(t, int64(16), streamErr.Offset)
	require.ErrorIs(t, err, iotest.ErrTimeout)
}

func TestDecoder_SteadyStateAllocations(t *testing.T) {
	// Both streams emit a single container; the longer one only adds
	// empty chunks. A decoder that reuses its scratch allocates the
	// same amount for either stream.
	small := make([]uint64, 8*bitmap.WordsPerChunk)
	big := make([]uint64, 64*bitmap.WordsPerChunk)
	small[0], big[0] = 42, 42

	smallData := wordsToBytes(small)
	bigData := wordsToBytes(big)

	d := NewDecoder()
	r := bytes.NewReader(nil)

	measure := func(data []byte, inPlace bool) float64 {
		return testing.AllocsPerRun(20, func() {
			r.Reset(data)
			var err error
			if inPlace {
				_, err = d.DecodeInPlace(r)
			} else {
				_, err = d.Decode(r)
			}
			if err != nil {
				t.Fatal(err)
			}
		})
	}

	require.Equal(t, measure(smallData, false), measure(bigData, false))
	require.Equal(t, measure(smallData, true), measure(bigData, true))
}

// zeroReader yields an endless stream of zero bytes.
type zeroReader struct{}

func (zeroReader) Read(p []byte) (int, error) {
	clear(p)
	return len(p), nil
}

func TestDecoder_UniverseExceeded(t *testing.T) {
	if testing.Short() {
		t.Skip("streams half a gigabyte of zeros")
	}

	// One word past the last addressable chunk.
	newStream := func() io.Reader {
		return io.LimitReader(zeroReader{}, int64(maxWords+1)*8)
	}

	_, err := NewDecoder().Decode(newStream())
	require.ErrorIs(t, err, ErrUniverseExceeded)

	_, err = NewDecoder().DecodeInPlace(newStream())
	require.ErrorIs(t, err, ErrUniverseExceeded)
}

func TestDecoder_EmptyStream(t *testing.T) {
	b, err := NewDecoder().Decode(bytes.NewReader(nil))
	require.NoError(t, err)
	require.True(t, b.IsEmpty())

	b, err = NewDecoder().DecodeInPlace(bytes.NewReader(nil))
	require.NoError(t, err)
	require.True(t, b.IsEmpty())
}

func TestDecoderPool(t *testing.T) {
	p := NewDecoderPool()

	d := p.Get()
	b, err := d.Decode(bytes.NewReader(wordsToBytes([]uint64{0b1010})))
	require.NoError(t, err)
	require.Equal(t, []uint32{1, 3}, collect(b))
	p.Put(d)

	d2 := p.Get()
	b2, err := d2.DecodeInPlace(bytes.NewReader(wordsToBytes([]uint64{1 << 7})))
	require.NoError(t, err)
	require.Equal(t, []uint32{7}, collect(b2))
	p.Put(d2)

	// Nil and foreign decoders are ignored rather than pooled.
	p.Put(nil)
	p.Put(NewDecoder())
}
