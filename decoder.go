package roargo

import (
	"bufio"
	"encoding/binary"
	"errors"
	"io"
	"math/bits"
	"sync"
	"time"

	"github.com/hupe1980/roargo/bitmap"
)

// sparseSlack is the extraction headroom past the array threshold. The
// dense upgrade check runs once per whole word, so at most one word's
// 64 positions can land beyond the threshold before the check fires.
const sparseSlack = 64

// streamBufSize is the decoder's read window: eight chunks of words per
// refill.
const streamBufSize = 64 << 10

// Decoder converts byte streams into compressed bitmaps. The stream is
// interpreted as a flat bit vector of consecutive little-endian 64-bit
// words (byte 0 carries bits 0-7); a final sub-8-byte tail is
// zero-padded into the last word. Stream exhaustion is the normal
// termination condition, never an error.
//
// A Decoder owns all scratch needed for steady-state-allocation-free
// decoding and is reusable across calls:
//
//   - a chunk-sized word buffer (buffered path)
//   - a value buffer sized to the array threshold plus extraction slack
//     (in-place path)
//   - the read window
//
// The only per-chunk heap allocation is the storage handed to each
// emitted container, which the container owns thereafter.
//
// A Decoder is not safe for concurrent use: it is owned by one decode
// operation at a time. Run concurrent decodes with one Decoder each,
// typically from a DecoderPool.
type Decoder struct {
	words [bitmap.WordsPerChunk]uint64
	vals  [bitmap.ArrayMaxSize + sparseSlack]uint16
	br    *bufio.Reader
	tmp   [8]byte
	off   int64 // bytes consumed from the current stream

	ownedByPool bool
}

// NewDecoder creates a Decoder with its own scratch buffers.
func NewDecoder() *Decoder {
	return &Decoder{br: bufio.NewReaderSize(nil, streamBufSize)}
}

// Decode reads the whole stream and returns the compressed bitmap.
//
// This is the buffered path: each chunk's words are staged in the
// chunk buffer, then turned into a container in one step once the
// chunk's cardinality is known.
func (d *Decoder) Decode(r io.Reader, optFns ...Option) (*bitmap.Bitmap, error) {
	o := applyOptions(optFns)

	start := time.Now()
	b, err := d.decodeBuffered(r, &o)

	containers := 0
	if b != nil {
		containers = b.ContainerCount()
	}
	o.metricsCollector.RecordDecode(time.Since(start), d.off, containers, err)
	o.logger.LogDecode(d.off, containers, err)
	return b, err
}

// DecodeInPlace reads the whole stream and returns the compressed
// bitmap without staging chunks.
//
// Each chunk runs a two-state machine. It starts sparse: set-bit
// positions are extracted word by word into the value buffer. The
// moment the running cardinality can no longer end the chunk as a
// valid array container, the chunk upgrades to dense — a fresh word
// vector is materialized, the buffered positions are replayed into it,
// and every remaining word of the chunk is stored verbatim. State is
// chunk-local and resets at every chunk boundary.
func (d *Decoder) DecodeInPlace(r io.Reader, optFns ...Option) (*bitmap.Bitmap, error) {
	o := applyOptions(optFns)

	start := time.Now()
	b, err := d.decodeInPlace(r, &o)

	containers := 0
	if b != nil {
		containers = b.ContainerCount()
	}
	o.metricsCollector.RecordDecode(time.Since(start), d.off, containers, err)
	o.logger.LogDecode(d.off, containers, err)
	return b, err
}

func (d *Decoder) decodeBuffered(r io.Reader, o *options) (*bitmap.Bitmap, error) {
	d.off = 0
	if r == nil {
		return nil, ErrNilReader
	}
	d.br.Reset(r)

	b := o.newBitmap()
	var (
		chunk int // chunk ordinal, doubles as the chunk key
		n     int // words staged for the current chunk
		card  int // running cardinality of the current chunk
	)

	for {
		w, ok, err := d.nextWord()
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
		if chunk > bitmap.MaxKey {
			return nil, ErrUniverseExceeded
		}

		d.words[n] = w
		card += bits.OnesCount64(w)
		n++

		if n == bitmap.WordsPerChunk {
			appendChunk(b, uint16(chunk), d.words[:n], card)
			chunk++
			n, card = 0, 0
		}
	}

	if n > 0 {
		appendChunk(b, uint16(chunk), d.words[:n], card)
	}
	return b, nil
}

func (d *Decoder) decodeInPlace(r io.Reader, o *options) (*bitmap.Bitmap, error) {
	d.off = 0
	if r == nil {
		return nil, ErrNilReader
	}
	d.br.Reset(r)
	// A previous decode may have aborted mid-chunk; restore the
	// all-zero value buffer the sparse state relies on.
	clear(d.vals[:])

	b := o.newBitmap()
	var (
		dense *bitmap.Container // nil while the chunk is sparse
		chunk int               // chunk ordinal, doubles as the chunk key
		n     int               // words consumed in the current chunk
		card  int               // sparse running cardinality
	)

	for {
		w, ok, err := d.nextWord()
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
		if chunk > bitmap.MaxKey {
			return nil, ErrUniverseExceeded
		}

		if dense != nil {
			dense.SetWord(n, w)
		} else {
			base := uint16(n << 6)
			for w != 0 {
				d.vals[card] = base + uint16(bits.TrailingZeros64(w))
				card++
				w &= w - 1
			}
			// Upgrade once the chunk can no longer end as a valid
			// array container.
			if card > bitmap.ArrayMaxSize {
				dense = bitmap.NewDenseContainer()
				for _, v := range d.vals[:card] {
					dense.Add(v)
				}
				clear(d.vals[:card])
				card = 0
			}
		}

		n++
		if n == bitmap.WordsPerChunk {
			if dense != nil {
				if dense.Cardinality() > 0 {
					b.InsertAppend(uint16(chunk), dense)
				}
				dense = nil
			} else if card > 0 {
				b.InsertAppend(uint16(chunk), bitmap.NewArrayContainer(detachVals(d.vals[:card])))
				clear(d.vals[:card])
			}
			chunk++
			n, card = 0, 0
		}
	}

	// Short final chunk at stream exhaustion.
	if n > 0 {
		if dense != nil {
			// A dense chunk always has members (the upgrade itself
			// requires them); the guard is defensive.
			if dense.Cardinality() > 0 {
				b.InsertAppend(uint16(chunk), dense)
			}
		} else if card > 0 {
			b.InsertAppend(uint16(chunk), bitmap.NewArrayContainer(detachVals(d.vals[:card])))
		}
	}
	return b, nil
}

// nextWord returns the next little-endian word of the stream. A final
// 1-7 byte tail is zero-padded. ok is false once the stream is
// exhausted.
func (d *Decoder) nextWord() (w uint64, ok bool, err error) {
	n, err := io.ReadFull(d.br, d.tmp[:])
	switch {
	case err == nil:
		d.off += 8
		return binary.LittleEndian.Uint64(d.tmp[:]), true, nil
	case errors.Is(err, io.ErrUnexpectedEOF):
		d.off += int64(n)
		clear(d.tmp[n:])
		return binary.LittleEndian.Uint64(d.tmp[:]), true, nil
	case errors.Is(err, io.EOF):
		return 0, false, nil
	default:
		return 0, false, &ErrStreamRead{Offset: d.off, cause: err}
	}
}

// detachVals copies buffered positions out of the scratch buffer into a
// right-sized slice the emitted container can own.
func detachVals(vals []uint16) []uint16 {
	out := make([]uint16, len(vals))
	copy(out, vals)
	return out
}

// ==============================================================================
// Pool
// ==============================================================================

// DecoderPool is a pool of reusable Decoders. Thread-safe.
type DecoderPool struct {
	pool sync.Pool
}

// NewDecoderPool creates a new pool.
func NewDecoderPool() *DecoderPool {
	return &DecoderPool{
		pool: sync.Pool{
			New: func() any {
				d := NewDecoder()
				d.ownedByPool = true
				return d
			},
		},
	}
}

// Get retrieves a decoder from the pool.
func (p *DecoderPool) Get() *Decoder {
	return p.pool.Get().(*Decoder)
}

// Put returns a decoder to the pool.
func (p *DecoderPool) Put(d *Decoder) {
	if d == nil || !d.ownedByPool {
		return
	}
	d.br.Reset(nil) // drop the stream reference
	p.pool.Put(d)
}
