package bitmap

import (
	"math/bits"
	"slices"
)

// ArrayMaxSize is the largest cardinality stored in the array layout.
// A chunk with more set bits uses the fixed-size bitmap layout. The
// value is shared with every other component that reads or writes
// containers; changing it breaks interoperability.
const ArrayMaxSize = 4096

// WordsPerChunk is the number of 64-bit words covering one chunk.
const WordsPerChunk = ChunkBits / 64 // 1024

// ChunkBits is the number of bit positions addressed by a single chunk key.
const ChunkBits = 1 << 16

// MaxKey is the largest valid chunk key.
const MaxKey = 1<<16 - 1

// Container holds the member set of one chunk in one of two layouts:
//
//   - array: an ascending, duplicate-free []uint16 of bit positions.
//     Valid only while the cardinality is at most ArrayMaxSize.
//   - bitmap: exactly WordsPerChunk uint64 words plus an explicitly
//     maintained cardinality. The cardinality always equals the
//     population count of the words; every mutating method preserves
//     that equality.
//
// The layout is discriminated by IsArray. A third run-length layout
// exists in the wider format family; this package never constructs one.
type Container struct {
	// card is the number of set bits. For the array layout it always
	// equals len(array).
	card int

	// array is the sorted value list. nil when the bitmap layout is active.
	array []uint16

	// words is the fixed 1024-word bit vector. nil when the array layout
	// is active.
	words []uint64
}

// NewArrayContainer creates an array container from an ascending,
// duplicate-free value list. The container takes ownership of values.
// Panics if more than ArrayMaxSize values are given.
func NewArrayContainer(values []uint16) *Container {
	if len(values) > ArrayMaxSize {
		panic("bitmap: array container over capacity")
	}
	return &Container{card: len(values), array: values}
}

// NewBitmapContainer creates a bitmap container from a full chunk word
// vector and its cardinality. The container takes ownership of words.
// card must equal the population count of words; this is not verified.
// Panics if words is not exactly WordsPerChunk long.
func NewBitmapContainer(words []uint64, card int) *Container {
	if len(words) != WordsPerChunk {
		panic("bitmap: bitmap container requires exactly 1024 words")
	}
	return &Container{card: card, words: words}
}

// NewDenseContainer creates an empty bitmap-layout container. Used when
// a chunk under construction outgrows the array layout and values are
// added incrementally.
func NewDenseContainer() *Container {
	return &Container{words: make([]uint64, WordsPerChunk)}
}

// IsArray reports whether the array layout is active.
func (c *Container) IsArray() bool {
	return c.words == nil
}

// Cardinality returns the number of set bits.
func (c *Container) Cardinality() int {
	return c.card
}

// Contains reports whether v is a member.
func (c *Container) Contains(v uint16) bool {
	if c.words == nil {
		_, found := slices.BinarySearch(c.array, v)
		return found
	}
	return c.words[v>>6]&(uint64(1)<<(v&63)) != 0
}

// Add sets value v. Returns true if v was newly added. An array
// container that outgrows ArrayMaxSize is converted to the bitmap
// layout in place.
func (c *Container) Add(v uint16) bool {
	if c.words != nil {
		mask := uint64(1) << (v & 63)
		if c.words[v>>6]&mask != 0 {
			return false
		}
		c.words[v>>6] |= mask
		c.card++
		return true
	}

	i, found := slices.BinarySearch(c.array, v)
	if found {
		return false
	}
	if c.card == ArrayMaxSize {
		c.toBitmap()
		c.words[v>>6] |= uint64(1) << (v & 63)
		c.card++
		return true
	}
	c.array = slices.Insert(c.array, i, v)
	c.card++
	return true
}

// SetWord replaces word i of a bitmap container, adjusting the
// cardinality by the population delta. Panics on an array container.
func (c *Container) SetWord(i int, w uint64) {
	if c.words == nil {
		panic("bitmap: SetWord on array container")
	}
	c.card += bits.OnesCount64(w) - bits.OnesCount64(c.words[i])
	c.words[i] = w
}

// ForEach calls fn for every member in ascending order, stopping early
// if fn returns false.
func (c *Container) ForEach(fn func(v uint16) bool) {
	if c.words == nil {
		for _, v := range c.array {
			if !fn(v) {
				return
			}
		}
		return
	}
	for i, word := range c.words {
		base := uint16(i << 6)
		for word != 0 {
			if !fn(base + uint16(bits.TrailingZeros64(word))) {
				return
			}
			word &= word - 1
		}
	}
}

// Clone returns an independent deep copy.
func (c *Container) Clone() *Container {
	out := &Container{card: c.card}
	if c.array != nil {
		out.array = slices.Clone(c.array)
	}
	if c.words != nil {
		out.words = slices.Clone(c.words)
	}
	return out
}

// toBitmap converts the array layout to the bitmap layout. Cardinality
// is unchanged.
func (c *Container) toBitmap() {
	words := make([]uint64, WordsPerChunk)
	for _, v := range c.array {
		words[v>>6] |= uint64(1) << (v & 63)
	}
	c.words = words
	c.array = nil
}
