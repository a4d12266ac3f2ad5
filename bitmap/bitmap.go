package bitmap

import (
	"math/bits"
	"slices"
)

// HighBits returns the chunk key of a 32-bit value.
func HighBits(v uint32) uint16 {
	return uint16(v >> 16)
}

// LowBits returns the in-chunk offset of a 32-bit value.
func LowBits(v uint32) uint16 {
	return uint16(v)
}

// Bitmap is a chunked, mixed-representation set of 32-bit integers:
// an ordered sequence of (chunk key, container) pairs with strictly
// increasing, unique keys. A value v is a member iff the container
// keyed HighBits(v) contains LowBits(v). Chunks with no members have
// no entry.
//
// Construction is append-only (InsertAppend) and single-writer: a
// bitmap must not be appended to concurrently, and readers must not
// overlap an in-flight build. Completed bitmaps are safe for
// concurrent reads except GetCardinality on the fast-rank flavor,
// which maintains a lazy cache.
type Bitmap struct {
	keys       []uint16
	containers []*Container

	// fastRank marks the flavor built for rank-heavy read paths. Rank
	// and select queries live in the wider system; the only effect on
	// this package is that total cardinality is served from a cumulative
	// per-container index instead of a full scan. The index is rebuilt
	// lazily after appends.
	fastRank bool
	cumCard  []uint64
	cumDirty bool
}

// New creates an empty bitmap.
func New() *Bitmap {
	return &Bitmap{}
}

// NewFastRank creates an empty bitmap of the fast-rank flavor.
func NewFastRank() *Bitmap {
	return &Bitmap{fastRank: true}
}

// FastRank reports whether this is the fast-rank flavor.
func (b *Bitmap) FastRank() bool {
	return b.fastRank
}

// InsertAppend appends a container under the given chunk key. The key
// must be strictly greater than every existing key and the container
// must be non-empty; violations panic, since they corrupt the chunk
// ordering every lookup relies on.
func (b *Bitmap) InsertAppend(key uint16, c *Container) {
	if c == nil || c.card == 0 {
		panic("bitmap: append of empty container")
	}
	if n := len(b.keys); n > 0 && key <= b.keys[n-1] {
		panic("bitmap: chunk keys must be strictly increasing")
	}
	b.keys = append(b.keys, key)
	b.containers = append(b.containers, c)
	b.cumDirty = true
}

// Get returns the container stored under key, if any.
func (b *Bitmap) Get(key uint16) (*Container, bool) {
	i, found := slices.BinarySearch(b.keys, key)
	if !found {
		return nil, false
	}
	return b.containers[i], true
}

// Contains reports whether v is a member.
func (b *Bitmap) Contains(v uint32) bool {
	c, ok := b.Get(HighBits(v))
	return ok && c.Contains(LowBits(v))
}

// IsEmpty reports whether no values are set.
func (b *Bitmap) IsEmpty() bool {
	return len(b.containers) == 0
}

// ContainerCount returns the number of non-empty chunks.
func (b *Bitmap) ContainerCount() int {
	return len(b.containers)
}

// GetCardinality returns the total number of members.
func (b *Bitmap) GetCardinality() uint64 {
	if b.fastRank {
		b.refreshCumulative()
		if n := len(b.cumCard); n > 0 {
			return b.cumCard[n-1]
		}
		return 0
	}
	var total uint64
	for _, c := range b.containers {
		total += uint64(c.card)
	}
	return total
}

// ForEach calls fn for every member in ascending order, stopping early
// if fn returns false.
func (b *Bitmap) ForEach(fn func(v uint32) bool) {
	for i, c := range b.containers {
		base := uint32(b.keys[i]) << 16
		if c.words == nil {
			for _, v := range c.array {
				if !fn(base | uint32(v)) {
					return
				}
			}
			continue
		}
		for wi, word := range c.words {
			wordBase := base | uint32(wi<<6)
			for word != 0 {
				if !fn(wordBase | uint32(bits.TrailingZeros64(word))) {
					return
				}
				word &= word - 1
			}
		}
	}
}

// Clone returns an independent deep copy.
func (b *Bitmap) Clone() *Bitmap {
	out := &Bitmap{
		keys:       slices.Clone(b.keys),
		containers: make([]*Container, len(b.containers)),
		fastRank:   b.fastRank,
		cumDirty:   true,
	}
	for i, c := range b.containers {
		out.containers[i] = c.Clone()
	}
	return out
}

// Iterator returns an ascending iterator over all members.
func (b *Bitmap) Iterator() *Iterator {
	it := &Iterator{b: b}
	it.advance()
	return it
}

// Iterator walks a bitmap's members in ascending order.
//
//	it := b.Iterator()
//	for it.HasNext() {
//	    v := it.Next()
//	    ...
//	}
type Iterator struct {
	b    *Bitmap
	ci   int    // container cursor
	ai   int    // array-layout value cursor
	wi   int    // bitmap-layout next word index
	word uint64 // unconsumed bits of word wi-1
	next uint32
	ok   bool
}

// HasNext reports whether another member is available.
func (it *Iterator) HasNext() bool {
	return it.ok
}

// Next returns the next member. Valid only after HasNext reports true.
func (it *Iterator) Next() uint32 {
	v := it.next
	it.advance()
	return v
}

func (it *Iterator) advance() {
	for it.ci < len(it.b.containers) {
		c := it.b.containers[it.ci]
		base := uint32(it.b.keys[it.ci]) << 16

		if c.words == nil {
			if it.ai < len(c.array) {
				it.next = base | uint32(c.array[it.ai])
				it.ai++
				it.ok = true
				return
			}
		} else {
			for {
				if it.word != 0 {
					pos := bits.TrailingZeros64(it.word)
					it.word &= it.word - 1
					it.next = base | uint32((it.wi-1)<<6+pos)
					it.ok = true
					return
				}
				if it.wi >= WordsPerChunk {
					break
				}
				it.word = c.words[it.wi]
				it.wi++
			}
		}

		it.ci++
		it.ai, it.wi, it.word = 0, 0, 0
	}
	it.ok = false
}

// refreshCumulative rebuilds the cumulative cardinality index if stale.
func (b *Bitmap) refreshCumulative() {
	if !b.cumDirty && b.cumCard != nil {
		return
	}
	b.cumCard = b.cumCard[:0]
	var total uint64
	for _, c := range b.containers {
		total += uint64(c.card)
		b.cumCard = append(b.cumCard, total)
	}
	b.cumDirty = false
}
