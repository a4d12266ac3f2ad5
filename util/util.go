package util

import (
	"math/rand"
	"slices"

	"github.com/bits-and-blooms/bitset"
)

// RNG struct encapsulates the random number generator and seed.
type RNG struct {
	rand *rand.Rand
	seed int64
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)), // nolint gosec
		seed: seed,
	}
}

// GenerateRandomWords generates a word array of the given length where
// each bit is set with probability density.
func (r *RNG) GenerateRandomWords(num int, density float64) []uint64 {
	words := make([]uint64, num)
	for i := range words {
		var w uint64
		for b := 0; b < 64; b++ {
			if r.rand.Float64() < density {
				w |= 1 << b
			}
		}
		words[i] = w
	}

	return words
}

// GenerateRandomBitSet generates a bit set over [0, universe) where each
// bit is set with probability density.
func (r *RNG) GenerateRandomBitSet(universe uint, density float64) *bitset.BitSet {
	bs := bitset.New(universe)
	for v := uint(0); v < universe; v++ {
		if r.rand.Float64() < density {
			bs.Set(v)
		}
	}

	return bs
}

// GenerateRandomValues generates n distinct ascending values drawn from
// [0, universe).
func (r *RNG) GenerateRandomValues(n int, universe uint32) []uint32 {
	seen := make(map[uint32]struct{}, n)
	for len(seen) < n {
		seen[uint32(r.rand.Int63n(int64(universe)))] = struct{}{}
	}

	values := make([]uint32, 0, n)
	for v := range seen {
		values = append(values, v)
	}
	slices.Sort(values)

	return values
}
