package bitmap

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestContainer_ArrayBasics(t *testing.T) {
	c := NewArrayContainer([]uint16{1, 3, 100, 65535})

	require.True(t, c.IsArray())
	require.Equal(t, 4, c.Cardinality())

	require.True(t, c.Contains(1))
	require.True(t, c.Contains(3))
	require.True(t, c.Contains(100))
	require.True(t, c.Contains(65535))
	require.False(t, c.Contains(0))
	require.False(t, c.Contains(2))
	require.False(t, c.Contains(101))

	var got []uint16
	c.ForEach(func(v uint16) bool {
		got = append(got, v)
		return true
	})
	require.Equal(t, []uint16{1, 3, 100, 65535}, got)
}

func TestContainer_ArrayOverCapacityPanics(t *testing.T) {
	values := make([]uint16, ArrayMaxSize+1)
	for i := range values {
		values[i] = uint16(i)
	}
	require.Panics(t, func() { NewArrayContainer(values) })
}

func TestContainer_Add(t *testing.T) {
	c := NewArrayContainer(nil)

	require.True(t, c.Add(10))
	require.True(t, c.Add(5))
	require.False(t, c.Add(10)) // duplicate
	require.Equal(t, 2, c.Cardinality())

	var got []uint16
	c.ForEach(func(v uint16) bool {
		got = append(got, v)
		return true
	})
	require.Equal(t, []uint16{5, 10}, got, "values stay sorted after out-of-order adds")
}

func TestContainer_Add_ConvertsToBitmapAtCapacity(t *testing.T) {
	c := NewArrayContainer(nil)
	for i := 0; i < ArrayMaxSize; i++ {
		require.True(t, c.Add(uint16(i)))
	}
	require.True(t, c.IsArray())
	require.Equal(t, ArrayMaxSize, c.Cardinality())

	// One more value forces the bitmap layout.
	require.True(t, c.Add(60000))
	require.False(t, c.IsArray())
	require.Equal(t, ArrayMaxSize+1, c.Cardinality())

	for i := 0; i < ArrayMaxSize; i++ {
		require.True(t, c.Contains(uint16(i)))
	}
	require.True(t, c.Contains(60000))
	require.False(t, c.Contains(ArrayMaxSize))

	// Adds keep working on the new layout.
	require.False(t, c.Add(60000))
	require.True(t, c.Add(60001))
	require.Equal(t, ArrayMaxSize+2, c.Cardinality())
}

func TestContainer_DenseCardinalityTracksWords(t *testing.T) {
	c := NewDenseContainer()
	require.False(t, c.IsArray())
	require.Equal(t, 0, c.Cardinality())

	c.SetWord(0, 0b1010)
	require.Equal(t, 2, c.Cardinality())
	require.True(t, c.Contains(1))
	require.True(t, c.Contains(3))
	require.False(t, c.Contains(0))

	// Replacing a word adjusts by the popcount delta.
	c.SetWord(0, 0xFF)
	require.Equal(t, 8, c.Cardinality())

	c.SetWord(1023, 1<<63)
	require.Equal(t, 9, c.Cardinality())
	require.True(t, c.Contains(65535))

	c.SetWord(0, 0)
	require.Equal(t, 1, c.Cardinality())
}

func TestContainer_SetWordOnArrayPanics(t *testing.T) {
	c := NewArrayContainer([]uint16{1})
	require.Panics(t, func() { c.SetWord(0, 1) })
}

func TestContainer_NewBitmapContainer(t *testing.T) {
	words := make([]uint64, WordsPerChunk)
	words[0] = 0b11
	words[512] = 1
	c := NewBitmapContainer(words, 3)

	require.False(t, c.IsArray())
	require.Equal(t, 3, c.Cardinality())
	require.True(t, c.Contains(0))
	require.True(t, c.Contains(1))
	require.True(t, c.Contains(512*64))

	require.Panics(t, func() { NewBitmapContainer(make([]uint64, 10), 0) })
}

func TestContainer_ForEachEarlyStop(t *testing.T) {
	c := NewDenseContainer()
	for i := 0; i < 100; i++ {
		c.Add(uint16(i * 7))
	}

	seen := 0
	c.ForEach(func(v uint16) bool {
		seen++
		return seen < 10
	})
	require.Equal(t, 10, seen)
}

func TestContainer_Clone(t *testing.T) {
	a := NewArrayContainer([]uint16{1, 2, 3})
	b := a.Clone()
	b.Add(4)
	require.Equal(t, 3, a.Cardinality())
	require.Equal(t, 4, b.Cardinality())
	require.False(t, a.Contains(4))

	d := NewDenseContainer()
	d.SetWord(0, 0xF0)
	e := d.Clone()
	e.SetWord(0, 0)
	require.Equal(t, 4, d.Cardinality())
	require.Equal(t, 0, e.Cardinality())
}
