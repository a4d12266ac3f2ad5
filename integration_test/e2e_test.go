package integration_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/roargo"
	"github.com/hupe1980/roargo/blobstore"
	"github.com/hupe1980/roargo/internal/cache"
	"github.com/hupe1980/roargo/snapshot"
	"github.com/hupe1980/roargo/util"
)

func TestE2E_SnapshotPipelineRestart(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	// 1. Produce snapshots in every codec
	store := blobstore.NewLocalStore(dir)
	rng := util.NewRNG(7)

	inputs := make(map[string][]uint64)
	for i, suffix := range []string{".bits", ".bits.zst", ".bits.lz4"} {
		name := fmt.Sprintf("snap-%03d%s", i, suffix)
		words := rng.GenerateRandomWords((i+1)*1024, 0.05)
		inputs[name] = words

		info, err := snapshot.Write(ctx, store, name, words)
		require.NoError(t, err)
		require.Equal(t, len(words), info.Words)
	}

	// 2. A fresh store over the same directory sees everything
	reopened := blobstore.NewLocalStore(dir)
	names, err := reopened.List(ctx, "")
	require.NoError(t, err)
	require.Len(t, names, len(inputs))

	// 3. Bulk decode and verify against the flat inputs
	bitmaps, err := roargo.DecodeAll(ctx, reopened, names)
	require.NoError(t, err)

	for i, name := range names {
		require.True(t, roargo.EqualWords(inputs[name], bitmaps[i]), "snapshot %s diverged", name)
	}
}

func TestE2E_CachedRemoteDecode(t *testing.T) {
	ctx := context.Background()

	// MemoryStore stands in for a remote object store.
	remote := blobstore.NewMemoryStore()
	rng := util.NewRNG(11)
	words := rng.GenerateRandomWords(8*1024, 0.1)

	_, err := snapshot.Write(ctx, remote, "hot.bits.zst", words)
	require.NoError(t, err)

	blockCache := cache.NewShardedLRUBlockCache(32 << 20)
	cached := blobstore.NewCachingStore(remote, blockCache, 64*1024)

	// Decode the same snapshot repeatedly through the cache.
	for i := 0; i < 3; i++ {
		rc, err := snapshot.Open(ctx, cached, "hot.bits.zst")
		require.NoError(t, err)

		got, err := roargo.FromReader(rc)
		require.NoError(t, err)
		require.NoError(t, rc.Close())

		assert.True(t, roargo.EqualWords(words, got))
	}

	// Repeat decodes are served from RAM.
	hits, _ := blockCache.Stats()
	assert.Greater(t, hits, int64(0))
}
