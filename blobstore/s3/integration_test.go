package s3

import (
	"context"
	"crypto/rand"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/roargo"
	"github.com/hupe1980/roargo/blobstore"
	"github.com/hupe1980/roargo/snapshot"
)

func TestIntegration_S3Store(t *testing.T) {
	bucket := os.Getenv("S3_BUCKET")
	if bucket == "" {
		t.Skip("Skipping S3 integration test: S3_BUCKET not set")
	}

	ctx := context.Background()

	// Unique prefix per test run.
	prefix := fmt.Sprintf("test-roargo-%d/", time.Now().UnixNano())

	store, err := New(ctx, bucket, WithPrefix(prefix))
	require.NoError(t, err)

	t.Run("Create and Read", func(t *testing.T) {
		name := "test.blob"
		data := make([]byte, 1024*1024) // 1MB
		rand.Read(data)

		// Create
		w, err := store.Create(ctx, name)
		require.NoError(t, err)
		n, err := w.Write(data)
		require.NoError(t, err)
		assert.Equal(t, len(data), n)
		require.NoError(t, w.Close())

		// List
		blobs, err := store.List(ctx, "")
		require.NoError(t, err)
		assert.Contains(t, blobs, name)

		// Open
		r, err := store.Open(ctx, name)
		require.NoError(t, err)
		assert.Equal(t, int64(len(data)), r.Size())

		// ReadAt
		buf := make([]byte, 100)
		n2, err := r.ReadAt(ctx, buf, 0)
		require.NoError(t, err)
		assert.Equal(t, 100, n2)
		assert.Equal(t, data[:100], buf)

		// ReadAt Offset
		n3, err := r.ReadAt(ctx, buf, 1024)
		require.NoError(t, err)
		assert.Equal(t, 100, n3)
		assert.Equal(t, data[1024:1124], buf)

		// Clean up
		require.NoError(t, store.Delete(ctx, name))
		require.NoError(t, r.Close())
	})

	t.Run("Put with Checksum", func(t *testing.T) {
		name := "checksummed.blob"
		require.NoError(t, store.Put(ctx, name, []byte("123456789")))

		r, err := store.Open(ctx, name)
		require.NoError(t, err)
		assert.Equal(t, int64(9), r.Size())
		require.NoError(t, r.Close())

		require.NoError(t, store.Delete(ctx, name))
	})

	t.Run("Snapshot Round-Trip", func(t *testing.T) {
		name := "snap-001.bits.zst"
		words := []uint64{0xDEADBEEF, 0, 1 << 63, 0xFFFFFFFFFFFFFFFF}

		info, err := snapshot.Write(ctx, store, name, words)
		require.NoError(t, err)
		assert.Equal(t, len(words), info.Words)

		rc, err := snapshot.Open(ctx, store, name)
		require.NoError(t, err)

		got, err := roargo.FromReader(rc)
		require.NoError(t, err)
		require.NoError(t, rc.Close())

		assert.True(t, roargo.EqualWords(words, got))

		require.NoError(t, store.Delete(ctx, name))
	})

	t.Run("NotFound", func(t *testing.T) {
		_, err := store.Open(ctx, "nonexistent")
		assert.ErrorIs(t, err, blobstore.ErrNotFound)
	})
}
