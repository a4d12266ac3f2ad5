package roargo

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/roargo/bitmap"
	"github.com/hupe1980/roargo/blobstore"
	"github.com/hupe1980/roargo/snapshot"
)

// DecodeAll opens the named snapshots from store and decodes each into a
// compressed bitmap, fanning out across WithConcurrency workers (default
// GOMAXPROCS). Results are returned in the order of names.
//
// Decoders are pooled across workers, so steady-state allocation stays
// flat regardless of how many snapshots a call covers. Opens can be
// throttled with WithRateLimiter when store is a shared object store.
//
// The first failure cancels the remaining opens and is returned wrapped
// with the snapshot name; bitmaps decoded before the failure are
// discarded.
func DecodeAll(ctx context.Context, store blobstore.BlobStore, names []string, optFns ...Option) ([]*bitmap.Bitmap, error) {
	o := applyOptions(optFns)

	start := time.Now()

	results := make([]*bitmap.Bitmap, len(names))

	var failed atomic.Int64

	pool := NewDecoderPool()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.concurrency)

	for i, name := range names {
		g.Go(func() error {
			if o.rateLimiter != nil {
				if err := o.rateLimiter.Wait(gctx); err != nil {
					failed.Add(1)
					return err
				}
			}

			rc, err := snapshot.Open(gctx, store, name)
			if err != nil {
				failed.Add(1)
				return fmt.Errorf("open snapshot %q: %w", name, err)
			}

			d := pool.Get()
			b, err := d.decodeInPlace(rc, &o)
			pool.Put(d)

			if cerr := rc.Close(); cerr != nil && err == nil {
				err = cerr
			}

			if err != nil {
				failed.Add(1)
				return fmt.Errorf("decode snapshot %q: %w", name, err)
			}

			// Each goroutine writes a distinct index, so no lock is needed.
			results[i] = b

			return nil
		})
	}

	err := g.Wait()

	o.metricsCollector.RecordBatchDecode(len(names), int(failed.Load()), time.Since(start))
	o.logger.LogBatchDecode(ctx, len(names), int(failed.Load()))

	if err != nil {
		return nil, err
	}

	return results, nil
}
