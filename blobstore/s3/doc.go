// Package s3 provides an S3 implementation of the blobstore.BlobStore interface.
//
// # Usage
//
//	store, err := s3.New(ctx, "my-bucket",
//	    s3.WithPrefix("snapshots/"),
//	    s3.WithRegion("us-east-1"),
//	)
//
//	info, err := snapshot.Write(ctx, store, "snap-001.bits.zst", words)
//	bitmaps, err := roargo.DecodeAll(ctx, store, []string{"snap-001.bits.zst"})
//
// # Features
//
//   - Range reads for efficient partial fetches
//   - Streaming multipart uploads with CRC32C integrity checksums
//   - Automatic pagination for listing
//   - Configurable prefix for multi-tenant isolation
//   - Conditional writes on directory buckets via ExpressStore
//   - DynamoDB-backed version registry for concurrent publishers
package s3
