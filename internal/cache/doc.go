// Package cache provides LRU caching for blob blocks.
//
// Remote snapshot stores pay a network round trip per read. The block
// cache keeps recently fetched blocks in RAM so a hot set of snapshots
// can be re-decoded without touching the backend again.
//
// ShardedLRUBlockCache distributes entries across 64 shards hashed by
// (path, block), keeping lock contention low when batch decoders fetch
// many blobs in parallel. Each shard is a plain mutex-guarded LRU with
// a byte-size budget.
package cache
