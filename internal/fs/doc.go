// Package fs abstracts the file system under the local blob store's
// write path so tests can inject failures.
//
// [Default] passes every call through to the operating system. [FaultyFS]
// wraps any [FileSystem] with per-file fault rules and an optional
// store-wide write budget:
//
//	ffs := fs.NewFaultyFS(nil)
//	ffs.AddRule(".tmp-", fs.Fault{FailAfterBytes: 4, Err: errDiskFull})
//	store := blobstore.NewLocalStoreFS(dir, ffs)
//
// A tripped fault surfaces the rule's error from Write, Sync, or Close;
// the store under test is expected to abort the blob and leave nothing
// published.
//
// The interfaces carry no context.Context: local file operations are
// not interruptible at the syscall level, and cancellation of snapshot
// writes happens above the store.
package fs
