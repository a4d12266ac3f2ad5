package fs

import (
	"io"
	"os"
)

// File is an open file on the write path of a blob store: sequential
// writes, an explicit durability point, and close. Reads never come
// through here; published blobs are opened read-only via mmap.
type File interface {
	io.WriteCloser

	// Sync flushes the file to stable storage.
	Sync() error
}

// FileSystem abstracts the file operations a local blob write needs, so
// tests can swap in failure-injecting implementations.
type FileSystem interface {
	OpenFile(name string, flag int, perm os.FileMode) (File, error)
	MkdirAll(path string, perm os.FileMode) error
	Remove(name string) error
	Rename(oldpath, newpath string) error
}

// Default is the operating system file system.
var Default FileSystem = osFS{}

type osFS struct{}

func (osFS) OpenFile(name string, flag int, perm os.FileMode) (File, error) {
	return os.OpenFile(name, flag, perm)
}

func (osFS) MkdirAll(path string, perm os.FileMode) error { return os.MkdirAll(path, perm) }
func (osFS) Remove(name string) error                     { return os.Remove(name) }
func (osFS) Rename(oldpath, newpath string) error         { return os.Rename(oldpath, newpath) }
