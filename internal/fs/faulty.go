package fs

import (
	"errors"
	"os"
	"strings"
	"sync"
)

// ErrInjected is returned by injected faults that carry no error of
// their own.
var ErrInjected = errors.New("injected fault")

// Fault describes the failures injected into one file. The zero value
// injects nothing.
type Fault struct {
	// FailAfterBytes fails any write that would push the file past this
	// many bytes. Zero or negative disables the write fault.
	FailAfterBytes int64

	// FailOnSync fails every Sync call.
	FailOnSync bool

	// FailOnClose fails Close. The underlying file is still closed.
	FailOnClose bool

	// Err is the error surfaced by this rule's faults. Nil means
	// ErrInjected.
	Err error
}

// FaultyFS wraps a FileSystem and injects write, sync, and close
// failures into matching files. The blob store tests use it to prove
// that a failed snapshot write never publishes a name.
type FaultyFS struct {
	FS FileSystem

	mu      sync.Mutex
	rules   []rule
	budget  int64 // store-wide write budget, negative = unlimited
	written int64 // bytes accepted across all files
}

type rule struct {
	pattern string
	fault   Fault
}

// NewFaultyFS wraps fsys, or the OS file system when nil. A fresh
// FaultyFS injects nothing until rules or a write budget are added.
func NewFaultyFS(fsys FileSystem) *FaultyFS {
	if fsys == nil {
		fsys = Default
	}
	return &FaultyFS{FS: fsys, budget: -1}
}

// AddRule injects fault into every file whose path contains pattern.
// When several rules match a file, the one added last wins.
func (f *FaultyFS) AddRule(pattern string, fault Fault) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rules = append(f.rules, rule{pattern: pattern, fault: fault})
}

// SetWriteBudget fails every write, on every file, once the total bytes
// written through this file system would exceed n. Negative n removes
// the budget.
func (f *FaultyFS) SetWriteBudget(n int64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.budget = n
}

// BytesWritten returns the total bytes accepted so far.
func (f *FaultyFS) BytesWritten() int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.written
}

func (f *FaultyFS) OpenFile(name string, flag int, perm os.FileMode) (File, error) {
	file, err := f.FS.OpenFile(name, flag, perm)
	if err != nil {
		return nil, err
	}

	f.mu.Lock()
	var fault Fault
	for _, r := range f.rules {
		if strings.Contains(name, r.pattern) {
			fault = r.fault
		}
	}
	f.mu.Unlock()

	return &faultyFile{file: file, fs: f, fault: fault}, nil
}

func (f *FaultyFS) MkdirAll(path string, perm os.FileMode) error {
	return f.FS.MkdirAll(path, perm)
}

func (f *FaultyFS) Remove(name string) error {
	return f.FS.Remove(name)
}

func (f *FaultyFS) Rename(oldpath, newpath string) error {
	return f.FS.Rename(oldpath, newpath)
}

// consume charges n bytes against the write budget, reporting false
// once the budget is exhausted.
func (f *FaultyFS) consume(n int64) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.budget >= 0 && f.written+n > f.budget {
		return false
	}
	f.written += n
	return true
}

type faultyFile struct {
	file    File
	fs      *FaultyFS
	fault   Fault
	written int64
}

func (ff *faultyFile) injected() error {
	if ff.fault.Err != nil {
		return ff.fault.Err
	}
	return ErrInjected
}

func (ff *faultyFile) Write(p []byte) (int, error) {
	if ff.fault.FailAfterBytes > 0 && ff.written+int64(len(p)) > ff.fault.FailAfterBytes {
		return 0, ff.injected()
	}
	if !ff.fs.consume(int64(len(p))) {
		return 0, ErrInjected
	}
	n, err := ff.file.Write(p)
	ff.written += int64(n)
	return n, err
}

func (ff *faultyFile) Sync() error {
	if ff.fault.FailOnSync {
		return ff.injected()
	}
	return ff.file.Sync()
}

func (ff *faultyFile) Close() error {
	err := ff.file.Close()
	if ff.fault.FailOnClose {
		return ff.injected()
	}
	return err
}
