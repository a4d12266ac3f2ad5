package fs

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_WritePath(t *testing.T) {
	tmp := t.TempDir()

	dir := filepath.Join(tmp, "ns")
	require.NoError(t, Default.MkdirAll(dir, 0o755))

	path := filepath.Join(dir, "snap.bits")
	f, err := Default.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_EXCL, 0o644)
	require.NoError(t, err)

	_, err = f.Write([]byte("hello"))
	require.NoError(t, err)
	require.NoError(t, f.Sync())
	require.NoError(t, f.Close())

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, int64(5), info.Size())

	renamed := filepath.Join(dir, "snap-final.bits")
	require.NoError(t, Default.Rename(path, renamed))
	require.NoError(t, Default.Remove(renamed))

	_, err = os.Stat(renamed)
	assert.True(t, os.IsNotExist(err))
}

func TestFaultyFS_WriteBudget(t *testing.T) {
	tmp := t.TempDir()
	ffs := NewFaultyFS(nil)
	ffs.SetWriteBudget(5)

	f, err := ffs.OpenFile(filepath.Join(tmp, "snap.bits"), os.O_RDWR|os.O_CREATE, 0o644)
	require.NoError(t, err)
	defer f.Close()

	n, err := f.Write([]byte("hello"))
	require.NoError(t, err)
	assert.Equal(t, 5, n)

	_, err = f.Write([]byte("!"))
	require.ErrorIs(t, err, ErrInjected)

	assert.Equal(t, int64(5), ffs.BytesWritten())
}

func TestFaultyFS_RuleMatching(t *testing.T) {
	tmp := t.TempDir()
	errDiskFull := errors.New("disk full")

	ffs := NewFaultyFS(nil)
	ffs.AddRule(".tmp-", Fault{FailAfterBytes: 4, Err: errDiskFull})

	// A file outside the rule writes freely.
	clean, err := ffs.OpenFile(filepath.Join(tmp, "other.bits"), os.O_RDWR|os.O_CREATE, 0o644)
	require.NoError(t, err)
	_, err = clean.Write([]byte("plenty of bytes"))
	require.NoError(t, err)
	require.NoError(t, clean.Close())

	// A matching file fails once it crosses the threshold.
	faulty, err := ffs.OpenFile(filepath.Join(tmp, ".tmp-123"), os.O_RDWR|os.O_CREATE, 0o644)
	require.NoError(t, err)
	defer faulty.Close()

	_, err = faulty.Write([]byte("1234"))
	require.NoError(t, err)
	_, err = faulty.Write([]byte("5"))
	require.ErrorIs(t, err, errDiskFull)
}

func TestFaultyFS_LastRuleWins(t *testing.T) {
	tmp := t.TempDir()
	errFirst := errors.New("first")
	errSecond := errors.New("second")

	ffs := NewFaultyFS(nil)
	ffs.AddRule("snap", Fault{FailAfterBytes: 1, Err: errFirst})
	ffs.AddRule("snap", Fault{FailAfterBytes: 1, Err: errSecond})

	f, err := ffs.OpenFile(filepath.Join(tmp, "snap.bits"), os.O_RDWR|os.O_CREATE, 0o644)
	require.NoError(t, err)
	defer f.Close()

	_, err = f.Write([]byte("xx"))
	require.ErrorIs(t, err, errSecond)
}

func TestFaultyFS_SyncAndCloseFaults(t *testing.T) {
	tmp := t.TempDir()
	errSync := errors.New("sync failed")

	ffs := NewFaultyFS(nil)
	ffs.AddRule("sync", Fault{FailOnSync: true, Err: errSync})
	ffs.AddRule("close", Fault{FailOnClose: true})

	// A sync fault leaves writes untouched.
	f, err := ffs.OpenFile(filepath.Join(tmp, "sync.bits"), os.O_RDWR|os.O_CREATE, 0o644)
	require.NoError(t, err)
	_, err = f.Write([]byte("written fine"))
	require.NoError(t, err)
	require.ErrorIs(t, f.Sync(), errSync)
	require.NoError(t, f.Close())

	f, err = ffs.OpenFile(filepath.Join(tmp, "close.bits"), os.O_RDWR|os.O_CREATE, 0o644)
	require.NoError(t, err)
	require.NoError(t, f.Sync())
	require.ErrorIs(t, f.Close(), ErrInjected)
}
