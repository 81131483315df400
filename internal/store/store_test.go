package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// These scenarios are ported from _examples/original_source/src/lib.rs's
// #[test] functions, one to one, translated to Go idiom (t.TempDir instead
// of manual remove_file, require instead of assert_eq!/panic!).

func TestHelloWorld(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hello.verter")

	f, err := Open(path, DefaultConfig())
	require.NoError(t, err)
	data := []byte("Hello, World!")
	require.NoError(t, f.WriteRoot(data))
	require.NoError(t, f.Close())

	f, err = Open(path, DefaultConfig())
	require.NoError(t, err)
	defer f.Close()
	got, err := f.ReadRoot()
	require.NoError(t, err)
	require.Equal(t, data, got)
}

func TestDeletion(t *testing.T) {
	f := tempStore(t, "deletion.verter", DefaultConfig())

	page, err := f.Alloc()
	require.NoError(t, err)
	require.NoError(t, f.Write(page, []byte("Hey there")))
	require.NoError(t, f.Delete(page))

	newPage, err := f.Alloc()
	require.NoError(t, err)
	require.Equal(t, page, newPage, "deleted page should be reused LIFO")
}

func TestTruncation(t *testing.T) {
	path := filepath.Join(t.TempDir(), "truncation.verter")

	f, err := Open(path, DefaultConfig())
	require.NoError(t, err)
	require.NoError(t, f.WriteRoot(repeat(0xAE, 2000)))
	require.NoError(t, f.WriteRoot(repeat(0xBA, 200)))
	require.NoError(t, f.Close())

	fileSize := sizeOf(t, path)

	f, err = Open(path, DefaultConfig())
	require.NoError(t, err)
	_, err = f.Alloc()
	require.NoError(t, err)
	require.NoError(t, f.Close())

	require.Equal(t, fileSize, sizeOf(t, path), "shortened tail pages must be reused, not leave the file larger")
}

func TestMagicBytesMismatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "magic_bytes.verter")

	f, err := Open(path, Config{MagicBytes: []byte("Magic1"), PageSize: 120})
	require.NoError(t, err)
	require.NoError(t, f.Close())

	_, err = Open(path, Config{MagicBytes: []byte("Magic2"), PageSize: 120})
	require.ErrorIs(t, err, ErrInvalidFile)
}

func TestInvalidAndDeletedPointer(t *testing.T) {
	f := tempStore(t, "invalid_pointer.verter", DefaultConfig())

	_, err := f.Read(3)
	require.ErrorIs(t, err, ErrInvalidPointer)

	_, err = f.Read(uint64(f.headerSize()) + 10000*uint64(f.pageStride()))
	require.ErrorIs(t, err, ErrInvalidPointer)

	alloc, err := f.Alloc()
	require.NoError(t, err)
	require.NoError(t, f.Delete(alloc))
	_, err = f.Read(alloc)
	require.ErrorIs(t, err, ErrDeletedPointer)
}

func TestExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "extension.verter")

	f, err := Open(path, DefaultConfig())
	require.NoError(t, err)
	alloc, err := f.Alloc()
	require.NoError(t, err)
	require.NoError(t, f.Close())

	for i := 0; i < 100; i++ {
		size := i * 45
		nextSize := (i + 1) * 45

		f, err := Open(path, DefaultConfig())
		require.NoError(t, err)
		old, err := f.Read(alloc)
		require.NoError(t, err)
		require.Equal(t, repeat(0xFA, size), old)
		require.NoError(t, f.Write(alloc, repeat(0xFA, nextSize)))
		require.NoError(t, f.Close())
	}
}

func repeat(b byte, n int) []byte {
	out := make([]byte, n)
	for i := range out {
		out[i] = b
	}
	return out
}

func sizeOf(t *testing.T, path string) int64 {
	t.Helper()
	info, err := os.Stat(path)
	require.NoError(t, err)
	return info.Size()
}
