package directory

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"verter/internal/store"
)

func openTestFile(t *testing.T) *store.File {
	t.Helper()
	path := filepath.Join(t.TempDir(), "dir.verter")
	f, err := store.Open(path, store.DefaultConfig())
	require.NoError(t, err)
	t.Cleanup(func() { _ = f.Close() })
	return f
}

func TestPutGetDelete(t *testing.T) {
	d := Open(openTestFile(t))

	_, err := d.Put("greeting", []byte("hello"))
	require.NoError(t, err)

	got, err := d.Get("greeting")
	require.NoError(t, err)
	require.Equal(t, []byte("hello"), got)

	require.NoError(t, d.Delete("greeting"))
	_, err = d.Get("greeting")
	require.Error(t, err)
}

func TestPutOverwriteReusesHandle(t *testing.T) {
	d := Open(openTestFile(t))

	h1, err := d.Put("k", []byte("v1"))
	require.NoError(t, err)
	h2, err := d.Put("k", []byte("a much longer value than before"))
	require.NoError(t, err)
	require.Equal(t, h1, h2)

	got, err := d.Get("k")
	require.NoError(t, err)
	require.Equal(t, []byte("a much longer value than before"), got)
}

func TestListReturnsAllNames(t *testing.T) {
	d := Open(openTestFile(t))

	for _, name := range []string{"a", "b", "c"} {
		_, err := d.Put(name, []byte(name))
		require.NoError(t, err)
	}

	names, err := d.List()
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"a", "b", "c"}, names)
}

func TestGetUnknownNameErrors(t *testing.T) {
	d := Open(openTestFile(t))
	_, err := d.Get("missing")
	require.Error(t, err)
}

func TestDirectorySurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "persist.verter")

	f, err := store.Open(path, store.DefaultConfig())
	require.NoError(t, err)
	d := Open(f)
	_, err = d.Put("name", []byte("payload"))
	require.NoError(t, err)
	require.NoError(t, f.Close())

	f, err = store.Open(path, store.DefaultConfig())
	require.NoError(t, err)
	defer f.Close()
	d = Open(f)
	got, err := d.Get("name")
	require.NoError(t, err)
	require.Equal(t, []byte("payload"), got)
}
