package engine

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"verter/internal/store"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	path := filepath.Join(t.TempDir(), "engine.verter")
	f, err := store.Open(path, store.DefaultConfig())
	require.NoError(t, err)
	e := New(f)
	t.Cleanup(func() { _ = e.Close() })
	return e
}

func TestEngineAllocWriteReadDelete(t *testing.T) {
	e := newTestEngine(t)

	h, err := e.Alloc()
	require.NoError(t, err)
	require.NoError(t, e.Write(h, []byte("payload")))

	got, err := e.Read(h)
	require.NoError(t, err)
	require.Equal(t, []byte("payload"), got)

	st, err := e.Stat(h)
	require.NoError(t, err)
	require.Equal(t, 7, st.LengthBytes)

	require.NoError(t, e.Delete(h))
	_, err = e.Read(h)
	require.Error(t, err)
}

func TestEngineRootRoundTrip(t *testing.T) {
	e := newTestEngine(t)
	require.NoError(t, e.WriteRoot([]byte("root data")))
	got, err := e.ReadRoot()
	require.NoError(t, err)
	require.Equal(t, []byte("root data"), got)
}

func TestEngineDirectoryPassthrough(t *testing.T) {
	e := newTestEngine(t)

	_, err := e.Put("alpha", []byte("one"))
	require.NoError(t, err)
	_, err = e.Put("beta", []byte("two"))
	require.NoError(t, err)

	names, err := e.List()
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"alpha", "beta"}, names)

	got, err := e.Get("alpha")
	require.NoError(t, err)
	require.Equal(t, []byte("one"), got)

	require.NoError(t, e.Remove("alpha"))
	_, err = e.Get("alpha")
	require.Error(t, err)
}
