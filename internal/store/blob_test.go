package store

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRoundTripVariousLengths(t *testing.T) {
	f := tempStore(t, "roundtrip.verter", Config{MagicBytes: []byte("VERTER__"), PageSize: 16})

	lengths := []int{0, 1, 15, 16, 17, 31, 32, 33, 500, 1024}
	for _, n := range lengths {
		h, err := f.Alloc()
		require.NoError(t, err)
		want := repeat(0x42, n)
		require.NoError(t, f.Write(h, want))
		got, err := f.Read(h)
		require.NoError(t, err)
		require.Equal(t, want, got, "length %d", n)
	}
}

func TestWriteGrowsThenShrinksReusesPages(t *testing.T) {
	f := tempStore(t, "grow_shrink.verter", Config{MagicBytes: []byte("VERTER__"), PageSize: 8})

	h, err := f.Alloc()
	require.NoError(t, err)

	require.NoError(t, f.Write(h, repeat(0x01, 100)))
	sizeAfterGrow, err := f.fileSize()
	require.NoError(t, err)

	require.NoError(t, f.Write(h, repeat(0x02, 4)))
	got, err := f.Read(h)
	require.NoError(t, err)
	require.Equal(t, repeat(0x02, 4), got)

	// Shrinking must not grow the file; the orphaned tail goes on the free
	// list and a subsequent alloc must reuse it rather than extend.
	sizeAfterShrink, err := f.fileSize()
	require.NoError(t, err)
	require.Equal(t, sizeAfterGrow, sizeAfterShrink)

	before := sizeAfterShrink
	_, err = f.Alloc()
	require.NoError(t, err)
	after, err := f.fileSize()
	require.NoError(t, err)
	require.Equal(t, before, after, "alloc right after a shrink must come from the free list")
}

func TestActivePageCountMatchesCeilLenOverPageSize(t *testing.T) {
	f := tempStore(t, "page_count.verter", Config{MagicBytes: []byte("VERTER__"), PageSize: 10})

	h, err := f.Alloc()
	require.NoError(t, err)

	for _, n := range []int{0, 1, 10, 11, 25, 100} {
		require.NoError(t, f.Write(h, repeat(0x09, n)))
		pages := countChainPages(t, f, h)
		want := 1
		if n > 0 {
			want = (n + 9) / 10
		}
		require.Equal(t, want, pages, "length %d", n)
	}
}

func countChainPages(t *testing.T, f *File, handle uint64) int {
	t.Helper()
	n := 0
	ptr := handle
	for {
		hdr, err := f.readPageHeader(ptr)
		require.NoError(t, err)
		n++
		if hdr.tag == tagFinal {
			return n
		}
		ptr = hdr.value
	}
}

func TestReadCorruptedChainWithDeletedMidway(t *testing.T) {
	f := tempStore(t, "corrupt.verter", Config{MagicBytes: []byte("VERTER__"), PageSize: 4})

	h, err := f.Alloc()
	require.NoError(t, err)
	require.NoError(t, f.Write(h, repeat(0x01, 20)))

	// Forcibly corrupt the second page of the chain into DELETED to
	// simulate an invariant violation reachable from a live handle.
	first, err := f.readPageHeader(h)
	require.NoError(t, err)
	require.Equal(t, tagNext, first.tag)
	require.NoError(t, f.writePageHeader(first.value, pageHeader{tag: tagDeleted, value: 0}))

	_, err = f.Read(h)
	require.ErrorIs(t, err, ErrCorruptedFile)
}

func TestFlushDoesNotError(t *testing.T) {
	f := tempStore(t, "flush.verter", DefaultConfig())
	require.NoError(t, f.Flush())
}
