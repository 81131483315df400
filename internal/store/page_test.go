package store

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHeaderEncodeDecodeRoundTrip(t *testing.T) {
	cases := []pageHeader{
		{tag: tagNext, value: 0},
		{tag: tagNext, value: 123456},
		{tag: tagFinal, value: 0},
		{tag: tagFinal, value: 120},
		{tag: tagDeleted, value: 0},
		{tag: tagDeleted, value: 98765432},
	}
	for _, c := range cases {
		word := encodeHeader(c)
		got := decodeHeader(word)
		require.Equal(t, c, got)
	}
}

func TestDecodeHeaderReservedTagIsNotFoldedIntoDeleted(t *testing.T) {
	word := uint64(3)<<tagShift | 42
	got := decodeHeader(word)
	require.Equal(t, tagReserved, got.tag)
	require.Equal(t, uint64(42), got.value)
}

func TestEncodeHeaderRefusesReservedTag(t *testing.T) {
	require.Panics(t, func() {
		encodeHeader(pageHeader{tag: tagReserved, value: 0})
	})
}

func TestEncodeHeaderRefusesOverflowingValue(t *testing.T) {
	require.Panics(t, func() {
		encodeHeader(pageHeader{tag: tagFinal, value: uint64(1) << 62})
	})
}

func tempStore(t *testing.T, name string, cfg Config) *File {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	f, err := Open(path, cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = f.Close() })
	return f
}
