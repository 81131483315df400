package cmdlang

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseKnownCommands(t *testing.T) {
	cases := []struct {
		line string
		want Command
	}{
		{"alloc", Command{Name: "ALLOC"}},
		{"READ 120", Command{Name: "READ", Args: []string{"120"}}},
		{"write 120 hello world", Command{Name: "WRITE", Args: []string{"120", "hello world"}}},
		{"writeroot a whole sentence", Command{Name: "WRITEROOT", Args: []string{"a whole sentence"}}},
		{"put greeting hello there", Command{Name: "PUT", Args: []string{"greeting", "hello there"}}},
		{"  get greeting  ", Command{Name: "GET", Args: []string{"greeting"}}},
		{"ls", Command{Name: "LS"}},
	}
	for _, c := range cases {
		got, err := Parse(c.line)
		require.NoError(t, err, c.line)
		require.Equal(t, c.want, got, c.line)
	}
}

func TestParseRejectsBadArgCounts(t *testing.T) {
	for _, line := range []string{"", "read", "write 1", "alloc extra", "put onlyname"} {
		_, err := Parse(line)
		require.Error(t, err, line)
	}
}

func TestParseRejectsUnknownVerb(t *testing.T) {
	_, err := Parse("frobnicate 1 2 3")
	require.Error(t, err)
}
