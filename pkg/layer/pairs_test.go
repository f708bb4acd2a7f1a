package layer

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// TestPairsReflectsSeededState exercises Pairs()/Keys() against a seeded
// layer using testify's require, matching the teacher's sparing use of it
// for assertions that read better with a matcher than a bare if/Fatalf.
func TestPairsReflectsSeededState(t *testing.T) {
	m := NewMemory()
	m.SeedFromPairs([]Pair{
		{Key: []byte("b"), Record: Record{Payload: []byte("2")}},
		{Key: []byte("a"), Record: Record{Payload: []byte("1")}},
	})

	var keys [][]byte
	for k := range m.Keys(true) {
		keys = append(keys, append([]byte(nil), k...))
	}

	require.Len(t, keys, 2, "Keys(true) should yield both seeded keys")
	require.Equal(t, []byte("b"), keys[0], "descending order: b before a")
	require.Equal(t, []byte("a"), keys[1])

	rec, ok, err := m.Get([]byte("a"))
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, []byte("1"), rec.Payload)
}
