package snapshot

import (
	"iter"
	"path/filepath"
	"slices"
	"testing"

	"github.com/arguskv/argus/pkg/layer"
)

// TestDumpRestoreRoundTrip covers SPEC_FULL.md §8's snapshot round-trip
// property: Restore(Dump(L)) reproduces the same Pairs() sequence as L,
// including tombstones.
func TestDumpRestoreRoundTrip(t *testing.T) {
	src := layer.NewMemory()

	mustSet(t, src, []byte("a"), []byte("1"))
	mustSet(t, src, []byte("b"), []byte("2"))

	if _, err := src.Del([]byte("b")); err != nil {
		t.Fatalf("Del: %v", err)
	}

	path := filepath.Join(t.TempDir(), "snap.hujson")

	if err := Dump(src, path); err != nil {
		t.Fatalf("Dump: %v", err)
	}

	restored, err := Restore(path)
	if err != nil {
		t.Fatalf("Restore: %v", err)
	}

	wantPairs := collect(src.Pairs())
	gotPairs := collect(restored.Pairs())

	if len(wantPairs) != len(gotPairs) {
		t.Fatalf("pair count = %d, want %d", len(gotPairs), len(wantPairs))
	}

	for i := range wantPairs {
		if string(wantPairs[i].Key) != string(gotPairs[i].Key) ||
			string(wantPairs[i].Record.Payload) != string(gotPairs[i].Record.Payload) ||
			wantPairs[i].Record.Deleted != gotPairs[i].Record.Deleted {
			t.Fatalf("pair %d mismatch: got %+v, want %+v", i, gotPairs[i], wantPairs[i])
		}
	}
}

func TestDumpEmptyLayer(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.hujson")

	if err := Dump(layer.NewMemory(), path); err != nil {
		t.Fatalf("Dump: %v", err)
	}

	restored, err := Restore(path)
	if err != nil {
		t.Fatalf("Restore: %v", err)
	}

	if restored.Count() != 0 {
		t.Fatalf("Count() = %d, want 0", restored.Count())
	}
}

func collect(seq iter.Seq[layer.Pair]) []layer.Pair {
	var out []layer.Pair
	for p := range seq {
		out = append(out, layer.Pair{Key: slices.Clone(p.Key), Record: layer.Record{
			Payload: slices.Clone(p.Record.Payload),
			Deleted: p.Record.Deleted,
		}})
	}

	return out
}

func mustSet(t *testing.T, m *layer.Memory, key, value []byte) {
	t.Helper()

	if err := m.Set(key, value); err != nil {
		t.Fatalf("Set(%q): %v", key, err)
	}
}
