package lsm

import (
	"encoding/binary"
	"errors"
	"testing"

	"github.com/arguskv/argus/internal/lsmerr"
)

func TestDefaultMemEngineBasic(t *testing.T) {
	e := NewMem()
	key := []byte{0, 0, 0}
	value := []byte{1, 2, 3}

	if _, ok, err := e.Get(key); err != nil || ok {
		t.Fatalf("Get on empty engine = ok=%v err=%v", ok, err)
	}

	if e.Count() != 0 {
		t.Fatalf("Count() = %d, want 0", e.Count())
	}

	if err := e.Set(key, value); err != nil {
		t.Fatalf("Set: %v", err)
	}

	got, ok, err := e.Get(key)
	if err != nil || !ok || string(got) != string(value) {
		t.Fatalf("Get() = %q, %v, %v; want %q, true, nil", got, ok, err, value)
	}

	if e.Count() != 1 {
		t.Fatalf("Count() = %d, want 1", e.Count())
	}

	deleted, err := e.Del(key)
	if err != nil || !deleted {
		t.Fatalf("Del() = %v, %v; want true, nil", deleted, err)
	}

	if _, ok, err := e.Get(key); err != nil || ok {
		t.Fatalf("Get after Del = ok=%v err=%v, want false", ok, err)
	}

	second, err := e.Del(key)
	if err != nil || second {
		t.Fatalf("second Del() = %v, %v; want false, nil", second, err)
	}
}

func TestEmptyEngine(t *testing.T) {
	e := New()
	key := []byte{0, 0, 0}

	if _, ok, err := e.Get(key); err != nil || ok {
		t.Fatalf("Get on empty stack = %v, %v", ok, err)
	}

	if err := e.Set(key, []byte{1}); !errors.Is(err, lsmerr.ErrNoLayer) {
		t.Fatalf("Set on empty stack = %v, want KindNoLayer", err)
	}

	deleted, err := e.Del(key)
	if err != nil || deleted {
		t.Fatalf("Del on empty stack = %v, %v; want false, nil", deleted, err)
	}

	if e.Count() != 0 {
		t.Fatalf("Count() = %d, want 0", e.Count())
	}
}

func TestAddLayerUnknownName(t *testing.T) {
	_, err := New().AddLayer("not-exist-layer", 0)
	if !errors.Is(err, lsmerr.ErrUnknown) {
		t.Fatalf("AddLayer with bogus name = %v, want KindUnknown", err)
	}
}

func TestAddLayerReturnsIndependentEngine(t *testing.T) {
	base := NewMem()
	if err := base.Set([]byte("a"), []byte("1")); err != nil {
		t.Fatalf("Set: %v", err)
	}

	grown, err := base.AddLayer("mem", 0)
	if err != nil {
		t.Fatalf("AddLayer: %v", err)
	}

	if grown.Depth() != 2 {
		t.Fatalf("grown.Depth() = %d, want 2", grown.Depth())
	}

	if base.Depth() != 1 {
		t.Fatalf("base.Depth() = %d, want 1 (unmodified)", base.Depth())
	}

	// base is untouched and still has its data.
	if got, ok, _ := base.Get([]byte("a")); !ok || string(got) != "1" {
		t.Fatalf("base.Get(a) = %q, %v; want \"1\", true", got, ok)
	}
}

// TestTombstoneShadowing mirrors spec scenario 2: a tombstone in a higher
// layer shadows a live record for the same key in a lower layer.
func TestTombstoneShadowing(t *testing.T) {
	e, err := New().AddLayer("mem", 2)
	if err != nil {
		t.Fatalf("AddLayer: %v", err)
	}

	e, err = e.AddLayer("mem", 0)
	if err != nil {
		t.Fatalf("AddLayer: %v", err)
	}

	mustSet(t, e, []byte("k"), []byte("v1"))
	mustSet(t, e, []byte("k2"), []byte("v2")) // top reaches threshold 2, spills into bottom

	if e.Depth() != 2 {
		t.Fatalf("Depth() = %d, want 2 (no bottom overflow, threshold 0)", e.Depth())
	}

	// bottom now holds k and k2; confirm the engine still reads k from there.
	got, ok, err := e.Get([]byte("k"))
	if err != nil || !ok || string(got) != "v1" {
		t.Fatalf("Get(k) after spill = %q, %v, %v", got, ok, err)
	}

	// re-set k at top, then tombstone it there.
	mustSet(t, e, []byte("k"), []byte("v1-again"))

	deleted, err := e.Del([]byte("k"))
	if err != nil || !deleted {
		t.Fatalf("Del(k) = %v, %v; want true, nil", deleted, err)
	}

	if _, ok, err := e.Get([]byte("k")); err != nil || ok {
		t.Fatalf("Get(k) after top tombstone = ok=%v err=%v, want false (shadowed)", ok, err)
	}
}

func TestSpillAppendsFreshBottomWhenExceeded(t *testing.T) {
	e, err := New().AddLayer("mem", 1)
	if err != nil {
		t.Fatalf("AddLayer: %v", err)
	}

	if e.Depth() != 1 {
		t.Fatalf("Depth() = %d, want 1", e.Depth())
	}

	mustSet(t, e, []byte("a"), []byte("1"))

	if e.Depth() != 2 {
		t.Fatalf("Depth() after overflow = %d, want 2 (fresh bottom appended)", e.Depth())
	}

	// a stays in the top layer; the appended bottom starts empty with the
	// same threshold, ready to receive the next spill.
	got, ok, err := e.Get([]byte("a"))
	if err != nil || !ok || string(got) != "1" {
		t.Fatalf("Get(a) = %q, %v, %v", got, ok, err)
	}
}

func TestStressEngine(t *testing.T) {
	e, err := New().AddLayer("mem", 4)
	if err != nil {
		t.Fatalf("AddLayer: %v", err)
	}

	e, err = e.AddLayer("mem", 0)
	if err != nil {
		t.Fatalf("AddLayer: %v", err)
	}

	const n = 256

	for i := range n {
		key := make([]byte, 4)
		binary.LittleEndian.PutUint32(key, uint32(i))
		mustSet(t, e, key, key)
	}

	for i := range n {
		key := make([]byte, 4)
		binary.LittleEndian.PutUint32(key, uint32(i))

		got, ok, err := e.Get(key)
		if err != nil || !ok || string(got) != string(key) {
			t.Fatalf("Get(%d) = %q, %v, %v", i, got, ok, err)
		}
	}
}

func mustSet(t *testing.T, e *Engine, key, value []byte) {
	t.Helper()

	if err := e.Set(key, value); err != nil {
		t.Fatalf("Set(%q): %v", key, err)
	}
}
