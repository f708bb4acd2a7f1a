package layer

import (
	"errors"
	"testing"

	"github.com/arguskv/argus/internal/lsmerr"
)

func TestNewMemAndAlias(t *testing.T) {
	for _, name := range []string{"mem", "memory"} {
		l, err := New(name)
		if err != nil {
			t.Fatalf("New(%q): %v", name, err)
		}

		if l.Name() != NameMemory {
			t.Fatalf("New(%q).Name() = %q, want %q", name, l.Name(), NameMemory)
		}
	}
}

// TestNewUnknownLayer mirrors spec scenario 7.
func TestNewUnknownLayer(t *testing.T) {
	_, err := New("not-exist")
	if err == nil {
		t.Fatal("expected error for unknown layer name")
	}

	if !errors.Is(err, lsmerr.ErrUnknown) {
		t.Fatalf("expected KindUnknown, got %v", err)
	}
}
