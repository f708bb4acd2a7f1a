package layer

import "github.com/arguskv/argus/internal/lsmerr"

// New constructs a fresh layer for the given registry name. Recognized
// names are "mem" and its alias "memory", both producing a fresh [Memory].
// Any other name fails with lsmerr.KindUnknown.
//
// New is a pure function: it holds no state and is safe to call
// concurrently. Adding a new layer kind means adding a case here; it never
// requires changing package lsm.
func New(name string) (Layer, error) {
	switch name {
	case NameMemory, "memory":
		return NewMemory(), nil
	default:
		return nil, lsmerr.Unknown("layer.new", name)
	}
}
