// Package layer defines the storage-layer contract used by the LSM engine
// in package lsm, along with its reference in-memory implementation and a
// name-to-layer registry.
//
// A layer is a self-contained key/value mapping. The LSM engine stacks
// layers and is the only thing that interprets cross-layer semantics
// (tombstone shadowing, spill); a layer on its own just stores what it is
// told to store.
package layer

import "iter"

// Record is the value half of a layer's key/value mapping: a payload plus
// a tombstone flag. A tombstone (Deleted == true) preserves its key so it
// continues to shadow the same key in a lower layer; its Payload is
// meaningless to readers once Deleted is true.
type Record struct {
	Payload []byte
	Deleted bool
}

// Pair is a (key, record) tuple as yielded by Layer.Pairs.
type Pair struct {
	Key    []byte
	Record Record
}

// Layer is the capability set every storage layer must offer. The in-memory
// implementation in this package is the only one this module ships, but the
// interface is written so a disk-backed layer can implement it without
// changing the LSM engine above it.
//
// Implementations are not required to be safe for concurrent use; see the
// package-level concurrency notes in package lsm.
type Layer interface {
	// Name returns the stable short identifier for this layer kind, e.g.
	// "mem". Used by the registry (see New) to reconstruct a layer of the
	// same kind later.
	Name() string

	// Open constructs a layer from an external handle such as a file path
	// or connection URI. Layers that have no external representation (the
	// in-memory layer) fail with lsmerr.KindUnsupported.
	Open(uri string) (Layer, error)

	// Set inserts or overwrites the record for key with (payload,
	// deleted=false). Setting a tombstoned key resurrects it.
	Set(key, payload []byte) error

	// Get returns the stored record for key unchanged, including
	// tombstones, and reports whether key was present at all. Interpreting
	// whether a tombstone should shadow a lower layer is the caller's
	// responsibility, not this layer's.
	Get(key []byte) (Record, bool, error)

	// Del tombstones the record for key if it is currently live, and
	// reports whether it did so. Del is idempotent: a key that is already
	// absent or already tombstoned is left unchanged and Del returns false.
	Del(key []byte) (bool, error)

	// SetRecord writes rec verbatim for key, including its Deleted flag,
	// without going through Set's always-live or Del's always-tombstone
	// semantics. Flush uses this to propagate tombstones and live records
	// alike from a source layer into a destination layer.
	SetRecord(key []byte, rec Record) error

	// Erase drops every record, tombstones included, resetting both Count
	// and Capacity to zero.
	Erase() error

	// Flush moves this layer's entire contents — live records and
	// tombstones alike — into dst, then logically empties this layer. dst
	// is expected to be older/colder than the source, so it unconditionally
	// accepts the incoming (newer) state for any key they share.
	Flush(dst Layer) error

	// Count returns the number of records with Deleted == false.
	Count() uint64

	// Capacity returns the number of records including tombstones.
	Capacity() uint64

	// Keys yields keys in descending lexicographic order as of the call.
	// When includeDeleted is false, tombstoned keys are filtered out. The
	// sequence is a consistent snapshot taken at call time.
	Keys(includeDeleted bool) iter.Seq[[]byte]

	// Pairs yields (key, record) tuples in the same descending order as
	// Keys, always including tombstones and the full record.
	Pairs() iter.Seq[Pair]
}
