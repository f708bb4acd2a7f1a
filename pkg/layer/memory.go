package layer

import (
	"bytes"
	"iter"
	"slices"

	"github.com/arguskv/argus/internal/lsmerr"
)

// NameMemory is the stable registry name for [Memory].
const NameMemory = "mem"

// Memory is the reference in-memory [Layer]: a direct map from key to
// record with no persistence. It is the only concrete layer this module
// ships; everything else in the LSM stack is written against the [Layer]
// interface so a disk-backed layer could stand in for it.
//
// Memory is not safe for concurrent use; see package lsm's concurrency
// notes.
type Memory struct {
	records map[string]Record
	count   uint64 // records with Deleted == false
}

// NewMemory returns an empty in-memory layer.
func NewMemory() *Memory {
	return &Memory{records: make(map[string]Record)}
}

// Name implements [Layer].
func (m *Memory) Name() string { return NameMemory }

// Open implements [Layer]. The in-memory layer has no external
// representation to open, so this always fails with lsmerr.KindUnsupported.
func (m *Memory) Open(_ string) (Layer, error) {
	return nil, lsmerr.Unsupported("layer.open", NameMemory)
}

// Set implements [Layer]. Setting a tombstoned key resurrects it: Deleted
// becomes false, Count rises by one, Capacity is unchanged.
func (m *Memory) Set(key, payload []byte) error {
	k := string(key)

	existing, ok := m.records[k]
	if !ok || existing.Deleted {
		m.count++
	}

	value := make([]byte, len(payload))
	copy(value, payload)

	m.records[k] = Record{Payload: value, Deleted: false}

	return nil
}

// Get implements [Layer].
func (m *Memory) Get(key []byte) (Record, bool, error) {
	rec, ok := m.records[string(key)]
	return rec, ok, nil
}

// Del implements [Layer]. Deleting a key that does not exist, or that is
// already tombstoned, returns false and leaves no trace.
func (m *Memory) Del(key []byte) (bool, error) {
	k := string(key)

	rec, ok := m.records[k]
	if !ok || rec.Deleted {
		return false, nil
	}

	rec.Deleted = true
	m.records[k] = rec
	m.count--

	return true, nil
}

// SetRecord implements [Layer], writing rec verbatim (including its
// tombstone flag) for key.
func (m *Memory) SetRecord(key []byte, rec Record) error {
	k := string(key)

	existing, ok := m.records[k]
	if !rec.Deleted && (!ok || existing.Deleted) {
		m.count++
	} else if rec.Deleted && ok && !existing.Deleted {
		m.count--
	}

	value := make([]byte, len(rec.Payload))
	copy(value, rec.Payload)

	m.records[k] = Record{Payload: value, Deleted: rec.Deleted}

	return nil
}

// Erase implements [Layer].
func (m *Memory) Erase() error {
	m.records = make(map[string]Record)
	m.count = 0

	return nil
}

// Flush implements [Layer] as a key-by-key copy of every record (live and
// tombstoned) into dst, followed by emptying this layer.
func (m *Memory) Flush(dst Layer) error {
	for key, rec := range m.records {
		if err := dst.SetRecord([]byte(key), rec); err != nil {
			return err
		}
	}

	return m.Erase()
}

// Count implements [Layer].
func (m *Memory) Count() uint64 { return m.count }

// Capacity implements [Layer].
func (m *Memory) Capacity() uint64 { return uint64(len(m.records)) }

// Keys implements [Layer].
func (m *Memory) Keys(includeDeleted bool) iter.Seq[[]byte] {
	keys := m.sortedKeys(includeDeleted)

	return func(yield func([]byte) bool) {
		for _, k := range keys {
			if !yield([]byte(k)) {
				return
			}
		}
	}
}

// Pairs implements [Layer].
func (m *Memory) Pairs() iter.Seq[Pair] {
	keys := m.sortedKeys(true)

	return func(yield func(Pair) bool) {
		for _, k := range keys {
			rec := m.records[k]
			if !yield(Pair{Key: []byte(k), Record: rec}) {
				return
			}
		}
	}
}

// SeedFromPairs replaces this layer's entire contents with pairs in one
// call, preserving each pair's Deleted flag. It supplements Set for bulk
// loading (tests, benchmarks, snapshot restore) and is grounded in the
// original implementation's MemoryLayer::save bulk loader; it is not part
// of the wire/text format.
func (m *Memory) SeedFromPairs(pairs []Pair) {
	m.records = make(map[string]Record, len(pairs))
	m.count = 0

	for _, p := range pairs {
		value := make([]byte, len(p.Record.Payload))
		copy(value, p.Record.Payload)

		m.records[string(p.Key)] = Record{Payload: value, Deleted: p.Record.Deleted}

		if !p.Record.Deleted {
			m.count++
		}
	}
}

func (m *Memory) sortedKeys(includeDeleted bool) []string {
	keys := make([]string, 0, len(m.records))

	for k, rec := range m.records {
		if !includeDeleted && rec.Deleted {
			continue
		}

		keys = append(keys, k)
	}

	slices.SortFunc(keys, func(a, b string) int {
		return bytes.Compare([]byte(b), []byte(a))
	})

	return keys
}

var _ Layer = (*Memory)(nil)
