// Package lsm implements the multi-layer LSM-tree engine: a stack of
// storage layers (package layer) where writes land in the top layer and
// spill, on a capacity trigger, into the layer below; reads walk the stack
// top-down until a record is found; deletes are tombstoned so lower layers
// stay shadowed rather than losing data.
package lsm

import (
	"fmt"

	"github.com/arguskv/argus/internal/lsmerr"
	"github.com/arguskv/argus/pkg/layer"
)

// entry pairs one stacked layer with its spill threshold. threshold == 0
// means unbounded: this layer never spills.
type entry struct {
	layer     layer.Layer
	threshold uint64
}

// Engine is an ordered stack of layers, head (index 0) is the newest/top
// layer, tail is the coldest. Engine is not safe for concurrent use; see
// the package-level concurrency notes in spec.md §5.
type Engine struct {
	stack []entry
}

// New returns an engine with an empty stack. Set fails with
// lsmerr.KindNoLayer until a layer is added via AddLayer.
func New() *Engine {
	return &Engine{}
}

// NewMem is a convenience constructor that returns an engine with a single
// unbounded in-memory layer, equivalent to New().AddLayer("mem", 0).
func NewMem() *Engine {
	e, err := New().AddLayer("mem", 0)
	if err != nil {
		// "mem" is always resolvable; this cannot happen.
		panic(err)
	}

	return e
}

// AddLayer returns a new engine whose stack is freshly rebuilt from this
// engine's (name, threshold) configuration plus a freshly constructed
// layer of the given kind appended at the bottom. The current engine is
// left untouched.
//
// Rebuilding means every layer in the returned stack — including ones that
// existed before this call — is a brand-new, empty instance: AddLayer
// revalidates that every existing layer kind is still resolvable by the
// registry and reconstructs it, it does not carry forward stored records.
// This matches the reference implementation's rebuild semantics; call
// AddLayer while shaping an engine's configuration, before writing data
// you need to keep.
func (e *Engine) AddLayer(name string, threshold uint64) (*Engine, error) {
	rebuilt := make([]entry, 0, len(e.stack)+1)

	for _, old := range e.stack {
		l, err := layer.New(old.layer.Name())
		if err != nil {
			return nil, err
		}

		rebuilt = append(rebuilt, entry{layer: l, threshold: old.threshold})
	}

	l, err := layer.New(name)
	if err != nil {
		return nil, err
	}

	rebuilt = append(rebuilt, entry{layer: l, threshold: threshold})

	return &Engine{stack: rebuilt}, nil
}

// Get walks the stack top to bottom and returns the payload from the first
// layer that contains key. A tombstone found along the way shadows any
// live record below it, so Get returns (nil, false, nil) rather than
// continuing the walk.
func (e *Engine) Get(key []byte) ([]byte, bool, error) {
	for _, en := range e.stack {
		rec, ok, err := en.layer.Get(key)
		if err != nil {
			return nil, false, fmt.Errorf("lsm.get: %w", err)
		}

		if !ok {
			continue
		}

		if rec.Deleted {
			return nil, false, nil
		}

		return rec.Payload, true, nil
	}

	return nil, false, nil
}

// Set writes key/payload to the top layer only, then runs the spill
// policy. It fails with lsmerr.KindNoLayer if the stack is empty.
func (e *Engine) Set(key, payload []byte) error {
	if len(e.stack) == 0 {
		return lsmerr.NoLayer("lsm.set")
	}

	if err := e.stack[0].layer.Set(key, payload); err != nil {
		return fmt.Errorf("lsm.set: %w", err)
	}

	if err := e.spill(); err != nil {
		return fmt.Errorf("lsm.set: spill: %w", err)
	}

	return nil
}

// Del tombstones key in the top layer only and returns the top layer's Del
// result. If the stack is empty, Del returns (false, nil) rather than an
// error.
func (e *Engine) Del(key []byte) (bool, error) {
	if len(e.stack) == 0 {
		return false, nil
	}

	deleted, err := e.stack[0].layer.Del(key)
	if err != nil {
		return false, fmt.Errorf("lsm.del: %w", err)
	}

	return deleted, nil
}

// Count sums Count() across every layer in the stack. This over-counts
// keys present in more than one layer; it is documented behavior, not a
// correctness claim about the number of distinct live keys.
func (e *Engine) Count() uint64 {
	var total uint64
	for _, en := range e.stack {
		total += en.layer.Count()
	}

	return total
}

// Depth returns the number of layers currently in the stack.
func (e *Engine) Depth() int {
	return len(e.stack)
}

// spill walks the stack from top toward bottom, flushing any layer whose
// count has reached its (non-zero) threshold into the layer below it, and
// cascades the check into the newly-filled layer. After reaching the
// bottom, if the bottom layer still exceeds its (non-zero) threshold, a
// fresh layer of the same kind and threshold is appended below it.
//
// The former bottom layer is not flushed into the freshly appended layer
// within the same call, so it stays at or over its threshold until a later
// spill walk reaches it; when it is the top layer, that is the next Set.
// The freshly appended bottom layer starts empty.
func (e *Engine) spill() error {
	i := 0
	for i < len(e.stack)-1 {
		cur := e.stack[i]

		if cur.threshold == 0 || cur.layer.Count() < cur.threshold {
			break
		}

		next := e.stack[i+1]
		if err := cur.layer.Flush(next.layer); err != nil {
			return err
		}

		i++
	}

	bottom := e.stack[len(e.stack)-1]
	if bottom.threshold != 0 && bottom.layer.Count() >= bottom.threshold {
		fresh, err := layer.New(bottom.layer.Name())
		if err != nil {
			return err
		}

		e.stack = append(e.stack, entry{layer: fresh, threshold: bottom.threshold})
	}

	return nil
}
