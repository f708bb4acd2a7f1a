// Package lsmerr defines the typed error kinds shared by the layer, layer
// registry, LSM engine, and UID packages.
package lsmerr

import "fmt"

// Kind classifies an [Error]. Callers should branch on Kind, or use
// [errors.Is] against the sentinel matching the Kind they care about.
type Kind int

const (
	// KindUnsupported means the operation is not implementable on this
	// layer kind (e.g. Open on the in-memory layer).
	KindUnsupported Kind = iota
	// KindUnknown means a layer-registry lookup missed.
	KindUnknown
	// KindNoLayer means an LSM operation ran against an empty stack.
	KindNoLayer
	// KindBadUID means UID text failed length or alphabet validation.
	KindBadUID
	// KindExhausted means strict UID generation could not advance within
	// the current millisecond.
	KindExhausted
	// KindBackend is the catch-all for persistent-layer faults.
	KindBackend
)

func (k Kind) String() string {
	switch k {
	case KindUnsupported:
		return "unsupported"
	case KindUnknown:
		return "unknown"
	case KindNoLayer:
		return "no_layer"
	case KindBadUID:
		return "bad_uid"
	case KindExhausted:
		return "exhausted"
	case KindBackend:
		return "backend"
	default:
		return "unknown_kind"
	}
}

// Sentinel errors, one per Kind. Use errors.Is(err, lsmerr.ErrUnknown) etc.
// to classify an error returned from this module without inspecting fields.
var (
	ErrUnsupported = &Error{Kind: KindUnsupported}
	ErrUnknown     = &Error{Kind: KindUnknown}
	ErrNoLayer     = &Error{Kind: KindNoLayer}
	ErrBadUID      = &Error{Kind: KindBadUID}
	ErrExhausted   = &Error{Kind: KindExhausted}
	ErrBackend     = &Error{Kind: KindBackend}
)

// Error is the single error type returned by this module's public
// operations. It carries enough context to diagnose a failure without
// revealing internal addresses or paths.
type Error struct {
	Kind  Kind
	Op    string // e.g. "layer.open", "lsm.set"
	Layer string // layer name; empty if not layer-specific
	Msg   string // human-readable detail
}

func (e *Error) Error() string {
	switch {
	case e.Op == "" && e.Layer == "" && e.Msg == "":
		return e.Kind.String()
	case e.Layer == "" && e.Msg == "":
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	case e.Msg == "":
		return fmt.Sprintf("%s: [%s] %s", e.Op, e.Layer, e.Kind)
	case e.Layer == "":
		return fmt.Sprintf("%s: %s: %s", e.Op, e.Kind, e.Msg)
	default:
		return fmt.Sprintf("%s: [%s] %s: %s", e.Op, e.Layer, e.Kind, e.Msg)
	}
}

// Is reports whether target is a sentinel for the same Kind, so that plain
// errors.Is(err, lsmerr.ErrUnknown) works regardless of Op/Layer/Msg.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}

	return t.Kind == e.Kind
}

// Unsupported builds a KindUnsupported error for op on the named layer.
func Unsupported(op, layer string) error {
	return &Error{Kind: KindUnsupported, Op: op, Layer: layer}
}

// Unknown builds a KindUnknown error for an unrecognized layer name.
func Unknown(op, name string) error {
	return &Error{Kind: KindUnknown, Op: op, Msg: fmt.Sprintf("cannot create layer: %s", name)}
}

// NoLayer builds a KindNoLayer error for an LSM operation on an empty stack.
func NoLayer(op string) error {
	return &Error{Kind: KindNoLayer, Op: op}
}

// BadUID builds a KindBadUID error for a malformed UID string.
func BadUID(op, msg string) error {
	return &Error{Kind: KindBadUID, Op: op, Msg: msg}
}

// Exhausted builds a KindExhausted error for a strict UID generation that
// cannot advance within the current millisecond.
func Exhausted(op string) error {
	return &Error{Kind: KindExhausted, Op: op}
}

// Backend builds a KindBackend error wrapping a persistent-layer fault.
func Backend(op, layer, msg string) error {
	return &Error{Kind: KindBackend, Op: op, Layer: layer, Msg: msg}
}
