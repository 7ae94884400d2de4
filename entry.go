package dict

import "math"

// ValueKind tells which member of an Entry's value slot is set.
type ValueKind uint8

const (
	// KindNone is the state of an entry returned by AddRaw before a
	// value is stored.
	KindNone ValueKind = iota
	KindValue
	KindInt64
	KindUint64
	KindFloat64
)

func (k ValueKind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindValue:
		return "value"
	case KindInt64:
		return "int64"
	case KindUint64:
		return "uint64"
	case KindFloat64:
		return "float64"
	}
	return "unknown"
}

// Entry is a key and its value slot, linked into a bucket chain.
//
// The slot holds either an owned V or an inline 64-bit number, so small
// counters need no separate allocation. Entries belong to their Dict;
// callers may read them and set their value but must not keep them past
// the entry's deletion.
type Entry[K, V any] struct {
	key     K
	val     V
	num     uint64
	kind    ValueKind
	removed bool
	next    *Entry[K, V]
}

// Key returns the entry's key.
func (e *Entry[K, V]) Key() K { return e.key }

// Kind returns which member of the value slot is set.
func (e *Entry[K, V]) Kind() ValueKind { return e.kind }

// Value returns the stored V, or the zero V if the slot holds a number.
func (e *Entry[K, V]) Value() V {
	if e.kind != KindValue {
		var zero V
		return zero
	}
	return e.val
}

// Int64 returns the inline payload as set by SetInt64.
func (e *Entry[K, V]) Int64() int64 { return int64(e.num) }

// Uint64 returns the inline payload as set by SetUint64.
func (e *Entry[K, V]) Uint64() uint64 { return e.num }

// Float64 returns the inline payload as set by SetFloat64.
func (e *Entry[K, V]) Float64() float64 { return math.Float64frombits(e.num) }

// SetInt64 stores v inline. A previously stored V is dropped without
// calling the value destructor; use Dict.SetInt64 for that.
func (e *Entry[K, V]) SetInt64(v int64) {
	e.clearValue()
	e.num, e.kind = uint64(v), KindInt64
}

// SetUint64 stores v inline, like SetInt64.
func (e *Entry[K, V]) SetUint64(v uint64) {
	e.clearValue()
	e.num, e.kind = v, KindUint64
}

// SetFloat64 stores v inline, like SetInt64.
func (e *Entry[K, V]) SetFloat64(v float64) {
	e.clearValue()
	e.num, e.kind = math.Float64bits(v), KindFloat64
}

func (e *Entry[K, V]) clearValue() {
	var zero V
	e.val = zero
}
