package dict

import "iter"

// Iterator walks every entry of a Dict, old table first.
//
// A safe iterator (SafeIterator) pins the tables: no rehash step runs
// while it is open, so the caller may Add, Find, Replace and Delete
// through the dict during the walk. Entries present when the walk
// started are returned once unless the caller deletes them first;
// entries added during the walk may or may not be returned.
//
// An unsafe iterator (Iterator) is cheaper but allows nothing but Next
// until it is released. Release checks a fingerprint of the tables and
// panics with a *MisuseError if the dict was changed in between.
//
// Release must be called exactly once per iterator; extra calls are
// ignored.
type Iterator[K, V any] struct {
	d           *Dict[K, V]
	index       int
	table       int
	safe        bool
	done        bool
	released    bool
	entry       *Entry[K, V]
	nextEntry   *Entry[K, V]
	fingerprint uint64
}

// Iterator returns an unsafe iterator over d.
func (d *Dict[K, V]) Iterator() *Iterator[K, V] {
	return &Iterator[K, V]{
		d:           d,
		index:       -1,
		fingerprint: d.fingerprint(),
	}
}

// SafeIterator returns an iterator that tolerates updates to d.
func (d *Dict[K, V]) SafeIterator() *Iterator[K, V] {
	d.pauseRehashing()
	return &Iterator[K, V]{
		d:     d,
		index: -1,
		safe:  true,
	}
}

// Next returns the next entry, or nil once every bucket of both tables
// has been visited.
func (it *Iterator[K, V]) Next() *Entry[K, V] {
	if it.done {
		return nil
	}
	for {
		if it.entry == nil {
			it.index++
			t := &it.d.ht[it.table]
			if it.index >= len(t.buckets) {
				if it.table == 0 && it.d.IsRehashing() {
					it.table, it.index = 1, 0
					t = &it.d.ht[1]
				} else {
					it.done = true
					return nil
				}
			}
			it.entry = t.buckets[it.index]
		} else {
			it.entry = it.nextEntry
		}
		// skip entries the caller deleted after we saved them as next
		for it.entry != nil && it.entry.removed {
			it.entry = it.entry.next
		}
		if it.entry != nil {
			// saved now: the caller may delete the entry we return
			it.nextEntry = it.entry.next
			return it.entry
		}
	}
}

// Release ends the iteration; Next returns nil afterwards. For an unsafe
// iterator it panics with a *MisuseError if the dict changed since the
// iterator was created.
func (it *Iterator[K, V]) Release() {
	if it.released {
		return
	}
	it.released = true
	it.done = true
	it.entry, it.nextEntry = nil, nil
	if it.safe {
		it.d.resumeRehashing()
		return
	}
	if fp := it.d.fingerprint(); fp != it.fingerprint {
		panic(&MisuseError{Want: it.fingerprint, Got: fp})
	}
}

// All returns an iterator over key-value pairs for use with
// range-over-func. It walks the dict with a safe iterator, so the loop
// body may update the dict. Entries holding an inline number yield the
// zero V.
func (d *Dict[K, V]) All() iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		it := d.SafeIterator()
		defer it.Release()
		for e := it.Next(); e != nil; e = it.Next() {
			if !yield(e.key, e.Value()) {
				return
			}
		}
	}
}

// Keys returns an iterator over keys, like All.
func (d *Dict[K, V]) Keys() iter.Seq[K] {
	return func(yield func(K) bool) {
		it := d.SafeIterator()
		defer it.Release()
		for e := it.Next(); e != nil; e = it.Next() {
			if !yield(e.key) {
				return
			}
		}
	}
}

// Entries returns an iterator over entries, like All.
func (d *Dict[K, V]) Entries() iter.Seq[*Entry[K, V]] {
	return func(yield func(*Entry[K, V]) bool) {
		it := d.SafeIterator()
		defer it.Release()
		for e := it.Next(); e != nil; e = it.Next() {
			if !yield(e) {
				return
			}
		}
	}
}
