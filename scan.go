package dict

import "math/bits"

// Scan visits the entries of the bucket addressed by cursor and returns
// the cursor of the next call. Start with 0; a returned 0 means the
// whole table has been visited.
//
// The cursor is incremented on its reversed bits, so that the buckets
// it addresses stay valid when the table doubles or halves between
// calls: a bucket of a table of size N covers exactly the buckets of a
// larger table that share its low bits, and those follow each other in
// reversed-bit order. An entry present for the whole scan is therefore
// returned at least once, even across resizes; it may be returned more
// than once if the table shrinks. Entries added or removed during the
// scan may or may not be returned.
//
// While rehashing, the bucket of the smaller table is visited together
// with every bucket of the larger table that expands it, whichever of
// the two tables is the old one.
//
// fn must not retain entries; it may update the dict, and no rehash
// step runs while it is called. If fn empties the dict, Scan returns 0.
func (d *Dict[K, V]) Scan(cursor uint64, fn func(*Entry[K, V])) uint64 {
	if d.Len() == 0 {
		return 0
	}
	d.pauseRehashing()
	defer d.resumeRehashing()

	if !d.IsRehashing() {
		t0 := &d.ht[0]
		m0 := t0.sizemask
		emitBucket(t0.buckets[cursor&m0], fn)

		// increment the reversed cursor, with the bits above the mask
		// set so the carry goes past them
		cursor |= ^m0
		cursor = bits.Reverse64(cursor)
		cursor++
		return bits.Reverse64(cursor)
	}

	t0, t1 := &d.ht[0], &d.ht[1]
	if t0.size > t1.size {
		t0, t1 = t1, t0
	}
	m0, m1 := t0.sizemask, t1.sizemask

	emitBucket(t0.buckets[cursor&m0], fn)
	// visit every bucket of the larger table that expands the smaller
	// table's bucket, in reversed-bit order; the carry out of the bits
	// above m0 advances the cursor to the next small bucket
	for {
		if !d.IsRehashing() {
			// fn emptied the dict
			return 0
		}
		emitBucket(t1.buckets[cursor&m1], fn)
		cursor |= ^m1
		cursor = bits.Reverse64(cursor)
		cursor++
		cursor = bits.Reverse64(cursor)
		if cursor&(m0^m1) == 0 {
			return cursor
		}
	}
}

func emitBucket[K, V any](e *Entry[K, V], fn func(*Entry[K, V])) {
	for e != nil {
		next := e.next
		if !e.removed {
			fn(e)
		}
		e = next
	}
}
