package dict

import "time"

// rehashBatch is the number of buckets RehashFor moves between two
// clock reads.
const rehashBatch = 100

// Rehash moves up to n non-empty buckets from the old table to the new
// one and reports whether entries remain to be moved. At most n*10
// empty buckets are visited, so a call does bounded work even on a
// sparse table.
//
// Rehash does nothing while a safe iterator or a scan is open, and
// reports true if a rehash is pending.
func (d *Dict[K, V]) Rehash(n int) bool {
	if d.iterators > 0 {
		return d.IsRehashing()
	}
	return d.rehash(n)
}

func (d *Dict[K, V]) rehash(n int) bool {
	if !d.IsRehashing() {
		return false
	}
	emptyVisits := n * 10
	src, dst := &d.ht[0], &d.ht[1]

	for ; n > 0 && src.used != 0; n-- {
		for src.buckets[d.rehashIdx] == nil {
			d.rehashIdx++
			emptyVisits--
			if emptyVisits == 0 {
				return true
			}
		}
		e := src.buckets[d.rehashIdx]
		for e != nil {
			next := e.next
			idx := d.hashKey(e.key) & dst.sizemask
			e.next = dst.buckets[idx]
			dst.buckets[idx] = e
			src.used--
			dst.used++
			e = next
		}
		src.buckets[d.rehashIdx] = nil
		d.rehashIdx++
	}

	if src.used == 0 {
		d.ht[0] = d.ht[1]
		d.ht[1] = table[K, V]{}
		d.rehashIdx = -1
		d.logger.Debug("dict: rehash completed",
			"size", d.ht[0].size, "used", d.ht[0].used)
		return false
	}
	return true
}

// rehashStep moves a single bucket, unless iteration pins the tables.
// It is called by lookups and updates while a rehash is in progress.
func (d *Dict[K, V]) rehashStep() {
	if d.iterators == 0 {
		d.rehash(1)
	}
}

func (d *Dict[K, V]) pauseRehashing() { d.iterators++ }

func (d *Dict[K, V]) resumeRehashing() {
	// Empty resets the count under open iterators
	if d.iterators > 0 {
		d.iterators--
	}
}

// RehashFor rehashes in batches of 100 buckets until the rehash
// completes or budget has elapsed, and returns the number of buckets
// moved, counted in whole batches: a batch that completes the rehash
// counts in full even if it moved fewer buckets. The dict is left in a
// valid state from which rehashing resumes on the next call.
func (d *Dict[K, V]) RehashFor(budget time.Duration) int {
	if d.iterators > 0 || !d.IsRehashing() {
		return 0
	}
	start := time.Now()
	rehashes := 0
	for {
		more := d.rehash(rehashBatch)
		rehashes += rehashBatch
		if !more || time.Since(start) > budget {
			return rehashes
		}
	}
}

// RehashMilliseconds is RehashFor with a budget of ms milliseconds.
func (d *Dict[K, V]) RehashMilliseconds(ms int) int {
	return d.RehashFor(time.Duration(ms) * time.Millisecond)
}
