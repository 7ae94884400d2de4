package dict

import "math/rand/v2"

func (d *Dict[K, V]) randUint64() uint64 {
	if d.rnd != nil {
		return d.rnd.Uint64()
	}
	return rand.Uint64()
}

func (d *Dict[K, V]) randN(n uint64) uint64 {
	if d.rnd != nil {
		return d.rnd.Uint64N(n)
	}
	return rand.Uint64N(n)
}

// RandomKey returns a random entry, or nil if the dict is empty.
//
// A random non-empty bucket is picked first, then a random entry of its
// chain, so entries in long chains are slightly less likely to be
// returned. While rehashing, buckets are drawn from both tables,
// skipping the already migrated part of the old one.
func (d *Dict[K, V]) RandomKey() *Entry[K, V] {
	if d.Len() == 0 {
		return nil
	}
	if d.IsRehashing() {
		d.rehashStep()
	}

	var he *Entry[K, V]
	if d.IsRehashing() {
		s0 := d.ht[0].size
		from := uint64(d.rehashIdx)
		span := s0 + d.ht[1].size - from
		for he == nil {
			// buckets below rehashIdx in ht[0] are empty
			h := from + d.randN(span)
			if h >= s0 {
				he = d.ht[1].buckets[h-s0]
			} else {
				he = d.ht[0].buckets[h]
			}
		}
	} else {
		m := d.ht[0].sizemask
		for he == nil {
			he = d.ht[0].buckets[d.randUint64()&m]
		}
	}

	listLen := uint64(0)
	for e := he; e != nil; e = e.next {
		listLen++
	}
	for n := d.randN(listLen); n > 0; n-- {
		he = he.next
	}
	return he
}

// SomeKeys returns up to count entries sampled from the dict. It is
// much faster than calling RandomKey count times, but the entries are
// not independent: they come from a run of adjacent buckets starting at
// a random index, and every entry of a visited bucket is taken. Fewer
// than count entries may be returned even if the dict holds more, as
// the walk is limited to count*10 buckets.
//
// The result suits statistical uses, such as picking eviction
// candidates or estimating cardinality.
func (d *Dict[K, V]) SomeKeys(count int) []*Entry[K, V] {
	if count <= 0 || d.Len() == 0 {
		return nil
	}
	if n := d.Len(); n < count {
		count = n
	}
	maxSteps := count * 10

	// rehash work proportional to count
	for j := 0; j < count && d.IsRehashing(); j++ {
		d.rehashStep()
	}

	tables := 1
	maxSizeMask := d.ht[0].sizemask
	if d.IsRehashing() {
		tables = 2
		maxSizeMask = max(maxSizeMask, d.ht[1].sizemask)
	}

	des := make([]*Entry[K, V], 0, count)
	i := d.randUint64() & maxSizeMask
	emptyLen := 0
	for ; len(des) < count && maxSteps > 0; maxSteps-- {
		for j := 0; j < tables; j++ {
			// ht[0] holds nothing below rehashIdx
			if tables == 2 && j == 0 && i < uint64(d.rehashIdx) {
				// past the end of ht[1] too: nothing in either table
				// until rehashIdx (happens when shrinking)
				if i >= d.ht[1].size {
					i = uint64(d.rehashIdx)
				} else {
					continue
				}
			}
			if i >= d.ht[j].size {
				continue
			}
			he := d.ht[j].buckets[i]
			if he == nil {
				// jump elsewhere after a long run of empty buckets
				emptyLen++
				if emptyLen >= 5 && emptyLen > count {
					i = d.randUint64() & maxSizeMask
					emptyLen = 0
				}
				continue
			}
			emptyLen = 0
			for ; he != nil; he = he.next {
				des = append(des, he)
				if len(des) == count {
					return des
				}
			}
		}
		i = (i + 1) & maxSizeMask
	}
	return des
}
