package dict

import "time"

// Rehasher is the part of a Dict that background maintenance needs.
// Every *Dict[K, V] implements it, whatever its key and value types.
type Rehasher interface {
	IsRehashing() bool
	RehashFor(budget time.Duration) int
}

// ActiveRehash spends at most budget rehashing the given dicts, one
// after another, and returns the number of buckets moved as counted by
// RehashFor. Dicts that are not rehashing are skipped.
//
// It is meant to be called periodically from an idle loop, so that
// large tables finish migrating even when they see little traffic.
func ActiveRehash(budget time.Duration, dicts ...Rehasher) int {
	deadline := time.Now().Add(budget)
	moved := 0
	for _, d := range dicts {
		if !d.IsRehashing() {
			continue
		}
		left := time.Until(deadline)
		if left <= 0 {
			break
		}
		moved += d.RehashFor(left)
	}
	return moved
}
