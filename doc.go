// Package dict implements the hash table that backs the keyed
// collections of an in-memory data store: the keyspace, hash and set
// field maps, and registries such as blocked-client lists.
//
// A Dict chains colliding entries in power-of-two bucket arrays and
// resizes by incremental rehashing: a second table is allocated and
// entries migrate a bucket at a time, piggy-backed on ordinary calls
// or driven by Rehash, RehashFor and ActiveRehash. No call ever pays
// for moving the whole table.
//
// Keys and values are opaque to the table. Hashing, comparison and
// ownership are configured once per dict through a Type; every
// callback is optional.
//
// Three ways to walk a dict are provided:
//
//   - SafeIterator, which tolerates updates during the walk;
//   - Iterator, which forbids them and panics on release if the dict
//     was changed;
//   - Scan, a stateless cursor that survives resizes between calls.
//
// RandomKey and SomeKeys sample entries for eviction and estimation.
//
// A Dict is meant to be owned by one goroutine; it does no locking.
package dict
