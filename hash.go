package dict

import (
	"encoding/binary"
	"hash/maphash"
	"math/bits"
	"reflect"
	"unsafe"

	"github.com/cespare/xxhash/v2"
	"github.com/spaolacci/murmur3"
	"github.com/zeebo/xxh3"
)

// DefaultHash returns the hash function a Dict uses when Type.Hash is
// nil, or nil when K has none.
//
//   - string and []byte keys are hashed with seeded XXH3.
//   - fixed-size integer keys are mixed with the seed.
//   - any other comparable key is hashed the way Go maps hash it, then
//     mixed with the seed, so that changing the seed still changes the
//     distribution.
func DefaultHash[K any]() func(seed uint64, key K) uint64 {
	switch any(*new(K)).(type) {
	case string:
		return func(seed uint64, key K) uint64 {
			return xxh3.HashStringSeed(*(*string)(unsafe.Pointer(&key)), seed)
		}
	case []byte:
		return func(seed uint64, key K) uint64 {
			return xxh3.HashSeed(*(*[]byte)(unsafe.Pointer(&key)), seed)
		}
	case int, uint, uintptr:
		if bits.UintSize == 32 {
			return func(seed uint64, key K) uint64 {
				return mix64(uint64(*(*uint32)(unsafe.Pointer(&key))), seed)
			}
		}
		return func(seed uint64, key K) uint64 {
			return mix64(*(*uint64)(unsafe.Pointer(&key)), seed)
		}
	case int64, uint64:
		return func(seed uint64, key K) uint64 {
			return mix64(*(*uint64)(unsafe.Pointer(&key)), seed)
		}
	case int32, uint32:
		return func(seed uint64, key K) uint64 {
			return mix64(uint64(*(*uint32)(unsafe.Pointer(&key))), seed)
		}
	case int16, uint16:
		return func(seed uint64, key K) uint64 {
			return mix64(uint64(*(*uint16)(unsafe.Pointer(&key))), seed)
		}
	case int8, uint8:
		return func(seed uint64, key K) uint64 {
			return mix64(uint64(*(*uint8)(unsafe.Pointer(&key))), seed)
		}
	}
	if !reflect.TypeFor[K]().Comparable() {
		return nil
	}
	return func(seed uint64, key K) uint64 {
		return mix64(maphash.Comparable[any](comparableSeed, any(key)), seed)
	}
}

// comparableSeed is fixed for the process; per-dict variation comes
// from mixing in the Env seed.
var comparableSeed = maphash.MakeSeed()

// mix64 is the murmur3 64-bit finalizer applied to x^seed.
func mix64(x, seed uint64) uint64 {
	x ^= seed
	x = (x ^ (x >> 33)) * 0xff51afd7ed558ccd
	x = (x ^ (x >> 33)) * 0xc4ceb9fe1a85ec53
	return x ^ (x >> 33)
}

// CaseHash hashes s ignoring ASCII case, using murmur3.
// Keys that are equal under EqualFoldASCII hash to the same value.
func CaseHash(seed uint64, s string) uint64 {
	var stack [64]byte
	buf := stack[:0]
	if len(s) > len(stack) {
		buf = make([]byte, 0, len(s))
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if 'A' <= c && c <= 'Z' {
			c += 'a' - 'A'
		}
		buf = append(buf, c)
	}
	return murmur3.Sum64WithSeed(buf, uint32(seed)^uint32(seed>>32))
}

// EqualFoldASCII reports whether a and b are equal ignoring ASCII case.
func EqualFoldASCII(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := 0; i < len(a); i++ {
		ca, cb := a[i], b[i]
		if ca == cb {
			continue
		}
		if 'A' <= ca && ca <= 'Z' {
			ca += 'a' - 'A'
		}
		if 'A' <= cb && cb <= 'Z' {
			cb += 'a' - 'A'
		}
		if ca != cb {
			return false
		}
	}
	return true
}

// fingerprint folds the identity, size and fill of both tables into
// one value. Any insert, delete or resize changes it.
func (d *Dict[K, V]) fingerprint() uint64 {
	var buf [6 * 8]byte
	for i := range d.ht {
		t := &d.ht[i]
		off := i * 24
		binary.LittleEndian.PutUint64(buf[off:], uint64(uintptr(unsafe.Pointer(unsafe.SliceData(t.buckets)))))
		binary.LittleEndian.PutUint64(buf[off+8:], t.size)
		binary.LittleEndian.PutUint64(buf[off+16:], t.used)
	}
	return xxhash.Sum64(buf[:])
}
