package dict

import (
	"bytes"
	"fmt"
	"reflect"
)

// Type is the behavior table of a Dict: how keys are hashed and
// compared, and how keys and values are copied in and released.
//
// Every field is optional. A nil Hash or KeyEqual selects a default for
// the key type (see DefaultHash). A nil KeyDup or ValDup means the dict
// takes the caller's key or value as is, and a nil destructor means
// nothing is done when an entry is freed.
//
// The ctx argument is the value given with WithContext. Callbacks must
// not call back into the dict that invoked them.
type Type[K, V any] struct {
	Hash          func(seed uint64, key K) uint64
	KeyEqual      func(ctx any, a, b K) bool
	KeyDup        func(ctx any, key K) K
	ValDup        func(ctx any, val V) V
	KeyDestructor func(ctx any, key K)
	ValDestructor func(ctx any, val V)
}

// resolve returns the hash and key comparison functions the dict uses,
// filling in defaults. It panics if K has no default and typ gives none.
func (typ *Type[K, V]) resolve() (
	hash func(uint64, K) uint64,
	equal func(any, K, K) bool,
) {
	if typ.Hash != nil {
		hash = typ.Hash
	} else if hash = DefaultHash[K](); hash == nil {
		panic(fmt.Sprintf("dict: no default hash for key type %v, set Type.Hash",
			reflect.TypeFor[K]()))
	}
	if typ.KeyEqual != nil {
		equal = typ.KeyEqual
	} else if equal = defaultEqual[K](); equal == nil {
		panic(fmt.Sprintf("dict: no default equality for key type %v, set Type.KeyEqual",
			reflect.TypeFor[K]()))
	}
	return hash, equal
}

func defaultEqual[K any]() func(any, K, K) bool {
	switch any(*new(K)).(type) {
	case []byte:
		return func(_ any, a, b K) bool {
			return bytes.Equal(any(a).([]byte), any(b).([]byte))
		}
	}
	if !reflect.TypeFor[K]().Comparable() {
		return nil
	}
	return func(_ any, a, b K) bool {
		return any(a) == any(b)
	}
}
