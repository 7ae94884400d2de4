package dict

import (
	"bytes"
	"strings"
)

// StringCopyKeyType returns a Type for string keys that stores its own
// copy of every key, so that a key built over a reusable buffer (for
// example with unsafe.String) can be handed to Add.
func StringCopyKeyType[V any]() *Type[string, V] {
	return &Type[string, V]{
		KeyDup: func(_ any, key string) string { return strings.Clone(key) },
	}
}

// BytesCopyKeyType returns a Type for []byte keys that copies every key
// on insert; the caller may reuse its buffer afterwards.
func BytesCopyKeyType[V any]() *Type[[]byte, V] {
	return &Type[[]byte, V]{
		KeyDup: func(_ any, key []byte) []byte { return bytes.Clone(key) },
	}
}

// BytesCopyKeyValueType is BytesCopyKeyType for []byte values as well.
func BytesCopyKeyValueType() *Type[[]byte, []byte] {
	return &Type[[]byte, []byte]{
		KeyDup: func(_ any, key []byte) []byte { return bytes.Clone(key) },
		ValDup: func(_ any, val []byte) []byte { return bytes.Clone(val) },
	}
}

// CaseInsensitiveType returns a Type for string keys compared without
// regard to ASCII case, as used for command tables and the like.
func CaseInsensitiveType[V any]() *Type[string, V] {
	return &Type[string, V]{
		Hash:     CaseHash,
		KeyEqual: func(_ any, a, b string) bool { return EqualFoldASCII(a, b) },
	}
}
