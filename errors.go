package dict

import (
	"errors"
	"fmt"
)

// Expected conditions, returned as values.
var (
	ErrKeyExists      = errors.New("dict: key already exists")
	ErrKeyNotFound    = errors.New("dict: key not found")
	ErrRehashing      = errors.New("dict: rehash in progress")
	ErrInvalidSize    = errors.New("dict: invalid table size")
	ErrResizeDisabled = errors.New("dict: resize is disabled")
)

// ErrIteratorMisuse is the cause of the panic raised when an unsafe
// iterator is released after its dict was modified.
var ErrIteratorMisuse = errors.New("dict: dict modified during unsafe iteration")

// MisuseError is the panic value of a failed unsafe iterator release.
// It unwraps to ErrIteratorMisuse.
type MisuseError struct {
	// Fingerprint taken when the iterator was created.
	Want uint64
	// Fingerprint observed on release.
	Got uint64
}

func (e *MisuseError) Error() string {
	return fmt.Sprintf("%v (fingerprint %#016x, now %#016x)", ErrIteratorMisuse, e.Want, e.Got)
}

func (e *MisuseError) Unwrap() error { return ErrIteratorMisuse }
