package dict

import (
	"unsafe"

	"golang.org/x/sys/cpu"
)

// CacheLineSize is used in structure padding so that dicts owned by
// different goroutines do not share a cache line.
// It's automatically calculated using the `golang.org/x/sys` package.
const CacheLineSize = unsafe.Sizeof(cpu.CacheLinePad{})

// noCopy may be embedded into structs which must not be copied
// after the first use. See `go vet` copylocks.
type noCopy struct{}

func (*noCopy) Lock()   {}
func (*noCopy) Unlock() {}
