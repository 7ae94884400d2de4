package dict

import (
	"math/rand/v2"
	"sync"
	"sync/atomic"
)

// Env holds the settings that are shared by every dict of a process:
// the hash seed and the resize switch.
//
// The seed is captured when a dict is created, so SetHashSeed only
// affects dicts created afterwards. The resize switch is consulted on
// every growth check and may be flipped from any goroutine, typically
// around a copy-on-write snapshot where duplicating pages is wasteful.
type Env struct {
	seed   atomic.Uint64
	resize atomic.Bool
}

// NewEnv returns an Env with the given hash seed and resizing enabled.
func NewEnv(seed uint64) *Env {
	e := &Env{}
	e.seed.Store(seed)
	e.resize.Store(true)
	return e
}

var defaultEnv = sync.OnceValue(func() *Env {
	return NewEnv(rand.Uint64())
})

// DefaultEnv returns the process-wide Env used by dicts created without
// WithEnv. It is seeded randomly once per process.
func DefaultEnv() *Env { return defaultEnv() }

// SetHashSeed sets the seed used by dicts created from now on.
func (e *Env) SetHashSeed(seed uint64) { e.seed.Store(seed) }

// HashSeed returns the current hash seed.
func (e *Env) HashSeed() uint64 { return e.seed.Load() }

// EnableResize allows tables to grow and shrink normally.
func (e *Env) EnableResize() { e.resize.Store(true) }

// DisableResize stops shrinking and defers growth until a table's load
// ratio exceeds ForceResizeRatio.
func (e *Env) DisableResize() { e.resize.Store(false) }

// ResizeAllowed reports whether resizing is enabled.
func (e *Env) ResizeAllowed() bool { return e.resize.Load() }
