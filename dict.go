package dict

import (
	"log/slog"
	"math/bits"
	"math/rand/v2"
	"unsafe"
)

const (
	// InitialSize is the number of buckets of a table allocated on first
	// insert, and the smallest table Resize shrinks to.
	InitialSize = 4
	// ForceResizeRatio is the load ratio (used/size) above which a table
	// grows even while resizing is disabled by the Env.
	ForceResizeRatio = 5
	// MinFillPercent is the fill below which NeedsResize reports true.
	MinFillPercent = 10

	maxTableSize = 1 << (bits.UintSize - 2)
)

// Dict is a chained hash table with incremental rehashing.
//
// While a table is resized, a second table is allocated and entries
// are moved a bucket at a time: one bucket on every Add, Find, Delete
// and RandomKey call, or in larger batches through Rehash and
// RehashFor. Lookups consult both tables until the move completes, so
// no single call pays for migrating the whole table.
//
// A Dict is not safe for concurrent use. A Dict must not be copied
// after first use.
type Dict[K, V any] struct {
	//lint:ignore U1000 prevents false sharing
	pad [(CacheLineSize - unsafe.Sizeof(struct {
		typ        unsafe.Pointer
		ctx        any
		hash       unsafe.Pointer
		equal      unsafe.Pointer
		ht         [2]tableLayout
		rehashIdx  int
		iterators  int
		seed       uint64
		env        unsafe.Pointer
		rnd        unsafe.Pointer
		logger     unsafe.Pointer
		autoShrink bool
		growths    uint32
		shrinks    uint32
	}{})%CacheLineSize) % CacheLineSize]byte

	_     noCopy
	typ   *Type[K, V]
	ctx   any
	hash  func(uint64, K) uint64
	equal func(any, K, K) bool
	ht    [2]table[K, V]
	// rehashIdx is the next ht[0] bucket to migrate, or -1 when not
	// rehashing.
	rehashIdx int
	// iterators counts open safe iterators and in-progress scans; no
	// rehash step runs while it is non-zero.
	iterators  int
	seed       uint64
	env        *Env
	rnd        *rand.Rand
	logger     *slog.Logger
	autoShrink bool
	growths    uint32
	shrinks    uint32
}

// table is one of the two bucket arrays of a Dict.
type table[K, V any] struct {
	buckets  []*Entry[K, V]
	size     uint64
	sizemask uint64
	used     uint64
}

type tableLayout struct {
	buckets  []unsafe.Pointer
	size     uint64
	sizemask uint64
	used     uint64
}

func newTable[K, V any](size uint64) table[K, V] {
	return table[K, V]{
		buckets:  make([]*Entry[K, V], size),
		size:     size,
		sizemask: size - 1,
	}
}

var discardLogger = slog.New(slog.DiscardHandler)

// New creates an empty Dict. typ may be nil, in which case every
// callback takes its default (see Type).
//
// Parameters:
//   - WithPresize option for initial capacity
//   - WithContext option for the value passed to callbacks
//   - WithEnv option for the hash seed and resize switch
//   - WithAutoShrink option to shrink on delete
func New[K, V any](typ *Type[K, V], options ...func(*Config)) *Dict[K, V] {
	var c Config
	for _, o := range options {
		o(&c)
	}
	if typ == nil {
		typ = &Type[K, V]{}
	}
	if c.env == nil {
		c.env = DefaultEnv()
	}
	if c.logger == nil {
		c.logger = discardLogger
	}

	d := &Dict[K, V]{
		typ:        typ,
		ctx:        c.ctx,
		rehashIdx:  -1,
		seed:       c.env.HashSeed(),
		env:        c.env,
		rnd:        c.rnd,
		logger:     c.logger,
		autoShrink: c.autoShrink,
	}
	d.hash, d.equal = typ.resolve()
	if c.sizeHint > 0 {
		_ = d.Expand(c.sizeHint)
	}
	return d
}

// Len returns the number of entries in both tables.
func (d *Dict[K, V]) Len() int {
	return int(d.ht[0].used + d.ht[1].used)
}

// Slots returns the number of buckets in both tables.
func (d *Dict[K, V]) Slots() int {
	return int(d.ht[0].size + d.ht[1].size)
}

// IsRehashing reports whether entries are being moved to a new table.
func (d *Dict[K, V]) IsRehashing() bool { return d.rehashIdx != -1 }

// Context returns the value given with WithContext.
func (d *Dict[K, V]) Context() any { return d.ctx }

// HashSeed returns the seed captured from the Env at creation.
func (d *Dict[K, V]) HashSeed() uint64 { return d.seed }

func (d *Dict[K, V]) hashKey(key K) uint64 { return d.hash(d.seed, key) }

// nextPower returns the table size used to hold size entries: the
// smallest power of two not below size and InitialSize.
func nextPower(size int) uint64 {
	if size >= maxTableSize {
		return maxTableSize
	}
	if size <= InitialSize {
		return InitialSize
	}
	return 1 << bits.Len(uint(size-1))
}

// Expand allocates a table with room for size entries. If the dict has
// no table yet, the new one is used directly; otherwise it becomes the
// rehash target and entries migrate to it incrementally. A size smaller
// than the current table shrinks it.
//
// Expand fails with ErrRehashing while a rehash is in progress, and with
// ErrInvalidSize if size is below Len or maps to the current table size.
func (d *Dict[K, V]) Expand(size int) error {
	if d.IsRehashing() {
		return ErrRehashing
	}
	if size < 0 || uint64(size) < d.ht[0].used {
		return ErrInvalidSize
	}
	realSize := nextPower(size)
	if realSize == d.ht[0].size {
		return ErrInvalidSize
	}

	n := newTable[K, V](realSize)
	if d.ht[0].buckets == nil {
		d.ht[0] = n
		return nil
	}

	if realSize > d.ht[0].size {
		d.growths++
	} else {
		d.shrinks++
	}
	d.logger.Debug("dict: rehash started",
		"from", d.ht[0].size, "to", realSize, "used", d.ht[0].used)
	d.ht[1] = n
	d.rehashIdx = 0
	return nil
}

// expandIfNeeded grows the table when it is full, or allocates the
// first table.
func (d *Dict[K, V]) expandIfNeeded() {
	if d.IsRehashing() {
		return
	}
	t := &d.ht[0]
	if t.size == 0 {
		_ = d.Expand(InitialSize)
		return
	}
	if t.used >= t.size &&
		(d.env.ResizeAllowed() || t.used/t.size > ForceResizeRatio) {
		_ = d.Expand(int(t.used * 2))
	}
}

// NeedsResize reports whether the table is less than MinFillPercent
// full and larger than InitialSize.
func (d *Dict[K, V]) NeedsResize() bool {
	size := d.ht[0].size
	return size > InitialSize && d.ht[0].used*100/size < MinFillPercent
}

// Resize shrinks (or grows) the table to the smallest size that holds
// all entries with a load ratio <= 1. It is a no-op if the table already
// has that size.
func (d *Dict[K, V]) Resize() error {
	if !d.env.ResizeAllowed() {
		return ErrResizeDisabled
	}
	if d.IsRehashing() {
		return ErrRehashing
	}
	minimal := max(int(d.ht[0].used), InitialSize)
	if nextPower(minimal) == d.ht[0].size {
		return nil
	}
	return d.Expand(minimal)
}

// keyIndex returns the bucket of the insertion table where key belongs,
// or the entry already holding key.
func (d *Dict[K, V]) keyIndex(key K, hash uint64) (uint64, *Entry[K, V]) {
	d.expandIfNeeded()
	var idx uint64
	for t := 0; t <= 1; t++ {
		idx = hash & d.ht[t].sizemask
		for e := d.ht[t].buckets[idx]; e != nil; e = e.next {
			if d.equal(d.ctx, key, e.key) {
				return idx, e
			}
		}
		if !d.IsRehashing() {
			break
		}
	}
	return idx, nil
}

// AddRaw returns the entry for key, adding it with an empty value slot
// if it is not present. inserted reports whether the entry is new; the
// caller is expected to set the value of a new entry.
func (d *Dict[K, V]) AddRaw(key K) (e *Entry[K, V], inserted bool) {
	if d.IsRehashing() {
		d.rehashStep()
	}
	idx, existing := d.keyIndex(key, d.hashKey(key))
	if existing != nil {
		return existing, false
	}

	t := &d.ht[0]
	if d.IsRehashing() {
		t = &d.ht[1]
	}
	if d.typ.KeyDup != nil {
		key = d.typ.KeyDup(d.ctx, key)
	}
	e = &Entry[K, V]{key: key, next: t.buckets[idx]}
	t.buckets[idx] = e
	t.used++
	return e, true
}

// Add inserts key with val. If key is already present the dict is left
// untouched and ErrKeyExists is returned.
func (d *Dict[K, V]) Add(key K, val V) error {
	e, inserted := d.AddRaw(key)
	if !inserted {
		return ErrKeyExists
	}
	d.SetValue(e, val)
	return nil
}

// Replace sets key to val, inserting it if needed. It returns true if
// the key was added and false if an existing value was replaced; the
// old value is released after the new one is stored, so replacing a
// value with itself is safe.
func (d *Dict[K, V]) Replace(key K, val V) bool {
	e, inserted := d.AddRaw(key)
	if inserted {
		d.SetValue(e, val)
		return true
	}
	oldVal, oldKind := e.val, e.kind
	d.SetValue(e, val)
	if oldKind == KindValue && d.typ.ValDestructor != nil {
		d.typ.ValDestructor(d.ctx, oldVal)
	}
	return false
}

// SetValue stores val in e, through Type.ValDup if set. A value that
// was already stored is not released.
func (d *Dict[K, V]) SetValue(e *Entry[K, V], val V) {
	if d.typ.ValDup != nil {
		val = d.typ.ValDup(d.ctx, val)
	}
	e.val, e.num, e.kind = val, 0, KindValue
}

// Find returns the entry for key, or nil.
func (d *Dict[K, V]) Find(key K) *Entry[K, V] {
	if d.Len() == 0 {
		return nil
	}
	if d.IsRehashing() {
		d.rehashStep()
	}
	h := d.hashKey(key)
	for t := 0; t <= 1; t++ {
		idx := h & d.ht[t].sizemask
		for e := d.ht[t].buckets[idx]; e != nil; e = e.next {
			if d.equal(d.ctx, key, e.key) {
				return e
			}
		}
		if !d.IsRehashing() {
			return nil
		}
	}
	return nil
}

// FetchValue returns the value stored for key.
func (d *Dict[K, V]) FetchValue(key K) (val V, ok bool) {
	if e := d.Find(key); e != nil {
		return e.Value(), true
	}
	return
}

// Unlink removes the entry for key from the dict without releasing it
// and returns it, or nil if key is absent. The caller may use the entry
// and must then pass it to FreeUnlinked.
func (d *Dict[K, V]) Unlink(key K) *Entry[K, V] {
	if d.Len() == 0 {
		return nil
	}
	if d.IsRehashing() {
		d.rehashStep()
	}
	h := d.hashKey(key)
	for t := 0; t <= 1; t++ {
		idx := h & d.ht[t].sizemask
		var prev *Entry[K, V]
		for e := d.ht[t].buckets[idx]; e != nil; e = e.next {
			if d.equal(d.ctx, key, e.key) {
				if prev != nil {
					prev.next = e.next
				} else {
					d.ht[t].buckets[idx] = e.next
				}
				d.ht[t].used--
				// e.next is kept so that a safe iterator holding e
				// can still reach the rest of the chain.
				e.removed = true
				return e
			}
			prev = e
		}
		if !d.IsRehashing() {
			break
		}
	}
	return nil
}

// FreeUnlinked releases an entry returned by Unlink through the
// destructors of the Type. e may be nil.
func (d *Dict[K, V]) FreeUnlinked(e *Entry[K, V]) {
	if e == nil {
		return
	}
	d.freeEntry(e)
}

// Delete removes key and releases its key and value. It returns
// ErrKeyNotFound if key is absent.
func (d *Dict[K, V]) Delete(key K) error {
	e := d.Unlink(key)
	if e == nil {
		return ErrKeyNotFound
	}
	d.freeEntry(e)
	if d.autoShrink && d.NeedsResize() {
		_ = d.Resize()
	}
	return nil
}

func (d *Dict[K, V]) freeEntry(e *Entry[K, V]) {
	if d.typ.KeyDestructor != nil {
		d.typ.KeyDestructor(d.ctx, e.key)
	}
	if e.kind == KindValue && d.typ.ValDestructor != nil {
		d.typ.ValDestructor(d.ctx, e.val)
	}
	var zk K
	var zv V
	e.key, e.val = zk, zv
	e.kind = KindNone
}

// clearTable releases every entry of ht[i] and resets it. callback, if
// not nil, is called with the dict context every 65536 buckets so that
// a caller can keep serving other work while a huge table is freed.
func (d *Dict[K, V]) clearTable(i int, callback func(ctx any)) {
	t := &d.ht[i]
	for b := uint64(0); b < t.size && t.used > 0; b++ {
		if callback != nil && b&65535 == 0 {
			callback(d.ctx)
		}
		e := t.buckets[b]
		for e != nil {
			next := e.next
			e.removed = true
			d.freeEntry(e)
			t.used--
			e = next
		}
		t.buckets[b] = nil
	}
	*t = table[K, V]{}
}

// Empty removes and releases every entry, leaving an empty dict that
// can be reused.
func (d *Dict[K, V]) Empty(callback func(ctx any)) {
	d.clearTable(0, callback)
	d.clearTable(1, callback)
	d.rehashIdx = -1
	d.iterators = 0
}

// Release releases every entry and both tables. The dict must not be
// used afterwards.
func (d *Dict[K, V]) Release() {
	d.Empty(nil)
}

// SetInt64 stores v inline in e, releasing a V previously stored there.
func (d *Dict[K, V]) SetInt64(e *Entry[K, V], v int64) {
	d.freeValue(e)
	e.SetInt64(v)
}

// SetUint64 stores v inline in e, releasing a V previously stored there.
func (d *Dict[K, V]) SetUint64(e *Entry[K, V], v uint64) {
	d.freeValue(e)
	e.SetUint64(v)
}

// SetFloat64 stores v inline in e, releasing a V previously stored there.
func (d *Dict[K, V]) SetFloat64(e *Entry[K, V], v float64) {
	d.freeValue(e)
	e.SetFloat64(v)
}

func (d *Dict[K, V]) freeValue(e *Entry[K, V]) {
	if e.kind == KindValue && d.typ.ValDestructor != nil {
		d.typ.ValDestructor(d.ctx, e.val)
	}
}
